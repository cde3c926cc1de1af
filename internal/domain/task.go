package domain

import "time"

// TaskStatus 是任务的状态枚举。
type TaskStatus string

const (
	StatusNotDone TaskStatus = "not_done"
	StatusDone    TaskStatus = "done"
)

// DefaultPriority 是新建任务未指定优先级时使用的值。
const DefaultPriority = 1

// Task 表示某个用户的一条待办事项。
// 列表排序: priority DESC, id ASC。
type Task struct {
	ID        uint       `gorm:"primaryKey"`
	UserID    uint       `gorm:"index:idx_tasks_user_status;not null"` // 所属用户 (外键关联 User.ID)
	Title     string     `gorm:"type:text;not null"`
	Status    TaskStatus `gorm:"type:varchar(16);index:idx_tasks_user_status;not null;default:'not_done'"`
	Priority  int        `gorm:"not null"`
	CreatedAt time.Time  `gorm:"autoCreateTime"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
}

// TaskField 是允许通过编辑接口修改的任务字段。
type TaskField string

const (
	FieldTitle    TaskField = "title"
	FieldPriority TaskField = "priority"
)

// Column 返回字段对应的数据库列名。第二个返回值表示字段是否在白名单内。
func (f TaskField) Column() (string, bool) {
	switch f {
	case FieldTitle:
		return "title", true
	case FieldPriority:
		return "priority", true
	}
	return "", false
}
