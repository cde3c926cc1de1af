package gormpersistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"todo-app/internal/domain"
	"todo-app/internal/repository"
)

// GormTaskRepository 是 TaskRepository 接口的 GORM 实现
// 每条语句都带 user_id 条件。
type GormTaskRepository struct {
	db *gorm.DB
}

// NewGormTaskRepository 创建 GormTaskRepository 实例
func NewGormTaskRepository(db *gorm.DB) *GormTaskRepository {
	if db == nil {
		panic("database connection cannot be nil for GormTaskRepository")
	}
	return &GormTaskRepository{db: db}
}

// ListByStatus 实现按状态查询用户的任务
func (r *GormTaskRepository) ListByStatus(ctx context.Context, userID uint, status domain.TaskStatus) ([]domain.Task, error) {
	tasks := make([]domain.Task, 0)
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, status).
		Order("priority DESC").
		Order("id ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list %s tasks for user %d: %w", status, userID, err)
	}
	return tasks, nil
}

// Create 实现插入新任务
func (r *GormTaskRepository) Create(ctx context.Context, task *domain.Task) error {
	task.Status = domain.StatusNotDone
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("gorm: create task for user %d: %w", task.UserID, err)
	}
	return nil
}

// MarkDone 实现将任务标记为完成
func (r *GormTaskRepository) MarkDone(ctx context.Context, userID, taskID uint) error {
	result := r.owned(ctx, userID, taskID).Update("status", domain.StatusDone)
	return affected(result, fmt.Sprintf("mark task %d done", taskID))
}

// Delete 实现删除任务
func (r *GormTaskRepository) Delete(ctx context.Context, userID, taskID uint) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", taskID, userID).
		Delete(&domain.Task{})
	return affected(result, fmt.Sprintf("delete task %d", taskID))
}

// DeleteCompleted 实现只删除已完成的任务
func (r *GormTaskRepository) DeleteCompleted(ctx context.Context, userID, taskID uint) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ? AND status = ?", taskID, userID, domain.StatusDone).
		Delete(&domain.Task{})
	return affected(result, fmt.Sprintf("delete completed task %d", taskID))
}

// UpdateField 实现更新白名单字段
func (r *GormTaskRepository) UpdateField(ctx context.Context, userID, taskID uint, field domain.TaskField, value interface{}) error {
	column, ok := field.Column()
	if !ok {
		return fmt.Errorf("gorm: update task %d: field %q is not editable", taskID, field)
	}
	result := r.owned(ctx, userID, taskID).Update(column, value)
	return affected(result, fmt.Sprintf("update task %d %s", taskID, column))
}

// UpdatePriority 实现设置优先级
func (r *GormTaskRepository) UpdatePriority(ctx context.Context, userID, taskID uint, priority int) error {
	result := r.owned(ctx, userID, taskID).Update("priority", priority)
	return affected(result, fmt.Sprintf("update task %d priority", taskID))
}

// owned 返回限定为某个用户某条任务的查询
func (r *GormTaskRepository) owned(ctx context.Context, userID, taskID uint) *gorm.DB {
	return r.db.WithContext(ctx).Model(&domain.Task{}).Where("id = ? AND user_id = ?", taskID, userID)
}

// affected 将 GORM 结果转换为仓库错误: 数据库错误被包装，0 行受影响视为未找到。
func affected(result *gorm.DB, op string) error {
	if result.Error != nil {
		return fmt.Errorf("gorm: %s: %w", op, result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrTaskNotFound
	}
	return nil
}
