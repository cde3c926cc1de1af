// Package domain 定义了应用程序中使用的核心数据结构 (数据库模型与会话)。
package domain

import "time"

// User 表示应用程序中的用户。
type User struct {
	ID        uint      `gorm:"primaryKey"`                                          // 用户唯一标识符 (主键)
	Username  string    `gorm:"type:varchar(191);uniqueIndex:idx_username;not null"` // 用户名，区分大小写，唯一
	Password  string    `gorm:"type:text;not null"`                                  // 存储的是哈希后的密码，不能为空
	CreatedAt time.Time `gorm:"autoCreateTime"`                                      // 用户记录创建时间 (GORM 自动填充)
	UpdatedAt time.Time `gorm:"autoUpdateTime"`                                      // 最后一次修改密码的时间
}
