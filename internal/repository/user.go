package repository

import (
	"context"

	"todo-app/internal/domain"
)

// UserRepository 定义了用户数据的存储和检索操作。
type UserRepository interface {
	// FindByUsername 根据用户名精确查找用户 (区分大小写)。
	// 如果用户不存在，返回 ErrUserNotFound。
	FindByUsername(ctx context.Context, username string) (*domain.User, error)

	// FindByID 根据用户 ID 查找用户。
	// 如果用户不存在，返回 ErrUserNotFound。
	FindByID(ctx context.Context, id uint) (*domain.User, error)

	// Create 插入新用户，用户名冲突时返回 ErrDuplicateEntry。
	Create(ctx context.Context, user *domain.User) error

	// UpdatePassword 覆盖指定用户的密码哈希。
	UpdatePassword(ctx context.Context, id uint, passwordHash string) error
}
