// Package mocks 提供基于 testify/mock 的仓库接口实现，供服务层单元测试使用。
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"todo-app/internal/domain"
)

// UserRepository 是 repository.UserRepository 的 Mock
type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *UserRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *UserRepository) Create(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *UserRepository) UpdatePassword(ctx context.Context, id uint, passwordHash string) error {
	return m.Called(ctx, id, passwordHash).Error(0)
}
