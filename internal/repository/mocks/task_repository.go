package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"todo-app/internal/domain"
)

// TaskRepository 是 repository.TaskRepository 的 Mock
type TaskRepository struct {
	mock.Mock
}

func (m *TaskRepository) ListByStatus(ctx context.Context, userID uint, status domain.TaskStatus) ([]domain.Task, error) {
	args := m.Called(ctx, userID, status)
	tasks, _ := args.Get(0).([]domain.Task)
	return tasks, args.Error(1)
}

func (m *TaskRepository) Create(ctx context.Context, task *domain.Task) error {
	return m.Called(ctx, task).Error(0)
}

func (m *TaskRepository) MarkDone(ctx context.Context, userID, taskID uint) error {
	return m.Called(ctx, userID, taskID).Error(0)
}

func (m *TaskRepository) Delete(ctx context.Context, userID, taskID uint) error {
	return m.Called(ctx, userID, taskID).Error(0)
}

func (m *TaskRepository) DeleteCompleted(ctx context.Context, userID, taskID uint) error {
	return m.Called(ctx, userID, taskID).Error(0)
}

func (m *TaskRepository) UpdateField(ctx context.Context, userID, taskID uint, field domain.TaskField, value interface{}) error {
	return m.Called(ctx, userID, taskID, field, value).Error(0)
}

func (m *TaskRepository) UpdatePriority(ctx context.Context, userID, taskID uint, priority int) error {
	return m.Called(ctx, userID, taskID, priority).Error(0)
}
