package service_test

import (
	"context"
	"errors"
	"testing"

	"todo-app/internal/domain"
	"todo-app/internal/repository"
	"todo-app/internal/repository/mocks"
	"todo-app/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestTaskService_AddTask_DefaultPriority(t *testing.T) {
	mockTaskRepo := new(mocks.TaskRepository)
	taskService := service.NewTaskService(mockTaskRepo)
	ctx := context.Background()

	mockTaskRepo.On("Create", ctx, mock.MatchedBy(func(task *domain.Task) bool {
		return task.UserID == 1 && task.Title == "Buy milk" && task.Priority == domain.DefaultPriority
	})).
		Run(func(args mock.Arguments) { args.Get(1).(*domain.Task).ID = 9 }).
		Return(nil).
		Once()

	task, err := taskService.AddTask(ctx, 1, "  Buy milk ", "")

	require.NoError(t, err)
	assert.Equal(t, uint(9), task.ID)
	mockTaskRepo.AssertExpectations(t)
}

func TestTaskService_AddTask_ExplicitPriority(t *testing.T) {
	mockTaskRepo := new(mocks.TaskRepository)
	taskService := service.NewTaskService(mockTaskRepo)
	ctx := context.Background()

	mockTaskRepo.On("Create", ctx, mock.MatchedBy(func(task *domain.Task) bool {
		return task.Priority == 5
	})).Return(nil).Once()

	_, err := taskService.AddTask(ctx, 1, "Call bank", "5")

	require.NoError(t, err)
	mockTaskRepo.AssertExpectations(t)
}

func TestTaskService_AddTask_Invalid(t *testing.T) {
	mockTaskRepo := new(mocks.TaskRepository)
	taskService := service.NewTaskService(mockTaskRepo)

	_, err := taskService.AddTask(context.Background(), 1, "   ", "1")
	assert.ErrorIs(t, err, service.ErrEmptyTitle)

	_, err = taskService.AddTask(context.Background(), 1, "x", "high")
	assert.ErrorIs(t, err, service.ErrInvalidPriority)

	mockTaskRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestTaskService_AddTask_StorageError(t *testing.T) {
	mockTaskRepo := new(mocks.TaskRepository)
	taskService := service.NewTaskService(mockTaskRepo)
	ctx := context.Background()

	mockTaskRepo.On("Create", ctx, mock.Anything).Return(errors.New("disk full")).Once()

	_, err := taskService.AddTask(ctx, 1, "x", "")

	assert.ErrorIs(t, err, service.ErrInternalServer)
	assert.NotContains(t, service.UserMessage(err), "disk full", "存储错误细节不能暴露给用户")
}

func TestTaskService_MarkDone_NotOwned(t *testing.T) {
	mockTaskRepo := new(mocks.TaskRepository)
	taskService := service.NewTaskService(mockTaskRepo)
	ctx := context.Background()

	mockTaskRepo.On("MarkDone", ctx, uint(2), uint(40)).Return(repository.ErrTaskNotFound).Once()

	err := taskService.MarkDone(ctx, 2, 40)

	assert.ErrorIs(t, err, service.ErrTaskNotFound)
	mockTaskRepo.AssertExpectations(t)
}

func TestTaskService_DeleteCompletedTask(t *testing.T) {
	mockTaskRepo := new(mocks.TaskRepository)
	taskService := service.NewTaskService(mockTaskRepo)
	ctx := context.Background()

	mockTaskRepo.On("DeleteCompleted", ctx, uint(1), uint(3)).Return(nil).Once()
	mockTaskRepo.On("Delete", ctx, uint(1), uint(4)).Return(errors.New("locked")).Once()

	assert.NoError(t, taskService.DeleteCompletedTask(ctx, 1, 3))
	assert.ErrorIs(t, taskService.DeleteTask(ctx, 1, 4), service.ErrInternalServer)
	mockTaskRepo.AssertExpectations(t)
}

func TestTaskService_EditTask(t *testing.T) {
	ctx := context.Background()

	t.Run("title", func(t *testing.T) {
		mockTaskRepo := new(mocks.TaskRepository)
		mockTaskRepo.On("UpdateField", ctx, uint(1), uint(2), domain.FieldTitle, "New title").Return(nil).Once()

		err := service.NewTaskService(mockTaskRepo).EditTask(ctx, 1, 2, "title", " New title ")

		require.NoError(t, err)
		mockTaskRepo.AssertExpectations(t)
	})

	t.Run("priority as number", func(t *testing.T) {
		mockTaskRepo := new(mocks.TaskRepository)
		mockTaskRepo.On("UpdateField", ctx, uint(1), uint(2), domain.FieldPriority, 4).Return(nil).Once()

		err := service.NewTaskService(mockTaskRepo).EditTask(ctx, 1, 2, "priority", float64(4))

		require.NoError(t, err)
		mockTaskRepo.AssertExpectations(t)
	})

	t.Run("priority as string", func(t *testing.T) {
		mockTaskRepo := new(mocks.TaskRepository)
		mockTaskRepo.On("UpdateField", ctx, uint(1), uint(2), domain.FieldPriority, 7).Return(nil).Once()

		err := service.NewTaskService(mockTaskRepo).EditTask(ctx, 1, 2, "priority", "7")

		require.NoError(t, err)
		mockTaskRepo.AssertExpectations(t)
	})

	t.Run("rejections", func(t *testing.T) {
		mockTaskRepo := new(mocks.TaskRepository)
		taskService := service.NewTaskService(mockTaskRepo)

		assert.ErrorIs(t, taskService.EditTask(ctx, 1, 2, "title", ""), service.ErrEmptyValue)
		assert.ErrorIs(t, taskService.EditTask(ctx, 1, 2, "title", nil), service.ErrEmptyValue)
		assert.ErrorIs(t, taskService.EditTask(ctx, 1, 2, "status", "done"), service.ErrInvalidField)
		assert.ErrorIs(t, taskService.EditTask(ctx, 1, 2, "priority", 1.5), service.ErrInvalidPriority)
		assert.ErrorIs(t, taskService.EditTask(ctx, 1, 2, "title", true), service.ErrInvalidValue)
		mockTaskRepo.AssertNotCalled(t, "UpdateField", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("not found", func(t *testing.T) {
		mockTaskRepo := new(mocks.TaskRepository)
		mockTaskRepo.On("UpdateField", ctx, uint(1), uint(99), domain.FieldTitle, "x").Return(repository.ErrTaskNotFound).Once()

		err := service.NewTaskService(mockTaskRepo).EditTask(ctx, 1, 99, "title", "x")

		assert.ErrorIs(t, err, service.ErrTaskNotFound)
	})
}

func TestTaskService_UpdatePriority(t *testing.T) {
	ctx := context.Background()
	mockTaskRepo := new(mocks.TaskRepository)
	taskService := service.NewTaskService(mockTaskRepo)

	// 空值: 不做任何事
	updated, err := taskService.UpdatePriority(ctx, 1, 2, "")
	require.NoError(t, err)
	assert.False(t, updated)

	_, err = taskService.UpdatePriority(ctx, 1, 2, "abc")
	assert.ErrorIs(t, err, service.ErrInvalidPriority)
	mockTaskRepo.AssertNotCalled(t, "UpdatePriority", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	mockTaskRepo.On("UpdatePriority", ctx, uint(1), uint(2), 3).Return(nil).Once()
	updated, err = taskService.UpdatePriority(ctx, 1, 2, "3")
	require.NoError(t, err)
	assert.True(t, updated)
	mockTaskRepo.AssertExpectations(t)
}

func TestTaskService_ListActive(t *testing.T) {
	ctx := context.Background()
	mockTaskRepo := new(mocks.TaskRepository)
	want := []domain.Task{{ID: 2, Title: "b", Priority: 5}, {ID: 1, Title: "a", Priority: 2}}
	mockTaskRepo.On("ListByStatus", ctx, uint(1), domain.StatusNotDone).Return(want, nil).Once()
	mockTaskRepo.On("ListByStatus", ctx, uint(1), domain.StatusDone).Return(nil, errors.New("boom")).Once()

	taskService := service.NewTaskService(mockTaskRepo)

	got, err := taskService.ListActive(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = taskService.ListCompleted(ctx, 1)
	assert.ErrorIs(t, err, service.ErrInternalServer)
}
