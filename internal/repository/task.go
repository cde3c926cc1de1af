package repository

import (
	"context"

	"todo-app/internal/domain"
)

// TaskRepository 定义了任务的存储操作。
// 所有方法都按 userID 限定范围，不会读取或修改其他用户的任务。
// 更新和删除未影响任何行时返回 ErrTaskNotFound。
type TaskRepository interface {
	// ListByStatus 返回用户指定状态的任务，按 priority DESC, id ASC 排序。
	ListByStatus(ctx context.Context, userID uint, status domain.TaskStatus) ([]domain.Task, error)

	// Create 插入新任务 (状态总是 not_done)。
	Create(ctx context.Context, task *domain.Task) error

	// MarkDone 将任务状态置为 done。
	MarkDone(ctx context.Context, userID, taskID uint) error

	// Delete 删除任务，不区分状态。
	Delete(ctx context.Context, userID, taskID uint) error

	// DeleteCompleted 仅当任务已完成时删除。
	DeleteCompleted(ctx context.Context, userID, taskID uint) error

	// UpdateField 更新白名单内的单个字段 (title 或 priority)。
	UpdateField(ctx context.Context, userID, taskID uint, field domain.TaskField, value interface{}) error

	// UpdatePriority 设置任务优先级。
	UpdatePriority(ctx context.Context, userID, taskID uint, priority int) error
}
