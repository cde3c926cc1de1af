package service

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"

	"todo-app/internal/domain"
	"todo-app/internal/repository"

	"github.com/sirupsen/logrus"
)

// TaskService 负责任务相关的业务逻辑。
// 所有方法都显式接收当前用户 ID，仓库错误在这里记录日志并转换为业务错误。
type TaskService struct {
	taskRepo repository.TaskRepository
}

// NewTaskService 创建 TaskService 实例。
func NewTaskService(taskRepo repository.TaskRepository) *TaskService {
	if taskRepo == nil {
		panic("TaskRepository cannot be nil for TaskService")
	}
	return &TaskService{taskRepo: taskRepo}
}

// ListActive 返回用户未完成的任务。
func (s *TaskService) ListActive(ctx context.Context, userID uint) ([]domain.Task, error) {
	return s.list(ctx, userID, domain.StatusNotDone)
}

// ListCompleted 返回用户已完成的任务。
func (s *TaskService) ListCompleted(ctx context.Context, userID uint) ([]domain.Task, error) {
	return s.list(ctx, userID, domain.StatusDone)
}

func (s *TaskService) list(ctx context.Context, userID uint, status domain.TaskStatus) ([]domain.Task, error) {
	tasks, err := s.taskRepo.ListByStatus(ctx, userID, status)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{"user_id": userID, "status": status}).Error("Failed to list tasks")
		return nil, ErrInternalServer
	}
	return tasks, nil
}

// AddTask 创建新任务。priority 为空时使用默认优先级。
func (s *TaskService) AddTask(ctx context.Context, userID uint, title, priority string) (*domain.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	p := domain.DefaultPriority
	if strings.TrimSpace(priority) != "" {
		parsed, err := ParsePriority(priority)
		if err != nil {
			return nil, err
		}
		p = parsed
	}

	task := &domain.Task{UserID: userID, Title: title, Priority: p}
	if err := s.taskRepo.Create(ctx, task); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("Failed to create task")
		return nil, ErrInternalServer
	}
	logrus.WithFields(logrus.Fields{"user_id": userID, "task_id": task.ID}).Info("Task created")
	return task, nil
}

// MarkDone 将任务标记为已完成。
func (s *TaskService) MarkDone(ctx context.Context, userID, taskID uint) error {
	return s.mutate(userID, taskID, "mark done", s.taskRepo.MarkDone(ctx, userID, taskID))
}

// DeleteTask 删除任务。
func (s *TaskService) DeleteTask(ctx context.Context, userID, taskID uint) error {
	return s.mutate(userID, taskID, "delete", s.taskRepo.Delete(ctx, userID, taskID))
}

// DeleteCompletedTask 删除已完成的任务；未完成的任务不会被删除。
func (s *TaskService) DeleteCompletedTask(ctx context.Context, userID, taskID uint) error {
	return s.mutate(userID, taskID, "delete completed", s.taskRepo.DeleteCompleted(ctx, userID, taskID))
}

// EditTask 修改任务的 title 或 priority。
// value 是 JSON 解码后的值: 字符串或数字。
func (s *TaskService) EditTask(ctx context.Context, userID, taskID uint, field string, value interface{}) error {
	if isEmptyValue(value) {
		return ErrEmptyValue
	}
	taskField := domain.TaskField(field)
	if _, ok := taskField.Column(); !ok {
		return ErrInvalidField
	}

	var newValue interface{}
	switch taskField {
	case domain.FieldTitle:
		title, err := titleValue(value)
		if err != nil {
			return err
		}
		newValue = title
	case domain.FieldPriority:
		p, err := priorityValue(value)
		if err != nil {
			return err
		}
		newValue = p
	}

	return s.mutate(userID, taskID, "edit "+field, s.taskRepo.UpdateField(ctx, userID, taskID, taskField, newValue))
}

// UpdatePriority 设置任务优先级。priority 为空时不做任何事并返回 false。
func (s *TaskService) UpdatePriority(ctx context.Context, userID, taskID uint, priority string) (bool, error) {
	if strings.TrimSpace(priority) == "" {
		return false, nil
	}
	p, err := ParsePriority(priority)
	if err != nil {
		return false, err
	}
	if err := s.mutate(userID, taskID, "update priority", s.taskRepo.UpdatePriority(ctx, userID, taskID, p)); err != nil {
		return false, err
	}
	return true, nil
}

// mutate 统一处理修改类操作的仓库错误
func (s *TaskService) mutate(userID, taskID uint, op string, err error) error {
	logCtx := logrus.WithFields(logrus.Fields{"user_id": userID, "task_id": taskID, "op": op})
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			logCtx.Warn("Task operation affected no rows")
			return ErrTaskNotFound
		}
		logCtx.WithError(err).Error("Task operation failed")
		return ErrInternalServer
	}
	logCtx.Debug("Task operation succeeded")
	return nil
}

// ParsePriority 把表单中的优先级解析为整数。
func ParsePriority(raw string) (int, error) {
	p, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, ErrInvalidPriority
	}
	return p, nil
}

func isEmptyValue(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	}
	return false
}

func titleValue(value interface{}) (string, error) {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	}
	return "", ErrInvalidValue
}

func priorityValue(value interface{}) (int, error) {
	switch v := value.(type) {
	case string:
		return ParsePriority(v)
	case float64:
		if v != math.Trunc(v) || v > math.MaxInt32 || v < math.MinInt32 {
			return 0, ErrInvalidPriority
		}
		return int(v), nil
	}
	return 0, ErrInvalidPriority
}
