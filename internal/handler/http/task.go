package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"todo-app/internal/domain"
	"todo-app/internal/middleware"
	"todo-app/internal/service"
)

// TaskHandler 处理任务列表相关的请求，所有路由都要求已登录
type TaskHandler struct {
	taskService *service.TaskService
}

// NewTaskHandler 创建 TaskHandler 实例
func NewTaskHandler(taskService *service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// EditTaskRequest 是内联编辑的请求体，value 可以是字符串或数字
type EditTaskRequest struct {
	Field string      `json:"field"`
	Value interface{} `json:"value"`
}

// Index 渲染未完成和已完成的任务列表
func (h *TaskHandler) Index(c *gin.Context) {
	ctx := c.Request.Context()
	userID := currentUser(c)

	tasks, err := h.taskService.ListActive(ctx, userID)
	if err != nil {
		HandleServiceError(c, err)
	}
	completed, err := h.taskService.ListCompleted(ctx, userID)
	if err != nil {
		HandleServiceError(c, err)
	}
	render(c, "index.tmpl", "Tasks", gin.H{
		"Tasks":          nonNil(tasks),
		"CompletedTasks": nonNil(completed),
	})
}

// AddTask 处理新增任务表单 (字段 task, priority)
func (h *TaskHandler) AddTask(c *gin.Context) {
	task, err := h.taskService.AddTask(c.Request.Context(), currentUser(c), c.PostForm("task"), c.PostForm("priority"))
	if err != nil {
		HandleServiceError(c, err)
	} else {
		logrus.WithField("task_id", task.ID).Debug("Handler.AddTask: Task added")
		middleware.AddFlash(c, flashSuccess, "Task added successfully!")
	}
	redirect(c, "/")
}

// MarkDone 将任务标记为已完成
func (h *TaskHandler) MarkDone(c *gin.Context) {
	taskID, ok := taskIDParam(c)
	if !ok {
		return
	}
	if err := h.taskService.MarkDone(c.Request.Context(), currentUser(c), taskID); err != nil {
		HandleServiceError(c, err)
	} else {
		middleware.AddFlash(c, flashSuccess, "Task marked as done!")
	}
	redirect(c, "/")
}

// Delete 删除任务
func (h *TaskHandler) Delete(c *gin.Context) {
	taskID, ok := taskIDParam(c)
	if !ok {
		return
	}
	if err := h.taskService.DeleteTask(c.Request.Context(), currentUser(c), taskID); err != nil {
		HandleServiceError(c, err)
	} else {
		middleware.AddFlash(c, flashSuccess, "Task deleted successfully.")
	}
	redirect(c, "/")
}

// DeleteCompleted 删除已完成的任务
func (h *TaskHandler) DeleteCompleted(c *gin.Context) {
	taskID, ok := taskIDParam(c)
	if !ok {
		return
	}
	if err := h.taskService.DeleteCompletedTask(c.Request.Context(), currentUser(c), taskID); err != nil {
		middleware.AddFlash(c, flashDanger, "Error deleting completed task.")
	} else {
		middleware.AddFlash(c, flashSuccess, "Completed task deleted successfully.")
	}
	redirect(c, "/completed_tasks")
}

// CompletedTasks 渲染已完成任务页
func (h *TaskHandler) CompletedTasks(c *gin.Context) {
	completed, err := h.taskService.ListCompleted(c.Request.Context(), currentUser(c))
	if err != nil {
		HandleServiceError(c, err)
	}
	render(c, "completed_tasks.tmpl", "Completed tasks", gin.H{"CompletedTasks": nonNil(completed)})
}

// EditTask 处理内联编辑，返回 {success, message}，失败时状态码为 400
func (h *TaskHandler) EditTask(c *gin.Context) {
	taskID, ok := taskIDParam(c)
	if !ok {
		return
	}
	var req EditTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.EditTask: Invalid input format")
		editFailed(c, "Invalid request.")
		return
	}

	err := h.taskService.EditTask(c.Request.Context(), currentUser(c), taskID, req.Field, req.Value)
	switch {
	case err == nil:
		msg := fmt.Sprintf("Task %s updated successfully.", req.Field)
		middleware.AddFlash(c, flashSuccess, msg)
		jsonResponse(c, http.StatusOK, EditTaskResponse{Success: true, Message: msg})
	case errors.Is(err, service.ErrEmptyValue):
		editFailed(c, fmt.Sprintf("%s cannot be empty.", req.Field))
	case errors.Is(err, service.ErrInvalidField),
		errors.Is(err, service.ErrInvalidValue),
		errors.Is(err, service.ErrInvalidPriority):
		editFailed(c, service.UserMessage(err))
	default:
		editFailed(c, "Failed to update task.")
	}
}

func editFailed(c *gin.Context, msg string) {
	middleware.AddFlash(c, flashError, msg)
	jsonResponse(c, http.StatusBadRequest, EditTaskResponse{Success: false, Message: msg})
}

// UpdatePriority 处理优先级表单，priority 为空时什么也不做
func (h *TaskHandler) UpdatePriority(c *gin.Context) {
	taskID, ok := taskIDParam(c)
	if !ok {
		return
	}
	updated, err := h.taskService.UpdatePriority(c.Request.Context(), currentUser(c), taskID, c.PostForm("priority"))
	if err != nil {
		HandleServiceError(c, err)
	} else if updated {
		middleware.AddFlash(c, flashSuccess, "Task priority updated.")
	}
	redirect(c, "/")
}

func nonNil(tasks []domain.Task) []domain.Task {
	if tasks == nil {
		return []domain.Task{}
	}
	return tasks
}
