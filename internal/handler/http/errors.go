package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"todo-app/internal/middleware"
	"todo-app/internal/service"
)

// HandleServiceError 把 Service 错误转换为一条 danger 提示消息。
// 业务错误使用对应的用户提示，其余错误记录日志后只展示通用提示。
func HandleServiceError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrInternalServer) || service.UserMessage(err) == service.GenericErrorMessage {
		logrus.WithError(err).WithField("path", c.Request.URL.Path).Error("Request failed with internal error")
	}
	middleware.AddFlash(c, flashDanger, service.UserMessage(err))
}

// taskIDParam 解析路由中的任务 ID。不是整数时返回 404 并中止。
func taskIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatus(http.StatusNotFound)
		return 0, false
	}
	return uint(id), true
}

// currentUser 取出 RequireLogin 设置的用户 ID
func currentUser(c *gin.Context) uint {
	userID, _ := middleware.CurrentUserID(c)
	return userID
}
