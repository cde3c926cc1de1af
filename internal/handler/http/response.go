package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"todo-app/internal/middleware"
)

// flash 分类
const (
	flashSuccess = "success"
	flashInfo    = "info"
	flashDanger  = "danger"
	flashError   = "error"
)

// saveSession 在写响应之前持久化会话；失败只记录日志，响应照常返回
func saveSession(c *gin.Context) {
	if err := middleware.SaveSession(c); err != nil {
		logrus.WithError(err).WithField("path", c.Request.URL.Path).Error("Failed to save session")
	}
}

// redirect 保存会话后返回 302
func redirect(c *gin.Context, location string) {
	saveSession(c)
	c.Redirect(http.StatusFound, location)
}

// render 渲染页面，并消费会话中的提示消息
func render(c *gin.Context, name, title string, data gin.H) {
	sess := middleware.GetSession(c)
	if data == nil {
		data = gin.H{}
	}
	data["Title"] = title
	data["LoggedIn"] = sess.IsAuthenticated()
	data["Flashes"] = sess.PopFlashes()
	saveSession(c)
	c.HTML(http.StatusOK, name, data)
}

// EditTaskResponse 是内联编辑接口的 JSON 响应
type EditTaskResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// jsonResponse 保存会话后返回 JSON
func jsonResponse(c *gin.Context, code int, data interface{}) {
	saveSession(c)
	c.JSON(code, data)
}
