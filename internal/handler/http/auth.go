package http

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"todo-app/internal/middleware"
	"todo-app/internal/service"
)

// AuthHandler 封装了与用户认证相关的 HTTP 处理逻辑
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler 创建 AuthHandler 实例
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// LoginPage 渲染登录页
func (h *AuthHandler) LoginPage(c *gin.Context) {
	render(c, "login.tmpl", "Log in", nil)
}

// Login 处理登录表单
func (h *AuthHandler) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	user, err := h.authService.Login(c.Request.Context(), username, password)
	if err != nil {
		// 用户不存在和密码错误使用同一条提示
		HandleServiceError(c, err)
		redirect(c, "/login")
		return
	}

	// 登录时更换会话 ID
	middleware.RegenerateSession(c)
	middleware.GetSession(c).Login(user.ID)
	middleware.AddFlash(c, flashSuccess, "Login successful!")
	redirect(c, "/")
}

// RegisterPage 渲染注册页
func (h *AuthHandler) RegisterPage(c *gin.Context) {
	render(c, "register.tmpl", "Register", nil)
}

// Register 处理注册表单
func (h *AuthHandler) Register(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")
	confirm := c.PostForm("confirm_password")

	newUser, err := h.authService.Register(c.Request.Context(), username, password, confirm)
	if err != nil {
		HandleServiceError(c, err)
		redirect(c, "/register")
		return
	}

	logrus.WithField("user_id", newUser.ID).Info("Handler.Register: User registered successfully")
	middleware.AddFlash(c, flashSuccess, "Registration successful! Please log in.")
	redirect(c, "/login")
}

// Logout 清空会话并回到登录页，未登录时同样生效
func (h *AuthHandler) Logout(c *gin.Context) {
	sess := middleware.GetSession(c)
	if sess.IsAuthenticated() {
		logrus.WithField("user_id", sess.UserID).Info("Handler.Logout: User logged out")
	}
	sess.Clear()
	middleware.RegenerateSession(c)
	middleware.AddFlash(c, flashInfo, "You have been logged out.")
	redirect(c, "/login")
}

// ChangePasswordPage 渲染修改密码页
func (h *AuthHandler) ChangePasswordPage(c *gin.Context) {
	render(c, "change_password.tmpl", "Change password", nil)
}

// ChangePassword 处理修改密码表单
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	err := h.authService.ChangePassword(
		c.Request.Context(),
		currentUser(c),
		c.PostForm("current_password"),
		c.PostForm("new_password"),
		c.PostForm("confirm_new_password"),
	)
	switch {
	case err == nil:
		middleware.AddFlash(c, flashSuccess, "Password changed successfully.")
		redirect(c, "/")
		return
	case errors.Is(err, service.ErrPasswordMismatch):
		middleware.AddFlash(c, flashDanger, "The new passwords do not match.")
	case errors.Is(err, service.ErrUserNotFound):
		middleware.AddFlash(c, flashDanger, service.UserMessage(service.ErrIncorrectPassword))
	case errors.Is(err, service.ErrInternalServer):
		middleware.AddFlash(c, flashDanger, "Error updating the password.")
	default:
		HandleServiceError(c, err)
	}
	redirect(c, "/change_password")
}
