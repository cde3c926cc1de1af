package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"todo-app/internal/domain"
)

// UserIDKey 是认证通过后保存在 Gin 上下文中的用户 ID 键
const UserIDKey = "user_id"

// LoginRequiredMessage 是未登录访问受保护页面时的提示
const LoginRequiredMessage = "You must be logged in to access this page."

// GateDecision 是会话检查的结果: 继续处理，或者重定向到 Location。
type GateDecision struct {
	Allow    bool
	Location string
}

// Gate 判断请求是否带有已认证的会话，没有副作用。
type Gate struct {
	LoginPath string
}

// Check 返回对给定会话的决定
func (g Gate) Check(sess *domain.Session) GateDecision {
	if sess.IsAuthenticated() {
		return GateDecision{Allow: true}
	}
	loginPath := g.LoginPath
	if loginPath == "" {
		loginPath = "/login"
	}
	return GateDecision{Location: loginPath}
}

// RequireLogin 返回一个 Gin 中间件，在受保护的处理器前执行 Gate。
func RequireLogin(gate Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := GetSession(c)
		decision := gate.Check(sess)
		if !decision.Allow {
			logrus.WithField("path", c.Request.URL.Path).Debug("RequireLogin: anonymous request redirected")
			sess.AddFlash("danger", LoginRequiredMessage)
			if err := SaveSession(c); err != nil {
				logrus.WithError(err).Error("RequireLogin: failed to save session")
			}
			c.Redirect(http.StatusFound, decision.Location)
			c.Abort()
			return
		}

		c.Set(UserIDKey, sess.UserID)
		c.Next()
	}
}

// CurrentUserID 从 Gin 上下文中取出 RequireLogin 设置的用户 ID
func CurrentUserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return 0, false
	}
	userID, ok := v.(uint)
	return userID, ok && userID != 0
}
