package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/sirupsen/logrus"

	"todo-app/internal/domain"
	"todo-app/internal/repository"
)

const (
	// SessionCookieName 是保存签名会话令牌的 Cookie 名
	SessionCookieName = "todo_session"

	sessionStateKey = "session_state"
)

// ErrInvalidSessionToken 表示 Cookie 中的令牌无法通过校验
var ErrInvalidSessionToken = errors.New("invalid session token")

// sessionClaims 是会话 Cookie 中的 JWT 内容，只携带会话 ID
type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// SessionCodec 负责会话 ID 与签名令牌之间的转换 (HS256)。
type SessionCodec struct {
	secret []byte
}

// NewSessionCodec 创建 SessionCodec，secret 不能为空。
func NewSessionCodec(secret string) (*SessionCodec, error) {
	if secret == "" {
		return nil, fmt.Errorf("session secret key cannot be empty")
	}
	return &SessionCodec{secret: []byte(secret)}, nil
}

// Encode 签发携带会话 ID 的令牌
func (c *SessionCodec) Encode(sessionID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return token, nil
}

// Decode 校验令牌签名和过期时间，返回会话 ID
func (c *SessionCodec) Decode(tokenStr string) (string, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		// 只接受 HMAC 签名
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSessionToken, err)
	}
	if !token.Valid || claims.SessionID == "" {
		return "", ErrInvalidSessionToken
	}
	return claims.SessionID, nil
}

// SessionManager 把服务端会话绑定到请求上
type SessionManager struct {
	store  repository.SessionStore
	codec  *SessionCodec
	ttl    time.Duration
	secure bool
}

// NewSessionManager 创建 SessionManager 实例
// secure 为 true 时 Cookie 只通过 HTTPS 发送
func NewSessionManager(store repository.SessionStore, codec *SessionCodec, ttl time.Duration, secure bool) *SessionManager {
	if store == nil {
		panic("SessionStore cannot be nil for SessionManager")
	}
	if codec == nil {
		panic("SessionCodec cannot be nil for SessionManager")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionManager{store: store, codec: codec, ttl: ttl, secure: secure}
}

// sessionState 是单个请求内的会话状态
type sessionState struct {
	manager   *SessionManager
	session   *domain.Session
	persisted bool // 会话已存在于存储中
	committed bool // 本次请求已经写出 Cookie
}

// Middleware 返回加载会话的 Gin 中间件。
// 处理器应在写响应前调用 SaveSession；未调用时在处理链结束后补存。
func (m *SessionManager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		state := &sessionState{manager: m}
		state.session, state.persisted = m.load(c)
		c.Set(sessionStateKey, state)

		c.Next()

		if state.committed {
			return
		}
		if c.Writer.Written() {
			if state.session.Dirty() {
				logrus.WithField("path", c.Request.URL.Path).Warn("Session modified after response was written; changes dropped")
			}
			return
		}
		if err := SaveSession(c); err != nil {
			logrus.WithError(err).Error("Failed to save session after handler")
		}
	}
}

// load 从 Cookie 恢复会话，任何失败都退化为新的匿名会话
func (m *SessionManager) load(c *gin.Context) (*domain.Session, bool) {
	tokenStr, err := c.Cookie(SessionCookieName)
	if err != nil || tokenStr == "" {
		return m.newSession(), false
	}
	logCtx := logrus.WithField("client_ip", c.ClientIP())

	sessionID, err := m.codec.Decode(tokenStr)
	if err != nil {
		logCtx.WithError(err).Debug("Session cookie rejected")
		return m.newSession(), false
	}
	sess, err := m.store.Load(c.Request.Context(), sessionID)
	if err != nil {
		if !errors.Is(err, repository.ErrSessionNotFound) {
			logCtx.WithError(err).Warn("Failed to load session, starting a new one")
		}
		return m.newSession(), false
	}
	return sess, true
}

func (m *SessionManager) newSession() *domain.Session {
	return &domain.Session{ID: newSessionID(), CreatedAt: time.Now().UTC()}
}

// save 持久化会话并写出 Cookie
// 从未持久化且没有内容的匿名会话不写入存储
func (m *SessionManager) save(c *gin.Context, state *sessionState) error {
	sess := state.session
	if !state.persisted && !sess.Dirty() {
		state.committed = true
		return nil
	}
	if err := m.store.Save(c.Request.Context(), sess, m.ttl); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	token, err := m.codec.Encode(sess.ID, m.ttl)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, token, int(m.ttl.Seconds()), "/", "", m.secure, true)
	sess.MarkClean()
	state.persisted = true
	state.committed = true
	return nil
}

// regenerate 丢弃旧会话 ID 并换一个新的，内容保留
func (m *SessionManager) regenerate(c *gin.Context, state *sessionState) {
	if state.persisted {
		if err := m.store.Delete(c.Request.Context(), state.session.ID); err != nil {
			logrus.WithError(err).Warn("Failed to delete previous session")
		}
	}
	state.session.ID = newSessionID()
	state.session.MarkDirty()
	state.persisted = false
	state.committed = false
}

func getState(c *gin.Context) *sessionState {
	v, ok := c.Get(sessionStateKey)
	if !ok {
		return nil
	}
	state, _ := v.(*sessionState)
	return state
}

// GetSession 返回当前请求的会话。
// 没有挂载 Session 中间件时返回一个不会被保存的匿名会话。
func GetSession(c *gin.Context) *domain.Session {
	if state := getState(c); state != nil {
		return state.session
	}
	return &domain.Session{}
}

// SaveSession 持久化会话并写出 Cookie，必须在写响应之前调用。
func SaveSession(c *gin.Context) error {
	state := getState(c)
	if state == nil {
		return nil
	}
	return state.manager.save(c, state)
}

// RegenerateSession 更换会话 ID (登录和注销时使用，防止会话固定攻击)。
func RegenerateSession(c *gin.Context) {
	if state := getState(c); state != nil {
		state.manager.regenerate(c, state)
	}
}

// AddFlash 向当前会话追加一条提示消息
func AddFlash(c *gin.Context, category, message string) {
	GetSession(c).AddFlash(category, message)
}

func newSessionID() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand 失败意味着系统熵源不可用
		panic(fmt.Sprintf("failed to generate session id: %v", err))
	}
	return hex.EncodeToString(b)
}
