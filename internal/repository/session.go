package repository

import (
	"context"
	"time"

	"todo-app/internal/domain"
)

// SessionStore 定义了服务端会话状态的存储，通常由 Redis 实现。
type SessionStore interface {
	// Load 读取会话。不存在或已过期时返回 ErrSessionNotFound。
	Load(ctx context.Context, id string) (*domain.Session, error)

	// Save 写入会话并刷新过期时间。
	Save(ctx context.Context, session *domain.Session, ttl time.Duration) error

	// Delete 删除会话，不存在时不报错。
	Delete(ctx context.Context, id string) error
}
