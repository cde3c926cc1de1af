package redisstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"todo-app/internal/domain"
	"todo-app/internal/repository"
)

// RedisSessionStore 是 SessionStore 接口的 Redis 实现
// 每个会话是一个 JSON 字符串 key，过期由 Redis TTL 负责
type RedisSessionStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisSessionStore 创建 RedisSessionStore 实例
func NewRedisSessionStore(client *redis.Client, keyPrefix string) *RedisSessionStore {
	if client == nil {
		panic("redis client cannot be nil for RedisSessionStore")
	}
	if keyPrefix == "" {
		keyPrefix = "todo:"
	}
	return &RedisSessionStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

func (r *RedisSessionStore) sessionKey(id string) string {
	return fmt.Sprintf("%ssession:%s", r.keyPrefix, id)
}

// Load 读取会话
func (r *RedisSessionStore) Load(ctx context.Context, id string) (*domain.Session, error) {
	key := r.sessionKey(id)
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrSessionNotFound
		}
		return nil, fmt.Errorf("redis: failed to get session from %s: %w", key, err)
	}
	var sess domain.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("redis: failed to decode session from %s: %w", key, err)
	}
	sess.ID = id
	return &sess, nil
}

// Save 写入会话并设置 TTL (ttl <= 0 表示不过期)
func (r *RedisSessionStore) Save(ctx context.Context, sess *domain.Session, ttl time.Duration) error {
	if sess == nil || sess.ID == "" {
		return fmt.Errorf("redis: cannot save session without id")
	}
	if ttl < 0 {
		ttl = 0
	}
	key := r.sessionKey(sess.ID)
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("redis: failed to encode session %s: %w", key, err)
	}
	if err := r.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis: failed to save session to %s: %w", key, err)
	}
	return nil
}

// Delete 删除会话
func (r *RedisSessionStore) Delete(ctx context.Context, id string) error {
	key := r.sessionKey(id)
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis: failed to delete session %s: %w", key, err)
	}
	return nil
}
