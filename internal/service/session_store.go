package service

import (
	"context"
	"sync"
	"time"

	"github.com/Delerious28/Andrew-webshop2-sub000/internal/util"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// SessionStore 保存已注销的会话令牌黑名单
type SessionStore interface {
	Blacklist(token string, ttl time.Duration) error
	IsBlacklisted(token string) bool
}

// memorySessionStore 进程内黑名单，单实例部署够用
type memorySessionStore struct {
	mu     sync.RWMutex
	tokens map[string]time.Time
}

func newMemorySessionStore() *memorySessionStore {
	return &memorySessionStore{tokens: make(map[string]time.Time)}
}

func (s *memorySessionStore) Blacklist(token string, ttl time.Duration) error {
	s.mu.Lock()
	s.tokens[token] = time.Now().Add(ttl)
	s.mu.Unlock()
	return nil
}

func (s *memorySessionStore) IsBlacklisted(token string) bool {
	s.mu.RLock()
	expiry, exists := s.tokens[token]
	s.mu.RUnlock()
	if !exists {
		return false
	}
	if time.Now().After(expiry) {
		s.mu.Lock()
		delete(s.tokens, token)
		s.mu.Unlock()
		return false
	}
	return true
}

// redisSessionStore Redis 黑名单，多实例部署之间共享
type redisSessionStore struct {
	client *redis.Client
}

func (s *redisSessionStore) key(token string) string {
	return "session:blacklist:" + token
}

func (s *redisSessionStore) Blacklist(token string, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return s.client.Set(ctx, s.key(token), "1", ttl).Err()
}

func (s *redisSessionStore) IsBlacklisted(token string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	n, err := s.client.Exists(ctx, s.key(token)).Result()
	if err != nil {
		// Redis 不可用时放行，令牌本身仍有签名校验
		util.Logger.Error("查询令牌黑名单失败", zap.Error(err))
		return false
	}
	return n > 0
}

// NewSessionStore 创建会话黑名单存储。
// 配置了 Redis 时使用 Redis，否则退回进程内实现。
func NewSessionStore(redisAddr, redisPassword string) SessionStore {
	if redisAddr == "" {
		util.Logger.Info("未配置 Redis，使用进程内会话黑名单")
		return newMemorySessionStore()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		util.Logger.Error("Redis 连接失败，退回进程内会话黑名单", zap.Error(err))
		return newMemorySessionStore()
	}

	util.Logger.Info("会话黑名单使用 Redis", zap.String("addr", redisAddr))
	return &redisSessionStore{client: client}
}
