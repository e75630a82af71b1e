package services

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

const revokedTokenPrefix = "revoked_token:"

// SessionStore 记录已注销的令牌
type SessionStore interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// NewSessionStore client 为 nil 时注销不生效
func NewSessionStore(client *redis.Client) SessionStore {
	if client == nil {
		return noopSessionStore{}
	}
	return &redisSessionStore{client: client}
}

type redisSessionStore struct {
	client *redis.Client
}

// Revoke 键的过期时间与令牌剩余有效期一致
func (s *redisSessionStore) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if tokenID == "" || ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, revokedTokenPrefix+tokenID, 1, ttl).Err()
}

func (s *redisSessionStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, nil
	}
	n, err := s.client.Exists(ctx, revokedTokenPrefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type noopSessionStore struct{}

func (noopSessionStore) Revoke(context.Context, string, time.Time) error { return nil }

func (noopSessionStore) IsRevoked(context.Context, string) (bool, error) { return false, nil }
