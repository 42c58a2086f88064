package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/medbook/vaccine-scheduler/internal/identity"
)

const tokenKeyPrefix = "session:"

// RedisStore maps opaque bearer tokens to authenticated identities. Tokens
// expire after the configured TTL; logout deletes them eagerly.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

type sessionRecord struct {
	Role     identity.Role `json:"role"`
	Username string        `json:"username"`
}

// Create issues a fresh token for an authenticated identity.
func (s *RedisStore) Create(ctx context.Context, role identity.Role, username string) (string, error) {
	token := uuid.NewString()

	data, err := json.Marshal(sessionRecord{Role: role, Username: username})
	if err != nil {
		return "", fmt.Errorf("marshal session: %w", err)
	}

	ok, err := s.client.SetNX(ctx, tokenKeyPrefix+token, data, s.ttl).Result()
	if err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("session token collision")
	}

	return token, nil
}

// Get resolves a token to its identity, or ErrNotLoggedIn if the token is
// unknown or expired.
func (s *RedisStore) Get(ctx context.Context, token string) (identity.Role, string, error) {
	data, err := s.client.Get(ctx, tokenKeyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", "", ErrNotLoggedIn
		}
		return "", "", fmt.Errorf("load session: %w", err)
	}

	var rec sessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return "", "", fmt.Errorf("unmarshal session: %w", err)
	}

	return rec.Role, rec.Username, nil
}

// Delete revokes a token. Deleting an unknown token returns ErrNotLoggedIn.
func (s *RedisStore) Delete(ctx context.Context, token string) error {
	n, err := s.client.Del(ctx, tokenKeyPrefix+token).Result()
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if n == 0 {
		return ErrNotLoggedIn
	}
	return nil
}
