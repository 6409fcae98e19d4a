package redisinfra

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-api-authsession/internal/domain"
	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "session:"

// SessionStore binds at most one live token per account.
// Key: session:<accountID>, value: the token string, TTL: token lifetime.
type SessionStore struct {
	client  redis.UniversalClient
	timeout time.Duration
}

func NewSessionStore(client redis.UniversalClient, timeout time.Duration) *SessionStore {
	return &SessionStore{client: client, timeout: timeout}
}

func sessionKey(accountID int64) string {
	return sessionKeyPrefix + strconv.FormatInt(accountID, 10)
}

// Bind overwrites whatever token was bound for accountID. Any previously bound
// token stops being recognised immediately.
func (s *SessionStore) Bind(ctx context.Context, accountID int64, token string, ttl time.Duration) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.client.Set(ctx, sessionKey(accountID), token, ttl).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}

// Lookup returns the bound token, or domain.ErrNotFound when nothing is bound.
func (s *SessionStore) Lookup(ctx context.Context, accountID int64) (string, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	token, err := s.client.Get(ctx, sessionKey(accountID)).Result()
	if isNil(err) {
		return "", fmt.Errorf("session not bound: %w", domain.ErrNotFound)
	}
	if err != nil {
		return "", unavailable(err)
	}
	return token, nil
}

// Unbind deletes the binding. Deleting a missing key is not an error.
func (s *SessionStore) Unbind(ctx context.Context, accountID int64) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.client.Del(ctx, sessionKey(accountID)).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}
