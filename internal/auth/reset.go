package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const resetKeyPrefix = "pw_reset:"

var ErrResetTokenInvalid = errors.New("reset token is invalid or expired")

// ResetTokenStore keeps single-use password-reset tokens in Redis. A token
// lives for the configured TTL and is deleted the moment it is consumed.
type ResetTokenStore struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewResetTokenStore(client *redis.Client, ttl time.Duration) *ResetTokenStore {
	return &ResetTokenStore{Client: client, TTL: ttl}
}

// Issue creates a fresh token bound to userID.
func (s *ResetTokenStore) Issue(ctx context.Context, userID string) (string, error) {
	token := uuid.NewString()
	key := resetKeyPrefix + token
	if err := s.Client.Set(ctx, key, userID, s.TTL).Err(); err != nil {
		return "", fmt.Errorf("failed to store reset token: %w", err)
	}
	return token, nil
}

// Consume returns the user bound to token and invalidates it. Read-apply-delete:
// a second Consume with the same token fails.
func (s *ResetTokenStore) Consume(ctx context.Context, token string) (string, error) {
	key := resetKeyPrefix + token
	userID, err := s.Client.GetDel(ctx, key).Result()
	if err == redis.Nil {
		return "", ErrResetTokenInvalid
	}
	if err != nil {
		return "", err
	}
	if userID == "" {
		return "", ErrResetTokenInvalid
	}
	return userID, nil
}
