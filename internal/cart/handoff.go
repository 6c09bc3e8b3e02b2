package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ms-marketplace/internal/models"

	"github.com/go-redis/redis/v8"
)

var ErrHandoffEmpty = errors.New("no pending repay cart")

const handoffTTL = 15 * time.Minute

// HandoffStore is the expiring key-value surface the handoff needs. GetDel
// must remove the key as it reads, so two readers can never both see it.
type HandoffStore interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	GetDel(ctx context.Context, key string) (value string, ok bool, err error)
}

type redisHandoffStore struct {
	client *redis.Client
}

func (r redisHandoffStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r redisHandoffStore) GetDel(ctx context.Context, key string) (string, bool, error) {
	value, err := r.client.GetDel(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Handoff stages an unpaid order's lines so the checkout page can pick them up
// exactly once. The read consumes the key.
type Handoff struct {
	Store HandoffStore
}

func NewHandoff(client *redis.Client) *Handoff {
	return &Handoff{Store: redisHandoffStore{client: client}}
}

func handoffKey(userID string) string {
	return "repay_cart:" + userID
}

func (h *Handoff) Stage(ctx context.Context, userID string, items []models.CartItem) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode repay cart: %w", err)
	}
	if err := h.Store.Set(ctx, handoffKey(userID), string(payload), handoffTTL); err != nil {
		return fmt.Errorf("failed to stage repay cart: %w", err)
	}
	return nil
}

func (h *Handoff) Consume(ctx context.Context, userID string) ([]models.CartItem, error) {
	payload, ok, err := h.Store.GetDel(ctx, handoffKey(userID))
	if err != nil {
		return nil, fmt.Errorf("failed to consume repay cart: %w", err)
	}
	if !ok {
		return nil, ErrHandoffEmpty
	}

	var items []models.CartItem
	if err := json.Unmarshal([]byte(payload), &items); err != nil {
		return nil, fmt.Errorf("failed to decode repay cart: %w", err)
	}
	return items, nil
}
