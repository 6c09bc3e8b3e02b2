package cart_test

import (
	"context"
	"testing"
	"time"

	"ms-marketplace/internal/cart"
	"ms-marketplace/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryHandoffStore struct {
	values map[string]string
}

func newMemoryHandoffStore() *memoryHandoffStore {
	return &memoryHandoffStore{values: map[string]string{}}
}

func (m *memoryHandoffStore) Set(_ context.Context, key, value string, _ time.Duration) error {
	m.values[key] = value
	return nil
}

func (m *memoryHandoffStore) GetDel(_ context.Context, key string) (string, bool, error) {
	value, ok := m.values[key]
	delete(m.values, key)
	return value, ok, nil
}

func TestHandoffConsumeWithoutStageIsEmpty(t *testing.T) {
	h := &cart.Handoff{Store: newMemoryHandoffStore()}

	_, err := h.Consume(context.Background(), "buyer-1")
	assert.ErrorIs(t, err, cart.ErrHandoffEmpty)
}

func TestHandoffStageThenConsumeExactlyOnce(t *testing.T) {
	h := &cart.Handoff{Store: newMemoryHandoffStore()}
	ctx := context.Background()

	lines := []models.CartItem{
		{ItemID: "i1", UserID: "buyer-1", ProductID: "p1", Name: "Tote", Quantity: 2, UnitPrice: 24.90, LineTotal: 49.80},
		{ItemID: "i2", UserID: "buyer-1", ProductID: "p2", Name: "Mug", Quantity: 1, UnitPrice: 12.50, LineTotal: 12.50},
	}
	require.NoError(t, h.Stage(ctx, "buyer-1", lines))

	consumed, err := h.Consume(ctx, "buyer-1")
	require.NoError(t, err)
	require.Len(t, consumed, 2)
	assert.Equal(t, "p1", consumed[0].ProductID)
	assert.InDelta(t, 49.80, consumed[0].LineTotal, 0.001)

	// The read removed the key; a second reader gets nothing.
	_, err = h.Consume(ctx, "buyer-1")
	assert.ErrorIs(t, err, cart.ErrHandoffEmpty)
}

func TestHandoffIsScopedPerUser(t *testing.T) {
	h := &cart.Handoff{Store: newMemoryHandoffStore()}
	ctx := context.Background()

	require.NoError(t, h.Stage(ctx, "buyer-1", []models.CartItem{
		{ItemID: "i1", UserID: "buyer-1", ProductID: "p1", Quantity: 1, UnitPrice: 10, LineTotal: 10},
	}))

	_, err := h.Consume(ctx, "buyer-2")
	assert.ErrorIs(t, err, cart.ErrHandoffEmpty)

	consumed, err := h.Consume(ctx, "buyer-1")
	require.NoError(t, err)
	assert.Len(t, consumed, 1)
}
