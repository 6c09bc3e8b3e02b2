package cart_test

import (
	"context"
	"errors"
	"testing"

	"ms-marketplace/internal/cart"
	"ms-marketplace/internal/logger"
	"ms-marketplace/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryCartDB struct {
	items map[string]*models.CartItem
}

func newMemoryCartDB() *memoryCartDB {
	return &memoryCartDB{items: make(map[string]*models.CartItem)}
}

func (m *memoryCartDB) InsertItem(ctx context.Context, item models.CartItem) error {
	m.items[item.ItemID] = &item
	return nil
}

func (m *memoryCartDB) GetItem(ctx context.Context, userID, itemID string) (*models.CartItem, error) {
	item, ok := m.items[itemID]
	if !ok || item.UserID != userID {
		return nil, errors.New("not found")
	}
	return item, nil
}

func (m *memoryCartDB) FindItem(ctx context.Context, userID, productID, variantID string) (*models.CartItem, error) {
	for _, item := range m.items {
		if item.UserID == userID && item.ProductID == productID && item.VariantID == variantID {
			return item, nil
		}
	}
	return nil, nil
}

func (m *memoryCartDB) UpdateItem(ctx context.Context, item models.CartItem) error {
	m.items[item.ItemID] = &item
	return nil
}

func (m *memoryCartDB) DeleteItem(ctx context.Context, userID, itemID string) error {
	delete(m.items, itemID)
	return nil
}

func (m *memoryCartDB) ListItems(ctx context.Context, userID string) ([]models.CartItem, error) {
	var out []models.CartItem
	for _, item := range m.items {
		if item.UserID == userID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (m *memoryCartDB) Clear(ctx context.Context, userID string) error {
	for id, item := range m.items {
		if item.UserID == userID {
			delete(m.items, id)
		}
	}
	return nil
}

type stubCatalog struct {
	products map[string]*models.Product
	variants map[string]*models.Variant
}

func (s *stubCatalog) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	if p, ok := s.products[id]; ok {
		return p, nil
	}
	return nil, errors.New("not found")
}

func (s *stubCatalog) GetVariantByID(ctx context.Context, id string) (*models.Variant, error) {
	if v, ok := s.variants[id]; ok {
		return v, nil
	}
	return nil, errors.New("not found")
}

func newTestService() (*cart.Service, *memoryCartDB) {
	db := newMemoryCartDB()
	variantPrice := 19.90
	catalog := &stubCatalog{
		products: map[string]*models.Product{
			"p1": {ProductID: "p1", SellerID: "s1", Name: "Tote", Price: 24.90, Stock: 10,
				Images: []models.Image{{URL: "https://cdn.example/p1.jpg"}}},
		},
		variants: map[string]*models.Variant{
			"v1": {VariantID: "v1", ProductID: "p1", Size: "L", Price: &variantPrice},
		},
	}
	return cart.NewService(db, catalog, logger.NewLogger()), db
}

func TestAddItemSnapshotsPriceAndInvariant(t *testing.T) {
	svc, _ := newTestService()

	item, err := svc.AddItem(context.Background(), "u1", models.AddToCartRequest{ProductID: "p1", Quantity: 3})
	require.NoError(t, err)

	assert.Equal(t, 24.90, item.UnitPrice)
	assert.InDelta(t, 74.70, item.LineTotal, 0.001)
	assert.Equal(t, "s1", item.SellerID)
	assert.Equal(t, "https://cdn.example/p1.jpg", item.Image)
}

func TestAddItemUsesVariantPrice(t *testing.T) {
	svc, _ := newTestService()

	item, err := svc.AddItem(context.Background(), "u1",
		models.AddToCartRequest{ProductID: "p1", VariantID: "v1", Quantity: 2})
	require.NoError(t, err)

	assert.Equal(t, 19.90, item.UnitPrice)
	assert.Equal(t, "L", item.Size)
	assert.InDelta(t, 39.80, item.LineTotal, 0.001)
}

func TestAddSameLineMergesQuantity(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	first, err := svc.AddItem(ctx, "u1", models.AddToCartRequest{ProductID: "p1", Quantity: 1})
	require.NoError(t, err)
	second, err := svc.AddItem(ctx, "u1", models.AddToCartRequest{ProductID: "p1", Quantity: 2})
	require.NoError(t, err)

	assert.Equal(t, first.ItemID, second.ItemID)
	assert.Equal(t, 3, second.Quantity)
	assert.InDelta(t, second.UnitPrice*3, second.LineTotal, 0.001)

	userCart, err := svc.GetCart(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, userCart.Items, 1)
}

func TestUpdateItemRecomputesLineTotal(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	item, err := svc.AddItem(ctx, "u1", models.AddToCartRequest{ProductID: "p1", Quantity: 1})
	require.NoError(t, err)

	updated, err := svc.UpdateItem(ctx, "u1", item.ItemID, models.UpdateCartItemRequest{Quantity: 4})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Quantity)
	assert.InDelta(t, updated.UnitPrice*4, updated.LineTotal, 0.001)
}

func TestQuantityMustBePositive(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "u1", models.AddToCartRequest{ProductID: "p1", Quantity: 0})
	assert.ErrorIs(t, err, cart.ErrInvalidQuantity)

	item, err := svc.AddItem(ctx, "u1", models.AddToCartRequest{ProductID: "p1", Quantity: 1})
	require.NoError(t, err)
	_, err = svc.UpdateItem(ctx, "u1", item.ItemID, models.UpdateCartItemRequest{Quantity: -2})
	assert.ErrorIs(t, err, cart.ErrInvalidQuantity)
}

func TestSubtotalSumsLineTotals(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "u1", models.AddToCartRequest{ProductID: "p1", Quantity: 2})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "u1", models.AddToCartRequest{ProductID: "p1", VariantID: "v1", Quantity: 1})
	require.NoError(t, err)

	userCart, err := svc.GetCart(ctx, "u1")
	require.NoError(t, err)

	var expected float64
	for _, item := range userCart.Items {
		expected += item.LineTotal
	}
	assert.InDelta(t, expected, userCart.Subtotal, 0.001)
}

func TestCartsAreIsolatedPerUser(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	item, err := svc.AddItem(ctx, "u1", models.AddToCartRequest{ProductID: "p1", Quantity: 1})
	require.NoError(t, err)

	// Another user cannot touch the line.
	err = svc.RemoveItem(ctx, "u2", item.ItemID)
	assert.ErrorIs(t, err, cart.ErrItemNotFound)

	otherCart, err := svc.GetCart(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, otherCart.Items)
}
