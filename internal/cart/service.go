package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ms-marketplace/internal/logger"
	"ms-marketplace/internal/models"

	"github.com/google/uuid"
)

var (
	ErrItemNotFound    = errors.New("cart item not found")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

type DBLayer interface {
	InsertItem(ctx context.Context, item models.CartItem) error
	GetItem(ctx context.Context, userID, itemID string) (*models.CartItem, error)
	FindItem(ctx context.Context, userID, productID, variantID string) (*models.CartItem, error)
	UpdateItem(ctx context.Context, item models.CartItem) error
	DeleteItem(ctx context.Context, userID, itemID string) error
	ListItems(ctx context.Context, userID string) ([]models.CartItem, error)
	Clear(ctx context.Context, userID string) error
}

// ProductReader is the slice of the catalog the cart needs for price
// snapshots at add time.
type ProductReader interface {
	GetProductByID(ctx context.Context, id string) (*models.Product, error)
	GetVariantByID(ctx context.Context, id string) (*models.Variant, error)
}

type Service struct {
	DB      DBLayer
	Catalog ProductReader
	Logger  *logger.Logger
}

func NewService(db DBLayer, catalog ProductReader, log *logger.Logger) *Service {
	return &Service{DB: db, Catalog: catalog, Logger: log}
}

// AddItem snapshots the current catalog price onto the line. Adding the same
// product+variant again merges quantities instead of duplicating lines.
func (s *Service) AddItem(ctx context.Context, userID string, req models.AddToCartRequest) (*models.CartItem, error) {
	if req.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.Catalog.GetProductByID(ctx, req.ProductID)
	if err != nil || product == nil {
		return nil, fmt.Errorf("product %s not found", req.ProductID)
	}

	unitPrice := product.Price
	var size, color string
	if req.VariantID != "" {
		variant, err := s.Catalog.GetVariantByID(ctx, req.VariantID)
		if err != nil || variant == nil || variant.ProductID != product.ProductID {
			return nil, fmt.Errorf("variant %s not found", req.VariantID)
		}
		if variant.Price != nil {
			unitPrice = *variant.Price
		}
		size, color = variant.Size, variant.Color
	}

	if existing, err := s.DB.FindItem(ctx, userID, req.ProductID, req.VariantID); err == nil && existing != nil {
		existing.Quantity += req.Quantity
		existing.LineTotal = existing.UnitPrice * float64(existing.Quantity)
		if err := s.DB.UpdateItem(ctx, *existing); err != nil {
			return nil, fmt.Errorf("failed to update cart line: %w", err)
		}
		return existing, nil
	}

	image := ""
	if len(product.Images) > 0 {
		image = product.Images[0].URL
	}

	item := models.CartItem{
		ItemID:    uuid.NewString(),
		UserID:    userID,
		ProductID: product.ProductID,
		SellerID:  product.SellerID,
		Name:      product.Name,
		Image:     image,
		VariantID: req.VariantID,
		Size:      size,
		Color:     color,
		Quantity:  req.Quantity,
		UnitPrice: unitPrice,
		LineTotal: unitPrice * float64(req.Quantity),
		AddedAt:   time.Now(),
	}
	if err := s.DB.InsertItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to add cart line: %w", err)
	}
	return &item, nil
}

func (s *Service) UpdateItem(ctx context.Context, userID, itemID string, req models.UpdateCartItemRequest) (*models.CartItem, error) {
	if req.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	item, err := s.DB.GetItem(ctx, userID, itemID)
	if err != nil || item == nil {
		return nil, ErrItemNotFound
	}

	item.Quantity = req.Quantity
	item.LineTotal = item.UnitPrice * float64(req.Quantity)
	if err := s.DB.UpdateItem(ctx, *item); err != nil {
		return nil, fmt.Errorf("failed to update cart line: %w", err)
	}
	return item, nil
}

func (s *Service) RemoveItem(ctx context.Context, userID, itemID string) error {
	if item, err := s.DB.GetItem(ctx, userID, itemID); err != nil || item == nil {
		return ErrItemNotFound
	}
	return s.DB.DeleteItem(ctx, userID, itemID)
}

// GetCart returns the lines with the subtotal invariant computed server-side.
func (s *Service) GetCart(ctx context.Context, userID string) (*models.Cart, error) {
	items, err := s.DB.ListItems(ctx, userID)
	if err != nil {
		return nil, err
	}

	cart := &models.Cart{Items: items}
	for _, item := range items {
		cart.Subtotal += item.LineTotal
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	return cart, nil
}

// ListItems and Clear satisfy the order component's CartStore.
func (s *Service) ListItems(ctx context.Context, userID string) ([]models.CartItem, error) {
	return s.DB.ListItems(ctx, userID)
}

func (s *Service) Clear(ctx context.Context, userID string) error {
	return s.DB.Clear(ctx, userID)
}
