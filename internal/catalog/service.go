package catalog

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
	ErrProductNotFound = errors.New("product not found")
	ErrVariantNotFound = errors.New("variant not found")
	ErrNotOwner        = errors.New("product belongs to another seller")
)

type DBLayer interface {
	CreateProduct(ctx context.Context, product models.Product) error
	GetProductByID(ctx context.Context, id string) (*models.Product, error)
	UpdateProduct(ctx context.Context, product models.Product) error
	DeleteProduct(ctx context.Context, id string) error
	ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error)
	IncrementViews(ctx context.Context, id string) error
	CreateVariant(ctx context.Context, variant models.Variant) error
	GetVariantByID(ctx context.Context, id string) (*models.Variant, error)
	UpdateVariant(ctx context.Context, variant models.Variant) error
	DeleteVariant(ctx context.Context, id string) error
	ListVariantsByProduct(ctx context.Context, productID string) ([]models.Variant, error)
}

// ProductFilter narrows catalog listings.
type ProductFilter struct {
	SellerID     string
	Category     string
	FeaturedOnly bool
	ActiveOnly   bool
}

type Service struct {
	DB     DBLayer
	Logger *logger.Logger
}

func NewService(db DBLayer, log *logger.Logger) *Service {
	return &Service{DB: db, Logger: log}
}

type ProductInput struct {
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	Price         float64        `json:"price"`
	OriginalPrice *float64       `json:"original_price,omitempty"`
	Images        []models.Image `json:"images"`
	Category      string         `json:"category"`
	Brand         string         `json:"brand"`
	Stock         int            `json:"stock"`
	Active        *bool          `json:"active,omitempty"`
	Featured      *bool          `json:"featured,omitempty"`
}

func (in ProductInput) validate() error {
	if in.Name == "" {
		return errors.New("product name is required")
	}
	if in.Price < 0 {
		return errors.New("price cannot be negative")
	}
	if in.Stock < 0 {
		return errors.New("stock cannot be negative")
	}
	return nil
}

func (s *Service) CreateProduct(ctx context.Context, sellerID string, in ProductInput) (*models.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	product := models.Product{
		ProductID:     uuid.NewString(),
		SellerID:      sellerID,
		Name:          in.Name,
		Description:   in.Description,
		Price:         in.Price,
		OriginalPrice: in.OriginalPrice,
		Images:        in.Images,
		Category:      in.Category,
		Brand:         in.Brand,
		Stock:         in.Stock,
		Active:        true,
		CreatedAt:     time.Now(),
	}
	if in.Active != nil {
		product.Active = *in.Active
	}
	if in.Featured != nil {
		product.Featured = *in.Featured
	}

	if err := s.DB.CreateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return &product, nil
}

// GetProduct returns the product and bumps its view counter. Counter failures
// are logged, not surfaced; a read must not fail over bookkeeping.
func (s *Service) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.DB.GetProductByID(ctx, id)
	if err != nil || product == nil {
		return nil, ErrProductNotFound
	}
	if err := s.DB.IncrementViews(ctx, id); err != nil {
		s.Logger.Warn("CATALOG", fmt.Sprintf("Failed to bump views for product %s: %v", id, err))
	}
	return product, nil
}

func (s *Service) ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	return s.DB.ListProducts(ctx, filter)
}

// requireOwner loads a product and checks seller ownership; admin bypasses.
func (s *Service) requireOwner(ctx context.Context, actorID, role, productID string) (*models.Product, error) {
	product, err := s.DB.GetProductByID(ctx, productID)
	if err != nil || product == nil {
		return nil, ErrProductNotFound
	}
	if role != models.RoleAdmin && product.SellerID != actorID {
		return nil, ErrNotOwner
	}
	return product, nil
}

func (s *Service) UpdateProduct(ctx context.Context, actorID, role, productID string, in ProductInput) (*models.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	product, err := s.requireOwner(ctx, actorID, role, productID)
	if err != nil {
		return nil, err
	}

	product.Name = in.Name
	product.Description = in.Description
	product.Price = in.Price
	product.OriginalPrice = in.OriginalPrice
	if in.Images != nil {
		product.Images = in.Images
	}
	product.Category = in.Category
	product.Brand = in.Brand
	product.Stock = in.Stock
	if in.Active != nil {
		product.Active = *in.Active
	}
	if in.Featured != nil {
		product.Featured = *in.Featured
	}

	if err := s.DB.UpdateProduct(ctx, *product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return product, nil
}

func (s *Service) DeleteProduct(ctx context.Context, actorID, role, productID string) error {
	if _, err := s.requireOwner(ctx, actorID, role, productID); err != nil {
		return err
	}
	return s.DB.DeleteProduct(ctx, productID)
}

type VariantInput struct {
	Size  string   `json:"size"`
	Color string   `json:"color"`
	Price *float64 `json:"price,omitempty"`
	Stock int      `json:"stock"`
}

// Variant ownership is resolved transitively through the parent product.
func (s *Service) CreateVariant(ctx context.Context, actorID, role, productID string, in VariantInput) (*models.Variant, error) {
	if _, err := s.requireOwner(ctx, actorID, role, productID); err != nil {
		return nil, err
	}
	if in.Stock < 0 {
		return nil, errors.New("stock cannot be negative")
	}

	variant := models.Variant{
		VariantID: uuid.NewString(),
		ProductID: productID,
		Size:      in.Size,
		Color:     in.Color,
		Price:     in.Price,
		Stock:     in.Stock,
	}
	if err := s.DB.CreateVariant(ctx, variant); err != nil {
		return nil, fmt.Errorf("failed to create variant: %w", err)
	}
	return &variant, nil
}

func (s *Service) UpdateVariant(ctx context.Context, actorID, role, variantID string, in VariantInput) (*models.Variant, error) {
	variant, err := s.DB.GetVariantByID(ctx, variantID)
	if err != nil || variant == nil {
		return nil, ErrVariantNotFound
	}
	if _, err := s.requireOwner(ctx, actorID, role, variant.ProductID); err != nil {
		return nil, err
	}

	variant.Size = in.Size
	variant.Color = in.Color
	variant.Price = in.Price
	variant.Stock = in.Stock
	if err := s.DB.UpdateVariant(ctx, *variant); err != nil {
		return nil, fmt.Errorf("failed to update variant: %w", err)
	}
	return variant, nil
}

func (s *Service) DeleteVariant(ctx context.Context, actorID, role, variantID string) error {
	variant, err := s.DB.GetVariantByID(ctx, variantID)
	if err != nil || variant == nil {
		return ErrVariantNotFound
	}
	if _, err := s.requireOwner(ctx, actorID, role, variant.ProductID); err != nil {
		return err
	}
	return s.DB.DeleteVariant(ctx, variantID)
}

func (s *Service) ListVariants(ctx context.Context, productID string) ([]models.Variant, error) {
	return s.DB.ListVariantsByProduct(ctx, productID)
}
