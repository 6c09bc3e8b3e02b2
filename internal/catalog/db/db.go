package db

import (
	"context"

	"ms-marketplace/internal/catalog"
	"ms-marketplace/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) CreateProduct(ctx context.Context, product models.Product) error {
	_, err := d.Bun.NewInsert().Model(&product).Exec(ctx)
	return err
}

func (d *DB) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := d.Bun.NewSelect().
		Model(&product).
		Where("product_id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (d *DB) UpdateProduct(ctx context.Context, product models.Product) error {
	_, err := d.Bun.NewUpdate().
		Model(&product).
		Column("name", "description", "price", "original_price", "images",
			"category", "brand", "stock", "active", "featured").
		Where("product_id = ?", product.ProductID).
		Exec(ctx)
	return err
}

func (d *DB) DeleteProduct(ctx context.Context, id string) error {
	_, err := d.Bun.NewDelete().
		Model((*models.Product)(nil)).
		Where("product_id = ?", id).
		Exec(ctx)
	return err
}

func (d *DB) ListProducts(ctx context.Context, filter catalog.ProductFilter) ([]models.Product, error) {
	var products []models.Product
	query := d.Bun.NewSelect().Model(&products)
	if filter.SellerID != "" {
		query = query.Where("seller_id = ?", filter.SellerID)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.FeaturedOnly {
		query = query.Where("featured = ?", true)
	}
	if filter.ActiveOnly {
		query = query.Where("active = ?", true)
	}
	err := query.Order("created_at DESC").Scan(ctx)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

func (d *DB) IncrementViews(ctx context.Context, id string) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.Product)(nil)).
		Set("views = views + 1").
		Where("product_id = ?", id).
		Exec(ctx)
	return err
}

func (d *DB) CreateVariant(ctx context.Context, variant models.Variant) error {
	_, err := d.Bun.NewInsert().Model(&variant).Exec(ctx)
	return err
}

func (d *DB) GetVariantByID(ctx context.Context, id string) (*models.Variant, error) {
	var variant models.Variant
	err := d.Bun.NewSelect().
		Model(&variant).
		Where("variant_id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &variant, nil
}

func (d *DB) UpdateVariant(ctx context.Context, variant models.Variant) error {
	_, err := d.Bun.NewUpdate().
		Model(&variant).
		Column("size", "color", "price", "stock").
		Where("variant_id = ?", variant.VariantID).
		Exec(ctx)
	return err
}

func (d *DB) DeleteVariant(ctx context.Context, id string) error {
	_, err := d.Bun.NewDelete().
		Model((*models.Variant)(nil)).
		Where("variant_id = ?", id).
		Exec(ctx)
	return err
}

func (d *DB) ListVariantsByProduct(ctx context.Context, productID string) ([]models.Variant, error) {
	var variants []models.Variant
	err := d.Bun.NewSelect().
		Model(&variants).
		Where("product_id = ?", productID).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	if variants == nil {
		variants = []models.Variant{}
	}
	return variants, nil
}
