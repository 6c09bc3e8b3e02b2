package db

import (
	"context"
	"database/sql"
	"errors"

	"ms-marketplace/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) InsertItem(ctx context.Context, item models.CartItem) error {
	_, err := d.Bun.NewInsert().Model(&item).Exec(ctx)
	return err
}

func (d *DB) GetItem(ctx context.Context, userID, itemID string) (*models.CartItem, error) {
	var item models.CartItem
	err := d.Bun.NewSelect().
		Model(&item).
		Where("item_id = ?", itemID).
		Where("user_id = ?", userID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// FindItem locates an existing line for the same product and variant so that
// repeated adds merge instead of duplicating.
func (d *DB) FindItem(ctx context.Context, userID, productID, variantID string) (*models.CartItem, error) {
	var item models.CartItem
	err := d.Bun.NewSelect().
		Model(&item).
		Where("user_id = ?", userID).
		Where("product_id = ?", productID).
		Where("variant_id = ?", variantID).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (d *DB) UpdateItem(ctx context.Context, item models.CartItem) error {
	_, err := d.Bun.NewUpdate().
		Model(&item).
		Column("quantity", "line_total").
		Where("item_id = ?", item.ItemID).
		Where("user_id = ?", item.UserID).
		Exec(ctx)
	return err
}

func (d *DB) DeleteItem(ctx context.Context, userID, itemID string) error {
	_, err := d.Bun.NewDelete().
		Model((*models.CartItem)(nil)).
		Where("item_id = ?", itemID).
		Where("user_id = ?", userID).
		Exec(ctx)
	return err
}

func (d *DB) ListItems(ctx context.Context, userID string) ([]models.CartItem, error) {
	var items []models.CartItem
	err := d.Bun.NewSelect().
		Model(&items).
		Where("user_id = ?", userID).
		Order("added_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.CartItem{}
	}
	return items, nil
}

func (d *DB) Clear(ctx context.Context, userID string) error {
	_, err := d.Bun.NewDelete().
		Model((*models.CartItem)(nil)).
		Where("user_id = ?", userID).
		Exec(ctx)
	return err
}
