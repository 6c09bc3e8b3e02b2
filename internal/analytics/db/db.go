package db

import (
	"context"
	"time"

	"ms-marketplace/internal/analytics"
	"ms-marketplace/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) CountUsersByRole(ctx context.Context, role string) (int, error) {
	return d.Bun.NewSelect().
		Model((*models.User)(nil)).
		Where("role = ?", role).
		Count(ctx)
}

func (d *DB) CountProducts(ctx context.Context) (int, error) {
	return d.Bun.NewSelect().Model((*models.Product)(nil)).Count(ctx)
}

func (d *DB) CountOrders(ctx context.Context) (int, error) {
	return d.Bun.NewSelect().Model((*models.Order)(nil)).Count(ctx)
}

func (d *DB) SumRevenueByStatus(ctx context.Context, status string) (float64, error) {
	var total float64
	err := d.Bun.NewSelect().
		Model((*models.Order)(nil)).
		ColumnExpr("COALESCE(SUM(total_price), 0)").
		Where("status = ?", status).
		Scan(ctx, &total)
	return total, err
}

func (d *DB) SellerRevenue(ctx context.Context, from, to *time.Time) ([]analytics.SellerRevenueRow, error) {
	var rows []analytics.SellerRevenueRow
	query := d.Bun.NewSelect().
		Model((*models.Order)(nil)).
		ColumnExpr("\"order\".seller_id AS seller_id").
		ColumnExpr("COALESCE(u.name, '') AS seller_name").
		ColumnExpr("COALESCE(SUM(\"order\".total_price), 0) AS revenue").
		ColumnExpr("COUNT(*) AS order_count").
		Join("LEFT JOIN users AS u ON u.user_id = \"order\".seller_id").
		Where("\"order\".is_paid = ?", true).
		GroupExpr("\"order\".seller_id, u.name").
		OrderExpr("revenue DESC")
	if from != nil {
		query = query.Where("\"order\".created_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("\"order\".created_at < ?", *to)
	}
	err := query.Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []analytics.SellerRevenueRow{}
	}
	return rows, nil
}

func (d *DB) PaidOrdersSince(ctx context.Context, since time.Time) ([]models.Order, error) {
	var orders []models.Order
	err := d.Bun.NewSelect().
		Model(&orders).
		Where("is_paid = ?", true).
		Where("COALESCE(paid_at, created_at) >= ?", since).
		Scan(ctx)
	return orders, err
}

func (d *DB) CountSellerOrders(ctx context.Context, sellerID string) (int, error) {
	return d.Bun.NewSelect().
		Model((*models.Order)(nil)).
		Where("seller_id = ?", sellerID).
		Count(ctx)
}

func (d *DB) CountSellerOrdersByStatus(ctx context.Context, sellerID, status string) (int, error) {
	return d.Bun.NewSelect().
		Model((*models.Order)(nil)).
		Where("seller_id = ?", sellerID).
		Where("status = ?", status).
		Count(ctx)
}

func (d *DB) SellerPaidOrdersSince(ctx context.Context, sellerID string, since time.Time) ([]models.Order, error) {
	var orders []models.Order
	err := d.Bun.NewSelect().
		Model(&orders).
		Where("seller_id = ?", sellerID).
		Where("is_paid = ?", true).
		Where("COALESCE(paid_at, created_at) >= ?", since).
		Scan(ctx)
	return orders, err
}
