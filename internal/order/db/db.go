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

// CreateOrdersWithItems inserts every order and line in one transaction, so a
// multi-seller checkout commits all orders or none of them.
func (d *DB) CreateOrdersWithItems(ctx context.Context, orders []models.Order, items []models.OrderItem) error {
	if len(orders) == 0 {
		return nil
	}
	return d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(&orders).Exec(ctx); err != nil {
			return err
		}
		if len(items) > 0 {
			if _, err := tx.NewInsert().Model(&items).Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
}

func (d *DB) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := d.Bun.NewSelect().
		Model(&order).
		Where("order_id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (d *DB) GetOrderWithItems(ctx context.Context, id string) (*models.Order, error) {
	order, err := d.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var items []models.OrderItem
	err = d.Bun.NewSelect().
		Model(&items).
		Where("order_id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

func (d *DB) ListOrdersByBuyer(ctx context.Context, buyerID string) ([]models.Order, error) {
	var orders []models.Order
	err := d.Bun.NewSelect().
		Model(&orders).
		Where("buyer_id = ?", buyerID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

func (d *DB) ListOrdersBySeller(ctx context.Context, sellerID, statusFilter string) ([]models.Order, error) {
	var orders []models.Order
	query := d.Bun.NewSelect().
		Model(&orders).
		Where("seller_id = ?", sellerID)
	if statusFilter != "" {
		query = query.Where("status = ?", statusFilter)
	}
	err := query.Order("created_at DESC").Scan(ctx)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

func (d *DB) ListAllOrders(ctx context.Context, statusFilter string) ([]models.Order, error) {
	var orders []models.Order
	query := d.Bun.NewSelect().Model(&orders)
	if statusFilter != "" {
		query = query.Where("status = ?", statusFilter)
	}
	err := query.Order("created_at DESC").Scan(ctx)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

// UpdateOrderStatus writes the mutable transition fields, guarded on the
// status the caller read. Zero rows affected means another writer won.
func (d *DB) UpdateOrderStatus(ctx context.Context, order models.Order, expectedStatus string) (bool, error) {
	res, err := d.Bun.NewUpdate().
		Model(&order).
		Column("status", "seller_note", "estimated_delivery", "is_paid", "paid_at", "cancel_reason").
		Where("order_id = ?", order.OrderID).
		Where("status = ?", expectedStatus).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// ReserveStock decrements product stock only when enough remains.
func (d *DB) ReserveStock(ctx context.Context, productID string, qty int) (bool, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.Product)(nil)).
		Set("stock = stock - ?", qty).
		Where("product_id = ?", productID).
		Where("stock >= ?", qty).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (d *DB) ReleaseStock(ctx context.Context, productID string, qty int) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.Product)(nil)).
		Set("stock = stock + ?", qty).
		Where("product_id = ?", productID).
		Exec(ctx)
	return err
}

// GetUserEmail resolves a user's contact address. Password hashes never leave
// the users table through this path.
func (d *DB) GetUserEmail(ctx context.Context, userID string) (string, error) {
	var email string
	err := d.Bun.NewSelect().
		Column("email").
		Table("users").
		Where("user_id = ?", userID).
		Limit(1).
		Scan(ctx, &email)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return email, nil
}
