package db

import (
	"context"

	"ms-marketplace/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) CreatePayment(ctx context.Context, payment models.Payment) error {
	_, err := d.Bun.NewInsert().Model(&payment).Exec(ctx)
	return err
}

func (d *DB) GetPaymentByOrder(ctx context.Context, orderID string) (*models.Payment, error) {
	var payment models.Payment
	err := d.Bun.NewSelect().
		Model(&payment).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (d *DB) UpdatePaymentStatus(ctx context.Context, paymentID, status, providerRef string) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.Payment)(nil)).
		Set("status = ?", status).
		Set("provider_ref = ?", providerRef).
		Where("payment_id = ?", paymentID).
		Exec(ctx)
	return err
}
