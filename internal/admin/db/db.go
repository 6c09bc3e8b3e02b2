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

func (d *DB) ListUsers(ctx context.Context, role string) ([]models.User, error) {
	var users []models.User
	query := d.Bun.NewSelect().Model(&users)
	if role != "" {
		query = query.Where("role = ?", role)
	}
	err := query.Order("created_at DESC").Scan(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

func (d *DB) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := d.Bun.NewSelect().
		Model(&user).
		Where("user_id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *DB) UpdateUserRole(ctx context.Context, id, role string) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.User)(nil)).
		Set("role = ?", role).
		Where("user_id = ?", id).
		Exec(ctx)
	return err
}

func (d *DB) DeleteUser(ctx context.Context, id string) error {
	_, err := d.Bun.NewDelete().
		Model((*models.User)(nil)).
		Where("user_id = ?", id).
		Exec(ctx)
	return err
}

func (d *DB) CreatePromotion(ctx context.Context, promo models.Promotion) error {
	_, err := d.Bun.NewInsert().Model(&promo).Exec(ctx)
	return err
}

func (d *DB) GetPromotionByID(ctx context.Context, id string) (*models.Promotion, error) {
	var promo models.Promotion
	err := d.Bun.NewSelect().
		Model(&promo).
		Where("promotion_id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &promo, nil
}

func (d *DB) GetPromotionByCode(ctx context.Context, code string) (*models.Promotion, error) {
	var promo models.Promotion
	err := d.Bun.NewSelect().
		Model(&promo).
		Where("code = ?", code).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &promo, nil
}

func (d *DB) UpdatePromotion(ctx context.Context, promo models.Promotion) error {
	_, err := d.Bun.NewUpdate().
		Model(&promo).
		Column("code", "percent", "starts_at", "ends_at", "active").
		Where("promotion_id = ?", promo.PromotionID).
		Exec(ctx)
	return err
}

func (d *DB) DeletePromotion(ctx context.Context, id string) error {
	_, err := d.Bun.NewDelete().
		Model((*models.Promotion)(nil)).
		Where("promotion_id = ?", id).
		Exec(ctx)
	return err
}

func (d *DB) ListPromotions(ctx context.Context) ([]models.Promotion, error) {
	var promos []models.Promotion
	err := d.Bun.NewSelect().
		Model(&promos).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	if promos == nil {
		promos = []models.Promotion{}
	}
	return promos, nil
}
