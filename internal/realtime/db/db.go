package db

import (
	"context"

	"ms-marketplace/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) AppendMessage(ctx context.Context, msg models.Message) error {
	_, err := d.Bun.NewInsert().Model(&msg).Exec(ctx)
	return err
}

func (d *DB) ListMessagesByRoom(ctx context.Context, roomKey string, limit int) ([]models.Message, error) {
	var messages []models.Message
	err := d.Bun.NewSelect().
		Model(&messages).
		Where("room_key = ?", roomKey).
		Order("created_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []models.Message{}
	}
	return messages, nil
}
