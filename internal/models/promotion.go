package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Promotion struct {
	bun.BaseModel `bun:"table:promotions"`

	PromotionID string    `bun:"promotion_id,pk" json:"promotion_id"`
	Code        string    `bun:"code,unique" json:"code"`
	Percent     float64   `bun:"percent" json:"percent"`
	StartsAt    time.Time `bun:"starts_at" json:"starts_at"`
	EndsAt      time.Time `bun:"ends_at" json:"ends_at"`
	Active      bool      `bun:"active" json:"active"`
	CreatedAt   time.Time `bun:"created_at" json:"created_at"`
}

type PromotionRequest struct {
	Code     string    `json:"code"`
	Percent  float64   `json:"percent"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
	Active   bool      `json:"active"`
}
