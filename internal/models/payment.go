package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Payment statuses.
const (
	PaymentPending   = "pending"
	PaymentSucceeded = "succeeded"
	PaymentFailed    = "failed"
)

type Payment struct {
	bun.BaseModel `bun:"table:payments"`

	PaymentID   string    `bun:"payment_id,pk" json:"payment_id"`
	OrderID     string    `bun:"order_id" json:"order_id"`
	ProviderRef string    `bun:"provider_ref" json:"provider_ref,omitempty"`
	Amount      float64   `bun:"amount" json:"amount"`
	Status      string    `bun:"status" json:"status"`
	CreatedAt   time.Time `bun:"created_at" json:"created_at"`
}

type CreatePaymentRequest struct {
	OrderID string `json:"order_id"`
}

type ConfirmPaymentRequest struct {
	OrderID       string `json:"order_id"`
	PaymentIntent string `json:"payment_intent"`
}
