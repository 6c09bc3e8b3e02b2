package models

import (
	"time"

	"github.com/uptrace/bun"
)

// CartItem is one line in a user's server-resident cart. UnitPrice is a
// snapshot taken at add time; LineTotal is always UnitPrice * Quantity.
type CartItem struct {
	bun.BaseModel `bun:"table:cart_items"`

	ItemID    string    `bun:"item_id,pk" json:"item_id"`
	UserID    string    `bun:"user_id" json:"user_id"`
	ProductID string    `bun:"product_id" json:"product_id"`
	SellerID  string    `bun:"seller_id" json:"seller_id"`
	Name      string    `bun:"name" json:"name"`
	Image     string    `bun:"image" json:"image"`
	VariantID string    `bun:"variant_id" json:"variant_id,omitempty"`
	Size      string    `bun:"size" json:"size,omitempty"`
	Color     string    `bun:"color" json:"color,omitempty"`
	Quantity  int       `bun:"quantity" json:"quantity"`
	UnitPrice float64   `bun:"unit_price" json:"unit_price"`
	LineTotal float64   `bun:"line_total" json:"line_total"`
	AddedAt   time.Time `bun:"added_at" json:"added_at"`
}

type Cart struct {
	Items    []CartItem `json:"items"`
	Subtotal float64    `json:"subtotal"`
}

type AddToCartRequest struct {
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id,omitempty"`
	Quantity  int    `json:"quantity"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}
