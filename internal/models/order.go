package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Order struct {
	bun.BaseModel `bun:"table:orders"`

	OrderID           string      `bun:"order_id,pk" json:"order_id"`
	OrderNumber       string      `bun:"order_number,unique" json:"order_number"`
	BuyerID           string      `bun:"buyer_id" json:"buyer_id"`
	SellerID          string      `bun:"seller_id" json:"seller_id"`
	Status            string      `bun:"status" json:"status"`
	PaymentMethod     string      `bun:"payment_method" json:"payment_method"`
	ShippingAddress   string      `bun:"shipping_address" json:"shipping_address"`
	Note              string      `bun:"note" json:"note,omitempty"`
	SellerNote        string      `bun:"seller_note" json:"seller_note,omitempty"`
	EstimatedDelivery *time.Time  `bun:"estimated_delivery" json:"estimated_delivery,omitempty"`
	IsPaid            bool        `bun:"is_paid" json:"is_paid"`
	PaidAt            *time.Time  `bun:"paid_at" json:"paid_at,omitempty"`
	CancelReason      string      `bun:"cancel_reason" json:"cancel_reason,omitempty"`
	TotalPrice        float64     `bun:"total_price" json:"total_price"`
	CreatedAt         time.Time   `bun:"created_at" json:"created_at"`
	Items             []OrderItem `bun:"rel:has-many,join:order_id=order_id" json:"items,omitempty"`
}

// OrderItem captures the product identity and price at the moment the order was
// placed. Later catalog edits never reach back into these rows.
type OrderItem struct {
	bun.BaseModel `bun:"table:order_items"`

	OrderItemID string  `bun:"order_item_id,pk" json:"order_item_id"`
	OrderID     string  `bun:"order_id" json:"order_id"`
	ProductID   string  `bun:"product_id" json:"product_id"`
	ProductName string  `bun:"product_name" json:"product_name"`
	Image       string  `bun:"image" json:"image"`
	VariantID   string  `bun:"variant_id" json:"variant_id,omitempty"`
	Quantity    int     `bun:"quantity" json:"quantity"`
	Price       float64 `bun:"price" json:"price"`
}

type CheckoutRequest struct {
	PaymentMethod   string `json:"payment_method"`
	ShippingAddress string `json:"shipping_address"`
	Note            string `json:"note,omitempty"`
}

type StatusUpdateRequest struct {
	Status            string     `json:"status"`
	SellerNote        string     `json:"seller_note,omitempty"`
	EstimatedDelivery *time.Time `json:"estimated_delivery,omitempty"`
	CancelReason      string     `json:"cancel_reason,omitempty"`
}

// OrderStatusEvent is the payload published to the order-status topic after a
// committed transition; the notification worker consumes it.
type OrderStatusEvent struct {
	OrderID    string `json:"order_id"`
	Status     string `json:"status"`
	BuyerEmail string `json:"buyer_email"`
	Order      Order  `json:"order"`
}
