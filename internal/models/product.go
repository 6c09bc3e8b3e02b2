package models

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/uptrace/bun"
)

// Image is the normalized form of a product image. Clients may submit either a
// bare URL string or a full object; the catalog API resolves both into this
// record once, at the boundary.
type Image struct {
	URL       string `json:"url"`
	Alt       string `json:"alt,omitempty"`
	IsPrimary bool   `json:"is_primary,omitempty"`
}

// UnmarshalJSON accepts both "https://..." and {"url": "...", ...}.
func (img *Image) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		if raw == "" {
			return errors.New("image url cannot be empty")
		}
		img.URL = raw
		img.Alt = ""
		img.IsPrimary = false
		return nil
	}

	type imageRecord Image
	var rec imageRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	if rec.URL == "" {
		return errors.New("image url cannot be empty")
	}
	*img = Image(rec)
	return nil
}

type Product struct {
	bun.BaseModel `bun:"table:products"`

	ProductID     string    `bun:"product_id,pk" json:"product_id"`
	SellerID      string    `bun:"seller_id" json:"seller_id"`
	Name          string    `bun:"name" json:"name"`
	Description   string    `bun:"description" json:"description"`
	Price         float64   `bun:"price" json:"price"`
	OriginalPrice *float64  `bun:"original_price" json:"original_price,omitempty"`
	Images        []Image   `bun:"images,type:jsonb" json:"images"`
	Category      string    `bun:"category" json:"category"`
	Brand         string    `bun:"brand" json:"brand"`
	Stock         int       `bun:"stock" json:"stock"`
	Active        bool      `bun:"active" json:"active"`
	Featured      bool      `bun:"featured" json:"featured"`
	Views         int       `bun:"views" json:"views"`
	CreatedAt     time.Time `bun:"created_at" json:"created_at"`
}

type Variant struct {
	bun.BaseModel `bun:"table:variants"`

	VariantID string   `bun:"variant_id,pk" json:"variant_id"`
	ProductID string   `bun:"product_id" json:"product_id"`
	Size      string   `bun:"size" json:"size,omitempty"`
	Color     string   `bun:"color" json:"color,omitempty"`
	Price     *float64 `bun:"price" json:"price,omitempty"`
	Stock     int      `bun:"stock" json:"stock"`
}
