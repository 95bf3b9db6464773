package catalog

import "time"

type Product struct {
	ID          int64     `json:"id"`
	SellerID    *int64    `json:"seller_id,omitempty"`
	Name        string    `json:"name"`
	PriceCents  int64     `json:"price_cents"`
	Stock       int       `json:"stock"`
	SizeOptions []string  `json:"size_options"`
	ImageURL    string    `json:"image_url,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
