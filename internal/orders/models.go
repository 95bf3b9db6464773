package orders

import (
	"time"

	"github.com/quickshop/quickshop/internal/accounts"
	"github.com/quickshop/quickshop/internal/catalog"
)

type LineItem struct {
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size,omitempty"`
}

// Buyer carries the shipping details of one checkout request.
// CustomerID is nil for guest checkouts.
type Buyer struct {
	FullName      string `json:"full_name"`
	Address       string `json:"address"`
	Phone         string `json:"phone"`
	PaymentMethod string `json:"payment_method"`
	CustomerID    *int64 `json:"customer_id,omitempty"`
}

type Actor struct {
	ID   int64
	Role accounts.Role
}

// Order rows keep a snapshot of the product (name, price, image) taken
// at creation time, so later catalog edits do not rewrite history.
type Order struct {
	ID            int64     `json:"id"`
	ProductID     int64     `json:"product_id"`
	SellerID      *int64    `json:"seller_id,omitempty"`
	CustomerID    *int64    `json:"customer_id,omitempty"`
	Quantity      int       `json:"quantity"`
	Size          string    `json:"size,omitempty"`
	Status        Status    `json:"status"`
	ProductName   string    `json:"product_name"`
	PriceCents    int64     `json:"price_cents"`
	ImageURL      string    `json:"image_url,omitempty"`
	BuyerName     string    `json:"buyer_name"`
	Address       string    `json:"address"`
	Phone         string    `json:"phone"`
	PaymentMethod string    `json:"payment_method"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Placement is the result of a successful checkout: the post-decrement
// product snapshots and the created order rows, in cart order.
type Placement struct {
	UpdatedProducts []catalog.Product `json:"updated_products"`
	CreatedOrders   []Order           `json:"created_orders"`
}
