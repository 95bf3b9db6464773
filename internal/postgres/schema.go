package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGSERIAL PRIMARY KEY,
		username      TEXT NOT NULL,
		email         TEXT,
		password_hash TEXT NOT NULL,
		role          TEXT NOT NULL DEFAULT 'customer',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_username_lower_idx ON users (LOWER(username))`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_email_idx ON users (email) WHERE email IS NOT NULL`,
	`CREATE TABLE IF NOT EXISTS products (
		id           BIGSERIAL PRIMARY KEY,
		seller_id    BIGINT REFERENCES users(id) ON DELETE SET NULL,
		name         TEXT NOT NULL,
		price_cents  BIGINT NOT NULL DEFAULT 0 CHECK (price_cents >= 0),
		stock        INT NOT NULL DEFAULT 0 CHECK (stock >= 0),
		size_options TEXT[] NOT NULL DEFAULT '{}',
		image_url    TEXT,
		description  TEXT,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id             BIGSERIAL PRIMARY KEY,
		product_id     BIGINT NOT NULL REFERENCES products(id),
		seller_id      BIGINT,
		customer_id    BIGINT,
		quantity       INT NOT NULL CHECK (quantity > 0),
		size           TEXT,
		status         TEXT NOT NULL DEFAULT 'pending',
		product_name   TEXT NOT NULL,
		price_cents    BIGINT NOT NULL,
		image_url      TEXT,
		buyer_name     TEXT NOT NULL,
		address        TEXT NOT NULL,
		phone          TEXT NOT NULL,
		payment_method TEXT NOT NULL,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS orders_customer_idx ON orders (customer_id)`,
	`CREATE INDEX IF NOT EXISTS orders_seller_idx ON orders (seller_id)`,
}

// Migrate creates the schema when missing. Statements are idempotent,
// safe to run on every startup.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

type seedProduct struct {
	name        string
	priceCents  int64
	stock       int
	imageURL    string
	description string
}

var seedProducts = []seedProduct{
	{"Classic Tee", 1000, 25, "https://images.unsplash.com/photo-1521572163474-6864f9cf17ab?auto=format&fit=crop&w=600&q=80", "Soft cotton t-shirt available in multiple colors."},
	{"Cardboard Box", 100, 120, "https://images.unsplash.com/photo-1514996937319-344454492b37?auto=format&fit=crop&w=600&q=80", "Sturdy medium size box for shipping or storage."},
	{"Toy Bundle", 1200, 15, "https://images.unsplash.com/photo-1601758003122-58c0fef13782?auto=format&fit=crop&w=600&q=80", "Assorted toys for kids, perfect for parties."},
	{"Instant Noodles Pack", 100, 200, "https://images.unsplash.com/photo-1512058454905-109598bd0cad?auto=format&fit=crop&w=600&q=80", "Quick meal ready in minutes with authentic flavor."},
	{"Cooking Manual", 1500, 10, "https://images.unsplash.com/photo-1513475382585-d06e58bcb0e0?auto=format&fit=crop&w=600&q=80", "Comprehensive cooking guide for beginners."},
	{"Chocolate Cereal", 400, 40, "https://images.unsplash.com/photo-1613478881183-b3a7c633c8e1?auto=format&fit=crop&w=600&q=80", "Crunchy breakfast cereal with chocolate flavor."},
}

// Seed inserts the demo catalog when the products table is empty.
func Seed(ctx context.Context, db *pgxpool.Pool) error {
	var n int
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	for _, p := range seedProducts {
		_, err := db.Exec(ctx, `
			INSERT INTO products (seller_id, name, price_cents, stock, image_url, description)
			VALUES (NULL, $1, $2, $3, $4, $5)`,
			p.name, p.priceCents, p.stock, p.imageURL, p.description,
		)
		if err != nil {
			return err
		}
	}
	return nil
}
