package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound = errors.New("product not found")
	ErrNotOwner = errors.New("product belongs to a different seller")
)

type Repo struct{ DB *pgxpool.Pool }

const productCols = `id, seller_id, name, price_cents, stock, size_options, image_url, description, created_at, updated_at`

func scanProduct(row pgx.Row) (*Product, error) {
	p := &Product{}
	var imageURL, description *string
	err := row.Scan(&p.ID, &p.SellerID, &p.Name, &p.PriceCents, &p.Stock,
		&p.SizeOptions, &imageURL, &description, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if imageURL != nil {
		p.ImageURL = *imageURL
	}
	if description != nil {
		p.Description = *description
	}
	return p, nil
}

func (r *Repo) ListProducts(ctx context.Context) ([]Product, error) {
	return r.list(ctx, `SELECT `+productCols+` FROM products ORDER BY created_at DESC, id DESC`)
}

func (r *Repo) ListBySeller(ctx context.Context, sellerID int64) ([]Product, error) {
	return r.list(ctx, `SELECT `+productCols+` FROM products WHERE seller_id = $1 ORDER BY created_at DESC, id DESC`, sellerID)
}

func (r *Repo) list(ctx context.Context, sql string, args ...any) ([]Product, error) {
	rows, err := r.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *Repo) GetProduct(ctx context.Context, id int64) (*Product, error) {
	p, err := scanProduct(r.DB.QueryRow(ctx, `SELECT `+productCols+` FROM products WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

func (r *Repo) CreateProduct(ctx context.Context, sellerID int64, in ProductInput) (*Product, error) {
	if err := in.Normalize(); err != nil {
		return nil, err
	}
	row := r.DB.QueryRow(ctx, `
		INSERT INTO products (seller_id, name, price_cents, stock, size_options, image_url, description)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''))
		RETURNING `+productCols,
		sellerID, in.Name, in.PriceCents, in.Stock, in.SizeOptions, in.ImageURL, in.Description,
	)
	return scanProduct(row)
}

// UpdateProduct rewrites all editable columns. The seller guard is part
// of the statement, so a non-owner update affects no rows.
func (r *Repo) UpdateProduct(ctx context.Context, sellerID, id int64, in ProductInput) (*Product, error) {
	if err := in.Normalize(); err != nil {
		return nil, err
	}
	row := r.DB.QueryRow(ctx, `
		UPDATE products
		SET name = $3, price_cents = $4, stock = $5, size_options = $6,
		    image_url = NULLIF($7, ''), description = NULLIF($8, ''), updated_at = now()
		WHERE id = $1 AND seller_id = $2
		RETURNING `+productCols,
		id, sellerID, in.Name, in.PriceCents, in.Stock, in.SizeOptions, in.ImageURL, in.Description,
	)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		// distinguish a missing product from someone else's product
		if _, getErr := r.GetProduct(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, ErrNotOwner
	}
	return p, err
}
