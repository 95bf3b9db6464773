package orders

import (
	"context"
	"errors"
	"slices"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quickshop/quickshop/internal/accounts"
	"github.com/quickshop/quickshop/internal/catalog"
)

type Repo struct{ DB *pgxpool.Pool }

const orderCols = `id, product_id, seller_id, customer_id, quantity, size, status,
	product_name, price_cents, image_url, buyer_name, address, phone, payment_method,
	created_at, updated_at`

func scanOrder(row pgx.Row) (*Order, error) {
	o := &Order{}
	var size, imageURL *string
	var status string
	err := row.Scan(&o.ID, &o.ProductID, &o.SellerID, &o.CustomerID, &o.Quantity, &size, &status,
		&o.ProductName, &o.PriceCents, &imageURL, &o.BuyerName, &o.Address, &o.Phone, &o.PaymentMethod,
		&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.Status = Status(status)
	if size != nil {
		o.Size = *size
	}
	if imageURL != nil {
		o.ImageURL = *imageURL
	}
	return o, nil
}

// PlaceOrder runs one checkout: every line is applied inside a single
// transaction, each product row locked with FOR UPDATE before its stock
// is re-checked. Any shortfall aborts the whole request, so a cart
// where the first line fits and the second does not leaves both
// products untouched.
func (r *Repo) PlaceOrder(ctx context.Context, items []LineItem, buyer Buyer) (*Placement, error) {
	if err := ValidatePlacement(items, buyer); err != nil {
		return nil, err
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	placement := &Placement{
		UpdatedProducts: make([]catalog.Product, 0, len(items)),
		CreatedOrders:   make([]Order, 0, len(items)),
	}

	for _, it := range items {
		var (
			sellerID   *int64
			name       string
			priceCents int64
			stock      int
			sizes      []string
			imageURL   *string
		)
		err := tx.QueryRow(ctx, `
			SELECT seller_id, name, price_cents, stock, size_options, image_url
			FROM products WHERE id = $1 FOR UPDATE`, it.ProductID,
		).Scan(&sellerID, &name, &priceCents, &stock, &sizes, &imageURL)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Kind: "product", ID: it.ProductID}
		}
		if err != nil {
			return nil, err
		}

		if it.Size != "" && !slices.Contains(sizes, it.Size) {
			return nil, invalidInput("size %q is not offered for product %d", it.Size, it.ProductID)
		}
		if stock < it.Quantity {
			return nil, &InsufficientStockError{
				ProductID: it.ProductID, Requested: it.Quantity, Available: stock,
			}
		}

		var updated catalog.Product
		var updImage, updDesc *string
		err = tx.QueryRow(ctx, `
			UPDATE products SET stock = stock - $2, updated_at = now()
			WHERE id = $1
			RETURNING id, seller_id, name, price_cents, stock, size_options, image_url, description, created_at, updated_at`,
			it.ProductID, it.Quantity,
		).Scan(&updated.ID, &updated.SellerID, &updated.Name, &updated.PriceCents, &updated.Stock,
			&updated.SizeOptions, &updImage, &updDesc, &updated.CreatedAt, &updated.UpdatedAt)
		if err != nil {
			return nil, err
		}
		if updImage != nil {
			updated.ImageURL = *updImage
		}
		if updDesc != nil {
			updated.Description = *updDesc
		}

		row := tx.QueryRow(ctx, `
			INSERT INTO orders (product_id, seller_id, customer_id, quantity, size, status,
				product_name, price_cents, image_url, buyer_name, address, phone, payment_method)
			VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, $9, $10, $11, $12, $13)
			RETURNING `+orderCols,
			it.ProductID, sellerID, buyer.CustomerID, it.Quantity, it.Size, string(StatusPending),
			name, priceCents, imageURL, buyer.FullName, buyer.Address, buyer.Phone, buyer.PaymentMethod,
		)
		order, err := scanOrder(row)
		if err != nil {
			return nil, err
		}

		placement.CreatedOrders = append(placement.CreatedOrders, *order)
		placement.UpdatedProducts = upsertProduct(placement.UpdatedProducts, updated)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return placement, nil
}

// upsertProduct keeps one snapshot per product, in first-seen order,
// replacing an earlier snapshot when a later line touches the same
// product again.
func upsertProduct(ps []catalog.Product, p catalog.Product) []catalog.Product {
	for i := range ps {
		if ps[i].ID == p.ID {
			ps[i] = p
			return ps
		}
	}
	return append(ps, p)
}

// AdvanceStatus performs a seller-driven single-step transition. A
// target equal to the current status is a no-op success. The write is
// conditioned on the previous status, so two concurrent requests for
// the same step have at most one winner.
func (r *Repo) AdvanceStatus(ctx context.Context, orderID int64, target Status, actor Actor) (*Order, error) {
	if actor.Role != accounts.RoleSeller {
		return nil, ErrForbidden
	}

	order, err := r.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.SellerID != nil && *order.SellerID != actor.ID {
		return nil, ErrForbidden
	}
	if order.Status == target {
		return order, nil
	}
	if target == StatusCompleted {
		// receipt is acknowledged by the customer, never the seller
		return nil, ErrForbidden
	}
	if !CanTransition(order.Status, target) {
		return nil, &InvalidTransitionError{From: order.Status, To: target}
	}

	row := r.DB.QueryRow(ctx, `
		UPDATE orders SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2
		RETURNING `+orderCols,
		orderID, string(order.Status), string(target),
	)
	updated, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		// lost the race; report against the fresh status
		fresh, getErr := r.GetOrder(ctx, orderID)
		if getErr != nil {
			return nil, getErr
		}
		if fresh.Status == target {
			return fresh, nil
		}
		return nil, &InvalidTransitionError{From: fresh.Status, To: target}
	}
	return updated, err
}

// AcknowledgeReceipt is the customer-driven shipped -> completed step.
// An order without a customer id is adopted by the acknowledging
// customer. The guards travel in the statement itself.
func (r *Repo) AcknowledgeReceipt(ctx context.Context, orderID, customerID int64) (*Order, error) {
	order, err := r.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.CustomerID != nil && *order.CustomerID != customerID {
		return nil, ErrForbidden
	}
	if order.Status != StatusShipped {
		return nil, ErrNotShipped
	}

	row := r.DB.QueryRow(ctx, `
		UPDATE orders SET status = $3, customer_id = COALESCE(customer_id, $2), updated_at = now()
		WHERE id = $1 AND status = $4 AND (customer_id IS NULL OR customer_id = $2)
		RETURNING `+orderCols,
		orderID, customerID, string(StatusCompleted), string(StatusShipped),
	)
	updated, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		fresh, getErr := r.GetOrder(ctx, orderID)
		if getErr != nil {
			return nil, getErr
		}
		if fresh.CustomerID != nil && *fresh.CustomerID != customerID {
			return nil, ErrForbidden
		}
		return nil, ErrNotShipped
	}
	return updated, err
}

func (r *Repo) GetOrder(ctx context.Context, id int64) (*Order, error) {
	o, err := scanOrder(r.DB.QueryRow(ctx, `SELECT `+orderCols+` FROM orders WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &NotFoundError{Kind: "order", ID: id}
	}
	return o, err
}

func (r *Repo) ListByCustomer(ctx context.Context, customerID int64) ([]Order, error) {
	return r.list(ctx, `SELECT `+orderCols+` FROM orders WHERE customer_id = $1 ORDER BY created_at DESC, id DESC`, customerID)
}

func (r *Repo) ListBySeller(ctx context.Context, sellerID int64) ([]Order, error) {
	return r.list(ctx, `SELECT `+orderCols+` FROM orders WHERE seller_id = $1 ORDER BY created_at DESC, id DESC`, sellerID)
}

func (r *Repo) list(ctx context.Context, sql string, args ...any) ([]Order, error) {
	rows, err := r.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}
