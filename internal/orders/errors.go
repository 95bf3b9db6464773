package orders

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCart  = errors.New("cart must contain at least one item")
	ErrForbidden  = errors.New("actor is not allowed to perform this action")
	ErrNotShipped = errors.New("order has not been shipped yet")
)

// NotFoundError names the missing record.
type NotFoundError struct {
	Kind string // "product" | "order"
	ID   int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

// InvalidInputError wraps a validation failure so the HTTP layer can
// map the whole family to one status code.
type InvalidInputError struct{ Reason string }

func (e *InvalidInputError) Error() string { return e.Reason }

func invalidInput(format string, args ...any) error {
	return &InvalidInputError{Reason: fmt.Sprintf(format, args...)}
}

type InsufficientStockError struct {
	ProductID int64
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition order from %s to %s", e.From, e.To)
}
