package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/quickshop/quickshop/internal/cart"
	"github.com/quickshop/quickshop/internal/catalog"
	"github.com/quickshop/quickshop/internal/orders"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// writeError maps the domain error taxonomy onto HTTP status codes and
// keeps the message user-readable. Unknown errors become a bare 500.
func writeError(w http.ResponseWriter, err error) {
	var (
		notFound     *orders.NotFoundError
		invalidInput *orders.InvalidInputError
		noStock      *orders.InsufficientStockError
		badStep      *orders.InvalidTransitionError
	)
	switch {
	case errors.As(err, &notFound), errors.Is(err, catalog.ErrNotFound):
		writeMessage(w, http.StatusNotFound, err.Error())
	case errors.As(err, &invalidInput),
		errors.Is(err, orders.ErrEmptyCart),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, catalog.ErrBadInput),
		errors.As(err, &noStock):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &badStep):
		writeMessage(w, http.StatusConflict, err.Error())
	case errors.Is(err, orders.ErrForbidden), errors.Is(err, catalog.ErrNotOwner):
		writeMessage(w, http.StatusForbidden, err.Error())
	case errors.Is(err, orders.ErrNotShipped):
		writeMessage(w, http.StatusPreconditionFailed, err.Error())
	default:
		writeMessage(w, http.StatusInternalServerError, "internal server error")
	}
}
