package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/quickshop/quickshop/internal/cart"
)

type CartStore interface {
	Get(ctx context.Context, key string) ([]cart.Line, error)
	SetItem(ctx context.Context, key string, line cart.Line) error
	Clear(ctx context.Context, key string) error
}

// CartHandler exposes per-key carts. The key is a user id or a
// client-generated guest token; contents are advisory until checkout.
type CartHandler struct {
	Carts CartStore
}

func (h *CartHandler) Register(r *chi.Mux) {
	r.Get("/api/cart/{key}", h.getCart)
	r.Put("/api/cart/{key}/items", h.setItem)
	r.Delete("/api/cart/{key}", h.clearCart)
}

func (h *CartHandler) getCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	lines, err := h.Carts.Get(ctx, chi.URLParam(r, "key"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lines)
}

func (h *CartHandler) setItem(w http.ResponseWriter, r *http.Request) {
	var line cart.Line
	if err := json.NewDecoder(r.Body).Decode(&line); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid json")
		return
	}
	if line.ProductID <= 0 {
		writeMessage(w, http.StatusBadRequest, "invalid product id supplied")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	key := chi.URLParam(r, "key")
	if err := h.Carts.SetItem(ctx, key, line); err != nil {
		writeError(w, err)
		return
	}
	lines, err := h.Carts.Get(ctx, key)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lines)
}

func (h *CartHandler) clearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.Carts.Clear(ctx, chi.URLParam(r, "key")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, []cart.Line{})
}
