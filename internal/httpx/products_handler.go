package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/quickshop/quickshop/internal/accounts"
	"github.com/quickshop/quickshop/internal/catalog"
	"github.com/quickshop/quickshop/internal/orders"
)

type CatalogStore interface {
	ListProducts(ctx context.Context) ([]catalog.Product, error)
	ListBySeller(ctx context.Context, sellerID int64) ([]catalog.Product, error)
	GetProduct(ctx context.Context, id int64) (*catalog.Product, error)
	CreateProduct(ctx context.Context, sellerID int64, in catalog.ProductInput) (*catalog.Product, error)
	UpdateProduct(ctx context.Context, sellerID, id int64, in catalog.ProductInput) (*catalog.Product, error)
}

type UserStore interface {
	GetUser(ctx context.Context, id int64) (*accounts.User, error)
}

type ProductsHandler struct {
	Catalog CatalogStore
	Users   UserStore
}

func (h *ProductsHandler) Register(r *chi.Mux) {
	r.Get("/api/products", h.listProducts)
	r.Get("/api/products/{id}", h.getProduct)
	r.Post("/api/products", h.createProduct)
	r.Put("/api/products/{id}", h.updateProduct)
}

func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func (h *ProductsHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if raw := r.URL.Query().Get("seller_id"); raw != "" {
		sellerID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid seller id supplied")
			return
		}
		ps, err := h.Catalog.ListBySeller(ctx, sellerID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ps)
		return
	}

	ps, err := h.Catalog.ListProducts(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *ProductsHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "invalid product id supplied")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Catalog.GetProduct(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type productReq struct {
	SellerID int64 `json:"seller_id"`
	catalog.ProductInput
}

// requireSeller resolves the acting user and checks the seller role.
func (h *ProductsHandler) requireSeller(ctx context.Context, w http.ResponseWriter, sellerID int64) bool {
	if sellerID <= 0 {
		writeMessage(w, http.StatusBadRequest, "seller_id is required")
		return false
	}
	u, err := h.Users.GetUser(ctx, sellerID)
	if err != nil {
		writeError(w, err)
		return false
	}
	if u == nil || u.Role != accounts.RoleSeller {
		writeError(w, orders.ErrForbidden)
		return false
	}
	return true
}

func (h *ProductsHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if !h.requireSeller(ctx, w, req.SellerID) {
		return
	}

	p, err := h.Catalog.CreateProduct(ctx, req.SellerID, req.ProductInput)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *ProductsHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "invalid product id supplied")
		return
	}

	var req productReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if !h.requireSeller(ctx, w, req.SellerID) {
		return
	}

	p, err := h.Catalog.UpdateProduct(ctx, req.SellerID, id, req.ProductInput)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
