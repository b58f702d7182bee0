package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/GlobalTechSoftwareSolution/farmharvesttohome-sub000/internal/cart"
	"github.com/GlobalTechSoftwareSolution/farmharvesttohome-sub000/internal/catalog"
	"github.com/GlobalTechSoftwareSolution/farmharvesttohome-sub000/internal/domain"
	"github.com/GlobalTechSoftwareSolution/farmharvesttohome-sub000/internal/store"
)

// Catalog is the product lookup the handlers need. Satisfied by
// catalog.Service.
type Catalog interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
}

type CartHandler struct {
	store    store.CartStore
	catalog  Catalog
	shipping cart.ShippingPolicy
	timeout  time.Duration
}

func NewCartHandler(cartStore store.CartStore, cat Catalog, shipping cart.ShippingPolicy, timeout time.Duration) *CartHandler {
	return &CartHandler{
		store:    cartStore,
		catalog:  cat,
		shipping: shipping,
		timeout:  timeout,
	}
}

type AddItemRequestDTO struct {
	ProductID int64  `json:"product_id"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type CartResponseDTO struct {
	Items     []domain.CartItem `json:"items"`
	Empty     bool              `json:"empty"`
	Subtotal  float64           `json:"subtotal"`
	Shipping  float64           `json:"shipping"`
	Total     float64           `json:"total"`
	Recovered bool              `json:"recovered,omitempty"`
}

func (h *CartHandler) cartResponse(items []domain.CartItem, recovered bool) CartResponseDTO {
	if items == nil {
		items = []domain.CartItem{}
	}
	subtotal := cart.Subtotal(items)
	return CartResponseDTO{
		Items:     items,
		Empty:     len(items) == 0,
		Subtotal:  subtotal,
		Shipping:  h.shipping.Cost(subtotal),
		Total:     cart.Total(items, h.shipping),
		Recovered: recovered,
	}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionIDFromContext(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "missing_session", "missing cart session")
		return
	}

	result, err := h.store.Load(ctx, sessionID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load cart")
		return
	}

	respondJSON(w, http.StatusOK, h.cartResponse(result.Items, result.Recovered))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionIDFromContext(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "missing_session", "missing cart session")
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}
	if req.Quantity < 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	// Name, price and image come from the catalog, never from the
	// client.
	product, err := h.catalog.GetProduct(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "product not found")
			return
		}
		respondError(w, http.StatusBadGateway, "catalog_unavailable", "product catalog is unavailable")
		return
	}

	result, err := h.store.Load(ctx, sessionID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load cart")
		return
	}

	items := cart.AddItem(result.Items, domain.CartItem{
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Size:      req.Size,
		Image:     product.Image,
		Quantity:  req.Quantity,
	})

	if err := h.store.Save(ctx, sessionID, items); err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to save cart")
		return
	}

	respondJSON(w, http.StatusCreated, h.cartResponse(items, false))
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionIDFromContext(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "missing_session", "missing cart session")
		return
	}

	productID, ok := productIDFromURL(w, r)
	if !ok {
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	result, err := h.store.Load(ctx, sessionID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load cart")
		return
	}

	items := cart.SetQuantity(result.Items, productID, r.URL.Query().Get("size"), req.Quantity)
	if err := h.store.Save(ctx, sessionID, items); err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to save cart")
		return
	}

	respondJSON(w, http.StatusOK, h.cartResponse(items, false))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionIDFromContext(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "missing_session", "missing cart session")
		return
	}

	productID, ok := productIDFromURL(w, r)
	if !ok {
		return
	}

	result, err := h.store.Load(ctx, sessionID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load cart")
		return
	}

	items := cart.RemoveItem(result.Items, productID, r.URL.Query().Get("size"))
	if err := h.store.Save(ctx, sessionID, items); err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to save cart")
		return
	}

	respondJSON(w, http.StatusOK, h.cartResponse(items, false))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionIDFromContext(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "missing_session", "missing cart session")
		return
	}

	if err := h.store.Clear(ctx, sessionID); err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to clear cart")
		return
	}

	respondJSON(w, http.StatusOK, h.cartResponse(nil, false))
}

func productIDFromURL(w http.ResponseWriter, r *http.Request) (int64, bool) {
	productIDStr := chi.URLParam(r, "product_id")
	productID, err := strconv.ParseInt(productIDStr, 10, 64)
	if err != nil || productID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return 0, false
	}
	return productID, true
}
