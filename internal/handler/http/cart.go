package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Nehra4u/Crystal-Ecommerce/internal/cart"
	"github.com/Nehra4u/Crystal-Ecommerce/internal/catalog"
	"github.com/Nehra4u/Crystal-Ecommerce/pkg/httputil"
	"github.com/Nehra4u/Crystal-Ecommerce/pkg/validator"
)

// CartHandler handles HTTP requests for cart endpoints.
type CartHandler struct {
	sessions Sessions
	catalog  catalog.Catalog
	logger   *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(sessions Sessions, cat catalog.Catalog, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		sessions: sessions,
		catalog:  cat,
		logger:   logger,
	}
}

// --- Request DTOs ---

// AddItemRequest is the JSON request body for adding an item to the cart.
type AddItemRequest struct {
	ItemID   string `json:"item_id" validate:"required,max=64"`
	Quantity int    `json:"quantity" validate:"gte=0,lte=99"`
}

// UpdateQuantityRequest sets a line's quantity. Zero or less removes the line.
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required,lte=99"`
}

// UpdateOptionsRequest toggles add-ons on a line; omitted fields are kept.
type UpdateOptionsRequest struct {
	GiftBag *bool `json:"gift_bag"`
	GiftBox *bool `json:"gift_box"`
}

// SetStepRequest jumps the cart to a checkout step.
type SetStepRequest struct {
	Step string `json:"step" validate:"required,oneof=cart shipping payment"`
}

// CartView is the page-level cart representation.
type CartView struct {
	Items      []cart.LineItem `json:"items"`
	Step       cart.Step       `json:"step"`
	IsOpen     bool            `json:"is_open"`
	TotalItems int             `json:"total_items"`
	TotalPrice int64           `json:"total_price"`
}

func newCartView(st cart.State) CartView {
	items := st.Items
	if items == nil {
		items = []cart.LineItem{}
	}
	return CartView{
		Items:      items,
		Step:       st.Step,
		IsOpen:     st.IsOpen,
		TotalItems: st.TotalItems(),
		TotalPrice: st.TotalPrice(),
	}
}

func writeCart(w http.ResponseWriter, status int, st cart.State) {
	httputil.WriteJSON(w, status, httputil.Response{Data: newCartView(st)})
}

// --- Handlers ---

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	writeCart(w, http.StatusOK, sessionFor(h.sessions, r).Cart.State())
}

// ClearCart handles DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	writeCart(w, http.StatusOK, sessionFor(h.sessions, r).Cart.ClearCart(r.Context()))
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	item, err := h.catalog.Get(r.Context(), req.ItemID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if !item.InStock {
		httputil.WriteError(w, r, catalog.OutOfStock(item.ID), h.logger)
		return
	}

	st := sessionFor(h.sessions, r).Cart.AddItem(r.Context(), *item, req.Quantity)
	writeCart(w, http.StatusOK, st)
}

// UpdateItemQuantity handles PUT /api/v1/cart/items/{lineId}
func (h *CartHandler) UpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuantityRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	st := sessionFor(h.sessions, r).Cart.UpdateQuantity(r.Context(), chi.URLParam(r, "lineId"), *req.Quantity)
	writeCart(w, http.StatusOK, st)
}

// UpdateItemOptions handles PATCH /api/v1/cart/items/{lineId}/options
func (h *CartHandler) UpdateItemOptions(w http.ResponseWriter, r *http.Request) {
	var req UpdateOptionsRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	patch := cart.OptionsPatch{GiftBag: req.GiftBag, GiftBox: req.GiftBox}
	st := sessionFor(h.sessions, r).Cart.UpdateOptions(r.Context(), chi.URLParam(r, "lineId"), patch)
	writeCart(w, http.StatusOK, st)
}

// RemoveItem handles DELETE /api/v1/cart/items/{lineId}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	st := sessionFor(h.sessions, r).Cart.RemoveItem(r.Context(), chi.URLParam(r, "lineId"))
	writeCart(w, http.StatusOK, st)
}

// SetStep handles PUT /api/v1/cart/step
func (h *CartHandler) SetStep(w http.ResponseWriter, r *http.Request) {
	var req SetStepRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	step, _ := cart.ParseStep(req.Step)
	writeCart(w, http.StatusOK, sessionFor(h.sessions, r).Cart.SetStep(r.Context(), step))
}

// ToggleOpen handles POST /api/v1/cart/toggle
func (h *CartHandler) ToggleOpen(w http.ResponseWriter, r *http.Request) {
	writeCart(w, http.StatusOK, sessionFor(h.sessions, r).Cart.ToggleOpen(r.Context()))
}
