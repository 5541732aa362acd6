package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Nehra4u/Crystal-Ecommerce/internal/catalog"
	"github.com/Nehra4u/Crystal-Ecommerce/internal/wishlist"
	"github.com/Nehra4u/Crystal-Ecommerce/pkg/httputil"
	"github.com/Nehra4u/Crystal-Ecommerce/pkg/validator"
)

// WishlistHandler handles HTTP requests for wishlist endpoints.
type WishlistHandler struct {
	sessions Sessions
	catalog  catalog.Catalog
	logger   *slog.Logger
}

// NewWishlistHandler creates a new wishlist HTTP handler.
func NewWishlistHandler(sessions Sessions, cat catalog.Catalog, logger *slog.Logger) *WishlistHandler {
	return &WishlistHandler{
		sessions: sessions,
		catalog:  cat,
		logger:   logger,
	}
}

// WishlistItemRequest names a catalog item to save.
type WishlistItemRequest struct {
	ItemID string `json:"item_id" validate:"required,max=64"`
}

// WishlistView is the page-level wishlist representation.
type WishlistView struct {
	Items      []catalog.Item `json:"items"`
	TotalItems int            `json:"total_items"`
}

// MembershipView reports whether an item is on the wishlist.
type MembershipView struct {
	ItemID     string `json:"item_id"`
	InWishlist bool   `json:"in_wishlist"`
}

func writeWishlist(w http.ResponseWriter, st wishlist.State) {
	items := st.Items
	if items == nil {
		items = []catalog.Item{}
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: WishlistView{Items: items, TotalItems: len(items)},
	})
}

// GetWishlist handles GET /api/v1/wishlist
func (h *WishlistHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	writeWishlist(w, sessionFor(h.sessions, r).Wishlist.State())
}

// ClearWishlist handles DELETE /api/v1/wishlist
func (h *WishlistHandler) ClearWishlist(w http.ResponseWriter, r *http.Request) {
	writeWishlist(w, sessionFor(h.sessions, r).Wishlist.ClearWishlist(r.Context()))
}

// AddItem handles POST /api/v1/wishlist/items
func (h *WishlistHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req WishlistItemRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	item, err := h.catalog.Get(r.Context(), req.ItemID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	writeWishlist(w, sessionFor(h.sessions, r).Wishlist.AddToWishlist(r.Context(), *item))
}

// RemoveItem handles DELETE /api/v1/wishlist/items/{itemId}
func (h *WishlistHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	st := sessionFor(h.sessions, r).Wishlist.RemoveFromWishlist(r.Context(), chi.URLParam(r, "itemId"))
	writeWishlist(w, st)
}

// GetItem handles GET /api/v1/wishlist/items/{itemId}
func (h *WishlistHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "itemId")
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: MembershipView{ItemID: id, InWishlist: sessionFor(h.sessions, r).Wishlist.IsInWishlist(id)},
	})
}

// ToggleItem handles POST /api/v1/wishlist/items/{itemId}/toggle
func (h *WishlistHandler) ToggleItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.catalog.Get(r.Context(), chi.URLParam(r, "itemId"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	_, in := sessionFor(h.sessions, r).Wishlist.Toggle(r.Context(), *item)
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: MembershipView{ItemID: item.ID, InWishlist: in},
	})
}

// MoveToCart handles POST /api/v1/wishlist/items/{itemId}/move-to-cart
func (h *WishlistHandler) MoveToCart(w http.ResponseWriter, r *http.Request) {
	sess := sessionFor(h.sessions, r)
	st, err := sess.Wishlist.MoveToCart(r.Context(), chi.URLParam(r, "itemId"), sess.Cart)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	writeCart(w, http.StatusOK, st)
}
