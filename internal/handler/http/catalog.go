package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Nehra4u/Crystal-Ecommerce/internal/catalog"
	"github.com/Nehra4u/Crystal-Ecommerce/pkg/httputil"
	"github.com/Nehra4u/Crystal-Ecommerce/pkg/pagination"
)

// CatalogHandler exposes the read-only catalog.
type CatalogHandler struct {
	catalog catalog.Catalog
	logger  *slog.Logger
}

// NewCatalogHandler creates a new catalog HTTP handler.
func NewCatalogHandler(cat catalog.Catalog, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: cat, logger: logger}
}

// ListItems handles GET /api/v1/catalog?category=&in_stock=&page=&per_page=
func (h *CatalogHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)
	filter := catalog.Filter{
		Category: r.URL.Query().Get("category"),
		Offset:   params.Offset,
		Limit:    params.PerPage,
	}
	if v := r.URL.Query().Get("in_stock"); v != "" {
		inStock, err := strconv.ParseBool(v)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "in_stock must be a boolean"},
			})
			return
		}
		filter.InStockOnly = inStock
	}

	items, total, err := h.catalog.List(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, pagination.NewResult(items, total, params))
}

// GetItem handles GET /api/v1/catalog/{id}
func (h *CatalogHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: item})
}
