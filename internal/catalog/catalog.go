// Package catalog is the read-only product collaborator the cart and wishlist
// resolve items against.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	apperrors "github.com/Nehra4u/Crystal-Ecommerce/pkg/errors"
)

// DefaultCurrency is used when a source does not carry one.
const DefaultCurrency = "CZK"

// ErrOutOfStock is returned when an operation requires an item that is
// currently not in stock.
var ErrOutOfStock = errors.New("catalog item out of stock")

// OutOfStock creates a 422 error wrapping ErrOutOfStock.
func OutOfStock(id string) *apperrors.AppError {
	return &apperrors.AppError{
		Code:    "OUT_OF_STOCK",
		Message: fmt.Sprintf("catalog item %s is out of stock", id),
		Status:  http.StatusUnprocessableEntity,
		Err:     ErrOutOfStock,
	}
}

// Item is a catalog record. Price is a non-negative whole amount in Currency.
type Item struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Category string `json:"category"`
	Price    int64  `json:"price"`
	Currency string `json:"currency"`
	InStock  bool   `json:"in_stock"`
	ImageURL string `json:"image_url,omitempty"`
}

// Filter narrows List results. A zero Limit means no limit.
type Filter struct {
	Category    string
	InStockOnly bool
	Offset      int
	Limit       int
}

// Catalog looks up and lists items. Get returns apperrors.ErrNotFound for
// unknown ids.
type Catalog interface {
	Get(ctx context.Context, id string) (*Item, error)
	List(ctx context.Context, f Filter) ([]Item, int, error)
}
