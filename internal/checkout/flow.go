// Package checkout gates checkout navigation on the cart's step and prices
// the order.
package checkout

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Nehra4u/Crystal-Ecommerce/internal/cart"
	apperrors "github.com/Nehra4u/Crystal-Ecommerce/pkg/errors"
	"github.com/Nehra4u/Crystal-Ecommerce/pkg/validator"
)

var (
	// ErrEmptyCart is returned when checkout needs at least one cart line.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrWrongStep is returned when an order is placed before the payment step.
	ErrWrongStep = errors.New("checkout is not at the payment step")
)

func emptyCart() *apperrors.AppError {
	return &apperrors.AppError{
		Code:    "EMPTY_CART",
		Message: "cart is empty",
		Status:  http.StatusUnprocessableEntity,
		Err:     ErrEmptyCart,
	}
}

// StageEmpty is reported by View instead of a step when the cart has no lines.
const StageEmpty = "empty"

// View is the page-level checkout state.
type View struct {
	Stage      string          `json:"stage"`
	Items      []cart.LineItem `json:"items"`
	TotalItems int             `json:"total_items"`
	Quote      *Quote          `json:"quote,omitempty"`
}

// ShippingDetails is the contact and delivery address collected at the
// shipping step.
type ShippingDetails struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Address   string `json:"address" validate:"required,max=255"`
	City      string `json:"city" validate:"required,max=100"`
	State     string `json:"state" validate:"max=100"`
	ZipCode   string `json:"zip_code" validate:"required,max=20"`
	Country   string `json:"country" validate:"required,iso3166_1_alpha2"`
}

// OrderRequest is handed to the OrderConfirmer when an order is placed.
type OrderRequest struct {
	ClientID string          `json:"client_id"`
	Items    []cart.LineItem `json:"items"`
	Shipping ShippingDetails `json:"shipping"`
	Quote    Quote           `json:"quote"`
}

// OrderConfirmer accepts an order and returns a confirmation reference.
type OrderConfirmer interface {
	ConfirmOrder(ctx context.Context, req OrderRequest) (string, error)
}

// Confirmation is the result of a placed order.
type Confirmation struct {
	Reference string `json:"reference"`
	Quote     Quote  `json:"quote"`
}

// Flow drives checkout for one cart.
type Flow struct {
	cart      *cart.Store
	clientID  string
	pricing   Pricing
	confirmer OrderConfirmer
	logger    *slog.Logger
}

// NewFlow creates a checkout flow over c.
func NewFlow(c *cart.Store, clientID string, pricing Pricing, confirmer OrderConfirmer, logger *slog.Logger) *Flow {
	return &Flow{
		cart:      c,
		clientID:  clientID,
		pricing:   pricing,
		confirmer: confirmer,
		logger:    logger,
	}
}

// View returns the current checkout page. An empty cart yields StageEmpty
// regardless of the stored step, and the store is left untouched.
func (f *Flow) View(method string) (View, error) {
	st := f.cart.State()
	if len(st.Items) == 0 {
		return View{Stage: StageEmpty, Items: []cart.LineItem{}}, nil
	}
	q, err := f.pricing.Quote(st, method)
	if err != nil {
		return View{}, err
	}
	return View{
		Stage:      string(st.Step),
		Items:      st.Items,
		TotalItems: st.TotalItems(),
		Quote:      &q,
	}, nil
}

// Next advances to the following step. It fails with ErrEmptyCart when there
// is nothing to check out and is a no-op at the payment step.
func (f *Flow) Next(ctx context.Context) (cart.Step, error) {
	st := f.cart.State()
	if len(st.Items) == 0 {
		return st.Step, emptyCart()
	}
	next := st.Step.Next()
	if next == st.Step {
		return st.Step, nil
	}
	return f.cart.SetStep(ctx, next).Step, nil
}

// Back returns to the previous step; it is a no-op at the cart step.
func (f *Flow) Back(ctx context.Context) cart.Step {
	st := f.cart.State()
	prev := st.Step.Prev()
	if prev == st.Step {
		return st.Step
	}
	return f.cart.SetStep(ctx, prev).Step
}

// PlaceOrder submits the cart once checkout has reached the payment step. On
// success the cart is cleared and returned to the cart step.
func (f *Flow) PlaceOrder(ctx context.Context, details ShippingDetails, method string) (Confirmation, error) {
	if err := validator.Validate(details); err != nil {
		return Confirmation{}, err
	}

	st := f.cart.State()
	if len(st.Items) == 0 {
		return Confirmation{}, emptyCart()
	}
	if st.Step != cart.StepPayment {
		return Confirmation{}, &apperrors.AppError{
			Code:    "WRONG_STEP",
			Message: "checkout is at the " + string(st.Step) + " step",
			Status:  http.StatusConflict,
			Err:     ErrWrongStep,
		}
	}

	q, err := f.pricing.Quote(st, method)
	if err != nil {
		return Confirmation{}, err
	}

	ref, err := f.confirmer.ConfirmOrder(ctx, OrderRequest{
		ClientID: f.clientID,
		Items:    st.Items,
		Shipping: details,
		Quote:    q,
	})
	if err != nil {
		return Confirmation{}, err
	}

	f.cart.ClearCart(ctx)
	f.cart.SetStep(ctx, cart.StepCart)

	f.logger.InfoContext(ctx, "order placed",
		slog.String("reference", ref),
		slog.Int64("total", q.Total),
		slog.Int("items", st.TotalItems()),
	)
	return Confirmation{Reference: ref, Quote: q}, nil
}
