package http

import (
	"log/slog"
	"net/http"

	"github.com/Nehra4u/Crystal-Ecommerce/internal/checkout"
	"github.com/Nehra4u/Crystal-Ecommerce/pkg/httputil"
	"github.com/Nehra4u/Crystal-Ecommerce/pkg/validator"
)

// CheckoutHandler handles HTTP requests for the step-gated checkout.
type CheckoutHandler struct {
	sessions  Sessions
	pricing   checkout.Pricing
	confirmer checkout.OrderConfirmer
	logger    *slog.Logger
}

// NewCheckoutHandler creates a new checkout HTTP handler.
func NewCheckoutHandler(sessions Sessions, pricing checkout.Pricing, confirmer checkout.OrderConfirmer, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		sessions:  sessions,
		pricing:   pricing,
		confirmer: confirmer,
		logger:    logger,
	}
}

// PlaceOrderRequest is the JSON request body for submitting an order.
type PlaceOrderRequest struct {
	Shipping checkout.ShippingDetails `json:"shipping"`
	Method   string                   `json:"method" validate:"omitempty,oneof=standard express"`
}

func (h *CheckoutHandler) flow(r *http.Request) *checkout.Flow {
	sess := sessionFor(h.sessions, r)
	return checkout.NewFlow(sess.Cart, sess.ClientID, h.pricing, h.confirmer, h.logger)
}

// shippingMethod reads ?method=, writing a 400 when it is not a known method.
func shippingMethod(w http.ResponseWriter, r *http.Request) (string, bool) {
	m := r.URL.Query().Get("method")
	switch m {
	case "", checkout.MethodStandard, checkout.MethodExpress:
		return m, true
	}
	httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
		Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "method must be one of: standard, express"},
	})
	return "", false
}

func (h *CheckoutHandler) writeView(w http.ResponseWriter, r *http.Request, f *checkout.Flow, method string) {
	view, err := f.View(method)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: view})
}

// GetCheckout handles GET /api/v1/checkout?method=
func (h *CheckoutHandler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	method, ok := shippingMethod(w, r)
	if !ok {
		return
	}
	h.writeView(w, r, h.flow(r), method)
}

// Next handles POST /api/v1/checkout/next
func (h *CheckoutHandler) Next(w http.ResponseWriter, r *http.Request) {
	method, ok := shippingMethod(w, r)
	if !ok {
		return
	}
	f := h.flow(r)
	if _, err := f.Next(r.Context()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.writeView(w, r, f, method)
}

// Back handles POST /api/v1/checkout/back
func (h *CheckoutHandler) Back(w http.ResponseWriter, r *http.Request) {
	method, ok := shippingMethod(w, r)
	if !ok {
		return
	}
	f := h.flow(r)
	f.Back(r.Context())
	h.writeView(w, r, f, method)
}

// PlaceOrder handles POST /api/v1/checkout/orders
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	conf, err := h.flow(r).PlaceOrder(r.Context(), req.Shipping, req.Method)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: conf})
}
