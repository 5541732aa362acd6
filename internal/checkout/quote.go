package checkout

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Nehra4u/Crystal-Ecommerce/internal/cart"
)

// DefaultTaxRate is applied to the cart subtotal.
var DefaultTaxRate = decimal.RequireFromString("0.08")

// Pricing turns a cart into a Quote.
type Pricing struct {
	Shipping *ShippingRule
	TaxRate  decimal.Decimal
}

// DefaultPricing uses DefaultShippingRule and DefaultTaxRate.
func DefaultPricing() Pricing {
	return Pricing{
		Shipping: MustCompileShippingRule(DefaultShippingRule),
		TaxRate:  DefaultTaxRate,
	}
}

// Quote is the price breakdown shown during checkout. All amounts are whole
// units of the catalog currency.
type Quote struct {
	Method   string `json:"method"`
	Subtotal int64  `json:"subtotal"`
	Shipping int64  `json:"shipping"`
	Tax      int64  `json:"tax"`
	Total    int64  `json:"total"`
}

// Quote prices s for the given shipping method. Tax is charged on the
// subtotal and rounded half away from zero.
func (p Pricing) Quote(s cart.State, method string) (Quote, error) {
	if method == "" {
		method = MethodStandard
	}
	subtotal := s.TotalPrice()

	shipping, err := p.Shipping.Charge(subtotal, s.TotalItems(), method)
	if err != nil {
		return Quote{}, fmt.Errorf("quote shipping: %w", err)
	}
	tax := decimal.NewFromInt(subtotal).Mul(p.TaxRate).Round(0).IntPart()

	return Quote{
		Method:   method,
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal + shipping + tax,
	}, nil
}
