// Package cart holds the shopping cart collection and its checkout step.
package cart

import "github.com/Nehra4u/Crystal-Ecommerce/internal/catalog"

// Flat per-line add-on surcharges, in the catalog's currency unit. They do not
// scale with quantity.
const (
	GiftBagSurcharge int64 = 59
	GiftBoxSurcharge int64 = 990
)

// Step is the checkout stage the cart is in.
type Step string

const (
	StepCart     Step = "cart"
	StepShipping Step = "shipping"
	StepPayment  Step = "payment"
)

var stepOrder = []Step{StepCart, StepShipping, StepPayment}

// ParseStep validates s as a Step.
func ParseStep(s string) (Step, bool) {
	for _, st := range stepOrder {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// Next returns the step after st, or st itself at the last step.
func (st Step) Next() Step {
	for i, s := range stepOrder {
		if s == st && i+1 < len(stepOrder) {
			return stepOrder[i+1]
		}
	}
	return st
}

// Prev returns the step before st, or st itself at the first step.
func (st Step) Prev() Step {
	for i, s := range stepOrder {
		if s == st && i > 0 {
			return stepOrder[i-1]
		}
	}
	return st
}

// Options are the named add-ons selected for a line.
type Options struct {
	GiftBag bool `json:"gift_bag"`
	GiftBox bool `json:"gift_box"`
}

// OptionsPatch is a partial Options update. Nil fields leave the current
// value untouched.
type OptionsPatch struct {
	GiftBag *bool `json:"gift_bag,omitempty"`
	GiftBox *bool `json:"gift_box,omitempty"`
}

// Apply returns o with the set fields of p overwritten.
func (p OptionsPatch) Apply(o Options) Options {
	if p.GiftBag != nil {
		o.GiftBag = *p.GiftBag
	}
	if p.GiftBox != nil {
		o.GiftBox = *p.GiftBox
	}
	return o
}

// Surcharge is the flat add-on cost for o.
func (o Options) Surcharge() int64 {
	var s int64
	if o.GiftBag {
		s += GiftBagSurcharge
	}
	if o.GiftBox {
		s += GiftBoxSurcharge
	}
	return s
}

// LineItem is one cart line. LineID is assigned when the line is created and
// is independent of the catalog id.
type LineItem struct {
	LineID   string       `json:"line_id"`
	Item     catalog.Item `json:"item"`
	Quantity int          `json:"quantity"`
	Options  Options      `json:"selected_options"`
}

// Total is price × quantity plus the line's add-on surcharges.
func (l LineItem) Total() int64 {
	return l.Item.Price*int64(l.Quantity) + l.Options.Surcharge()
}

// State is the cart collection. IsOpen is UI state and is never persisted.
type State struct {
	Items  []LineItem `json:"items"`
	Step   Step       `json:"step"`
	IsOpen bool       `json:"is_open"`
}

// Empty returns a cart with no lines at the first step.
func Empty() State {
	return State{Items: []LineItem{}, Step: StepCart}
}

// TotalItems is the sum of line quantities.
func (s State) TotalItems() int {
	n := 0
	for _, l := range s.Items {
		n += l.Quantity
	}
	return n
}

// TotalPrice is the sum of line totals.
func (s State) TotalPrice() int64 {
	var total int64
	for _, l := range s.Items {
		total += l.Total()
	}
	return total
}

// Line returns the line with the given id.
func (s State) Line(lineID string) (LineItem, bool) {
	if i := s.indexOf(lineID); i >= 0 {
		return s.Items[i], true
	}
	return LineItem{}, false
}

// FindByItem returns the line holding the given catalog item.
func (s State) FindByItem(itemID string) (LineItem, bool) {
	for _, l := range s.Items {
		if l.Item.ID == itemID {
			return l, true
		}
	}
	return LineItem{}, false
}

func (s State) indexOf(lineID string) int {
	for i := range s.Items {
		if s.Items[i].LineID == lineID {
			return i
		}
	}
	return -1
}
