package cart

import "github.com/Nehra4u/Crystal-Ecommerce/internal/catalog"

// Command is a cart mutation. The set of commands is closed.
type Command interface {
	isCommand()
}

// AddItem adds Quantity of Item. If a line for the same catalog item exists
// its quantity grows; otherwise a new line with LineID is appended.
type AddItem struct {
	LineID   string
	Item     catalog.Item
	Quantity int
}

// RemoveItem drops a line. Unknown ids are ignored.
type RemoveItem struct {
	LineID string
}

// UpdateQuantity sets a line's quantity. A quantity of zero or less removes
// the line.
type UpdateQuantity struct {
	LineID   string
	Quantity int
}

// UpdateOptions merges Patch into a line's options.
type UpdateOptions struct {
	LineID string
	Patch  OptionsPatch
}

// Clear empties the cart and keeps the current step.
type Clear struct{}

// SetStep moves the cart to Step. Adjacency is not enforced here.
type SetStep struct {
	Step Step
}

// ToggleOpen flips the drawer visibility flag.
type ToggleOpen struct{}

func (AddItem) isCommand()        {}
func (RemoveItem) isCommand()     {}
func (UpdateQuantity) isCommand() {}
func (UpdateOptions) isCommand()  {}
func (Clear) isCommand()          {}
func (SetStep) isCommand()        {}
func (ToggleOpen) isCommand()     {}

// Reduce returns the state that results from applying cmd to s. It never
// modifies s. Invalid arguments are normalized rather than rejected.
func Reduce(s State, cmd Command) State {
	switch c := cmd.(type) {
	case AddItem:
		qty := c.Quantity
		if qty < 1 {
			qty = 1
		}
		items := cloneItems(s.Items)
		for i := range items {
			if items[i].Item.ID == c.Item.ID {
				items[i].Quantity += qty
				s.Items = items
				return s
			}
		}
		lineID := c.LineID
		if lineID == "" {
			lineID = c.Item.ID
		}
		s.Items = append(items, LineItem{LineID: lineID, Item: c.Item, Quantity: qty})
		return s

	case RemoveItem:
		s.Items = without(s.Items, c.LineID)
		return s

	case UpdateQuantity:
		if c.Quantity <= 0 {
			s.Items = without(s.Items, c.LineID)
			return s
		}
		if i := s.indexOf(c.LineID); i >= 0 {
			items := cloneItems(s.Items)
			items[i].Quantity = c.Quantity
			s.Items = items
		}
		return s

	case UpdateOptions:
		if i := s.indexOf(c.LineID); i >= 0 {
			items := cloneItems(s.Items)
			items[i].Options = c.Patch.Apply(items[i].Options)
			s.Items = items
		}
		return s

	case Clear:
		s.Items = []LineItem{}
		return s

	case SetStep:
		if _, ok := ParseStep(string(c.Step)); ok {
			s.Step = c.Step
		}
		return s

	case ToggleOpen:
		s.IsOpen = !s.IsOpen
		return s
	}
	return s
}

func cloneItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items), len(items)+1)
	copy(out, items)
	return out
}

func without(items []LineItem, lineID string) []LineItem {
	out := make([]LineItem, 0, len(items))
	for _, l := range items {
		if l.LineID != lineID {
			out = append(out, l)
		}
	}
	return out
}
