// Package wishlist holds the saved-for-later collection.
package wishlist

import "github.com/Nehra4u/Crystal-Ecommerce/internal/catalog"

// State is the wishlist: catalog items, unique by id, in the order they were
// added.
type State struct {
	Items []catalog.Item `json:"items"`
}

// Empty returns a wishlist with no items.
func Empty() State {
	return State{Items: []catalog.Item{}}
}

// Contains reports whether the item id is on the list.
func (s State) Contains(id string) bool {
	for _, it := range s.Items {
		if it.ID == id {
			return true
		}
	}
	return false
}

// Add appends item unless it is already present.
func (s State) Add(item catalog.Item) State {
	if s.Contains(item.ID) {
		return s
	}
	items := make([]catalog.Item, len(s.Items), len(s.Items)+1)
	copy(items, s.Items)
	return State{Items: append(items, item)}
}

// Remove drops the item id. Absent ids are ignored.
func (s State) Remove(id string) State {
	items := make([]catalog.Item, 0, len(s.Items))
	for _, it := range s.Items {
		if it.ID != id {
			items = append(items, it)
		}
	}
	return State{Items: items}
}

// Toggle removes item if present, otherwise adds it.
func (s State) Toggle(item catalog.Item) State {
	if s.Contains(item.ID) {
		return s.Remove(item.ID)
	}
	return s.Add(item)
}

// Clear returns the empty wishlist.
func (s State) Clear() State {
	return Empty()
}
