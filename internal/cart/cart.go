// Package cart holds the shopper's cart as an immutable snapshot driven by a reducer.
package cart

import "storefront/backend/internal/models"

// TaxRate is applied to the subtotal.
const TaxRate = 0.1

// Item is a listing reference held in the cart.
type Item struct {
	ID       uint    `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	CoverURL string  `json:"cover_url,omitempty"`
}

// ItemFromListing builds a cart item; the cover is the first gallery URL.
func ItemFromListing(l *models.Listing) Item {
	item := Item{ID: l.ID, Name: l.Name, Price: l.Price}
	if urls := l.MediaURLs(); len(urls) > 0 {
		item.CoverURL = urls[0]
	}
	return item
}

// State is a cart snapshot. The zero value is an empty cart.
// A State is never modified after it is returned from Reduce.
type State struct {
	items []Item
}

// Items returns a copy of the cart contents in insertion order.
func (s State) Items() []Item {
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

func (s State) Contains(id uint) bool {
	for _, it := range s.items {
		if it.ID == id {
			return true
		}
	}
	return false
}

// Count is the number of distinct listings in the cart.
func (s State) Count() int { return len(s.items) }

type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

func (s State) Totals() Totals {
	var sub float64
	for _, it := range s.items {
		sub += it.Price
	}
	tax := sub * TaxRate
	return Totals{Subtotal: sub, Tax: tax, Total: sub + tax}
}

type ActionType int

const (
	ActionAdd ActionType = iota
	ActionRemove
	ActionClear
)

// Action is a cart transition.
type Action struct {
	Type ActionType
	Item Item
	ID   uint
}

func Add(item Item) Action  { return Action{Type: ActionAdd, Item: item} }
func Remove(id uint) Action { return Action{Type: ActionRemove, ID: id} }
func Clear() Action         { return Action{Type: ActionClear} }

// Reduce applies a to s. Adding an id already present is a no-op, removing an
// absent id is a no-op.
func Reduce(s State, a Action) State {
	switch a.Type {
	case ActionAdd:
		if s.Contains(a.Item.ID) {
			return s
		}
		items := make([]Item, len(s.items), len(s.items)+1)
		copy(items, s.items)
		return State{items: append(items, a.Item)}
	case ActionRemove:
		if !s.Contains(a.ID) {
			return s
		}
		items := make([]Item, 0, len(s.items)-1)
		for _, it := range s.items {
			if it.ID != a.ID {
				items = append(items, it)
			}
		}
		return State{items: items}
	case ActionClear:
		return State{}
	}
	return s
}
