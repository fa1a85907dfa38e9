package cart

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/velora-shop/storefront-backend/pkg/errors"
)

// Store owns the in-session cart. All mutations go through it, and consumers
// observe changes through Subscribe rather than polling.
type Store struct {
	mu      sync.RWMutex
	entries []Entry
	subs    map[int]func()
	nextSub int
}

// NewStore builds an empty cart store.
func NewStore() *Store {
	return &Store{subs: make(map[int]func())}
}

// ItemChanges carries a partial line-item mutation. Nil fields are untouched.
type ItemChanges struct {
	Quantity *int `json:"quantity,omitempty"`
}

// Add merges the item into an existing entry with the same identity key, or
// appends it in insertion order. New entries start selected. Quantity bounds
// against stock are the caller's responsibility.
func (s *Store) Add(item LineItem) {
	s.mu.Lock()
	key := item.key()
	merged := false
	for i := range s.entries {
		if s.entries[i].Item.key() == key {
			s.entries[i].Item.Quantity += item.Quantity
			merged = true
			break
		}
	}
	if !merged {
		s.entries = append(s.entries, Entry{Item: item, Selected: true})
	}
	s.mu.Unlock()
	s.notify()
}

// UpdateItem shallow-merges the changes into the entry at the given position.
func (s *Store) UpdateItem(index int, changes ItemChanges) error {
	s.mu.Lock()
	if index < 0 || index >= len(s.entries) {
		s.mu.Unlock()
		return outOfRange(index, len(s.entries))
	}
	if changes.Quantity != nil {
		if *changes.Quantity < 1 {
			s.mu.Unlock()
			return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
		}
		s.entries[index].Item.Quantity = *changes.Quantity
	}
	s.mu.Unlock()
	s.notify()
	return nil
}

// Remove deletes the entry at the given position; later entries shift down.
func (s *Store) Remove(index int) error {
	s.mu.Lock()
	if index < 0 || index >= len(s.entries) {
		s.mu.Unlock()
		return outOfRange(index, len(s.entries))
	}
	s.entries = append(s.entries[:index], s.entries[index+1:]...)
	s.mu.Unlock()
	s.notify()
	return nil
}

// Clear empties the cart unconditionally.
func (s *Store) Clear() {
	s.mu.Lock()
	s.entries = nil
	s.mu.Unlock()
	s.notify()
}

// SetSelected marks whether the entry at the given position counts toward totals.
func (s *Store) SetSelected(index int, selected bool) error {
	s.mu.Lock()
	if index < 0 || index >= len(s.entries) {
		s.mu.Unlock()
		return outOfRange(index, len(s.entries))
	}
	s.entries[index].Selected = selected
	s.mu.Unlock()
	s.notify()
	return nil
}

// ToggleSelected flips the selection flag at the given position.
func (s *Store) ToggleSelected(index int) error {
	s.mu.Lock()
	if index < 0 || index >= len(s.entries) {
		s.mu.Unlock()
		return outOfRange(index, len(s.entries))
	}
	s.entries[index].Selected = !s.entries[index].Selected
	s.mu.Unlock()
	s.notify()
	return nil
}

// SelectAll sets every entry's selection flag at once.
func (s *Store) SelectAll(selected bool) {
	s.mu.Lock()
	for i := range s.entries {
		s.entries[i].Selected = selected
	}
	s.mu.Unlock()
	s.notify()
}

// Entries returns a snapshot copy of the cart.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len reports the number of line items.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Subscribe registers a change listener and returns its unsubscribe func.
// Listeners fire after every mutation, outside the store lock.
func (s *Store) Subscribe(fn func()) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) notify() {
	s.mu.RLock()
	listeners := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		listeners = append(listeners, fn)
	}
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn()
	}
}

// Totals is the selection-aware pricing summary derived from the cart.
type Totals struct {
	Subtotal         decimal.Decimal `json:"subtotal"`
	OriginalSubtotal decimal.Decimal `json:"original_subtotal"`
	Savings          decimal.Decimal `json:"savings"`
	ItemCount        int             `json:"item_count"`
	SelectedCount    int             `json:"selected_count"`
}

// Totals recomputes the discounted and pre-discount subtotals over the
// currently selected entries.
func (s *Store) Totals() Totals {
	s.mu.RLock()
	defer s.mu.RUnlock()

	totals := Totals{
		Subtotal:         decimal.Zero,
		OriginalSubtotal: decimal.Zero,
		ItemCount:        len(s.entries),
	}
	for _, entry := range s.entries {
		if !entry.Selected {
			continue
		}
		qty := decimal.NewFromInt(int64(entry.Item.Quantity))
		totals.Subtotal = totals.Subtotal.Add(entry.Item.CalculatedPrice.Mul(qty))
		totals.OriginalSubtotal = totals.OriginalSubtotal.Add(entry.Item.Price.Mul(qty))
		totals.SelectedCount++
	}
	totals.Savings = totals.OriginalSubtotal.Sub(totals.Subtotal)
	return totals
}

// CheckoutAllowed gates the checkout hand-off: the cart must be non-empty with
// a positive selected subtotal, and the shopper must be signed in with a
// complete profile.
func (s *Store) CheckoutAllowed(loggedIn, profileComplete bool) bool {
	totals := s.Totals()
	return totals.ItemCount > 0 &&
		totals.SelectedCount > 0 &&
		totals.Subtotal.IsPositive() &&
		loggedIn &&
		profileComplete
}

func outOfRange(index, length int) error {
	return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("index %d out of range for cart of %d items", index, length))
}
