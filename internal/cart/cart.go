// Package cart holds the client-local collection of pending purchase
// lines. The store is the single owner of cart state: screens mutate it
// through these methods and recompute totals from it, never from cached
// copies.
package cart

import (
	"log/slog"
	"sync"

	"gorm.io/gorm"

	"github.com/picnichood/picnic-cli/internal/state"
)

type Item struct {
	ID       string
	Name     string
	Price    float64
	Image    string
	Quantity int
}

// Store keeps lines in insertion order with at most one line per product
// id. Mutations happen on the UI update loop while command goroutines read
// concurrently, hence the mutex.
type Store struct {
	mu           sync.Mutex
	items        []Item
	orderSuccess bool

	db  *gorm.DB
	log *slog.Logger
}

// New builds a cart store. db may be nil for a memory-only cart.
func New(db *gorm.DB, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{db: db, log: log}
}

// Load restores the persisted snapshot. Called once at startup, before the
// UI runs.
func (s *Store) Load() error {
	if s.db == nil {
		return nil
	}
	var lines []state.CartLine
	if err := s.db.Order("position").Find(&lines).Error; err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = s.items[:0]
	for _, l := range lines {
		if l.Quantity < 1 {
			continue
		}
		s.items = append(s.items, Item{
			ID:       l.ProductID,
			Name:     l.Name,
			Price:    l.Price,
			Image:    l.Image,
			Quantity: l.Quantity,
		})
	}
	return nil
}

// Add puts one unit of the product in the cart: an existing line gains
// quantity 1, otherwise a new line with quantity 1 is appended.
func (s *Store) Add(item Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == item.ID {
			s.items[i].Quantity++
			s.persistLocked()
			return
		}
	}
	item.Quantity = 1
	s.items = append(s.items, item)
	s.persistLocked()
}

// Remove deletes the line with the given id; absent ids are a no-op.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(id)
	s.persistLocked()
}

// SetQuantity sets the quantity for a line. Quantities below 1 are
// translated to removal, so no caller can leave a non-positive line in the
// store.
func (s *Store) SetQuantity(id string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if quantity < 1 {
		s.removeLocked(id)
		s.persistLocked()
		return
	}
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Quantity = quantity
			break
		}
	}
	s.persistLocked()
}

// Clear empties the cart; used after a successful checkout.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.persistLocked()
}

// Items returns a copy of the lines in insertion order.
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// TotalPrice recomputes the total from current lines on every call.
func (s *Store) TotalPrice() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total float64
	for _, item := range s.items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// SetOrderSuccess arms the one-shot confirmation shown after checkout.
func (s *Store) SetOrderSuccess() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orderSuccess = true
}

// ConsumeOrderSuccess reports and resets the confirmation flag.
func (s *Store) ConsumeOrderSuccess() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.orderSuccess
	s.orderSuccess = false
	return v
}

func (s *Store) removeLocked(id string) {
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return
		}
	}
}

// persistLocked snapshots the lines into the state db. Persistence is
// best-effort: a failed write is logged, the in-memory cart stays
// authoritative.
func (s *Store) persistLocked() {
	if s.db == nil {
		return
	}
	items := s.items
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&state.CartLine{}).Error; err != nil {
			return err
		}
		for i, item := range items {
			line := state.CartLine{
				Position:  i + 1,
				ProductID: item.ID,
				Name:      item.Name,
				Price:     item.Price,
				Image:     item.Image,
				Quantity:  item.Quantity,
			}
			if err := tx.Create(&line).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.log.Error("cart_persist_failed", "error", err)
	}
}
