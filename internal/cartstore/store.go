// Package cartstore keeps a shopper's cart on the local device: an ordered
// list of products with quantities, persisted between runs.
package cartstore

import (
	"sync"

	"github.com/ojastore/storefront-backend/pkg/catalog"
	"github.com/shopspring/decimal"
)

// Line is a product held in the cart.
type Line struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

// Storage persists the serialized line list.
type Storage interface {
	Load() ([]Line, error)
	Save(lines []Line) error
}

// Listener receives a copy of the lines after every change.
type Listener func(lines []Line)

// Store is safe for concurrent use. Every mutation is persisted before
// listeners are notified.
type Store struct {
	mu        sync.Mutex
	lines     []Line
	storage   Storage
	listeners map[int]Listener
	nextID    int
}

// Open restores the cart from storage. A nil storage keeps the cart in memory.
func Open(storage Storage) (*Store, error) {
	s := &Store{storage: storage, listeners: map[int]Listener{}}
	if storage == nil {
		return s, nil
	}
	lines, err := storage.Load()
	if err != nil {
		return nil, err
	}
	for _, l := range lines {
		if l.Quantity > 0 {
			s.lines = append(s.lines, l)
		}
	}
	return s, nil
}

// Add inserts p at quantity 1 or increments an existing line.
func (s *Store) Add(p catalog.Product) error {
	return s.mutate(func(lines []Line) []Line {
		if i := indexOf(lines, p.ID); i >= 0 {
			lines[i].Quantity++
			return lines
		}
		return append(lines, Line{Product: p, Quantity: 1})
	})
}

// UpdateQuantity overwrites the quantity; zero or less removes the line.
func (s *Store) UpdateQuantity(productID int64, quantity int) error {
	if quantity <= 0 {
		return s.Remove(productID)
	}
	return s.mutate(func(lines []Line) []Line {
		if i := indexOf(lines, productID); i >= 0 {
			lines[i].Quantity = quantity
		}
		return lines
	})
}

func (s *Store) Remove(productID int64) error {
	return s.mutate(func(lines []Line) []Line {
		if i := indexOf(lines, productID); i >= 0 {
			return append(lines[:i], lines[i+1:]...)
		}
		return lines
	})
}

func (s *Store) Clear() error {
	return s.mutate(func([]Line) []Line { return nil })
}

// Items returns a copy of the current lines in insertion order.
func (s *Store) Items() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyLines(s.lines)
}

// TotalItems is the sum of quantities.
func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, l := range s.lines {
		total += l.Quantity
	}
	return total
}

// TotalPrice is the sum of price × quantity, rounded to cents.
func (s *Store) TotalPrice() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, l := range s.lines {
		total = total.Add(decimal.NewFromFloat(l.Product.Price).Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total.Round(2)
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Store) mutate(fn func([]Line) []Line) error {
	s.mu.Lock()
	next := fn(copyLines(s.lines))
	if s.storage != nil {
		if err := s.storage.Save(next); err != nil {
			s.mu.Unlock()
			return err
		}
	}
	s.lines = next
	snapshot := copyLines(next)
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(copyLines(snapshot))
	}
	return nil
}

func indexOf(lines []Line, productID int64) int {
	for i, l := range lines {
		if l.Product.ID == productID {
			return i
		}
	}
	return -1
}

func copyLines(lines []Line) []Line {
	if len(lines) == 0 {
		return []Line{}
	}
	return append([]Line(nil), lines...)
}
