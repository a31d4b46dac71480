// internal/domain/cart/store.go
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	// ErrInvalidProduct is returned when a snapshot cannot become a cart line
	ErrInvalidProduct = errors.New("invalid product snapshot")
)

// Store owns the ordered cart lines of one session and mirrors them to a KVStore.
// The in-memory lines are authoritative; mirror failures are logged and ignored.
type Store struct {
	mu     sync.Mutex
	kv     KVStore
	key    string
	logger logrus.FieldLogger
	lines  []Line
}

// NewStore creates a cart mirrored under key and rehydrates it.
// An absent or unreadable mirror yields an empty cart.
func NewStore(ctx context.Context, kv KVStore, key string, logger logrus.FieldLogger) *Store {
	s := &Store{
		kv:     kv,
		key:    key,
		logger: logger.WithField("cart_key", key),
	}
	s.lines = s.rehydrate(ctx)
	return s
}

// Key returns the storage key of the mirror
func (s *Store) Key() string {
	return s.key
}

// Add merges the snapshot into an existing line with the same product and
// selection, or appends a new line with quantity 1.
func (s *Store) Add(ctx context.Context, p ProductSnapshot) (Line, error) {
	if p.ID == "" {
		return Line{}, fmt.Errorf("%w: product id is required", ErrInvalidProduct)
	}
	if p.UnitPrice.IsNegative() {
		return Line{}, fmt.Errorf("%w: unit price cannot be negative", ErrInvalidProduct)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := LineID(p.ID, p.Selection)
	if i := s.indexOf(id); i >= 0 {
		s.lines[i].Quantity++
		s.persist(ctx)
		return s.lines[i], nil
	}

	line := Line{
		ProductID:          p.ID,
		Name:               p.Name,
		UnitPrice:          p.UnitPrice,
		ImageURL:           p.ImageURL,
		Quantity:           1,
		SelectedVariations: p.Selection.Clone(),
	}
	s.lines = append(s.lines, line)
	s.persist(ctx)
	return line, nil
}

// SetQuantity replaces the quantity of a line in place; n <= 0 removes it
func (s *Store) SetQuantity(ctx context.Context, lineID string, n int) {
	if n <= 0 {
		s.Remove(ctx, lineID)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(lineID)
	if i < 0 {
		return
	}
	s.lines[i].Quantity = n
	s.persist(ctx)
}

// Remove deletes a line; removing an absent line is a no-op
func (s *Store) Remove(ctx context.Context, lineID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(lineID)
	if i < 0 {
		return
	}
	s.lines = append(s.lines[:i], s.lines[i+1:]...)
	s.persist(ctx)
}

// Clear empties the cart and erases the mirror
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = nil
	if err := s.kv.Delete(ctx, s.key); err != nil {
		s.logger.WithError(err).Warn("Failed to erase cart mirror")
	}
}

// RemoveOrdered takes ordered lines out of the cart. Each ordered quantity
// is subtracted from the matching line, so units added after the order was
// assembled stay in the cart.
func (s *Store) RemoveOrdered(ctx context.Context, ordered []Line) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	for _, o := range ordered {
		i := s.indexOf(o.LineID())
		if i < 0 {
			continue
		}
		changed = true

		// Quantity may have been lowered since the order was assembled
		if s.lines[i].Quantity > o.Quantity {
			s.lines[i].Quantity -= o.Quantity
			continue
		}
		s.lines = append(s.lines[:i], s.lines[i+1:]...)
	}
	if !changed {
		return
	}

	if len(s.lines) == 0 {
		s.lines = nil
		if err := s.kv.Delete(ctx, s.key); err != nil {
			s.logger.WithError(err).Warn("Failed to erase cart mirror")
		}
		return
	}
	s.persist(ctx)
}

// Lines returns a copy of the lines in insertion order
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Line, len(s.lines))
	for i, l := range s.lines {
		l.SelectedVariations = l.SelectedVariations.Clone()
		out[i] = l
	}
	return out
}

// Get returns the line with the given id
func (s *Store) Get(lineID string) (Line, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(lineID); i >= 0 {
		return s.lines[i], true
	}
	return Line{}, false
}

// Len returns the number of lines
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines)
}

// Totals derives item count and subtotal from the current lines
func (s *Store) Totals() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ComputeTotals(s.lines)
}

func (s *Store) indexOf(lineID string) int {
	for i := range s.lines {
		if s.lines[i].LineID() == lineID {
			return i
		}
	}
	return -1
}

// persist writes the full line collection to the mirror. Callers hold s.mu.
func (s *Store) persist(ctx context.Context) {
	data, err := json.Marshal(s.lines)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to encode cart mirror")
		return
	}
	if err := s.kv.Set(ctx, s.key, data); err != nil {
		s.logger.WithError(err).Warn("Failed to write cart mirror")
	}
}

func (s *Store) rehydrate(ctx context.Context) []Line {
	data, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		s.logger.WithError(err).Warn("Failed to read cart mirror, starting with an empty cart")
		return nil
	}

	var stored []Line
	if err := json.Unmarshal(data, &stored); err != nil {
		s.logger.WithError(err).Warn("Malformed cart mirror, starting with an empty cart")
		return nil
	}

	return sanitize(stored)
}

// sanitize drops lines that break cart invariants and merges duplicates
func sanitize(stored []Line) []Line {
	var lines []Line
	index := make(map[string]int, len(stored))
	for _, l := range stored {
		if l.ProductID == "" || l.Quantity <= 0 || l.UnitPrice.IsNegative() {
			continue
		}
		id := l.LineID()
		if i, ok := index[id]; ok {
			lines[i].Quantity += l.Quantity
			continue
		}
		index[id] = len(lines)
		lines = append(lines, l)
	}
	return lines
}
