package catalog

import (
	"errors"
	"fmt"
	"sync"

	"github.com/jask/budregistry/internal/product"
)

var (
	// ErrNotFound is returned when an id is not in the catalog.
	ErrNotFound = errors.New("catalog: product not found")
	// ErrDuplicateID is returned when inserting an id that already exists.
	ErrDuplicateID = errors.New("catalog: duplicate id")
)

// Store owns the authoritative catalog collection.
type Store interface {
	List() []product.DashboardProduct
	Get(id string) (product.DashboardProduct, bool)
	Update(p product.DashboardProduct) error
	Delete(ids []string) int
	Prepend(p product.DashboardProduct) error
	Append(p product.DashboardProduct) error
	Len() int
}

// MemoryStore keeps the collection in process memory, in insertion order.
type MemoryStore struct {
	mu    sync.RWMutex
	items []product.DashboardProduct
}

// NewMemoryStore seeds a store with items. Duplicate ids are rejected.
func NewMemoryStore(items []product.DashboardProduct) (*MemoryStore, error) {
	s := &MemoryStore{}
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if _, ok := seen[it.ID]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, it.ID)
		}
		seen[it.ID] = struct{}{}
		s.items = append(s.items, it.Clone())
	}
	return s, nil
}

func (s *MemoryStore) List() []product.DashboardProduct {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]product.DashboardProduct, len(s.items))
	for i, it := range s.items {
		out[i] = it.Clone()
	}
	return out
}

func (s *MemoryStore) Get(id string) (product.DashboardProduct, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.items[i].Clone(), true
	}
	return product.DashboardProduct{}, false
}

func (s *MemoryStore) Update(p product.DashboardProduct) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(p.ID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, p.ID)
	}
	s.items[i] = p.Clone()
	return nil
}

func (s *MemoryStore) Delete(ids []string) int {
	if len(ids) == 0 {
		return 0
	}
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.items[:0]
	removed := 0
	for _, it := range s.items {
		if _, ok := drop[it.ID]; ok {
			removed++
			continue
		}
		kept = append(kept, it)
	}
	// clear the tail so dropped entries can be collected
	for i := len(kept); i < len(s.items); i++ {
		s.items[i] = product.DashboardProduct{}
	}
	s.items = kept
	return removed
}

func (s *MemoryStore) Prepend(p product.DashboardProduct) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexLocked(p.ID) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateID, p.ID)
	}
	s.items = append([]product.DashboardProduct{p.Clone()}, s.items...)
	return nil
}

func (s *MemoryStore) Append(p product.DashboardProduct) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexLocked(p.ID) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateID, p.ID)
	}
	s.items = append(s.items, p.Clone())
	return nil
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *MemoryStore) indexLocked(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}
