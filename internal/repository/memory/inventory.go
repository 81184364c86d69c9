package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/and161185/shopfloor/internal/errs"
	"github.com/and161185/shopfloor/internal/model"
)

// Inventory is an in-memory InventoryRepository. One mutex covers items and the ledger,
// so a movement and its delta become visible together.
type Inventory struct {
	mu        sync.RWMutex
	items     map[string]*model.InventoryItem
	movements []model.StockMovement
	now       func() time.Time
}

// NewInventory returns an empty inventory store.
func NewInventory() *Inventory {
	return &Inventory{items: make(map[string]*model.InventoryItem), now: time.Now}
}

// CreateItem stores a copy of it.
func (s *Inventory) CreateItem(_ context.Context, it *model.InventoryItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[it.ItemCode]; ok {
		return errs.ErrAlreadyExists
	}
	it.UpdatedAt = s.now().UTC()
	cp := *it
	s.items[it.ItemCode] = &cp
	return nil
}

// GetItem returns a copy of the item.
func (s *Inventory) GetItem(_ context.Context, itemCode string) (*model.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.items[itemCode]
	if !ok {
		return nil, errs.ErrNotFound
	}
	cp := *it
	return &cp, nil
}

// ListItems returns all items ordered by code.
func (s *Inventory) ListItems(_ context.Context) ([]model.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.InventoryItem, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, *it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemCode < out[j].ItemCode })
	return out, nil
}

// ApplyMovement adds delta and appends mv under the write lock.
func (s *Inventory) ApplyMovement(_ context.Context, mv *model.StockMovement, delta int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[mv.ItemCode]
	if !ok {
		return 0, errs.ErrNotFound
	}
	ts := s.now().UTC()
	it.QuantityOnHand += delta
	it.UpdatedAt = ts
	mv.CreatedAt = ts
	s.movements = append(s.movements, *mv)
	return it.QuantityOnHand, nil
}

// ListMovements returns the ledger newest first.
func (s *Inventory) ListMovements(_ context.Context) ([]model.StockMovement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.StockMovement, len(s.movements))
	for i, mv := range s.movements {
		out[len(s.movements)-1-i] = mv
	}
	return out, nil
}
