package repository

import (
	"context"

	"github.com/and161185/shopfloor/internal/model"
)

// InventoryRepository provides items and the append-only movement ledger.
type InventoryRepository interface {
	// CreateItem inserts a new item. Returns errs.ErrAlreadyExists on duplicate code.
	CreateItem(ctx context.Context, it *model.InventoryItem) error
	// GetItem loads an item by code. Returns errs.ErrNotFound if absent.
	GetItem(ctx context.Context, itemCode string) (*model.InventoryItem, error)
	// ListItems returns all items ordered by code.
	ListItems(ctx context.Context) ([]model.InventoryItem, error)

	// ApplyMovement adds delta to the item's on-hand quantity and appends mv as one atomic unit.
	// Returns errs.ErrNotFound (and writes nothing) if the item does not exist.
	// mv.CreatedAt is filled from the store clock.
	ApplyMovement(ctx context.Context, mv *model.StockMovement, delta int64) (newQty int64, err error)
	// ListMovements returns all movements, newest first.
	ListMovements(ctx context.Context) ([]model.StockMovement, error)
}
