package postgres

import (
	"context"
	"errors"

	"github.com/and161185/shopfloor/internal/errs"
	"github.com/and161185/shopfloor/internal/model"
	"github.com/jackc/pgx/v5"
)

// InventoryRepo implements InventoryRepository using PostgreSQL.
type InventoryRepo struct{ db *DB }

// NewInventoryRepo constructs an inventory repository.
func NewInventoryRepo(db *DB) *InventoryRepo { return &InventoryRepo{db: db} }

// CreateItem inserts a new inventory item.
func (r *InventoryRepo) CreateItem(ctx context.Context, it *model.InventoryItem) error {
	const q = `
INSERT INTO inventory_items (item_code, description, category, quantity_on_hand, unit_price, location, status, reorder_point, min_stock_level)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING updated_at`
	err := r.db.Pool.QueryRow(ctx, q,
		it.ItemCode, it.Description, it.Category, it.QuantityOnHand, it.UnitPrice,
		it.Location, it.Status, it.ReorderPoint, it.MinStockLevel,
	).Scan(&it.UpdatedAt)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

// GetItem selects an item by code.
func (r *InventoryRepo) GetItem(ctx context.Context, itemCode string) (*model.InventoryItem, error) {
	const q = `
SELECT item_code, description, category, quantity_on_hand, unit_price, location, status, reorder_point, min_stock_level, updated_at
FROM inventory_items WHERE item_code=$1`
	var it model.InventoryItem
	err := r.db.Pool.QueryRow(ctx, q, itemCode).Scan(
		&it.ItemCode, &it.Description, &it.Category, &it.QuantityOnHand, &it.UnitPrice,
		&it.Location, &it.Status, &it.ReorderPoint, &it.MinStockLevel, &it.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &it, nil
}

// ListItems returns every item ordered by code.
func (r *InventoryRepo) ListItems(ctx context.Context) ([]model.InventoryItem, error) {
	const q = `
SELECT item_code, description, category, quantity_on_hand, unit_price, location, status, reorder_point, min_stock_level, updated_at
FROM inventory_items ORDER BY item_code ASC`
	rows, err := r.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.InventoryItem
	for rows.Next() {
		var it model.InventoryItem
		if err = rows.Scan(
			&it.ItemCode, &it.Description, &it.Category, &it.QuantityOnHand, &it.UnitPrice,
			&it.Location, &it.Status, &it.ReorderPoint, &it.MinStockLevel, &it.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// ApplyMovement increments on-hand by delta and appends the movement in one transaction.
// The increment is a single UPDATE, so concurrent movements serialize on the row lock.
func (r *InventoryRepo) ApplyMovement(ctx context.Context, mv *model.StockMovement, delta int64) (int64, error) {
	const upd = `
UPDATE inventory_items SET quantity_on_hand = quantity_on_hand + $2, updated_at = now()
WHERE item_code = $1
RETURNING quantity_on_hand`
	const ins = `
INSERT INTO stock_movements (id, item_code, movement_type, quantity, reference, actor)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING created_at`

	var newQty int64
	err := r.db.inTx(ctx, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, upd, mv.ItemCode, delta).Scan(&newQty); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return errs.ErrNotFound
			}
			return err
		}
		return tx.QueryRow(ctx, ins,
			mv.ID, mv.ItemCode, string(mv.Type), mv.Quantity, mv.Reference, mv.Actor,
		).Scan(&mv.CreatedAt)
	})
	if err != nil {
		return 0, err
	}
	return newQty, nil
}

// ListMovements returns the ledger newest first.
func (r *InventoryRepo) ListMovements(ctx context.Context) ([]model.StockMovement, error) {
	const q = `
SELECT id, item_code, movement_type, quantity, reference, actor, created_at
FROM stock_movements
ORDER BY created_at DESC, id DESC`
	rows, err := r.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.StockMovement
	for rows.Next() {
		var (
			mv  model.StockMovement
			typ string
		)
		if err = rows.Scan(&mv.ID, &mv.ItemCode, &typ, &mv.Quantity, &mv.Reference, &mv.Actor, &mv.CreatedAt); err != nil {
			return nil, err
		}
		mv.Type = model.MovementType(typ)
		out = append(out, mv)
	}
	return out, rows.Err()
}
