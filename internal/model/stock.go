package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
)

// MovementType classifies a stock movement.
type MovementType string

// Movement types.
const (
	MovementReceive     MovementType = "RECEIVE"
	MovementIssue       MovementType = "ISSUE"
	MovementTransferOut MovementType = "TRANSFER_OUT"
	MovementTransferIn  MovementType = "TRANSFER_IN"
	MovementAdjustment  MovementType = "ADJUSTMENT"
)

// Valid reports whether t is a known movement type.
func (t MovementType) Valid() bool {
	switch t {
	case MovementReceive, MovementIssue, MovementTransferOut, MovementTransferIn, MovementAdjustment:
		return true
	}
	return false
}

// Delta returns the signed change applied to on-hand quantity for a magnitude q.
// ISSUE and TRANSFER_OUT subtract; everything else, ADJUSTMENT included, adds.
func (t MovementType) Delta(q int64) int64 {
	if t == MovementIssue || t == MovementTransferOut {
		return -q
	}
	return q
}

// InventoryItem is a stocked item.
type InventoryItem struct {
	ItemCode       string // unique
	Description    string
	Category       string
	QuantityOnHand int64 // may go negative, no floor is enforced
	UnitPrice      decimal.Decimal
	Location       string
	Status         string
	ReorderPoint   int64
	MinStockLevel  int64
	UpdatedAt      time.Time
}

// IsLowStock reports 0 < on-hand <= reorder point.
func (i InventoryItem) IsLowStock() bool {
	return i.QuantityOnHand > 0 && i.QuantityOnHand <= i.ReorderPoint
}

// IsOutOfStock reports on-hand <= 0.
func (i InventoryItem) IsOutOfStock() bool { return i.QuantityOnHand <= 0 }

// MovementRequest is a caller's intent to move stock.
type MovementRequest struct {
	ItemCode  string
	Type      MovementType
	Quantity  int64 // magnitude, > 0
	Reference string
	Actor     string
}

// StockMovement is an immutable ledger entry.
type StockMovement struct {
	ID        uuid.UUID // v7, time ordered
	ItemCode  string
	Type      MovementType
	Quantity  int64 // unsigned magnitude as entered
	Reference string
	Actor     string
	CreatedAt time.Time
}

// Statistics summarizes current inventory.
type Statistics struct {
	TotalItems         int
	LowStockCount      int // on-hand <= reorder point
	TotalValue         decimal.Decimal
	ReorderNeededCount int // on-hand < min stock level
}

// Summarize aggregates items into Statistics.
func Summarize(items []InventoryItem) Statistics {
	st := Statistics{TotalValue: decimal.Zero}
	for _, it := range items {
		st.TotalItems++
		if it.QuantityOnHand <= it.ReorderPoint {
			st.LowStockCount++
		}
		if it.QuantityOnHand < it.MinStockLevel {
			st.ReorderNeededCount++
		}
		st.TotalValue = st.TotalValue.Add(it.UnitPrice.Mul(decimal.NewFromInt(it.QuantityOnHand)))
	}
	return st
}
