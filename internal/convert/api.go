// Package convert maps domain models to wire messages and back.
package convert

import (
	"fmt"
	"strings"
	"time"

	"github.com/and161185/shopfloor/internal/api"
	"github.com/and161185/shopfloor/internal/model"
)

// hireDateLayout is the wire format of RegisterRequest.HireDate.
const hireDateLayout = "2006-01-02"

// FromAPIRegister converts a register request to a domain registration.
func FromAPIRegister(in *api.RegisterRequest) (model.Registration, error) {
	if in == nil {
		return model.Registration{}, fmt.Errorf("nil RegisterRequest")
	}
	reg := model.Registration{
		Username:   in.Username,
		Password:   in.Password,
		Role:       strings.ToUpper(strings.TrimSpace(in.Role)),
		FullName:   in.FullName,
		Email:      in.Email,
		Phone:      in.Phone,
		Department: in.Department,
		EmployeeID: in.EmployeeID,
		Active:     in.Active,
	}
	if in.HireDate != "" {
		d, err := time.Parse(hireDateLayout, in.HireDate)
		if err != nil {
			return model.Registration{}, fmt.Errorf("invalid hire_date: %w", err)
		}
		reg.HireDate = &d
	}
	return reg, nil
}

// ToAPIItem converts a domain item, filling the derived stock flags.
func ToAPIItem(it model.InventoryItem) api.Item {
	return api.Item{
		ItemCode:       it.ItemCode,
		Description:    it.Description,
		Category:       it.Category,
		QuantityOnHand: it.QuantityOnHand,
		UnitPrice:      it.UnitPrice,
		Location:       it.Location,
		Status:         it.Status,
		ReorderPoint:   it.ReorderPoint,
		MinStockLevel:  it.MinStockLevel,
		UpdatedAt:      it.UpdatedAt,
		LowStock:       it.IsLowStock(),
		OutOfStock:     it.IsOutOfStock(),
	}
}

// ToAPIItems converts a slice; never returns nil.
func ToAPIItems(in []model.InventoryItem) []api.Item {
	out := make([]api.Item, 0, len(in))
	for _, it := range in {
		out = append(out, ToAPIItem(it))
	}
	return out
}

// FromAPIItem converts a wire item to a domain item. Derived fields are ignored.
func FromAPIItem(in api.Item) model.InventoryItem {
	return model.InventoryItem{
		ItemCode:       in.ItemCode,
		Description:    in.Description,
		Category:       in.Category,
		QuantityOnHand: in.QuantityOnHand,
		UnitPrice:      in.UnitPrice,
		Location:       in.Location,
		Status:         in.Status,
		ReorderPoint:   in.ReorderPoint,
		MinStockLevel:  in.MinStockLevel,
	}
}

// FromAPIMovement builds a movement request for actor.
func FromAPIMovement(in *api.RecordMovementRequest, actor string) model.MovementRequest {
	return model.MovementRequest{
		ItemCode:  in.ItemCode,
		Type:      model.MovementType(strings.ToUpper(strings.TrimSpace(in.Type))),
		Quantity:  in.Quantity,
		Reference: in.Reference,
		Actor:     actor,
	}
}

// ToAPIMovements converts the ledger; never returns nil.
func ToAPIMovements(in []model.StockMovement) []api.Movement {
	out := make([]api.Movement, 0, len(in))
	for _, mv := range in {
		out = append(out, api.Movement{
			ID:        mv.ID.String(),
			ItemCode:  mv.ItemCode,
			Type:      string(mv.Type),
			Quantity:  mv.Quantity,
			Reference: mv.Reference,
			Actor:     mv.Actor,
			CreatedAt: mv.CreatedAt,
		})
	}
	return out
}

// ToAPIStatistics converts aggregated statistics.
func ToAPIStatistics(st model.Statistics) *api.Statistics {
	return &api.Statistics{
		TotalItems:         st.TotalItems,
		LowStockCount:      st.LowStockCount,
		TotalValue:         st.TotalValue,
		ReorderNeededCount: st.ReorderNeededCount,
	}
}
