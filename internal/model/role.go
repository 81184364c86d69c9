package model

import (
	"fmt"

	"github.com/and161185/shopfloor/internal/errs"
)

// Role is the closed set of account roles.
type Role string

// Roles.
const (
	RoleAdmin             Role = "ADMIN"
	RoleProductionManager Role = "PRODUCTION_MANAGER"
	RoleQualityInspector  Role = "QUALITY_INSPECTOR"
	RoleWarehouseClerk    Role = "WAREHOUSE_CLERK"
	RoleOperator          Role = "OPERATOR"
)

// Capability is a single permission checked by transports.
type Capability string

// Capabilities.
const (
	CapManageUsers      Capability = "MANAGE_USERS"
	CapViewInventory    Capability = "VIEW_INVENTORY"
	CapManageInventory  Capability = "MANAGE_INVENTORY"
	CapRecordMovement   Capability = "RECORD_MOVEMENT"
	CapViewReports      Capability = "VIEW_REPORTS"
	CapManageOrders     Capability = "MANAGE_ORDERS"
	CapRecordInspection Capability = "RECORD_INSPECTION"
)

var capabilities = map[Role][]Capability{
	RoleAdmin: {
		CapManageUsers, CapViewInventory, CapManageInventory, CapRecordMovement,
		CapViewReports, CapManageOrders, CapRecordInspection,
	},
	RoleProductionManager: {CapViewInventory, CapRecordMovement, CapViewReports, CapManageOrders},
	RoleQualityInspector:  {CapViewInventory, CapRecordInspection, CapViewReports},
	RoleWarehouseClerk:    {CapViewInventory, CapManageInventory, CapRecordMovement},
	RoleOperator:          {CapViewInventory, CapManageOrders},
}

// Roles returns all roles in a stable order.
func Roles() []Role {
	return []Role{RoleAdmin, RoleProductionManager, RoleQualityInspector, RoleWarehouseClerk, RoleOperator}
}

// ParseRole maps a role name to a Role.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	_, ok := capabilities[r]
	return r, ok
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := capabilities[r]
	return ok
}

// Can reports whether the role grants c.
func (r Role) Can(c Capability) bool {
	for _, have := range capabilities[r] {
		if have == c {
			return true
		}
	}
	return false
}

// Require returns an error wrapping errs.ErrForbidden when the role lacks c.
func (r Role) Require(c Capability) error {
	if r.Can(c) {
		return nil
	}
	return fmt.Errorf("%w: role %s lacks %s", errs.ErrForbidden, r, c)
}
