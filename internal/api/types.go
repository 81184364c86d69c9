// Package api defines the wire messages of the shopfloor.v1 service, shared by gRPC and HTTP.
package api

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterRequest carries a candidate account. HireDate uses YYYY-MM-DD.
type RegisterRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	FullName   string `json:"full_name"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Department string `json:"department"`
	EmployeeID string `json:"employee_id,omitempty"`
	HireDate   string `json:"hire_date,omitempty"`
	Active     *bool  `json:"active,omitempty"`
}

type RegisterResponse struct {
	UserID     string `json:"user_id"`
	EmployeeID string `json:"employee_id"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	UserID      string    `json:"user_id"`
	Role        string    `json:"role"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type ChangePasswordResponse struct{}

// Item is an inventory item on the wire. Prices travel as decimal strings.
type Item struct {
	ItemCode       string          `json:"item_code"`
	Description    string          `json:"description"`
	Category       string          `json:"category,omitempty"`
	QuantityOnHand int64           `json:"quantity_on_hand"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Location       string          `json:"location,omitempty"`
	Status         string          `json:"status,omitempty"`
	ReorderPoint   int64           `json:"reorder_point"`
	MinStockLevel  int64           `json:"min_stock_level"`
	UpdatedAt      time.Time       `json:"updated_at,omitzero"`
	LowStock       bool            `json:"low_stock"`
	OutOfStock     bool            `json:"out_of_stock"`
}

type CreateItemRequest struct {
	Item Item `json:"item"`
}

type CreateItemResponse struct {
	Item Item `json:"item"`
}

// GetItemRequest looks up one item by code.
type GetItemRequest struct {
	ItemCode string `json:"item_code"`
}

type GetItemResponse struct {
	Item Item `json:"item"`
}

type ListItemsRequest struct{}

type ListItemsResponse struct {
	Items []Item `json:"items"`
}

// RecordMovementRequest moves Quantity units of ItemCode. The actor is the authenticated caller.
type RecordMovementRequest struct {
	ItemCode  string `json:"item_code" binding:"required"`
	Type      string `json:"type" binding:"required"`
	Quantity  int64  `json:"quantity" binding:"required,gt=0"`
	Reference string `json:"reference,omitempty"`
}

type RecordMovementResponse struct {
	MovementID string `json:"movement_id"`
}

type Movement struct {
	ID        string    `json:"id"`
	ItemCode  string    `json:"item_code"`
	Type      string    `json:"type"`
	Quantity  int64     `json:"quantity"`
	Reference string    `json:"reference,omitempty"`
	Actor     string    `json:"actor"`
	CreatedAt time.Time `json:"created_at"`
}

type ListMovementsRequest struct{}

type ListMovementsResponse struct {
	Movements []Movement `json:"movements"`
}

type GetStatisticsRequest struct{}

type Statistics struct {
	TotalItems         int             `json:"total_items"`
	LowStockCount      int             `json:"low_stock_count"`
	TotalValue         decimal.Decimal `json:"total_value"`
	ReorderNeededCount int             `json:"reorder_needed_count"`
}

// AuditEvent is one entry of the audit trail.
type AuditEvent struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Kind      string    `json:"kind"`
	Success   bool      `json:"success"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type ListAuditResponse struct {
	Events []AuditEvent `json:"events"`
}

// ErrorResponse is the HTTP error body.
type ErrorResponse struct {
	Error string `json:"error"`
}
