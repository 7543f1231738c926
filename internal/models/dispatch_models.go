package models

import (
	"time"

	"github.com/google/uuid"
)

// Courier is delivery staff eligible for dispatch assignment.
type Courier struct {
	ID        int64     `json:"id" db:"id"`
	StoreID   uuid.UUID `json:"store_id" db:"store_id"`
	Name      string    `json:"name" db:"name" binding:"required"`
	Phone     *string   `json:"phone,omitempty" db:"phone"`
	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CourierAssignment links a ready delivery order to a courier. A courier holds
// at most one open assignment and an order has at most one; both are enforced
// by partial unique indexes, so a losing concurrent assignment surfaces as a
// duplicate-key conflict rather than a silent overwrite.
type CourierAssignment struct {
	ID         int64      `json:"id" db:"id"`
	OrderID    int64      `json:"order_id" db:"order_id"`
	CourierID  int64      `json:"courier_id" db:"courier_id"`
	AssignedAt time.Time  `json:"assigned_at" db:"assigned_at"`
	ClosedAt   *time.Time `json:"closed_at,omitempty" db:"closed_at"`
}
