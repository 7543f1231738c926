package models

import (
	"time"

	"github.com/google/uuid"
)

// DiningTable represents a physical table and its occupancy session.
// Invariant: CurrentOrderID is set exactly while Status != free, and at most
// one order is linked to a table at a time; opening a table seeds the session
// order, so an occupied table always has one. The free -> occupied transition
// is a storage-level conditional update; callers racing to open the same
// table lose with a typed conflict, never by overwriting.
type DiningTable struct {
	ID             int64       `json:"id" db:"id"`
	StoreID        uuid.UUID   `json:"store_id" db:"store_id"`
	Number         int         `json:"number" db:"number"`
	Nickname       *string     `json:"nickname,omitempty" db:"nickname"`
	Status         TableStatus `json:"status" db:"status"`
	CurrentOrderID *int64      `json:"current_order_id,omitempty" db:"current_order_id"`
	CustomerName   *string     `json:"customer_name,omitempty" db:"customer_name"`
	OpenedAt       *time.Time  `json:"opened_at,omitempty" db:"opened_at"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at" db:"updated_at"`

	CurrentOrder *Order `json:"current_order,omitempty"` // for joined table views
}
