package models

import (
	"time"

	"github.com/google/uuid"
)

// StoreProduct is a store-scoped, stock-bearing catalog listing.
// StockQuantity is mutated only through the stock ledger's conditional
// updates, never assigned directly by order code.
type StoreProduct struct {
	ID            int64     `json:"id" db:"id"`
	StoreID       uuid.UUID `json:"store_id" db:"store_id"`
	Name          string    `json:"name" db:"name" binding:"required"`
	Description   *string   `json:"description,omitempty" db:"description"`
	Price         int64     `json:"price" db:"price"` // minor currency units
	Discount      *int64    `json:"discount,omitempty" db:"discount"`
	StockQuantity int       `json:"stock_quantity" db:"stock_quantity"`
	Available     bool      `json:"available" db:"available"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// Combo is a fixed bundle of store products sold at one flat price. The
// constituent items carry no independent pricing, only the quantities needed
// for stock accounting.
type Combo struct {
	ID          int64       `json:"id" db:"id"`
	StoreID     uuid.UUID   `json:"store_id" db:"store_id"`
	Name        string      `json:"name" db:"name" binding:"required"`
	Description *string     `json:"description,omitempty" db:"description"`
	Price       int64       `json:"price" db:"price"` // minor currency units
	Active      bool        `json:"active" db:"active"`
	Items       []ComboItem `json:"items"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`
}

// ComboItem is one component of a combo: a store product and how many units
// of it the combo consumes.
type ComboItem struct {
	ID             int64 `json:"id" db:"id"`
	ComboID        int64 `json:"combo_id" db:"combo_id"`
	StoreProductID int64 `json:"store_product_id" db:"store_product_id"`
	Quantity       int   `json:"quantity" db:"quantity"`
}

// StockLine is one (product, quantity) pair in a stock ledger call.
type StockLine struct {
	StoreProductID int64
	Quantity       int
}

// StockMovement is the audit record for every stock mutation the ledger
// performs. QuantityChanged is negative for sales, positive for returns.
type StockMovement struct {
	ID              int64     `json:"id" db:"id"`
	StoreProductID  int64     `json:"store_product_id" db:"store_product_id"`
	OrderID         *int64    `json:"order_id,omitempty" db:"order_id"`
	MovementType    string    `json:"movement_type" db:"movement_type"`
	QuantityChanged int       `json:"quantity_changed" db:"quantity_changed"`
	Reason          *string   `json:"reason,omitempty" db:"reason"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}
