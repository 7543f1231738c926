package models

import (
	"time"

	"github.com/google/uuid"
)

// ItemKind distinguishes what an order line references. A line points at
// exactly one of a store product or a combo, never both.
type ItemKind string

const (
	ItemKindProduct ItemKind = "product"
	ItemKindCombo   ItemKind = "combo"
)

// Order represents a customer order and the aggregate root of its items.
// TotalAmount and Status are derived values: they are recomputed from the
// items on every relevant mutation and are never accepted from clients.
type Order struct {
	ID                int64        `json:"id" db:"id"`
	StoreID           uuid.UUID    `json:"store_id" db:"store_id"`
	Channel           OrderChannel `json:"channel" db:"channel"`
	TableID           *int64       `json:"table_id,omitempty" db:"table_id"`
	CustomerID        *int64       `json:"customer_id,omitempty" db:"customer_id"`
	CustomerName      *string      `json:"customer_name,omitempty" db:"customer_name"`
	Status            OrderStatus  `json:"status" db:"status"`
	TotalAmount       int64        `json:"total_amount" db:"total_amount"`       // minor currency units
	DiscountAmount    int64        `json:"discount_amount" db:"discount_amount"` // minor currency units
	PaymentMethod     *string      `json:"payment_method,omitempty" db:"payment_method"`
	ChangeFor         *int64       `json:"change_for,omitempty" db:"change_for"`
	Note              *string      `json:"note,omitempty" db:"note"`
	DeliveryAddressID *int64       `json:"delivery_address_id,omitempty" db:"delivery_address_id"`
	CourierID         *int64       `json:"courier_id,omitempty" db:"courier_id"`
	CancelReason      *string      `json:"cancel_reason,omitempty" db:"cancel_reason"`
	CreatedAt         time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at" db:"updated_at"`
	Items             []OrderItem  `json:"items"`
}

// OrderItem represents one line of an order. Name and UnitPrice are snapshots
// taken at sale time so later catalog edits never alter historical orders.
type OrderItem struct {
	ID        int64            `json:"id" db:"id"`
	OrderID   int64            `json:"order_id" db:"order_id"`
	Kind      ItemKind         `json:"kind" db:"kind"`
	ProductID *int64           `json:"store_product_id,omitempty" db:"store_product_id"`
	ComboID   *int64           `json:"combo_id,omitempty" db:"combo_id"`
	Name      string           `json:"name" db:"name"`
	UnitPrice int64            `json:"unit_price" db:"unit_price"` // minor currency units
	Quantity  int              `json:"quantity" db:"quantity"`
	Status    ItemStatus       `json:"status" db:"status"`
	Note      *string          `json:"note,omitempty" db:"note"`
	Addons    []OrderItemAddon `json:"addons,omitempty"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt time.Time        `json:"updated_at" db:"updated_at"`
}

// OrderItemAddon is an add-on selected for one order line, with its own price
// snapshot.
type OrderItemAddon struct {
	ID             int64 `json:"id" db:"id"`
	OrderItemID    int64 `json:"order_item_id" db:"order_item_id"`
	StoreProductID int64 `json:"store_product_id" db:"store_product_id"`
	Quantity       int   `json:"quantity" db:"quantity"`
	Price          int64 `json:"price" db:"price"` // minor currency units
}

// LineTotal returns the item's contribution to the order total: the captured
// unit price times quantity plus all add-on prices.
func (i OrderItem) LineTotal() int64 {
	total := i.UnitPrice * int64(i.Quantity)
	for _, addon := range i.Addons {
		total += addon.Price * int64(addon.Quantity)
	}
	return total
}

// ComputeOrderTotal derives the order total from its non-cancelled items minus
// the discount, floored at zero.
func ComputeOrderTotal(items []OrderItem, discount int64) int64 {
	var total int64
	for _, item := range items {
		if item.Status == ItemStatusCancelled {
			continue
		}
		total += item.LineTotal()
	}
	total -= discount
	if total < 0 {
		total = 0
	}
	return total
}

// OrderFilters defines the available filters for querying the order queue.
// This struct is used by both the service and repository layers.
type OrderFilters struct {
	Channel  *string  `form:"channel"`
	TableID  *int64   `form:"table_id"`
	Statuses []string `form:"-"`
}
