package models

// OrderChannel identifies where an order originated. The channel decides the
// initial status and which branches of the status graph apply.
type OrderChannel string

const (
	ChannelDineIn   OrderChannel = "dine_in"
	ChannelPickup   OrderChannel = "pickup"
	ChannelDelivery OrderChannel = "delivery"
)

// IsValidOrderChannel checks if the provided channel string is a known OrderChannel.
func IsValidOrderChannel(channel string) bool {
	switch OrderChannel(channel) {
	case ChannelDineIn, ChannelPickup, ChannelDelivery:
		return true
	default:
		return false
	}
}

// OrderStatus defines the type for order-level statuses.
type OrderStatus string

const (
	OrderStatusPending            OrderStatus = "pending"
	OrderStatusAwaitingAcceptance OrderStatus = "awaiting_acceptance"
	OrderStatusInPreparation      OrderStatus = "in_preparation"
	OrderStatusReady              OrderStatus = "ready"
	OrderStatusOutForDelivery     OrderStatus = "out_for_delivery"
	OrderStatusDelivered          OrderStatus = "delivered"
	OrderStatusCancelled          OrderStatus = "cancelled"
)

// orderStatusFlow lists the legal forward steps for each order status.
// Cancellation is handled separately: it is reachable from any non-terminal status.
var orderStatusFlow = map[OrderStatus][]OrderStatus{
	OrderStatusPending:            {OrderStatusAwaitingAcceptance, OrderStatusInPreparation},
	OrderStatusAwaitingAcceptance: {OrderStatusInPreparation},
	OrderStatusInPreparation:      {OrderStatusReady},
	OrderStatusReady:              {OrderStatusOutForDelivery, OrderStatusDelivered},
	OrderStatusOutForDelivery:     {OrderStatusDelivered},
	OrderStatusDelivered:          {},
	OrderStatusCancelled:          {},
}

// orderStatusRank orders the forward states so the aggregate status can be
// computed as the minimum over item states. Terminal cancelled has no rank.
var orderStatusRank = map[OrderStatus]int{
	OrderStatusPending:            0,
	OrderStatusAwaitingAcceptance: 1,
	OrderStatusInPreparation:      2,
	OrderStatusReady:              3,
	OrderStatusOutForDelivery:     4,
	OrderStatusDelivered:          5,
}

// IsValidOrderStatus checks if the provided status string is a valid OrderStatus.
func IsValidOrderStatus(status string) bool {
	_, knownForward := orderStatusRank[OrderStatus(status)]
	return knownForward || OrderStatus(status) == OrderStatusCancelled
}

// IsTerminal reports whether the status ends the order lifecycle.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransitionTo reports whether target is a legal step from s.
// Re-asserting the current status is allowed (idempotent no-op for polling
// clients); callers decide whether to persist anything in that case.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	if s == target {
		return true
	}
	if target == OrderStatusCancelled {
		return !s.IsTerminal()
	}
	for _, next := range orderStatusFlow[s] {
		if next == target {
			return true
		}
	}
	return false
}

// ItemStatus defines the type for order-item statuses, a subset of the
// order-level lifecycle.
type ItemStatus string

const (
	ItemStatusPending       ItemStatus = "pending"
	ItemStatusInPreparation ItemStatus = "in_preparation"
	ItemStatusReady         ItemStatus = "ready"
	ItemStatusDelivered     ItemStatus = "delivered"
	ItemStatusCancelled     ItemStatus = "cancelled"
)

var itemStatusFlow = map[ItemStatus][]ItemStatus{
	ItemStatusPending:       {ItemStatusInPreparation},
	ItemStatusInPreparation: {ItemStatusReady},
	ItemStatusReady:         {ItemStatusDelivered},
	ItemStatusDelivered:     {},
	ItemStatusCancelled:     {},
}

var itemStatusRank = map[ItemStatus]int{
	ItemStatusPending:       0,
	ItemStatusInPreparation: 1,
	ItemStatusReady:         2,
	ItemStatusDelivered:     3,
}

// IsValidItemStatus checks if the provided status string is a valid ItemStatus.
func IsValidItemStatus(status string) bool {
	_, knownForward := itemStatusRank[ItemStatus(status)]
	return knownForward || ItemStatus(status) == ItemStatusCancelled
}

// IsTerminal reports whether the item status ends the item lifecycle.
func (s ItemStatus) IsTerminal() bool {
	return s == ItemStatusDelivered || s == ItemStatusCancelled
}

// CanTransitionTo reports whether target is a legal step from s, with the same
// idempotence rule as order statuses.
func (s ItemStatus) CanTransitionTo(target ItemStatus) bool {
	if s == target {
		return true
	}
	if target == ItemStatusCancelled {
		return !s.IsTerminal()
	}
	for _, next := range itemStatusFlow[s] {
		if next == target {
			return true
		}
	}
	return false
}

// TableStatus defines the type for dining table occupancy statuses.
type TableStatus string

const (
	TableStatusFree            TableStatus = "free"
	TableStatusOccupied        TableStatus = "occupied"
	TableStatusAwaitingPayment TableStatus = "awaiting_payment"
)

// IsValidTableStatus checks if the provided status string is a valid TableStatus.
func IsValidTableStatus(status string) bool {
	switch TableStatus(status) {
	case TableStatusFree, TableStatusOccupied, TableStatusAwaitingPayment:
		return true
	default:
		return false
	}
}

// InitialOrderStatus returns the status a freshly created order starts in.
// Delivery orders wait for the store to accept them; everything else goes
// straight into the kitchen queue.
func InitialOrderStatus(channel OrderChannel) OrderStatus {
	if channel == ChannelDelivery {
		return OrderStatusAwaitingAcceptance
	}
	return OrderStatusPending
}

// RecomputeOrderStatusFromItems derives the order-level status from its items.
// The aggregate never moves past the least-advanced non-cancelled item; an
// order whose items were all cancelled is cancelled. The result is clamped to
// never move the order backwards from its current status. Only pickup orders
// derive all the way to delivered: for delivery orders leaving ready belongs
// to dispatch, and for dine-in orders delivered is the explicit close-out
// after payment, so a fully served table can sit in awaiting_payment first.
func RecomputeOrderStatusFromItems(channel OrderChannel, current OrderStatus, items []OrderItem) OrderStatus {
	if current.IsTerminal() {
		return current
	}
	minRank := -1
	for _, item := range items {
		if item.Status == ItemStatusCancelled {
			continue
		}
		rank := itemStatusRank[item.Status]
		if minRank == -1 || rank < minRank {
			minRank = rank
		}
	}
	if minRank == -1 {
		if len(items) == 0 {
			return current
		}
		return OrderStatusCancelled
	}

	derived := current
	switch {
	case minRank >= itemStatusRank[ItemStatusDelivered]:
		derived = OrderStatusDelivered
	case minRank >= itemStatusRank[ItemStatusReady]:
		derived = OrderStatusReady
	case minRank >= itemStatusRank[ItemStatusInPreparation]:
		derived = OrderStatusInPreparation
	}
	if channel != ChannelPickup && orderStatusRank[derived] > orderStatusRank[OrderStatusReady] {
		derived = OrderStatusReady
	}

	// Upward propagation only: concurrent UIs may already have advanced the
	// order (e.g. out_for_delivery) past what the item ranks alone suggest.
	if orderStatusRank[derived] <= orderStatusRank[current] {
		return current
	}
	if current == OrderStatusOutForDelivery && derived != OrderStatusDelivered {
		return current
	}
	return derived
}

// DeriveTableStatus computes the occupancy status of a table from its linked
// order. A dine-in order whose every non-cancelled item has been brought to
// the table moves the session to awaiting payment.
func DeriveTableStatus(order *Order) TableStatus {
	if order == nil || order.Status.IsTerminal() {
		return TableStatusFree
	}
	allDelivered := len(order.Items) > 0
	for _, item := range order.Items {
		if item.Status == ItemStatusCancelled {
			continue
		}
		if item.Status != ItemStatusDelivered {
			allDelivered = false
			break
		}
	}
	if allDelivered {
		return TableStatusAwaitingPayment
	}
	return TableStatusOccupied
}
