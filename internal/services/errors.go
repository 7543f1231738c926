package services

import "errors"

// Typed service errors. Handlers match these with errors.Is and translate
// them into API error codes, so callers can distinguish validation mistakes,
// resource conflicts they may retry with a different choice, and plain
// not-found conditions.
var (
	// Validation: rejected before any side effect, never retried automatically.
	ErrValidation       = errors.New("validation failed")
	ErrInvalidReference = errors.New("referenced catalog entry not found or unavailable")

	// Resource conflicts: a concurrent actor holds the resource; pick another
	// table/courier or retry once stock is replenished.
	ErrInsufficientStock  = errors.New("insufficient stock for item")
	ErrTableOccupied      = errors.New("table is already occupied")
	ErrTableHasOpenOrder  = errors.New("table has an open order")
	ErrCourierUnavailable = errors.New("courier already holds an open assignment")
	ErrConcurrentUpdate   = errors.New("record was modified concurrently, retry")

	// Lifecycle: the requested step is not legal from the current state.
	ErrInvalidTransition = errors.New("illegal status transition")
	ErrOrderNotReady     = errors.New("order is not ready for dispatch")
	ErrOrderClosed       = errors.New("order is in a terminal status")

	// Not found: the record does not exist or belongs to a different store.
	ErrOrderNotFound      = errors.New("order not found")
	ErrItemNotFound       = errors.New("order item not found")
	ErrTableNotFound      = errors.New("table not found")
	ErrCourierNotFound    = errors.New("courier not found")
	ErrAssignmentNotFound = errors.New("courier assignment not found")
)
