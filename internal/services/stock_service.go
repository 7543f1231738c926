package services

import (
	"errors"
	"fmt"

	"restaurant_ops_backend/internal/models"
	"restaurant_ops_backend/internal/repositories"

	"github.com/google/uuid"
)

// Stock movement types recorded in the audit trail.
const (
	MovementTypeSale               = "sale"
	MovementTypeReturnCancellation = "return_cancellation"
	MovementTypeReturnRemoval      = "return_removal"
	MovementTypeAdjustment         = "adjustment"
)

// AdjustStockRequest is a manual stock correction submitted by staff.
type AdjustStockRequest struct {
	StoreProductID int64   `json:"store_product_id" binding:"required"`
	Delta          int     `json:"delta" binding:"required"`
	Reason         *string `json:"reason,omitempty"`
}

// StockLedger is the only component permitted to mutate per-store stock
// counts. Every call is all-or-nothing: either every line is applied inside
// one transaction or none is, so a partial decrement can never be observed.
type StockLedger interface {
	// ReserveTx decrements stock for all lines atomically inside a
	// caller-owned transaction, so order creation can combine stock
	// reservation with order persistence. Fails with ErrInsufficientStock if
	// any line cannot be satisfied, with ErrInvalidReference if a product
	// does not exist in the store.
	ReserveTx(executor repositories.SQLExecutor, storeID uuid.UUID, orderID *int64, lines []models.StockLine) error
	// ReleaseTx is the inverse of ReserveTx, used for cancellations and
	// removals.
	ReleaseTx(executor repositories.SQLExecutor, storeID uuid.UUID, orderID *int64, movementType string, reason *string, lines []models.StockLine) error

	// Adjust applies a signed manual correction (recount, spoilage, delivery
	// from a supplier) with an audit movement.
	Adjust(storeID uuid.UUID, productID int64, delta int, reason *string) error

	GetMovements(productID *int64, orderID *int64, movementType *string, page, pageSize int) ([]models.StockMovement, int, error)
}

type stockLedger struct {
	catalogRepo  repositories.CatalogRepository
	movementRepo repositories.StockMovementRepository
	db           repositories.Database
}

// NewStockLedger creates a new instance of StockLedger.
func NewStockLedger(
	cr repositories.CatalogRepository,
	mr repositories.StockMovementRepository,
	db repositories.Database,
) StockLedger {
	return &stockLedger{
		catalogRepo:  cr,
		movementRepo: mr,
		db:           db,
	}
}

func (s *stockLedger) Adjust(storeID uuid.UUID, productID int64, delta int, reason *string) error {
	if delta == 0 {
		return fmt.Errorf("%w: adjustment delta must be non-zero", ErrValidation)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start stock adjustment transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.catalogRepo.AdjustStock(tx, storeID, productID, delta); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return fmt.Errorf("%w: product ID %d, adjustment %d", ErrInsufficientStock, productID, delta)
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("%w: product ID %d", ErrInvalidReference, productID)
		}
		return fmt.Errorf("failed to adjust stock for product %d: %w", productID, err)
	}

	movement := models.StockMovement{
		StoreProductID:  productID,
		MovementType:    MovementTypeAdjustment,
		QuantityChanged: delta,
		Reason:          reason,
	}
	if _, err := s.movementRepo.CreateMovement(tx, &movement); err != nil {
		return fmt.Errorf("failed to record stock movement for product %d: %w", productID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit stock adjustment: %w", err)
	}
	return nil
}

func (s *stockLedger) ReserveTx(executor repositories.SQLExecutor, storeID uuid.UUID, orderID *int64, lines []models.StockLine) error {
	for _, line := range lines {
		if line.Quantity <= 0 {
			return fmt.Errorf("%w: reservation quantity for product %d must be positive", ErrValidation, line.StoreProductID)
		}
		err := s.catalogRepo.AdjustStock(executor, storeID, line.StoreProductID, -line.Quantity)
		if err != nil {
			if errors.Is(err, repositories.ErrConflict) {
				return fmt.Errorf("%w: product ID %d, requested %d", ErrInsufficientStock, line.StoreProductID, line.Quantity)
			}
			if errors.Is(err, repositories.ErrNotFound) {
				return fmt.Errorf("%w: product ID %d", ErrInvalidReference, line.StoreProductID)
			}
			return fmt.Errorf("failed to reserve stock for product %d: %w", line.StoreProductID, err)
		}

		movement := models.StockMovement{
			StoreProductID:  line.StoreProductID,
			OrderID:         orderID,
			MovementType:    MovementTypeSale,
			QuantityChanged: -line.Quantity,
		}
		if _, err := s.movementRepo.CreateMovement(executor, &movement); err != nil {
			return fmt.Errorf("failed to record stock movement for product %d: %w", line.StoreProductID, err)
		}
	}
	return nil
}

func (s *stockLedger) ReleaseTx(executor repositories.SQLExecutor, storeID uuid.UUID, orderID *int64, movementType string, reason *string, lines []models.StockLine) error {
	for _, line := range lines {
		if line.Quantity <= 0 {
			return fmt.Errorf("%w: release quantity for product %d must be positive", ErrValidation, line.StoreProductID)
		}
		err := s.catalogRepo.AdjustStock(executor, storeID, line.StoreProductID, line.Quantity)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return fmt.Errorf("%w: product ID %d", ErrInvalidReference, line.StoreProductID)
			}
			return fmt.Errorf("failed to release stock for product %d: %w", line.StoreProductID, err)
		}

		movement := models.StockMovement{
			StoreProductID:  line.StoreProductID,
			OrderID:         orderID,
			MovementType:    movementType,
			QuantityChanged: line.Quantity,
			Reason:          reason,
		}
		if _, err := s.movementRepo.CreateMovement(executor, &movement); err != nil {
			return fmt.Errorf("failed to record stock movement for product %d: %w", line.StoreProductID, err)
		}
	}
	return nil
}

func (s *stockLedger) GetMovements(productID *int64, orderID *int64, movementType *string, page, pageSize int) ([]models.StockMovement, int, error) {
	movements, total, err := s.movementRepo.GetMovements(productID, orderID, movementType, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get stock movements: %w", err)
	}
	return movements, total, nil
}

// MergeStockLines collapses duplicate product references into one line per
// product so a reservation touches each row once.
func MergeStockLines(lines []models.StockLine) []models.StockLine {
	merged := make([]models.StockLine, 0, len(lines))
	index := make(map[int64]int)
	for _, line := range lines {
		if at, ok := index[line.StoreProductID]; ok {
			merged[at].Quantity += line.Quantity
			continue
		}
		index[line.StoreProductID] = len(merged)
		merged = append(merged, line)
	}
	return merged
}
