package repositories

import (
	"database/sql"
	"fmt"
	"strings"

	"restaurant_ops_backend/internal/models"
)

// StockMovementRepository records the audit trail for every ledger mutation.
type StockMovementRepository interface {
	CreateMovement(executor SQLExecutor, movement *models.StockMovement) (int64, error)
	GetMovements(productID *int64, orderID *int64, movementType *string, page, pageSize int) ([]models.StockMovement, int, error)
}

type stockMovementRepository struct {
	db *sql.DB
}

// NewStockMovementRepository creates a new instance of StockMovementRepository.
func NewStockMovementRepository(db *sql.DB) StockMovementRepository {
	return &stockMovementRepository{db: db}
}

func (r *stockMovementRepository) CreateMovement(executor SQLExecutor, movement *models.StockMovement) (int64, error) {
	query := `INSERT INTO stock_movements
	          (store_product_id, order_id, movement_type, quantity_changed, reason, created_at)
	          VALUES ($1, $2, $3, $4, $5, NOW())
	          RETURNING id`

	err := executor.QueryRow(query,
		movement.StoreProductID, movement.OrderID, movement.MovementType,
		movement.QuantityChanged, movement.Reason,
	).Scan(&movement.ID)

	if err != nil {
		return 0, fmt.Errorf("%w: creating stock movement: %v", ErrDatabaseError, err)
	}
	return movement.ID, nil
}

func (r *stockMovementRepository) GetMovements(productID *int64, orderID *int64, movementType *string, page, pageSize int) ([]models.StockMovement, int, error) {
	movements := []models.StockMovement{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT id, store_product_id, order_id, movement_type, quantity_changed, reason, created_at,
	       COUNT(*) OVER() as total_count
	FROM stock_movements`)

	var conditions []string
	var args []interface{}
	argCounter := 1

	if productID != nil {
		conditions = append(conditions, fmt.Sprintf("store_product_id = $%d", argCounter))
		args = append(args, *productID)
		argCounter++
	}
	if orderID != nil {
		conditions = append(conditions, fmt.Sprintf("order_id = $%d", argCounter))
		args = append(args, *orderID)
		argCounter++
	}
	if movementType != nil && *movementType != "" {
		conditions = append(conditions, fmt.Sprintf("movement_type = $%d", argCounter))
		args = append(args, *movementType)
		argCounter++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY created_at DESC")

	if pageSize > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", argCounter))
		args = append(args, pageSize)
		argCounter++
		if page > 0 {
			queryBuilder.WriteString(fmt.Sprintf(" OFFSET $%d", argCounter))
			args = append(args, (page-1)*pageSize)
		}
	}

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying stock movements: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var m models.StockMovement
		err := rows.Scan(&m.ID, &m.StoreProductID, &m.OrderID, &m.MovementType, &m.QuantityChanged, &m.Reason, &m.CreatedAt, &totalCount)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning stock movement: %v", ErrDatabaseError, err)
		}
		movements = append(movements, m)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating stock movement rows: %v", ErrDatabaseError, err)
	}
	return movements, totalCount, nil
}
