package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"restaurant_ops_backend/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq" // For pq.Error
)

// DispatchRepository defines the interface for courier and assignment
// database operations. The "one open assignment per courier" invariant lives
// in a partial unique index; CreateAssignment surfaces the violation as
// ErrDuplicateKey so the service can report the courier as unavailable.
type DispatchRepository interface {
	GetCourierByID(storeID uuid.UUID, courierID int64) (*models.Courier, error)
	ListAvailableCouriers(storeID uuid.UUID) ([]models.Courier, error)
	CreateAssignment(executor SQLExecutor, assignment *models.CourierAssignment) (int64, error)
	GetOpenAssignmentByOrder(orderID int64) (*models.CourierAssignment, error)
	CloseAssignmentByOrder(executor SQLExecutor, orderID int64, closedAt time.Time) error
}

type dispatchRepository struct {
	db *sql.DB
}

// NewDispatchRepository creates a new instance of DispatchRepository.
func NewDispatchRepository(db *sql.DB) DispatchRepository {
	return &dispatchRepository{db: db}
}

func (r *dispatchRepository) GetCourierByID(storeID uuid.UUID, courierID int64) (*models.Courier, error) {
	courier := &models.Courier{}
	query := `SELECT id, store_id, name, phone, active, created_at, updated_at
	          FROM couriers
	          WHERE id = $1 AND store_id = $2`
	err := r.db.QueryRow(query, courierID, storeID).Scan(
		&courier.ID, &courier.StoreID, &courier.Name, &courier.Phone, &courier.Active,
		&courier.CreatedAt, &courier.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting courier %d: %v", ErrDatabaseError, courierID, err)
	}
	return courier, nil
}

func (r *dispatchRepository) ListAvailableCouriers(storeID uuid.UUID) ([]models.Courier, error) {
	couriers := []models.Courier{}
	// Advisory list only. The authoritative availability check happens at
	// assignment time via the partial unique index.
	query := `SELECT c.id, c.store_id, c.name, c.phone, c.active, c.created_at, c.updated_at
	          FROM couriers c
	          WHERE c.store_id = $1 AND c.active = TRUE
	            AND NOT EXISTS (
	                SELECT 1 FROM courier_assignments ca
	                WHERE ca.courier_id = c.id AND ca.closed_at IS NULL
	            )
	          ORDER BY c.name`
	rows, err := r.db.Query(query, storeID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying available couriers: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var c models.Courier
		err := rows.Scan(&c.ID, &c.StoreID, &c.Name, &c.Phone, &c.Active, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning courier: %v", ErrDatabaseError, err)
		}
		couriers = append(couriers, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating courier rows: %v", ErrDatabaseError, err)
	}
	return couriers, nil
}

func (r *dispatchRepository) CreateAssignment(executor SQLExecutor, assignment *models.CourierAssignment) (int64, error) {
	query := `INSERT INTO courier_assignments (order_id, courier_id, assigned_at)
	          VALUES ($1, $2, $3)
	          RETURNING id`
	if assignment.AssignedAt.IsZero() {
		assignment.AssignedAt = time.Now()
	}
	err := executor.QueryRow(query,
		assignment.OrderID, assignment.CourierID, assignment.AssignedAt,
	).Scan(&assignment.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return 0, ErrDuplicateKey
		}
		return 0, fmt.Errorf("%w: creating courier assignment: %v", ErrDatabaseError, err)
	}
	return assignment.ID, nil
}

func (r *dispatchRepository) GetOpenAssignmentByOrder(orderID int64) (*models.CourierAssignment, error) {
	assignment := &models.CourierAssignment{}
	query := `SELECT id, order_id, courier_id, assigned_at, closed_at
	          FROM courier_assignments
	          WHERE order_id = $1 AND closed_at IS NULL`
	err := r.db.QueryRow(query, orderID).Scan(
		&assignment.ID, &assignment.OrderID, &assignment.CourierID,
		&assignment.AssignedAt, &assignment.ClosedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting open assignment for order %d: %v", ErrDatabaseError, orderID, err)
	}
	return assignment, nil
}

func (r *dispatchRepository) CloseAssignmentByOrder(executor SQLExecutor, orderID int64, closedAt time.Time) error {
	query := `UPDATE courier_assignments SET closed_at = $1 WHERE order_id = $2 AND closed_at IS NULL`
	result, err := executor.Exec(query, closedAt, orderID)
	if err != nil {
		return fmt.Errorf("%w: closing assignment for order %d: %v", ErrDatabaseError, orderID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for closing assignment of order %d: %v", ErrDatabaseError, orderID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
