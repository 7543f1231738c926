package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"restaurant_ops_backend/internal/models"

	"github.com/google/uuid"
)

// TableRepository defines the interface for dining-table database operations.
// Occupancy transitions are conditional updates on the current status: the
// first writer wins and everyone else gets ErrConflict.
type TableRepository interface {
	GetTableByID(storeID uuid.UUID, tableID int64) (*models.DiningTable, error)
	ListTables(storeID uuid.UUID) ([]models.DiningTable, error)
	CreateTable(executor SQLExecutor, table *models.DiningTable) (int64, error)

	// OccupyTable links an order to a free table. Fails with ErrConflict if
	// the table is not free at the moment of the update.
	OccupyTable(executor SQLExecutor, tableID, orderID int64, customerName *string, openedAt time.Time) error
	// SetTableStatus is a compare-and-set between the occupied and
	// awaiting_payment session states.
	SetTableStatus(executor SQLExecutor, tableID int64, expected, target models.TableStatus) error
	// ClearTable returns the table to free and clears the session fields.
	ClearTable(executor SQLExecutor, tableID int64) error
	SetNickname(executor SQLExecutor, storeID uuid.UUID, tableID int64, nickname *string) error

	CountTables(storeID uuid.UUID) (int, error)
	MaxTableNumber(storeID uuid.UUID) (int, error)
	// DeleteFreeTableWithHighestNumber removes the highest-numbered free
	// table. Returns ErrConflict when every remaining table is in use.
	DeleteFreeTableWithHighestNumber(executor SQLExecutor, storeID uuid.UUID) error
}

type tableRepository struct {
	db *sql.DB
}

// NewTableRepository creates a new instance of TableRepository.
func NewTableRepository(db *sql.DB) TableRepository {
	return &tableRepository{db: db}
}

const tableColumns = `id, store_id, number, nickname, status, current_order_id, customer_name,
	opened_at, created_at, updated_at`

func (r *tableRepository) GetTableByID(storeID uuid.UUID, tableID int64) (*models.DiningTable, error) {
	table := &models.DiningTable{}
	query := `SELECT ` + tableColumns + ` FROM dining_tables WHERE id = $1 AND store_id = $2`
	err := r.db.QueryRow(query, tableID, storeID).Scan(
		&table.ID, &table.StoreID, &table.Number, &table.Nickname, &table.Status,
		&table.CurrentOrderID, &table.CustomerName, &table.OpenedAt,
		&table.CreatedAt, &table.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting table %d: %v", ErrDatabaseError, tableID, err)
	}
	return table, nil
}

func (r *tableRepository) ListTables(storeID uuid.UUID) ([]models.DiningTable, error) {
	tables := []models.DiningTable{}
	query := `SELECT ` + tableColumns + ` FROM dining_tables WHERE store_id = $1 ORDER BY number`
	rows, err := r.db.Query(query, storeID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying tables: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var t models.DiningTable
		err := rows.Scan(
			&t.ID, &t.StoreID, &t.Number, &t.Nickname, &t.Status,
			&t.CurrentOrderID, &t.CustomerName, &t.OpenedAt,
			&t.CreatedAt, &t.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning table: %v", ErrDatabaseError, err)
		}
		tables = append(tables, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating table rows: %v", ErrDatabaseError, err)
	}
	return tables, nil
}

func (r *tableRepository) CreateTable(executor SQLExecutor, table *models.DiningTable) (int64, error) {
	query := `INSERT INTO dining_tables (store_id, number, nickname, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id`
	now := time.Now()
	if table.Status == "" {
		table.Status = models.TableStatusFree
	}
	err := executor.QueryRow(query,
		table.StoreID, table.Number, table.Nickname, table.Status, now, now,
	).Scan(&table.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: creating table %d: %v", ErrDatabaseError, table.Number, err)
	}
	return table.ID, nil
}

func (r *tableRepository) OccupyTable(executor SQLExecutor, tableID, orderID int64, customerName *string, openedAt time.Time) error {
	query := `UPDATE dining_tables
	          SET status = $1, current_order_id = $2, customer_name = $3, opened_at = $4, updated_at = $5
	          WHERE id = $6 AND status = $7`
	result, err := executor.Exec(query,
		models.TableStatusOccupied, orderID, customerName, openedAt, time.Now(),
		tableID, models.TableStatusFree,
	)
	if err != nil {
		return fmt.Errorf("%w: occupying table %d: %v", ErrDatabaseError, tableID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for occupying table %d: %v", ErrDatabaseError, tableID, err)
	}
	if rowsAffected == 0 {
		var exists bool
		if err := r.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM dining_tables WHERE id = $1)`, tableID).Scan(&exists); err != nil {
			return fmt.Errorf("%w: checking table %d existence: %v", ErrDatabaseError, tableID, err)
		}
		if !exists {
			return ErrNotFound
		}
		return ErrConflict
	}
	return nil
}

func (r *tableRepository) SetTableStatus(executor SQLExecutor, tableID int64, expected, target models.TableStatus) error {
	query := `UPDATE dining_tables SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`
	result, err := executor.Exec(query, target, time.Now(), tableID, expected)
	if err != nil {
		return fmt.Errorf("%w: updating status for table %d: %v", ErrDatabaseError, tableID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for table %d status update: %v", ErrDatabaseError, tableID, err)
	}
	if rowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

func (r *tableRepository) ClearTable(executor SQLExecutor, tableID int64) error {
	query := `UPDATE dining_tables
	          SET status = $1, current_order_id = NULL, customer_name = NULL, opened_at = NULL, updated_at = $2
	          WHERE id = $3`
	result, err := executor.Exec(query, models.TableStatusFree, time.Now(), tableID)
	if err != nil {
		return fmt.Errorf("%w: clearing table %d: %v", ErrDatabaseError, tableID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for clearing table %d: %v", ErrDatabaseError, tableID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *tableRepository) CountTables(storeID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM dining_tables WHERE store_id = $1`, storeID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: counting tables: %v", ErrDatabaseError, err)
	}
	return count, nil
}

func (r *tableRepository) MaxTableNumber(storeID uuid.UUID) (int, error) {
	var max int
	err := r.db.QueryRow(`SELECT COALESCE(MAX(number), 0) FROM dining_tables WHERE store_id = $1`, storeID).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("%w: getting max table number: %v", ErrDatabaseError, err)
	}
	return max, nil
}

func (r *tableRepository) DeleteFreeTableWithHighestNumber(executor SQLExecutor, storeID uuid.UUID) error {
	query := `DELETE FROM dining_tables
	          WHERE id = (
	              SELECT id FROM dining_tables
	              WHERE store_id = $1 AND status = $2
	              ORDER BY number DESC
	              LIMIT 1
	          )`
	result, err := executor.Exec(query, storeID, models.TableStatusFree)
	if err != nil {
		return fmt.Errorf("%w: deleting free table: %v", ErrDatabaseError, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for deleting free table: %v", ErrDatabaseError, err)
	}
	if rowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

func (r *tableRepository) SetNickname(executor SQLExecutor, storeID uuid.UUID, tableID int64, nickname *string) error {
	query := `UPDATE dining_tables SET nickname = $1, updated_at = $2 WHERE id = $3 AND store_id = $4`
	result, err := executor.Exec(query, nickname, time.Now(), tableID, storeID)
	if err != nil {
		return fmt.Errorf("%w: setting nickname for table %d: %v", ErrDatabaseError, tableID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for table %d nickname update: %v", ErrDatabaseError, tableID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
