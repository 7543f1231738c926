package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"restaurant_ops_backend/internal/models"

	"github.com/google/uuid"
)

// CatalogRepository defines the read side of the store catalog consumed by
// order creation, plus the single stock-mutation primitive used by the ledger.
type CatalogRepository interface {
	GetStoreProduct(storeID uuid.UUID, productID int64) (*models.StoreProduct, error)
	GetCombo(storeID uuid.UUID, comboID int64) (*models.Combo, error)
	ListAvailableProducts(storeID uuid.UUID) ([]models.StoreProduct, error)
	ListActiveCombos(storeID uuid.UUID) ([]models.Combo, error)

	// AdjustStock applies a signed stock delta with a non-negativity guard.
	// Returns ErrConflict when the row exists but the guard would be violated
	// (insufficient stock), ErrNotFound when no such product exists.
	AdjustStock(executor SQLExecutor, storeID uuid.UUID, productID int64, delta int) error
}

type catalogRepository struct {
	db *sql.DB
}

// NewCatalogRepository creates a new instance of CatalogRepository.
func NewCatalogRepository(db *sql.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) GetStoreProduct(storeID uuid.UUID, productID int64) (*models.StoreProduct, error) {
	product := &models.StoreProduct{}
	query := `SELECT id, store_id, name, description, price, discount, stock_quantity, available,
	                 created_at, updated_at
	          FROM store_products
	          WHERE id = $1 AND store_id = $2`
	err := r.db.QueryRow(query, productID, storeID).Scan(
		&product.ID, &product.StoreID, &product.Name, &product.Description, &product.Price,
		&product.Discount, &product.StockQuantity, &product.Available,
		&product.CreatedAt, &product.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting store product %d: %v", ErrDatabaseError, productID, err)
	}
	return product, nil
}

func (r *catalogRepository) GetCombo(storeID uuid.UUID, comboID int64) (*models.Combo, error) {
	combo := &models.Combo{}
	query := `SELECT id, store_id, name, description, price, active, created_at, updated_at
	          FROM combos
	          WHERE id = $1 AND store_id = $2`
	err := r.db.QueryRow(query, comboID, storeID).Scan(
		&combo.ID, &combo.StoreID, &combo.Name, &combo.Description, &combo.Price, &combo.Active,
		&combo.CreatedAt, &combo.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting combo %d: %v", ErrDatabaseError, comboID, err)
	}

	items, err := r.getComboItems(comboID)
	if err != nil {
		return nil, err
	}
	combo.Items = items
	return combo, nil
}

func (r *catalogRepository) getComboItems(comboID int64) ([]models.ComboItem, error) {
	items := []models.ComboItem{}
	query := `SELECT id, combo_id, store_product_id, quantity
	          FROM combo_items
	          WHERE combo_id = $1
	          ORDER BY id`
	rows, err := r.db.Query(query, comboID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying combo items for combo %d: %v", ErrDatabaseError, comboID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.ComboItem
		if err := rows.Scan(&item.ID, &item.ComboID, &item.StoreProductID, &item.Quantity); err != nil {
			return nil, fmt.Errorf("%w: scanning combo item for combo %d: %v", ErrDatabaseError, comboID, err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating combo item rows for combo %d: %v", ErrDatabaseError, comboID, err)
	}
	return items, nil
}

func (r *catalogRepository) ListAvailableProducts(storeID uuid.UUID) ([]models.StoreProduct, error) {
	products := []models.StoreProduct{}
	query := `SELECT id, store_id, name, description, price, discount, stock_quantity, available,
	                 created_at, updated_at
	          FROM store_products
	          WHERE store_id = $1 AND available = TRUE
	          ORDER BY name`
	rows, err := r.db.Query(query, storeID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying store products: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.StoreProduct
		err := rows.Scan(
			&p.ID, &p.StoreID, &p.Name, &p.Description, &p.Price,
			&p.Discount, &p.StockQuantity, &p.Available,
			&p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning store product: %v", ErrDatabaseError, err)
		}
		products = append(products, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating store product rows: %v", ErrDatabaseError, err)
	}
	return products, nil
}

func (r *catalogRepository) ListActiveCombos(storeID uuid.UUID) ([]models.Combo, error) {
	combos := []models.Combo{}
	query := `SELECT id, store_id, name, description, price, active, created_at, updated_at
	          FROM combos
	          WHERE store_id = $1 AND active = TRUE
	          ORDER BY name`
	rows, err := r.db.Query(query, storeID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying combos: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var c models.Combo
		err := rows.Scan(
			&c.ID, &c.StoreID, &c.Name, &c.Description, &c.Price, &c.Active,
			&c.CreatedAt, &c.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning combo: %v", ErrDatabaseError, err)
		}
		combos = append(combos, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating combo rows: %v", ErrDatabaseError, err)
	}

	for i := range combos {
		items, err := r.getComboItems(combos[i].ID)
		if err != nil {
			return nil, err
		}
		combos[i].Items = items
	}
	return combos, nil
}

func (r *catalogRepository) AdjustStock(executor SQLExecutor, storeID uuid.UUID, productID int64, delta int) error {
	// The guard in the WHERE clause is the concurrency primitive: callers are
	// separate processes, so "stock never negative" is enforced here and
	// nowhere else.
	query := `UPDATE store_products
	          SET stock_quantity = stock_quantity + $3, updated_at = $4
	          WHERE id = $1 AND store_id = $2 AND stock_quantity + $3 >= 0`
	result, err := executor.Exec(query, productID, storeID, delta, time.Now())
	if err != nil {
		return fmt.Errorf("%w: adjusting stock for product %d: %v", ErrDatabaseError, productID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for stock adjustment of product %d: %v", ErrDatabaseError, productID, err)
	}
	if rowsAffected == 0 {
		var exists bool
		err := r.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM store_products WHERE id = $1 AND store_id = $2)`,
			productID, storeID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("%w: checking product %d existence: %v", ErrDatabaseError, productID, err)
		}
		if !exists {
			return ErrNotFound
		}
		return ErrConflict
	}
	return nil
}
