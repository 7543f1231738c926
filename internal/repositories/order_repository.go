package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"restaurant_ops_backend/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq" // For pq.Error
)

// OrderRepository defines the interface for order-related database operations.
// Status updates are compare-and-set on the current status so that concurrent
// writers from different client processes cannot silently overwrite each other.
type OrderRepository interface {
	CreateOrder(executor SQLExecutor, order *models.Order) (int64, error)
	CreateOrderItem(executor SQLExecutor, item *models.OrderItem) (int64, error)
	CreateOrderItemAddon(executor SQLExecutor, addon *models.OrderItemAddon) (int64, error)

	GetOrderByID(storeID uuid.UUID, orderID int64) (*models.Order, error)
	GetOrderItemsByOrderID(orderID int64) ([]models.OrderItem, error)
	GetOrderItemByID(storeID uuid.UUID, itemID int64) (*models.OrderItem, error)
	ListQueue(storeID uuid.UUID, filters models.OrderFilters) ([]models.Order, error)

	UpdateOrderStatus(executor SQLExecutor, orderID int64, expected, target models.OrderStatus, updatedAt time.Time) error
	UpdateItemStatus(executor SQLExecutor, itemID int64, target models.ItemStatus, updatedAt time.Time) error
	UpdateOrderTotals(executor SQLExecutor, orderID int64, total, discount int64, updatedAt time.Time) error
	SetOrderNote(executor SQLExecutor, orderID int64, note *string, updatedAt time.Time) error
	SetOrderCancelReason(executor SQLExecutor, orderID int64, reason *string, updatedAt time.Time) error
	SetOrderCourier(executor SQLExecutor, orderID int64, courierID *int64, updatedAt time.Time) error
	SetOrderTable(executor SQLExecutor, orderID int64, tableID *int64, updatedAt time.Time) error
	DeleteOrderItem(executor SQLExecutor, itemID int64) error
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository.
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

// --- Order Methods ---

const orderColumns = `id, store_id, channel, table_id, customer_id, customer_name, status,
	total_amount, discount_amount, payment_method, change_for, note,
	delivery_address_id, courier_id, cancel_reason, created_at, updated_at`

func scanOrder(row interface{ Scan(dest ...interface{}) error }, o *models.Order) error {
	return row.Scan(
		&o.ID, &o.StoreID, &o.Channel, &o.TableID, &o.CustomerID, &o.CustomerName, &o.Status,
		&o.TotalAmount, &o.DiscountAmount, &o.PaymentMethod, &o.ChangeFor, &o.Note,
		&o.DeliveryAddressID, &o.CourierID, &o.CancelReason, &o.CreatedAt, &o.UpdatedAt,
	)
}

func (r *orderRepository) CreateOrder(executor SQLExecutor, order *models.Order) (int64, error) {
	query := `INSERT INTO orders
	            (store_id, channel, table_id, customer_id, customer_name, status,
	             total_amount, discount_amount, payment_method, change_for, note,
	             delivery_address_id, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	          RETURNING id`

	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	if order.UpdatedAt.IsZero() {
		order.UpdatedAt = time.Now()
	}

	err := executor.QueryRow(query,
		order.StoreID, order.Channel, order.TableID, order.CustomerID, order.CustomerName, order.Status,
		order.TotalAmount, order.DiscountAmount, order.PaymentMethod, order.ChangeFor, order.Note,
		order.DeliveryAddressID, order.CreatedAt, order.UpdatedAt,
	).Scan(&order.ID)

	if err != nil {
		return 0, fmt.Errorf("%w: creating order: %v", ErrDatabaseError, err)
	}
	return order.ID, nil
}

func (r *orderRepository) GetOrderByID(storeID uuid.UUID, orderID int64) (*models.Order, error) {
	order := &models.Order{}
	query := `SELECT ` + orderColumns + `
	          FROM orders
	          WHERE id = $1 AND store_id = $2`
	err := scanOrder(r.db.QueryRow(query, orderID, storeID), order)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting order by ID %d: %v", ErrDatabaseError, orderID, err)
	}
	return order, nil
}

func (r *orderRepository) ListQueue(storeID uuid.UUID, filters models.OrderFilters) ([]models.Order, error) {
	orders := []models.Order{}

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + orderColumns + ` FROM orders`)

	conditions := []string{"store_id = $1"}
	args := []interface{}{storeID}
	argCounter := 2

	if filters.Channel != nil && *filters.Channel != "" {
		conditions = append(conditions, fmt.Sprintf("channel = $%d", argCounter))
		args = append(args, *filters.Channel)
		argCounter++
	}
	if filters.TableID != nil {
		conditions = append(conditions, fmt.Sprintf("table_id = $%d", argCounter))
		args = append(args, *filters.TableID)
		argCounter++
	}
	if len(filters.Statuses) > 0 {
		conditions = append(conditions, fmt.Sprintf("status = ANY($%d)", argCounter))
		args = append(args, pq.Array(filters.Statuses))
		argCounter++
	}

	queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	queryBuilder.WriteString(" ORDER BY created_at ASC")

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying order queue: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var o models.Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, fmt.Errorf("%w: scanning order: %v", ErrDatabaseError, err)
		}
		orders = append(orders, o)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating order rows: %v", ErrDatabaseError, err)
	}
	return orders, nil
}

func (r *orderRepository) UpdateOrderStatus(executor SQLExecutor, orderID int64, expected, target models.OrderStatus, updatedAt time.Time) error {
	query := `UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`
	result, err := executor.Exec(query, target, updatedAt, orderID, expected)
	if err != nil {
		return fmt.Errorf("%w: updating order status for ID %d: %v", ErrDatabaseError, orderID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for order status update ID %d: %v", ErrDatabaseError, orderID, err)
	}
	if rowsAffected == 0 {
		var exists bool
		if err := r.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1)`, orderID).Scan(&exists); err != nil {
			return fmt.Errorf("%w: checking order %d existence: %v", ErrDatabaseError, orderID, err)
		}
		if !exists {
			return ErrNotFound
		}
		return ErrConflict
	}
	return nil
}

func (r *orderRepository) UpdateOrderTotals(executor SQLExecutor, orderID int64, total, discount int64, updatedAt time.Time) error {
	query := `UPDATE orders SET total_amount = $1, discount_amount = $2, updated_at = $3 WHERE id = $4`
	return r.execExpectingRow(executor, query, orderID, total, discount, updatedAt, orderID)
}

func (r *orderRepository) SetOrderNote(executor SQLExecutor, orderID int64, note *string, updatedAt time.Time) error {
	query := `UPDATE orders SET note = $1, updated_at = $2 WHERE id = $3`
	return r.execExpectingRow(executor, query, orderID, note, updatedAt, orderID)
}

func (r *orderRepository) SetOrderCancelReason(executor SQLExecutor, orderID int64, reason *string, updatedAt time.Time) error {
	query := `UPDATE orders SET cancel_reason = $1, updated_at = $2 WHERE id = $3`
	return r.execExpectingRow(executor, query, orderID, reason, updatedAt, orderID)
}

func (r *orderRepository) SetOrderCourier(executor SQLExecutor, orderID int64, courierID *int64, updatedAt time.Time) error {
	query := `UPDATE orders SET courier_id = $1, updated_at = $2 WHERE id = $3`
	return r.execExpectingRow(executor, query, orderID, courierID, updatedAt, orderID)
}

func (r *orderRepository) SetOrderTable(executor SQLExecutor, orderID int64, tableID *int64, updatedAt time.Time) error {
	query := `UPDATE orders SET table_id = $1, updated_at = $2 WHERE id = $3`
	return r.execExpectingRow(executor, query, orderID, tableID, updatedAt, orderID)
}

// execExpectingRow runs an update that must affect exactly the one row named
// by orderID, translating a miss into ErrNotFound.
func (r *orderRepository) execExpectingRow(executor SQLExecutor, query string, orderID int64, args ...interface{}) error {
	result, err := executor.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("%w: updating order %d: %v", ErrDatabaseError, orderID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for order %d: %v", ErrDatabaseError, orderID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// --- OrderItem Methods ---

func (r *orderRepository) CreateOrderItem(executor SQLExecutor, item *models.OrderItem) (int64, error) {
	query := `INSERT INTO order_items
	            (order_id, kind, store_product_id, combo_id, name, unit_price, quantity, status, note,
	             created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	          RETURNING id`
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	if item.UpdatedAt.IsZero() {
		item.UpdatedAt = time.Now()
	}

	err := executor.QueryRow(query,
		item.OrderID, item.Kind, item.ProductID, item.ComboID, item.Name, item.UnitPrice,
		item.Quantity, item.Status, item.Note,
		item.CreatedAt, item.UpdatedAt,
	).Scan(&item.ID)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return 0, fmt.Errorf("%w: creating order item (constraint: %s): %v", ErrDatabaseError, pqErr.Constraint, err)
		}
		return 0, fmt.Errorf("%w: creating order item: %v", ErrDatabaseError, err)
	}
	return item.ID, nil
}

func (r *orderRepository) CreateOrderItemAddon(executor SQLExecutor, addon *models.OrderItemAddon) (int64, error) {
	query := `INSERT INTO order_item_addons (order_item_id, store_product_id, quantity, price)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id`
	err := executor.QueryRow(query,
		addon.OrderItemID, addon.StoreProductID, addon.Quantity, addon.Price,
	).Scan(&addon.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: creating order item addon: %v", ErrDatabaseError, err)
	}
	return addon.ID, nil
}

func (r *orderRepository) GetOrderItemsByOrderID(orderID int64) ([]models.OrderItem, error) {
	items := []models.OrderItem{}
	query := `SELECT id, order_id, kind, store_product_id, combo_id, name, unit_price, quantity,
	                 status, note, created_at, updated_at
	          FROM order_items
	          WHERE order_id = $1
	          ORDER BY id`

	rows, err := r.db.Query(query, orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying order items for order ID %d: %v", ErrDatabaseError, orderID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.OrderItem
		err := rows.Scan(
			&item.ID, &item.OrderID, &item.Kind, &item.ProductID, &item.ComboID, &item.Name,
			&item.UnitPrice, &item.Quantity, &item.Status, &item.Note,
			&item.CreatedAt, &item.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning order item for order ID %d: %v", ErrDatabaseError, orderID, err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating order item rows for order ID %d: %v", ErrDatabaseError, orderID, err)
	}

	if err := r.attachAddons(orderID, items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *orderRepository) attachAddons(orderID int64, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	query := `SELECT a.id, a.order_item_id, a.store_product_id, a.quantity, a.price
	          FROM order_item_addons a
	          JOIN order_items oi ON a.order_item_id = oi.id
	          WHERE oi.order_id = $1
	          ORDER BY a.id`
	rows, err := r.db.Query(query, orderID)
	if err != nil {
		return fmt.Errorf("%w: querying addons for order ID %d: %v", ErrDatabaseError, orderID, err)
	}
	defer rows.Close()

	byItem := make(map[int64][]models.OrderItemAddon)
	for rows.Next() {
		var addon models.OrderItemAddon
		if err := rows.Scan(&addon.ID, &addon.OrderItemID, &addon.StoreProductID, &addon.Quantity, &addon.Price); err != nil {
			return fmt.Errorf("%w: scanning addon for order ID %d: %v", ErrDatabaseError, orderID, err)
		}
		byItem[addon.OrderItemID] = append(byItem[addon.OrderItemID], addon)
	}
	if err = rows.Err(); err != nil {
		return fmt.Errorf("%w: iterating addon rows for order ID %d: %v", ErrDatabaseError, orderID, err)
	}

	for i := range items {
		items[i].Addons = byItem[items[i].ID]
	}
	return nil
}

func (r *orderRepository) GetOrderItemByID(storeID uuid.UUID, itemID int64) (*models.OrderItem, error) {
	item := &models.OrderItem{}
	query := `SELECT oi.id, oi.order_id, oi.kind, oi.store_product_id, oi.combo_id, oi.name,
	                 oi.unit_price, oi.quantity, oi.status, oi.note, oi.created_at, oi.updated_at
	          FROM order_items oi
	          JOIN orders o ON oi.order_id = o.id
	          WHERE oi.id = $1 AND o.store_id = $2`
	err := r.db.QueryRow(query, itemID, storeID).Scan(
		&item.ID, &item.OrderID, &item.Kind, &item.ProductID, &item.ComboID, &item.Name,
		&item.UnitPrice, &item.Quantity, &item.Status, &item.Note,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting order item %d: %v", ErrDatabaseError, itemID, err)
	}
	return item, nil
}

func (r *orderRepository) UpdateItemStatus(executor SQLExecutor, itemID int64, target models.ItemStatus, updatedAt time.Time) error {
	query := `UPDATE order_items SET status = $1, updated_at = $2 WHERE id = $3`
	result, err := executor.Exec(query, target, updatedAt, itemID)
	if err != nil {
		return fmt.Errorf("%w: updating item status for ID %d: %v", ErrDatabaseError, itemID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for item status update ID %d: %v", ErrDatabaseError, itemID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *orderRepository) DeleteOrderItem(executor SQLExecutor, itemID int64) error {
	result, err := executor.Exec(`DELETE FROM order_items WHERE id = $1`, itemID)
	if err != nil {
		return fmt.Errorf("%w: deleting order item %d: %v", ErrDatabaseError, itemID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for deleting order item %d: %v", ErrDatabaseError, itemID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
