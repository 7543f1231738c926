package services

import (
	"database/sql"
	"sort"
	"sync"
	"time"

	"restaurant_ops_backend/internal/models"
	"restaurant_ops_backend/internal/repositories"

	"github.com/google/uuid"
)

// In-memory repository fakes. They reproduce the storage-level guarantees the
// services lean on (conditional updates under one lock, unique open
// assignments, rollback undoing every mutation of an aborted transaction) so
// lifecycle and race behavior can be exercised without a database.

// fakeTx collects undo closures as the fakes mutate shared state. Rollback
// runs them in reverse; Commit discards them.
type fakeTx struct {
	mu   sync.Mutex
	undo []func()
	done bool
}

func (t *fakeTx) onRollback(f func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.undo = append(t.undo, f)
}

func (t *fakeTx) Commit() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.done = true
	t.undo = nil
	return nil
}

func (t *fakeTx) Rollback() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return nil
	}
	t.done = true
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
	return nil
}

func (t *fakeTx) Exec(string, ...interface{}) (sql.Result, error) { return nil, nil }
func (t *fakeTx) QueryRow(string, ...interface{}) *sql.Row        { return nil }
func (t *fakeTx) Query(string, ...interface{}) (*sql.Rows, error) { return nil, nil }

type fakeDB struct{}

func (fakeDB) Begin() (repositories.Tx, error)                 { return &fakeTx{}, nil }
func (fakeDB) Exec(string, ...interface{}) (sql.Result, error) { return nil, nil }
func (fakeDB) QueryRow(string, ...interface{}) *sql.Row        { return nil }
func (fakeDB) Query(string, ...interface{}) (*sql.Rows, error) { return nil, nil }

// pushUndo registers an undo when the write happens inside a transaction.
// Direct writes through the bare executor stay applied, like autocommit.
func pushUndo(executor repositories.SQLExecutor, f func()) {
	if tx, ok := executor.(*fakeTx); ok {
		tx.onRollback(f)
	}
}

// --- catalog ---

type fakeCatalogRepo struct {
	mu       sync.Mutex
	products map[int64]*models.StoreProduct
	combos   map[int64]*models.Combo
}

func newFakeCatalogRepo() *fakeCatalogRepo {
	return &fakeCatalogRepo{
		products: map[int64]*models.StoreProduct{},
		combos:   map[int64]*models.Combo{},
	}
}

func (r *fakeCatalogRepo) GetStoreProduct(storeID uuid.UUID, productID int64) (*models.StoreProduct, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[productID]
	if !ok || p.StoreID != storeID {
		return nil, repositories.ErrNotFound
	}
	out := *p
	return &out, nil
}

func (r *fakeCatalogRepo) GetCombo(storeID uuid.UUID, comboID int64) (*models.Combo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.combos[comboID]
	if !ok || c.StoreID != storeID {
		return nil, repositories.ErrNotFound
	}
	out := *c
	out.Items = append([]models.ComboItem{}, c.Items...)
	return &out, nil
}

func (r *fakeCatalogRepo) ListAvailableProducts(storeID uuid.UUID) ([]models.StoreProduct, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.StoreProduct{}
	for _, p := range r.products {
		if p.StoreID == storeID && p.Available {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeCatalogRepo) ListActiveCombos(storeID uuid.UUID) ([]models.Combo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Combo{}
	for _, c := range r.combos {
		if c.StoreID == storeID && c.Active {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeCatalogRepo) AdjustStock(executor repositories.SQLExecutor, storeID uuid.UUID, productID int64, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[productID]
	if !ok || p.StoreID != storeID {
		return repositories.ErrNotFound
	}
	if p.StockQuantity+delta < 0 {
		return repositories.ErrConflict
	}
	p.StockQuantity += delta
	pushUndo(executor, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		p.StockQuantity -= delta
	})
	return nil
}

func (r *fakeCatalogRepo) stock(productID int64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.products[productID].StockQuantity
}

// --- orders ---

type fakeOrderRepo struct {
	mu     sync.Mutex
	nextID int64
	orders map[int64]*models.Order
	items  map[int64]*models.OrderItem
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		orders: map[int64]*models.Order{},
		items:  map[int64]*models.OrderItem{},
	}
}

func (r *fakeOrderRepo) CreateOrder(executor repositories.SQLExecutor, order *models.Order) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	id := r.nextID
	stored := *order
	stored.ID = id
	stored.Items = nil
	stored.CreatedAt = time.Now()
	r.orders[id] = &stored
	pushUndo(executor, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.orders, id)
	})
	return id, nil
}

func (r *fakeOrderRepo) CreateOrderItem(executor repositories.SQLExecutor, item *models.OrderItem) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	id := r.nextID
	stored := *item
	stored.ID = id
	stored.Addons = nil
	r.items[id] = &stored
	pushUndo(executor, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.items, id)
	})
	return id, nil
}

func (r *fakeOrderRepo) CreateOrderItemAddon(executor repositories.SQLExecutor, addon *models.OrderItemAddon) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[addon.OrderItemID]
	if !ok {
		return 0, repositories.ErrNotFound
	}
	r.nextID++
	stored := *addon
	stored.ID = r.nextID
	item.Addons = append(item.Addons, stored)
	pushUndo(executor, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		item.Addons = item.Addons[:len(item.Addons)-1]
	})
	return stored.ID, nil
}

func (r *fakeOrderRepo) GetOrderByID(storeID uuid.UUID, orderID int64) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok || o.StoreID != storeID {
		return nil, repositories.ErrNotFound
	}
	out := *o
	return &out, nil
}

func (r *fakeOrderRepo) GetOrderItemsByOrderID(orderID int64) ([]models.OrderItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.OrderItem{}
	for _, item := range r.items {
		if item.OrderID == orderID {
			copied := *item
			copied.Addons = append([]models.OrderItemAddon{}, item.Addons...)
			out = append(out, copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeOrderRepo) GetOrderItemByID(storeID uuid.UUID, itemID int64) (*models.OrderItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[itemID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	order, ok := r.orders[item.OrderID]
	if !ok || order.StoreID != storeID {
		return nil, repositories.ErrNotFound
	}
	out := *item
	out.Addons = append([]models.OrderItemAddon{}, item.Addons...)
	return &out, nil
}

func (r *fakeOrderRepo) ListQueue(storeID uuid.UUID, filters models.OrderFilters) ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wanted := map[string]bool{}
	for _, s := range filters.Statuses {
		wanted[s] = true
	}
	out := []models.Order{}
	for _, o := range r.orders {
		if o.StoreID != storeID {
			continue
		}
		if len(wanted) > 0 && !wanted[string(o.Status)] {
			continue
		}
		if filters.Channel != nil && *filters.Channel != "" && string(o.Channel) != *filters.Channel {
			continue
		}
		if filters.TableID != nil && (o.TableID == nil || *o.TableID != *filters.TableID) {
			continue
		}
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeOrderRepo) UpdateOrderStatus(executor repositories.SQLExecutor, orderID int64, expected, target models.OrderStatus, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return repositories.ErrNotFound
	}
	if o.Status != expected {
		return repositories.ErrConflict
	}
	o.Status = target
	pushUndo(executor, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		o.Status = expected
	})
	return nil
}

func (r *fakeOrderRepo) UpdateItemStatus(executor repositories.SQLExecutor, itemID int64, target models.ItemStatus, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[itemID]
	if !ok {
		return repositories.ErrNotFound
	}
	prev := item.Status
	item.Status = target
	pushUndo(executor, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		item.Status = prev
	})
	return nil
}

func (r *fakeOrderRepo) UpdateOrderTotals(executor repositories.SQLExecutor, orderID int64, total, discount int64, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return repositories.ErrNotFound
	}
	prevTotal, prevDiscount := o.TotalAmount, o.DiscountAmount
	o.TotalAmount, o.DiscountAmount = total, discount
	pushUndo(executor, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		o.TotalAmount, o.DiscountAmount = prevTotal, prevDiscount
	})
	return nil
}

func (r *fakeOrderRepo) SetOrderNote(executor repositories.SQLExecutor, orderID int64, note *string, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return repositories.ErrNotFound
	}
	o.Note = note
	return nil
}

func (r *fakeOrderRepo) SetOrderCancelReason(executor repositories.SQLExecutor, orderID int64, reason *string, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return repositories.ErrNotFound
	}
	prev := o.CancelReason
	o.CancelReason = reason
	pushUndo(executor, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		o.CancelReason = prev
	})
	return nil
}

func (r *fakeOrderRepo) SetOrderCourier(executor repositories.SQLExecutor, orderID int64, courierID *int64, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return repositories.ErrNotFound
	}
	prev := o.CourierID
	o.CourierID = courierID
	pushUndo(executor, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		o.CourierID = prev
	})
	return nil
}

func (r *fakeOrderRepo) SetOrderTable(executor repositories.SQLExecutor, orderID int64, tableID *int64, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return repositories.ErrNotFound
	}
	prev := o.TableID
	o.TableID = tableID
	pushUndo(executor, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		o.TableID = prev
	})
	return nil
}

func (r *fakeOrderRepo) DeleteOrderItem(executor repositories.SQLExecutor, itemID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[itemID]
	if !ok {
		return repositories.ErrNotFound
	}
	delete(r.items, itemID)
	pushUndo(executor, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.items[itemID] = item
	})
	return nil
}

// --- tables ---

type fakeTableRepo struct {
	mu     sync.Mutex
	nextID int64
	tables map[int64]*models.DiningTable
}

func newFakeTableRepo() *fakeTableRepo {
	return &fakeTableRepo{tables: map[int64]*models.DiningTable{}}
}

func (r *fakeTableRepo) GetTableByID(storeID uuid.UUID, tableID int64) (*models.DiningTable, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tables[tableID]
	if !ok || t.StoreID != storeID {
		return nil, repositories.ErrNotFound
	}
	out := *t
	return &out, nil
}

func (r *fakeTableRepo) ListTables(storeID uuid.UUID) ([]models.DiningTable, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.DiningTable{}
	for _, t := range r.tables {
		if t.StoreID == storeID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (r *fakeTableRepo) CreateTable(executor repositories.SQLExecutor, table *models.DiningTable) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	id := r.nextID
	stored := *table
	stored.ID = id
	if stored.Status == "" {
		stored.Status = models.TableStatusFree
	}
	r.tables[id] = &stored
	pushUndo(executor, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.tables, id)
	})
	return id, nil
}

func (r *fakeTableRepo) OccupyTable(executor repositories.SQLExecutor, tableID, orderID int64, customerName *string, openedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tables[tableID]
	if !ok {
		return repositories.ErrNotFound
	}
	if t.Status != models.TableStatusFree {
		return repositories.ErrConflict
	}
	prev := *t
	t.Status = models.TableStatusOccupied
	t.CurrentOrderID = &orderID
	t.CustomerName = customerName
	t.OpenedAt = &openedAt
	pushUndo(executor, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		*t = prev
	})
	return nil
}

func (r *fakeTableRepo) SetTableStatus(executor repositories.SQLExecutor, tableID int64, expected, target models.TableStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tables[tableID]
	if !ok || t.Status != expected {
		return repositories.ErrConflict
	}
	t.Status = target
	pushUndo(executor, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		t.Status = expected
	})
	return nil
}

func (r *fakeTableRepo) ClearTable(executor repositories.SQLExecutor, tableID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tables[tableID]
	if !ok {
		return repositories.ErrNotFound
	}
	prev := *t
	t.Status = models.TableStatusFree
	t.CurrentOrderID = nil
	t.CustomerName = nil
	t.OpenedAt = nil
	pushUndo(executor, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		*t = prev
	})
	return nil
}

func (r *fakeTableRepo) SetNickname(executor repositories.SQLExecutor, storeID uuid.UUID, tableID int64, nickname *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tables[tableID]
	if !ok || t.StoreID != storeID {
		return repositories.ErrNotFound
	}
	t.Nickname = nickname
	return nil
}

func (r *fakeTableRepo) CountTables(storeID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, t := range r.tables {
		if t.StoreID == storeID {
			count++
		}
	}
	return count, nil
}

func (r *fakeTableRepo) MaxTableNumber(storeID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	max := 0
	for _, t := range r.tables {
		if t.StoreID == storeID && t.Number > max {
			max = t.Number
		}
	}
	return max, nil
}

func (r *fakeTableRepo) DeleteFreeTableWithHighestNumber(executor repositories.SQLExecutor, storeID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var victim *models.DiningTable
	for _, t := range r.tables {
		if t.StoreID != storeID || t.Status != models.TableStatusFree {
			continue
		}
		if victim == nil || t.Number > victim.Number {
			victim = t
		}
	}
	if victim == nil {
		return repositories.ErrConflict
	}
	removed := victim
	delete(r.tables, victim.ID)
	pushUndo(executor, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.tables[removed.ID] = removed
	})
	return nil
}

// --- dispatch ---

type fakeDispatchRepo struct {
	mu          sync.Mutex
	nextID      int64
	couriers    map[int64]*models.Courier
	assignments map[int64]*models.CourierAssignment
}

func newFakeDispatchRepo() *fakeDispatchRepo {
	return &fakeDispatchRepo{
		couriers:    map[int64]*models.Courier{},
		assignments: map[int64]*models.CourierAssignment{},
	}
}

func (r *fakeDispatchRepo) GetCourierByID(storeID uuid.UUID, courierID int64) (*models.Courier, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.couriers[courierID]
	if !ok || c.StoreID != storeID {
		return nil, repositories.ErrNotFound
	}
	out := *c
	return &out, nil
}

func (r *fakeDispatchRepo) ListAvailableCouriers(storeID uuid.UUID) ([]models.Courier, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	busy := map[int64]bool{}
	for _, a := range r.assignments {
		if a.ClosedAt == nil {
			busy[a.CourierID] = true
		}
	}
	out := []models.Courier{}
	for _, c := range r.couriers {
		if c.StoreID == storeID && c.Active && !busy[c.ID] {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeDispatchRepo) CreateAssignment(executor repositories.SQLExecutor, assignment *models.CourierAssignment) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.assignments {
		if a.ClosedAt != nil {
			continue
		}
		if a.CourierID == assignment.CourierID || a.OrderID == assignment.OrderID {
			return 0, repositories.ErrDuplicateKey
		}
	}
	r.nextID++
	id := r.nextID
	stored := *assignment
	stored.ID = id
	r.assignments[id] = &stored
	assignment.ID = id
	pushUndo(executor, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.assignments, id)
	})
	return id, nil
}

func (r *fakeDispatchRepo) GetOpenAssignmentByOrder(orderID int64) (*models.CourierAssignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.assignments {
		if a.OrderID == orderID && a.ClosedAt == nil {
			out := *a
			return &out, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeDispatchRepo) CloseAssignmentByOrder(executor repositories.SQLExecutor, orderID int64, closedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.assignments {
		if a.OrderID == orderID && a.ClosedAt == nil {
			closed := a
			closed.ClosedAt = &closedAt
			pushUndo(executor, func() {
				r.mu.Lock()
				defer r.mu.Unlock()
				closed.ClosedAt = nil
			})
			return nil
		}
	}
	return repositories.ErrNotFound
}

// --- stock movements ---

type fakeMovementRepo struct {
	mu        sync.Mutex
	nextID    int64
	movements map[int64]*models.StockMovement
}

func newFakeMovementRepo() *fakeMovementRepo {
	return &fakeMovementRepo{movements: map[int64]*models.StockMovement{}}
}

func (r *fakeMovementRepo) CreateMovement(executor repositories.SQLExecutor, movement *models.StockMovement) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	id := r.nextID
	stored := *movement
	stored.ID = id
	r.movements[id] = &stored
	pushUndo(executor, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.movements, id)
	})
	return id, nil
}

func (r *fakeMovementRepo) GetMovements(productID *int64, orderID *int64, movementType *string, page, pageSize int) ([]models.StockMovement, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.StockMovement{}
	for _, m := range r.movements {
		if productID != nil && m.StoreProductID != *productID {
			continue
		}
		if orderID != nil && (m.OrderID == nil || *m.OrderID != *orderID) {
			continue
		}
		if movementType != nil && m.MovementType != *movementType {
			continue
		}
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	total := len(out)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return out[start:end], total, nil
}

func (r *fakeMovementRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.movements)
}

// --- fixture ---

type serviceFixture struct {
	storeID     uuid.UUID
	catalog     *fakeCatalogRepo
	orders      *fakeOrderRepo
	tables      *fakeTableRepo
	dispatch    *fakeDispatchRepo
	moves       *fakeMovementRepo
	ledger      StockLedger
	orderSvc    OrderService
	tableSvc    TableService
	dispatchSvc DispatchService
}

func newServiceFixture() *serviceFixture {
	f := &serviceFixture{
		storeID:  uuid.New(),
		catalog:  newFakeCatalogRepo(),
		orders:   newFakeOrderRepo(),
		tables:   newFakeTableRepo(),
		dispatch: newFakeDispatchRepo(),
		moves:    newFakeMovementRepo(),
	}
	db := fakeDB{}
	f.ledger = NewStockLedger(f.catalog, f.moves, db)
	f.orderSvc = NewOrderService(f.orders, f.catalog, f.tables, f.dispatch, f.ledger, db)
	f.tableSvc = NewTableService(f.tables, f.orders, f.orderSvc, db)
	f.dispatchSvc = NewDispatchService(f.dispatch, f.orders, f.orderSvc, db)
	return f
}

func (f *serviceFixture) addProduct(id int64, name string, price int64, stock int) {
	f.catalog.mu.Lock()
	defer f.catalog.mu.Unlock()
	f.catalog.products[id] = &models.StoreProduct{
		ID: id, StoreID: f.storeID, Name: name, Price: price,
		StockQuantity: stock, Available: true,
	}
}

func (f *serviceFixture) addCombo(id int64, name string, price int64, items ...models.ComboItem) {
	f.catalog.mu.Lock()
	defer f.catalog.mu.Unlock()
	f.catalog.combos[id] = &models.Combo{
		ID: id, StoreID: f.storeID, Name: name, Price: price, Active: true, Items: items,
	}
}

func (f *serviceFixture) addTable(id int64, number int) {
	f.tables.mu.Lock()
	defer f.tables.mu.Unlock()
	f.tables.tables[id] = &models.DiningTable{
		ID: id, StoreID: f.storeID, Number: number, Status: models.TableStatusFree,
	}
	if id > f.tables.nextID {
		f.tables.nextID = id
	}
}

func (f *serviceFixture) addCourier(id int64, name string) {
	f.dispatch.mu.Lock()
	defer f.dispatch.mu.Unlock()
	f.dispatch.couriers[id] = &models.Courier{
		ID: id, StoreID: f.storeID, Name: name, Active: true,
	}
}
