package services

import (
	"errors"
	"fmt"
	"time"

	"restaurant_ops_backend/internal/models"
	"restaurant_ops_backend/internal/repositories"
	"restaurant_ops_backend/pkg/utils"

	"github.com/google/uuid"
)

// --- Data Transfer Objects (DTOs) ---

// CreateOrderAddonRequest selects an add-on product for one order line.
type CreateOrderAddonRequest struct {
	StoreProductID int64 `json:"store_product_id" binding:"required"`
	Quantity       int   `json:"quantity" binding:"required,gt=0"`
}

// CreateOrderItemRequest is one cart line: exactly one of store_product_id or
// combo_id must be set.
type CreateOrderItemRequest struct {
	StoreProductID *int64                    `json:"store_product_id"`
	ComboID        *int64                    `json:"combo_id"`
	Quantity       int                       `json:"quantity" binding:"required,gt=0"`
	Note           string                    `json:"note"`
	Addons         []CreateOrderAddonRequest `json:"addons"`
}

// CreateOrderRequest is used for creating a new order. Prices are never taken
// from the request; they are snapshotted from the catalog server-side.
type CreateOrderRequest struct {
	Channel           string                   `json:"channel" binding:"required"`
	TableID           *int64                   `json:"table_id"`
	CustomerID        *int64                   `json:"customer_id"`
	CustomerName      *string                  `json:"customer_name"`
	PaymentMethod     *string                  `json:"payment_method"`
	ChangeFor         *int64                   `json:"change_for"`
	Note              *string                  `json:"note"`
	DeliveryAddressID *int64                   `json:"delivery_address_id"`
	DiscountAmount    int64                    `json:"discount_amount"`
	Items             []CreateOrderItemRequest `json:"items" binding:"required,dive"`
}

// UpdateOrderStatusRequest is used for updating the status of an order.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateItemStatusRequest is used for updating the status of a single item.
type UpdateItemStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ApplyDiscountRequest sets the order discount in minor currency units.
type ApplyDiscountRequest struct {
	Amount int64 `json:"amount" binding:"min=0"`
}

// SetNoteRequest replaces the order note.
type SetNoteRequest struct {
	Note string `json:"note"`
}

// CancelOrderRequest cancels an order with an audited reason.
type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// QueueFilters narrows the polling surface per consuming UI.
type QueueFilters struct {
	Channel  *string
	TableID  *int64
	Statuses []string
}

// --- OrderService Interface ---

// OrderService owns the order aggregate: creation with atomic stock
// reservation, the order and item status state machines with upward
// propagation, and the polling queue read side.
type OrderService interface {
	CreateOrder(storeID uuid.UUID, req CreateOrderRequest) (*models.Order, error)
	GetOrderByID(storeID uuid.UUID, orderID int64) (*models.Order, error)
	ListQueue(storeID uuid.UUID, filters QueueFilters) ([]models.Order, error)
	TransitionOrderStatus(storeID uuid.UUID, orderID int64, req UpdateOrderStatusRequest) (*models.Order, error)
	TransitionItemStatus(storeID uuid.UUID, itemID int64, req UpdateItemStatusRequest) (*models.Order, error)
	AddItemToOrder(storeID uuid.UUID, orderID int64, req CreateOrderItemRequest) (*models.Order, error)
	RemoveItemFromOrder(storeID uuid.UUID, orderID, itemID int64) (*models.Order, error)
	ApplyDiscount(storeID uuid.UUID, orderID int64, req ApplyDiscountRequest) (*models.Order, error)
	SetNote(storeID uuid.UUID, orderID int64, req SetNoteRequest) (*models.Order, error)
	CancelOrder(storeID uuid.UUID, orderID int64, req CancelOrderRequest) (*models.Order, error)
}

// --- orderService Implementation ---

type orderService struct {
	orderRepo    repositories.OrderRepository
	catalogRepo  repositories.CatalogRepository
	tableRepo    repositories.TableRepository
	dispatchRepo repositories.DispatchRepository
	stock        StockLedger
	db           repositories.Database // For managing transactions
}

// NewOrderService creates a new instance of OrderService.
func NewOrderService(
	or repositories.OrderRepository,
	cr repositories.CatalogRepository,
	tr repositories.TableRepository,
	dr repositories.DispatchRepository,
	ledger StockLedger,
	db repositories.Database,
) OrderService {
	return &orderService{
		orderRepo:    or,
		catalogRepo:  cr,
		tableRepo:    tr,
		dispatchRepo: dr,
		stock:        ledger,
		db:           db,
	}
}

// --- Request validation (pure, side-effect free) ---

// ValidateCreateOrderRequest checks the structural rules of a cart before any
// catalog or stock access happens: a known channel, at least one line, one
// catalog reference per line, positive quantities, non-negative discount, and
// channel prerequisites (delivery address for delivery orders).
func ValidateCreateOrderRequest(req CreateOrderRequest) error {
	if !models.IsValidOrderChannel(req.Channel) {
		return fmt.Errorf("%w: unknown channel %q", ErrValidation, req.Channel)
	}
	if len(req.Items) == 0 {
		return fmt.Errorf("%w: order must contain at least one item", ErrValidation)
	}
	if req.DiscountAmount < 0 {
		return fmt.Errorf("%w: discount must not be negative", ErrValidation)
	}
	if models.OrderChannel(req.Channel) == models.ChannelDelivery && req.DeliveryAddressID == nil {
		return fmt.Errorf("%w: delivery orders require a delivery address", ErrValidation)
	}
	if models.OrderChannel(req.Channel) != models.ChannelDineIn && req.TableID != nil {
		return fmt.Errorf("%w: only dine-in orders may reference a table", ErrValidation)
	}
	for i, item := range req.Items {
		if err := validateItemRequest(item); err != nil {
			return fmt.Errorf("line %d: %w", i+1, err)
		}
	}
	return nil
}

func validateItemRequest(item CreateOrderItemRequest) error {
	hasProduct := item.StoreProductID != nil
	hasCombo := item.ComboID != nil
	if hasProduct == hasCombo {
		return fmt.Errorf("%w: exactly one of store_product_id or combo_id must be set", ErrValidation)
	}
	if item.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}
	if hasCombo && len(item.Addons) > 0 {
		// Add-ons attach to plain product lines; combo lines select add-ons
		// per component in the cart UI and submit them as separate lines.
		return fmt.Errorf("%w: combo lines cannot carry add-ons", ErrValidation)
	}
	for _, addon := range item.Addons {
		if addon.Quantity <= 0 {
			return fmt.Errorf("%w: addon quantity must be positive", ErrValidation)
		}
	}
	return nil
}

// builtLine pairs a priced order item with the stock demand it creates.
type builtLine struct {
	item   models.OrderItem
	demand []models.StockLine
}

// buildLine resolves a cart line against the catalog: validates the
// reference, freezes name and price, and expands combos into per-product
// stock demand.
func (s *orderService) buildLine(storeID uuid.UUID, req CreateOrderItemRequest) (*builtLine, error) {
	line := &builtLine{}

	switch {
	case req.StoreProductID != nil:
		product, err := s.catalogRepo.GetStoreProduct(storeID, *req.StoreProductID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, fmt.Errorf("%w: product ID %d", ErrInvalidReference, *req.StoreProductID)
			}
			return nil, fmt.Errorf("failed to fetch product %d: %w", *req.StoreProductID, err)
		}
		if !product.Available {
			return nil, fmt.Errorf("%w: product %q is not available", ErrInvalidReference, product.Name)
		}
		line.item = models.OrderItem{
			Kind:      models.ItemKindProduct,
			ProductID: req.StoreProductID,
			Name:      product.Name,
			UnitPrice: product.Price,
			Quantity:  req.Quantity,
			Status:    models.ItemStatusPending,
		}
		line.demand = append(line.demand, models.StockLine{
			StoreProductID: product.ID,
			Quantity:       req.Quantity,
		})

	case req.ComboID != nil:
		combo, err := s.catalogRepo.GetCombo(storeID, *req.ComboID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, fmt.Errorf("%w: combo ID %d", ErrInvalidReference, *req.ComboID)
			}
			return nil, fmt.Errorf("failed to fetch combo %d: %w", *req.ComboID, err)
		}
		if !combo.Active {
			return nil, fmt.Errorf("%w: combo %q is not active", ErrInvalidReference, combo.Name)
		}
		line.item = models.OrderItem{
			Kind:      models.ItemKindCombo,
			ComboID:   req.ComboID,
			Name:      combo.Name,
			UnitPrice: combo.Price,
			Quantity:  req.Quantity,
			Status:    models.ItemStatusPending,
		}
		for _, component := range combo.Items {
			line.demand = append(line.demand, models.StockLine{
				StoreProductID: component.StoreProductID,
				Quantity:       component.Quantity * req.Quantity,
			})
		}
	}

	line.item.Note = utils.NewNullString(req.Note)

	for _, addonReq := range req.Addons {
		addonProduct, err := s.catalogRepo.GetStoreProduct(storeID, addonReq.StoreProductID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, fmt.Errorf("%w: addon product ID %d", ErrInvalidReference, addonReq.StoreProductID)
			}
			return nil, fmt.Errorf("failed to fetch addon product %d: %w", addonReq.StoreProductID, err)
		}
		if !addonProduct.Available {
			return nil, fmt.Errorf("%w: addon %q is not available", ErrInvalidReference, addonProduct.Name)
		}
		line.item.Addons = append(line.item.Addons, models.OrderItemAddon{
			StoreProductID: addonProduct.ID,
			Quantity:       addonReq.Quantity,
			Price:          addonProduct.Price,
		})
		line.demand = append(line.demand, models.StockLine{
			StoreProductID: addonProduct.ID,
			Quantity:       addonReq.Quantity,
		})
	}

	return line, nil
}

// --- Method Implementations ---

func (s *orderService) CreateOrder(storeID uuid.UUID, req CreateOrderRequest) (*models.Order, error) {
	if err := ValidateCreateOrderRequest(req); err != nil {
		return nil, err
	}

	channel := models.OrderChannel(req.Channel)

	lines := make([]builtLine, 0, len(req.Items))
	demand := []models.StockLine{}
	items := make([]models.OrderItem, 0, len(req.Items))
	for _, itemReq := range req.Items {
		line, err := s.buildLine(storeID, itemReq)
		if err != nil {
			return nil, err
		}
		lines = append(lines, *line)
		demand = append(demand, line.demand...)
		items = append(items, line.item)
	}

	order := models.Order{
		StoreID:           storeID,
		Channel:           channel,
		TableID:           req.TableID,
		CustomerID:        req.CustomerID,
		CustomerName:      req.CustomerName,
		Status:            models.InitialOrderStatus(channel),
		TotalAmount:       models.ComputeOrderTotal(items, req.DiscountAmount),
		DiscountAmount:    req.DiscountAmount,
		PaymentMethod:     req.PaymentMethod,
		ChangeFor:         req.ChangeFor,
		Note:              req.Note,
		DeliveryAddressID: req.DeliveryAddressID,
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	orderID, err := s.orderRepo.CreateOrder(tx, &order)
	if err != nil {
		return nil, fmt.Errorf("failed to create order record: %w", err)
	}

	for i := range lines {
		lines[i].item.OrderID = orderID
		itemID, err := s.orderRepo.CreateOrderItem(tx, &lines[i].item)
		if err != nil {
			return nil, fmt.Errorf("failed to create order item: %w", err)
		}
		for j := range lines[i].item.Addons {
			lines[i].item.Addons[j].OrderItemID = itemID
			if _, err := s.orderRepo.CreateOrderItemAddon(tx, &lines[i].item.Addons[j]); err != nil {
				return nil, fmt.Errorf("failed to create order item addon: %w", err)
			}
		}
	}

	if err := s.stock.ReserveTx(tx, storeID, &orderID, MergeStockLines(demand)); err != nil {
		return nil, err
	}

	if req.TableID != nil {
		if err := seatOrder(s.tableRepo, tx, *req.TableID, orderID, req.CustomerName); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit order transaction: %w", err)
	}

	return s.GetOrderByID(storeID, orderID)
}

// seatOrder links a dine-in order to a free table. Every open session carries
// an order, so an occupied table always rejects the seat.
func seatOrder(tableRepo repositories.TableRepository, executor repositories.SQLExecutor, tableID, orderID int64, customerName *string) error {
	err := tableRepo.OccupyTable(executor, tableID, orderID, customerName, time.Now())
	if err == nil {
		return nil
	}
	if errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("%w: table ID %d", ErrTableNotFound, tableID)
	}
	if errors.Is(err, repositories.ErrConflict) {
		return fmt.Errorf("%w: table ID %d", ErrTableHasOpenOrder, tableID)
	}
	return fmt.Errorf("failed to attach order to table %d: %w", tableID, err)
}

func (s *orderService) GetOrderByID(storeID uuid.UUID, orderID int64) (*models.Order, error) {
	order, err := s.orderRepo.GetOrderByID(storeID, orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order by ID from repository: %w", err)
	}

	items, err := s.orderRepo.GetOrderItemsByOrderID(orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order items for order %d: %w", orderID, err)
	}
	order.Items = items
	return order, nil
}

func (s *orderService) ListQueue(storeID uuid.UUID, filters QueueFilters) ([]models.Order, error) {
	repoFilters := models.OrderFilters{
		Channel:  filters.Channel,
		TableID:  filters.TableID,
		Statuses: filters.Statuses,
	}
	if len(repoFilters.Statuses) == 0 {
		// Default to the live queue: everything still moving through the
		// pipeline. Terminal orders are history, not queue.
		repoFilters.Statuses = []string{
			string(models.OrderStatusPending),
			string(models.OrderStatusAwaitingAcceptance),
			string(models.OrderStatusInPreparation),
			string(models.OrderStatusReady),
			string(models.OrderStatusOutForDelivery),
		}
	}
	for _, status := range repoFilters.Statuses {
		if !models.IsValidOrderStatus(status) {
			return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
		}
	}
	if filters.Channel != nil && *filters.Channel != "" && !models.IsValidOrderChannel(*filters.Channel) {
		return nil, fmt.Errorf("%w: unknown channel %q", ErrValidation, *filters.Channel)
	}

	orders, err := s.orderRepo.ListQueue(storeID, repoFilters)
	if err != nil {
		return nil, fmt.Errorf("failed to list order queue: %w", err)
	}
	for i := range orders {
		items, err := s.orderRepo.GetOrderItemsByOrderID(orders[i].ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get items for order %d: %w", orders[i].ID, err)
		}
		orders[i].Items = items
	}
	return orders, nil
}

func (s *orderService) TransitionOrderStatus(storeID uuid.UUID, orderID int64, req UpdateOrderStatusRequest) (*models.Order, error) {
	if !models.IsValidOrderStatus(req.Status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, req.Status)
	}
	target := models.OrderStatus(req.Status)
	return s.transitionOrder(storeID, orderID, target, nil)
}

func (s *orderService) CancelOrder(storeID uuid.UUID, orderID int64, req CancelOrderRequest) (*models.Order, error) {
	reason := req.Reason
	return s.transitionOrder(storeID, orderID, models.OrderStatusCancelled, &reason)
}

// transitionOrder applies one order-level step: legality check, idempotent
// no-op on re-assertion, side effects for terminal states (restock, table
// release, assignment close) and item cascade where the order-level step
// implies it.
func (s *orderService) transitionOrder(storeID uuid.UUID, orderID int64, target models.OrderStatus, cancelReason *string) (*models.Order, error) {
	order, err := s.GetOrderByID(storeID, orderID)
	if err != nil {
		return nil, err
	}

	if order.Status == target {
		// Idempotent re-assertion from a polling client.
		return order, nil
	}
	if !order.Status.CanTransitionTo(target) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, target)
	}
	if target == models.OrderStatusOutForDelivery && order.Channel != models.ChannelDelivery {
		return nil, fmt.Errorf("%w: %s orders do not go out for delivery", ErrInvalidTransition, order.Channel)
	}
	if target == models.OrderStatusReady && !allItemsAtLeastReady(order.Items) {
		return nil, fmt.Errorf("%w: not all items are ready", ErrInvalidTransition)
	}

	now := time.Now()
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.orderRepo.UpdateOrderStatus(tx, orderID, order.Status, target, now); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return nil, fmt.Errorf("%w: order %d", ErrConcurrentUpdate, orderID)
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	switch target {
	case models.OrderStatusInPreparation:
		// Accepting the order pulls every waiting item into preparation.
		if err := s.cascadeItems(tx, order.Items, models.ItemStatusPending, models.ItemStatusInPreparation, now); err != nil {
			return nil, err
		}

	case models.OrderStatusDelivered:
		// Completing the order marks the remaining items delivered.
		for _, item := range order.Items {
			if item.Status.IsTerminal() {
				continue
			}
			if err := s.orderRepo.UpdateItemStatus(tx, item.ID, models.ItemStatusDelivered, now); err != nil {
				return nil, fmt.Errorf("failed to cascade item %d to delivered: %w", item.ID, err)
			}
		}
		if err := s.closeAssignmentIfAny(tx, orderID, now); err != nil {
			return nil, err
		}
		if err := s.releaseTableIfLinked(tx, order); err != nil {
			return nil, err
		}

	case models.OrderStatusCancelled:
		if cancelReason != nil {
			if err := s.orderRepo.SetOrderCancelReason(tx, orderID, cancelReason, now); err != nil {
				return nil, fmt.Errorf("failed to record cancel reason: %w", err)
			}
		}
		// Compensating re-increment for everything the kitchen has not
		// started on. Items already in preparation or beyond consumed their
		// ingredients; their stock is not returned.
		restock, err := s.demandForItems(storeID, restockableItems(order.Items))
		if err != nil {
			return nil, err
		}
		if len(restock) > 0 {
			reason := fmt.Sprintf("order %d cancelled", orderID)
			if err := s.stock.ReleaseTx(tx, storeID, &orderID, MovementTypeReturnCancellation, &reason, MergeStockLines(restock)); err != nil {
				return nil, err
			}
		}
		for _, item := range order.Items {
			if item.Status.IsTerminal() {
				continue
			}
			if err := s.orderRepo.UpdateItemStatus(tx, item.ID, models.ItemStatusCancelled, now); err != nil {
				return nil, fmt.Errorf("failed to cancel item %d: %w", item.ID, err)
			}
		}
		if err := s.closeAssignmentIfAny(tx, orderID, now); err != nil {
			return nil, err
		}
		if err := s.releaseTableIfLinked(tx, order); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction for order status update: %w", err)
	}
	return s.GetOrderByID(storeID, orderID)
}

func (s *orderService) cascadeItems(executor repositories.SQLExecutor, items []models.OrderItem, from, to models.ItemStatus, now time.Time) error {
	for _, item := range items {
		if item.Status != from {
			continue
		}
		if err := s.orderRepo.UpdateItemStatus(executor, item.ID, to, now); err != nil {
			return fmt.Errorf("failed to cascade item %d to %s: %w", item.ID, to, err)
		}
	}
	return nil
}

func (s *orderService) closeAssignmentIfAny(executor repositories.SQLExecutor, orderID int64, now time.Time) error {
	err := s.dispatchRepo.CloseAssignmentByOrder(executor, orderID, now)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("failed to close courier assignment for order %d: %w", orderID, err)
	}
	return nil
}

func (s *orderService) releaseTableIfLinked(executor repositories.SQLExecutor, order *models.Order) error {
	if order.TableID == nil {
		return nil
	}
	if err := s.tableRepo.ClearTable(executor, *order.TableID); err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("failed to release table %d: %w", *order.TableID, err)
	}
	return nil
}

// restockableItems returns the items whose stock should be re-incremented on
// cancellation: only lines the kitchen has not started preparing.
func restockableItems(items []models.OrderItem) []models.OrderItem {
	restock := []models.OrderItem{}
	for _, item := range items {
		if item.Status == models.ItemStatusPending {
			restock = append(restock, item)
		}
	}
	return restock
}

func allItemsAtLeastReady(items []models.OrderItem) bool {
	for _, item := range items {
		if item.Status == models.ItemStatusCancelled {
			continue
		}
		if item.Status != models.ItemStatusReady && item.Status != models.ItemStatusDelivered {
			return false
		}
	}
	return true
}

// demandForItems recomputes the stock demand of persisted items, expanding
// combo lines through the current combo composition.
func (s *orderService) demandForItems(storeID uuid.UUID, items []models.OrderItem) ([]models.StockLine, error) {
	demand := []models.StockLine{}
	for _, item := range items {
		switch item.Kind {
		case models.ItemKindProduct:
			demand = append(demand, models.StockLine{StoreProductID: *item.ProductID, Quantity: item.Quantity})
		case models.ItemKindCombo:
			combo, err := s.catalogRepo.GetCombo(storeID, *item.ComboID)
			if err != nil {
				if errors.Is(err, repositories.ErrNotFound) {
					// Combo retired since the sale; nothing to return.
					continue
				}
				return nil, fmt.Errorf("failed to fetch combo %d for restock: %w", *item.ComboID, err)
			}
			for _, component := range combo.Items {
				demand = append(demand, models.StockLine{
					StoreProductID: component.StoreProductID,
					Quantity:       component.Quantity * item.Quantity,
				})
			}
		}
		for _, addon := range item.Addons {
			demand = append(demand, models.StockLine{StoreProductID: addon.StoreProductID, Quantity: addon.Quantity})
		}
	}
	return demand, nil
}

func (s *orderService) TransitionItemStatus(storeID uuid.UUID, itemID int64, req UpdateItemStatusRequest) (*models.Order, error) {
	if !models.IsValidItemStatus(req.Status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, req.Status)
	}
	target := models.ItemStatus(req.Status)

	item, err := s.orderRepo.GetOrderItemByID(storeID, itemID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to fetch order item %d: %w", itemID, err)
	}

	order, err := s.GetOrderByID(storeID, item.OrderID)
	if err != nil {
		return nil, err
	}
	if order.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: order %d", ErrOrderClosed, order.ID)
	}

	if item.Status == target {
		// Idempotent re-assertion from a polling client.
		return order, nil
	}
	if !item.Status.CanTransitionTo(target) {
		return nil, fmt.Errorf("%w: item %d: %s -> %s", ErrInvalidTransition, itemID, item.Status, target)
	}

	now := time.Now()
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.orderRepo.UpdateItemStatus(tx, itemID, target, now); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to update item status: %w", err)
	}

	if target == models.ItemStatusCancelled && item.Status == models.ItemStatusPending {
		restock, err := s.demandForItems(storeID, []models.OrderItem{*item})
		if err != nil {
			return nil, err
		}
		reason := fmt.Sprintf("item %d cancelled", itemID)
		if err := s.stock.ReleaseTx(tx, storeID, &order.ID, MovementTypeReturnCancellation, &reason, MergeStockLines(restock)); err != nil {
			return nil, err
		}
	}

	if err := s.recomputeAggregate(tx, storeID, order, itemID, target, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit item status transaction: %w", err)
	}
	return s.GetOrderByID(storeID, order.ID)
}

// recomputeAggregate re-derives the order status, total and linked table
// status from item state. Derived fields are recomputed on every relevant
// mutation instead of patched incrementally so concurrent UIs cannot drift.
func (s *orderService) recomputeAggregate(executor repositories.SQLExecutor, storeID uuid.UUID, order *models.Order, changedItemID int64, changedTo models.ItemStatus, now time.Time) error {
	items := make([]models.OrderItem, len(order.Items))
	copy(items, order.Items)
	for i := range items {
		if items[i].ID == changedItemID {
			items[i].Status = changedTo
		}
	}

	derived := models.RecomputeOrderStatusFromItems(order.Channel, order.Status, items)
	if derived != order.Status {
		if err := s.orderRepo.UpdateOrderStatus(executor, order.ID, order.Status, derived, now); err != nil {
			if errors.Is(err, repositories.ErrConflict) {
				return fmt.Errorf("%w: order %d", ErrConcurrentUpdate, order.ID)
			}
			return fmt.Errorf("failed to propagate order status: %w", err)
		}
		// A derived terminal status carries the same obligations as an
		// explicit one: the courier run closes and the table comes back.
		if derived.IsTerminal() {
			if derived == models.OrderStatusCancelled {
				reason := "all items cancelled"
				if err := s.orderRepo.SetOrderCancelReason(executor, order.ID, &reason, now); err != nil {
					return fmt.Errorf("failed to record cancel reason: %w", err)
				}
			}
			if err := s.closeAssignmentIfAny(executor, order.ID, now); err != nil {
				return err
			}
			if err := s.releaseTableIfLinked(executor, order); err != nil {
				return err
			}
		}
	}

	total := models.ComputeOrderTotal(items, order.DiscountAmount)
	if total != order.TotalAmount {
		if err := s.orderRepo.UpdateOrderTotals(executor, order.ID, total, order.DiscountAmount, now); err != nil {
			return fmt.Errorf("failed to recompute order total: %w", err)
		}
	}

	if order.TableID != nil && order.Channel == models.ChannelDineIn {
		recomputed := *order
		recomputed.Status = derived
		recomputed.Items = items
		if err := s.recalcTableStatus(executor, *order.TableID, &recomputed); err != nil {
			return err
		}
	}
	return nil
}

// recalcTableStatus moves the table between occupied and awaiting_payment
// according to the derived session state. Conflicts mean another writer
// already put the table where it belongs; they are not errors.
func (s *orderService) recalcTableStatus(executor repositories.SQLExecutor, tableID int64, order *models.Order) error {
	derived := models.DeriveTableStatus(order)
	var expected models.TableStatus
	switch derived {
	case models.TableStatusAwaitingPayment:
		expected = models.TableStatusOccupied
	case models.TableStatusOccupied:
		expected = models.TableStatusAwaitingPayment
	default:
		return nil
	}
	err := s.tableRepo.SetTableStatus(executor, tableID, expected, derived)
	if err != nil && !errors.Is(err, repositories.ErrConflict) {
		return fmt.Errorf("failed to recalculate table %d status: %w", tableID, err)
	}
	return nil
}

func (s *orderService) AddItemToOrder(storeID uuid.UUID, orderID int64, req CreateOrderItemRequest) (*models.Order, error) {
	if err := validateItemRequest(req); err != nil {
		return nil, err
	}

	order, err := s.GetOrderByID(storeID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: order %d", ErrOrderClosed, orderID)
	}
	if order.Status == models.OrderStatusOutForDelivery {
		return nil, fmt.Errorf("%w: order %d already left the store", ErrInvalidTransition, orderID)
	}
	// Counter orders close for changes once ready for handover. Table orders
	// keep accepting rounds until close-out: the aggregate status stays where
	// it is (it only moves upward) and the kitchen picks the new line up
	// through its own item status.
	if order.TableID == nil && order.Status == models.OrderStatusReady {
		return nil, fmt.Errorf("%w: order %d is already ready for handover", ErrInvalidTransition, orderID)
	}

	line, err := s.buildLine(storeID, req)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	line.item.OrderID = orderID
	itemID, err := s.orderRepo.CreateOrderItem(tx, &line.item)
	if err != nil {
		return nil, fmt.Errorf("failed to append order item: %w", err)
	}
	for j := range line.item.Addons {
		line.item.Addons[j].OrderItemID = itemID
		if _, err := s.orderRepo.CreateOrderItemAddon(tx, &line.item.Addons[j]); err != nil {
			return nil, fmt.Errorf("failed to create order item addon: %w", err)
		}
	}

	if err := s.stock.ReserveTx(tx, storeID, &orderID, MergeStockLines(line.demand)); err != nil {
		return nil, err
	}

	items := append(append([]models.OrderItem{}, order.Items...), line.item)
	total := models.ComputeOrderTotal(items, order.DiscountAmount)
	if err := s.orderRepo.UpdateOrderTotals(tx, orderID, total, order.DiscountAmount, now); err != nil {
		return nil, fmt.Errorf("failed to update order total: %w", err)
	}

	if order.TableID != nil && order.Channel == models.ChannelDineIn {
		recomputed := *order
		recomputed.Items = items
		if err := s.recalcTableStatus(tx, *order.TableID, &recomputed); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit item append transaction: %w", err)
	}
	return s.GetOrderByID(storeID, orderID)
}

func (s *orderService) RemoveItemFromOrder(storeID uuid.UUID, orderID, itemID int64) (*models.Order, error) {
	order, err := s.GetOrderByID(storeID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != models.OrderStatusPending && order.Status != models.OrderStatusAwaitingAcceptance {
		return nil, fmt.Errorf("%w: items can only be removed before preparation starts", ErrInvalidTransition)
	}

	var target *models.OrderItem
	for i := range order.Items {
		if order.Items[i].ID == itemID {
			target = &order.Items[i]
			break
		}
	}
	if target == nil {
		return nil, ErrItemNotFound
	}
	if target.Status != models.ItemStatusPending {
		return nil, fmt.Errorf("%w: item %d is already being prepared", ErrInvalidTransition, itemID)
	}

	restock, err := s.demandForItems(storeID, []models.OrderItem{*target})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.orderRepo.DeleteOrderItem(tx, itemID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to delete order item %d: %w", itemID, err)
	}

	reason := fmt.Sprintf("item removed from order %d", orderID)
	if err := s.stock.ReleaseTx(tx, storeID, &orderID, MovementTypeReturnRemoval, &reason, MergeStockLines(restock)); err != nil {
		return nil, err
	}

	remaining := []models.OrderItem{}
	for _, item := range order.Items {
		if item.ID != itemID {
			remaining = append(remaining, item)
		}
	}
	total := models.ComputeOrderTotal(remaining, order.DiscountAmount)
	if err := s.orderRepo.UpdateOrderTotals(tx, orderID, total, order.DiscountAmount, now); err != nil {
		return nil, fmt.Errorf("failed to update order total: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit item removal transaction: %w", err)
	}
	return s.GetOrderByID(storeID, orderID)
}

func (s *orderService) ApplyDiscount(storeID uuid.UUID, orderID int64, req ApplyDiscountRequest) (*models.Order, error) {
	if req.Amount < 0 {
		return nil, fmt.Errorf("%w: discount must not be negative", ErrValidation)
	}
	order, err := s.GetOrderByID(storeID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: order %d", ErrOrderClosed, orderID)
	}

	total := models.ComputeOrderTotal(order.Items, req.Amount)
	if err := s.orderRepo.UpdateOrderTotals(s.db, orderID, total, req.Amount, time.Now()); err != nil {
		return nil, fmt.Errorf("failed to apply discount: %w", err)
	}
	return s.GetOrderByID(storeID, orderID)
}

func (s *orderService) SetNote(storeID uuid.UUID, orderID int64, req SetNoteRequest) (*models.Order, error) {
	order, err := s.GetOrderByID(storeID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: order %d", ErrOrderClosed, orderID)
	}

	if err := s.orderRepo.SetOrderNote(s.db, orderID, utils.NewNullString(req.Note), time.Now()); err != nil {
		return nil, fmt.Errorf("failed to set order note: %w", err)
	}
	return s.GetOrderByID(storeID, orderID)
}
