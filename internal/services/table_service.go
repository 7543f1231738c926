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

// OpenTableRequest starts a dine-in session on a free table. Opening seeds
// an empty order for the table so waiters can add items to it right away.
type OpenTableRequest struct {
	CustomerName *string `json:"customer_name"`
}

// AttachOrderRequest links an existing order to an open table session.
type AttachOrderRequest struct {
	OrderID int64 `json:"order_id" binding:"required"`
}

// ReleaseTableRequest frees a table. Releasing a table whose order is still
// open requires Force; the forced release cancels the order and records the
// reason on it.
type ReleaseTableRequest struct {
	Force  bool   `json:"force"`
	Reason string `json:"reason"`
}

// SetNicknameRequest renames a table for the floor plan.
type SetNicknameRequest struct {
	Nickname *string `json:"nickname"`
}

// ConfigureTablesRequest resizes the floor plan to the given table count.
type ConfigureTablesRequest struct {
	Count int `json:"count" binding:"required,gt=0"`
}

// --- TableService Interface ---

// TableService owns the dine-in session lifecycle: opening and releasing
// tables, linking orders to sessions, and keeping the derived table status
// consistent with the linked order.
type TableService interface {
	ListTables(storeID uuid.UUID) ([]models.DiningTable, error)
	GetTable(storeID uuid.UUID, tableID int64) (*models.DiningTable, error)
	OpenTable(storeID uuid.UUID, tableID int64, req OpenTableRequest) (*models.DiningTable, error)
	AttachOrder(storeID uuid.UUID, tableID int64, req AttachOrderRequest) (*models.DiningTable, error)
	RecalculateTableStatus(storeID uuid.UUID, tableID int64) (*models.DiningTable, error)
	ReleaseTable(storeID uuid.UUID, tableID int64, req ReleaseTableRequest) (*models.DiningTable, error)
	SetNickname(storeID uuid.UUID, tableID int64, req SetNicknameRequest) (*models.DiningTable, error)
	ConfigureTables(storeID uuid.UUID, req ConfigureTablesRequest) ([]models.DiningTable, error)
}

// --- tableService Implementation ---

type tableService struct {
	tableRepo repositories.TableRepository
	orderRepo repositories.OrderRepository
	orderSvc  OrderService
	db        repositories.Database // For managing transactions
}

// NewTableService creates a new instance of TableService.
func NewTableService(tr repositories.TableRepository, or repositories.OrderRepository, os OrderService, db repositories.Database) TableService {
	return &tableService{
		tableRepo: tr,
		orderRepo: or,
		orderSvc:  os,
		db:        db,
	}
}

// --- Method Implementations ---

func (s *tableService) ListTables(storeID uuid.UUID) ([]models.DiningTable, error) {
	tables, err := s.tableRepo.ListTables(storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	for i := range tables {
		if err := s.attachCurrentOrder(storeID, &tables[i]); err != nil {
			return nil, err
		}
	}
	return tables, nil
}

func (s *tableService) GetTable(storeID uuid.UUID, tableID int64) (*models.DiningTable, error) {
	table, err := s.tableRepo.GetTableByID(storeID, tableID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTableNotFound
		}
		return nil, fmt.Errorf("failed to get table %d: %w", tableID, err)
	}
	if err := s.attachCurrentOrder(storeID, table); err != nil {
		return nil, err
	}
	return table, nil
}

// attachCurrentOrder embeds the linked order, with its items, for occupied
// tables so the floor plan renders session detail in one poll.
func (s *tableService) attachCurrentOrder(storeID uuid.UUID, table *models.DiningTable) error {
	if table.CurrentOrderID == nil {
		return nil
	}
	order, err := s.orderSvc.GetOrderByID(storeID, *table.CurrentOrderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil
		}
		return fmt.Errorf("failed to load order for table %d: %w", table.ID, err)
	}
	table.CurrentOrder = order
	return nil
}

// OpenTable starts a session on a free table and creates the empty order the
// session revolves around. Items are appended to that order as guests pick
// them.
func (s *tableService) OpenTable(storeID uuid.UUID, tableID int64, req OpenTableRequest) (*models.DiningTable, error) {
	if _, err := s.GetTable(storeID, tableID); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	order := models.Order{
		StoreID:      storeID,
		Channel:      models.ChannelDineIn,
		TableID:      &tableID,
		CustomerName: req.CustomerName,
		Status:       models.InitialOrderStatus(models.ChannelDineIn),
	}
	orderID, err := s.orderRepo.CreateOrder(tx, &order)
	if err != nil {
		return nil, fmt.Errorf("failed to create session order for table %d: %w", tableID, err)
	}

	if err := s.tableRepo.OccupyTable(tx, tableID, orderID, req.CustomerName, time.Now()); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return nil, fmt.Errorf("%w: table ID %d", ErrTableOccupied, tableID)
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTableNotFound
		}
		return nil, fmt.Errorf("failed to open table %d: %w", tableID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit table open transaction: %w", err)
	}
	return s.GetTable(storeID, tableID)
}

func (s *tableService) AttachOrder(storeID uuid.UUID, tableID int64, req AttachOrderRequest) (*models.DiningTable, error) {
	order, err := s.orderSvc.GetOrderByID(storeID, req.OrderID)
	if err != nil {
		return nil, err
	}
	if order.Channel != models.ChannelDineIn {
		return nil, fmt.Errorf("%w: only dine-in orders can be attached to a table", ErrValidation)
	}
	if order.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: order %d", ErrOrderClosed, req.OrderID)
	}
	if order.TableID != nil {
		return nil, fmt.Errorf("%w: order %d is already seated", ErrValidation, req.OrderID)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if err := seatOrder(s.tableRepo, tx, tableID, req.OrderID, order.CustomerName); err != nil {
		return nil, err
	}
	if err := s.orderRepo.SetOrderTable(tx, req.OrderID, &tableID, time.Now()); err != nil {
		return nil, fmt.Errorf("failed to link table on order %d: %w", req.OrderID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit attach transaction: %w", err)
	}
	return s.GetTable(storeID, tableID)
}

func (s *tableService) RecalculateTableStatus(storeID uuid.UUID, tableID int64) (*models.DiningTable, error) {
	table, err := s.GetTable(storeID, tableID)
	if err != nil {
		return nil, err
	}
	if table.Status == models.TableStatusFree || table.CurrentOrder == nil {
		return table, nil
	}

	derived := models.DeriveTableStatus(table.CurrentOrder)
	if derived == table.Status {
		return table, nil
	}
	err = s.tableRepo.SetTableStatus(s.db, tableID, table.Status, derived)
	if err != nil && !errors.Is(err, repositories.ErrConflict) {
		return nil, fmt.Errorf("failed to recalculate status for table %d: %w", tableID, err)
	}
	return s.GetTable(storeID, tableID)
}

func (s *tableService) ReleaseTable(storeID uuid.UUID, tableID int64, req ReleaseTableRequest) (*models.DiningTable, error) {
	table, err := s.GetTable(storeID, tableID)
	if err != nil {
		return nil, err
	}
	if table.Status == models.TableStatusFree {
		return table, nil
	}

	if table.CurrentOrder != nil && !table.CurrentOrder.Status.IsTerminal() {
		if !req.Force {
			return nil, fmt.Errorf("%w: table ID %d, order %d", ErrTableHasOpenOrder, tableID, table.CurrentOrder.ID)
		}
		// A forced release cancels the live order, which restocks unprepared
		// items and clears the table link. The reason survives on the
		// cancelled order for the audit trail.
		reason := fmt.Sprintf("table %d force released: %s", table.Number, req.Reason)
		utils.LogInfo("Table force released with open order", map[string]interface{}{
			"table_id": tableID,
			"order_id": table.CurrentOrder.ID,
			"reason":   req.Reason,
		})
		if _, err := s.orderSvc.CancelOrder(storeID, table.CurrentOrder.ID, CancelOrderRequest{Reason: reason}); err != nil {
			return nil, err
		}
		return s.GetTable(storeID, tableID)
	}

	if err := s.tableRepo.ClearTable(s.db, tableID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTableNotFound
		}
		return nil, fmt.Errorf("failed to release table %d: %w", tableID, err)
	}
	return s.GetTable(storeID, tableID)
}

func (s *tableService) SetNickname(storeID uuid.UUID, tableID int64, req SetNicknameRequest) (*models.DiningTable, error) {
	if err := s.tableRepo.SetNickname(s.db, storeID, tableID, req.Nickname); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTableNotFound
		}
		return nil, fmt.Errorf("failed to set nickname for table %d: %w", tableID, err)
	}
	return s.GetTable(storeID, tableID)
}

func (s *tableService) ConfigureTables(storeID uuid.UUID, req ConfigureTablesRequest) ([]models.DiningTable, error) {
	if req.Count <= 0 {
		return nil, fmt.Errorf("%w: table count must be positive", ErrValidation)
	}

	current, err := s.tableRepo.CountTables(storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to count tables: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	switch {
	case req.Count > current:
		next, err := s.tableRepo.MaxTableNumber(storeID)
		if err != nil {
			return nil, fmt.Errorf("failed to get max table number: %w", err)
		}
		for i := current; i < req.Count; i++ {
			next++
			table := models.DiningTable{StoreID: storeID, Number: next, Status: models.TableStatusFree}
			if _, err := s.tableRepo.CreateTable(tx, &table); err != nil {
				return nil, fmt.Errorf("failed to create table %d: %w", next, err)
			}
		}
	case req.Count < current:
		// Shrinking removes free tables from the top of the numbering. A
		// table in use blocks the shrink rather than ejecting guests.
		for i := current; i > req.Count; i-- {
			if err := s.tableRepo.DeleteFreeTableWithHighestNumber(tx, storeID); err != nil {
				if errors.Is(err, repositories.ErrConflict) {
					return nil, fmt.Errorf("%w: cannot remove tables that are in use", ErrTableOccupied)
				}
				return nil, fmt.Errorf("failed to remove table: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit table configuration: %w", err)
	}
	return s.ListTables(storeID)
}
