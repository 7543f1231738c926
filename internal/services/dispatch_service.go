package services

import (
	"errors"
	"fmt"
	"time"

	"restaurant_ops_backend/internal/models"
	"restaurant_ops_backend/internal/repositories"

	"github.com/google/uuid"
)

// --- Data Transfer Objects (DTOs) ---

// AssignCourierRequest hands a ready delivery order to a courier.
type AssignCourierRequest struct {
	CourierID int64 `json:"courier_id" binding:"required"`
}

// --- DispatchService Interface ---

// DispatchService hands ready delivery orders to couriers. A courier holds at
// most one open assignment and an order has at most one open assignment; both
// are enforced by the storage layer, so concurrent assignment attempts
// resolve to exactly one winner.
type DispatchService interface {
	ListAvailableCouriers(storeID uuid.UUID) ([]models.Courier, error)
	AssignCourier(storeID uuid.UUID, orderID int64, req AssignCourierRequest) (*models.CourierAssignment, error)
	GetAssignment(storeID uuid.UUID, orderID int64) (*models.CourierAssignment, error)
}

// --- dispatchService Implementation ---

type dispatchService struct {
	dispatchRepo repositories.DispatchRepository
	orderRepo    repositories.OrderRepository
	orderSvc     OrderService
	db           repositories.Database // For managing transactions
}

// NewDispatchService creates a new instance of DispatchService.
func NewDispatchService(dr repositories.DispatchRepository, or repositories.OrderRepository, os OrderService, db repositories.Database) DispatchService {
	return &dispatchService{
		dispatchRepo: dr,
		orderRepo:    or,
		orderSvc:     os,
		db:           db,
	}
}

// --- Method Implementations ---

func (s *dispatchService) ListAvailableCouriers(storeID uuid.UUID) ([]models.Courier, error) {
	couriers, err := s.dispatchRepo.ListAvailableCouriers(storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list available couriers: %w", err)
	}
	return couriers, nil
}

func (s *dispatchService) GetAssignment(storeID uuid.UUID, orderID int64) (*models.CourierAssignment, error) {
	// Scope check first so one store cannot probe another store's orders.
	if _, err := s.orderRepo.GetOrderByID(storeID, orderID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to fetch order %d: %w", orderID, err)
	}

	assignment, err := s.dispatchRepo.GetOpenAssignmentByOrder(orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: order %d has no open assignment", ErrAssignmentNotFound, orderID)
		}
		return nil, fmt.Errorf("failed to fetch assignment for order %d: %w", orderID, err)
	}
	return assignment, nil
}

func (s *dispatchService) AssignCourier(storeID uuid.UUID, orderID int64, req AssignCourierRequest) (*models.CourierAssignment, error) {
	order, err := s.orderSvc.GetOrderByID(storeID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Channel != models.ChannelDelivery {
		return nil, fmt.Errorf("%w: order %d is not a delivery order", ErrValidation, orderID)
	}
	if order.Status != models.OrderStatusReady {
		return nil, fmt.Errorf("%w: order %d is %s", ErrOrderNotReady, orderID, order.Status)
	}

	courier, err := s.dispatchRepo.GetCourierByID(storeID, req.CourierID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCourierNotFound
		}
		return nil, fmt.Errorf("failed to fetch courier %d: %w", req.CourierID, err)
	}
	if !courier.Active {
		return nil, fmt.Errorf("%w: courier %d is inactive", ErrCourierUnavailable, req.CourierID)
	}

	now := time.Now()
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	assignment := models.CourierAssignment{
		OrderID:    orderID,
		CourierID:  req.CourierID,
		AssignedAt: now,
	}
	if _, err := s.dispatchRepo.CreateAssignment(tx, &assignment); err != nil {
		// The partial unique indexes reject a courier with an open run and an
		// order that is already assigned; both surface as one conflict here.
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: courier %d or order %d already has an open assignment", ErrCourierUnavailable, req.CourierID, orderID)
		}
		return nil, fmt.Errorf("failed to create courier assignment: %w", err)
	}

	if err := s.orderRepo.SetOrderCourier(tx, orderID, &req.CourierID, now); err != nil {
		return nil, fmt.Errorf("failed to set courier on order %d: %w", orderID, err)
	}

	err = s.orderRepo.UpdateOrderStatus(tx, orderID, models.OrderStatusReady, models.OrderStatusOutForDelivery, now)
	if err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return nil, fmt.Errorf("%w: order %d", ErrConcurrentUpdate, orderID)
		}
		return nil, fmt.Errorf("failed to move order %d out for delivery: %w", orderID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit assignment transaction: %w", err)
	}
	return &assignment, nil
}
