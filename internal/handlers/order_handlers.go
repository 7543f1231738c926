package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"restaurant_ops_backend/internal/services"
	"restaurant_ops_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// OrderHandler holds the order service.
type OrderHandler struct {
	orderService services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(os services.OrderService) *OrderHandler {
	return &OrderHandler{orderService: os}
}

// CreateOrder handles the creation of a new order with its items.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	storeID, ok := storeIDParam(c)
	if !ok {
		return
	}

	var req services.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateOrder: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	createdOrder, err := h.orderService.CreateOrder(storeID, req)
	if err != nil {
		respondServiceError(c, err, "CreateOrder: Error from orderService.CreateOrder")
		return
	}
	c.JSON(http.StatusCreated, createdOrder)
}

// ListQueue handles the polling read of active orders with filters.
func (h *OrderHandler) ListQueue(c *gin.Context) {
	storeID, ok := storeIDParam(c)
	if !ok {
		return
	}

	var filters services.QueueFilters
	if channel := c.Query("channel"); channel != "" {
		filters.Channel = &channel
	}
	if tableIDStr := c.Query("table_id"); tableIDStr != "" {
		tableID, err := strconv.ParseInt(tableIDStr, 10, 64)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid table_id format.", err.Error()))
			return
		}
		filters.TableID = &tableID
	}
	if statuses := c.Query("statuses"); statuses != "" {
		filters.Statuses = strings.Split(statuses, ",")
	}

	orders, err := h.orderService.ListQueue(storeID, filters)
	if err != nil {
		respondServiceError(c, err, "ListQueue: Error from orderService.ListQueue")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": orders})
}

// GetOrderByID handles fetching a single order by ID with its items.
func (h *OrderHandler) GetOrderByID(c *gin.Context) {
	storeID, ok := storeIDParam(c)
	if !ok {
		return
	}
	orderID, ok := int64Param(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.GetOrderByID(storeID, orderID)
	if err != nil {
		respondServiceError(c, err, "GetOrderByID: Error from orderService.GetOrderByID")
		return
	}
	c.JSON(http.StatusOK, order)
}

// UpdateOrderStatus handles moving an order along its status flow.
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	storeID, ok := storeIDParam(c)
	if !ok {
		return
	}
	orderID, ok := int64Param(c, "id")
	if !ok {
		return
	}

	var req services.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "UpdateOrderStatus: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	updatedOrder, err := h.orderService.TransitionOrderStatus(storeID, orderID, req)
	if err != nil {
		respondServiceError(c, err, "UpdateOrderStatus: Error from orderService.TransitionOrderStatus")
		return
	}
	c.JSON(http.StatusOK, updatedOrder)
}

// UpdateItemStatus handles moving a single order item along its status flow.
func (h *OrderHandler) UpdateItemStatus(c *gin.Context) {
	storeID, ok := storeIDParam(c)
	if !ok {
		return
	}
	itemID, ok := int64Param(c, "itemId")
	if !ok {
		return
	}

	var req services.UpdateItemStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "UpdateItemStatus: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	updatedOrder, err := h.orderService.TransitionItemStatus(storeID, itemID, req)
	if err != nil {
		respondServiceError(c, err, "UpdateItemStatus: Error from orderService.TransitionItemStatus")
		return
	}
	c.JSON(http.StatusOK, updatedOrder)
}

// AddItem handles appending an item to an open order.
func (h *OrderHandler) AddItem(c *gin.Context) {
	storeID, ok := storeIDParam(c)
	if !ok {
		return
	}
	orderID, ok := int64Param(c, "id")
	if !ok {
		return
	}

	var req services.CreateOrderItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "AddItem: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	updatedOrder, err := h.orderService.AddItemToOrder(storeID, orderID, req)
	if err != nil {
		respondServiceError(c, err, "AddItem: Error from orderService.AddItemToOrder")
		return
	}
	c.JSON(http.StatusOK, updatedOrder)
}

// RemoveItem handles removing a not-yet-prepared item from an open order.
func (h *OrderHandler) RemoveItem(c *gin.Context) {
	storeID, ok := storeIDParam(c)
	if !ok {
		return
	}
	orderID, ok := int64Param(c, "id")
	if !ok {
		return
	}
	itemID, ok := int64Param(c, "itemId")
	if !ok {
		return
	}

	updatedOrder, err := h.orderService.RemoveItemFromOrder(storeID, orderID, itemID)
	if err != nil {
		respondServiceError(c, err, "RemoveItem: Error from orderService.RemoveItemFromOrder")
		return
	}
	c.JSON(http.StatusOK, updatedOrder)
}

// ApplyDiscount handles setting the order discount.
func (h *OrderHandler) ApplyDiscount(c *gin.Context) {
	storeID, ok := storeIDParam(c)
	if !ok {
		return
	}
	orderID, ok := int64Param(c, "id")
	if !ok {
		return
	}

	var req services.ApplyDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "ApplyDiscount: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	updatedOrder, err := h.orderService.ApplyDiscount(storeID, orderID, req)
	if err != nil {
		respondServiceError(c, err, "ApplyDiscount: Error from orderService.ApplyDiscount")
		return
	}
	c.JSON(http.StatusOK, updatedOrder)
}

// SetNote handles replacing the order note.
func (h *OrderHandler) SetNote(c *gin.Context) {
	storeID, ok := storeIDParam(c)
	if !ok {
		return
	}
	orderID, ok := int64Param(c, "id")
	if !ok {
		return
	}

	var req services.SetNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "SetNote: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	updatedOrder, err := h.orderService.SetNote(storeID, orderID, req)
	if err != nil {
		respondServiceError(c, err, "SetNote: Error from orderService.SetNote")
		return
	}
	c.JSON(http.StatusOK, updatedOrder)
}

// CancelOrder handles cancelling an order with an audited reason.
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	storeID, ok := storeIDParam(c)
	if !ok {
		return
	}
	orderID, ok := int64Param(c, "id")
	if !ok {
		return
	}

	var req services.CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CancelOrder: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	cancelledOrder, err := h.orderService.CancelOrder(storeID, orderID, req)
	if err != nil {
		respondServiceError(c, err, "CancelOrder: Error from orderService.CancelOrder")
		return
	}
	c.JSON(http.StatusOK, cancelledOrder)
}
