package handlers

import (
	"net/http"

	"restaurant_ops_backend/internal/services"
	"restaurant_ops_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// DispatchHandler holds the dispatch service.
type DispatchHandler struct {
	dispatchService services.DispatchService
}

// NewDispatchHandler creates a new DispatchHandler.
func NewDispatchHandler(ds services.DispatchService) *DispatchHandler {
	return &DispatchHandler{dispatchService: ds}
}

// ListAvailableCouriers handles the courier picker read.
func (h *DispatchHandler) ListAvailableCouriers(c *gin.Context) {
	storeID, ok := storeIDParam(c)
	if !ok {
		return
	}

	couriers, err := h.dispatchService.ListAvailableCouriers(storeID)
	if err != nil {
		respondServiceError(c, err, "ListAvailableCouriers: Error from dispatchService.ListAvailableCouriers")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": couriers})
}

// GetAssignment handles the delivery console read of an order's open run.
func (h *DispatchHandler) GetAssignment(c *gin.Context) {
	storeID, ok := storeIDParam(c)
	if !ok {
		return
	}
	orderID, ok := int64Param(c, "id")
	if !ok {
		return
	}

	assignment, err := h.dispatchService.GetAssignment(storeID, orderID)
	if err != nil {
		respondServiceError(c, err, "GetAssignment: Error from dispatchService.GetAssignment")
		return
	}
	c.JSON(http.StatusOK, assignment)
}

// AssignCourier handles handing a ready delivery order to a courier.
func (h *DispatchHandler) AssignCourier(c *gin.Context) {
	storeID, ok := storeIDParam(c)
	if !ok {
		return
	}
	orderID, ok := int64Param(c, "id")
	if !ok {
		return
	}

	var req services.AssignCourierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "AssignCourier: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	assignment, err := h.dispatchService.AssignCourier(storeID, orderID, req)
	if err != nil {
		respondServiceError(c, err, "AssignCourier: Error from dispatchService.AssignCourier")
		return
	}
	c.JSON(http.StatusCreated, assignment)
}
