package handlers

import (
	"net/http"
	"strconv"

	"restaurant_ops_backend/internal/services"
	"restaurant_ops_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// CatalogHandler holds the catalog service and the stock ledger read side.
type CatalogHandler struct {
	catalogService services.CatalogService
	stockLedger    services.StockLedger
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(cs services.CatalogService, sl services.StockLedger) *CatalogHandler {
	return &CatalogHandler{catalogService: cs, stockLedger: sl}
}

// GetSnapshot handles the storefront menu read.
func (h *CatalogHandler) GetSnapshot(c *gin.Context) {
	storeID, ok := storeIDParam(c)
	if !ok {
		return
	}

	snapshot, err := h.catalogService.Snapshot(storeID)
	if err != nil {
		respondServiceError(c, err, "GetSnapshot: Error from catalogService.Snapshot")
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// AdjustStock handles a manual stock correction.
func (h *CatalogHandler) AdjustStock(c *gin.Context) {
	storeID, ok := storeIDParam(c)
	if !ok {
		return
	}

	var req services.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "AdjustStock: Invalid request payload")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload.", err.Error()))
		return
	}

	if err := h.stockLedger.Adjust(storeID, req.StoreProductID, req.Delta, req.Reason); err != nil {
		respondServiceError(c, err, "AdjustStock: Error from stockLedger.Adjust")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Stock adjusted successfully"})
}

// GetStockMovements handles the stock audit trail read with filters.
func (h *CatalogHandler) GetStockMovements(c *gin.Context) {
	if _, ok := storeIDParam(c); !ok {
		return
	}

	var productID, orderID *int64
	var movementType *string

	if productIDStr := c.Query("product_id"); productIDStr != "" {
		id, err := strconv.ParseInt(productIDStr, 10, 64)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid product_id format.", err.Error()))
			return
		}
		productID = &id
	}
	if orderIDStr := c.Query("order_id"); orderIDStr != "" {
		id, err := strconv.ParseInt(orderIDStr, 10, 64)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid order_id format.", err.Error()))
			return
		}
		orderID = &id
	}
	if mt := c.Query("movement_type"); mt != "" {
		movementType = &mt
	}

	page := 1
	if pageStr := c.Query("page"); pageStr != "" {
		p, err := strconv.Atoi(pageStr)
		if err != nil || p <= 0 {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid page format.", "page must be a positive integer"))
			return
		}
		page = p
	}
	pageSize := 20
	if pageSizeStr := c.Query("page_size"); pageSizeStr != "" {
		ps, err := strconv.Atoi(pageSizeStr)
		if err != nil || ps <= 0 {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid page_size format.", "page_size must be a positive integer"))
			return
		}
		pageSize = ps
	}

	movements, total, err := h.stockLedger.GetMovements(productID, orderID, movementType, page, pageSize)
	if err != nil {
		respondServiceError(c, err, "GetStockMovements: Error from stockLedger.GetMovements")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":      movements,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}
