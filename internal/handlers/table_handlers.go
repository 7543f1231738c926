package handlers

import (
	"net/http"

	"restaurant_ops_backend/internal/services"
	"restaurant_ops_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// TableHandler holds the table service.
type TableHandler struct {
	tableService services.TableService
}

// NewTableHandler creates a new TableHandler.
func NewTableHandler(ts services.TableService) *TableHandler {
	return &TableHandler{tableService: ts}
}

// ListTables handles the floor-plan polling read.
func (h *TableHandler) ListTables(c *gin.Context) {
	storeID, ok := storeIDParam(c)
	if !ok {
		return
	}

	tables, err := h.tableService.ListTables(storeID)
	if err != nil {
		respondServiceError(c, err, "ListTables: Error from tableService.ListTables")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": tables})
}

// GetTable handles fetching one table with its session order.
func (h *TableHandler) GetTable(c *gin.Context) {
	storeID, ok := storeIDParam(c)
	if !ok {
		return
	}
	tableID, ok := int64Param(c, "id")
	if !ok {
		return
	}

	table, err := h.tableService.GetTable(storeID, tableID)
	if err != nil {
		respondServiceError(c, err, "GetTable: Error from tableService.GetTable")
		return
	}
	c.JSON(http.StatusOK, table)
}

// OpenTable handles starting a session on a free table.
func (h *TableHandler) OpenTable(c *gin.Context) {
	storeID, ok := storeIDParam(c)
	if !ok {
		return
	}
	tableID, ok := int64Param(c, "id")
	if !ok {
		return
	}

	var req services.OpenTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "OpenTable: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	table, err := h.tableService.OpenTable(storeID, tableID, req)
	if err != nil {
		respondServiceError(c, err, "OpenTable: Error from tableService.OpenTable")
		return
	}
	c.JSON(http.StatusOK, table)
}

// AttachOrder handles linking an existing order to an open session.
func (h *TableHandler) AttachOrder(c *gin.Context) {
	storeID, ok := storeIDParam(c)
	if !ok {
		return
	}
	tableID, ok := int64Param(c, "id")
	if !ok {
		return
	}

	var req services.AttachOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "AttachOrder: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	table, err := h.tableService.AttachOrder(storeID, tableID, req)
	if err != nil {
		respondServiceError(c, err, "AttachOrder: Error from tableService.AttachOrder")
		return
	}
	c.JSON(http.StatusOK, table)
}

// RecalculateStatus handles re-deriving the table status from its order.
func (h *TableHandler) RecalculateStatus(c *gin.Context) {
	storeID, ok := storeIDParam(c)
	if !ok {
		return
	}
	tableID, ok := int64Param(c, "id")
	if !ok {
		return
	}

	table, err := h.tableService.RecalculateTableStatus(storeID, tableID)
	if err != nil {
		respondServiceError(c, err, "RecalculateStatus: Error from tableService.RecalculateTableStatus")
		return
	}
	c.JSON(http.StatusOK, table)
}

// ReleaseTable handles force-freeing a table.
func (h *TableHandler) ReleaseTable(c *gin.Context) {
	storeID, ok := storeIDParam(c)
	if !ok {
		return
	}
	tableID, ok := int64Param(c, "id")
	if !ok {
		return
	}

	var req services.ReleaseTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "ReleaseTable: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	table, err := h.tableService.ReleaseTable(storeID, tableID, req)
	if err != nil {
		respondServiceError(c, err, "ReleaseTable: Error from tableService.ReleaseTable")
		return
	}
	c.JSON(http.StatusOK, table)
}

// SetNickname handles renaming a table.
func (h *TableHandler) SetNickname(c *gin.Context) {
	storeID, ok := storeIDParam(c)
	if !ok {
		return
	}
	tableID, ok := int64Param(c, "id")
	if !ok {
		return
	}

	var req services.SetNicknameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "SetNickname: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	table, err := h.tableService.SetNickname(storeID, tableID, req)
	if err != nil {
		respondServiceError(c, err, "SetNickname: Error from tableService.SetNickname")
		return
	}
	c.JSON(http.StatusOK, table)
}

// ConfigureTables handles resizing the floor plan.
func (h *TableHandler) ConfigureTables(c *gin.Context) {
	storeID, ok := storeIDParam(c)
	if !ok {
		return
	}

	var req services.ConfigureTablesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "ConfigureTables: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	tables, err := h.tableService.ConfigureTables(storeID, req)
	if err != nil {
		respondServiceError(c, err, "ConfigureTables: Error from tableService.ConfigureTables")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": tables})
}
