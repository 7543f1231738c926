package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"restaurant_ops_backend/internal/services"
	"restaurant_ops_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// respondServiceError maps the service error taxonomy onto HTTP responses in
// one place so every handler reports the same shape for the same failure.
func respondServiceError(c *gin.Context, err error, action string) {
	utils.LogError(err, action)
	switch {
	case errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrItemNotFound),
		errors.Is(err, services.ErrTableNotFound),
		errors.Is(err, services.ErrCourierNotFound),
		errors.Is(err, services.ErrAssignmentNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Resource not found.", err.Error()))
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrInvalidReference):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request.", err.Error()))
	case errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrOrderNotReady),
		errors.Is(err, services.ErrOrderClosed):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnprocessableEntity, utils.ErrCodeValidationFailed, "Operation not allowed in the current state.", err.Error()))
	case errors.Is(err, services.ErrInsufficientStock),
		errors.Is(err, services.ErrTableOccupied),
		errors.Is(err, services.ErrTableHasOpenOrder),
		errors.Is(err, services.ErrCourierUnavailable),
		errors.Is(err, services.ErrConcurrentUpdate):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Conflicting state.", err.Error()))
	default:
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Internal server error.", "Internal error"))
	}
}

// storeIDParam parses the :storeId path segment. Responds with a 400 and
// returns false when it is not a valid UUID.
func storeIDParam(c *gin.Context) (uuid.UUID, bool) {
	storeID, err := uuid.Parse(c.Param("storeId"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid store ID format.", err.Error()))
		return uuid.Nil, false
	}
	return storeID, true
}

// int64Param parses a numeric path segment such as :id or :itemId.
func int64Param(c *gin.Context, name string) (int64, bool) {
	value, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid "+name+" format.", err.Error()))
		return 0, false
	}
	return value, true
}
