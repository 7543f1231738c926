package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"restaurant_ops_backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRespondServiceError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"order not found", services.ErrOrderNotFound, http.StatusNotFound},
		{"table not found", services.ErrTableNotFound, http.StatusNotFound},
		{"validation failure", fmt.Errorf("%w: bad channel", services.ErrValidation), http.StatusBadRequest},
		{"invalid reference", fmt.Errorf("%w: product 9", services.ErrInvalidReference), http.StatusBadRequest},
		{"illegal transition", fmt.Errorf("%w: ready -> pending", services.ErrInvalidTransition), http.StatusUnprocessableEntity},
		{"order not ready for dispatch", services.ErrOrderNotReady, http.StatusUnprocessableEntity},
		{"closed order", services.ErrOrderClosed, http.StatusUnprocessableEntity},
		{"insufficient stock", services.ErrInsufficientStock, http.StatusConflict},
		{"table occupied", services.ErrTableOccupied, http.StatusConflict},
		{"courier unavailable", services.ErrCourierUnavailable, http.StatusConflict},
		{"lost concurrent update", services.ErrConcurrentUpdate, http.StatusConflict},
		{"unknown errors stay internal", fmt.Errorf("driver hiccup"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(recorder)

			respondServiceError(c, tt.err, "test")

			assert.Equal(t, tt.wantStatus, recorder.Code)
			assert.Contains(t, recorder.Body.String(), `"error"`)
		})
	}
}

func TestStoreIDParam(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("valid uuid", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(recorder)
		c.Params = gin.Params{{Key: "storeId", Value: "5d8c5efa-7f0d-4b53-9f54-3a9c64cbe2b1"}}

		storeID, ok := storeIDParam(c)
		assert.True(t, ok)
		assert.Equal(t, "5d8c5efa-7f0d-4b53-9f54-3a9c64cbe2b1", storeID.String())
	})

	t.Run("invalid uuid", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(recorder)
		c.Params = gin.Params{{Key: "storeId", Value: "not-a-uuid"}}

		_, ok := storeIDParam(c)
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}
