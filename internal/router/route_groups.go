package router

import (
	"restaurant_ops_backend/internal/handlers"
	"restaurant_ops_backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupOrderRoutes sets up the order routes.
func SetupOrderRoutes(storeGroup *gin.RouterGroup, orderHandler *handlers.OrderHandler) {
	orderRoutes := storeGroup.Group("/orders")
	orderRoutes.Use(middleware.RoleAuthMiddleware("Admin", "Staff"))
	{
		orderRoutes.POST("", orderHandler.CreateOrder)
		orderRoutes.GET("", orderHandler.ListQueue)
		orderRoutes.GET("/:id", orderHandler.GetOrderByID)
		orderRoutes.PATCH("/:id/status", orderHandler.UpdateOrderStatus)
		orderRoutes.PATCH("/:id/discount", orderHandler.ApplyDiscount)
		orderRoutes.PATCH("/:id/note", orderHandler.SetNote)
		orderRoutes.PATCH("/:id/cancel", orderHandler.CancelOrder)
		orderRoutes.POST("/:id/items", orderHandler.AddItem)
		orderRoutes.DELETE("/:id/items/:itemId", orderHandler.RemoveItem)
	}

	itemRoutes := storeGroup.Group("/order-items")
	itemRoutes.Use(middleware.RoleAuthMiddleware("Admin", "Staff"))
	{
		itemRoutes.PATCH("/:itemId/status", orderHandler.UpdateItemStatus)
	}
}

// SetupTableRoutes sets up the dining table routes.
func SetupTableRoutes(storeGroup *gin.RouterGroup, tableHandler *handlers.TableHandler) {
	tableRoutes := storeGroup.Group("/tables")
	tableRoutes.Use(middleware.RoleAuthMiddleware("Admin", "Staff"))
	{
		tableRoutes.GET("", tableHandler.ListTables)
		tableRoutes.GET("/:id", tableHandler.GetTable)
		tableRoutes.POST("/:id/open", tableHandler.OpenTable)
		tableRoutes.POST("/:id/attach-order", tableHandler.AttachOrder)
		tableRoutes.POST("/:id/recalculate", tableHandler.RecalculateStatus)
		tableRoutes.POST("/:id/release", tableHandler.ReleaseTable)
		tableRoutes.PATCH("/:id/nickname", tableHandler.SetNickname)
	}

	// Floor plan resizing is an administrative operation.
	storeGroup.PUT("/tables-configuration", middleware.RoleAuthMiddleware("Admin"), tableHandler.ConfigureTables)
}

// SetupDispatchRoutes sets up the courier dispatch routes.
func SetupDispatchRoutes(storeGroup *gin.RouterGroup, dispatchHandler *handlers.DispatchHandler) {
	dispatchRoutes := storeGroup.Group("/dispatch")
	dispatchRoutes.Use(middleware.RoleAuthMiddleware("Admin", "Staff", "Courier"))
	{
		dispatchRoutes.GET("/couriers/available", dispatchHandler.ListAvailableCouriers)
		dispatchRoutes.GET("/orders/:id/assignment", dispatchHandler.GetAssignment)
		dispatchRoutes.POST("/orders/:id/assign", dispatchHandler.AssignCourier)
	}
}

// SetupCatalogRoutes sets up the catalog and stock audit routes.
func SetupCatalogRoutes(storeGroup *gin.RouterGroup, catalogHandler *handlers.CatalogHandler) {
	catalogRoutes := storeGroup.Group("/catalog")
	catalogRoutes.Use(middleware.RoleAuthMiddleware("Admin", "Staff"))
	{
		catalogRoutes.GET("/snapshot", catalogHandler.GetSnapshot)
		catalogRoutes.GET("/stock-movements", catalogHandler.GetStockMovements)
	}

	// Manual corrections bypass the order flow, so they are admin-only.
	storeGroup.POST("/catalog/stock-adjustments", middleware.RoleAuthMiddleware("Admin"), catalogHandler.AdjustStock)
}
