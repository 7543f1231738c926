package router

import (
	"database/sql"

	"restaurant_ops_backend/internal/handlers"
	"restaurant_ops_backend/internal/middleware"
	"restaurant_ops_backend/internal/repositories"
	"restaurant_ops_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// Setup initializes the routing for the application.
func Setup(engine *gin.Engine, db *sql.DB) {
	// Initialize Repositories
	orderRepo := repositories.NewOrderRepository(db)
	catalogRepo := repositories.NewCatalogRepository(db)
	tableRepo := repositories.NewTableRepository(db)
	dispatchRepo := repositories.NewDispatchRepository(db)
	movementRepo := repositories.NewStockMovementRepository(db)

	// Initialize Services
	dbx := repositories.NewDatabase(db)
	stockLedger := services.NewStockLedger(catalogRepo, movementRepo, dbx)
	orderService := services.NewOrderService(orderRepo, catalogRepo, tableRepo, dispatchRepo, stockLedger, dbx)
	tableService := services.NewTableService(tableRepo, orderRepo, orderService, dbx)
	dispatchService := services.NewDispatchService(dispatchRepo, orderRepo, orderService, dbx)
	catalogService := services.NewCatalogService(catalogRepo)

	// Initialize Handlers
	orderHandler := handlers.NewOrderHandler(orderService)
	tableHandler := handlers.NewTableHandler(tableService)
	dispatchHandler := handlers.NewDispatchHandler(dispatchService)
	catalogHandler := handlers.NewCatalogHandler(catalogService, stockLedger)

	apiV1 := engine.Group("/api/v1")

	// Every resource is store scoped; all routes require an authenticated
	// caller.
	stores := apiV1.Group("/stores/:storeId")
	stores.Use(middleware.AuthMiddleware())
	{
		SetupOrderRoutes(stores, orderHandler)
		SetupTableRoutes(stores, tableHandler)
		SetupDispatchRoutes(stores, dispatchHandler)
		SetupCatalogRoutes(stores, catalogHandler)
	}
}
