package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/billiard-pos/controllers"
	"github.com/yeremiapane/billiard-pos/hub"
	"github.com/yeremiapane/billiard-pos/middlewares"
	"github.com/yeremiapane/billiard-pos/services"
)

// Options tunes the middleware chain.
type Options struct {
	CORSOrigin string
	RateLimit  float64
	RateBurst  int
	VenueName  string
}

func SetupRouter(svc *services.Services, h *hub.Hub, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// Apply security middlewares
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(opts.CORSOrigin))
	r.Use(middlewares.LoggerMiddleware())
	if opts.RateLimit > 0 {
		r.Use(middlewares.NewRateLimiter(opts.RateLimit, opts.RateBurst).RateLimit())
	}

	// Inisialisasi controller
	tableCtrl := controllers.NewTableController(svc)
	sessionCtrl := controllers.NewSessionController(svc)
	productCtrl := controllers.NewProductController(svc)
	comboCtrl := controllers.NewComboController(svc)
	inventoryCtrl := controllers.NewInventoryController(svc)
	orderCtrl := controllers.NewOrderController(svc)
	trxCtrl := controllers.NewTransactionController(svc)
	trxCtrl.VenueName = opts.VenueName
	settingCtrl := controllers.NewSettingController(svc)
	reportCtrl := controllers.NewReportController(svc)
	pricingCtrl := controllers.NewPricingController(svc)

	// WebSocket dashboard
	if h != nil {
		r.GET("/ws", controllers.WSHandler(h))
	}

	api := r.Group("/api")
	api.GET("/health", controllers.Health)

	// TABLES
	api.GET("/tables", tableCtrl.GetAllTables)
	api.POST("/tables/count", tableCtrl.SetTableCount)
	api.GET("/tables/:id", tableCtrl.GetTable)
	api.GET("/tables/:id/total", tableCtrl.GetTableTotal)
	api.POST("/tables/:id/start", tableCtrl.StartSession)
	api.POST("/tables/:id/stop", tableCtrl.StopSession)
	api.POST("/tables/:id/extend", tableCtrl.ExtendSession)
	api.POST("/tables/:id/reset", tableCtrl.ResetTable)

	// SESSIONS
	api.GET("/sessions", sessionCtrl.GetSessions)
	api.GET("/sessions/:id", sessionCtrl.GetSession)

	// PRODUCTS
	api.GET("/products", productCtrl.GetAllProducts)
	api.GET("/products/category/:category", productCtrl.GetProductsByCategory)
	api.POST("/products", productCtrl.CreateProduct)
	api.PUT("/products/:id", productCtrl.UpdateProduct)
	api.DELETE("/products/:id", productCtrl.DeleteProduct)

	// COMBO ITEMS
	api.GET("/combo-items", comboCtrl.GetAllCombos)
	api.GET("/combo-items/:id", comboCtrl.GetCombo)
	api.POST("/combo-items", comboCtrl.CreateCombo)
	api.PUT("/combo-items/:id", comboCtrl.UpdateCombo)
	api.DELETE("/combo-items/:id", comboCtrl.DeleteCombo)
	api.POST("/combo-items/:id/check-stock", comboCtrl.CheckStock)

	// INVENTORY
	api.GET("/inventory", inventoryCtrl.GetLedger)
	api.GET("/inventory/summary", inventoryCtrl.GetSummary)
	api.GET("/inventory/product/:id", inventoryCtrl.GetProductLedger)
	api.POST("/inventory/adjust/:id", inventoryCtrl.AdjustStock)

	// ORDERS
	api.GET("/orders/table/:tableId", orderCtrl.GetTableOrders)
	api.GET("/orders/standalone", orderCtrl.GetStandaloneOrders)
	api.POST("/orders", orderCtrl.CreateOrder)
	api.PUT("/orders/:id", orderCtrl.UpdateOrder)
	api.DELETE("/orders/:id", orderCtrl.DeleteOrder)
	api.DELETE("/orders/table/:tableId/clear", orderCtrl.ClearTableOrders)
	api.DELETE("/orders/standalone/clear", orderCtrl.ClearStandaloneOrders)

	// TRANSACTIONS
	api.POST("/transactions", trxCtrl.Checkout)
	api.GET("/transactions", trxCtrl.GetTransactions)
	api.GET("/transactions/range", trxCtrl.GetTransactionsByRange)
	api.GET("/transactions/standalone/total", trxCtrl.GetStandaloneTotal)
	api.GET("/transactions/:id", trxCtrl.GetTransaction)
	api.GET("/transactions/:id/receipt", trxCtrl.GetReceipt)

	// SETTINGS & REPORTS
	api.GET("/settings", settingCtrl.GetSettings)
	api.POST("/settings", settingCtrl.SaveSettings)
	api.GET("/reports/daily/:date", reportCtrl.GetDailyReport)
	api.GET("/reports/daily/:date/chart", reportCtrl.GetDailyChart)
	api.GET("/reports/weekly/:startDate", reportCtrl.GetWeeklyReport)
	api.GET("/reports/monthly/:year/:month", reportCtrl.GetMonthlyReport)
	api.GET("/reports/products/:startDate/:endDate", reportCtrl.GetProductSales)
	api.POST("/pricing/open-time", pricingCtrl.OpenTimeCost)

	return r
}
