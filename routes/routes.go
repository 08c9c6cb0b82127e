package routes

import (
	"carcool-backend/config"
	"carcool-backend/controllers"
	"carcool-backend/metrics"
	"carcool-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers carries every controller and the settings the router needs.
type Handlers struct {
	Auth          *controllers.AuthController
	Drafts        *controllers.DraftController
	Bills         *controllers.BillController
	Reports       *controllers.ReportController
	Dashboard     *controllers.DashboardController
	Inventory     *controllers.InventoryController
	Services      *controllers.ServiceController
	Customers     *controllers.CustomerController
	Profile       *controllers.ProfileController
	Notifications *controllers.NotificationController

	JWTSecret   string
	Revocations utils.RevocationChecker
	CORSOrigins []string
	// FilesDir is served under /files when invoices are stored locally.
	FilesDir string
	// LoginRate defaults to 10 per minute.
	LoginRate string
}

func SetupRouter(h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     h.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
	}))

	r.Use(RequestID())
	r.Use(config.PerformanceLogger())
	r.Use(metrics.Middleware())

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	if h.FilesDir != "" {
		r.Static("/files", h.FilesDir)
	}

	loginRate := h.LoginRate
	if loginRate == "" {
		loginRate = "10-M"
	}
	limit, err := RateLimit(loginRate)
	if err != nil {
		zap.L().Fatal("invalid login rate", zap.String("rate", loginRate), zap.Error(err))
	}

	authRequired := utils.AuthMiddleware(h.JWTSecret, h.Revocations)

	auth := r.Group("/auth")
	{
		auth.POST("/login", limit, h.Auth.Login)

		auth.Use(authRequired)
		auth.POST("/logout", h.Auth.Logout)
		auth.GET("/me", h.Auth.Me)
	}

	api := r.Group("/api")
	api.Use(authRequired)
	{
		api.GET("/dashboard", h.Dashboard.GetDashboardOverview)
		api.GET("/catalog", h.Services.GetCatalog)
		api.GET("/problems", h.Services.GetProblemTypes)

		// Bill wizard drafts
		drafts := api.Group("/drafts")
		{
			drafts.POST("", h.Drafts.Create)
			drafts.GET("/:id", h.Drafts.Get)
			drafts.DELETE("/:id", h.Drafts.Discard)
			drafts.PUT("/:id/vehicle", h.Drafts.SetVehicle)
			drafts.POST("/:id/lookup", h.Drafts.Lookup)
			drafts.PUT("/:id/problems", h.Drafts.SetProblems)
			drafts.POST("/:id/services/:serviceId/toggle", h.Drafts.ToggleService)
			drafts.PUT("/:id/services/:serviceId/charge", h.Drafts.SetServiceCharge)
			drafts.POST("/:id/services/:serviceId/parts", h.Drafts.AddPart)
			drafts.DELETE("/:id/services/:serviceId/parts/:index", h.Drafts.RemovePart)
			drafts.PUT("/:id/charges", h.Drafts.SetCharges)
			drafts.POST("/:id/next", h.Drafts.Next)
			drafts.POST("/:id/back", h.Drafts.Back)
			drafts.POST("/:id/submit", h.Drafts.Submit)
		}

		// Service history and invoices
		bills := api.Group("/bills")
		{
			bills.GET("", h.Bills.GetBills)
			bills.GET("/totals", h.Reports.GetTotals)
			bills.GET("/export.xlsx", h.Reports.ExportBills)
			bills.GET("/:id", h.Bills.GetBill)
			bills.GET("/:id/invoice", h.Bills.GetInvoiceHTML)
			bills.POST("/:id/invoice", h.Bills.RegenerateInvoice)
			bills.GET("/:id/notifications", h.Bills.GetBillNotifications)
		}

		customers := api.Group("/customers")
		{
			customers.GET("", h.Customers.GetCustomers)
			customers.GET("/:id", h.Customers.GetCustomer)
		}
		api.GET("/cars/:carNumber", h.Customers.GetVehicle)

		services := api.Group("/services")
		{
			services.GET("", h.Services.GetServices)
			services.POST("", h.Services.CreateService)
			services.PUT("/:id", h.Services.UpdateService)
		}

		inventory := api.Group("/inventory")
		{
			inventory.GET("", h.Inventory.GetInventory)
			inventory.GET("/export.csv", h.Inventory.ExportCSV)
			inventory.GET("/products", h.Inventory.GetProducts)
			inventory.POST("/products", h.Inventory.CreateProduct)
			inventory.GET("/products/:id/variants", h.Inventory.GetProductVariants)
			inventory.POST("/variants", h.Inventory.CreateVariant)
			inventory.PUT("/variants/:id", h.Inventory.UpdateVariant)
			inventory.DELETE("/variants/:id", h.Inventory.DeleteVariant)
		}

		// Settings
		api.GET("/profile", h.Profile.GetProfile)
		api.PUT("/profile", h.Profile.UpdateProfile)
		api.GET("/notification-templates", h.Notifications.GetTemplates)
		api.PUT("/notification-templates/:type", h.Notifications.UpdateTemplate)
	}

	return r
}
