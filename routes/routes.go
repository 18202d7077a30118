package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"oreoffice-backend/controllers"
	"oreoffice-backend/middleware"
	"oreoffice-backend/services"
)

// Controllers bundles every handler the router mounts.
type Controllers struct {
	Auth         *controllers.AuthController
	Users        *controllers.UserController
	Rooms        *controllers.RoomController
	Tenants      *controllers.TenantController
	Contracts    *controllers.ContractController
	Transactions *controllers.TransactionController
	Billings     *controllers.BillingController
	Settlements  *controllers.SettlementController
	Dashboard    *controllers.DashboardController
	Uploads      *controllers.UploadController
	Signing      *controllers.SigningController
}

// SetupRouter wires middleware and every /api route.
func SetupRouter(ctl Controllers, auth *services.AuthService, corsOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(), middleware.Logger())

	allowCredentials := true
	for _, origin := range corsOrigins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.POST("/auth/login", ctl.Auth.Login)

	// tenant-facing signing pages carry their own token
	public := api.Group("/contract-signing/public")
	{
		public.GET("/:token", ctl.Signing.PublicView)
		public.POST("/:token/sign", ctl.Signing.PublicSign)
	}

	secured := api.Group("")
	secured.Use(middleware.AuthRequired(auth), middleware.WriteRequiresAdmin())
	secured.GET("/auth/me", ctl.Auth.Me)

	users := secured.Group("/users", middleware.AdminOnly())
	{
		users.GET("", ctl.Users.GetUsers)
		users.POST("", ctl.Users.CreateUser)
		users.GET("/:id", ctl.Users.GetUser)
		users.PUT("/:id", ctl.Users.UpdateUser)
		users.DELETE("/:id", ctl.Users.DeleteUser)
	}

	rooms := secured.Group("/rooms")
	{
		rooms.GET("", ctl.Rooms.GetRooms)
		rooms.POST("", ctl.Rooms.CreateRoom)
		// must be registered before /:id
		rooms.PUT("/layout", ctl.Rooms.SaveLayout)
		rooms.GET("/:id", ctl.Rooms.GetRoom)
		rooms.PUT("/:id", ctl.Rooms.UpdateRoom)
		rooms.PATCH("/:id/position", ctl.Rooms.UpdatePosition)
		rooms.DELETE("/:id", ctl.Rooms.DeleteRoom)
	}

	tenants := secured.Group("/tenants")
	{
		tenants.GET("", ctl.Tenants.GetTenants)
		tenants.POST("", ctl.Tenants.CreateTenant)
		tenants.GET("/:id", ctl.Tenants.GetTenant)
		tenants.PUT("/:id", ctl.Tenants.UpdateTenant)
		tenants.DELETE("/:id", ctl.Tenants.DeleteTenant)
	}

	contracts := secured.Group("/contracts")
	{
		contracts.GET("", ctl.Contracts.GetContracts)
		contracts.POST("", ctl.Contracts.CreateContract)
		contracts.GET("/expiring", ctl.Contracts.GetExpiring)
		contracts.GET("/:id", ctl.Contracts.GetContract)
		contracts.PUT("/:id", ctl.Contracts.UpdateContract)
		contracts.DELETE("/:id", ctl.Contracts.DeleteContract)
		contracts.POST("/:id/terminate", ctl.Contracts.TerminateContract)
	}

	txs := secured.Group("/transactions")
	{
		txs.GET("", ctl.Transactions.GetTransactions)
		txs.POST("", ctl.Transactions.CreateTransaction)
		txs.GET("/summary", ctl.Transactions.GetSummary)
		txs.GET("/:id", ctl.Transactions.GetTransaction)
		txs.PUT("/:id", ctl.Transactions.UpdateTransaction)
		txs.DELETE("/:id", ctl.Transactions.DeleteTransaction)
	}

	billings := secured.Group("/billings")
	{
		billings.GET("", ctl.Billings.GetBillings)
		billings.POST("/generate", ctl.Billings.Generate)
		billings.POST("/refresh-overdue", ctl.Billings.RefreshOverdue)
		billings.POST("/bulk/confirm-payment", ctl.Billings.BulkConfirmPayment)
		billings.POST("/bulk/tax-invoice", ctl.Billings.BulkIssueTaxInvoice)
		billings.GET("/:id", ctl.Billings.GetBilling)
		billings.PUT("/:id", ctl.Billings.UpdateBilling)
		billings.DELETE("/:id", ctl.Billings.CancelBilling)
		billings.POST("/:id/confirm-payment", ctl.Billings.ConfirmPayment)
		billings.POST("/:id/cancel-payment", ctl.Billings.CancelPayment)
		billings.POST("/:id/tax-invoice", ctl.Billings.IssueTaxInvoice)
	}

	settlements := secured.Group("/settlements")
	{
		settlements.GET("", ctl.Settlements.GetSettlements)
		settlements.POST("/generate", ctl.Settlements.Generate)
		settlements.GET("/:yearMonth", ctl.Settlements.GetSettlement)
		settlements.POST("/:id/confirm", ctl.Settlements.Confirm)
		settlements.POST("/:id/unconfirm", ctl.Settlements.Unconfirm)
	}

	dashboard := secured.Group("/dashboard")
	{
		dashboard.GET("/summary", ctl.Dashboard.GetSummary)
		dashboard.GET("/monthly", ctl.Dashboard.GetMonthly)
		dashboard.GET("/break-even", ctl.Dashboard.GetBreakEven)
	}

	uploads := secured.Group("/uploads")
	{
		uploads.GET("", ctl.Uploads.GetUploads)
		uploads.POST("", ctl.Uploads.Upload)
		uploads.GET("/:id/download", ctl.Uploads.Download)
		uploads.DELETE("/:id", ctl.Uploads.DeleteUpload)
	}

	signing := secured.Group("/contract-signing")
	{
		signing.GET("/templates", ctl.Signing.GetTemplates)
		signing.POST("/templates", ctl.Signing.CreateTemplate)
		signing.PUT("/templates/:id", ctl.Signing.UpdateTemplate)
		signing.DELETE("/templates/:id", ctl.Signing.DeleteTemplate)

		signing.GET("/sessions", ctl.Signing.GetSessions)
		signing.POST("/sessions", ctl.Signing.CreateSession)
		signing.GET("/sessions/:id", ctl.Signing.GetSession)
		signing.GET("/sessions/:id/document", ctl.Signing.Document)
		signing.POST("/sessions/:id/review", ctl.Signing.Review)
		signing.POST("/sessions/:id/admin-sign", ctl.Signing.AdminSign)
		signing.POST("/sessions/:id/send", ctl.Signing.Send)
		signing.POST("/sessions/:id/cancel", ctl.Signing.Cancel)
	}

	return r
}
