// Package server assembles the HTTP stack: services, handlers, middleware
// and routes.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"carteira/internal/config"
	_ "carteira/internal/docs" // registers the swagger document
	"carteira/internal/events"
	"carteira/internal/handlers"
	"carteira/internal/middleware"
	"carteira/internal/services"
)

// Deps are the long-lived resources the router is built from.
type Deps struct {
	DB        *gorm.DB
	Publisher events.Publisher
	Config    *config.Config
}

// NewRouter wires every route and wraps the engine with CORS handling.
func NewRouter(deps Deps) http.Handler {
	publisher := deps.Publisher
	if publisher == nil {
		publisher = events.Nop{}
	}
	db := deps.DB

	userService := services.NewUserService(db)
	accountService := services.NewAccountService(db)
	categoryService := services.NewCategoryService(db)
	creditCardService := services.NewCreditCardService(db)
	transactionService := services.NewTransactionService(db, publisher)
	dashboardService := services.NewDashboardService(db)
	ledgerService := services.NewLedgerService(db, publisher)
	auditService := services.NewAuditService(db)

	authHandler := handlers.NewAuthHandler(userService, auditService)
	accountHandler := handlers.NewAccountHandler(accountService, auditService)
	categoryHandler := handlers.NewCategoryHandler(categoryService, auditService)
	creditCardHandler := handlers.NewCreditCardHandler(creditCardService, auditService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, auditService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	ledgerHandler := handlers.NewLedgerHandler(ledgerService)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/api/health", health(db))

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)

	accounts := protected.Group("/accounts")
	accounts.POST("", accountHandler.CreateAccount)
	accounts.GET("", accountHandler.GetUserAccounts)
	accounts.GET("/:id", accountHandler.GetAccountByID)
	accounts.PUT("/:id", accountHandler.UpdateAccount)
	accounts.POST("/:id/deactivate", accountHandler.DeactivateAccount)
	accounts.POST("/:id/activate", accountHandler.ActivateAccount)

	categories := protected.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetUserCategories)
	categories.GET("/:id", categoryHandler.GetCategoryByID)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	cards := protected.Group("/credit-cards")
	cards.POST("", creditCardHandler.CreateCreditCard)
	cards.GET("", creditCardHandler.GetUserCreditCards)
	cards.GET("/:id", creditCardHandler.GetCreditCardByID)
	cards.PUT("/:id", creditCardHandler.UpdateCreditCard)
	cards.DELETE("/:id", creditCardHandler.DeleteCreditCard)

	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetUserTransactions)
	transactions.GET("/calendar", transactionHandler.GetCalendar)
	transactions.GET("/verify", transactionHandler.VerifyBalances)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	protected.GET("/dashboard", dashboardHandler.GetSummary)

	ops := v1.Group("/ops")
	ops.Use(middleware.OpsKeyMiddleware(deps.Config.OpsAPIKey))
	ops.GET("/ledger/verify", ledgerHandler.Verify)
	ops.POST("/ledger/repair", ledgerHandler.Repair)

	return cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	})(router)
}

// health reports whether the database answers.
func health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
