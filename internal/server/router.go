// Package server assembles the HTTP API: services, handlers, middleware and
// routes over one database handle.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"miplata/internal/config"
	_ "miplata/internal/docs" // Import swagger docs
	"miplata/internal/format"
	"miplata/internal/handlers"
	"miplata/internal/middleware"
	"miplata/internal/services"
)

// NewRouter wires every route of the API. A nil oauth provider disables
// Google sign-in.
func NewRouter(db *gorm.DB, cfg *config.Config, oauth handlers.OAuthProvider) *gin.Engine {
	// Initialize services
	userService := services.NewUserService(db)
	accountService := services.NewAccountService(db)
	transactionService := services.NewTransactionService(db)
	installmentService := services.NewInstallmentService(db)
	summaryService := services.NewSummaryService(accountService, transactionService, format.MonthLabeler(cfg.Locale))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	oauthHandler := handlers.NewOAuthHandler(oauth, userService, cfg.FrontendBaseURL)
	accountHandler := handlers.NewAccountHandler(accountService)
	transactionHandler := handlers.NewTransactionHandler(transactionService)
	installmentHandler := handlers.NewInstallmentHandler(installmentService)
	summaryHandler := handlers.NewSummaryHandler(summaryService)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(cors)

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.Use(middleware.NewRateLimiter(cfg.AuthRateLimit).Middleware())
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.GET("/google/login", oauthHandler.GoogleLogin)
	auth.GET("/google/callback", oauthHandler.GoogleCallback)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(userService))

	protected.POST("/auth/logout", authHandler.Logout)
	protected.GET("/profile", authHandler.GetProfile)

	// Account routes
	accounts := protected.Group("/accounts")
	accounts.GET("", accountHandler.GetUserAccounts)
	accounts.POST("", accountHandler.CreateAccount)
	accounts.GET("/:id", accountHandler.GetAccountByID)
	accounts.PUT("/:id", accountHandler.UpdateAccount)
	accounts.DELETE("/:id", accountHandler.DeleteAccount)

	// Transaction routes
	transactions := protected.Group("/transactions")
	transactions.GET("", transactionHandler.GetUserTransactions)
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	// Installment routes
	installments := protected.Group("/installments")
	installments.GET("", installmentHandler.GetUserInstallments)
	installments.POST("", installmentHandler.CreateInstallment)
	installments.PUT("/:id", installmentHandler.UpdateInstallment)
	installments.DELETE("/:id", installmentHandler.DeleteInstallment)

	protected.GET("/summary", summaryHandler.GetSummary)

	return router
}

func cors(c *gin.Context) {
	c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
	c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

	if c.Request.Method == http.MethodOptions {
		c.AbortWithStatus(http.StatusNoContent)
		return
	}

	c.Next()
}
