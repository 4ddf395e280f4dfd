// internal/router/router.go
package router

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ValenteCreativo/Side-B-sub000/internal/chain"
	"github.com/ValenteCreativo/Side-B-sub000/internal/config"
	"github.com/ValenteCreativo/Side-B-sub000/internal/handlers"
	"github.com/ValenteCreativo/Side-B-sub000/internal/middleware"
	"github.com/ValenteCreativo/Side-B-sub000/internal/payments"
	"github.com/ValenteCreativo/Side-B-sub000/internal/services"
	"github.com/ValenteCreativo/Side-B-sub000/internal/store"
	"github.com/ValenteCreativo/Side-B-sub000/internal/utils"
)

// Initialize is the composition root: every service gets its collaborators
// here, including which StoryRegistrar implementation stands in. The chain
// oracle arrives by injection so tests and offline environments can supply
// their own.
func Initialize(db *gorm.DB, cfg *config.Config, oracle chain.Oracle) *gin.Engine {
	// Initialize services
	licenseStore := store.NewLicenseStore(db)
	sessionStore := store.NewSessionStore(db)
	verifier := payments.NewVerifier(oracle, common.HexToAddress(cfg.Chain.USDCAddress))

	var registrar services.StoryRegistrar
	if cfg.Story.RegistryURL != "" {
		registrar = services.NewHTTPStoryRegistrar(cfg.Story)
	} else {
		registrar = services.NoopStoryRegistrar{}
	}

	notificationService := services.NewNotificationService(db, cfg)
	issuerService := services.NewIssuerService(cfg, sessionStore, licenseStore, verifier, notificationService)
	sessionService := services.NewSessionService(db, registrar)
	userService := services.NewUserService(db, cfg)

	// Initialize handlers
	paymentHandler := handlers.NewPaymentHandler(issuerService)
	licenseHandler := handlers.NewLicenseHandler(issuerService, licenseStore)
	sessionHandler := handlers.NewSessionHandler(sessionService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	userHandler := handlers.NewUserHandler(userService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())
	r.Use(middleware.GeneralRateLimit())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"network": cfg.Chain.Network,
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		{
			auth.POST("/wallet", userHandler.WalletLogin)
			auth.GET("/me", middleware.AuthRequired(), userHandler.GetProfile)
		}

		// User routes
		users := v1.Group("/users")
		{
			users.GET("/:id", middleware.OptionalAuth(), userHandler.GetUser)
		}

		// Session routes
		sessions := v1.Group("/sessions")
		{
			sessions.GET("", middleware.OptionalAuth(), sessionHandler.ListSessions)
			sessions.GET("/:id", middleware.OptionalAuth(), sessionHandler.GetSession)
			sessions.POST("", middleware.AuthRequired(), sessionHandler.CreateSession)
		}

		// Payment routes
		paymentsGroup := v1.Group("/payments")
		paymentsGroup.Use(middleware.AuthRequired())
		{
			paymentsGroup.POST("", paymentHandler.QuotePayment)
			paymentsGroup.POST("/confirm", middleware.ConfirmRateLimit(), paymentHandler.ConfirmPayment)
		}

		// License routes
		licenses := v1.Group("/licenses")
		licenses.Use(middleware.AuthRequired())
		{
			licenses.POST("", licenseHandler.CreateLicense)
			licenses.GET("", licenseHandler.ListLicenses)
			licenses.GET("/:id", licenseHandler.GetLicense)
		}

		// Notification routes
		notifications := v1.Group("/notifications")
		notifications.Use(middleware.AuthRequired())
		{
			notifications.GET("", notificationHandler.ListNotifications)
			notifications.PUT("/:id/read", notificationHandler.MarkRead)
		}
	}

	return r
}
