package router

import (
	"database/sql"

	"skatefed_backend/internal/handlers"
	"skatefed_backend/internal/middleware"
	"skatefed_backend/internal/repositories"
	"skatefed_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// Config carries the secrets and fees the services need. Everything is
// injected here; no package holds process-wide state.
type Config struct {
	PaymentSecret string
	MembershipFee int64
}

// Setup initializes the routing for the application.
func Setup(engine *gin.Engine, db *sql.DB, cfg Config) {
	// Initialize Repositories
	accountRepo := repositories.NewAccountRepository(db)
	clubRepo := repositories.NewClubRepository(db)
	eventRepo := repositories.NewEventRepository(db)
	registrationRepo := repositories.NewRegistrationRepository(db)
	paymentRepo := repositories.NewPaymentRepository(db)

	// Initialize Services
	authService := services.NewAuthService(accountRepo, clubRepo, db)
	approvalService := services.NewApprovalService(accountRepo, clubRepo, db)
	eventService := services.NewEventService(eventRepo, registrationRepo, accountRepo, db)
	paymentService := services.NewPaymentService(paymentRepo, accountRepo, eventRepo, registrationRepo, db, cfg.PaymentSecret, cfg.MembershipFee)

	// Initialize Handlers
	authHandler := handlers.NewAuthHandler(authService)
	approvalHandler := handlers.NewApprovalHandler(approvalService)
	eventHandler := handlers.NewEventHandler(eventService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)

	apiV1 := engine.Group("/api/v1")

	// Public routes: registration and login must be reachable without a
	// session, and the payment verify endpoint is the gateway webhook
	// target, which carries no user session either.
	SetupPublicAuthRoutes(apiV1, authHandler)
	SetupPaymentWebhookRoutes(apiV1, paymentHandler)

	// Authenticated routes
	authenticated := apiV1.Group("")
	authenticated.Use(middleware.AuthMiddleware())
	{
		SetupAuthenticatedAuthRoutes(authenticated, authHandler)
		SetupApprovalRoutes(authenticated, approvalHandler)
		SetupEventRoutes(authenticated, eventHandler)
		SetupPaymentRoutes(authenticated, paymentHandler)
	}
}
