package router

import (
	"skatefed_backend/internal/handlers"
	"skatefed_backend/internal/middleware"
	"skatefed_backend/internal/models"

	"github.com/gin-gonic/gin"
)

// SetupPublicAuthRoutes sets up the unauthenticated account routes.
func SetupPublicAuthRoutes(apiGroup *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	authRoutes := apiGroup.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/verify-otp", authHandler.VerifyOTP)
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.POST("/forgot-password", authHandler.ForgotPassword)
		authRoutes.POST("/reset-password", authHandler.ResetPassword)
	}
}

// SetupAuthenticatedAuthRoutes sets up the session-bound account routes.
func SetupAuthenticatedAuthRoutes(authenticatedGroup *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	authRoutes := authenticatedGroup.Group("/auth")
	{
		authRoutes.GET("/me", authHandler.GetCurrentAccount)
		authRoutes.POST("/logout", authHandler.Logout)
	}
}

// SetupApprovalRoutes sets up the hierarchical approval routes. The
// service re-checks the approval table; the middleware only keeps plain
// members and club admins out.
func SetupApprovalRoutes(authenticatedGroup *gin.RouterGroup, approvalHandler *handlers.ApprovalHandler) {
	approvalRoutes := authenticatedGroup.Group("/approvals")
	approvalRoutes.Use(middleware.RequireRoles(models.RoleGlobalAdmin, models.RoleStateAdmin, models.RoleDistrictAdmin))
	{
		approvalRoutes.GET("/pending", approvalHandler.ListPending)
		approvalRoutes.POST("/:id/approve", approvalHandler.Approve)
		approvalRoutes.POST("/:id/reject", approvalHandler.Reject)
	}
}

// SetupEventRoutes sets up the event and registration routes.
func SetupEventRoutes(authenticatedGroup *gin.RouterGroup, eventHandler *handlers.EventHandler) {
	eventRoutes := authenticatedGroup.Group("/events")
	{
		eventRoutes.GET("", eventHandler.GetEvents)
		eventRoutes.GET("/:id", eventHandler.GetEventByID)

		adminOnly := eventRoutes.Group("")
		adminOnly.Use(middleware.RequireRoles(models.RoleGlobalAdmin, models.RoleStateAdmin, models.RoleDistrictAdmin))
		{
			adminOnly.POST("", eventHandler.CreateEvent)
			adminOnly.PATCH("/:id/close", eventHandler.CloseEvent)
		}

		memberOnly := eventRoutes.Group("")
		memberOnly.Use(middleware.RequireRoles(models.RoleMember))
		{
			memberOnly.POST("/:id/register", eventHandler.Register)
		}
	}

	registrationRoutes := authenticatedGroup.Group("/registrations")
	registrationRoutes.Use(middleware.RequireRoles(models.RoleMember))
	{
		registrationRoutes.GET("", eventHandler.GetMyRegistrations)
	}
}

// SetupPaymentRoutes sets up the session-bound payment routes.
func SetupPaymentRoutes(authenticatedGroup *gin.RouterGroup, paymentHandler *handlers.PaymentHandler) {
	paymentRoutes := authenticatedGroup.Group("/payments")
	{
		paymentRoutes.POST("/orders", paymentHandler.CreateOrder)
	}
}

// SetupPaymentWebhookRoutes mounts the gateway callback outside the auth
// gate: gateway callbacks carry no user session, only the HMAC signature.
func SetupPaymentWebhookRoutes(apiGroup *gin.RouterGroup, paymentHandler *handlers.PaymentHandler) {
	apiGroup.POST("/payments/verify", paymentHandler.Verify)
}
