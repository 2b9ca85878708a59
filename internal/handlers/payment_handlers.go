package handlers

import (
	"errors"
	"net/http"

	"skatefed_backend/internal/middleware"
	"skatefed_backend/internal/services"
	"skatefed_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// PaymentHandler holds the payment service.
type PaymentHandler struct {
	paymentService services.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(ps services.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: ps}
}

// CreateOrder records a payment order for the authenticated account.
func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Not authenticated.", "Missing account ID in context"))
		return
	}

	var req services.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload.", err.Error()))
		return
	}

	order, err := h.paymentService.CreateOrder(accountID, req)
	if err != nil {
		utils.LogError(err, "CreateOrder: Error from paymentService.CreateOrder")
		switch {
		case errors.Is(err, services.ErrUnknownPurpose), errors.Is(err, services.ErrPaymentEventMissing):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid order details.", err.Error()))
		case errors.Is(err, services.ErrEventNotFound), errors.Is(err, services.ErrAccountNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Referenced entity not found.", ""))
		default:
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create order.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, order)
}

// Verify is the gateway callback target. It carries no user session; the
// HMAC signature is the sole authenticator.
func (h *PaymentHandler) Verify(c *gin.Context) {
	var req services.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload.", err.Error()))
		return
	}

	if err := h.paymentService.Verify(req); err != nil {
		utils.LogError(err, "Verify: Error from paymentService.Verify")
		switch {
		case errors.Is(err, services.ErrPaymentOrderNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Payment order not found.", ""))
		case errors.Is(err, services.ErrInvalidSignature):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeInvalidSignature, "Signature verification failed.", ""))
		default:
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to verify payment.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Payment verified."})
}
