package handlers

import (
	"errors"
	"net/http"

	"skatefed_backend/internal/middleware"
	"skatefed_backend/internal/services"
	"skatefed_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the authentication service.
type AuthHandler struct {
	authService services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(as services.AuthService) *AuthHandler {
	return &AuthHandler{authService: as}
}

// Register handles account registration. The created account is pending
// and unverified; an OTP is issued out of band.
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload.", err.Error()))
		return
	}

	account, err := h.authService.Register(req)
	if err != nil {
		utils.LogError(err, "Register: Error from authService.Register")
		switch {
		case errors.Is(err, services.ErrEmailExists):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Email already registered.", err.Error()))
		case errors.Is(err, services.ErrRoleInvalid),
			errors.Is(err, services.ErrScopeRequired),
			errors.Is(err, services.ErrClubNameRequired):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid registration details.", err.Error()))
		default:
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to register account.", "Internal error"))
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"account": account,
		"message": "Registration received. Verify the one-time code sent to your contact channel.",
	})
}

// VerifyOTP handles one-time code verification.
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
		Code  string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload.", err.Error()))
		return
	}

	result, err := h.authService.VerifyOTP(req.Email, req.Code)
	if err != nil {
		utils.LogError(err, "VerifyOTP: Error from authService.VerifyOTP")
		switch {
		case errors.Is(err, services.ErrAccountNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Account not found.", err.Error()))
		case errors.Is(err, services.ErrInvalidOTP):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "Invalid one-time code.", err.Error()))
		case errors.Is(err, services.ErrOTPExpired):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeOTPExpired, "One-time code has expired. Request a new one.", err.Error()))
		default:
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to verify code.", "Internal error"))
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// Login handles credential verification and session issuance. The token is
// returned in the body and as an HTTP-only, SameSite-Strict cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload.", err.Error()))
		return
	}

	authResp, err := h.authService.Login(req)
	if err != nil {
		utils.LogError(err, "Login: Error from authService.Login")
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid email or password.", ""))
		case errors.Is(err, services.ErrAccountNotVerified):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, "Account has not completed OTP verification.", ""))
		case errors.Is(err, services.ErrAccountNotApproved):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, "Account is awaiting approval.", ""))
		case errors.Is(err, services.ErrAccountInactive):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, "Account is inactive.", ""))
		default:
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to login.", "Internal error"))
		}
		return
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.SessionCookieName, authResp.AccessToken, int(utils.SessionTokenTTL.Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, authResp)
}

// ForgotPassword issues a reset OTP. The response is identical whether the
// email exists or not.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload.", err.Error()))
		return
	}

	if err := h.authService.ForgotPassword(req.Email); err != nil {
		utils.LogError(err, "ForgotPassword: Error from authService.ForgotPassword")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to process request.", "Internal error"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "If the account exists, a reset code has been sent."})
}

// ResetPassword replaces the password after checking the reset OTP.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req struct {
		Email       string `json:"email" binding:"required,email"`
		Code        string `json:"code" binding:"required"`
		NewPassword string `json:"new_password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload.", err.Error()))
		return
	}

	if err := h.authService.ResetPassword(req.Email, req.Code, req.NewPassword); err != nil {
		utils.LogError(err, "ResetPassword: Error from authService.ResetPassword")
		switch {
		case errors.Is(err, services.ErrInvalidOTP):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "Invalid one-time code.", ""))
		case errors.Is(err, services.ErrOTPExpired):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeOTPExpired, "One-time code has expired. Request a new one.", ""))
		default:
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to reset password.", "Internal error"))
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "If the account exists, the password has been reset."})
}

// GetCurrentAccount retrieves the profile of the authenticated account.
func (h *AuthHandler) GetCurrentAccount(c *gin.Context) {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Not authenticated.", "Missing account ID in context"))
		return
	}

	account, err := h.authService.GetProfile(accountID)
	if err != nil {
		utils.LogError(err, "GetCurrentAccount: Error from authService.GetProfile")
		if errors.Is(err, services.ErrAccountNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Account not found.", ""))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to retrieve profile.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, account)
}

// Logout clears the session cookie. For stateless tokens this is
// primarily a client-side action.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out. Discard your token."})
}
