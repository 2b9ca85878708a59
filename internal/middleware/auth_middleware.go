package middleware

import (
	"net/http"
	"strings"

	"skatefed_backend/internal/models"
	"skatefed_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// SessionCookieName is the cookie carrying the session token for browser
// clients; the Authorization header takes precedence when both are set.
const SessionCookieName = "session_token"

// Context keys set by AuthMiddleware for downstream handlers.
const (
	CtxAccountID = "accountID"
	CtxRole      = "accountRole"
)

// AuthMiddleware creates a Gin middleware that validates the session token
// and injects the resolved identity into the request context. It is a pure
// gate: no business validation happens here. Requests without a valid,
// unexpired token are short-circuited with 401.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			var err error
			tokenString, err = c.Cookie(SessionCookieName)
			if err != nil || tokenString == "" {
				utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Authentication required.", "No bearer token or session cookie"))
				return
			}
		}

		claims, err := utils.ValidateSessionToken(tokenString)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid or expired session.", err.Error()))
			return
		}

		role, ok := models.ParseRole(claims.Role)
		if !ok {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid session role.", "Unknown role in token claims"))
			return
		}

		c.Set(CtxAccountID, claims.AccountID)
		c.Set(CtxRole, role)

		c.Next()
	}
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header, returning "" when the header is absent or malformed.
func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

// RequireRoles creates a Gin middleware that restricts a route group to
// the given roles. It must run after AuthMiddleware.
func RequireRoles(allowedRoles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleRaw, exists := c.Get(CtxRole)
		if !exists {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, "Role not resolved.", "AuthMiddleware must run first"))
			return
		}

		role, ok := roleRaw.(models.Role)
		if !ok {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Role has unexpected type.", ""))
			return
		}

		for _, allowed := range allowedRoles {
			if role == allowed {
				c.Next()
				return
			}
		}
		utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, "You do not have permission to access this resource.", ""))
	}
}

// AccountID returns the authenticated account id from the context.
func AccountID(c *gin.Context) (int64, bool) {
	raw, exists := c.Get(CtxAccountID)
	if !exists {
		return 0, false
	}
	id, ok := raw.(int64)
	return id, ok
}
