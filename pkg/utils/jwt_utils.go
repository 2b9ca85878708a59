package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// jwtSecretKey signs and verifies session tokens. It must be replaced from
// configuration at startup via SetSigningKey before any token is issued.
var jwtSecretKey = []byte("change-me-skatefed-session-secret")

// SessionTokenTTL is the absolute lifetime of a session token. There is no
// refresh mechanism; clients re-authenticate after expiry.
const SessionTokenTTL = 24 * time.Hour

// SetSigningKey replaces the session token signing key. Call once at startup.
func SetSigningKey(secret string) {
	if secret != "" {
		jwtSecretKey = []byte(secret)
	}
}

// SessionClaims is the JWT claims structure carried by every session token.
type SessionClaims struct {
	AccountID int64  `json:"account_id"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateSessionToken creates a signed session token for an account.
func GenerateSessionToken(accountID int64, role string) (string, error) {
	expirationTime := time.Now().Add(SessionTokenTTL)
	claims := &SessionClaims{
		AccountID: accountID,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "skatefed-portal-backend",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(jwtSecretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return tokenString, nil
}

// ValidateSessionToken parses and validates a session token string.
// It returns the claims if the token is valid, otherwise an error.
func ValidateSessionToken(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtSecretKey, nil
	})

	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}
