package utils

import (
	"time" // Time for token expiration

	"github.com/golang-jwt/jwt/v5" // JWT library
)

// Token stages
const (
	StageSession = ""    // Fully authenticated session token
	Stage2FA     = "2fa" // Password accepted, TOTP code still required
)

// JWT Claims
type Claims struct {
	UserID               uint   `json:"user_id"`         // Custom claim for user ID
	Stage                string `json:"stage,omitempty"` // Empty for sessions, "2fa" while a code is pending
	jwt.RegisteredClaims        // Standard JWT claims
}

// GenerateJWT creates a session token for a given user ID
func GenerateJWT(userID uint, secret string) (string, error) {
	return generate(userID, StageSession, 24*time.Hour, secret) // Sessions last 24 hours
}

// Generate2FAJWT creates a short-lived token carried between the
// password step and the TOTP step of a 2FA login
func Generate2FAJWT(userID uint, secret string) (string, error) {
	return generate(userID, Stage2FA, 5*time.Minute, secret) // Pending tokens last 5 minutes
}

func generate(userID uint, stage string, ttl time.Duration, secret string) (string, error) {
	// Set token claims
	claims := Claims{
		UserID: userID, // Custom claim for user ID
		Stage:  stage,  // Token stage
		// Standard claims
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)), // Expiration time
			IssuedAt:  jwt.NewNumericDate(time.Now()),          // Issued at current time
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims) // Create token with claims
	return token.SignedString([]byte(secret))                  // Sign the token with the secret
}

// ParseJWT parses and validates a JWT token string
func ParseJWT(tokenStr, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		return []byte(secret), nil // Return the secret key for validation
	})
	// Check for parsing errors
	if err != nil {
		return nil, err // Return error if parsing fails
	}
	// Validate token and extract claims
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil // Return claims if valid
	}
	// Return error if token is invalid
	return nil, jwt.ErrSignatureInvalid
}
