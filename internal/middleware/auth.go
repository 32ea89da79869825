package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// ContextKeyClientID is the key for the authenticated client id in gin context
	ContextKeyClientID = "client_id"
	// ContextKeyClaims is the key for JWT claims in gin context
	ContextKeyClaims = "claims"
)

// ClientClaims are the claims carried by an API token. ClientID binds the
// token holder to the orders and fills they may act on.
type ClientClaims struct {
	ClientID string `json:"client_id"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// AuthConfig holds configuration for JWT authentication.
type AuthConfig struct {
	SecretKey      string
	ExpiryDuration time.Duration
	Issuer         string
	TokenHeader    string
	TokenPrefix    string
}

// DefaultAuthConfig returns default authentication configuration.
func DefaultAuthConfig(secret string) *AuthConfig {
	return &AuthConfig{
		SecretKey:      secret,
		ExpiryDuration: 24 * time.Hour,
		Issuer:         "lob-engine",
		TokenHeader:    "Authorization",
		TokenPrefix:    "Bearer ",
	}
}

// AuthMiddleware provides JWT authentication for Gin.
type AuthMiddleware struct {
	config *AuthConfig
}

// NewAuthMiddleware creates a new authentication middleware.
func NewAuthMiddleware(config *AuthConfig) *AuthMiddleware {
	if config == nil {
		config = DefaultAuthConfig("change-me-in-production")
	}
	return &AuthMiddleware{config: config}
}

// GinMiddleware returns the Gin middleware handler function.
func (a *AuthMiddleware) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(a.config.TokenHeader)
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "missing authorization header",
				"code":    "AUTH_MISSING_HEADER",
			})
			return
		}

		if !strings.HasPrefix(authHeader, a.config.TokenPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "invalid authorization header format",
				"code":    "AUTH_INVALID_FORMAT",
			})
			return
		}

		tokenString := strings.TrimPrefix(authHeader, a.config.TokenPrefix)
		claims, err := a.validateToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": err.Error(),
				"code":    "AUTH_INVALID_TOKEN",
			})
			return
		}

		c.Set(ContextKeyClientID, claims.ClientID)
		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

// GenerateToken issues a signed token for a client id.
func (a *AuthMiddleware) GenerateToken(clientID, role string) (string, error) {
	now := time.Now()
	claims := &ClientClaims{
		ClientID: clientID,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    a.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.config.ExpiryDuration)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(a.config.SecretKey))
}

func (a *AuthMiddleware) validateToken(tokenString string) (*ClientClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ClientClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(a.config.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*ClientClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.ClientID == "" {
		return nil, errors.New("token missing client_id")
	}
	return claims, nil
}
