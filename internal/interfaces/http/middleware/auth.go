package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tutorlink/backend/internal/infrastructure/auth"
	"github.com/tutorlink/backend/internal/infrastructure/logger"
	"github.com/tutorlink/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Context keys and header constants for authentication
const (
	ClaimsKey     = "auth_claims"
	UserIDKey     = "auth_user_id"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// TokenValidator validates an access token and returns its claims. The auth
// application service implements it, including blacklist checks.
type TokenValidator interface {
	ValidateAccessToken(ctx context.Context, token string) (*auth.Claims, error)
}

// RequireAuth rejects requests without a valid bearer token and stores the
// claims in the gin context for handlers
func RequireAuth(validator TokenValidator, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c)
		if token == "" {
			abortUnauthorized(c, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}

		claims, err := validator.ValidateAccessToken(c.Request.Context(), token)
		if err != nil {
			if log != nil {
				log.Warn("Token validation failed",
					zap.String("path", c.Request.URL.Path),
					zap.Error(err))
			}
			code, message := authErrorCode(err)
			abortUnauthorized(c, code, message)
			return
		}

		c.Set(ClaimsKey, claims)
		c.Set(UserIDKey, claims.UserID)

		ctx := c.Request.Context()
		ctx, _ = logger.WithUserID(ctx, logger.FromContext(ctx), claims.UserID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// extractBearerToken pulls the token out of the Authorization header
func extractBearerToken(c *gin.Context) string {
	header := c.GetHeader(AuthHeaderKey)
	if !strings.HasPrefix(header, BearerPrefix) {
		return ""
	}
	return strings.TrimPrefix(header, BearerPrefix)
}

func authErrorCode(err error) (string, string) {
	switch err {
	case auth.ErrExpiredToken:
		return "TOKEN_EXPIRED", "Token has expired"
	case auth.ErrTokenBlacklisted:
		return "TOKEN_REVOKED", "Token has been revoked"
	default:
		return "TOKEN_INVALID", "Invalid token"
	}
}

func abortUnauthorized(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(code, message))
}

// GetClaims retrieves JWT claims from the gin context
func GetClaims(c *gin.Context) *auth.Claims {
	if v, exists := c.Get(ClaimsKey); exists {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

// GetUserID retrieves the authenticated user's ID from the gin context.
// Returns uuid.Nil when the request is unauthenticated.
func GetUserID(c *gin.Context) uuid.UUID {
	if v, exists := c.Get(UserIDKey); exists {
		if s, ok := v.(string); ok {
			if id, err := uuid.Parse(s); err == nil {
				return id
			}
		}
	}
	return uuid.Nil
}
