package middlewares

import (
	"strings"

	"publicseva-be/apperrors"
	"publicseva-be/models"
	authUtils "publicseva-be/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	identityKey = "identity"
	afterKey    = "guard_after"
)

// Guard is one step of a route's access pipeline. A non-nil error stops the
// request before the handler runs.
type Guard func(c *gin.Context) error

// ErrorResponder writes an error envelope and aborts the request.
type ErrorResponder func(c *gin.Context, err error)

// Chain runs guards in order and aborts with respond on the first failure.
func Chain(respond ErrorResponder, guards ...Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, guard := range guards {
			if err := guard(c); err != nil {
				respond(c, err)
				return
			}
		}
		c.Next()

		if hooks, ok := c.Get(afterKey); ok {
			for _, fn := range hooks.([]func(*gin.Context)) {
				fn(c)
			}
		}
	}
}

// After registers fn to run once the handler behind the current Chain returns.
func After(c *gin.Context, fn func(*gin.Context)) {
	var hooks []func(*gin.Context)
	if existing, ok := c.Get(afterKey); ok {
		hooks = existing.([]func(*gin.Context))
	}
	c.Set(afterKey, append(hooks, fn))
}

// Authenticate verifies the bearer token and attaches the caller's identity.
func Authenticate(tokens *authUtils.TokenManager) Guard {
	return func(c *gin.Context) error {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			return apperrors.Unauthenticated("No authorization token provided")
		}

		scheme, tokenString, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tokenString) == "" {
			return apperrors.Unauthenticated("Invalid authorization header")
		}

		identity, err := tokens.ParseToken(strings.TrimSpace(tokenString))
		if err != nil {
			zerolog.Ctx(c.Request.Context()).Debug().Err(err).Msg("token validation failed")
			return apperrors.Wrap(apperrors.KindUnauthenticated, "Invalid or expired token", err)
		}

		c.Set(identityKey, identity)
		return nil
	}
}

// RequireRoles admits only identities whose role is in roles. It must run after Authenticate.
func RequireRoles(roles ...models.Role) Guard {
	return func(c *gin.Context) error {
		identity, ok := GetIdentity(c)
		if !ok {
			return apperrors.Unauthenticated("Not authenticated")
		}
		return models.RequireRole(identity.Role, roles...)
	}
}

// GetIdentity returns the identity attached by Authenticate.
func GetIdentity(c *gin.Context) (models.Identity, bool) {
	v, exists := c.Get(identityKey)
	if !exists {
		return models.Identity{}, false
	}
	identity, ok := v.(models.Identity)
	return identity, ok
}
