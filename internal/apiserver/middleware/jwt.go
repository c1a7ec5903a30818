package middleware

import (
	"context"
	"strings"

	"github.com/amoylab/catalog/internal/apiserver/database"
	"github.com/amoylab/catalog/internal/auth"
	"github.com/amoylab/catalog/internal/common/cnst"
	"github.com/amoylab/catalog/internal/identity"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// UserLoader returns the current state of a user named by a token
type UserLoader interface {
	LoadUser(ctx context.Context, userID uint) (*database.User, error)
}

// Authenticate resolves the caller from a Bearer token. Requests without an
// Authorization header continue as anonymous; a header that does not carry a
// valid token of an active user is rejected. The actor is rebuilt from the
// database on every request so role and business changes apply immediately.
func Authenticate(tokens *auth.Tokens, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get the Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		// Check if the header has the Bearer prefix
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], auth.TokenTypeBearer) {
			_ = c.Error(cnst.ErrInvalidToken)
			c.Abort()
			return
		}

		// Validate the token
		claims, err := tokens.Verify(parts[1])
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		user, err := users.LoadUser(c.Request.Context(), claims.UserID)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		trace.SpanFromContext(c.Request.Context()).SetAttributes(attribute.Int64("enduser.id", int64(user.ID)))

		c.Set(cnst.CtxKeyClaims, claims)
		c.Set(cnst.CtxKeyUser, user)
		c.Set(cnst.CtxKeyActor, user.Actor())
		c.Next()
	}
}

// RequireActor rejects anonymous requests
func RequireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !ActorFrom(c).Authenticated() {
			_ = c.Error(cnst.ErrAuthenticationRequired)
			c.Abort()
			return
		}
		c.Next()
	}
}

// ActorFrom returns the caller, or nil for anonymous requests
func ActorFrom(c *gin.Context) *identity.Actor {
	if v, ok := c.Get(cnst.CtxKeyActor); ok {
		if actor, ok := v.(*identity.Actor); ok {
			return actor
		}
	}
	return nil
}

// UserFrom returns the user behind the caller, or nil for anonymous requests
func UserFrom(c *gin.Context) *database.User {
	if v, ok := c.Get(cnst.CtxKeyUser); ok {
		if user, ok := v.(*database.User); ok {
			return user
		}
	}
	return nil
}
