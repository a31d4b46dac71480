// internal/interfaces/http/middleware/auth.go
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/your-org/handmade-storefront/internal/domain/order"
	"github.com/your-org/handmade-storefront/internal/pkg/auth"
)

const identityKey = "identity"

// SignInPath is where unauthenticated shoppers are sent
const SignInPath = "/signin"

// OptionalAuthMiddleware attaches the identity when a valid token is present
// and lets anonymous requests through. Handlers that need a signed-in
// customer answer with SignInPath themselves.
func OptionalAuthMiddleware(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := auth.ExtractTokenFromHeader(c.GetHeader("Authorization"))
		if tokenString == "" {
			c.Next()
			return
		}

		// Invalid or expired tokens are treated as anonymous
		if claims, err := jwtManager.ValidateAccessToken(tokenString); err == nil {
			setIdentity(c, claims)
		}

		c.Next()
	}
}

func setIdentity(c *gin.Context, claims *auth.Claims) {
	c.Set(identityKey, order.Identity{
		CustomerID:    claims.UserID,
		Email:         claims.Email,
		Authenticated: true,
	})
}

// IdentityFromContext returns the caller's identity; anonymous callers get
// an unauthenticated zero identity.
func IdentityFromContext(c *gin.Context) order.Identity {
	if v, ok := c.Get(identityKey); ok {
		if identity, ok := v.(order.Identity); ok {
			return identity
		}
	}
	return order.Identity{}
}
