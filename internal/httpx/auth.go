package httpx

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/MikeMC777/storefront/internal/apperr"
	"github.com/MikeMC777/storefront/internal/identity"
)

// Authenticator resolves bearer tokens; *identity.Service implements it.
type Authenticator interface {
	CurrentSession(ctx context.Context, token string) (*identity.Identity, error)
}

func bearer(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	if websocket.IsWebSocketUpgrade(c.Request) {
		return c.Query("token")
	}
	return ""
}

// Auth requires a valid session.
func Auth(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := a.CurrentSession(c.Request.Context(), bearer(c))
		if err != nil {
			Fail(c, err)
			return
		}
		c.Set(keyIdentity, id)
		c.Next()
	}
}

// Optional attaches the identity when a valid token is present and lets
// anonymous requests through.
func Optional(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tok := bearer(c); tok != "" {
			if id, err := a.CurrentSession(c.Request.Context(), tok); err == nil {
				c.Set(keyIdentity, id)
			}
		}
		c.Next()
	}
}

// RequireAdmin must run after Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := CurrentIdentity(c)
		if !ok {
			Fail(c, apperr.Unauthenticated(apperr.CodeSignInRequired))
			return
		}
		if !id.IsAdmin() {
			Fail(c, apperr.Forbidden(apperr.CodeAdminOnly))
			return
		}
		c.Next()
	}
}

func CurrentIdentity(c *gin.Context) (*identity.Identity, bool) {
	v, ok := c.Get(keyIdentity)
	if !ok {
		return nil, false
	}
	id, ok := v.(*identity.Identity)
	return id, ok && id != nil
}

// UserID is the signed-in user's id, "" for anonymous requests.
func UserID(c *gin.Context) string {
	if id, ok := CurrentIdentity(c); ok {
		return id.UserID
	}
	return ""
}
