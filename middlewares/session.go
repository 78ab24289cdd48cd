package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	SessionCookie  = "cart_session"
	ContextSession = "cartSession"

	sessionMaxAge = 14 * 24 * 60 * 60
)

// CartSession makes sure every request carries a cart session key, issuing
// a new cookie when the client has none or sends a malformed one.
func CartSession(secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		key, err := c.Cookie(SessionCookie)
		if err != nil || uuid.Validate(key) != nil {
			key = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(SessionCookie, key, sessionMaxAge, "/", "", secure, true)
		}
		c.Set(ContextSession, key)
		c.Next()
	}
}

func SessionKey(c *gin.Context) string {
	return c.GetString(ContextSession)
}
