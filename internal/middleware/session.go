package middleware

import (
	"net/http"
	"time"

	"member-portal/internal/logger"
	"member-portal/internal/session"

	"github.com/gin-gonic/gin"
)

const sessionContextKey = "portal.session"

// LoadSession reads the session cookie once per request and attaches an
// immutable snapshot of the stored session to the gin context. Handlers
// that change session state write a new value back to the store; the
// snapshot itself is never persisted.
func LoadSession(store session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Request.Cookie(session.CookieName)
		if err != nil || cookie.Value == "" {
			c.Next()
			return
		}

		sess, err := store.Get(c.Request.Context(), cookie.Value)
		if err != nil {
			logger.Error("session lookup failed", map[string]any{
				"error": err.Error(),
			})
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		if sess == nil {
			c.Next()
			return
		}

		if sess.Expired(time.Now()) {
			_ = store.Delete(c.Request.Context(), cookie.Value)
			c.Next()
			return
		}

		c.Set(sessionContextKey, *sess)
		c.Next()
	}
}

// CurrentSession returns the snapshot loaded for this request, if any.
func CurrentSession(c *gin.Context) (session.Session, bool) {
	v, ok := c.Get(sessionContextKey)
	if !ok {
		return session.Session{}, false
	}
	sess, ok := v.(session.Session)
	return sess, ok
}
