package handler

import (
	"net/http"

	"member-portal/internal/logger"
	"member-portal/internal/session"

	"github.com/gin-gonic/gin"
)

// Logout removes the session from the store entirely, so the old cookie
// no longer authenticates anything.
func (h *Handler) Logout(c *gin.Context) {
	cookie, err := c.Request.Cookie(session.CookieName)
	if err == nil && cookie.Value != "" {
		if err := h.sessionStore.Delete(c.Request.Context(), cookie.Value); err != nil {
			h.internalError(c, "session delete failed", err)
			return
		}
		logger.Info("logout", map[string]any{"ip": c.ClientIP()})
	}

	session.ClearCookie(c.Writer, h.cookie)

	c.String(http.StatusOK, "You have been logged out")
}
