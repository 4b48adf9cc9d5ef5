package handler

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"member-portal/internal/auth/credentials"
	"member-portal/internal/logger"
	"member-portal/internal/session"
	"member-portal/internal/users"
	"member-portal/internal/view"

	"github.com/gin-gonic/gin"
)

const invalidCredentialsMsg = "Invalid Username/Password!"

var loginFailureURL = "/login?msg=" + url.QueryEscape(invalidCredentialsMsg)

func (h *Handler) loginForm(c *gin.Context) {
	if authenticated(c) {
		c.Redirect(http.StatusFound, "/members")
		return
	}
	// escaped by html/template
	h.render(c, http.StatusOK, view.PageLogin, map[string]any{
		"Msg": c.Query("msg"),
	})
}

func (h *Handler) Login(c *gin.Context) {
	var req credentials.LoginInput
	if err := c.ShouldBind(&req); err != nil {
		logValidation("login", err)
		c.Redirect(http.StatusFound, loginFailureURL)
		return
	}

	user, err := h.credentials.Authenticate(
		c.Request.Context(),
		req.Username,
		req.Password,
	)
	if err != nil {
		if errors.Is(err, credentials.ErrInvalidCredentials) {
			c.Redirect(http.StatusFound, loginFailureURL)
			return
		}
		h.internalError(c, "login lookup failed", err)
		return
	}

	// never reuse a session id presented before login
	if cookie, err := c.Request.Cookie(session.CookieName); err == nil && cookie.Value != "" {
		if err := h.sessionStore.Delete(c.Request.Context(), cookie.Value); err != nil {
			logger.Warn("previous session delete failed", map[string]any{
				"error": err.Error(),
				"ip":    c.ClientIP(),
			})
		}
	}

	sessionID, err := session.GenerateID()
	if err != nil {
		h.internalError(c, "session id generation failed", err)
		return
	}

	sess := session.New(sessionID, user.Name, false, time.Now())
	if err := h.sessionStore.Create(c.Request.Context(), sess); err != nil {
		h.internalError(c, "session persist failed", err)
		return
	}

	if user.Role == users.RoleAdmin {
		sess.Admin = true
		if err := h.sessionStore.Update(c.Request.Context(), sess); err != nil {
			h.internalError(c, "session admin flag persist failed", err)
			return
		}
	}

	session.SetCookie(c.Writer, sessionID, h.cookie)

	logger.Info("login succeeded", map[string]any{
		"user_id": user.ID,
		"admin":   sess.Admin,
		"ip":      c.ClientIP(),
	})

	c.Redirect(http.StatusFound, "/members")
}
