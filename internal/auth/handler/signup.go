package handler

import (
	"errors"
	"net/http"

	"member-portal/internal/auth/credentials"
	"member-portal/internal/view"

	"github.com/gin-gonic/gin"
)

func (h *Handler) signupForm(c *gin.Context) {
	if authenticated(c) {
		c.Redirect(http.StatusFound, "/members")
		return
	}
	h.render(c, http.StatusOK, view.PageSignup, nil)
}

func (h *Handler) Signup(c *gin.Context) {
	var req credentials.SignupInput
	if err := c.ShouldBind(&req); err != nil {
		logValidation("signup", err)
		c.Redirect(http.StatusFound, "/signup")
		return
	}

	if _, err := h.credentials.Register(c.Request.Context(), req); err != nil {
		if errors.Is(err, credentials.ErrInvalidInput) {
			logValidation("signup", err)
			c.Redirect(http.StatusFound, "/signup")
			return
		}
		h.internalError(c, "signup failed", err)
		return
	}

	c.String(http.StatusOK, "Successfully created user!")
}
