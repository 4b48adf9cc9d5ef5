package handler

import (
	"net/http"

	"member-portal/internal/middleware"
	"member-portal/internal/utils"
	"member-portal/internal/view"

	"github.com/gin-gonic/gin"
)

var decorations = []string{"/Red.svg", "/Green.svg", "/Orange.svg"}

func (h *Handler) members(c *gin.Context) {
	sess, _ := middleware.CurrentSession(c)

	h.render(c, http.StatusOK, view.PageMembers, map[string]any{
		"Name":  sess.Name,
		"Image": utils.Pick(decorations),
		"Admin": sess.Admin,
	})
}

func (h *Handler) admin(c *gin.Context) {
	sess, _ := middleware.CurrentSession(c)

	list, err := h.users.List(c.Request.Context())
	if err != nil {
		h.internalError(c, "user listing failed", err)
		return
	}

	h.render(c, http.StatusOK, view.PageAdmin, map[string]any{
		"Name":  sess.Name,
		"Users": list,
	})
}
