package handler

import (
	"errors"
	"io/fs"
	"net/http"
	"strings"

	"member-portal/internal/auth/credentials"
	"member-portal/internal/logger"
	"member-portal/internal/middleware"
	"member-portal/internal/session"
	"member-portal/internal/users"
	"member-portal/internal/view"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	credentials  *credentials.Service
	users        users.Store
	sessionStore session.Store
	views        view.Renderer
	assets       fs.FS
	cookie       session.CookieOptions
}

func NewHandler(
	credentialService *credentials.Service,
	userStore users.Store,
	sessionStore session.Store,
	views view.Renderer,
	cookie session.CookieOptions,
) *Handler {
	return &Handler{
		credentials:  credentialService,
		users:        userStore,
		sessionStore: sessionStore,
		views:        views,
		assets:       view.Assets(),
		cookie:       cookie,
	}
}

// RegisterRoutes expects middleware.LoadSession to be installed on r.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	pages := []string{http.MethodGet, http.MethodHead}

	r.Match(pages, "/", h.index)

	r.Match(pages, "/signup", h.signupForm)
	r.POST("/signup", h.Signup)

	r.Match(pages, "/login", h.loginForm)
	r.POST("/login", h.Login)

	// GET only: HEAD must not end a session
	r.GET("/logout", h.Logout)

	r.Match(pages, "/members",
		middleware.Require(middleware.Authenticated),
		h.members,
	)
	r.Match(pages, "/admin",
		middleware.Require(middleware.Authenticated, middleware.Admin),
		h.admin,
	)

	// static assets first, then the 404 page
	r.NoRoute(h.notFound)
}

func (h *Handler) index(c *gin.Context) {
	if authenticated(c) {
		c.Redirect(http.StatusFound, "/members")
		return
	}
	h.render(c, http.StatusOK, view.PageIndex, nil)
}

func (h *Handler) notFound(c *gin.Context) {
	if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
		name := strings.TrimPrefix(c.Request.URL.Path, "/")
		if fs.ValidPath(name) {
			if info, err := fs.Stat(h.assets, name); err == nil && !info.IsDir() {
				c.FileFromFS(name, http.FS(h.assets))
				return
			}
		}
	}
	h.render(c, http.StatusNotFound, view.PageNotFound, nil)
}

func (h *Handler) render(c *gin.Context, status int, page string, data map[string]any) {
	body, err := h.views.Render(page, data)
	if err != nil {
		h.internalError(c, "render failed", err)
		return
	}
	c.Data(status, "text/html; charset=utf-8", body)
}

func (h *Handler) internalError(c *gin.Context, msg string, err error) {
	logger.Error(msg, map[string]any{
		"path":  c.Request.URL.Path,
		"error": err.Error(),
	})
	c.String(http.StatusInternalServerError, "internal server error")
}

func authenticated(c *gin.Context) bool {
	sess, ok := middleware.CurrentSession(c)
	return ok && sess.Authenticated
}

// logValidation records which fields failed; users never see the detail.
func logValidation(form string, err error) {
	fields := map[string]any{"form": form}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
	} else {
		fields["error"] = err.Error()
	}

	logger.Warn("form validation failed", fields)
}
