package middleware

import (
	"net/http"

	"member-portal/internal/session"

	"github.com/gin-gonic/gin"
)

// Denial is the terminal response produced by a failing guard.
type Denial struct {
	Status   int
	Location string // redirect target when Status is a 3xx
	Body     string
}

// Guard inspects the request's session snapshot. It returns nil to let the
// request continue, or the response that ends it.
type Guard func(sess session.Session, ok bool) *Denial

// Authenticated passes only sessions created by a successful login.
func Authenticated(sess session.Session, ok bool) *Denial {
	if ok && sess.Authenticated {
		return nil
	}
	return &Denial{Status: http.StatusFound, Location: "/login"}
}

// Admin passes only admin sessions. It must be ordered after Authenticated.
func Admin(sess session.Session, ok bool) *Denial {
	if ok && sess.Admin {
		return nil
	}
	return &Denial{
		Status: http.StatusForbidden,
		Body:   "You are not authorized to view this page",
	}
}

// Require runs guards in order and stops at the first denial.
func Require(guards ...Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := CurrentSession(c)
		for _, guard := range guards {
			d := guard(sess, ok)
			if d == nil {
				continue
			}
			if d.Location != "" {
				c.Redirect(d.Status, d.Location)
				c.Abort()
				return
			}
			c.String(d.Status, d.Body)
			c.Abort()
			return
		}
		c.Next()
	}
}
