package common

import (
	"net/http"

	"github.com/gin-gonic/gin"
	csrf "github.com/utrack/gin-csrf"
)

const (
	csrfEnabledKey = "csrf_enabled"

	MsgBadCSRF = "Your form has expired, please go back and try again"
)

// CSRF rejects POSTs whose _csrf field does not match the token kept in the
// visitor's session. It must run after the sessions middleware.
func CSRF(secret string) gin.HandlerFunc {
	check := csrf.Middleware(csrf.Options{
		Secret: secret,
		ErrorFunc: func(c *gin.Context) {
			c.Set(csrfEnabledKey, false)
			RenderError(c, http.StatusForbidden, MsgBadCSRF)
			c.Abort()
		},
	})

	return func(c *gin.Context) {
		c.Set(csrfEnabledKey, true)
		check(c)
	}
}

// CSRFToken returns the token forms must post back in _csrf, or "" when the
// CSRF middleware is not installed.
func CSRFToken(c *gin.Context) string {
	if !c.GetBool(csrfEnabledKey) {
		return ""
	}
	return csrf.GetToken(c)
}
