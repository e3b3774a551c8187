package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"daisy/internal/pkg/response"
)

const (
	csrfCookie = "csrftoken"
	csrfHeader = "X-CSRFToken"

	CodeCSRFFailed = "CSRF_FAILED"
)

type CSRFOptions struct {
	Enabled bool
	Secure  bool
}

// CSRF implements the double-submit cookie check: unsafe requests must echo
// the csrftoken cookie in the X-CSRFToken header.
func CSRF(opts CSRFOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !opts.Enabled || isSafeMethod(c.Request.Method) {
			c.Next()
			return
		}

		cookie, err := c.Cookie(csrfCookie)
		if err != nil || cookie == "" {
			response.Abort(c, http.StatusForbidden, CodeCSRFFailed, "CSRF cookie not set")
			return
		}
		header := c.GetHeader(csrfHeader)
		if header == "" || subtle.ConstantTimeCompare([]byte(cookie), []byte(header)) != 1 {
			response.Abort(c, http.StatusForbidden, CodeCSRFFailed, "CSRF token missing or incorrect")
			return
		}

		c.Next()
	}
}

// CSRFToken issues a token cookie, reusing the current one when present.
func CSRFToken(opts CSRFOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(csrfCookie)
		if err != nil || token == "" {
			token = uuid.NewString()
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(csrfCookie, token, 365*24*3600, "/", "", opts.Secure, false)
		response.Success(c, http.StatusOK, gin.H{"csrf_token": token})
	}
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}
