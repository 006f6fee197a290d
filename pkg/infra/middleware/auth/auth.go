// Package auth provides the authentication gate for gin routes.
package auth

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/logger"
	"github.com/kart-io/datasphere/pkg/security/auth"
	"github.com/kart-io/datasphere/pkg/security/auth/identity"
	"github.com/kart-io/datasphere/pkg/utils/errors"
	"github.com/kart-io/datasphere/pkg/utils/response"
)

const (
	// SessionCookie is the cookie set by POST /session.
	SessionCookie = "__session"

	authScheme = "Bearer"
)

// Authenticate rejects requests without a valid identity token.
//
// The token is read from "Authorization: Bearer <token>", falling back to the
// session cookie when the header is absent. On success the Identity is
// injected into the request context.
func Authenticate(verifier identity.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := extractToken(c)
		if !ok {
			abort(c, errors.ErrMissingToken)
			return
		}

		id, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			logAuthFailure(c, token, err)
			abort(c, errors.ErrInvalidToken)
			return
		}

		c.Request = c.Request.WithContext(auth.InjectAuth(c.Request.Context(), id, token))
		c.Next()
	}
}

// Optional injects the identity when a valid token is present and lets the
// request through otherwise.
func Optional(verifier identity.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := extractToken(c)
		if !ok {
			c.Next()
			return
		}

		if id, err := verifier.Verify(c.Request.Context(), token); err == nil {
			c.Request = c.Request.WithContext(auth.InjectAuth(c.Request.Context(), id, token))
		}
		c.Next()
	}
}

// extractToken returns the bearer token. A present but malformed header
// counts as missing and does not fall back to the cookie.
func extractToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		if cookie, err := c.Request.Cookie(SessionCookie); err == nil && cookie.Value != "" {
			return sanitize(cookie.Value), true
		}
		return "", false
	}

	if !strings.HasPrefix(header, authScheme+" ") {
		return "", false
	}
	token := sanitize(strings.TrimPrefix(header, authScheme+" "))
	return token, token != ""
}

// sanitize normalizes whitespace and standard base64 characters so that
// tokens copied from other tools still parse as base64url.
func sanitize(token string) string {
	token = strings.ReplaceAll(token, " ", "")
	token = strings.ReplaceAll(token, "+", "-")
	token = strings.ReplaceAll(token, "/", "_")
	return strings.TrimRight(token, "=")
}

func abort(c *gin.Context, e *errors.Errno) {
	resp := response.Err(e)
	c.AbortWithStatusJSON(resp.HTTPStatus(), resp)
}

// logAuthFailure logs authentication failures for security audit.
func logAuthFailure(c *gin.Context, token string, err error) {
	// Only record token prefix to avoid leaking complete token in logs
	tokenPrefix := ""
	if len(token) > 20 {
		tokenPrefix = token[:20] + "..."
	} else if len(token) > 0 {
		tokenPrefix = token[:len(token)/2] + "..."
	}

	logger.Warnw("authentication failed",
		"error", err.Error(),
		"remote_addr", c.ClientIP(),
		"token_prefix", tokenPrefix,
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
		"user_agent", c.Request.UserAgent(),
	)
}
