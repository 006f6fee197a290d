package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/datasphere/internal/pkg/httputils"
	authmw "github.com/kart-io/datasphere/pkg/infra/middleware/auth"
	"github.com/kart-io/datasphere/pkg/security/auth"
	"github.com/kart-io/datasphere/pkg/utils/response"
)

// SessionMaxAge is the lifetime of the session cookie.
const SessionMaxAge = 24 * time.Hour

// SessionHandler turns a verified bearer token into a browser session.
type SessionHandler struct {
	secure bool
}

// NewSessionHandler creates a new SessionHandler. secure sets the Secure
// attribute on the cookie.
func NewSessionHandler(secure bool) *SessionHandler {
	return &SessionHandler{secure: secure}
}

// Create handles POST /session. It runs behind the authentication gate, so
// the token it stores has already been verified.
func (h *SessionHandler) Create(c *gin.Context) {
	token := auth.TokenFromContext(c.Request.Context())
	h.setCookie(c, token, int(SessionMaxAge/time.Second))
	httputils.WriteResponse(c, nil, response.Message("Session created"))
}

// Logout handles POST /logout.
func (h *SessionHandler) Logout(c *gin.Context) {
	h.setCookie(c, "", -1)
	httputils.WriteResponse(c, nil, response.Message("Logged out"))
}

func (h *SessionHandler) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(authmw.SessionCookie, value, maxAge, "/", "", h.secure, true)
}
