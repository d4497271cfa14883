package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thuthancs/inline/internal/notion"
	"github.com/thuthancs/inline/internal/session"
)

// SessionHeader carries the session id on every authenticated request. The
// extension's background worker is the caller, so identity travels in a
// header rather than a cookie.
const SessionHeader = "x-session-id"

// Gateway resolves a request's session id to an authenticated Notion client.
type Gateway struct {
	sessions *session.Store
	opts     []notion.Option
}

// ClientFor authenticates the request. On failure it writes the 401/500
// response and returns ok=false; the handler must return without touching
// Notion. On success the session's TTL is extended (sliding expiry).
func (g *Gateway) ClientFor(c *gin.Context) (*notion.Client, *session.Session, bool) {
	sessionID := c.GetHeader(SessionHeader)
	if sessionID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing session ID"})
		return nil, nil, false
	}

	sess, err := g.sessions.Get(c.Request.Context(), sessionID)
	if errors.Is(err, session.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired session"})
		return nil, nil, false
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify session"})
		return nil, nil, false
	}

	// Active sessions slide their expiry forward; a best-effort refresh,
	// the request proceeds either way.
	_ = g.sessions.Touch(c.Request.Context(), sessionID)

	return notion.NewClient(sess.AccessToken, g.opts...), sess, true
}

// respondUpstreamError maps a Notion API failure onto the response: the
// upstream status and message pass through when present, anything else
// becomes a 500 with the fallback message.
func respondUpstreamError(c *gin.Context, err error, fallback string) {
	var apiErr *notion.APIError
	if errors.As(err, &apiErr) {
		status := apiErr.Status
		if status == 0 {
			status = http.StatusInternalServerError
		}
		msg := apiErr.Message
		if msg == "" {
			msg = fallback
		}
		c.JSON(status, gin.H{"error": msg})
		return
	}
	msg := fallback
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}
