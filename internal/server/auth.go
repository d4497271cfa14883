package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/thuthancs/inline/internal/log"
	"github.com/thuthancs/inline/internal/session"
)

const (
	notionAuthURL  = "https://api.notion.com/v1/oauth/authorize"
	notionTokenURL = "https://api.notion.com/v1/oauth/token"

	stateCookie       = "oauth_state"
	stateCookieMaxAge = 600 // seconds
)

// AuthHandler serves the OAuth flow and session lifecycle routes.
type AuthHandler struct {
	server *Server
}

// NewAuthHandler registers the /auth route group.
func NewAuthHandler(r *gin.Engine, s *Server) *AuthHandler {
	handler := &AuthHandler{server: s}
	group := r.Group("/auth")
	group.GET("/notion", handler.Begin)
	group.GET("/callback", handler.Callback)
	group.GET("/success", handler.Success)
	group.GET("/session", handler.Session)
	group.POST("/logout", handler.Logout)
	return handler
}

func (h *AuthHandler) oauth() *oauth2.Config {
	cfg := h.server.cfg
	return &oauth2.Config{
		ClientID:     cfg.NotionClientID,
		ClientSecret: cfg.NotionClientSecret,
		RedirectURL:  cfg.RedirectURI,
		Endpoint: oauth2.Endpoint{
			AuthURL:  h.server.authURL,
			TokenURL: h.server.tokenURL,
		},
	}
}

// Begin redirects the user to Notion's authorization page, storing a random
// state in a short-lived cookie for the callback to verify.
func (h *AuthHandler) Begin(c *gin.Context) {
	if !h.server.cfg.OAuthConfigured() {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "OAuth not configured. Missing NOTION_CLIENT_ID or REDIRECT_URI",
		})
		return
	}

	state := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookie, state, stateCookieMaxAge, "/", "", c.Request.TLS != nil, true)

	authURL := h.oauth().AuthCodeURL(state, oauth2.SetAuthURLParam("owner", "user"))
	c.Redirect(http.StatusFound, authURL)
}

// tokenResponse is Notion's OAuth token exchange payload.
type tokenResponse struct {
	AccessToken   string `json:"access_token"`
	WorkspaceID   string `json:"workspace_id"`
	WorkspaceName string `json:"workspace_name"`
	WorkspaceIcon string `json:"workspace_icon"`
	BotID         string `json:"bot_id"`
	Owner         struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
	} `json:"owner"`
	Error string `json:"error"`
}

// exchangeCode trades the authorization code for an access token. Notion's
// token endpoint wants a JSON body with HTTP Basic credentials, which rules
// out oauth2.Config.Exchange (form-encoded).
func (h *AuthHandler) exchangeCode(ctx context.Context, code string) (*tokenResponse, error) {
	cfg := h.server.cfg
	body, err := json.Marshal(map[string]string{
		"grant_type":   "authorization_code",
		"code":         code,
		"redirect_uri": cfg.RedirectURI,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.server.tokenURL, strings.NewReader(string(body)))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(cfg.NotionClientID, cfg.NotionClientSecret)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var token tokenResponse
	if err := json.Unmarshal(raw, &token); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if token.Error != "" {
			return nil, fmt.Errorf("token exchange failed: %s", token.Error)
		}
		return nil, fmt.Errorf("token exchange failed with status %d", resp.StatusCode)
	}
	return &token, nil
}

// Callback handles Notion's redirect: verify state, exchange the code,
// create the session, and send the browser to the success page with the
// session id in the query.
func (h *AuthHandler) Callback(c *gin.Context) {
	state := c.Query("state")
	storedState, err := c.Cookie(stateCookie)
	if state == "" || err != nil || state != storedState {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid state parameter"})
		return
	}

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing authorization code"})
		return
	}

	cfg := h.server.cfg
	if cfg.NotionClientID == "" || cfg.NotionClientSecret == "" || cfg.RedirectURI == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "OAuth not configured. Missing credentials"})
		return
	}

	token, err := h.exchangeCode(c.Request.Context(), code)
	if err != nil {
		log.Log("oauth callback error: %v\n", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	sessionID := session.NewID()
	err = h.server.sessions.Create(c.Request.Context(), sessionID, session.Session{
		AccessToken:   token.AccessToken,
		WorkspaceID:   token.WorkspaceID,
		WorkspaceName: token.WorkspaceName,
		WorkspaceIcon: token.WorkspaceIcon,
		BotID:         token.BotID,
		UserID:        token.Owner.User.ID,
	})
	if err != nil {
		log.Log("session create error: %v\n", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	// Expire the state cookie.
	c.SetCookie(stateCookie, "", -1, "/", "", c.Request.TLS != nil, true)

	c.Redirect(http.StatusFound, h.successURL(sessionID))
}

func (h *AuthHandler) successURL(sessionID string) string {
	base := h.server.cfg.PublicBaseURL
	if base == "" {
		base = strings.TrimSuffix(h.server.cfg.RedirectURI, "/auth/callback")
	}
	return base + "/auth/success?session=" + sessionID
}

const successPage = `<!DOCTYPE html>
<html>
<head>
    <title>Authentication Successful</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            display: flex;
            align-items: center;
            justify-content: center;
            height: 100vh;
            margin: 0;
            background: #f5f5f5;
        }
        .container {
            text-align: center;
            background: white;
            padding: 2rem;
            border-radius: 8px;
            box-shadow: 0 2px 8px rgba(0,0,0,0.1);
        }
        h1 { color: #333; margin-bottom: 0.5rem; }
        p { color: #666; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Authentication Successful</h1>
        <p>You can close this window and return to the extension.</p>
    </div>
</body>
</html>`

// Success serves the page the extension watches for to capture the session
// id from the URL.
func (h *AuthHandler) Success(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(successPage))
}

// Session reports whether the caller's session is valid and which workspace
// it is connected to.
func (h *AuthHandler) Session(c *gin.Context) {
	sessionID := c.GetHeader(SessionHeader)
	if sessionID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing session ID"})
		return
	}

	sess, err := h.server.sessions.Get(c.Request.Context(), sessionID)
	if err != nil {
		if err == session.ErrNotFound {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired session"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"connected":     true,
		"workspaceName": sess.WorkspaceName,
		"workspaceIcon": sess.WorkspaceIcon,
		"userId":        sess.UserID,
	})
}

// Logout deletes the caller's session.
func (h *AuthHandler) Logout(c *gin.Context) {
	sessionID := c.GetHeader(SessionHeader)
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing session ID"})
		return
	}

	if err := h.server.sessions.Delete(c.Request.Context(), sessionID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to logout"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
