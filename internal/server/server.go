// Package server exposes the HTTP API consumed by the browser extension.
//
// Every route except the OAuth flow and the health check authenticates via
// the x-session-id header; routes resolve their Notion client through the
// Gateway before doing any work.
package server

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/thuthancs/inline/internal/config"
	"github.com/thuthancs/inline/internal/notion"
	"github.com/thuthancs/inline/internal/session"
)

// Server wires the gin engine, session store, and route handlers.
type Server struct {
	cfg      *config.Config
	sessions *session.Store
	engine   *gin.Engine
	gateway  *Gateway

	// Overridable for tests.
	authURL  string
	tokenURL string
}

// Option configures a Server.
type Option func(*Server)

// WithNotionOptions forwards options to every per-request Notion client.
// Tests use this to point clients at a stub API.
func WithNotionOptions(opts ...notion.Option) Option {
	return func(s *Server) { s.gateway.opts = append(s.gateway.opts, opts...) }
}

// WithOAuthEndpoints overrides the Notion OAuth URLs. Tests use this to stub
// the authorize and token endpoints.
func WithOAuthEndpoints(authURL, tokenURL string) Option {
	return func(s *Server) {
		s.authURL = authURL
		s.tokenURL = tokenURL
	}
}

// New builds the server and registers all routes.
func New(cfg *config.Config, sessions *session.Store, opts ...Option) *Server {
	s := &Server{
		cfg:      cfg,
		sessions: sessions,
		gateway:  &Gateway{sessions: sessions},
		authURL:  notionAuthURL,
		tokenURL: notionTokenURL,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := gin.New()
	r.Use(gin.Recovery())

	// The extension's background worker calls from an extension origin, so
	// allow all origins but keep credential support for the OAuth state
	// cookie.
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "x-session-id")
	corsCfg.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	r.Use(cors.New(corsCfg))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Inline API Server"})
	})

	NewAuthHandler(r, s)
	NewSearchHandler(r, s.gateway)
	NewChildrenHandler(r, s.gateway)
	NewDataSourceHandler(r, s.gateway)
	NewPagesHandler(r, s.gateway)
	NewSaveHandler(r, s.gateway)

	s.engine = r
	return s
}

// Engine exposes the underlying gin engine (for tests and custom serving).
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Run blocks serving HTTP on the configured address.
func (s *Server) Run() error {
	return s.engine.Run(s.cfg.ListenAddr)
}
