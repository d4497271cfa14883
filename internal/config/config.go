// Package config loads server configuration from the environment, with an
// optional YAML file override.
package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds everything the server needs to run.
type Config struct {
	// ListenAddr is the host:port the HTTP server binds to.
	ListenAddr string `yaml:"listen_addr"`

	// PublicBaseURL is the externally reachable base URL, used to build the
	// OAuth success redirect.
	PublicBaseURL string `yaml:"public_base_url"`

	// NotionClientID and NotionClientSecret identify the OAuth integration.
	NotionClientID     string `yaml:"notion_client_id"`
	NotionClientSecret string `yaml:"notion_client_secret"`

	// RedirectURI is the registered OAuth callback URL.
	RedirectURI string `yaml:"redirect_uri"`

	// EncryptionKey is the hex-encoded 32-byte key for session token
	// encryption.
	EncryptionKey string `yaml:"encryption_key"`

	// RedisURL selects the session store backend. Empty falls back to the
	// in-memory store (local development only; sessions die with the
	// process).
	RedisURL string `yaml:"redis_url"`

	// Debug is the numeric log verbosity.
	Debug int `yaml:"debug"`
}

// LoadEnvFile loads a dotenv file if it exists. A missing file is not an
// error; explicit env vars always win.
func LoadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(path)
}

// Load builds a Config from the environment.
func Load() *Config {
	debug, _ := strconv.Atoi(os.Getenv("INLINE_DEBUG"))
	cfg := &Config{
		ListenAddr:         envOr("PORT_ADDR", ":"+envOr("PORT", "3000")),
		PublicBaseURL:      os.Getenv("PUBLIC_BASE_URL"),
		NotionClientID:     os.Getenv("NOTION_CLIENT_ID"),
		NotionClientSecret: os.Getenv("NOTION_CLIENT_SECRET"),
		RedirectURI:        os.Getenv("REDIRECT_URI"),
		EncryptionKey:      os.Getenv("ENCRYPTION_KEY"),
		RedisURL:           os.Getenv("REDIS_URL"),
		Debug:              debug,
	}
	return cfg
}

// MergeFile overlays non-empty values from a YAML config file.
func (c *Config) MergeFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var file Config
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	if file.ListenAddr != "" {
		c.ListenAddr = file.ListenAddr
	}
	if file.PublicBaseURL != "" {
		c.PublicBaseURL = file.PublicBaseURL
	}
	if file.NotionClientID != "" {
		c.NotionClientID = file.NotionClientID
	}
	if file.NotionClientSecret != "" {
		c.NotionClientSecret = file.NotionClientSecret
	}
	if file.RedirectURI != "" {
		c.RedirectURI = file.RedirectURI
	}
	if file.EncryptionKey != "" {
		c.EncryptionKey = file.EncryptionKey
	}
	if file.RedisURL != "" {
		c.RedisURL = file.RedisURL
	}
	if file.Debug != 0 {
		c.Debug = file.Debug
	}
	return nil
}

// Validate checks the parts every deployment needs. OAuth credentials are
// checked at the route level so a keyless local setup can still serve
// session-authenticated routes.
func (c *Config) Validate() error {
	if c.EncryptionKey == "" {
		return fmt.Errorf("ENCRYPTION_KEY is required")
	}
	key, err := hex.DecodeString(c.EncryptionKey)
	if err != nil {
		return fmt.Errorf("ENCRYPTION_KEY must be hex: %w", err)
	}
	if len(key) != 32 {
		return fmt.Errorf("ENCRYPTION_KEY must decode to 32 bytes, got %d", len(key))
	}
	return nil
}

// OAuthConfigured reports whether the OAuth flow can run.
func (c *Config) OAuthConfigured() bool {
	return c.NotionClientID != "" && c.RedirectURI != ""
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
