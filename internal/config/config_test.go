package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("PORT_ADDR", "")
	t.Setenv("INLINE_DEBUG", "")

	cfg := Load()
	assert.Equal(t, ":3000", cfg.ListenAddr)
	assert.Equal(t, 0, cfg.Debug)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("PORT_ADDR", "")
	t.Setenv("NOTION_CLIENT_ID", "cid")
	t.Setenv("REDIRECT_URI", "https://api.example.com/auth/callback")
	t.Setenv("INLINE_DEBUG", "2")

	cfg := Load()
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "cid", cfg.NotionClientID)
	assert.Equal(t, 2, cfg.Debug)
	assert.True(t, cfg.OAuthConfigured())
}

func TestPortAddrWinsOverPort(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("PORT_ADDR", "127.0.0.1:9000")

	cfg := Load()
	assert.Equal(t, "127.0.0.1:9000", cfg.ListenAddr)
}

func TestMergeFile(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("PORT_ADDR", "")
	t.Setenv("NOTION_CLIENT_ID", "env-cid")

	path := filepath.Join(t.TempDir(), "inline.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen_addr: \":4000\"\nredis_url: redis://localhost:6379\n"), 0o600))

	cfg := Load()
	require.NoError(t, cfg.MergeFile(path))
	assert.Equal(t, ":4000", cfg.ListenAddr)
	assert.Equal(t, "redis://localhost:6379", cfg.RedisURL)
	assert.Equal(t, "env-cid", cfg.NotionClientID, "file must not clobber values it does not set")
}

func TestValidateKey(t *testing.T) {
	cfg := &Config{EncryptionKey: testKey}
	assert.NoError(t, cfg.Validate())

	cfg.EncryptionKey = ""
	assert.Error(t, cfg.Validate())

	cfg.EncryptionKey = "not-hex"
	assert.Error(t, cfg.Validate())

	cfg.EncryptionKey = "00ff"
	assert.ErrorContains(t, cfg.Validate(), "32 bytes")
}

func TestLoadEnvFileMissing(t *testing.T) {
	assert.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), "nope.env")))
}
