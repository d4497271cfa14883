// Package session persists OAuth sessions in the key-value store.
//
// The access token is the only secret in a session record; it is stored
// AES-256-GCM encrypted and decrypted only on read, so the plaintext token
// never touches the store.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/thuthancs/inline/internal/kv"
)

// TTL is how long a session lives without activity.
const TTL = 30 * 24 * time.Hour

const keyPrefix = "session:"

// ErrNotFound is returned when a session is absent or expired.
var ErrNotFound = errors.New("session not found")

// Session is one connected Notion workspace.
type Session struct {
	AccessToken   string `json:"accessToken"`
	WorkspaceID   string `json:"workspaceId"`
	WorkspaceName string `json:"workspaceName"`
	WorkspaceIcon string `json:"workspaceIcon,omitempty"`
	BotID         string `json:"botId"`
	UserID        string `json:"userId,omitempty"`
	CreatedAt     int64  `json:"createdAt"`
}

// Store reads and writes sessions through the key-value store.
type Store struct {
	kv     kv.Store
	cipher *Cipher
}

// NewStore builds a session store. hexKey is the hex-encoded 32-byte
// encryption key; an invalid key is a configuration error surfaced here.
func NewStore(store kv.Store, hexKey string) (*Store, error) {
	c, err := NewCipher(hexKey)
	if err != nil {
		return nil, err
	}
	return &Store{kv: store, cipher: c}, nil
}

// NewID generates an opaque random session ID.
func NewID() string {
	return uuid.NewString()
}

// Create encrypts the access token, stamps CreatedAt, and writes the session
// with the full TTL.
func (s *Store) Create(ctx context.Context, id string, sess Session) error {
	encrypted, err := s.cipher.Encrypt(sess.AccessToken)
	if err != nil {
		return err
	}
	sess.AccessToken = encrypted
	sess.CreatedAt = time.Now().UnixMilli()

	raw, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, keyPrefix+id, raw, TTL)
}

// Get returns the session with its access token decrypted, or ErrNotFound if
// the session is absent or expired.
func (s *Store) Get(ctx context.Context, id string) (*Session, error) {
	raw, err := s.kv.Get(ctx, keyPrefix+id)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, err
	}
	token, err := s.cipher.Decrypt(sess.AccessToken)
	if err != nil {
		return nil, err
	}
	sess.AccessToken = token
	return &sess, nil
}

// Delete removes the session. Deleting an absent session is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.kv.Delete(ctx, keyPrefix+id)
}

// Touch resets the session TTL. Touching an absent session is a no-op.
func (s *Store) Touch(ctx context.Context, id string) error {
	err := s.kv.Expire(ctx, keyPrefix+id, TTL)
	if errors.Is(err, kv.ErrNotFound) {
		return nil
	}
	return err
}
