// Package extension abstracts the browser runtime surfaces the extension
// logic depends on, so the destination registry and background relay are
// testable outside a browser.
package extension

import (
	"errors"
	"sync"
)

// ErrNotFound is returned by Storage.Get for an absent key.
var ErrNotFound = errors.New("extension: key not found")

// Storage is the extension's local key-value storage
// (chrome.storage.local in the browser).
type Storage interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Remove(key string) error
}

// Tabs exposes the active tab (chrome.tabs in the browser).
type Tabs interface {
	// ActiveURL returns the active tab's URL, or "" if unavailable.
	ActiveURL() (string, error)
}

// SessionIDKey is the storage key holding the server session id.
const SessionIDKey = "inline_session_id"

// SessionID returns the stored session id, or "" when not signed in.
func SessionID(s Storage) (string, error) {
	raw, err := s.Get(SessionIDKey)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// SetSessionID stores the session id after a completed sign-in.
func SetSessionID(s Storage, id string) error {
	return s.Set(SessionIDKey, []byte(id))
}

// ClearSessionID removes the stored session id on logout.
func ClearSessionID(s Storage) error {
	return s.Remove(SessionIDKey)
}

// MemoryStorage is an in-process Storage for tests.
type MemoryStorage struct {
	mu   sync.Mutex
	data map[string][]byte
}

// NewMemoryStorage returns an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string][]byte)}
}

func (s *MemoryStorage) Get(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *MemoryStorage) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), value...)
	return nil
}

func (s *MemoryStorage) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// StaticTabs is a Tabs implementation returning a settable URL, for tests.
type StaticTabs struct {
	mu  sync.Mutex
	url string
}

// NewStaticTabs returns a StaticTabs reporting the given URL.
func NewStaticTabs(url string) *StaticTabs {
	return &StaticTabs{url: url}
}

// SetURL changes the reported active tab URL.
func (t *StaticTabs) SetURL(url string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.url = url
}

func (t *StaticTabs) ActiveURL() (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.url, nil
}
