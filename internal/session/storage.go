package session

import "sync"

// StorageKey is the well-known key the bearer token is persisted under.
// It is the cookie name on the web and the row key in the local KV store.
const StorageKey = "token"

// Storage persists a single bearer token.
type Storage interface {
	// Read returns the persisted token, if any. It has no side effects.
	Read() (string, bool)
	// Write persists the token.
	Write(token string) error
	// Clear removes the persisted token.
	Clear() error
}

// MemoryStorage keeps the token in process memory.
type MemoryStorage struct {
	mu    sync.Mutex
	token string
	ok    bool
}

// NewMemoryStorage returns a storage, optionally seeded with a token.
func NewMemoryStorage(token string) *MemoryStorage {
	return &MemoryStorage{token: token, ok: token != ""}
}

func (m *MemoryStorage) Read() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, m.ok
}

func (m *MemoryStorage) Write(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token, m.ok = token, true
	return nil
}

func (m *MemoryStorage) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token, m.ok = "", false
	return nil
}
