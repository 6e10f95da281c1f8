// internal/store/store.go
//
// Session persistence. One opaque JSON blob per player identity (user ID or
// anonymous cookie ID); the game core never sees the storage behind it.
//
// Characteristics:
//   - Load on a missing or unreadable record returns a fresh first-run
//     session, never an error — rehydration failures are not fatal.
//   - Save serializes the full session and is awaited by callers.
//   - The in-memory implementation round-trips through JSON so callers get
//     independent copies, same as the durable backend.

package store

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/toptendaily/go-server/internal/game"
)

// Store defines the persistence interface for game sessions.
// Implementations may be backed by memory (this file), SQLite, etc.
type Store interface {
	// Load retrieves the session for an owner. A missing or malformed
	// record yields a fresh session.
	Load(ctx context.Context, owner string) (*game.Session, error)

	// Save persists the full session state for an owner.
	Save(ctx context.Context, owner string, s *game.Session) error
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu    sync.RWMutex      // guards blobs
	blobs map[string][]byte // keyed by owner, JSON-encoded sessions
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{blobs: make(map[string][]byte)}
}

func (m *memory) Load(ctx context.Context, owner string) (*game.Session, error) {
	m.mu.RLock()
	raw, ok := m.blobs[owner]
	m.mu.RUnlock()
	if !ok {
		return game.New(), nil
	}
	return decodeSession(raw, owner), nil
}

func (m *memory) Save(ctx context.Context, owner string, s *game.Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.blobs[owner] = raw
	m.mu.Unlock()
	return nil
}
