package services

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// PushHandle is a live connection a user can receive events on. The
// websocket layer owns the concrete type; nothing outside the registry
// and the dispatcher ever sees one.
type PushHandle interface {
	Push(event string, payload interface{}) error
	Close() error
}

type presenceEntry struct {
	handle       PushHandle
	registeredAt time.Time
}

// PresenceRegistry maps a user id to its live connection. State is
// in-memory only; after a restart everyone is offline until they
// reconnect. Lookups and mutations are plain map operations under a
// RWMutex and never perform I/O.
type PresenceRegistry struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]presenceEntry
}

func NewPresenceRegistry() *PresenceRegistry {
	return &PresenceRegistry{
		entries: make(map[uuid.UUID]presenceEntry),
	}
}

// Register associates userID with handle. A prior handle for the same
// user is superseded (last writer wins, single-device-session model);
// the superseded connection is left to its own read loop to die.
func (r *PresenceRegistry) Register(userID uuid.UUID, handle PushHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[userID] = presenceEntry{
		handle:       handle,
		registeredAt: time.Now(),
	}
}

// Unregister removes the association only if handle is still the one
// on record. A stale disconnect arriving after a rapid reconnect must
// not clobber the newer connection.
func (r *PresenceRegistry) Unregister(userID uuid.UUID, handle PushHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[userID]
	if !ok || entry.handle != handle {
		return
	}
	delete(r.entries, userID)
}

// Lookup returns the live handle for userID, if any. Point-in-time
// read; the handle may die the instant after.
func (r *PresenceRegistry) Lookup(userID uuid.UUID) (PushHandle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[userID]
	if !ok {
		return nil, false
	}
	return entry.handle, true
}

// OnlineCount reports how many users currently hold a live connection.
func (r *PresenceRegistry) OnlineCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
