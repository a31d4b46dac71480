// internal/domain/cart/sessions.go
package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// Sessions hands out one Store per browsing session. A session's mirror is
// read once, when its Store is first requested; later edits made directly
// to the mirror are not picked up.
type Sessions struct {
	mu     sync.Mutex
	kv     KVStore
	prefix string
	logger logrus.FieldLogger
	stores map[string]*Store
}

// NewSessions creates a registry whose mirrors live under "<prefix>:session:<id>"
func NewSessions(kv KVStore, prefix string, logger logrus.FieldLogger) *Sessions {
	return &Sessions{
		kv:     kv,
		prefix: prefix,
		logger: logger,
		stores: make(map[string]*Store),
	}
}

// SessionKey returns the mirror key of a session
func SessionKey(prefix, sessionID string) string {
	return fmt.Sprintf("%s:session:%s", prefix, sessionID)
}

// Get returns the cart of sessionID, rehydrating it on first use
func (s *Sessions) Get(ctx context.Context, sessionID string) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()

	if store, ok := s.stores[sessionID]; ok {
		return store
	}

	// TODO: evict stores of idle sessions; the map grows with every new session id.
	store := NewStore(ctx, s.kv, SessionKey(s.prefix, sessionID), s.logger)
	s.stores[sessionID] = store
	return store
}

// Forget drops the in-memory cart of sessionID. The mirror is kept, so the
// next Get rehydrates from it.
func (s *Sessions) Forget(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.stores, sessionID)
}
