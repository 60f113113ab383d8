package widget

import "sync"

// seenKeyPrefix namespaces per-announcement markers so widget keys never
// collide with anything else sharing the same browser storage.
const seenKeyPrefix = "herald:seen:"

// Store persists boolean seen markers for announcements. Two instances
// back a runtime: a session-scoped one for once_per_session and a durable
// one for once_per_user. Writes are last-writer-wins.
type Store interface {
	Seen(key string) bool
	MarkSeen(key string)
}

// MemoryStore is the in-process Store used by the server-side preview and
// by tests. A fresh instance models a fresh browser session or profile.
type MemoryStore struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{keys: make(map[string]struct{})}
}

func (s *MemoryStore) Seen(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.keys[key]
	return ok
}

func (s *MemoryStore) MarkSeen(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[key] = struct{}{}
}
