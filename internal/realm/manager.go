package realm

import (
	"fmt"
	"strings"
	"sync"

	"github.com/forgeward/realmcore/internal/model"
)

// SessionManager is the C11 Player/World Manager: a capacity-gated
// collection of connected Sessions with O(1) lookup by account name or
// character GUID. Thread-safe for concurrent registration/lookup from the
// accept loop and the world instance's dispatcher goroutine.
type SessionManager struct {
	mu       sync.RWMutex
	capacity int
	byAccount map[string]*Session
	byGUID    map[model.GUID]*Session
}

// NewSessionManager creates a manager capped at capacity concurrent
// sessions. capacity <= 0 means unbounded.
func NewSessionManager(capacity int) *SessionManager {
	return &SessionManager{
		capacity:  capacity,
		byAccount: make(map[string]*Session),
		byGUID:    make(map[model.GUID]*Session),
	}
}

// ErrAtCapacity is returned by Register once the manager already holds
// capacity sessions.
var ErrAtCapacity = fmt.Errorf("realm: session manager at capacity")

// Register adds a session under its account name, enforcing capacity.
func (m *SessionManager) Register(accountName string, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.capacity > 0 && len(m.byAccount) >= m.capacity {
		return ErrAtCapacity
	}
	m.byAccount[strings.ToLower(accountName)] = s
	return nil
}

// Unregister removes a session and any character association it held.
func (m *SessionManager) Unregister(accountName string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := strings.ToLower(accountName)
	if s, ok := m.byAccount[key]; ok {
		if p := s.Player(); p != nil {
			delete(m.byGUID, p.GUID())
		}
	}
	delete(m.byAccount, key)
}

// RegisterPlayer associates a joined character's GUID with its session.
func (m *SessionManager) RegisterPlayer(guid model.GUID, s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byGUID[guid] = s
}

// UnregisterPlayer removes a character→session association without
// dropping the session itself (used on zone/tile transitions that do not
// end the connection).
func (m *SessionManager) UnregisterPlayer(guid model.GUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byGUID, guid)
}

// BySession returns the session for an account name, or nil.
func (m *SessionManager) BySession(accountName string) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.byAccount[strings.ToLower(accountName)]
}

// ByGUID returns the session driving the given character, or nil.
func (m *SessionManager) ByGUID(guid model.GUID) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.byGUID[guid]
}

// Count reports the number of connected sessions.
func (m *SessionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byAccount)
}

// PlayerCount reports the number of joined (in-world) characters.
func (m *SessionManager) PlayerCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byGUID)
}

// ForEachSession iterates all connected sessions. fn returning false stops
// iteration early.
func (m *SessionManager) ForEachSession(fn func(*Session) bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.byAccount {
		if !fn(s) {
			return
		}
	}
}
