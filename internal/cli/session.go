package cli

import (
	"errors"
	"fmt"
	"sync"
)

// ErrSessionBusy reports that a deliberation for the same symbol and date is
// already in flight.
var ErrSessionBusy = errors.New("analysis already running")

// SessionManager tracks in-flight deliberations. One symbol/date pair runs
// at most once at a time; concurrent requests for the same pair are rejected,
// not queued.
type SessionManager struct {
	mu     sync.Mutex
	active map[string]struct{}
}

func NewSessionManager() *SessionManager {
	return &SessionManager{active: map[string]struct{}{}}
}

func sessionKey(symbol, date string) string {
	return symbol + "@" + date
}

// Acquire marks a symbol/date as in flight.
func (m *SessionManager) Acquire(symbol, date string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := sessionKey(symbol, date)
	if _, ok := m.active[key]; ok {
		return fmt.Errorf("%w for %s on %s", ErrSessionBusy, symbol, date)
	}
	m.active[key] = struct{}{}
	return nil
}

// Release frees the slot. Safe to call for a key that is not held.
func (m *SessionManager) Release(symbol, date string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.active, sessionKey(symbol, date))
}
