// Package session tracks authenticated identities. Manager is the
// single-session state machine used by the CLI; RedisStore is the
// token-based multi-session store used by the HTTP API.
package session

import (
	"errors"
	"sync"

	"github.com/medbook/vaccine-scheduler/internal/identity"
)

var (
	ErrAlreadyLoggedIn = errors.New("a user is already logged in")
	ErrNotLoggedIn     = errors.New("not logged in")
	ErrWrongRole       = errors.New("operation not permitted for this role")
)

// Manager holds at most one authenticated identity. A login attempt while a
// session is active is rejected without changing state; role-gated
// operations go through Require.
type Manager struct {
	mu      sync.Mutex
	current *identity.Identity
}

func NewManager() *Manager {
	return &Manager{}
}

func (m *Manager) Login(id *identity.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil {
		return ErrAlreadyLoggedIn
	}
	m.current = id
	return nil
}

func (m *Manager) Logout() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return ErrNotLoggedIn
	}
	m.current = nil
	return nil
}

// Current returns the active identity, if any.
func (m *Manager) Current() (*identity.Identity, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return nil, false
	}
	return m.current, true
}

// Require returns the active identity if its role is one of roles. With no
// roles given, any authenticated identity passes.
func (m *Manager) Require(roles ...identity.Role) (*identity.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return nil, ErrNotLoggedIn
	}
	if len(roles) == 0 {
		return m.current, nil
	}
	for _, role := range roles {
		if m.current.Role == role {
			return m.current, nil
		}
	}
	return nil, ErrWrongRole
}
