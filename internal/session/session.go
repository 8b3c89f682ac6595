// Package session ties a signed-in identity to a loaded task store.
package session

import (
	"context"
	"strings"
	"sync"

	"uptask/internal/errors"
	"uptask/internal/gateway"
	"uptask/internal/logging"
	"uptask/internal/store"
)

// Factory builds an unloaded store for userID.
type Factory func(userID string) *store.Store

// GatewayFactory returns a Factory creating stores over gw.
func GatewayFactory(gw gateway.Gateway, opts ...store.Option) Factory {
	return func(userID string) *store.Store {
		return store.New(gw, userID, opts...)
	}
}

// Manager owns at most one signed-in store at a time.
type Manager struct {
	mu      sync.Mutex
	factory Factory
	current *store.Store
}

// New creates a signed-out manager.
func New(factory Factory) *Manager {
	return &Manager{factory: factory}
}

// SignIn loads a store for userID. Signing in as the current user returns the existing
// store; signing in as someone else signs the previous user out first.
func (m *Manager) SignIn(ctx context.Context, userID string) (*store.Store, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, errors.NewNotAuthenticatedError("sign in")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil {
		if m.current.UserID() == userID {
			return m.current, nil
		}
		m.signOutLocked()
	}

	st := m.factory(userID)
	if err := st.Load(ctx); err != nil {
		st.Close()
		return nil, err
	}
	logging.Debugf("signed in as %s", userID)
	m.current = st
	return st, nil
}

// SignOut closes the current store, if any.
func (m *Manager) SignOut() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.signOutLocked()
}

// Current returns the signed-in store.
func (m *Manager) Current() (*store.Store, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current, m.current != nil
}

func (m *Manager) signOutLocked() {
	if m.current == nil {
		return
	}
	logging.Debugf("signing out %s", m.current.UserID())
	m.current.Close()
	m.current = nil
}
