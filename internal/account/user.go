// Package account holds the session identity, the backend profile, and the
// login/register/profile pages built on them.
package account

import (
	"sync"

	"github.com/anevia/anevia/internal/auth"
)

// UserModel is the session identity holder. It mirrors the auth bridge's
// state stream so presenters read identity from one place instead of each
// tracking the bridge themselves.
type UserModel struct {
	mu    sync.Mutex
	state auth.AuthState
	subs  []func(auth.AuthState)
}

// NewUserModel creates the model and attaches it to the bridge's state stream.
func NewUserModel(bridge *auth.Bridge) *UserModel {
	m := &UserModel{}
	bridge.OnStateChanged(m.onState)
	return m
}

// Subscribe registers an observer, notified synchronously on every transition.
func (m *UserModel) Subscribe(fn func(auth.AuthState)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, fn)
}

// Current returns the last observed auth state.
func (m *UserModel) Current() auth.AuthState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// SignedIn reports whether an identity is present.
func (m *UserModel) SignedIn() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.User != nil
}

func (m *UserModel) onState(state auth.AuthState) {
	m.mu.Lock()
	m.state = state
	subs := make([]func(auth.AuthState), len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
}
