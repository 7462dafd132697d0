// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Broadside Contributors

// Package memory provides in-process implementations of account storage
// capabilities.
package memory

import (
	"context"
	"sync"

	"github.com/broadside-game/broadside/internal/account"
)

// SessionStore is an in-memory account.SessionStore keyed by context id.
// Safe for concurrent use; writes to the same context id are
// last-write-wins.
type SessionStore struct {
	mu       sync.RWMutex
	bindings map[string]int64
}

// NewSessionStore creates an empty SessionStore.
func NewSessionStore() *SessionStore {
	return &SessionStore{bindings: make(map[string]int64)}
}

// Get returns the user id bound to the context id.
func (s *SessionStore) Get(_ context.Context, contextID string) (int64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.bindings[contextID]
	return userID, ok, nil
}

// Set binds the context id to the user id.
func (s *SessionStore) Set(_ context.Context, contextID string, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bindings[contextID] = userID
	return nil
}

// Remove drops the binding for the context id.
func (s *SessionStore) Remove(_ context.Context, contextID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.bindings, contextID)
	return nil
}

// Len returns the number of live bindings. Used by the observability
// server's session gauge.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.bindings)
}

// Compile-time interface check.
var _ account.SessionStore = (*SessionStore)(nil)
