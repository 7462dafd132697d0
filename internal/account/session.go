// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Broadside Contributors

package account

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// SessionStore maps an opaque per-client context id to a user id. The
// HTTP layer owns the context id (cookie value); implementations may be
// an in-memory map or a shared cache. Concurrent writes to the same
// context id are last-write-wins.
type SessionStore interface {
	// Get returns the user id bound to the context id, and whether a
	// binding exists.
	Get(ctx context.Context, contextID string) (int64, bool, error)

	// Set binds the context id to the user id, overwriting any previous
	// binding.
	Set(ctx context.Context, contextID string, userID int64) error

	// Remove drops the binding. Removing an absent binding is not an
	// error.
	Remove(ctx context.Context, contextID string) error
}

// NewContextID generates a fresh opaque session context id.
func NewContextID() string {
	return ulid.Make().String()
}

// SessionManager resolves session context ids to users. The backing user
// record is re-resolved on every check, so a session can never outlive
// its user: a binding whose user has been deleted is removed and the
// call fails with ErrForbidden.
type SessionManager struct {
	users UserRepository
	store SessionStore
}

// NewSessionManager creates a SessionManager.
func NewSessionManager(users UserRepository, store SessionStore) (*SessionManager, error) {
	if users == nil {
		return nil, oops.Code("SESSION_MANAGER_INVALID").Errorf("user repository is required")
	}
	if store == nil {
		return nil, oops.Code("SESSION_MANAGER_INVALID").Errorf("session store is required")
	}
	return &SessionManager{users: users, store: store}, nil
}

// Open binds the context id to the user, overwriting any existing
// binding. Re-opening an authenticated session is allowed.
func (m *SessionManager) Open(ctx context.Context, contextID string, user *User) error {
	if user == nil {
		return oops.Code("SESSION_OPEN_INVALID").Errorf("user is required")
	}
	if err := m.store.Set(ctx, contextID, user.ID); err != nil {
		return oops.Code("SESSION_OPEN_FAILED").
			With("context_id", contextID).
			Wrap(err)
	}
	return nil
}

// CurrentUser resolves the session to its user, password hash cleared.
// An absent binding wraps ErrForbidden. A binding whose user no longer
// exists is removed before ErrForbidden is returned, so the caller sees
// the same failure on the next attempt instead of a partial user.
func (m *SessionManager) CurrentUser(ctx context.Context, contextID string) (*User, error) {
	userID, ok, err := m.store.Get(ctx, contextID)
	if err != nil {
		return nil, oops.Code("SESSION_RESOLVE_FAILED").
			With("context_id", contextID).
			Wrap(err)
	}
	if !ok {
		return nil, oops.Code("SESSION_ANONYMOUS").Wrap(ErrForbidden)
	}

	user, err := m.users.FindByID(ctx, userID)
	if err != nil {
		if KindOf(err) == KindNotFound {
			// Stale binding: the user was deleted after the session
			// opened. Clear it so the session is Anonymous from now on.
			if rmErr := m.store.Remove(ctx, contextID); rmErr != nil {
				return nil, oops.Code("SESSION_RESOLVE_FAILED").
					With("operation", "remove stale binding").
					With("context_id", contextID).
					Wrap(rmErr)
			}
			return nil, oops.Code("SESSION_STALE").
				With("user_id", userID).
				Wrap(ErrForbidden)
		}
		return nil, oops.Code("SESSION_RESOLVE_FAILED").
			With("user_id", userID).
			Wrap(err)
	}

	return user.Sanitized(), nil
}

// Close clears the session binding. It funnels through CurrentUser
// first, so closing an anonymous or stale session fails with
// ErrForbidden under the same invalidation rules.
func (m *SessionManager) Close(ctx context.Context, contextID string) error {
	if _, err := m.CurrentUser(ctx, contextID); err != nil {
		return err
	}
	if err := m.store.Remove(ctx, contextID); err != nil {
		return oops.Code("SESSION_CLOSE_FAILED").
			With("context_id", contextID).
			Wrap(err)
	}
	return nil
}
