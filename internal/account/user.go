// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Broadside Contributors

package account

import (
	"context"
	"regexp"

	"github.com/samber/oops"
)

// Username validation constraints.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 30
)

// usernameRegex matches usernames that start with a letter and contain
// only letters, numbers, and underscores.
var usernameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// emailRegex is deliberately loose: one @, no whitespace, a dot in the
// domain part. Real validation happens when mail is actually sent.
var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// User represents a player account. PasswordHash never leaves the
// account package boundary; Sanitized copies are handed to transports.
type User struct {
	ID           int64
	Username     string
	Email        string
	Rank         int32
	AvatarLink   *string
	PasswordHash string
}

// Sanitized returns a copy of the user with the password hash cleared.
func (u *User) Sanitized() *User {
	c := *u
	c.PasswordHash = ""
	return &c
}

// ValidateUsername validates a username against account rules:
// MinUsernameLength to MaxUsernameLength characters, starting with a
// letter, containing only letters, numbers, and underscores.
func ValidateUsername(username string) error {
	if username == "" {
		return oops.Code("ACCOUNT_INVALID_USERNAME").
			Wrapf(ErrInvalidCredentials, "username cannot be empty")
	}
	if len(username) < MinUsernameLength {
		return oops.Code("ACCOUNT_INVALID_USERNAME").
			With("min", MinUsernameLength).
			Wrapf(ErrInvalidCredentials, "username must be at least %d characters", MinUsernameLength)
	}
	if len(username) > MaxUsernameLength {
		return oops.Code("ACCOUNT_INVALID_USERNAME").
			With("max", MaxUsernameLength).
			Wrapf(ErrInvalidCredentials, "username must be at most %d characters", MaxUsernameLength)
	}
	if !usernameRegex.MatchString(username) {
		return oops.Code("ACCOUNT_INVALID_USERNAME").
			Wrapf(ErrInvalidCredentials, "username must start with a letter and contain only letters, numbers, and underscores")
	}
	return nil
}

// ValidateEmail validates the shape of an email address.
func ValidateEmail(email string) error {
	if email == "" {
		return oops.Code("ACCOUNT_INVALID_EMAIL").
			Wrapf(ErrInvalidCredentials, "email cannot be empty")
	}
	if !emailRegex.MatchString(email) {
		return oops.Code("ACCOUNT_INVALID_EMAIL").
			With("email", email).
			Wrapf(ErrInvalidCredentials, "email address is malformed")
	}
	return nil
}

// UserPatch carries a partial update. Nil fields are left unchanged.
// PasswordHash must already be hashed; the repository stores it verbatim.
type UserPatch struct {
	Username     *string
	Email        *string
	PasswordHash *string
}

// IsZero reports whether the patch changes nothing.
func (p UserPatch) IsZero() bool {
	return p.Username == nil && p.Email == nil && p.PasswordHash == nil
}

// UserRepository manages user persistence. Implementations wrap
// ErrNotFound for absent rows and ErrConflict for unique violations on
// username or email.
type UserRepository interface {
	// FindByID retrieves a user by id.
	FindByID(ctx context.Context, id int64) (*User, error)

	// FindByEmail retrieves a user by email (case-insensitive).
	FindByEmail(ctx context.Context, email string) (*User, error)

	// ExistsByUsername checks if a username is taken (case-insensitive).
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// ExistsByEmail checks if an email is taken (case-insensitive).
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// ListByRank returns all users ordered by rank. Ties keep storage
	// order; rank is not unique.
	ListByRank(ctx context.Context, ascending bool) ([]*User, error)

	// Insert stores a new user and returns it with the assigned id.
	Insert(ctx context.Context, user *User) (*User, error)

	// PartialUpdate applies the non-nil fields of patch and returns the
	// persisted user. Unknown ids wrap ErrNotFound.
	PartialUpdate(ctx context.Context, id int64, patch UserPatch) (*User, error)
}
