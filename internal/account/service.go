// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Broadside Contributors

package account

import (
	"context"
	"log/slog"

	"github.com/samber/oops"
)

// DefaultRank is the rank assigned to new users when no override is
// configured. Rating logic elsewhere moves it afterwards.
const DefaultRank int32 = 1

// dummyPasswordHash is verified when a user doesn't exist so that the
// response time for unknown and known emails stays comparable. It is not
// a real credential and never matches any password.
//
//nolint:gosec // G101: intentionally fake digest for timing flattening, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// NewUser carries the fields required to register an account.
type NewUser struct {
	Username   string
	Email      string
	Password   string
	AvatarLink *string
}

// ProfilePatch carries a partial profile update. Nil fields are left
// unchanged; Password, when present, is hashed before storage.
type ProfilePatch struct {
	Username *string
	Email    *string
	Password *string
}

// UserService orchestrates the user repository and credential hasher and
// translates their failures into domain error kinds.
type UserService struct {
	users       UserRepository
	hasher      PasswordHasher
	defaultRank int32
	logger      *slog.Logger
}

// NewUserService creates a UserService with the default rank for new
// accounts.
func NewUserService(users UserRepository, hasher PasswordHasher) (*UserService, error) {
	return NewUserServiceWithLogger(users, hasher, DefaultRank, slog.Default())
}

// NewUserServiceWithLogger creates a UserService with an explicit initial
// rank and logger.
func NewUserServiceWithLogger(users UserRepository, hasher PasswordHasher, defaultRank int32, logger *slog.Logger) (*UserService, error) {
	if users == nil {
		return nil, oops.Code("ACCOUNT_SERVICE_INVALID").Errorf("user repository is required")
	}
	if hasher == nil {
		return nil, oops.Code("ACCOUNT_SERVICE_INVALID").Errorf("password hasher is required")
	}
	if logger == nil {
		return nil, oops.Code("ACCOUNT_SERVICE_INVALID").Errorf("logger is required")
	}
	return &UserService{
		users:       users,
		hasher:      hasher,
		defaultRank: defaultRank,
		logger:      logger,
	}, nil
}

// Authenticate looks up the user by email and verifies the password.
// Unknown emails wrap ErrNotFound, wrong passwords ErrInvalidCredentials.
// The returned user has the password hash cleared.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, lookupErr := s.users.FindByEmail(ctx, email)

	targetHash := dummyPasswordHash
	if lookupErr == nil {
		targetHash = user.PasswordHash
	} else if KindOf(lookupErr) != KindNotFound {
		return nil, oops.Code("ACCOUNT_AUTH_FAILED").
			With("operation", "find user by email").
			Wrap(lookupErr)
	}

	// Verify even when the lookup missed, to keep timing flat.
	valid, verifyErr := s.hasher.Verify(password, targetHash)

	if lookupErr != nil {
		return nil, oops.Code("ACCOUNT_NOT_FOUND").
			With("email", email).
			Wrap(lookupErr)
	}
	if verifyErr != nil {
		return nil, oops.Code("ACCOUNT_AUTH_FAILED").
			With("operation", "verify password").
			Wrap(verifyErr)
	}
	if !valid {
		return nil, oops.Code("ACCOUNT_INVALID_CREDENTIALS").
			With("email", email).
			Wrap(ErrInvalidCredentials)
	}

	if s.hasher.NeedsRehash(user.PasswordHash) {
		s.rehash(ctx, user, password)
	}

	return user.Sanitized(), nil
}

// rehash upgrades a legacy digest in place. Best effort: authentication
// already succeeded, so failures are only logged.
func (s *UserService) rehash(ctx context.Context, user *User, password string) {
	digest, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.Warn("password rehash failed", "user_id", user.ID, "error", err)
		return
	}
	if _, err := s.users.PartialUpdate(ctx, user.ID, UserPatch{PasswordHash: &digest}); err != nil {
		s.logger.Warn("password rehash update failed", "user_id", user.ID, "error", err)
		return
	}
	user.PasswordHash = digest
}

// Register validates and creates a new account. Duplicate username or
// email wraps ErrConflict, whether caught by the pre-check or by the
// store's unique constraint during the insert.
func (s *UserService) Register(ctx context.Context, candidate NewUser) (*User, error) {
	if err := ValidateUsername(candidate.Username); err != nil {
		return nil, err
	}
	if err := ValidateEmail(candidate.Email); err != nil {
		return nil, err
	}

	taken, err := s.users.ExistsByUsername(ctx, candidate.Username)
	if err != nil {
		return nil, oops.Code("ACCOUNT_REGISTER_FAILED").
			With("operation", "check username").
			Wrap(err)
	}
	if taken {
		return nil, oops.Code("ACCOUNT_USERNAME_TAKEN").
			With("username", candidate.Username).
			Wrap(ErrConflict)
	}

	taken, err = s.users.ExistsByEmail(ctx, candidate.Email)
	if err != nil {
		return nil, oops.Code("ACCOUNT_REGISTER_FAILED").
			With("operation", "check email").
			Wrap(err)
	}
	if taken {
		return nil, oops.Code("ACCOUNT_EMAIL_TAKEN").
			With("email", candidate.Email).
			Wrap(ErrConflict)
	}

	digest, err := s.hasher.Hash(candidate.Password)
	if err != nil {
		return nil, oops.Code("ACCOUNT_REGISTER_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	// The pre-checks race with concurrent registrations; the unique
	// constraints in the store are the last line of defense and surface
	// here as ErrConflict.
	created, err := s.users.Insert(ctx, &User{
		Username:     candidate.Username,
		Email:        candidate.Email,
		Rank:         s.defaultRank,
		AvatarLink:   candidate.AvatarLink,
		PasswordHash: digest,
	})
	if err != nil {
		if KindOf(err) == KindConflict {
			return nil, oops.Code("ACCOUNT_DUPLICATE").
				With("username", candidate.Username).
				With("email", candidate.Email).
				Wrap(err)
		}
		return nil, oops.Code("ACCOUNT_REGISTER_FAILED").
			With("operation", "insert user").
			Wrap(err)
	}

	s.logger.Info("user registered", "user_id", created.ID, "username", created.Username)
	return created.Sanitized(), nil
}

// UpdateProfile applies a partial update to an existing account. Unknown
// ids wrap ErrNotFound.
func (s *UserService) UpdateProfile(ctx context.Context, id int64, patch ProfilePatch) (*User, error) {
	if patch.Username != nil {
		if err := ValidateUsername(*patch.Username); err != nil {
			return nil, err
		}
	}
	if patch.Email != nil {
		if err := ValidateEmail(*patch.Email); err != nil {
			return nil, err
		}
	}

	stored := UserPatch{Username: patch.Username, Email: patch.Email}
	if patch.Password != nil {
		digest, err := s.hasher.Hash(*patch.Password)
		if err != nil {
			return nil, oops.Code("ACCOUNT_UPDATE_FAILED").
				With("operation", "hash password").
				Wrap(err)
		}
		stored.PasswordHash = &digest
	}

	updated, err := s.users.PartialUpdate(ctx, id, stored)
	if err != nil {
		switch KindOf(err) {
		case KindNotFound:
			return nil, oops.Code("ACCOUNT_NOT_FOUND").
				With("user_id", id).
				Wrap(err)
		case KindConflict:
			return nil, oops.Code("ACCOUNT_DUPLICATE").
				With("user_id", id).
				Wrap(err)
		default:
			return nil, oops.Code("ACCOUNT_UPDATE_FAILED").
				With("user_id", id).
				Wrap(err)
		}
	}

	return updated.Sanitized(), nil
}

// GetByRating returns all users ordered by rank, password hashes cleared.
func (s *UserService) GetByRating(ctx context.Context, ascending bool) ([]*User, error) {
	users, err := s.users.ListByRank(ctx, ascending)
	if err != nil {
		return nil, oops.Code("ACCOUNT_LIST_FAILED").
			With("ascending", ascending).
			Wrap(err)
	}

	out := make([]*User, len(users))
	for i, u := range users {
		out[i] = u.Sanitized()
	}
	return out, nil
}
