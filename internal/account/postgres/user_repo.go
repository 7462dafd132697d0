// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Broadside Contributors

// Package postgres implements account persistence on PostgreSQL.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/broadside-game/broadside/internal/account"
)

// DB is the subset of pgxpool.Pool the repository needs. pgxmock
// satisfies it in unit tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// userColumns is the select list shared by every query returning a user.
const userColumns = `id, username, email, rank, avatar_link, password`

// UserRepository implements account.UserRepository using PostgreSQL.
type UserRepository struct {
	db DB
}

// NewUserRepository creates a UserRepository.
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID retrieves a user by id.
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*account.User, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users WHERE id = $1
	`, id)

	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").
			With("id", id).
			Wrap(account.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_FIND_BY_ID_FAILED").
			With("id", id).
			Wrap(err)
	}
	return user, nil
}

// FindByEmail retrieves a user by email (case-insensitive).
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*account.User, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)
	`, email)

	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").
			With("email", email).
			Wrap(account.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_FIND_BY_EMAIL_FAILED").
			With("email", email).
			Wrap(err)
	}
	return user, nil
}

// ExistsByUsername checks if a username is taken (case-insensitive).
func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM users WHERE LOWER(username) = LOWER($1))
	`, username).Scan(&exists)
	if err != nil {
		return false, oops.Code("USER_EXISTS_FAILED").
			With("username", username).
			Wrap(err)
	}
	return exists, nil
}

// ExistsByEmail checks if an email is taken (case-insensitive).
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM users WHERE LOWER(email) = LOWER($1))
	`, email).Scan(&exists)
	if err != nil {
		return false, oops.Code("USER_EXISTS_FAILED").
			With("email", email).
			Wrap(err)
	}
	return exists, nil
}

// ListByRank returns all users ordered by rank. Ties keep storage order.
func (r *UserRepository) ListByRank(ctx context.Context, ascending bool) ([]*account.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY rank DESC`
	if ascending {
		query = `SELECT ` + userColumns + ` FROM users ORDER BY rank ASC`
	}

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, oops.Code("USER_LIST_FAILED").
			With("ascending", ascending).
			Wrap(err)
	}
	defer rows.Close()

	var users []*account.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, oops.Code("USER_LIST_FAILED").
				With("operation", "scan user row").
				Wrap(err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("USER_LIST_FAILED").
			With("operation", "iterate users").
			Wrap(err)
	}
	return users, nil
}

// Insert stores a new user and returns it with the id the database
// assigned. Unique violations on username or email wrap ErrConflict.
func (r *UserRepository) Insert(ctx context.Context, user *account.User) (*account.User, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO users (username, email, rank, avatar_link, password)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+userColumns+`
	`,
		user.Username,
		user.Email,
		user.Rank,
		user.AvatarLink,
		user.PasswordHash,
	)

	created, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, oops.Code("USER_DUPLICATE").
				With("username", user.Username).
				With("email", user.Email).
				Wrap(account.ErrConflict)
		}
		return nil, oops.Code("USER_INSERT_FAILED").
			With("username", user.Username).
			Wrap(err)
	}
	return created, nil
}

// PartialUpdate applies the non-nil fields of patch and returns the
// persisted user. An empty patch reads the row without writing. Unknown
// ids wrap ErrNotFound.
func (r *UserRepository) PartialUpdate(ctx context.Context, id int64, patch account.UserPatch) (*account.User, error) {
	if patch.IsZero() {
		return r.FindByID(ctx, id)
	}

	row := r.db.QueryRow(ctx, `
		UPDATE users SET
			username = COALESCE($2, username),
			email = COALESCE($3, email),
			password = COALESCE($4, password)
		WHERE id = $1
		RETURNING `+userColumns+`
	`,
		id,
		patch.Username,
		patch.Email,
		patch.PasswordHash,
	)

	updated, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").
			With("id", id).
			Wrap(account.ErrNotFound)
	}
	if err != nil {
		if isUniqueViolation(err) {
			return nil, oops.Code("USER_DUPLICATE").
				With("id", id).
				Wrap(account.ErrConflict)
		}
		return nil, oops.Code("USER_UPDATE_FAILED").
			With("id", id).
			Wrap(err)
	}
	return updated, nil
}

// scanUser scans a single row into a User. Callers handle pgx.ErrNoRows.
func scanUser(row pgx.Row) (*account.User, error) {
	var u account.User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.Rank,
		&u.AvatarLink,
		&u.PasswordHash,
	)
	if err != nil {
		return nil, err //nolint:wrapcheck // callers wrap with context-specific info
	}
	return &u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// Compile-time interface check.
var _ account.UserRepository = (*UserRepository)(nil)
