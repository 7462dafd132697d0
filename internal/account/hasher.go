// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Broadside Contributors

package account

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher produces and verifies salted, irreversible password
// digests.
type PasswordHasher interface {
	// Hash produces a self-contained salted digest. Two calls with the
	// same password yield different digests.
	Hash(password string) (string, error)

	// Verify checks the password against the digest. Returns (true, nil)
	// on match, (false, nil) on mismatch, or an error for a digest that
	// cannot be parsed.
	Verify(password, digest string) (bool, error)

	// NeedsRehash reports whether the digest uses an outdated algorithm
	// or parameters and should be recomputed on next successful login.
	NeedsRehash(digest string) bool
}

// OWASP-recommended argon2id parameters.
const (
	argon2Time    = 1
	argon2Memory  = 64 * 1024 // KiB
	argon2Threads = 4
	argon2SaltLen = 16
	argon2KeyLen  = 32
)

// ErrEmptyPassword is returned when hashing an empty password. It wraps
// ErrInvalidCredentials, so callers classify it as a credential failure.
var ErrEmptyPassword = oops.Code("ACCOUNT_EMPTY_PASSWORD").Wrapf(ErrInvalidCredentials, "password cannot be empty")

// Argon2idHasher implements PasswordHasher using argon2id, with
// verification fallback for legacy bcrypt digests so that imported
// accounts keep authenticating until their next login rehashes them.
type Argon2idHasher struct{}

// NewArgon2idHasher creates an Argon2idHasher.
func NewArgon2idHasher() *Argon2idHasher {
	return &Argon2idHasher{}
}

// Hash produces a PHC-encoded argon2id digest with a fresh random salt.
func (h *Argon2idHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", oops.Code("ACCOUNT_SALT_FAILED").Wrap(err)
	}

	key := argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argon2Memory,
		argon2Time,
		argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify checks the password against an argon2id or legacy bcrypt digest.
func (h *Argon2idHasher) Verify(password, digest string) (bool, error) {
	if isBcryptDigest(digest) {
		err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(password))
		switch {
		case err == nil:
			return true, nil
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			return false, nil
		default:
			return false, oops.Code("ACCOUNT_INVALID_DIGEST").Wrap(err)
		}
	}

	params, salt, want, err := decodeArgon2id(digest)
	if err != nil {
		return false, err
	}

	got := argon2.IDKey([]byte(password), salt, params.time, params.memory, params.threads, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

// NeedsRehash reports true for anything that is not a current argon2id
// digest, including legacy bcrypt.
func (h *Argon2idHasher) NeedsRehash(digest string) bool {
	return !strings.HasPrefix(digest, "$argon2id$")
}

type argon2Params struct {
	memory  uint32
	time    uint32
	threads uint8
}

// decodeArgon2id parses a PHC argon2id string into its parameters, salt,
// and key.
func decodeArgon2id(digest string) (argon2Params, []byte, []byte, error) {
	var p argon2Params

	parts := strings.Split(digest, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return p, nil, nil, oops.Code("ACCOUNT_INVALID_DIGEST").Errorf("not an argon2id digest")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return p, nil, nil, oops.Code("ACCOUNT_INVALID_DIGEST").Wrap(err)
	}

	var threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &threads); err != nil {
		return p, nil, nil, oops.Code("ACCOUNT_INVALID_DIGEST").Wrap(err)
	}
	if threads == 0 || threads > 255 {
		return p, nil, nil, oops.Code("ACCOUNT_INVALID_DIGEST").Errorf("parallelism %d out of range", threads)
	}
	p.threads = uint8(threads)

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return p, nil, nil, oops.Code("ACCOUNT_INVALID_DIGEST").Wrap(err)
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return p, nil, nil, oops.Code("ACCOUNT_INVALID_DIGEST").Wrap(err)
	}
	if len(key) == 0 || len(key) > 1<<10 {
		return p, nil, nil, oops.Code("ACCOUNT_INVALID_DIGEST").Errorf("key length %d out of range", len(key))
	}

	return p, salt, key, nil
}

func isBcryptDigest(digest string) bool {
	return strings.HasPrefix(digest, "$2a$") ||
		strings.HasPrefix(digest, "$2b$") ||
		strings.HasPrefix(digest, "$2y$")
}
