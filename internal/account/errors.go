// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Broadside Contributors

package account

import "errors"

// Sentinel errors for the four domain failure kinds. Services wrap these
// with structured context; transports classify them via KindOf.
var (
	// ErrNotFound is returned when a requested user does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidCredentials is returned on password mismatch or a
	// malformed credential-bearing request.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrConflict is returned when a uniqueness constraint on username or
	// email would be violated.
	ErrConflict = errors.New("conflict")

	// ErrForbidden is returned when no valid session exists.
	ErrForbidden = errors.New("forbidden")
)

// Kind classifies a domain failure for transport mapping.
type Kind int

// Failure kinds.
const (
	KindUnknown Kind = iota
	KindNotFound
	KindInvalidCredentials
	KindConflict
	KindForbidden
)

// String returns the wire code for the kind.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindConflict:
		return "conflict"
	case KindForbidden:
		return "forbidden"
	default:
		return "internal"
	}
}

// KindOf returns the failure kind carried by err, unwrapping as needed.
// Errors that carry no domain sentinel classify as KindUnknown.
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidCredentials):
		return KindInvalidCredentials
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	default:
		return KindUnknown
	}
}
