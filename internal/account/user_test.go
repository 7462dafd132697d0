// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Broadside Contributors

package account_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broadside-game/broadside/internal/account"
)

func TestValidateUsername(t *testing.T) {
	valid := []string{
		"abc",
		"gunner_7",
		"Captain",
		strings.Repeat("a", account.MaxUsernameLength),
	}
	for _, username := range valid {
		t.Run("valid "+username, func(t *testing.T) {
			assert.NoError(t, account.ValidateUsername(username))
		})
	}

	invalid := []string{
		"",
		"ab",
		strings.Repeat("a", account.MaxUsernameLength+1),
		"7gunner",
		"_gunner",
		"gun ner",
		"gun-ner",
	}
	for _, username := range invalid {
		t.Run("invalid "+username, func(t *testing.T) {
			err := account.ValidateUsername(username)
			require.Error(t, err)
			assert.Equal(t, account.KindInvalidCredentials, account.KindOf(err))
		})
	}
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, account.ValidateEmail("alice@example.com"))
	assert.NoError(t, account.ValidateEmail("first.last+tag@sub.example.org"))

	for _, email := range []string{"", "alice", "alice@", "@example.com", "alice@example", "a lice@example.com"} {
		t.Run("invalid "+email, func(t *testing.T) {
			err := account.ValidateEmail(email)
			require.Error(t, err)
			assert.Equal(t, account.KindInvalidCredentials, account.KindOf(err))
		})
	}
}

func TestUserSanitized(t *testing.T) {
	avatar := "https://cdn.example.com/a.png"
	user := &account.User{
		ID:           7,
		Username:     "alice",
		Email:        "alice@example.com",
		Rank:         3,
		AvatarLink:   &avatar,
		PasswordHash: "$argon2id$...",
	}

	clean := user.Sanitized()
	assert.Empty(t, clean.PasswordHash)
	assert.Equal(t, user.ID, clean.ID)
	assert.Equal(t, user.Username, clean.Username)
	assert.Equal(t, user.AvatarLink, clean.AvatarLink)

	// The original keeps its hash.
	assert.NotEmpty(t, user.PasswordHash)
}

func TestUserPatchIsZero(t *testing.T) {
	assert.True(t, account.UserPatch{}.IsZero())

	name := "bob"
	assert.False(t, account.UserPatch{Username: &name}.IsZero())
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, account.KindNotFound, account.KindOf(account.ErrNotFound))
	assert.Equal(t, account.KindInvalidCredentials, account.KindOf(account.ErrInvalidCredentials))
	assert.Equal(t, account.KindConflict, account.KindOf(account.ErrConflict))
	assert.Equal(t, account.KindForbidden, account.KindOf(account.ErrForbidden))
	assert.Equal(t, account.KindUnknown, account.KindOf(assert.AnError))
	assert.Equal(t, account.KindUnknown, account.KindOf(nil))
}
