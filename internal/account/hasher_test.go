// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Broadside Contributors

package account_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/broadside-game/broadside/internal/account"
	"github.com/broadside-game/broadside/pkg/errutil"
)

func TestArgon2idHasher_Hash(t *testing.T) {
	hasher := account.NewArgon2idHasher()

	t.Run("produces argon2id digest", func(t *testing.T) {
		digest, err := hasher.Hash("broadside-pass")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(digest, "$argon2id$"), "digest %q", digest)
	})

	t.Run("same password yields different digests", func(t *testing.T) {
		first, err := hasher.Hash("broadside-pass")
		require.NoError(t, err)
		second, err := hasher.Hash("broadside-pass")
		require.NoError(t, err)
		assert.NotEqual(t, first, second)
	})

	t.Run("empty password is rejected", func(t *testing.T) {
		_, err := hasher.Hash("")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "ACCOUNT_EMPTY_PASSWORD")
		assert.Equal(t, account.KindInvalidCredentials, account.KindOf(err))
	})
}

func TestArgon2idHasher_Verify(t *testing.T) {
	hasher := account.NewArgon2idHasher()

	t.Run("round trip", func(t *testing.T) {
		digest, err := hasher.Hash("correct horse")
		require.NoError(t, err)

		ok, err := hasher.Verify("correct horse", digest)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("wrong password", func(t *testing.T) {
		digest, err := hasher.Hash("correct horse")
		require.NoError(t, err)

		ok, err := hasher.Verify("battery staple", digest)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("legacy bcrypt digest", func(t *testing.T) {
		legacy, err := bcrypt.GenerateFromPassword([]byte("ahoy"), bcrypt.MinCost)
		require.NoError(t, err)

		ok, err := hasher.Verify("ahoy", string(legacy))
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = hasher.Verify("avast", string(legacy))
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("malformed digest", func(t *testing.T) {
		_, err := hasher.Verify("ahoy", "plaintext-not-a-digest")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "ACCOUNT_INVALID_DIGEST")
	})

	t.Run("truncated argon2id digest", func(t *testing.T) {
		_, err := hasher.Verify("ahoy", "$argon2id$v=19$m=65536,t=1,p=4$short")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "ACCOUNT_INVALID_DIGEST")
	})
}

func TestArgon2idHasher_NeedsRehash(t *testing.T) {
	hasher := account.NewArgon2idHasher()

	t.Run("current digest does not need rehash", func(t *testing.T) {
		digest, err := hasher.Hash("ahoy")
		require.NoError(t, err)
		assert.False(t, hasher.NeedsRehash(digest))
	})

	t.Run("bcrypt digest needs rehash", func(t *testing.T) {
		legacy, err := bcrypt.GenerateFromPassword([]byte("ahoy"), bcrypt.MinCost)
		require.NoError(t, err)
		assert.True(t, hasher.NeedsRehash(string(legacy)))
	})
}
