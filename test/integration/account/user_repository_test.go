// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Broadside Contributors

//go:build integration

package account_test

import (
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/broadside-game/broadside/internal/account"
	"github.com/broadside-game/broadside/internal/account/memory"
)

var _ = Describe("UserRepository", func() {
	AfterEach(func() {
		_, err := env.pool.Exec(env.ctx, `TRUNCATE users RESTART IDENTITY`)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("Insert", func() {
		It("assigns an id", func() {
			created, err := env.Users.Insert(env.ctx, newTestUser("alice", "alice@example.com"))
			Expect(err).NotTo(HaveOccurred())
			Expect(created.ID).To(BeNumerically(">", 0))
			Expect(created.Username).To(Equal("alice"))
		})

		It("rejects a duplicate username case-insensitively", func() {
			_, err := env.Users.Insert(env.ctx, newTestUser("alice", "alice@example.com"))
			Expect(err).NotTo(HaveOccurred())

			_, err = env.Users.Insert(env.ctx, newTestUser("ALICE", "other@example.com"))
			Expect(err).To(MatchError(account.ErrConflict))
		})

		It("rejects a duplicate email case-insensitively", func() {
			_, err := env.Users.Insert(env.ctx, newTestUser("alice", "alice@example.com"))
			Expect(err).NotTo(HaveOccurred())

			_, err = env.Users.Insert(env.ctx, newTestUser("bob", "ALICE@example.com"))
			Expect(err).To(MatchError(account.ErrConflict))
		})
	})

	Describe("FindByID", func() {
		It("returns the stored user", func() {
			created, err := env.Users.Insert(env.ctx, newTestUser("alice", "alice@example.com"))
			Expect(err).NotTo(HaveOccurred())

			found, err := env.Users.FindByID(env.ctx, created.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(found.Email).To(Equal("alice@example.com"))
			Expect(found.PasswordHash).To(Equal("$argon2id$test-digest"))
		})

		It("wraps not found for unknown ids", func() {
			_, err := env.Users.FindByID(env.ctx, 99999)
			Expect(err).To(MatchError(account.ErrNotFound))
		})
	})

	Describe("FindByEmail", func() {
		It("matches case-insensitively", func() {
			_, err := env.Users.Insert(env.ctx, newTestUser("alice", "alice@example.com"))
			Expect(err).NotTo(HaveOccurred())

			found, err := env.Users.FindByEmail(env.ctx, "ALICE@EXAMPLE.COM")
			Expect(err).NotTo(HaveOccurred())
			Expect(found.Username).To(Equal("alice"))
		})
	})

	Describe("Exists", func() {
		It("reports taken names and emails", func() {
			_, err := env.Users.Insert(env.ctx, newTestUser("alice", "alice@example.com"))
			Expect(err).NotTo(HaveOccurred())

			taken, err := env.Users.ExistsByUsername(env.ctx, "Alice")
			Expect(err).NotTo(HaveOccurred())
			Expect(taken).To(BeTrue())

			taken, err = env.Users.ExistsByEmail(env.ctx, "nobody@example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(taken).To(BeFalse())
		})
	})

	Describe("ListByRank", func() {
		BeforeEach(func() {
			for _, u := range []*account.User{
				{Username: "low", Email: "low@example.com", Rank: 1, PasswordHash: "h"},
				{Username: "high", Email: "high@example.com", Rank: 9, PasswordHash: "h"},
				{Username: "mid", Email: "mid@example.com", Rank: 5, PasswordHash: "h"},
			} {
				_, err := env.Users.Insert(env.ctx, u)
				Expect(err).NotTo(HaveOccurred())
			}
		})

		It("orders descending by default", func() {
			users, err := env.Users.ListByRank(env.ctx, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(users).To(HaveLen(3))
			Expect(users[0].Username).To(Equal("high"))
			Expect(users[2].Username).To(Equal("low"))
		})

		It("orders ascending on request", func() {
			users, err := env.Users.ListByRank(env.ctx, true)
			Expect(err).NotTo(HaveOccurred())
			Expect(users[0].Username).To(Equal("low"))
		})
	})

	Describe("PartialUpdate", func() {
		It("updates only the provided fields", func() {
			created, err := env.Users.Insert(env.ctx, newTestUser("alice", "alice@example.com"))
			Expect(err).NotTo(HaveOccurred())

			name := "alice_two"
			updated, err := env.Users.PartialUpdate(env.ctx, created.ID, account.UserPatch{Username: &name})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Username).To(Equal("alice_two"))
			Expect(updated.Email).To(Equal("alice@example.com"))
			Expect(updated.PasswordHash).To(Equal("$argon2id$test-digest"))
		})

		It("wraps not found for unknown ids", func() {
			name := "ghost"
			_, err := env.Users.PartialUpdate(env.ctx, 99999, account.UserPatch{Username: &name})
			Expect(err).To(MatchError(account.ErrNotFound))
		})

		It("surfaces unique violations as conflict", func() {
			_, err := env.Users.Insert(env.ctx, newTestUser("alice", "alice@example.com"))
			Expect(err).NotTo(HaveOccurred())
			created, err := env.Users.Insert(env.ctx, newTestUser("bob", "bob@example.com"))
			Expect(err).NotTo(HaveOccurred())

			email := "alice@example.com"
			_, err = env.Users.PartialUpdate(env.ctx, created.ID, account.UserPatch{Email: &email})
			Expect(err).To(MatchError(account.ErrConflict))
		})
	})
})

var _ = Describe("Account stack", func() {
	AfterEach(func() {
		_, err := env.pool.Exec(env.ctx, `TRUNCATE users RESTART IDENTITY`)
		Expect(err).NotTo(HaveOccurred())
	})

	It("registers, authenticates, and resolves a session end to end", func() {
		service, err := account.NewUserService(env.Users, account.NewArgon2idHasher())
		Expect(err).NotTo(HaveOccurred())
		sessions, err := account.NewSessionManager(env.Users, memory.NewSessionStore())
		Expect(err).NotTo(HaveOccurred())

		registered, err := service.Register(env.ctx, account.NewUser{
			Username: "gunner",
			Email:    "gunner@example.com",
			Password: "broadside-pass",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(registered.PasswordHash).To(BeEmpty())

		authed, err := service.Authenticate(env.ctx, "gunner@example.com", "broadside-pass")
		Expect(err).NotTo(HaveOccurred())
		Expect(authed.ID).To(Equal(registered.ID))

		contextID := account.NewContextID()
		Expect(sessions.Open(env.ctx, contextID, authed)).To(Succeed())

		current, err := sessions.CurrentUser(env.ctx, contextID)
		Expect(err).NotTo(HaveOccurred())
		Expect(current.Username).To(Equal("gunner"))

		Expect(sessions.Close(env.ctx, contextID)).To(Succeed())
		_, err = sessions.CurrentUser(env.ctx, contextID)
		Expect(err).To(MatchError(account.ErrForbidden))
	})
})
