// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Broadside Contributors

// Package mocks provides testify mocks for the account capability
// interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/broadside-game/broadside/internal/account"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

// MockUserRepository is a mock account.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

// NewMockUserRepository creates a MockUserRepository that asserts its
// expectations at test cleanup.
func NewMockUserRepository(t testingT) *MockUserRepository {
	m := &MockUserRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockUserRepository) FindByID(ctx context.Context, id int64) (*account.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*account.User)
	return user, args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*account.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*account.User)
	return user, args.Error(1)
}

func (m *MockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) ListByRank(ctx context.Context, ascending bool) ([]*account.User, error) {
	args := m.Called(ctx, ascending)
	users, _ := args.Get(0).([]*account.User)
	return users, args.Error(1)
}

func (m *MockUserRepository) Insert(ctx context.Context, user *account.User) (*account.User, error) {
	args := m.Called(ctx, user)
	created, _ := args.Get(0).(*account.User)
	return created, args.Error(1)
}

func (m *MockUserRepository) PartialUpdate(ctx context.Context, id int64, patch account.UserPatch) (*account.User, error) {
	args := m.Called(ctx, id, patch)
	updated, _ := args.Get(0).(*account.User)
	return updated, args.Error(1)
}

// MockPasswordHasher is a mock account.PasswordHasher.
type MockPasswordHasher struct {
	mock.Mock
}

// NewMockPasswordHasher creates a MockPasswordHasher that asserts its
// expectations at test cleanup.
func NewMockPasswordHasher(t testingT) *MockPasswordHasher {
	m := &MockPasswordHasher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *MockPasswordHasher) Verify(password, digest string) (bool, error) {
	args := m.Called(password, digest)
	return args.Bool(0), args.Error(1)
}

func (m *MockPasswordHasher) NeedsRehash(digest string) bool {
	args := m.Called(digest)
	return args.Bool(0)
}

// MockSessionStore is a mock account.SessionStore.
type MockSessionStore struct {
	mock.Mock
}

// NewMockSessionStore creates a MockSessionStore that asserts its
// expectations at test cleanup.
func NewMockSessionStore(t testingT) *MockSessionStore {
	m := &MockSessionStore{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockSessionStore) Get(ctx context.Context, contextID string) (int64, bool, error) {
	args := m.Called(ctx, contextID)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

func (m *MockSessionStore) Set(ctx context.Context, contextID string, userID int64) error {
	args := m.Called(ctx, contextID, userID)
	return args.Error(0)
}

func (m *MockSessionStore) Remove(ctx context.Context, contextID string) error {
	args := m.Called(ctx, contextID)
	return args.Error(0)
}

// Compile-time interface checks.
var (
	_ account.UserRepository = (*MockUserRepository)(nil)
	_ account.PasswordHasher = (*MockPasswordHasher)(nil)
	_ account.SessionStore   = (*MockSessionStore)(nil)
)
