// Copyright (c) 2026 Elib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taibuivan/elib/internal/notify"
	"github.com/taibuivan/elib/internal/platform/apperr"
	"github.com/taibuivan/elib/internal/platform/sec"
)

// fakeUserRepository is an in-memory [UserRepository].
type fakeUserRepository struct {
	mu     sync.Mutex
	users  map[string]*User
	nextID int64
	err    error
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{users: make(map[string]*User)}
}

// add stores an active account with a bcrypt hash of password.
func (repository *fakeUserRepository) add(t *testing.T, username, password string, roles ...string) *User {
	t.Helper()

	hash, err := sec.HashPassword(password)
	require.NoError(t, err)

	user := &User{
		Username:     username,
		Email:        username + "@elib.test",
		PasswordHash: hash,
		IsActive:     true,
	}
	require.NoError(t, repository.Create(context.Background(), user, roles...))
	return user
}

func (repository *fakeUserRepository) setRoles(username string, roles ...string) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	user := repository.users[username]
	user.Roles = toRoles(roles)
}

func (repository *fakeUserRepository) remove(username string) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	delete(repository.users, username)
}

func (repository *fakeUserRepository) FindByUsernameWithRoles(_ context.Context, username string) (*User, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if repository.err != nil {
		return nil, repository.err
	}

	user, ok := repository.users[username]
	if !ok {
		return nil, apperr.NotFound("User")
	}

	clone := *user
	clone.Roles = append([]Role(nil), user.Roles...)
	return &clone, nil
}

func (repository *fakeUserRepository) Create(_ context.Context, user *User, roleNames ...string) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if _, exists := repository.users[user.Username]; exists {
		return apperr.Conflict("Username or email already exists")
	}

	repository.nextID++
	user.ID = repository.nextID
	user.Roles = toRoles(roleNames)

	stored := *user
	repository.users[user.Username] = &stored
	return nil
}

func toRoles(names []string) []Role {
	roles := make([]Role, 0, len(names))
	for index, name := range names {
		roles = append(roles, Role{ID: index + 1, Name: name})
	}
	return roles
}

// recordingSender captures every delivered message.
type recordingSender struct {
	mu       sync.Mutex
	messages []notify.Message
	err      error
}

func (sender *recordingSender) Send(_ context.Context, message notify.Message) error {
	sender.mu.Lock()
	defer sender.mu.Unlock()

	if sender.err != nil {
		return sender.err
	}
	sender.messages = append(sender.messages, message)
	return nil
}

func (sender *recordingSender) last(t *testing.T) notify.Message {
	t.Helper()

	sender.mu.Lock()
	defer sender.mu.Unlock()

	require.NotEmpty(t, sender.messages, "no message delivered")
	return sender.messages[len(sender.messages)-1]
}

// fixedCodes returns the given codes in order, then repeats the last one.
func fixedCodes(codes ...string) func(int) (string, error) {
	var mu sync.Mutex
	index := 0
	return func(int) (string, error) {
		mu.Lock()
		defer mu.Unlock()

		code := codes[index]
		if index < len(codes)-1 {
			index++
		}
		return code, nil
	}
}
