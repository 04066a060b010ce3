// Copyright (c) 2026 Elib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrChallengeNotFound is returned by [OtpRepository.Find] when no challenge is stored.
	ErrChallengeNotFound = errors.New("auth: no otp challenge stored")

	// ErrConsumeContention is returned by [OtpRepository.ConsumeIf] when
	// concurrent writes kept invalidating the optimistic lock.
	ErrConsumeContention = errors.New("auth: otp challenge kept changing during consume")
)

// UserRepository defines the data access contract for accounts and roles.
//
// # Implementations
//
// The canonical implementation is PostgreSQL ([PostgresUserRepository]).
type UserRepository interface {
	// FindByUsernameWithRoles returns the account and all of its roles.
	//
	// Returns [apperr.NotFound] if the account does not exist.
	FindByUsernameWithRoles(ctx context.Context, username string) (*User, error)

	// Create persists a new account and links it to the named roles.
	//
	// Returns [apperr.Conflict] if the username or email is taken.
	Create(ctx context.Context, user *User, roleNames ...string) error
}

// ConsumeFunc decides, inside the store's atomic section, whether the loaded
// challenge may be consumed.
type ConsumeFunc func(challenge OtpChallenge) bool

// OtpRepository stores at most one [OtpChallenge] per username.
//
// # Implementations
//
//   - [RedisOtpRepository]: shared across API replicas.
//   - [MemoryOtpRepository]: single process (development, tests).
type OtpRepository interface {
	// Save stores challenge as the only live challenge of its username,
	// replacing any previous one. retention is a garbage-collection TTL.
	Save(ctx context.Context, challenge *OtpChallenge, retention time.Duration) error

	// Find returns the stored challenge or [ErrChallengeNotFound].
	Find(ctx context.Context, username string) (*OtpChallenge, error)

	// ConsumeIf atomically loads the challenge of username and marks it
	// consumed when accept returns true. It reports whether it did.
	// A missing challenge reports false without calling accept.
	ConsumeIf(ctx context.Context, username string, accept ConsumeFunc) (bool, error)
}

// contextWithTimeout bounds a single store or delivery call.
func contextWithTimeout(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, timeout)
}
