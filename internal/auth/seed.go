// Copyright (c) 2026 Elib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taibuivan/elib/internal/platform/apperr"
	"github.com/taibuivan/elib/internal/platform/dberr"
	"github.com/taibuivan/elib/internal/platform/sec"
	"github.com/taibuivan/elib/internal/platform/validate"
)

// minSeedPasswordLength applies to bootstrap accounts only; regular accounts
// are managed outside this service.
const minSeedPasswordLength = 12

// SeedAccount describes a bootstrap account created at startup.
type SeedAccount struct {
	Username string
	Password string
	Email    string
	Roles    []string
}

/*
EnsureUser creates the account unless one with the same username exists.

Returns:
  - bool: true if the account was created by this call
  - error: VALIDATION_ERROR for a malformed account, otherwise hashing or store errors
*/
func EnsureUser(context context.Context, repository UserRepository, account SeedAccount) (bool, error) {
	if err := validateSeedAccount(account); err != nil {
		return false, err
	}

	_, err := repository.FindByUsernameWithRoles(context, account.Username)
	if err == nil {
		return false, nil
	}
	if !dberr.IsNotFound(err) {
		return false, fmt.Errorf("auth_seed_lookup_failed: %w", err)
	}

	hash, err := sec.HashPassword(account.Password)
	if err != nil {
		return false, fmt.Errorf("auth_seed_hash_failed: %w", err)
	}

	user := &User{
		Username:     account.Username,
		Email:        account.Email,
		PasswordHash: hash,
		IsActive:     true,
	}

	if err := repository.Create(context, user, account.Roles...); err != nil {
		// Another replica won the race.
		if apperr.HasCode(err, apperr.CodeConflict) {
			return false, nil
		}
		return false, fmt.Errorf("auth_seed_create_failed: %w", err)
	}

	slog.InfoContext(context, "seed_account_created",
		slog.String("username", account.Username),
		slog.Any("roles", account.Roles),
	)

	return true, nil
}

func validateSeedAccount(account SeedAccount) error {
	validator := &validate.Validator{}
	validator.
		Required(FieldUsername, account.Username).
		MaxLen(FieldUsername, account.Username, MaxUsernameLength).
		MinLen(FieldPassword, account.Password, minSeedPasswordLength).
		MaxLen(FieldPassword, account.Password, MaxPasswordLength).
		Email("email", account.Email)

	for _, role := range account.Roles {
		validator.OneOf("roles", role, sec.RoleAdministrator, sec.RoleLibrarian, sec.RoleReader)
	}

	return validator.Err()
}
