// Copyright (c) 2026 Elib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"

	"github.com/taibuivan/elib/internal/platform/apperr"
	"github.com/taibuivan/elib/internal/platform/constants"
	"github.com/taibuivan/elib/internal/platform/dberr"
	"github.com/taibuivan/elib/internal/platform/sec"
)

// CredentialVerifier checks a username/password pair against stored accounts.
type CredentialVerifier struct {
	userRepository UserRepository

	// dummyHash is compared against when the username is unknown.
	dummyHash string
}

// NewCredentialVerifier constructs a [CredentialVerifier].
func NewCredentialVerifier(userRepository UserRepository) (*CredentialVerifier, error) {
	dummyHash, err := sec.HashPassword(timingEqualiserPassword)
	if err != nil {
		return nil, fmt.Errorf("auth_dummy_hash_failed: %w", err)
	}

	return &CredentialVerifier{
		userRepository: userRepository,
		dummyHash:      dummyHash,
	}, nil
}

/*
Verify authenticates a username/password pair.

Parameters:
  - context: context.Context
  - username: string
  - password: string (plain text)

Returns:
  - *AuthenticatedUser: principal and delivery address on success
  - error: apperr.InvalidCredentials for any miss or mismatch, wrapped store errors otherwise

# Flow
 1. Load the account and its roles.
 2. Unknown account: burn one bcrypt comparison, then reject.
 3. Compare the password hash and reject inactive accounts.
*/
func (verifier *CredentialVerifier) Verify(context context.Context, username, password string) (*AuthenticatedUser, error) {

	// ── 1. Account Lookup ─────────────────────────────────────────────────
	lookupCtx, cancel := contextWithTimeout(context, constants.UserStoreTimeout)
	defer cancel()

	user, err := verifier.userRepository.FindByUsernameWithRoles(lookupCtx, username)
	if err != nil {
		if dberr.IsNotFound(err) {
			// ── 2. Timing Equalisation ────────────────────────────────────
			sec.CheckPasswordHash(password, verifier.dummyHash)
			return nil, apperr.InvalidCredentials()
		}
		return nil, fmt.Errorf("auth_credentials_lookup_failed: %w", err)
	}

	// ── 3. Password Check ─────────────────────────────────────────────────
	if !sec.CheckPasswordHash(password, user.PasswordHash) || !user.IsActive {
		return nil, apperr.InvalidCredentials()
	}

	return &AuthenticatedUser{
		Principal: user.Principal(),
		Email:     user.Email,
	}, nil
}
