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

// TokenProvider defines the contract for minting signed tokens.
//
// [sec.TokenService] is the production implementation.
type TokenProvider interface {
	// IssueTokens signs an access token, plus a refresh token when rememberMe is set.
	IssueTokens(principal sec.Principal, rememberMe bool) (*sec.TokenPair, error)
}

// TokenIssuer mints tokens for a username whose passcode was just accepted.
type TokenIssuer struct {
	userRepository UserRepository
	tokenProvider  TokenProvider
}

// NewTokenIssuer constructs a [TokenIssuer].
func NewTokenIssuer(userRepository UserRepository, tokenProvider TokenProvider) *TokenIssuer {
	return &TokenIssuer{
		userRepository: userRepository,
		tokenProvider:  tokenProvider,
	}
}

/*
IssueFromVerifiedOtp reloads the account and signs its tokens.

Description: Roles are read again rather than carried over from the password
step, so a role change between the two steps is reflected in the token.

Returns:
  - *sec.TokenPair: access token, plus refresh token when rememberMe is set
  - error: apperr.UserNotFound if the account is gone or deactivated
*/
func (issuer *TokenIssuer) IssueFromVerifiedOtp(context context.Context, username string, rememberMe bool) (*sec.TokenPair, error) {
	lookupCtx, cancel := contextWithTimeout(context, constants.UserStoreTimeout)
	defer cancel()

	user, err := issuer.userRepository.FindByUsernameWithRoles(lookupCtx, username)
	if err != nil {
		if dberr.IsNotFound(err) {
			return nil, apperr.UserNotFound()
		}
		return nil, fmt.Errorf("auth_tokens_lookup_failed: %w", err)
	}

	if !user.IsActive {
		return nil, apperr.UserNotFound()
	}

	pair, err := issuer.tokenProvider.IssueTokens(user.Principal(), rememberMe)
	if err != nil {
		return nil, fmt.Errorf("auth_tokens_sign_failed: %w", err)
	}

	return pair, nil
}
