// Copyright (c) 2026 Elib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/taibuivan/elib/internal/platform/apperr"
	"github.com/taibuivan/elib/internal/platform/ctxutil"
	"github.com/taibuivan/elib/internal/platform/sec"
)

// # Collaborators

// CredentialChecker is satisfied by [*CredentialVerifier].
type CredentialChecker interface {
	Verify(ctx context.Context, username, password string) (*AuthenticatedUser, error)
}

// ChallengeManager is satisfied by [*OtpManager].
type ChallengeManager interface {
	Issue(ctx context.Context, recipient Recipient) (*OtpChallenge, error)
	Validate(ctx context.Context, username, code string) (bool, error)
}

// VerifiedTokenIssuer is satisfied by [*TokenIssuer].
type VerifiedTokenIssuer interface {
	IssueFromVerifiedOtp(ctx context.Context, username string, rememberMe bool) (*sec.TokenPair, error)
}

// # Service

// Service orchestrates the two-step sign-in.
//
// It holds no state between calls. Whether a username is awaiting its
// passcode is decided solely by the stored [OtpChallenge].
type Service struct {
	credentials CredentialChecker
	challenges  ChallengeManager
	tokens      VerifiedTokenIssuer
}

// NewService constructs a new [Service] with its collaborators.
func NewService(credentials CredentialChecker, challenges ChallengeManager, tokens VerifiedTokenIssuer) *Service {
	return &Service{
		credentials: credentials,
		challenges:  challenges,
		tokens:      tokens,
	}
}

// LoginInput holds the password step of a sign-in.
type LoginInput struct {
	Username string
	Password string
}

// VerifyInput holds the passcode step of a sign-in.
type VerifyInput struct {
	Username   string
	OtpCode    string
	RememberMe bool
}

/*
Login checks the password and sends a passcode. No token is issued.

Returns:
  - error: apperr.InvalidCredentials, or an internal error if the challenge could not be stored

# Business Rules
  - A failed delivery does not fail the login; the stored challenge remains usable.
*/
func (service *Service) Login(context context.Context, input LoginInput) error {

	// ── 1. Credential Verification ────────────────────────────────────────
	authenticated, err := service.credentials.Verify(context, input.Username, input.Password)
	if err != nil {
		return err
	}

	// ── 2. Challenge Issuance ─────────────────────────────────────────────
	_, err = service.challenges.Issue(context, Recipient{
		Username: authenticated.Principal.Subject,
		Email:    authenticated.Email,
	})
	if err != nil && !errors.Is(err, ErrOtpDeliveryFailure) {
		return fmt.Errorf("auth_service_issue_failed: %w", err)
	}

	ctxutil.GetLogger(context).InfoContext(context, "login_challenge_sent",
		slog.String("username", authenticated.Principal.Subject),
		slog.Bool("delivered", err == nil),
	)

	return nil
}

/*
Verify consumes the passcode and returns the signed tokens.

Returns:
  - *sec.TokenPair: access token, plus refresh token when RememberMe is set
  - error: apperr.InvalidOtp, apperr.UserNotFound or internal errors

# Flow
 1. Validate and consume the challenge.
 2. Reload roles and sign tokens.
*/
func (service *Service) Verify(context context.Context, input VerifyInput) (*sec.TokenPair, error) {

	// ── 1. Passcode Validation ────────────────────────────────────────────
	valid, err := service.challenges.Validate(context, input.Username, input.OtpCode)
	if err != nil {
		return nil, fmt.Errorf("auth_service_validate_failed: %w", err)
	}
	if !valid {
		return nil, apperr.InvalidOtp()
	}

	// ── 2. Token Issuance ─────────────────────────────────────────────────
	pair, err := service.tokens.IssueFromVerifiedOtp(context, input.Username, input.RememberMe)
	if err != nil {
		return nil, err
	}

	ctxutil.GetLogger(context).InfoContext(context, "tokens_issued",
		slog.String("username", input.Username),
		slog.Bool("refresh", pair.RefreshToken != ""),
	)

	return pair, nil
}
