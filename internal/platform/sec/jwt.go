// Copyright (c) 2026 Elib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing) from
// the domain logic. The auth domain consumes it through small interfaces so
// signing and parsing stay pure and independently testable.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taibuivan/elib/pkg/clock"
)

// MinSecretLength is the smallest accepted HMAC secret, in bytes.
const MinSecretLength = 32

// Values of the "typ" claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var (
	// ErrInvalidToken covers malformed tokens, bad signatures, disallowed
	// algorithms and missing subjects.
	ErrInvalidToken = errors.New("sec: invalid token")

	// ErrExpiredToken is returned for a correctly signed token whose exp has passed.
	ErrExpiredToken = errors.New("sec: expired token")
)

// AuthClaims represents the payload embedded inside every Elib JWT.
//
// The "auth" claim holds the principal's roles joined by commas so the
// middleware can rebuild the identity without touching the database.
// "typ" separates access tokens from refresh tokens.
type AuthClaims struct {
	jwt.RegisteredClaims

	Authorities string `json:"auth"`
	TokenType   string `json:"typ"`
}

// TokenConfig is the immutable signing configuration built once at startup.
type TokenConfig struct {
	// Secret is the HMAC key. Must be at least [MinSecretLength] bytes.
	Secret []byte

	// Issuer is written to and required in the "iss" claim when non-empty.
	Issuer string

	// AccessTTL is the lifetime of access tokens.
	AccessTTL time.Duration

	// RefreshTTL is the lifetime of refresh tokens.
	RefreshTTL time.Duration
}

// TokenPair is the result of a successful verification step.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// TokenService signs and verifies HS512 JWTs.
type TokenService struct {
	config TokenConfig
	clock  clock.Clock
	parser *jwt.Parser
}

// NewTokenService validates config and returns a ready [TokenService].
//
// # Parameters
//   - config: Signing secret, issuer and token lifetimes.
//   - clk: Time source used for iat/exp and for expiry checks.
func NewTokenService(config TokenConfig, clk clock.Clock) (*TokenService, error) {
	if len(config.Secret) < MinSecretLength {
		return nil, fmt.Errorf("sec: jwt secret must be at least %d bytes", MinSecretLength)
	}
	if config.AccessTTL <= 0 {
		return nil, errors.New("sec: access token ttl must be positive")
	}
	if config.RefreshTTL <= config.AccessTTL {
		return nil, errors.New("sec: refresh token ttl must exceed access token ttl")
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithTimeFunc(clk.Now),
		jwt.WithExpirationRequired(),
	}
	if config.Issuer != "" {
		options = append(options, jwt.WithIssuer(config.Issuer))
	}

	secret := make([]byte, len(config.Secret))
	copy(secret, config.Secret)
	config.Secret = secret

	return &TokenService{
		config: config,
		clock:  clk,
		parser: jwt.NewParser(options...),
	}, nil
}

// IssueTokens signs an access token and, when rememberMe is set, a refresh token.
//
// # Returns
//   - A [*TokenPair] whose RefreshToken is empty unless rememberMe is true.
func (service *TokenService) IssueTokens(principal Principal, rememberMe bool) (*TokenPair, error) {
	now := service.clock.Now()

	accessToken, err := service.sign(principal, TokenTypeAccess, now, service.config.AccessTTL)
	if err != nil {
		return nil, err
	}

	pair := &TokenPair{AccessToken: accessToken}
	if !rememberMe {
		return pair, nil
	}

	pair.RefreshToken, err = service.sign(principal, TokenTypeRefresh, now, service.config.RefreshTTL)
	if err != nil {
		return nil, err
	}

	return pair, nil
}

// ParseAndAuthenticate verifies an access token and rebuilds its [Principal].
//
// # Flow
//  1. Reject any algorithm other than HS512 (including "none").
//  2. Verify the HMAC signature.
//  3. Require now < exp on the injected clock.
//  4. Require typ "access"; refresh tokens are not bearer credentials.
//  5. Require a non-empty subject and split the "auth" claim on commas.
func (service *TokenService) ParseAndAuthenticate(tokenString string) (*Principal, error) {
	claims := &AuthClaims{}

	_, err := service.parser.ParseWithClaims(tokenString, claims, service.keyFunc)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.TokenType != TokenTypeAccess {
		return nil, fmt.Errorf("%w: token type %q", ErrInvalidToken, claims.TokenType)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	principal := NewPrincipal(claims.Subject, parseAuthorities(claims.Authorities)...)
	return &principal, nil
}

// sign builds and signs a single token valid for ttl from now.
func (service *TokenService) sign(principal Principal, tokenType string, now time.Time, ttl time.Duration) (string, error) {
	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal.Subject,
			Issuer:    service.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Authorities: principal.Authorities(),
		TokenType:   tokenType,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(service.config.Secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}
	return signed, nil
}

// keyFunc hands the HMAC secret to the parser after a second method check.
func (service *TokenService) keyFunc(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
	}
	return service.config.Secret, nil
}
