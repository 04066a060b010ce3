// Copyright (c) 2026 Elib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package auth implements the two-step sign-in flow of the Elib platform.
//
// # Flow
//
//  1. Login: username and password are checked, then a one-time passcode is
//     stored and sent to the account's e-mail address.
//  2. Verify: the passcode is consumed and a signed access token (plus a
//     refresh token when "remember me" is set) is returned.
//
// Between the two steps the only state is the stored [OtpChallenge]. There
// are no server-side sessions.
package auth

import (
	"time"

	"github.com/taibuivan/elib/internal/platform/sec"
)

// Role is an authority granted to an account (ADMINISTRATOR, LIBRARIAN, READER).
type Role struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// User is a registered account as seen by the sign-in flow.
//
// # Rules
//   - Username is unique.
//   - PasswordHash is a bcrypt hash and never leaves the server.
//   - Inactive accounts cannot sign in.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Roles        []Role    `json:"roles"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// RoleNames returns the names of the user's roles in storage order.
func (user *User) RoleNames() []string {
	names := make([]string, 0, len(user.Roles))
	for _, role := range user.Roles {
		names = append(names, role.Name)
	}
	return names
}

// Principal converts the account into the identity carried by tokens.
func (user *User) Principal() sec.Principal {
	return sec.NewPrincipal(user.Username, user.RoleNames()...)
}

// AuthenticatedUser is the outcome of a successful password check.
type AuthenticatedUser struct {
	Principal sec.Principal

	// Email is where the passcode will be delivered.
	Email string
}

// Recipient identifies who a passcode is issued for and where it goes.
type Recipient struct {
	Username string
	Email    string
}

// OtpChallenge is the pending second factor of one username.
//
// # Rules
//   - At most one live challenge per username; issuing replaces the previous one.
//   - A challenge is consumed at most once and only while now <= ExpiresAt.
//   - Expiry is evaluated when validating. Storage TTL only reclaims space.
type OtpChallenge struct {
	Username  string    `json:"username"`
	Code      string    `json:"code"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	Consumed  bool      `json:"consumed"`
}

// IsExpired reports whether now is strictly after the expiry instant.
func (challenge *OtpChallenge) IsExpired(now time.Time) bool {
	return now.After(challenge.ExpiresAt)
}
