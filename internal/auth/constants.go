// Copyright (c) 2026 Elib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import "time"

// # Request Fields

const (
	FieldUsername = "username"
	FieldPassword = "password"
	FieldOtpCode  = "otpCode"
)

// # Input Limits

const (
	// MaxUsernameLength mirrors the users.account.username column.
	MaxUsernameLength = 100

	// MaxPasswordLength is the bcrypt input limit in bytes.
	MaxPasswordLength = 72
)

// # Passcode Storage

const (
	// otpRetentionGrace keeps an expired challenge in storage a little longer
	// than its validity so late verifies still find (and reject) it.
	otpRetentionGrace = time.Minute

	// maxConsumeRetries bounds optimistic-lock retries in the Redis store.
	maxConsumeRetries = 5

	// timingEqualiserPassword is hashed once at startup and compared against
	// when the username is unknown.
	timingEqualiserPassword = "elib-timing-equaliser"
)
