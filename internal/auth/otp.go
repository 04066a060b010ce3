// Copyright (c) 2026 Elib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/big"
	"strings"
	"time"

	"github.com/taibuivan/elib/internal/notify"
	"github.com/taibuivan/elib/internal/platform/constants"
	"github.com/taibuivan/elib/internal/platform/ctxutil"
	"github.com/taibuivan/elib/pkg/clock"
)

// ErrOtpDeliveryFailure marks a challenge that was stored but could not be sent.
// The challenge stays valid.
var ErrOtpDeliveryFailure = errors.New("auth: otp delivery failed")

// OtpConfig holds the passcode policy.
type OtpConfig struct {
	TTL             time.Duration
	Length          int
	DeliveryTimeout time.Duration
}

// OtpManager issues, delivers and validates one-time passcodes.
type OtpManager struct {
	repository OtpRepository
	sender     notify.Sender
	clock      clock.Clock
	config     OtpConfig

	// generate returns a numeric code of the given length.
	generate func(length int) (string, error)
}

// NewOtpManager constructs an [OtpManager] that draws codes from crypto/rand.
func NewOtpManager(repository OtpRepository, sender notify.Sender, clk clock.Clock, config OtpConfig) *OtpManager {
	return &OtpManager{
		repository: repository,
		sender:     sender,
		clock:      clk,
		config:     config,
		generate: func(length int) (string, error) {
			return randomDigits(rand.Reader, length)
		},
	}
}

/*
Issue creates, stores and delivers a fresh passcode for recipient.

Parameters:
  - context: context.Context
  - recipient: Recipient (username and e-mail address)

Returns:
  - *OtpChallenge: The stored challenge
  - error: Store errors, or ErrOtpDeliveryFailure (wrapped) with a non-nil challenge

# Flow
 1. Generate a random numeric code.
 2. Store it, replacing any previous challenge of the username.
 3. Deliver it under the delivery timeout.
*/
func (manager *OtpManager) Issue(context context.Context, recipient Recipient) (*OtpChallenge, error) {
	logger := ctxutil.GetLogger(context)

	// ── 1. Code Generation ────────────────────────────────────────────────
	code, err := manager.generate(manager.config.Length)
	if err != nil {
		return nil, fmt.Errorf("otp_generate_failed: %w", err)
	}

	now := manager.clock.Now()
	challenge := &OtpChallenge{
		Username:  recipient.Username,
		Code:      code,
		IssuedAt:  now,
		ExpiresAt: now.Add(manager.config.TTL),
	}

	// ── 2. Persistence ────────────────────────────────────────────────────
	storeCtx, cancelStore := contextWithTimeout(context, constants.OtpStoreTimeout)
	defer cancelStore()

	if err := manager.repository.Save(storeCtx, challenge, manager.config.TTL+otpRetentionGrace); err != nil {
		return nil, fmt.Errorf("otp_save_failed: %w", err)
	}

	logger.InfoContext(context, "otp_issued",
		slog.String("username", recipient.Username),
		slog.Time("expires_at", challenge.ExpiresAt),
	)

	// ── 3. Delivery ───────────────────────────────────────────────────────
	deliveryCtx, cancelDelivery := contextWithTimeout(context, manager.config.DeliveryTimeout)
	defer cancelDelivery()

	err = manager.sender.Send(deliveryCtx, notify.Message{
		To:       recipient.Email,
		Username: recipient.Username,
		Subject:  constants.OtpMailSubject,
		Body:     otpMailBody(code, manager.config.TTL),
	})
	if err != nil {
		logger.WarnContext(context, "otp_delivery_failed",
			slog.String("username", recipient.Username),
			slog.String("error", err.Error()),
		)
		return challenge, fmt.Errorf("%w: %w", ErrOtpDeliveryFailure, err)
	}

	return challenge, nil
}

/*
Validate checks a submitted code and consumes the challenge on a match.

Returns false when no challenge exists, it was already consumed, it has
expired or the code differs. The comparison runs in constant time.

Returns:
  - bool: true exactly once per issued challenge
  - error: Store errors only. Lock contention counts as a rejection.
*/
func (manager *OtpManager) Validate(context context.Context, username, code string) (bool, error) {
	storeCtx, cancel := contextWithTimeout(context, constants.OtpStoreTimeout)
	defer cancel()

	now := manager.clock.Now()

	consumed, err := manager.repository.ConsumeIf(storeCtx, username, func(challenge OtpChallenge) bool {
		if challenge.Consumed || challenge.IsExpired(now) {
			return false
		}
		return subtle.ConstantTimeCompare([]byte(challenge.Code), []byte(code)) == 1
	})
	if errors.Is(err, ErrConsumeContention) {
		ctxutil.GetLogger(context).WarnContext(context, "otp_consume_contended", slog.String("username", username))
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("otp_consume_failed: %w", err)
	}

	return consumed, nil
}

// randomDigits draws length uniformly random decimal digits from source.
func randomDigits(source io.Reader, length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("otp length must be positive, got %d", length)
	}

	var builder strings.Builder
	builder.Grow(length)

	ten := big.NewInt(10)
	for range length {
		digit, err := rand.Int(source, ten)
		if err != nil {
			return "", err
		}
		builder.WriteByte(byte('0' + digit.Int64()))
	}

	return builder.String(), nil
}

func otpMailBody(code string, ttl time.Duration) string {
	return fmt.Sprintf(
		"Your Elib verification code is %s.\r\n\r\nIt expires in %d minutes and can be used once.\r\n",
		code, max(1, int(math.Ceil(ttl.Minutes()))),
	)
}
