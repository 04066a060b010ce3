// Copyright (c) 2026 Elib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package notify delivers one-time passcodes and other short notices to users.
//
// # Channels
//
//   - [SMTPMailer]: direct e-mail through an SMTP relay (net/smtp).
//   - [SNSPublisher]: publishes to an AWS SNS topic for fan-out delivery.
//   - [LogSender]: writes the notice to the structured log (development only).
//
// Every channel honours the context deadline.
package notify

import (
	"context"
	"errors"
	"strings"
)

// ErrInvalidMessage is returned when a message lacks a recipient or body.
var ErrInvalidMessage = errors.New("notify: message requires a recipient and a body")

// Message is a single plain-text notice.
type Message struct {
	// To is the recipient e-mail address.
	To string

	// Username identifies the account the notice concerns.
	Username string

	Subject string
	Body    string
}

// Sender delivers a [Message] through one channel.
type Sender interface {
	Send(ctx context.Context, message Message) error
}

// validate rejects empty messages before any network I/O.
func (message Message) validate() error {
	if strings.TrimSpace(message.To) == "" || strings.TrimSpace(message.Body) == "" {
		return ErrInvalidMessage
	}
	return nil
}
