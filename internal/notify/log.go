// Copyright (c) 2026 Elib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package notify

import (
	"context"
	"log/slog"
)

// LogSender writes notices to the structured log instead of delivering them.
//
// The body is logged at debug level only, so passcodes appear in local
// development output and never in a production log stream.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a [LogSender].
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send implements [Sender].
func (sender *LogSender) Send(ctx context.Context, message Message) error {
	if err := message.validate(); err != nil {
		return err
	}

	sender.logger.InfoContext(ctx, "notification_logged",
		slog.String("username", message.Username),
		slog.String("subject", message.Subject),
	)
	sender.logger.DebugContext(ctx, "notification_body",
		slog.String("username", message.Username),
		slog.String("body", message.Body),
	)
	return nil
}
