// Copyright (c) 2026 Elib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
)

// SMTPConfig holds the relay settings for [SMTPMailer].
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer sends plain-text e-mail through an SMTP relay.
type SMTPMailer struct {
	config SMTPConfig
	dialer *net.Dialer
}

// NewSMTPMailer creates a mailer for the given relay.
func NewSMTPMailer(config SMTPConfig) *SMTPMailer {
	return &SMTPMailer{config: config, dialer: &net.Dialer{}}
}

// Send implements [Sender].
//
// # Flow
//  1. Dial the relay under ctx and bind the connection deadline to it.
//  2. Upgrade with STARTTLS when the relay offers it.
//  3. Authenticate when a username is configured.
//  4. Transmit the envelope and the RFC 5322 message.
func (mailer *SMTPMailer) Send(ctx context.Context, message Message) error {
	if err := message.validate(); err != nil {
		return err
	}

	address := net.JoinHostPort(mailer.config.Host, strconv.Itoa(mailer.config.Port))

	// ── 1. Connection ─────────────────────────────────────────────────────
	conn, err := mailer.dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return fmt.Errorf("notify_smtp_dial_failed: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, mailer.config.Host)
	if err != nil {
		return fmt.Errorf("notify_smtp_handshake_failed: %w", err)
	}
	defer client.Close()

	// ── 2. Transport Security ─────────────────────────────────────────────
	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: mailer.config.Host, MinVersion: tls.VersionTLS12}); err != nil {
			return fmt.Errorf("notify_smtp_starttls_failed: %w", err)
		}
	}

	// ── 3. Authentication ─────────────────────────────────────────────────
	if mailer.config.Username != "" {
		auth := smtp.PlainAuth("", mailer.config.Username, mailer.config.Password, mailer.config.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("notify_smtp_auth_failed: %w", err)
		}
	}

	// ── 4. Transmission ───────────────────────────────────────────────────
	if err := client.Mail(mailer.config.From); err != nil {
		return fmt.Errorf("notify_smtp_mail_from_failed: %w", err)
	}
	if err := client.Rcpt(message.To); err != nil {
		return fmt.Errorf("notify_smtp_rcpt_failed: %w", err)
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("notify_smtp_data_failed: %w", err)
	}
	if _, err := writer.Write(buildMail(mailer.config.From, message)); err != nil {
		_ = writer.Close()
		return fmt.Errorf("notify_smtp_write_failed: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("notify_smtp_data_close_failed: %w", err)
	}

	return client.Quit()
}

// buildMail renders headers and body with CRLF line endings.
func buildMail(from string, message Message) []byte {
	var builder strings.Builder

	writeHeader := func(name, value string) {
		builder.WriteString(name)
		builder.WriteString(": ")
		builder.WriteString(stripNewlines(value))
		builder.WriteString("\r\n")
	}

	writeHeader("From", from)
	writeHeader("To", message.To)
	writeHeader("Subject", message.Subject)
	writeHeader("MIME-Version", "1.0")
	writeHeader("Content-Type", `text/plain; charset="utf-8"`)
	builder.WriteString("\r\n")
	builder.WriteString(strings.ReplaceAll(strings.ReplaceAll(message.Body, "\r\n", "\n"), "\n", "\r\n"))

	return []byte(builder.String())
}

// stripNewlines prevents header injection through user-controlled values.
func stripNewlines(value string) string {
	return strings.NewReplacer("\r", "", "\n", "").Replace(value)
}
