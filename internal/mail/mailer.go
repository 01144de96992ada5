// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpress Contributors

// Package mail delivers password-reset tokens to account holders.
package mail

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/samber/oops"

	"github.com/inkpress/inkpress/internal/auth"
)

// SMTPMailer sends password-reset mail through a plain SMTP relay.
type SMTPMailer struct {
	addr string
	from string
	send func(addr, from string, to []string, msg []byte) error
}

// NewSMTPMailer creates an SMTPMailer targeting the relay at addr
// (host:port). from is the envelope and header sender.
func NewSMTPMailer(addr, from string) (*SMTPMailer, error) {
	if addr == "" {
		return nil, oops.Code("MAIL_CONFIG_INVALID").Errorf("smtp address is required")
	}
	if from == "" {
		return nil, oops.Code("MAIL_CONFIG_INVALID").Errorf("sender address is required")
	}
	return &SMTPMailer{
		addr: addr,
		from: from,
		send: func(addr, from string, to []string, msg []byte) error {
			//nolint:wrapcheck // wrapped by the caller with delivery context
			return smtp.SendMail(addr, nil, from, to, msg)
		},
	}, nil
}

// SendPasswordReset mails the reset token to the recipient.
func (m *SMTPMailer) SendPasswordReset(ctx context.Context, recipient, token string) error {
	if err := ctx.Err(); err != nil {
		return oops.Code("MAIL_SEND_FAILED").With("recipient", recipient).Wrap(err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.from)
	fmt.Fprintf(&b, "To: %s\r\n", recipient)
	b.WriteString("Subject: Password reset\r\n")
	b.WriteString("\r\n")
	b.WriteString("A password reset was requested for your account.\r\n\r\n")
	fmt.Fprintf(&b, "Your reset token: %s\r\n\r\n", token)
	b.WriteString("The token expires shortly. If you did not request this, ignore this message.\r\n")

	if err := m.send(m.addr, m.from, []string{recipient}, []byte(b.String())); err != nil {
		return oops.Code("MAIL_SEND_FAILED").
			With("operation", "send reset mail").
			With("recipient", recipient).
			Wrap(err)
	}
	return nil
}

// LogMailer writes reset tokens to the log instead of sending mail. Meant
// for development and test environments without an SMTP relay.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer creates a LogMailer. A nil logger uses the default.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMailer{logger: logger}
}

// SendPasswordReset logs the reset token.
func (m *LogMailer) SendPasswordReset(ctx context.Context, recipient, token string) error {
	m.logger.InfoContext(ctx, "password reset token issued",
		"recipient", recipient,
		"token", token,
	)
	return nil
}

// Compile-time interface checks.
var (
	_ auth.Mailer = (*SMTPMailer)(nil)
	_ auth.Mailer = (*LogMailer)(nil)
)
