package mail

import (
	"context"
	"log/slog"

	"gatekeeper/internal/domain/service"
)

// logMailer is the fallback transport for environments without SMTP
// configuration. It records the send without the token value itself.
type logMailer struct {
	logger *slog.Logger
}

// NewLogMailer is the constructor for logMailer.
func NewLogMailer(logger *slog.Logger) service.Mailer {
	return &logMailer{logger: logger}
}

// SendPasswordReset logs the delivery instead of sending it. The token is
// a live credential and stays out of the log.
func (m *logMailer) SendPasswordReset(ctx context.Context, email, _ string) error {
	m.logger.InfoContext(ctx, "Password reset mail suppressed (no SMTP configured)",
		slog.String("email", email))

	return nil
}
