// Package mail implements the outbound email-transport collaborator over SMTP.
package mail

import (
	"context"
	"fmt"
	"net/url"

	"github.com/pkg/errors"
	gomail "github.com/wneessen/go-mail"

	"gatekeeper/config"
	"gatekeeper/internal/domain/service"
)

// smtpMailer delivers recovery messages through an SMTP relay using go-mail.
type smtpMailer struct {
	client   *gomail.Client
	from     string
	resetURL string
}

// NewSMTPMailer is the constructor for smtpMailer.
func NewSMTPMailer(cfg *config.SMTPConfig) (service.Mailer, error) {
	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	} else {
		// Local mail-catchers speak plain SMTP without auth or TLS.
		opts = append(opts, gomail.WithTLSPolicy(gomail.NoTLS))
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create smtp client")
	}

	return &smtpMailer{
		client:   client,
		from:     cfg.From,
		resetURL: cfg.ResetURL,
	}, nil
}

// SendPasswordReset delivers a reset message carrying the recovery link.
// The caller dispatches this off the request path; delivery failure is the
// caller's to log, never to surface.
func (m *smtpMailer) SendPasswordReset(ctx context.Context, email, token string) error {
	msg := gomail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return errors.Wrap(err, "invalid sender address")
	}
	if err := msg.To(email); err != nil {
		return errors.Wrap(err, "invalid recipient address")
	}

	link := fmt.Sprintf("%s?token=%s", m.resetURL, url.QueryEscape(token))

	msg.Subject("Password reset request")
	msg.SetBodyString(gomail.TypeTextPlain, fmt.Sprintf(
		"A password reset was requested for this address.\n\n"+
			"Follow this link to choose a new password:\n%s\n\n"+
			"The link is valid once and expires shortly. If you did not request "+
			"a reset, you can ignore this message.\n", link))

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return errors.Wrap(err, "failed to send password reset mail")
	}

	return nil
}
