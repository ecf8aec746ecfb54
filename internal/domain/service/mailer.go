package service

import "context"

// Mailer is the outbound email-transport collaborator. The authentication
// path never awaits delivery; sends happen on a detached goroutine so that
// response latency cannot reveal whether an account exists.
type Mailer interface {
	// SendPasswordReset delivers a reset message carrying the recovery token
	// to the given address.
	SendPasswordReset(ctx context.Context, email, token string) error
}
