package mailer

import (
	"context"
	"log/slog"
)

// Sender delivers transactional account emails. Delivery failures are
// surfaced to the caller, which decides whether they fail the request.
type Sender interface {
	SendVerificationEmail(ctx context.Context, to string, link string) error
	SendPasswordResetEmail(ctx context.Context, to string, link string) error
	SendPasswordChangedNotification(ctx context.Context, to string) error
}

// NoopSender logs instead of sending, for local development without an
// email provider configured.
type NoopSender struct{}

func (NoopSender) SendVerificationEmail(_ context.Context, to string, link string) error {
	slog.Info("email delivery disabled, skipping verification email", "to", to, "link", link)
	return nil
}

func (NoopSender) SendPasswordResetEmail(_ context.Context, to string, link string) error {
	slog.Info("email delivery disabled, skipping password reset email", "to", to, "link", link)
	return nil
}

func (NoopSender) SendPasswordChangedNotification(_ context.Context, to string) error {
	slog.Info("email delivery disabled, skipping password changed notification", "to", to)
	return nil
}
