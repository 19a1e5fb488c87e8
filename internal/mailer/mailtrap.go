package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// MailtrapSender sends transactional emails through the Mailtrap send API.
type MailtrapSender struct {
	apiURL     string
	apiKey     string
	fromEmail  string
	fromName   string
	httpClient *http.Client
}

type MailtrapConfig struct {
	APIURL    string
	APIKey    string
	FromEmail string
	FromName  string
	Timeout   time.Duration
}

func NewMailtrapSender(cfg MailtrapConfig) (*MailtrapSender, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("mailtrap API key is required")
	}
	if cfg.FromEmail == "" {
		return nil, fmt.Errorf("mailtrap from address is required")
	}

	apiURL := cfg.APIURL
	if apiURL == "" {
		apiURL = "https://send.api.mailtrap.io/api/send"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &MailtrapSender{
		apiURL:     apiURL,
		apiKey:     cfg.APIKey,
		fromEmail:  cfg.FromEmail,
		fromName:   cfg.FromName,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

func (m *MailtrapSender) SendVerificationEmail(ctx context.Context, to string, link string) error {
	return m.send(ctx, to, "Verify your email address",
		fmt.Sprintf("Welcome! Please confirm your email address by opening this link: %s", link))
}

func (m *MailtrapSender) SendPasswordResetEmail(ctx context.Context, to string, link string) error {
	return m.send(ctx, to, "Reset your password",
		fmt.Sprintf("A password reset was requested for your account. Open this link to choose a new password: %s\n\nIf you did not request this, you can ignore this email.", link))
}

func (m *MailtrapSender) SendPasswordChangedNotification(ctx context.Context, to string) error {
	return m.send(ctx, to, "Your password was changed",
		"The password for your account was just changed. If this was not you, reset your password immediately.")
}

func (m *MailtrapSender) send(ctx context.Context, to string, subject string, text string) error {
	reqBody := map[string]any{
		"from": map[string]string{
			"email": m.fromEmail,
			"name":  m.fromName,
		},
		"to": []map[string]string{
			{"email": to},
		},
		"subject": subject,
		"text":    text,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal email request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.apiURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		slog.Warn("mailtrap API rejected email", "status", resp.StatusCode, "body", string(raw))
		return fmt.Errorf("mailtrap API returned status %d", resp.StatusCode)
	}

	slog.Debug("email sent", "to", to, "subject", subject)
	return nil
}
