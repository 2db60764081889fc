// Package notification implements the outbound boundaries: the
// transactional email API and the third-party form relay used as a
// secondary path for contact messages. Every send is best effort;
// callers log failures and never fail their own flow on one.
package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Template names understood by the transactional email provider.
const (
	TemplateOrderConfirmation = "order_confirmation"
	TemplatePasswordReset     = "password_reset"
	TemplateContactRelay      = "contact_relay"
)

// Mailer sends a templated transactional email with a key-value
// payload.
type Mailer interface {
	Send(ctx context.Context, template, to string, data map[string]string) error
}

// HTTPMailer posts to a transactional email HTTP API.
type HTTPMailer struct {
	endpoint string
	apiKey   string
	from     string
	client   *http.Client
}

// NewHTTPMailer creates a mailer for the configured endpoint. An empty
// endpoint yields a mailer that drops everything, which keeps local
// development working without a provider account.
func NewHTTPMailer(endpoint, apiKey, from string) *HTTPMailer {
	return &HTTPMailer{
		endpoint: endpoint,
		apiKey:   apiKey,
		from:     from,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type mailRequest struct {
	From     string            `json:"from"`
	To       string            `json:"to"`
	Template string            `json:"template"`
	Data     map[string]string `json:"data"`
}

// Send posts one templated message. Non-2xx responses are errors.
func (m *HTTPMailer) Send(ctx context.Context, template, to string, data map[string]string) error {
	if m.endpoint == "" {
		return nil
	}

	body, err := json.Marshal(mailRequest{
		From:     m.from,
		To:       to,
		Template: template,
		Data:     data,
	})
	if err != nil {
		return fmt.Errorf("failed to encode mail request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build mail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("mail provider returned status %d", resp.StatusCode)
	}

	return nil
}
