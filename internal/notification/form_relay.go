package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// FormRelay posts contact submissions to a third-party form endpoint,
// the secondary delivery path beside the transactional email.
type FormRelay struct {
	endpoint string
	client   *http.Client
}

// NewFormRelay creates a relay client. An empty endpoint disables it.
func NewFormRelay(endpoint string) *FormRelay {
	return &FormRelay{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Submit relays the form fields as JSON.
func (r *FormRelay) Submit(ctx context.Context, fields map[string]string) error {
	if r.endpoint == "" {
		return nil
	}

	body, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to encode form submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build form submission: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to relay form submission: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("form relay returned status %d", resp.StatusCode)
	}

	return nil
}
