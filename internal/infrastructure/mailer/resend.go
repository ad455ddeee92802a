package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const DefaultBaseURL = "https://api.resend.com"

// Client sends transactional mail through the Resend REST API.
// A nil-keyed client is disabled and drops every send.
type Client struct {
	apiKey     string
	from       string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Resend client. from is the sender identity, e.g.
// "Dashboard <alerts@example.com>". baseURL is overridable for tests.
func NewClient(apiKey, from, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if from == "" {
		from = "Trading Dashboard <onboarding@resend.dev>"
	}
	return &Client{
		apiKey:  apiKey,
		from:    from,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// IsEnabled reports whether an API key is configured.
func (c *Client) IsEnabled() bool {
	return c != nil && c.apiKey != ""
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// Send delivers one HTML email. Returns an error on any non-2xx response;
// callers treat mail as fire-and-forget and only log failures.
func (c *Client) Send(ctx context.Context, to, subject, html string) error {
	if !c.IsEnabled() {
		return fmt.Errorf("mailer: not configured")
	}

	body, err := json.Marshal(sendRequest{
		From:    c.from,
		To:      []string{to},
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("mailer: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("mailer: send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("mailer: unexpected status %d", resp.StatusCode)
	}
	return nil
}
