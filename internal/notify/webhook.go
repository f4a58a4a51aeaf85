// Package notify delivers run results to the automation webhook that
// drives the downstream mail flow.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rise-pro/debt-aging/internal/drafts"
)

// WebhookClient posts draft payloads to a single automation webhook.
type WebhookClient struct {
	url        string
	httpClient *http.Client
}

// NewWebhookClient creates a new WebhookClient for the given URL.
// A nil httpClient gets a default with a 30 second timeout.
func NewWebhookClient(url string, httpClient *http.Client) *WebhookClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &WebhookClient{
		url:        url,
		httpClient: httpClient,
	}
}

// DraftsPayload is the body posted to the webhook.
type DraftsPayload struct {
	RunID  string         `json:"run_id"`
	SentAt time.Time      `json:"sent_at"`
	Drafts []drafts.Draft `json:"drafts"`
}

// SendDrafts posts the drafts of one run to the webhook. Any non-2xx
// response is an error so the job layer can retry.
func (c *WebhookClient) SendDrafts(ctx context.Context, runID string, draftList []drafts.Draft) error {
	payload := DraftsPayload{
		RunID:  runID,
		SentAt: time.Now(),
		Drafts: draftList,
	}
	return c.post(ctx, payload)
}

// Trigger fires the webhook with an empty drafts payload, used by the
// manual automation trigger endpoint.
func (c *WebhookClient) Trigger(ctx context.Context, runID string) error {
	return c.post(ctx, DraftsPayload{RunID: runID, SentAt: time.Now()})
}

func (c *WebhookClient) post(ctx context.Context, payload DraftsPayload) error {
	if c.url == "" {
		return fmt.Errorf("SendDrafts: webhook URL not configured")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("SendDrafts: marshaling payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("SendDrafts: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("SendDrafts: posting to webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("SendDrafts: webhook returned %d: %s", resp.StatusCode, detail)
	}
	return nil
}
