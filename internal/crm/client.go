// Package crm pushes qualification outcomes to the CRM collaborator. The
// engine never blocks a call on CRM availability; pushes run on their own
// goroutines with request timeouts.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/dennisdiepolder/eduvoice/internal/types"
)

// Client is the CRM surface the orchestrator depends on
type Client interface {
	// PushLeadSummary delivers the qualification summary for a lead. It is
	// idempotent on the CRM side; re-pushing after a failed transfer is fine.
	PushLeadSummary(ctx context.Context, leadID string, summary types.LeadSummary) error
	// NotifyFollowUp sends a follow-up notification (callback booked,
	// lead unreachable) over the given channel.
	NotifyFollowUp(ctx context.Context, leadID, channel, message string) error
}

// New returns the HTTP client when a base URL is configured, otherwise the
// logging no-op.
func New(baseURL, token string, logger zerolog.Logger) Client {
	if baseURL == "" {
		logger.Info().Msg("CRM disabled (CRM_BASE_URL empty)")
		return &Noop{logger: logger}
	}
	return NewHTTPClient(baseURL, token, logger)
}

// HTTPClient talks to the CRM over its REST surface
type HTTPClient struct {
	baseURL string
	token   string
	client  *http.Client
	logger  zerolog.Logger
}

func NewHTTPClient(baseURL, token string, logger zerolog.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logger.With().Str("component", "crm").Logger(),
	}
}

func (c *HTTPClient) PushLeadSummary(ctx context.Context, leadID string, summary types.LeadSummary) error {
	return c.post(ctx, fmt.Sprintf("/leads/%s/summary", leadID), summary)
}

func (c *HTTPClient) NotifyFollowUp(ctx context.Context, leadID, channel, message string) error {
	payload := map[string]string{
		"leadId":  leadID,
		"channel": channel,
		"message": message,
	}
	return c.post(ctx, fmt.Sprintf("/leads/%s/notifications", leadID), payload)
}

func (c *HTTPClient) post(ctx context.Context, path string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal CRM payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create CRM request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("CRM unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("CRM returned %d on %s: %s", resp.StatusCode, path, snippet)
	}
	return nil
}

// Noop logs what would have been pushed so development runs still show
// qualification outcomes.
type Noop struct {
	logger zerolog.Logger
}

func (n *Noop) PushLeadSummary(_ context.Context, leadID string, summary types.LeadSummary) error {
	n.logger.Debug().
		Str("lead_id", leadID).
		Str("call_id", summary.CallID).
		Interface("collected", summary.Collected).
		Msg("CRM push skipped (disabled)")
	return nil
}

func (n *Noop) NotifyFollowUp(_ context.Context, leadID, channel, message string) error {
	n.logger.Debug().
		Str("lead_id", leadID).
		Str("channel", channel).
		Str("message", message).
		Msg("CRM follow-up skipped (disabled)")
	return nil
}
