// Package telephony adapts the call transport collaborator: an outbound
// Provider the engine drives, and a webhook receiver the provider drives
// back. The engine never talks to a vendor API directly.
package telephony

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Provider is the outbound telephony surface
type Provider interface {
	// Dial starts an outbound call. Progress arrives asynchronously on the
	// status webhook; a nil error only means the dial was accepted.
	Dial(ctx context.Context, callID, phone string) error
	Hangup(ctx context.Context, callID string) error
	// Transfer bridges the call to a human specialist queue
	Transfer(ctx context.Context, callID, reason string) error
	// Play plays a synthesized audio reference into the call
	Play(ctx context.Context, callID, audioRef string) error
}

// New returns the HTTP provider when a base URL is configured, otherwise the
// no-op (calls are then driven through the text channel and admin inject).
func New(baseURL, token, publicBaseURL string, logger zerolog.Logger) Provider {
	if baseURL == "" {
		logger.Info().Msg("telephony disabled (TELEPHONY_BASE_URL empty)")
		return &Noop{}
	}
	return NewHTTPProvider(baseURL, token, publicBaseURL, logger)
}

// HTTPProvider talks to the telephony service's REST surface
type HTTPProvider struct {
	baseURL       string
	token         string
	publicBaseURL string
	client        *http.Client
	logger        zerolog.Logger
}

func NewHTTPProvider(baseURL, token, publicBaseURL string, logger zerolog.Logger) *HTTPProvider {
	return &HTTPProvider{
		baseURL:       baseURL,
		token:         token,
		publicBaseURL: publicBaseURL,
		client:        &http.Client{Timeout: 10 * time.Second},
		logger:        logger.With().Str("component", "telephony").Logger(),
	}
}

func (p *HTTPProvider) Dial(ctx context.Context, callID, phone string) error {
	payload := map[string]string{
		"callId":            callID,
		"phone":             phone,
		"statusCallback":    p.publicBaseURL + "/internal/telephony/status",
		"utteranceCallback": p.publicBaseURL + "/internal/telephony/utterance",
	}
	return p.post(ctx, "/calls", payload)
}

func (p *HTTPProvider) Hangup(ctx context.Context, callID string) error {
	return p.post(ctx, fmt.Sprintf("/calls/%s/hangup", callID), nil)
}

func (p *HTTPProvider) Transfer(ctx context.Context, callID, reason string) error {
	return p.post(ctx, fmt.Sprintf("/calls/%s/transfer", callID), map[string]string{"reason": reason})
}

func (p *HTTPProvider) Play(ctx context.Context, callID, audioRef string) error {
	return p.post(ctx, fmt.Sprintf("/calls/%s/play", callID), map[string]string{"audioUrl": audioRef})
}

func (p *HTTPProvider) post(ctx context.Context, path string, payload interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal telephony payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create telephony request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("telephony provider unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("telephony provider returned %d on %s: %s", resp.StatusCode, path, snippet)
	}
	return nil
}

// Noop accepts every command without a transport behind it
type Noop struct{}

func (n *Noop) Dial(_ context.Context, _, _ string) error     { return nil }
func (n *Noop) Hangup(_ context.Context, _ string) error      { return nil }
func (n *Noop) Transfer(_ context.Context, _, _ string) error { return nil }
func (n *Noop) Play(_ context.Context, _, _ string) error     { return nil }
