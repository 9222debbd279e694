// Package speech turns outgoing prompts into playable audio via the TTS
// collaborator.
package speech

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

// Synthesizer converts prompt text into an audio reference the telephony
// provider can play. An empty reference means nothing to play.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, lang types.Language) (string, error)
}

// New returns the HTTP synthesizer when a base URL is configured, otherwise
// the no-op.
func New(baseURL, token string, logger zerolog.Logger) Synthesizer {
	if baseURL == "" {
		logger.Info().Msg("speech synthesis disabled (SPEECH_BASE_URL empty)")
		return &Noop{}
	}
	return NewHTTPSynthesizer(baseURL, token, logger)
}

// HTTPSynthesizer calls the TTS service
type HTTPSynthesizer struct {
	baseURL string
	token   string
	client  *http.Client
	logger  zerolog.Logger
}

func NewHTTPSynthesizer(baseURL, token string, logger zerolog.Logger) *HTTPSynthesizer {
	return &HTTPSynthesizer{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logger.With().Str("component", "speech").Logger(),
	}
}

func (s *HTTPSynthesizer) Synthesize(ctx context.Context, text string, lang types.Language) (string, error) {
	payload := map[string]string{
		"text":     text,
		"language": string(lang),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal synthesis request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/synthesize", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create synthesis request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("speech service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("speech service returned %d: %s", resp.StatusCode, snippet)
	}

	var result struct {
		AudioURL string `json:"audioUrl"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode synthesis response: %w", err)
	}
	return result.AudioURL, nil
}

// Noop skips synthesis; prompts remain visible in the conversation snapshot
type Noop struct{}

func (n *Noop) Synthesize(_ context.Context, _ string, _ types.Language) (string, error) {
	return "", nil
}
