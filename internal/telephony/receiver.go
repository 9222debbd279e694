package telephony

import (
	"encoding/json"
	"encoding/xml"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/dennisdiepolder/eduvoice/internal/metrics"
	"github.com/dennisdiepolder/eduvoice/internal/types"
)

// Engine is the part of the orchestrator the webhook receiver drives
type Engine interface {
	OnCallRinging(callID string)
	OnCallConnected(callID string)
	OnCallEnded(callID, reason string)
	OnUtterance(callID, text string, lang types.Language, asrConfidence float64)
	// OnInboundCall registers an incoming call and returns its engine call id
	OnInboundCall(phone string, lang types.Language) (string, error)
}

// Receiver translates provider callbacks into engine entry points
type Receiver struct {
	engine         Engine
	publicBaseURL  string
	logger         zerolog.Logger
	eventsReceived int64
	lastReceived   time.Time
	mu             sync.RWMutex
}

// NewReceiver creates a new webhook receiver
func NewReceiver(engine Engine, publicBaseURL string, logger zerolog.Logger) *Receiver {
	return &Receiver{
		engine:        engine,
		publicBaseURL: publicBaseURL,
		logger:        logger.With().Str("component", "telephony_webhook").Logger(),
	}
}

type statusPayload struct {
	CallID string `json:"callId"`
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// HandleStatus receives call state callbacks
func (r *Receiver) HandleStatus(w http.ResponseWriter, req *http.Request) {
	m := metrics.Get()

	var payload statusPayload
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		r.logger.Error().Err(err).Msg("failed to decode status callback")
		m.RecordWebhookError()
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if payload.CallID == "" || payload.Status == "" {
		m.RecordWebhookError()
		http.Error(w, "callId and status are required", http.StatusBadRequest)
		return
	}

	switch payload.Status {
	case "ringing":
		r.engine.OnCallRinging(payload.CallID)
	case "connected":
		r.engine.OnCallConnected(payload.CallID)
	case "ended":
		reason := payload.Reason
		if reason == "" {
			reason = types.EndReasonHangup
		}
		r.engine.OnCallEnded(payload.CallID, reason)
	case "no_answer", "busy", "failed":
		r.engine.OnCallEnded(payload.CallID, payload.Status)
	default:
		m.RecordWebhookError()
		http.Error(w, "unknown status", http.StatusBadRequest)
		return
	}

	r.recordEvent(m)
	w.WriteHeader(http.StatusOK)
}

type utterancePayload struct {
	CallID     string  `json:"callId"`
	Text       string  `json:"text"`
	Language   string  `json:"language,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
}

// HandleUtterance receives transcribed user speech
func (r *Receiver) HandleUtterance(w http.ResponseWriter, req *http.Request) {
	m := metrics.Get()

	var payload utterancePayload
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		r.logger.Error().Err(err).Msg("failed to decode utterance callback")
		m.RecordWebhookError()
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if payload.CallID == "" || strings.TrimSpace(payload.Text) == "" {
		m.RecordWebhookError()
		http.Error(w, "callId and text are required", http.StatusBadRequest)
		return
	}

	// An unknown language hint is dropped; the conversation keeps its own
	lang, _ := types.ParseLanguage(payload.Language)

	r.engine.OnUtterance(payload.CallID, payload.Text, lang, payload.Confidence)
	r.recordEvent(m)
	w.WriteHeader(http.StatusOK)
}

type voicePayload struct {
	From     string `json:"from"`
	Language string `json:"language,omitempty"`
}

type twimlStream struct {
	URL string `xml:"url,attr"`
}

type twimlConnect struct {
	Stream twimlStream `xml:"Stream"`
}

type twimlResponse struct {
	XMLName xml.Name      `xml:"Response"`
	Say     string        `xml:"Say,omitempty"`
	Connect *twimlConnect `xml:"Connect,omitempty"`
	Hangup  *struct{}     `xml:"Hangup,omitempty"`
}

// HandleVoice answers inbound calls with connection instructions
func (r *Receiver) HandleVoice(w http.ResponseWriter, req *http.Request) {
	m := metrics.Get()

	var payload voicePayload
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		r.logger.Error().Err(err).Msg("failed to decode voice callback")
		m.RecordWebhookError()
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if payload.From == "" {
		m.RecordWebhookError()
		http.Error(w, "from is required", http.StatusBadRequest)
		return
	}

	lang, ok := types.ParseLanguage(payload.Language)
	if !ok {
		lang = types.DefaultLanguage
	}

	callID, err := r.engine.OnInboundCall(payload.From, lang)
	if err != nil {
		r.logger.Warn().Err(err).Str("from", payload.From).Msg("inbound call rejected")
		r.writeTwiML(w, twimlResponse{
			Say:    "Sorry, we cannot take your call right now. Please try again later.",
			Hangup: &struct{}{},
		})
		return
	}

	r.recordEvent(m)
	r.writeTwiML(w, twimlResponse{
		Connect: &twimlConnect{Stream: twimlStream{URL: r.streamURL(callID)}},
	})
}

// GetStats returns receiver statistics
func (r *Receiver) GetStats(w http.ResponseWriter, req *http.Request) {
	r.mu.RLock()
	lastReceived := r.lastReceived
	r.mu.RUnlock()

	stats := map[string]interface{}{
		"events_received": atomic.LoadInt64(&r.eventsReceived),
		"last_received":   lastReceived,
		"engine":          metrics.Get().Snapshot(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

func (r *Receiver) recordEvent(m *metrics.Metrics) {
	m.RecordWebhookEvent()
	count := atomic.AddInt64(&r.eventsReceived, 1)
	r.mu.Lock()
	r.lastReceived = time.Now()
	r.mu.Unlock()

	if count%1000 == 0 {
		r.logger.Info().Int64("total_received", count).Msg("webhook events received")
	}
}

func (r *Receiver) writeTwiML(w http.ResponseWriter, resp twimlResponse) {
	w.Header().Set("Content-Type", "application/xml")
	w.Write([]byte(xml.Header))
	if err := xml.NewEncoder(w).Encode(resp); err != nil {
		r.logger.Error().Err(err).Msg("failed to encode voice response")
	}
}

func (r *Receiver) streamURL(callID string) string {
	base := r.publicBaseURL
	if strings.HasPrefix(base, "https://") {
		base = "wss://" + strings.TrimPrefix(base, "https://")
	} else if strings.HasPrefix(base, "http://") {
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base + "/internal/telephony/stream/" + callID
}
