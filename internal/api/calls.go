// Package api exposes the engine's operator surface over REST: call control,
// lead history and admin resets. Webhook endpoints live in internal/telephony.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/dennisdiepolder/eduvoice/internal/cache"
	"github.com/dennisdiepolder/eduvoice/internal/types"
)

// CallEngine is the orchestrator surface the call endpoints drive
type CallEngine interface {
	InitiateOutboundCall(phone, name, language string) (*types.Call, error)
	Snapshot(callID string) (types.CallSnapshot, bool)
	ProcessTurn(callID, text string, lang types.Language, asrConfidence float64) (types.ConvState, string, error)
	ForceEndCall(callID string) error
	TriggerHandoff(leadID string, reason types.EscalationReason) (string, error)
	QueueDepth() int
	AnswerRate() float64
}

// CallsHandler provides REST endpoints for call control
type CallsHandler struct {
	engine  CallEngine
	tracker *cache.LiveCallTracker
	logger  zerolog.Logger
}

// NewCallsHandler creates a new CallsHandler
func NewCallsHandler(engine CallEngine, tracker *cache.LiveCallTracker, logger zerolog.Logger) *CallsHandler {
	return &CallsHandler{
		engine:  engine,
		tracker: tracker,
		logger:  logger.With().Str("component", "calls_api").Logger(),
	}
}

// InitiateCall handles POST /api/calls
func (h *CallsHandler) InitiateCall(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phone    string `json:"phone"`
		Name     string `json:"name,omitempty"`
		Language string `json:"language,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}
	if req.Phone == "" {
		http.Error(w, `{"error":"phone is required"}`, http.StatusBadRequest)
		return
	}

	call, err := h.engine.InitiateOutboundCall(req.Phone, req.Name, req.Language)
	if err != nil {
		h.logger.Error().Err(err).Str("phone", req.Phone).Msg("failed to initiate call")
		http.Error(w, `{"error":"failed to initiate call"}`, http.StatusInternalServerError)
		return
	}

	h.logger.Info().
		Str("call_id", call.CallID).
		Str("lead_id", call.LeadID).
		Msg("call initiated via API")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(call)
}

// ListCalls handles GET /api/calls — the live view of every active call
func (h *CallsHandler) ListCalls(w http.ResponseWriter, r *http.Request) {
	calls := h.tracker.GetAll()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"activeCalls": len(calls),
		"queueDepth":  h.engine.QueueDepth(),
		"answerRate":  h.engine.AnswerRate(),
		"calls":       calls,
	})
}

// GetCall handles GET /api/calls/{callId} — the conversation snapshot
func (h *CallsHandler) GetCall(w http.ResponseWriter, r *http.Request) {
	callID := chi.URLParam(r, "callId")
	if callID == "" {
		http.Error(w, `{"error":"callId is required"}`, http.StatusBadRequest)
		return
	}

	snap, ok := h.engine.Snapshot(callID)
	if !ok {
		http.Error(w, `{"error":"no active call with that id"}`, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snap)
}

// PostUtterance handles POST /api/calls/{callId}/utterance — the text channel
// into a conversation, used by operator tooling and integration tests
func (h *CallsHandler) PostUtterance(w http.ResponseWriter, r *http.Request) {
	callID := chi.URLParam(r, "callId")
	if callID == "" {
		http.Error(w, `{"error":"callId is required"}`, http.StatusBadRequest)
		return
	}

	var req struct {
		Text     string `json:"text"`
		Language string `json:"language,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}
	if req.Text == "" {
		http.Error(w, `{"error":"text is required"}`, http.StatusBadRequest)
		return
	}

	lang, _ := types.ParseLanguage(req.Language)
	state, prompt, err := h.engine.ProcessTurn(callID, req.Text, lang, 0)
	if err != nil {
		http.Error(w, `{"error":"call not found or not accepting turns"}`, http.StatusConflict)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"callId": callID,
		"state":  string(state),
		"prompt": prompt,
	})
}

// EndCall handles DELETE /api/calls/{callId}
func (h *CallsHandler) EndCall(w http.ResponseWriter, r *http.Request) {
	callID := chi.URLParam(r, "callId")
	if callID == "" {
		http.Error(w, `{"error":"callId is required"}`, http.StatusBadRequest)
		return
	}

	if err := h.engine.ForceEndCall(callID); err != nil {
		http.Error(w, `{"error":"call not found or already ended"}`, http.StatusNotFound)
		return
	}

	h.logger.Info().Str("call_id", callID).Msg("force-ended call via API")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "call ended",
		"callId":  callID,
	})
}

// TriggerHandoff handles POST /api/leads/{leadId}/handoff
func (h *CallsHandler) TriggerHandoff(w http.ResponseWriter, r *http.Request) {
	leadID := chi.URLParam(r, "leadId")
	if leadID == "" {
		http.Error(w, `{"error":"leadId is required"}`, http.StatusBadRequest)
		return
	}

	var req struct {
		Reason string `json:"reason,omitempty"`
	}
	// body is optional; a bare POST means a manual handoff
	_ = json.NewDecoder(r.Body).Decode(&req)

	handoffID, err := h.engine.TriggerHandoff(leadID, types.EscalationReason(req.Reason))
	if err != nil {
		h.logger.Warn().Err(err).Str("lead_id", leadID).Msg("handoff request rejected")
		http.Error(w, `{"error":"lead has no transferable call"}`, http.StatusConflict)
		return
	}

	h.logger.Info().
		Str("lead_id", leadID).
		Str("handoff_id", handoffID).
		Msg("handoff triggered via API")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message":   "handoff started",
		"handoffId": handoffID,
		"leadId":    leadID,
	})
}
