package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/dennisdiepolder/eduvoice/internal/storage"
	"github.com/dennisdiepolder/eduvoice/internal/types"
)

// LeadHistoryHandler provides REST endpoints for lead history data
type LeadHistoryHandler struct {
	store  storage.Store
	logger zerolog.Logger
}

// NewLeadHistoryHandler creates a new LeadHistoryHandler
func NewLeadHistoryHandler(store storage.Store, logger zerolog.Logger) *LeadHistoryHandler {
	return &LeadHistoryHandler{
		store:  store,
		logger: logger.With().Str("component", "lead_history_handler").Logger(),
	}
}

// GetLead returns the lead profile
// GET /api/leads/{leadId}
func (h *LeadHistoryHandler) GetLead(w http.ResponseWriter, r *http.Request) {
	leadID := chi.URLParam(r, "leadId")
	if leadID == "" {
		http.Error(w, "leadId is required", http.StatusBadRequest)
		return
	}

	lead, err := h.store.GetLead(leadID)
	if err != nil {
		h.logger.Error().Err(err).Str("lead_id", leadID).Msg("failed to get lead")
		http.Error(w, "failed to retrieve lead", http.StatusInternalServerError)
		return
	}
	if lead == nil {
		http.Error(w, "lead not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(lead)
}

// GetCalls returns call records for the given lead on a specific date
// GET /api/leads/{leadId}/calls?date=YYYY-MM-DD
func (h *LeadHistoryHandler) GetCalls(w http.ResponseWriter, r *http.Request) {
	leadID := chi.URLParam(r, "leadId")
	if leadID == "" {
		http.Error(w, "leadId is required", http.StatusBadRequest)
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		http.Error(w, "date query parameter is required (YYYY-MM-DD)", http.StatusBadRequest)
		return
	}

	records, err := h.store.GetLeadCallsByDate(leadID, date)
	if err != nil {
		h.logger.Error().Err(err).
			Str("lead_id", leadID).
			Str("date", date).
			Msg("failed to get lead calls")
		http.Error(w, "failed to retrieve calls", http.StatusInternalServerError)
		return
	}

	if records == nil {
		records = []types.CallRecord{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(records)
}

// GetHandoffs returns the handoff history for a lead
// GET /api/leads/{leadId}/handoffs
func (h *LeadHistoryHandler) GetHandoffs(w http.ResponseWriter, r *http.Request) {
	leadID := chi.URLParam(r, "leadId")
	if leadID == "" {
		http.Error(w, "leadId is required", http.StatusBadRequest)
		return
	}

	handoffs, err := h.store.GetHandoffs(leadID)
	if err != nil {
		h.logger.Error().Err(err).Str("lead_id", leadID).Msg("failed to get handoffs")
		http.Error(w, "failed to retrieve handoffs", http.StatusInternalServerError)
		return
	}

	if handoffs == nil {
		handoffs = []types.HandoffRecord{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(handoffs)
}

// GetCallbacks returns scheduled and completed callbacks for a lead
// GET /api/leads/{leadId}/callbacks
func (h *LeadHistoryHandler) GetCallbacks(w http.ResponseWriter, r *http.Request) {
	leadID := chi.URLParam(r, "leadId")
	if leadID == "" {
		http.Error(w, "leadId is required", http.StatusBadRequest)
		return
	}

	callbacks, err := h.store.GetCallbacks(leadID)
	if err != nil {
		h.logger.Error().Err(err).Str("lead_id", leadID).Msg("failed to get callbacks")
		http.Error(w, "failed to retrieve callbacks", http.StatusInternalServerError)
		return
	}

	if callbacks == nil {
		callbacks = []types.CallbackRecord{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(callbacks)
}
