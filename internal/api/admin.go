package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dennisdiepolder/eduvoice/internal/auth"
	"github.com/dennisdiepolder/eduvoice/internal/cache"
	"github.com/dennisdiepolder/eduvoice/internal/storage"
	"github.com/dennisdiepolder/eduvoice/internal/types"
)

// AdminEngine is the orchestrator surface the admin endpoints drive
type AdminEngine interface {
	InitiateOutboundCall(phone, name, language string) (*types.Call, error)
	WipeCalls() int
}

// AdminHandler handles campaign dialing and destructive resets
type AdminHandler struct {
	engine  AdminEngine
	tracker *cache.LiveCallTracker
	store   storage.Store
	logger  zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(engine AdminEngine, tracker *cache.LiveCallTracker, store storage.Store, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		engine:  engine,
		tracker: tracker,
		store:   store,
		logger:  logger,
	}
}

// RequireAdmin middleware — only admin role allowed
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.GetUserFromContext(r.Context())
		if !ok || !auth.HasRole(claims, "admin") {
			w.Header().Set("Content-Type", "application/json")
			http.Error(w, `{"error":"admin role required"}`, http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSupervisorOrAdmin middleware — supervisor or admin role allowed
func RequireSupervisorOrAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.GetUserFromContext(r.Context())
		if !ok || (claims.Role != "admin" && claims.Role != "supervisor") {
			w.Header().Set("Content-Type", "application/json")
			http.Error(w, `{"error":"supervisor or admin role required"}`, http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// StartCampaign queues an outbound dial for every lead still in the "new"
// funnel stage, up to an optional count cap
func (h *AdminHandler) StartCampaign(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Count int `json:"count,omitempty"`
	}
	// empty body dials every new lead
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.Count <= 0 || req.Count > 1000 {
		req.Count = 1000
	}

	leads, err := h.store.ListLeads()
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list leads for campaign")
		http.Error(w, `{"error":"failed to list leads"}`, http.StatusInternalServerError)
		return
	}

	queued, failed := 0, 0
	for _, lead := range leads {
		if queued >= req.Count {
			break
		}
		if types.LeadStatus(lead.Status) != types.LeadNew {
			continue
		}
		if _, err := h.engine.InitiateOutboundCall(lead.Phone, lead.Name, lead.Language); err != nil {
			h.logger.Error().Err(err).Str("lead_id", lead.LeadID).Msg("campaign dial failed to queue")
			failed++
			continue
		}
		queued++
	}

	h.logger.Info().Int("queued", queued).Int("failed", failed).Msg("campaign started via admin")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": fmt.Sprintf("queued %d calls", queued),
		"queued":  queued,
		"failed":  failed,
	})
}

// InjectCalls dials a batch of synthetic test leads to exercise the dial
// queue and the conversation path end to end
func (h *AdminHandler) InjectCalls(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Count    int    `json:"count,omitempty"`
		Language string `json:"language,omitempty"`
	}
	// empty body injects a single test call
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.Count <= 0 {
		req.Count = 1
	}
	if req.Count > 50 {
		req.Count = 50
	}

	queued, failed := 0, 0
	for i := 0; i < req.Count; i++ {
		phone := fmt.Sprintf("+1555010%04d", i)
		name := fmt.Sprintf("Test Lead %d", i+1)
		if _, err := h.engine.InitiateOutboundCall(phone, name, req.Language); err != nil {
			h.logger.Error().Err(err).Str("phone", phone).Msg("test dial failed to queue")
			failed++
			continue
		}
		queued++
	}

	h.logger.Info().Int("queued", queued).Int("failed", failed).Msg("test calls injected via admin")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": fmt.Sprintf("injected %d test calls", queued),
		"queued":  queued,
		"failed":  failed,
	})
}

// WipeAllCalls force-ends every live call and clears the dial queue
func (h *AdminHandler) WipeAllCalls(w http.ResponseWriter, r *http.Request) {
	cleared := h.engine.WipeCalls()

	h.logger.Info().Int("cleared", cleared).Msg("all calls wiped via admin")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "all calls wiped",
		"cleared": cleared,
	})
}

// ResetMemory clears engine in-memory state (live calls + monitor tracker)
func (h *AdminHandler) ResetMemory(w http.ResponseWriter, r *http.Request) {
	callsCleared := h.engine.WipeCalls()
	trackedCleared := h.tracker.Wipe()

	h.logger.Info().
		Int("calls", callsCleared).
		Int("tracked", trackedCleared).
		Msg("engine memory reset")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":        "engine memory reset",
		"callsCleared":   callsCleared,
		"trackedCleared": trackedCleared,
	})
}

// TruncateStorage wipes all persistence tables
func (h *AdminHandler) TruncateStorage(w http.ResponseWriter, r *http.Request) {
	if err := h.store.TruncateAll(); err != nil {
		h.logger.Error().Err(err).Msg("failed to truncate storage tables")
		http.Error(w, fmt.Sprintf(`{"error":"failed to truncate: %s"}`, err), http.StatusInternalServerError)
		return
	}

	h.logger.Info().Msg("storage tables truncated")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "storage tables truncated",
	})
}
