package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/dennisdiepolder/eduvoice/internal/storage"
	"github.com/dennisdiepolder/eduvoice/internal/types"
)

// LeadImportEntry represents a single lead in the batch import payload
type LeadImportEntry struct {
	Name     string `json:"name,omitempty"`
	Phone    string `json:"phone"`
	Language string `json:"language,omitempty"`
}

// LeadsHandler handles lead listing and batch import
type LeadsHandler struct {
	store  storage.Store
	logger zerolog.Logger
}

// NewLeadsHandler creates a new LeadsHandler
func NewLeadsHandler(store storage.Store, logger zerolog.Logger) *LeadsHandler {
	return &LeadsHandler{
		store:  store,
		logger: logger.With().Str("component", "leads").Logger(),
	}
}

// ListLeads handles GET /api/leads
func (h *LeadsHandler) ListLeads(w http.ResponseWriter, r *http.Request) {
	leads, err := h.store.ListLeads()
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list leads")
		http.Error(w, "failed to retrieve leads", http.StatusInternalServerError)
		return
	}
	if leads == nil {
		leads = []types.LeadRecord{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(leads)
}

// HandleImport handles POST /internal/leads/import. Entries whose phone is
// already known are skipped, so re-posting a campaign file is safe.
func (h *LeadsHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	var batch []LeadImportEntry
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	existing, err := h.store.ListLeads()
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list leads for import")
		http.Error(w, "failed to import leads", http.StatusInternalServerError)
		return
	}
	known := make(map[string]bool, len(existing))
	for _, lead := range existing {
		known[lead.Phone] = true
	}

	imported, skipped := 0, 0
	now := time.Now().Format(time.RFC3339)
	for _, entry := range batch {
		if entry.Phone == "" || known[entry.Phone] {
			skipped++
			continue
		}

		lang, ok := types.ParseLanguage(entry.Language)
		if !ok {
			lang = types.DefaultLanguage
		}
		lead := types.LeadRecord{
			LeadID:    types.NewLeadID(),
			RecordKey: types.LeadProfileKey,
			Name:      entry.Name,
			Phone:     entry.Phone,
			Language:  string(lang),
			Status:    string(types.LeadNew),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := h.store.SaveLead(lead); err != nil {
			h.logger.Error().Err(err).Str("phone", entry.Phone).Msg("failed to save imported lead")
			skipped++
			continue
		}
		known[entry.Phone] = true
		imported++
	}

	h.logger.Info().Int("imported", imported).Int("skipped", skipped).Msg("lead batch imported")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]int{"imported": imported, "skipped": skipped})
}
