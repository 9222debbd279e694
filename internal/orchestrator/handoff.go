package orchestrator

import (
	"context"
	"time"

	"github.com/dennisdiepolder/eduvoice/internal/metrics"
	"github.com/dennisdiepolder/eduvoice/internal/types"
)

// runHandoff transfers the call to a human specialist. The lead summary is
// pushed to the CRM strictly before the telephony transfer starts; a failure
// at either step routes the conversation to callback scheduling instead.
// Callers hold the session lock.
func (e *Engine) runHandoff(s *session, reason types.EscalationReason) string {
	now := time.Now()
	h := types.Handoff{
		HandoffID: types.NewHandoffID(),
		CallID:    s.call.CallID,
		LeadID:    s.call.LeadID,
		Reason:    reason,
		Status:    types.HandoffPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.call.HandoffID = h.HandoffID
	metrics.Get().RecordHandoffStarted()
	e.publish(types.EventHandoffStarted, s, string(reason))
	e.persistHandoff(&h)

	ctx, cancel := context.WithTimeout(context.Background(), collaboratorTimeout)
	defer cancel()

	// summary first: the specialist must see the context before the bridge
	if err := e.crm.PushLeadSummary(ctx, s.call.LeadID, s.conv.Summary()); err != nil {
		e.logger.Error().Err(err).Str("handoff_id", h.HandoffID).Msg("summary push failed, aborting transfer")
		e.failHandoff(s, &h)
		return h.HandoffID
	}
	h.Status = types.HandoffSummarySent
	e.persistHandoff(&h)

	if err := e.provider.Transfer(ctx, s.call.CallID, string(reason)); err != nil {
		e.logger.Error().Err(err).Str("handoff_id", h.HandoffID).Msg("transfer failed")
		e.failHandoff(s, &h)
		return h.HandoffID
	}

	h.Status = types.HandoffTransferred
	e.persistHandoff(&h)
	s.outcome = "handoff"
	e.updateLeadStatus(s.call.LeadID, types.LeadHandoff)
	e.logger.Info().
		Str("handoff_id", h.HandoffID).
		Str("call_id", s.call.CallID).
		Str("reason", string(reason)).
		Msg("call transferred")
	e.finishCall(s, types.CallCompleted, types.EndReasonTransferred)
	return h.HandoffID
}

// failHandoff records the failure and re-opens the conversation so the
// machine can offer a callback
func (e *Engine) failHandoff(s *session, h *types.Handoff) {
	h.Status = types.HandoffFailed
	e.persistHandoff(h)
	metrics.Get().RecordHandoffFailed()

	prev := s.conv.State
	step := e.machine.HandoffFailed(s.conv)
	if step.Prompt != "" {
		e.speak(s, step.Prompt)
	}
	if step.State != prev {
		e.publish(types.EventStateChanged, s, string(prev)+" -> "+string(step.State))
	}
}

func (e *Engine) persistHandoff(h *types.Handoff) {
	h.UpdatedAt = time.Now()
	record := types.HandoffRecord{
		LeadID:    h.LeadID,
		RecordKey: types.HandoffKeyPrefix + h.HandoffID,
		HandoffID: h.HandoffID,
		CallID:    h.CallID,
		Reason:    string(h.Reason),
		Status:    string(h.Status),
		CreatedAt: h.CreatedAt.Format(time.RFC3339),
		UpdatedAt: h.UpdatedAt.Format(time.RFC3339),
	}
	if err := e.store.SaveHandoff(record); err != nil {
		e.logger.Error().Err(err).Str("handoff_id", h.HandoffID).Msg("failed to save handoff")
	}
}
