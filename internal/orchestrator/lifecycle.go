package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dennisdiepolder/eduvoice/internal/metrics"
	"github.com/dennisdiepolder/eduvoice/internal/types"
)

const dateLayout = "2006-01-02"

// InitiateOutboundCall queues a dial to a prospective applicant. The lead is
// resolved by phone number and created when unknown.
func (e *Engine) InitiateOutboundCall(phone, name, language string) (*types.Call, error) {
	if phone == "" {
		return nil, errors.New("phone is required")
	}

	lang := e.resolveLanguage(language)
	lead, err := e.findOrCreateLead(phone, name, lang)
	if err != nil {
		return nil, err
	}

	return e.startOutbound(lead, 0), nil
}

// startOutbound creates the session and queues the dial
func (e *Engine) startOutbound(lead *types.LeadRecord, retryCount int) *types.Call {
	call := &types.Call{
		CallID:     types.NewCallID(),
		LeadID:     lead.LeadID,
		Phone:      lead.Phone,
		Direction:  types.DirectionOutbound,
		State:      types.CallInitiated,
		Language:   e.resolveLanguage(lead.Language),
		RetryCount: retryCount,
		StartTime:  time.Now(),
	}
	s := &session{call: call}
	e.register(s)

	s.mu.Lock()
	e.updateTracker(s)
	e.publish(types.EventCallInitiated, s, string(call.Language))
	s.mu.Unlock()

	metrics.Get().RecordCallInitiated()
	e.dials.Enqueue(call.CallID)

	e.logger.Info().
		Str("call_id", call.CallID).
		Str("lead_id", lead.LeadID).
		Int("retry_count", retryCount).
		Int("queue_depth", e.dials.Len()).
		Msg("outbound call queued")
	return call
}

// OnInboundCall registers a caller-initiated conversation. The telephony leg
// is already live when the webhook fires, so the call starts connected.
func (e *Engine) OnInboundCall(phone string, lang types.Language) (string, error) {
	if phone == "" {
		return "", errors.New("caller number is required")
	}
	if lang == "" {
		lang = e.resolveLanguage("")
	}

	lead, err := e.findOrCreateLead(phone, "", lang)
	if err != nil {
		return "", err
	}

	now := time.Now()
	call := &types.Call{
		CallID:      types.NewCallID(),
		LeadID:      lead.LeadID,
		Phone:       phone,
		Direction:   types.DirectionInbound,
		State:       types.CallConnected,
		Language:    lang,
		StartTime:   now,
		ConnectTime: &now,
	}
	s := &session{call: call}
	s.conv = types.NewConversationContext(call.CallID, lead.LeadID, lang, types.StateIntentConfirmation)
	e.register(s)

	s.mu.Lock()
	defer s.mu.Unlock()

	metrics.Get().RecordCallInitiated()
	metrics.Get().RecordCallConnected()
	e.publish(types.EventCallInitiated, s, "inbound")
	e.publish(types.EventCallConnected, s, "")

	step := e.machine.Begin(s.conv)
	e.speak(s, step.Prompt)
	e.moveCallState(s, types.CallInProgress)
	e.saveConv(s)
	e.updateTracker(s)
	e.armSilence(s)
	e.updateLeadStatus(lead.LeadID, types.LeadContacted)

	e.logger.Info().
		Str("call_id", call.CallID).
		Str("lead_id", lead.LeadID).
		Str("language", string(lang)).
		Msg("inbound call accepted")
	return call.CallID, nil
}

// OnCallRinging handles the provider's signal that a dial reached the handset
func (e *Engine) OnCallRinging(callID string) {
	s := e.session(callID)
	if s == nil {
		e.logger.Warn().Str("call_id", callID).Msg("ringing status for unknown call")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return
	}
	// a late ringing after the call already answered is out-of-order noise
	if s.call.State != types.CallDialing {
		e.logger.Debug().Str("call_id", callID).Str("state", string(s.call.State)).Msg("ringing status ignored")
		return
	}
	if !e.moveCallState(s, types.CallRinging) {
		return
	}
	e.updateTracker(s)
	e.logger.Debug().Str("call_id", callID).Msg("call ringing")
}

// OnCallConnected handles the provider's answer signal for an outbound dial
func (e *Engine) OnCallConnected(callID string) {
	s := e.session(callID)
	if s == nil {
		e.logger.Warn().Str("call_id", callID).Msg("connected status for unknown call")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return
	}
	if s.call.State == types.CallConnected || s.call.State == types.CallInProgress {
		e.logger.Debug().Str("call_id", callID).Msg("duplicate connected status")
		return
	}
	if !e.moveCallState(s, types.CallConnected) {
		return
	}

	now := time.Now()
	s.call.ConnectTime = &now
	if !s.dialedAt.IsZero() {
		e.answers.RecordOutcome(now.Sub(s.dialedAt) <= AnswerThreshold)
	}
	metrics.Get().RecordCallConnected()
	e.publish(types.EventCallConnected, s, "")
	e.updateLeadStatus(s.call.LeadID, types.LeadContacted)

	s.conv = types.NewConversationContext(callID, s.call.LeadID, s.call.Language, types.StateGreeting)
	step := e.machine.Begin(s.conv)
	e.speak(s, step.Prompt)
	e.moveCallState(s, types.CallInProgress)
	e.saveConv(s)
	e.updateTracker(s)
	e.armSilence(s)
}

// OnUtterance processes one transcribed user utterance through the
// interpreter and the conversation machine. Turns of one call are strictly
// sequential under the session lock.
func (e *Engine) OnUtterance(callID, text string, lang types.Language, asrConfidence float64) {
	if _, _, err := e.ProcessTurn(callID, text, lang, asrConfidence); err != nil {
		e.logger.Warn().Err(err).Str("call_id", callID).Msg("utterance dropped")
	}
}

// ProcessTurn drives one user turn and reports the resulting conversation
// state and the prompt spoken back. The voice path discards the return
// values; the text channel of the operator API relays them.
func (e *Engine) ProcessTurn(callID, text string, lang types.Language, asrConfidence float64) (types.ConvState, string, error) {
	s := e.session(callID)
	if s == nil {
		return "", "", fmt.Errorf("no active call %s", callID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done || s.conv == nil || s.conv.State.IsTerminal() {
		return "", "", fmt.Errorf("call %s is not accepting turns", callID)
	}
	e.stopSilence(s)

	// an idle gap past the retention window invalidates collected answers;
	// the conversation restarts instead of resuming
	if s.conv.ExpiredAt(time.Now()) {
		e.logger.Info().Str("call_id", callID).Msg("conversation context expired, restarting")
		initial := types.StateGreeting
		if s.call.Direction == types.DirectionInbound {
			initial = types.StateIntentConfirmation
		}
		s.conv = types.NewConversationContext(callID, s.call.LeadID, s.call.Language, initial)
		step := e.machine.Begin(s.conv)
		e.afterStep(s, initial, step)
		return step.State, step.Prompt, nil
	}

	res, err := e.interp.Interpret(context.Background(), text, s.conv.Language, s.conv.PendingQuestion())
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			metrics.Get().RecordInterpreterTimeout()
		}
		metrics.Get().RecordInterpreterFallback()
		res = e.interp.ExtractFallback(text, s.conv.Language, s.conv.PendingQuestion())
	}
	// the transcript confidence caps the pipeline confidence
	if asrConfidence > 0 && asrConfidence < res.Confidence {
		res.Confidence = asrConfidence
	}
	if res.Language == "" && lang != "" && lang != s.conv.Language {
		res.Language = lang
	}
	s.lastRes = res

	prev := s.conv.State
	step := e.machine.Step(s.conv, text, res)
	metrics.Get().RecordTurnProcessed()
	e.publish(types.EventTurnProcessed, s, string(res.Intent))
	e.afterStep(s, prev, step)
	return step.State, step.Prompt, nil
}

// OnCallEnded handles the provider's end-of-call signal
func (e *Engine) OnCallEnded(callID, reason string) {
	s := e.session(callID)
	if s == nil {
		e.logger.Warn().Str("call_id", callID).Str("reason", reason).Msg("end status for unknown call")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return
	}

	var final types.CallState
	switch reason {
	case types.EndReasonNoAnswer:
		final = types.CallNoAnswer
	case types.EndReasonBusy:
		final = types.CallBusy
	case types.EndReasonFailed:
		final = types.CallFailed
	default:
		// a hangup before the call ever connected is an unanswered dial
		if s.call.ConnectTime == nil {
			final = types.CallNoAnswer
		} else {
			final = types.CallCompleted
		}
	}
	e.finishCall(s, final, reason)
}

// finishCall retires a session: terminal state, metrics, monitor removal,
// retry policy, persistence. Callers hold the session lock.
func (e *Engine) finishCall(s *session, final types.CallState, reason string) {
	if s.done {
		return
	}
	s.done = true
	e.stopSilence(s)

	now := time.Now()
	s.call.EndTime = &now
	s.call.EndReason = reason

	cur := s.call.State
	switch {
	case types.CanTransition(cur, final):
		s.call.State = final
	case types.CanTransition(cur, types.CallEnding) && types.CanTransition(types.CallEnding, final):
		s.call.State = final
	default:
		e.logger.Error().
			Str("call_id", s.call.CallID).
			Str("from", string(cur)).
			Str("to", string(final)).
			Msg("forcing terminal call state")
		s.call.State = final
	}

	// an outbound dial that never connected counts against the answer rate
	if s.call.Direction == types.DirectionOutbound && s.call.ConnectTime == nil &&
		!s.dialedAt.IsZero() && reason != types.EndReasonForceEnded {
		e.answers.RecordOutcome(false)
	}

	if final == types.CallCompleted {
		metrics.Get().RecordCallCompleted()
	} else {
		metrics.Get().RecordCallFailed()
	}
	e.publish(types.EventCallEnded, s, reason)

	e.unregister(s.call.CallID)
	e.tracker.Remove(s.call.CallID)
	e.deleteConv(s.call.CallID)

	if final.Retryable() && s.call.Direction == types.DirectionOutbound && reason != types.EndReasonForceEnded {
		e.scheduleRetry(s)
	}

	e.persistCallRecord(s)

	e.logger.Info().
		Str("call_id", s.call.CallID).
		Str("lead_id", s.call.LeadID).
		Str("final_state", string(final)).
		Str("reason", reason).
		Str("outcome", s.outcome).
		Msg("call finished")
}

func (e *Engine) deleteConv(callID string) {
	ctx, cancel := context.WithTimeout(context.Background(), collaboratorTimeout)
	defer cancel()
	if err := e.convos.Delete(ctx, callID); err != nil {
		e.logger.Warn().Err(err).Str("call_id", callID).Msg("failed to delete conversation context")
	}
}

// persistCallRecord writes the durable record asynchronously. Callers hold
// the session lock; the record is built before the goroutine starts.
func (e *Engine) persistCallRecord(s *session) {
	record := e.buildCallRecord(s)
	go func() {
		if err := e.store.SaveCallRecord(record); err != nil {
			e.logger.Error().Err(err).Str("call_id", record.CallID).Msg("failed to save call record")
		}
	}()
}

func (e *Engine) buildCallRecord(s *session) types.CallRecord {
	call := s.call
	record := types.CallRecord{
		DateKey:    call.StartTime.Format(dateLayout),
		CallID:     call.CallID,
		LeadID:     call.LeadID,
		Phone:      call.Phone,
		Direction:  string(call.Direction),
		Language:   string(call.Language),
		FinalState: string(call.State),
		EndReason:  call.EndReason,
		RetryCount: call.RetryCount,
		LastError:  call.LastError,
		StartTime:  call.StartTime.Format(time.RFC3339),
		HandoffID:  call.HandoffID,
		Outcome:    s.outcome,
	}
	if record.Outcome == "" {
		record.Outcome = "incomplete"
	}
	if call.RetryAt != nil {
		record.RetryAt = call.RetryAt.Format(time.RFC3339)
	}
	if call.ConnectTime != nil {
		record.ConnectTime = call.ConnectTime.Format(time.RFC3339)
	}
	if call.EndTime != nil {
		record.EndTime = call.EndTime.Format(time.RFC3339)
		if call.ConnectTime != nil {
			record.DurationSec = call.EndTime.Sub(*call.ConnectTime).Seconds()
		}
	}
	if s.conv != nil {
		record.Turns = s.conv.TurnSeq
		if s.conv.Eligibility != nil {
			record.Category = string(s.conv.Eligibility.Category)
		}
	}
	return record
}

// ForceEndCall terminates a call on an operator's request. No retry is
// scheduled for force-ended calls.
func (e *Engine) ForceEndCall(callID string) error {
	s := e.session(callID)
	if s == nil {
		return fmt.Errorf("no active call %s", callID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return fmt.Errorf("call %s already ended", callID)
	}

	e.dials.Remove(callID)

	final := types.CallFailed
	switch s.call.State {
	case types.CallDialing, types.CallRinging, types.CallConnected, types.CallInProgress:
		e.hangup(s)
		if s.call.ConnectTime != nil {
			final = types.CallCompleted
		}
	}
	e.finishCall(s, final, types.EndReasonForceEnded)
	return nil
}

// TriggerHandoff forces a transfer of the lead's active call
func (e *Engine) TriggerHandoff(leadID string, reason types.EscalationReason) (string, error) {
	if reason == "" {
		reason = types.EscalationManual
	}
	s := e.sessionByLead(leadID)
	if s == nil {
		return "", fmt.Errorf("no active call for lead %s", leadID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done || s.conv == nil {
		return "", fmt.Errorf("lead %s has no conversation in progress", leadID)
	}

	prev := s.conv.State
	step := e.machine.ForceHandoff(s.conv, reason)
	if !step.Handoff {
		return "", fmt.Errorf("call %s is not in a transferable state", s.call.CallID)
	}
	e.speak(s, step.Prompt)
	if step.State != prev {
		e.publish(types.EventStateChanged, s, string(prev)+" -> "+string(step.State))
	}

	handoffID := e.runHandoff(s, s.conv.Escalation)
	if !s.done {
		// transfer failed; the conversation continues toward a callback
		e.saveConv(s)
		e.updateTracker(s)
		e.armSilence(s)
	}
	return handoffID, nil
}

// WipeCalls force-ends every live call and clears the dial queue. Admin only.
func (e *Engine) WipeCalls() int {
	n := 0
	for _, callID := range e.dials.Wipe() {
		if s := e.session(callID); s != nil {
			s.mu.Lock()
			e.finishCall(s, types.CallFailed, types.EndReasonForceEnded)
			s.mu.Unlock()
			n++
		}
	}

	e.mu.RLock()
	ids := make([]string, 0, len(e.sessions))
	for id := range e.sessions {
		ids = append(ids, id)
	}
	e.mu.RUnlock()

	for _, id := range ids {
		if err := e.ForceEndCall(id); err == nil {
			n++
		}
	}
	e.logger.Info().Int("cleared", n).Msg("wiped all calls")
	return n
}

// onQualified copies the qualification outcome onto the durable lead and
// pushes the summary to the CRM. Callers hold the session lock.
func (e *Engine) onQualified(s *session) {
	s.outcome = "qualified"

	lead, err := e.store.GetLead(s.call.LeadID)
	if err != nil || lead == nil {
		e.logger.Error().Err(err).Str("lead_id", s.call.LeadID).Msg("failed to load lead at qualification")
	} else {
		lead.Status = string(types.LeadQualified)
		lead.Collected = make(map[string]string, len(s.conv.Collected))
		for k, v := range s.conv.Collected {
			lead.Collected[k] = v
		}
		if s.conv.Eligibility != nil {
			lead.Category = string(s.conv.Eligibility.Category)
			lead.Urgency = string(s.conv.Eligibility.Urgency)
		}
		lead.UpdatedAt = time.Now().Format(time.RFC3339)
		if err := e.store.SaveLead(*lead); err != nil {
			e.logger.Error().Err(err).Str("lead_id", lead.LeadID).Msg("failed to save qualified lead")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), collaboratorTimeout)
	defer cancel()
	if err := e.crm.PushLeadSummary(ctx, s.call.LeadID, s.conv.Summary()); err != nil {
		// not fatal: the summary is re-pushed before any handoff
		e.logger.Warn().Err(err).Str("lead_id", s.call.LeadID).Msg("summary push failed at qualification")
	}
	e.logger.Info().
		Str("call_id", s.call.CallID).
		Str("lead_id", s.call.LeadID).
		Msg("lead qualified")
}

// scheduleCallback books the callback slot, persists the durable dial task
// and notifies the CRM. Callers hold the session lock.
func (e *Engine) scheduleCallback(s *session, requested string) {
	now := time.Now()
	at, matched := ParseCallbackTime(requested, now)
	if !matched {
		e.logger.Debug().Str("call_id", s.call.CallID).Str("requested", requested).Msg("no callback preference parsed, using default slot")
	}

	cb := types.CallbackRecord{
		LeadID:      s.call.LeadID,
		CallbackID:  types.NewCallbackID(),
		CallID:      s.call.CallID,
		Phone:       s.call.Phone,
		Requested:   requested,
		ScheduledAt: at.Format(time.RFC3339),
		Status:      types.CallbackScheduled,
		CreatedAt:   now.Format(time.RFC3339),
	}
	if err := e.store.SaveCallback(cb); err != nil {
		e.logger.Error().Err(err).Str("lead_id", s.call.LeadID).Msg("failed to save callback")
	}

	task := e.newDeferredTask(s.call, types.TaskCallbackDial, at, 0)
	if err := e.store.SaveDeferredTask(task); err != nil {
		e.logger.Error().Err(err).Str("lead_id", s.call.LeadID).Msg("failed to save callback task")
	}

	s.outcome = "callback"
	e.updateLeadStatus(s.call.LeadID, types.LeadCallback)
	metrics.Get().RecordCallbackScheduled()
	e.publish(types.EventCallbackScheduled, s, at.Format(time.RFC3339))

	ctx, cancel := context.WithTimeout(context.Background(), collaboratorTimeout)
	defer cancel()
	msg := fmt.Sprintf("Callback scheduled for %s", at.Format("Mon, 02 Jan 15:04"))
	if err := e.crm.NotifyFollowUp(ctx, s.call.LeadID, "sms", msg); err != nil {
		e.logger.Warn().Err(err).Str("lead_id", s.call.LeadID).Msg("callback notification failed")
	}

	e.logger.Info().
		Str("call_id", s.call.CallID).
		Str("lead_id", s.call.LeadID).
		Time("scheduled_at", at).
		Bool("preference_parsed", matched).
		Msg("callback scheduled")
}

// resolveLanguage parses a preference, falling back to the configured default
func (e *Engine) resolveLanguage(preference string) types.Language {
	if lang, ok := types.ParseLanguage(preference); ok {
		return lang
	}
	if lang, ok := types.ParseLanguage(e.cfg.DefaultLanguage); ok {
		return lang
	}
	return types.DefaultLanguage
}

// findOrCreateLead resolves a lead by phone. Lookup scans the lead list; a
// phone-keyed GSI would replace this at campaign scale.
func (e *Engine) findOrCreateLead(phone, name string, lang types.Language) (*types.LeadRecord, error) {
	leads, err := e.store.ListLeads()
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	for i := range leads {
		if leads[i].Phone == phone {
			return &leads[i], nil
		}
	}

	now := time.Now().Format(time.RFC3339)
	lead := types.LeadRecord{
		LeadID:    types.NewLeadID(),
		RecordKey: types.LeadProfileKey,
		Name:      name,
		Phone:     phone,
		Language:  string(lang),
		Status:    string(types.LeadNew),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := e.store.SaveLead(lead); err != nil {
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}
	e.logger.Info().Str("lead_id", lead.LeadID).Msg("lead created")
	return &lead, nil
}
