// Package orchestrator drives the call lifecycle: it owns an in-memory
// session per call, serializes the turns of each call, dispatches dials under
// a concurrency cap, and coordinates the conversation machine with the
// telephony, speech, CRM and storage collaborators.
package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/dennisdiepolder/eduvoice/internal/cache"
	"github.com/dennisdiepolder/eduvoice/internal/config"
	"github.com/dennisdiepolder/eduvoice/internal/convo"
	"github.com/dennisdiepolder/eduvoice/internal/crm"
	"github.com/dennisdiepolder/eduvoice/internal/flow"
	"github.com/dennisdiepolder/eduvoice/internal/speech"
	"github.com/dennisdiepolder/eduvoice/internal/storage"
	"github.com/dennisdiepolder/eduvoice/internal/telephony"
	"github.com/dennisdiepolder/eduvoice/internal/types"
)

// collaboratorTimeout bounds every outbound HTTP side effect made from the
// call path (CRM pushes, TTS, telephony commands, persistence helpers).
const collaboratorTimeout = 10 * time.Second

// interpreting is the turn-interpretation surface the engine consumes
type interpreting interface {
	Interpret(ctx context.Context, utterance string, lang types.Language, state types.ConvState) (types.InterpretResult, error)
	ExtractFallback(utterance string, lang types.Language, state types.ConvState) types.InterpretResult
}

// session is the per-call unit of serialization. All turn processing for a
// call runs under its mutex; cross-call work proceeds in parallel.
type session struct {
	mu         sync.Mutex
	call       *types.Call
	conv       *types.ConversationContext
	silence    *time.Timer
	silenceGen uint64
	dialedAt   time.Time
	lastRes    types.InterpretResult
	outcome    string // qualified|handoff|callback|unreachable, empty = incomplete
	done       bool
}

// Engine is the call orchestrator. It implements the telephony webhook entry
// points and exposes the operator surface (initiate, snapshot, handoff,
// force-end).
type Engine struct {
	cfg      *config.Config
	machine  *flow.Machine
	interp   interpreting
	convos   convo.Store
	store    storage.Store
	crm      crm.Client
	speech   speech.Synthesizer
	provider telephony.Provider

	tracker *cache.LiveCallTracker
	events  *cache.EventCache

	sessions map[string]*session
	mu       sync.RWMutex // guards sessions; never held while locking a session

	dials   *dialQueue
	answers answerTracker

	logger zerolog.Logger
}

var _ telephony.Engine = (*Engine)(nil)

// NewEngine wires the orchestrator. Loops are started separately via Start.
func NewEngine(
	cfg *config.Config,
	machine *flow.Machine,
	interp interpreting,
	convos convo.Store,
	store storage.Store,
	crmClient crm.Client,
	synth speech.Synthesizer,
	provider telephony.Provider,
	tracker *cache.LiveCallTracker,
	events *cache.EventCache,
	logger zerolog.Logger,
) *Engine {
	return &Engine{
		cfg:      cfg,
		machine:  machine,
		interp:   interp,
		convos:   convos,
		store:    store,
		crm:      crmClient,
		speech:   synth,
		provider: provider,
		tracker:  tracker,
		events:   events,
		sessions: make(map[string]*session),
		dials:    newDialQueue(),
		logger:   logger.With().Str("component", "orchestrator").Logger(),
	}
}

// Start runs the dial and scheduler loops until the context is cancelled
func (e *Engine) Start(ctx context.Context) {
	go e.dialLoop(ctx)
	go e.schedulerLoop(ctx)
	e.logger.Info().
		Int("max_concurrent_calls", e.cfg.MaxConcurrentCalls).
		Dur("dial_tick", e.cfg.DialTick).
		Dur("scheduler_tick", e.cfg.SchedulerTick).
		Msg("orchestrator started")
}

func (e *Engine) dialLoop(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.DialTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.logger.Info().Msg("dial loop stopped")
			return
		case <-ticker.C:
			e.dialTick(ctx)
		}
	}
}

// dialTick starts dials while capacity allows
func (e *Engine) dialTick(ctx context.Context) {
	for e.activeCount() < e.cfg.MaxConcurrentCalls {
		callID, ok := e.dials.DequeueNext()
		if !ok {
			return
		}
		s := e.session(callID)
		if s == nil {
			continue
		}
		e.dispatchDial(ctx, s)
	}
}

func (e *Engine) dispatchDial(ctx context.Context, s *session) {
	s.mu.Lock()
	if s.done || s.call.State != types.CallInitiated {
		s.mu.Unlock()
		return
	}
	e.moveCallState(s, types.CallDialing)
	s.dialedAt = time.Now()
	callID, phone := s.call.CallID, s.call.Phone
	e.updateTracker(s)
	s.mu.Unlock()

	// dial outside the session lock so a fast status webhook cannot block
	err := e.provider.Dial(ctx, callID, phone)
	if err == nil {
		e.logger.Debug().Str("call_id", callID).Msg("dial dispatched")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return
	}
	e.logger.Error().Err(err).Str("call_id", callID).Msg("dial failed")
	s.call.LastError = err.Error()
	e.finishCall(s, types.CallFailed, types.EndReasonFailed)
}

// session returns the live session for a call. The sessions lock is released
// before the caller locks the session itself.
func (e *Engine) session(callID string) *session {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.sessions[callID]
}

// sessionByLead finds the live session for a lead, if any
func (e *Engine) sessionByLead(leadID string) *session {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, s := range e.sessions {
		if s.call.LeadID == leadID {
			return s
		}
	}
	return nil
}

func (e *Engine) register(s *session) {
	e.mu.Lock()
	e.sessions[s.call.CallID] = s
	e.mu.Unlock()
}

func (e *Engine) unregister(callID string) {
	e.mu.Lock()
	delete(e.sessions, callID)
	e.mu.Unlock()
}

// activeCount counts calls that hold a telephony leg right now. Queued
// (initiated) calls do not count against the concurrency cap. The state field
// belongs to the session lock, so the sessions map is copied out first and
// each state read under its own session's lock.
func (e *Engine) activeCount() int {
	e.mu.RLock()
	live := make([]*session, 0, len(e.sessions))
	for _, s := range e.sessions {
		live = append(live, s)
	}
	e.mu.RUnlock()

	n := 0
	for _, s := range live {
		s.mu.Lock()
		switch s.call.State {
		case types.CallDialing, types.CallRinging, types.CallConnected, types.CallInProgress, types.CallEnding:
			n++
		}
		s.mu.Unlock()
	}
	return n
}

// AnswerRate returns the rolling share of dials answered within the threshold
func (e *Engine) AnswerRate() float64 {
	return e.answers.Rate()
}

// QueueDepth returns the number of calls waiting for dial capacity
func (e *Engine) QueueDepth() int {
	return e.dials.Len()
}

// Snapshot returns the live view of one call
func (e *Engine) Snapshot(callID string) (types.CallSnapshot, bool) {
	return e.tracker.Get(callID)
}

// moveCallState applies a lifecycle transition, logging any illegal move.
// Callers hold the session lock.
func (e *Engine) moveCallState(s *session, to types.CallState) bool {
	if !types.CanTransition(s.call.State, to) {
		e.logger.Error().
			Str("call_id", s.call.CallID).
			Str("from", string(s.call.State)).
			Str("to", string(to)).
			Msg("illegal call state transition")
		return false
	}
	s.call.State = to
	return true
}

// speak synthesizes a prompt and plays it into the call. The prompt is
// already part of the transcript; playback failures degrade, never abort.
func (e *Engine) speak(s *session, prompt string) {
	ctx, cancel := context.WithTimeout(context.Background(), collaboratorTimeout)
	defer cancel()

	audioRef, err := e.speech.Synthesize(ctx, prompt, s.conv.Language)
	if err != nil {
		e.logger.Warn().Err(err).Str("call_id", s.call.CallID).Msg("synthesis failed")
		return
	}
	if audioRef == "" {
		return
	}
	if err := e.provider.Play(ctx, s.call.CallID, audioRef); err != nil {
		e.logger.Warn().Err(err).Str("call_id", s.call.CallID).Msg("playback failed")
	}
}

func (e *Engine) saveConv(s *session) {
	ctx, cancel := context.WithTimeout(context.Background(), collaboratorTimeout)
	defer cancel()
	if err := e.convos.Save(ctx, s.conv); err != nil {
		e.logger.Error().Err(err).Str("call_id", s.call.CallID).Msg("failed to save conversation context")
	}
}

// updateTracker refreshes the monitor snapshot. Callers hold the session lock.
func (e *Engine) updateTracker(s *session) {
	snap := types.CallSnapshot{
		CallID:     s.call.CallID,
		LeadID:     s.call.LeadID,
		Phone:      s.call.Phone,
		Direction:  s.call.Direction,
		CallState:  s.call.State,
		RetryCount: s.call.RetryCount,
		StartedAt:  s.call.StartTime,
		Language:   s.call.Language,
	}
	if s.conv != nil {
		snap.ConvState = s.conv.State
		snap.Language = s.conv.Language
		snap.TurnCount = s.conv.TurnSeq
		snap.LastTurnAt = s.conv.LastActivity
		snap.LastIntent = s.lastRes.Intent
		snap.LastSentiment = s.lastRes.Sentiment
	}
	e.tracker.Upsert(snap)
}

// publish queues an engine event for the next monitor broadcast
func (e *Engine) publish(eventType string, s *session, detail string) {
	ev := types.CallEvent{
		Type:      eventType,
		CallID:    s.call.CallID,
		LeadID:    s.call.LeadID,
		CallState: s.call.State,
		Detail:    detail,
		Timestamp: time.Now(),
	}
	if s.conv != nil {
		ev.ConvState = s.conv.State
	}
	e.events.Add(ev)
}

// armSilence (re)starts the per-call silence timer feeding the serialized
// turn path. Callers hold the session lock. The generation counter invalidates
// a timer that already fired but lost the lock race against a real utterance.
func (e *Engine) armSilence(s *session) {
	e.stopSilence(s)
	gen := s.silenceGen
	callID := s.call.CallID
	s.silence = time.AfterFunc(flow.SilenceTimeout, func() {
		e.handleSilence(callID, gen)
	})
}

func (e *Engine) stopSilence(s *session) {
	s.silenceGen++
	if s.silence != nil {
		s.silence.Stop()
		s.silence = nil
	}
}

// handleSilence reports a silent turn to the machine
func (e *Engine) handleSilence(callID string, gen uint64) {
	s := e.session(callID)
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.silenceGen {
		return
	}
	if s.done || s.conv == nil || s.conv.State.IsTerminal() || s.call.State != types.CallInProgress {
		return
	}

	e.logger.Debug().
		Str("call_id", callID).
		Int("consecutive", s.conv.ConsecutiveSilences+1).
		Msg("silence timeout")
	prev := s.conv.State
	step := e.machine.Silence(s.conv)
	e.afterStep(s, prev, step)
}

// afterStep applies a machine result: speak the prompt, fan out the side
// effects, persist, and either end the call or re-arm the silence timer.
// Callers hold the session lock.
func (e *Engine) afterStep(s *session, prev types.ConvState, step flow.StepResult) {
	if step.Prompt != "" {
		e.speak(s, step.Prompt)
	}
	if step.State != prev {
		e.publish(types.EventStateChanged, s, string(prev)+" -> "+string(step.State))
	}
	if step.Qualified {
		e.onQualified(s)
	}
	if step.ScheduleCallback {
		e.scheduleCallback(s, step.CallbackText)
	}
	if step.Handoff {
		e.runHandoff(s, s.conv.Escalation)
		if s.done {
			return
		}
	}

	e.saveConv(s)
	e.updateTracker(s)

	if step.EndCall {
		e.hangup(s)
		e.finishCall(s, types.CallCompleted, types.EndReasonHangup)
		return
	}
	e.armSilence(s)
}

func (e *Engine) hangup(s *session) {
	ctx, cancel := context.WithTimeout(context.Background(), collaboratorTimeout)
	defer cancel()
	if err := e.provider.Hangup(ctx, s.call.CallID); err != nil {
		e.logger.Warn().Err(err).Str("call_id", s.call.CallID).Msg("hangup failed")
	}
}

// updateLeadStatus persists a lead funnel move
func (e *Engine) updateLeadStatus(leadID string, status types.LeadStatus) {
	lead, err := e.store.GetLead(leadID)
	if err != nil {
		e.logger.Error().Err(err).Str("lead_id", leadID).Msg("failed to load lead")
		return
	}
	if lead == nil {
		e.logger.Warn().Str("lead_id", leadID).Msg("lead missing on status update")
		return
	}
	lead.Status = string(status)
	lead.UpdatedAt = time.Now().Format(time.RFC3339)
	if err := e.store.SaveLead(*lead); err != nil {
		e.logger.Error().Err(err).Str("lead_id", leadID).Msg("failed to save lead")
	}
}
