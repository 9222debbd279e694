// Package flow drives the qualification dialogue: a closed state machine
// that turns interpreted utterances into the next prompt, counter updates
// and lifecycle signals. All thresholds below are contract constants.
package flow

import (
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dennisdiepolder/eduvoice/internal/eligibility"
	"github.com/dennisdiepolder/eduvoice/internal/interpreter"
	"github.com/dennisdiepolder/eduvoice/internal/prompts"
	"github.com/dennisdiepolder/eduvoice/internal/types"
)

const (
	// ClarificationLimit bounds re-prompts per question; exceeding it
	// routes to a handoff offer.
	ClarificationLimit = 2
	// NegativeTurnLimit is the consecutive-ish negative turn count that
	// triggers escalation.
	NegativeTurnLimit = 2
	// SilenceTimeout is how long the orchestrator waits for an utterance
	// before reporting a silent turn.
	SilenceTimeout = 8 * time.Second
)

// questionField maps a question state to the collected-data field it fills
var questionField = map[types.ConvState]string{
	types.StateDegreeQuestion:       types.FieldDegree,
	types.StateCountryQuestion:      types.FieldCountry,
	types.StateLoanAmountQuestion:   types.FieldLoanAmount,
	types.StateOfferLetterQuestion:  types.FieldOfferLetter,
	types.StateCoapplicantQuestion:  types.FieldCoapplicantITR,
	types.StateCollateralQuestion:   types.FieldCollateral,
	types.StateVisaTimelineQuestion: types.FieldVisaTimeline,
	types.StateLanguageDetection:    string(types.EntityLanguage),
}

// StepResult tells the orchestrator what to do after a turn: speak the
// prompt, and optionally end the call, initiate a handoff, schedule a
// callback, or push the qualification summary.
type StepResult struct {
	State            types.ConvState
	Prompt           string
	EndCall          bool
	Handoff          bool
	ScheduleCallback bool
	CallbackText     string
	Qualified        bool
}

// Machine is the conversation state machine. It owns no call state itself;
// everything mutable lives on the ConversationContext passed per turn.
type Machine struct {
	questions []types.ConvState
	allowed   map[types.ConvState]map[types.ConvState]bool
	engine    *eligibility.Engine
	catalog   *prompts.Catalog
	logger    zerolog.Logger
}

// New builds a Machine over the given question sequence, eligibility engine
// and prompt catalog.
func New(cfg Config, engine *eligibility.Engine, catalog *prompts.Catalog, logger zerolog.Logger) (*Machine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Machine{
		questions: cfg.Questions,
		allowed:   buildTransitions(cfg.Questions),
		engine:    engine,
		catalog:   catalog,
		logger:    logger.With().Str("component", "flow").Logger(),
	}, nil
}

// Begin emits the opening prompt for a freshly connected call. Outbound
// conversations greet and move straight to the first question; inbound
// conversations ask the caller to confirm intent first.
func (m *Machine) Begin(c *types.ConversationContext) StepResult {
	if c.State == types.StateIntentConfirmation {
		prompt := m.render(c, "intent_confirmation", nil)
		m.say(c, prompt)
		return StepResult{State: c.State, Prompt: prompt}
	}
	first := m.questions[0]
	m.move(c, first)
	prompt := m.render(c, "greeting", nil) + " " + m.render(c, string(first), nil)
	m.say(c, prompt)
	return StepResult{State: c.State, Prompt: prompt}
}

// Step processes one interpreted user turn. The checks run in strict
// priority order: confidence, sentiment, explicit handoff, aggression,
// language switch, then state-specific resolution.
func (m *Machine) Step(c *types.ConversationContext, utterance string, res types.InterpretResult) StepResult {
	if c.State.IsTerminal() {
		return StepResult{State: c.State}
	}
	c.ConsecutiveSilences = 0
	c.AddTurn(types.SpeakerUser, utterance, &res)

	if res.Confidence < interpreter.ConfidenceFloor {
		c.Clarifications++
		if c.Clarifications > ClarificationLimit {
			return m.offerHandoff(c, types.EscalationClarificationLimit)
		}
		return m.clarify(c, "clarification_prefix")
	}

	if res.Sentiment < interpreter.NegativeSentimentFloor {
		c.NegativeTurns++
		if c.NegativeTurns >= NegativeTurnLimit {
			return m.offerHandoff(c, types.EscalationNegativeSentiment)
		}
		return m.reassure(c)
	}

	if res.Intent == types.IntentRequestHuman {
		return m.offerHandoff(c, types.EscalationExplicitRequest)
	}
	if interpreter.AggressiveTone(utterance, c.Language) {
		return m.offerHandoff(c, types.EscalationAggressiveTone)
	}

	if res.Intent == types.IntentLanguageSwitch && res.Language != "" {
		return m.switchLanguage(c, res.Language)
	}

	return m.resolve(c, utterance, res)
}

// Silence handles an 8-second gap with no utterance. The first one behaves
// like a low-confidence turn; the second consecutive one moves to callback
// scheduling instead of asking again.
func (m *Machine) Silence(c *types.ConversationContext) StepResult {
	if c.State.IsTerminal() {
		return StepResult{State: c.State}
	}
	c.Touch()
	c.ConsecutiveSilences++

	if c.State == types.StateCallbackScheduling {
		// no answer to the callback question either; take the default slot
		return m.confirmCallback(c, "")
	}
	if c.ConsecutiveSilences >= 2 {
		return m.enterCallback(c, "callback_scheduling")
	}

	c.Clarifications++
	if c.Clarifications > ClarificationLimit {
		return m.offerHandoff(c, types.EscalationClarificationLimit)
	}
	return m.clarify(c, "silence_prefix")
}

// HandoffFailed re-opens an escalated conversation to schedule a callback
// after the transfer could not be completed.
func (m *Machine) HandoffFailed(c *types.ConversationContext) StepResult {
	return m.enterCallback(c, "handoff_failed")
}

// resolve is step six: the state-specific reading of a confident, calm turn
func (m *Machine) resolve(c *types.ConversationContext, utterance string, res types.InterpretResult) StepResult {
	q := c.PendingQuestion()

	switch q {
	case types.StateIntentConfirmation:
		switch res.Intent {
		case types.IntentAffirmative:
			if res.Language != "" {
				c.Language = res.Language
			}
			return m.askQuestion(c, m.questions[0])
		case types.IntentNegative, types.IntentFarewell:
			return m.sayGoodbye(c)
		default:
			return m.clarify(c, "clarification_prefix")
		}

	case types.StateHandoffOffer:
		switch res.Intent {
		case types.IntentAffirmative:
			return m.acceptHandoff(c)
		case types.IntentNegative, types.IntentFarewell:
			return m.sayGoodbye(c)
		default:
			return m.clarify(c, "clarification_prefix")
		}

	case types.StateCallbackScheduling:
		return m.confirmCallback(c, utterance)

	default:
		if res.Intent == types.IntentFarewell {
			return m.sayGoodbye(c)
		}
		et, ok := interpreter.ExpectedEntity(q)
		if !ok {
			m.logger.Error().Str("call_id", c.CallID).Str("state", string(q)).Msg("turn arrived in a state with no expected entity")
			return m.clarify(c, "clarification_prefix")
		}
		value, found := res.Entities[string(et)]
		if !found && isYesNoEntity(et) {
			switch res.Intent {
			case types.IntentAffirmative:
				value, found = "yes", true
			case types.IntentNegative:
				value, found = "no", true
			}
		}
		if !found {
			// heard clearly but no usable value: clarify without counting
			return m.clarify(c, "clarification_prefix")
		}
		if q == types.StateLanguageDetection {
			if lang, ok := types.ParseLanguage(value); ok {
				c.Language = lang
			}
		}
		c.SetField(questionField[q], value)
		return m.advance(c, q)
	}
}

// advance moves past an answered question: the next one, or the summary
func (m *Machine) advance(c *types.ConversationContext, q types.ConvState) StepResult {
	next, done := m.nextQuestion(q)
	if done {
		return m.summarize(c)
	}
	return m.askQuestion(c, next)
}

// askQuestion enters a question state. Entering a different question than
// the one pending resets both counters; re-entering an already answered
// question invalidates the cached eligibility result.
func (m *Machine) askQuestion(c *types.ConversationContext, q types.ConvState) StepResult {
	if q != c.PendingQuestion() {
		c.Clarifications = 0
		c.NegativeTurns = 0
	}
	if field, ok := questionField[q]; ok && c.Collected[field] != "" {
		c.Eligibility = nil
	}
	if !m.move(c, q) {
		return m.clarify(c, "clarification_prefix")
	}
	c.ReturnState = ""
	prompt := m.render(c, string(q), nil)
	m.say(c, prompt)
	return StepResult{State: c.State, Prompt: prompt}
}

// summarize computes eligibility (once), delivers the summary and offers the
// handoff in the same utterance.
func (m *Machine) summarize(c *types.ConversationContext) StepResult {
	if !m.move(c, types.StateQualificationSummary) {
		return m.clarify(c, "clarification_prefix")
	}
	c.ReturnState = ""

	if c.Eligibility == nil {
		result, parsed, err := m.engine.Evaluate(c.Collected, time.Now())
		if err != nil {
			m.logger.Error().Err(err).Str("call_id", c.CallID).Msg("eligibility precondition violation")
			return m.offerHandoff(c, types.EscalationEligibility)
		}
		if !parsed {
			m.logger.Warn().Str("call_id", c.CallID).
				Str("timeline", c.Collected[types.FieldVisaTimeline]).
				Msg("visa timeline unparseable, urgency defaulted to medium")
		}
		c.Eligibility = &result
	}

	var prompt string
	if c.Eligibility.Category == types.CategoryEscalate {
		c.Escalation = types.EscalationEligibility
		prompt = m.render(c, "qualification_summary_escalate", nil)
	} else {
		prompt = m.render(c, "qualification_summary", map[string]string{
			"category": prompts.CategoryLabel(c.Eligibility.Category, c.Language),
			"lenders":  strings.Join(c.Eligibility.Lenders, ", "),
		})
	}
	m.move(c, types.StateHandoffOffer)
	m.say(c, prompt)
	return StepResult{State: c.State, Prompt: prompt, Qualified: true}
}

// offerHandoff is the unconditional override: record the reason and ask
// whether to bring in a human, from whatever state the turn was in.
func (m *Machine) offerHandoff(c *types.ConversationContext, reason types.EscalationReason) StepResult {
	if c.Escalation == "" {
		c.Escalation = reason
	}
	c.EscalationTriggered = true
	if c.State != types.StateHandoffOffer {
		m.move(c, types.StateHandoffOffer)
	}
	c.ReturnState = ""
	prompt := m.render(c, "handoff_offer_escalation", nil)
	m.say(c, prompt)
	return StepResult{State: c.State, Prompt: prompt}
}

// ForceHandoff escalates immediately on an operator's request, skipping the
// offer/accept exchange.
func (m *Machine) ForceHandoff(c *types.ConversationContext, reason types.EscalationReason) StepResult {
	if c.State.IsTerminal() {
		return StepResult{State: c.State}
	}
	if c.Escalation == "" {
		c.Escalation = reason
	}
	c.EscalationTriggered = true
	if c.State != types.StateHandoffOffer {
		m.move(c, types.StateHandoffOffer)
	}
	c.ReturnState = ""
	return m.acceptHandoff(c)
}

// acceptHandoff finalizes the escalation once the user says yes
func (m *Machine) acceptHandoff(c *types.ConversationContext) StepResult {
	if c.Escalation == "" {
		c.Escalation = types.EscalationExplicitRequest
	}
	m.move(c, types.StateEscalated)
	c.ReturnState = ""
	prompt := m.render(c, "handoff_accepted", nil)
	m.say(c, prompt)
	return StepResult{State: c.State, Prompt: prompt, Handoff: true}
}

// clarify re-asks the pending question behind a short prefix. It never
// touches the clarification counter; callers that need the counter bump it
// before calling.
func (m *Machine) clarify(c *types.ConversationContext, prefixKey string) StepResult {
	q := c.PendingQuestion()
	if c.State != types.StateClarification {
		m.move(c, types.StateClarification)
	}
	c.ReturnState = q
	prompt := m.render(c, prefixKey, nil) + m.questionPrompt(c, q)
	m.say(c, prompt)
	return StepResult{State: c.State, Prompt: prompt}
}

// reassure handles a single negative turn: acknowledge and re-ask in place
func (m *Machine) reassure(c *types.ConversationContext) StepResult {
	prompt := m.render(c, "empathy_prefix", nil) + m.questionPrompt(c, c.PendingQuestion())
	m.say(c, prompt)
	return StepResult{State: c.State, Prompt: prompt}
}

// switchLanguage updates the active language and repeats the in-flight
// question in the new one. Collected data is retained.
func (m *Machine) switchLanguage(c *types.ConversationContext, target types.Language) StepResult {
	q := c.PendingQuestion()
	c.Language = target
	if c.State != types.StateLanguageSwitch {
		if !m.move(c, types.StateLanguageSwitch) {
			return m.clarify(c, "clarification_prefix")
		}
	}
	c.ReturnState = q
	prompt := m.render(c, "language_switch_ack", nil) + m.questionPrompt(c, q)
	m.say(c, prompt)
	return StepResult{State: c.State, Prompt: prompt}
}

// enterCallback moves to callback scheduling and asks for a time
func (m *Machine) enterCallback(c *types.ConversationContext, promptKey string) StepResult {
	if c.State != types.StateCallbackScheduling {
		if !m.move(c, types.StateCallbackScheduling) {
			return m.clarify(c, "clarification_prefix")
		}
	}
	c.ReturnState = ""
	prompt := m.render(c, promptKey, nil)
	m.say(c, prompt)
	return StepResult{State: c.State, Prompt: prompt}
}

// confirmCallback closes the conversation with a callback to schedule. The
// raw utterance travels out for time parsing; empty means the default slot.
func (m *Machine) confirmCallback(c *types.ConversationContext, utterance string) StepResult {
	m.move(c, types.StateGoodbye)
	c.ReturnState = ""
	prompt := m.render(c, "callback_confirmed", nil)
	m.say(c, prompt)
	return StepResult{
		State:            c.State,
		Prompt:           prompt,
		EndCall:          true,
		ScheduleCallback: true,
		CallbackText:     strings.TrimSpace(utterance),
	}
}

// sayGoodbye ends the conversation politely
func (m *Machine) sayGoodbye(c *types.ConversationContext) StepResult {
	m.move(c, types.StateGoodbye)
	c.ReturnState = ""
	prompt := m.render(c, "goodbye", nil)
	m.say(c, prompt)
	return StepResult{State: c.State, Prompt: prompt, EndCall: true}
}

// questionPrompt renders the prompt that re-asks a pending state
func (m *Machine) questionPrompt(c *types.ConversationContext, q types.ConvState) string {
	if q == types.StateHandoffOffer && c.Escalation != "" {
		return m.render(c, "handoff_offer_escalation", nil)
	}
	return m.render(c, string(q), nil)
}

// move applies a transition if the table allows it. An illegal move is an
// internal error: it is logged and refused, and the caller absorbs the turn
// into clarification.
func (m *Machine) move(c *types.ConversationContext, to types.ConvState) bool {
	if !m.allowed[c.State][to] {
		m.logger.Error().Str("call_id", c.CallID).
			Str("from", string(c.State)).Str("to", string(to)).
			Msg("illegal state transition refused")
		return false
	}
	c.State = to
	return true
}

func (m *Machine) nextQuestion(q types.ConvState) (types.ConvState, bool) {
	for i, s := range m.questions {
		if s == q {
			if i+1 < len(m.questions) {
				return m.questions[i+1], false
			}
			return "", true
		}
	}
	return "", true
}

// render never fails the dialogue: a catalog gap logs an error and degrades
// to a generic apology so the call always has a next prompt.
func (m *Machine) render(c *types.ConversationContext, key string, data map[string]string) string {
	prompt, err := m.catalog.Render(key, c.Language, data)
	if err != nil {
		m.logger.Error().Err(err).Str("key", key).Msg("prompt render failed")
		return "Sorry, let me get someone to help you."
	}
	return prompt
}

func (m *Machine) say(c *types.ConversationContext, prompt string) {
	c.AddTurn(types.SpeakerAgent, prompt, nil)
}

func isYesNoEntity(et types.EntityType) bool {
	return et == types.EntityYesNo || et == types.EntityCollateral || et == types.EntityITRStatus
}
