package types

import "time"

// ConvState represents a dialogue state in the qualification flow
type ConvState string

const (
	StateGreeting             ConvState = "greeting"
	StateLanguageDetection    ConvState = "language_detection"
	StateIntentConfirmation   ConvState = "intent_confirmation" // inbound calls only
	StateDegreeQuestion       ConvState = "degree_question"
	StateCountryQuestion      ConvState = "country_question"
	StateLoanAmountQuestion   ConvState = "loan_amount_question"
	StateOfferLetterQuestion  ConvState = "offer_letter_question"
	StateCoapplicantQuestion  ConvState = "coapplicant_itr_question"
	StateCollateralQuestion   ConvState = "collateral_question"
	StateVisaTimelineQuestion ConvState = "visa_timeline_question"
	StateQualificationSummary ConvState = "qualification_summary"
	StateHandoffOffer         ConvState = "handoff_offer"
	StateCallbackScheduling   ConvState = "callback_scheduling"
	StateClarification        ConvState = "clarification"
	StateLanguageSwitch       ConvState = "language_switch"
	StateEscalated            ConvState = "escalated"
	StateGoodbye              ConvState = "goodbye"
)

// AllConvStates lists every dialogue state
var AllConvStates = []ConvState{
	StateGreeting, StateLanguageDetection, StateIntentConfirmation,
	StateDegreeQuestion, StateCountryQuestion, StateLoanAmountQuestion,
	StateOfferLetterQuestion, StateCoapplicantQuestion, StateCollateralQuestion,
	StateVisaTimelineQuestion, StateQualificationSummary, StateHandoffOffer,
	StateCallbackScheduling, StateClarification, StateLanguageSwitch,
	StateEscalated, StateGoodbye,
}

// IsTerminal reports whether the state ends the conversation
func (s ConvState) IsTerminal() bool {
	return s == StateGoodbye || s == StateEscalated
}

// Intent represents a classified user intention for one turn
type Intent string

const (
	IntentAffirmative        Intent = "affirmative"
	IntentNegative           Intent = "negative"
	IntentProvideInfo        Intent = "provide_info"
	IntentRequestHuman       Intent = "request_human"
	IntentClarificationNeeded Intent = "clarification_needed"
	IntentGreeting           Intent = "greeting"
	IntentFarewell           Intent = "farewell"
	IntentLanguageSwitch     Intent = "language_switch"
	IntentUnknown            Intent = "unknown"
)

// KnownIntents is the closed set the interpreter may emit
var KnownIntents = map[Intent]bool{
	IntentAffirmative:         true,
	IntentNegative:            true,
	IntentProvideInfo:         true,
	IntentRequestHuman:        true,
	IntentClarificationNeeded: true,
	IntentGreeting:            true,
	IntentFarewell:            true,
	IntentLanguageSwitch:      true,
	IntentUnknown:             true,
}

// EntityType identifies a kind of extractable value
type EntityType string

const (
	EntityCountry      EntityType = "country"
	EntityDegree       EntityType = "degree"
	EntityLoanAmount   EntityType = "loan_amount"
	EntityYesNo        EntityType = "yes_no"
	EntityCollateral   EntityType = "collateral"
	EntityITRStatus    EntityType = "itr_status"
	EntityVisaTimeline EntityType = "visa_timeline"
	EntityLanguage     EntityType = "language"
)

// Speaker identifies who produced a turn
type Speaker string

const (
	SpeakerAgent Speaker = "agent"
	SpeakerUser  Speaker = "user"
)

// Turn is one spoken exchange, immutable once recorded
type Turn struct {
	Seq        int               `json:"seq"`
	Speaker    Speaker           `json:"speaker"`
	Text       string            `json:"text"`
	Intent     Intent            `json:"intent,omitempty"`
	Entities   map[string]string `json:"entities,omitempty"`
	Sentiment  *float64          `json:"sentiment,omitempty"`
	Confidence *float64          `json:"confidence,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
}

// InterpretResult is the Turn Interpreter output for one utterance
type InterpretResult struct {
	Intent     Intent            `json:"intent"`
	Entities   map[string]string `json:"entities,omitempty"`
	Confidence float64           `json:"confidence"`
	Sentiment  float64           `json:"sentiment"`
	Language   Language          `json:"language,omitempty"` // detected, if any
	Fallback   bool              `json:"fallback,omitempty"` // produced by the rule extractor
}

// EscalationReason explains why a conversation was routed to a human
type EscalationReason string

const (
	EscalationExplicitRequest    EscalationReason = "explicit_request"
	EscalationNegativeSentiment  EscalationReason = "negative_sentiment"
	EscalationClarificationLimit EscalationReason = "clarification_limit"
	EscalationAggressiveTone     EscalationReason = "aggressive_tone"
	EscalationEligibility        EscalationReason = "eligibility_escalate"
	EscalationManual             EscalationReason = "manual"
)
