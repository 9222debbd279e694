package types

import "time"

// ContextRetention bounds both the turn-history window and context resumability.
// A context idle past this window is stale: the qualification sequence assumes
// data freshness, so a reconnect starts over rather than reusing old answers.
const ContextRetention = 3 * time.Minute

// ConversationContext is the per-call mutable conversation state. It is owned
// by the state machine for the duration of the call; the lifecycle controller
// only reads the terminal summary.
type ConversationContext struct {
	CallID    string    `json:"callId"`
	LeadID    string    `json:"leadId"`
	State     ConvState `json:"state"`
	// ReturnState holds the question being clarified or re-asked while State
	// is clarification or language_switch; empty otherwise.
	ReturnState         ConvState          `json:"returnState,omitempty"`
	Language            Language           `json:"language"`
	Collected           map[string]string  `json:"collected"`
	Turns               []Turn             `json:"turns"`
	SentimentHistory    []float64          `json:"sentimentHistory,omitempty"`
	NegativeTurns       int                `json:"negativeTurns"`
	Clarifications      int                `json:"clarifications"`
	ConsecutiveSilences int                `json:"consecutiveSilences"`
	EscalationTriggered bool               `json:"escalationTriggered"`
	Escalation          EscalationReason   `json:"escalation,omitempty"`
	Eligibility         *EligibilityResult `json:"eligibility,omitempty"`
	TurnSeq             int                `json:"turnSeq"`
	StartedAt           time.Time          `json:"startedAt"`
	LastActivity        time.Time          `json:"lastActivity"`
}

// NewConversationContext creates the context for a freshly connected call
func NewConversationContext(callID, leadID string, lang Language, initial ConvState) *ConversationContext {
	now := time.Now()
	return &ConversationContext{
		CallID:       callID,
		LeadID:       leadID,
		State:        initial,
		Language:     lang,
		Collected:    make(map[string]string),
		StartedAt:    now,
		LastActivity: now,
	}
}

// AddTurn records one exchange, prunes the history window and refreshes
// last activity. User sentiment scores are appended to the sentiment history.
func (c *ConversationContext) AddTurn(speaker Speaker, text string, res *InterpretResult) Turn {
	c.TurnSeq++
	turn := Turn{
		Seq:       c.TurnSeq,
		Speaker:   speaker,
		Text:      text,
		Timestamp: time.Now(),
	}
	if res != nil {
		turn.Intent = res.Intent
		turn.Entities = res.Entities
		sentiment := res.Sentiment
		confidence := res.Confidence
		turn.Sentiment = &sentiment
		turn.Confidence = &confidence
		if speaker == SpeakerUser {
			c.SentimentHistory = append(c.SentimentHistory, sentiment)
		}
	}
	c.Turns = append(c.Turns, turn)
	c.LastActivity = turn.Timestamp
	c.Prune(turn.Timestamp)
	return turn
}

// Prune drops turns older than the retention window. History is bounded by
// time, never by count.
func (c *ConversationContext) Prune(now time.Time) {
	cutoff := now.Add(-ContextRetention)
	i := 0
	for ; i < len(c.Turns); i++ {
		if !c.Turns[i].Timestamp.Before(cutoff) {
			break
		}
	}
	if i > 0 {
		c.Turns = c.Turns[i:]
	}
}

// ExpiredAt reports whether the context is past its resumability window
func (c *ConversationContext) ExpiredAt(now time.Time) bool {
	return now.Sub(c.LastActivity) > ContextRetention
}

// Touch refreshes the last-activity timestamp
func (c *ConversationContext) Touch() {
	c.LastActivity = time.Now()
}

// PendingQuestion resolves the question the user is currently answering:
// the return state while clarifying or switching language, otherwise the
// current state itself.
func (c *ConversationContext) PendingQuestion() ConvState {
	if (c.State == StateClarification || c.State == StateLanguageSwitch) && c.ReturnState != "" {
		return c.ReturnState
	}
	return c.State
}

// SetField writes one collected-data value
func (c *ConversationContext) SetField(name, value string) {
	if c.Collected == nil {
		c.Collected = make(map[string]string)
	}
	c.Collected[name] = value
}

// AvgSentiment averages the recorded user sentiment scores
func (c *ConversationContext) AvgSentiment() float64 {
	if len(c.SentimentHistory) == 0 {
		return 0
	}
	var sum float64
	for _, s := range c.SentimentHistory {
		sum += s
	}
	return sum / float64(len(c.SentimentHistory))
}

// Summary produces the terminal summary handed to the CRM collaborator
func (c *ConversationContext) Summary() LeadSummary {
	collected := make(map[string]string, len(c.Collected))
	for k, v := range c.Collected {
		collected[k] = v
	}
	return LeadSummary{
		LeadID:       c.LeadID,
		CallID:       c.CallID,
		Language:     c.Language,
		Collected:    collected,
		Eligibility:  c.Eligibility,
		TurnCount:    c.TurnSeq,
		AvgSentiment: c.AvgSentiment(),
		Escalation:   c.Escalation,
		GeneratedAt:  time.Now(),
	}
}
