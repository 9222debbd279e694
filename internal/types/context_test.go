package types

import (
	"testing"
	"time"
)

func TestAddTurnRecordsSentimentAndActivity(t *testing.T) {
	ctx := NewConversationContext("call_abc", "lead_abc", LangEnglish, StateDegreeQuestion)

	res := &InterpretResult{Intent: IntentProvideInfo, Confidence: 0.9, Sentiment: -0.5}
	turn := ctx.AddTurn(SpeakerUser, "a masters degree", res)

	if turn.Seq != 1 {
		t.Errorf("expected seq 1, got %d", turn.Seq)
	}
	if len(ctx.SentimentHistory) != 1 || ctx.SentimentHistory[0] != -0.5 {
		t.Errorf("expected sentiment history [-0.5], got %v", ctx.SentimentHistory)
	}
	if ctx.LastActivity.IsZero() {
		t.Error("expected last activity to be set")
	}

	// Agent turns never contribute to sentiment history
	ctx.AddTurn(SpeakerAgent, "thanks", &InterpretResult{Sentiment: 0.8})
	if len(ctx.SentimentHistory) != 1 {
		t.Errorf("agent turn must not extend sentiment history, got %v", ctx.SentimentHistory)
	}
}

func TestPruneDropsTurnsOlderThanRetention(t *testing.T) {
	ctx := NewConversationContext("call_abc", "lead_abc", LangEnglish, StateDegreeQuestion)
	now := time.Now()

	ctx.Turns = []Turn{
		{Seq: 1, Speaker: SpeakerUser, Text: "old", Timestamp: now.Add(-4 * time.Minute)},
		{Seq: 2, Speaker: SpeakerAgent, Text: "older than window", Timestamp: now.Add(-181 * time.Second)},
		{Seq: 3, Speaker: SpeakerUser, Text: "recent", Timestamp: now.Add(-10 * time.Second)},
	}

	ctx.Prune(now)

	if len(ctx.Turns) != 1 {
		t.Fatalf("expected 1 turn after prune, got %d", len(ctx.Turns))
	}
	if ctx.Turns[0].Text != "recent" {
		t.Errorf("expected the recent turn to survive, got %q", ctx.Turns[0].Text)
	}
}

func TestExpiredAt(t *testing.T) {
	ctx := NewConversationContext("call_abc", "lead_abc", LangEnglish, StateDegreeQuestion)
	now := time.Now()

	ctx.LastActivity = now.Add(-179 * time.Second)
	if ctx.ExpiredAt(now) {
		t.Error("context inside the window must not be expired")
	}

	ctx.LastActivity = now.Add(-181 * time.Second)
	if !ctx.ExpiredAt(now) {
		t.Error("context idle for 181s must be expired")
	}
}

func TestPendingQuestion(t *testing.T) {
	tests := []struct {
		name        string
		state       ConvState
		returnState ConvState
		want        ConvState
	}{
		{"plain question", StateCountryQuestion, "", StateCountryQuestion},
		{"clarifying country", StateClarification, StateCountryQuestion, StateCountryQuestion},
		{"language switch mid-question", StateLanguageSwitch, StateLoanAmountQuestion, StateLoanAmountQuestion},
		{"clarification without return state", StateClarification, "", StateClarification},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := NewConversationContext("call_x", "lead_x", LangEnglish, tt.state)
			ctx.ReturnState = tt.returnState
			if got := ctx.PendingQuestion(); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestSummaryCopiesCollectedData(t *testing.T) {
	ctx := NewConversationContext("call_abc", "lead_abc", LangTelugu, StateQualificationSummary)
	ctx.SetField(FieldCollateral, "yes")
	ctx.SentimentHistory = []float64{0.2, -0.4}
	ctx.TurnSeq = 6

	s := ctx.Summary()

	if s.Collected[FieldCollateral] != "yes" {
		t.Errorf("expected collateral in summary, got %v", s.Collected)
	}
	if s.AvgSentiment != -0.1 {
		t.Errorf("expected avg sentiment -0.1, got %f", s.AvgSentiment)
	}
	if s.TurnCount != 6 {
		t.Errorf("expected 6 turns, got %d", s.TurnCount)
	}

	// Mutating the summary must not leak into the context
	s.Collected[FieldCollateral] = "no"
	if ctx.Collected[FieldCollateral] != "yes" {
		t.Error("summary must hold a copy of collected data")
	}
}

func TestCallStateTransitions(t *testing.T) {
	tests := []struct {
		from, to CallState
		allowed  bool
	}{
		{CallInitiated, CallDialing, true},
		{CallDialing, CallConnected, true},
		{CallDialing, CallNoAnswer, true},
		{CallConnected, CallInProgress, true},
		{CallInProgress, CallCompleted, true},
		{CallCompleted, CallDialing, false},
		{CallInitiated, CallConnected, false},
		{CallNoAnswer, CallInProgress, false},
	}

	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.allowed {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.allowed)
		}
	}
}

func TestIDFormats(t *testing.T) {
	tests := []struct {
		name   string
		gen    func() string
		prefix string
	}{
		{"call", NewCallID, "call_"},
		{"lead", NewLeadID, "lead_"},
		{"callback", NewCallbackID, "callback_"},
		{"handoff", NewHandoffID, "handoff_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := tt.gen()
			if len(id) != len(tt.prefix)+12 {
				t.Errorf("expected %s + 12 hex chars, got %q", tt.prefix, id)
			}
			if id[:len(tt.prefix)] != tt.prefix {
				t.Errorf("expected prefix %s, got %q", tt.prefix, id)
			}
		})
	}
}
