package interpreter

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/dennisdiepolder/eduvoice/internal/types"
)

func TestExtractFallback(t *testing.T) {
	i := New(nil, time.Second, zerolog.Nop())

	tests := []struct {
		name       string
		utterance  string
		lang       types.Language
		state      types.ConvState
		wantIntent types.Intent
		wantEntity string // "<key>=<value>", empty for none
		wantZero   bool   // confidence must be 0
	}{
		{
			name: "bare yes in collateral question", utterance: "yes",
			lang: types.LangEnglish, state: types.StateCollateralQuestion,
			wantIntent: types.IntentAffirmative, wantEntity: "collateral=yes",
		},
		{
			name: "property counts as collateral", utterance: "we have a house in pune",
			lang: types.LangHinglish, state: types.StateCollateralQuestion,
			wantIntent: types.IntentAffirmative, wantEntity: "collateral=yes",
		},
		{
			name: "bare country token", utterance: "US",
			lang: types.LangEnglish, state: types.StateCountryQuestion,
			wantIntent: types.IntentProvideInfo, wantEntity: "country=US",
		},
		{
			name: "degree phrase", utterance: "planning an MS in computer science",
			lang: types.LangEnglish, state: types.StateDegreeQuestion,
			wantIntent: types.IntentProvideInfo, wantEntity: "degree=Master's",
		},
		{
			name: "lakh amount", utterance: "around 25 lakhs",
			lang: types.LangHinglish, state: types.StateLoanAmountQuestion,
			wantIntent: types.IntentProvideInfo, wantEntity: "loan_amount=2500000",
		},
		{
			name: "human request wins over entity", utterance: "no, let me talk to someone",
			lang: types.LangEnglish, state: types.StateCollateralQuestion,
			wantIntent: types.IntentRequestHuman,
		},
		{
			name: "hinglish negative itr", utterance: "nahi bharte hain",
			lang: types.LangHinglish, state: types.StateCoapplicantQuestion,
			wantIntent: types.IntentNegative, wantEntity: "itr_status=no",
		},
		{
			name: "clarification request", utterance: "can you repeat that please",
			lang: types.LangEnglish, state: types.StateLoanAmountQuestion,
			wantIntent: types.IntentClarificationNeeded,
		},
		{
			name: "visa timeline weeks", utterance: "visa interview in 3 weeks",
			lang: types.LangEnglish, state: types.StateVisaTimelineQuestion,
			wantIntent: types.IntentProvideInfo, wantEntity: "visa_timeline=21 days",
		},
		{
			name: "nothing matches", utterance: "purple elephant cadence",
			lang: types.LangEnglish, state: types.StateDegreeQuestion,
			wantIntent: types.IntentUnknown, wantZero: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := i.ExtractFallback(tt.utterance, tt.lang, tt.state)

			if !res.Fallback {
				t.Error("fallback result must be marked")
			}
			if res.Intent != tt.wantIntent {
				t.Errorf("expected intent %s, got %s", tt.wantIntent, res.Intent)
			}
			if tt.wantZero && res.Confidence != 0 {
				t.Errorf("expected confidence 0 on miss, got %f", res.Confidence)
			}
			if !tt.wantZero && res.Confidence < ConfidenceFloor {
				t.Errorf("expected a usable confidence on match, got %f", res.Confidence)
			}
			if tt.wantEntity != "" {
				key, want := splitPair(tt.wantEntity)
				if res.Entities[key] != want {
					t.Errorf("expected %s=%s, got %v", key, want, res.Entities)
				}
			}
		})
	}
}

func splitPair(s string) (string, string) {
	for i := 0; i < len(s); i++ {
		if s[i] == '=' {
			return s[:i], s[i+1:]
		}
	}
	return s, ""
}

func TestExtractFallbackLanguageSwitch(t *testing.T) {
	i := New(nil, time.Second, zerolog.Nop())

	res := i.ExtractFallback("telugu lo matladandi", types.LangHinglish, types.StateCountryQuestion)
	if res.Intent != types.IntentLanguageSwitch {
		t.Fatalf("expected language_switch, got %s", res.Intent)
	}
	if res.Language != types.LangTelugu {
		t.Errorf("expected telugu target, got %s", res.Language)
	}
}
