package flow

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/dennisdiepolder/eduvoice/internal/eligibility"
	"github.com/dennisdiepolder/eduvoice/internal/prompts"
	"github.com/dennisdiepolder/eduvoice/internal/types"
)

func newTestMachine(t *testing.T) *Machine {
	t.Helper()
	m, err := New(DefaultConfig(), eligibility.New(eligibility.DefaultLenders()), prompts.Default(), zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

func testContext(initial types.ConvState) *types.ConversationContext {
	return types.NewConversationContext("call_0123456789ab", "lead_0123456789ab", types.DefaultLanguage, initial)
}

func heard(intent types.Intent, entities map[string]string) types.InterpretResult {
	return types.InterpretResult{
		Intent:     intent,
		Entities:   entities,
		Confidence: 0.9,
		Sentiment:  0.1,
	}
}

func TestBeginOutbound(t *testing.T) {
	m := newTestMachine(t)
	c := testContext(types.StateGreeting)

	res := m.Begin(c)
	if res.State != types.StateLanguageDetection {
		t.Fatalf("state = %s, want %s", res.State, types.StateLanguageDetection)
	}
	if res.Prompt == "" {
		t.Fatal("expected an opening prompt")
	}
	if len(c.Turns) != 1 || c.Turns[0].Speaker != types.SpeakerAgent {
		t.Fatalf("expected one agent turn, got %+v", c.Turns)
	}
}

func TestBeginInbound(t *testing.T) {
	m := newTestMachine(t)

	c := testContext(types.StateIntentConfirmation)
	res := m.Begin(c)
	if res.State != types.StateIntentConfirmation {
		t.Fatalf("state = %s, want %s", res.State, types.StateIntentConfirmation)
	}

	t.Run("affirmative starts the questions", func(t *testing.T) {
		c := testContext(types.StateIntentConfirmation)
		m.Begin(c)
		res := m.Step(c, "haan, batao", heard(types.IntentAffirmative, nil))
		if res.State != types.StateLanguageDetection {
			t.Fatalf("state = %s, want %s", res.State, types.StateLanguageDetection)
		}
	})

	t.Run("negative ends the call", func(t *testing.T) {
		c := testContext(types.StateIntentConfirmation)
		m.Begin(c)
		res := m.Step(c, "no, not interested", heard(types.IntentNegative, nil))
		if res.State != types.StateGoodbye || !res.EndCall {
			t.Fatalf("got state=%s endCall=%v, want goodbye end", res.State, res.EndCall)
		}
	})

	t.Run("unclear answer clarifies without counting", func(t *testing.T) {
		c := testContext(types.StateIntentConfirmation)
		m.Begin(c)
		res := m.Step(c, "who gave you this number", heard(types.IntentUnknown, nil))
		if res.State != types.StateClarification {
			t.Fatalf("state = %s, want %s", res.State, types.StateClarification)
		}
		if c.Clarifications != 0 {
			t.Fatalf("clarifications = %d, want 0", c.Clarifications)
		}
		if c.ReturnState != types.StateIntentConfirmation {
			t.Fatalf("returnState = %s, want %s", c.ReturnState, types.StateIntentConfirmation)
		}
	})
}

func TestHappyPathOutbound(t *testing.T) {
	m := newTestMachine(t)
	c := testContext(types.StateGreeting)
	m.Begin(c)

	steps := []struct {
		utterance string
		res       types.InterpretResult
		wantState types.ConvState
	}{
		{"english please", heard(types.IntentProvideInfo, map[string]string{"language": "english"}), types.StateDegreeQuestion},
		{"I am doing my MS", heard(types.IntentProvideInfo, map[string]string{"degree": "Master's"}), types.StateCountryQuestion},
		{"going to the US", heard(types.IntentProvideInfo, map[string]string{"country": "US"}), types.StateLoanAmountQuestion},
		{"around 45 lakhs", heard(types.IntentProvideInfo, map[string]string{"loan_amount": "4500000"}), types.StateOfferLetterQuestion},
		{"yes I have the offer", heard(types.IntentAffirmative, map[string]string{"yes_no": "yes"}), types.StateCoapplicantQuestion},
		{"yes my father files ITR", heard(types.IntentAffirmative, map[string]string{"itr_status": "yes"}), types.StateCollateralQuestion},
		{"we can pledge our house", heard(types.IntentAffirmative, map[string]string{"collateral": "yes"}), types.StateVisaTimelineQuestion},
	}
	for _, s := range steps {
		res := m.Step(c, s.utterance, s.res)
		if res.State != s.wantState {
			t.Fatalf("after %q: state = %s, want %s", s.utterance, res.State, s.wantState)
		}
	}
	if c.Language != types.LangEnglish {
		t.Fatalf("language = %s, want english", c.Language)
	}

	res := m.Step(c, "visa interview in 45 days", heard(types.IntentProvideInfo, map[string]string{"visa_timeline": "45 days"}))
	if res.State != types.StateHandoffOffer {
		t.Fatalf("state = %s, want %s", res.State, types.StateHandoffOffer)
	}
	if !res.Qualified {
		t.Fatal("expected the summary step to report qualification")
	}
	if c.Eligibility == nil {
		t.Fatal("eligibility not cached on the context")
	}
	if c.Eligibility.Category != types.CategoryPublicSecured {
		t.Fatalf("category = %s, want %s", c.Eligibility.Category, types.CategoryPublicSecured)
	}
	if c.Eligibility.Rule != "collateral_secured" {
		t.Fatalf("rule = %s, want collateral_secured", c.Eligibility.Rule)
	}
	if !strings.Contains(res.Prompt, "secured public bank loan") {
		t.Fatalf("summary prompt missing category label: %q", res.Prompt)
	}
	if !strings.Contains(res.Prompt, "SBI") {
		t.Fatalf("summary prompt missing lenders: %q", res.Prompt)
	}

	for field, want := range map[string]string{
		types.FieldDegree:         "Master's",
		types.FieldCountry:        "US",
		types.FieldLoanAmount:     "4500000",
		types.FieldOfferLetter:    "yes",
		types.FieldCoapplicantITR: "yes",
		types.FieldCollateral:     "yes",
		types.FieldVisaTimeline:   "45 days",
	} {
		if got := c.Collected[field]; got != want {
			t.Errorf("collected[%s] = %q, want %q", field, got, want)
		}
	}

	res = m.Step(c, "yes please connect me", heard(types.IntentAffirmative, nil))
	if res.State != types.StateEscalated || !res.Handoff {
		t.Fatalf("got state=%s handoff=%v, want escalated handoff", res.State, res.Handoff)
	}
	if c.Escalation != types.EscalationExplicitRequest {
		t.Fatalf("escalation = %s, want %s", c.Escalation, types.EscalationExplicitRequest)
	}
}

func TestClarificationLimit(t *testing.T) {
	m := newTestMachine(t)
	c := testContext(types.StateGreeting)
	m.Begin(c)

	unclear := types.InterpretResult{Intent: types.IntentUnknown, Confidence: 0.2}

	res := m.Step(c, "mmm", unclear)
	if res.State != types.StateClarification || c.Clarifications != 1 {
		t.Fatalf("first unclear turn: state=%s clarifications=%d", res.State, c.Clarifications)
	}
	if c.ReturnState != types.StateLanguageDetection {
		t.Fatalf("returnState = %s, want %s", c.ReturnState, types.StateLanguageDetection)
	}

	res = m.Step(c, "uh", unclear)
	if res.State != types.StateClarification || c.Clarifications != 2 {
		t.Fatalf("second unclear turn: state=%s clarifications=%d", res.State, c.Clarifications)
	}

	res = m.Step(c, "hmm", unclear)
	if res.State != types.StateHandoffOffer {
		t.Fatalf("third unclear turn: state = %s, want %s", res.State, types.StateHandoffOffer)
	}
	if c.Escalation != types.EscalationClarificationLimit {
		t.Fatalf("escalation = %s, want %s", c.Escalation, types.EscalationClarificationLimit)
	}
	if !c.EscalationTriggered {
		t.Fatal("escalationTriggered not set")
	}
}

func TestCountersResetOnNewQuestion(t *testing.T) {
	m := newTestMachine(t)
	c := testContext(types.StateGreeting)
	m.Begin(c)

	m.Step(c, "mmm", types.InterpretResult{Intent: types.IntentUnknown, Confidence: 0.2})
	if c.Clarifications != 1 {
		t.Fatalf("clarifications = %d, want 1", c.Clarifications)
	}

	res := m.Step(c, "english", heard(types.IntentProvideInfo, map[string]string{"language": "english"}))
	if res.State != types.StateDegreeQuestion {
		t.Fatalf("state = %s, want %s", res.State, types.StateDegreeQuestion)
	}
	if c.Clarifications != 0 || c.NegativeTurns != 0 {
		t.Fatalf("counters = %d/%d, want 0/0 after entering a new question", c.Clarifications, c.NegativeTurns)
	}
}

func TestNegativeSentimentEscalation(t *testing.T) {
	states := []struct {
		name        string
		state       types.ConvState
		returnState types.ConvState
	}{
		{"intent confirmation", types.StateIntentConfirmation, ""},
		{"language detection", types.StateLanguageDetection, ""},
		{"degree", types.StateDegreeQuestion, ""},
		{"country", types.StateCountryQuestion, ""},
		{"loan amount", types.StateLoanAmountQuestion, ""},
		{"offer letter", types.StateOfferLetterQuestion, ""},
		{"coapplicant itr", types.StateCoapplicantQuestion, ""},
		{"collateral", types.StateCollateralQuestion, ""},
		{"visa timeline", types.StateVisaTimelineQuestion, ""},
		{"callback scheduling", types.StateCallbackScheduling, ""},
		{"handoff offer", types.StateHandoffOffer, ""},
		{"clarification", types.StateClarification, types.StateDegreeQuestion},
	}

	for _, tt := range states {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMachine(t)
			c := testContext(tt.state)
			c.ReturnState = tt.returnState

			upset := types.InterpretResult{Intent: types.IntentProvideInfo, Confidence: 0.9, Sentiment: -0.5}

			res := m.Step(c, "this is not helping at all", upset)
			if res.State != tt.state {
				t.Fatalf("first negative turn moved %s -> %s, want reassurance in place", tt.state, res.State)
			}
			if c.NegativeTurns != 1 {
				t.Fatalf("negativeTurns = %d, want 1", c.NegativeTurns)
			}

			res = m.Step(c, "I am really fed up now", upset)
			if res.State != types.StateHandoffOffer {
				t.Fatalf("second negative turn: state = %s, want %s", res.State, types.StateHandoffOffer)
			}
			if c.Escalation != types.EscalationNegativeSentiment {
				t.Fatalf("escalation = %s, want %s", c.Escalation, types.EscalationNegativeSentiment)
			}
			if !c.EscalationTriggered {
				t.Fatal("escalationTriggered not set")
			}
		})
	}
}

func TestExplicitHandoffBypassesCounters(t *testing.T) {
	m := newTestMachine(t)
	c := testContext(types.StateDegreeQuestion)

	res := m.Step(c, "can I talk to a real person", heard(types.IntentRequestHuman, nil))
	if res.State != types.StateHandoffOffer {
		t.Fatalf("state = %s, want %s", res.State, types.StateHandoffOffer)
	}
	if c.Escalation != types.EscalationExplicitRequest {
		t.Fatalf("escalation = %s, want %s", c.Escalation, types.EscalationExplicitRequest)
	}
	if c.Clarifications != 0 || c.NegativeTurns != 0 {
		t.Fatalf("counters touched: %d/%d", c.Clarifications, c.NegativeTurns)
	}

	res = m.Step(c, "actually no, leave it", heard(types.IntentNegative, nil))
	if res.State != types.StateGoodbye || !res.EndCall {
		t.Fatalf("declined handoff: got state=%s endCall=%v, want goodbye end", res.State, res.EndCall)
	}
}

func TestForceHandoffFromAnyLiveState(t *testing.T) {
	m := newTestMachine(t)
	c := testContext(types.StateCountryQuestion)

	res := m.ForceHandoff(c, types.EscalationExplicitRequest)
	if res.State != types.StateEscalated || !res.Handoff {
		t.Fatalf("got state=%s handoff=%v, want escalated handoff", res.State, res.Handoff)
	}
	if c.Escalation != types.EscalationExplicitRequest {
		t.Fatalf("escalation = %s", c.Escalation)
	}

	// terminal contexts are left alone
	done := testContext(types.StateGoodbye)
	res = m.ForceHandoff(done, types.EscalationExplicitRequest)
	if res.Handoff || res.State != types.StateGoodbye {
		t.Fatalf("forced handoff on a finished call: %+v", res)
	}
}

func TestAggressiveToneTriggersHandoffOffer(t *testing.T) {
	m := newTestMachine(t)
	c := testContext(types.StateLoanAmountQuestion)

	res := m.Step(c, "this is a scam", types.InterpretResult{Intent: types.IntentProvideInfo, Confidence: 0.9, Sentiment: -0.1})
	if res.State != types.StateHandoffOffer {
		t.Fatalf("state = %s, want %s", res.State, types.StateHandoffOffer)
	}
	if c.Escalation != types.EscalationAggressiveTone {
		t.Fatalf("escalation = %s, want %s", c.Escalation, types.EscalationAggressiveTone)
	}
}

func TestLanguageSwitchRetainsCollectedData(t *testing.T) {
	m := newTestMachine(t)
	c := testContext(types.StateCountryQuestion)
	c.Language = types.LangEnglish
	c.SetField(types.FieldDegree, "Master's")

	res := m.Step(c, "hindi mein baat karo", types.InterpretResult{
		Intent:     types.IntentLanguageSwitch,
		Language:   types.LangHinglish,
		Confidence: 0.9,
	})
	if res.State != types.StateLanguageSwitch {
		t.Fatalf("state = %s, want %s", res.State, types.StateLanguageSwitch)
	}
	if c.Language != types.LangHinglish {
		t.Fatalf("language = %s, want hinglish", c.Language)
	}
	if c.ReturnState != types.StateCountryQuestion {
		t.Fatalf("returnState = %s, want %s", c.ReturnState, types.StateCountryQuestion)
	}
	if !strings.HasPrefix(res.Prompt, "Theek hai") {
		t.Fatalf("prompt not in the new language: %q", res.Prompt)
	}
	if c.Collected[types.FieldDegree] != "Master's" {
		t.Fatal("collected data lost across the language switch")
	}

	res = m.Step(c, "America ja raha hoon", heard(types.IntentProvideInfo, map[string]string{"country": "US"}))
	if res.State != types.StateLoanAmountQuestion {
		t.Fatalf("state = %s, want %s", res.State, types.StateLoanAmountQuestion)
	}
	if c.Collected[types.FieldCountry] != "US" {
		t.Fatalf("country = %q, want US", c.Collected[types.FieldCountry])
	}
}

func TestMissingEntityClarifiesWithoutCounting(t *testing.T) {
	m := newTestMachine(t)
	c := testContext(types.StateDegreeQuestion)

	res := m.Step(c, "well, you know how it is", heard(types.IntentProvideInfo, nil))
	if res.State != types.StateClarification {
		t.Fatalf("state = %s, want %s", res.State, types.StateClarification)
	}
	if c.Clarifications != 0 {
		t.Fatalf("clarifications = %d, want 0 for a clear but valueless turn", c.Clarifications)
	}
	if c.ReturnState != types.StateDegreeQuestion {
		t.Fatalf("returnState = %s, want %s", c.ReturnState, types.StateDegreeQuestion)
	}
}

func TestYesNoDerivedFromIntent(t *testing.T) {
	m := newTestMachine(t)

	c := testContext(types.StateOfferLetterQuestion)
	res := m.Step(c, "haan bilkul", heard(types.IntentAffirmative, nil))
	if res.State != types.StateCoapplicantQuestion {
		t.Fatalf("state = %s, want %s", res.State, types.StateCoapplicantQuestion)
	}
	if c.Collected[types.FieldOfferLetter] != "yes" {
		t.Fatalf("offer_letter = %q, want yes", c.Collected[types.FieldOfferLetter])
	}

	c = testContext(types.StateCollateralQuestion)
	res = m.Step(c, "nahi, kuch nahi hai", heard(types.IntentNegative, nil))
	if res.State != types.StateVisaTimelineQuestion {
		t.Fatalf("state = %s, want %s", res.State, types.StateVisaTimelineQuestion)
	}
	if c.Collected[types.FieldCollateral] != "no" {
		t.Fatalf("collateral = %q, want no", c.Collected[types.FieldCollateral])
	}
}

func TestSilenceFlow(t *testing.T) {
	m := newTestMachine(t)
	c := testContext(types.StateGreeting)
	m.Begin(c)

	res := m.Silence(c)
	if res.State != types.StateClarification {
		t.Fatalf("first silence: state = %s, want %s", res.State, types.StateClarification)
	}
	if c.ConsecutiveSilences != 1 || c.Clarifications != 1 {
		t.Fatalf("silences=%d clarifications=%d, want 1/1", c.ConsecutiveSilences, c.Clarifications)
	}
	if !strings.HasPrefix(res.Prompt, "Kya aap sun rahe hain?") {
		t.Fatalf("prompt missing the silence check-in: %q", res.Prompt)
	}

	res = m.Silence(c)
	if res.State != types.StateCallbackScheduling {
		t.Fatalf("second silence: state = %s, want %s", res.State, types.StateCallbackScheduling)
	}

	res = m.Silence(c)
	if res.State != types.StateGoodbye || !res.EndCall || !res.ScheduleCallback {
		t.Fatalf("silence during scheduling: %+v, want default callback and goodbye", res)
	}
	if res.CallbackText != "" {
		t.Fatalf("callbackText = %q, want empty for the default slot", res.CallbackText)
	}
}

func TestSilenceCounterResetsOnSpeech(t *testing.T) {
	m := newTestMachine(t)
	c := testContext(types.StateGreeting)
	m.Begin(c)

	m.Silence(c)
	m.Step(c, "english", heard(types.IntentProvideInfo, map[string]string{"language": "english"}))
	if c.ConsecutiveSilences != 0 {
		t.Fatalf("consecutiveSilences = %d, want 0 after speech", c.ConsecutiveSilences)
	}

	res := m.Silence(c)
	if res.State != types.StateClarification {
		t.Fatalf("state = %s, want %s (single silence after speech)", res.State, types.StateClarification)
	}
}

func TestCallbackUtteranceTravelsOut(t *testing.T) {
	m := newTestMachine(t)
	c := testContext(types.StateCallbackScheduling)

	res := m.Step(c, "tomorrow morning", heard(types.IntentProvideInfo, nil))
	if res.State != types.StateGoodbye || !res.EndCall {
		t.Fatalf("got state=%s endCall=%v, want goodbye end", res.State, res.EndCall)
	}
	if !res.ScheduleCallback || res.CallbackText != "tomorrow morning" {
		t.Fatalf("callback = %v %q, want scheduled with the raw utterance", res.ScheduleCallback, res.CallbackText)
	}
}

func TestSummaryFastTracksUrgentTimelines(t *testing.T) {
	m := newTestMachine(t)
	c := testContext(types.StateVisaTimelineQuestion)
	c.Language = types.LangEnglish
	for field, v := range map[string]string{
		types.FieldDegree:         "Master's",
		types.FieldCountry:        "US",
		types.FieldLoanAmount:     "4500000",
		types.FieldOfferLetter:    "yes",
		types.FieldCoapplicantITR: "yes",
		types.FieldCollateral:     "no",
	} {
		c.SetField(field, v)
	}

	res := m.Step(c, "in about 3 weeks", heard(types.IntentProvideInfo, map[string]string{"visa_timeline": "3 weeks"}))
	if res.State != types.StateHandoffOffer || !res.Qualified {
		t.Fatalf("got state=%s qualified=%v", res.State, res.Qualified)
	}
	if c.Eligibility.Category != types.CategoryPrivateUnsecured {
		t.Fatalf("category = %s, want %s", c.Eligibility.Category, types.CategoryPrivateUnsecured)
	}
	if c.Eligibility.Urgency != types.UrgencyHigh {
		t.Fatalf("urgency = %s, want high", c.Eligibility.Urgency)
	}
	if c.Eligibility.Rule != "coapplicant_itr_unsecured" {
		t.Fatalf("rule = %s, want coapplicant_itr_unsecured", c.Eligibility.Rule)
	}
	if !strings.Contains(res.Prompt, "Auxilo, InCred") {
		t.Fatalf("fast-track lenders not ranked first: %q", res.Prompt)
	}
}

func TestSummaryEscalateCategory(t *testing.T) {
	m := newTestMachine(t)
	c := testContext(types.StateVisaTimelineQuestion)
	for field, v := range map[string]string{
		types.FieldDegree:         "Bachelor's",
		types.FieldCountry:        "Germany",
		types.FieldLoanAmount:     "2000000",
		types.FieldOfferLetter:    "no",
		types.FieldCoapplicantITR: "no",
		types.FieldCollateral:     "no",
	} {
		c.SetField(field, v)
	}

	res := m.Step(c, "about 4 months away", heard(types.IntentProvideInfo, map[string]string{"visa_timeline": "4 months"}))
	if res.State != types.StateHandoffOffer || !res.Qualified {
		t.Fatalf("got state=%s qualified=%v", res.State, res.Qualified)
	}
	if c.Eligibility.Category != types.CategoryEscalate {
		t.Fatalf("category = %s, want %s", c.Eligibility.Category, types.CategoryEscalate)
	}
	if c.Escalation != types.EscalationEligibility {
		t.Fatalf("escalation = %s, want %s", c.Escalation, types.EscalationEligibility)
	}
	if strings.Contains(res.Prompt, "{category}") || strings.Contains(res.Prompt, "lenders") {
		t.Fatalf("escalate summary should not pitch lenders: %q", res.Prompt)
	}

	res = m.Step(c, "haan, theek hai", heard(types.IntentAffirmative, nil))
	if res.State != types.StateEscalated || !res.Handoff {
		t.Fatalf("got state=%s handoff=%v, want escalated handoff", res.State, res.Handoff)
	}
	if c.Escalation != types.EscalationEligibility {
		t.Fatalf("escalation overwritten to %s", c.Escalation)
	}
}

func TestSummaryMissingFieldsOffersHandoff(t *testing.T) {
	m := newTestMachine(t)
	c := testContext(types.StateVisaTimelineQuestion)
	c.SetField(types.FieldDegree, "Master's")
	c.SetField(types.FieldCountry, "US")

	res := m.Step(c, "next month", heard(types.IntentProvideInfo, map[string]string{"visa_timeline": "1 months"}))
	if res.State != types.StateHandoffOffer {
		t.Fatalf("state = %s, want %s", res.State, types.StateHandoffOffer)
	}
	if res.Qualified {
		t.Fatal("incomplete data must not report qualification")
	}
	if c.Escalation != types.EscalationEligibility {
		t.Fatalf("escalation = %s, want %s", c.Escalation, types.EscalationEligibility)
	}
}

func TestReaskInvalidatesEligibility(t *testing.T) {
	m := newTestMachine(t)
	c := testContext(types.StateClarification)
	c.ReturnState = types.StateDegreeQuestion
	c.SetField(types.FieldDegree, "Bachelor's")
	c.Eligibility = &types.EligibilityResult{Category: types.CategoryPublicSecured}

	res := m.askQuestion(c, types.StateDegreeQuestion)
	if res.State != types.StateDegreeQuestion {
		t.Fatalf("state = %s, want %s", res.State, types.StateDegreeQuestion)
	}
	if c.Eligibility != nil {
		t.Fatal("cached eligibility must be dropped when an answered question is re-asked")
	}
}

func TestHandoffFailedFallsBackToCallback(t *testing.T) {
	m := newTestMachine(t)
	c := testContext(types.StateEscalated)
	c.Escalation = types.EscalationExplicitRequest

	res := m.HandoffFailed(c)
	if res.State != types.StateCallbackScheduling {
		t.Fatalf("state = %s, want %s", res.State, types.StateCallbackScheduling)
	}
	if res.Prompt == "" {
		t.Fatal("expected a transfer-failed prompt")
	}

	res = m.Step(c, "evening works for me", heard(types.IntentProvideInfo, nil))
	if !res.ScheduleCallback || res.CallbackText != "evening works for me" {
		t.Fatalf("callback = %v %q, want scheduled from the utterance", res.ScheduleCallback, res.CallbackText)
	}
}

func TestFarewellMidQuestion(t *testing.T) {
	m := newTestMachine(t)
	c := testContext(types.StateLoanAmountQuestion)

	res := m.Step(c, "I will call back later, bye", heard(types.IntentFarewell, nil))
	if res.State != types.StateGoodbye || !res.EndCall {
		t.Fatalf("got state=%s endCall=%v, want goodbye end", res.State, res.EndCall)
	}
}

func TestTerminalStatesAreFinal(t *testing.T) {
	m := newTestMachine(t)
	for _, state := range []types.ConvState{types.StateGoodbye, types.StateEscalated} {
		c := testContext(state)
		turns := len(c.Turns)

		res := m.Step(c, "hello?", heard(types.IntentProvideInfo, nil))
		if res.State != state || res.Prompt != "" || res.EndCall {
			t.Fatalf("step in %s: %+v, want a silent no-op", state, res)
		}
		res = m.Silence(c)
		if res.State != state || res.Prompt != "" {
			t.Fatalf("silence in %s: %+v, want a silent no-op", state, res)
		}
		if len(c.Turns) != turns {
			t.Fatalf("terminal state recorded turns: %d -> %d", turns, len(c.Turns))
		}
	}
}

func TestMoveRefusesIllegalTransition(t *testing.T) {
	m := newTestMachine(t)
	c := testContext(types.StateGreeting)

	if m.move(c, types.StateEscalated) {
		t.Fatal("greeting -> escalated must be refused")
	}
	if c.State != types.StateGreeting {
		t.Fatalf("state mutated to %s on a refused move", c.State)
	}
	if !m.move(c, types.StateLanguageDetection) {
		t.Fatal("greeting -> first question must be allowed")
	}
}
