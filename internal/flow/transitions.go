package flow

import "github.com/dennisdiepolder/eduvoice/internal/types"

// buildTransitions assembles the allow-list of legal moves for a question
// sequence. Every live state can reach clarification, language_switch and
// handoff_offer (the per-turn overrides), question states chain forward to
// the next question or the summary, and escalated may fall back to
// callback_scheduling when a transfer fails. Anything not listed here is an
// internal error when attempted.
func buildTransitions(questions []types.ConvState) map[types.ConvState]map[types.ConvState]bool {
	allowed := make(map[types.ConvState]map[types.ConvState]bool)
	add := func(from types.ConvState, tos ...types.ConvState) {
		set := allowed[from]
		if set == nil {
			set = make(map[types.ConvState]bool)
			allowed[from] = set
		}
		for _, to := range tos {
			set[to] = true
		}
	}

	overrides := []types.ConvState{
		types.StateClarification,
		types.StateLanguageSwitch,
		types.StateHandoffOffer,
		types.StateCallbackScheduling,
		types.StateGoodbye,
	}

	first := questions[0]
	add(types.StateGreeting, first)
	add(types.StateIntentConfirmation, first)
	add(types.StateIntentConfirmation, overrides...)

	for i, q := range questions {
		next := types.StateQualificationSummary
		if i+1 < len(questions) {
			next = questions[i+1]
		}
		add(q, next)
		add(q, overrides...)
	}

	add(types.StateQualificationSummary, types.StateHandoffOffer)

	add(types.StateHandoffOffer, types.StateEscalated, types.StateHandoffOffer)
	add(types.StateHandoffOffer, overrides...)

	add(types.StateCallbackScheduling, types.StateCallbackScheduling)
	add(types.StateCallbackScheduling, overrides...)

	// clarification and language_switch resume whatever question they
	// interrupted, including corrections that revisit earlier questions
	resume := append([]types.ConvState{}, questions...)
	resume = append(resume,
		types.StateQualificationSummary,
		types.StateEscalated,
		types.StateClarification,
		types.StateLanguageSwitch,
	)
	add(types.StateClarification, resume...)
	add(types.StateClarification, overrides...)
	add(types.StateLanguageSwitch, resume...)
	add(types.StateLanguageSwitch, overrides...)

	// a failed transfer re-opens the conversation to schedule a callback
	add(types.StateEscalated, types.StateCallbackScheduling)

	return allowed
}
