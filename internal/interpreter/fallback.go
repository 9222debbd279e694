package interpreter

import (
	"strings"

	"github.com/dennisdiepolder/eduvoice/internal/types"
)

// Keyword tables for the deterministic extractor. Hinglish rows double as
// romanized Hindi; Telugu rows cover common romanizations. Order matters:
// earlier intents win when several match.
var intentKeywords = []struct {
	intent types.Intent
	words  []string
}{
	{types.IntentRequestHuman, []string{
		"agent", "human", "representative", "real person", "talk to someone", "speak to someone",
		"kisi se baat", "aadmi se", "insaan se",
		"manishi tho", "evaraina",
	}},
	{types.IntentClarificationNeeded, []string{
		"repeat", "again", "pardon", "didn't understand", "didnt understand", "what do you mean", "come again",
		"samajh nahi", "phir se", "dobara",
		"malli cheppandi", "artham kaledu",
	}},
	{types.IntentFarewell, []string{
		"bye", "goodbye", "see you", "hang up",
		"alvida", "chalta hoon",
		"selavu",
	}},
	{types.IntentAffirmative, []string{
		"yes", "yeah", "yep", "sure", "correct", "right", "of course", "okay", "ok",
		"haan", "bilkul", "theek hai", "sahi",
		"avunu", "sare",
	}},
	{types.IntentNegative, []string{
		"no", "nope", "not really",
		"nahi", "nahin",
		"ledu", "kadu", "vaddu",
	}},
	{types.IntentGreeting, []string{
		"hello", "hi", "hey",
		"namaste", "namaskar", "namaskaram",
	}},
}

// Matched keywords are high precision, so a hit carries a usable confidence.
// A miss forces confidence to 0, which drives the clarification path.
const (
	fallbackMatchConfidence = 0.85
	fallbackMissConfidence  = 0.0
)

// ExtractFallback is the deterministic keyword/regex extractor used when the
// scoring collaborator is unavailable, and as the only path when no model is
// configured. It never fails; at worst it returns an unknown intent with
// confidence 0.
func (i *Interpreter) ExtractFallback(utterance string, lang types.Language, state types.ConvState) types.InterpretResult {
	res := types.InterpretResult{
		Intent:     types.IntentUnknown,
		Confidence: fallbackMissConfidence,
		Sentiment:  LexiconScore(utterance, lang),
		Fallback:   true,
	}

	if target, ok := ParseSwitchRequest(utterance); ok {
		res.Intent = types.IntentLanguageSwitch
		res.Language = target
		res.Confidence = fallbackMatchConfidence
		return res
	}

	// Escape hatches win over everything else
	if containsAny(utterance, intentKeywords[0].words) {
		res.Intent = types.IntentRequestHuman
		res.Confidence = fallbackMatchConfidence
		return res
	}
	if containsAny(utterance, intentKeywords[1].words) {
		res.Intent = types.IntentClarificationNeeded
		res.Confidence = fallbackMatchConfidence
		return res
	}

	// State-biased entity extraction: in a question state a bare token like
	// "US" reads as the expected entity, not free text
	if et, ok := stateEntity[state]; ok {
		if value, found := extractEntity(et, utterance, lang); found {
			res.Intent = types.IntentProvideInfo
			res.Entities = map[string]string{string(et): value}
			res.Confidence = fallbackMatchConfidence
			// Bare yes/no answers also read as affirmative/negative
			if value == "yes" {
				res.Intent = types.IntentAffirmative
			} else if value == "no" {
				res.Intent = types.IntentNegative
			}
			return res
		}
	}

	for _, group := range intentKeywords[2:] {
		if containsAny(utterance, group.words) {
			res.Intent = group.intent
			res.Confidence = fallbackMatchConfidence
			return res
		}
	}

	if detected, ok := Detect(utterance); ok && detected != lang {
		res.Language = detected
	}

	return res
}

// containsAny matches keywords on word boundaries, lowercased
func containsAny(utterance string, words []string) bool {
	text := " " + strings.ToLower(strings.TrimSpace(utterance)) + " "
	text = strings.NewReplacer(",", " ", ".", " ", "!", " ", "?", " ").Replace(text)
	for _, w := range words {
		if strings.Contains(text, " "+w+" ") || (strings.Contains(w, " ") && strings.Contains(text, w)) {
			return true
		}
	}
	return false
}
