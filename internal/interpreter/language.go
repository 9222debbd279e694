package interpreter

import (
	"strings"
	"unicode"

	"github.com/dennisdiepolder/eduvoice/internal/types"
)

// Romanized markers used when no native script is present
var hinglishMarkers = []string{"hai", "nahi", "kya", "acha", "accha", "theek", "haan", "karo", "chahiye", "bata", "matlab"}
var teluguMarkers = []string{"andi", "avunu", "ledu", "cheppandi", "kavali", "unnaru", "ela", "enti", "meeru"}

// Detect guesses the utterance language from script ranges and romanized
// markers. The bool is false when nothing distinguishes it from plain english.
func Detect(utterance string) (types.Language, bool) {
	for _, r := range utterance {
		if unicode.In(r, unicode.Telugu) {
			return types.LangTelugu, true
		}
		if unicode.In(r, unicode.Devanagari) {
			return types.LangHinglish, true
		}
	}

	text := " " + strings.ToLower(utterance) + " "
	for _, m := range teluguMarkers {
		if strings.Contains(text, " "+m+" ") {
			return types.LangTelugu, true
		}
	}
	for _, m := range hinglishMarkers {
		if strings.Contains(text, " "+m+" ") {
			return types.LangHinglish, true
		}
	}

	return "", false
}

// Switch-request phrases mapped to the requested language
var switchPhrases = map[string]types.Language{
	"in english":          types.LangEnglish,
	"speak english":       types.LangEnglish,
	"english me":          types.LangEnglish,
	"english mein":        types.LangEnglish,
	"english lo":          types.LangEnglish,
	"in hindi":            types.LangHinglish,
	"speak hindi":         types.LangHinglish,
	"hindi me":            types.LangHinglish,
	"hindi mein":          types.LangHinglish,
	"hindi me baat":       types.LangHinglish,
	"in telugu":           types.LangTelugu,
	"speak telugu":        types.LangTelugu,
	"telugu lo":           types.LangTelugu,
	"telugu me":           types.LangTelugu,
	"telugu lo matladandi": types.LangTelugu,
}

// ParseSwitchRequest recognizes an explicit ask to change the conversation
// language and returns the target
func ParseSwitchRequest(utterance string) (types.Language, bool) {
	text := strings.ToLower(utterance)
	for phrase, lang := range switchPhrases {
		if strings.Contains(text, phrase) {
			return lang, true
		}
	}
	return "", false
}
