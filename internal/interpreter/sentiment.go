package interpreter

import (
	"strings"

	"github.com/dennisdiepolder/eduvoice/internal/types"
)

// Per-language sentiment lexicons. Scores are coarse on purpose: the lexicon
// contributes 30% of the blended score and 100% of the fallback score.
var positiveWords = map[types.Language][]string{
	types.LangEnglish:  {"good", "great", "thanks", "thank", "perfect", "helpful", "nice", "awesome", "sure", "happy"},
	types.LangHinglish: {"acha", "accha", "badhiya", "shukriya", "dhanyavad", "sahi", "mast", "theek"},
	types.LangTelugu:   {"bagundi", "chala bagundi", "dhanyavadalu", "manchidi", "super"},
}

var negativeWords = map[types.Language][]string{
	types.LangEnglish:  {"bad", "problem", "issue", "waste", "useless", "annoying", "angry", "terrible", "worst", "frustrated", "stop calling"},
	types.LangHinglish: {"bura", "bakwas", "bekar", "gussa", "pareshan", "faltu", "band karo"},
	types.LangTelugu:   {"chedda", "waste", "kopam", "visigipoya", "vaddu"},
}

// Aggressive-tone markers trigger escalation regardless of the numeric score
var aggressiveWords = map[types.Language][]string{
	types.LangEnglish:  {"stupid", "idiot", "shut up", "scam", "fraud", "nonsense", "sue you", "harassment"},
	types.LangHinglish: {"bakwas band", "chup", "pagal", "dhokha", "fraud", "bewakoof"},
	types.LangTelugu:   {"moorkhuda", "mosam", "nonsense", "noru muyyi"},
}

// LexiconScore computes a keyword sentiment in [-1, 1] for one utterance.
// The english lexicon always applies; the conversation language adds its own.
func LexiconScore(utterance string, lang types.Language) float64 {
	text := " " + strings.ToLower(utterance) + " "

	pos := countHits(text, positiveWords[types.LangEnglish])
	neg := countHits(text, negativeWords[types.LangEnglish])
	if lang != types.LangEnglish {
		pos += countHits(text, positiveWords[lang])
		neg += countHits(text, negativeWords[lang])
	}

	if pos+neg == 0 {
		return 0
	}
	return float64(pos-neg) / float64(pos+neg)
}

// AggressiveTone reports whether the utterance carries abusive or hostile
// phrasing in the conversation language or english
func AggressiveTone(utterance string, lang types.Language) bool {
	text := strings.ToLower(utterance)
	for _, w := range aggressiveWords[types.LangEnglish] {
		if strings.Contains(text, w) {
			return true
		}
	}
	if lang != types.LangEnglish {
		for _, w := range aggressiveWords[lang] {
			if strings.Contains(text, w) {
				return true
			}
		}
	}
	return false
}

func countHits(text string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(text, w) {
			n++
		}
	}
	return n
}
