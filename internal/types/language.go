package types

import "strings"

// Language identifies a supported conversation language
type Language string

const (
	LangHinglish Language = "hinglish"
	LangEnglish  Language = "english"
	LangTelugu   Language = "telugu"
)

// DefaultLanguage is used when no preference is known
const DefaultLanguage = LangHinglish

// SupportedLanguages lists every language the engine can converse in
var SupportedLanguages = []Language{LangHinglish, LangEnglish, LangTelugu}

// ParseLanguage normalizes a language name, accepting common aliases
func ParseLanguage(s string) (Language, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hinglish", "hindi", "hi":
		return LangHinglish, true
	case "english", "en":
		return LangEnglish, true
	case "telugu", "te":
		return LangTelugu, true
	}
	return "", false
}
