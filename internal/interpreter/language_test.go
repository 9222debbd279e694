package interpreter

import (
	"testing"

	"github.com/dennisdiepolder/eduvoice/internal/types"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name      string
		utterance string
		want      types.Language
		ok        bool
	}{
		{"telugu script", "నాకు లోన్ కావాలి", types.LangTelugu, true},
		{"devanagari script", "मुझे लोन चाहिए", types.LangHinglish, true},
		{"romanized telugu", "avunu andi", types.LangTelugu, true},
		{"romanized hinglish", "haan theek hai", types.LangHinglish, true},
		{"plain english", "I want a loan for canada", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Detect(tt.utterance)
			if ok != tt.ok || got != tt.want {
				t.Errorf("Detect(%q) = %q, %v; want %q, %v", tt.utterance, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestParseSwitchRequest(t *testing.T) {
	tests := []struct {
		name      string
		utterance string
		want      types.Language
		ok        bool
	}{
		{"to english", "please speak english", types.LangEnglish, true},
		{"to hindi", "hindi mein baat karo", types.LangHinglish, true},
		{"to telugu", "telugu lo matladandi", types.LangTelugu, true},
		{"case insensitive", "Speak English please", types.LangEnglish, true},
		{"no request", "continue please", "", false},
		{"mentions language without asking", "my english is weak", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseSwitchRequest(tt.utterance)
			if ok != tt.ok || got != tt.want {
				t.Errorf("ParseSwitchRequest(%q) = %q, %v; want %q, %v", tt.utterance, got, ok, tt.want, tt.ok)
			}
		})
	}
}
