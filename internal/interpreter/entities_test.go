package interpreter

import (
	"testing"

	"github.com/dennisdiepolder/eduvoice/internal/types"
)

func TestValidateEntity(t *testing.T) {
	tests := []struct {
		name  string
		et    types.EntityType
		raw   string
		want  string
		valid bool
	}{
		{"country alias", types.EntityCountry, "usa", "US", true},
		{"country canonical", types.EntityCountry, "Canada", "Canada", true},
		{"country unknown", types.EntityCountry, "atlantis", "", false},
		{"degree masters", types.EntityDegree, "masters", "Master's", true},
		{"degree free text", types.EntityDegree, "doing my btech", "Bachelor's", true},
		{"degree invalid", types.EntityDegree, "diploma in cooking", "", false},
		{"amount plain", types.EntityLoanAmount, "300000", "300000", true},
		{"amount with commas", types.EntityLoanAmount, "3,00,000", "300000", true},
		{"amount negative", types.EntityLoanAmount, "-500", "", false},
		{"amount words", types.EntityLoanAmount, "1.5 cr", "15000000", true},
		{"yes no canonical", types.EntityYesNo, "yes", "yes", true},
		{"yes no free text", types.EntityYesNo, "haan mil gaya", "yes", true},
		{"collateral gold", types.EntityCollateral, "gold hai", "yes", true},
		{"itr negative", types.EntityITRStatus, "does not file", "no", true},
		{"timeline days", types.EntityVisaTimeline, "45 days", "45 days", true},
		{"timeline months", types.EntityVisaTimeline, "2 months", "60 days", true},
		{"timeline date", types.EntityVisaTimeline, "2026-10-01", "2026-10-01", true},
		{"timeline garbage", types.EntityVisaTimeline, "soon hopefully", "", false},
		{"language", types.EntityLanguage, "Telugu", "telugu", true},
		{"language unknown", types.EntityLanguage, "french", "", false},
		{"empty value", types.EntityCountry, "  ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ValidateEntity(tt.et, tt.raw, types.LangEnglish)
			if ok != tt.valid {
				t.Fatalf("expected valid=%v, got %v (value %q)", tt.valid, ok, got)
			}
			if ok && got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"25 lakhs", "2500000", true},
		{"1 crore", "10000000", true},
		{"40k", "40000", true},
		{"$45,000", "45000", true},
		{"2.5 lakh", "250000", true},
		{"no number here", "", false},
	}

	for _, tt := range tests {
		got, ok := parseAmount(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("parseAmount(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestExpectedEntity(t *testing.T) {
	if et, ok := ExpectedEntity(types.StateVisaTimelineQuestion); !ok || et != types.EntityVisaTimeline {
		t.Errorf("expected visa_timeline entity, got %s (%v)", et, ok)
	}
	if _, ok := ExpectedEntity(types.StateGoodbye); ok {
		t.Error("goodbye collects no entity")
	}
}
