package eligibility

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/dennisdiepolder/eduvoice/internal/types"
)

func TestDetermineCategory(t *testing.T) {
	tests := []struct {
		name      string
		collected map[string]string
		want      types.Category
		wantRule  string
	}{
		{
			name:      "collateral wins regardless of other fields",
			collected: map[string]string{types.FieldCollateral: "yes", types.FieldCountry: "UK"},
			want:      types.CategoryPublicSecured,
			wantRule:  "collateral_secured",
		},
		{
			name: "collateral outranks itr and merit",
			collected: map[string]string{
				types.FieldCollateral:     "yes",
				types.FieldCoapplicantITR: "yes",
				types.FieldCountry:        "US",
				types.FieldOfferLetter:    "yes",
				types.FieldDegree:         "PhD",
			},
			want:     types.CategoryPublicSecured,
			wantRule: "collateral_secured",
		},
		{
			name:      "itr without collateral",
			collected: map[string]string{types.FieldCollateral: "no", types.FieldCoapplicantITR: "yes"},
			want:      types.CategoryPrivateUnsecured,
			wantRule:  "coapplicant_itr_unsecured",
		},
		{
			name:      "neither collateral nor itr",
			collected: map[string]string{types.FieldCollateral: "no", types.FieldCoapplicantITR: "no"},
			want:      types.CategoryEscalate,
			wantRule:  "default_escalate",
		},
		{
			name: "us high merit",
			collected: map[string]string{
				types.FieldCollateral:     "no",
				types.FieldCoapplicantITR: "no",
				types.FieldCountry:        "US",
				types.FieldOfferLetter:    "yes",
				types.FieldDegree:         "Master's",
			},
			want:     types.CategoryIntlUSD,
			wantRule: "intl_merit_usd",
		},
		{
			name: "canada high merit",
			collected: map[string]string{
				types.FieldCollateral:     "no",
				types.FieldCoapplicantITR: "no",
				types.FieldCountry:        "Canada",
				types.FieldOfferLetter:    "yes",
				types.FieldDegree:         "PhD",
			},
			want:     types.CategoryIntlUSD,
			wantRule: "intl_merit_usd",
		},
		{
			name: "high merit outside us and canada",
			collected: map[string]string{
				types.FieldCollateral:     "no",
				types.FieldCoapplicantITR: "no",
				types.FieldCountry:        "UK",
				types.FieldOfferLetter:    "yes",
				types.FieldDegree:         "PhD",
			},
			want:     types.CategoryEscalate,
			wantRule: "default_escalate",
		},
		{
			name: "us with standard merit",
			collected: map[string]string{
				types.FieldCollateral:     "no",
				types.FieldCoapplicantITR: "no",
				types.FieldCountry:        "US",
				types.FieldOfferLetter:    "no",
				types.FieldDegree:         "PhD",
			},
			want:     types.CategoryEscalate,
			wantRule: "default_escalate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, rule, err := DetermineCategory(tt.collected)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected category %s, got %s", tt.want, got)
			}
			if rule != tt.wantRule {
				t.Errorf("expected rule %s, got %s", tt.wantRule, rule)
			}
		})
	}
}

func TestDetermineCategoryMissingFields(t *testing.T) {
	_, _, err := DetermineCategory(map[string]string{types.FieldCountry: "US"})
	if !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}
}

func TestDeriveMerit(t *testing.T) {
	tests := []struct {
		name      string
		collected map[string]string
		want      types.Merit
	}{
		{"offer and masters", map[string]string{types.FieldOfferLetter: "yes", types.FieldDegree: "Master's"}, types.MeritHigh},
		{"offer and phd", map[string]string{types.FieldOfferLetter: "yes", types.FieldDegree: "PhD"}, types.MeritHigh},
		{"offer and bachelors", map[string]string{types.FieldOfferLetter: "yes", types.FieldDegree: "Bachelor's"}, types.MeritStandard},
		{"no offer", map[string]string{types.FieldOfferLetter: "no", types.FieldDegree: "PhD"}, types.MeritStandard},
		{"nothing collected", map[string]string{}, types.MeritStandard},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveMerit(tt.collected); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestDetermineUrgency(t *testing.T) {
	now := time.Date(2026, 8, 21, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		timeline string
		want     types.Urgency
		parsed   bool
	}{
		{"just under the high boundary", "29 days", types.UrgencyHigh, true},
		{"exactly 30 days", "30 days", types.UrgencyMedium, true},
		{"exactly 90 days", "90 days", types.UrgencyMedium, true},
		{"just over the medium boundary", "91 days", types.UrgencyLow, true},
		{"weeks", "4 weeks", types.UrgencyHigh, true},
		{"months", "3 months", types.UrgencyMedium, true},
		{"free text around the number", "15 days from now", types.UrgencyHigh, true},
		{"iso date soon", "2026-09-05", types.UrgencyHigh, true},
		{"iso date far", "2026-12-01", types.UrgencyLow, true},
		{"past date clamps to zero days", "2026-08-01", types.UrgencyHigh, true},
		{"unparseable defaults to medium", "soon hopefully", types.UrgencyMedium, false},
		{"empty defaults to medium", "", types.UrgencyMedium, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, parsed := DetermineUrgency(tt.timeline, now)
			if got != tt.want || parsed != tt.parsed {
				t.Errorf("DetermineUrgency(%q) = %s, %v; want %s, %v", tt.timeline, got, parsed, tt.want, tt.parsed)
			}
		})
	}
}

func TestEvaluate(t *testing.T) {
	now := time.Date(2026, 8, 21, 10, 0, 0, 0, time.UTC)
	engine := New(DefaultLenders())

	collected := map[string]string{
		types.FieldDegree:         "Master's",
		types.FieldCountry:        "US",
		types.FieldLoanAmount:     "2500000",
		types.FieldOfferLetter:    "yes",
		types.FieldCoapplicantITR: "no",
		types.FieldCollateral:     "no",
		types.FieldVisaTimeline:   "15 days",
	}

	result, parsed, err := engine.Evaluate(collected, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !parsed {
		t.Error("expected timeline to parse")
	}
	if result.Category != types.CategoryIntlUSD {
		t.Errorf("expected intl_usd, got %s", result.Category)
	}
	if result.Urgency != types.UrgencyHigh {
		t.Errorf("expected high urgency, got %s", result.Urgency)
	}
	if result.Merit != types.MeritHigh {
		t.Errorf("expected high merit, got %s", result.Merit)
	}
	if result.Rule != "intl_merit_usd" {
		t.Errorf("expected rule intl_merit_usd, got %s", result.Rule)
	}
	// high urgency puts the fast-track lender first
	wantLenders := []string{"Leap Finance", "Prodigy Finance", "MPower Financing"}
	if !reflect.DeepEqual(result.Lenders, wantLenders) {
		t.Errorf("expected lenders %v, got %v", wantLenders, result.Lenders)
	}
	if !result.ComputedAt.Equal(now) {
		t.Errorf("expected ComputedAt %v, got %v", now, result.ComputedAt)
	}

	again, _, err := engine.Evaluate(collected, now)
	if err != nil {
		t.Fatalf("unexpected error on repeat: %v", err)
	}
	if !reflect.DeepEqual(result, again) {
		t.Errorf("expected identical result on repeat, got %+v vs %+v", result, again)
	}
}

func TestEvaluateUnparseableTimeline(t *testing.T) {
	now := time.Date(2026, 8, 21, 10, 0, 0, 0, time.UTC)
	engine := New(DefaultLenders())

	result, parsed, err := engine.Evaluate(map[string]string{
		types.FieldCollateral:   "yes",
		types.FieldVisaTimeline: "after my cousin's wedding",
	}, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed {
		t.Error("expected unparsed timeline flag")
	}
	if result.Urgency != types.UrgencyMedium {
		t.Errorf("expected medium default, got %s", result.Urgency)
	}
}

func TestEvaluateMissingFields(t *testing.T) {
	engine := New(DefaultLenders())
	_, _, err := engine.Evaluate(map[string]string{types.FieldDegree: "PhD"}, time.Now())
	if !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}
}
