// Package eligibility classifies collected qualification data into a loan
// category, urgency tier and lender recommendation. Every function here is
// pure: same inputs, same outputs, no side effects.
package eligibility

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dennisdiepolder/eduvoice/internal/types"
)

// ErrMissingFields means the category rules were invoked before both the
// collateral and coapplicant ITR answers were collected. The state machine
// must not call the engine that early.
var ErrMissingFields = errors.New("eligibility: collateral and coapplicant_itr both missing")

// RuleInput is the flattened view of collected data the category rules read
type RuleInput struct {
	Collateral string
	ITR        string
	Country    string
	Merit      types.Merit
}

// CategoryRule is one predicate/result pair in the decision table
type CategoryRule struct {
	Name     string
	When     func(in RuleInput) bool
	Category types.Category
}

// CategoryRules is the decision table, evaluated top to bottom. First match
// wins; the rules are not independent, so order is load-bearing.
var CategoryRules = []CategoryRule{
	{
		Name:     "collateral_secured",
		When:     func(in RuleInput) bool { return in.Collateral == "yes" },
		Category: types.CategoryPublicSecured,
	},
	{
		Name:     "coapplicant_itr_unsecured",
		When:     func(in RuleInput) bool { return in.Collateral == "no" && in.ITR == "yes" },
		Category: types.CategoryPrivateUnsecured,
	},
	{
		Name:     "intl_merit_usd",
		When:     func(in RuleInput) bool { return (in.Country == "US" || in.Country == "Canada") && in.Merit == types.MeritHigh },
		Category: types.CategoryIntlUSD,
	},
	{
		Name:     "default_escalate",
		When:     func(in RuleInput) bool { return true },
		Category: types.CategoryEscalate,
	},
}

// DetermineCategory walks the decision table and returns the first matching
// category along with the name of the rule that produced it.
func DetermineCategory(collected map[string]string) (types.Category, string, error) {
	in := RuleInput{
		Collateral: collected[types.FieldCollateral],
		ITR:        collected[types.FieldCoapplicantITR],
		Country:    collected[types.FieldCountry],
		Merit:      DeriveMerit(collected),
	}
	if in.Collateral == "" && in.ITR == "" {
		return "", "", ErrMissingFields
	}
	for _, r := range CategoryRules {
		if r.When(in) {
			return r.Category, r.Name, nil
		}
	}
	// the final rule is a catch-all
	return types.CategoryEscalate, "default_escalate", nil
}

// DeriveMerit grades the academic profile: a confirmed offer letter for a
// Master's or PhD program reads as high merit.
func DeriveMerit(collected map[string]string) types.Merit {
	if collected[types.FieldOfferLetter] == "yes" {
		switch collected[types.FieldDegree] {
		case "Master's", "PhD":
			return types.MeritHigh
		}
	}
	return types.MeritStandard
}

var (
	urgencyDatePat   = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)
	urgencyDaysPat   = regexp.MustCompile(`(\d+)\s*days?`)
	urgencyWeeksPat  = regexp.MustCompile(`(\d+)\s*weeks?`)
	urgencyMonthsPat = regexp.MustCompile(`(\d+)\s*months?`)
)

// DetermineUrgency maps the visa-timeline text to a tier: under 30 days is
// high, 30 through 90 is medium, beyond 90 is low. The bool reports whether
// the text parsed; on false the medium default applies and the caller should
// record a data-quality event.
func DetermineUrgency(timeline string, now time.Time) (types.Urgency, bool) {
	days, ok := timelineDays(timeline, now)
	if !ok {
		return types.UrgencyMedium, false
	}
	switch {
	case days < 30:
		return types.UrgencyHigh, true
	case days <= 90:
		return types.UrgencyMedium, true
	default:
		return types.UrgencyLow, true
	}
}

// timelineDays converts timeline text to a day count from now. Dates in the
// past clamp to zero: an overdue visa is maximally urgent, not invalid.
func timelineDays(text string, now time.Time) (int, bool) {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return 0, false
	}
	if m := urgencyDatePat.FindStringSubmatch(text); m != nil {
		d, err := time.Parse("2006-01-02", m[1])
		if err == nil {
			days := int(math.Ceil(d.Sub(now).Hours() / 24))
			if days < 0 {
				days = 0
			}
			return days, true
		}
	}
	if m := urgencyDaysPat.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n, true
	}
	if m := urgencyWeeksPat.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n * 7, true
	}
	if m := urgencyMonthsPat.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n * 30, true
	}
	return 0, false
}

// Engine evaluates qualification data against an injected lender rule set
type Engine struct {
	lenders LenderSet
}

// New creates an Engine over the given lender set
func New(lenders LenderSet) *Engine {
	return &Engine{lenders: lenders}
}

// Evaluate runs the full decision: category, merit, urgency and the lender
// recommendation. The bool reports whether the visa timeline parsed; callers
// treat false as a data-quality event, not an error.
func (e *Engine) Evaluate(collected map[string]string, now time.Time) (types.EligibilityResult, bool, error) {
	category, rule, err := DetermineCategory(collected)
	if err != nil {
		return types.EligibilityResult{}, false, err
	}
	urgency, parsed := DetermineUrgency(collected[types.FieldVisaTimeline], now)
	return types.EligibilityResult{
		Category:   category,
		Urgency:    urgency,
		Merit:      DeriveMerit(collected),
		Lenders:    e.lenders.Recommend(category, urgency),
		Rule:       rule,
		ComputedAt: now,
	}, parsed, nil
}
