package interpreter

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/dennisdiepolder/eduvoice/internal/types"
)

// stateEntity binds each question state to the entity it collects
var stateEntity = map[types.ConvState]types.EntityType{
	types.StateLanguageDetection:    types.EntityLanguage,
	types.StateDegreeQuestion:       types.EntityDegree,
	types.StateCountryQuestion:      types.EntityCountry,
	types.StateLoanAmountQuestion:   types.EntityLoanAmount,
	types.StateOfferLetterQuestion:  types.EntityYesNo,
	types.StateCoapplicantQuestion:  types.EntityITRStatus,
	types.StateCollateralQuestion:   types.EntityCollateral,
	types.StateVisaTimelineQuestion: types.EntityVisaTimeline,
}

// ExpectedEntity returns the entity a question state collects
func ExpectedEntity(state types.ConvState) (types.EntityType, bool) {
	et, ok := stateEntity[state]
	return et, ok
}

var countryAliases = map[string]string{
	"us": "US", "usa": "US", "u.s.": "US", "u.s.a.": "US", "united states": "US", "america": "US", "states": "US",
	"canada": "Canada",
	"uk": "UK", "u.k.": "UK", "united kingdom": "UK", "britain": "UK", "england": "UK",
	"australia": "Australia",
	"germany":   "Germany",
	"ireland":   "Ireland",
	"france":    "France",
	"singapore": "Singapore",
	"new zealand": "New Zealand",
}

var knownCountries = map[string]bool{
	"US": true, "Canada": true, "UK": true, "Australia": true, "Germany": true,
	"Ireland": true, "France": true, "Singapore": true, "New Zealand": true,
}

var degreePatterns = []struct {
	re     *regexp.Regexp
	degree string
}{
	{regexp.MustCompile(`(?i)\b(phd|ph\.d|doctorate|doctoral)\b`), "PhD"},
	{regexp.MustCompile(`(?i)\b(master'?s?|m\.?tech|m\.?s\b|msc|mba|m\.?e\b|pg|postgrad\w*)`), "Master's"},
	{regexp.MustCompile(`(?i)\b(bachelor'?s?|b\.?tech|b\.?e\b|bsc|b\.?com|bba|undergrad\w*)`), "Bachelor's"},
}

var (
	amountRe   = regexp.MustCompile(`(?i)([\d,]+(?:\.\d+)?)\s*(crores?|cr|lakhs?|lacs?|l|millions?|mn|thousands?|k)?\b`)
	daysRe     = regexp.MustCompile(`(?i)(\d+)\s*days?`)
	weeksRe    = regexp.MustCompile(`(?i)(\d+)\s*weeks?`)
	monthsRe   = regexp.MustCompile(`(?i)(\d+)\s*months?`)
	isoDateRe  = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)
)

var yesWords = []string{"yes", "yeah", "yep", "sure", "correct", "haan", "bilkul", "theek", "sahi", "avunu", "sare", "ok", "okay"}
var noWords = []string{"no", "nope", "nahi", "nahin", "ledu", "kadu", "vaddu", "not"}

// parseYesNo reads an affirmative/negative answer, with domain synonyms
func parseYesNo(utterance string, extraYes, extraNo []string) (string, bool) {
	if containsAny(utterance, extraNo) || containsAny(utterance, noWords) {
		return "no", true
	}
	if containsAny(utterance, extraYes) || containsAny(utterance, yesWords) {
		return "yes", true
	}
	return "", false
}

// extractEntity pulls one entity of the given type out of free text, returning
// the canonical value. A miss returns found=false; callers treat that as "no
// entity extracted".
func extractEntity(et types.EntityType, utterance string, lang types.Language) (string, bool) {
	text := strings.ToLower(strings.TrimSpace(utterance))

	switch et {
	case types.EntityCountry:
		for alias, canonical := range countryAliases {
			if strings.Contains(" "+sanitize(text)+" ", " "+alias+" ") {
				return canonical, true
			}
		}
		return "", false

	case types.EntityDegree:
		for _, p := range degreePatterns {
			if p.re.MatchString(text) {
				return p.degree, true
			}
		}
		return "", false

	case types.EntityLoanAmount:
		return parseAmount(text)

	case types.EntityYesNo:
		return parseYesNo(utterance, []string{"received", "mil gaya", "vachindi", "got it"}, []string{"waiting", "not yet", "abhi nahi"})

	case types.EntityITRStatus:
		return parseYesNo(utterance,
			[]string{"files", "filed", "filing", "tax return", "itr hai", "bharta", "bharte"},
			[]string{"doesn't file", "does not file", "no itr", "nahi bharta", "nahi bharte"})

	case types.EntityCollateral:
		return parseYesNo(utterance,
			[]string{"property", "house", "land", "gold", "fixed deposit", "fd", "flat", "plot", "makaan", "zameen", "illu", "bhoomi"},
			nil)

	case types.EntityVisaTimeline:
		return parseTimeline(text)

	case types.EntityLanguage:
		if l, ok := types.ParseLanguage(text); ok {
			return string(l), true
		}
		for _, name := range []string{"english", "hindi", "hinglish", "telugu"} {
			if strings.Contains(" "+sanitize(text)+" ", " "+name+" ") {
				l, _ := types.ParseLanguage(name)
				return string(l), true
			}
		}
		if detected, ok := Detect(utterance); ok {
			return string(detected), true
		}
		return "", false
	}

	return "", false
}

func sanitize(text string) string {
	return strings.NewReplacer(",", " ", ".", " ", "!", " ", "?", " ").Replace(text)
}

// parseAmount normalizes Indian and western amount phrasings to plain rupees
func parseAmount(text string) (string, bool) {
	m := amountRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	n, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil || n <= 0 {
		return "", false
	}
	switch strings.ToLower(strings.TrimSpace(m[2])) {
	case "crore", "crores", "cr":
		n *= 1e7
	case "lakh", "lakhs", "lac", "lacs", "l":
		n *= 1e5
	case "million", "millions", "mn":
		n *= 1e6
	case "thousand", "thousands", "k":
		n *= 1e3
	}
	return strconv.FormatFloat(n, 'f', -1, 64), true
}

// parseTimeline canonicalizes visa-timeline phrasings to "N days" or an ISO date
func parseTimeline(text string) (string, bool) {
	if m := isoDateRe.FindStringSubmatch(text); m != nil {
		return m[1], true
	}
	if m := daysRe.FindStringSubmatch(text); m != nil {
		return m[1] + " days", true
	}
	if m := weeksRe.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		return strconv.Itoa(n*7) + " days", true
	}
	if m := monthsRe.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		return strconv.Itoa(n*30) + " days", true
	}
	return "", false
}

// ValidateEntity checks one extracted value against its type's validator and
// returns the canonical form. Invalid values are dropped by callers.
func ValidateEntity(et types.EntityType, raw string, lang types.Language) (string, bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", false
	}

	switch et {
	case types.EntityCountry:
		if canonical, ok := countryAliases[strings.ToLower(value)]; ok {
			return canonical, true
		}
		if knownCountries[value] {
			return value, true
		}
		return "", false

	case types.EntityDegree:
		switch strings.ToLower(value) {
		case "bachelor's", "bachelors", "bachelor":
			return "Bachelor's", true
		case "master's", "masters", "master":
			return "Master's", true
		case "phd", "ph.d", "doctorate":
			return "PhD", true
		}
		return extractEntity(et, value, lang)

	case types.EntityLoanAmount:
		n, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", ""), 64)
		if err == nil {
			if n <= 0 {
				return "", false
			}
			return strconv.FormatFloat(n, 'f', -1, 64), true
		}
		return extractEntity(et, value, lang)

	case types.EntityYesNo, types.EntityITRStatus, types.EntityCollateral:
		switch strings.ToLower(value) {
		case "yes", "no":
			return strings.ToLower(value), true
		}
		return extractEntity(et, value, lang)

	case types.EntityVisaTimeline:
		return parseTimeline(strings.ToLower(value))

	case types.EntityLanguage:
		if l, ok := types.ParseLanguage(value); ok {
			return string(l), true
		}
		return "", false
	}

	return "", false
}

// validateEntities filters a model-extracted entity map through the validators
func validateEntities(entities map[string]string, lang types.Language) map[string]string {
	if len(entities) == 0 {
		return nil
	}
	valid := make(map[string]string, len(entities))
	for key, raw := range entities {
		if canonical, ok := ValidateEntity(types.EntityType(key), raw, lang); ok {
			valid[key] = canonical
		}
	}
	if len(valid) == 0 {
		return nil
	}
	return valid
}
