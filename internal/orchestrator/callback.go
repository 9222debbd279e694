package orchestrator

import (
	"strings"
	"time"
)

const (
	// defaultCallbackDelay is used when no preference can be parsed
	defaultCallbackDelay = time.Hour
	morningHour          = 10
	eveningHour          = 18
)

// Preferred-time keywords across the supported languages. Matching is
// whole-word so "kal" does not fire inside unrelated words.
var (
	tomorrowWords = []string{"tomorrow", "kal", "kallow", "repu", "reppu"}
	morningWords  = []string{"morning", "subah", "savere", "poddunna", "podduna", "udayam"}
	eveningWords  = []string{"evening", "shaam", "sham", "sayantram", "sayankalam"}
)

// ParseCallbackTime turns a spoken callback preference into a concrete slot.
// "tomorrow" books the next day, a time-of-day word picks the hour (morning
// 10:00, evening 18:00, composable with "tomorrow"), and a slot already in
// the past rolls forward a day. When nothing matches, the slot defaults to an
// hour from now and matched is false.
func ParseCallbackTime(text string, now time.Time) (at time.Time, matched bool) {
	tomorrow := containsAnyWord(text, tomorrowWords)
	morning := containsAnyWord(text, morningWords)
	evening := containsAnyWord(text, eveningWords)

	if !tomorrow && !morning && !evening {
		return now.Add(defaultCallbackDelay), false
	}

	day := now
	if tomorrow {
		day = now.AddDate(0, 0, 1)
	}
	hour := morningHour
	if evening {
		hour = eveningHour
	}

	at = time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, now.Location())
	if !at.After(now) {
		at = at.AddDate(0, 0, 1)
	}
	return at, true
}

func containsAnyWord(text string, words []string) bool {
	for _, field := range strings.Fields(strings.ToLower(text)) {
		field = strings.Trim(field, ".,!?;:")
		for _, w := range words {
			if field == w {
				return true
			}
		}
	}
	return false
}
