package alerts

import (
	"fmt"
	"time"

	"github.com/dennisdiepolder/eduvoice/internal/types"
)

// Thresholds for the operational call alerts on the monitor stream
const (
	silentLongAfter = 45 * time.Second
	callLongAfter   = 15 * time.Minute
)

// CheckCallAlerts evaluates alert rules for a slice of active-call snapshots,
// mutating each snapshot's Alerts field in place.
func CheckCallAlerts(calls []types.CallSnapshot) {
	now := time.Now()
	for i := range calls {
		calls[i].Alerts = nil

		if calls[i].CallState != types.CallInProgress {
			continue
		}

		last := calls[i].LastTurnAt
		if last.IsZero() {
			last = calls[i].StartedAt
		}
		if dur := now.Sub(last); dur > silentLongAfter {
			calls[i].Alerts = append(calls[i].Alerts, types.CallAlert{
				Rule:     "silent_long",
				Severity: types.SeverityWarning,
				Message:  fmt.Sprintf("No turn for %s", formatDuration(dur)),
			})
		}

		if dur := now.Sub(calls[i].StartedAt); dur > callLongAfter {
			calls[i].Alerts = append(calls[i].Alerts, types.CallAlert{
				Rule:     "call_long",
				Severity: types.SeverityCritical,
				Message:  fmt.Sprintf("On the line for %s", formatDuration(dur)),
			})
		}
	}
}

func formatDuration(d time.Duration) string {
	mins := int(d.Minutes())
	secs := int(d.Seconds()) % 60
	if mins >= 60 {
		hours := mins / 60
		mins = mins % 60
		return fmt.Sprintf("%dh%dm", hours, mins)
	}
	return fmt.Sprintf("%dm%ds", mins, secs)
}
