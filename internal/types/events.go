package types

import "time"

// Call event types published to the monitor stream
const (
	EventCallInitiated     = "call_initiated"
	EventCallConnected     = "call_connected"
	EventStateChanged      = "state_changed"
	EventTurnProcessed     = "turn_processed"
	EventCallEnded         = "call_ended"
	EventHandoffStarted    = "handoff_started"
	EventCallbackScheduled = "callback_scheduled"
	EventRetryScheduled    = "retry_scheduled"
	EventLeadUnreachable   = "lead_unreachable"
)

// CallEvent is one engine event, batched and broadcast to monitor clients
type CallEvent struct {
	Type      string    `json:"type"`
	CallID    string    `json:"callId"`
	LeadID    string    `json:"leadId,omitempty"`
	CallState CallState `json:"callState,omitempty"`
	ConvState ConvState `json:"convState,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// AlertSeverity represents the severity of a call alert
type AlertSeverity string

const (
	SeverityWarning  AlertSeverity = "warning"
	SeverityCritical AlertSeverity = "critical"
)

// CallAlert flags an operational condition on an active call
type CallAlert struct {
	Rule     string        `json:"rule"`
	Severity AlertSeverity `json:"severity"`
	Message  string        `json:"message"`
}

// CallSnapshot is the monitor view of one active call
type CallSnapshot struct {
	CallID        string      `json:"callId"`
	LeadID        string      `json:"leadId"`
	Phone         string      `json:"phone"`
	Direction     Direction   `json:"direction"`
	CallState     CallState   `json:"callState"`
	ConvState     ConvState   `json:"convState"`
	Language      Language    `json:"language"`
	RetryCount    int         `json:"retryCount"`
	StartedAt     time.Time   `json:"startedAt"`
	LastTurnAt    time.Time   `json:"lastTurnAt"`
	TurnCount     int         `json:"turnCount"`
	LastIntent    Intent      `json:"lastIntent,omitempty"`
	LastSentiment float64     `json:"lastSentiment"`
	Alerts        []CallAlert `json:"alerts,omitempty"`
}

// MonitorFrame is the per-second broadcast to monitor websocket clients
type MonitorFrame struct {
	Type        string         `json:"type"` // "call_overview"
	Timestamp   time.Time      `json:"timestamp"`
	ActiveCalls int            `json:"activeCalls"`
	AnswerRate  float64        `json:"answerRate"` // share of dials answered within threshold
	Calls       []CallSnapshot `json:"calls"`
	Events      []CallEvent    `json:"events,omitempty"`
}
