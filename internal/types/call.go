package types

import "time"

// CallState represents the telephony lifecycle state of a call
type CallState string

const (
	CallInitiated  CallState = "initiated"
	CallDialing    CallState = "dialing"
	CallRinging    CallState = "ringing"
	CallConnected  CallState = "connected"
	CallInProgress CallState = "in_progress"
	CallEnding     CallState = "ending"
	CallCompleted  CallState = "completed"
	CallFailed     CallState = "failed"
	CallNoAnswer   CallState = "no_answer"
	CallBusy       CallState = "busy"
)

// CallStateTransitions is the allowed lifecycle graph, checked on every move
var CallStateTransitions = map[CallState][]CallState{
	CallInitiated:  {CallDialing, CallFailed},
	CallDialing:    {CallRinging, CallConnected, CallNoAnswer, CallBusy, CallFailed},
	CallRinging:    {CallConnected, CallNoAnswer, CallBusy, CallFailed},
	CallConnected:  {CallInProgress, CallEnding, CallFailed},
	CallInProgress: {CallEnding, CallCompleted, CallFailed},
	CallEnding:     {CallCompleted, CallFailed},
}

// CanTransition reports whether moving from one call state to another is legal
func CanTransition(from, to CallState) bool {
	for _, next := range CallStateTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the call state is final
func (s CallState) IsTerminal() bool {
	switch s {
	case CallCompleted, CallFailed, CallNoAnswer, CallBusy:
		return true
	}
	return false
}

// Retryable reports whether the terminal state qualifies for the retry policy
func (s CallState) Retryable() bool {
	switch s {
	case CallFailed, CallNoAnswer, CallBusy:
		return true
	}
	return false
}

// Direction distinguishes who placed the call
type Direction string

const (
	DirectionOutbound Direction = "outbound"
	DirectionInbound  Direction = "inbound"
)

// EndReason values reported by the telephony collaborator
const (
	EndReasonHangup      = "hangup"
	EndReasonNoAnswer    = "no_answer"
	EndReasonBusy        = "busy"
	EndReasonFailed      = "failed"
	EndReasonTransferred = "transferred"
	EndReasonForceEnded  = "force_ended"
)

// Call represents one telephone call tracked by the lifecycle controller
type Call struct {
	CallID      string     `json:"callId"`
	LeadID      string     `json:"leadId"`
	Phone       string     `json:"phone"`
	Direction   Direction  `json:"direction"`
	State       CallState  `json:"state"`
	Language    Language   `json:"language"`
	RetryCount  int        `json:"retryCount"`
	LastError   string     `json:"lastError,omitempty"`
	RetryAt     *time.Time `json:"retryAt,omitempty"`
	StartTime   time.Time  `json:"startTime"`
	ConnectTime *time.Time `json:"connectTime,omitempty"`
	EndTime     *time.Time `json:"endTime,omitempty"`
	EndReason   string     `json:"endReason,omitempty"`
	HandoffID   string     `json:"handoffId,omitempty"`
}
