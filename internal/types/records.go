package types

// CallRecord represents a finished or scheduled call for DynamoDB persistence
type CallRecord struct {
	DateKey     string  `json:"dateKey" dynamodbav:"DateKey"` // YYYY-MM-DD (partition key)
	CallID      string  `json:"callId" dynamodbav:"CallID"`   // sort key
	LeadID      string  `json:"leadId" dynamodbav:"LeadID"`
	Phone       string  `json:"phone" dynamodbav:"Phone"`
	Direction   string  `json:"direction" dynamodbav:"Direction"`
	Language    string  `json:"language" dynamodbav:"Language"`
	FinalState  string  `json:"finalState" dynamodbav:"FinalState"`
	EndReason   string  `json:"endReason" dynamodbav:"EndReason"`
	RetryCount  int     `json:"retryCount" dynamodbav:"RetryCount"`
	LastError   string  `json:"lastError,omitempty" dynamodbav:"LastError"`
	RetryAt     string  `json:"retryAt,omitempty" dynamodbav:"RetryAt"` // RFC3339, empty if none scheduled
	StartTime   string  `json:"startTime" dynamodbav:"StartTime"`       // RFC3339
	ConnectTime string  `json:"connectTime,omitempty" dynamodbav:"ConnectTime"`
	EndTime     string  `json:"endTime,omitempty" dynamodbav:"EndTime"`
	DurationSec float64 `json:"durationSec" dynamodbav:"DurationSec"`
	Turns       int     `json:"turns" dynamodbav:"Turns"`
	Outcome     string  `json:"outcome,omitempty" dynamodbav:"Outcome"` // qualified|handoff|callback|unreachable|incomplete
	Category    string  `json:"category,omitempty" dynamodbav:"Category"`
	HandoffID   string  `json:"handoffId,omitempty" dynamodbav:"HandoffID"`
}

// LeadRecord is the DynamoDB shape of a Lead (RecordKey partitions lead rows
// from handoff rows within the same item collection)
type LeadRecord struct {
	LeadID    string            `json:"leadId" dynamodbav:"LeadID"`       // partition key
	RecordKey string            `json:"recordKey" dynamodbav:"RecordKey"` // sort key, "PROFILE" for the lead itself
	Name      string            `json:"name,omitempty" dynamodbav:"Name"`
	Phone     string            `json:"phone" dynamodbav:"Phone"`
	Language  string            `json:"language" dynamodbav:"Language"`
	Status    string            `json:"status" dynamodbav:"Status"`
	Collected map[string]string `json:"collected,omitempty" dynamodbav:"Collected"`
	Category  string            `json:"category,omitempty" dynamodbav:"Category"`
	Urgency   string            `json:"urgency,omitempty" dynamodbav:"Urgency"`
	CreatedAt string            `json:"createdAt" dynamodbav:"CreatedAt"` // RFC3339
	UpdatedAt string            `json:"updatedAt" dynamodbav:"UpdatedAt"`
}

// LeadProfileKey is the sort key marking the lead row itself
const LeadProfileKey = "PROFILE"

// HandoffKeyPrefix prefixes handoff sort keys in the leads table
const HandoffKeyPrefix = "HANDOFF#"

// HandoffRecord is the DynamoDB shape of a Handoff, stored in the leads table
// under a HANDOFF#-prefixed sort key
type HandoffRecord struct {
	LeadID    string `json:"leadId" dynamodbav:"LeadID"`       // partition key
	RecordKey string `json:"recordKey" dynamodbav:"RecordKey"` // sort key: HANDOFF#<handoffId>
	HandoffID string `json:"handoffId" dynamodbav:"HandoffID"`
	CallID    string `json:"callId" dynamodbav:"CallID"`
	Reason    string `json:"reason" dynamodbav:"Reason"`
	Status    string `json:"status" dynamodbav:"Status"`
	CreatedAt string `json:"createdAt" dynamodbav:"CreatedAt"` // RFC3339
	UpdatedAt string `json:"updatedAt" dynamodbav:"UpdatedAt"`
}

// Deferred task kinds
const (
	TaskRetryDial    = "retry_dial"
	TaskCallbackDial = "callback_dial"
)

// DeferredTask is a durable scheduled work item (retry or callback dial).
// Tasks survive process restarts; the scheduler queries due partitions.
type DeferredTask struct {
	DueDate   string `json:"dueDate" dynamodbav:"DueDate"` // YYYY-MM-DD (partition key)
	TaskKey   string `json:"taskKey" dynamodbav:"TaskKey"` // sort key: <fixed-width due time>#<taskId>
	TaskID    string `json:"taskId" dynamodbav:"TaskID"`
	Kind      string `json:"kind" dynamodbav:"Kind"`
	DueAt     string `json:"dueAt" dynamodbav:"DueAt"` // RFC3339
	CallID    string `json:"callId,omitempty" dynamodbav:"CallID"`
	LeadID    string `json:"leadId" dynamodbav:"LeadID"`
	Phone     string `json:"phone" dynamodbav:"Phone"`
	Language  string `json:"language" dynamodbav:"Language"`
	Attempt   int    `json:"attempt" dynamodbav:"Attempt"`
	CreatedAt string `json:"createdAt" dynamodbav:"CreatedAt"`
}

// CallbackRecord tracks a user-requested callback
type CallbackRecord struct {
	LeadID      string `json:"leadId" dynamodbav:"LeadID"`         // partition key
	CallbackID  string `json:"callbackId" dynamodbav:"CallbackID"` // sort key
	CallID      string `json:"callId,omitempty" dynamodbav:"CallID"`
	Phone       string `json:"phone" dynamodbav:"Phone"`
	Requested   string `json:"requested,omitempty" dynamodbav:"Requested"` // raw user preference text
	ScheduledAt string `json:"scheduledAt" dynamodbav:"ScheduledAt"`       // RFC3339
	Status      string `json:"status" dynamodbav:"Status"`                 // scheduled|completed|cancelled
	CreatedAt   string `json:"createdAt" dynamodbav:"CreatedAt"`
}

// Callback statuses
const (
	CallbackScheduled = "scheduled"
	CallbackCompleted = "completed"
	CallbackCancelled = "cancelled"
)
