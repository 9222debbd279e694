package types

import "time"

// LeadStatus tracks a prospective applicant through the funnel
type LeadStatus string

const (
	LeadNew         LeadStatus = "new"
	LeadContacted   LeadStatus = "contacted"
	LeadQualified   LeadStatus = "qualified"
	LeadHandoff     LeadStatus = "handoff"
	LeadCallback    LeadStatus = "callback"
	LeadUnreachable LeadStatus = "unreachable"
	LeadConverted   LeadStatus = "converted"
)

// Lead is a prospective loan applicant identified by phone number
type Lead struct {
	LeadID      string             `json:"leadId"`
	Name        string             `json:"name,omitempty"`
	Phone       string             `json:"phone"`
	Language    Language           `json:"language"`
	Status      LeadStatus         `json:"status"`
	Collected   map[string]string  `json:"collected,omitempty"`
	Eligibility *EligibilityResult `json:"eligibility,omitempty"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// LeadSummary is the terminal conversation summary pushed to the CRM
type LeadSummary struct {
	LeadID       string             `json:"leadId"`
	CallID       string             `json:"callId"`
	Language     Language           `json:"language"`
	Collected    map[string]string  `json:"collected"`
	Eligibility  *EligibilityResult `json:"eligibility,omitempty"`
	TurnCount    int                `json:"turnCount"`
	AvgSentiment float64            `json:"avgSentiment"`
	Escalation   EscalationReason   `json:"escalation,omitempty"`
	GeneratedAt  time.Time          `json:"generatedAt"`
}

// HandoffStatus tracks the transfer workflow for one handoff
type HandoffStatus string

const (
	HandoffPending     HandoffStatus = "pending"
	HandoffSummarySent HandoffStatus = "summary_sent"
	HandoffTransferred HandoffStatus = "transferred"
	HandoffFailed      HandoffStatus = "failed"
)

// Handoff records the transfer of an in-progress call to a human agent
type Handoff struct {
	HandoffID string           `json:"handoffId"`
	CallID    string           `json:"callId"`
	LeadID    string           `json:"leadId"`
	Reason    EscalationReason `json:"reason"`
	Status    HandoffStatus    `json:"status"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}
