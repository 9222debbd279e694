package types

import "time"

// Category is the loan classification bucket driving lender recommendation
type Category string

const (
	CategoryPublicSecured    Category = "public_secured"
	CategoryPrivateUnsecured Category = "private_unsecured"
	CategoryIntlUSD          Category = "intl_usd"
	CategoryEscalate         Category = "escalate"
)

// Urgency is the time-sensitivity tier derived from the visa timeline
type Urgency string

const (
	UrgencyHigh   Urgency = "high"
	UrgencyMedium Urgency = "medium"
	UrgencyLow    Urgency = "low"
)

// Merit grades the academic profile for international lender eligibility
type Merit string

const (
	MeritHigh     Merit = "high"
	MeritStandard Merit = "standard"
)

// EligibilityResult is derived from collected data, never stored independently
type EligibilityResult struct {
	Category   Category  `json:"category"`
	Urgency    Urgency   `json:"urgency"`
	Merit      Merit     `json:"merit"`
	Lenders    []string  `json:"lenders"`
	Rule       string    `json:"rule"` // name of the matched decision rule
	ComputedAt time.Time `json:"computedAt"`
}

// Collected-data field names, fixed by the qualification schema
const (
	FieldDegree         = "degree"
	FieldCountry        = "country"
	FieldLoanAmount     = "loan_amount"
	FieldOfferLetter    = "offer_letter"
	FieldCoapplicantITR = "coapplicant_itr"
	FieldCollateral     = "collateral"
	FieldVisaTimeline   = "visa_timeline"
)
