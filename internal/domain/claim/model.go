package claim

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound          = errors.New("claim not found")
	ErrInvalidTransition = errors.New("invalid claim status transition")
	ErrInvalid           = errors.New("invalid claim")
)

// MaxModifiers is the number of modifier slots on a CMS-1500 service line.
const MaxModifiers = 4

type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusValidated Status = "VALIDATED"
	StatusSubmitted Status = "SUBMITTED"
	StatusAccepted  Status = "ACCEPTED"
	StatusRejected  Status = "REJECTED"
	StatusDenied    Status = "DENIED"
	StatusPaid      Status = "PAID"
)

var transitions = map[Status][]Status{
	StatusDraft:     {StatusValidated},
	StatusValidated: {StatusDraft, StatusSubmitted},
	StatusSubmitted: {StatusAccepted, StatusRejected, StatusDenied},
	StatusAccepted:  {StatusPaid},
	StatusRejected:  {StatusDraft},
	StatusDenied:    {StatusDraft},
	StatusPaid:      nil,
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransition reports whether a claim in status s may move to next.
func (s Status) CanTransition(next Status) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Revalidatable reports whether a validation run may change the status.
// Claims that have left the practice keep their status; their results are
// still recorded.
func (s Status) Revalidatable() bool {
	return s == StatusDraft || s == StatusValidated
}

// Transition returns next when the move is allowed.
func Transition(from, next Status) (Status, error) {
	if !from.CanTransition(next) {
		return from, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, next)
	}
	return next, nil
}

// AfterValidation returns the status a claim in status s ends up in after a
// validation run whose verdict is result.
func (s Status) AfterValidation(result Status) Status {
	if !s.Revalidatable() {
		return s
	}
	return result
}

type Claim struct {
	ID              uuid.UUID     `json:"id"`
	PatientID       string        `json:"patient_id"`
	PatientName     string        `json:"patient_name,omitempty"`
	PatientDOB      *time.Time    `json:"patient_dob,omitempty"`
	PayerID         string        `json:"payer_id"`
	ProviderNPI     string        `json:"provider_npi"`
	Specialty       string        `json:"specialty,omitempty"`
	DateOfService   *time.Time    `json:"date_of_service,omitempty"`
	PlaceOfService  string        `json:"place_of_service,omitempty"`
	PriorAuthNumber string        `json:"prior_auth_number,omitempty"`
	Status          Status        `json:"status"`
	Score           *int          `json:"score,omitempty"`
	ValidatedAt     *time.Time    `json:"validated_at,omitempty"`
	SubmittedAt     *time.Time    `json:"submitted_at,omitempty"`
	ResponseCodes   []string      `json:"response_codes,omitempty"`
	ResponseNote    string        `json:"response_note,omitempty"`
	ServiceLines    []ServiceLine `json:"service_lines"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

type ServiceLine struct {
	ID                 uuid.UUID `json:"id"`
	ClaimID            uuid.UUID `json:"claim_id"`
	LineNumber         int       `json:"line_number"`
	CPTCode            string    `json:"cpt_code"`
	Modifiers          []string  `json:"modifiers"`
	ICDCodes           []string  `json:"icd_codes"`
	DrugCode           string    `json:"drug_code,omitempty"`
	DrugUnits          int       `json:"drug_units,omitempty"`
	DrugDiscardedUnits int       `json:"drug_discarded_units,omitempty"`
	Units              int       `json:"units"`
	ChargeAmount       float64   `json:"charge_amount"`
}

// TotalCharge sums the charge of every service line.
func (c *Claim) TotalCharge() float64 {
	var total float64
	for _, l := range c.ServiceLines {
		total += l.ChargeAmount
	}
	return total
}

// ListFilter narrows List results. Zero values match everything.
type ListFilter struct {
	Status    Status
	PayerID   string
	PatientID string
}
