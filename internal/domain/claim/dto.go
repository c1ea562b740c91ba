package claim

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Request is the JSON body accepted for a claim, used both to store a claim
// and to validate one without storing it. Dates are YYYY-MM-DD. Code
// formats are left to validation so that a malformed claim can still be
// saved as a draft and scrubbed.
type Request struct {
	PatientID       string        `json:"patient_id"`
	PatientName     string        `json:"patient_name"`
	PatientDOB      string        `json:"patient_dob" validate:"omitempty,datetime=2006-01-02"`
	PayerID         string        `json:"payer_id"`
	ProviderNPI     string        `json:"provider_npi"`
	Specialty       string        `json:"specialty"`
	DateOfService   string        `json:"date_of_service" validate:"omitempty,datetime=2006-01-02"`
	PlaceOfService  string        `json:"place_of_service"`
	PriorAuthNumber string        `json:"prior_auth_number"`
	ServiceLines    []LineRequest `json:"service_lines" validate:"dive"`
}

type LineRequest struct {
	LineNumber         int      `json:"line_number" validate:"gte=0"`
	CPTCode            string   `json:"cpt_code"`
	Modifiers          []string `json:"modifiers" validate:"max=4"`
	ICDCodes           []string `json:"icd_codes"`
	DrugCode           string   `json:"drug_code"`
	DrugUnits          int      `json:"drug_units" validate:"gte=0"`
	DrugDiscardedUnits int      `json:"drug_discarded_units" validate:"gte=0"`
	Units              int      `json:"units"`
	ChargeAmount       float64  `json:"charge_amount"`
}

// ToClaim converts the request into an unsaved claim.
func (r *Request) ToClaim() (*Claim, error) {
	c := &Claim{
		PatientID:       r.PatientID,
		PatientName:     r.PatientName,
		PayerID:         r.PayerID,
		ProviderNPI:     r.ProviderNPI,
		Specialty:       r.Specialty,
		PlaceOfService:  r.PlaceOfService,
		PriorAuthNumber: r.PriorAuthNumber,
		Status:          StatusDraft,
	}
	var err error
	if c.PatientDOB, err = parseDate("patient_dob", r.PatientDOB); err != nil {
		return nil, err
	}
	if c.DateOfService, err = parseDate("date_of_service", r.DateOfService); err != nil {
		return nil, err
	}
	c.ServiceLines = make([]ServiceLine, 0, len(r.ServiceLines))
	for _, l := range r.ServiceLines {
		c.ServiceLines = append(c.ServiceLines, ServiceLine{
			LineNumber:         l.LineNumber,
			CPTCode:            l.CPTCode,
			Modifiers:          l.Modifiers,
			ICDCodes:           l.ICDCodes,
			DrugCode:           l.DrugCode,
			DrugUnits:          l.DrugUnits,
			DrugDiscardedUnits: l.DrugDiscardedUnits,
			Units:              l.Units,
			ChargeAmount:       l.ChargeAmount,
		})
	}
	return c, nil
}

func parseDate(field, v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be YYYY-MM-DD", ErrInvalid, field)
	}
	return &t, nil
}

// ResponseRequest is the body of POST /claims/:id/response.
type ResponseRequest struct {
	Status string   `json:"status" validate:"required,oneof=ACCEPTED REJECTED DENIED PAID DRAFT"`
	Codes  []string `json:"codes"`
	Note   string   `json:"note"`
}
