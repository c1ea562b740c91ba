package claim

import (
	"errors"
	"testing"
)

func TestRequest_ToClaim(t *testing.T) {
	req := &Request{
		PatientID:     "P-1",
		PatientDOB:    "1961-07-04",
		PayerID:       "AETNA",
		ProviderNPI:   "1234567893",
		DateOfService: "2024-03-01",
		ServiceLines: []LineRequest{
			{CPTCode: "96413", ICDCodes: []string{"C50.911"}, DrugCode: "J9271", DrugUnits: 200, Units: 1, ChargeAmount: 450},
		},
	}
	c, err := req.ToClaim()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Status != StatusDraft {
		t.Errorf("expected DRAFT, got %s", c.Status)
	}
	if c.DateOfService == nil || c.DateOfService.Format(dateLayout) != "2024-03-01" {
		t.Errorf("expected date of service 2024-03-01, got %v", c.DateOfService)
	}
	if c.PatientDOB == nil || c.PatientDOB.Year() != 1961 {
		t.Errorf("expected dob 1961, got %v", c.PatientDOB)
	}
	if len(c.ServiceLines) != 1 || c.ServiceLines[0].DrugUnits != 200 {
		t.Errorf("expected one line with 200 drug units, got %+v", c.ServiceLines)
	}
}

func TestRequest_ToClaim_EmptyDates(t *testing.T) {
	c, err := (&Request{PatientID: "P-1"}).ToClaim()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.DateOfService != nil || c.PatientDOB != nil {
		t.Error("expected empty dates to stay nil")
	}
	if c.ServiceLines == nil {
		t.Error("expected non-nil service lines")
	}
}

func TestRequest_ToClaim_BadDate(t *testing.T) {
	_, err := (&Request{DateOfService: "03/01/2024"}).ToClaim()
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}
