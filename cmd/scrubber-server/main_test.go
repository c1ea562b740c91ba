package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const cleanClaimJSON = `{
	"patient_id": "P-100",
	"patient_dob": "1961-07-04",
	"payer_id": "medicare",
	"provider_npi": "1234567893",
	"specialty": "oncology",
	"date_of_service": "2024-03-01",
	"place_of_service": "11",
	"service_lines": [
		{"line_number": 1, "cpt_code": "96413", "icd_codes": ["C50.911"], "drug_code": "J9271", "drug_units": 200, "units": 1, "charge_amount": 450}
	]
}`

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("NPI_REGISTRY_ENABLED", "false")
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeClaim(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "claim.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write claim: %v", err)
	}
	return path
}

func TestReferenceList(t *testing.T) {
	out, err := runCLI(t, "reference", "list", "payers")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var payers []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal([]byte(out), &payers); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	found := false
	for _, p := range payers {
		if p.ID == "MEDICARE" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected MEDICARE in payer list, got %s", out)
	}
}

func TestReferenceList_UnknownTable(t *testing.T) {
	_, err := runCLI(t, "reference", "list", "drugs")
	if err == nil || !strings.Contains(err.Error(), "unknown table") {
		t.Errorf("expected unknown table error, got %v", err)
	}
}

func TestValidate_CleanClaim(t *testing.T) {
	path := writeClaim(t, cleanClaimJSON)
	out, err := runCLI(t, "validate", "--file", path, "--as-of", "2024-03-15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var report struct {
		Score       int               `json:"score"`
		Status      string            `json:"status"`
		Validations []json.RawMessage `json:"validations"`
	}
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Score != 100 || report.Status != "VALIDATED" {
		t.Errorf("expected 100/VALIDATED, got %d/%s", report.Score, report.Status)
	}
	if len(report.Validations) != 7 {
		t.Errorf("expected 7 results, got %d", len(report.Validations))
	}
}

func TestValidate_SelectedChecks(t *testing.T) {
	path := writeClaim(t, cleanClaimJSON)
	out, err := runCLI(t, "validate", "--file", path, "--as-of", "2024-03-15", "--checks", "ncci_edits,npi_verify")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var report struct {
		Validations []struct {
			CheckType string `json:"check_type"`
		} `json:"validations"`
	}
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if len(report.Validations) != 2 || report.Validations[0].CheckType != "NPI_VERIFY" {
		t.Errorf("expected NPI_VERIFY then NCCI_EDITS, got %+v", report.Validations)
	}
}

func TestValidate_FailingClaimExitCode(t *testing.T) {
	path := writeClaim(t, strings.Replace(cleanClaimJSON, "C50.911", "Z00.00", 1))
	out, err := runCLI(t, "validate", "--file", path, "--as-of", "2024-03-15")
	var ec *exitCodeError
	if !errors.As(err, &ec) {
		t.Fatalf("expected exitCodeError, got %v", err)
	}
	if ec.code != exitFailedChecks {
		t.Errorf("expected exit code %d, got %d", exitFailedChecks, ec.code)
	}
	if !strings.Contains(ec.msg, "CPT_ICD_MATCH") {
		t.Errorf("expected failed check in message, got %q", ec.msg)
	}
	if !strings.Contains(out, `"CO-11"`) {
		t.Errorf("expected report to be printed before exit, got %s", out)
	}
}

func TestValidate_Errors(t *testing.T) {
	good := writeClaim(t, cleanClaimJSON)
	tests := []struct {
		name string
		args []string
	}{
		{"missing file flag", []string{"validate"}},
		{"missing file", []string{"validate", "--file", filepath.Join(t.TempDir(), "nope.json")}},
		{"bad json", []string{"validate", "--file", writeClaim(t, "{")}},
		{"bad date", []string{"validate", "--file", writeClaim(t, `{"date_of_service":"03/01/2024"}`)}},
		{"unknown check", []string{"validate", "--file", good, "--checks", "SPELLING"}},
		{"bad as-of", []string{"validate", "--file", good, "--as-of", "yesterday"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			var ec *exitCodeError
			if errors.As(err, &ec) {
				t.Errorf("expected a plain error, got exit code %d", ec.code)
			}
		})
	}
}
