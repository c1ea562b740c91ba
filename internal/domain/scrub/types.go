// Package scrub runs a claim through the pre-submission rule checks and turns
// their verdicts into a score and a claim status.
package scrub

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/claimscrub/scrubber/internal/domain/claim"
)

var (
	ErrUnknownCheckType = errors.New("unknown check type")
	ErrNotValidated     = errors.New("claim has not been validated")
)

type CheckType string

const (
	CheckCPTICDMatch      CheckType = "CPT_ICD_MATCH"
	CheckNPIVerify        CheckType = "NPI_VERIFY"
	CheckModifiers        CheckType = "MODIFIER_CHECK"
	CheckPriorAuth        CheckType = "PRIOR_AUTH"
	CheckDataCompleteness CheckType = "DATA_COMPLETENESS"
	CheckTimelyFiling     CheckType = "TIMELY_FILING"
	CheckNCCIEdits        CheckType = "NCCI_EDITS"
)

// AllChecks is the canonical order results are reported in.
var AllChecks = []CheckType{
	CheckCPTICDMatch,
	CheckNPIVerify,
	CheckModifiers,
	CheckPriorAuth,
	CheckDataCompleteness,
	CheckTimelyFiling,
	CheckNCCIEdits,
}

func (t CheckType) Valid() bool {
	for _, c := range AllChecks {
		if c == t {
			return true
		}
	}
	return false
}

// ParseCheckType accepts check names in any case.
func ParseCheckType(s string) (CheckType, error) {
	t := CheckType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCheckType, s)
	}
	return t, nil
}

// ResolveChecks returns the checks to run, in canonical order and without
// duplicates. An empty request selects every check.
func ResolveChecks(requested []CheckType) ([]CheckType, error) {
	if len(requested) == 0 {
		return append([]CheckType(nil), AllChecks...), nil
	}
	want := make(map[CheckType]bool, len(requested))
	for _, t := range requested {
		if !t.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownCheckType, t)
		}
		want[t] = true
	}
	out := make([]CheckType, 0, len(want))
	for _, t := range AllChecks {
		if want[t] {
			out = append(out, t)
		}
	}
	return out, nil
}

type Status string

const (
	StatusPass    Status = "PASS"
	StatusWarning Status = "WARNING"
	StatusFail    Status = "FAIL"
)

// Result is the verdict of one check for the whole claim.
type Result struct {
	CheckType   CheckType `json:"check_type"`
	Status      Status    `json:"status"`
	DenialCode  string    `json:"denial_code,omitempty"`
	Message     string    `json:"message"`
	Remediation string    `json:"remediation,omitempty"`
	Metadata    Metadata  `json:"metadata,omitempty"`
}

// ClaimValidation is the aggregate of one validation run.
type ClaimValidation struct {
	ClaimID     uuid.UUID    `json:"claim_id"`
	Score       int          `json:"score"`
	Status      claim.Status `json:"status"`
	Validations []Result     `json:"validations"`
	DenialCodes []string     `json:"denial_codes"`
	ValidatedAt time.Time    `json:"validated_at"`
}

// Counts tallies results by status.
func (v *ClaimValidation) Counts() (pass, warn, fail int) {
	return countStatuses(v.Validations)
}

// FailedChecks lists the check types that failed, in result order.
func (v *ClaimValidation) FailedChecks() []CheckType {
	var out []CheckType
	for _, r := range v.Validations {
		if r.Status == StatusFail {
			out = append(out, r.CheckType)
		}
	}
	return out
}

func countStatuses(results []Result) (pass, warn, fail int) {
	for _, r := range results {
		switch r.Status {
		case StatusPass:
			pass++
		case StatusWarning:
			warn++
		case StatusFail:
			fail++
		}
	}
	return
}

// Score is round(100 * passes / results). A WARNING is not a pass, so it
// lowers the score even though it does not block VALIDATED.
func Score(results []Result) int {
	if len(results) == 0 {
		return 0
	}
	pass, _, _ := countStatuses(results)
	return int(math.Round(100 * float64(pass) / float64(len(results))))
}

// Verdict is DRAFT when any result failed and VALIDATED otherwise.
func Verdict(results []Result) claim.Status {
	for _, r := range results {
		if r.Status == StatusFail {
			return claim.StatusDraft
		}
	}
	return claim.StatusValidated
}

// DenialCodes returns the distinct denial codes of results in first-seen order.
func DenialCodes(results []Result) []string {
	out := []string{}
	seen := make(map[string]bool)
	for _, r := range results {
		if r.DenialCode == "" || seen[r.DenialCode] {
			continue
		}
		seen[r.DenialCode] = true
		out = append(out, r.DenialCode)
	}
	return out
}

// newValidation aggregates results into a ClaimValidation.
func newValidation(id uuid.UUID, results []Result, at time.Time) *ClaimValidation {
	return &ClaimValidation{
		ClaimID:     id,
		Score:       Score(results),
		Status:      Verdict(results),
		Validations: results,
		DenialCodes: DenialCodes(results),
		ValidatedAt: at,
	}
}
