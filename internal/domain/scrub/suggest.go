package scrub

import (
	"github.com/claimscrub/scrubber/internal/domain/coding"
	"github.com/claimscrub/scrubber/internal/domain/reference"
)

// SuggestICDCodes ranks diagnoses for cpt. The patient's own conditions that
// the pairing accepts come first, then the pairing's common diagnoses. An
// unknown procedure yields an empty list.
func SuggestICDCodes(tables *reference.Tables, cpt string, conditions []string, specialty string) []string {
	out := []string{}
	pairing, ok := tables.Pairing(cpt, specialty)
	if !ok {
		return out
	}

	seen := make(map[string]bool)
	add := func(code string) {
		key := coding.NormalizeICD10(code)
		if key == "" || seen[key] {
			return
		}
		seen[key] = true
		out = append(out, code)
	}
	for _, c := range conditions {
		if pairing.SupportsDiagnosis(c) {
			add(c)
		}
	}
	for _, c := range pairing.Suggested {
		add(c)
	}
	return out
}

type ModifierQuery struct {
	CPT                string
	DrugCode           string
	DrugDiscardedUnits int
	PlaceOfService     string
}

type ModifierSuggestion struct {
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

// SuggestModifiers lists modifiers a line is likely to need. It is advisory
// and never reports errors.
func SuggestModifiers(tables *reference.Tables, q ModifierQuery) []ModifierSuggestion {
	out := []ModifierSuggestion{}
	cpt := coding.NormalizeCode(q.CPT)
	drug := coding.NormalizeCode(q.DrugCode)
	if drug == "" && isDrugCode(cpt) {
		drug = cpt
	}

	if drug != "" {
		if q.DrugDiscardedUnits > 0 {
			out = append(out, ModifierSuggestion{Code: "JW", Reason: "Report the discarded amount of a single-dose drug on its own line with JW"})
		} else {
			out = append(out, ModifierSuggestion{Code: "JZ", Reason: "Payers require JZ to attest that no single-dose drug was discarded"})
		}
	}

	pos, posKnown := tables.PlaceOfService(q.PlaceOfService)
	if tables.IsSplitBillable(cpt) {
		if posKnown && pos.Facility {
			out = append(out, ModifierSuggestion{Code: "26", Reason: "In a facility setting only the professional component is billed by the physician"})
		} else {
			out = append(out,
				ModifierSuggestion{Code: "26", Reason: "Append 26 when billing only the interpretation (professional component)"},
				ModifierSuggestion{Code: "TC", Reason: "Append TC when billing only the equipment and technician (technical component)"},
			)
		}
	}

	if posKnown && pos.Telehealth {
		if m, ok := tables.Modifier("95"); ok && m.AppliesToCode(cpt) {
			out = append(out, ModifierSuggestion{Code: "95", Reason: "Synchronous telehealth services are reported with modifier 95"})
		}
	}
	return out
}
