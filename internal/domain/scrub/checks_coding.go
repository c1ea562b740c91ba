package scrub

import (
	"context"
	"fmt"
	"strings"

	"github.com/claimscrub/scrubber/internal/domain/claim"
	"github.com/claimscrub/scrubber/internal/domain/coding"
)

// lineNo is the line number shown in findings. Unsaved claims may not have
// numbered their lines yet.
func lineNo(i int, l claim.ServiceLine) int {
	if l.LineNumber > 0 {
		return l.LineNumber
	}
	return i + 1
}

func summarize(findings []string) string {
	switch len(findings) {
	case 0:
		return ""
	case 1:
		return findings[0]
	}
	return fmt.Sprintf("%s (and %d more)", findings[0], len(findings)-1)
}

// checkCPTICDMatch requires every procedure line to carry at least one
// diagnosis that the pairing table accepts for its CPT code. HCPCS Level II
// lines have no pairing table and are skipped.
func (e *Engine) checkCPTICDMatch(_ context.Context, cl *claim.Claim) (Result, error) {
	var unmatched, unknown, suggested []string
	checked := 0

	for i, l := range cl.ServiceLines {
		cpt := coding.NormalizeCode(l.CPTCode)
		if !coding.IsValidCPT(cpt) {
			continue
		}
		checked++
		pairing, ok := e.tables.Pairing(cpt, cl.Specialty)
		if !ok {
			unknown = appendUnique(unknown, cpt)
			continue
		}
		matched := false
		for _, icd := range l.ICDCodes {
			if pairing.SupportsDiagnosis(icd) {
				matched = true
				break
			}
		}
		if !matched {
			dx := "no diagnosis"
			if len(l.ICDCodes) > 0 {
				dx = strings.Join(l.ICDCodes, ", ")
			}
			unmatched = append(unmatched, fmt.Sprintf("line %d: %s (%s)", lineNo(i, l), cpt, dx))
			for _, s := range SuggestICDCodes(e.tables, cpt, nil, cl.Specialty) {
				suggested = appendUnique(suggested, s)
			}
		}
	}

	var md Metadata
	md.Set("lines_checked", Int(checked))
	switch {
	case len(unmatched) > 0:
		md.Set("unmatched_lines", Strings(unmatched))
		if len(suggested) > 0 {
			md.Set("suggested_icd_codes", Strings(suggested))
		}
		return Result{
			Status:     StatusFail,
			DenialCode: "CO-11",
			Message:    "Diagnosis does not support the procedure on " + summarize(unmatched),
			Metadata:   md,
		}, nil
	case len(unknown) > 0:
		md.Set("unknown_cpt_codes", Strings(unknown))
		return Result{
			Status:      StatusWarning,
			Message:     "No diagnosis pairing on file for " + strings.Join(unknown, ", "),
			Remediation: "Verify medical necessity for these procedures against the payer's coverage policy.",
			Metadata:    md,
		}, nil
	}
	return Result{
		Status:   StatusPass,
		Message:  "Every procedure is supported by a listed diagnosis",
		Metadata: md,
	}, nil
}

// checkModifiers validates each modifier's shape and its applicability to
// the line's procedure or drug code.
func (e *Engine) checkModifiers(_ context.Context, cl *claim.Claim) (Result, error) {
	var issues, invalid []string
	checked := 0

	for i, l := range cl.ServiceLines {
		n := lineNo(i, l)
		cpt := coding.NormalizeCode(l.CPTCode)
		drug := coding.NormalizeCode(l.DrugCode)
		if len(l.Modifiers) > claim.MaxModifiers {
			issues = append(issues, fmt.Sprintf("line %d: %d modifiers exceed the limit of %d", n, len(l.Modifiers), claim.MaxModifiers))
		}

		seen := make(map[string]bool, len(l.Modifiers))
		for _, raw := range l.Modifiers {
			code := coding.NormalizeCode(raw)
			if code == "" {
				continue
			}
			checked++
			if seen[code] {
				issues = append(issues, fmt.Sprintf("line %d: modifier %s is repeated", n, code))
				continue
			}
			seen[code] = true

			if !coding.IsValidModifier(code) {
				issues = append(issues, fmt.Sprintf("line %d: modifier %q is malformed", n, raw))
				invalid = appendUnique(invalid, code)
				continue
			}
			m, ok := e.tables.Modifier(code)
			if !ok {
				issues = append(issues, fmt.Sprintf("line %d: modifier %s is not recognized", n, code))
				invalid = appendUnique(invalid, code)
				continue
			}
			if m.RequiresDrug && drug == "" && !isDrugCode(cpt) {
				issues = append(issues, fmt.Sprintf("line %d: modifier %s requires a drug code", n, code))
				invalid = appendUnique(invalid, code)
				continue
			}
			if coding.IsValidProcedureCode(cpt) && !m.AppliesToCode(cpt) && !(drug != "" && m.AppliesToCode(drug)) {
				issues = append(issues, fmt.Sprintf("line %d: modifier %s does not apply to %s", n, code, cpt))
				invalid = appendUnique(invalid, code)
			}
		}
		if seen["JW"] && seen["JZ"] {
			issues = append(issues, fmt.Sprintf("line %d: JW and JZ cannot be billed together", n))
		}
	}

	var md Metadata
	md.Set("modifiers_checked", Int(checked))
	if len(issues) > 0 {
		md.Set("issues", Strings(issues))
		if len(invalid) > 0 {
			md.Set("invalid_modifiers", Strings(invalid))
		}
		return Result{
			Status:     StatusFail,
			DenialCode: "CO-4",
			Message:    "Modifier problem on " + summarize(issues),
			Metadata:   md,
		}, nil
	}
	return Result{
		Status:   StatusPass,
		Message:  "All modifiers are valid for their procedures",
		Metadata: md,
	}, nil
}

// checkNCCIEdits looks for procedure pairs on the claim that bundle under a
// procedure-to-procedure edit. An unbundling modifier on either line of the
// pair excuses it.
func (e *Engine) checkNCCIEdits(_ context.Context, cl *claim.Claim) (Result, error) {
	var bundled, excused, details []string
	lines := cl.ServiceLines

	for i := 0; i < len(lines); i++ {
		a := coding.NormalizeCode(lines[i].CPTCode)
		if !coding.IsValidProcedureCode(a) {
			continue
		}
		for j := i + 1; j < len(lines); j++ {
			b := coding.NormalizeCode(lines[j].CPTCode)
			if a == b || !coding.IsValidProcedureCode(b) {
				continue
			}
			edit, ok := e.tables.NCCIEdit(a, b)
			if !ok {
				continue
			}
			pair := edit.Column1 + "/" + edit.Column2
			if e.hasUnbundlingModifier(lines[i]) || e.hasUnbundlingModifier(lines[j]) {
				excused = appendUnique(excused, pair)
				continue
			}
			if !contains(bundled, pair) {
				bundled = append(bundled, pair)
				details = append(details, fmt.Sprintf("%s is bundled into %s: %s", edit.Column2, edit.Column1, edit.Description))
			}
		}
	}

	var md Metadata
	if len(excused) > 0 {
		md.Set("excused_pairs", Strings(excused))
	}
	if len(bundled) > 0 {
		md.Set("bundled_pairs", Strings(bundled))
		return Result{
			Status:     StatusFail,
			DenialCode: "CO-97",
			Message:    summarize(details),
			Metadata:   md,
		}, nil
	}
	msg := "No bundled procedure pairs"
	if len(excused) > 0 {
		msg = "Bundled pairs are excused by an unbundling modifier"
	}
	return Result{Status: StatusPass, Message: msg, Metadata: md}, nil
}

func (e *Engine) hasUnbundlingModifier(l claim.ServiceLine) bool {
	for _, code := range l.Modifiers {
		if m, ok := e.tables.Modifier(code); ok && m.Unbundling {
			return true
		}
	}
	return false
}

// isDrugCode reports whether code is a HCPCS J-code.
func isDrugCode(code string) bool {
	return coding.IsValidHCPCS(code) && (code[0] == 'J' || code[0] == 'j')
}

func appendUnique(dst []string, v string) []string {
	if contains(dst, v) {
		return dst
	}
	return append(dst, v)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
