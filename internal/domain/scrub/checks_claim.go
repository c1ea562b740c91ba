package scrub

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/claimscrub/scrubber/internal/domain/claim"
	"github.com/claimscrub/scrubber/internal/domain/coding"
	"github.com/claimscrub/scrubber/internal/platform/npiregistry"
)

// checkNPI validates the rendering provider NPI, then asks the registry to
// confirm it when one is configured. Registry trouble never fails the check.
func (e *Engine) checkNPI(ctx context.Context, cl *claim.Claim) (Result, error) {
	npi := strings.TrimSpace(cl.ProviderNPI)
	var md Metadata

	if !coding.IsValidNPI(npi) {
		msg := fmt.Sprintf("Provider NPI %q is not a valid NPI", npi)
		if npi == "" {
			msg = "Provider NPI is missing"
		}
		return Result{
			Status:      StatusFail,
			DenialCode:  "CO-16",
			Message:     msg,
			Remediation: "Enter the rendering provider's 10-digit NPI; the last digit is a Luhn check digit.",
		}, nil
	}

	if e.registry == nil {
		md.Set("registry_checked", Bool(false))
		return Result{Status: StatusPass, Message: "NPI format and check digit are valid", Metadata: md}, nil
	}

	lctx, cancel := context.WithTimeout(ctx, e.npiTimeout)
	defer cancel()
	p, err := e.registry.Lookup(lctx, npi)
	switch {
	case errors.Is(err, npiregistry.ErrNotFound):
		md.Set("registry_checked", Bool(true))
		return Result{
			Status:      StatusWarning,
			Message:     fmt.Sprintf("NPI %s was not found in the NPPES registry", npi),
			Remediation: "Confirm the NPI with the provider; newly issued NPIs can take a few days to appear.",
			Metadata:    md,
		}, nil
	case err != nil:
		md.Set("registry_checked", Bool(false))
		md.Set("error", String(err.Error()))
		return Result{
			Status:      StatusWarning,
			Message:     "NPI registry could not confirm the provider",
			Remediation: "Re-run validation later or confirm the NPI manually.",
			Metadata:    md,
		}, nil
	}

	md.Set("registry_checked", Bool(true))
	md.Set("provider_name", String(p.Name))
	if p.TaxonomyCode != "" {
		md.Set("taxonomy", String(p.TaxonomyCode))
	}
	if !p.Active() {
		md.Set("registry_status", String(p.Status))
		return Result{
			Status:      StatusWarning,
			Message:     fmt.Sprintf("NPI %s is not active in the NPPES registry", npi),
			Remediation: "Verify the provider's enrollment status before submitting.",
			Metadata:    md,
		}, nil
	}
	return Result{
		Status:   StatusPass,
		Message:  fmt.Sprintf("NPI confirmed for %s", p.Name),
		Metadata: md,
	}, nil
}

// checkPriorAuth fails when any line needs authorization from the payer
// and the claim carries no authorization number.
func (e *Engine) checkPriorAuth(_ context.Context, cl *claim.Claim) (Result, error) {
	var codes, sources []string
	for _, l := range cl.ServiceLines {
		req := e.tables.PriorAuthRequired(l.CPTCode, l.DrugCode, cl.PayerID, cl.Specialty)
		if !req.Required {
			continue
		}
		codes = appendUnique(codes, req.Code)
		sources = appendUnique(sources, req.Source)
	}

	var md Metadata
	md.Set("required", Bool(len(codes) > 0))
	if len(codes) == 0 {
		return Result{Status: StatusPass, Message: "No prior authorization required", Metadata: md}, nil
	}
	md.Set("required_codes", Strings(codes))
	md.Set("sources", Strings(sources))

	auth := strings.TrimSpace(cl.PriorAuthNumber)
	if auth == "" {
		return Result{
			Status:     StatusFail,
			DenialCode: "CO-15",
			Message:    fmt.Sprintf("Prior authorization required for %s but no authorization number is on the claim", strings.Join(codes, ", ")),
			Metadata:   md,
		}, nil
	}
	md.Set("prior_auth_number", String(auth))
	return Result{
		Status:   StatusPass,
		Message:  fmt.Sprintf("Prior authorization %s on file for %s", auth, strings.Join(codes, ", ")),
		Metadata: md,
	}, nil
}

// checkDataCompleteness reports missing mandatory fields and malformed codes.
func (e *Engine) checkDataCompleteness(_ context.Context, cl *claim.Claim) (Result, error) {
	var missing, invalid []string

	if strings.TrimSpace(cl.PatientID) == "" {
		missing = append(missing, "patient_id")
	}
	if strings.TrimSpace(cl.ProviderNPI) == "" {
		missing = append(missing, "provider_npi")
	}
	if strings.TrimSpace(cl.PayerID) == "" {
		missing = append(missing, "payer_id")
	}
	if cl.DateOfService == nil {
		missing = append(missing, "date_of_service")
	} else if cl.DateOfService.After(e.now()) {
		invalid = append(invalid, "date_of_service (in the future)")
	}
	if cl.PatientDOB != nil && cl.DateOfService != nil && cl.PatientDOB.After(*cl.DateOfService) {
		invalid = append(invalid, "patient_dob (after date_of_service)")
	}
	if pos := strings.TrimSpace(cl.PlaceOfService); pos != "" {
		if !coding.IsValidPlaceOfService(pos) {
			invalid = append(invalid, "place_of_service")
		} else if _, ok := e.tables.PlaceOfService(pos); !ok {
			invalid = append(invalid, "place_of_service (unknown code)")
		}
	}

	if len(cl.ServiceLines) == 0 {
		missing = append(missing, "service_lines")
	}
	seen := make(map[int]bool, len(cl.ServiceLines))
	for i, l := range cl.ServiceLines {
		n := lineNo(i, l)
		field := func(name string) string { return fmt.Sprintf("service_lines[%d].%s", n, name) }

		if l.LineNumber > 0 {
			if seen[l.LineNumber] {
				invalid = append(invalid, field("line_number (duplicate)"))
			}
			seen[l.LineNumber] = true
		}

		cpt := strings.TrimSpace(l.CPTCode)
		switch {
		case cpt == "":
			missing = append(missing, field("cpt_code"))
		case !coding.IsValidProcedureCode(coding.NormalizeCode(cpt)):
			invalid = append(invalid, field("cpt_code"))
		}

		icds := 0
		for _, icd := range l.ICDCodes {
			if strings.TrimSpace(icd) == "" {
				continue
			}
			icds++
			if !coding.IsValidICD10(strings.TrimSpace(icd)) {
				invalid = append(invalid, fmt.Sprintf("%s (%s)", field("icd_codes"), icd))
			}
		}
		if icds == 0 {
			missing = append(missing, field("icd_codes"))
		}

		if drug := strings.TrimSpace(l.DrugCode); drug != "" && !coding.IsValidHCPCS(drug) {
			invalid = append(invalid, field("drug_code"))
		}
		if l.DrugDiscardedUnits < 0 || l.DrugUnits < 0 {
			invalid = append(invalid, field("drug_units"))
		}
		if l.Units <= 0 {
			missing = append(missing, field("units"))
		}
		if l.ChargeAmount <= 0 {
			missing = append(missing, field("charge_amount"))
		}
	}

	var md Metadata
	if len(missing) == 0 && len(invalid) == 0 {
		md.Set("service_lines", Int(len(cl.ServiceLines)))
		return Result{Status: StatusPass, Message: "All required claim data is present", Metadata: md}, nil
	}

	var parts []string
	if len(missing) > 0 {
		md.Set("missing_fields", Strings(missing))
		parts = append(parts, "missing "+strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		md.Set("invalid_fields", Strings(invalid))
		parts = append(parts, "invalid "+strings.Join(invalid, ", "))
	}
	return Result{
		Status:     StatusFail,
		DenialCode: "CO-16",
		Message:    "Claim is incomplete: " + strings.Join(parts, "; "),
		Metadata:   md,
	}, nil
}

// checkTimelyFiling compares the age of the claim with the payer's filing
// window. Unknown payers use the DEFAULT window.
func (e *Engine) checkTimelyFiling(_ context.Context, cl *claim.Claim) (Result, error) {
	payer, known := e.tables.PayerOrDefault(cl.PayerID)

	var md Metadata
	md.Set("payer_id", String(payer.ID))
	md.Set("payer_known", Bool(known))
	md.Set("timely_filing_days", Int(payer.TimelyFilingDays))

	if cl.DateOfService == nil {
		return Result{
			Status:      StatusWarning,
			Message:     "Date of service is missing; the filing deadline cannot be computed",
			Remediation: "Enter the date of service.",
			Metadata:    md,
		}, nil
	}

	now := e.now()
	dos := *cl.DateOfService
	elapsed := coding.ElapsedDays(dos, now)
	remaining := coding.DaysUntilTimelyFilingExpires(dos, payer.TimelyFilingDays, now)
	md.Set("days_elapsed", Int(elapsed))
	md.Set("days_remaining", Int(remaining))

	if !coding.IsWithinTimelyFiling(dos, payer.TimelyFilingDays, now) {
		return Result{
			Status:     StatusFail,
			DenialCode: "CO-29",
			Message: fmt.Sprintf("Filing window of %d days for %s expired %d days ago",
				payer.TimelyFilingDays, payer.ID, elapsed-payer.TimelyFilingDays),
			Metadata: md,
		}, nil
	}
	if e.warnDays >= 0 && remaining <= e.warnDays {
		return Result{
			Status:      StatusWarning,
			Message:     fmt.Sprintf("Filing window for %s closes in %d days", payer.ID, remaining),
			Remediation: "Submit this claim promptly.",
			Metadata:    md,
		}, nil
	}
	return Result{
		Status:   StatusPass,
		Message:  fmt.Sprintf("%d days left to file with %s", remaining, payer.ID),
		Metadata: md,
	}, nil
}
