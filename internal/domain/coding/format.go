// Package coding holds the syntactic validators for the code systems that
// appear on a professional claim: NPI, CPT, HCPCS Level II, ICD-10-CM,
// modifiers and place-of-service codes. Every function is total and free of
// side effects.
package coding

import (
	"regexp"
	"strings"
)

var (
	icd10Pattern    = regexp.MustCompile(`^[A-TV-Z][0-9]{2}(\.?[0-9A-Z]{1,4})?$`)
	cptPattern      = regexp.MustCompile(`^[0-9]{5}$`)
	hcpcsPattern    = regexp.MustCompile(`^[A-Z][0-9]{4}$`)
	modifierPattern = regexp.MustCompile(`^[0-9A-Z]{2}$`)
	posPattern      = regexp.MustCompile(`^[0-9]{2}$`)
)

// npiPrefix is the ISO 7812 card issuer prefix for US health applications.
// The NPI check digit is computed as if the number carried it.
const npiPrefix = "80840"

// IsValidNPI reports whether npi is ten ASCII digits whose Luhn checksum,
// computed over the 80840-prefixed value, is valid.
func IsValidNPI(npi string) bool {
	if len(npi) != 10 {
		return false
	}
	for i := 0; i < len(npi); i++ {
		if npi[i] < '0' || npi[i] > '9' {
			return false
		}
	}
	return luhnValid(npiPrefix + npi)
}

// luhnValid assumes digits contains only ASCII digits.
func luhnValid(digits string) bool {
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// IsValidICD10 reports whether code has the shape of an ICD-10-CM code:
// a letter other than U, two digits, then up to four alphanumerics with an
// optional separating period. Matching is case-insensitive.
func IsValidICD10(code string) bool {
	return icd10Pattern.MatchString(strings.ToUpper(code))
}

// IsValidCPT reports whether code is exactly five digits.
func IsValidCPT(code string) bool {
	return cptPattern.MatchString(code)
}

// IsValidHCPCS reports whether code is a HCPCS Level II code: one letter
// followed by four digits.
func IsValidHCPCS(code string) bool {
	return hcpcsPattern.MatchString(strings.ToUpper(code))
}

// IsValidProcedureCode accepts either a CPT or a HCPCS Level II code.
func IsValidProcedureCode(code string) bool {
	return IsValidCPT(code) || IsValidHCPCS(code)
}

// IsValidModifier reports whether code is exactly two alphanumerics.
func IsValidModifier(code string) bool {
	return modifierPattern.MatchString(strings.ToUpper(code))
}

// IsValidPlaceOfService reports whether code is exactly two digits.
func IsValidPlaceOfService(code string) bool {
	return posPattern.MatchString(code)
}

// NormalizeICD10 uppercases code and drops the period so that E11.9 and
// e119 compare equal.
func NormalizeICD10(code string) string {
	return strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(code)), ".", "")
}

// NormalizeCode trims and uppercases a procedure, drug or modifier code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
