package reference

// DenialCode is a claim adjustment reason code (CARC) prefixed with its group
// code, e.g. CO-97.
type DenialCode struct {
	Code        string `json:"code"`
	Group       string `json:"group"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Remediation string `json:"remediation"`
}

// Denial categories.
const (
	CategoryCoding        = "CODING"
	CategoryAuthorization = "AUTHORIZATION"
	CategoryDocumentation = "DOCUMENTATION"
	CategoryTimeliness    = "TIMELINESS"
	CategoryBundling      = "BUNDLING"
	CategoryEligibility   = "ELIGIBILITY"
	CategoryProvider      = "PROVIDER"
	CategoryPatientResp   = "PATIENT_RESPONSIBILITY"
)

// CodeRange is an inclusive range of five-character procedure codes. Bounds
// compare lexically, so both bounds must be the same shape (all digits, or a
// letter followed by digits).
type CodeRange struct {
	Low  string `json:"low"`
	High string `json:"high"`
}

// Contains reports whether code falls inside the range.
func (r CodeRange) Contains(code string) bool {
	return len(code) == len(r.Low) && code >= r.Low && code <= r.High
}

// Modifier describes a two-character procedure modifier and the procedure
// codes it may be appended to.
type Modifier struct {
	Code        string      `json:"code"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	AppliesTo   []CodeRange `json:"applies_to"`
	// RequiresDrug marks drug-wastage modifiers that only make sense on a line
	// that bills a drug.
	RequiresDrug bool `json:"requires_drug"`
	// Unbundling marks modifiers that signal a distinct procedural service and
	// excuse an NCCI procedure-to-procedure edit.
	Unbundling bool `json:"unbundling"`
}

// AppliesToCode reports whether code is inside any of the modifier's ranges.
func (m Modifier) AppliesToCode(code string) bool {
	for _, r := range m.AppliesTo {
		if r.Contains(code) {
			return true
		}
	}
	return false
}

// Modifier categories.
const (
	ModifierProcedural = "PROCEDURAL"
	ModifierAnatomic   = "ANATOMIC"
	ModifierUnbundling = "UNBUNDLING"
	ModifierDrug       = "DRUG"
	ModifierTelehealth = "TELEHEALTH"
	ModifierComponent  = "COMPONENT"
	ModifierPayment    = "PAYMENT"
)

// Payer types.
const (
	PayerCommercial        = "COMMERCIAL"
	PayerMedicare          = "MEDICARE"
	PayerMedicareAdvantage = "MEDICARE_ADVANTAGE"
	PayerMedicaid          = "MEDICAID"
	PayerMilitary          = "MILITARY"
)

// Payer carries the per-payer filing window and prior authorization lists.
type Payer struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Type             string   `json:"type"`
	TimelyFilingDays int      `json:"timely_filing_days"`
	PriorAuthCPTs    []string `json:"prior_auth_cpts,omitempty"`
	PriorAuthDrugs   []string `json:"prior_auth_drugs,omitempty"`
}

// PlaceOfService is a CMS place-of-service code.
type PlaceOfService struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	Facility   bool   `json:"facility"`
	Telehealth bool   `json:"telehealth"`
}

// Pairing lists the ICD-10 codes that support a procedure. ICDPrefixes match
// normalized (period-free) diagnosis codes by prefix. AnyDiagnosis marks
// procedures, such as office visits, that pair with any well-formed code.
type Pairing struct {
	CPT          string   `json:"cpt"`
	ICDPrefixes  []string `json:"icd_prefixes,omitempty"`
	AnyDiagnosis bool     `json:"any_diagnosis,omitempty"`
	// Suggested is the ordered list of common diagnoses for the procedure.
	Suggested []string `json:"suggested,omitempty"`
}

// SpecialtyConfig groups the coding knowledge for one clinical specialty.
type SpecialtyConfig struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	CommonCPTCodes []string  `json:"common_cpt_codes"`
	Pairings       []Pairing `json:"pairings"`
	PriorAuthCPTs  []string  `json:"prior_auth_cpts,omitempty"`
	PriorAuthDrugs []string  `json:"prior_auth_drugs,omitempty"`
}

// NCCIEdit is a procedure-to-procedure bundling edit. Column2 is included in
// Column1 when both are billed for the same patient and date of service.
type NCCIEdit struct {
	Column1     string `json:"column1"`
	Column2     string `json:"column2"`
	Description string `json:"description"`
}
