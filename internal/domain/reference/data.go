package reference

// Procedure code ranges shared by the modifier and split-billing tables.
var (
	rangeEM          = CodeRange{"99202", "99499"}
	rangeAnesthesia  = CodeRange{"00100", "01999"}
	rangeSurgery     = CodeRange{"10004", "69990"}
	rangeRadiology   = CodeRange{"70010", "79999"}
	rangeLab         = CodeRange{"80047", "89398"}
	rangeMedicine    = CodeRange{"90281", "99199"}
	rangeDrugAdmin   = CodeRange{"96360", "96549"}
	rangeHCPCSDrugs  = CodeRange{"J0000", "J9999"}
	rangeHCPCS       = CodeRange{"A0000", "V5999"}
	rangeTelehealthA = CodeRange{"99202", "99215"}
	rangeTelehealthB = CodeRange{"90785", "90899"}
	rangeTelehealthC = CodeRange{"99421", "99443"}
	rangeColonoscopy = CodeRange{"45378", "45398"}
	rangeCardiacDx   = CodeRange{"93000", "93350"}
	rangeSurgPath    = CodeRange{"88300", "88399"}

	allNonEM = []CodeRange{rangeAnesthesia, rangeSurgery, rangeRadiology, rangeLab, rangeMedicine, rangeHCPCS}
	allCodes = []CodeRange{rangeAnesthesia, rangeSurgery, rangeRadiology, rangeLab, rangeMedicine, rangeEM, rangeHCPCS}
)

var (
	oncologyDiagnoses = []string{"C", "D0", "D1", "D2", "D3", "D4"}
	chemoDrugs        = []string{"J9035", "J9271", "J9299", "J9312", "J9355"}
	biologicDrugs     = []string{"J0897", "J1745", "J2505"}
	advancedImaging   = []string{"70551", "72148", "73721"}
)

func packagedData() Data {
	return Data{
		DenialCodes:     denialCodes(),
		Modifiers:       modifiers(),
		Payers:          payers(),
		PlacesOfService: placesOfService(),
		Specialties:     specialties(),
		NCCIEdits:       ncciEdits(),
		SplitBillable:   []CodeRange{rangeRadiology, rangeCardiacDx, rangeSurgPath},
	}
}

func denialCodes() []DenialCode {
	return []DenialCode{
		{Code: "CO-4", Group: "CO", Category: CategoryCoding,
			Description: "The procedure code is inconsistent with the modifier used or a required modifier is missing.",
			Remediation: "Confirm each modifier applies to the billed procedure; remove or replace modifiers that do not."},
		{Code: "CO-11", Group: "CO", Category: CategoryCoding,
			Description: "The diagnosis is inconsistent with the procedure.",
			Remediation: "Link a diagnosis that supports medical necessity for the procedure, ordered as primary."},
		{Code: "CO-15", Group: "CO", Category: CategoryAuthorization,
			Description: "The authorization number is missing, invalid, or does not apply to the billed services or provider.",
			Remediation: "Obtain prior authorization from the payer and enter the authorization number on the claim."},
		{Code: "CO-16", Group: "CO", Category: CategoryDocumentation,
			Description: "Claim/service lacks information or has submission/billing error(s).",
			Remediation: "Complete the missing fields and correct malformed codes before submitting."},
		{Code: "CO-18", Group: "CO", Category: CategoryDocumentation,
			Description: "Exact duplicate claim/service.",
			Remediation: "Check claim history; submit a corrected claim instead of a duplicate."},
		{Code: "CO-22", Group: "CO", Category: CategoryEligibility,
			Description: "This care may be covered by another payer per coordination of benefits.",
			Remediation: "Verify coverage order and bill the primary payer first."},
		{Code: "CO-27", Group: "CO", Category: CategoryEligibility,
			Description: "Expenses incurred after coverage terminated.",
			Remediation: "Verify eligibility for the date of service and bill the active payer."},
		{Code: "CO-29", Group: "CO", Category: CategoryTimeliness,
			Description: "The time limit for filing has expired.",
			Remediation: "Submit proof of timely filing or a reconsideration request if an exception applies."},
		{Code: "CO-45", Group: "CO", Category: CategoryCoding,
			Description: "Charge exceeds fee schedule/maximum allowable or contracted/legislated fee arrangement.",
			Remediation: "Write off the contractual adjustment; no resubmission needed."},
		{Code: "CO-50", Group: "CO", Category: CategoryCoding,
			Description: "These are non-covered services because this is not deemed a medical necessity by the payer.",
			Remediation: "Review the payer's coverage policy and attach documentation of medical necessity."},
		{Code: "CO-97", Group: "CO", Category: CategoryBundling,
			Description: "The benefit for this service is included in the payment/allowance for another service/procedure that has already been adjudicated.",
			Remediation: "Remove the bundled code, or append 59/XE/XP/XS/XU when the service was truly distinct."},
		{Code: "CO-109", Group: "CO", Category: CategoryEligibility,
			Description: "Claim/service not covered by this payer/contractor.",
			Remediation: "Send the claim to the correct payer or contractor."},
		{Code: "CO-167", Group: "CO", Category: CategoryCoding,
			Description: "This (these) diagnosis(es) is (are) not covered.",
			Remediation: "Review the diagnosis coding against the payer's covered diagnosis list."},
		{Code: "CO-197", Group: "CO", Category: CategoryAuthorization,
			Description: "Precertification/authorization/notification/pre-treatment absent.",
			Remediation: "Request retro-authorization where the payer allows it."},
		{Code: "CO-204", Group: "CO", Category: CategoryEligibility,
			Description: "This service/equipment/drug is not covered under the patient's current benefit plan.",
			Remediation: "Obtain an advance beneficiary notice or bill the patient per plan rules."},
		{Code: "CO-B7", Group: "CO", Category: CategoryProvider,
			Description: "This provider was not certified/eligible to be paid for this procedure/service on this date of service.",
			Remediation: "Verify provider enrollment and credentialing with the payer."},
		{Code: "PR-1", Group: "PR", Category: CategoryPatientResp,
			Description: "Deductible amount.",
			Remediation: "Bill the patient for the deductible."},
		{Code: "PR-2", Group: "PR", Category: CategoryPatientResp,
			Description: "Coinsurance amount.",
			Remediation: "Bill the patient for the coinsurance."},
		{Code: "PR-3", Group: "PR", Category: CategoryPatientResp,
			Description: "Co-payment amount.",
			Remediation: "Collect the co-payment from the patient."},
	}
}

func modifiers() []Modifier {
	splitBillable := []CodeRange{rangeRadiology, rangeCardiacDx, rangeSurgPath}
	telehealth := []CodeRange{rangeTelehealthA, rangeTelehealthB, rangeTelehealthC}
	drugLines := []CodeRange{rangeDrugAdmin, rangeHCPCSDrugs}

	return []Modifier{
		{Code: "24", Description: "Unrelated E/M service by the same physician during a postoperative period", Category: ModifierProcedural, AppliesTo: []CodeRange{rangeEM}},
		{Code: "25", Description: "Significant, separately identifiable E/M service on the same day of a procedure", Category: ModifierProcedural, AppliesTo: []CodeRange{rangeEM}},
		{Code: "26", Description: "Professional component", Category: ModifierComponent, AppliesTo: splitBillable},
		{Code: "33", Description: "Preventive service", Category: ModifierPayment, AppliesTo: allCodes},
		{Code: "50", Description: "Bilateral procedure", Category: ModifierAnatomic, AppliesTo: []CodeRange{rangeSurgery, rangeRadiology}},
		{Code: "51", Description: "Multiple procedures", Category: ModifierProcedural, AppliesTo: []CodeRange{rangeSurgery}},
		{Code: "57", Description: "Decision for surgery", Category: ModifierProcedural, AppliesTo: []CodeRange{rangeEM}},
		{Code: "59", Description: "Distinct procedural service", Category: ModifierUnbundling, AppliesTo: allNonEM, Unbundling: true},
		{Code: "76", Description: "Repeat procedure by the same physician", Category: ModifierProcedural, AppliesTo: []CodeRange{rangeSurgery, rangeRadiology, rangeMedicine}},
		{Code: "77", Description: "Repeat procedure by another physician", Category: ModifierProcedural, AppliesTo: []CodeRange{rangeSurgery, rangeRadiology, rangeMedicine}},
		{Code: "91", Description: "Repeat clinical diagnostic laboratory test", Category: ModifierProcedural, AppliesTo: []CodeRange{rangeLab}},
		{Code: "95", Description: "Synchronous telemedicine service via real-time audio and video", Category: ModifierTelehealth, AppliesTo: telehealth},
		{Code: "GA", Description: "Waiver of liability statement issued as required by payer policy", Category: ModifierPayment, AppliesTo: allCodes},
		{Code: "GT", Description: "Via interactive audio and video telecommunication systems", Category: ModifierTelehealth, AppliesTo: telehealth},
		{Code: "GY", Description: "Item or service statutorily excluded or does not meet the definition of any benefit", Category: ModifierPayment, AppliesTo: allCodes},
		{Code: "GZ", Description: "Item or service expected to be denied as not reasonable and necessary", Category: ModifierPayment, AppliesTo: allCodes},
		{Code: "JW", Description: "Drug amount discarded/not administered to any patient", Category: ModifierDrug, AppliesTo: drugLines, RequiresDrug: true},
		{Code: "JZ", Description: "Zero drug amount discarded/not administered to any patient", Category: ModifierDrug, AppliesTo: drugLines, RequiresDrug: true},
		{Code: "KX", Description: "Requirements specified in the medical policy have been met", Category: ModifierPayment, AppliesTo: allCodes},
		{Code: "LT", Description: "Left side of the body", Category: ModifierAnatomic, AppliesTo: []CodeRange{rangeSurgery, rangeRadiology}},
		{Code: "PT", Description: "Colorectal cancer screening test converted to diagnostic test", Category: ModifierPayment, AppliesTo: []CodeRange{rangeColonoscopy}},
		{Code: "QW", Description: "CLIA waived test", Category: ModifierPayment, AppliesTo: []CodeRange{rangeLab}},
		{Code: "RT", Description: "Right side of the body", Category: ModifierAnatomic, AppliesTo: []CodeRange{rangeSurgery, rangeRadiology}},
		{Code: "TC", Description: "Technical component", Category: ModifierComponent, AppliesTo: splitBillable},
		{Code: "XE", Description: "Separate encounter", Category: ModifierUnbundling, AppliesTo: allNonEM, Unbundling: true},
		{Code: "XP", Description: "Separate practitioner", Category: ModifierUnbundling, AppliesTo: allNonEM, Unbundling: true},
		{Code: "XS", Description: "Separate structure", Category: ModifierUnbundling, AppliesTo: allNonEM, Unbundling: true},
		{Code: "XU", Description: "Unusual non-overlapping service", Category: ModifierUnbundling, AppliesTo: allNonEM, Unbundling: true},
	}
}

func payers() []Payer {
	commercialPA := append([]string{"27447", "29881", "77385", "77386"}, advancedImaging...)
	commercialDrugs := append(append([]string(nil), chemoDrugs...), biologicDrugs...)

	return []Payer{
		{ID: DefaultPayerID, Name: "Unlisted payer", Type: PayerCommercial, TimelyFilingDays: 90,
			PriorAuthCPTs: commercialPA, PriorAuthDrugs: commercialDrugs},
		{ID: "MEDICARE", Name: "Medicare Part B", Type: PayerMedicare, TimelyFilingDays: 365,
			PriorAuthCPTs: []string{"15823", "22551", "30400", "36475", "64490"}},
		{ID: "MEDICAID", Name: "State Medicaid", Type: PayerMedicaid, TimelyFilingDays: 180,
			PriorAuthCPTs: append([]string{"27447"}, advancedImaging...), PriorAuthDrugs: commercialDrugs},
		{ID: "AETNA", Name: "Aetna", Type: PayerCommercial, TimelyFilingDays: 120,
			PriorAuthCPTs: commercialPA, PriorAuthDrugs: commercialDrugs},
		{ID: "BCBS", Name: "Blue Cross Blue Shield", Type: PayerCommercial, TimelyFilingDays: 180,
			PriorAuthCPTs: commercialPA, PriorAuthDrugs: commercialDrugs},
		{ID: "CIGNA", Name: "Cigna", Type: PayerCommercial, TimelyFilingDays: 90,
			PriorAuthCPTs: commercialPA, PriorAuthDrugs: commercialDrugs},
		{ID: "UHC", Name: "UnitedHealthcare", Type: PayerCommercial, TimelyFilingDays: 90,
			PriorAuthCPTs: append([]string{"43239", "45385"}, commercialPA...), PriorAuthDrugs: commercialDrugs},
		{ID: "HUMANA", Name: "Humana Medicare Advantage", Type: PayerMedicareAdvantage, TimelyFilingDays: 180,
			PriorAuthCPTs: commercialPA, PriorAuthDrugs: chemoDrugs},
		{ID: "TRICARE", Name: "TRICARE", Type: PayerMilitary, TimelyFilingDays: 365,
			PriorAuthCPTs: advancedImaging},
	}
}

func placesOfService() []PlaceOfService {
	return []PlaceOfService{
		{Code: "02", Name: "Telehealth provided other than in patient's home", Telehealth: true},
		{Code: "10", Name: "Telehealth provided in patient's home", Telehealth: true},
		{Code: "11", Name: "Office"},
		{Code: "12", Name: "Home"},
		{Code: "19", Name: "Off campus-outpatient hospital", Facility: true},
		{Code: "20", Name: "Urgent care facility"},
		{Code: "21", Name: "Inpatient hospital", Facility: true},
		{Code: "22", Name: "On campus-outpatient hospital", Facility: true},
		{Code: "23", Name: "Emergency room - hospital", Facility: true},
		{Code: "24", Name: "Ambulatory surgical center", Facility: true},
		{Code: "31", Name: "Skilled nursing facility", Facility: true},
		{Code: "32", Name: "Nursing facility"},
		{Code: "49", Name: "Independent clinic"},
		{Code: "50", Name: "Federally qualified health center"},
		{Code: "81", Name: "Independent laboratory"},
	}
}

func specialties() []SpecialtyConfig {
	chemo := append(append([]string(nil), oncologyDiagnoses...), "Z511")
	cardiacSymptoms := []string{"I", "R00", "R01", "R06", "R07", "R55", "Z0181", "Z136"}
	knee := []string{"M17", "M22", "M23", "M25", "M94", "S83", "S86"}
	lowerGI := []string{"K5", "K6", "K92", "R10", "R19", "D12", "D50", "C18", "C19", "C20", "Z121", "Z8601", "Z800"}
	upperGI := []string{"K2", "K3", "K92", "R10", "R11", "R12", "R13", "D50", "C15", "C16"}

	return []SpecialtyConfig{
		{
			ID:             "ONCOLOGY",
			Name:           "Hematology/Oncology",
			CommonCPTCodes: []string{"96413", "96415", "96417", "96360", "96365", "96372", "77385", "77386", "99214"},
			Pairings: []Pairing{
				{CPT: "96413", ICDPrefixes: chemo, Suggested: []string{"C50.911", "C34.90", "C18.9", "C61", "Z51.11"}},
				{CPT: "96415", ICDPrefixes: chemo, Suggested: []string{"C50.911", "C34.90", "Z51.11"}},
				{CPT: "96417", ICDPrefixes: chemo, Suggested: []string{"C50.911", "C34.90", "Z51.11"}},
				{CPT: "96360", ICDPrefixes: append([]string{"E86", "R11", "T451X5"}, oncologyDiagnoses...), Suggested: []string{"E86.0", "R11.2", "T45.1X5A"}},
				{CPT: "96365", ICDPrefixes: append([]string{"D5", "D6", "D70", "E86", "M81"}, oncologyDiagnoses...), Suggested: []string{"D63.0", "D70.1", "C50.911"}},
				{CPT: "96372", ICDPrefixes: append([]string{"D5", "D6", "D70", "M81", "E538"}, oncologyDiagnoses...), Suggested: []string{"D70.1", "D63.0", "M81.0"}},
				{CPT: "77385", ICDPrefixes: oncologyDiagnoses, Suggested: []string{"C50.911", "C61"}},
				{CPT: "77386", ICDPrefixes: oncologyDiagnoses, Suggested: []string{"C50.911", "C61"}},
			},
			PriorAuthCPTs:  []string{"77385", "77386"},
			PriorAuthDrugs: chemoDrugs,
		},
		{
			ID:             "CARDIOLOGY",
			Name:           "Cardiology",
			CommonCPTCodes: []string{"93000", "93005", "93010", "93306", "93015", "78452", "99214"},
			Pairings: []Pairing{
				{CPT: "93000", ICDPrefixes: cardiacSymptoms, Suggested: []string{"R07.9", "I48.91", "R00.2", "I10", "Z01.810"}},
				{CPT: "93005", ICDPrefixes: cardiacSymptoms, Suggested: []string{"R07.9", "I48.91", "R00.2"}},
				{CPT: "93010", ICDPrefixes: cardiacSymptoms, Suggested: []string{"R07.9", "I48.91", "R00.2"}},
				{CPT: "93306", ICDPrefixes: []string{"I", "Q2", "R01", "R06", "R07", "R55"}, Suggested: []string{"I50.9", "I35.0", "R01.1"}},
				{CPT: "93015", ICDPrefixes: []string{"I20", "I25", "R06", "R07", "Z0181"}, Suggested: []string{"R07.9", "I25.10"}},
				{CPT: "78452", ICDPrefixes: []string{"I20", "I25", "R07", "R94"}, Suggested: []string{"I25.10", "R07.9"}},
			},
			PriorAuthCPTs: []string{"78452", "93306"},
		},
		{
			ID:             "ORTHOPEDICS",
			Name:           "Orthopedic Surgery",
			CommonCPTCodes: []string{"20610", "27447", "29880", "29881", "73721", "72148", "99213"},
			Pairings: []Pairing{
				{CPT: "20610", ICDPrefixes: []string{"M05", "M06", "M10", "M15", "M16", "M17", "M19", "M25", "M65", "M70", "M75", "M76", "M77"}, Suggested: []string{"M17.11", "M17.12", "M25.561", "M19.011"}},
				{CPT: "27447", ICDPrefixes: []string{"M05", "M06", "M08", "M17", "M87", "M89"}, Suggested: []string{"M17.11", "M17.12", "M17.0"}},
				{CPT: "29880", ICDPrefixes: []string{"M23", "M94", "S83"}, Suggested: []string{"S83.241A", "M23.221"}},
				{CPT: "29881", ICDPrefixes: []string{"M23", "M94", "S83"}, Suggested: []string{"S83.241A", "M23.221"}},
				{CPT: "73721", ICDPrefixes: knee, Suggested: []string{"M25.561", "S83.241A", "M17.11"}},
				{CPT: "72148", ICDPrefixes: []string{"G834", "M43", "M48", "M51", "M54", "S32", "S33"}, Suggested: []string{"M54.50", "M51.16", "M48.061"}},
			},
			PriorAuthCPTs: []string{"27447", "29881", "72148", "73721"},
		},
		{
			ID:             "PRIMARY_CARE",
			Name:           "Family/Internal Medicine",
			CommonCPTCodes: []string{"99213", "99214", "99396", "36415", "80053", "85025", "81002", "90471", "71046"},
			Pairings: []Pairing{
				{CPT: "99202", AnyDiagnosis: true},
				{CPT: "99203", AnyDiagnosis: true},
				{CPT: "99204", AnyDiagnosis: true},
				{CPT: "99205", AnyDiagnosis: true},
				{CPT: "99211", AnyDiagnosis: true},
				{CPT: "99212", AnyDiagnosis: true},
				{CPT: "99213", AnyDiagnosis: true, Suggested: []string{"I10", "E11.9", "J06.9", "E78.5"}},
				{CPT: "99214", AnyDiagnosis: true, Suggested: []string{"I10", "E11.9", "E78.5", "F41.1"}},
				{CPT: "99215", AnyDiagnosis: true},
				{CPT: "99395", ICDPrefixes: []string{"Z00", "Z01", "Z13"}, Suggested: []string{"Z00.00", "Z00.01"}},
				{CPT: "99396", ICDPrefixes: []string{"Z00", "Z01", "Z13"}, Suggested: []string{"Z00.00", "Z00.01"}},
				{CPT: "36415", AnyDiagnosis: true},
				{CPT: "80048", AnyDiagnosis: true, Suggested: []string{"E87.6", "N18.3", "I10"}},
				{CPT: "80053", AnyDiagnosis: true, Suggested: []string{"E11.9", "E78.5", "Z00.00"}},
				{CPT: "85025", AnyDiagnosis: true, Suggested: []string{"D64.9", "R53.83", "Z00.00"}},
				{CPT: "81002", ICDPrefixes: []string{"N30", "N39", "O", "R30", "R31", "R35", "Z00"}, Suggested: []string{"N39.0", "R30.0"}},
				{CPT: "90471", ICDPrefixes: []string{"Z23"}, Suggested: []string{"Z23"}},
				{CPT: "71045", ICDPrefixes: []string{"I50", "J", "R05", "R06", "R07", "R50", "Z0181"}, Suggested: []string{"R05.9", "J18.9"}},
				{CPT: "71046", ICDPrefixes: []string{"I50", "J", "R05", "R06", "R07", "R50", "Z0181"}, Suggested: []string{"R05.9", "J18.9", "R06.02"}},
			},
		},
		{
			ID:             "GASTROENTEROLOGY",
			Name:           "Gastroenterology",
			CommonCPTCodes: []string{"45378", "45380", "45385", "43235", "43239"},
			Pairings: []Pairing{
				{CPT: "45378", ICDPrefixes: lowerGI, Suggested: []string{"Z12.11", "K57.30", "K92.1"}},
				{CPT: "45380", ICDPrefixes: lowerGI, Suggested: []string{"Z12.11", "K63.5", "K92.1"}},
				{CPT: "45385", ICDPrefixes: []string{"C18", "D12", "K635", "Z121", "Z8601"}, Suggested: []string{"D12.5", "K63.5", "Z12.11"}},
				{CPT: "43235", ICDPrefixes: upperGI, Suggested: []string{"K21.9", "R13.10", "R10.13"}},
				{CPT: "43239", ICDPrefixes: upperGI, Suggested: []string{"K21.9", "K29.70", "R13.10"}},
			},
		},
	}
}

func ncciEdits() []NCCIEdit {
	return []NCCIEdit{
		{Column1: "96413", Column2: "96360", Description: "Hydration is included in chemotherapy administration through the same access"},
		{Column1: "96413", Column2: "96365", Description: "Therapeutic infusion is included in chemotherapy administration through the same access"},
		{Column1: "96365", Column2: "96360", Description: "Hydration is included in a concurrent therapeutic infusion"},
		{Column1: "93000", Column2: "93005", Description: "ECG tracing is a component of the complete ECG"},
		{Column1: "93000", Column2: "93010", Description: "ECG interpretation is a component of the complete ECG"},
		{Column1: "29880", Column2: "29881", Description: "Single-compartment meniscectomy is included in the bicompartmental procedure"},
		{Column1: "27447", Column2: "20610", Description: "Arthrocentesis of the same knee is included in total knee arthroplasty"},
		{Column1: "45380", Column2: "45378", Description: "Diagnostic colonoscopy is included in colonoscopy with biopsy"},
		{Column1: "45385", Column2: "45378", Description: "Diagnostic colonoscopy is included in colonoscopy with snare polypectomy"},
		{Column1: "45385", Column2: "45380", Description: "Biopsy of the same lesion is included in snare polypectomy"},
		{Column1: "43239", Column2: "43235", Description: "Diagnostic EGD is included in EGD with biopsy"},
		{Column1: "80053", Column2: "80048", Description: "Basic metabolic panel is included in the comprehensive metabolic panel"},
		{Column1: "71046", Column2: "71045", Description: "Single-view chest radiograph is included in the two-view study"},
	}
}
