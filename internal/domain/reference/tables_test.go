package reference

import (
	"strings"
	"testing"
)

func TestDefault_Builds(t *testing.T) {
	tables := Default()
	if tables == nil {
		t.Fatal("expected packaged tables")
	}
	if _, ok := tables.Payer(DefaultPayerID); !ok {
		t.Error("expected DEFAULT payer in packaged tables")
	}
	if Default() != tables {
		t.Error("expected Default to return the same instance")
	}
}

func TestPackagedDenialCodes_CoverCheckOutcomes(t *testing.T) {
	tables := Default()
	for _, code := range []string{"CO-4", "CO-11", "CO-15", "CO-16", "CO-29", "CO-97"} {
		d, ok := tables.DenialCode(code)
		if !ok {
			t.Errorf("expected denial code %s", code)
			continue
		}
		if d.Remediation == "" {
			t.Errorf("expected remediation text for %s", code)
		}
		if !strings.HasPrefix(code, d.Group+"-") {
			t.Errorf("expected group prefix for %s, got %s", code, d.Group)
		}
	}
}

func TestPairing_OncologyChemo(t *testing.T) {
	tables := Default()
	p, ok := tables.Pairing("96413", "ONCOLOGY")
	if !ok {
		t.Fatal("expected pairing for 96413")
	}
	if !p.SupportsDiagnosis("C50.911") {
		t.Error("expected C50.911 to support 96413")
	}
	if p.SupportsDiagnosis("Z00.00") {
		t.Error("expected Z00.00 not to support 96413")
	}
	if !p.SupportsDiagnosis("Z51.11") {
		t.Error("expected Z51.11 (encounter for chemotherapy) to support 96413")
	}
	if p.SupportsDiagnosis("C5") {
		t.Error("expected malformed code never to match")
	}
}

func TestPairing_AnyDiagnosis(t *testing.T) {
	p, ok := Default().Pairing("99213", "")
	if !ok {
		t.Fatal("expected pairing for 99213")
	}
	if !p.SupportsDiagnosis("J06.9") {
		t.Error("expected office visit to pair with any well-formed code")
	}
	if p.SupportsDiagnosis("not-a-code") {
		t.Error("expected malformed code to be rejected")
	}
}

func TestPairing_SpecialtyWinsOverMerged(t *testing.T) {
	tables, err := New(Data{
		Payers: []Payer{{ID: DefaultPayerID, TimelyFilingDays: 90}},
		Specialties: []SpecialtyConfig{
			{ID: "A", Pairings: []Pairing{{CPT: "11111", ICDPrefixes: []string{"A"}}}},
			{ID: "B", Pairings: []Pairing{{CPT: "11111", ICDPrefixes: []string{"B"}}}},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	merged, ok := tables.Pairing("11111", "")
	if !ok {
		t.Fatal("expected merged pairing")
	}
	if !merged.SupportsDiagnosis("A01.0") || !merged.SupportsDiagnosis("B01.0") {
		t.Error("expected merged pairing to carry both specialties' prefixes")
	}

	a, _ := tables.Pairing("11111", "a")
	if a.SupportsDiagnosis("B01.0") {
		t.Error("expected specialty A pairing to exclude B prefixes")
	}

	if _, ok := tables.Pairing("22222", "A"); ok {
		t.Error("expected no pairing for unknown cpt")
	}
}

func TestNCCIEdit_EitherOrder(t *testing.T) {
	tables := Default()
	if _, ok := tables.NCCIEdit("96413", "96360"); !ok {
		t.Error("expected edit for 96413/96360")
	}
	e, ok := tables.NCCIEdit("96360", "96413")
	if !ok {
		t.Fatal("expected edit for reversed order")
	}
	if e.Column1 != "96413" {
		t.Errorf("expected column1 96413, got %s", e.Column1)
	}
	if _, ok := tables.NCCIEdit("99213", "96413"); ok {
		t.Error("expected no edit for unrelated pair")
	}
}

func TestPayerOrDefault(t *testing.T) {
	tables := Default()

	p, found := tables.PayerOrDefault("aetna")
	if !found || p.ID != "AETNA" {
		t.Errorf("expected AETNA, got %s (found=%v)", p.ID, found)
	}

	p, found = tables.PayerOrDefault("UNKNOWN-PAYER")
	if found {
		t.Error("expected unknown payer to report not found")
	}
	if p.ID != DefaultPayerID || p.TimelyFilingDays != 90 {
		t.Errorf("expected DEFAULT payer with 90 days, got %s/%d", p.ID, p.TimelyFilingDays)
	}
}

func TestPriorAuthRequired(t *testing.T) {
	tables := Default()

	tests := []struct {
		name      string
		cpt, drug string
		payer     string
		specialty string
		required  bool
		code      string
	}{
		{"commercial imaging", "72148", "", "AETNA", "", true, "72148"},
		{"commercial drug", "96413", "J9271", "BCBS", "ONCOLOGY", true, "J9271"},
		{"office visit", "99213", "", "AETNA", "PRIMARY_CARE", false, ""},
		{"medicare payer list", "64490", "", "MEDICARE", "", true, "64490"},
		{"medicare ignores specialty list", "77386", "", "MEDICARE", "ONCOLOGY", false, ""},
		{"specialty list for medicaid", "77385", "", "MEDICAID", "ONCOLOGY", true, "77385"},
		{"unknown payer uses default", "27447", "", "NOBODY", "", true, "27447"},
		{"drug code billed as procedure", "j9271", "", "aetna", "", false, ""},
		{"lowercase drug code", "96413", "j9271", "aetna", "", true, "J9271"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tables.PriorAuthRequired(tt.cpt, tt.drug, tt.payer, tt.specialty)
			if got.Required != tt.required {
				t.Errorf("expected required=%v, got %v (%+v)", tt.required, got.Required, got)
			}
			if got.Code != tt.code {
				t.Errorf("expected code %q, got %q", tt.code, got.Code)
			}
		})
	}
}

func TestIsSplitBillable(t *testing.T) {
	tables := Default()
	for _, cpt := range []string{"71046", "93306", "88305"} {
		if !tables.IsSplitBillable(cpt) {
			t.Errorf("expected %s to be split billable", cpt)
		}
	}
	for _, cpt := range []string{"99213", "96413", "J9271"} {
		if tables.IsSplitBillable(cpt) {
			t.Errorf("expected %s not to be split billable", cpt)
		}
	}
}

func TestModifier_AppliesToCode(t *testing.T) {
	tables := Default()

	m25, ok := tables.Modifier("25")
	if !ok {
		t.Fatal("expected modifier 25")
	}
	if !m25.AppliesToCode("99213") || m25.AppliesToCode("96413") {
		t.Error("expected 25 to apply to E/M codes only")
	}

	jw, _ := tables.Modifier("jw")
	if !jw.RequiresDrug || !jw.AppliesToCode("J9271") {
		t.Error("expected JW to be a drug modifier applying to J-codes")
	}

	xu, _ := tables.Modifier("XU")
	if !xu.Unbundling {
		t.Error("expected XU to be an unbundling modifier")
	}
}

func TestNew_RejectsBadData(t *testing.T) {
	base := func() Data {
		return Data{Payers: []Payer{{ID: DefaultPayerID, TimelyFilingDays: 90}}}
	}

	tests := []struct {
		name   string
		mutate func(*Data)
		want   string
	}{
		{"no default payer", func(d *Data) { d.Payers = []Payer{{ID: "X", TimelyFilingDays: 1}} }, "DEFAULT"},
		{"zero filing window", func(d *Data) { d.Payers = append(d.Payers, Payer{ID: "X"}) }, "timely filing"},
		{"duplicate denial", func(d *Data) { d.DenialCodes = []DenialCode{{Code: "CO-4"}, {Code: "CO-4"}} }, "duplicate denial"},
		{"malformed modifier", func(d *Data) { d.Modifiers = []Modifier{{Code: "ABC"}} }, "malformed modifier"},
		{"malformed pos", func(d *Data) { d.PlacesOfService = []PlaceOfService{{Code: "1"}} }, "place of service"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := base()
			tt.mutate(&d)
			_, err := New(d)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestListings_Sorted(t *testing.T) {
	tables := Default()
	codes := tables.DenialCodes()
	for i := 1; i < len(codes); i++ {
		if codes[i-1].Code > codes[i].Code {
			t.Fatalf("denial codes not sorted at %d: %s > %s", i, codes[i-1].Code, codes[i].Code)
		}
	}
	payers := tables.Payers()
	for i := 1; i < len(payers); i++ {
		if payers[i-1].ID > payers[i].ID {
			t.Fatalf("payers not sorted at %d", i)
		}
	}
	if len(tables.NCCIEdits()) == 0 {
		t.Error("expected NCCI edits")
	}
}
