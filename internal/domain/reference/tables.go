// Package reference holds the read-only coding tables the claim checks run
// against: denial codes, modifiers, payers, places of service, specialty
// pairings, NCCI edits and prior authorization lists.
//
// Tables are built once and never mutated, so they are safe for concurrent
// use without locking. Default returns the packaged tables; tests build their
// own with New.
package reference

import (
	"fmt"
	"sort"
	"sync"

	"github.com/claimscrub/scrubber/internal/domain/coding"
)

// DefaultPayerID keys the fallback payer used when a claim's payer is unknown.
const DefaultPayerID = "DEFAULT"

// Data is the raw content of a Tables value.
type Data struct {
	DenialCodes     []DenialCode
	Modifiers       []Modifier
	Payers          []Payer
	PlacesOfService []PlaceOfService
	Specialties     []SpecialtyConfig
	NCCIEdits       []NCCIEdit
	// SplitBillable lists procedure ranges with separate professional (26) and
	// technical (TC) components.
	SplitBillable []CodeRange
}

type pairKey struct{ a, b string }

// Tables is the immutable, indexed form of Data.
type Tables struct {
	denialCodes     map[string]DenialCode
	modifiers       map[string]Modifier
	payers          map[string]Payer
	placesOfService map[string]PlaceOfService
	specialties     map[string]SpecialtyConfig
	ncci            map[pairKey]NCCIEdit
	splitBillable   []CodeRange

	// merged pairings across all specialties, keyed by CPT
	pairings map[string]Pairing

	data Data
}

// New indexes data. It fails when a key is duplicated or when no DEFAULT
// payer is present.
func New(data Data) (*Tables, error) {
	t := &Tables{
		denialCodes:     make(map[string]DenialCode, len(data.DenialCodes)),
		modifiers:       make(map[string]Modifier, len(data.Modifiers)),
		payers:          make(map[string]Payer, len(data.Payers)),
		placesOfService: make(map[string]PlaceOfService, len(data.PlacesOfService)),
		specialties:     make(map[string]SpecialtyConfig, len(data.Specialties)),
		ncci:            make(map[pairKey]NCCIEdit, len(data.NCCIEdits)),
		pairings:        make(map[string]Pairing),
		splitBillable:   data.SplitBillable,
		data:            data,
	}

	for _, d := range data.DenialCodes {
		if _, dup := t.denialCodes[d.Code]; dup {
			return nil, fmt.Errorf("duplicate denial code %s", d.Code)
		}
		t.denialCodes[d.Code] = d
	}
	for _, m := range data.Modifiers {
		if !coding.IsValidModifier(m.Code) {
			return nil, fmt.Errorf("malformed modifier %q", m.Code)
		}
		if _, dup := t.modifiers[m.Code]; dup {
			return nil, fmt.Errorf("duplicate modifier %s", m.Code)
		}
		t.modifiers[m.Code] = m
	}
	for _, p := range data.Payers {
		if _, dup := t.payers[p.ID]; dup {
			return nil, fmt.Errorf("duplicate payer %s", p.ID)
		}
		if p.TimelyFilingDays <= 0 {
			return nil, fmt.Errorf("payer %s: timely filing days must be positive", p.ID)
		}
		t.payers[p.ID] = p
	}
	if _, ok := t.payers[DefaultPayerID]; !ok {
		return nil, fmt.Errorf("payer table has no %s entry", DefaultPayerID)
	}
	for _, pos := range data.PlacesOfService {
		if !coding.IsValidPlaceOfService(pos.Code) {
			return nil, fmt.Errorf("malformed place of service %q", pos.Code)
		}
		t.placesOfService[pos.Code] = pos
	}
	for _, s := range data.Specialties {
		if _, dup := t.specialties[s.ID]; dup {
			return nil, fmt.Errorf("duplicate specialty %s", s.ID)
		}
		t.specialties[s.ID] = s
		for _, p := range s.Pairings {
			t.pairings[p.CPT] = mergePairing(t.pairings[p.CPT], p)
		}
	}
	for _, e := range data.NCCIEdits {
		t.ncci[pairKey{e.Column1, e.Column2}] = e
	}
	return t, nil
}

func mergePairing(into, p Pairing) Pairing {
	into.CPT = p.CPT
	into.AnyDiagnosis = into.AnyDiagnosis || p.AnyDiagnosis
	into.ICDPrefixes = appendUnique(into.ICDPrefixes, p.ICDPrefixes...)
	into.Suggested = appendUnique(into.Suggested, p.Suggested...)
	return into
}

func appendUnique(dst []string, values ...string) []string {
	for _, v := range values {
		found := false
		for _, d := range dst {
			if d == v {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, v)
		}
	}
	return dst
}

var (
	defaultOnce   sync.Once
	defaultTables *Tables
)

// Default returns the packaged tables, built on first use.
func Default() *Tables {
	defaultOnce.Do(func() {
		t, err := New(packagedData())
		if err != nil {
			panic(fmt.Sprintf("reference: packaged tables are invalid: %v", err))
		}
		defaultTables = t
	})
	return defaultTables
}

// DenialCode looks up a denial code such as CO-11.
func (t *Tables) DenialCode(code string) (DenialCode, bool) {
	d, ok := t.denialCodes[code]
	return d, ok
}

// Modifier looks up a modifier by its two-character code.
func (t *Tables) Modifier(code string) (Modifier, bool) {
	m, ok := t.modifiers[coding.NormalizeCode(code)]
	return m, ok
}

// Payer looks up a payer by ID.
func (t *Tables) Payer(id string) (Payer, bool) {
	p, ok := t.payers[coding.NormalizeCode(id)]
	return p, ok
}

// PayerOrDefault returns the payer for id, or the DEFAULT payer when id is
// unknown. The second result reports whether id itself was found.
func (t *Tables) PayerOrDefault(id string) (Payer, bool) {
	if p, ok := t.Payer(id); ok {
		return p, true
	}
	return t.payers[DefaultPayerID], false
}

// PlaceOfService looks up a place-of-service code.
func (t *Tables) PlaceOfService(code string) (PlaceOfService, bool) {
	p, ok := t.placesOfService[code]
	return p, ok
}

// Specialty looks up a specialty configuration.
func (t *Tables) Specialty(id string) (SpecialtyConfig, bool) {
	s, ok := t.specialties[coding.NormalizeCode(id)]
	return s, ok
}

// Pairing returns the diagnosis pairing for cpt. When specialty is known and
// carries its own pairing for cpt, that one wins; otherwise the pairings of
// every specialty are merged. ok is false when no table knows cpt.
func (t *Tables) Pairing(cpt, specialty string) (Pairing, bool) {
	cpt = coding.NormalizeCode(cpt)
	if s, ok := t.Specialty(specialty); ok {
		for _, p := range s.Pairings {
			if p.CPT == cpt {
				return p, true
			}
		}
	}
	p, ok := t.pairings[cpt]
	return p, ok
}

// SupportsDiagnosis reports whether icd is an accepted diagnosis for the
// pairing. Malformed codes never match.
func (p Pairing) SupportsDiagnosis(icd string) bool {
	if !coding.IsValidICD10(icd) {
		return false
	}
	if p.AnyDiagnosis {
		return true
	}
	norm := coding.NormalizeICD10(icd)
	for _, prefix := range p.ICDPrefixes {
		if len(norm) >= len(prefix) && norm[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}

// NCCIEdit returns the bundling edit between two procedure codes, in either
// column order.
func (t *Tables) NCCIEdit(a, b string) (NCCIEdit, bool) {
	a, b = coding.NormalizeCode(a), coding.NormalizeCode(b)
	if e, ok := t.ncci[pairKey{a, b}]; ok {
		return e, true
	}
	e, ok := t.ncci[pairKey{b, a}]
	return e, ok
}

// IsSplitBillable reports whether cpt has separate professional and technical
// components.
func (t *Tables) IsSplitBillable(cpt string) bool {
	cpt = coding.NormalizeCode(cpt)
	for _, r := range t.splitBillable {
		if r.Contains(cpt) {
			return true
		}
	}
	return false
}

// PriorAuthRequirement explains why a service needs authorization.
type PriorAuthRequirement struct {
	Required bool
	// Code is the procedure or drug code that triggered the requirement.
	Code   string
	Source string
}

// PriorAuthRequired decides whether the procedure/drug combination needs
// prior authorization from the payer. Payer lists always apply; specialty
// lists apply to every payer type except traditional Medicare.
func (t *Tables) PriorAuthRequired(cpt, drugCode, payerID, specialty string) PriorAuthRequirement {
	cpt = coding.NormalizeCode(cpt)
	drugCode = coding.NormalizeCode(drugCode)
	payer, _ := t.PayerOrDefault(payerID)

	if contains(payer.PriorAuthCPTs, cpt) {
		return PriorAuthRequirement{Required: true, Code: cpt, Source: "payer " + payer.ID}
	}
	if drugCode != "" && contains(payer.PriorAuthDrugs, drugCode) {
		return PriorAuthRequirement{Required: true, Code: drugCode, Source: "payer " + payer.ID}
	}
	if payer.Type == PayerMedicare {
		return PriorAuthRequirement{}
	}
	if s, ok := t.Specialty(specialty); ok {
		if contains(s.PriorAuthCPTs, cpt) {
			return PriorAuthRequirement{Required: true, Code: cpt, Source: "specialty " + s.ID}
		}
		if drugCode != "" && contains(s.PriorAuthDrugs, drugCode) {
			return PriorAuthRequirement{Required: true, Code: drugCode, Source: "specialty " + s.ID}
		}
	}
	return PriorAuthRequirement{}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// DenialCodes returns every denial code ordered by code.
func (t *Tables) DenialCodes() []DenialCode {
	out := append([]DenialCode(nil), t.data.DenialCodes...)
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Modifiers returns every modifier ordered by code.
func (t *Tables) Modifiers() []Modifier {
	out := append([]Modifier(nil), t.data.Modifiers...)
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Payers returns every payer ordered by ID.
func (t *Tables) Payers() []Payer {
	out := append([]Payer(nil), t.data.Payers...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// PlacesOfService returns every place of service ordered by code.
func (t *Tables) PlacesOfService() []PlaceOfService {
	out := append([]PlaceOfService(nil), t.data.PlacesOfService...)
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Specialties returns every specialty ordered by ID.
func (t *Tables) Specialties() []SpecialtyConfig {
	out := append([]SpecialtyConfig(nil), t.data.Specialties...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// NCCIEdits returns every bundling edit in table order.
func (t *Tables) NCCIEdits() []NCCIEdit {
	return append([]NCCIEdit(nil), t.data.NCCIEdits...)
}
