package scrub

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/claimscrub/scrubber/internal/domain/claim"
	"github.com/claimscrub/scrubber/internal/platform/npiregistry"
)

var testNow = time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

func testClock() time.Time { return testNow }

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

// cleanClaim passes every check against the packaged tables.
func cleanClaim() *claim.Claim {
	return &claim.Claim{
		ID:             uuid.New(),
		PatientID:      "P-100",
		PatientDOB:     date(1961, 7, 4),
		PayerID:        "MEDICARE",
		ProviderNPI:    "1234567893",
		Specialty:      "ONCOLOGY",
		DateOfService:  date(2024, 3, 1),
		PlaceOfService: "11",
		Status:         claim.StatusDraft,
		ServiceLines: []claim.ServiceLine{
			{LineNumber: 1, CPTCode: "96413", ICDCodes: []string{"C50.911"}, DrugCode: "J9271", DrugUnits: 200, Units: 1, ChargeAmount: 450},
		},
	}
}

func newTestEngine(opts Options) *Engine {
	if opts.Clock == nil {
		opts.Clock = testClock
	}
	return NewEngine(nil, opts)
}

type mockClaims struct {
	mu    sync.Mutex
	store map[uuid.UUID]*claim.Claim
}

func newMockClaims(claims ...*claim.Claim) *mockClaims {
	m := &mockClaims{store: make(map[uuid.UUID]*claim.Claim)}
	for _, c := range claims {
		m.store[c.ID] = c
	}
	return m
}

func (m *mockClaims) Create(_ context.Context, c *claim.Claim) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = uuid.New()
	m.store[c.ID] = c
	return nil
}

func (m *mockClaims) GetByID(_ context.Context, id uuid.UUID) (*claim.Claim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.store[id]
	if !ok {
		return nil, claim.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *mockClaims) List(_ context.Context, _ claim.ListFilter, _, _ int) ([]*claim.Claim, int, error) {
	return nil, 0, nil
}

func (m *mockClaims) UpdateStatus(_ context.Context, c *claim.Claim) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store[c.ID] = c
	return nil
}

func (m *mockClaims) RecordValidation(_ context.Context, id uuid.UUID, score int, status claim.Status, at time.Time) (claim.Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.store[id]
	if !ok {
		return "", claim.ErrNotFound
	}
	c.Score = &score
	c.ValidatedAt = &at
	c.Status = c.Status.AfterValidation(status)
	return c.Status, nil
}

type storedRun struct {
	results []Result
	at      time.Time
}

type mockResults struct {
	mu       sync.Mutex
	runs     map[uuid.UUID]storedRun
	replaces int
	err      error
}

func newMockResults() *mockResults {
	return &mockResults{runs: make(map[uuid.UUID]storedRun)}
}

func (m *mockResults) Replace(_ context.Context, claimID uuid.UUID, results []Result, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.replaces++
	m.runs[claimID] = storedRun{results: append([]Result(nil), results...), at: at}
	return nil
}

func (m *mockResults) GetByClaim(_ context.Context, claimID uuid.UUID) ([]Result, time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	run := m.runs[claimID]
	return run.results, run.at, nil
}

// noTx runs fn directly.
type noTx struct{}

func (noTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }

type published struct {
	key     string
	payload interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, key string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, published{key: key, payload: payload})
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

// fakeRegistry answers lookups from a map. Unknown NPIs are not found.
type fakeRegistry struct {
	providers map[string]*npiregistry.Provider
	err       error
}

func (f *fakeRegistry) Lookup(_ context.Context, npi string) (*npiregistry.Provider, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.providers[npi]
	if !ok {
		return nil, npiregistry.ErrNotFound
	}
	return p, nil
}

// blockingRegistry ignores its context and waits for release.
type blockingRegistry struct {
	release chan struct{}
}

func (b *blockingRegistry) Lookup(_ context.Context, _ string) (*npiregistry.Provider, error) {
	<-b.release
	return nil, errors.New("released")
}

// ctxRegistry waits for its context to end.
type ctxRegistry struct{}

func (ctxRegistry) Lookup(ctx context.Context, _ string) (*npiregistry.Provider, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

type panicRegistry struct{}

func (panicRegistry) Lookup(context.Context, string) (*npiregistry.Provider, error) {
	panic("registry exploded")
}

func resultFor(t CheckType, v *ClaimValidation) (Result, bool) {
	for _, r := range v.Validations {
		if r.CheckType == t {
			return r, true
		}
	}
	return Result{}, false
}

func asBool(v Value) bool {
	b, _ := v.AsBool()
	return b
}

func asString(v Value) string {
	s, _ := v.AsString()
	return s
}

func asStrings(v Value) []string {
	l, _ := v.AsStrings()
	return l
}

func asInt(v Value) int {
	n, _ := v.AsNumber()
	return int(n)
}
