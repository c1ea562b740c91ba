package scrub

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/claimscrub/scrubber/internal/domain/claim"
	"github.com/claimscrub/scrubber/internal/domain/reference"
	"github.com/claimscrub/scrubber/internal/platform/npiregistry"
)

const (
	DefaultNPILookupTimeout     = 5 * time.Second
	DefaultCheckTimeout         = 10 * time.Second
	DefaultTimelyFilingWarnDays = 30
)

// NPIRegistry confirms an NPI against an external provider registry. It
// returns npiregistry.ErrNotFound when the registry has no such provider.
type NPIRegistry interface {
	Lookup(ctx context.Context, npi string) (*npiregistry.Provider, error)
}

type Options struct {
	// Registry is optional. Without it NPI_VERIFY checks format only.
	Registry         NPIRegistry
	NPILookupTimeout time.Duration
	// CheckTimeout bounds each check. A check that overruns it is reported
	// as a WARNING.
	CheckTimeout time.Duration
	// TimelyFilingWarnDays is the near-expiry threshold. Zero selects the
	// default; a negative value disables the warning.
	TimelyFilingWarnDays int
	Clock                func() time.Time
	Logger               *zerolog.Logger
}

type checkFunc func(ctx context.Context, cl *claim.Claim) (Result, error)

// Engine runs the rule checks against a claim. It holds no per-claim state
// and is safe for concurrent use.
type Engine struct {
	tables       *reference.Tables
	registry     NPIRegistry
	npiTimeout   time.Duration
	checkTimeout time.Duration
	warnDays     int
	now          func() time.Time
	logger       zerolog.Logger
	checks       map[CheckType]checkFunc
}

func NewEngine(tables *reference.Tables, opts Options) *Engine {
	e := &Engine{
		tables:       tables,
		registry:     opts.Registry,
		npiTimeout:   opts.NPILookupTimeout,
		checkTimeout: opts.CheckTimeout,
		warnDays:     opts.TimelyFilingWarnDays,
		now:          opts.Clock,
		logger:       zerolog.Nop(),
	}
	if e.tables == nil {
		e.tables = reference.Default()
	}
	if e.npiTimeout <= 0 {
		e.npiTimeout = DefaultNPILookupTimeout
	}
	if e.checkTimeout <= 0 {
		e.checkTimeout = DefaultCheckTimeout
	}
	if e.warnDays == 0 {
		e.warnDays = DefaultTimelyFilingWarnDays
	}
	if e.now == nil {
		e.now = time.Now
	}
	if opts.Logger != nil {
		e.logger = *opts.Logger
	}

	e.checks = map[CheckType]checkFunc{
		CheckCPTICDMatch:      e.checkCPTICDMatch,
		CheckNPIVerify:        e.checkNPI,
		CheckModifiers:        e.checkModifiers,
		CheckPriorAuth:        e.checkPriorAuth,
		CheckDataCompleteness: e.checkDataCompleteness,
		CheckTimelyFiling:     e.checkTimelyFiling,
		CheckNCCIEdits:        e.checkNCCIEdits,
	}
	return e
}

func (e *Engine) Tables() *reference.Tables { return e.tables }

// Run executes the requested checks (all of them when checks is empty)
// concurrently and aggregates their results in canonical order. Every check
// runs even when others fail. Only an unknown check type or a cancelled
// context produce an error.
func (e *Engine) Run(ctx context.Context, cl *claim.Claim, checks []CheckType) (*ClaimValidation, error) {
	if cl == nil {
		return nil, errors.New("claim is required")
	}
	types, err := ResolveChecks(checks)
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(types))
	var wg sync.WaitGroup
	for i, t := range types {
		wg.Add(1)
		go func(i int, t CheckType) {
			defer wg.Done()
			results[i] = e.runCheck(ctx, t, cl)
		}(i, t)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("validation cancelled: %w", err)
	}
	return newValidation(cl.ID, results, e.now().UTC()), nil
}

type checkOutcome struct {
	result Result
	err    error
}

// runCheck isolates one check: a panic, an error or an overrun becomes a
// WARNING for that check type.
func (e *Engine) runCheck(ctx context.Context, t CheckType, cl *claim.Claim) Result {
	ctx, cancel := context.WithTimeout(ctx, e.checkTimeout)
	defer cancel()

	done := make(chan checkOutcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- checkOutcome{err: fmt.Errorf("check panicked: %v", r)}
			}
		}()
		res, err := e.checks[t](ctx, cl)
		done <- checkOutcome{result: res, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			return e.degraded(t, cl, out.err)
		}
		return e.finalize(t, out.result)
	case <-ctx.Done():
		return e.degraded(t, cl, ctx.Err())
	}
}

func (e *Engine) finalize(t CheckType, r Result) Result {
	r.CheckType = t
	if r.DenialCode != "" {
		d, ok := e.tables.DenialCode(r.DenialCode)
		if !ok {
			e.logger.Warn().Str("check_type", string(t)).Str("denial_code", r.DenialCode).Msg("dropping unknown denial code")
			r.DenialCode = ""
		} else if r.Remediation == "" {
			r.Remediation = d.Remediation
		}
	}
	return r
}

func (e *Engine) degraded(t CheckType, cl *claim.Claim, err error) Result {
	e.logger.Warn().
		Err(err).
		Str("claim_id", cl.ID.String()).
		Str("check_type", string(t)).
		Msg("check degraded")

	var md Metadata
	md.Set("degraded", Bool(true))
	md.Set("error", String(err.Error()))
	return Result{
		CheckType:   t,
		Status:      StatusWarning,
		Message:     fmt.Sprintf("%s could not be completed: %v", t, err),
		Remediation: "Re-run validation once the dependency recovers, or verify this item manually.",
		Metadata:    md,
	}
}
