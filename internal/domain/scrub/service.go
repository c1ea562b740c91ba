package scrub

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/claimscrub/scrubber/internal/domain/claim"
	"github.com/claimscrub/scrubber/internal/platform/events"
)

// RoutingKeyValidated is published after every stored validation run.
const RoutingKeyValidated = "claim.validated"

// ValidatedEvent is the payload of a claim.validated message.
type ValidatedEvent struct {
	ClaimID      uuid.UUID    `json:"claim_id"`
	Score        int          `json:"score"`
	Status       claim.Status `json:"status"`
	FailedChecks []CheckType  `json:"failed_checks"`
	DenialCodes  []string     `json:"denial_codes"`
	ValidatedAt  time.Time    `json:"validated_at"`
}

type Service struct {
	claims    claim.Repository
	results   Repository
	tx        TxRunner
	engine    *Engine
	publisher events.Publisher
	logger    zerolog.Logger
}

func NewService(claims claim.Repository, results Repository, tx TxRunner, engine *Engine, publisher events.Publisher, logger zerolog.Logger) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{
		claims:    claims,
		results:   results,
		tx:        tx,
		engine:    engine,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *Service) Engine() *Engine { return s.engine }

// ValidateClaim loads a stored claim, runs the checks, and replaces the
// claim's stored results and score in one transaction. The claim status moves
// to DRAFT or VALIDATED only while the claim has not been submitted.
func (s *Service) ValidateClaim(ctx context.Context, id uuid.UUID, checks []CheckType) (*ClaimValidation, error) {
	if _, err := ResolveChecks(checks); err != nil {
		return nil, err
	}
	cl, err := s.claims.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	v, err := s.engine.Run(ctx, cl, checks)
	if err != nil {
		return nil, err
	}

	var stored claim.Status
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.results.Replace(ctx, id, v.Validations, v.ValidatedAt); err != nil {
			return err
		}
		var rerr error
		stored, rerr = s.claims.RecordValidation(ctx, id, v.Score, v.Status, v.ValidatedAt)
		return rerr
	})
	if err != nil {
		return nil, fmt.Errorf("store validation: %w", err)
	}

	s.logRun(v, time.Since(start), stored)
	s.publish(ctx, v)
	return v, nil
}

// ValidateDraft runs the checks against a claim that is not stored.
// Nothing is persisted or published.
func (s *Service) ValidateDraft(ctx context.Context, cl *claim.Claim, checks []CheckType) (*ClaimValidation, error) {
	start := time.Now()
	v, err := s.engine.Run(ctx, cl, checks)
	if err != nil {
		return nil, err
	}
	s.logRun(v, time.Since(start), "")
	return v, nil
}

// GetValidation returns the stored results of the last run. Score and status
// are recomputed from them.
func (s *Service) GetValidation(ctx context.Context, id uuid.UUID) (*ClaimValidation, error) {
	if _, err := s.claims.GetByID(ctx, id); err != nil {
		return nil, err
	}
	results, at, err := s.results.GetByClaim(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, ErrNotValidated
	}
	return newValidation(id, results, at), nil
}

func (s *Service) logRun(v *ClaimValidation, took time.Duration, stored claim.Status) {
	pass, warn, fail := v.Counts()
	evt := s.logger.Info().
		Str("claim_id", v.ClaimID.String()).
		Int("score", v.Score).
		Str("status", string(v.Status)).
		Int("passed", pass).
		Int("warnings", warn).
		Int("failed", fail).
		Dur("duration", took)
	if stored != "" && stored != v.Status {
		evt = evt.Str("claim_status", string(stored))
	}
	evt.Msg("claim validated")
}

func (s *Service) publish(ctx context.Context, v *ClaimValidation) {
	failed := v.FailedChecks()
	if failed == nil {
		failed = []CheckType{}
	}
	evt := ValidatedEvent{
		ClaimID:      v.ClaimID,
		Score:        v.Score,
		Status:       v.Status,
		FailedChecks: failed,
		DenialCodes:  v.DenialCodes,
		ValidatedAt:  v.ValidatedAt,
	}
	if err := s.publisher.Publish(ctx, RoutingKeyValidated, evt); err != nil {
		s.logger.Warn().Err(err).Str("claim_id", v.ClaimID.String()).Msg("publish claim.validated failed")
	}
}
