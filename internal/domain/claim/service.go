package claim

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/claimscrub/scrubber/internal/platform/events"
)

// RoutingKeySubmitted is published after a claim is sent to the payer.
const RoutingKeySubmitted = "claim.submitted"

type Service struct {
	claims    Repository
	publisher events.Publisher
	logger    zerolog.Logger
	now       func() time.Time
}

func NewService(claims Repository, publisher events.Publisher, logger zerolog.Logger) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{claims: claims, publisher: publisher, logger: logger, now: time.Now}
}

// CreateClaim stores a new DRAFT claim. Missing line numbers are assigned in
// order; incomplete claims are accepted and reported by validation instead.
func (s *Service) CreateClaim(ctx context.Context, c *Claim) error {
	if c.Status == "" {
		c.Status = StatusDraft
	}
	if c.Status != StatusDraft {
		return fmt.Errorf("%w: new claims must be %s, got %s", ErrInvalid, StatusDraft, c.Status)
	}
	c.Score = nil
	c.ValidatedAt = nil
	c.SubmittedAt = nil
	Normalize(c)

	seen := make(map[int]bool, len(c.ServiceLines))
	next := 1
	for i := range c.ServiceLines {
		l := &c.ServiceLines[i]
		if l.LineNumber == 0 {
			for seen[next] {
				next++
			}
			l.LineNumber = next
		}
		if l.LineNumber < 0 {
			return fmt.Errorf("%w: line_number must be positive, got %d", ErrInvalid, l.LineNumber)
		}
		if seen[l.LineNumber] {
			return fmt.Errorf("%w: duplicate line_number %d", ErrInvalid, l.LineNumber)
		}
		seen[l.LineNumber] = true
		if len(l.Modifiers) > MaxModifiers {
			return fmt.Errorf("%w: line %d: at most %d modifiers allowed", ErrInvalid, l.LineNumber, MaxModifiers)
		}
	}
	sort.SliceStable(c.ServiceLines, func(i, j int) bool {
		return c.ServiceLines[i].LineNumber < c.ServiceLines[j].LineNumber
	})

	return s.claims.Create(ctx, c)
}

// Normalize trims identifiers and upper-cases codes so lookups are
// case-insensitive.
func Normalize(c *Claim) {
	c.PatientID = strings.TrimSpace(c.PatientID)
	c.PayerID = strings.ToUpper(strings.TrimSpace(c.PayerID))
	c.ProviderNPI = strings.TrimSpace(c.ProviderNPI)
	c.Specialty = strings.ToUpper(strings.TrimSpace(c.Specialty))
	c.PlaceOfService = strings.TrimSpace(c.PlaceOfService)
	c.PriorAuthNumber = strings.TrimSpace(c.PriorAuthNumber)
	for i := range c.ServiceLines {
		l := &c.ServiceLines[i]
		l.CPTCode = strings.ToUpper(strings.TrimSpace(l.CPTCode))
		l.DrugCode = strings.ToUpper(strings.TrimSpace(l.DrugCode))
		l.Modifiers = upperAll(l.Modifiers)
		l.ICDCodes = upperAll(l.ICDCodes)
	}
}

func upperAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.ToUpper(strings.TrimSpace(v)); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func (s *Service) GetClaim(ctx context.Context, id uuid.UUID) (*Claim, error) {
	return s.claims.GetByID(ctx, id)
}

func (s *Service) ListClaims(ctx context.Context, filter ListFilter, limit, offset int) ([]*Claim, int, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown status filter %s", ErrInvalid, filter.Status)
	}
	return s.claims.List(ctx, filter, limit, offset)
}

// SubmitClaim moves a VALIDATED claim to SUBMITTED.
func (s *Service) SubmitClaim(ctx context.Context, id uuid.UUID) (*Claim, error) {
	c, err := s.claims.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := Transition(c.Status, StatusSubmitted)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	c.Status = next
	c.SubmittedAt = &now
	if err := s.claims.UpdateStatus(ctx, c); err != nil {
		return nil, fmt.Errorf("update claim status: %w", err)
	}

	evt := map[string]interface{}{
		"claim_id":     c.ID,
		"payer_id":     c.PayerID,
		"total_charge": c.TotalCharge(),
		"submitted_at": now,
	}
	if err := s.publisher.Publish(ctx, RoutingKeySubmitted, evt); err != nil {
		s.logger.Warn().Err(err).Str("claim_id", c.ID.String()).Msg("failed to publish claim.submitted")
	}
	s.logger.Info().Str("claim_id", c.ID.String()).Str("payer_id", c.PayerID).Msg("claim submitted")
	return c, nil
}

// PayerResponse is the adjudication outcome reported by a payer.
type PayerResponse struct {
	Status Status
	// Codes are the denial or adjustment codes on the remittance.
	Codes []string
	Note  string
}

// RecordPayerResponse applies an adjudication outcome (ACCEPTED, REJECTED,
// DENIED, PAID) or sends a rejected/denied claim back to DRAFT for correction.
func (s *Service) RecordPayerResponse(ctx context.Context, id uuid.UUID, resp PayerResponse) (*Claim, error) {
	switch resp.Status {
	case StatusAccepted, StatusRejected, StatusDenied, StatusPaid, StatusDraft:
	default:
		return nil, fmt.Errorf("%w: response status %s", ErrInvalid, resp.Status)
	}
	c, err := s.claims.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := Transition(c.Status, resp.Status)
	if err != nil {
		return nil, err
	}
	c.Status = next
	c.ResponseCodes = upperAll(resp.Codes)
	c.ResponseNote = strings.TrimSpace(resp.Note)
	if next == StatusDraft {
		c.SubmittedAt = nil
	}
	if err := s.claims.UpdateStatus(ctx, c); err != nil {
		return nil, fmt.Errorf("update claim status: %w", err)
	}
	s.logger.Info().
		Str("claim_id", c.ID.String()).
		Str("status", string(next)).
		Strs("codes", c.ResponseCodes).
		Msg("payer response recorded")
	return c, nil
}
