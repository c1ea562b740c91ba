package scrub

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository stores the latest validation results of each claim.
type Repository interface {
	// Replace swaps the stored results of a claim for results. Concurrent
	// calls for the same claim are serialized; the last one wins.
	Replace(ctx context.Context, claimID uuid.UUID, results []Result, at time.Time) error
	// GetByClaim returns the stored results in check order. It returns no
	// results and a zero time when the claim was never validated.
	GetByClaim(ctx context.Context, claimID uuid.UUID) ([]Result, time.Time, error)
}

// TxRunner runs fn inside one database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}
