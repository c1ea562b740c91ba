package claim

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	// Create inserts the claim and its service lines, assigning IDs.
	Create(ctx context.Context, c *Claim) error
	// GetByID loads the claim with its service lines ordered by line number.
	GetByID(ctx context.Context, id uuid.UUID) (*Claim, error)
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Claim, int, error)
	// UpdateStatus persists status, submission and payer response fields.
	UpdateStatus(ctx context.Context, c *Claim) error
	// RecordValidation stores score and validation time. The status moves to
	// status only while the stored claim is still revalidatable. It returns
	// the claim's resulting status.
	RecordValidation(ctx context.Context, id uuid.UUID, score int, status Status, at time.Time) (Status, error)
}
