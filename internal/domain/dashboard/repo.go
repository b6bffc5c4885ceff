package dashboard

import (
	"context"

	"github.com/google/uuid"
)

// Repository runs the aggregate queries behind the dashboard. A non-nil
// createdBy restricts every aggregate to one submitter's consults.
type Repository interface {
	Stats(ctx context.Context, createdBy *uuid.UUID) (*Stats, error)
	CountByWard(ctx context.Context, createdBy *uuid.UUID) ([]Bucket, error)
	CountByUrgency(ctx context.Context, createdBy *uuid.UUID) ([]Bucket, error)
}
