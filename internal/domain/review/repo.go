package review

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists consult reviews.
type Repository interface {
	Insert(ctx context.Context, r *Review) error
	GetByID(ctx context.Context, id uuid.UUID) (*Review, error)
	Update(ctx context.Context, r *Review) error
	ListByConsult(ctx context.Context, consultRef uuid.UUID) ([]*Review, error)
}
