package consult

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrDuplicateToken signals that a client token has already been used. The
// caller re-fetches the winning row and reports a duplicate acknowledgement.
var ErrDuplicateToken = errors.New("client token already used")

// Filter narrows consult listing queries. CreatedBy restricts the result to
// one submitter's consults and is set server-side for inviting units.
// Search matches patient name, hospital number, or consult id.
type Filter struct {
	Status    string
	Urgency   string
	Ward      string
	Unit      string
	Search    string
	DateFrom  *time.Time
	DateTo    *time.Time
	CreatedBy *uuid.UUID
}

// Repository persists consult requests.
type Repository interface {
	// NextSequence atomically allocates the next sequence number for a year.
	NextSequence(ctx context.Context, year int) (int, error)
	Insert(ctx context.Context, c *Consult) error
	GetByID(ctx context.Context, id uuid.UUID) (*Consult, error)
	GetByConsultID(ctx context.Context, consultID string) (*Consult, error)
	GetByClientToken(ctx context.Context, token string) (*Consult, error)
	Update(ctx context.Context, c *Consult) error
	List(ctx context.Context, f Filter, limit, offset int) ([]*Consult, int, error)
}
