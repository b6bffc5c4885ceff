package dashboard

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/psconsult/psconsult/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

// scope returns the WHERE clause and args restricting to one submitter, or
// no restriction when createdBy is nil. $1 is reserved for the scope arg.
func scope(createdBy *uuid.UUID) (string, []interface{}) {
	if createdBy == nil {
		return "TRUE", nil
	}
	return "created_by = $1", []interface{}{*createdBy}
}

func (r *repoPG) Stats(ctx context.Context, createdBy *uuid.UUID) (*Stats, error) {
	where, args := scope(createdBy)
	var s Stats
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'accepted'),
			COUNT(*) FILTER (WHERE status = 'on_the_way'),
			COUNT(*) FILTER (WHERE status = 'reviewed'),
			COUNT(*) FILTER (WHERE status = 'procedure_planned'),
			COUNT(*) FILTER (WHERE status = 'completed'),
			COUNT(*) FILTER (WHERE status = 'cancelled'),
			COUNT(*) FILTER (WHERE urgency = 'emergency'),
			COUNT(*) FILTER (WHERE created_at::date = CURRENT_DATE)
		FROM consult_requests WHERE `+where, args...).
		Scan(&s.Total, &s.Pending, &s.Accepted, &s.OnTheWay, &s.Reviewed,
			&s.ProcedurePlanned, &s.Completed, &s.Cancelled, &s.Emergency, &s.Today)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repoPG) countBy(ctx context.Context, column string, createdBy *uuid.UUID) ([]Bucket, error) {
	where, args := scope(createdBy)
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+column+`, COUNT(*) FROM consult_requests WHERE `+where+
			` GROUP BY `+column+` ORDER BY COUNT(*) DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Bucket
	for rows.Next() {
		var b Bucket
		if err := rows.Scan(&b.Label, &b.Count); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *repoPG) CountByWard(ctx context.Context, createdBy *uuid.UUID) ([]Bucket, error) {
	return r.countBy(ctx, "ward", createdBy)
}

func (r *repoPG) CountByUrgency(ctx context.Context, createdBy *uuid.UUID) ([]Bucket, error) {
	return r.countBy(ctx, "urgency", createdBy)
}
