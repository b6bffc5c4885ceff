package review

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/psconsult/psconsult/internal/platform/apperr"
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

const reviewCols = `id, consult_ref, reviewer_id, reviewer_name, designation, findings, plan,
	wound_classification, wound_phase, wound_location, wound_length, wound_width, wound_depth,
	procedure_planned, procedure_date, procedure_details, follow_up_date, follow_up_notes,
	created_at, updated_at`

func scanReview(row pgx.Row) (*Review, error) {
	var rv Review
	err := row.Scan(&rv.ID, &rv.ConsultRef, &rv.ReviewerID, &rv.ReviewerName,
		&rv.Designation, &rv.Findings, &rv.Plan,
		&rv.WoundClassification, &rv.WoundPhase, &rv.WoundLocation,
		&rv.WoundLength, &rv.WoundWidth, &rv.WoundDepth,
		&rv.ProcedurePlanned, &rv.ProcedureDate, &rv.ProcedureDetails,
		&rv.FollowUpDate, &rv.FollowUpNotes, &rv.CreatedAt, &rv.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("review not found")
	}
	return &rv, err
}

func (r *repoPG) Insert(ctx context.Context, rv *Review) error {
	if rv.ID == uuid.Nil {
		rv.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO consult_reviews (id, consult_ref, reviewer_id, reviewer_name, designation,
			findings, plan, wound_classification, wound_phase, wound_location,
			wound_length, wound_width, wound_depth, procedure_planned, procedure_date,
			procedure_details, follow_up_date, follow_up_notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`,
		rv.ID, rv.ConsultRef, rv.ReviewerID, rv.ReviewerName, rv.Designation,
		rv.Findings, rv.Plan, rv.WoundClassification, rv.WoundPhase, rv.WoundLocation,
		rv.WoundLength, rv.WoundWidth, rv.WoundDepth, rv.ProcedurePlanned, rv.ProcedureDate,
		rv.ProcedureDetails, rv.FollowUpDate, rv.FollowUpNotes)
	return err
}

func (r *repoPG) Update(ctx context.Context, rv *Review) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE consult_reviews SET findings=$2, plan=$3, wound_classification=$4,
			wound_phase=$5, wound_location=$6, wound_length=$7, wound_width=$8,
			wound_depth=$9, procedure_planned=$10, procedure_date=$11,
			procedure_details=$12, follow_up_date=$13, follow_up_notes=$14,
			updated_at=NOW()
		WHERE id = $1`,
		rv.ID, rv.Findings, rv.Plan, rv.WoundClassification,
		rv.WoundPhase, rv.WoundLocation, rv.WoundLength, rv.WoundWidth,
		rv.WoundDepth, rv.ProcedurePlanned, rv.ProcedureDate,
		rv.ProcedureDetails, rv.FollowUpDate, rv.FollowUpNotes)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Review, error) {
	return scanReview(r.conn(ctx).QueryRow(ctx,
		`SELECT `+reviewCols+` FROM consult_reviews WHERE id = $1`, id))
}

func (r *repoPG) ListByConsult(ctx context.Context, consultRef uuid.UUID) ([]*Review, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+reviewCols+` FROM consult_reviews WHERE consult_ref = $1 ORDER BY created_at DESC`, consultRef)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Review
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, rv)
	}
	return items, rows.Err()
}
