package consult

import (
	"context"
	"errors"
	"fmt"
	"strings"

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

const consultCols = `id, consult_id, client_token, patient_name, hospital_number, age, sex,
	ward, bed, admission_date, diagnosis, reason, reason_category, urgency,
	inviting_unit, consultant_in_charge, contact_person, contact_designation,
	contact_phone, alternate_phone, status, sync_status, notification_sent,
	created_by, accepted_by, accepted_at, acknowledged_by, acknowledged_at,
	reviewed_at, completed_at, created_at, updated_at`

func scanConsult(row pgx.Row) (*Consult, error) {
	var c Consult
	err := row.Scan(&c.ID, &c.ConsultID, &c.ClientToken, &c.PatientName, &c.HospitalNumber,
		&c.Age, &c.Sex, &c.Ward, &c.Bed, &c.AdmissionDate,
		&c.Diagnosis, &c.Reason, &c.ReasonCategory, &c.Urgency,
		&c.InvitingUnit, &c.ConsultantInCharge, &c.ContactPerson, &c.ContactDesignation,
		&c.ContactPhone, &c.AlternatePhone, &c.Status, &c.SyncStatus, &c.NotificationSent,
		&c.CreatedBy, &c.AcceptedBy, &c.AcceptedAt, &c.AcknowledgedBy, &c.AcknowledgedAt,
		&c.ReviewedAt, &c.CompletedAt, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("consult not found")
	}
	return &c, err
}

// NextSequence bumps the per-year counter row and returns the new value.
// The upsert keeps allocation race-free under concurrent submissions.
func (r *repoPG) NextSequence(ctx context.Context, year int) (int, error) {
	var seq int
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO consult_sequences (year, seq) VALUES ($1, 1)
		ON CONFLICT (year) DO UPDATE SET seq = consult_sequences.seq + 1
		RETURNING seq`, year).Scan(&seq)
	return seq, err
}

func (r *repoPG) Insert(ctx context.Context, c *Consult) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO consult_requests (id, consult_id, client_token, patient_name, hospital_number,
			age, sex, ward, bed, admission_date, diagnosis, reason, reason_category, urgency,
			inviting_unit, consultant_in_charge, contact_person, contact_designation,
			contact_phone, alternate_phone, status, sync_status, created_by, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25)`,
		c.ID, c.ConsultID, c.ClientToken, c.PatientName, c.HospitalNumber,
		c.Age, c.Sex, c.Ward, c.Bed, c.AdmissionDate, c.Diagnosis, c.Reason, c.ReasonCategory, c.Urgency,
		c.InvitingUnit, c.ConsultantInCharge, c.ContactPerson, c.ContactDesignation,
		c.ContactPhone, c.AlternatePhone, c.Status, c.SyncStatus, c.CreatedBy, c.CreatedAt, c.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		if strings.Contains(pgErr.ConstraintName, "client_token") {
			return ErrDuplicateToken
		}
		return apperr.Conflict("consult id already exists: %s", c.ConsultID)
	}
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Consult, error) {
	return scanConsult(r.conn(ctx).QueryRow(ctx,
		`SELECT `+consultCols+` FROM consult_requests WHERE id = $1`, id))
}

func (r *repoPG) GetByConsultID(ctx context.Context, consultID string) (*Consult, error) {
	return scanConsult(r.conn(ctx).QueryRow(ctx,
		`SELECT `+consultCols+` FROM consult_requests WHERE consult_id = $1`, consultID))
}

func (r *repoPG) GetByClientToken(ctx context.Context, token string) (*Consult, error) {
	return scanConsult(r.conn(ctx).QueryRow(ctx,
		`SELECT `+consultCols+` FROM consult_requests WHERE client_token = $1`, token))
}

func (r *repoPG) Update(ctx context.Context, c *Consult) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE consult_requests SET status=$2, accepted_by=$3, accepted_at=$4,
			acknowledged_by=$5, acknowledged_at=$6, reviewed_at=$7, completed_at=$8,
			notification_sent=$9, updated_at=NOW()
		WHERE id = $1`,
		c.ID, c.Status, c.AcceptedBy, c.AcceptedAt,
		c.AcknowledgedBy, c.AcknowledgedAt, c.ReviewedAt, c.CompletedAt,
		c.NotificationSent)
	return err
}

func (r *repoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*Consult, int, error) {
	where := ""
	args := []interface{}{}
	add := func(cond string, v interface{}) {
		args = append(args, v)
		if where == "" {
			where = " WHERE "
		} else {
			where += " AND "
		}
		where += fmt.Sprintf(cond, len(args))
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if f.Urgency != "" {
		add("urgency = $%d", f.Urgency)
	}
	if f.Ward != "" {
		add("ward ILIKE $%d", "%"+f.Ward+"%")
	}
	if f.Unit != "" {
		add("inviting_unit = $%d", f.Unit)
	}
	if f.Search != "" {
		add("(patient_name ILIKE $%[1]d OR hospital_number ILIKE $%[1]d OR consult_id ILIKE $%[1]d)",
			"%"+f.Search+"%")
	}
	if f.DateFrom != nil {
		add("created_at >= $%d", *f.DateFrom)
	}
	if f.DateTo != nil {
		add("created_at <= $%d", *f.DateTo)
	}
	if f.CreatedBy != nil {
		add("created_by = $%d", *f.CreatedBy)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM consult_requests`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dataArgs := append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx, fmt.Sprintf(
		`SELECT `+consultCols+` FROM consult_requests%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2), dataArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Consult
	for rows.Next() {
		c, err := scanConsult(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}
	return items, total, rows.Err()
}
