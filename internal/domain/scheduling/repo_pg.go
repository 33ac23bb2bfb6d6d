package scheduling

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const apptCols = `id, patient_id, staff_id, title, reason, starts_at, ends_at,
	status, notes, created_at, updated_at`

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.PatientID, &a.StaffID, &a.Title, &a.Reason,
		&a.StartsAt, &a.EndsAt, &a.Status, &a.Notes, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("appointment not found")
		}
		return nil, fmt.Errorf("scanning appointment: %w", err)
	}
	return &a, nil
}

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	query := `INSERT INTO appointment (id, patient_id, staff_id, title, reason, starts_at, ends_at, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		a.ID, a.PatientID, a.StaffID, a.Title, a.Reason, a.StartsAt, a.EndsAt, a.Status, a.Notes,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating appointment: %w", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	query := fmt.Sprintf(`SELECT %s FROM appointment WHERE id = $1`, apptCols)
	return scanAppointment(r.pool.QueryRow(ctx, query, id))
}

func (r *repoPG) Search(ctx context.Context, params SearchParams) ([]*Appointment, int, error) {
	where := "WHERE 1=1"
	args := []any{}
	argN := 1

	if params.PatientID != uuid.Nil {
		where += fmt.Sprintf(" AND patient_id = $%d", argN)
		args = append(args, params.PatientID)
		argN++
	}
	if params.StaffID != uuid.Nil {
		where += fmt.Sprintf(" AND staff_id = $%d", argN)
		args = append(args, params.StaffID)
		argN++
	}
	if params.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", argN)
		args = append(args, params.Status)
		argN++
	}
	if !params.From.IsZero() {
		where += fmt.Sprintf(" AND starts_at >= $%d", argN)
		args = append(args, params.From)
		argN++
	}
	if !params.To.IsZero() {
		where += fmt.Sprintf(" AND starts_at < $%d", argN)
		args = append(args, params.To)
		argN++
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT count(*) FROM appointment %s`, where)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting appointments: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM appointment %s ORDER BY starts_at LIMIT $%d OFFSET $%d`,
		apptCols, where, argN, argN+1)
	args = append(args, params.Limit, params.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("searching appointments: %w", err)
	}
	defer rows.Close()

	var results []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, 0, err
		}
		results = append(results, a)
	}
	return results, total, rows.Err()
}

func (r *repoPG) Update(ctx context.Context, a *Appointment) error {
	query := `UPDATE appointment SET
			title = $2, reason = $3, starts_at = $4, ends_at = $5,
			status = $6, notes = $7, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query,
		a.ID, a.Title, a.Reason, a.StartsAt, a.EndsAt, a.Status, a.Notes,
	).Scan(&a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("appointment not found")
		}
		return fmt.Errorf("updating appointment: %w", err)
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM appointment WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting appointment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("appointment not found")
	}
	return nil
}
