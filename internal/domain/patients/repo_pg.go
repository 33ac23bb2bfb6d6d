package patients

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const patientCols = `id, full_name, email, phone, date_of_birth, gender,
	address, status, notes, created_at, updated_at`

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.FullName, &p.Email, &p.Phone, &p.DateOfBirth,
		&p.Gender, &p.Address, &p.Status, &p.Notes, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("patient not found")
		}
		return nil, fmt.Errorf("scanning patient: %w", err)
	}
	return &p, nil
}

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	query := `INSERT INTO patient (id, full_name, email, phone, date_of_birth, gender, address, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		p.ID, p.FullName, p.Email, p.Phone, p.DateOfBirth, p.Gender, p.Address, p.Status, p.Notes,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating patient: %w", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	query := fmt.Sprintf(`SELECT %s FROM patient WHERE id = $1`, patientCols)
	return scanPatient(r.pool.QueryRow(ctx, query, id))
}

func (r *repoPG) Search(ctx context.Context, params SearchParams) ([]*Patient, int, error) {
	where := "WHERE 1=1"
	args := []any{}
	argN := 1

	if params.Query != "" {
		where += fmt.Sprintf(" AND (full_name ILIKE $%d OR email ILIKE $%d)", argN, argN)
		args = append(args, "%"+params.Query+"%")
		argN++
	}
	if params.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", argN)
		args = append(args, params.Status)
		argN++
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT count(*) FROM patient %s`, where)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting patients: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM patient %s ORDER BY full_name LIMIT $%d OFFSET $%d`,
		patientCols, where, argN, argN+1)
	args = append(args, params.Limit, params.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("searching patients: %w", err)
	}
	defer rows.Close()

	var results []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		results = append(results, p)
	}
	return results, total, rows.Err()
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	query := `UPDATE patient SET
			full_name = $2, email = $3, phone = $4, date_of_birth = $5,
			gender = $6, address = $7, status = $8, notes = $9, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query,
		p.ID, p.FullName, p.Email, p.Phone, p.DateOfBirth,
		p.Gender, p.Address, p.Status, p.Notes,
	).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("patient not found")
		}
		return fmt.Errorf("updating patient: %w", err)
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM patient WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting patient: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("patient not found")
	}
	return nil
}
