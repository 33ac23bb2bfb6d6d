package finance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const paymentCols = `id, patient_id, amount, date, status, payment_method,
	payment_type, customer_name, service_description, created_at, updated_at`

const ledgerCols = `id, payment_id, type, amount, date, category, description, created_at`

type paymentRepoPG struct {
	pool *pgxpool.Pool
}

func NewPaymentRepoPG(pool *pgxpool.Pool) PaymentRepository {
	return &paymentRepoPG{pool: pool}
}

func scanPayment(row pgx.Row) (*PaymentHistory, error) {
	var p PaymentHistory
	err := row.Scan(&p.ID, &p.PatientID, &p.Amount, &p.Date, &p.Status,
		&p.PaymentMethod, &p.PaymentType, &p.CustomerName, &p.ServiceDescription,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("payment not found")
		}
		return nil, fmt.Errorf("scanning payment: %w", err)
	}
	return &p, nil
}

func (r *paymentRepoPG) Create(ctx context.Context, p *PaymentHistory) error {
	query := `INSERT INTO payment_history (id, patient_id, amount, date, status,
			payment_method, payment_type, customer_name, service_description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		p.ID, p.PatientID, p.Amount, p.Date, p.Status,
		p.PaymentMethod, p.PaymentType, p.CustomerName, p.ServiceDescription,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating payment: %w", err)
	}
	return nil
}

func (r *paymentRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*PaymentHistory, error) {
	query := fmt.Sprintf(`SELECT %s FROM payment_history WHERE id = $1`, paymentCols)
	return scanPayment(r.pool.QueryRow(ctx, query, id))
}

func (r *paymentRepoPG) List(ctx context.Context, status string, limit, offset int) ([]*PaymentHistory, int, error) {
	where := "WHERE 1=1"
	args := []any{}
	argN := 1
	if status != "" {
		where += fmt.Sprintf(" AND status = $%d", argN)
		args = append(args, status)
		argN++
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT count(*) FROM payment_history %s`, where)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting payments: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM payment_history %s ORDER BY date DESC LIMIT $%d OFFSET $%d`,
		paymentCols, where, argN, argN+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing payments: %w", err)
	}
	defer rows.Close()

	var results []*PaymentHistory
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, 0, err
		}
		results = append(results, p)
	}
	return results, total, rows.Err()
}

func (r *paymentRepoPG) Update(ctx context.Context, p *PaymentHistory) error {
	query := `UPDATE payment_history SET
			patient_id = $2, amount = $3, date = $4, status = $5, payment_method = $6,
			payment_type = $7, customer_name = $8, service_description = $9, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query,
		p.ID, p.PatientID, p.Amount, p.Date, p.Status, p.PaymentMethod,
		p.PaymentType, p.CustomerName, p.ServiceDescription,
	).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("payment not found")
		}
		return fmt.Errorf("updating payment: %w", err)
	}
	return nil
}

func (r *paymentRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM payment_history WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting payment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("payment not found")
	}
	return nil
}

type ledgerRepoPG struct {
	pool *pgxpool.Pool
}

func NewLedgerRepoPG(pool *pgxpool.Pool) LedgerRepository {
	return &ledgerRepoPG{pool: pool}
}

func (r *ledgerRepoPG) Create(ctx context.Context, rec *FinancialRecord) error {
	query := `INSERT INTO financial_record (id, payment_id, type, amount, date, category, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`
	err := r.pool.QueryRow(ctx, query,
		rec.ID, rec.PaymentID, rec.Type, rec.Amount, rec.Date, rec.Category, rec.Description,
	).Scan(&rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating financial record: %w", err)
	}
	return nil
}

func (r *ledgerRepoPG) List(ctx context.Context, params RecordSearch) ([]*FinancialRecord, int, error) {
	where := "WHERE 1=1"
	args := []interface{}{}
	argPos := 1

	if params.Type != "" {
		where += fmt.Sprintf(" AND type = $%d", argPos)
		args = append(args, params.Type)
		argPos++
	}
	if !params.From.IsZero() {
		where += fmt.Sprintf(" AND date >= $%d", argPos)
		args = append(args, params.From)
		argPos++
	}
	if !params.To.IsZero() {
		where += fmt.Sprintf(" AND date <= $%d", argPos)
		args = append(args, params.To)
		argPos++
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT count(*) FROM financial_record %s`, where)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting financial records: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM financial_record %s ORDER BY date DESC LIMIT $%d OFFSET $%d`,
		ledgerCols, where, argPos, argPos+1)
	args = append(args, params.Limit, params.Offset)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing financial records: %w", err)
	}
	defer rows.Close()

	var results []*FinancialRecord
	for rows.Next() {
		var rec FinancialRecord
		err := rows.Scan(&rec.ID, &rec.PaymentID, &rec.Type, &rec.Amount, &rec.Date,
			&rec.Category, &rec.Description, &rec.CreatedAt)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning financial record: %w", err)
		}
		results = append(results, &rec)
	}
	return results, total, rows.Err()
}

func (r *ledgerRepoPG) Summarize(ctx context.Context, from, to time.Time) (*Summary, error) {
	where := "WHERE 1=1"
	args := []interface{}{}
	argPos := 1
	if !from.IsZero() {
		where += fmt.Sprintf(" AND date >= $%d", argPos)
		args = append(args, from)
		argPos++
	}
	if !to.IsZero() {
		where += fmt.Sprintf(" AND date <= $%d", argPos)
		args = append(args, to)
	}

	query := fmt.Sprintf(`SELECT
			coalesce(sum(amount) FILTER (WHERE type = 'REVENUE'), 0),
			coalesce(sum(amount) FILTER (WHERE type = 'EXPENSE'), 0),
			coalesce(sum(amount) FILTER (WHERE type = 'REVERSAL'), 0),
			count(*)
		FROM financial_record %s`, where)
	var revenue, expenses, reversals float64
	var records int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&revenue, &expenses, &reversals, &records); err != nil {
		return nil, fmt.Errorf("summarizing ledger: %w", err)
	}
	// Reversal amounts are already signed against the entries they undo.
	return &Summary{
		Revenue:  revenue,
		Expenses: expenses,
		Net:      revenue - expenses + reversals,
		Records:  records,
	}, nil
}
