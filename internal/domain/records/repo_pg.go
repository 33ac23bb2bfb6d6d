package records

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const recordCols = `id, patient_id, staff_id, title, diagnosis, description,
	record_date, created_at, updated_at`

const prescriptionCols = `id, patient_id, staff_id, medical_record_id, medication,
	dosage, frequency, duration, instructions, issued_at, created_at, updated_at`

type recordRepoPG struct {
	pool *pgxpool.Pool
}

func NewRecordRepoPG(pool *pgxpool.Pool) RecordRepository {
	return &recordRepoPG{pool: pool}
}

func scanRecord(row pgx.Row) (*MedicalRecord, error) {
	var r MedicalRecord
	err := row.Scan(&r.ID, &r.PatientID, &r.StaffID, &r.Title, &r.Diagnosis,
		&r.Description, &r.RecordDate, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("medical record not found")
		}
		return nil, fmt.Errorf("scanning medical record: %w", err)
	}
	return &r, nil
}

func (r *recordRepoPG) Create(ctx context.Context, rec *MedicalRecord) error {
	query := `INSERT INTO medical_record (id, patient_id, staff_id, title, diagnosis, description, record_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		rec.ID, rec.PatientID, rec.StaffID, rec.Title, rec.Diagnosis, rec.Description, rec.RecordDate,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating medical record: %w", err)
	}
	return nil
}

func (r *recordRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*MedicalRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM medical_record WHERE id = $1`, recordCols)
	return scanRecord(r.pool.QueryRow(ctx, query, id))
}

func (r *recordRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*MedicalRecord, int, error) {
	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM medical_record WHERE patient_id = $1`, patientID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("counting medical records: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM medical_record WHERE patient_id = $1
		ORDER BY record_date DESC LIMIT $2 OFFSET $3`, recordCols)
	rows, err := r.pool.Query(ctx, query, patientID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("listing medical records: %w", err)
	}
	defer rows.Close()

	var results []*MedicalRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		results = append(results, rec)
	}
	return results, total, rows.Err()
}

func (r *recordRepoPG) Update(ctx context.Context, rec *MedicalRecord) error {
	query := `UPDATE medical_record SET
			title = $2, diagnosis = $3, description = $4, record_date = $5, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query,
		rec.ID, rec.Title, rec.Diagnosis, rec.Description, rec.RecordDate,
	).Scan(&rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("medical record not found")
		}
		return fmt.Errorf("updating medical record: %w", err)
	}
	return nil
}

func (r *recordRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM medical_record WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting medical record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("medical record not found")
	}
	return nil
}

type prescriptionRepoPG struct {
	pool *pgxpool.Pool
}

func NewPrescriptionRepoPG(pool *pgxpool.Pool) PrescriptionRepository {
	return &prescriptionRepoPG{pool: pool}
}

func scanPrescription(row pgx.Row) (*Prescription, error) {
	var p Prescription
	err := row.Scan(&p.ID, &p.PatientID, &p.StaffID, &p.MedicalRecordID, &p.Medication,
		&p.Dosage, &p.Frequency, &p.Duration, &p.Instructions, &p.IssuedAt,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("prescription not found")
		}
		return nil, fmt.Errorf("scanning prescription: %w", err)
	}
	return &p, nil
}

func (r *prescriptionRepoPG) Create(ctx context.Context, p *Prescription) error {
	query := `INSERT INTO prescription (id, patient_id, staff_id, medical_record_id, medication,
			dosage, frequency, duration, instructions, issued_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		p.ID, p.PatientID, p.StaffID, p.MedicalRecordID, p.Medication,
		p.Dosage, p.Frequency, p.Duration, p.Instructions, p.IssuedAt,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating prescription: %w", err)
	}
	return nil
}

func (r *prescriptionRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	query := fmt.Sprintf(`SELECT %s FROM prescription WHERE id = $1`, prescriptionCols)
	return scanPrescription(r.pool.QueryRow(ctx, query, id))
}

func (r *prescriptionRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Prescription, int, error) {
	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM prescription WHERE patient_id = $1`, patientID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("counting prescriptions: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM prescription WHERE patient_id = $1
		ORDER BY issued_at DESC LIMIT $2 OFFSET $3`, prescriptionCols)
	rows, err := r.pool.Query(ctx, query, patientID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("listing prescriptions: %w", err)
	}
	defer rows.Close()

	var results []*Prescription
	for rows.Next() {
		p, err := scanPrescription(rows)
		if err != nil {
			return nil, 0, err
		}
		results = append(results, p)
	}
	return results, total, rows.Err()
}

func (r *prescriptionRepoPG) Update(ctx context.Context, p *Prescription) error {
	query := `UPDATE prescription SET
			medical_record_id = $2, medication = $3, dosage = $4, frequency = $5,
			duration = $6, instructions = $7, issued_at = $8, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query,
		p.ID, p.MedicalRecordID, p.Medication, p.Dosage, p.Frequency,
		p.Duration, p.Instructions, p.IssuedAt,
	).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("prescription not found")
		}
		return fmt.Errorf("updating prescription: %w", err)
	}
	return nil
}

func (r *prescriptionRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM prescription WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting prescription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("prescription not found")
	}
	return nil
}
