package records

import (
	"time"

	"github.com/google/uuid"
)

// MedicalRecord is a clinical note tied to a patient visit.
type MedicalRecord struct {
	ID          uuid.UUID `db:"id" json:"id"`
	PatientID   uuid.UUID `db:"patient_id" json:"patient_id"`
	StaffID     uuid.UUID `db:"staff_id" json:"staff_id"`
	Title       string    `db:"title" json:"title"`
	Diagnosis   *string   `db:"diagnosis" json:"diagnosis,omitempty"`
	Description *string   `db:"description" json:"description,omitempty"`
	RecordDate  time.Time `db:"record_date" json:"record_date"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Prescription is an issued medication order, optionally linked to the
// medical record it came out of.
type Prescription struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	PatientID       uuid.UUID  `db:"patient_id" json:"patient_id"`
	StaffID         uuid.UUID  `db:"staff_id" json:"staff_id"`
	MedicalRecordID *uuid.UUID `db:"medical_record_id" json:"medical_record_id,omitempty"`
	Medication      string     `db:"medication" json:"medication"`
	Dosage          string     `db:"dosage" json:"dosage"`
	Frequency       *string    `db:"frequency" json:"frequency,omitempty"`
	Duration        *string    `db:"duration" json:"duration,omitempty"`
	Instructions    *string    `db:"instructions" json:"instructions,omitempty"`
	IssuedAt        time.Time  `db:"issued_at" json:"issued_at"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}
