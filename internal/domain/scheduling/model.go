package scheduling

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending   = "PENDING"
	StatusConfirmed = "CONFIRMED"
	StatusCancelled = "CANCELLED"
	StatusCompleted = "COMPLETED"
)

// Appointment is a proposed visit. Staff create appointments in PENDING and
// the patient confirms or declines; staff close out the visit afterwards.
type Appointment struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
	StaffID   uuid.UUID `db:"staff_id" json:"staff_id"`
	Title     string    `db:"title" json:"title"`
	Reason    *string   `db:"reason" json:"reason,omitempty"`
	StartsAt  time.Time `db:"starts_at" json:"starts_at"`
	EndsAt    time.Time `db:"ends_at" json:"ends_at"`
	Status    string    `db:"status" json:"status"`
	Notes     *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type SearchParams struct {
	PatientID uuid.UUID
	StaffID   uuid.UUID
	Status    string
	From      time.Time
	To        time.Time
	Limit     int
	Offset    int
}

// RespondInput carries a patient's answer to a pending appointment.
type RespondInput struct {
	Accept bool    `json:"accept"`
	Note   *string `json:"note,omitempty"`
}
