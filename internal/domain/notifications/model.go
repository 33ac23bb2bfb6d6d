package notifications

import (
	"time"

	"github.com/google/uuid"
)

// Notification types surfaced on the dashboard bell.
const (
	TypeAppointmentRequest  = "APPOINTMENT_REQUEST"
	TypeAppointmentResponse = "APPOINTMENT_RESPONSE"
	TypeStockLow            = "STOCK_LOW"
	TypeMedicalRecords      = "MEDICAL_RECORDS"
	TypePrescriptions       = "PRESCRIPTIONS"
	TypeGeneral             = "GENERAL"
)

// Notification maps to the notification table.
type Notification struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Title     string    `db:"title" json:"title"`
	Message   string    `db:"message" json:"message"`
	Type      string    `db:"type" json:"type"`
	Read      bool      `db:"read" json:"read"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
