package patients

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusActive   = "ACTIVE"
	StatusInactive = "INACTIVE"
)

// Patient is a clinical subject. Patients with a self-service account share
// the account's id; staff-registered patients have no account row.
type Patient struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	FullName    string     `db:"full_name" json:"full_name"`
	Email       *string    `db:"email" json:"email,omitempty"`
	Phone       *string    `db:"phone" json:"phone,omitempty"`
	DateOfBirth *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Gender      *string    `db:"gender" json:"gender,omitempty"`
	Address     *string    `db:"address" json:"address,omitempty"`
	Status      string     `db:"status" json:"status"`
	Notes       *string    `db:"notes" json:"notes,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// SearchParams narrows patient listings. Query matches name and email.
type SearchParams struct {
	Query  string
	Status string
	Limit  int
	Offset int
}
