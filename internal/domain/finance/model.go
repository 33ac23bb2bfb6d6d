package finance

import (
	"time"

	"github.com/google/uuid"
)

const (
	PaymentPending = "PENDING"
	PaymentPaid    = "PAID"
	PaymentOverdue = "OVERDUE"
)

const (
	TypeIncoming = "INCOMING"
	TypeOutgoing = "OUTGOING"
)

const (
	RecordRevenue  = "REVENUE"
	RecordExpense  = "EXPENSE"
	RecordReversal = "REVERSAL"
)

// PaymentHistory is a money movement, incoming or outgoing. Paying it
// derives a ledger entry; deleting a paid one derives a reversal instead of
// erasing history.
type PaymentHistory struct {
	ID                 uuid.UUID  `db:"id" json:"id"`
	PatientID          *uuid.UUID `db:"patient_id" json:"patient_id,omitempty"`
	Amount             float64    `db:"amount" json:"amount"`
	Date               time.Time  `db:"date" json:"date"`
	Status             string     `db:"status" json:"status"`
	PaymentMethod      *string    `db:"payment_method" json:"payment_method,omitempty"`
	PaymentType        string     `db:"payment_type" json:"payment_type"`
	CustomerName       string     `db:"customer_name" json:"customer_name"`
	ServiceDescription *string    `db:"service_description" json:"service_description,omitempty"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
}

// FinancialRecord is a denormalized ledger entry derived from payment
// transitions. Reversals carry the negated amount of the payment they undo.
type FinancialRecord struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	PaymentID   *uuid.UUID `db:"payment_id" json:"payment_id,omitempty"`
	Type        string     `db:"type" json:"type"`
	Amount      float64    `db:"amount" json:"amount"`
	Date        time.Time  `db:"date" json:"date"`
	Category    *string    `db:"category" json:"category,omitempty"`
	Description *string    `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// RecordSearch filters the ledger listing. Zero values mean no filter.
type RecordSearch struct {
	Type   string
	From   time.Time
	To     time.Time
	Limit  int
	Offset int
}

// Summary aggregates the ledger for reporting.
type Summary struct {
	Revenue  float64 `json:"revenue"`
	Expenses float64 `json:"expenses"`
	Net      float64 `json:"net"`
	Records  int     `json:"records"`
}
