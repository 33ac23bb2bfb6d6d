package inventory

import (
	"time"

	"github.com/google/uuid"
)

const (
	OrderPending   = "PENDING"
	OrderCompleted = "COMPLETED"
	OrderRejected  = "REJECTED"
)

// StockItem is an inventory SKU. Quantity at or below MinimumQuantity marks
// the item low and triggers the reorder workflow.
type StockItem struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	Name            string     `db:"name" json:"name"`
	Description     *string    `db:"description" json:"description,omitempty"`
	Quantity        int        `db:"quantity" json:"quantity"`
	MinimumQuantity int        `db:"minimum_quantity" json:"minimum_quantity"`
	ReorderQuantity int        `db:"reorder_quantity" json:"reorder_quantity"`
	PricePerUnit    float64    `db:"price_per_unit" json:"price_per_unit"`
	VendorID        *uuid.UUID `db:"vendor_id" json:"vendor_id,omitempty"`
	CreatedBy       uuid.UUID  `db:"created_by" json:"created_by"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// LowStock reports whether the item sits at or below its threshold.
func (s *StockItem) LowStock() bool {
	return s.Quantity <= s.MinimumQuantity
}

// Vendor is an external supplier contacted by email for reorders.
type Vendor struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`
	Address   *string   `db:"address" json:"address,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// VendorMetrics summarizes a vendor's order outcomes.
type VendorMetrics struct {
	VendorID  uuid.UUID `json:"vendor_id"`
	Total     int       `json:"total"`
	Pending   int       `json:"pending"`
	Completed int       `json:"completed"`
	Rejected  int       `json:"rejected"`
}

// StockOrder is a reorder request sent to a vendor. The vendor answers
// through the token-less confirm/reject links in the email.
type StockOrder struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	ItemID          uuid.UUID  `db:"item_id" json:"item_id"`
	VendorID        uuid.UUID  `db:"vendor_id" json:"vendor_id"`
	RequestedBy     uuid.UUID  `db:"requested_by" json:"requested_by"`
	Quantity        int        `db:"quantity" json:"quantity"`
	Status          string     `db:"status" json:"status"`
	RejectionReason *string    `db:"rejection_reason" json:"rejection_reason,omitempty"`
	RespondedAt     *time.Time `db:"responded_at" json:"responded_at,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// BulkResult reports one order id's outcome inside a bulk confirm/reject.
type BulkResult struct {
	ID    string `json:"id"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// BulkOutcome aggregates a bulk operation. Each id is processed
// independently; one failure never blocks the rest.
type BulkOutcome struct {
	Processed int          `json:"processed"`
	Failed    int          `json:"failed"`
	Results   []BulkResult `json:"results"`
}
