package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type PaymentRepository interface {
	Create(ctx context.Context, p *PaymentHistory) error
	GetByID(ctx context.Context, id uuid.UUID) (*PaymentHistory, error)
	List(ctx context.Context, status string, limit, offset int) ([]*PaymentHistory, int, error)
	Update(ctx context.Context, p *PaymentHistory) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type LedgerRepository interface {
	Create(ctx context.Context, r *FinancialRecord) error
	List(ctx context.Context, params RecordSearch) ([]*FinancialRecord, int, error)
	Summarize(ctx context.Context, from, to time.Time) (*Summary, error)
}
