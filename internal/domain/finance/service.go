package finance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var validPaymentStatuses = map[string]bool{
	PaymentPending: true,
	PaymentPaid:    true,
	PaymentOverdue: true,
}

var validPaymentTypes = map[string]bool{
	TypeIncoming: true,
	TypeOutgoing: true,
}

type Service struct {
	payments PaymentRepository
	ledger   LedgerRepository
}

func NewService(payments PaymentRepository, ledger LedgerRepository) *Service {
	return &Service{payments: payments, ledger: ledger}
}

func validatePayment(p *PaymentHistory) error {
	if p.Amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}
	if strings.TrimSpace(p.CustomerName) == "" {
		return fmt.Errorf("customer_name is required")
	}
	if !validPaymentTypes[p.PaymentType] {
		return fmt.Errorf("invalid payment_type: %s", p.PaymentType)
	}
	if p.Status != "" && !validPaymentStatuses[p.Status] {
		return fmt.Errorf("invalid status: %s", p.Status)
	}
	return nil
}

// CreatePayment records a money movement. A payment entered directly as paid
// derives its ledger entry immediately.
func (s *Service) CreatePayment(ctx context.Context, p *PaymentHistory) (*PaymentHistory, error) {
	if err := validatePayment(p); err != nil {
		return nil, err
	}
	if p.Status == "" {
		p.Status = PaymentPending
	}
	if p.Date.IsZero() {
		p.Date = time.Now()
	}
	p.ID = uuid.New()
	if err := s.payments.Create(ctx, p); err != nil {
		return nil, err
	}
	if p.Status == PaymentPaid {
		if err := s.derive(ctx, p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (s *Service) GetPayment(ctx context.Context, id uuid.UUID) (*PaymentHistory, error) {
	return s.payments.GetByID(ctx, id)
}

func (s *Service) ListPayments(ctx context.Context, status string, limit, offset int) ([]*PaymentHistory, int, error) {
	if status != "" && !validPaymentStatuses[status] {
		return nil, 0, fmt.Errorf("invalid status: %s", status)
	}
	return s.payments.List(ctx, status, limit, offset)
}

// UpdatePayment saves the payment and derives a ledger entry exactly once,
// on the transition into paid. Re-saving an already paid payment is a no-op
// for the ledger.
func (s *Service) UpdatePayment(ctx context.Context, id uuid.UUID, updated *PaymentHistory) (*PaymentHistory, error) {
	existing, err := s.payments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if updated.Status == "" {
		updated.Status = existing.Status
	}
	if updated.Date.IsZero() {
		updated.Date = existing.Date
	}
	if err := validatePayment(updated); err != nil {
		return nil, err
	}
	becamePaid := existing.Status != PaymentPaid && updated.Status == PaymentPaid
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	if err := s.payments.Update(ctx, updated); err != nil {
		return nil, err
	}
	if becamePaid {
		if err := s.derive(ctx, updated); err != nil {
			return nil, err
		}
	}
	return updated, nil
}

// DeletePayment removes the payment row. A paid payment leaves a reversal
// entry behind so the ledger keeps adding up.
func (s *Service) DeletePayment(ctx context.Context, id uuid.UUID) error {
	p, err := s.payments.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p.Status == PaymentPaid {
		amount := -p.Amount
		if p.PaymentType == TypeOutgoing {
			amount = p.Amount
		}
		desc := fmt.Sprintf("Reversal of deleted payment for %s", p.CustomerName)
		rec := &FinancialRecord{
			ID:          uuid.New(),
			PaymentID:   &p.ID,
			Type:        RecordReversal,
			Amount:      amount,
			Date:        time.Now(),
			Description: &desc,
		}
		if err := s.ledger.Create(ctx, rec); err != nil {
			return err
		}
	}
	return s.payments.Delete(ctx, id)
}

func (s *Service) ListRecords(ctx context.Context, params RecordSearch) ([]*FinancialRecord, int, error) {
	if params.Type != "" && params.Type != RecordRevenue && params.Type != RecordExpense && params.Type != RecordReversal {
		return nil, 0, fmt.Errorf("invalid record type %q", params.Type)
	}
	return s.ledger.List(ctx, params)
}

func (s *Service) Summary(ctx context.Context, from, to time.Time) (*Summary, error) {
	return s.ledger.Summarize(ctx, from, to)
}

// derive writes the ledger entry for a paid payment. Incoming money is
// revenue, outgoing is expense.
func (s *Service) derive(ctx context.Context, p *PaymentHistory) error {
	recType := RecordRevenue
	if p.PaymentType == TypeOutgoing {
		recType = RecordExpense
	}
	rec := &FinancialRecord{
		ID:          uuid.New(),
		PaymentID:   &p.ID,
		Type:        recType,
		Amount:      p.Amount,
		Date:        p.Date,
		Description: p.ServiceDescription,
	}
	return s.ledger.Create(ctx, rec)
}
