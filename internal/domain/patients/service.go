package patients

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var validStatuses = map[string]bool{
	StatusActive:   true,
	StatusInactive: true,
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, p *Patient) (*Patient, error) {
	if strings.TrimSpace(p.FullName) == "" {
		return nil, fmt.Errorf("full_name is required")
	}
	if p.Status == "" {
		p.Status = StatusActive
	}
	if !validStatuses[p.Status] {
		return nil, fmt.Errorf("invalid status: %s", p.Status)
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// RegisterFromSignup creates the patient record backing a self-service
// account, reusing the account id.
func (s *Service) RegisterFromSignup(ctx context.Context, userID uuid.UUID, fullName, email, phone string) error {
	p := &Patient{
		ID:       userID,
		FullName: fullName,
		Status:   StatusActive,
	}
	if email != "" {
		p.Email = &email
	}
	if phone != "" {
		p.Phone = &phone
	}
	return s.repo.Create(ctx, p)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Search(ctx context.Context, params SearchParams) ([]*Patient, int, error) {
	if params.Status != "" && !validStatuses[params.Status] {
		return nil, 0, fmt.Errorf("invalid status: %s", params.Status)
	}
	return s.repo.Search(ctx, params)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, updated *Patient) (*Patient, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(updated.FullName) == "" {
		return nil, fmt.Errorf("full_name is required")
	}
	if updated.Status == "" {
		updated.Status = existing.Status
	}
	if !validStatuses[updated.Status] {
		return nil, fmt.Errorf("invalid status: %s", updated.Status)
	}
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	if err := s.repo.Update(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// SetStatus flips a patient between active and inactive without touching the
// rest of the record.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, status string) (*Patient, error) {
	if !validStatuses[status] {
		return nil, fmt.Errorf("invalid status: %s", status)
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status == status {
		return p, nil
	}
	p.Status = status
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
