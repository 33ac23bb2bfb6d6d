package patients

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockRepo struct {
	patients map[uuid.UUID]*Patient
}

func newMockRepo() *mockRepo {
	return &mockRepo{patients: make(map[uuid.UUID]*Patient)}
}

func (m *mockRepo) Create(_ context.Context, p *Patient) error {
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	m.patients[p.ID] = p
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, fmt.Errorf("patient not found")
	}
	return p, nil
}

func (m *mockRepo) Search(_ context.Context, params SearchParams) ([]*Patient, int, error) {
	var results []*Patient
	for _, p := range m.patients {
		if params.Status != "" && p.Status != params.Status {
			continue
		}
		if params.Query != "" {
			matchName := strings.Contains(strings.ToLower(p.FullName), strings.ToLower(params.Query))
			matchEmail := p.Email != nil && strings.Contains(strings.ToLower(*p.Email), strings.ToLower(params.Query))
			if !matchName && !matchEmail {
				continue
			}
		}
		results = append(results, p)
	}
	return results, len(results), nil
}

func (m *mockRepo) Update(_ context.Context, p *Patient) error {
	if _, ok := m.patients[p.ID]; !ok {
		return fmt.Errorf("patient not found")
	}
	p.UpdatedAt = time.Now()
	m.patients[p.ID] = p
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.patients[id]; !ok {
		return fmt.Errorf("patient not found")
	}
	delete(m.patients, id)
	return nil
}

func TestCreatePatient(t *testing.T) {
	svc := NewService(newMockRepo())
	p, err := svc.Create(context.Background(), &Patient{FullName: "Jonah Reyes"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID == uuid.Nil {
		t.Error("expected an id assigned")
	}
	if p.Status != StatusActive {
		t.Errorf("expected default status %s, got %s", StatusActive, p.Status)
	}
}

func TestCreatePatient_NameRequired(t *testing.T) {
	svc := NewService(newMockRepo())
	if _, err := svc.Create(context.Background(), &Patient{FullName: "  "}); err == nil {
		t.Error("expected error for missing name")
	}
}

func TestCreatePatient_InvalidStatus(t *testing.T) {
	svc := NewService(newMockRepo())
	if _, err := svc.Create(context.Background(), &Patient{FullName: "A", Status: "RETIRED"}); err == nil {
		t.Error("expected error for invalid status")
	}
}

func TestRegisterFromSignup(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	userID := uuid.New()

	err := svc.RegisterFromSignup(context.Background(), userID, "Jonah Reyes", "jonah@example.test", "555-0101")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p, ok := repo.patients[userID]
	if !ok {
		t.Fatal("expected patient stored under the account id")
	}
	if p.Email == nil || *p.Email != "jonah@example.test" {
		t.Error("expected email carried over")
	}
}

func TestSearchPatients(t *testing.T) {
	svc := NewService(newMockRepo())
	svc.Create(context.Background(), &Patient{FullName: "Jonah Reyes"})
	svc.Create(context.Background(), &Patient{FullName: "Amina Hale"})

	results, total, err := svc.Search(context.Background(), SearchParams{Query: "jonah", Limit: 20})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || len(results) != 1 {
		t.Fatalf("expected 1 match, got %d", total)
	}
	if results[0].FullName != "Jonah Reyes" {
		t.Errorf("unexpected match %s", results[0].FullName)
	}
}

func TestSearchPatients_InvalidStatus(t *testing.T) {
	svc := NewService(newMockRepo())
	if _, _, err := svc.Search(context.Background(), SearchParams{Status: "GONE"}); err == nil {
		t.Error("expected error for invalid status filter")
	}
}

func TestSetStatus(t *testing.T) {
	svc := NewService(newMockRepo())
	p, _ := svc.Create(context.Background(), &Patient{FullName: "Jonah Reyes"})

	updated, err := svc.SetStatus(context.Background(), p.ID, StatusInactive)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != StatusInactive {
		t.Errorf("expected %s, got %s", StatusInactive, updated.Status)
	}

	// No-op when the status is unchanged.
	again, err := svc.SetStatus(context.Background(), p.ID, StatusInactive)
	if err != nil || again.Status != StatusInactive {
		t.Errorf("expected idempotent status set, got %v %v", again, err)
	}
}

func TestUpdatePatient_PreservesIdentity(t *testing.T) {
	svc := NewService(newMockRepo())
	p, _ := svc.Create(context.Background(), &Patient{FullName: "Jonah Reyes"})

	updated, err := svc.Update(context.Background(), p.ID, &Patient{FullName: "Jonah M. Reyes"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.ID != p.ID {
		t.Error("expected id preserved across update")
	}
	if updated.Status != StatusActive {
		t.Error("expected status carried over when omitted")
	}
}

func TestDeletePatient_NotFound(t *testing.T) {
	svc := NewService(newMockRepo())
	if err := svc.Delete(context.Background(), uuid.New()); err == nil {
		t.Error("expected error deleting unknown patient")
	}
}
