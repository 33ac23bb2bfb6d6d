package records

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/curaflow/curaflow/internal/domain/notifications"
)

type mockRecordRepo struct {
	records map[uuid.UUID]*MedicalRecord
}

func newMockRecordRepo() *mockRecordRepo {
	return &mockRecordRepo{records: make(map[uuid.UUID]*MedicalRecord)}
}

func (m *mockRecordRepo) Create(_ context.Context, r *MedicalRecord) error {
	r.CreatedAt = time.Now()
	r.UpdatedAt = r.CreatedAt
	m.records[r.ID] = r
	return nil
}

func (m *mockRecordRepo) GetByID(_ context.Context, id uuid.UUID) (*MedicalRecord, error) {
	r, ok := m.records[id]
	if !ok {
		return nil, fmt.Errorf("medical record not found")
	}
	return r, nil
}

func (m *mockRecordRepo) ListByPatient(_ context.Context, patientID uuid.UUID, _, _ int) ([]*MedicalRecord, int, error) {
	var results []*MedicalRecord
	for _, r := range m.records {
		if r.PatientID == patientID {
			results = append(results, r)
		}
	}
	return results, len(results), nil
}

func (m *mockRecordRepo) Update(_ context.Context, r *MedicalRecord) error {
	if _, ok := m.records[r.ID]; !ok {
		return fmt.Errorf("medical record not found")
	}
	r.UpdatedAt = time.Now()
	m.records[r.ID] = r
	return nil
}

func (m *mockRecordRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.records[id]; !ok {
		return fmt.Errorf("medical record not found")
	}
	delete(m.records, id)
	return nil
}

type mockPrescriptionRepo struct {
	prescriptions map[uuid.UUID]*Prescription
}

func newMockPrescriptionRepo() *mockPrescriptionRepo {
	return &mockPrescriptionRepo{prescriptions: make(map[uuid.UUID]*Prescription)}
}

func (m *mockPrescriptionRepo) Create(_ context.Context, p *Prescription) error {
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	m.prescriptions[p.ID] = p
	return nil
}

func (m *mockPrescriptionRepo) GetByID(_ context.Context, id uuid.UUID) (*Prescription, error) {
	p, ok := m.prescriptions[id]
	if !ok {
		return nil, fmt.Errorf("prescription not found")
	}
	return p, nil
}

func (m *mockPrescriptionRepo) ListByPatient(_ context.Context, patientID uuid.UUID, _, _ int) ([]*Prescription, int, error) {
	var results []*Prescription
	for _, p := range m.prescriptions {
		if p.PatientID == patientID {
			results = append(results, p)
		}
	}
	return results, len(results), nil
}

func (m *mockPrescriptionRepo) Update(_ context.Context, p *Prescription) error {
	if _, ok := m.prescriptions[p.ID]; !ok {
		return fmt.Errorf("prescription not found")
	}
	p.UpdatedAt = time.Now()
	m.prescriptions[p.ID] = p
	return nil
}

func (m *mockPrescriptionRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.prescriptions[id]; !ok {
		return fmt.Errorf("prescription not found")
	}
	delete(m.prescriptions, id)
	return nil
}

type sentNotification struct {
	userID uuid.UUID
	ntype  string
}

type mockNotifier struct {
	sent []sentNotification
}

func (m *mockNotifier) Notify(_ context.Context, userID uuid.UUID, ntype, title, message string) (*notifications.Notification, error) {
	m.sent = append(m.sent, sentNotification{userID: userID, ntype: ntype})
	return &notifications.Notification{ID: uuid.New(), UserID: userID, Type: ntype}, nil
}

func newTestService() (*Service, *mockNotifier) {
	notifier := &mockNotifier{}
	return NewService(newMockRecordRepo(), newMockPrescriptionRepo(), notifier), notifier
}

func TestCreateRecord(t *testing.T) {
	svc, notifier := newTestService()
	patientID := uuid.New()

	r, err := svc.CreateRecord(context.Background(), &MedicalRecord{
		PatientID: patientID,
		StaffID:   uuid.New(),
		Title:     "Initial consultation",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.RecordDate.IsZero() {
		t.Error("expected record date defaulted")
	}
	if len(notifier.sent) != 1 || notifier.sent[0].ntype != notifications.TypeMedicalRecords {
		t.Errorf("expected %s notification, got %+v", notifications.TypeMedicalRecords, notifier.sent)
	}
	if notifier.sent[0].userID != patientID {
		t.Error("expected notification addressed to the patient")
	}
}

func TestCreateRecord_TitleRequired(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.CreateRecord(context.Background(), &MedicalRecord{
		PatientID: uuid.New(),
		StaffID:   uuid.New(),
	})
	if err == nil {
		t.Error("expected error for missing title")
	}
}

func TestCreatePrescription(t *testing.T) {
	svc, notifier := newTestService()
	patientID := uuid.New()

	p, err := svc.CreatePrescription(context.Background(), &Prescription{
		PatientID:  patientID,
		StaffID:    uuid.New(),
		Medication: "Amoxicillin",
		Dosage:     "500mg",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.IssuedAt.IsZero() {
		t.Error("expected issued_at defaulted")
	}
	if len(notifier.sent) != 1 || notifier.sent[0].ntype != notifications.TypePrescriptions {
		t.Errorf("expected %s notification, got %+v", notifications.TypePrescriptions, notifier.sent)
	}
}

func TestCreatePrescription_DosageRequired(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.CreatePrescription(context.Background(), &Prescription{
		PatientID:  uuid.New(),
		StaffID:    uuid.New(),
		Medication: "Amoxicillin",
	})
	if err == nil {
		t.Error("expected error for missing dosage")
	}
}

func TestCreatePrescription_LinkedRecordMismatch(t *testing.T) {
	svc, _ := newTestService()
	r, _ := svc.CreateRecord(context.Background(), &MedicalRecord{
		PatientID: uuid.New(),
		StaffID:   uuid.New(),
		Title:     "Visit",
	})

	_, err := svc.CreatePrescription(context.Background(), &Prescription{
		PatientID:       uuid.New(),
		StaffID:         uuid.New(),
		MedicalRecordID: &r.ID,
		Medication:      "Amoxicillin",
		Dosage:          "500mg",
	})
	if err == nil {
		t.Error("expected error linking a record of another patient")
	}
}

func TestUpdateRecord_PreservesOwnership(t *testing.T) {
	svc, _ := newTestService()
	patientID := uuid.New()
	r, _ := svc.CreateRecord(context.Background(), &MedicalRecord{
		PatientID: patientID,
		StaffID:   uuid.New(),
		Title:     "Visit",
	})

	updated, err := svc.UpdateRecord(context.Background(), r.ID, &MedicalRecord{
		Title:     "Follow-up visit",
		PatientID: uuid.New(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.PatientID != patientID {
		t.Error("expected patient binding preserved across update")
	}
}

func TestListRecords_ScopedToPatient(t *testing.T) {
	svc, _ := newTestService()
	patientID := uuid.New()
	svc.CreateRecord(context.Background(), &MedicalRecord{PatientID: patientID, StaffID: uuid.New(), Title: "A"})
	svc.CreateRecord(context.Background(), &MedicalRecord{PatientID: uuid.New(), StaffID: uuid.New(), Title: "B"})

	results, total, err := svc.ListRecords(context.Background(), patientID, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || len(results) != 1 {
		t.Fatalf("expected 1 record, got %d", total)
	}
}

func TestDeletePrescription_NotFound(t *testing.T) {
	svc, _ := newTestService()
	if err := svc.DeletePrescription(context.Background(), uuid.New()); err == nil {
		t.Error("expected error deleting unknown prescription")
	}
}
