package records

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/curaflow/curaflow/internal/domain/notifications"
)

// Notifier delivers in-app notifications. Satisfied by notifications.Service.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, ntype, title, message string) (*notifications.Notification, error)
}

type Service struct {
	records       RecordRepository
	prescriptions PrescriptionRepository
	notifier      Notifier
}

func NewService(records RecordRepository, prescriptions PrescriptionRepository, notifier Notifier) *Service {
	return &Service{records: records, prescriptions: prescriptions, notifier: notifier}
}

// CreateRecord files a clinical note and tells the patient a new record is
// available.
func (s *Service) CreateRecord(ctx context.Context, r *MedicalRecord) (*MedicalRecord, error) {
	if strings.TrimSpace(r.Title) == "" {
		return nil, fmt.Errorf("title is required")
	}
	if r.PatientID == uuid.Nil {
		return nil, fmt.Errorf("patient_id is required")
	}
	if r.StaffID == uuid.Nil {
		return nil, fmt.Errorf("staff_id is required")
	}
	if r.RecordDate.IsZero() {
		r.RecordDate = time.Now()
	}
	r.ID = uuid.New()
	if err := s.records.Create(ctx, r); err != nil {
		return nil, err
	}
	s.notify(ctx, r.PatientID, notifications.TypeMedicalRecords,
		"New medical record", fmt.Sprintf("A record %q was added to your file.", r.Title))
	return r, nil
}

func (s *Service) GetRecord(ctx context.Context, id uuid.UUID) (*MedicalRecord, error) {
	return s.records.GetByID(ctx, id)
}

func (s *Service) ListRecords(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*MedicalRecord, int, error) {
	if patientID == uuid.Nil {
		return nil, 0, fmt.Errorf("patient_id is required")
	}
	return s.records.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) UpdateRecord(ctx context.Context, id uuid.UUID, updated *MedicalRecord) (*MedicalRecord, error) {
	existing, err := s.records.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(updated.Title) == "" {
		return nil, fmt.Errorf("title is required")
	}
	if updated.RecordDate.IsZero() {
		updated.RecordDate = existing.RecordDate
	}
	updated.ID = existing.ID
	updated.PatientID = existing.PatientID
	updated.StaffID = existing.StaffID
	updated.CreatedAt = existing.CreatedAt
	if err := s.records.Update(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) DeleteRecord(ctx context.Context, id uuid.UUID) error {
	return s.records.Delete(ctx, id)
}

// CreatePrescription issues a medication order and tells the patient.
func (s *Service) CreatePrescription(ctx context.Context, p *Prescription) (*Prescription, error) {
	if strings.TrimSpace(p.Medication) == "" {
		return nil, fmt.Errorf("medication is required")
	}
	if strings.TrimSpace(p.Dosage) == "" {
		return nil, fmt.Errorf("dosage is required")
	}
	if p.PatientID == uuid.Nil {
		return nil, fmt.Errorf("patient_id is required")
	}
	if p.StaffID == uuid.Nil {
		return nil, fmt.Errorf("staff_id is required")
	}
	if p.MedicalRecordID != nil {
		rec, err := s.records.GetByID(ctx, *p.MedicalRecordID)
		if err != nil {
			return nil, fmt.Errorf("unknown medical record")
		}
		if rec.PatientID != p.PatientID {
			return nil, fmt.Errorf("medical record belongs to a different patient")
		}
	}
	if p.IssuedAt.IsZero() {
		p.IssuedAt = time.Now()
	}
	p.ID = uuid.New()
	if err := s.prescriptions.Create(ctx, p); err != nil {
		return nil, err
	}
	s.notify(ctx, p.PatientID, notifications.TypePrescriptions,
		"New prescription", fmt.Sprintf("%s %s has been prescribed for you.", p.Medication, p.Dosage))
	return p, nil
}

func (s *Service) GetPrescription(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	return s.prescriptions.GetByID(ctx, id)
}

func (s *Service) ListPrescriptions(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Prescription, int, error) {
	if patientID == uuid.Nil {
		return nil, 0, fmt.Errorf("patient_id is required")
	}
	return s.prescriptions.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) UpdatePrescription(ctx context.Context, id uuid.UUID, updated *Prescription) (*Prescription, error) {
	existing, err := s.prescriptions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(updated.Medication) == "" {
		return nil, fmt.Errorf("medication is required")
	}
	if strings.TrimSpace(updated.Dosage) == "" {
		return nil, fmt.Errorf("dosage is required")
	}
	if updated.IssuedAt.IsZero() {
		updated.IssuedAt = existing.IssuedAt
	}
	updated.ID = existing.ID
	updated.PatientID = existing.PatientID
	updated.StaffID = existing.StaffID
	updated.CreatedAt = existing.CreatedAt
	if err := s.prescriptions.Update(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) DeletePrescription(ctx context.Context, id uuid.UUID) error {
	return s.prescriptions.Delete(ctx, id)
}

func (s *Service) notify(ctx context.Context, userID uuid.UUID, ntype, title, message string) {
	if s.notifier == nil {
		return
	}
	_, _ = s.notifier.Notify(ctx, userID, ntype, title, message)
}
