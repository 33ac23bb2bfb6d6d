package scheduling

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/curaflow/curaflow/internal/domain/notifications"
	"github.com/curaflow/curaflow/internal/domain/patients"
)

var validStatuses = map[string]bool{
	StatusPending:   true,
	StatusConfirmed: true,
	StatusCancelled: true,
	StatusCompleted: true,
}

// Notifier delivers in-app notifications. Satisfied by notifications.Service.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, ntype, title, message string) (*notifications.Notification, error)
}

// PatientDirectory resolves patients. Satisfied by patients.Service.
type PatientDirectory interface {
	Get(ctx context.Context, id uuid.UUID) (*patients.Patient, error)
}

type Service struct {
	repo     Repository
	notifier Notifier
	dir      PatientDirectory
}

func NewService(repo Repository, notifier Notifier, dir PatientDirectory) *Service {
	return &Service{repo: repo, notifier: notifier, dir: dir}
}

// Create books a pending appointment and notifies the patient so they can
// accept or decline it.
func (s *Service) Create(ctx context.Context, a *Appointment) (*Appointment, error) {
	if strings.TrimSpace(a.Title) == "" {
		return nil, fmt.Errorf("title is required")
	}
	if a.PatientID == uuid.Nil {
		return nil, fmt.Errorf("patient_id is required")
	}
	if a.StaffID == uuid.Nil {
		return nil, fmt.Errorf("staff_id is required")
	}
	if a.StartsAt.IsZero() || a.EndsAt.IsZero() {
		return nil, fmt.Errorf("starts_at and ends_at are required")
	}
	if !a.EndsAt.After(a.StartsAt) {
		return nil, fmt.Errorf("ends_at must be after starts_at")
	}
	if s.dir != nil {
		p, err := s.dir.Get(ctx, a.PatientID)
		if err != nil {
			return nil, fmt.Errorf("unknown patient")
		}
		if p.Status == patients.StatusInactive {
			return nil, fmt.Errorf("patient is inactive")
		}
	}

	a.ID = uuid.New()
	a.Status = StatusPending
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}

	s.notify(ctx, a.PatientID, notifications.TypeAppointmentRequest,
		"New appointment request",
		fmt.Sprintf("%s on %s. Please confirm or decline.", a.Title, a.StartsAt.Format("Jan 2 at 15:04")))
	return a, nil
}

// Respond records the patient's answer. Accepting confirms the appointment,
// declining cancels it, and either way the booking staff member is notified.
// Only pending appointments can be answered, and only by their own patient.
func (s *Service) Respond(ctx context.Context, id, patientID uuid.UUID, in RespondInput) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.PatientID != patientID {
		return nil, fmt.Errorf("appointment does not belong to patient")
	}
	if a.Status != StatusPending {
		return nil, fmt.Errorf("appointment is %s, only pending appointments can be answered", a.Status)
	}

	verb := "declined"
	a.Status = StatusCancelled
	if in.Accept {
		verb = "accepted"
		a.Status = StatusConfirmed
	}
	if in.Note != nil && *in.Note != "" {
		a.Notes = in.Note
	}
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}

	s.notify(ctx, a.StaffID, notifications.TypeAppointmentResponse,
		"Appointment "+verb,
		fmt.Sprintf("The patient %s %q on %s.", verb, a.Title, a.StartsAt.Format("Jan 2 at 15:04")))
	return a, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Search(ctx context.Context, params SearchParams) ([]*Appointment, int, error) {
	if params.Status != "" && !validStatuses[params.Status] {
		return nil, 0, fmt.Errorf("invalid status: %s", params.Status)
	}
	return s.repo.Search(ctx, params)
}

// SetStatus moves an appointment through the staff-side transitions.
// Completed and cancelled are terminal.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, status string) (*Appointment, error) {
	if !validStatuses[status] {
		return nil, fmt.Errorf("invalid status: %s", status)
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status == StatusCompleted || a.Status == StatusCancelled {
		return nil, fmt.Errorf("appointment is already %s", a.Status)
	}
	if status == StatusCompleted && a.Status != StatusConfirmed {
		return nil, fmt.Errorf("only confirmed appointments can be completed")
	}
	a.Status = status
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, updated *Appointment) (*Appointment, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(updated.Title) == "" {
		return nil, fmt.Errorf("title is required")
	}
	if !updated.EndsAt.After(updated.StartsAt) {
		return nil, fmt.Errorf("ends_at must be after starts_at")
	}
	updated.ID = existing.ID
	updated.PatientID = existing.PatientID
	updated.StaffID = existing.StaffID
	updated.Status = existing.Status
	updated.CreatedAt = existing.CreatedAt
	if err := s.repo.Update(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// notify is best effort. A failed notification never fails the booking.
func (s *Service) notify(ctx context.Context, userID uuid.UUID, ntype, title, message string) {
	if s.notifier == nil {
		return
	}
	_, _ = s.notifier.Notify(ctx, userID, ntype, title, message)
}
