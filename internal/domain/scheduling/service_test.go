package scheduling

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/curaflow/curaflow/internal/domain/notifications"
	"github.com/curaflow/curaflow/internal/domain/patients"
)

type mockRepo struct {
	appts map[uuid.UUID]*Appointment
}

func newMockRepo() *mockRepo {
	return &mockRepo{appts: make(map[uuid.UUID]*Appointment)}
}

func (m *mockRepo) Create(_ context.Context, a *Appointment) error {
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	m.appts[a.ID] = a
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	a, ok := m.appts[id]
	if !ok {
		return nil, fmt.Errorf("appointment not found")
	}
	return a, nil
}

func (m *mockRepo) Search(_ context.Context, params SearchParams) ([]*Appointment, int, error) {
	var results []*Appointment
	for _, a := range m.appts {
		if params.PatientID != uuid.Nil && a.PatientID != params.PatientID {
			continue
		}
		if params.StaffID != uuid.Nil && a.StaffID != params.StaffID {
			continue
		}
		if params.Status != "" && a.Status != params.Status {
			continue
		}
		results = append(results, a)
	}
	return results, len(results), nil
}

func (m *mockRepo) Update(_ context.Context, a *Appointment) error {
	if _, ok := m.appts[a.ID]; !ok {
		return fmt.Errorf("appointment not found")
	}
	a.UpdatedAt = time.Now()
	m.appts[a.ID] = a
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.appts[id]; !ok {
		return fmt.Errorf("appointment not found")
	}
	delete(m.appts, id)
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

type mockDirectory struct {
	patients map[uuid.UUID]*patients.Patient
}

func (m *mockDirectory) Get(_ context.Context, id uuid.UUID) (*patients.Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, fmt.Errorf("patient not found")
	}
	return p, nil
}

func newTestService() (*Service, *mockNotifier, uuid.UUID) {
	patientID := uuid.New()
	dir := &mockDirectory{patients: map[uuid.UUID]*patients.Patient{
		patientID: {ID: patientID, FullName: "Jonah Reyes", Status: patients.StatusActive},
	}}
	notifier := &mockNotifier{}
	return NewService(newMockRepo(), notifier, dir), notifier, patientID
}

func validAppointment(patientID uuid.UUID) *Appointment {
	start := time.Now().Add(24 * time.Hour)
	return &Appointment{
		PatientID: patientID,
		StaffID:   uuid.New(),
		Title:     "Annual checkup",
		StartsAt:  start,
		EndsAt:    start.Add(30 * time.Minute),
	}
}

func TestCreateAppointment(t *testing.T) {
	svc, notifier, patientID := newTestService()

	a, err := svc.Create(context.Background(), validAppointment(patientID))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Status != StatusPending {
		t.Errorf("expected status %s, got %s", StatusPending, a.Status)
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifier.sent))
	}
	if notifier.sent[0].userID != patientID || notifier.sent[0].ntype != notifications.TypeAppointmentRequest {
		t.Errorf("expected %s notification to patient, got %+v", notifications.TypeAppointmentRequest, notifier.sent[0])
	}
}

func TestCreateAppointment_EndBeforeStart(t *testing.T) {
	svc, _, patientID := newTestService()
	a := validAppointment(patientID)
	a.EndsAt = a.StartsAt.Add(-time.Minute)
	if _, err := svc.Create(context.Background(), a); err == nil {
		t.Error("expected error when ends_at precedes starts_at")
	}
}

func TestCreateAppointment_UnknownPatient(t *testing.T) {
	svc, _, _ := newTestService()
	if _, err := svc.Create(context.Background(), validAppointment(uuid.New())); err == nil {
		t.Error("expected error for unknown patient")
	}
}

func TestRespond_Accept(t *testing.T) {
	svc, notifier, patientID := newTestService()
	a, _ := svc.Create(context.Background(), validAppointment(patientID))

	answered, err := svc.Respond(context.Background(), a.ID, patientID, RespondInput{Accept: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answered.Status != StatusConfirmed {
		t.Errorf("expected status %s, got %s", StatusConfirmed, answered.Status)
	}
	last := notifier.sent[len(notifier.sent)-1]
	if last.userID != a.StaffID || last.ntype != notifications.TypeAppointmentResponse {
		t.Errorf("expected %s notification to staff, got %+v", notifications.TypeAppointmentResponse, last)
	}
}

func TestRespond_Decline(t *testing.T) {
	svc, _, patientID := newTestService()
	a, _ := svc.Create(context.Background(), validAppointment(patientID))

	answered, err := svc.Respond(context.Background(), a.ID, patientID, RespondInput{Accept: false})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answered.Status != StatusCancelled {
		t.Errorf("expected status %s, got %s", StatusCancelled, answered.Status)
	}
}

func TestRespond_WrongPatient(t *testing.T) {
	svc, _, patientID := newTestService()
	a, _ := svc.Create(context.Background(), validAppointment(patientID))

	if _, err := svc.Respond(context.Background(), a.ID, uuid.New(), RespondInput{Accept: true}); err == nil {
		t.Error("expected error for wrong patient")
	}
}

func TestRespond_NotPending(t *testing.T) {
	svc, _, patientID := newTestService()
	a, _ := svc.Create(context.Background(), validAppointment(patientID))
	svc.Respond(context.Background(), a.ID, patientID, RespondInput{Accept: true})

	if _, err := svc.Respond(context.Background(), a.ID, patientID, RespondInput{Accept: false}); err == nil {
		t.Error("expected error answering a non-pending appointment")
	}
}

func TestSetStatus_CompleteRequiresConfirmed(t *testing.T) {
	svc, _, patientID := newTestService()
	a, _ := svc.Create(context.Background(), validAppointment(patientID))

	if _, err := svc.SetStatus(context.Background(), a.ID, StatusCompleted); err == nil {
		t.Error("expected error completing a pending appointment")
	}

	svc.Respond(context.Background(), a.ID, patientID, RespondInput{Accept: true})
	done, err := svc.SetStatus(context.Background(), a.ID, StatusCompleted)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if done.Status != StatusCompleted {
		t.Errorf("expected status %s, got %s", StatusCompleted, done.Status)
	}
}

func TestSetStatus_TerminalStates(t *testing.T) {
	svc, _, patientID := newTestService()
	a, _ := svc.Create(context.Background(), validAppointment(patientID))
	svc.Respond(context.Background(), a.ID, patientID, RespondInput{Accept: false})

	if _, err := svc.SetStatus(context.Background(), a.ID, StatusConfirmed); err == nil {
		t.Error("expected error reopening a cancelled appointment")
	}
}

func TestSearchAppointments_ByPatient(t *testing.T) {
	svc, _, patientID := newTestService()
	svc.Create(context.Background(), validAppointment(patientID))

	results, total, err := svc.Search(context.Background(), SearchParams{PatientID: patientID, Limit: 20})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || len(results) != 1 {
		t.Fatalf("expected 1 appointment, got %d", total)
	}
}
