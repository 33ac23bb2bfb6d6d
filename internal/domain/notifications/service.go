package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/curaflow/curaflow/internal/platform/realtime"
)

var validTypes = map[string]bool{
	TypeAppointmentRequest:  true,
	TypeAppointmentResponse: true,
	TypeStockLow:            true,
	TypeMedicalRecords:      true,
	TypePrescriptions:       true,
	TypeGeneral:             true,
}

type Service struct {
	repo      Repository
	publisher realtime.Publisher
}

func NewService(repo Repository, publisher realtime.Publisher) *Service {
	return &Service{repo: repo, publisher: publisher}
}

// Notify persists a notification for the user and publishes it on the user's
// channel. Publish failures are not surfaced: realtime delivery is best
// effort and the row is already stored.
func (s *Service) Notify(ctx context.Context, userID uuid.UUID, ntype, title, message string) (*Notification, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user_id is required")
	}
	if !validTypes[ntype] {
		return nil, fmt.Errorf("invalid notification type: %s", ntype)
	}
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}

	n := &Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    ntype,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}

	s.publish(ctx, userID, realtime.EventNewNotification, n)
	return n, nil
}

func (s *Service) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Notification, int, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

func (s *Service) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.UnreadCount(ctx, userID)
}

// MarkRead marks a single notification read. The requesting user must own it.
func (s *Service) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("notification not found")
	}
	if n.UserID != userID {
		return fmt.Errorf("notification does not belong to user")
	}
	if n.Read {
		return nil
	}
	if err := s.repo.MarkRead(ctx, id); err != nil {
		return err
	}

	s.publish(ctx, userID, realtime.EventNotificationRead, map[string]string{"id": id.String()})
	return nil
}

// MarkAllRead marks every unread notification of the user read and emits a
// single all-notifications-read event.
func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int, error) {
	count, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, err
	}

	s.publish(ctx, userID, realtime.EventAllRead, map[string]int{"count": count})
	return count, nil
}

func (s *Service) publish(ctx context.Context, userID uuid.UUID, eventType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	_ = s.publisher.Publish(ctx, realtime.Event{
		Type:      eventType,
		Topic:     realtime.UserTopic(userID),
		Timestamp: time.Now().UTC(),
		Data:      data,
	})
}
