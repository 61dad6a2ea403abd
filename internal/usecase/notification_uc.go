package usecase

import (
	"context"

	"github.com/google/uuid"

	"user-management-service/internal/domain"
	"user-management-service/internal/repository"
	"user-management-service/pkg/xerrors"
)

// NotificationSender is the synchronous dispatch surface the API exposes
// for operator-initiated notifications.
type NotificationSender interface {
	Send(ctx context.Context, userID uuid.UUID, title, body string, priority domain.NotificationPriority) error
}

type NotificationUsecase struct {
	notifications repository.NotificationRepository
	emailLogs     repository.EmailLogRepository
	users         repository.UserRepository
	sender        NotificationSender
	bus           EventPublisher
}

func NewNotificationUsecase(
	notifications repository.NotificationRepository,
	emailLogs repository.EmailLogRepository,
	users repository.UserRepository,
	sender NotificationSender,
	bus EventPublisher,
) *NotificationUsecase {
	return &NotificationUsecase{
		notifications: notifications,
		emailLogs:     emailLogs,
		users:         users,
		sender:        sender,
		bus:           bus,
	}
}

// Notify sends a one-off notification to a single user. The user and
// priority are validated here; delivery itself is best-effort.
func (uc *NotificationUsecase) Notify(ctx context.Context, userID uuid.UUID, title, body string, priority domain.NotificationPriority) error {
	if !domain.ValidPriority(priority) {
		return xerrors.ErrInvalidPriority
	}
	return uc.sender.Send(ctx, userID, title, body, priority)
}

// Broadcast queues a notification for every user. It returns as soon as
// the event is accepted; fan-out happens on the dispatch worker.
func (uc *NotificationUsecase) Broadcast(ctx context.Context, title, body string, priority domain.NotificationPriority) error {
	if !domain.ValidPriority(priority) {
		return xerrors.ErrInvalidPriority
	}
	uc.bus.Publish(domain.Event{
		Type:     domain.EventBroadcast,
		Title:    title,
		Message:  body,
		Priority: priority,
	})
	return nil
}

func (uc *NotificationUsecase) Get(ctx context.Context, id string) (*domain.Notification, error) {
	return uc.notifications.GetByID(ctx, id)
}

func (uc *NotificationUsecase) List(ctx context.Context) ([]*domain.Notification, error) {
	return uc.notifications.List(ctx)
}

func (uc *NotificationUsecase) ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Notification, error) {
	if _, err := uc.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return uc.notifications.ListByUser(ctx, userID)
}

func (uc *NotificationUsecase) ListForUserByPriority(ctx context.Context, userID uuid.UUID, priority domain.NotificationPriority) ([]*domain.Notification, error) {
	if !domain.ValidPriority(priority) {
		return nil, xerrors.ErrInvalidPriority
	}
	if _, err := uc.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return uc.notifications.ListByUserAndPriority(ctx, userID, priority)
}

func (uc *NotificationUsecase) MarkRead(ctx context.Context, id string) error {
	return uc.notifications.MarkRead(ctx, id)
}

func (uc *NotificationUsecase) Delete(ctx context.Context, id string) error {
	return uc.notifications.Delete(ctx, id)
}

// EmailHistory lists the delivery attempts recorded for a user.
func (uc *NotificationUsecase) EmailHistory(ctx context.Context, userID uuid.UUID) ([]*domain.EmailLog, error) {
	if _, err := uc.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return uc.emailLogs.ListByUser(ctx, userID)
}
