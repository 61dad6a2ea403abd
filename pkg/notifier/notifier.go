package notifier

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"user-management-service/internal/domain"
	"user-management-service/internal/repository"
	"user-management-service/pkg/email"
	"user-management-service/pkg/id"
	"user-management-service/pkg/notifier/ws"
)

// Dispatcher fans domain events out to the in-app notification log, the
// websocket hub and the email sender. The notification row is always
// written first; everything after it is best-effort and never surfaces
// an error to the operation that produced the event.
type Dispatcher struct {
	notifications repository.NotificationRepository
	emailLogs     repository.EmailLogRepository
	users         repository.UserRepository
	sender        email.Sender
	hub           *ws.Hub
	adminEmail    string
	logger        *zap.Logger
}

func New(
	notifications repository.NotificationRepository,
	emailLogs repository.EmailLogRepository,
	users repository.UserRepository,
	sender email.Sender,
	hub *ws.Hub,
	adminEmail string,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		notifications: notifications,
		emailLogs:     emailLogs,
		users:         users,
		sender:        sender,
		hub:           hub,
		adminEmail:    adminEmail,
		logger:        logger,
	}
}

// Send delivers a one-off notification to a single user.
func (d *Dispatcher) Send(ctx context.Context, userID uuid.UUID, title, body string, priority domain.NotificationPriority) error {
	user, err := d.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	d.deliver(ctx, userID, user.Email, genericMessage(title, body, priority, EmailTypeGeneric))
	return nil
}

// Broadcast delivers a notification to every known user. One user's
// delivery failure never aborts the rest.
func (d *Dispatcher) Broadcast(ctx context.Context, title, body string, priority domain.NotificationPriority) error {
	users, err := d.users.List(ctx)
	if err != nil {
		return err
	}

	msg := genericMessage(title, body, priority, EmailTypeBroadcast)
	for _, user := range users {
		d.deliver(ctx, user.ID, user.Email, msg)
	}

	d.logger.Info("Broadcast dispatched",
		zap.String("title", title),
		zap.Int("recipients", len(users)))
	return nil
}

// HandleEvent renders and delivers the notification for a domain event.
// Events carry the recipient email captured at publish time, so account
// deletion needs no lookup after the row is gone.
func (d *Dispatcher) HandleEvent(ctx context.Context, evt domain.Event) {
	switch evt.Type {
	case domain.EventUserCreated:
		d.deliver(ctx, evt.UserID, evt.Email, welcomeMessage(evt.Name))

	case domain.EventPasswordChangeRequested:
		d.deliver(ctx, evt.UserID, evt.Email, passwordChangeRequestedMessage())
		if d.adminEmail != "" {
			alert := adminReviewAlert(evt.UserID.String(), evt.Name, evt.Email)
			d.sendEmail(ctx, nil, d.adminEmail, alert)
		}

	case domain.EventPasswordChangeApproved:
		d.deliver(ctx, evt.UserID, evt.Email, passwordChangeApprovedMessage())

	case domain.EventPasswordChangeRejected:
		d.deliver(ctx, evt.UserID, evt.Email, passwordChangeRejectedMessage())

	case domain.EventAccountUpdated:
		d.deliver(ctx, evt.UserID, evt.Email, accountUpdatedMessage())

	case domain.EventAccountDeleted:
		d.deliver(ctx, evt.UserID, evt.Email, accountDeletedMessage())

	case domain.EventBroadcast:
		if err := d.Broadcast(ctx, evt.Title, evt.Message, evt.Priority); err != nil {
			d.logger.Warn("broadcast failed", zap.Error(err))
		}

	default:
		d.logger.Warn("unknown event type", zap.String("type", string(evt.Type)))
	}
}

// deliver writes the in-app row, pushes it over the hub, then attempts
// email. Only the caller-supplied lookup can fail a dispatch; from here
// on everything is recorded, not propagated.
func (d *Dispatcher) deliver(ctx context.Context, userID uuid.UUID, recipient string, msg message) {
	n := &domain.Notification{
		ID:       id.New("ntf"),
		UserID:   userID,
		Title:    msg.Title,
		Message:  msg.Message,
		Priority: msg.Priority,
		Read:     false,
	}
	if err := d.notifications.Create(ctx, n); err != nil {
		d.logger.Warn("failed to persist notification",
			zap.String("user_id", userID.String()),
			zap.Error(err))
	}

	if d.hub != nil {
		d.hub.Send(userID.String(), n)
	}

	if recipient != "" {
		d.sendEmail(ctx, &userID, recipient, msg)
	}
}

func (d *Dispatcher) sendEmail(ctx context.Context, userID *uuid.UUID, recipient string, msg message) {
	if d.sender == nil {
		return
	}

	sendErr := d.sender.Send(recipient, msg.Title, msg.Text, msg.HTML)

	log := &domain.EmailLog{
		ID:             id.New("eml"),
		UserID:         userID,
		RecipientEmail: recipient,
		Subject:        msg.Title,
		EmailType:      msg.EmailType,
		DeliveryStatus: domain.EmailStatusSent,
		SentAt:         time.Now(),
	}
	if sendErr != nil {
		errMsg := sendErr.Error()
		log.DeliveryStatus = domain.EmailStatusFailed
		log.ErrorMessage = &errMsg
		d.logger.Warn("email delivery failed",
			zap.String("recipient", recipient),
			zap.String("email_type", msg.EmailType),
			zap.Error(sendErr))
	}

	if err := d.emailLogs.Record(ctx, log); err != nil {
		d.logger.Warn("failed to record email log", zap.Error(err))
	}
}
