package domain

import (
	"time"

	"github.com/google/uuid"
)

type NotificationPriority string

const (
	PriorityLow      NotificationPriority = "LOW"
	PriorityMedium   NotificationPriority = "MEDIUM"
	PriorityHigh     NotificationPriority = "HIGH"
	PriorityCritical NotificationPriority = "CRITICAL"
)

func ValidPriority(p NotificationPriority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// Notification is the in-app record of a dispatched event. It references
// its user by id only, so it can outlive the user row.
type Notification struct {
	ID        string               `json:"id"`
	UserID    uuid.UUID            `json:"user_id"`
	Title     string               `json:"title"`
	Message   string               `json:"message"`
	Priority  NotificationPriority `json:"priority"`
	Read      bool                 `json:"read"`
	CreatedAt time.Time            `json:"created_at"`
}

const (
	EmailStatusSent   = "sent"
	EmailStatusFailed = "failed"
)

// EmailLog records every delivery attempt, successful or not.
type EmailLog struct {
	ID             string     `json:"id"`
	UserID         *uuid.UUID `json:"user_id,omitempty"`
	RecipientEmail string     `json:"recipient_email"`
	Subject        string     `json:"subject"`
	EmailType      string     `json:"email_type"`
	DeliveryStatus string     `json:"delivery_status"`
	ErrorMessage   *string    `json:"error_message,omitempty"`
	SentAt         time.Time  `json:"sent_at"`
}
