package domain

import "github.com/google/uuid"

type EventType string

const (
	EventUserCreated             EventType = "user.created"
	EventAccountUpdated          EventType = "account.updated"
	EventAccountDeleted          EventType = "account.deleted"
	EventPasswordChangeRequested EventType = "password_change.requested"
	EventPasswordChangeApproved  EventType = "password_change.approved"
	EventPasswordChangeRejected  EventType = "password_change.rejected"
	EventBroadcast               EventType = "broadcast"
)

// Event is what the mutating usecases hand to the notification side
// channel. It carries everything the dispatcher needs so that, for
// account deletion, no user lookup is required after the row is gone.
type Event struct {
	Type     EventType
	UserID   uuid.UUID
	Email    string
	Name     string
	Title    string
	Message  string
	Priority NotificationPriority
}
