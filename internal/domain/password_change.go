package domain

import (
	"time"

	"github.com/google/uuid"
)

type PasswordChangeStatus string

const (
	PasswordChangePending  PasswordChangeStatus = "PENDING"
	PasswordChangeApproved PasswordChangeStatus = "APPROVED"
	PasswordChangeRejected PasswordChangeStatus = "REJECTED"
)

// PasswordChangeRequest gates a credential swap behind an admin decision.
// PENDING is the only non-terminal state; AdminID is stamped on resolution.
type PasswordChangeRequest struct {
	ID          uuid.UUID            `json:"id"`
	UserID      uuid.UUID            `json:"user_id"`
	NewPassword string               `json:"-"`
	Status      PasswordChangeStatus `json:"status"`
	AdminID     *uuid.UUID           `json:"admin_id,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}
