package xerrors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const PGUniqueViolation = "23505"

func ParsePGErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code // e.g. 23505 for unique_violation
	}
	return "unknown"
}

// Generic
var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrInternalServer = errors.New("internal server error")
	ErrNotFound       = errors.New("not found")
	ErrInvalidInput   = errors.New("invalid input provided")
)

// Users
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrAdminNotFound     = errors.New("admin not found")
	ErrEmailAlreadyInUse = errors.New("email already in use")
	ErrEmailRequired     = errors.New("email required")
	ErrPasswordRequired  = errors.New("password required")
)

// Password change workflow
var (
	ErrInvalidOldPassword   = errors.New("invalid old password")
	ErrAdminRoleRequired    = errors.New("only an admin can resolve password change requests")
	ErrNoPendingRequest     = errors.New("no pending password change request found")
	ErrPendingRequestExists = errors.New("a pending password change request already exists")
)

// Notifications
var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrInvalidPriority      = errors.New("invalid notification priority")
)
