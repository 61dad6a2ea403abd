package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"user-management-service/internal/domain"
	"user-management-service/pkg/xerrors"
)

// PasswordChangeRepository owns the request lifecycle. Resolution is a
// single conditional write on status = PENDING, so of two concurrent
// resolvers exactly one transitions the row and the other observes
// ErrNoPendingRequest. A partial unique index keeps at most one PENDING
// request per user.
type PasswordChangeRepository interface {
	Create(ctx context.Context, req *domain.PasswordChangeRequest) error
	FindPendingByUserID(ctx context.Context, userID uuid.UUID) (*domain.PasswordChangeRequest, error)
	ListPending(ctx context.Context) ([]*domain.PasswordChangeRequest, error)
	// Approve transitions PENDING -> APPROVED and swaps the user's stored
	// credential to the request's new password in the same transaction.
	Approve(ctx context.Context, userID, adminID uuid.UUID) (*domain.PasswordChangeRequest, error)
	// Reject transitions PENDING -> REJECTED and leaves the credential untouched.
	Reject(ctx context.Context, userID, adminID uuid.UUID) (*domain.PasswordChangeRequest, error)
}

type passwordChangeRepo struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewPasswordChangeRepository(db *pgxpool.Pool, logger *zap.Logger) PasswordChangeRepository {
	return &passwordChangeRepo{db: db, logger: logger}
}

func (r *passwordChangeRepo) Create(ctx context.Context, req *domain.PasswordChangeRequest) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO password_change_requests (id, user_id, new_password, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING created_at, updated_at
	`,
		req.ID,
		req.UserID,
		req.NewPassword,
		req.Status,
	).Scan(&req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		if xerrors.ParsePGErrorCode(err) == xerrors.PGUniqueViolation {
			return xerrors.ErrPendingRequestExists
		}
		return fmt.Errorf("failed to create password change request: %w", err)
	}

	r.logger.Info("Password change request created",
		zap.String("request_id", req.ID.String()),
		zap.String("user_id", req.UserID.String()))

	return nil
}

const requestSelect = `
	SELECT id, user_id, new_password, status, admin_id, created_at, updated_at
	FROM password_change_requests
`

func (r *passwordChangeRepo) FindPendingByUserID(ctx context.Context, userID uuid.UUID) (*domain.PasswordChangeRequest, error) {
	row := r.db.QueryRow(ctx,
		requestSelect+` WHERE user_id = $1 AND status = $2`,
		userID, domain.PasswordChangePending,
	)
	req, err := scanRequest(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNoPendingRequest
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pending request: %w", err)
	}
	return req, nil
}

func (r *passwordChangeRepo) ListPending(ctx context.Context) ([]*domain.PasswordChangeRequest, error) {
	rows, err := r.db.Query(ctx,
		requestSelect+` WHERE status = $1 ORDER BY created_at DESC`,
		domain.PasswordChangePending,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending requests: %w", err)
	}
	defer rows.Close()

	var requests []*domain.PasswordChangeRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating requests: %w", rows.Err())
	}
	return requests, nil
}

func (r *passwordChangeRepo) Approve(ctx context.Context, userID, adminID uuid.UUID) (*domain.PasswordChangeRequest, error) {
	req := &domain.PasswordChangeRequest{}
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			UPDATE password_change_requests
			SET status = $3,
			    admin_id = $2,
			    updated_at = NOW()
			WHERE user_id = $1 AND status = $4
			RETURNING id, user_id, new_password, status, admin_id, created_at, updated_at
		`, userID, adminID, domain.PasswordChangeApproved, domain.PasswordChangePending).Scan(
			&req.ID,
			&req.UserID,
			&req.NewPassword,
			&req.Status,
			&req.AdminID,
			&req.CreatedAt,
			&req.UpdatedAt,
		)
		if errors.Is(err, pgx.ErrNoRows) {
			return xerrors.ErrNoPendingRequest
		}
		if err != nil {
			return fmt.Errorf("failed to approve request: %w", err)
		}

		tag, err := tx.Exec(ctx, `
			UPDATE users
			SET password = $2, updated_at = NOW()
			WHERE id = $1
		`, userID, req.NewPassword)
		if err != nil {
			return fmt.Errorf("failed to update credential: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return xerrors.ErrUserNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("Password change request approved",
		zap.String("request_id", req.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("admin_id", adminID.String()))

	return req, nil
}

func (r *passwordChangeRepo) Reject(ctx context.Context, userID, adminID uuid.UUID) (*domain.PasswordChangeRequest, error) {
	req := &domain.PasswordChangeRequest{}
	err := r.db.QueryRow(ctx, `
		UPDATE password_change_requests
		SET status = $3,
		    admin_id = $2,
		    updated_at = NOW()
		WHERE user_id = $1 AND status = $4
		RETURNING id, user_id, new_password, status, admin_id, created_at, updated_at
	`, userID, adminID, domain.PasswordChangeRejected, domain.PasswordChangePending).Scan(
		&req.ID,
		&req.UserID,
		&req.NewPassword,
		&req.Status,
		&req.AdminID,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNoPendingRequest
	}
	if err != nil {
		return nil, fmt.Errorf("failed to reject request: %w", err)
	}

	r.logger.Info("Password change request rejected",
		zap.String("request_id", req.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("admin_id", adminID.String()))

	return req, nil
}

func scanRequest(row rowScanner) (*domain.PasswordChangeRequest, error) {
	req := &domain.PasswordChangeRequest{}
	err := row.Scan(
		&req.ID,
		&req.UserID,
		&req.NewPassword,
		&req.Status,
		&req.AdminID,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return req, nil
}
