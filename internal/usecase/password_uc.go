package usecase

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"user-management-service/internal/domain"
	"user-management-service/internal/repository"
	"user-management-service/pkg/xerrors"
)

// EventPublisher hands a domain event to the notification side channel.
// Publishing never fails the calling operation.
type EventPublisher interface {
	Publish(evt domain.Event)
}

// PasswordChangeUsecase owns the request/approve/reject lifecycle of a
// credential change, gated behind a second-party admin decision.
type PasswordChangeUsecase struct {
	users    repository.UserRepository
	requests repository.PasswordChangeRepository
	verifier CredentialVerifier
	bus      EventPublisher
	logger   *zap.Logger
}

func NewPasswordChangeUsecase(
	users repository.UserRepository,
	requests repository.PasswordChangeRepository,
	verifier CredentialVerifier,
	bus EventPublisher,
	logger *zap.Logger,
) *PasswordChangeUsecase {
	return &PasswordChangeUsecase{
		users:    users,
		requests: requests,
		verifier: verifier,
		bus:      bus,
		logger:   logger,
	}
}

// RequestChange validates the caller's current credential and files a
// PENDING request holding the proposed password. The stored credential
// is untouched until an admin approves.
func (uc *PasswordChangeUsecase) RequestChange(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) (*domain.PasswordChangeRequest, error) {
	if newPassword == "" {
		return nil, xerrors.ErrPasswordRequired
	}

	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !uc.verifier.Verify(user.Password, oldPassword) {
		return nil, xerrors.ErrInvalidOldPassword
	}

	stored, err := uc.verifier.Digest(newPassword)
	if err != nil {
		return nil, err
	}

	req := &domain.PasswordChangeRequest{
		ID:          uuid.New(),
		UserID:      userID,
		NewPassword: stored,
		Status:      domain.PasswordChangePending,
	}
	if err := uc.requests.Create(ctx, req); err != nil {
		return nil, err
	}

	uc.logger.Info("password change requested",
		zap.String("user_id", userID.String()),
		zap.String("request_id", req.ID.String()))

	uc.bus.Publish(domain.Event{
		Type:   domain.EventPasswordChangeRequested,
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.FullName(),
	})

	return req, nil
}

// ResolveChange applies an admin decision to the user's PENDING request.
// The approval branch swaps the credential and marks the request in one
// store transaction; a request already resolved surfaces as
// ErrNoPendingRequest, so retries are errors, not no-ops.
func (uc *PasswordChangeUsecase) ResolveChange(ctx context.Context, userID, adminID uuid.UUID, approve bool) (*domain.PasswordChangeRequest, error) {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	admin, err := uc.users.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, xerrors.ErrUserNotFound) {
			return nil, xerrors.ErrAdminNotFound
		}
		return nil, err
	}
	if !admin.IsAdmin() {
		return nil, xerrors.ErrAdminRoleRequired
	}

	var (
		req *domain.PasswordChangeRequest
		evt domain.EventType
	)
	if approve {
		req, err = uc.requests.Approve(ctx, userID, adminID)
		evt = domain.EventPasswordChangeApproved
	} else {
		req, err = uc.requests.Reject(ctx, userID, adminID)
		evt = domain.EventPasswordChangeRejected
	}
	if err != nil {
		return nil, err
	}

	uc.logger.Info("password change resolved",
		zap.String("user_id", userID.String()),
		zap.String("admin_id", adminID.String()),
		zap.String("status", string(req.Status)))

	uc.bus.Publish(domain.Event{
		Type:   evt,
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.FullName(),
	})

	return req, nil
}

// PendingRequests is the admin review queue.
func (uc *PasswordChangeUsecase) PendingRequests(ctx context.Context) ([]*domain.PasswordChangeRequest, error) {
	return uc.requests.ListPending(ctx)
}

func (uc *PasswordChangeUsecase) PendingRequestForUser(ctx context.Context, userID uuid.UUID) (*domain.PasswordChangeRequest, error) {
	return uc.requests.FindPendingByUserID(ctx, userID)
}
