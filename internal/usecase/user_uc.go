package usecase

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"user-management-service/internal/domain"
	"user-management-service/internal/repository"
	"user-management-service/pkg/xerrors"
)

// UserUsecase is the CRUD orchestration around the user store and its
// owned address, with notification triggers on every mutation.
type UserUsecase struct {
	users    repository.UserRepository
	verifier CredentialVerifier
	bus      EventPublisher
	logger   *zap.Logger
}

func NewUserUsecase(
	users repository.UserRepository,
	verifier CredentialVerifier,
	bus EventPublisher,
	logger *zap.Logger,
) *UserUsecase {
	return &UserUsecase{
		users:    users,
		verifier: verifier,
		bus:      bus,
		logger:   logger,
	}
}

func (uc *UserUsecase) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user.Email == "" {
		return nil, xerrors.ErrEmailRequired
	}
	if user.Password == "" {
		return nil, xerrors.ErrPasswordRequired
	}

	exists, err := uc.users.ExistsByEmail(ctx, user.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, xerrors.ErrEmailAlreadyInUse
	}

	if user.Role == "" {
		user.Role = domain.RoleUser
	}
	user.ID = uuid.New()
	if user.Address != nil && user.Address.ID == uuid.Nil {
		user.Address.ID = uuid.New()
	}

	stored, err := uc.verifier.Digest(user.Password)
	if err != nil {
		return nil, err
	}
	user.Password = stored

	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}

	uc.logger.Info("user created",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)))

	// The welcome notification deliberately carries no credential.
	uc.bus.Publish(domain.Event{
		Type:   domain.EventUserCreated,
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.FullName(),
	})

	return user, nil
}

func (uc *UserUsecase) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return uc.users.GetByID(ctx, id)
}

func (uc *UserUsecase) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	if email == "" {
		return nil, xerrors.ErrEmailRequired
	}
	return uc.users.GetByEmail(ctx, email)
}

func (uc *UserUsecase) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return uc.users.List(ctx)
}

// UpdateUser replaces scalar fields and the owned address. The address is
// created if absent, updated in place if present. The credential is not
// touched here; that path goes through the password change workflow.
func (uc *UserUsecase) UpdateUser(ctx context.Context, id uuid.UUID, in *domain.User) (*domain.User, error) {
	existing, err := uc.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	existing.FirstName = in.FirstName
	existing.LastName = in.LastName
	if in.Email != "" {
		existing.Email = in.Email
	}
	existing.DateOfBirth = in.DateOfBirth
	existing.PhoneNumber = in.PhoneNumber
	existing.Gender = in.Gender
	if in.Role != "" {
		existing.Role = in.Role
	}

	if in.Address != nil {
		addr := *in.Address
		if existing.Address != nil {
			addr.ID = existing.Address.ID
		} else if addr.ID == uuid.Nil {
			addr.ID = uuid.New()
		}
		existing.Address = &addr
	}

	if err := uc.users.Update(ctx, existing); err != nil {
		return nil, err
	}

	uc.logger.Info("user updated", zap.String("user_id", id.String()))

	uc.bus.Publish(domain.Event{
		Type:   domain.EventAccountUpdated,
		UserID: existing.ID,
		Email:  existing.Email,
		Name:   existing.FullName(),
	})

	return existing, nil
}

// DeleteUser reads the user first so the deletion notification can carry
// the email address after the row is gone.
func (uc *UserUsecase) DeleteUser(ctx context.Context, id uuid.UUID) error {
	existing, err := uc.users.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := uc.users.Delete(ctx, id); err != nil {
		return err
	}

	uc.logger.Info("user deleted", zap.String("user_id", id.String()))

	uc.bus.Publish(domain.Event{
		Type:   domain.EventAccountDeleted,
		UserID: existing.ID,
		Email:  existing.Email,
		Name:   existing.FullName(),
	})

	return nil
}
