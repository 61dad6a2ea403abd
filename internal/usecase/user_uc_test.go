package usecase

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"user-management-service/internal/domain"
	"user-management-service/pkg/xerrors"
)

func TestCreateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns ids, defaults the role and notifies", func(t *testing.T) {
		users := new(MockUserRepository)
		bus := &recordingBus{}

		users.On("ExistsByEmail", mock.Anything, "bob@example.com").Return(false, nil)
		users.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)

		uc := NewUserUsecase(users, PlaintextVerifier{}, bus, zap.NewNop())

		created, err := uc.CreateUser(ctx, &domain.User{
			FirstName: "Bob",
			Email:     "bob@example.com",
			Password:  "secret",
			Address:   &domain.Address{City: "Nairobi"},
		})
		require.NoError(t, err)
		require.NotEqual(t, uuid.Nil, created.ID)
		require.NotEqual(t, uuid.Nil, created.Address.ID)
		require.Equal(t, domain.RoleUser, created.Role)

		events := bus.published()
		require.Len(t, events, 1)
		require.Equal(t, domain.EventUserCreated, events[0].Type)
		require.Equal(t, "bob@example.com", events[0].Email)

		users.AssertExpectations(t)
	})

	t.Run("duplicate email", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("ExistsByEmail", mock.Anything, "bob@example.com").Return(true, nil)

		uc := NewUserUsecase(users, PlaintextVerifier{}, &recordingBus{}, zap.NewNop())

		_, err := uc.CreateUser(ctx, &domain.User{Email: "bob@example.com", Password: "secret"})
		require.ErrorIs(t, err, xerrors.ErrEmailAlreadyInUse)
		users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("missing email", func(t *testing.T) {
		uc := NewUserUsecase(new(MockUserRepository), PlaintextVerifier{}, &recordingBus{}, zap.NewNop())

		_, err := uc.CreateUser(ctx, &domain.User{Password: "secret"})
		require.ErrorIs(t, err, xerrors.ErrEmailRequired)
	})

	t.Run("missing password", func(t *testing.T) {
		uc := NewUserUsecase(new(MockUserRepository), PlaintextVerifier{}, &recordingBus{}, zap.NewNop())

		_, err := uc.CreateUser(ctx, &domain.User{Email: "bob@example.com"})
		require.ErrorIs(t, err, xerrors.ErrPasswordRequired)
	})
}

func TestUpdateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("merges fields and adds an address", func(t *testing.T) {
		users := new(MockUserRepository)
		bus := &recordingBus{}

		existing := testUser(domain.RoleUser)
		users.On("GetByID", mock.Anything, existing.ID).Return(existing, nil)
		users.On("Update", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)

		uc := NewUserUsecase(users, PlaintextVerifier{}, bus, zap.NewNop())

		updated, err := uc.UpdateUser(ctx, existing.ID, &domain.User{
			FirstName: "Alicia",
			Address:   &domain.Address{City: "Mombasa"},
		})
		require.NoError(t, err)
		require.Equal(t, "Alicia", updated.FirstName)
		require.Equal(t, existing.Email, updated.Email)
		require.NotNil(t, updated.Address)
		require.NotEqual(t, uuid.Nil, updated.Address.ID)

		events := bus.published()
		require.Len(t, events, 1)
		require.Equal(t, domain.EventAccountUpdated, events[0].Type)
	})

	t.Run("keeps the address id when updating in place", func(t *testing.T) {
		users := new(MockUserRepository)

		existing := testUser(domain.RoleUser)
		addrID := uuid.New()
		existing.Address = &domain.Address{ID: addrID, City: "Nairobi"}
		users.On("GetByID", mock.Anything, existing.ID).Return(existing, nil)
		users.On("Update", mock.Anything, mock.Anything).Return(nil)

		uc := NewUserUsecase(users, PlaintextVerifier{}, &recordingBus{}, zap.NewNop())

		updated, err := uc.UpdateUser(ctx, existing.ID, &domain.User{
			FirstName: existing.FirstName,
			Address:   &domain.Address{City: "Kisumu"},
		})
		require.NoError(t, err)
		require.Equal(t, addrID, updated.Address.ID)
		require.Equal(t, "Kisumu", updated.Address.City)
	})

	t.Run("unknown user", func(t *testing.T) {
		users := new(MockUserRepository)
		id := uuid.New()
		users.On("GetByID", mock.Anything, id).Return(nil, xerrors.ErrUserNotFound)

		uc := NewUserUsecase(users, PlaintextVerifier{}, &recordingBus{}, zap.NewNop())

		_, err := uc.UpdateUser(ctx, id, &domain.User{FirstName: "Ghost"})
		require.ErrorIs(t, err, xerrors.ErrUserNotFound)
	})
}

func TestDeleteUser(t *testing.T) {
	ctx := context.Background()

	t.Run("captures the email before the row is gone", func(t *testing.T) {
		users := new(MockUserRepository)
		bus := &recordingBus{}

		existing := testUser(domain.RoleUser)
		users.On("GetByID", mock.Anything, existing.ID).Return(existing, nil)
		users.On("Delete", mock.Anything, existing.ID).Return(nil)

		uc := NewUserUsecase(users, PlaintextVerifier{}, bus, zap.NewNop())

		require.NoError(t, uc.DeleteUser(ctx, existing.ID))

		events := bus.published()
		require.Len(t, events, 1)
		require.Equal(t, domain.EventAccountDeleted, events[0].Type)
		require.Equal(t, existing.Email, events[0].Email)
	})

	t.Run("unknown user", func(t *testing.T) {
		users := new(MockUserRepository)
		id := uuid.New()
		users.On("GetByID", mock.Anything, id).Return(nil, xerrors.ErrUserNotFound)

		uc := NewUserUsecase(users, PlaintextVerifier{}, &recordingBus{}, zap.NewNop())

		err := uc.DeleteUser(ctx, id)
		require.ErrorIs(t, err, xerrors.ErrUserNotFound)
		users.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}
