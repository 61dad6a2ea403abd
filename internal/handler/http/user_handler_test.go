package httphandler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"user-management-service/internal/domain"
	"user-management-service/internal/usecase"
	"user-management-service/pkg/xerrors"
)

type memUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (r *memUserRepo) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, xerrors.ErrUserNotFound
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, xerrors.ErrUserNotFound
}

func (r *memUserRepo) List(ctx context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if errors.Is(err, xerrors.ErrUserNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *memUserRepo) Update(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return xerrors.ErrUserNotFound
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *memUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return xerrors.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

// memPasswordRepo reproduces the store's conditional transition rules:
// one PENDING per user, resolution only moves PENDING rows.
type memPasswordRepo struct {
	mu       sync.Mutex
	requests []*domain.PasswordChangeRequest
	users    *memUserRepo
}

func (r *memPasswordRepo) Create(ctx context.Context, req *domain.PasswordChangeRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.requests {
		if existing.UserID == req.UserID && existing.Status == domain.PasswordChangePending {
			return xerrors.ErrPendingRequestExists
		}
	}
	cp := *req
	r.requests = append(r.requests, &cp)
	return nil
}

func (r *memPasswordRepo) FindPendingByUserID(ctx context.Context, userID uuid.UUID) (*domain.PasswordChangeRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, req := range r.requests {
		if req.UserID == userID && req.Status == domain.PasswordChangePending {
			cp := *req
			return &cp, nil
		}
	}
	return nil, xerrors.ErrNoPendingRequest
}

func (r *memPasswordRepo) ListPending(ctx context.Context) ([]*domain.PasswordChangeRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.PasswordChangeRequest
	for _, req := range r.requests {
		if req.Status == domain.PasswordChangePending {
			cp := *req
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memPasswordRepo) resolve(userID, adminID uuid.UUID, status domain.PasswordChangeStatus) (*domain.PasswordChangeRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, req := range r.requests {
		if req.UserID == userID && req.Status == domain.PasswordChangePending {
			req.Status = status
			req.AdminID = &adminID
			cp := *req
			return &cp, nil
		}
	}
	return nil, xerrors.ErrNoPendingRequest
}

func (r *memPasswordRepo) Approve(ctx context.Context, userID, adminID uuid.UUID) (*domain.PasswordChangeRequest, error) {
	req, err := r.resolve(userID, adminID, domain.PasswordChangeApproved)
	if err != nil {
		return nil, err
	}
	r.users.mu.Lock()
	if u, ok := r.users.users[userID]; ok {
		u.Password = req.NewPassword
	}
	r.users.mu.Unlock()
	return req, nil
}

func (r *memPasswordRepo) Reject(ctx context.Context, userID, adminID uuid.UUID) (*domain.PasswordChangeRequest, error) {
	return r.resolve(userID, adminID, domain.PasswordChangeRejected)
}

type nopBus struct{}

func (nopBus) Publish(evt domain.Event) {}

func newTestRouter(users *memUserRepo) http.Handler {
	passwords := &memPasswordRepo{users: users}
	logger := zap.NewNop()

	userUC := usecase.NewUserUsecase(users, usecase.PlaintextVerifier{}, nopBus{}, logger)
	passwordUC := usecase.NewPasswordChangeUsecase(users, passwords, usecase.PlaintextVerifier{}, nopBus{}, logger)

	h := NewUserHandler(userUC, passwordUC)

	r := chi.NewRouter()
	r.Route("/api/users", func(r chi.Router) {
		r.Post("/", h.CreateUser)
		r.Get("/", h.ListUsers)
		r.Get("/password-requests/pending", h.PendingPasswordRequests)
		r.Get("/{id}", h.GetUser)
		r.Delete("/{id}", h.DeleteUser)
		r.Post("/{id}/change-password", h.RequestPasswordChange)
		r.Put("/{id}/approve-password-change", h.ResolvePasswordChange)
		r.Get("/{id}/password-request", h.PendingPasswordRequest)
	})
	return r
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func seedUser(repo *memUserRepo, role domain.UserRole, email string) *domain.User {
	u := &domain.User{
		ID:       uuid.New(),
		Email:    email,
		Password: "secret",
		Role:     role,
	}
	repo.users[u.ID] = u
	return u
}

func TestUserEndpoints(t *testing.T) {
	t.Run("create returns 201", func(t *testing.T) {
		router := newTestRouter(newMemUserRepo())

		rec := doJSON(t, router, http.MethodPost, "/api/users", map[string]string{
			"first_name": "Alice",
			"email":      "alice@example.com",
			"password":   "secret",
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		var resp struct {
			Status string      `json:"status"`
			Data   domain.User `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "success", resp.Status)
		require.NotEqual(t, uuid.Nil, resp.Data.ID)
	})

	t.Run("duplicate email returns 409", func(t *testing.T) {
		repo := newMemUserRepo()
		seedUser(repo, domain.RoleUser, "alice@example.com")
		router := newTestRouter(repo)

		rec := doJSON(t, router, http.MethodPost, "/api/users", map[string]string{
			"email":    "alice@example.com",
			"password": "secret",
		})
		require.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("missing password returns 400", func(t *testing.T) {
		router := newTestRouter(newMemUserRepo())

		rec := doJSON(t, router, http.MethodPost, "/api/users", map[string]string{
			"email": "alice@example.com",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("get unknown user returns 404", func(t *testing.T) {
		router := newTestRouter(newMemUserRepo())

		rec := doJSON(t, router, http.MethodGet, "/api/users/"+uuid.NewString(), nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed id returns 400", func(t *testing.T) {
		router := newTestRouter(newMemUserRepo())

		rec := doJSON(t, router, http.MethodGet, "/api/users/not-a-uuid", nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("delete returns 204 then 404", func(t *testing.T) {
		repo := newMemUserRepo()
		u := seedUser(repo, domain.RoleUser, "alice@example.com")
		router := newTestRouter(repo)

		rec := doJSON(t, router, http.MethodDelete, "/api/users/"+u.ID.String(), nil)
		require.Equal(t, http.StatusNoContent, rec.Code)

		rec = doJSON(t, router, http.MethodDelete, "/api/users/"+u.ID.String(), nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestPasswordChangeEndpoints(t *testing.T) {
	changePath := func(id uuid.UUID) string {
		return fmt.Sprintf("/api/users/%s/change-password", id)
	}
	approvePath := func(id uuid.UUID) string {
		return fmt.Sprintf("/api/users/%s/approve-password-change", id)
	}

	t.Run("request then approve", func(t *testing.T) {
		repo := newMemUserRepo()
		alice := seedUser(repo, domain.RoleUser, "alice@example.com")
		bob := seedUser(repo, domain.RoleAdmin, "bob@example.com")
		router := newTestRouter(repo)

		rec := doJSON(t, router, http.MethodPost, changePath(alice.ID), map[string]string{
			"old_password": "secret",
			"new_password": "rotated",
		})
		require.Equal(t, http.StatusAccepted, rec.Code)

		// A second request while one is pending conflicts.
		rec = doJSON(t, router, http.MethodPost, changePath(alice.ID), map[string]string{
			"old_password": "secret",
			"new_password": "rotated-again",
		})
		require.Equal(t, http.StatusConflict, rec.Code)

		rec = doJSON(t, router, http.MethodPut, approvePath(alice.ID), map[string]interface{}{
			"admin_id": bob.ID,
			"approved": true,
		})
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "rotated", repo.users[alice.ID].Password)

		// The request is resolved; approving again is a 404.
		rec = doJSON(t, router, http.MethodPut, approvePath(alice.ID), map[string]interface{}{
			"admin_id": bob.ID,
			"approved": true,
		})
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("wrong current password returns 400", func(t *testing.T) {
		repo := newMemUserRepo()
		alice := seedUser(repo, domain.RoleUser, "alice@example.com")
		router := newTestRouter(repo)

		rec := doJSON(t, router, http.MethodPost, changePath(alice.ID), map[string]string{
			"old_password": "guess",
			"new_password": "rotated",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("resolver without admin role returns 400", func(t *testing.T) {
		repo := newMemUserRepo()
		alice := seedUser(repo, domain.RoleUser, "alice@example.com")
		carol := seedUser(repo, domain.RoleUser, "carol@example.com")
		router := newTestRouter(repo)

		rec := doJSON(t, router, http.MethodPost, changePath(alice.ID), map[string]string{
			"old_password": "secret",
			"new_password": "rotated",
		})
		require.Equal(t, http.StatusAccepted, rec.Code)

		rec = doJSON(t, router, http.MethodPut, approvePath(alice.ID), map[string]interface{}{
			"admin_id": carol.ID,
			"approved": true,
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "secret", repo.users[alice.ID].Password)
	})

	t.Run("reject leaves the credential untouched", func(t *testing.T) {
		repo := newMemUserRepo()
		alice := seedUser(repo, domain.RoleUser, "alice@example.com")
		bob := seedUser(repo, domain.RoleAdmin, "bob@example.com")
		router := newTestRouter(repo)

		rec := doJSON(t, router, http.MethodPost, changePath(alice.ID), map[string]string{
			"old_password": "secret",
			"new_password": "rotated",
		})
		require.Equal(t, http.StatusAccepted, rec.Code)

		rec = doJSON(t, router, http.MethodPut, approvePath(alice.ID), map[string]interface{}{
			"admin_id": bob.ID,
			"approved": false,
		})
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "secret", repo.users[alice.ID].Password)
	})

	t.Run("per-user pending request", func(t *testing.T) {
		repo := newMemUserRepo()
		alice := seedUser(repo, domain.RoleUser, "alice@example.com")
		router := newTestRouter(repo)

		requestPath := fmt.Sprintf("/api/users/%s/password-request", alice.ID)

		// Nothing filed yet.
		rec := doJSON(t, router, http.MethodGet, requestPath, nil)
		require.Equal(t, http.StatusNotFound, rec.Code)

		rec = doJSON(t, router, http.MethodPost, changePath(alice.ID), map[string]string{
			"old_password": "secret",
			"new_password": "rotated",
		})
		require.Equal(t, http.StatusAccepted, rec.Code)

		rec = doJSON(t, router, http.MethodGet, requestPath, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Data domain.PasswordChangeRequest `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, alice.ID, resp.Data.UserID)
		require.Equal(t, domain.PasswordChangePending, resp.Data.Status)
	})

	t.Run("pending queue", func(t *testing.T) {
		repo := newMemUserRepo()
		alice := seedUser(repo, domain.RoleUser, "alice@example.com")
		router := newTestRouter(repo)

		rec := doJSON(t, router, http.MethodPost, changePath(alice.ID), map[string]string{
			"old_password": "secret",
			"new_password": "rotated",
		})
		require.Equal(t, http.StatusAccepted, rec.Code)

		rec = doJSON(t, router, http.MethodGet, "/api/users/password-requests/pending", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Data []domain.PasswordChangeRequest `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Data, 1)
		require.Equal(t, alice.ID, resp.Data[0].UserID)
	})
}
