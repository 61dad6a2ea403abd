package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"user-management-service/internal/domain"
	"user-management-service/internal/usecase"
	"user-management-service/pkg/response"
)

type UserHandler struct {
	users     *usecase.UserUsecase
	passwords *usecase.PasswordChangeUsecase
}

func NewUserHandler(users *usecase.UserUsecase, passwords *usecase.PasswordChangeUsecase) *UserHandler {
	return &UserHandler{users: users, passwords: passwords}
}

type userRequest struct {
	FirstName   string          `json:"first_name"`
	LastName    string          `json:"last_name"`
	Email       string          `json:"email"`
	Password    string          `json:"password,omitempty"`
	DateOfBirth string          `json:"date_of_birth,omitempty"`
	PhoneNumber string          `json:"phone_number"`
	Gender      string          `json:"gender"`
	Role        string          `json:"role"`
	Address     *domain.Address `json:"address,omitempty"`
}

func (req *userRequest) toDomain() (*domain.User, error) {
	user := &domain.User{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Password:    req.Password,
		PhoneNumber: req.PhoneNumber,
		Gender:      domain.Gender(req.Gender),
		Role:        domain.UserRole(req.Role),
		Address:     req.Address,
	}
	if req.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			return nil, err
		}
		user.DateOfBirth = &dob
	}
	return user, nil
}

func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := req.toDomain()
	if err != nil {
		response.Error(w, http.StatusBadRequest, "invalid date_of_birth, expected YYYY-MM-DD")
		return
	}

	created, err := h.users.CreateUser(r.Context(), user)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, created)
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, users)
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := h.users.GetUser(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, user)
}

func (h *UserHandler) GetUserByEmail(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetUserByEmail(r.Context(), chi.URLParam(r, "email"))
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, user)
}

func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := req.toDomain()
	if err != nil {
		response.Error(w, http.StatusBadRequest, "invalid date_of_birth, expected YYYY-MM-DD")
		return
	}

	updated, err := h.users.UpdateUser(r.Context(), id, user)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, updated)
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := h.users.DeleteUser(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	response.NoContent(w)
}

type passwordChangeRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// RequestPasswordChange files a pending request; the credential itself
// only changes once an admin approves, hence 202.
func (h *UserHandler) RequestPasswordChange(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req passwordChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.passwords.RequestChange(r.Context(), id, req.OldPassword, req.NewPassword)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusAccepted, created)
}

type passwordApprovalRequest struct {
	AdminID  uuid.UUID `json:"admin_id"`
	Approved bool      `json:"approved"`
}

func (h *UserHandler) ResolvePasswordChange(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req passwordApprovalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.AdminID == uuid.Nil {
		response.Error(w, http.StatusBadRequest, "admin_id is required")
		return
	}

	resolved, err := h.passwords.ResolveChange(r.Context(), id, req.AdminID, req.Approved)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, resolved)
}

// PendingPasswordRequest returns the open request for one user, so a
// client can show "waiting for approval" without polling the admin queue.
func (h *UserHandler) PendingPasswordRequest(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "invalid user id")
		return
	}

	req, err := h.passwords.PendingRequestForUser(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, req)
}

func (h *UserHandler) PendingPasswordRequests(w http.ResponseWriter, r *http.Request) {
	pending, err := h.passwords.PendingRequests(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, pending)
}
