package httphandler

import (
	"errors"
	"net/http"

	"user-management-service/pkg/response"
	"user-management-service/pkg/xerrors"
)

// writeError maps domain sentinels onto HTTP statuses. Anything
// unrecognised is an infrastructure failure and stays generic.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, xerrors.ErrUserNotFound),
		errors.Is(err, xerrors.ErrAdminNotFound),
		errors.Is(err, xerrors.ErrNoPendingRequest),
		errors.Is(err, xerrors.ErrNotificationNotFound),
		errors.Is(err, xerrors.ErrNotFound):
		response.Error(w, http.StatusNotFound, err.Error())

	case errors.Is(err, xerrors.ErrEmailAlreadyInUse),
		errors.Is(err, xerrors.ErrPendingRequestExists):
		response.Error(w, http.StatusConflict, err.Error())

	case errors.Is(err, xerrors.ErrInvalidOldPassword),
		errors.Is(err, xerrors.ErrAdminRoleRequired),
		errors.Is(err, xerrors.ErrEmailRequired),
		errors.Is(err, xerrors.ErrPasswordRequired),
		errors.Is(err, xerrors.ErrInvalidPriority),
		errors.Is(err, xerrors.ErrInvalidInput),
		errors.Is(err, xerrors.ErrInvalidRequest):
		response.Error(w, http.StatusBadRequest, err.Error())

	default:
		response.Error(w, http.StatusInternalServerError, "internal server error")
	}
}
