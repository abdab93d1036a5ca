package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/alumnet/internal/membership/service"
	"github.com/aussiebroadwan/alumnet/pkg/httpx"
	"github.com/aussiebroadwan/alumnet/pkg/idx"
	"github.com/aussiebroadwan/alumnet/pkg/membersdk"
	"github.com/aussiebroadwan/alumnet/pkg/slogx"
)

// writeServiceError maps a service error onto the response. Validation
// errors keep their field details; anything unrecognised is a 500 and is
// logged with msg.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	status, code := http.StatusInternalServerError, membersdk.ErrorCodeServerError
	desc := ""

	switch {
	case errors.Is(err, service.ErrInvalidRegistration),
		errors.Is(err, service.ErrInvalidRequest):
		status, code, desc = http.StatusBadRequest, membersdk.ErrorCodeInvalidRequest, err.Error()
	case errors.Is(err, service.ErrInvalidEmail):
		status, code = http.StatusBadRequest, membersdk.ErrorCodeInvalidRequest
	case errors.Is(err, service.ErrInvalidCredentials):
		status, code = http.StatusUnauthorized, membersdk.ErrorCodeInvalidCredentials
		desc = membersdk.ErrInvalidCredentials.Description
	case errors.Is(err, service.ErrInvalidOrExpiredInvitation):
		status, code = http.StatusBadRequest, membersdk.ErrorCodeInvalidInvitation
	case errors.Is(err, service.ErrEmailMismatch):
		status, code = http.StatusBadRequest, membersdk.ErrorCodeEmailMismatch
	case errors.Is(err, service.ErrDuplicateRecipient):
		status, code = http.StatusConflict, membersdk.ErrorCodeAlreadyRegistered
	case errors.Is(err, service.ErrInvitationAlreadyPending):
		status, code = http.StatusConflict, membersdk.ErrorCodeInvitationPending
	case errors.Is(err, service.ErrAdminAlreadyExists):
		status, code = http.StatusConflict, membersdk.ErrorCodeConflict
	case errors.Is(err, service.ErrDeliveryFailed):
		status, code = http.StatusBadGateway, membersdk.ErrorCodeDeliveryFailed
	case errors.Is(err, service.ErrAdminNotFound),
		errors.Is(err, service.ErrAlumniNotFound),
		errors.Is(err, service.ErrEntryNotFound),
		errors.Is(err, service.ErrPostNotFound):
		status, code = http.StatusNotFound, membersdk.ErrorCodeNotFound
	case errors.Is(err, service.ErrNotPostAuthor):
		status, code = http.StatusForbidden, membersdk.ErrorCodeForbidden
	case errors.Is(err, service.ErrBootstrapAlready),
		errors.Is(err, service.ErrBootstrapUnauthorized):
		status, code = http.StatusUnauthorized, membersdk.ErrorCodeUnauthorized
	default:
		slogx.FromContext(r.Context()).Error(msg, "error", err)
		membersdk.ErrServerError.WriteError(w)
		return
	}

	if desc == "" {
		desc = err.Error()
	}
	httpx.WriteJSON(w, status, membersdk.ErrorResponse{Error: code, ErrorDescription: desc})
}

func writeBadRequest(w http.ResponseWriter, desc string) {
	membersdk.NewAPIError(http.StatusBadRequest, membersdk.ErrorCodeInvalidRequest, desc).WriteError(w)
}

// pathID returns the {id} path value, answering 404 itself when it is not
// a well-formed ID.
func pathID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("id")
	if !idx.Valid(id) {
		membersdk.NewAPIError(http.StatusNotFound, membersdk.ErrorCodeNotFound, "no record with that id").WriteError(w)
		return "", false
	}
	return id, true
}
