package http

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/alumnet/internal/membership/domain"
	"github.com/aussiebroadwan/alumnet/internal/membership/service"
	"github.com/aussiebroadwan/alumnet/pkg/httpx"
	"github.com/aussiebroadwan/alumnet/pkg/membersdk"
)

// MaxBulkInvite caps the addresses accepted by one bulk request.
const MaxBulkInvite = 500

type InvitationsHandler struct {
	InviteService *service.InviteService
	AdminService  *service.AdminService
}

// HandleInvite godoc
//
//	@Summary		Invite an alumni
//	@Description	Issues a single-use invitation and emails the registration link.
//	@Description	If the email cannot be delivered the invitation is withdrawn.
//	@Tags			Invitations
//	@Accept			json
//	@Produce		json
//	@Param			request	body		membersdk.InviteRequest	true	"Invitee"
//	@Success		201		{object}	membersdk.InvitationResponse
//	@Failure		400		{object}	membersdk.ErrorResponse
//	@Failure		409		{object}	membersdk.ErrorResponse	"already registered or invitation pending"
//	@Failure		502		{object}	membersdk.ErrorResponse	"email delivery failed"
//	@Security		BearerAuth
//	@Router			/v1/admin/invitations [post].
func (h *InvitationsHandler) HandleInvite(w http.ResponseWriter, r *http.Request) {
	var req membersdk.InviteRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	caller := PrincipalFromContext(r.Context()).Ref()
	inv, err := h.InviteService.Invite(r.Context(), req.Email, caller)
	if err != nil {
		writeServiceError(w, r, err, "failed to invite")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toInvitationResponse(inv, domain.InvitationPending))
}

// HandleBulkInvite godoc
//
//	@Summary		Invite many alumni
//	@Description	Accepts a JSON list of emails, or a text/csv body with an "email" column.
//	@Description	Every distinct address is reported in exactly one of delivered, already_exists or failed.
//	@Tags			Invitations
//	@Accept			json
//	@Accept			text/csv
//	@Produce		json
//	@Param			request	body		membersdk.BulkInviteRequest	true	"Invitees"
//	@Success		200		{object}	membersdk.BulkInviteResponse
//	@Failure		400		{object}	membersdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/admin/invitations/bulk [post].
func (h *InvitationsHandler) HandleBulkInvite(w http.ResponseWriter, r *http.Request) {
	emails, err := readBulkEmails(w, r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if len(emails) == 0 {
		writeBadRequest(w, "no email addresses supplied")
		return
	}
	if len(emails) > MaxBulkInvite {
		writeBadRequest(w, fmt.Sprintf("at most %d email addresses per request", MaxBulkInvite))
		return
	}

	caller := PrincipalFromContext(r.Context()).Ref()
	res := h.InviteService.BulkInvite(r.Context(), emails, caller)
	httpx.WriteJSON(w, http.StatusOK, membersdk.BulkInviteResponse{
		Delivered:     nonNil(res.Delivered),
		AlreadyExists: nonNil(res.AlreadyExists),
		Failed:        nonNil(res.Failed),
	})
}

func readBulkEmails(w http.ResponseWriter, r *http.Request) ([]string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "text/csv" {
		var req membersdk.BulkInviteRequest
		if err := httpx.DecodeJSON(w, r, &req); err != nil {
			return nil, err
		}
		return req.Emails, nil
	}

	body := http.MaxBytesReader(w, r.Body, httpx.MaxBodyBytes)
	return parseEmailCSV(body)
}

// parseEmailCSV reads the "email" column of a CSV document with a header
// row. Other columns are ignored.
func parseEmailCSV(in io.Reader) ([]string, error) {
	cr := csv.NewReader(in)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("CSV body is empty")
		}
		return nil, fmt.Errorf("invalid CSV: %w", err)
	}

	col := -1
	for i, name := range header {
		if strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")), "email") {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, errors.New(`CSV header must contain an "email" column`)
	}

	var emails []string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid CSV: %w", err)
		}
		if col < len(rec) {
			emails = append(emails, rec[col])
		}
	}
	return emails, nil
}

// HandleListAlumni godoc
//
//	@Summary		List alumni
//	@Tags			Alumni
//	@Produce		json
//	@Param			department	query		string	false	"Filter by department"
//	@Param			batch		query		string	false	"Filter by batch"
//	@Success		200			{object}	membersdk.AlumniListResponse
//	@Security		BearerAuth
//	@Router			/v1/admin/alumni [get].
func (h *InvitationsHandler) HandleListAlumni(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := h.AdminService.ListAlumni(r.Context(), domain.AlumniFilter{
		Department: q.Get("department"),
		Batch:      q.Get("batch"),
	})
	if err != nil {
		writeServiceError(w, r, err, "failed to list alumni")
		return
	}

	out := membersdk.AlumniListResponse{Alumni: make([]membersdk.AlumniResponse, 0, len(list))}
	for _, a := range list {
		out.Alumni = append(out.Alumni, toAlumniResponse(a))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}
