package http

import (
	"net/http"

	"github.com/aussiebroadwan/alumnet/internal/membership/service"
	"github.com/aussiebroadwan/alumnet/pkg/httpx"
	"github.com/aussiebroadwan/alumnet/pkg/membersdk"
)

type SuperAdminHandler struct {
	AdminService *service.AdminService
}

// HandleCreateAdmin godoc
//
//	@Summary		Create an admin
//	@Tags			Super Admin
//	@Accept			json
//	@Produce		json
//	@Param			request	body		membersdk.CreateAdminRequest	true	"Admin account"
//	@Success		201		{object}	membersdk.AdminResponse
//	@Failure		400		{object}	membersdk.ErrorResponse
//	@Failure		409		{object}	membersdk.ErrorResponse	"email already in use"
//	@Security		BearerAuth
//	@Router			/v1/super-admin/admins [post].
func (h *SuperAdminHandler) HandleCreateAdmin(w http.ResponseWriter, r *http.Request) {
	var req membersdk.CreateAdminRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	caller := PrincipalFromContext(r.Context()).Ref()
	a, err := h.AdminService.CreateAdmin(r.Context(), caller, service.CreateAdminRequest{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Department: req.Department,
	})
	if err != nil {
		writeServiceError(w, r, err, "failed to create admin")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toAdminResponse(a))
}

// HandleListAdmins godoc
//
//	@Summary	List admins
//	@Tags		Super Admin
//	@Produce	json
//	@Success	200	{object}	membersdk.AdminListResponse
//	@Security	BearerAuth
//	@Router		/v1/super-admin/admins [get].
func (h *SuperAdminHandler) HandleListAdmins(w http.ResponseWriter, r *http.Request) {
	list, err := h.AdminService.ListAdmins(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "failed to list admins")
		return
	}

	out := membersdk.AdminListResponse{Admins: make([]membersdk.AdminResponse, 0, len(list))}
	for _, a := range list {
		out.Admins = append(out.Admins, toAdminResponse(a))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleUpdateAdmin godoc
//
//	@Summary		Update an admin
//	@Description	Changes name, email, department or the active flag. Passwords are never changed here.
//	@Tags			Super Admin
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Admin ID"
//	@Param			request	body		membersdk.UpdateAdminRequest	true	"Fields to change"
//	@Success		200		{object}	membersdk.AdminResponse
//	@Failure		404		{object}	membersdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/super-admin/admins/{id} [put].
func (h *SuperAdminHandler) HandleUpdateAdmin(w http.ResponseWriter, r *http.Request) {
	var req membersdk.UpdateAdminRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	id, ok := pathID(w, r)
	if !ok {
		return
	}
	a, err := h.AdminService.UpdateAdmin(r.Context(), id, service.UpdateAdminRequest{
		Name:       req.Name,
		Email:      req.Email,
		Department: req.Department,
		IsActive:   req.IsActive,
	})
	if err != nil {
		writeServiceError(w, r, err, "failed to update admin")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toAdminResponse(a))
}

// HandleDeleteAdmin godoc
//
//	@Summary	Delete an admin
//	@Tags		Super Admin
//	@Param		id	path	string	true	"Admin ID"
//	@Success	204
//	@Failure	404	{object}	membersdk.ErrorResponse
//	@Security	BearerAuth
//	@Router		/v1/super-admin/admins/{id} [delete].
func (h *SuperAdminHandler) HandleDeleteAdmin(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.AdminService.DeleteAdmin(r.Context(), id); err != nil {
		writeServiceError(w, r, err, "failed to delete admin")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleStatistics godoc
//
//	@Summary	Dashboard statistics
//	@Tags		Super Admin
//	@Produce	json
//	@Success	200	{object}	membersdk.StatisticsResponse
//	@Security	BearerAuth
//	@Router		/v1/super-admin/statistics [get].
func (h *SuperAdminHandler) HandleStatistics(w http.ResponseWriter, r *http.Request) {
	s, err := h.AdminService.Statistics(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "failed to compute statistics")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, membersdk.StatisticsResponse{
		TotalAdmins:        s.TotalAdmins,
		TotalAlumni:        s.TotalAlumni,
		ActiveAlumni:       s.ActiveAlumni,
		PendingInvitations: s.PendingInvitations,
		TotalPosts:         s.TotalPosts,
		AlumniByDepartment: s.AlumniByDepartment,
		AlumniByBatch:      s.AlumniByBatch,
	})
}

// HandleListInvitations godoc
//
//	@Summary	List all invitations
//	@Tags		Super Admin
//	@Produce	json
//	@Success	200	{object}	membersdk.InvitationListResponse
//	@Security	BearerAuth
//	@Router		/v1/super-admin/invitations [get].
func (h *SuperAdminHandler) HandleListInvitations(w http.ResponseWriter, r *http.Request) {
	list, err := h.AdminService.ListInvitations(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "failed to list invitations")
		return
	}

	out := membersdk.InvitationListResponse{Invitations: make([]membersdk.InvitationResponse, 0, len(list))}
	for _, v := range list {
		out.Invitations = append(out.Invitations, toInvitationResponse(v.Invitation, v.Status))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}
