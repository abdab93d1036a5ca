package http

import (
	"net/http"

	"github.com/aussiebroadwan/alumnet/internal/membership/service"
	"github.com/aussiebroadwan/alumnet/pkg/httpx"
	"github.com/aussiebroadwan/alumnet/pkg/membersdk"
)

type AuthHandler struct {
	AuthService         *service.AuthService
	RegistrationService *service.RegistrationService
}

// HandleLogin godoc
//
//	@Summary		Log in
//	@Description	Authenticates a super admin, admin or alumni by email and password and returns a session token.
//	@Description	Unknown email and wrong password produce the same response.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		membersdk.LoginRequest		true	"Credentials"
//	@Success		200		{object}	membersdk.SessionResponse
//	@Failure		400		{object}	membersdk.ErrorResponse
//	@Failure		401		{object}	membersdk.ErrorResponse
//	@Failure		429		{object}	membersdk.ErrorResponse
//	@Router			/v1/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req membersdk.LoginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if req.Email == "" || req.Password == "" {
		writeBadRequest(w, "email and password are required")
		return
	}

	sess, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err, "failed to log in")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toSessionResponse(sess))
}

// HandleVerifyInvitation godoc
//
//	@Summary		Verify an invitation
//	@Description	Reports the email an invitation was issued for. Has no side effects.
//	@Tags			Auth
//	@Produce		json
//	@Param			token	path		string	true	"Invitation secret from the registration link"
//	@Success		200		{object}	membersdk.VerifyInvitationResponse
//	@Failure		400		{object}	membersdk.ErrorResponse	"invalid or expired invitation"
//	@Router			/v1/auth/invitations/{token} [get].
func (h *AuthHandler) HandleVerifyInvitation(w http.ResponseWriter, r *http.Request) {
	email, err := h.RegistrationService.VerifyInvitation(r.Context(), r.PathValue("token"))
	if err != nil {
		writeServiceError(w, r, err, "failed to verify invitation")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, membersdk.VerifyInvitationResponse{Email: email})
}

// HandleRegister godoc
//
//	@Summary		Complete registration
//	@Description	Redeems an invitation, creates the alumni account and returns a session token.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			token	path		string						true	"Invitation secret from the registration link"
//	@Param			request	body		membersdk.RegisterRequest	true	"Registration details"
//	@Success		201		{object}	membersdk.SessionResponse
//	@Failure		400		{object}	membersdk.ErrorResponse
//	@Failure		409		{object}	membersdk.ErrorResponse	"already registered"
//	@Router			/v1/auth/register/{token} [post].
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req membersdk.RegisterRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	sess, err := h.RegistrationService.CompleteRegistration(r.Context(), r.PathValue("token"), service.RegistrationRequest{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Batch:      req.Batch,
		Department: req.Department,
		Occupation: req.Occupation,
	})
	if err != nil {
		writeServiceError(w, r, err, "failed to complete registration")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toSessionResponse(sess))
}

// HandleMe godoc
//
//	@Summary		Current principal
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	membersdk.PrincipalResponse
//	@Failure		401	{object}	membersdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/me [get].
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	p := PrincipalFromContext(r.Context())
	httpx.WriteJSON(w, http.StatusOK, toPrincipalResponse(p.Public()))
}
