package http

import (
	"net/http"

	"github.com/aussiebroadwan/alumnet/internal/membership/domain"
	"github.com/aussiebroadwan/alumnet/internal/membership/service"
	"github.com/aussiebroadwan/alumnet/pkg/httpx"
	"github.com/aussiebroadwan/alumnet/pkg/membersdk"
	"github.com/aussiebroadwan/alumnet/pkg/slogx"
)

type BootstrapHandler struct {
	BootstrapService *service.BootstrapService
}

// ServeHTTP handles the bootstrap endpoint for initial system setup.
//
//	@Summary		Bootstrap the membership service
//	@Description	Creates the first super admin. Only available when a bootstrap token is configured, and only once.
//	@Tags			Bootstrap
//	@Accept			json
//	@Produce		json
//	@Param			X-Bootstrap-Token	header		string						true	"Bootstrap token"
//	@Param			request				body		membersdk.BootstrapRequest	true	"Super admin account"
//	@Success		201					{object}	membersdk.BootstrapResponse
//	@Failure		400					{object}	membersdk.ErrorResponse	"invalid request body"
//	@Failure		401					{object}	membersdk.ErrorResponse	"missing or invalid token, or already bootstrapped"
//	@Failure		404					{object}	membersdk.ErrorResponse	"bootstrap not enabled"
//	@Router			/v1/bootstrap [post].
func (h *BootstrapHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	slogx.FromContext(r.Context()).Info("bootstrap requested")

	// 1. Check if enabled
	if h.BootstrapService.Token == "" {
		membersdk.NewAPIError(http.StatusNotFound, membersdk.ErrorCodeNotFound, "bootstrap endpoint is not enabled").WriteError(w)
		return
	}

	// 2. Require bootstrap token header
	token := r.Header.Get("X-Bootstrap-Token")
	if token == "" {
		membersdk.NewAPIError(http.StatusUnauthorized, membersdk.ErrorCodeUnauthorized,
			"bootstrap token is required in X-Bootstrap-Token header").WriteError(w)
		return
	}

	// 3. Parse request body
	var req membersdk.BootstrapRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	// 4. Perform bootstrap
	sa, err := h.BootstrapService.Bootstrap(r.Context(), token, domain.BootstrapData{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(w, r, err, "failed to bootstrap")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, membersdk.BootstrapResponse{SuperAdminID: sa.ID})
}
