package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/aussiebroadwan/alumnet/internal/membership/domain"
	"github.com/aussiebroadwan/alumnet/internal/membership/service"
	"github.com/aussiebroadwan/alumnet/pkg/httpx"
	"github.com/aussiebroadwan/alumnet/pkg/membersdk"
	"github.com/aussiebroadwan/alumnet/pkg/slogx"
)

type principalKey struct{}

// PrincipalFromContext returns the principal Guard attached, or nil.
func PrincipalFromContext(ctx context.Context) domain.Principal {
	p, _ := ctx.Value(principalKey{}).(domain.Principal)
	return p
}

// Guard authenticates the bearer token, re-resolves the principal and
// rejects roles outside the allow-list. An empty list admits any role.
func Guard(auth *service.AuthService, roles ...domain.Role) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token, _ := httpx.BearerToken(r)

			p, err := auth.Authenticate(ctx, token)
			if err == nil {
				err = service.Authorize(p, roles...)
			}
			if err != nil {
				writeGuardError(w, r, err)
				return
			}

			ref := p.Ref()
			ctx = httpx.WithIdentity(ctx, ref.ID, ref.Role.String())
			ctx = slogx.With(ctx, "principal_id", ref.ID, "role", ref.Role.String())
			ctx = context.WithValue(ctx, principalKey{}, p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeGuardError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrForbidden):
		httpx.WriteBearerError(w, http.StatusForbidden, membersdk.ErrorCodeForbidden, membersdk.ErrForbidden.Description)
	case errors.Is(err, service.ErrNoToken):
		httpx.WriteBearerChallenge(w, membersdk.ErrorCodeMissingToken, membersdk.ErrMissingToken.Description)
	case errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrPrincipalNotFound):
		httpx.WriteBearerError(w, http.StatusUnauthorized, membersdk.ErrorCodeInvalidToken, membersdk.ErrInvalidToken.Description)
	default:
		slogx.FromContext(r.Context()).Error("failed to authenticate request", "error", err)
		membersdk.ErrServerError.WriteError(w)
	}
}
