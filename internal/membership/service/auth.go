package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/aussiebroadwan/alumnet/internal/membership/domain"
	"github.com/aussiebroadwan/alumnet/internal/membership/store"
	"github.com/aussiebroadwan/alumnet/pkg/cryptox"
	"github.com/aussiebroadwan/alumnet/pkg/otelx"
	"github.com/aussiebroadwan/alumnet/pkg/slogx"
	"go.opentelemetry.io/otel/attribute"
)

// Session is what a successful login or registration hands back.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Principal domain.PublicPrincipal
}

type AuthService struct {
	Store  store.Store
	Tokens *TokenService
}

// Login authenticates email and password across the three principal kinds.
//
// Lookup order is super admin, then usable admin, then active alumni; the
// first email match is the only candidate even if its password is wrong.
// Unknown email and wrong password both return ErrInvalidCredentials after
// one password-hash evaluation.
func (s *AuthService) Login(ctx context.Context, email, password string) (Session, error) {
	ctx, span := tracer.Start(ctx, "AuthService.Login")
	defer span.End()
	log := slogx.FromContext(ctx)

	candidate, err := s.findCandidate(ctx, domain.NormalizeEmail(email))
	if err != nil {
		otelx.RecordError(span, err)
		log.Error("failed to look up login candidate", slog.Any("error", err))
		return Session{}, err
	}

	if candidate == nil {
		burnPasswordCheck(password)
		log.Info("login failed")
		return Session{}, ErrInvalidCredentials
	}

	if !candidate.MatchPassword(password) {
		log.Info("login failed", slog.String("role", candidate.Ref().Role.String()))
		return Session{}, ErrInvalidCredentials
	}

	ref := candidate.Ref()
	token, exp, err := s.Tokens.issue(ctx, ref)
	if err != nil {
		otelx.RecordError(span, err)
		return Session{}, err
	}

	span.SetAttributes(attribute.String("principal.role", ref.Role.String()))
	log.Info("login succeeded",
		slog.String("role", ref.Role.String()),
		slog.String("principal_id", ref.ID),
	)
	return Session{Token: token, ExpiresAt: exp, Principal: candidate.Public()}, nil
}

func (s *AuthService) findCandidate(ctx context.Context, email string) (domain.Principal, error) {
	if email == "" {
		return nil, nil
	}

	sa, err := s.Store.SuperAdmins().GetSuperAdminByEmail(ctx, email)
	switch {
	case err == nil:
		return &sa, nil
	case !errors.Is(err, store.ErrNotFound):
		return nil, err
	}

	admin, err := s.Store.Admins().GetAdminByEmail(ctx, email)
	switch {
	case err == nil && admin.Usable():
		return &admin, nil
	case err != nil && !errors.Is(err, store.ErrNotFound):
		return nil, err
	}

	alumni, err := s.Store.Alumni().GetAlumniByEmail(ctx, email)
	switch {
	case err == nil && alumni.IsActive:
		return &alumni, nil
	case err != nil && !errors.Is(err, store.ErrNotFound):
		return nil, err
	}

	return nil, nil
}

// Authenticate resolves a bearer token to a live principal.
func (s *AuthService) Authenticate(ctx context.Context, token string) (domain.Principal, error) {
	if token == "" {
		return nil, ErrNoToken
	}

	ref, err := s.Tokens.VerifySessionCredential(ctx, token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return s.ResolvePrincipal(ctx, ref)
}

// ResolvePrincipal loads the principal behind ref. Deactivated or deleted
// accounts do not resolve.
func (s *AuthService) ResolvePrincipal(ctx context.Context, ref domain.PrincipalRef) (domain.Principal, error) {
	var (
		p   domain.Principal
		err error
	)

	switch ref.Role {
	case domain.RoleSuperAdmin:
		var sa domain.SuperAdmin
		if sa, err = s.Store.SuperAdmins().GetSuperAdminByID(ctx, ref.ID); err == nil {
			p = &sa
		}
	case domain.RoleAdmin:
		var a domain.Admin
		if a, err = s.Store.Admins().GetAdminByID(ctx, ref.ID); err == nil && a.Usable() {
			p = &a
		}
	case domain.RoleAlumni:
		var a domain.Alumni
		if a, err = s.Store.Alumni().GetAlumniByID(ctx, ref.ID); err == nil && a.IsActive {
			p = &a
		}
	default:
		return nil, ErrPrincipalNotFound
	}

	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	if p == nil {
		return nil, ErrPrincipalNotFound
	}
	return p, nil
}

// Authorize reports ErrForbidden unless p holds one of roles. An empty
// roles list admits every principal.
func Authorize(p domain.Principal, roles ...domain.Role) error {
	if p == nil {
		return ErrPrincipalNotFound
	}
	if len(roles) == 0 || slices.Contains(roles, p.Ref().Role) {
		return nil
	}
	return ErrForbidden
}

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// burnPasswordCheck spends one hash verification so an unknown email costs
// the same as a wrong password.
func burnPasswordCheck(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = cryptox.HashPassword(cryptox.MustIssueOpaqueSecret())
	})
	_ = cryptox.VerifyPassword(password, dummyHash)
}
