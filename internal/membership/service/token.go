package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/alumnet/internal/membership/domain"
	"github.com/aussiebroadwan/alumnet/pkg/jwtx"
	"github.com/aussiebroadwan/alumnet/pkg/slogx"
	"github.com/jonboulle/clockwork"
)

// TokenService issues and verifies session credentials. Credentials are
// stateless HS256 JWTs; nothing is persisted.
type TokenService struct {
	Signer   jwtx.Signer
	Verifier jwtx.Verifier
	Issuer   string
	TTL      time.Duration
	Clock    clockwork.Clock
}

// NewTokenService builds a TokenService signing with secret. The secret
// must be at least jwtx.MinSecretLength bytes.
func NewTokenService(secret []byte, issuer string, ttl time.Duration, clock clockwork.Clock) (*TokenService, error) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if ttl <= 0 {
		ttl = jwtx.DefaultSessionTTL
	}

	signer, err := jwtx.NewSignerHS256(secret)
	if err != nil {
		return nil, err
	}
	verifier, err := jwtx.NewVerifierHS256(secret, issuer, clock.Now)
	if err != nil {
		return nil, err
	}

	return &TokenService{
		Signer:   signer,
		Verifier: verifier,
		Issuer:   issuer,
		TTL:      ttl,
		Clock:    clock,
	}, nil
}

// IssueSessionCredential signs a credential for ref.
func (s *TokenService) IssueSessionCredential(ctx context.Context, ref domain.PrincipalRef) (string, error) {
	token, _, err := s.issue(ctx, ref)
	return token, err
}

func (s *TokenService) issue(ctx context.Context, ref domain.PrincipalRef) (string, time.Time, error) {
	if s.Signer == nil || s.Signer.Validate() != nil {
		slogx.FromContext(ctx).Error("session signer is not configured")
		return "", time.Time{}, ErrSigning
	}
	if !ref.Role.Valid() || ref.ID == "" {
		return "", time.Time{}, ErrSigning
	}

	now := s.Clock.Now()
	claims := jwtx.NewSessionClaims(ref.ID, ref.Role.String(), s.Issuer, s.TTL, now)

	token, err := s.Signer.Sign(claims)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to sign session credential", slog.Any("error", err))
		return "", time.Time{}, errors.Join(ErrSigning, err)
	}
	return token, claims.ExpiresAt.Time, nil
}

// VerifySessionCredential checks signature, issuer and expiry and returns the
// principal reference the token was issued for. Every failure is reported
// as ErrInvalidToken.
func (s *TokenService) VerifySessionCredential(ctx context.Context, token string) (domain.PrincipalRef, error) {
	if s.Verifier == nil || token == "" {
		return domain.PrincipalRef{}, ErrInvalidToken
	}

	claims, err := s.Verifier.Verify(token)
	if err != nil {
		slogx.FromContext(ctx).Debug("session credential rejected", slog.Any("error", err))
		return domain.PrincipalRef{}, ErrInvalidToken
	}

	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return domain.PrincipalRef{}, ErrInvalidToken
	}
	return domain.PrincipalRef{Role: role, ID: claims.Subject}, nil
}
