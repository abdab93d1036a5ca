package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"strings"

	"github.com/aussiebroadwan/alumnet/internal/membership/domain"
	"github.com/aussiebroadwan/alumnet/internal/membership/store"
	"github.com/aussiebroadwan/alumnet/pkg/cryptox"
	"github.com/aussiebroadwan/alumnet/pkg/idx"
	"github.com/aussiebroadwan/alumnet/pkg/slogx"
	"github.com/jonboulle/clockwork"
)

var (
	ErrBootstrapAlready      = errors.New("system already bootstrapped")
	ErrBootstrapUnauthorized = errors.New("unauthorized bootstrap attempt")
)

type bootstrapInput struct {
	Name     string `validate:"required,min=2,max=100"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6,password"`
}

type BootstrapService struct {
	Store store.Store
	Clock clockwork.Clock
	Token string // Pre-configured bootstrap token; empty disables bootstrap
}

func (s *BootstrapService) IsBootstrapped(ctx context.Context) (bool, error) {
	empty, err := s.Store.SuperAdmins().IsEmpty(ctx)
	if err != nil {
		return false, err
	}
	return !empty, nil
}

// Bootstrap creates the first super admin. It only succeeds once, and only
// with the configured bootstrap token.
func (s *BootstrapService) Bootstrap(ctx context.Context, token string, req domain.BootstrapData) (domain.SuperAdmin, error) {
	l := slogx.FromContext(ctx)

	// 1. Check if already bootstrapped
	if bootstrapped, err := s.IsBootstrapped(ctx); err != nil {
		return domain.SuperAdmin{}, err
	} else if bootstrapped {
		l.Warn("attempted bootstrap on already-bootstrapped system")
		return domain.SuperAdmin{}, ErrBootstrapAlready
	}

	// 2. Validate provided token
	if s.Token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(s.Token)) != 1 {
		l.Warn("unauthorized bootstrap attempt")
		return domain.SuperAdmin{}, ErrBootstrapUnauthorized
	}

	in := bootstrapInput{
		Name:     strings.TrimSpace(req.Name),
		Email:    domain.NormalizeEmail(req.Email),
		Password: req.Password,
	}
	if err := validateStruct(ErrInvalidRequest, in); err != nil {
		return domain.SuperAdmin{}, err
	}

	// 3. Hash password
	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		l.Error("failed to hash super admin password", slog.Any("error", err))
		return domain.SuperAdmin{}, err
	}

	now := s.Clock.Now()
	sa := domain.SuperAdmin{
		ID:           idx.NewAt(now).String(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// 4. Re-check inside the transaction before creating the account
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		empty, err := tx.SuperAdmins().IsEmpty(ctx)
		if err != nil {
			return err
		}
		if !empty {
			return ErrBootstrapAlready
		}
		return tx.SuperAdmins().CreateSuperAdmin(ctx, sa)
	})
	if err != nil {
		if !errors.Is(err, ErrBootstrapAlready) {
			l.Error("failed to create super admin", slog.Any("error", err))
		}
		return domain.SuperAdmin{}, err
	}

	l.Info("successfully bootstrapped system", slog.String("super_admin_id", sa.ID))
	return sa, nil
}
