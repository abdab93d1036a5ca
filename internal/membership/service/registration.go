package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/alumnet/internal/membership/domain"
	"github.com/aussiebroadwan/alumnet/internal/membership/mailer"
	"github.com/aussiebroadwan/alumnet/internal/membership/store"
	"github.com/aussiebroadwan/alumnet/pkg/cryptox"
	"github.com/aussiebroadwan/alumnet/pkg/idx"
	"github.com/aussiebroadwan/alumnet/pkg/otelx"
	"github.com/aussiebroadwan/alumnet/pkg/slogx"
	"github.com/jonboulle/clockwork"
)

// RegistrationRequest is what an invitee submits to create their account.
type RegistrationRequest struct {
	Name       string `validate:"required,min=2,max=100"`
	Email      string `validate:"required,email"`
	Password   string `validate:"required,min=6,password"`
	Batch      string `validate:"required,batch"`
	Department string `validate:"required"`
	Occupation string `validate:"required"`
}

func (r *RegistrationRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = domain.NormalizeEmail(r.Email)
	r.Batch = strings.TrimSpace(r.Batch)
	r.Department = strings.TrimSpace(r.Department)
	r.Occupation = strings.TrimSpace(r.Occupation)
}

type RegistrationService struct {
	Store     store.Store
	Tokens    *TokenService
	Mailer    mailer.Sender
	Templates *mailer.Templates
	Clock     clockwork.Clock

	// DispatchTimeout bounds the welcome email so a stalled mailer cannot
	// hold up a registration that has already committed.
	DispatchTimeout time.Duration
}

// VerifyInvitation reports the email an invitation secret was issued for.
// It has no side effects.
func (s *RegistrationService) VerifyInvitation(ctx context.Context, secret string) (string, error) {
	ctx, span := tracer.Start(ctx, "RegistrationService.VerifyInvitation")
	defer span.End()

	inv, err := s.redeemable(ctx, secret)
	if err != nil {
		otelx.RecordError(span, err)
		return "", err
	}
	return inv.Email, nil
}

func (s *RegistrationService) redeemable(ctx context.Context, secret string) (domain.Invitation, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return domain.Invitation{}, ErrInvalidOrExpiredInvitation
	}

	inv, err := s.Store.Invitations().GetInvitationByTokenHash(ctx, cryptox.Digest(secret))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Invitation{}, ErrInvalidOrExpiredInvitation
		}
		slogx.FromContext(ctx).Error("failed to fetch invitation", slog.Any("error", err))
		return domain.Invitation{}, err
	}

	if !inv.IsRedeemable(s.Clock.Now()) {
		return domain.Invitation{}, ErrInvalidOrExpiredInvitation
	}
	return inv, nil
}

// CompleteRegistration redeems an invitation and creates the alumni account.
// Consuming the invitation and inserting the alumni happen in one
// transaction so a secret can create at most one account.
func (s *RegistrationService) CompleteRegistration(ctx context.Context, secret string, req RegistrationRequest) (Session, error) {
	ctx, span := tracer.Start(ctx, "RegistrationService.CompleteRegistration")
	defer span.End()

	sess, err := s.completeRegistration(ctx, secret, req)
	otelx.RecordError(span, err)
	return sess, err
}

func (s *RegistrationService) completeRegistration(ctx context.Context, secret string, req RegistrationRequest) (Session, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate input
	req.normalize()
	if err := validateStruct(ErrInvalidRegistration, req); err != nil {
		return Session{}, err
	}

	// 2. Resolve the invitation
	inv, err := s.redeemable(ctx, secret)
	if err != nil {
		log.Warn("registration attempted with invalid or expired invitation")
		return Session{}, err
	}

	// 3. The invitee must register the invited address
	if !strings.EqualFold(req.Email, inv.Email) {
		log.Warn("registration email does not match invitation", slog.String("invitation_id", inv.ID))
		return Session{}, ErrEmailMismatch
	}

	// 4. Already registered
	if _, err := s.Store.Alumni().GetAlumniByEmail(ctx, inv.Email); err == nil {
		return Session{}, ErrDuplicateRecipient
	} else if !errors.Is(err, store.ErrNotFound) {
		log.Error("failed to check alumni", slog.Any("error", err))
		return Session{}, err
	}

	// 5. Hash before the transaction so it stays short
	hash, err := cryptox.HashPassword(req.Password)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return Session{}, err
	}

	now := s.Clock.Now()
	alumni := domain.Alumni{
		ID:              idx.NewAt(now).String(),
		Name:            req.Name,
		Email:           inv.Email,
		PasswordHash:    hash,
		Batch:           req.Batch,
		Department:      req.Department,
		Occupation:      req.Occupation,
		IsEmailVerified: true,
		IsActive:        true,
		InvitedBy:       inv.CreatedBy,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	// 6. Consume and create atomically
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Invitations().ConsumeInvitation(ctx, inv.ID, now); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidOrExpiredInvitation
			}
			return err
		}
		if err := tx.Alumni().CreateAlumni(ctx, alumni); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrDuplicateRecipient
			}
			return err
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrInvalidOrExpiredInvitation) && !errors.Is(err, ErrDuplicateRecipient) {
			log.Error("failed to complete registration",
				slog.String("invitation_id", inv.ID),
				slog.Any("error", err),
			)
		}
		return Session{}, err
	}

	log.Info("alumni registered",
		slog.String("alumni_id", alumni.ID),
		slog.String("invitation_id", inv.ID),
		slog.String("invited_by", inv.CreatedBy.ID),
	)

	// 7. Welcome mail is best effort
	s.sendWelcome(ctx, alumni)

	token, exp, err := s.Tokens.issue(ctx, alumni.Ref())
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, ExpiresAt: exp, Principal: alumni.Public()}, nil
}

func (s *RegistrationService) sendWelcome(ctx context.Context, a domain.Alumni) {
	if s.Mailer == nil || s.Templates == nil {
		return
	}
	log := slogx.FromContext(ctx)

	msg, err := s.Templates.Welcome(a.Email, a.Name)
	if err != nil {
		log.Warn("failed to render welcome email", slog.Any("error", err))
		return
	}
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.dispatchTimeout())
	defer cancel()

	if d := s.Mailer.Send(sendCtx, msg); !d.Delivered {
		log.Warn("welcome email not delivered",
			slog.String("alumni_id", a.ID),
			slog.Any("error", d.Err),
		)
	}
}

func (s *RegistrationService) dispatchTimeout() time.Duration {
	if s.DispatchTimeout <= 0 {
		return defaultDispatchTimeout
	}
	return s.DispatchTimeout
}
