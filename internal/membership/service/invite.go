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
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

const (
	defaultDispatchTimeout = 10 * time.Second
	defaultBulkConcurrency = 4
)

type InviteService struct {
	Store     store.Store
	Mailer    mailer.Sender
	Templates *mailer.Templates
	Clock     clockwork.Clock

	// FrontendURL is the base of the registration link; the secret is
	// appended as /register/<secret>.
	FrontendURL string

	TTL             time.Duration
	DispatchTimeout time.Duration
	BulkConcurrency int
}

// BulkResult groups bulk invite outcomes. Each list keeps input order.
type BulkResult struct {
	Delivered     []string
	AlreadyExists []string
	Failed        []string
}

// Invite issues a single-use invitation for email and mails the
// registration link. The invitation is removed again when the email cannot
// be delivered.
func (s *InviteService) Invite(ctx context.Context, email string, issuer domain.PrincipalRef) (domain.Invitation, error) {
	ctx, span := tracer.Start(ctx, "InviteService.Invite")
	defer span.End()

	inv, err := s.invite(ctx, email, issuer)
	otelx.RecordError(span, err)
	return inv, err
}

func (s *InviteService) invite(ctx context.Context, email string, issuer domain.PrincipalRef) (domain.Invitation, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate the address
	email, err := domain.ParseEmail(email)
	if err != nil {
		return domain.Invitation{}, ErrInvalidEmail
	}
	now := s.Clock.Now()

	// 2. Already a member
	if _, err := s.Store.Alumni().GetAlumniByEmail(ctx, email); err == nil {
		log.Info("invite skipped for registered alumni", slog.String("email", email))
		return domain.Invitation{}, ErrDuplicateRecipient
	} else if !errors.Is(err, store.ErrNotFound) {
		log.Error("failed to check alumni", slog.Any("error", err))
		return domain.Invitation{}, err
	}

	// 3. Already invited
	if _, err := s.Store.Invitations().GetPendingInvitationByEmail(ctx, email, now); err == nil {
		log.Info("invite skipped, invitation pending", slog.String("email", email))
		return domain.Invitation{}, ErrInvitationAlreadyPending
	} else if !errors.Is(err, store.ErrNotFound) {
		log.Error("failed to check pending invitation", slog.Any("error", err))
		return domain.Invitation{}, err
	}

	// 4. Mint the secret; only its digest is stored
	secret, err := cryptox.IssueOpaqueSecret()
	if err != nil {
		log.Error("failed to generate invitation secret", slog.Any("error", err))
		return domain.Invitation{}, err
	}

	inv := domain.Invitation{
		ID:        idx.NewAt(now).String(),
		Email:     email,
		TokenHash: cryptox.Digest(secret),
		CreatedBy: issuer,
		ExpiresAt: now.Add(s.ttl()),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.Store.Invitations().CreateInvitation(ctx, inv); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			// Lost the race against a concurrent invite for the same email.
			return domain.Invitation{}, ErrInvitationAlreadyPending
		}
		log.Error("failed to create invitation", slog.Any("error", err))
		return domain.Invitation{}, err
	}

	// 5. Dispatch outside any transaction
	if err := s.dispatch(ctx, email, secret); err != nil {
		log.Warn("invitation email not delivered, withdrawing invitation",
			slog.String("invitation_id", inv.ID),
			slog.String("email", email),
			slog.Any("error", err),
		)

		cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.dispatchTimeout())
		defer cancel()
		if derr := s.Store.Invitations().DeleteInvitation(cleanupCtx, inv.ID); derr != nil && !errors.Is(derr, store.ErrNotFound) {
			log.Error("failed to withdraw undelivered invitation",
				slog.String("invitation_id", inv.ID),
				slog.Any("error", derr),
			)
		}
		return domain.Invitation{}, ErrDeliveryFailed
	}

	log.Info("invitation sent",
		slog.String("invitation_id", inv.ID),
		slog.String("email", email),
		slog.String("issuer_role", issuer.Role.String()),
		slog.String("issuer_id", issuer.ID),
		slog.Time("expires_at", inv.ExpiresAt),
	)
	return inv, nil
}

func (s *InviteService) dispatch(ctx context.Context, email, secret string) error {
	if s.Mailer == nil || s.Templates == nil {
		return errors.New("mailer not configured")
	}

	link := strings.TrimRight(s.FrontendURL, "/") + "/register/" + secret
	msg, err := s.Templates.Invitation(email, link, s.ttl())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.dispatchTimeout())
	defer cancel()

	d := s.Mailer.Send(ctx, msg)
	if !d.Delivered {
		if d.Err == nil {
			return errors.New("mail not delivered")
		}
		return d.Err
	}
	return nil
}

// BulkInvite invites every distinct address in emails with bounded
// concurrency and waits for all of them. It never fails as a whole; each
// address lands in exactly one bucket of the result.
func (s *InviteService) BulkInvite(ctx context.Context, emails []string, issuer domain.PrincipalRef) BulkResult {
	ctx, span := tracer.Start(ctx, "InviteService.BulkInvite")
	defer span.End()

	unique := dedupeEmails(emails)
	span.SetAttributes(attribute.Int("invite.count", len(unique)))

	type outcome int
	const (
		outcomeFailed outcome = iota
		outcomeDelivered
		outcomeExists
	)
	outcomes := make([]outcome, len(unique))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.bulkConcurrency())
	for i, email := range unique {
		g.Go(func() error {
			_, err := s.invite(gctx, email, issuer)
			switch {
			case err == nil:
				outcomes[i] = outcomeDelivered
			case errors.Is(err, ErrDuplicateRecipient), errors.Is(err, ErrInvitationAlreadyPending):
				outcomes[i] = outcomeExists
			default:
				outcomes[i] = outcomeFailed
			}
			// Per-address failures never cancel the rest of the batch.
			return nil
		})
	}
	_ = g.Wait()

	var res BulkResult
	for i, email := range unique {
		switch outcomes[i] {
		case outcomeDelivered:
			res.Delivered = append(res.Delivered, email)
		case outcomeExists:
			res.AlreadyExists = append(res.AlreadyExists, email)
		default:
			res.Failed = append(res.Failed, email)
		}
	}

	slogx.FromContext(ctx).Info("bulk invite processed",
		slog.Int("delivered", len(res.Delivered)),
		slog.Int("already_exists", len(res.AlreadyExists)),
		slog.Int("failed", len(res.Failed)),
	)
	return res
}

// dedupeEmails normalises emails and drops blanks and repeats, keeping first
// occurrence order.
func dedupeEmails(emails []string) []string {
	seen := make(map[string]struct{}, len(emails))
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		key := domain.NormalizeEmail(e)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}

func (s *InviteService) ttl() time.Duration {
	if s.TTL <= 0 {
		return domain.DefaultInvitationTTL
	}
	return s.TTL
}

func (s *InviteService) dispatchTimeout() time.Duration {
	if s.DispatchTimeout <= 0 {
		return defaultDispatchTimeout
	}
	return s.DispatchTimeout
}

func (s *InviteService) bulkConcurrency() int {
	if s.BulkConcurrency <= 0 {
		return defaultBulkConcurrency
	}
	return s.BulkConcurrency
}
