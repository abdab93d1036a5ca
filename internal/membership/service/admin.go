package service

import (
	"context"
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

type CreateAdminRequest struct {
	Name       string `validate:"required,min=2,max=100"`
	Email      string `validate:"required,email"`
	Password   string `validate:"required,min=6,password"`
	Department string `validate:"required"`
}

// UpdateAdminRequest changes the given fields; nil leaves a field as is.
// Password, role and creator can never be changed here.
type UpdateAdminRequest struct {
	Name       *string `validate:"omitnil,min=2,max=100"`
	Email      *string `validate:"omitnil,email"`
	Department *string `validate:"omitnil,min=1"`
	IsActive   *bool
}

// InvitationView is an invitation with its status resolved at read time.
type InvitationView struct {
	domain.Invitation
	Status domain.InvitationStatus
}

// AdminService holds the super-admin and admin management operations.
type AdminService struct {
	Store store.Store
	Clock clockwork.Clock
}

func (s *AdminService) CreateAdmin(ctx context.Context, caller domain.PrincipalRef, req CreateAdminRequest) (domain.Admin, error) {
	log := slogx.FromContext(ctx)

	req.Name = strings.TrimSpace(req.Name)
	req.Email = domain.NormalizeEmail(req.Email)
	req.Department = strings.TrimSpace(req.Department)
	if err := validateStruct(ErrInvalidRequest, req); err != nil {
		return domain.Admin{}, err
	}

	hash, err := cryptox.HashPassword(req.Password)
	if err != nil {
		log.Error("failed to hash admin password", slog.Any("error", err))
		return domain.Admin{}, err
	}

	now := s.Clock.Now()
	admin := domain.Admin{
		ID:           idx.NewAt(now).String(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Department:   req.Department,
		IsActive:     true,
		CreatedBy:    caller,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Store.Admins().CreateAdmin(ctx, admin); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Admin{}, ErrAdminAlreadyExists
		}
		log.Error("failed to create admin", slog.Any("error", err))
		return domain.Admin{}, err
	}

	log.Info("admin created",
		slog.String("admin_id", admin.ID),
		slog.String("created_by", caller.ID),
	)
	return admin, nil
}

func (s *AdminService) ListAdmins(ctx context.Context) ([]domain.Admin, error) {
	return s.Store.Admins().ListAdmins(ctx)
}

func (s *AdminService) UpdateAdmin(ctx context.Context, id string, req UpdateAdminRequest) (domain.Admin, error) {
	if err := validateStruct(ErrInvalidRequest, req); err != nil {
		return domain.Admin{}, err
	}

	admin, err := s.Store.Admins().GetAdminByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Admin{}, ErrAdminNotFound
		}
		return domain.Admin{}, err
	}
	if admin.DeletedAt != nil {
		return domain.Admin{}, ErrAdminNotFound
	}

	if req.Name != nil {
		admin.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		admin.Email = domain.NormalizeEmail(*req.Email)
	}
	if req.Department != nil {
		admin.Department = strings.TrimSpace(*req.Department)
	}
	if req.IsActive != nil {
		admin.IsActive = *req.IsActive
	}
	admin.UpdatedAt = s.Clock.Now()

	if err := s.Store.Admins().UpdateAdmin(ctx, admin); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return domain.Admin{}, ErrAdminNotFound
		case errors.Is(err, store.ErrAlreadyExists):
			return domain.Admin{}, ErrAdminAlreadyExists
		}
		return domain.Admin{}, err
	}

	slogx.FromContext(ctx).Info("admin updated", slog.String("admin_id", admin.ID))
	return admin, nil
}

// DeleteAdmin soft-deletes an admin; the row is kept for audit and the
// account can no longer sign in.
func (s *AdminService) DeleteAdmin(ctx context.Context, id string) error {
	if err := s.Store.Admins().SoftDeleteAdmin(ctx, id, s.Clock.Now()); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrAdminNotFound
		}
		return err
	}
	slogx.FromContext(ctx).Info("admin deleted", slog.String("admin_id", id))
	return nil
}

func (s *AdminService) Statistics(ctx context.Context) (domain.Statistics, error) {
	var (
		stats domain.Statistics
		err   error
	)

	if stats.TotalAdmins, err = s.Store.Admins().CountAdmins(ctx); err != nil {
		return domain.Statistics{}, err
	}
	if stats.TotalAlumni, stats.ActiveAlumni, err = s.Store.Alumni().CountAlumni(ctx); err != nil {
		return domain.Statistics{}, err
	}
	if stats.PendingInvitations, err = s.Store.Invitations().CountPendingInvitations(ctx, s.Clock.Now()); err != nil {
		return domain.Statistics{}, err
	}
	if stats.TotalPosts, err = s.Store.Posts().CountPosts(ctx); err != nil {
		return domain.Statistics{}, err
	}
	if stats.AlumniByDepartment, err = s.Store.Alumni().CountAlumniByDepartment(ctx); err != nil {
		return domain.Statistics{}, err
	}
	if stats.AlumniByBatch, err = s.Store.Alumni().CountAlumniByBatch(ctx); err != nil {
		return domain.Statistics{}, err
	}
	return stats, nil
}

// ListInvitations returns every invitation newest first.
func (s *AdminService) ListInvitations(ctx context.Context) ([]InvitationView, error) {
	invs, err := s.Store.Invitations().ListInvitations(ctx)
	if err != nil {
		return nil, err
	}

	now := s.Clock.Now()
	out := make([]InvitationView, 0, len(invs))
	for _, inv := range invs {
		out = append(out, InvitationView{Invitation: inv, Status: inv.Status(now)})
	}
	return out, nil
}

func (s *AdminService) ListAlumni(ctx context.Context, filter domain.AlumniFilter) ([]domain.Alumni, error) {
	filter.Department = strings.TrimSpace(filter.Department)
	filter.Batch = strings.TrimSpace(filter.Batch)
	return s.Store.Alumni().ListAlumni(ctx, filter)
}
