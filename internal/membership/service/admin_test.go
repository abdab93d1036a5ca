package service

import (
	"context"
	"testing"

	"github.com/aussiebroadwan/alumnet/internal/membership/domain"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestAdminLifecycle(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sa := h.seedSuperAdmin(t)

	a, err := h.admins.CreateAdmin(ctx, sa.Ref(), CreateAdminRequest{
		Name: " Ada ", Email: "Ada@Example.edu", Password: strongPassword, Department: "EEE",
	})
	require.NoError(t, err)
	require.Equal(t, "Ada", a.Name)
	require.Equal(t, "ada@example.edu", a.Email)
	require.Equal(t, sa.Ref(), a.CreatedBy)
	require.True(t, a.IsActive)

	_, err = h.admins.CreateAdmin(ctx, sa.Ref(), CreateAdminRequest{
		Name: "Ada Again", Email: "ada@example.edu", Password: strongPassword, Department: "EEE",
	})
	require.ErrorIs(t, err, ErrAdminAlreadyExists)

	updated, err := h.admins.UpdateAdmin(ctx, a.ID, UpdateAdminRequest{Department: ptr("CSE"), IsActive: ptr(false)})
	require.NoError(t, err)
	require.Equal(t, "CSE", updated.Department)
	require.False(t, updated.IsActive)
	require.Equal(t, "Ada", updated.Name)

	// An inactive admin cannot sign in.
	_, err = h.auth.Login(ctx, "ada@example.edu", strongPassword)
	require.ErrorIs(t, err, ErrInvalidCredentials)

	list, err := h.admins.ListAdmins(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, h.admins.DeleteAdmin(ctx, a.ID))
	require.ErrorIs(t, h.admins.DeleteAdmin(ctx, a.ID), ErrAdminNotFound)

	_, err = h.admins.UpdateAdmin(ctx, a.ID, UpdateAdminRequest{Name: ptr("Ghost")})
	require.ErrorIs(t, err, ErrAdminNotFound)

	list, err = h.admins.ListAdmins(ctx)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestCreateAdminValidation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	caller := domain.PrincipalRef{Role: domain.RoleSuperAdmin, ID: "root"}

	tests := []struct {
		name string
		req  CreateAdminRequest
	}{
		{"missing name", CreateAdminRequest{Email: "a@example.edu", Password: strongPassword, Department: "CSE"}},
		{"bad email", CreateAdminRequest{Name: "Ada", Email: "nope", Password: strongPassword, Department: "CSE"}},
		{"weak password", CreateAdminRequest{Name: "Ada", Email: "a@example.edu", Password: "abcdef", Department: "CSE"}},
		{"missing department", CreateAdminRequest{Name: "Ada", Email: "a@example.edu", Password: strongPassword}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.admins.CreateAdmin(ctx, caller, tt.req)
			require.ErrorIs(t, err, ErrInvalidRequest)
		})
	}
}

func TestStatisticsAndListings(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.seedAdmin(t, "one@example.edu")
	h.seedAdmin(t, "two@example.edu")

	for _, r := range []RegistrationRequest{
		{Name: "Alan", Email: "alan@example.edu", Password: strongPassword, Batch: "2019", Department: "CSE", Occupation: "Engineer"},
		{Name: "Barbara", Email: "barbara@example.edu", Password: strongPassword, Batch: "2019", Department: "EEE", Occupation: "Researcher"},
		{Name: "Carol", Email: "carol@example.edu", Password: strongPassword, Batch: "2020", Department: "CSE", Occupation: "Teacher"},
	} {
		secret := h.invite(t, r.Email)
		_, err := h.registration.CompleteRegistration(ctx, secret, r)
		require.NoError(t, err)
	}
	h.invite(t, "pending@example.edu")

	stats, err := h.admins.Statistics(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, stats.TotalAdmins)
	require.Equal(t, 3, stats.TotalAlumni)
	require.Equal(t, 3, stats.ActiveAlumni)
	require.Equal(t, 1, stats.PendingInvitations)
	require.Equal(t, map[string]int{"CSE": 2, "EEE": 1}, stats.AlumniByDepartment)
	require.Equal(t, map[string]int{"2019": 2, "2020": 1}, stats.AlumniByBatch)

	cse, err := h.admins.ListAlumni(ctx, domain.AlumniFilter{Department: " CSE "})
	require.NoError(t, err)
	require.Len(t, cse, 2)
	require.Equal(t, "Alan", cse[0].Name)

	both, err := h.admins.ListAlumni(ctx, domain.AlumniFilter{Department: "CSE", Batch: "2020"})
	require.NoError(t, err)
	require.Len(t, both, 1)
	require.Equal(t, "Carol", both[0].Name)

	h.clock.Advance(domain.DefaultInvitationTTL)
	invs, err := h.admins.ListInvitations(ctx)
	require.NoError(t, err)
	require.Len(t, invs, 4)

	byStatus := map[domain.InvitationStatus]int{}
	for _, inv := range invs {
		byStatus[inv.Status]++
	}
	require.Equal(t, 3, byStatus[domain.InvitationUsed])
	require.Equal(t, 1, byStatus[domain.InvitationExpired])

	stats, err = h.admins.Statistics(ctx)
	require.NoError(t, err)
	require.Zero(t, stats.PendingInvitations)
}
