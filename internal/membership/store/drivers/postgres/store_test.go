package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aussiebroadwan/alumnet/internal/membership/domain"
	"github.com/aussiebroadwan/alumnet/internal/membership/store"
	"github.com/aussiebroadwan/alumnet/internal/membership/store/drivers/sqldb"
	"github.com/aussiebroadwan/alumnet/pkg/idx"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupPostgres starts a throwaway PostgreSQL container and returns a
// migrated store connected to it.
func setupPostgres(t *testing.T) *sqldb.Store {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}

	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "alumnet",
			"POSTGRES_PASSWORD": "alumnet",
			"POSTGRES_DB":       "alumnet",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		).WithDeadline(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://alumnet:alumnet@%s:%s/alumnet?sslmode=disable", host, port.Port())
	s, err := NewStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func TestPostgresInvitationLifecycle(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	inv := domain.Invitation{
		ID:        idx.New().String(),
		Email:     "pg@example.edu",
		TokenHash: idx.New().String(),
		CreatedBy: domain.PrincipalRef{Role: domain.RoleSuperAdmin, ID: "root"},
		ExpiresAt: now.Add(domain.DefaultInvitationTTL),
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, s.Invitations().CreateInvitation(ctx, inv))

	dup := inv
	dup.ID = idx.New().String()
	dup.TokenHash = idx.New().String()
	require.ErrorIs(t, s.Invitations().CreateInvitation(ctx, dup), store.ErrAlreadyExists)

	err := s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Invitations().ConsumeInvitation(ctx, inv.ID, now.Add(time.Minute)); err != nil {
			return err
		}
		return tx.Alumni().CreateAlumni(ctx, domain.Alumni{
			ID:              idx.New().String(),
			Name:            "Postgres Alumni",
			Email:           inv.Email,
			PasswordHash:    "hash",
			Batch:           "2020",
			IsEmailVerified: true,
			IsActive:        true,
			InvitedBy:       inv.CreatedBy,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
	})
	require.NoError(t, err)

	require.ErrorIs(t, s.Invitations().ConsumeInvitation(ctx, inv.ID, now.Add(time.Minute)), store.ErrNotFound)

	got, err := s.Alumni().GetAlumniByEmail(ctx, inv.Email)
	require.NoError(t, err)
	require.Equal(t, domain.RoleSuperAdmin, got.InvitedBy.Role)
	require.True(t, got.IsEmailVerified)

	byBatch, err := s.Alumni().CountAlumniByBatch(ctx)
	require.NoError(t, err)
	require.Equal(t, map[string]int{"2020": 1}, byBatch)
}
