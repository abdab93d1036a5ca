package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/alumnet/internal/membership/domain"
	"github.com/aussiebroadwan/alumnet/internal/membership/mailer"
	"github.com/aussiebroadwan/alumnet/internal/membership/store"
	"github.com/aussiebroadwan/alumnet/internal/membership/store/drivers/sqlite"
	"github.com/aussiebroadwan/alumnet/pkg/cryptox"
	"github.com/aussiebroadwan/alumnet/pkg/idx"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

const (
	testSecret      = "test-session-secret-0123456789abcdef"
	testIssuer      = "alumnet-test"
	testFrontendURL = "https://alumni.example.edu"
	strongPassword  = "Passw0rd"
)

func TestMain(m *testing.M) {
	dir, _ := os.MkdirTemp("", "service-pepper")
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))
	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}

// harness wires every service over one in-memory store, a fake clock and a
// recording mailer.
type harness struct {
	store  store.Store
	clock  *clockwork.FakeClock
	mail   *mailer.RecordingSender
	tokens *TokenService

	auth         *AuthService
	invites      *InviteService
	registration *RegistrationService
	admins       *AdminService
	alumni       *AlumniService
	bootstrap    *BootstrapService
	feed         *FeedService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessAt(t, ":memory:")
}

// newHarnessAt is newHarness over the sqlite database at dsn.
func newHarnessAt(t *testing.T, dsn string) *harness {
	t.Helper()

	s, err := sqlite.NewStore(dsn)
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })

	clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	tokens, err := NewTokenService([]byte(testSecret), testIssuer, 0, clock)
	require.NoError(t, err)

	tpl, err := mailer.NewTemplates("")
	require.NoError(t, err)
	mail := &mailer.RecordingSender{}

	h := &harness{store: s, clock: clock, mail: mail, tokens: tokens}
	h.auth = &AuthService{Store: s, Tokens: tokens}
	h.invites = &InviteService{
		Store:           s,
		Mailer:          mail,
		Templates:       tpl,
		Clock:           clock,
		FrontendURL:     testFrontendURL,
		DispatchTimeout: time.Second,
	}
	h.registration = &RegistrationService{Store: s, Tokens: tokens, Mailer: mail, Templates: tpl, Clock: clock}
	h.admins = &AdminService{Store: s, Clock: clock}
	h.alumni = &AlumniService{Store: s, Clock: clock}
	h.bootstrap = &BootstrapService{Store: s, Clock: clock, Token: "bootstrap-token"}
	h.feed = &FeedService{Store: s, Clock: clock}
	return h
}

// seedSuperAdmin bootstraps the system and returns the super admin.
func (h *harness) seedSuperAdmin(t *testing.T) domain.SuperAdmin {
	t.Helper()
	sa, err := h.bootstrap.Bootstrap(context.Background(), "bootstrap-token", domain.BootstrapData{
		Name: "Root", Email: "root@example.edu", Password: strongPassword,
	})
	require.NoError(t, err)
	return sa
}

func (h *harness) seedAdmin(t *testing.T, email string) domain.Admin {
	t.Helper()
	a, err := h.admins.CreateAdmin(context.Background(), domain.PrincipalRef{Role: domain.RoleSuperAdmin, ID: "root"}, CreateAdminRequest{
		Name: "Admin", Email: email, Password: strongPassword, Department: "CSE",
	})
	require.NoError(t, err)
	return a
}

// lastSecret extracts the registration secret from the most recent invitation email.
func (h *harness) lastSecret(t *testing.T) string {
	t.Helper()
	sent := h.mail.Sent()
	require.NotEmpty(t, sent)
	html := sent[len(sent)-1].HTML

	marker := testFrontendURL + "/register/"
	i := strings.Index(html, marker)
	require.GreaterOrEqual(t, i, 0, "registration link not found")
	rest := html[i+len(marker):]
	return rest[:2*cryptox.SecretSize]
}

func (h *harness) invite(t *testing.T, email string) string {
	t.Helper()
	_, err := h.invites.Invite(context.Background(), email, domain.PrincipalRef{Role: domain.RoleAdmin, ID: "admin-1"})
	require.NoError(t, err)
	return h.lastSecret(t)
}

func registration(email string) RegistrationRequest {
	return RegistrationRequest{
		Name:       "Grace Hopper",
		Email:      email,
		Password:   strongPassword,
		Batch:      "2015-2019",
		Department: "CSE",
		Occupation: "Engineer",
	}
}

func TestLoginPerKind(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.seedSuperAdmin(t)
	h.seedAdmin(t, "admin@example.edu")
	secret := h.invite(t, "alumni@example.edu")
	_, err := h.registration.CompleteRegistration(ctx, secret, registration("alumni@example.edu"))
	require.NoError(t, err)

	tests := []struct {
		email string
		role  domain.Role
	}{
		{"root@example.edu", domain.RoleSuperAdmin},
		{"  ADMIN@example.edu ", domain.RoleAdmin},
		{"alumni@example.edu", domain.RoleAlumni},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			sess, err := h.auth.Login(ctx, tt.email, strongPassword)
			require.NoError(t, err)
			require.Equal(t, tt.role, sess.Principal.Role)
			require.True(t, sess.ExpiresAt.Equal(h.clock.Now().Add(7*24*time.Hour)))

			ref, err := h.tokens.VerifySessionCredential(ctx, sess.Token)
			require.NoError(t, err)
			require.Equal(t, tt.role, ref.Role)
			require.Equal(t, sess.Principal.ID, ref.ID)
		})
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.seedSuperAdmin(t)

	_, wrongPassword := h.auth.Login(ctx, "root@example.edu", "Wrong123")
	_, unknownEmail := h.auth.Login(ctx, "nobody@example.edu", "Wrong123")

	require.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	require.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	require.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestLoginSkipsDeletedAdmin(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	a := h.seedAdmin(t, "gone@example.edu")
	require.NoError(t, h.admins.DeleteAdmin(ctx, a.ID))

	_, err := h.auth.Login(ctx, "gone@example.edu", strongPassword)
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestInviteStoresOnlyDigest(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	inv, err := h.invites.Invite(ctx, "New@Example.edu", domain.PrincipalRef{Role: domain.RoleAdmin, ID: "admin-1"})
	require.NoError(t, err)
	require.Equal(t, "new@example.edu", inv.Email)
	require.True(t, inv.ExpiresAt.Equal(h.clock.Now().Add(domain.DefaultInvitationTTL)))

	secret := h.lastSecret(t)
	require.Len(t, secret, 64)
	require.NotEqual(t, secret, inv.TokenHash)
	require.Equal(t, cryptox.Digest(secret), inv.TokenHash)

	_, err = h.store.Invitations().GetInvitationByTokenHash(ctx, secret)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestInviteAlreadyPending(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	issuer := domain.PrincipalRef{Role: domain.RoleAdmin, ID: "admin-1"}

	_, err := h.invites.Invite(ctx, "x@example.edu", issuer)
	require.NoError(t, err)

	_, err = h.invites.Invite(ctx, "x@example.edu", issuer)
	require.ErrorIs(t, err, ErrInvitationAlreadyPending)

	all, err := h.store.Invitations().ListInvitations(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Len(t, h.mail.Sent(), 1)

	// After expiry a fresh invitation may be issued.
	h.clock.Advance(domain.DefaultInvitationTTL)
	_, err = h.invites.Invite(ctx, "x@example.edu", issuer)
	require.NoError(t, err)
}

func TestConcurrentInviteSameEmail(t *testing.T) {
	h := newHarnessAt(t, filepath.Join(t.TempDir(), "invites.db"))
	ctx := context.Background()
	issuer := domain.PrincipalRef{Role: domain.RoleAdmin, ID: "admin-1"}

	const callers = 16
	errs := make(chan error, callers)
	for range callers {
		go func() {
			_, err := h.invites.Invite(ctx, "race@example.edu", issuer)
			errs <- err
		}()
	}

	var ok, pending int
	for range callers {
		err := <-errs
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrInvitationAlreadyPending):
			pending++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(t, 1, ok)
	require.Equal(t, callers-1, pending)

	all, err := h.store.Invitations().ListInvitations(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Len(t, h.mail.Sent(), 1)
}

func TestInviteDeliveryFailureWithdrawsInvitation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.mail.Fail = func(mailer.Message) error { return errors.New("smtp down") }

	_, err := h.invites.Invite(ctx, "bounce@example.edu", domain.PrincipalRef{Role: domain.RoleAdmin, ID: "admin-1"})
	require.ErrorIs(t, err, ErrDeliveryFailed)

	_, err = h.store.Invitations().GetPendingInvitationByEmail(ctx, "bounce@example.edu", h.clock.Now())
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestInviteRejects(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	issuer := domain.PrincipalRef{Role: domain.RoleAdmin, ID: "admin-1"}

	_, err := h.invites.Invite(ctx, "not-an-email", issuer)
	require.ErrorIs(t, err, ErrInvalidEmail)

	secret := h.invite(t, "member@example.edu")
	_, err = h.registration.CompleteRegistration(ctx, secret, registration("member@example.edu"))
	require.NoError(t, err)

	_, err = h.invites.Invite(ctx, "member@example.edu", issuer)
	require.ErrorIs(t, err, ErrDuplicateRecipient)
}

func TestBulkInvite(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	issuer := domain.PrincipalRef{Role: domain.RoleAdmin, ID: "admin-1"}

	_, err := h.invites.Invite(ctx, "pending@example.edu", issuer)
	require.NoError(t, err)
	h.mail.Fail = func(m mailer.Message) error {
		if m.To == "bounce@example.edu" {
			return errors.New("mailbox full")
		}
		return nil
	}

	res := h.invites.BulkInvite(ctx, []string{
		"a@example.edu", "pending@example.edu", "bad-address", "B@example.edu",
		"a@example.edu", "bounce@example.edu", "", "c@example.edu",
	}, issuer)

	require.Equal(t, []string{"a@example.edu", "b@example.edu", "c@example.edu"}, res.Delivered)
	require.Equal(t, []string{"pending@example.edu"}, res.AlreadyExists)
	require.Equal(t, []string{"bad-address", "bounce@example.edu"}, res.Failed)
}

func TestVerifyInvitationIsIdempotent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	secret := h.invite(t, "v@example.edu")

	for range 3 {
		email, err := h.registration.VerifyInvitation(ctx, secret)
		require.NoError(t, err)
		require.Equal(t, "v@example.edu", email)
	}

	_, err := h.registration.VerifyInvitation(ctx, "deadbeef")
	require.ErrorIs(t, err, ErrInvalidOrExpiredInvitation)
}

func TestInvitationExpiryBoundary(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	secret := h.invite(t, "late@example.edu")

	h.clock.Advance(domain.DefaultInvitationTTL - time.Second)
	_, err := h.registration.VerifyInvitation(ctx, secret)
	require.NoError(t, err)

	h.clock.Advance(time.Second)
	_, err = h.registration.VerifyInvitation(ctx, secret)
	require.ErrorIs(t, err, ErrInvalidOrExpiredInvitation)

	_, err = h.registration.CompleteRegistration(ctx, secret, registration("late@example.edu"))
	require.ErrorIs(t, err, ErrInvalidOrExpiredInvitation)
}

func TestRegistrationScenario(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	secret := h.invite(t, "grace@example.edu")

	email, err := h.registration.VerifyInvitation(ctx, secret)
	require.NoError(t, err)
	require.Equal(t, "grace@example.edu", email)

	sess, err := h.registration.CompleteRegistration(ctx, secret, registration("GRACE@example.edu"))
	require.NoError(t, err)
	require.Equal(t, domain.RoleAlumni, sess.Principal.Role)
	require.NotEmpty(t, sess.Token)

	a, err := h.store.Alumni().GetAlumniByEmail(ctx, "grace@example.edu")
	require.NoError(t, err)
	require.True(t, a.IsEmailVerified)
	require.Equal(t, domain.PrincipalRef{Role: domain.RoleAdmin, ID: "admin-1"}, a.InvitedBy)
	require.NotEqual(t, strongPassword, a.PasswordHash)

	sent := h.mail.Sent()
	require.Equal(t, mailer.WelcomeSubject, sent[len(sent)-1].Subject)

	// Single use.
	_, err = h.registration.CompleteRegistration(ctx, secret, registration("grace@example.edu"))
	require.ErrorIs(t, err, ErrInvalidOrExpiredInvitation)
	_, err = h.registration.VerifyInvitation(ctx, secret)
	require.ErrorIs(t, err, ErrInvalidOrExpiredInvitation)
}

func TestRegistrationValidation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	secret := h.invite(t, "val@example.edu")

	tests := []struct {
		name   string
		mutate func(*RegistrationRequest)
		want   error
	}{
		{"short name", func(r *RegistrationRequest) { r.Name = "G" }, ErrInvalidRegistration},
		{"weak password", func(r *RegistrationRequest) { r.Password = "password" }, ErrInvalidRegistration},
		{"short password", func(r *RegistrationRequest) { r.Password = "Ab1" }, ErrInvalidRegistration},
		{"bad batch", func(r *RegistrationRequest) { r.Batch = "19" }, ErrInvalidRegistration},
		{"missing occupation", func(r *RegistrationRequest) { r.Occupation = " " }, ErrInvalidRegistration},
		{"email mismatch", func(r *RegistrationRequest) { r.Email = "other@example.edu" }, ErrEmailMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := registration("val@example.edu")
			tt.mutate(&req)
			_, err := h.registration.CompleteRegistration(ctx, secret, req)
			require.ErrorIs(t, err, tt.want)
		})
	}

	// Nothing above consumed the invitation.
	_, err := h.registration.VerifyInvitation(ctx, secret)
	require.NoError(t, err)
}

func TestConcurrentCompleteRegistration(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	secret := h.invite(t, "twice@example.edu")

	errs := make(chan error, 2)
	for range 2 {
		go func() {
			_, err := h.registration.CompleteRegistration(ctx, secret, registration("twice@example.edu"))
			errs <- err
		}()
	}

	var ok, failed int
	for range 2 {
		if err := <-errs; err == nil {
			ok++
		} else {
			require.True(t, errors.Is(err, ErrInvalidOrExpiredInvitation) || errors.Is(err, ErrDuplicateRecipient), err)
			failed++
		}
	}
	require.Equal(t, 1, ok)
	require.Equal(t, 1, failed)

	list, err := h.store.Alumni().ListAlumni(ctx, domain.AlumniFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
}

// stalledSender never delivers; it returns only once ctx is done.
type stalledSender struct{}

func (stalledSender) Send(ctx context.Context, _ mailer.Message) mailer.Delivery {
	<-ctx.Done()
	return mailer.Delivery{Err: ctx.Err()}
}

func TestStalledWelcomeEmailDoesNotBlockRegistration(t *testing.T) {
	h := newHarness(t)
	secret := h.invite(t, "slow@example.edu")

	h.registration.Mailer = stalledSender{}
	h.registration.DispatchTimeout = 50 * time.Millisecond

	type result struct {
		session Session
		err     error
	}
	done := make(chan result, 1)
	go func() {
		sess, err := h.registration.CompleteRegistration(context.Background(), secret, registration("slow@example.edu"))
		done <- result{sess, err}
	}()

	select {
	case res := <-done:
		require.NoError(t, res.err)
		require.NotEmpty(t, res.session.Token)
		require.Equal(t, "slow@example.edu", res.session.Principal.Email)
	case <-time.After(5 * time.Second):
		t.Fatal("registration blocked on the welcome email")
	}
}

func TestAuthenticateAndAuthorize(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	admin := h.seedAdmin(t, "guard@example.edu")
	token, err := h.tokens.IssueSessionCredential(ctx, admin.Ref())
	require.NoError(t, err)

	p, err := h.auth.Authenticate(ctx, token)
	require.NoError(t, err)
	require.NoError(t, Authorize(p, domain.RoleAdmin, domain.RoleSuperAdmin))
	require.ErrorIs(t, Authorize(p, domain.RoleAlumni), ErrForbidden)

	_, err = h.auth.Authenticate(ctx, "")
	require.ErrorIs(t, err, ErrNoToken)
	_, err = h.auth.Authenticate(ctx, token+"x")
	require.ErrorIs(t, err, ErrInvalidToken)

	// A valid token for a principal that no longer resolves.
	require.NoError(t, h.admins.DeleteAdmin(ctx, admin.ID))
	_, err = h.auth.Authenticate(ctx, token)
	require.ErrorIs(t, err, ErrPrincipalNotFound)

	ghost, err := h.tokens.IssueSessionCredential(ctx, domain.PrincipalRef{Role: domain.RoleAlumni, ID: idx.New().String()})
	require.NoError(t, err)
	_, err = h.auth.Authenticate(ctx, ghost)
	require.ErrorIs(t, err, ErrPrincipalNotFound)
}

func TestSessionCredentialExpiry(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	token, err := h.tokens.IssueSessionCredential(ctx, domain.PrincipalRef{Role: domain.RoleAlumni, ID: "a1"})
	require.NoError(t, err)

	h.clock.Advance(7*24*time.Hour - time.Second)
	_, err = h.tokens.VerifySessionCredential(ctx, token)
	require.NoError(t, err)

	h.clock.Advance(time.Second)
	_, err = h.tokens.VerifySessionCredential(ctx, token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssueWithoutSigner(t *testing.T) {
	s := &TokenService{Clock: clockwork.NewFakeClock()}
	_, err := s.IssueSessionCredential(context.Background(), domain.PrincipalRef{Role: domain.RoleAdmin, ID: "a"})
	require.ErrorIs(t, err, ErrSigning)

	_, err = NewTokenService([]byte("short"), testIssuer, 0, nil)
	require.Error(t, err)
}
