package membership_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/alumnet/internal/membership/app"
	"github.com/aussiebroadwan/alumnet/pkg/httpx"
	"github.com/aussiebroadwan/alumnet/pkg/membersdk"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * End-to-end tests run the fully wired application in-process against a
 * PostgreSQL container and a Mailpit SMTP catcher, driving it through the
 * membersdk client.
 */

const (
	bootstrapToken = "test-bootstrap-token-12345"
	frontendURL    = "https://alumni.example.edu"
	rootEmail      = "root@example.edu"
	rootPassword   = "Admin123!"
	sessionSecret  = "e2e-session-secret-0123456789abcdef"
)

type environment struct {
	client  *membersdk.SDKClient
	mailAPI string
}

// startContainer runs req and terminates it when the test ends.
func startContainer(t *testing.T, req testcontainers.ContainerRequest) testcontainers.Container {
	t.Helper()
	ctx := context.Background()

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
	return container
}

// endpoint returns the host and mapped port for a container port.
func endpoint(t *testing.T, c testcontainers.Container, port string) (string, int) {
	t.Helper()
	ctx := context.Background()

	host, err := c.Host(ctx)
	require.NoError(t, err)
	mapped, err := c.MappedPort(ctx, port)
	require.NoError(t, err)
	return host, mapped.Int()
}

// setupEnvironment starts PostgreSQL and Mailpit, then the application
// behind an httptest server.
func setupEnvironment(t *testing.T) *environment {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping e2e test in short mode")
	}

	pg := startContainer(t, testcontainers.ContainerRequest{
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
	})
	pgHost, pgPort := endpoint(t, pg, "5432")

	mailpit := startContainer(t, testcontainers.ContainerRequest{
		Image:        "axllent/mailpit:latest",
		ExposedPorts: []string{"1025/tcp", "8025/tcp"},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("1025/tcp"),
			wait.ForListeningPort("8025/tcp"),
		).WithDeadline(60 * time.Second),
	})
	smtpHost, smtpPort := endpoint(t, mailpit, "1025")
	apiHost, apiPort := endpoint(t, mailpit, "8025")

	relaxed := httpx.RateLimitConfig{RequestsPerWindow: 1000, Window: time.Minute, Burst: 1000}
	cfg := app.Config{
		Issuer:                "alumnet-e2e",
		SessionSecret:         sessionSecret,
		SessionTTL:            7 * 24 * time.Hour,
		InvitationTTL:         7 * 24 * time.Hour,
		FrontendURL:           frontendURL,
		DatabaseDriver:        "postgres",
		DatabaseURL:           fmt.Sprintf("postgres://alumnet:alumnet@%s:%d/alumnet?sslmode=disable", pgHost, pgPort),
		PepperFile:            filepath.Join(t.TempDir(), "pepper"),
		BootstrapToken:        bootstrapToken,
		MailDriver:            "smtp",
		MailFrom:              "Alumnet <no-reply@example.edu>",
		MailDispatchTimeout:   10 * time.Second,
		SMTPHost:              smtpHost,
		SMTPPort:              smtpPort,
		BulkInviteConcurrency: 4,
		Env:                   "test",
		LogLevel:              "warn",
		LogFormat:             "json",
		ShutdownGracePeriod:   5 * time.Second,
		HousekeepingInterval:  time.Hour,
		RateLimits:            httpx.RateLimitProfiles{Strict: relaxed, Moderate: relaxed, Lenient: relaxed},
	}

	application, err := app.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Close(context.Background()) })

	srv := httptest.NewServer(application.Handler())
	t.Cleanup(srv.Close)

	return &environment{
		client:  membersdk.NewSDKClient(srv.URL),
		mailAPI: fmt.Sprintf("http://%s:%d", apiHost, apiPort),
	}
}

// rootSession bootstraps the service and logs in as the super admin.
func (e *environment) rootSession(t *testing.T) *membersdk.Session {
	t.Helper()
	ctx := t.Context()

	_, err := e.client.Bootstrap(ctx, bootstrapToken, membersdk.BootstrapRequest{
		Name: "Root", Email: rootEmail, Password: rootPassword,
	})
	require.NoError(t, err, "Bootstrap should succeed")

	session, err := e.client.Login(ctx, rootEmail, rootPassword)
	require.NoError(t, err, "Login should succeed")
	require.Equal(t, "super_admin", session.Principal().Role)
	return session
}

type mailpitList struct {
	Messages []struct {
		ID string `json:"ID"`
		To []struct {
			Address string `json:"Address"`
		} `json:"To"`
		Subject string `json:"Subject"`
	} `json:"messages"`
}

type mailpitMessage struct {
	HTML string `json:"HTML"`
}

// latestMail returns the subject and HTML body of the newest message sent
// to addr. Mailpit lists newest first.
func (e *environment) latestMail(t *testing.T, addr string) (string, string) {
	t.Helper()

	var list mailpitList
	getJSON(t, e.mailAPI+"/api/v1/search?query="+url.QueryEscape("to:"+addr), &list)
	for _, m := range list.Messages {
		for _, to := range m.To {
			if strings.EqualFold(to.Address, addr) {
				var msg mailpitMessage
				getJSON(t, e.mailAPI+"/api/v1/message/"+m.ID, &msg)
				return m.Subject, msg.HTML
			}
		}
	}
	t.Fatalf("no mail delivered to %s", addr)
	return "", ""
}

// invitationSecret extracts the registration secret from the newest
// invitation sent to addr.
func (e *environment) invitationSecret(t *testing.T, addr string) string {
	t.Helper()
	_, html := e.latestMail(t, addr)

	marker := frontendURL + "/register/"
	i := strings.Index(html, marker)
	require.GreaterOrEqual(t, i, 0, "invitation should carry a registration link")
	rest := html[i+len(marker):]
	end := strings.IndexAny(rest, `"<&? `)
	require.Positive(t, end)
	return rest[:end]
}

func getJSON(t *testing.T, target string, out any) {
	t.Helper()
	resp, err := http.Get(target)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}
