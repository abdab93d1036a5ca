package mailer

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     Config
		want    any
		wantErr bool
	}{
		{name: "default is log", cfg: Config{}, want: &LogSender{}},
		{name: "resend", cfg: Config{Driver: "resend", ResendAPIKey: "re_test", From: "a@example.edu"}, want: &ResendSender{}},
		{name: "resend without key", cfg: Config{Driver: "resend", From: "a@example.edu"}, wantErr: true},
		{name: "smtp", cfg: Config{Driver: "SMTP", SMTPHost: "localhost", From: "a@example.edu"}, want: &SMTPSender{}},
		{name: "smtp without host", cfg: Config{Driver: "smtp", From: "a@example.edu"}, wantErr: true},
		{name: "unknown", cfg: Config{Driver: "pigeon"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.cfg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.IsType(t, tt.want, s)
		})
	}
}

func TestTemplates(t *testing.T) {
	t.Parallel()

	tpl, err := NewTemplates("")
	require.NoError(t, err)

	msg, err := tpl.Invitation("new@example.edu", "https://alumni.example.edu/register/abc123", 7*24*time.Hour)
	require.NoError(t, err)
	require.Equal(t, "new@example.edu", msg.To)
	require.Equal(t, InvitationSubject, msg.Subject)
	require.Contains(t, msg.HTML, `href="https://alumni.example.edu/register/abc123"`)
	require.Contains(t, msg.HTML, "7 days")

	msg, err = tpl.Welcome("new@example.edu", "<Grace>")
	require.NoError(t, err)
	require.Equal(t, WelcomeSubject, msg.Subject)
	require.Contains(t, msg.HTML, "&lt;Grace&gt;")
}

func TestSMTPSender(t *testing.T) {
	t.Parallel()

	s, err := NewSMTPSender(SMTPConfig{Host: "mail.example.edu", Username: "u", Password: "p", From: "Alumnet <noreply@example.edu>"})
	require.NoError(t, err)

	var (
		gotAddr string
		gotFrom string
		gotTo   []string
		gotBody []byte
	)
	s.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotBody = addr, from, to, msg
		return nil
	}

	d := s.Send(context.Background(), Message{To: "to@example.edu", Subject: "Hi", HTML: "<p>hello</p>"})
	require.True(t, d.Delivered)
	require.NoError(t, d.Err)
	require.Equal(t, "mail.example.edu:587", gotAddr)
	require.Equal(t, "noreply@example.edu", gotFrom)
	require.Equal(t, []string{"to@example.edu"}, gotTo)
	require.Contains(t, string(gotBody), "From: \"Alumnet\" <noreply@example.edu>\r\n")
	require.True(t, strings.HasSuffix(string(gotBody), "\r\n\r\n<p>hello</p>"))
	require.Contains(t, string(gotBody), "Content-Type: text/html")

	s.sendMail = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("relay down") }
	d = s.Send(context.Background(), Message{To: "to@example.edu"})
	require.False(t, d.Delivered)
	require.ErrorContains(t, d.Err, "relay down")
}

func TestSMTPSenderHonoursContext(t *testing.T) {
	t.Parallel()

	s, err := NewSMTPSender(SMTPConfig{Host: "mail.example.edu", From: "noreply@example.edu"})
	require.NoError(t, err)

	release := make(chan struct{})
	defer close(release)
	s.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		<-release
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	d := s.Send(ctx, Message{To: "to@example.edu"})
	require.False(t, d.Delivered)
	require.ErrorIs(t, d.Err, context.DeadlineExceeded)
}

func TestRecordingSender(t *testing.T) {
	t.Parallel()

	r := &RecordingSender{Fail: func(m Message) error {
		if m.To == "bounce@example.edu" {
			return errors.New("bounced")
		}
		return nil
	}}

	require.True(t, r.Send(context.Background(), Message{To: "ok@example.edu"}).Delivered)
	require.False(t, r.Send(context.Background(), Message{To: "bounce@example.edu"}).Delivered)
	require.ErrorIs(t, r.Send(context.Background(), Message{}).Err, ErrNoRecipient)
	require.Len(t, r.Sent(), 1)
}
