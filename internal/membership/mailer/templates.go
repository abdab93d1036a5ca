package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	InvitationSubject = "Invitation to Join Alumni Network"
	WelcomeSubject    = "Welcome to Alumni Network"
)

// Templates renders the service's emails. Each email is the shared layout
// with its own body block.
type Templates struct {
	brand      string
	invitation *template.Template
	welcome    *template.Template
}

func NewTemplates(brand string) (*Templates, error) {
	if brand == "" {
		brand = "Alumni Network"
	}

	parse := func(body string) (*template.Template, error) {
		return template.ParseFS(templateFS, "templates/layout.html", "templates/"+body)
	}

	invitation, err := parse("invitation.html")
	if err != nil {
		return nil, fmt.Errorf("mailer: parse invitation template: %w", err)
	}
	welcome, err := parse("welcome.html")
	if err != nil {
		return nil, fmt.Errorf("mailer: parse welcome template: %w", err)
	}

	return &Templates{brand: brand, invitation: invitation, welcome: welcome}, nil
}

// Invitation renders the registration invite pointing at link.
func (t *Templates) Invitation(to, link string, validFor time.Duration) (Message, error) {
	html, err := render(t.invitation, map[string]any{
		"Brand":    t.brand,
		"Heading":  "Alumni Network Invitation",
		"Accent":   template.CSS("#2c3e50"),
		"Link":     template.URL(link),
		"ValidFor": humanDays(validFor),
	})
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: InvitationSubject, HTML: html}, nil
}

// Welcome renders the post-registration greeting.
func (t *Templates) Welcome(to, name string) (Message, error) {
	html, err := render(t.welcome, map[string]any{
		"Brand":   t.brand,
		"Heading": "Welcome to Alumni Network!",
		"Accent":  template.CSS("#27ae60"),
		"Name":    name,
	})
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: WelcomeSubject, HTML: html}, nil
}

func render(tmpl *template.Template, data map[string]any) (string, error) {
	var b bytes.Buffer
	if err := tmpl.ExecuteTemplate(&b, "layout", data); err != nil {
		return "", fmt.Errorf("mailer: render: %w", err)
	}
	return b.String(), nil
}

func humanDays(d time.Duration) string {
	days := int(d / (24 * time.Hour))
	switch {
	case days == 1:
		return "1 day"
	case days > 1:
		return fmt.Sprintf("%d days", days)
	default:
		return d.Round(time.Minute).String()
	}
}
