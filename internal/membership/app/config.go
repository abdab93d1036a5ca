package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/alumnet/pkg/httpx"
	"github.com/aussiebroadwan/alumnet/pkg/jwtx"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Issuer        string        `env:"ISSUER" envDefault:"alumnet"`                     // Issuer claim for session tokens
	SessionSecret string        `env:"SESSION_SECRET,unset"`                            // Required: HMAC key, at least 32 bytes
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"168h"`                   // Session token lifetime
	InvitationTTL time.Duration `env:"INVITATION_TTL" envDefault:"168h"`                // Invitation lifetime
	FrontendURL   string        `env:"FRONTEND_URL" envDefault:"http://localhost:3000"` // Base of registration links
	BrandName     string        `env:"BRAND_NAME"`                                      // Optional: name shown in emails

	DatabaseDriver string `env:"DATABASE_DRIVER" envDefault:"sqlite"`   // sqlite or postgres
	DatabaseFile   string `env:"DATABASE_FILE" envDefault:"alumnet.db"` // SQLite database path
	DatabaseURL    string `env:"DATABASE_URL"`                          // PostgreSQL DSN
	PepperFile     string `env:"PEPPER_FILE" envDefault:"pepper"`       // Password hashing pepper path
	BootstrapToken string `env:"BOOTSTRAP_TOKEN,unset"`                 // Optional: enables one-time bootstrap

	MailDriver            string        `env:"MAIL_DRIVER" envDefault:"log"` // log, smtp or resend
	MailFrom              string        `env:"MAIL_FROM" envDefault:"Alumnet <no-reply@alumnet.local>"`
	MailDispatchTimeout   time.Duration `env:"MAIL_DISPATCH_TIMEOUT" envDefault:"10s"`
	ResendAPIKey          string        `env:"RESEND_API_KEY,unset"`
	SMTPHost              string        `env:"SMTP_HOST"`
	SMTPPort              int           `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername          string        `env:"SMTP_USERNAME"`
	SMTPPassword          string        `env:"SMTP_PASSWORD,unset"`
	BulkInviteConcurrency int           `env:"BULK_INVITE_CONCURRENCY" envDefault:"4"`

	Env                  string        `env:"ENV" envDefault:"dev"`          // dev, staging, prod
	LogLevel             string        `env:"LOG_LEVEL" envDefault:"info"`   // debug, info, warn, error
	LogFormat            string        `env:"LOG_FORMAT" envDefault:"json"`  // json or text
	LogFile              string        `env:"LOG_FILE"`                      // Optional: rotated log file base path
	LogMaxAge            time.Duration `env:"LOG_MAX_AGE" envDefault:"168h"` // Rotated log retention
	Port                 int           `env:"PORT" envDefault:"8080"`
	ShutdownGracePeriod  time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
	HousekeepingInterval time.Duration `env:"HOUSEKEEPING_INTERVAL" envDefault:"1h"`
	OTelEndpoint         string        `env:"OTEL_ENDPOINT"` // Optional: OTLP/HTTP collector

	RateLimits httpx.RateLimitProfiles `envPrefix:"RATELIMIT_"`
}

// LoadConfig reads a .env file when one exists, then the process
// environment.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{RateLimits: httpx.DefaultRateLimits()}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	var errs []error

	if c.SessionSecret == "" {
		errs = append(errs, errors.New("SESSION_SECRET is required"))
	} else if len(c.SessionSecret) < jwtx.MinSecretLength {
		errs = append(errs, fmt.Errorf("SESSION_SECRET must be at least %d bytes", jwtx.MinSecretLength))
	}

	switch strings.ToLower(c.DatabaseDriver) {
	case "sqlite":
	case "postgres":
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("DATABASE_DRIVER %q is not one of sqlite, postgres", c.DatabaseDriver))
	}

	switch strings.ToLower(c.MailDriver) {
	case "log":
	case "smtp":
		if c.SMTPHost == "" {
			errs = append(errs, errors.New("SMTP_HOST is required for the smtp mail driver"))
		}
	case "resend":
		if c.ResendAPIKey == "" {
			errs = append(errs, errors.New("RESEND_API_KEY is required for the resend mail driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("MAIL_DRIVER %q is not one of log, smtp, resend", c.MailDriver))
	}

	if c.SessionTTL <= 0 || c.InvitationTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL and INVITATION_TTL must be positive"))
	}

	return errors.Join(errs...)
}
