// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every server setting. Fields map to environment variables;
// nested structs add their prefix.
type Config struct {
	Port   int    `env:"PORT" envDefault:"8080"`
	AppEnv string `env:"APP_ENV" envDefault:"development"`
	DBPath string `env:"DB_PATH" envDefault:"./data/leaderz.db"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	// TournamentKey pins the tournament players report to. Empty means the
	// newest active tournament.
	TournamentKey      string   `env:"TOURNAMENT_KEY"`
	LeaderboardBaseURL string   `env:"LEADERBOARD_BASE_URL" envDefault:"http://localhost:3000/leaderboardz"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	SSEKeepAlive    time.Duration `env:"SSE_KEEPALIVE_INTERVAL" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`

	Twilio TwilioConfig `envPrefix:"TWILIO_"`
	Auth   AuthConfig   `envPrefix:"AUTH_"`
}

// TwilioConfig configures the messaging channel.
type TwilioConfig struct {
	AccountSID  string `env:"ACCOUNT_SID"`
	AuthToken   string `env:"AUTH_TOKEN"`
	PhoneNumber string `env:"PHONE_NUMBER"`
	// Channel is "whatsapp" or "sms".
	Channel string `env:"CHANNEL" envDefault:"whatsapp"`
	// WebhookURL is the public webhook URL, used to check signatures.
	WebhookURL        string `env:"WEBHOOK_URL"`
	ValidateSignature bool   `env:"VALIDATE_SIGNATURE" envDefault:"false"`
}

// Enabled reports whether replies can be sent through Twilio.
func (c TwilioConfig) Enabled() bool {
	return c.AccountSID != "" && c.AuthToken != "" && c.PhoneNumber != ""
}

// AuthConfig configures organizer login for the admin API.
type AuthConfig struct {
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"12h"`
	// OrganizerPasswordHash is a bcrypt hash, see `leaderzctl hash-password`.
	OrganizerPasswordHash string `env:"ORGANIZER_PASSWORD_HASH"`
}

// IsProduction reports whether the server runs in production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Load reads an optional .env file and then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded, using the process environment", "error", err)
	}
	return Parse()
}

// Parse reads the configuration from the process environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects inconsistent settings.
func (c *Config) Validate() error {
	var errs []error

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d out of range", c.Port))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("DB_PATH is required"))
	}
	switch c.Twilio.Channel {
	case "whatsapp", "sms":
	default:
		errs = append(errs, fmt.Errorf("TWILIO_CHANNEL %q must be whatsapp or sms", c.Twilio.Channel))
	}
	if c.Twilio.ValidateSignature && c.Twilio.AuthToken == "" {
		errs = append(errs, errors.New("TWILIO_VALIDATE_SIGNATURE requires TWILIO_AUTH_TOKEN"))
	}
	if c.Twilio.ValidateSignature && c.Twilio.WebhookURL == "" {
		errs = append(errs, errors.New("TWILIO_VALIDATE_SIGNATURE requires TWILIO_WEBHOOK_URL"))
	}
	if c.IsProduction() && c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("AUTH_JWT_SECRET is required in production"))
	}
	if c.IsProduction() && !c.Twilio.Enabled() {
		errs = append(errs, errors.New("TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN and TWILIO_PHONE_NUMBER are required in production"))
	}
	if c.SSEKeepAlive <= 0 {
		errs = append(errs, errors.New("SSE_KEEPALIVE_INTERVAL must be positive"))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
