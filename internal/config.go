package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	SQLite    SQLiteConfig      `yaml:"sqlite"`
	Artifacts ArtifactsConfig   `yaml:"artifacts"`
	Planner   PlannerConfig     `yaml:"planner"`
	Google    GoogleConfig      `yaml:"google"`
	Auth      AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Artifacts.Validate(); err != nil {
		return err
	}
	if err := c.Planner.Validate(); err != nil {
		return err
	}
	if err := c.Google.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// ArtifactsConfig holds the path for dispatched-request artifacts.
type ArtifactsConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the artifacts configuration.
func (c *ArtifactsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// PlannerConfig holds the external solver connection and run policy.
//
// CallbackURL is the absolute URL the solver delivers solutions to; it must
// resolve back to this service's /api/planner/callback route. MaxWait bounds
// how long a run may sit awaiting a callback before the watchdog marks it
// timed out; SweepSchedule is the watchdog's cron spec. AssistSchedule is
// the cron spec for picking up pending meeting assists; empty disables the
// poller (dispatch then happens only through backfill tooling).
type PlannerConfig struct {
	URL         string `yaml:"url"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	CallbackURL string `yaml:"callback_url"`

	// Delay is the solver-side start delay in milliseconds.
	Delay int64 `yaml:"delay"`

	MaxWait        time.Duration `yaml:"max_wait"`
	SweepSchedule  string        `yaml:"sweep_schedule"`
	AssistSchedule string        `yaml:"assist_schedule"`
}

// Validate validates the planner configuration.
func (c *PlannerConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.URL, validation.Required),
		validation.Field(&c.CallbackURL, validation.Required),
		validation.Field(&c.Delay, validation.Min(0)),
		validation.Field(&c.MaxWait, validation.Required),
	)
}

// GoogleConfig holds the calendar provider's OAuth2 client. When disabled,
// provider writes are logged locally instead of pushed.
type GoogleConfig struct {
	Enabled      bool   `yaml:"enabled"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURL  string `yaml:"redirect_url"`
	// TokenFile is a JSON-encoded oauth2.Token obtained out of band.
	TokenFile string `yaml:"token_file"`
}

// Validate validates the Google provider configuration.
func (c *GoogleConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.ClientID, validation.Required),
		validation.Field(&c.ClientSecret, validation.Required),
		validation.Field(&c.TokenFile, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		SQLite: SQLiteConfig{
			Path: "./dagaz.db",
		},
		Artifacts: ArtifactsConfig{
			Path: "./artifacts",
		},
		Planner: PlannerConfig{
			URL:            "http://localhost:8082",
			CallbackURL:    "http://localhost:8080/api/planner/callback",
			Delay:          5000,
			MaxWait:        10 * time.Minute,
			SweepSchedule:  "@every 1m",
			AssistSchedule: "@every 1m",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
