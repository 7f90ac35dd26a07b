package internal

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/berkana/internal/fields"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Site   SiteConfig        `yaml:"site"`
	Shelf  ShelfConfig       `yaml:"shelf"`
	Remote RemoteConfig      `yaml:"remote"`
	API    APIConfig         `yaml:"api"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Site.Validate(); err != nil {
		return err
	}
	if err := c.Shelf.Validate(); err != nil {
		return err
	}
	if err := c.Remote.Validate(); err != nil {
		return err
	}
	return c.API.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
}

// SiteConfig locates the generated site output.
type SiteConfig struct {
	OutputPath string `yaml:"output_path"`
	Extension  string `yaml:"extension"`
}

// Validate validates the site configuration.
func (c *SiteConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.OutputPath, validation.Required),
		validation.Field(&c.Extension, validation.Required),
	); err != nil {
		return err
	}
	if !strings.HasPrefix(c.Extension, ".") {
		return fmt.Errorf("site: extension must start with a dot, got %q", c.Extension)
	}
	return nil
}

// ShelfConfig holds the book cache settings: which fields cards display, in
// which order, and where the shelf file lives.
type ShelfConfig struct {
	// Path overrides the shelf file location. Empty means
	// <site.output_path>/bookshelf.yaml.
	Path          string   `yaml:"path"`
	Fields        []string `yaml:"fields"`
	UpdateOnStart bool     `yaml:"update_on_start"`
}

// Validate validates the shelf configuration against the field vocabulary.
func (c *ShelfConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Fields, validation.Required),
	); err != nil {
		return err
	}
	_, err := fields.ValidateOrder(c.Fields)
	return err
}

// FieldOrder returns the typed, validated card field order.
func (c *ShelfConfig) FieldOrder() ([]fields.Field, error) {
	return fields.ValidateOrder(c.Fields)
}

// ResolvePath returns the effective shelf file location.
func (c *ShelfConfig) ResolvePath(outputPath string) string {
	if c.Path != "" {
		return c.Path
	}
	return filepath.Join(outputPath, "bookshelf.yaml")
}

// RemoteConfig describes the single supported catalog source.
type RemoteConfig struct {
	// Source is the ID prefix tokens must carry, e.g. "douban".
	Source string `yaml:"source"`
	// BaseURL is the canonical item page prefix; the numeric part of an
	// ID is appended to it.
	BaseURL string `yaml:"base_url"`
	// WaitTime is the mandatory cool-down in seconds after every fetch.
	WaitTime int `yaml:"wait_time"`
	// Timeout is the per-request HTTP timeout in seconds.
	Timeout int `yaml:"timeout"`
}

// Validate validates the remote source configuration.
func (c *RemoteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Source, validation.Required),
		validation.Field(&c.BaseURL, validation.Required),
		validation.Field(&c.WaitTime, validation.Min(0)),
		validation.Field(&c.Timeout, validation.Min(1)),
	)
}

// APIConfig holds the optional read-only shelf API served in watch mode.
type APIConfig struct {
	Enabled bool       `yaml:"enabled"`
	Port    int        `yaml:"port"`
	Auth    AuthConfig `yaml:"auth"`
}

// Address returns the HTTP listen address.
func (c *APIConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the API configuration.
func (c *APIConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// AuthConfig holds authentication configuration for the shelf API.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local use.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled".
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
		},
		Site: SiteConfig{
			OutputPath: "./output",
			Extension:  ".html",
		},
		Shelf: ShelfConfig{
			Fields:        []string{"pub_year", "pages", "price", "isbn"},
			UpdateOnStart: false,
		},
		Remote: RemoteConfig{
			Source:   "douban",
			BaseURL:  "https://book.douban.com/subject/",
			WaitTime: 2,
			Timeout:  30,
		},
		API: APIConfig{
			Enabled: false,
			Port:    8080,
			Auth:    AuthConfig{Mode: AuthModeDisabled},
		},
	}
}
