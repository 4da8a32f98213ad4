package internal

import (
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ConfigFileName is the default config file looked up next to the vault.
const ConfigFileName = "tachylite.yaml"

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Vault  VaultConfig       `yaml:"vault"`
	Edit   EditConfig        `yaml:"edit"`
	Reload ReloadConfig      `yaml:"reload"`
	Export ExportConfig      `yaml:"export"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Vault.Validate(); err != nil {
		return err
	}
	if err := c.Edit.Validate(); err != nil {
		return err
	}
	if err := c.Reload.Validate(); err != nil {
		return err
	}
	return c.Export.Validate()
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
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// VaultConfig holds the vault directory and its exclusion rules.
type VaultConfig struct {
	Path          string   `yaml:"path"`
	ExcludedDirs  []string `yaml:"excluded_dirs"`
	ExcludedFiles []string `yaml:"excluded_files"`
}

// Validate validates the vault configuration.
func (c *VaultConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// EditConfig controls write access to the vault.
type EditConfig struct {
	// AllowAll lets any session edit or delete any file, bypassing the
	// per-session ownership check.
	AllowAll bool `yaml:"allow_all"`
	// AllowCreation enables the file-creation and upload endpoints.
	AllowCreation bool `yaml:"allow_creation"`
	// AllowedUploadExtensions is the upload extension allow-list (with dots).
	AllowedUploadExtensions []string `yaml:"allowed_upload_extensions"`
}

// Validate validates the edit configuration.
func (c *EditConfig) Validate() error {
	for _, ext := range c.AllowedUploadExtensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("edit: upload extension %q must start with a dot", ext)
		}
	}
	return nil
}

// ExtensionAllowed reports whether a lowercase file extension may be uploaded.
func (c *EditConfig) ExtensionAllowed(ext string) bool {
	for _, allowed := range c.AllowedUploadExtensions {
		if strings.EqualFold(allowed, ext) {
			return true
		}
	}
	return false
}

// ReloadConfig holds live-reload polling configuration.
type ReloadConfig struct {
	// PollInterval is the client poll period and the fingerprint cache TTL,
	// in seconds. Minimum 1.
	PollInterval int `yaml:"poll_interval"`
}

// Validate validates the reload configuration.
func (c *ReloadConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.PollInterval, validation.Required, validation.Min(1)),
	)
}

// ExportConfig holds static-export configuration.
type ExportConfig struct {
	// OutputDir is the snapshot directory, relative to the vault root.
	OutputDir string `yaml:"output_dir"`
}

// Validate validates the export configuration.
func (c *ExportConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.OutputDir, validation.Required),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Host: "0.0.0.0",
				Port: 8000,
			},
		},
		Vault: VaultConfig{
			Path:          "./vault",
			ExcludedDirs:  []string{".obsidian", "Templates", ".git", ".trash", "_site", ".github"},
			ExcludedFiles: []string{ConfigFileName},
		},
		Edit: EditConfig{
			AllowAll:      false,
			AllowCreation: true,
			AllowedUploadExtensions: []string{
				".md", ".txt", ".pdf", ".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg",
			},
		},
		Reload: ReloadConfig{
			PollInterval: 15,
		},
		Export: ExportConfig{
			OutputDir: "_site",
		},
	}
}
