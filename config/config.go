// Package config loads the application settings from the environment.
package config

import (
	"fmt"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"pricelist/services"
)

// Config holds every setting the app reads from the environment (or .env).
type Config struct {
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	TemplatePath string `envconfig:"PRICELIST_TEMPLATE" default:"assets/template_en.html"`
	LogoPath     string `envconfig:"PRICELIST_LOGO" default:"assets/fenix_logo.png"`
	StaticDir    string `envconfig:"PRICELIST_STATIC_DIR" default:"assets"`

	MaxUploadMB      int64  `envconfig:"PRICELIST_MAX_UPLOAD_MB" default:"10"`
	ExportPolicy     string `envconfig:"PRICELIST_EXPORT_POLICY" default:"fail-fast"`
	ValidateOnUpload bool   `envconfig:"PRICELIST_VALIDATE_ON_UPLOAD" default:"false"`
}

// Load reads .env (if present) and the process environment, validates the
// result and resolves resource paths against the working directory.
func Load() (*Config, error) {
	envErr := godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := cfg.resolvePaths(); err != nil {
		return nil, err
	}

	SetupLogging(cfg.Env, cfg.LogLevel)
	logDotenv(envErr)
	return &cfg, nil
}

// Validate checks field values.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Env, validation.In("development", "staging", "testing", "production")),
		validation.Field(&c.TemplatePath, validation.Required),
		validation.Field(&c.LogoPath, validation.Required),
		validation.Field(&c.StaticDir, validation.Required),
		validation.Field(&c.MaxUploadMB, validation.Required, validation.Min(int64(1)), validation.Max(int64(512))),
		validation.Field(&c.ExportPolicy, validation.By(func(v any) error {
			_, err := services.ParseExportPolicy(v.(string))
			return err
		})),
	)
}

func (c *Config) resolvePaths() error {
	for _, p := range []*string{&c.TemplatePath, &c.LogoPath, &c.StaticDir} {
		abs, err := filepath.Abs(*p)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", *p, err)
		}
		*p = abs
	}
	return nil
}

// Render returns the document renderer settings.
func (c *Config) Render() services.RenderConfig {
	return services.RenderConfig{TemplatePath: c.TemplatePath, LogoPath: c.LogoPath}
}

// Policy returns the batch export policy. Validate has already rejected
// unknown values.
func (c *Config) Policy() services.ExportPolicy {
	p, _ := services.ParseExportPolicy(c.ExportPolicy)
	return p
}

// MaxUploadBytes is the multipart size limit.
func (c *Config) MaxUploadBytes() int64 { return c.MaxUploadMB << 20 }
