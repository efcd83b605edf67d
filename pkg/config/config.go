// Package config loads seevgen configuration from an optional YAML file and
// SEEVGEN_* environment variables.
package config

import (
	"fmt"
	"regexp"
	"time"

	"github.com/coolbeans/seevgen/pkg/logging"
)

// Config is the complete seevgen configuration.
type Config struct {
	Log      logging.Config `koanf:"log"`
	Output   OutputConfig   `koanf:"output"`
	Render   RenderConfig   `koanf:"render"`
	Patterns PatternsConfig `koanf:"patterns"`
	Source   SourceConfig   `koanf:"source"`
	Mail     MailConfig     `koanf:"mail"`
	Metrics  MetricsConfig  `koanf:"metrics"`
}

// OutputConfig controls where documents are written.
type OutputConfig struct {
	Dir       string `koanf:"dir"`
	AssumeYes bool   `koanf:"assume_yes"`
}

// RenderConfig holds the placeholders substituted for missing fields.
type RenderConfig struct {
	Town            string `koanf:"town"`
	Country         string `koanf:"country"`
	PlaceholderDate string `koanf:"placeholder_date"`
	PlaceholderISIN string `koanf:"placeholder_isin"`
	Issuer          string `koanf:"issuer"`
	IDPrefix        string `koanf:"id_prefix"`
	Indent          string `koanf:"indent"`
}

// PatternsConfig locates institution-specific pattern packs.
type PatternsConfig struct {
	Dir   string `koanf:"dir"`
	Watch bool   `koanf:"watch"`
}

// SourceConfig configures document converters.
type SourceConfig struct {
	PDFToText string   `koanf:"pdftotext"`
	Timeout   Duration `koanf:"timeout"`
}

// MailConfig configures e-mail delivery of generated documents.
type MailConfig struct {
	Enabled    bool     `koanf:"enabled"`
	SMTPServer string   `koanf:"smtp_server"`
	SMTPPort   int      `koanf:"smtp_port"`
	SMTPUser   string   `koanf:"smtp_user"`
	SMTPPass   Secret   `koanf:"smtp_pass"`
	From       string   `koanf:"from"`
	To         []string `koanf:"to"`
}

// MetricsConfig controls metrics export.
type MetricsConfig struct {
	Textfile string `koanf:"textfile"`
}

var (
	countryCode = regexp.MustCompile(`^[A-Z]{2}$`)
	isinCode    = regexp.MustCompile(`^[A-Z0-9]{12}$`)
)

// Default returns the configuration used when nothing is set.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "."
	}
	if cfg.Render.Town == "" {
		cfg.Render.Town = "LUXEMBOURG"
	}
	if cfg.Render.Country == "" {
		cfg.Render.Country = "LU"
	}
	if cfg.Render.PlaceholderDate == "" {
		cfg.Render.PlaceholderDate = "2024-01-01"
	}
	if cfg.Render.PlaceholderISIN == "" {
		cfg.Render.PlaceholderISIN = "LU0000000000"
	}
	if cfg.Render.Issuer == "" {
		cfg.Render.Issuer = "ISSUER"
	}
	if cfg.Render.IDPrefix == "" {
		cfg.Render.IDPrefix = "GMET"
	}
	if cfg.Render.Indent == "" {
		cfg.Render.Indent = " "
	}
	if cfg.Source.PDFToText == "" {
		cfg.Source.PDFToText = "pdftotext"
	}
	if cfg.Source.Timeout == 0 {
		cfg.Source.Timeout = Duration(30 * time.Second)
	}
	if cfg.Mail.SMTPPort == 0 {
		cfg.Mail.SMTPPort = 587
	}
}

// Validate checks config for errors.
func (c *Config) Validate() error {
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	if !countryCode.MatchString(c.Render.Country) {
		return fmt.Errorf("render.country must be two upper-case letters, got %q", c.Render.Country)
	}
	if !isinCode.MatchString(c.Render.PlaceholderISIN) {
		return fmt.Errorf("render.placeholder_isin must be 12 upper-case alphanumerics, got %q", c.Render.PlaceholderISIN)
	}
	if _, err := time.Parse("2006-01-02", c.Render.PlaceholderDate); err != nil {
		return fmt.Errorf("render.placeholder_date must be YYYY-MM-DD: %w", err)
	}
	if len(c.Render.IDPrefix) > 16 {
		return fmt.Errorf("render.id_prefix must be at most 16 characters, got %d", len(c.Render.IDPrefix))
	}
	if c.Mail.SMTPPort < 1 || c.Mail.SMTPPort > 65535 {
		return fmt.Errorf("mail.smtp_port must be between 1 and 65535, got %d", c.Mail.SMTPPort)
	}
	if c.Mail.Enabled {
		if c.Mail.SMTPServer == "" {
			return fmt.Errorf("mail.smtp_server is required when mail is enabled")
		}
		if c.Mail.From == "" {
			return fmt.Errorf("mail.from is required when mail is enabled")
		}
		if len(c.Mail.To) == 0 {
			return fmt.Errorf("mail.to needs at least one recipient when mail is enabled")
		}
	}
	return nil
}
