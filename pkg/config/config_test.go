package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seevgen.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadWithFile_Defaults(t *testing.T) {
	cfg, err := LoadWithFile("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, ".", cfg.Output.Dir)
	assert.Equal(t, "LUXEMBOURG", cfg.Render.Town)
	assert.Equal(t, "LU", cfg.Render.Country)
	assert.Equal(t, "2024-01-01", cfg.Render.PlaceholderDate)
	assert.Equal(t, "LU0000000000", cfg.Render.PlaceholderISIN)
	assert.Equal(t, "ISSUER", cfg.Render.Issuer)
	assert.Equal(t, "GMET", cfg.Render.IDPrefix)
	assert.Equal(t, " ", cfg.Render.Indent)
	assert.Equal(t, "pdftotext", cfg.Source.PDFToText)
	assert.Equal(t, 30*time.Second, cfg.Source.Timeout.Duration())
	assert.Equal(t, 587, cfg.Mail.SMTPPort)
	assert.False(t, cfg.Mail.Enabled)
}

func TestLoadWithFile_YAML(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
  format: json
output:
  dir: /tmp/seev
  assume_yes: true
render:
  town: ESCH-SUR-ALZETTE
  id_prefix: XMET
patterns:
  dir: /etc/seevgen/patterns
  watch: true
source:
  timeout: 45s
mail:
  enabled: true
  smtp_server: smtp.example.com
  smtp_port: 2525
  smtp_user: robot
  smtp_pass: hunter2
  from: robot@example.com
  to:
    - ops@example.com
    - desk@example.com
metrics:
  textfile: /var/lib/node_exporter/seevgen.prom
`)

	cfg, err := LoadWithFile(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "/tmp/seev", cfg.Output.Dir)
	assert.True(t, cfg.Output.AssumeYes)
	assert.Equal(t, "ESCH-SUR-ALZETTE", cfg.Render.Town)
	assert.Equal(t, "LU", cfg.Render.Country)
	assert.Equal(t, "XMET", cfg.Render.IDPrefix)
	assert.Equal(t, "/etc/seevgen/patterns", cfg.Patterns.Dir)
	assert.True(t, cfg.Patterns.Watch)
	assert.Equal(t, 45*time.Second, cfg.Source.Timeout.Duration())
	assert.True(t, cfg.Mail.Enabled)
	assert.Equal(t, 2525, cfg.Mail.SMTPPort)
	assert.Equal(t, "hunter2", cfg.Mail.SMTPPass.Value())
	assert.Equal(t, []string{"ops@example.com", "desk@example.com"}, cfg.Mail.To)
	assert.Equal(t, "/var/lib/node_exporter/seevgen.prom", cfg.Metrics.Textfile)
}

func TestLoadWithFile_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "render:\n  town: FILE-TOWN\nlog:\n  level: warn\n")
	t.Setenv("SEEVGEN_RENDER_TOWN", "ENV-TOWN")
	t.Setenv("SEEVGEN_RENDER_PLACEHOLDER_DATE", "2025-06-30")
	t.Setenv("SEEVGEN_MAIL_SMTP_PORT", "465")

	cfg, err := LoadWithFile(path)
	require.NoError(t, err)

	assert.Equal(t, "ENV-TOWN", cfg.Render.Town)
	assert.Equal(t, "2025-06-30", cfg.Render.PlaceholderDate)
	assert.Equal(t, 465, cfg.Mail.SMTPPort)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadWithFile_Errors(t *testing.T) {
	_, err := LoadWithFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadWithFile(t.TempDir())
	assert.Error(t, err)

	_, err = LoadWithFile(writeConfig(t, "render: [unterminated"))
	assert.Error(t, err)

	_, err = LoadWithFile(writeConfig(t, "render:\n  country: Luxembourg\n"))
	assert.ErrorContains(t, err, "render.country")
}

func TestEnvKey(t *testing.T) {
	tests := map[string]string{
		"SEEVGEN_LOG_LEVEL":               "log.level",
		"SEEVGEN_RENDER_PLACEHOLDER_ISIN": "render.placeholder_isin",
		"SEEVGEN_MAIL_SMTP_PASS":          "mail.smtp_pass",
		"SEEVGEN_METRICS":                 "metrics",
	}
	for in, want := range tests {
		assert.Equal(t, want, envKey(in), in)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"defaults", func(*Config) {}, ""},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "log"},
		{"bad country", func(c *Config) { c.Render.Country = "lu" }, "render.country"},
		{"bad isin", func(c *Config) { c.Render.PlaceholderISIN = "LU000" }, "render.placeholder_isin"},
		{"bad date", func(c *Config) { c.Render.PlaceholderDate = "2024-02-30" }, "render.placeholder_date"},
		{"long prefix", func(c *Config) { c.Render.IDPrefix = strings.Repeat("X", 17) }, "render.id_prefix"},
		{"bad port", func(c *Config) { c.Mail.SMTPPort = 70000 }, "mail.smtp_port"},
		{"mail without server", func(c *Config) {
			c.Mail.Enabled = true
			c.Mail.From = "a@b.c"
			c.Mail.To = []string{"d@e.f"}
		}, "mail.smtp_server"},
		{"mail without recipients", func(c *Config) {
			c.Mail.Enabled = true
			c.Mail.SMTPServer = "smtp"
			c.Mail.From = "a@b.c"
		}, "mail.to"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.errMsg)
		})
	}
}

func TestSecret(t *testing.T) {
	s := Secret("hunter2")
	assert.Equal(t, "[REDACTED]", s.String())
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%v", s))
	assert.Equal(t, "Secret([REDACTED])", fmt.Sprintf("%#v", s))
	assert.Equal(t, "hunter2", s.Value())
	assert.Equal(t, "", Secret("").String())

	data, err := s.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"[REDACTED]"`, string(data))
}

func TestDuration(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("1m30s")))
	assert.Equal(t, 90*time.Second, d.Duration())
	assert.Error(t, d.UnmarshalText([]byte("-5s")))
	assert.Error(t, d.UnmarshalText([]byte("soon")))

	text, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1m30s", string(text))
}
