package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const agmNotice = "../../testdata/agm-en.txt"

const packYAML = `name: bank-a
version: "1"
institution: Bank A
rules:
  - name: issuer-line
    field: company_name
    pattern: 'Emetteur\s*:\s*(.+)'
    group: 1
`

type run struct {
	stdout bytes.Buffer
	stderr bytes.Buffer
}

func execute(t *testing.T, stdin string, args ...string) (*run, error) {
	t.Helper()
	r := &run{}
	a := &app{stdin: strings.NewReader(stdin), stdout: &r.stdout, stderr: &r.stderr}
	cmd := a.rootCmd()
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	cmd.SetOut(&r.stdout)
	cmd.SetErr(&r.stderr)
	return r, cmd.Execute()
}

func xmlFiles(t *testing.T, dir string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "SEEV001_*.xml"))
	require.NoError(t, err)
	return matches
}

func TestExtractCommand(t *testing.T) {
	r, err := execute(t, "", "extract", agmNotice)
	require.NoError(t, err)
	assert.Contains(t, r.stdout.String(), `"company_name": "ACME HOLDINGS S.A."`)
	assert.Contains(t, r.stdout.String(), `"isin": "LU1234567890"`)
}

func TestConvertCommand_Stdout(t *testing.T) {
	r, err := execute(t, "", "convert", "--yes", "--stdout", agmNotice)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(r.stdout.String(), `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, r.stdout.String(), "<ISIN>LU1234567890</ISIN>")
}

func TestConvertCommand_WritesArchive(t *testing.T) {
	out := t.TempDir()
	metricsFile := filepath.Join(t.TempDir(), "seevgen.prom")

	r, err := execute(t, "", "convert", "-y", "--out", out, "--metrics-file", metricsFile, agmNotice)
	require.NoError(t, err)

	files := xmlFiles(t, out)
	require.Len(t, files, 1)
	assert.Equal(t, files[0]+"\n", r.stdout.String())
	assert.FileExists(t, filepath.Join(out, "archive.json"))

	prom, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `seevgen_notices_total{meeting_type="AGM"} 1`)
}

func TestConvertCommand_Confirmation(t *testing.T) {
	out := t.TempDir()

	r, err := execute(t, "n\n", "convert", "--out", out, agmNotice)
	require.NoError(t, err)
	assert.Contains(t, r.stderr.String(), "EXTRACTED DATA")
	assert.Contains(t, r.stderr.String(), "Generation cancelled.")
	assert.Empty(t, xmlFiles(t, out))

	_, err = execute(t, "y\n", "convert", "--out", out, agmNotice)
	require.NoError(t, err)
	assert.Len(t, xmlFiles(t, out), 1)
}

func TestConvertCommand_MissingFile(t *testing.T) {
	out := t.TempDir()
	_, err := execute(t, "", "convert", "--yes", "--out", out, filepath.Join(out, "missing.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read failed")
	assert.Empty(t, xmlFiles(t, out))
}

func TestConvertCommand_MailToNeedsServer(t *testing.T) {
	_, err := execute(t, "", "convert", "--yes", "--out", t.TempDir(), "--mail-to", "ops@example.com", agmNotice)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp_server")
}

func TestConvertCommand_PatternPack(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bank-a.yaml"), []byte(packYAML), 0644))
	notice := filepath.Join(t.TempDir(), "notice.txt")
	require.NoError(t, os.WriteFile(notice, []byte("Avis aux actionnaires\nEmetteur : DELTA CAPITAL SA\n"), 0644))

	r, err := execute(t, "", "--patterns", dir, "extract", notice)
	require.NoError(t, err)
	assert.Contains(t, r.stdout.String(), `"company_name": "DELTA CAPITAL SA"`)
}

func TestPatternsCommands(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "bank-a.yaml")
	bad := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(good, []byte(packYAML), 0644))

	r, err := execute(t, "", "--patterns", dir, "patterns", "list")
	require.NoError(t, err)
	assert.Contains(t, r.stdout.String(), "bank-a 1 (Bank A)")
	assert.Contains(t, r.stdout.String(), "issuer-line")

	require.NoError(t, os.WriteFile(bad, []byte("name: broken\nrules: []\n"), 0644))
	r, err = execute(t, "", "patterns", "check", good, bad)
	require.Error(t, err)
	assert.Contains(t, r.stdout.String(), "OK   "+good)
	assert.Contains(t, r.stdout.String(), "FAIL "+bad)
}

func TestPatternsList_Empty(t *testing.T) {
	r, err := execute(t, "", "patterns", "list")
	require.NoError(t, err)
	assert.Contains(t, r.stdout.String(), "No pattern packs loaded")
}
