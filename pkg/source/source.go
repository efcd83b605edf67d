// Package source turns notice files into plain text for extraction.
//
// Text and Markdown files are read as-is, decoded as UTF-8 with a
// Windows-1252 fallback. HTML and DOCX notices are flattened to text with
// bold spans kept as **...** markers, which the company name extractor
// relies on. PDF notices are converted by the external pdftotext binary.
package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var (
	// ErrEmptyInput is returned when a notice holds no text.
	ErrEmptyInput = errors.New("notice is empty")
	// ErrUnsupportedFormat is returned for file extensions with no converter.
	ErrUnsupportedFormat = errors.New("unsupported notice format")
	// ErrConverterUnavailable is returned when an external converter is missing.
	ErrConverterUnavailable = errors.New("converter unavailable")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DefaultPDFTimeout bounds a single pdftotext run.
const DefaultPDFTimeout = 30 * time.Second

// Format identifies how a notice file is converted.
type Format string

const (
	FormatText Format = "text"
	FormatHTML Format = "html"
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
)

var formatsByExtension = map[string]Format{
	".txt":  FormatText,
	".text": FormatText,
	".md":   FormatText,
	".html": FormatHTML,
	".htm":  FormatHTML,
	".pdf":  FormatPDF,
	".docx": FormatDOCX,
}

// DetectFormat returns the format for path, judged by its extension.
func DetectFormat(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if f, ok := formatsByExtension[ext]; ok {
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
}

// Supported reports whether path has a convertible extension.
func Supported(path string) bool {
	_, err := DetectFormat(path)
	return err == nil
}

// Reader converts notice files of any supported format.
type Reader struct {
	pdftotext  string
	pdfTimeout time.Duration
}

// Option is a functional option for configuring the Reader.
type Option func(*Reader)

// WithPDFToText sets the pdftotext binary name or path.
func WithPDFToText(binary string) Option {
	return func(r *Reader) {
		if binary != "" {
			r.pdftotext = binary
		}
	}
}

// WithPDFTimeout bounds each PDF conversion.
func WithPDFTimeout(d time.Duration) Option {
	return func(r *Reader) {
		if d > 0 {
			r.pdfTimeout = d
		}
	}
}

// NewReader creates a Reader using pdftotext from PATH.
func NewReader(options ...Option) *Reader {
	r := &Reader{
		pdftotext:  "pdftotext",
		pdfTimeout: DefaultPDFTimeout,
	}
	for _, option := range options {
		option(r)
	}
	return r
}

// Read returns the text of the notice at path.
func (r *Reader) Read(ctx context.Context, path string) (string, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return "", err
	}

	var text string
	switch format {
	case FormatText:
		text, err = ReadFile(path)
	case FormatHTML:
		text, err = readHTMLFile(path)
	case FormatPDF:
		text, err = r.readPDF(ctx, path)
	case FormatDOCX:
		text, err = readDOCX(path)
	}
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%s: %w", path, ErrEmptyInput)
	}
	return text, nil
}

// ReadFile reads a plain-text notice. Content that is not valid UTF-8 is
// decoded as Windows-1252.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading notice: %w", err)
	}
	return Decode(data)
}

// Decode converts raw notice bytes to a string, dropping a UTF-8 byte order
// mark and falling back to Windows-1252 for invalid UTF-8.
func Decode(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data), nil
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decoding notice: %w", err)
	}
	return string(decoded), nil
}

// tidy trims trailing blanks on every line and collapses runs of blank lines
// left behind by markup conversion.
func tidy(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	blank := 0
	for _, line := range lines {
		line = strings.TrimRight(line, " \t\r")
		if strings.TrimSpace(line) == "" {
			blank++
			if blank > 1 {
				continue
			}
			line = ""
		} else {
			blank = 0
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n")) + "\n"
}
