package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// readPDF runs pdftotext in raw mode and returns its standard output.
func (r *Reader) readPDF(ctx context.Context, path string) (string, error) {
	binary, err := exec.LookPath(r.pdftotext)
	if err != nil {
		return "", fmt.Errorf("%w: %s not found, install poppler-utils", ErrConverterUnavailable, r.pdftotext)
	}

	ctx, cancel := context.WithTimeout(ctx, r.pdfTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, binary, "-raw", "-enc", "UTF-8", path, "-")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("pdftotext timed out after %s", r.pdfTimeout)
		}
		return "", fmt.Errorf("pdftotext failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	text, err := Decode(stdout.Bytes())
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%s: %w (image-only or protected PDF)", path, ErrEmptyInput)
	}
	return strings.ReplaceAll(text, "\f", "\n"), nil
}
