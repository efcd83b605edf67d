package convert

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrompt(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"o\n", true},
		{" Oui \n", true},
		{"n\n", false},
		{"\n", false},
		{"maybe\n", false},
		{"y", true},
		{"", false},
	}

	for _, tt := range tests {
		var out bytes.Buffer
		got, err := NewPrompt(strings.NewReader(tt.input), &out).Confirm(context.Background(), "SUMMARY\n")
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
		assert.True(t, strings.HasPrefix(out.String(), "SUMMARY\n"))
	}
}

func TestPrompt_Cancelled(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	prompt := NewPrompt(r, io.Discard)
	_, err := prompt.Confirm(ctx, "")
	assert.ErrorIs(t, err, context.Canceled)

	// The abandoned read answers the next prompt.
	go func() { _, _ = w.Write([]byte("y\n")) }()
	ok, err := prompt.Confirm(context.Background(), "")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPrompt_SequentialAnswers(t *testing.T) {
	var out bytes.Buffer
	prompt := NewPrompt(strings.NewReader("y\nn\noui\n"), &out)

	for i, want := range []bool{true, false, true} {
		got, err := prompt.Confirm(context.Background(), "SUMMARY\n")
		require.NoError(t, err)
		assert.Equal(t, want, got, "answer %d", i)
	}

	got, err := prompt.Confirm(context.Background(), "SUMMARY\n")
	require.NoError(t, err)
	assert.False(t, got, "EOF declines")
	assert.Equal(t, 4, strings.Count(out.String(), "[y/N]"))
}

func TestAlwaysConfirm(t *testing.T) {
	ok, err := AlwaysConfirm{}.Confirm(context.Background(), "")
	require.NoError(t, err)
	assert.True(t, ok)
}
