package convert

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Confirmer asks whether to generate output for a reviewed summary.
type Confirmer interface {
	Confirm(ctx context.Context, summary string) (bool, error)
}

// AlwaysConfirm accepts every summary.
type AlwaysConfirm struct{}

// Confirm implements Confirmer.
func (AlwaysConfirm) Confirm(context.Context, string) (bool, error) {
	return true, nil
}

// Prompt shows the summary and reads a yes/no answer, one line per call.
// "y", "yes", "o" and "oui" accept; anything else declines.
//
// Reads cannot be interrupted. When ctx is cancelled, Confirm returns but the
// reading goroutine stays blocked on the input until a line arrives; that line
// then answers the next Confirm.
type Prompt struct {
	in  *bufio.Reader
	out io.Writer

	mu      sync.Mutex
	pending chan answer
}

type answer struct {
	line string
	err  error
}

// NewPrompt creates a Prompt reading from in and writing to out.
func NewPrompt(in io.Reader, out io.Writer) *Prompt {
	return &Prompt{in: bufio.NewReader(in), out: out}
}

// read returns the channel of the outstanding read, starting one if needed.
func (p *Prompt) read() <-chan answer {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pending == nil {
		ch := make(chan answer, 1)
		p.pending = ch
		go func() {
			line, err := p.in.ReadString('\n')
			ch <- answer{line: line, err: err}
		}()
	}
	return p.pending
}

// Confirm implements Confirmer.
func (p *Prompt) Confirm(ctx context.Context, summary string) (bool, error) {
	fmt.Fprint(p.out, summary)
	fmt.Fprint(p.out, "Generate the seev.001 document? [y/N] ")

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case a := <-p.read():
		p.mu.Lock()
		p.pending = nil
		p.mu.Unlock()

		if a.err != nil && a.line == "" {
			if a.err == io.EOF {
				return false, nil
			}
			return false, fmt.Errorf("reading answer: %w", a.err)
		}
		switch strings.ToLower(strings.TrimSpace(a.line)) {
		case "y", "yes", "o", "oui":
			return true, nil
		}
		return false, nil
	}
}
