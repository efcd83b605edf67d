// Package watch converts notices as they are dropped into an inbox
// directory.
package watch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"gopkg.in/fsnotify.v1"

	"github.com/coolbeans/seevgen/pkg/logging"
)

// DefaultDebounce is how long a file must stay unchanged before it is
// processed.
const DefaultDebounce = 500 * time.Millisecond

// Handler processes one inbox file.
type Handler func(ctx context.Context, path string) error

// Config configures an Inbox.
type Config struct {
	// Dir is the directory to watch.
	Dir string
	// Debounce delays processing until writes settle.
	Debounce time.Duration
	// StatePath persists processed hashes across restarts. Empty keeps
	// state in memory only.
	StatePath string
	// Accept filters candidate files. Nil accepts every regular file
	// whose name does not start with a dot.
	Accept func(path string) bool
}

// Inbox watches a directory and hands each new notice to a Handler once.
type Inbox struct {
	cfg    Config
	logger *logging.Logger

	mu      sync.Mutex
	state   *State
	pending map[string]*time.Timer
	ready   chan string
}

// NewInbox creates an inbox for cfg.Dir, loading persisted state if any.
func NewInbox(cfg Config, logger *logging.Logger) (*Inbox, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("inbox directory is required")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	state := NewState()
	if cfg.StatePath != "" {
		loaded, err := LoadState(cfg.StatePath)
		if err != nil {
			return nil, err
		}
		state = loaded
	}

	return &Inbox{
		cfg:     cfg,
		logger:  logger.Named("watch"),
		state:   state,
		pending: make(map[string]*time.Timer),
		ready:   make(chan string, 64),
	}, nil
}

// Run processes files already in the inbox, then every file created or
// written until ctx is cancelled. Handler errors are logged and recorded;
// they do not stop the loop.
func (in *Inbox) Run(ctx context.Context, handler Handler) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(in.cfg.Dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", in.cfg.Dir, err)
	}
	defer in.stopTimers()

	existing, err := in.scan()
	if err != nil {
		return err
	}
	for _, path := range existing {
		in.process(ctx, path, handler)
	}

	in.logger.Info(ctx, "watching inbox", zap.String("dir", in.cfg.Dir))

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) != 0 && in.accept(event.Name) {
				in.schedule(event.Name)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			in.logger.Warn(ctx, "watcher error", zap.Error(err))

		case path := <-in.ready:
			in.process(ctx, path, handler)
		}
	}
}

// Processed returns the recorded state of every processed file, sorted by
// path.
func (in *Inbox) Processed() []FileState {
	in.mu.Lock()
	defer in.mu.Unlock()

	result := make([]FileState, 0, len(in.state.ProcessedFiles))
	for _, fs := range in.state.ProcessedFiles {
		result = append(result, fs)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Path < result[j].Path })
	return result
}

// schedule (re)starts the debounce timer for path.
func (in *Inbox) schedule(path string) {
	in.mu.Lock()
	defer in.mu.Unlock()

	if timer, ok := in.pending[path]; ok {
		timer.Reset(in.cfg.Debounce)
		return
	}
	in.pending[path] = time.AfterFunc(in.cfg.Debounce, func() {
		in.mu.Lock()
		delete(in.pending, path)
		in.mu.Unlock()
		in.ready <- path
	})
}

func (in *Inbox) stopTimers() {
	in.mu.Lock()
	defer in.mu.Unlock()
	for path, timer := range in.pending {
		timer.Stop()
		delete(in.pending, path)
	}
}

// process hands path to handler unless identical content was already
// processed successfully.
func (in *Inbox) process(ctx context.Context, path string, handler Handler) {
	data, err := os.ReadFile(path)
	if err != nil {
		in.logger.Warn(ctx, "skipping unreadable file", zap.String("file", path), zap.Error(err))
		return
	}
	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	in.mu.Lock()
	seen := in.state.SeenHash(hash)
	in.mu.Unlock()
	if seen {
		in.logger.Debug(ctx, "skipping duplicate notice", zap.String("file", path))
		return
	}

	fs := FileState{Path: path, Hash: hash, Size: int64(len(data))}
	if err := handler(logging.WithNotice(ctx, path), path); err != nil {
		fs.Error = err.Error()
		in.logger.Error(ctx, "processing failed", zap.String("file", path), zap.Error(err))
	}
	fs.ProcessedAt = time.Now().UTC()

	in.mu.Lock()
	in.state.ProcessedFiles[path] = fs
	var saveErr error
	if in.cfg.StatePath != "" {
		saveErr = in.state.Save(in.cfg.StatePath)
	}
	in.mu.Unlock()

	if saveErr != nil {
		in.logger.Warn(ctx, "failed to save watch state", zap.Error(saveErr))
	}
}

// scan lists accepted files already present, sorted by name.
func (in *Inbox) scan() ([]string, error) {
	entries, err := os.ReadDir(in.cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read inbox: %w", err)
	}
	var paths []string
	for _, entry := range entries {
		path := filepath.Join(in.cfg.Dir, entry.Name())
		if !entry.IsDir() && in.accept(path) {
			paths = append(paths, path)
		}
	}
	return paths, nil
}

func (in *Inbox) accept(path string) bool {
	if strings.HasPrefix(filepath.Base(path), ".") {
		return false
	}
	if in.cfg.StatePath != "" && filepath.Clean(path) == filepath.Clean(in.cfg.StatePath) {
		return false
	}
	if info, err := os.Stat(path); err != nil || !info.Mode().IsRegular() {
		return false
	}
	if in.cfg.Accept != nil {
		return in.cfg.Accept(path)
	}
	return true
}
