package pattern

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"gopkg.in/fsnotify.v1"
	"gopkg.in/yaml.v3"
)

// Registry manages a collection of pattern packs.
type Registry interface {
	// Register adds a pack to the registry
	Register(pack *Pack) error

	// Unregister removes a pack from the registry
	Unregister(name string) error

	// Get returns a pack by name
	Get(name string) (*Pack, bool)

	// List returns all registered packs sorted by name
	List() []*Pack

	// RulesFor returns every registered rule targeting field
	RulesFor(field Field) []*Rule

	// LoadDirectory loads all packs from a directory
	LoadDirectory(dir string) error

	// LoadFile loads a single pack file
	LoadFile(path string) error
}

// DefaultRegistry is the default implementation of the pattern Registry.
type DefaultRegistry struct {
	mu       sync.RWMutex
	packs    map[string]*Pack
	files    map[string]string
	dir      string
	watcher  *fsnotify.Watcher
	stopChan chan struct{}
	onChange func(event string, pack *Pack)
	onError  func(path string, err error)
}

// NewRegistry creates a new, empty pattern registry.
func NewRegistry() *DefaultRegistry {
	return &DefaultRegistry{
		packs: make(map[string]*Pack),
		files: make(map[string]string),
	}
}

// NewRegistryWithDirectory creates a new registry and loads packs from dir.
func NewRegistryWithDirectory(dir string) (*DefaultRegistry, error) {
	r := NewRegistry()
	if err := r.LoadDirectory(dir); err != nil {
		return nil, err
	}
	return r, nil
}

// Register adds a pack to the registry. Registering a pack whose name and
// version are already present is an error.
func (r *DefaultRegistry) Register(pack *Pack) error {
	return r.register(pack, false)
}

func (r *DefaultRegistry) register(pack *Pack, replace bool) error {
	if pack == nil {
		return fmt.Errorf("pack cannot be nil")
	}
	if err := pack.Validate(); err != nil {
		return fmt.Errorf("invalid pack: %w", err)
	}
	if err := pack.Compile(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.packs[pack.Name]; ok && !replace {
		if existing.Version == pack.Version {
			return fmt.Errorf("pack %q version %s already registered", pack.Name, pack.Version)
		}
	}

	r.packs[pack.Name] = pack
	if pack.source != "" {
		r.files[pack.source] = pack.Name
	}
	return nil
}

// Unregister removes a pack from the registry.
func (r *DefaultRegistry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	pack, ok := r.packs[name]
	if !ok {
		return fmt.Errorf("pack %q not found", name)
	}
	delete(r.packs, name)
	if pack.source != "" {
		delete(r.files, pack.source)
	}
	return nil
}

// Get returns a pack by name.
func (r *DefaultRegistry) Get(name string) (*Pack, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pack, ok := r.packs[name]
	return pack, ok
}

// List returns all registered packs sorted by name.
func (r *DefaultRegistry) List() []*Pack {
	r.mu.RLock()
	defer r.mu.RUnlock()

	packs := make([]*Pack, 0, len(r.packs))
	for _, p := range r.packs {
		packs = append(packs, p)
	}
	sort.Slice(packs, func(i, j int) bool { return packs[i].Name < packs[j].Name })
	return packs
}

// RulesFor returns the rules for field across all packs, ordered by pack name
// and then by declaration order within each pack.
func (r *DefaultRegistry) RulesFor(field Field) []*Rule {
	var rules []*Rule
	for _, p := range r.List() {
		rules = append(rules, p.RulesFor(field)...)
	}
	return rules
}

// Count returns the number of registered packs.
func (r *DefaultRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.packs)
}

// Dir returns the directory the registry loads from.
func (r *DefaultRegistry) Dir() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.dir
}

func isPackFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".toml":
		return true
	}
	return false
}

// LoadDirectory loads all YAML and TOML pack files from a directory.
// A missing directory loads nothing.
func (r *DefaultRegistry) LoadDirectory(dir string) error {
	r.mu.Lock()
	r.dir = dir
	r.mu.Unlock()

	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("checking directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var loadErrors []string
	for _, entry := range entries {
		if entry.IsDir() || !isPackFile(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := r.LoadFile(path); err != nil {
			loadErrors = append(loadErrors, fmt.Sprintf("%s: %v", entry.Name(), err))
		}
	}

	if len(loadErrors) > 0 {
		return fmt.Errorf("errors loading pattern packs: %s", strings.Join(loadErrors, "; "))
	}
	return nil
}

// ParseFile decodes and validates a pack file without registering it.
func ParseFile(path string) (*Pack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	var pack Pack
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, &pack); err != nil {
			return nil, fmt.Errorf("parsing TOML: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &pack); err != nil {
			return nil, fmt.Errorf("parsing YAML: %w", err)
		}
	}
	pack.source = path

	if err := pack.Validate(); err != nil {
		return nil, err
	}
	if err := pack.Compile(); err != nil {
		return nil, err
	}
	return &pack, nil
}

// LoadFile loads a single pack file, replacing any pack previously loaded
// from the same path.
func (r *DefaultRegistry) LoadFile(path string) error {
	pack, err := ParseFile(path)
	if err != nil {
		return err
	}

	r.mu.Lock()
	if old, ok := r.files[path]; ok && old != pack.Name {
		delete(r.packs, old)
	}
	r.mu.Unlock()

	if err := r.register(pack, true); err != nil {
		return fmt.Errorf("registering pack: %w", err)
	}
	return nil
}

// Reload clears the registry and reloads the configured directory.
func (r *DefaultRegistry) Reload() error {
	dir := r.Dir()
	if dir == "" {
		return fmt.Errorf("no directory configured for reload")
	}
	r.Clear()
	return r.LoadDirectory(dir)
}

// SetOnChange sets a callback invoked after a watched pack changes.
func (r *DefaultRegistry) SetOnChange(fn func(event string, pack *Pack)) {
	r.onChange = fn
}

// SetOnError sets a callback invoked when a watched file fails to load.
func (r *DefaultRegistry) SetOnError(fn func(path string, err error)) {
	r.onError = fn
}

// Watch starts watching the pack directory for changes.
func (r *DefaultRegistry) Watch() error {
	dir := r.Dir()
	if dir == "" {
		return fmt.Errorf("no directory configured for watching")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watching directory %s: %w", dir, err)
	}

	r.watcher = watcher
	r.stopChan = make(chan struct{})
	go r.watchLoop(watcher, r.stopChan)
	return nil
}

func (r *DefaultRegistry) watchLoop(watcher *fsnotify.Watcher, stop chan struct{}) {
	for {
		select {
		case <-stop:
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !isPackFile(event.Name) {
				continue
			}

			switch {
			case event.Op&fsnotify.Create == fsnotify.Create:
				r.handleFileChange(event.Name, "create")
			case event.Op&fsnotify.Write == fsnotify.Write:
				r.handleFileChange(event.Name, "modify")
			case event.Op&fsnotify.Remove == fsnotify.Remove,
				event.Op&fsnotify.Rename == fsnotify.Rename:
				r.handleFileRemove(event.Name)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			r.reportError(r.Dir(), err)
		}
	}
}

func (r *DefaultRegistry) handleFileChange(path, eventType string) {
	if err := r.LoadFile(path); err != nil {
		r.reportError(path, err)
		return
	}
	if r.onChange != nil {
		r.mu.RLock()
		pack := r.packs[r.files[path]]
		r.mu.RUnlock()
		r.onChange(eventType, pack)
	}
}

func (r *DefaultRegistry) handleFileRemove(path string) {
	r.mu.Lock()
	name, ok := r.files[path]
	var pack *Pack
	if ok {
		pack = r.packs[name]
		delete(r.packs, name)
		delete(r.files, path)
	}
	r.mu.Unlock()

	if ok && r.onChange != nil {
		r.onChange("remove", pack)
	}
}

func (r *DefaultRegistry) reportError(path string, err error) {
	if r.onError != nil {
		r.onError(path, err)
	}
}

// StopWatch stops watching the pack directory.
func (r *DefaultRegistry) StopWatch() {
	if r.stopChan != nil {
		close(r.stopChan)
		r.stopChan = nil
	}
	if r.watcher != nil {
		r.watcher.Close()
		r.watcher = nil
	}
}

// Clear removes all packs from the registry.
func (r *DefaultRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.packs = make(map[string]*Pack)
	r.files = make(map[string]string)
}
