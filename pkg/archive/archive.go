// Package archive persists generated seev.001 documents in an output
// directory alongside an archive.json manifest of every run.
package archive

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/google/uuid"
)

const (
	manifestFileName = "archive.json"
	manifestVersion  = "1.0.0"
	fileNamePrefix   = "SEEV001_"
	companyNameWidth = 20
)

// Archive manages an output directory of generated documents.
type Archive struct {
	mu       sync.RWMutex
	path     string
	manifest *Manifest
}

// Open loads the archive at dir, creating the directory and an empty
// manifest when none exists yet.
func Open(dir string) (*Archive, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}

	a := &Archive{path: dir}
	data, err := os.ReadFile(filepath.Join(dir, manifestFileName))
	switch {
	case errors.Is(err, os.ErrNotExist):
		now := time.Now().UTC()
		a.manifest = &Manifest{
			Version:   manifestVersion,
			CreatedAt: now,
			UpdatedAt: now,
			Entries:   []*Entry{},
		}
		if err := a.saveManifest(); err != nil {
			return nil, fmt.Errorf("failed to save manifest: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to read archive manifest: %w", err)
	default:
		var manifest Manifest
		if err := json.Unmarshal(data, &manifest); err != nil {
			return nil, fmt.Errorf("failed to parse archive manifest: %w", err)
		}
		a.manifest = &manifest
	}

	return a, nil
}

// Save writes document under a generated file name and appends an entry to
// the manifest. The document is written atomically.
func (a *Archive) Save(document []byte, opts SaveOptions) (*Entry, error) {
	if len(document) == 0 {
		return nil, fmt.Errorf("document is empty")
	}

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	entry := &Entry{
		ID:        uuid.NewString(),
		Source:    opts.Source,
		CreatedAt: now.UTC(),
	}
	if opts.SourceText != nil {
		entry.SourceHash = HashSource(opts.SourceText)
	}
	if rec := opts.Record; rec != nil {
		entry.Company = rec.CompanyName
		entry.ISIN = rec.ISIN
		entry.MeetingType = rec.MeetingType
		entry.MeetingDate = rec.MeetingDate
		entry.Resolutions = len(rec.Resolutions)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	entry.File = a.uniqueName(FileName(entry.Company, now))
	docPath := filepath.Join(a.path, entry.File)
	if err := writeAtomic(docPath, document); err != nil {
		return nil, fmt.Errorf("failed to write document: %w", err)
	}

	// The document and its entry are kept together or not at all.
	count, updated := len(a.manifest.Entries), a.manifest.UpdatedAt
	a.manifest.Entries = append(a.manifest.Entries, entry)
	a.manifest.UpdatedAt = now.UTC()
	if err := a.saveManifest(); err != nil {
		a.manifest.Entries = a.manifest.Entries[:count]
		a.manifest.UpdatedAt = updated
		os.Remove(docPath)
		return nil, fmt.Errorf("failed to save manifest: %w", err)
	}

	return entry, nil
}

// Get returns the entry with the given ID, or nil.
func (a *Archive) Get(id string) *Entry {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, entry := range a.manifest.Entries {
		if entry.ID == id {
			return entry
		}
	}
	return nil
}

// FindBySource returns the most recent entry generated from a notice with
// the given content hash, or nil.
func (a *Archive) FindBySource(hash string) *Entry {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for i := len(a.manifest.Entries) - 1; i >= 0; i-- {
		if a.manifest.Entries[i].SourceHash == hash {
			return a.manifest.Entries[i]
		}
	}
	return nil
}

// List returns all entries, oldest first.
func (a *Archive) List() []*Entry {
	a.mu.RLock()
	defer a.mu.RUnlock()

	result := make([]*Entry, len(a.manifest.Entries))
	copy(result, a.manifest.Entries)
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

// Load returns the stored document for an entry.
func (a *Archive) Load(id string) ([]byte, error) {
	entry := a.Get(id)
	if entry == nil {
		return nil, fmt.Errorf("entry not found: %s", id)
	}
	return os.ReadFile(filepath.Join(a.path, entry.File))
}

// Remove deletes an entry and its document.
func (a *Archive) Remove(id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	kept := make([]*Entry, 0, len(a.manifest.Entries))
	var removed *Entry
	for _, entry := range a.manifest.Entries {
		if entry.ID == id {
			removed = entry
			continue
		}
		kept = append(kept, entry)
	}
	if removed == nil {
		return fmt.Errorf("entry not found: %s", id)
	}

	if err := os.Remove(filepath.Join(a.path, removed.File)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove document: %w", err)
	}
	a.manifest.Entries = kept
	a.manifest.UpdatedAt = time.Now().UTC()
	return a.saveManifest()
}

// Stats returns aggregate counts across all entries.
func (a *Archive) Stats() *Stats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := &Stats{ByMeetingType: make(map[string]int)}
	for _, entry := range a.manifest.Entries {
		stats.Total++
		stats.ByMeetingType[string(entry.MeetingType)]++
		stats.Resolutions += entry.Resolutions
	}
	return stats
}

// Path returns the archive's root directory.
func (a *Archive) Path() string {
	return a.path
}

// FileName returns SEEV001_<company>_<YYYYMMDD_HHMMSS>.xml, with the company
// name cut to twenty characters and made safe for file systems.
func FileName(company string, now time.Time) string {
	company = strings.TrimSpace(company)
	if company == "" {
		company = "Company"
	}
	if runes := []rune(company); len(runes) > companyNameWidth {
		company = string(runes[:companyNameWidth])
	}

	short := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r):
			return '_'
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '-' || r == '&':
			return r
		default:
			return -1
		}
	}, company)

	return fileNamePrefix + short + "_" + now.Format("20060102_150405") + ".xml"
}

// HashSource returns the hex SHA-256 of a notice's content.
func HashSource(text []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(text))
}

// uniqueName appends a counter when name is already taken, which happens
// when two notices for the same issuer are converted within one second.
func (a *Archive) uniqueName(name string) string {
	taken := func(candidate string) bool {
		_, err := os.Stat(filepath.Join(a.path, candidate))
		return err == nil
	}
	if !taken(name) {
		return name
	}
	base := strings.TrimSuffix(name, ".xml")
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s_%d.xml", base, i)
		if !taken(candidate) {
			return candidate
		}
	}
}

func (a *Archive) saveManifest() error {
	data, err := json.MarshalIndent(a.manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	return writeAtomic(filepath.Join(a.path, manifestFileName), data)
}

// writeAtomic writes data to a temporary file in the target directory and
// renames it into place.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".seevgen-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
