package core

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/notepress/notepress/pkg/clock"
	"gopkg.in/yaml.v3"
)

// ManifestEntry records the publication state of a single note, keyed by slug.
type ManifestEntry struct {
	// Path of the source note, relative to the vault root
	SourcePath string `yaml:"source_path"`

	// Content hash of the source at last publication
	Fingerprint string `yaml:"fingerprint"`

	// Publication date exposed on the site, assigned on first publication
	// and preserved on republication so URLs and feeds stay stable
	Date string `yaml:"date"`

	// Timestamp of the last republication
	PublishedAt time.Time `yaml:"published_at"`

	// Published taxonomy, persisted for the backlink and listing indexes
	Categories []string `yaml:"categories,omitempty"`
	Topics     []string `yaml:"topics,omitempty"`
	Series     string   `yaml:"series,omitempty"`
	Tags       []string `yaml:"tags,omitempty"`
}

// Manifest is the durable record of what has been published.
// It is the only state carried between runs.
type Manifest struct {
	Entries map[string]*ManifestEntry `yaml:"entries"`

	path string
}

// NewManifestFromPath loads the manifest, returning an empty one when the
// file does not exist yet. A corrupt manifest also yields an empty one but
// reports the error so the caller can warn loudly: the run degrades to a
// full republish instead of failing.
func NewManifestFromPath(path string) (*Manifest, error) {
	manifest := &Manifest{
		Entries: make(map[string]*ManifestEntry),
		path:    path,
	}

	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return manifest, nil
	}
	if err != nil {
		return manifest, fmt.Errorf("unable to read manifest %q: %w", path, err)
	}
	if err := yaml.Unmarshal(content, manifest); err != nil {
		manifest.Entries = make(map[string]*ManifestEntry)
		return manifest, fmt.Errorf("corrupt manifest %q: %w", path, err)
	}
	if manifest.Entries == nil {
		manifest.Entries = make(map[string]*ManifestEntry)
	}
	return manifest, nil
}

// Decision statuses
const (
	DecisionPublish = "publish"
	DecisionSkip    = "skip"
)

// Decide compares a note fingerprint against the recorded state.
func (m *Manifest) Decide(slug, fingerprint string, force bool) string {
	if force {
		return DecisionPublish
	}
	entry, found := m.Entries[slug]
	if !found {
		return DecisionPublish
	}
	if entry.Fingerprint != fingerprint {
		return DecisionPublish
	}
	return DecisionSkip
}

// Record upserts the entry for a published note.
// The publication date of a previously seen note is preserved.
func (m *Manifest) Record(slug string, entry *ManifestEntry) {
	if previous, found := m.Entries[slug]; found && previous.Date != "" {
		entry.Date = previous.Date
	}
	if entry.Date == "" {
		entry.Date = clock.Now().Format("2006-01-02")
	}
	entry.PublishedAt = clock.Now()
	m.Entries[slug] = entry
}

// Date returns the stable publication date for a slug. A slug already
// published keeps its recorded date. A never-published note gets its
// creation date when the source declares one, today otherwise.
func (m *Manifest) Date(slug string, created time.Time) string {
	if entry, found := m.Entries[slug]; found && entry.Date != "" {
		return entry.Date
	}
	if !created.IsZero() {
		return created.Format("2006-01-02")
	}
	return clock.Now().Format("2006-01-02")
}

// Delete removes the entry for an unpublished note.
func (m *Manifest) Delete(slug string) {
	delete(m.Entries, slug)
}

// Save persists the manifest. The write is skipped when the serialized
// content is unchanged, and atomic otherwise.
func (m *Manifest) Save() error {
	content, err := yaml.Marshal(m) // yaml.v3 sorts map keys = reproducible output
	if err != nil {
		return err
	}
	return writeFileAtomic(m.path, content)
}

// writeFileAtomic writes through a temporary file renamed in place,
// so a crash never leaves a half-written file behind. Writing identical
// content is a no-op to keep repeated runs free of spurious changes.
func writeFileAtomic(path string, content []byte) error {
	if previous, err := os.ReadFile(path); err == nil && bytes.Equal(previous, content) {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmpPath := filepath.Join(filepath.Dir(path), "."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmpPath, content, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
