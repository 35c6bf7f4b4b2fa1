package core

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SlugIndex maps a normalized note title to its slug.
// Built once per run from all publishable notes and read-only afterwards.
type SlugIndex map[string]string

// Resolve looks up a wikilink target (trimmed, case-insensitive).
func (i SlugIndex) Resolve(title string) (string, bool) {
	slug, ok := i[normalizeTitle(title)]
	return slug, ok
}

func normalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// ImageIndex maps an image basename (as referenced by ![[name]]) to its
// absolute source path. When a basename exists in several source
// directories, the first directory in configuration order wins.
type ImageIndex map[string]string

// Resolve looks up an embedded image by basename.
func (i ImageIndex) Resolve(name string) (string, bool) {
	path, ok := i[strings.TrimSpace(name)]
	return path, ok
}

// NewImageIndex scans the given directories (in order of precedence) for images.
func NewImageIndex(dirs []string) ImageIndex {
	index := make(ImageIndex)
	for _, dir := range dirs {
		_ = filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				return nil // Ignore unreadable directories
			}
			if entry.IsDir() {
				return nil
			}
			name := entry.Name()
			if _, found := index[name]; !found {
				index[name] = path
			}
			return nil
		})
	}
	return index
}

// SkippedFile is a source file excluded from the publish set.
type SkippedFile struct {
	Path   string
	Title  string
	Reason string
	// The file was skipped because it failed to parse, not because of its tags
	ParseError bool
}

// DiscoveryResult regroups the outcome of a vault scan.
type DiscoveryResult struct {
	// Publishable notes, ordered lexicographically by source path for reproducible runs
	Notes []*PublishableNote
	// Filtered-out or unparseable files with the reason
	Skipped []*SkippedFile
	// Normalized title => slug, for wikilink resolution
	Slugs SlugIndex
	// Non-fatal problems encountered while scanning
	Warnings []string
}

// Discovery scans a source tree for publishable notes.
type Discovery struct {
	SourceDir  string
	Required   []string
	Excluded   []string
	Extensions *ConfigFile
}

func NewDiscovery(config *Config) *Discovery {
	return &Discovery{
		SourceDir:  config.SourceDir(),
		Required:   config.ConfigFile.Filters.Required,
		Excluded:   config.ConfigFile.Filters.Excluded,
		Extensions: &config.ConfigFile,
	}
}

// Discover walks the source tree, parses every markdown file and applies
// the publishability predicate. A file failing to parse is skipped with a
// warning. A duplicate title or slug among publishable notes is fatal:
// the run must not silently pick one of the conflicting notes.
func (d *Discovery) Discover() (*DiscoveryResult, error) {
	if _, err := os.Stat(d.SourceDir); err != nil {
		return nil, fmt.Errorf("source directory not found: %s", d.SourceDir)
	}

	var paths []string
	err := filepath.WalkDir(d.SourceDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !d.Extensions.SupportExtension(path) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths) // Deterministic ordering

	result := &DiscoveryResult{
		Slugs: make(SlugIndex),
	}
	titlePaths := make(map[string]string) // normalized title => path, to detect conflicts
	slugPaths := make(map[string]string)  // slug => path

	for _, path := range paths {
		note, err := NewNoteFromPath(path)
		if err != nil {
			result.Skipped = append(result.Skipped, &SkippedFile{
				Path:       path,
				Reason:     fmt.Sprintf("unparseable: %v", err),
				ParseError: true,
			})
			result.Warnings = append(result.Warnings, fmt.Sprintf("skipped %s: %v", path, err))
			continue
		}

		if reason, ok := UnpublishableReason(note.Tags, d.Required, d.Excluded); ok {
			CurrentLogger().Debugf("Skipped %s: %s", path, reason)
			result.Skipped = append(result.Skipped, &SkippedFile{
				Path:   path,
				Title:  note.Title,
				Reason: reason,
			})
			continue
		}

		publishable := NewPublishableNote(note)

		normalized := normalizeTitle(note.Title)
		if previous, found := titlePaths[normalized]; found {
			return nil, fmt.Errorf("duplicate title %q in %s and %s", note.Title, previous, path)
		}
		if previous, found := slugPaths[publishable.Slug]; found {
			return nil, fmt.Errorf("slug %q conflicts between %s and %s", publishable.Slug, previous, path)
		}
		titlePaths[normalized] = path
		slugPaths[publishable.Slug] = path

		result.Notes = append(result.Notes, publishable)
		result.Slugs[normalized] = publishable.Slug
	}

	return result, nil
}
