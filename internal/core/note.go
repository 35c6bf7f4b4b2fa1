package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/notepress/notepress/internal/markdown"
	"github.com/notepress/notepress/pkg/text"
	"golang.org/x/exp/slices"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Front matter fields consumed by the pipeline.
// Every other field is passed through untouched to the published document.
var recognizedFields = []string{"title", "tags", "related", "created"}

// Note is a single discovered source document.
// Notes are immutable once parsed.
type Note struct {
	// Absolute path of the source file
	Path string

	// Title as declared in the front matter (file name stem otherwise)
	Title string

	// Raw hierarchical tags (ex: domain/cs/algorithms, status/evergreen)
	Tags []string

	// Raw wikilink strings from the `related` front matter field
	Related []string

	// Optional creation date from the front matter
	Created time.Time

	// Unrecognized front matter fields, passed through on publication
	Extra map[string]any

	// Raw body (without the front matter)
	Body markdown.Document
}

// NewNoteFromPath parses a note from a markdown file on disk.
func NewNoteFromPath(path string) (*Note, error) {
	file, err := markdown.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return newNote(path, file)
}

func newNote(path string, file *markdown.File) (*Note, error) {
	attributes, err := file.FrontMatter.AsMap()
	if err != nil {
		return nil, fmt.Errorf("invalid front matter in %s: %w", path, err)
	}

	note := &Note{
		Path:  path,
		Title: text.TrimExtension(filepath.Base(path)),
		Extra: make(map[string]any),
		Body:  file.Body,
	}

	for key, value := range attributes {
		if !IsRecognizedField(key) {
			note.Extra[key] = value
			continue
		}
		switch key {
		case "title":
			if title, ok := value.(string); ok {
				note.Title = title
			}
		case "tags":
			note.Tags = toStrings(value)
		case "related":
			note.Related = toStrings(value)
		case "created":
			note.Created = toTime(value)
		}
	}

	return note, nil
}

// Fingerprint returns a content hash covering exactly the inputs that
// affect the published output: the body and the emitted front matter
// fields. Volatile inputs like the file modification time are excluded
// on purpose to avoid spurious republishes.
func (n *Note) Fingerprint() string {
	inputs := map[string]any{
		"title":   n.Title,
		"tags":    n.Tags,
		"related": n.Related,
		"extra":   n.Extra,
		"body":    n.Body.String(),
	}
	raw, err := yaml.Marshal(inputs) // yaml.v3 sorts map keys = canonical representation
	if err != nil {
		// Maps of scalars read from YAML always marshal back
		panic(err)
	}
	digest := sha256.Sum256(raw)
	return hex.EncodeToString(digest[:])
}

// PublishableNote is a note that passed the publishability predicate.
type PublishableNote struct {
	*Note

	// URL-safe identifier derived from the title
	Slug string
}

func NewPublishableNote(note *Note) *PublishableNote {
	return &PublishableNote{
		Note: note,
		Slug: TitleSlug(note.Title),
	}
}

// TitleSlug derives the URL-safe slug from a note title.
// The function is pure: the same title always returns the same slug.
func TitleSlug(title string) string {
	return slug.Make(title)
}

var displayCaser = cases.Title(language.English, cases.NoLower)

// DisplayTitle returns the title as emitted in published front matter:
// title-cased without touching existing capitals (acronyms survive), with
// the semicolons standing in for colons in file names converted back.
func DisplayTitle(title string) string {
	return strings.ReplaceAll(displayCaser.String(title), ";", ":")
}

/* Helpers */

// toStrings accepts both a YAML sequence and a single scalar.
func toStrings(value any) []string {
	var results []string
	switch v := value.(type) {
	case []any:
		for _, item := range v {
			results = append(results, fmt.Sprint(item))
		}
	case string:
		results = append(results, v)
	}
	return results
}

func toTime(value any) time.Time {
	switch v := value.(type) {
	case time.Time:
		return v
	case string:
		for _, layout := range []string{"2006-01-02", time.RFC3339} {
			if date, err := time.Parse(layout, v); err == nil {
				return date
			}
		}
	}
	return time.Time{}
}

// IsRecognizedField returns if a front matter field is consumed by the pipeline.
func IsRecognizedField(name string) bool {
	return slices.Contains(recognizedFields, name)
}
