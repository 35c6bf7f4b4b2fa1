package core

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/notepress/notepress/internal/markdown"
	"golang.org/x/exp/slices"
)

// Unresolved wikilink policies
const (
	UnresolvedText = "text" // Replace with the display text
	UnresolvedKeep = "keep" // Leave the raw wikilink in place
)

// ResolvedImage is an embedded image found in a note body,
// with its publication target name (ex: diagram.png => diagram.webp).
type ResolvedImage struct {
	// Absolute path of the original image
	Source string
	// Basename under the image destination directory
	Target string
}

// Resolution is the outcome of resolving a single note body.
type Resolution struct {
	// Body with wikilinks and embedded images rewritten to standard Markdown
	Body markdown.Document
	// Slugs of published notes referenced by the body or the related list,
	// deduplicated, in first-seen order
	OutgoingLinks []string
	// Embedded images referenced by the body
	Images []ResolvedImage
	// Unresolved links and missing images
	Warnings []string
}

// Resolver rewrites vault-internal references to site URLs.
// Resolution is pure: indexes are frozen before the run and no file is touched.
type Resolver struct {
	Slugs         SlugIndex
	Images        ImageIndex
	LinkPrefix    string
	TrailingSlash bool
	// Policy for wikilinks whose target is not published (UnresolvedText or UnresolvedKeep)
	Unresolved  string
	ImagePrefix string
	ImageFormat string
}

func NewResolver(config *Config, slugs SlugIndex, images ImageIndex) *Resolver {
	return &Resolver{
		Slugs:         slugs,
		Images:        images,
		LinkPrefix:    config.ConfigFile.Links.Prefix,
		TrailingSlash: config.ConfigFile.Links.TrailingSlash,
		Unresolved:    config.ConfigFile.Links.Unresolved,
		ImagePrefix:   config.ConfigFile.Images.Prefix,
		ImageFormat:   config.ConfigFile.Images.Format,
	}
}

// NoteURL returns the site URL of a published note.
func (r *Resolver) NoteURL(slug string) string {
	url := r.LinkPrefix + slug
	if r.TrailingSlash {
		url += "/"
	}
	return url
}

// ImageURL returns the site URL of a published image.
func (r *Resolver) ImageURL(target string) string {
	return r.ImagePrefix + target
}

// ImageTarget returns the publication basename of an image
// (source extension swapped for the configured format).
func ImageTarget(name string, format string) string {
	stem := name[:len(name)-len(filepath.Ext(name))]
	return stem + "." + format
}

// Resolve rewrites a note body to standard Markdown. Embedded images are
// rewritten first so the remaining wikilinks are all note links.
// Running Resolve on an already resolved body is a no-op: rewritten links
// no longer match the wikilink syntax.
func (r *Resolver) Resolve(note *PublishableNote) *Resolution {
	result := &Resolution{}

	body := note.Body.ReplaceEmbeddedWikilinks(func(w markdown.Wikilink) string {
		source, ok := r.Images.Resolve(w.Target)
		if !ok {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%s: missing image %q (line %d)", note.Path, w.Target, w.Line))
			return fmt.Sprintf("**(missing image: %s)**", w.Target)
		}
		target := ImageTarget(filepath.Base(source), r.ImageFormat)
		result.Images = append(result.Images, ResolvedImage{
			Source: source,
			Target: target,
		})
		alt := w.Text
		if alt == "" {
			alt = strings.TrimSuffix(w.Target, filepath.Ext(w.Target))
		}
		return fmt.Sprintf("![%s](%s)", alt, r.ImageURL(target))
	})

	body = body.ReplaceWikilinks(func(w markdown.Wikilink) string {
		slug, ok := r.Slugs.Resolve(w.Target)
		if !ok {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%s: unresolved link %q (line %d)", note.Path, w.Target, w.Line))
			if r.Unresolved == UnresolvedKeep {
				return w.String()
			}
			return w.DisplayText()
		}
		if !slices.Contains(result.OutgoingLinks, slug) {
			result.OutgoingLinks = append(result.OutgoingLinks, slug)
		}
		return fmt.Sprintf("[%s](%s)", w.DisplayText(), r.NoteURL(slug))
	})

	if section := r.relatedSection(note, result); section != "" {
		body = markdown.Document(strings.TrimRight(body.String(), "\n") + "\n" + section)
	}

	result.Body = body
	return result
}

// relatedSection builds the "Related Reading" section from the `related`
// front matter list. Entries already linked from the body are dropped to
// avoid repeating them, and unresolved entries are dropped with a warning.
func (r *Resolver) relatedSection(note *PublishableNote, result *Resolution) string {
	var sb strings.Builder
	for _, entry := range note.Related {
		target, text := parseRelatedEntry(entry)
		slug, ok := r.Slugs.Resolve(target)
		if !ok {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%s: unresolved related note %q", note.Path, target))
			continue
		}
		if slices.Contains(result.OutgoingLinks, slug) {
			continue
		}
		result.OutgoingLinks = append(result.OutgoingLinks, slug)
		if text == "" {
			text = target
		}
		sb.WriteString(fmt.Sprintf("- [%s](%s)\n", text, r.NoteURL(slug)))
	}
	if sb.Len() == 0 {
		return ""
	}
	return "\n## Related Reading\n\n" + sb.String()
}

// parseRelatedEntry accepts both a raw title and the wikilink syntax
// ("Note Title", "[[Note Title]]", "[[Note Title|Alias]]").
func parseRelatedEntry(entry string) (target, text string) {
	entry = strings.TrimSpace(entry)
	entry = strings.TrimPrefix(entry, "[[")
	entry = strings.TrimSuffix(entry, "]]")
	if target, text, found := strings.Cut(entry, "|"); found {
		return strings.TrimSpace(target), strings.TrimSpace(text)
	}
	return strings.TrimSpace(entry), ""
}
