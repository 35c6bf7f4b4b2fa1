package core

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Tag roots with a special meaning in the vault taxonomy.
const (
	tagRootDomain = "domain"
	tagRootType   = "type"
	tagRootStatus = "status"
)

var titleCaser = cases.Title(language.English)

// Taxonomy is the target representation of a note's hierarchical tags.
type Taxonomy struct {
	// Human-readable categories derived from domain tags (ex: "Computer Science")
	Categories []string
	// Slug-safe topics derived from domain tag sub-paths (ex: "algorithms-analysis")
	Topics []string
	// Single series label derived from the first mapped type tag (ex: "Zettelkasten")
	Series string
}

func (t Taxonomy) Empty() bool {
	return len(t.Categories) == 0 && len(t.Topics) == 0 && t.Series == ""
}

// TagConverter converts hierarchical vault tags to site taxonomies.
// The conversion is pure: no filesystem or network access.
type TagConverter struct {
	// domain segment => category label (unknown segments are title-cased)
	Categories map[string]string
	// full type tag => series label
	Series map[string]string
	// Derive a title-cased series for unmapped type tags instead of dropping them
	KeepUnmappedTypes bool
}

func NewTagConverter(cfg ConfigTags) *TagConverter {
	return &TagConverter{
		Categories:        cfg.Categories,
		Series:            cfg.Series,
		KeepUnmappedTypes: cfg.KeepUnmappedTypes,
	}
}

// Convert maps raw hierarchical tags to the target taxonomy.
//
// Ex: domain/cs/algorithms/analysis, type/zettelkasten, status/evergreen
//
//	=> Categories: ["Computer Science"], Topics: ["algorithms-analysis"], Series: "Zettelkasten"
//
// status/* tags are consumed by the publishability predicate only and never emitted.
// De-duplication preserves the first-seen order.
func (c *TagConverter) Convert(tags []string) Taxonomy {
	var result Taxonomy

	for _, tag := range tags {
		parts := strings.Split(strings.TrimSpace(tag), "/")
		switch parts[0] {
		case tagRootStatus:
			// Filtering-only, never published

		case tagRootType:
			if result.Series != "" {
				continue // A single series per note, first mapped tag wins
			}
			if label, ok := c.Series[tag]; ok {
				result.Series = label
			} else if c.KeepUnmappedTypes && len(parts) > 1 {
				result.Series = titleCaser.String(strings.ReplaceAll(parts[1], "-", " "))
			}

		case tagRootDomain:
			if len(parts) < 2 {
				continue
			}
			segment := parts[1]
			category, ok := c.Categories[segment]
			if !ok {
				category = titleCaser.String(strings.ReplaceAll(segment, "-", " "))
			}
			result.Categories = appendUnique(result.Categories, category)
			if len(parts) > 2 {
				topic := strings.ToLower(strings.Join(parts[2:], "-"))
				result.Topics = appendUnique(result.Topics, topic)
			}

		default:
			// Unknown tag structure: flatten as a topic
			topic := strings.ToLower(strings.Join(parts, "-"))
			result.Topics = appendUnique(result.Topics, topic)
		}
	}

	return result
}

// FlatTags returns the URL-safe flattened representation of domain tags
// (ex: domain/cs/algorithms => domain-cs-algorithms), the alternative
// to the split categories/topics/series representation.
func (c *TagConverter) FlatTags(tags []string) []string {
	var results []string
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if !strings.HasPrefix(tag, tagRootDomain+"/") {
			continue
		}
		results = appendUnique(results, strings.ReplaceAll(tag, "/", "-"))
	}
	slices.Sort(results)
	return results
}

// UnpublishableReason is the publishability predicate: a note qualifies if
// its tags contain every required tag and none of the excluded ones.
// A disqualified note gets the human-readable reason for the run report.
func UnpublishableReason(tags, required, excluded []string) (string, bool) {
	for _, tag := range required {
		if !containsTag(tags, tag) {
			return fmt.Sprintf("missing required tag: %s", tag), true
		}
	}
	for _, tag := range excluded {
		if containsTag(tags, tag) {
			return fmt.Sprintf("contains excluded tag: %s", tag), true
		}
	}
	return "", false
}

func containsTag(tags []string, searched string) bool {
	searched = strings.TrimSpace(searched)
	for _, tag := range tags {
		if strings.TrimSpace(tag) == searched {
			return true
		}
	}
	return false
}

func appendUnique(values []string, value string) []string {
	if slices.Contains(values, value) {
		return values
	}
	return append(values, value)
}
