package markdown

import (
	"fmt"
	"regexp"
	"strings"
)

// Regex to match wikilinks. The first group captures the target note title
// or image file name, the second group the optional display text.
// Golang doesn't support negative lookbehind: the `!` prefix distinguishing
// embedded wikilinks is checked manually against the preceding character,
// otherwise adjacent links ([[A]][[B]]) are missed.
const regexWikilinkRaw = `\[\[([^\[\]|]+?)(?:\|([^\[\]]+?))?\]\]`

var regexWikilink = regexp.MustCompile(regexWikilinkRaw)
var regexEmbeddedWikilink = regexp.MustCompile(`!` + regexWikilinkRaw)

// Wikilink is an internal link to another note ([[Title]], [[Title|Alias]])
// or an embedded media reference (![[picture.png]]).
// See https://en.wikipedia.org/wiki/Help:Link
type Wikilink struct {
	Target string
	Text   string
	Line   int
}

// Piped indicates if a text is present to describe the link. (ex: [[link|A text]])
func (w Wikilink) Piped() bool {
	return w.Text != ""
}

// DisplayText returns the text to show for this link.
func (w Wikilink) DisplayText() string {
	if w.Piped() {
		return w.Text
	}
	return w.Target
}

func (w Wikilink) String() string {
	if w.Piped() {
		return fmt.Sprintf("[[%s|%s]]", w.Target, w.Text)
	}
	return fmt.Sprintf("[[%s]]", w.Target)
}

/*
 * Document
 */

// Wikilinks searches for wikilinks inside a Markdown document.
func (m Document) Wikilinks() []Wikilink {
	return m.extractWikilinks(regexWikilink, false)
}

// EmbeddedWikilinks searches for embedded wikilinks (![[...]]) inside a Markdown document.
func (m Document) EmbeddedWikilinks() []Wikilink {
	return m.extractWikilinks(regexEmbeddedWikilink, true)
}

func (m Document) extractWikilinks(r *regexp.Regexp, embedded bool) []Wikilink {
	var results []Wikilink

	lineNumber := 0
	m.WalkLines(func(line string, insideCode bool) string {
		lineNumber++
		if insideCode {
			// Ignore wikilinks inside code blocks (ex: a sample Markdown code block)
			return line
		}
		for _, match := range r.FindAllStringSubmatchIndex(line, -1) {
			if !embedded && match[0] > 0 && line[match[0]-1] == '!' {
				continue // Embedded wikilink
			}
			wikilink := Wikilink{
				Target: strings.TrimSpace(line[match[2]:match[3]]),
				Line:   lineNumber,
			}
			if match[4] != -1 {
				wikilink.Text = strings.TrimSpace(line[match[4]:match[5]])
			}
			results = append(results, wikilink)
		}
		return line
	})

	return results
}

// ReplaceWikilinks rewrites every wikilink outside code blocks using the
// given replacement function. Embedded wikilinks are left untouched.
func (m Document) ReplaceWikilinks(repl func(w Wikilink) string) Document {
	return m.replaceWikilinks(regexWikilink, false, repl)
}

// ReplaceEmbeddedWikilinks rewrites every embedded wikilink outside code blocks
// using the given replacement function.
func (m Document) ReplaceEmbeddedWikilinks(repl func(w Wikilink) string) Document {
	return m.replaceWikilinks(regexEmbeddedWikilink, true, repl)
}

func (m Document) replaceWikilinks(r *regexp.Regexp, embedded bool, repl func(w Wikilink) string) Document {
	lineNumber := 0
	return m.WalkLines(func(line string, insideCode bool) string {
		lineNumber++
		if insideCode {
			return line
		}

		matches := r.FindAllStringSubmatchIndex(line, -1)
		if matches == nil {
			return line
		}

		var sb strings.Builder
		cursor := 0
		for _, match := range matches {
			if !embedded && match[0] > 0 && line[match[0]-1] == '!' {
				continue // Embedded wikilink
			}
			wikilink := Wikilink{
				Target: strings.TrimSpace(line[match[2]:match[3]]),
				Line:   lineNumber,
			}
			if match[4] != -1 {
				wikilink.Text = strings.TrimSpace(line[match[4]:match[5]])
			}
			sb.WriteString(line[cursor:match[0]])
			sb.WriteString(repl(wikilink))
			cursor = match[1]
		}
		sb.WriteString(line[cursor:])
		return sb.String()
	})
}
