package markdown

import (
	"strings"

	"github.com/notepress/notepress/pkg/text"
)

// Document represents a Markdown document (can be a whole file, or just a snippet)
type Document string

// Lines returns the lines present in the Markdown document
func (m Document) Lines() []string {
	return strings.Split(string(m), "\n")
}

func (m Document) IsBlank() bool {
	return text.IsBlank(string(m))
}

func (m Document) String() string {
	return string(m)
}

// TrimSpace removes spaces at the start and end of a markdown document.
func (m Document) TrimSpace() Document {
	return Document(strings.TrimSpace(string(m)))
}

// SquashBlankLines removes blank lines when multiple successive blank lines are present.
func (m Document) SquashBlankLines() Document {
	return Document(text.SquashBlankLines(string(m)))
}

// WalkLines iterates over the document lines, reporting for each line
// if it belongs to a code block (fenced or indented).
// Wikilink syntax inside code blocks must be left untouched.
func (m Document) WalkLines(fn func(line string, insideCode bool) string) Document {
	var newLines []string
	insideFence := false
	for _, line := range m.Lines() {
		fenceDelimiter := strings.HasPrefix(line, "```")
		if fenceDelimiter {
			insideFence = !insideFence
		}
		insideCode := fenceDelimiter || insideFence ||
			strings.HasPrefix(line, "    ") || strings.HasPrefix(line, "\t")
		newLines = append(newLines, fn(line, insideCode))
	}
	return Document(strings.Join(newLines, "\n"))
}
