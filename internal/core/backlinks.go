package core

import (
	"sort"

	"gopkg.in/yaml.v3"
)

// Backlink is a published note linking to the keyed note.
type Backlink struct {
	Slug  string `yaml:"slug"`
	Title string `yaml:"title"`
	URL   string `yaml:"url"`
}

// BacklinkGraph maps a note slug to the notes linking to it.
// Backlinks are sorted by source slug for reproducible output.
type BacklinkGraph map[string][]Backlink

// NewBacklinkGraph inverts the outgoing links of all resolved notes.
// The graph must be built from every published note, including notes
// skipped as unchanged, otherwise edges from unchanged notes disappear.
func NewBacklinkGraph(notes []*PublishableNote, outgoing map[string][]string, resolver *Resolver) BacklinkGraph {
	titles := make(map[string]string)
	for _, note := range notes {
		titles[note.Slug] = note.Title
	}

	sources := make([]string, 0, len(outgoing))
	for slug := range outgoing {
		sources = append(sources, slug)
	}
	sort.Strings(sources)

	graph := make(BacklinkGraph)
	for _, source := range sources {
		for _, target := range outgoing[source] {
			if target == source {
				continue // Self-links carry no information
			}
			graph[target] = append(graph[target], Backlink{
				Slug:  source,
				Title: titles[source],
				URL:   resolver.NoteURL(source),
			})
		}
	}
	return graph
}

// Save persists the graph as a YAML data file consumable by site templates.
// Unchanged content is not rewritten.
func (g BacklinkGraph) Save(path string) error {
	content, err := yaml.Marshal(g)
	if err != nil {
		return err
	}
	return writeFileAtomic(path, content)
}
