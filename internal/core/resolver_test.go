package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResolver() *Resolver {
	return &Resolver{
		Slugs: SlugIndex{
			"spaced repetition": "spaced-repetition",
			"active recall":     "active-recall",
		},
		Images: ImageIndex{
			"forgetting-curve.png": "/vault/images/forgetting-curve.png",
		},
		LinkPrefix:  "/blog/",
		Unresolved:  UnresolvedText,
		ImagePrefix: "/images/",
		ImageFormat: "webp",
	}
}

func TestResolve(t *testing.T) {
	r := newTestResolver()

	note := &PublishableNote{
		Note: &Note{
			Path: "/vault/notes/memory.md",
			Body: `See [[Spaced Repetition]] and [[Active Recall|recall practice]].

![[forgetting-curve.png|The forgetting curve]]
`,
		},
		Slug: "memory",
	}

	result := r.Resolve(note)

	assert.Equal(t, `See [Spaced Repetition](/blog/spaced-repetition) and [recall practice](/blog/active-recall).

![The forgetting curve](/images/forgetting-curve.webp)
`, result.Body.String())
	assert.Equal(t, []string{"spaced-repetition", "active-recall"}, result.OutgoingLinks)
	require.Len(t, result.Images, 1)
	assert.Equal(t, "/vault/images/forgetting-curve.png", result.Images[0].Source)
	assert.Equal(t, "forgetting-curve.webp", result.Images[0].Target)
	assert.Empty(t, result.Warnings)
}

func TestResolveIsIdempotent(t *testing.T) {
	r := newTestResolver()

	note := &PublishableNote{
		Note: &Note{
			Body: "See [[Spaced Repetition]].\n\n![[forgetting-curve.png]]\n",
		},
		Slug: "memory",
	}

	once := r.Resolve(note)
	note.Body = once.Body
	twice := r.Resolve(note)

	// Rewritten links no longer match the wikilink syntax
	assert.Equal(t, once.Body, twice.Body)
}

func TestResolveUnresolvedLink(t *testing.T) {
	note := func() *PublishableNote {
		return &PublishableNote{
			Note: &Note{
				Path: "/vault/notes/memory.md",
				Body: "See [[Unknown Note|an idea]].\n",
			},
			Slug: "memory",
		}
	}

	t.Run("TextPolicy", func(t *testing.T) {
		r := newTestResolver()
		result := r.Resolve(note())
		assert.Equal(t, "See an idea.\n", result.Body.String())
		assert.Empty(t, result.OutgoingLinks)
		require.Len(t, result.Warnings, 1)
		assert.Contains(t, result.Warnings[0], `unresolved link "Unknown Note"`)
	})

	t.Run("KeepPolicy", func(t *testing.T) {
		r := newTestResolver()
		r.Unresolved = UnresolvedKeep
		result := r.Resolve(note())
		assert.Equal(t, "See [[Unknown Note|an idea]].\n", result.Body.String())
		require.Len(t, result.Warnings, 1)
	})
}

func TestResolveMissingImage(t *testing.T) {
	r := newTestResolver()

	note := &PublishableNote{
		Note: &Note{
			Path: "/vault/notes/memory.md",
			Body: "![[lost.png]]\n",
		},
		Slug: "memory",
	}

	result := r.Resolve(note)
	assert.Equal(t, "**(missing image: lost.png)**\n", result.Body.String())
	assert.Empty(t, result.Images)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], `missing image "lost.png"`)
}

func TestResolveCodeBlocksAreUntouched(t *testing.T) {
	r := newTestResolver()

	note := &PublishableNote{
		Note: &Note{
			Body: "```markdown\n[[Spaced Repetition]]\n```\n",
		},
		Slug: "memory",
	}

	result := r.Resolve(note)
	assert.Equal(t, "```markdown\n[[Spaced Repetition]]\n```\n", result.Body.String())
	assert.Empty(t, result.OutgoingLinks)
}

func TestResolveRelatedSection(t *testing.T) {
	r := newTestResolver()

	note := &PublishableNote{
		Note: &Note{
			Path: "/vault/notes/memory.md",
			Body: "See [[Spaced Repetition]].\n",
			Related: []string{
				"[[Active Recall]]",
				"[[Spaced Repetition]]", // Already linked from the body
				"[[Unknown Note]]",      // Not published
			},
		},
		Slug: "memory",
	}

	result := r.Resolve(note)

	assert.Equal(t, `See [Spaced Repetition](/blog/spaced-repetition).

## Related Reading

- [Active Recall](/blog/active-recall)
`, result.Body.String())
	assert.Equal(t, []string{"spaced-repetition", "active-recall"}, result.OutgoingLinks)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], `unresolved related note "Unknown Note"`)
}

func TestNoteURL(t *testing.T) {
	r := newTestResolver()
	assert.Equal(t, "/blog/memory", r.NoteURL("memory"))

	r.TrailingSlash = true
	assert.Equal(t, "/blog/memory/", r.NoteURL("memory"))
}

func TestParseRelatedEntry(t *testing.T) {
	tests := []struct {
		entry  string
		target string
		text   string
	}{
		{"[[Spaced Repetition]]", "Spaced Repetition", ""},
		{"[[Spaced Repetition|spacing]]", "Spaced Repetition", "spacing"},
		{"Spaced Repetition", "Spaced Repetition", ""},
		{"  [[ Spaced Repetition ]]  ", "Spaced Repetition", ""},
	}
	for _, tt := range tests {
		target, text := parseRelatedEntry(tt.entry)
		assert.Equal(t, tt.target, target)
		assert.Equal(t, tt.text, text)
	}
}
