package core

import (
	"testing"
	"time"

	"github.com/notepress/notepress/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNoteFromPath(t *testing.T) {
	path := testutil.SetUpFromFileContent(t, "zettelkasten-method.md", `---
title: The Zettelkasten Method
tags:
  - domain/productivity
  - status/evergreen
related:
  - "[[Spaced Repetition]]"
created: 2023-01-15
aliases:
  - Slip-box
---

A note-taking method.
`)

	note, err := NewNoteFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, "The Zettelkasten Method", note.Title)
	assert.Equal(t, []string{"domain/productivity", "status/evergreen"}, note.Tags)
	assert.Equal(t, []string{"[[Spaced Repetition]]"}, note.Related)
	assert.Equal(t, time.Date(2023, time.January, 15, 0, 0, 0, 0, time.UTC), note.Created)
	assert.Equal(t, map[string]any{"aliases": []any{"Slip-box"}}, note.Extra)
	assert.Equal(t, "A note-taking method.", note.Body.TrimSpace().String())
}

func TestNewNoteFromPathWithoutFrontMatter(t *testing.T) {
	path := testutil.SetUpFromFileContent(t, "inbox-note.md", "Just a thought.\n")

	note, err := NewNoteFromPath(path)
	require.NoError(t, err)

	// The file name stem stands in for the missing title
	assert.Equal(t, "inbox-note", note.Title)
	assert.Empty(t, note.Tags)
}

func TestFingerprint(t *testing.T) {
	note := func() *Note {
		return &Note{
			Title: "A Note",
			Tags:  []string{"status/evergreen"},
			Extra: map[string]any{"weight": 1},
			Body:  "Some content.\n",
		}
	}

	reference := note().Fingerprint()

	t.Run("Deterministic", func(t *testing.T) {
		assert.Equal(t, reference, note().Fingerprint())
	})

	t.Run("SensitiveToBody", func(t *testing.T) {
		changed := note()
		changed.Body = "Some other content.\n"
		assert.NotEqual(t, reference, changed.Fingerprint())
	})

	t.Run("SensitiveToTags", func(t *testing.T) {
		changed := note()
		changed.Tags = append(changed.Tags, "domain/cs")
		assert.NotEqual(t, reference, changed.Fingerprint())
	})

	t.Run("SensitiveToExtraFields", func(t *testing.T) {
		changed := note()
		changed.Extra["weight"] = 2
		assert.NotEqual(t, reference, changed.Fingerprint())
	})

	t.Run("InsensitiveToCreationDate", func(t *testing.T) {
		changed := note()
		changed.Created = time.Now()
		assert.Equal(t, reference, changed.Fingerprint())
	})
}

func TestIsRecognizedField(t *testing.T) {
	assert.True(t, IsRecognizedField("title"))
	assert.True(t, IsRecognizedField("created"))
	// Unknown fields pass through to the published front matter
	assert.False(t, IsRecognizedField("aliases"))
}

func TestDisplayTitle(t *testing.T) {
	assert.Equal(t, "The Forgetting Curve", DisplayTitle("the forgetting curve"))
	// Existing capitals are left alone
	assert.Equal(t, "API Design", DisplayTitle("API design"))
	// Semicolons stand in for colons in file names
	assert.Equal(t, "Go: The Good Parts", DisplayTitle("Go; the good parts"))
}

func TestTitleSlug(t *testing.T) {
	assert.Equal(t, "the-zettelkasten-method", TitleSlug("The Zettelkasten Method"))
	assert.Equal(t, "cafe-philosophie", TitleSlug("Café Philosophie"))
	assert.Equal(t, "what-s-a-zettel", TitleSlug("What's a Zettel?"))
	// Same title, same slug, always
	assert.Equal(t, TitleSlug("Idempotence"), TitleSlug("Idempotence"))
}
