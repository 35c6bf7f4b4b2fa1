package core

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManifestFromPath(t *testing.T) {
	t.Run("Missing", func(t *testing.T) {
		manifest, err := NewManifestFromPath(filepath.Join(t.TempDir(), "manifest.yml"))
		require.NoError(t, err)
		assert.Empty(t, manifest.Entries)
	})

	t.Run("Corrupt", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "manifest.yml")
		require.NoError(t, os.WriteFile(path, []byte("entries: [not: valid"), 0644))

		manifest, err := NewManifestFromPath(path)
		// The run degrades to a full republish instead of failing
		require.Error(t, err)
		require.NotNil(t, manifest)
		assert.Empty(t, manifest.Entries)
	})

	t.Run("RoundTrip", func(t *testing.T) {
		FreezeNow(t)
		path := filepath.Join(t.TempDir(), "manifest.yml")

		manifest, err := NewManifestFromPath(path)
		require.NoError(t, err)
		manifest.Record("memory", &ManifestEntry{
			SourcePath:  "notes/memory.md",
			Fingerprint: "abc123",
			Categories:  []string{"Computer Science"},
		})
		require.NoError(t, manifest.Save())

		reloaded, err := NewManifestFromPath(path)
		require.NoError(t, err)
		require.Contains(t, reloaded.Entries, "memory")
		entry := reloaded.Entries["memory"]
		assert.Equal(t, "notes/memory.md", entry.SourcePath)
		assert.Equal(t, "abc123", entry.Fingerprint)
		assert.Equal(t, "2023-09-01", entry.Date)
	})
}

func TestManifestDecide(t *testing.T) {
	manifest := &Manifest{
		Entries: map[string]*ManifestEntry{
			"memory": {Fingerprint: "abc123"},
		},
	}

	assert.Equal(t, DecisionPublish, manifest.Decide("new-note", "fff", false))
	assert.Equal(t, DecisionPublish, manifest.Decide("memory", "changed", false))
	assert.Equal(t, DecisionSkip, manifest.Decide("memory", "abc123", false))
	assert.Equal(t, DecisionPublish, manifest.Decide("memory", "abc123", true))
}

func TestManifestDate(t *testing.T) {
	FreezeNow(t)
	manifest := &Manifest{
		Entries: map[string]*ManifestEntry{
			"memory": {Date: "2021-05-01"},
		},
	}
	created := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

	// A recorded date always wins
	assert.Equal(t, "2021-05-01", manifest.Date("memory", created))
	// A never-published note is dated from its creation date
	assert.Equal(t, "2020-01-01", manifest.Date("habits", created))
	// Without a creation date, publication is dated today
	assert.Equal(t, "2023-09-01", manifest.Date("habits", time.Time{}))
}

func TestManifestRecordPreservesDate(t *testing.T) {
	frozen := FreezeNow(t)
	manifest := &Manifest{Entries: make(map[string]*ManifestEntry)}

	manifest.Record("memory", &ManifestEntry{Fingerprint: "v1"})
	assert.Equal(t, "2023-09-01", manifest.Entries["memory"].Date)

	// Republishing months later must not move the publication date
	frozen.FastForward(100 * 24 * time.Hour)
	manifest.Record("memory", &ManifestEntry{Fingerprint: "v2"})
	assert.Equal(t, "2023-09-01", manifest.Entries["memory"].Date)
	assert.Equal(t, "v2", manifest.Entries["memory"].Fingerprint)
	assert.Equal(t, frozen.Now(), manifest.Entries["memory"].PublishedAt)
}

func TestManifestSaveIsIdempotent(t *testing.T) {
	FreezeNow(t)
	path := filepath.Join(t.TempDir(), "manifest.yml")

	manifest, err := NewManifestFromPath(path)
	require.NoError(t, err)
	manifest.Record("memory", &ManifestEntry{Fingerprint: "abc123"})
	require.NoError(t, manifest.Save())

	info1, err := os.Stat(path)
	require.NoError(t, err)

	// Same content, the file must not be rewritten
	require.NoError(t, manifest.Save())
	info2, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, info1.ModTime(), info2.ModTime())
}

func TestWriteFileAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "file.txt")

	require.NoError(t, writeFileAtomic(path, []byte("v1")))
	require.NoError(t, writeFileAtomic(path, []byte("v2")))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "v2", string(content))

	// No leftover temporary file
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
