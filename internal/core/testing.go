package core

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/notepress/notepress/pkg/clock"
	"github.com/stretchr/testify/require"
)

/*
 * Fixtures
 */

// Reset forgets the singletons so every test starts from a blank state.
func Reset() {
	configOnce.Reset()
	configSingleton = nil
	loggerOnce.Reset()
	loggerSingleton = nil
	clock.Unfreeze()
}

const testConfig = `
[core]
source = "notes"
website = "website"
content = "content/blog"

[filters]
required = ["status/evergreen"]

[links]
prefix = "/blog/"

[tags]
keep_unmapped_types = true

[tags.categories]
cs = "Computer Science"

[tags.series]
"type/zettelkasten" = "Zettelkasten"

[images]
sources = ["images"]
dir = "static/images"
prefix = "/images/"
format = "webp"
command = "copy"

[publish]
parallel = 2
backlinks = "assets/backlinks.yml"
`

// SetUpVaultFromTempDir creates a minimal empty vault in a temp directory
// and points the configuration singleton at it.
func SetUpVaultFromTempDir(t *testing.T) *Config {
	return SetUpVaultFromConfig(t, testConfig)
}

// SetUpVaultFromConfig creates a vault using the given configuration file content.
func SetUpVaultFromConfig(t *testing.T, configContent string) *Config {
	dir := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".notepress"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".notepress", "config"), []byte(configContent), 0644))
	for _, subdir := range []string{"notes", "images", "website"} {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, subdir), 0755))
	}

	t.Setenv("NOTEPRESS_HOME", dir)
	Reset()
	t.Cleanup(Reset)

	return CurrentConfig()
}

// WriteNote creates or overwrites a note under the vault source directory.
func WriteNote(t *testing.T, config *Config, relpath, content string) string {
	path := filepath.Join(config.SourceDir(), relpath)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// WriteImage creates a fake image under the vault image source directory.
// Content does not matter with the copy converter.
func WriteImage(t *testing.T, config *Config, name string) string {
	require.NotEmpty(t, config.ImageSourceDirs())
	path := filepath.Join(config.ImageSourceDirs()[0], name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("not-a-real-image"), 0644))
	return path
}

// ReadPublished returns the destination content of a published note.
func ReadPublished(t *testing.T, config *Config, slug string) string {
	content, err := os.ReadFile(filepath.Join(config.ContentDir(), slug+".md"))
	require.NoError(t, err)
	return string(content)
}

// FreezeNow freezes the clock at a known date for reproducible manifests.
func FreezeNow(t *testing.T) *clock.TestClock {
	frozen := clock.FreezeAt(time.Date(2023, time.September, 1, 10, 0, 0, 0, time.UTC))
	t.Cleanup(clock.Unfreeze)
	return frozen
}
