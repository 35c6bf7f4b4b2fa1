package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentConfig(t *testing.T) {
	config := SetUpVaultFromTempDir(t)

	assert.Equal(t, filepath.Join(config.RootDirectory, "notes"), config.SourceDir())
	assert.Equal(t, filepath.Join(config.RootDirectory, "website"), config.WebsiteDir())
	assert.Equal(t, filepath.Join(config.RootDirectory, "website", "content", "blog"), config.ContentDir())
	assert.Equal(t, filepath.Join(config.RootDirectory, "website", "static", "images"), config.ImageDir())
	assert.Equal(t, filepath.Join(config.RootDirectory, ".notepress", "manifest.yml"), config.ManifestPath())
	assert.Equal(t, filepath.Join(config.RootDirectory, "website", "assets", "backlinks.yml"), config.BacklinksPath())

	// The same instance is returned on every call
	assert.Same(t, config, CurrentConfig())
}

func TestReadConfigFromDirectory(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".notepress"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".notepress", "config"), []byte(`
[core]
website = "www"
`), 0644))

	t.Run("FromVaultRoot", func(t *testing.T) {
		config, err := ReadConfigFromDirectory(root)
		require.NoError(t, err)
		require.NotNil(t, config)
		assert.Equal(t, root, config.RootDirectory)
		// Omitted settings fall back on the defaults
		assert.Equal(t, []string{"md", "markdown"}, config.ConfigFile.Core.Extensions)
		assert.Equal(t, "/blog/", config.ConfigFile.Links.Prefix)
		assert.Equal(t, "www", config.ConfigFile.Core.Website)
	})

	t.Run("FromSubdirectory", func(t *testing.T) {
		subdir := filepath.Join(root, "notes", "projects")
		require.NoError(t, os.MkdirAll(subdir, 0755))
		config, err := ReadConfigFromDirectory(subdir)
		require.NoError(t, err)
		require.NotNil(t, config)
		assert.Equal(t, root, config.RootDirectory)
	})

	t.Run("NotAVault", func(t *testing.T) {
		config, err := ReadConfigFromDirectory(t.TempDir())
		require.NoError(t, err)
		assert.Nil(t, config)
	})
}

func TestConfigValidate(t *testing.T) {
	newConfigFile := func() ConfigFile {
		var f ConfigFile
		require.NoError(t, toml.Unmarshal([]byte(DefaultConfig), &f))
		return f
	}

	t.Run("Defaults", func(t *testing.T) {
		f := newConfigFile()
		assert.NoError(t, f.Validate())
	})

	t.Run("InvalidTagTransform", func(t *testing.T) {
		f := newConfigFile()
		f.Tags.Transform = "nested"
		err := f.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "[tags]")
	})

	t.Run("InvalidQuality", func(t *testing.T) {
		f := newConfigFile()
		f.Images.Quality = 150
		err := f.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "[images]")
	})

	t.Run("InvalidUnresolvedPolicy", func(t *testing.T) {
		f := newConfigFile()
		f.Links.Unresolved = "drop"
		assert.Error(t, f.Validate())
	})

	t.Run("InvalidImageFormat", func(t *testing.T) {
		f := newConfigFile()
		f.Images.Format = "avif"
		assert.Error(t, f.Validate())
	})
}

func TestSupportExtension(t *testing.T) {
	f := ConfigFile{}
	f.Core.Extensions = []string{"md", "markdown"}

	assert.True(t, f.SupportExtension("note.md"))
	assert.True(t, f.SupportExtension("note.MD"))
	assert.True(t, f.SupportExtension("dir/note.markdown"))
	assert.False(t, f.SupportExtension("note.txt"))
	assert.False(t, f.SupportExtension("note"))
}

func TestConfigParallel(t *testing.T) {
	config := &Config{}
	assert.Equal(t, 1, config.Parallel())

	config.ConfigFile.Publish.Parallel = 4
	assert.Equal(t, 4, config.Parallel())

	// The command line flag takes precedence
	config.SetParallel(8)
	assert.Equal(t, 8, config.Parallel())
}
