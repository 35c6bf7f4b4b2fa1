package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/notepress/notepress/pkg/resync"
	"github.com/pelletier/go-toml/v2"
)

// How many parent directories to traverse before considering a directory as not a notepress vault
const maxDepth = 10

// Default .notepress/config content
const DefaultConfig = `
[core]
extensions = ["md", "markdown"]
content = "content/blog"

[filters]
required = ["status/evergreen"]

[links]
prefix = "/blog/"

[tags]
transform = "split"
keep_unmapped_types = true

[images]
dir = "static/images"
prefix = "/images/"
format = "webp"
max_width = 1280
quality = 80
timeout_seconds = 30
command = "ffmpeg"

[publish]
parallel = 4
backlinks = "assets/indices/backlinks.yml"
`

var (
	// Lazy-load configuration and ensure a single read
	configOnce      resync.Once
	configSingleton *Config
)

// Note: Fields must be public for toml package to unmarshall
type ConfigFile struct {
	Core    ConfigCore
	Filters ConfigFilters
	Links   ConfigLinks
	Tags    ConfigTags
	Images  ConfigImages
	Publish ConfigPublish
}

type ConfigCore struct {
	// Subdirectory of the vault containing the notes to scan (empty = whole vault)
	Source string
	// Path to the website repository (absolute, or relative to the vault root)
	Website string
	// Destination directory for published notes, relative to the website
	Content string
	// Markdown file extensions to consider
	Extensions []string
}

type ConfigFilters struct {
	// Tags a note must all carry to be publishable
	Required []string
	// Tags disqualifying a note
	Excluded []string
}

type ConfigLinks struct {
	// URL prefix for published notes (ex: /blog/)
	Prefix        string
	TrailingSlash bool
	// What to do with wikilinks pointing to unpublished notes: "text" or "keep"
	Unresolved string
}

type ConfigTags struct {
	// "split" emits categories/topics/series, "flat" emits hyphenated tags
	Transform string
	// Emit a title-cased series for type tags absent from the series table
	KeepUnmappedTypes bool
	// domain segment => category label (ex: cs = "Computer Science")
	Categories map[string]string
	// full type tag => series label (ex: "type/zettelkasten" = "Zettelkasten")
	Series map[string]string
}

type ConfigImages struct {
	// Directories searched for embedded images, relative to the vault root, in order of precedence
	Sources []string
	// Destination directory for optimized images, relative to the website
	Dir string
	// URL prefix for published images (ex: /images/)
	Prefix string
	// Target format (ex: webp)
	Format string
	// Optional fallback format emitted alongside the target format (ex: png), empty to disable
	Fallback string
	// Maximum width or height in pixels (images are never upscaled)
	MaxWidth int
	// Encoding quality (1-100)
	Quality int
	// Per-image conversion timeout
	TimeoutSeconds int
	// Conversion backend: "ffmpeg", or "copy" in tests
	Command string
}

type ConfigPublish struct {
	// Author injected in the published front matter (empty to omit)
	Author string
	// Number of workers for note transformation and image optimization
	Parallel int
	// Path of the backlink graph file, relative to the website
	Backlinks string
}

func (f *ConfigFile) Validate() error {
	if err := validation.ValidateStruct(&f.Links,
		validation.Field(&f.Links.Prefix, validation.Required),
		validation.Field(&f.Links.Unresolved, validation.In("", "text", "keep")),
	); err != nil {
		return fmt.Errorf("invalid [links] configuration: %w", err)
	}
	if err := validation.ValidateStruct(&f.Tags,
		validation.Field(&f.Tags.Transform, validation.In("", "split", "flat")),
	); err != nil {
		return fmt.Errorf("invalid [tags] configuration: %w", err)
	}
	if err := validation.ValidateStruct(&f.Images,
		validation.Field(&f.Images.Format, validation.Required, validation.In("webp", "png")),
		validation.Field(&f.Images.Fallback, validation.In("", "webp", "png")),
		validation.Field(&f.Images.MaxWidth, validation.Min(0)),
		validation.Field(&f.Images.Quality, validation.Min(0), validation.Max(100)),
		validation.Field(&f.Images.TimeoutSeconds, validation.Min(0)),
		validation.Field(&f.Images.Command, validation.In("", "ffmpeg", "copy")),
	); err != nil {
		return fmt.Errorf("invalid [images] configuration: %w", err)
	}
	if err := validation.ValidateStruct(&f.Publish,
		validation.Field(&f.Publish.Parallel, validation.Min(0)),
	); err != nil {
		return fmt.Errorf("invalid [publish] configuration: %w", err)
	}
	return nil
}

// SupportExtension checks if the given file extension must be considered.
func (f *ConfigFile) SupportExtension(path string) bool {
	ext := strings.TrimPrefix(filepath.Ext(path), ".") // ".md" => "md"
	for _, extension := range f.Core.Extensions {
		if strings.EqualFold(extension, ext) { // case-insensitive
			return true
		}
	}
	return false
}

type Config struct {
	// Vault root directory (contains .notepress/)
	RootDirectory string

	ConfigFile ConfigFile

	// Number of workers, overridable from the command line
	parallel int
}

// CurrentConfig returns the current configuration.
// Only the first call will read the configuration file.
func CurrentConfig() *Config {
	configOnce.Do(func() {
		var err error
		configSingleton, err = ReadConfigFromDirectory(currentHome())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Unable to init configuration: %v\n", err)
			os.Exit(1)
		}
		if configSingleton == nil {
			fmt.Fprintln(os.Stderr, "fatal: not a notepress vault (or any of the parent directories): .notepress")
			os.Exit(1)
		}
	})
	return configSingleton
}

// currentHome returns the vault lookup start directory,
// overridable with the environment variable NOTEPRESS_HOME (useful in tests).
func currentHome() string {
	home := os.Getenv("NOTEPRESS_HOME")
	if home != "" {
		return home
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return cwd
}

// ReadConfigFromDirectory searches for a vault in the given directory or any parent directory.
func ReadConfigFromDirectory(path string) (*Config, error) {
	currentPath := path
	for i := 0; i < maxDepth; i++ {
		configPath := filepath.Join(currentPath, ".notepress", "config")
		if _, err := os.Stat(configPath); err == nil {
			return parseConfigFile(currentPath, configPath)
		}
		parent := filepath.Dir(currentPath)
		if parent == currentPath {
			break
		}
		currentPath = parent
	}
	return nil, nil
}

func parseConfigFile(rootPath, configPath string) (*Config, error) {
	var configFile ConfigFile
	// Start from the defaults so a minimal config file is enough
	if err := toml.Unmarshal([]byte(DefaultConfig), &configFile); err != nil {
		return nil, fmt.Errorf("invalid default configuration: %w", err)
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read config file %q: %w", configPath, err)
	}
	if err := toml.Unmarshal(content, &configFile); err != nil {
		return nil, fmt.Errorf("unable to parse config file %q: %w", configPath, err)
	}
	if err := configFile.Validate(); err != nil {
		return nil, err
	}

	return &Config{
		RootDirectory: rootPath,
		ConfigFile:    configFile,
	}, nil
}

// SetParallel overrides the number of workers.
func (c *Config) SetParallel(parallel int) {
	c.parallel = parallel
}

// Parallel returns the effective number of workers.
func (c *Config) Parallel() int {
	if c.parallel > 0 {
		return c.parallel
	}
	if c.ConfigFile.Publish.Parallel > 0 {
		return c.ConfigFile.Publish.Parallel
	}
	return 1
}

/* Paths */

// SourceDir returns the absolute directory scanned for notes.
func (c *Config) SourceDir() string {
	return filepath.Join(c.RootDirectory, c.ConfigFile.Core.Source)
}

// WebsiteDir returns the absolute website root directory.
func (c *Config) WebsiteDir() string {
	website := c.ConfigFile.Core.Website
	if filepath.IsAbs(website) {
		return website
	}
	return filepath.Join(c.RootDirectory, website)
}

// ContentDir returns the absolute destination directory for published notes.
func (c *Config) ContentDir() string {
	return filepath.Join(c.WebsiteDir(), c.ConfigFile.Core.Content)
}

// ImageDir returns the absolute destination directory for optimized images.
func (c *Config) ImageDir() string {
	return filepath.Join(c.WebsiteDir(), c.ConfigFile.Images.Dir)
}

// ImageSourceDirs returns the absolute directories searched for embedded images,
// in order of precedence.
func (c *Config) ImageSourceDirs() []string {
	var results []string
	for _, dir := range c.ConfigFile.Images.Sources {
		results = append(results, filepath.Join(c.RootDirectory, dir))
	}
	return results
}

// ManifestPath returns the location of the publication manifest.
func (c *Config) ManifestPath() string {
	return filepath.Join(c.RootDirectory, ".notepress", "manifest.yml")
}

// BacklinksPath returns the location of the backlink graph file.
func (c *Config) BacklinksPath() string {
	return filepath.Join(c.WebsiteDir(), c.ConfigFile.Publish.Backlinks)
}
