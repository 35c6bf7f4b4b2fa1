package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/notepress/notepress/internal/markdown"
	"github.com/notepress/notepress/internal/medias"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"
)

// Publication statuses reported per note
const (
	StatusPublished        = "published"
	StatusSkippedUnchanged = "skipped-unchanged"
	StatusSkippedFiltered  = "skipped-filtered"
	StatusError            = "error"
)

// NoteReport is the outcome for a single source file.
type NoteReport struct {
	Path   string
	Slug   string
	Title  string
	Status string
	Reason string
}

// StatusLine returns the status in the reporting format (ex: "error: missing title").
func (r *NoteReport) StatusLine() string {
	if r.Status == StatusError {
		return fmt.Sprintf("%s: %s", StatusError, r.Reason)
	}
	return r.Status
}

// RunSummary regroups the outcome of a publishing run.
type RunSummary struct {
	// One report per considered source file, ordered by slug then path
	Reports []*NoteReport
	// Destination files of notes no longer publishable, removed by this run
	OrphanNotes []string
	// Published images no longer referenced by any note, removed by this run
	OrphanImages []string
	// Non-fatal problems (unresolved links, missing images, corrupt manifest)
	Warnings []string
	// The run only reported what it would do
	DryRun bool
}

func (s *RunSummary) Count(status string) int {
	count := 0
	for _, report := range s.Reports {
		if report.Status == status {
			count++
		}
	}
	return count
}

// Errored returns if at least one note failed.
func (s *RunSummary) Errored() bool {
	return s.Count(StatusError) > 0
}

// Publisher orchestrates a run: discovery, resolution, incremental
// publication, image optimization, backlinks and orphan cleanup.
type Publisher struct {
	config    *Config
	manifest  *Manifest
	tags      *TagConverter
	converter medias.Converter

	// Report planned actions without writing anything
	DryRun bool
	// Republish every note even when the fingerprint is unchanged
	Force bool

	// Corrupt manifest warning, surfaced in the run summary
	manifestWarning string
}

func NewPublisher(config *Config) (*Publisher, error) {
	manifest, err := NewManifestFromPath(config.ManifestPath())
	warning := ""
	if err != nil {
		// Degrade to a full republish instead of failing the run
		warning = fmt.Sprintf("ignoring manifest: %v", err)
		CurrentLogger().Warn(warning)
	}

	converter, err := newConverter(config.ConfigFile.Images.Command)
	if err != nil {
		return nil, err
	}

	return &Publisher{
		config:          config,
		manifest:        manifest,
		tags:            NewTagConverter(config.ConfigFile.Tags),
		converter:       converter,
		manifestWarning: warning,
	}, nil
}

func newConverter(command string) (medias.Converter, error) {
	if command == "copy" {
		return medias.NewCopyConverter(), nil
	}
	return medias.NewFFmpegConverter()
}

// renderedNote is the output of the parallel resolution phase,
// decided and written sequentially afterwards.
type renderedNote struct {
	note        *PublishableNote
	fingerprint string
	resolution  *Resolution
	content     string
	err         error
}

// PublishAll runs the complete pipeline over the vault.
//
// Every publishable note is resolved on every run, even when unchanged,
// because the backlink graph and the orphan detection need the full
// reference picture. Only writes and image conversions are incremental.
func (p *Publisher) PublishAll(ctx context.Context) (*RunSummary, error) {
	summary := &RunSummary{DryRun: p.DryRun}
	if p.manifestWarning != "" {
		summary.Warnings = append(summary.Warnings, p.manifestWarning)
	}

	discovered, err := NewDiscovery(p.config).Discover()
	if err != nil {
		return nil, err
	}
	images := NewImageIndex(p.config.ImageSourceDirs())
	resolver := NewResolver(p.config, discovered.Slugs, images)

	CurrentLogger().Infof("Found %d publishable note(s), %d skipped", len(discovered.Notes), len(discovered.Skipped))
	rendered := p.resolveAll(discovered.Notes, resolver)

	for _, skipped := range discovered.Skipped {
		status := StatusSkippedFiltered
		if skipped.ParseError {
			status = StatusError
		}
		summary.Reports = append(summary.Reports, &NoteReport{
			Path:   skipped.Path,
			Title:  skipped.Title,
			Status: status,
			Reason: skipped.Reason,
		})
	}

	outgoing := make(map[string][]string)
	queue := make(map[string]ResolvedImage) // Deduplicated by target basename
	referenced := make(map[string]bool)     // Every image target in use, published or not

	for _, r := range rendered {
		if r.err != nil {
			summary.Reports = append(summary.Reports, &NoteReport{
				Path:   r.note.Path,
				Slug:   r.note.Slug,
				Title:  r.note.Title,
				Status: StatusError,
				Reason: r.err.Error(),
			})
			continue
		}
		summary.Warnings = append(summary.Warnings, r.resolution.Warnings...)
		outgoing[r.note.Slug] = r.resolution.OutgoingLinks
		for _, image := range r.resolution.Images {
			referenced[image.Target] = true
		}

		report, err := p.publishNote(r, queue)
		if err != nil {
			// Preserve what was already published before giving up
			if saveErr := p.saveManifest(); saveErr != nil {
				CurrentLogger().Warnf("unable to save manifest: %v", saveErr)
			}
			return summary, err
		}
		summary.Reports = append(summary.Reports, report)
	}

	if err := p.processImages(ctx, queue, summary); err != nil {
		return summary, err
	}

	p.cleanOrphans(rendered, referenced, summary)

	if p.config.ConfigFile.Publish.Backlinks != "" {
		graph := NewBacklinkGraph(discovered.Notes, outgoing, resolver)
		if !p.DryRun {
			if err := graph.Save(p.config.BacklinksPath()); err != nil {
				return summary, err
			}
		}
	}

	if err := p.saveManifest(); err != nil {
		return summary, err
	}

	for _, warning := range summary.Warnings {
		CurrentLogger().Warn(warning)
	}
	return summary, nil
}

// resolveAll fingerprints and resolves every note using a bounded worker
// pool. Results come back indexed then sorted by slug so the sequential
// write phase is deterministic whatever the pool scheduling.
func (p *Publisher) resolveAll(notes []*PublishableNote, resolver *Resolver) []*renderedNote {
	results := make([]*renderedNote, len(notes))

	var g errgroup.Group
	g.SetLimit(p.config.Parallel())
	for i, note := range notes {
		i, note := i, note
		g.Go(func() error {
			CurrentLogger().Tracef("Resolving %s...", note.Path)
			r := &renderedNote{note: note}
			r.fingerprint = note.Fingerprint()
			r.resolution = resolver.Resolve(note)
			r.content, r.err = p.render(note, r.resolution)
			results[i] = r
			return nil
		})
	}
	g.Wait() // Workers never return an error, failures are per-note

	sort.Slice(results, func(i, j int) bool {
		return results[i].note.Slug < results[j].note.Slug
	})
	return results
}

// render produces the final destination file content.
// The front matter field order is fixed so output is byte-for-byte reproducible.
func (p *Publisher) render(note *PublishableNote, resolution *Resolution) (string, error) {
	fields := []markdown.Field{
		{Key: "title", Value: DisplayTitle(note.Title)},
		{Key: "date", Value: p.manifest.Date(note.Slug, note.Created)},
		{Key: "slug", Value: note.Slug},
	}

	if p.config.ConfigFile.Tags.Transform == "flat" {
		if tags := p.tags.FlatTags(note.Tags); len(tags) > 0 {
			fields = append(fields, markdown.Field{Key: "tags", Value: tags})
		}
	} else {
		taxonomy := p.tags.Convert(note.Tags)
		if len(taxonomy.Categories) > 0 {
			fields = append(fields, markdown.Field{Key: "categories", Value: taxonomy.Categories})
		}
		if len(taxonomy.Topics) > 0 {
			fields = append(fields, markdown.Field{Key: "topics", Value: taxonomy.Topics})
		}
		if taxonomy.Series != "" {
			fields = append(fields, markdown.Field{Key: "series", Value: taxonomy.Series})
		}
	}

	if author := p.config.ConfigFile.Publish.Author; author != "" {
		fields = append(fields, markdown.Field{Key: "author", Value: author})
	}

	// Unrecognized front matter fields pass through, in a stable order
	extraKeys := make([]string, 0, len(note.Extra))
	for key := range note.Extra {
		extraKeys = append(extraKeys, key)
	}
	sort.Strings(extraKeys)
	for _, key := range extraKeys {
		fields = append(fields, markdown.Field{Key: key, Value: note.Extra[key]})
	}

	frontMatter, err := markdown.EncodeFields(fields)
	if err != nil {
		return "", fmt.Errorf("%s: unable to encode front matter: %w", note.Path, err)
	}

	body := strings.TrimRight(resolution.Body.String(), "\n")
	return "---\n" + frontMatter + "---\n\n" + body + "\n", nil
}

// publishNote decides and applies the incremental publication of one note.
func (p *Publisher) publishNote(r *renderedNote, queue map[string]ResolvedImage) (*NoteReport, error) {
	report := &NoteReport{
		Path:  r.note.Path,
		Slug:  r.note.Slug,
		Title: r.note.Title,
	}
	destPath := p.destPath(r.note.Slug)

	decision := p.manifest.Decide(r.note.Slug, r.fingerprint, p.Force)
	if decision == DecisionSkip {
		// An unchanged source can still render differently when other notes
		// appeared or disappeared, so the destination content is checked too.
		if previous, err := os.ReadFile(destPath); err == nil && string(previous) == r.content {
			report.Status = StatusSkippedUnchanged
			// Images of unchanged notes are only reprocessed when missing
			for _, image := range r.resolution.Images {
				if _, err := os.Stat(filepath.Join(p.config.ImageDir(), image.Target)); err != nil {
					queue[image.Target] = image
				}
			}
			return report, nil
		}
	}

	report.Status = StatusPublished
	for _, image := range r.resolution.Images {
		queue[image.Target] = image
	}

	if p.DryRun {
		return report, nil
	}

	if err := writeFileAtomic(destPath, []byte(r.content)); err != nil {
		return nil, fmt.Errorf("unable to publish %s: %w", r.note.Path, err)
	}

	taxonomy := p.tags.Convert(r.note.Tags)
	p.manifest.Record(r.note.Slug, &ManifestEntry{
		SourcePath:  p.relSourcePath(r.note.Path),
		Fingerprint: r.fingerprint,
		Date:        p.manifest.Date(r.note.Slug, r.note.Created),
		Categories:  taxonomy.Categories,
		Topics:      taxonomy.Topics,
		Series:      taxonomy.Series,
		Tags:        p.tags.FlatTags(r.note.Tags),
	})
	return report, nil
}

// processImages converts the queued images with a bounded worker pool.
// Each conversion runs under its own deadline so one corrupt image
// cannot stall the run, and a failed conversion only skips that image.
func (p *Publisher) processImages(ctx context.Context, queue map[string]ResolvedImage, summary *RunSummary) error {
	if len(queue) == 0 || p.DryRun {
		return nil
	}
	if err := os.MkdirAll(p.config.ImageDir(), 0755); err != nil {
		return err
	}

	targets := make([]string, 0, len(queue))
	for target := range queue {
		targets = append(targets, target)
	}
	sort.Strings(targets)

	failures := make([]string, len(targets))
	var g errgroup.Group
	g.SetLimit(p.config.Parallel())
	for i, target := range targets {
		i, image := i, queue[target]
		g.Go(func() error {
			if err := p.convertImage(ctx, image); err != nil {
				failures[i] = err.Error()
			}
			return nil
		})
	}
	g.Wait() // Workers never return an error, failures are per-image

	for _, failure := range failures {
		if failure != "" {
			summary.Warnings = append(summary.Warnings, failure)
		}
	}
	return nil
}

func (p *Publisher) convertImage(ctx context.Context, image ResolvedImage) error {
	cfg := p.config.ConfigFile.Images

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	dimensions := medias.OriginalSize()
	if cfg.MaxWidth > 0 {
		dimensions = medias.ResizeTo(cfg.MaxWidth)
	}

	CurrentLogger().Debugf("Optimizing %s...", image.Source)
	destPath := filepath.Join(p.config.ImageDir(), image.Target)
	if err := p.convertTo(ctx, cfg.Format, image.Source, destPath, dimensions, cfg.Quality); err != nil {
		return fmt.Errorf("unable to optimize %s: %w", image.Source, err)
	}

	if cfg.Fallback != "" && cfg.Fallback != cfg.Format {
		fallbackPath := filepath.Join(p.config.ImageDir(), ImageTarget(image.Target, cfg.Fallback))
		if err := p.convertTo(ctx, cfg.Fallback, image.Source, fallbackPath, dimensions, cfg.Quality); err != nil {
			return fmt.Errorf("unable to optimize %s: %w", image.Source, err)
		}
	}
	return nil
}

func (p *Publisher) convertTo(ctx context.Context, format, src, dest string, dimensions medias.Dimensions, quality int) error {
	switch format {
	case "webp":
		return p.converter.ToWebP(ctx, src, dest, dimensions, quality)
	case "png":
		return p.converter.ToPNG(ctx, src, dest, dimensions)
	default:
		return fmt.Errorf("unsupported image format %q", format)
	}
}

// cleanOrphans removes destination files of notes no longer publishable
// and published images no longer referenced by any note.
func (p *Publisher) cleanOrphans(rendered []*renderedNote, referenced map[string]bool, summary *RunSummary) {
	current := make(map[string]bool)
	for _, r := range rendered {
		current[r.note.Slug] = true
	}

	candidates := make(map[string]bool)
	for slug := range p.manifest.Entries {
		candidates[slug] = true
	}
	// The manifest can be lost or corrupt, so the destination directory is
	// scanned too: a stale file must not survive a forgotten manifest entry.
	if entries, err := os.ReadDir(p.config.ContentDir()); err == nil {
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
				continue
			}
			candidates[strings.TrimSuffix(entry.Name(), ".md")] = true
		}
	}

	slugs := make([]string, 0, len(candidates))
	for slug := range candidates {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)

	for _, slug := range slugs {
		if current[slug] {
			continue
		}
		destPath := p.destPath(slug)
		summary.OrphanNotes = append(summary.OrphanNotes, destPath)
		if p.DryRun {
			continue
		}
		if err := os.Remove(destPath); err != nil && !os.IsNotExist(err) {
			summary.Warnings = append(summary.Warnings, fmt.Sprintf("unable to remove %s: %v", destPath, err))
			continue
		}
		p.manifest.Delete(slug)
	}

	entries, err := os.ReadDir(p.config.ImageDir())
	if err != nil {
		return // No published image yet
	}
	cfg := p.config.ConfigFile.Images
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		primary := name
		if cfg.Fallback != "" && strings.HasSuffix(name, "."+cfg.Fallback) {
			// A fallback file is orphan when its primary is
			primary = ImageTarget(name, cfg.Format)
		}
		if referenced[primary] {
			continue
		}
		imagePath := filepath.Join(p.config.ImageDir(), name)
		summary.OrphanImages = append(summary.OrphanImages, imagePath)
		if p.DryRun {
			continue
		}
		if err := os.Remove(imagePath); err != nil {
			summary.Warnings = append(summary.Warnings, fmt.Sprintf("unable to remove %s: %v", imagePath, err))
		}
	}
}

// PublishOne publishes a single note identified by its title, honoring
// the usual skip decision unless Force is set. The whole vault is still
// scanned so links resolve against the full slug index. Backlinks and
// orphans are left to the next full run.
func (p *Publisher) PublishOne(ctx context.Context, title string) (*NoteReport, error) {
	discovered, err := NewDiscovery(p.config).Discover()
	if err != nil {
		return nil, err
	}

	index := slices.IndexFunc(discovered.Notes, func(n *PublishableNote) bool {
		return normalizeTitle(n.Title) == normalizeTitle(title)
	})
	if index == -1 {
		return nil, fmt.Errorf("no publishable note titled %q", title)
	}
	note := discovered.Notes[index]

	images := NewImageIndex(p.config.ImageSourceDirs())
	resolver := NewResolver(p.config, discovered.Slugs, images)

	r := &renderedNote{note: note, fingerprint: note.Fingerprint()}
	r.resolution = resolver.Resolve(note)
	r.content, r.err = p.render(note, r.resolution)
	if r.err != nil {
		return nil, r.err
	}

	queue := make(map[string]ResolvedImage)
	report, err := p.publishNote(r, queue)
	if err != nil {
		return nil, err
	}
	summary := &RunSummary{Warnings: r.resolution.Warnings}
	if err := p.processImages(ctx, queue, summary); err != nil {
		return report, err
	}
	if err := p.saveManifest(); err != nil {
		return report, err
	}
	for _, warning := range summary.Warnings {
		CurrentLogger().Warn(warning)
	}
	return report, nil
}

// DeleteOne unpublishes a single note identified by its title.
// Unreferenced images are swept by the next full run.
func (p *Publisher) DeleteOne(title string) error {
	slug := TitleSlug(title)
	if _, found := p.manifest.Entries[slug]; !found {
		return fmt.Errorf("no published note titled %q", title)
	}

	destPath := p.destPath(slug)
	if p.DryRun {
		CurrentLogger().Infof("would remove %s", destPath)
		return nil
	}
	if err := os.Remove(destPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	p.manifest.Delete(slug)
	return p.manifest.Save()
}

func (p *Publisher) saveManifest() error {
	if p.DryRun {
		return nil
	}
	return p.manifest.Save()
}

func (p *Publisher) destPath(slug string) string {
	return filepath.Join(p.config.ContentDir(), slug+".md")
}

func (p *Publisher) relSourcePath(path string) string {
	rel, err := filepath.Rel(p.config.RootDirectory, path)
	if err != nil {
		return path
	}
	return rel
}
