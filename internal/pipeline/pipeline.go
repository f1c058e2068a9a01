// Package pipeline runs the generation pass: split, annotate, render, write.
// Documents are processed one at a time; only configuration, selection, and
// provider transport failures abort a run.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/neicedai/translate/internal/annotate"
	"github.com/neicedai/translate/internal/config"
	"github.com/neicedai/translate/internal/document"
	"github.com/neicedai/translate/internal/home"
	"github.com/neicedai/translate/internal/manifest"
	"github.com/neicedai/translate/internal/providers"
	"github.com/neicedai/translate/internal/render"
)

// Options control one generation pass.
type Options struct {
	// Manifest overrides the configured manifest path.
	Manifest string
	// Only is the selection allow-list (file names or titles).
	Only []string
	// SkipAnnotation skips the provider entirely and emits blank annotations.
	SkipAnnotation bool
	// OutputDir overrides the output directory.
	OutputDir string
	// Provider overrides the default provider name.
	Provider string
}

// Pipeline generates annotation pages for manifest entries.
type Pipeline struct {
	home     *home.Dir
	cfg      *config.Config
	registry *providers.Registry
	renderer *render.Renderer
	logger   *slog.Logger
}

// New creates a pipeline.
func New(h *home.Dir, cfg *config.Config, registry *providers.Registry, logger *slog.Logger) (*Pipeline, error) {
	renderer, err := render.New()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		home:     h,
		cfg:      cfg,
		registry: registry,
		renderer: renderer,
		logger:   logger,
	}, nil
}

// Run executes one generation pass.
func (p *Pipeline) Run(ctx context.Context, opts Options) error {
	manifestPath := p.manifestPath(opts)
	m, err := manifest.Load(manifestPath)
	if err != nil {
		return err
	}

	items, err := manifest.Select(m.Works, opts.Only)
	if err != nil {
		return err
	}

	var client providers.LLMClient
	if !opts.SkipAnnotation {
		name := opts.Provider
		if name == "" {
			name = p.cfg.Defaults.Provider
		}
		client, err = p.registry.Get(name)
		if err != nil {
			return fmt.Errorf("annotation provider unavailable (configure an API key or pass --skip-annotation): %w", err)
		}
	}

	outDir := p.outputDir(opts)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var (
		entries []render.IndexEntry
		stats   runStats
	)
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return err
		}

		entry, skip, err := p.processItem(ctx, client, item, outDir, &stats)
		if err != nil {
			return err
		}
		if skip {
			stats.Skipped++
			continue
		}
		entries = append(entries, entry)
	}

	idx, err := p.renderer.Index(entries)
	if err != nil {
		return err
	}
	indexPath := filepath.Join(outDir, home.IndexFileName)
	if err := os.WriteFile(indexPath, idx, 0o644); err != nil {
		return fmt.Errorf("failed to write index: %w", err)
	}

	p.logger.Info("generation complete",
		"pages", len(entries),
		"skipped", stats.Skipped,
		"tokens", stats.TotalTokens,
		"cost_usd", stats.CostUSD,
		"output", outDir)
	return nil
}

// runStats accumulates provider usage over one pass.
type runStats struct {
	Skipped     int
	TotalTokens int
	CostUSD     float64
}

// processItem handles one manifest entry. skip=true means the document was
// structurally unusable (logged, not fatal).
func (p *Pipeline) processItem(ctx context.Context, client providers.LLMClient, item manifest.Item, outDir string, stats *runStats) (render.IndexEntry, bool, error) {
	srcPath := p.home.SourcePath(item.File)
	raw, err := os.ReadFile(srcPath)
	if err != nil {
		return render.IndexEntry{}, false, fmt.Errorf("failed to read source %s: %w", item.File, err)
	}

	doc := document.New(item.File, item.Title, string(raw))
	if doc.Empty() {
		p.logger.Warn("skipping document with no original lines", "file", item.File)
		return render.IndexEntry{}, true, nil
	}

	ann, err := p.annotate(ctx, client, doc, stats)
	if err != nil {
		return render.IndexEntry{}, false, err
	}

	page, err := p.renderer.Page(doc, ann)
	if err != nil {
		return render.IndexEntry{}, false, err
	}

	pageName := home.PageName(item.File)
	pagePath := filepath.Join(outDir, pageName)
	if err := os.WriteFile(pagePath, page, 0o644); err != nil {
		return render.IndexEntry{}, false, fmt.Errorf("failed to write page: %w", err)
	}

	title := ann.Title
	if title == "" {
		title = doc.Title
	}
	if title == "" {
		title = item.File
	}
	p.logger.Info("generated page", "file", item.File, "page", pageName, "lines", len(doc.OriginalLines))

	return render.IndexEntry{Title: title, File: pageName}, false, nil
}

// annotate obtains the canonical annotation for a document, either from the
// provider or as the blank default. A provider transport failure is fatal; a
// malformed payload degrades through the normalizer.
func (p *Pipeline) annotate(ctx context.Context, client providers.LLMClient, doc *document.Document, stats *runStats) (*annotate.Annotation, error) {
	if client == nil {
		return annotate.NewBlank(doc), nil
	}

	req, err := annotate.BuildChatRequest(doc, "")
	if err != nil {
		return nil, err
	}

	result, err := client.Chat(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("annotation request failed for %s: %w", doc.Name, err)
	}
	stats.TotalTokens += result.TotalTokens
	stats.CostUSD += result.CostUSD

	payload := result.ParsedJSON
	if len(payload) == 0 {
		payload = json.RawMessage(result.Content)
	}

	if err := providers.ValidateStructuredJSON(req.ResponseFormat.JSONSchema, result.ParsedJSON); err != nil {
		p.logger.Warn("response deviates from requested schema, normalizing anyway",
			"file", doc.Name, "error", err)
	}

	p.logger.Debug("annotation response received",
		"file", doc.Name,
		"provider", result.Provider,
		"model", result.ModelUsed,
		"tokens", result.TotalTokens,
		"cost_usd", result.CostUSD)

	return annotate.Normalize(doc, payload), nil
}

func (p *Pipeline) manifestPath(opts Options) string {
	path := opts.Manifest
	if path == "" {
		path = p.cfg.Generate.Manifest
	}
	if path == "" {
		path = home.ManifestFileName
	}
	if !filepath.IsAbs(path) {
		return filepath.Join(p.home.Path(), path)
	}
	return path
}

func (p *Pipeline) outputDir(opts Options) string {
	if opts.OutputDir != "" {
		return opts.OutputDir
	}
	if p.cfg.Generate.OutputDir != "" {
		return p.cfg.Generate.OutputDir
	}
	return p.home.SitePath()
}
