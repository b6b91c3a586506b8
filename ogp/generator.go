package ogp

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/samber/lo"
	"github.com/spf13/afero"
	"go.tabichina.jp/site/core"
	"go.tabichina.jp/site/log"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Image is the outcome for a single page.
type Image struct {
	Slug        string
	Type        core.PageType
	ContentHash string
	Path        string
	URL         string
	Cached      bool
}

type Result struct {
	Processed int
	Generated int
	Cached    int
	Images    []Image
}

type Generator struct {
	cfg       *core.Config
	fs        afero.Fs
	fonts     *FontLoader
	collector *core.Collector
	writer    *Writer
	workers   int
	log       *zap.SugaredLogger
}

type Option func(*Generator)

// WithWorkers overrides the number of pages rendered concurrently.
func WithWorkers(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.workers = n
		}
	}
}

func NewGenerator(cfg *core.Config, fs afero.Fs, opts ...Option) *Generator {
	g := &Generator{
		cfg:       cfg,
		fs:        fs,
		fonts:     NewFontLoader(fs, cfg.FontsDirectory, cfg.RegularFont, cfg.BoldFont),
		collector: core.NewCollector(fs, cfg.ContentDirectory, cfg.Extensions),
		writer:    NewWriter(fs, cfg.OutputDirectory, cfg.PublicPrefix),
		workers:   max(cfg.Workers, 1),
		log:       log.S().Named("generator"),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Run renders an image for every page. Existing images are kept unless force
// is set. The first failing page aborts the run.
func (g *Generator) Run(ctx context.Context, force bool) (*Result, error) {
	if !g.fonts.ValidateFonts() {
		regular, bold := g.fonts.Paths()
		return nil, fmt.Errorf("%w: %s, %s", ErrFontsMissing, regular, bold)
	}

	fonts, err := g.fonts.LoadFonts()
	if err != nil {
		return nil, err
	}

	rasterizer, err := NewRasterizer(fonts)
	if err != nil {
		return nil, err
	}

	pages, err := g.collector.Collect()
	if err != nil {
		return nil, err
	}

	g.log.Infof("processing %d pages with %d workers", len(pages), g.workers)

	images := make([]Image, len(pages))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)

	for i, page := range pages {
		if egCtx.Err() != nil {
			break
		}

		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}

			img, err := g.process(page, rasterizer, force)
			if err != nil {
				return fmt.Errorf("failed to process %s: %w", page.Slug, err)
			}

			images[i] = img
			return nil
		})
	}

	err = eg.Wait()
	if err != nil {
		return nil, err
	}

	err = ctx.Err()
	if err != nil {
		return nil, err
	}

	res := &Result{
		Processed: len(images),
		Images:    images,
	}
	res.Cached = lo.CountBy(images, func(img Image) bool { return img.Cached })
	res.Generated = res.Processed - res.Cached

	g.log.Infow("finished", "processed", res.Processed, "generated", res.Generated, "cached", res.Cached)
	return res, nil
}

func (g *Generator) process(page *core.PageMetadata, rasterizer *Rasterizer, force bool) (Image, error) {
	base := page.BasePath()
	props := TemplateProps{
		PageTitle:       page.Title,
		PageDescription: page.Description,
		SiteURL:         g.cfg.SiteURL,
		PageType:        page.Type,
		IsHomePage:      page.IsHome(),
	}

	res, err := g.writer.Write(base, page.Title, force, func() ([]byte, error) {
		return rasterizer.Rasterize(Render(props))
	})
	if err != nil {
		return Image{}, err
	}

	if res.Cached {
		g.log.Debugw("cached", "slug", page.Slug, "url", res.URL)
	} else {
		g.log.Infow("generated", "slug", page.Slug, "url", res.URL)
	}

	return Image{
		Slug:        page.Slug,
		Type:        page.Type,
		ContentHash: page.ContentHash,
		Path:        HashedPath(base, page.Title),
		URL:         res.URL,
		Cached:      res.Cached,
	}, nil
}

// Plan returns the pages and the image paths, relative to the output
// directory, that a run would produce. Nothing is rendered.
func (g *Generator) Plan() ([]Image, error) {
	pages, err := g.collector.Collect()
	if err != nil {
		return nil, err
	}

	return lo.Map(pages, func(page *core.PageMetadata, _ int) Image {
		rel := HashedPath(page.BasePath(), page.Title)
		return Image{
			Slug:        page.Slug,
			Type:        page.Type,
			ContentHash: page.ContentHash,
			Path:        rel,
			URL:         g.writer.url(rel),
		}
	}), nil
}

// Prune removes images in the output directory that no page refers to.
func (g *Generator) Prune(dryRun bool) ([]string, error) {
	planned, err := g.Plan()
	if err != nil {
		return nil, err
	}

	keep := lo.Map(planned, func(img Image, _ int) string { return filepath.ToSlash(img.Path) })
	return NewPruner(g.fs, g.cfg.OutputDirectory).Prune(keep, dryRun)
}
