package core

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/afero"
	"go.tabichina.jp/site/log"
	"go.uber.org/zap"
)

type PageType string

const (
	PageTypeArticle PageType = "article"
	PageTypeHome    PageType = "home"
)

const (
	HomeSlug        = "home"
	HomeTitle       = "Alipayの使い方ガイド"
	HomeDescription = "中国旅行での決済をスムーズに。Alipay、WeChat Pay、UnionPayの使える場所、使えない場所から設定方法まで徹底解説。"

	homeHashSeed = "home-page-content"
)

// PageMetadata describes a page that needs an OGP image.
type PageMetadata struct {
	Slug           string
	Title          string
	Description    string
	HasDescription bool
	Type           PageType
	ContentHash    string
}

func (p *PageMetadata) IsHome() bool {
	return p.Type == PageTypeHome
}

// BasePath is the output path of the page image before the title hash is
// added, relative to the output directory.
func (p *PageMetadata) BasePath() string {
	if p.IsHome() {
		return HomeSlug + ".png"
	}

	return filepath.Join("articles", p.Slug+".png")
}

// Hash returns the hex encoded MD5 digest of s. It names cache files, so
// changing it renames every published image.
func Hash(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// ContentHash fingerprints a page by its frontmatter title and description.
func ContentHash(title, description string) string {
	return Hash(title + "|" + description)
}

// HomePage returns the synthetic homepage entry.
func HomePage() *PageMetadata {
	return &PageMetadata{
		Slug:           HomeSlug,
		Title:          HomeTitle,
		Description:    HomeDescription,
		HasDescription: true,
		Type:           PageTypeHome,
		ContentHash:    Hash(homeHashSeed),
	}
}

type Collector struct {
	fs         *afero.Afero
	dir        string
	extensions []string
	log        *zap.SugaredLogger
}

func NewCollector(fs afero.Fs, dir string, extensions []string) *Collector {
	return &Collector{
		fs:         &afero.Afero{Fs: fs},
		dir:        dir,
		extensions: extensions,
		log:        log.S().Named("collector"),
	}
}

// Collect returns metadata for every content file plus the homepage. Files
// sharing a slug, such as foo.md and foo.mdx, are collected once, keeping the
// first in directory order. If the content directory cannot be listed, the
// pages gathered so far are returned together with the error.
func (c *Collector) Collect() ([]*PageMetadata, error) {
	pages := []*PageMetadata{}

	infos, err := c.fs.ReadDir(c.dir)
	if err != nil {
		return pages, fmt.Errorf("could not read content directory %s: %w", c.dir, err)
	}

	seen := map[string]string{}

	for _, info := range infos {
		if info.IsDir() {
			continue
		}

		filename := info.Name()
		ext := filepath.Ext(filename)
		if !lo.Contains(c.extensions, ext) {
			continue
		}

		slug := strings.TrimSuffix(filename, ext)
		if first, ok := seen[slug]; ok {
			// Both would map to the same image.
			c.log.Warnf("skipping %s: slug %q is already used by %s", filename, slug, first)
			continue
		}
		seen[slug] = filename

		fm := c.extract(filepath.Join(c.dir, filename))

		description, hasDescription := fm["description"]
		page := &PageMetadata{
			Slug:           slug,
			Title:          lo.CoalesceOrEmpty(fm["title"], slug),
			Description:    description,
			HasDescription: hasDescription,
			Type:           PageTypeArticle,
			ContentHash:    ContentHash(fm["title"], description),
		}

		c.log.Debugw("collected page", "slug", page.Slug, "hash", page.ContentHash)
		pages = append(pages, page)
	}

	pages = append(pages, HomePage())
	return pages, nil
}

// extract never fails: unreadable files and malformed frontmatter degrade to
// an empty map so the page falls back to its slug.
func (c *Collector) extract(filename string) map[string]string {
	raw, err := c.fs.ReadFile(filename)
	if err != nil {
		c.log.Warnf("failed to read %s: %v", filename, err)
		return map[string]string{}
	}

	fm, err := ParseFrontMatter(raw)
	if err != nil {
		c.log.Warnf("failed to parse frontmatter from %s: %v", filename, err)
		return map[string]string{}
	}

	return fm
}
