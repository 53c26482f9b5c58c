// Package generator renders syndication documents (RSS, Atom, sitemap and
// robots.txt) from the published content collections.
package generator

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/goliatone/go-devblog/internal/identity"
	"github.com/goliatone/go-devblog/pkg/interfaces"
)

const defaultMaxFeedItems = 50

var ErrReaderRequired = errors.New("generator: content reader is required")

// Site describes the publication the documents are generated for.
type Site struct {
	Title       string
	Description string
	BaseURL     string
	Author      string
	Language    string
}

// Config controls which collections are syndicated.
type Config struct {
	Site         Site
	Categories   []interfaces.Category
	MaxFeedItems int
}

// Generator builds documents on demand from a content reader. It holds no
// state of its own beyond configuration.
type Generator struct {
	cfg    Config
	reader interfaces.ContentReader
	now    func() time.Time
}

// Option customises a Generator.
type Option func(*Generator)

// WithClock overrides the clock used when no content timestamp is available.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

// New constructs a generator over reader.
func New(reader interfaces.ContentReader, cfg Config, opts ...Option) (*Generator, error) {
	if reader == nil {
		return nil, ErrReaderRequired
	}
	if len(cfg.Categories) == 0 {
		cfg.Categories = interfaces.Categories()
	}
	if cfg.MaxFeedItems <= 0 {
		cfg.MaxFeedItems = defaultMaxFeedItems
	}
	g := &Generator{cfg: cfg, reader: reader, now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

type feedItem struct {
	Title       string
	Summary     string
	Link        string
	GUID        string
	Author      string
	Category    interfaces.Category
	Tags        []string
	PublishedAt time.Time
}

func (g *Generator) collect(ctx context.Context) ([]feedItem, error) {
	var items []feedItem
	for _, category := range g.cfg.Categories {
		docs, err := g.reader.GetAll(ctx, category)
		if err != nil {
			return nil, err
		}
		for _, doc := range docs {
			items = append(items, feedItem{
				Title:       doc.Frontmatter.Title,
				Summary:     normalizeWhitespace(doc.Frontmatter.Description),
				Link:        absoluteURL(g.cfg.Site.BaseURL, entryRoute(category, doc.Slug)),
				GUID:        "urn:uuid:" + identity.ContentUUID(string(category), doc.Slug).String(),
				Author:      firstNonEmpty(doc.Frontmatter.Author, g.cfg.Site.Author),
				Category:    category,
				Tags:        doc.Frontmatter.Tags,
				PublishedAt: doc.Frontmatter.PublishedAt,
			})
		}
	}
	slices.SortStableFunc(items, func(a, b feedItem) int {
		if c := b.PublishedAt.Compare(a.PublishedAt); c != 0 {
			return c
		}
		return strings.Compare(a.GUID, b.GUID)
	})
	return items, nil
}

// updated is the newest content timestamp, or the clock when there is none.
func (g *Generator) updated(items []feedItem) time.Time {
	for _, item := range items {
		if !item.PublishedAt.IsZero() {
			return item.PublishedAt
		}
	}
	return g.now()
}

func entryRoute(category interfaces.Category, slug string) string {
	return "/" + string(category) + "/" + slug
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
