package content

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/goliatone/go-devblog/internal/logging"
	"github.com/goliatone/go-devblog/internal/markdown"
	"github.com/goliatone/go-devblog/pkg/interfaces"
)

// Repository serves the published content of each category. A category is
// loaded on first use and the result is kept for the lifetime of the
// repository; build a new Repository to pick up changed files.
type Repository struct {
	source interfaces.FileSource
	parser *markdown.Parser
	logger interfaces.Logger

	slots map[interfaces.Category]*slot
}

// slot guards the lazily loaded collection of one category.
type slot struct {
	mu  sync.Mutex
	col *collection
}

var _ interfaces.ContentReader = (*Repository)(nil)

type collection struct {
	items   []*interfaces.ParsedContent
	bySlug  map[string]*interfaces.ParsedContent
	skipped []SkippedEntry
	drafts  int
}

// SkippedEntry records a file that was excluded from a collection because it
// failed to parse or collided with an earlier slug.
type SkippedEntry struct {
	Path string
	Slug string
	Err  error
}

// LoadReport summarises how a category collection was built.
type LoadReport struct {
	Category    interfaces.Category
	Published   int
	Unpublished int
	Skipped     []SkippedEntry
}

// TagCount pairs a tag with the number of published entries carrying it.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// Option configures a Repository at construction time.
type Option func(*Repository)

// WithLogger sets the logger used for load diagnostics.
func WithLogger(logger interfaces.Logger) Option {
	return func(r *Repository) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithParser overrides the markdown parser.
func WithParser(parser *markdown.Parser) Option {
	return func(r *Repository) {
		if parser != nil {
			r.parser = parser
		}
	}
}

// NewRepository constructs a repository reading from source.
func NewRepository(source interfaces.FileSource, opts ...Option) (*Repository, error) {
	if source == nil {
		return nil, ErrSourceRequired
	}
	r := &Repository{
		source: source,
		parser: markdown.NewParser(nil),
		logger: logging.NoOp(),
		slots:  make(map[interfaces.Category]*slot),
	}
	for _, category := range interfaces.Categories() {
		r.slots[category] = &slot{}
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// GetAll returns the published entries of category, newest first. The
// returned slice is shared between callers and must not be modified.
func (r *Repository) GetAll(ctx context.Context, category interfaces.Category) ([]*interfaces.ParsedContent, error) {
	col, err := r.collection(ctx, category)
	if err != nil {
		return nil, err
	}
	return col.items, nil
}

// GetBySlug looks up an entry by slug. A miss reports found=false with a nil
// error.
func (r *Repository) GetBySlug(ctx context.Context, category interfaces.Category, slug string) (*interfaces.ParsedContent, bool, error) {
	col, err := r.collection(ctx, category)
	if err != nil {
		return nil, false, err
	}
	item, ok := col.bySlug[slug]
	return item, ok, nil
}

// FindBySlug is GetBySlug for callers that branch on errors; a miss is a
// *NotFoundError.
func (r *Repository) FindBySlug(ctx context.Context, category interfaces.Category, slug string) (*interfaces.ParsedContent, error) {
	item, ok, err := r.GetBySlug(ctx, category, slug)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &NotFoundError{Resource: string(category), Key: slug}
	}
	return item, nil
}

// GetByTag returns the entries tagged with tag (case-sensitive), preserving
// collection order.
func (r *Repository) GetByTag(ctx context.Context, category interfaces.Category, tag string) ([]*interfaces.ParsedContent, error) {
	col, err := r.collection(ctx, category)
	if err != nil {
		return nil, err
	}
	return filter(col.items, func(item *interfaces.ParsedContent) bool {
		return item.Frontmatter.HasTag(tag)
	}), nil
}

// Search returns the entries whose title, body or description contain query,
// ignoring case. An empty query matches everything.
func (r *Repository) Search(ctx context.Context, category interfaces.Category, query string) ([]*interfaces.ParsedContent, error) {
	col, err := r.collection(ctx, category)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(query)
	return filter(col.items, func(item *interfaces.ParsedContent) bool {
		return strings.Contains(strings.ToLower(item.Frontmatter.Title), needle) ||
			strings.Contains(strings.ToLower(item.Body), needle) ||
			strings.Contains(strings.ToLower(item.Frontmatter.Description), needle)
	}), nil
}

// Tags lists the distinct tags of category with their entry counts, sorted
// by tag.
func (r *Repository) Tags(ctx context.Context, category interfaces.Category) ([]TagCount, error) {
	col, err := r.collection(ctx, category)
	if err != nil {
		return nil, err
	}
	counts := map[string]int{}
	for _, item := range col.items {
		for _, tag := range slices.Compact(slices.Sorted(slices.Values(item.Frontmatter.Tags))) {
			counts[tag]++
		}
	}
	out := make([]TagCount, 0, len(counts))
	for tag, count := range counts {
		out = append(out, TagCount{Tag: tag, Count: count})
	}
	slices.SortFunc(out, func(a, b TagCount) int { return strings.Compare(a.Tag, b.Tag) })
	return out, nil
}

// Report describes the load of category, including skipped files.
func (r *Repository) Report(ctx context.Context, category interfaces.Category) (*LoadReport, error) {
	col, err := r.collection(ctx, category)
	if err != nil {
		return nil, err
	}
	return &LoadReport{
		Category:    category,
		Published:   len(col.items),
		Unpublished: col.drafts,
		Skipped:     slices.Clone(col.skipped),
	}, nil
}

func (r *Repository) collection(ctx context.Context, category interfaces.Category) (*collection, error) {
	s, ok := r.slots[category]
	if !ok {
		return nil, unknownCategory(string(category))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.col != nil {
		return s.col, nil
	}

	col, err := r.load(ctx, category)
	if err != nil {
		return nil, err
	}
	s.col = col
	return col, nil
}

func (r *Repository) load(ctx context.Context, category interfaces.Category) (*collection, error) {
	entries, err := r.source.ListFiles(ctx, category)
	if err != nil {
		return nil, err
	}

	logger := r.logger.WithContext(ctx)
	col := &collection{
		items:  make([]*interfaces.ParsedContent, 0, len(entries)),
		bySlug: make(map[string]*interfaces.ParsedContent, len(entries)),
	}
	paths := make(map[string]string, len(entries))

	for _, entry := range entries {
		doc, err := r.parser.ParseEntry(entry)
		if err != nil {
			r.skip(logger, col, category, entry.Path, markdown.DeriveSlug(entry.Path), err)
			continue
		}
		if !doc.Frontmatter.Published {
			col.drafts++
			continue
		}
		if existing, taken := paths[doc.Slug]; taken {
			r.skip(logger, col, category, entry.Path, doc.Slug, &DuplicateSlugError{
				Slug:         doc.Slug,
				Path:         entry.Path,
				ExistingPath: existing,
			})
			continue
		}
		if !markdown.IsCanonicalSlug(doc.Slug) {
			logging.WithContentContext(logger, entry.Path, doc.Slug, string(category)).
				Debug("content.slug.non_canonical")
		}
		paths[doc.Slug] = entry.Path
		col.bySlug[doc.Slug] = doc
		col.items = append(col.items, doc)
	}

	slices.SortStableFunc(col.items, func(a, b *interfaces.ParsedContent) int {
		return b.Frontmatter.PublishedAt.Compare(a.Frontmatter.PublishedAt)
	})

	logger.Info("content.collection.loaded",
		"category", string(category),
		"published", len(col.items),
		"unpublished", col.drafts,
		"skipped", len(col.skipped),
	)
	return col, nil
}

func (r *Repository) skip(logger interfaces.Logger, col *collection, category interfaces.Category, path, slug string, err error) {
	col.skipped = append(col.skipped, SkippedEntry{Path: path, Slug: slug, Err: err})

	logger = logging.WithContentContext(logger, path, slug, string(category))
	if errors.Is(err, ErrDuplicateSlug) {
		logger.Warn("content.entry.duplicate_slug", "error", err)
		return
	}
	logger.Warn("content.entry.skipped", "error", err)
}

func filter(items []*interfaces.ParsedContent, keep func(*interfaces.ParsedContent) bool) []*interfaces.ParsedContent {
	out := make([]*interfaces.ParsedContent, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}
