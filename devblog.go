// Package devblog wires the markdown content pipeline into a runnable
// module: file source, parser, repository, query client, feed generator and
// HTTP API, all configured from a single Config.
package devblog

import (
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"strings"

	"github.com/goliatone/go-devblog/internal/content"
	"github.com/goliatone/go-devblog/internal/generator"
	devhttp "github.com/goliatone/go-devblog/internal/http"
	"github.com/goliatone/go-devblog/internal/logging"
	"github.com/goliatone/go-devblog/internal/logging/console"
	"github.com/goliatone/go-devblog/internal/logging/gologger"
	"github.com/goliatone/go-devblog/internal/markdown"
	"github.com/goliatone/go-devblog/internal/query"
	"github.com/goliatone/go-devblog/pkg/interfaces"
)

type (
	Category        = interfaces.Category
	ParsedContent   = interfaces.ParsedContent
	Frontmatter     = interfaces.Frontmatter
	RawContentEntry = interfaces.RawContentEntry
	FileSource      = interfaces.FileSource
	Repository      = content.Repository
	NotFoundError   = content.NotFoundError
	TagCount        = content.TagCount
	LoadReport      = content.LoadReport
	SkippedEntry    = content.SkippedEntry
)

var (
	ErrNotFound        = content.ErrNotFound
	ErrUnknownCategory = content.ErrUnknownCategory
	ErrDuplicateSlug   = content.ErrDuplicateSlug
	ErrParse           = markdown.ErrParse
)

const (
	CategoryArticles = interfaces.CategoryArticles
	CategoryProjects = interfaces.CategoryProjects
)

// Module is one immutable build of the content pipeline. Content changes
// are picked up by building a new Module.
type Module struct {
	cfg       Config
	provider  interfaces.LoggerProvider
	repo      *content.Repository
	queries   *query.Client
	generator *generator.Generator
	api       *devhttp.API
}

type options struct {
	fsys     fs.FS
	source   interfaces.FileSource
	provider interfaces.LoggerProvider
	output   io.Writer
}

// Option customises New.
type Option func(*options)

// WithFS reads content from fsys instead of os.DirFS(cfg.Content.Dir).
// Category directories are expected at the root of fsys.
func WithFS(fsys fs.FS) Option {
	return func(o *options) { o.fsys = fsys }
}

// WithFileSource bypasses the filesystem entirely.
func WithFileSource(source interfaces.FileSource) Option {
	return func(o *options) { o.source = source }
}

// WithLoggerProvider overrides the provider selected by cfg.Logging.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(o *options) { o.provider = provider }
}

// WithLogOutput redirects the console provider, which writes to stderr by
// default.
func WithLogOutput(w io.Writer) Option {
	return func(o *options) { o.output = w }
}

// New validates cfg and builds a module.
func New(cfg Config, opts ...Option) (*Module, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := &options{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	provider := o.provider
	if provider == nil {
		var err error
		provider, err = NewLoggerProvider(cfg.Logging, o.output)
		if err != nil {
			return nil, err
		}
	}

	source := o.source
	if source == nil {
		fsys := o.fsys
		if fsys == nil {
			fsys = os.DirFS(cfg.Content.Dir)
		}
		source = content.NewFSSource(fsys, content.LoaderConfig{Pattern: cfg.Content.Pattern})
	}

	renderer := markdown.NewGoldmarkRenderer(interfaces.ParseOptions{
		Extensions: cfg.Markdown.Extensions,
		HardWraps:  cfg.Markdown.HardWraps,
		SafeMode:   cfg.Markdown.SafeMode,
	})
	logging.MarkdownLogger(provider).Debug("markdown.renderer.configured",
		"extensions", cfg.Markdown.Extensions,
		"hard_wraps", cfg.Markdown.HardWraps,
		"safe_mode", cfg.Markdown.SafeMode,
	)

	repo, err := content.NewRepository(source,
		content.WithParser(markdown.NewParser(renderer)),
		content.WithLogger(logging.ContentLogger(provider)),
	)
	if err != nil {
		return nil, err
	}

	queries := query.New(query.Config{
		Capacity:           cfg.Query.Capacity,
		Shards:             cfg.Query.Shards,
		TTL:                cfg.Query.TTL,
		EvictionPercentage: cfg.Query.EvictionPercentage,
	}, query.WithLogger(logging.QueryLogger(provider)))

	gen, err := generator.New(repo, generator.Config{
		Site: generator.Site{
			Title:       cfg.Site.Title,
			Description: cfg.Site.Description,
			BaseURL:     cfg.Site.BaseURL,
			Author:      cfg.Site.Author,
			Language:    cfg.Site.Language,
		},
	})
	if err != nil {
		return nil, err
	}

	api, err := devhttp.New(repo,
		devhttp.WithQueryClient(queries),
		devhttp.WithGenerator(gen),
		devhttp.WithPosts(cfg.Posts),
		devhttp.WithLogger(logging.HTTPLogger(provider)),
	)
	if err != nil {
		return nil, err
	}

	return &Module{
		cfg:       cfg,
		provider:  provider,
		repo:      repo,
		queries:   queries,
		generator: gen,
		api:       api,
	}, nil
}

// NewLoggerProvider builds the provider named by cfg.Provider. The console
// provider writes to w, or stderr when w is nil.
func NewLoggerProvider(cfg LoggingConfig, w io.Writer) (interfaces.LoggerProvider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "console":
		opts := console.Options{Writer: w}
		if level, ok := console.ParseLevel(cfg.Level); ok {
			opts.MinLevel = &level
		}
		return console.NewProvider(opts), nil
	case "gologger":
		return gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
			Focus:     cfg.Focus,
		})
	default:
		return nil, fmt.Errorf("%w: %q", ErrLoggingProviderUnknown, cfg.Provider)
	}
}

// Config returns the configuration the module was built with.
func (m *Module) Config() Config {
	return m.cfg
}

// Content returns the content repository.
func (m *Module) Content() *Repository {
	return m.repo
}

// Queries returns the query client shared by the HTTP handlers.
func (m *Module) Queries() *query.Client {
	return m.queries
}

// Generator returns the feed and sitemap generator.
func (m *Module) Generator() *generator.Generator {
	return m.generator
}

// Handler returns the HTTP handler with middleware applied.
func (m *Module) Handler() http.Handler {
	return m.api.Handler()
}

// Logger returns a logger for the given module name.
func (m *Module) Logger(name string) interfaces.Logger {
	return logging.ModuleLogger(m.provider, name)
}

// Categories lists every content category in a stable order.
func Categories() []Category {
	return interfaces.Categories()
}

// ParseCategory maps a user supplied name onto a category.
func ParseCategory(name string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(name)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", content.ErrUnknownCategory, name)
	}
	return c, nil
}
