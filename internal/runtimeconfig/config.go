package runtimeconfig

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var ErrConfigInvalid = errors.New("devblog config: invalid configuration")
var ErrLoggingProviderUnknown = errors.New("devblog config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("devblog config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("devblog config: logging format is invalid")

// Config aggregates everything the devblog module needs at runtime. It maps
// one to one onto devblog.toml.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Content  ContentConfig  `toml:"content"`
	Markdown MarkdownConfig `toml:"markdown"`
	Logging  LoggingConfig  `toml:"logging"`
	Query    QueryConfig    `toml:"query"`
	Site     SiteConfig     `toml:"site"`
	Posts    []PostConfig   `toml:"posts"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr            string        `toml:"addr"`
	ReadTimeout     time.Duration `toml:"read_timeout"`
	WriteTimeout    time.Duration `toml:"write_timeout"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
}

// ContentConfig locates the markdown tree. Dir holds one sub-directory per
// category.
type ContentConfig struct {
	Dir     string `toml:"dir"`
	Pattern string `toml:"pattern"`
}

// MarkdownConfig mirrors interfaces.ParseOptions.
type MarkdownConfig struct {
	Extensions []string `toml:"extensions"`
	HardWraps  bool     `toml:"hard_wraps"`
	SafeMode   bool     `toml:"safe_mode"`
}

// LoggingConfig selects and tunes the logger provider.
type LoggingConfig struct {
	Provider  string   `toml:"provider"`
	Level     string   `toml:"level"`
	Format    string   `toml:"format"`
	AddSource bool     `toml:"add_source"`
	Focus     []string `toml:"focus"`
}

// QueryConfig sizes the query result cache. A zero TTL keeps results until
// they are invalidated.
type QueryConfig struct {
	Capacity           int           `toml:"capacity"`
	Shards             int           `toml:"shards"`
	TTL                time.Duration `toml:"ttl"`
	EvictionPercentage int           `toml:"eviction_percentage"`
}

// SiteConfig describes the publication for feeds and the sitemap.
type SiteConfig struct {
	Title       string `toml:"title"`
	Description string `toml:"description"`
	BaseURL     string `toml:"base_url"`
	Author      string `toml:"author"`
	Language    string `toml:"language"`
}

// PostConfig is one sample post served by GET /api/posts. An empty CreatedAt
// is filled with the request time.
type PostConfig struct {
	ID        string `toml:"id"`
	Title     string `toml:"title"`
	Content   string `toml:"content"`
	CreatedAt string `toml:"created_at"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":3000",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Content: ContentConfig{
			Dir:     "content",
			Pattern: "*.md",
		},
		Markdown: MarkdownConfig{},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
		Query: QueryConfig{
			Capacity:           1024,
			Shards:             8,
			EvictionPercentage: 10,
		},
		Site: SiteConfig{
			Title:       "Developer Blog",
			Description: "Articles and projects",
			BaseURL:     "http://localhost:3000",
			Language:    "en",
		},
		Posts: []PostConfig{
			{
				ID:      "1",
				Title:   "Welcome to the Developer Blog",
				Content: "This is your first blog post!",
			},
		},
	}
}

// Validate checks field constraints with ozzo-validation and then the
// logging selection. Field failures match ErrConfigInvalid and carry the
// validation.Errors detail.
func (cfg Config) Validate() error {
	err := validation.ValidateStruct(&cfg,
		validation.Field(&cfg.Server),
		validation.Field(&cfg.Content),
		validation.Field(&cfg.Query),
		validation.Field(&cfg.Site),
		validation.Field(&cfg.Posts),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConfigInvalid, err)
	}

	provider := normalize(cfg.Logging.Provider)
	if !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %q", ErrLoggingProviderUnknown, cfg.Logging.Provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider == "gologger" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

func (s ServerConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Addr, validation.Required),
		validation.Field(&s.ReadTimeout, validation.Min(time.Duration(0))),
		validation.Field(&s.WriteTimeout, validation.Min(time.Duration(0))),
		validation.Field(&s.ShutdownTimeout, validation.Min(time.Duration(0))),
	)
}

func (c ContentConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Dir, validation.Required),
		validation.Field(&c.Pattern, validation.Required, validation.By(func(value any) error {
			pattern, _ := value.(string)
			if _, err := path.Match(pattern, ""); err != nil {
				return validation.NewError("devblog.content.pattern_invalid", "must be a valid glob pattern")
			}
			if strings.Contains(pattern, "/") {
				return validation.NewError("devblog.content.pattern_nested", "must match files directly inside a category directory")
			}
			return nil
		})),
	)
}

func (q QueryConfig) Validate() error {
	return validation.ValidateStruct(&q,
		validation.Field(&q.Capacity, validation.Min(0)),
		validation.Field(&q.Shards, validation.Min(0)),
		validation.Field(&q.TTL, validation.Min(time.Duration(0))),
		validation.Field(&q.EvictionPercentage, validation.Min(0), validation.Max(100)),
	)
}

func (s SiteConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.BaseURL, validation.By(func(value any) error {
			raw, _ := value.(string)
			if strings.TrimSpace(raw) == "" {
				return nil
			}
			parsed, err := url.Parse(raw)
			if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
				return validation.NewError("devblog.site.base_url_invalid", "must be an absolute http(s) URL")
			}
			return nil
		})),
	)
}

func (p PostConfig) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.ID, validation.Required),
		validation.Field(&p.Title, validation.Required),
		validation.Field(&p.CreatedAt, validation.By(func(value any) error {
			raw, _ := value.(string)
			if raw == "" {
				return nil
			}
			if _, err := time.Parse(time.RFC3339, raw); err != nil {
				return validation.NewError("devblog.posts.created_at_invalid", "must be an RFC3339 timestamp")
			}
			return nil
		})),
	)
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch normalize(level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch normalize(format) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
