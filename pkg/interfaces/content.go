package interfaces

import "context"

// Category names one of the fixed content buckets.
type Category string

const (
	CategoryArticles Category = "articles"
	CategoryProjects Category = "projects"
)

// Categories lists every supported category in display order.
func Categories() []Category {
	return []Category{CategoryArticles, CategoryProjects}
}

// Valid reports whether c is one of the supported categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryArticles, CategoryProjects:
		return true
	default:
		return false
	}
}

func (c Category) String() string { return string(c) }

// RawContentEntry is a discovered content file before parsing.
type RawContentEntry struct {
	Path string
	Text string
}

// FileSource enumerates the raw content files of a category. Implementations
// must return entries in a deterministic order; collections rely on it to
// break date ties.
type FileSource interface {
	ListFiles(ctx context.Context, category Category) ([]RawContentEntry, error)
}

// ContentReader is the query surface the HTTP layer and the CLI consume.
type ContentReader interface {
	GetAll(ctx context.Context, category Category) ([]*ParsedContent, error)
	GetBySlug(ctx context.Context, category Category, slug string) (*ParsedContent, bool, error)
	GetByTag(ctx context.Context, category Category, tag string) ([]*ParsedContent, error)
	Search(ctx context.Context, category Category, query string) ([]*ParsedContent, error)
}
