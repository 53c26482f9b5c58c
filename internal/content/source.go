package content

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"

	"github.com/goliatone/go-devblog/pkg/interfaces"
)

// LoaderConfig configures how an FSSource discovers content files.
type LoaderConfig struct {
	// Root is the directory, relative to the filesystem, that holds one
	// sub-directory per category. Defaults to the filesystem root.
	Root string
	// Pattern limits discovered files within a category directory (defaults
	// to "*.md"). Sub-directories are never traversed.
	Pattern string
}

// FSSource lists content files from <Root>/<category>/<Pattern> on any
// fs.FS: os.DirFS for a content checkout, embed.FS for a compiled-in site or
// fstest.MapFS in tests.
type FSSource struct {
	fs      fs.FS
	root    string
	pattern string
}

var _ interfaces.FileSource = (*FSSource)(nil)

// NewFSSource constructs a file source over filesystem.
func NewFSSource(filesystem fs.FS, cfg LoaderConfig) *FSSource {
	pattern := strings.TrimSpace(cfg.Pattern)
	if pattern == "" {
		pattern = "*.md"
	}
	root := path.Clean(strings.Trim(strings.ReplaceAll(cfg.Root, "\\", "/"), "/"))
	return &FSSource{fs: filesystem, root: root, pattern: pattern}
}

// ListFiles reads every matching file of category in lexical path order. A
// missing category directory yields no entries.
func (s *FSSource) ListFiles(ctx context.Context, category interfaces.Category) ([]interfaces.RawContentEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir := path.Join(s.root, string(category))
	matches, err := fs.Glob(s.fs, path.Join(dir, s.pattern))
	if err != nil {
		return nil, fmt.Errorf("content: glob %s: %w", dir, err)
	}
	slices.Sort(matches)

	entries := make([]interfaces.RawContentEntry, 0, len(matches))
	for _, match := range matches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		info, err := fs.Stat(s.fs, match)
		if err != nil {
			return nil, fmt.Errorf("content: stat %s: %w", match, err)
		}
		if info.IsDir() {
			continue
		}
		data, err := fs.ReadFile(s.fs, match)
		if err != nil {
			return nil, fmt.Errorf("content: read %s: %w", match, err)
		}
		entries = append(entries, interfaces.RawContentEntry{Path: match, Text: string(data)})
	}
	return entries, nil
}

// MapSource is an in-memory file source keyed by path. An entry belongs to a
// category when its parent directory is named after it, mirroring the
// content/<category>/<file>.md layout.
type MapSource map[string]string

var _ interfaces.FileSource = MapSource(nil)

// ListFiles returns the entries of category sorted by path.
func (m MapSource) ListFiles(ctx context.Context, category interfaces.Category) ([]interfaces.RawContentEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var entries []interfaces.RawContentEntry
	for p, text := range m {
		if path.Base(path.Dir(p)) != string(category) {
			continue
		}
		entries = append(entries, interfaces.RawContentEntry{Path: p, Text: text})
	}
	slices.SortFunc(entries, func(a, b interfaces.RawContentEntry) int {
		return strings.Compare(a.Path, b.Path)
	})
	return entries, nil
}
