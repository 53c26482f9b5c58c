package interfaces

import "time"

// MarkdownRenderer converts Markdown bytes into an HTML fragment.
type MarkdownRenderer interface {
	// Render converts Markdown into HTML using the renderer's default settings.
	Render(markdown []byte) ([]byte, error)
	// RenderWithOptions converts Markdown into HTML using the supplied overrides.
	RenderWithOptions(markdown []byte, opts ParseOptions) ([]byte, error)
}

// ParseOptions customises Markdown rendering, keeping option names readable
// for configuration unmarshalling and CLI flags.
type ParseOptions struct {
	Extensions []string
	HardWraps  bool
	// SafeMode drops raw HTML embedded in the Markdown source. Content is
	// author controlled so it is off by default.
	SafeMode bool
}

// Frontmatter models the metadata block at the top of a content file.
// Recognised keys are typed; everything else is kept verbatim in Extra.
type Frontmatter struct {
	Title       string         `json:"title"`
	Date        string         `json:"date"`
	Author      string         `json:"author,omitempty"`
	Description string         `json:"description,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Published   bool           `json:"published"`
	Extra       map[string]any `json:"extra,omitempty"`

	// PublishedAt is Date parsed into a timestamp; collections sort on it.
	PublishedAt time.Time `json:"-"`
}

// HasTag reports whether tag is present, compared case-sensitively.
func (fm Frontmatter) HasTag(tag string) bool {
	for _, candidate := range fm.Tags {
		if candidate == tag {
			return true
		}
	}
	return false
}

// ParsedContent is a content file after frontmatter extraction and Markdown
// rendering. Values are never mutated once a parser returns them.
type ParsedContent struct {
	Slug        string      `json:"slug"`
	Path        string      `json:"path,omitempty"`
	Frontmatter Frontmatter `json:"frontmatter"`
	Body        string      `json:"content"`
	HTML        string      `json:"html"`
	ReadingTime int         `json:"readingTime"`
}
