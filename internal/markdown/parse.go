package markdown

import (
	"errors"
	"strings"

	"github.com/goliatone/go-devblog/pkg/interfaces"
)

// Parser turns raw content files into ParsedContent values. It is stateless
// apart from its renderer and safe for concurrent use.
type Parser struct {
	renderer interfaces.MarkdownRenderer
}

// NewParser returns a parser that renders bodies with renderer, or with a
// default GoldmarkRenderer when renderer is nil.
func NewParser(renderer interfaces.MarkdownRenderer) *Parser {
	if renderer == nil {
		renderer = NewGoldmarkRenderer(interfaces.ParseOptions{})
	}
	return &Parser{renderer: renderer}
}

var defaultParser = NewParser(nil)

// Parse parses raw with the default renderer. See Parser.Parse.
func Parse(raw, slug string) (*interfaces.ParsedContent, error) {
	return defaultParser.Parse(raw, slug)
}

// Parse splits raw into frontmatter and body, validates the required title
// and date fields and renders the body to HTML. Every failure is a
// *ParseError naming slug.
func (p *Parser) Parse(raw, slug string) (*interfaces.ParsedContent, error) {
	return p.parse(raw, slug, "")
}

// ParseEntry derives the slug from entry.Path and parses entry.Text.
func (p *Parser) ParseEntry(entry interfaces.RawContentEntry) (*interfaces.ParsedContent, error) {
	return p.parse(entry.Text, DeriveSlug(filepathToSlash(entry.Path)), entry.Path)
}

func (p *Parser) parse(raw, slug, sourcePath string) (*interfaces.ParsedContent, error) {
	fail := func(cause error) error {
		return &ParseError{Slug: slug, Path: sourcePath, Cause: cause}
	}

	fm, body, err := ParseFrontMatter([]byte(raw))
	if err != nil {
		return nil, fail(err)
	}

	var missing []error
	if strings.TrimSpace(fm.Title) == "" {
		missing = append(missing, ErrTitleRequired)
	}
	if strings.TrimSpace(fm.Date) == "" {
		missing = append(missing, ErrDateRequired)
	}
	if len(missing) > 0 {
		return nil, fail(errors.Join(missing...))
	}

	html, err := p.renderer.Render(body)
	if err != nil {
		return nil, fail(err)
	}

	text := string(body)
	return &interfaces.ParsedContent{
		Slug:        slug,
		Path:        sourcePath,
		Frontmatter: fm,
		Body:        text,
		HTML:        string(html),
		ReadingTime: ReadingTime(text),
	}, nil
}

func filepathToSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}
