package markdown

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-devblog/pkg/interfaces"
	"github.com/goliatone/go-devblog/pkg/testsupport"
)

func TestParseFrontMatter(t *testing.T) {
	data := readFixture(t, "testdata/basic.md")

	fm, body, err := ParseFrontMatter(data)
	if err != nil {
		t.Fatalf("ParseFrontMatter: %v", err)
	}

	if fm.Title != "Building a Markdown Pipeline" {
		t.Fatalf("Frontmatter Title mismatch, got %q", fm.Title)
	}
	if fm.Date != "2024-03-01" {
		t.Fatalf("Frontmatter Date mismatch, got %q", fm.Date)
	}
	if fm.PublishedAt.IsZero() || fm.PublishedAt.Year() != 2024 {
		t.Fatalf("expected PublishedAt to be parsed, got %v", fm.PublishedAt)
	}
	if fm.Author != "Jane Doe" {
		t.Fatalf("Frontmatter Author mismatch, got %q", fm.Author)
	}
	if len(fm.Tags) != 2 || fm.Tags[0] != "go" || fm.Tags[1] != "markdown" {
		t.Fatalf("Frontmatter Tags mismatch: %#v", fm.Tags)
	}
	if !fm.Published {
		t.Fatalf("expected Published to default to true")
	}
	series, ok := fm.Extra["series"].(map[string]any)
	if !ok {
		t.Fatalf("expected nested extra map, got %#v", fm.Extra["series"])
	}
	if series["name"] != "pipelines" {
		t.Fatalf("unexpected series extra: %#v", series)
	}
	if !strings.Contains(string(body), "# Building a Markdown Pipeline") {
		t.Fatalf("Markdown body not returned correctly: %q", string(body))
	}
	if strings.Contains(string(body), "title:") {
		t.Fatalf("expected frontmatter to be stripped from body: %q", string(body))
	}
}

func TestParseFrontMatter_MatchesGolden(t *testing.T) {
	fm, _, err := ParseFrontMatter(readFixture(t, "testdata/basic.md"))
	if err != nil {
		t.Fatalf("ParseFrontMatter: %v", err)
	}

	var want map[string]any
	if err := testsupport.LoadGolden("testdata/basic.frontmatter.json", &want); err != nil {
		t.Fatalf("load golden: %v", err)
	}
	encoded, err := json.Marshal(fm)
	if err != nil {
		t.Fatalf("marshal frontmatter: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(encoded, &got); err != nil {
		t.Fatalf("unmarshal frontmatter: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("frontmatter mismatch (-want +got):\n%s", diff)
	}
}

func TestParseFrontMatter_TOMLBlock(t *testing.T) {
	source := "+++\ntitle = \"TOML post\"\ndate = \"2023-11-05T10:00:00Z\"\npublished = false\ntags = [\"toml\"]\n+++\nBody text\n"

	fm, body, err := ParseFrontMatter([]byte(source))
	if err != nil {
		t.Fatalf("ParseFrontMatter: %v", err)
	}
	if fm.Title != "TOML post" || fm.Published {
		t.Fatalf("unexpected frontmatter: %#v", fm)
	}
	if len(fm.Tags) != 1 || fm.Tags[0] != "toml" {
		t.Fatalf("unexpected tags: %#v", fm.Tags)
	}
	if strings.TrimSpace(string(body)) != "Body text" {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestParseFrontMatter_NoBlock(t *testing.T) {
	fm, body, err := ParseFrontMatter([]byte("# Just markdown\n"))
	if err != nil {
		t.Fatalf("ParseFrontMatter: %v", err)
	}
	if fm.Title != "" || fm.Date != "" {
		t.Fatalf("expected empty frontmatter, got %#v", fm)
	}
	if !fm.Published {
		t.Fatalf("expected Published default on empty frontmatter")
	}
	if string(body) != "# Just markdown\n" {
		t.Fatalf("expected full source as body, got %q", body)
	}
}

func TestParseFrontMatter_SingleTagString(t *testing.T) {
	fm, _, err := ParseFrontMatter([]byte("---\ntitle: A\ndate: 2024-01-01\ntags: solo\n---\n"))
	if err != nil {
		t.Fatalf("ParseFrontMatter: %v", err)
	}
	if len(fm.Tags) != 1 || fm.Tags[0] != "solo" {
		t.Fatalf("expected single tag, got %#v", fm.Tags)
	}
}

func TestParse_Errors(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want error
	}{
		{"unterminated block", "---\ntitle: A\ndate: 2024-01-01\n\nbody\n", ErrFrontmatterUnterminated},
		{"invalid yaml", "---\ntitle: [unclosed\ndate: 2024-01-01\n---\nbody\n", ErrFrontmatterInvalid},
		{"missing title", "---\ndate: 2024-01-01\n---\nbody\n", ErrTitleRequired},
		{"missing date", "---\ntitle: A\n---\nbody\n", ErrDateRequired},
		{"no frontmatter", "just a body\n", ErrTitleRequired},
		{"invalid date", "---\ntitle: A\ndate: someday\n---\nbody\n", ErrDateInvalid},
		{"published not bool", "---\ntitle: A\ndate: 2024-01-01\npublished: \"maybe\"\n---\n", ErrFieldType},
		{"title not scalar", "---\ntitle:\n  nested: true\ndate: 2024-01-01\n---\n", ErrFieldType},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc, err := Parse(tc.raw, "my-post")
			if err == nil {
				t.Fatalf("expected error, got document %#v", doc)
			}
			if !errors.Is(err, ErrParse) {
				t.Fatalf("expected ErrParse, got %v", err)
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			var parseErr *ParseError
			if !errors.As(err, &parseErr) || parseErr.Slug != "my-post" {
				t.Fatalf("expected ParseError naming the slug, got %#v", err)
			}
			if !strings.Contains(err.Error(), "my-post") {
				t.Fatalf("expected message to name the slug, got %q", err.Error())
			}
		})
	}
}

func TestParse_RendersDocument(t *testing.T) {
	doc, err := Parse(string(readFixture(t, "testdata/basic.md")), "markdown-pipeline")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if doc.Slug != "markdown-pipeline" {
		t.Fatalf("expected slug from caller, got %q", doc.Slug)
	}
	for _, fragment := range []string{
		`<h1 id="building-a-markdown-pipeline">Building a Markdown Pipeline</h1>`,
		"<em>author controlled</em>",
		`<div class="callout">Heads up</div>`,
		"<blockquote>",
		"<table>",
		`<code class="language-go">`,
		`<a href="https://example.com/docs">the docs</a>`,
	} {
		if !strings.Contains(doc.HTML, fragment) {
			t.Fatalf("expected HTML to contain %q, got:\n%s", fragment, doc.HTML)
		}
	}
	if doc.Body == "" || strings.Contains(doc.Body, "author: Jane Doe") {
		t.Fatalf("unexpected body %q", doc.Body)
	}
	if doc.ReadingTime != 1 {
		t.Fatalf("expected one minute reading time, got %d", doc.ReadingTime)
	}
}

func TestParse_RoundTripsFrontmatterFields(t *testing.T) {
	raw := "---\ntitle: \"Round trip\"\ndate: \"2024-02-29T08:30:00Z\"\ntags: [b, a, c]\n---\nbody"

	doc, err := Parse(raw, "round-trip")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	fm := doc.Frontmatter
	if fm.Title != "Round trip" || fm.Date != "2024-02-29T08:30:00Z" {
		t.Fatalf("title/date did not round trip: %#v", fm)
	}
	if strings.Join(fm.Tags, ",") != "b,a,c" {
		t.Fatalf("tags did not keep source order: %#v", fm.Tags)
	}
}

func TestParse_KeepsYAMLScalarText(t *testing.T) {
	raw := "---\ntitle: Yes\ndate: 2024-03-01\nauthor: on\ntags: [go, no, on, 1.10, y, ~]\nseries: {part: 1}\n---\nBody\n"

	doc, err := Parse(raw, "scalars")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	fm := doc.Frontmatter
	if fm.Title != "Yes" || fm.Author != "on" || fm.Date != "2024-03-01" {
		t.Fatalf("scalars lost their source text: %#v", fm)
	}
	if diff := cmp.Diff([]string{"go", "no", "on", "1.10", "y", ""}, fm.Tags); diff != "" {
		t.Fatalf("tags mismatch (-want +got):\n%s", diff)
	}
	series, ok := fm.Extra["series"].(map[string]any)
	if !ok || series["part"] != 1 {
		t.Fatalf("expected extra values to decode normally, got %#v", fm.Extra["series"])
	}
}

func TestParseFrontMatter_LeadingBlankLines(t *testing.T) {
	fm, body, err := ParseFrontMatter([]byte("\n\n---\ntitle: A\ndate: 2024-01-01\n---\nBody\n"))
	if err != nil {
		t.Fatalf("ParseFrontMatter: %v", err)
	}
	if fm.Title != "A" || fm.Date != "2024-01-01" {
		t.Fatalf("expected block after blank lines to be decoded, got %#v", fm)
	}
	if strings.TrimSpace(string(body)) != "Body" {
		t.Fatalf("unexpected body %q", body)
	}

	if _, _, err := ParseFrontMatter([]byte("\n---\ntitle: A\n")); !errors.Is(err, ErrFrontmatterUnterminated) {
		t.Fatalf("expected unterminated error after blank lines, got %v", err)
	}
}

func TestParseEntry_DerivesSlugFromPath(t *testing.T) {
	p := NewParser(nil)
	doc, err := p.ParseEntry(interfaces.RawContentEntry{
		Path: "content/articles/2024-01-01-hello-world.md",
		Text: "---\ntitle: Hello\ndate: 2024-01-01\nslug: ignored\n---\nhi",
	})
	if err != nil {
		t.Fatalf("ParseEntry: %v", err)
	}
	if doc.Slug != "hello-world" {
		t.Fatalf("expected slug from file name, got %q", doc.Slug)
	}
	if doc.Path != "content/articles/2024-01-01-hello-world.md" {
		t.Fatalf("expected path to be recorded, got %q", doc.Path)
	}
	if doc.Frontmatter.Extra["slug"] != "ignored" {
		t.Fatalf("expected frontmatter slug to pass through as extra, got %#v", doc.Frontmatter.Extra)
	}
}

func TestGoldmarkRenderer_Render(t *testing.T) {
	renderer := NewGoldmarkRenderer(interfaces.ParseOptions{})

	html, err := renderer.Render([]byte("# Heading\n\nHello **world** ~~old~~"))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	got := string(html)
	if !strings.Contains(got, "<h1") || !strings.Contains(got, "Heading</h1>") {
		t.Fatalf("expected rendered HTML to include <h1>Heading</h1>, got %q", got)
	}
	if !strings.Contains(got, "<strong>world</strong>") {
		t.Fatalf("expected rendered HTML to include <strong>, got %q", got)
	}
	if !strings.Contains(got, "<del>old</del>") {
		t.Fatalf("expected GFM strikethrough, got %q", got)
	}
}

func TestGoldmarkRenderer_RenderWithOptions(t *testing.T) {
	renderer := NewGoldmarkRenderer(interfaces.ParseOptions{})

	html, err := renderer.RenderWithOptions([]byte("line one\nline two"), interfaces.ParseOptions{
		HardWraps: true,
	})
	if err != nil {
		t.Fatalf("RenderWithOptions: %v", err)
	}
	if !strings.Contains(string(html), "line one<br>") {
		t.Fatalf("expected hard wraps in HTML output, got %q", string(html))
	}
}

func TestGoldmarkRenderer_SafeModeDropsRawHTML(t *testing.T) {
	renderer := NewGoldmarkRenderer(interfaces.ParseOptions{SafeMode: true})

	html, err := renderer.Render([]byte("<script>alert(1)</script>\n\ntext"))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(string(html), "<script>") {
		t.Fatalf("expected raw HTML to be omitted, got %q", html)
	}
}

func readFixture(tb testing.TB, path string) []byte {
	tb.Helper()
	data, err := testsupport.LoadFixture(path)
	if err != nil {
		tb.Fatalf("read fixture %s: %v", path, err)
	}
	return data
}
