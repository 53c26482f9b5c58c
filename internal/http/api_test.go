package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-devblog/internal/content"
	"github.com/goliatone/go-devblog/internal/generator"
	"github.com/goliatone/go-devblog/internal/logging/console"
	"github.com/goliatone/go-devblog/internal/runtimeconfig"
)

var fixedNow = time.Date(2025, 2, 3, 4, 5, 6, 789_000_000, time.UTC)

func setupAPI(t *testing.T, opts ...Option) http.Handler {
	t.Helper()
	repo, err := content.NewRepository(content.MapSource{
		"content/articles/2024-03-01-hello.md": "---\ntitle: Hello\ndate: 2024-03-01\ntags: [go, web]\n---\nHello **world**\n",
		"content/articles/2024-02-01-rust.md":  "---\ntitle: Rust notes\ndate: 2024-02-01\ntags: [rust]\ndescription: Borrowing\n---\nOwnership\n",
		"content/articles/2024-01-01-draft.md": "---\ntitle: Draft\ndate: 2024-01-01\npublished: false\n---\nWIP\n",
		"content/projects/tool.md":             "---\ntitle: Tool\ndate: 2024-04-01\ntags: [go]\n---\nA CLI\n",
	})
	if err != nil {
		t.Fatalf("new repository: %v", err)
	}
	gen, err := generator.New(repo, generator.Config{Site: generator.Site{Title: "Blog", BaseURL: "https://example.dev"}})
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}
	api, err := New(repo, append([]Option{
		WithGenerator(gen),
		WithPosts(runtimeconfig.DefaultConfig().Posts),
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string { return "generated-id" }),
	}, opts...)...)
	if err != nil {
		t.Fatalf("new api: %v", err)
	}
	return api.Handler()
}

func doJSONRequest(t *testing.T, handler http.Handler, method, path string, body string, wantStatus int) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != wantStatus {
		t.Fatalf("expected status %d got %d (%s)", wantStatus, rec.Code, rec.Body.String())
	}
	return rec
}

func decodeJSONBody(t *testing.T, rec *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), target); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestNewRequiresContentService(t *testing.T) {
	if _, err := New(nil); err != ErrContentRequired {
		t.Fatalf("expected ErrContentRequired, got %v", err)
	}
}

func TestHealth(t *testing.T) {
	handler := setupAPI(t)
	rec := doJSONRequest(t, handler, http.MethodGet, "/health", "", http.StatusOK)

	var got healthResponse
	decodeJSONBody(t, rec, &got)
	want := healthResponse{Status: "OK", Timestamp: "2025-02-03T04:05:06.789Z"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("health mismatch (-want +got):\n%s", diff)
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" || rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Fatalf("expected security headers, got %v", rec.Header())
	}
}

func TestPostsList(t *testing.T) {
	handler := setupAPI(t)
	rec := doJSONRequest(t, handler, http.MethodGet, "/api/posts", "", http.StatusOK)

	var got postsResponse
	decodeJSONBody(t, rec, &got)
	want := postsResponse{Posts: []map[string]any{{
		"id":        "1",
		"title":     "Welcome to the Developer Blog",
		"content":   "This is your first blog post!",
		"createdAt": "2025-02-03T04:05:06.789Z",
	}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("posts mismatch (-want +got):\n%s", diff)
	}
}

func TestPostsCreateEchoesBody(t *testing.T) {
	handler := setupAPI(t)
	rec := doJSONRequest(t, handler, http.MethodPost, "/api/posts", `{"title":"X","draft":true,"createdAt":"client"}`, http.StatusOK)

	var got map[string]any
	decodeJSONBody(t, rec, &got)
	want := map[string]any{
		"id":        "generated-id",
		"title":     "X",
		"draft":     true,
		"createdAt": "2025-02-03T04:05:06.789Z",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("created post mismatch (-want +got):\n%s", diff)
	}
}

func TestPostsCreateRejectsInvalidBodies(t *testing.T) {
	handler := setupAPI(t)

	cases := map[string]string{
		"invalid json": `{"title":`,
		"array body":   `[1,2]`,
		"string body":  `"post"`,
		"empty body":   ``,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := doJSONRequest(t, handler, http.MethodPost, "/api/posts", body, http.StatusBadRequest)
			var got errorResponse
			decodeJSONBody(t, rec, &got)
			if got.Error != "bad_request" {
				t.Fatalf("expected bad_request, got %+v", got)
			}
		})
	}
}

func TestPostsCreateEchoesAnyObject(t *testing.T) {
	handler := setupAPI(t)
	longTitle := strings.Repeat("x", 201)

	cases := map[string]struct {
		body string
		key  string
		want any
	}{
		"number title":   {body: `{"title": 42}`, key: "title", want: float64(42)},
		"empty title":    {body: `{"title": ""}`, key: "title", want: ""},
		"object content": {body: `{"content": {"md": "x"}}`, key: "content", want: map[string]any{"md": "x"}},
		"long title":     {body: `{"title": "` + longTitle + `"}`, key: "title", want: longTitle},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rec := doJSONRequest(t, handler, http.MethodPost, "/api/posts", tc.body, http.StatusOK)
			var got map[string]any
			decodeJSONBody(t, rec, &got)
			if diff := cmp.Diff(tc.want, got[tc.key]); diff != "" {
				t.Fatalf("%s mismatch (-want +got):\n%s", tc.key, diff)
			}
			if got["id"] != "generated-id" || got["createdAt"] != "2025-02-03T04:05:06.789Z" {
				t.Fatalf("expected id and createdAt to be added, got %+v", got)
			}
		})
	}
}

func TestPostsCreateWithValidation(t *testing.T) {
	handler := setupAPI(t, WithPostValidation())

	for _, body := range []string{`{"title": 5}`, `{"title": "  "}`, `{"title": "` + strings.Repeat("x", 201) + `"}`} {
		rec := doJSONRequest(t, handler, http.MethodPost, "/api/posts", body, http.StatusBadRequest)
		var got errorResponse
		decodeJSONBody(t, rec, &got)
		if len(got.Issues) != 1 || got.Issues[0].Field != "title" {
			t.Fatalf("expected a title issue for %s, got %+v", body, got.Issues)
		}
	}

	doJSONRequest(t, handler, http.MethodPost, "/api/posts", `{"title": "Fine", "content": "text"}`, http.StatusOK)
}

func TestContentList(t *testing.T) {
	handler := setupAPI(t)

	cases := []struct {
		path string
		want []string
	}{
		{path: "/api/articles", want: []string{"hello", "rust"}},
		{path: "/api/articles?tag=go", want: []string{"hello"}},
		{path: "/api/articles?q=BORROW", want: []string{"rust"}},
		{path: "/api/articles?q=o&tag=rust", want: []string{"rust"}},
		{path: "/api/articles?tag=none", want: []string{}},
		{path: "/api/Projects", want: []string{"tool"}},
	}
	for _, tc := range cases {
		rec := doJSONRequest(t, handler, http.MethodGet, tc.path, "", http.StatusOK)
		var got struct {
			Count int `json:"count"`
			Items []struct {
				Slug string `json:"slug"`
			} `json:"items"`
		}
		decodeJSONBody(t, rec, &got)
		slugs := []string{}
		for _, item := range got.Items {
			slugs = append(slugs, item.Slug)
		}
		if diff := cmp.Diff(tc.want, slugs); diff != "" {
			t.Fatalf("%s mismatch (-want +got):\n%s", tc.path, diff)
		}
		if got.Count != len(tc.want) {
			t.Fatalf("%s: expected count %d, got %d", tc.path, len(tc.want), got.Count)
		}
	}

	doJSONRequest(t, handler, http.MethodGet, "/api/notes", "", http.StatusNotFound)
}

func TestContentGet(t *testing.T) {
	handler := setupAPI(t)

	rec := doJSONRequest(t, handler, http.MethodGet, "/api/articles/hello", "", http.StatusOK)
	var got struct {
		Slug        string `json:"slug"`
		HTML        string `json:"html"`
		ReadingTime int    `json:"readingTime"`
		Frontmatter struct {
			Title string   `json:"title"`
			Tags  []string `json:"tags"`
		} `json:"frontmatter"`
	}
	decodeJSONBody(t, rec, &got)
	if got.Slug != "hello" || got.Frontmatter.Title != "Hello" || got.ReadingTime != 1 {
		t.Fatalf("unexpected document: %+v", got)
	}
	if !strings.Contains(got.HTML, "<strong>world</strong>") {
		t.Fatalf("expected rendered html, got %q", got.HTML)
	}

	etag := rec.Header().Get("ETag")
	if etag == "" {
		t.Fatalf("expected an ETag header")
	}
	req := httptest.NewRequest(http.MethodGet, "/api/articles/hello", nil)
	req.Header.Set("If-None-Match", etag)
	cached := httptest.NewRecorder()
	handler.ServeHTTP(cached, req)
	if cached.Code != http.StatusNotModified {
		t.Fatalf("expected 304, got %d", cached.Code)
	}

	missing := doJSONRequest(t, handler, http.MethodGet, "/api/articles/nonexistent", "", http.StatusNotFound)
	var errBody errorResponse
	decodeJSONBody(t, missing, &errBody)
	if errBody.Error != "not_found" {
		t.Fatalf("expected not_found, got %+v", errBody)
	}
	doJSONRequest(t, handler, http.MethodGet, "/api/articles/draft", "", http.StatusNotFound)
}

func TestContentTags(t *testing.T) {
	handler := setupAPI(t)
	rec := doJSONRequest(t, handler, http.MethodGet, "/api/articles/tags", "", http.StatusOK)

	var got tagsResponse
	decodeJSONBody(t, rec, &got)
	want := []content.TagCount{{Tag: "go", Count: 1}, {Tag: "rust", Count: 1}, {Tag: "web", Count: 1}}
	if diff := cmp.Diff(want, got.Tags); diff != "" {
		t.Fatalf("tags mismatch (-want +got):\n%s", diff)
	}
}

func TestFeedRoutes(t *testing.T) {
	handler := setupAPI(t)

	cases := []struct {
		path        string
		contentType string
		contains    string
	}{
		{path: "/feed.xml", contentType: "application/rss+xml", contains: "<link>https://example.dev/articles/hello</link>"},
		{path: "/feed.atom.xml", contentType: "application/atom+xml", contains: `<link href="https://example.dev/projects/tool" />`},
		{path: "/sitemap.xml", contentType: "application/xml", contains: "<loc>https://example.dev/articles/rust</loc>"},
		{path: "/robots.txt", contentType: "text/plain", contains: "Sitemap: https://example.dev/sitemap.xml"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, tc.path, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", tc.path, rec.Code)
		}
		if !strings.HasPrefix(rec.Header().Get("Content-Type"), tc.contentType) {
			t.Fatalf("%s: unexpected content type %q", tc.path, rec.Header().Get("Content-Type"))
		}
		if !strings.Contains(rec.Body.String(), tc.contains) {
			t.Fatalf("%s: expected body to contain %q, got:\n%s", tc.path, tc.contains, rec.Body.String())
		}
	}
}

func TestRequestLoggerRecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := console.NewProvider(console.Options{Writer: &buf}).GetLogger("devblog.http")
	handler := requestLogger(logger, func() time.Time { return fixedNow }, func() string { return "req-1" })(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/brew", nil))
	got := buf.String()
	for _, want := range []string{"http.request", "status=418", "request_id=req-1", "method=GET", "path=/brew"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in log output %q", want, got)
		}
	}
	if rec.Header().Get("X-Request-ID") != "req-1" {
		t.Fatalf("expected request id header, got %q", rec.Header().Get("X-Request-ID"))
	}
}

func TestRequestFieldsReachContentLogs(t *testing.T) {
	var buf bytes.Buffer
	provider := console.NewProvider(console.Options{Writer: &buf})
	repo, err := content.NewRepository(content.MapSource{
		"content/articles/2024-03-01-hello.md": "---\ntitle: Hello\ndate: 2024-03-01\n---\nHi\n",
		"content/articles/broken.md":           "---\ndate: 2024-03-01\n---\nno title\n",
	}, content.WithLogger(provider.GetLogger("devblog.content")))
	if err != nil {
		t.Fatalf("new repository: %v", err)
	}
	api, err := New(repo, WithLogger(provider.GetLogger("devblog.http")))
	if err != nil {
		t.Fatalf("new api: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/articles", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var skipped string
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.Contains(line, "content.entry.skipped") {
			skipped = line
		}
	}
	if !strings.Contains(skipped, "request_id=req-42") || !strings.Contains(skipped, "path=/api/articles") {
		t.Fatalf("expected skip log to carry request fields, got %q", skipped)
	}
}
