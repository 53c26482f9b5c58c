package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/goliatone/go-devblog/internal/content"
	"github.com/goliatone/go-devblog/internal/identity"
	"github.com/goliatone/go-devblog/internal/query"
	"github.com/goliatone/go-devblog/pkg/interfaces"
)

type listResponse struct {
	Category interfaces.Category         `json:"category"`
	Count    int                         `json:"count"`
	Items    []*interfaces.ParsedContent `json:"items"`
}

type slugLookup struct {
	doc   *interfaces.ParsedContent
	found bool
}

type tagsResponse struct {
	Category interfaces.Category `json:"category"`
	Tags     []content.TagCount  `json:"tags"`
}

func (api *API) registerContentRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/{category}", api.handleContentList)
	mux.HandleFunc("GET /api/{category}/tags", api.handleContentTags)
	mux.HandleFunc("GET /api/{category}/{slug}", api.handleContentGet)
}

// handleContentList narrows by q first and then by tag when both are given.
// An empty q matches everything.
func (api *API) handleContentList(w http.ResponseWriter, r *http.Request) {
	c, ok := api.resolveCategory(w, r)
	if !ok {
		return
	}
	tag := strings.TrimSpace(r.URL.Query().Get("tag"))
	q := r.URL.Query().Get("q")

	var res query.Result[[]*interfaces.ParsedContent]
	switch {
	case q != "":
		res = query.Run(r.Context(), api.queries, query.Key(string(c), "search", strings.ToLower(q)), func(ctx context.Context) ([]*interfaces.ParsedContent, error) {
			return api.content.Search(ctx, c, q)
		})
	case tag != "":
		res = query.Run(r.Context(), api.queries, query.Key(string(c), "tag", tag), func(ctx context.Context) ([]*interfaces.ParsedContent, error) {
			return api.content.GetByTag(ctx, c, tag)
		})
	default:
		res = query.Run(r.Context(), api.queries, query.Key(string(c), "all"), func(ctx context.Context) ([]*interfaces.ParsedContent, error) {
			return api.content.GetAll(ctx, c)
		})
	}
	if res.IsError {
		writeError(w, res.Error)
		return
	}

	items := res.Data
	if q != "" && tag != "" {
		items = withTag(items, tag)
	}
	if items == nil {
		items = []*interfaces.ParsedContent{}
	}
	writeJSON(w, http.StatusOK, listResponse{Category: c, Count: len(items), Items: items})
}

func (api *API) handleContentTags(w http.ResponseWriter, r *http.Request) {
	c, ok := api.resolveCategory(w, r)
	if !ok {
		return
	}
	res := query.Run(r.Context(), api.queries, query.Key(string(c), "tags"), func(ctx context.Context) ([]content.TagCount, error) {
		return api.content.Tags(ctx, c)
	})
	if res.IsError {
		writeError(w, res.Error)
		return
	}
	tags := res.Data
	if tags == nil {
		tags = []content.TagCount{}
	}
	writeJSON(w, http.StatusOK, tagsResponse{Category: c, Tags: tags})
}

func (api *API) handleContentGet(w http.ResponseWriter, r *http.Request) {
	c, ok := api.resolveCategory(w, r)
	if !ok {
		return
	}
	slug := strings.TrimSpace(r.PathValue("slug"))
	// Misses are cached like hits so unknown slugs never reach the
	// repository twice.
	res := query.Run(r.Context(), api.queries, query.Key(string(c), "slug", slug), func(ctx context.Context) (slugLookup, error) {
		doc, found, err := api.content.GetBySlug(ctx, c, slug)
		return slugLookup{doc: doc, found: found}, err
	})
	if res.IsError {
		writeError(w, res.Error)
		return
	}
	if !res.Data.found {
		writeError(w, &content.NotFoundError{Resource: string(c), Key: slug})
		return
	}

	doc := res.Data.doc
	etag := identity.RevisionTag(string(c), doc.Slug, doc.Frontmatter.Date, doc.Body)
	w.Header().Set("ETag", etag)
	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func withTag(items []*interfaces.ParsedContent, tag string) []*interfaces.ParsedContent {
	out := make([]*interfaces.ParsedContent, 0, len(items))
	for _, item := range items {
		if item.Frontmatter.HasTag(tag) {
			out = append(out, item)
		}
	}
	return out
}
