package http

import (
	"context"
	"net/http"

	"github.com/goliatone/go-devblog/internal/query"
)

func (api *API) registerFeedRoutes(mux *http.ServeMux) {
	if api.generator == nil {
		return
	}
	mux.HandleFunc("GET /feed.xml", api.document("feed:rss", "application/rss+xml; charset=utf-8", api.generator.RSS))
	mux.HandleFunc("GET /feed.atom.xml", api.document("feed:atom", "application/atom+xml; charset=utf-8", api.generator.Atom))
	mux.HandleFunc("GET /sitemap.xml", api.document("sitemap", "application/xml; charset=utf-8", api.generator.Sitemap))
	mux.HandleFunc("GET /robots.txt", func(w http.ResponseWriter, r *http.Request) {
		writeText(w, "text/plain; charset=utf-8", api.generator.Robots())
	})
}

func (api *API) document(key, contentType string, render func(context.Context) (string, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := query.Run(r.Context(), api.queries, key, render)
		if res.IsError {
			writeError(w, res.Error)
			return
		}
		writeText(w, contentType, res.Data)
	}
}
