// Package http exposes the content service over net/http.
//
// Routes:
//   - GET /health
//   - GET /api/posts, POST /api/posts
//   - GET /api/{category} (query: tag, q)
//   - GET /api/{category}/tags
//   - GET /api/{category}/{slug}
//   - GET /feed.xml, /feed.atom.xml, /sitemap.xml, /robots.txt
//
// Host applications can register handlers on their own mux with Register or
// serve Handler directly, which adds security headers and request logging.
package http
