package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-devblog/internal/content"
	"github.com/goliatone/go-devblog/internal/generator"
	"github.com/goliatone/go-devblog/internal/logging"
	"github.com/goliatone/go-devblog/internal/query"
	"github.com/goliatone/go-devblog/internal/runtimeconfig"
	"github.com/goliatone/go-devblog/pkg/interfaces"
)

var ErrContentRequired = errors.New("http: content service is required")

// timestampLayout is RFC3339 with millisecond precision.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// ContentService is the read surface the API serves. content.Repository
// satisfies it.
type ContentService interface {
	interfaces.ContentReader
	Tags(ctx context.Context, category interfaces.Category) ([]content.TagCount, error)
}

// API serves the content, posts and syndication endpoints.
type API struct {
	content   ContentService
	queries   *query.Client
	generator *generator.Generator
	posts     []runtimeconfig.PostConfig
	logger    interfaces.Logger
	now       func() time.Time
	newID     func() string

	strictPosts bool
}

// Option mutates the API configuration.
type Option func(*API)

// WithQueryClient routes content reads through client. Without it the API
// uses a private client.
func WithQueryClient(client *query.Client) Option {
	return func(api *API) {
		if client != nil {
			api.queries = client
		}
	}
}

// WithGenerator enables the feed, sitemap and robots routes.
func WithGenerator(gen *generator.Generator) Option {
	return func(api *API) {
		api.generator = gen
	}
}

// WithPosts sets the sample posts listed by GET /api/posts.
func WithPosts(posts []runtimeconfig.PostConfig) Option {
	return func(api *API) {
		api.posts = append([]runtimeconfig.PostConfig(nil), posts...)
	}
}

// WithPostValidation makes POST /api/posts require a non-blank string title
// of at most 200 characters and a string content when those keys are sent.
func WithPostValidation() Option {
	return func(api *API) {
		api.strictPosts = true
	}
}

// WithLogger sets the request logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(api *API) {
		if logger != nil {
			api.logger = logger
		}
	}
}

// WithClock overrides the time source for timestamps.
func WithClock(now func() time.Time) Option {
	return func(api *API) {
		if now != nil {
			api.now = now
		}
	}
}

// WithIDGenerator overrides the id assigned to submitted posts.
func WithIDGenerator(newID func() string) Option {
	return func(api *API) {
		if newID != nil {
			api.newID = newID
		}
	}
}

// New constructs an API over service.
func New(service ContentService, opts ...Option) (*API, error) {
	if service == nil {
		return nil, ErrContentRequired
	}
	api := &API{
		content: service,
		logger:  logging.NoOp(),
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(api)
		}
	}
	if api.queries == nil {
		api.queries = query.New(query.Config{}, query.WithLogger(api.logger))
	}
	return api, nil
}

// Register mounts every route on mux.
func (api *API) Register(mux *http.ServeMux) error {
	if mux == nil {
		return errors.New("http: mux is required")
	}
	mux.HandleFunc("GET /health", api.handleHealth)
	api.registerPostRoutes(mux)
	api.registerContentRoutes(mux)
	api.registerFeedRoutes(mux)
	return nil
}

// Handler returns a mux with every route plus the standard middleware.
func (api *API) Handler() http.Handler {
	mux := http.NewServeMux()
	_ = api.Register(mux)
	return securityHeaders(requestLogger(api.logger, api.now, api.newID)(mux))
}

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

func (api *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "OK",
		Timestamp: api.timestamp(),
	})
}

func (api *API) timestamp() string {
	return api.now().UTC().Format(timestampLayout)
}

// resolveCategory rejects unknown categories before any lookup so arbitrary
// path segments never become cache keys.
func (api *API) resolveCategory(w http.ResponseWriter, r *http.Request) (interfaces.Category, bool) {
	c := interfaces.Category(strings.ToLower(strings.TrimSpace(r.PathValue("category"))))
	if !c.Valid() {
		writeError(w, fmt.Errorf("%w: %q", content.ErrUnknownCategory, r.PathValue("category")))
		return "", false
	}
	return c, true
}
