// Package query adapts content lookups to a keyed, memoised fetch model:
// concurrent callers of the same key share one execution, successful values
// stay cached until invalidated, and failures are reported as values.
package query

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/viccon/sturdyc"

	"github.com/goliatone/go-devblog/internal/logging"
	"github.com/goliatone/go-devblog/pkg/interfaces"
)

var (
	ErrKeyRequired  = errors.New("query: key is required")
	ErrTypeMismatch = errors.New("query: cached value has a different type")
)

// untilInvalidated stands in for "no expiry"; sturdyc requires a TTL.
const untilInvalidated = 100 * 365 * 24 * time.Hour

// Config sizes the underlying cache. Zero values select the defaults.
type Config struct {
	Capacity           int
	Shards             int
	TTL                time.Duration
	EvictionPercentage int
}

// DefaultConfig returns the sizing used when none is supplied.
func DefaultConfig() Config {
	return Config{
		Capacity:           1024,
		Shards:             8,
		TTL:                0,
		EvictionPercentage: 10,
	}
}

// Result is the outcome of one Run call.
type Result[T any] struct {
	Data      T
	IsLoading bool
	IsSuccess bool
	IsError   bool
	Error     error
}

// State describes a key without fetching it.
type State struct {
	IsLoading bool
	IsSuccess bool
	IsError   bool
	Error     error
}

// Client owns a cache of query results. The zero value is not usable; call
// New.
type Client struct {
	cache  *sturdyc.Client[any]
	logger interfaces.Logger

	mu       sync.Mutex
	keys     map[string]struct{}
	inflight map[string]int
	failures map[string]error
	stale    map[string]any
}

// Option customises a Client.
type Option func(*Client)

// WithLogger sets the logger used for fetch diagnostics.
func WithLogger(logger interfaces.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New constructs a client sized by cfg.
func New(cfg Config, opts ...Option) *Client {
	defaults := DefaultConfig()
	if cfg.Capacity <= 0 {
		cfg.Capacity = defaults.Capacity
	}
	if cfg.Shards <= 0 {
		cfg.Shards = defaults.Shards
	}
	if cfg.TTL <= 0 {
		cfg.TTL = untilInvalidated
	}
	if cfg.EvictionPercentage <= 0 || cfg.EvictionPercentage > 100 {
		cfg.EvictionPercentage = defaults.EvictionPercentage
	}

	c := &Client{
		cache:    sturdyc.New[any](cfg.Capacity, cfg.Shards, cfg.TTL, cfg.EvictionPercentage),
		logger:   logging.NoOp(),
		keys:     make(map[string]struct{}),
		inflight: make(map[string]int),
		failures: make(map[string]error),
		stale:    make(map[string]any),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key joins parts into a cache key.
func Key(parts ...string) string {
	return strings.Join(parts, ":")
}

// Run returns the cached value for key or executes fn to produce it. Only
// successful results are cached. On failure Data holds the value cached
// before the last invalidation of key, if any.
func Run[T any](ctx context.Context, c *Client, key string, fn func(context.Context) (T, error)) Result[T] {
	if strings.TrimSpace(key) == "" {
		return failed[T](ErrKeyRequired, nil)
	}

	c.begin(key)
	value, err := c.cache.GetOrFetch(ctx, key, func(ctx context.Context) (any, error) {
		c.logger.WithContext(ctx).Debug("query.fetch", "key", key)
		return fn(ctx)
	})
	stale := c.end(key, err)

	if err != nil {
		c.logger.Warn("query.fetch.failed", "key", key, "error", err)
		return failed[T](err, stale)
	}

	data, ok := value.(T)
	if !ok {
		return failed[T](fmt.Errorf("%w: key %q holds %T", ErrTypeMismatch, key, value), stale)
	}
	return Result[T]{Data: data, IsSuccess: true}
}

func failed[T any](err error, stale any) Result[T] {
	res := Result[T]{IsError: true, Error: err}
	if data, ok := stale.(T); ok {
		res.Data = data
	}
	return res
}

func (c *Client) begin(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inflight[key]++
}

func (c *Client) end(key string, err error) any {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inflight[key] <= 1 {
		delete(c.inflight, key)
	} else {
		c.inflight[key]--
	}
	if err != nil {
		c.failures[key] = err
		return c.stale[key]
	}
	c.keys[key] = struct{}{}
	delete(c.failures, key)
	delete(c.stale, key)
	return nil
}

// State reports whether key is being fetched and how its last fetch ended.
func (c *Client) State(key string) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := State{IsLoading: c.inflight[key] > 0}
	if err, ok := c.failures[key]; ok {
		state.IsError = true
		state.Error = err
		return state
	}
	if _, ok := c.keys[key]; ok {
		_, state.IsSuccess = c.cache.Get(key)
	}
	return state
}

// Invalidate drops the cached value for key so the next Run refetches it.
func (c *Client) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidate(key)
}

// InvalidateAll drops every cached value.
func (c *Client) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.keys {
		c.invalidate(key)
	}
	clear(c.failures)
}

func (c *Client) invalidate(key string) {
	if value, ok := c.cache.Get(key); ok {
		c.stale[key] = value
	}
	c.cache.Delete(key)
	delete(c.keys, key)
	delete(c.failures, key)
}
