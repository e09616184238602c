package fetchhandlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/feedmill/webget/fetch"
	"github.com/feedmill/webget/fetchcache"
)

// ForceMin values with special meaning; any positive value is the
// number of seconds a cached record stays valid regardless of what the
// server said.
const (
	// ForceRefresh ignores the cache and always refetches.
	ForceRefresh = 0

	// ForceCache serves any present record regardless of age, fetching
	// only on a miss.
	ForceCache = -1

	// ForceCacheOnly serves any present record and never touches the
	// network; a miss becomes a synthetic 409 Conflict.
	ForceCacheOnly = -2
)

// permanentRedirectMaxAge is how long a cached 301 is trusted without
// revalidation. The specs allow forever; a week is long enough to be
// useful and short enough to recover from mistakes.
const permanentRedirectMaxAge = 7 * 24 * time.Hour

// ErrNoStore is returned when CacheConfig.Store is missing.
var ErrNoStore = errors.New("fetchhandlers: cache: store is required")

// Cache serves responses from a storage backend under HTTP validation
// semantics. On the way out it attaches If-None-Match /
// If-Modified-Since validators from the stored record; fresh-enough
// records short-circuit the network entirely. On the way back it
// stores cacheable bodies — which at its pipeline position are always
// decompressed and size-capped — and converts 304 Not Modified into a
// replay of the stored body, so the caller only ever sees a 200.
type Cache struct {
	store        fetchcache.Store
	forceMin     *int
	privateCache bool
	logger       *zap.Logger
}

// CacheConfig configures the Cache handler.
type CacheConfig struct {
	// Store is the backend records live in. Required.
	Store fetchcache.Store

	// ForceMin overrides how long cached records are considered valid,
	// in seconds. nil honours the server's Cache-Control and Pragma;
	// see ForceRefresh, ForceCache, and ForceCacheOnly for the special
	// values.
	ForceMin *int

	// PrivateCache makes the handler behave like an end-user cache:
	// records marked Cache-Control: private are served and stored.
	// When false it behaves like a shared cache and skips them.
	PrivateCache bool

	// Logger receives debug-level cache events. Defaults to a nop
	// logger.
	Logger *zap.Logger
}

// NewCache returns a Cache handler. It returns ErrNoStore if no store
// is configured.
func NewCache(cfg CacheConfig) (*Cache, error) {
	if cfg.Store == nil {
		return nil, ErrNoStore
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		store:        cfg.Store,
		forceMin:     cfg.ForceMin,
		privateCache: cfg.PrivateCache,
		logger:       logger,
	}, nil
}

// Order implements fetch.Handler.
func (c *Cache) Order() int { return OrderCache }

// HandleRequest attaches the stored validators, both unredirectable so
// a redirect target never sees another resource's validators.
func (c *Cache) HandleRequest(ctx context.Context, req *fetch.Request) error {
	_, header, ok := c.load(ctx, req.URL)
	if !ok {
		return nil
	}

	if etag := header.Get("Etag"); etag != "" {
		req.SetUnredirected("If-None-Match", etag)
	}
	if modified := header.Get("Last-Modified"); modified != "" {
		req.SetUnredirected("If-Modified-Since", modified)
	}
	return nil
}

// Open decides whether the request can be satisfied from the store.
// Returning (nil, nil) sends the request to the network.
func (c *Cache) Open(ctx context.Context, req *fetch.Request) (*fetch.Response, error) {
	rec, header, ok := c.load(ctx, req.URL)

	var age time.Duration
	if ok {
		age = time.Since(time.Unix(rec.Timestamp, 0))
	}
	flags, values := parseCacheDirectives(header)

	switch {
	case ok && req.HeaderValue(fetch.InternalHeader) == fetch.SignalFrom304:
		// Replay after a 304: the record was just re-dated, serve it.

	case c.force(ForceCacheOnly):
		if !ok {
			h := make(http.Header)
			h.Set(fetch.InternalHeader, fetch.SignalFromCache)
			return fetch.NewResponse(req.URL, http.StatusConflict, "Conflict", h, nil), nil
		}

	case !ok:
		return nil, nil

	case c.force(ForceCache):

	case c.force(ForceRefresh):
		return nil, nil

	case rec.Code == http.StatusMovedPermanently && age < permanentRedirectMaxAge:
		// 301s are canonical; keep serving them for a week.

	case c.forceMin == nil && c.serverForbidsCache(flags):
		return nil, nil

	case maxAgeAllows(values, age):

	case c.forceMin != nil && *c.forceMin > 0 && age < time.Duration(*c.forceMin)*time.Second:

	default:
		// Nothing said the record is still good; refresh.
		return nil, nil
	}

	c.logger.Debug("cache hit", zap.String("url", req.URL), zap.Int("status", rec.Code))

	h := header.Clone()
	h.Set(fetch.InternalHeader, fetch.SignalFromCache)
	return fetch.NewResponse(req.URL, rec.Code, rec.Status, h, rec.Body), nil
}

// HandleResponse stores cacheable responses. The body at this point is
// decompressed and capped by the earlier handlers.
func (c *Cache) HandleResponse(ctx context.Context, req *fetch.Request, resp *fetch.Response) (*fetch.Response, error) {
	if resp.StatusCode == http.StatusNotModified {
		// Dealt with by HandleStatus.
		return nil, nil
	}

	if c.forceMin == nil {
		flags, _ := parseCacheDirectives(resp.Header)
		if c.serverForbidsCache(flags) {
			return nil, nil
		}
	}

	if resp.Header.Get(fetch.InternalHeader) == fetch.SignalFromCache {
		// Came from the store; nothing new to write.
		return nil, nil
	}

	data, err := resp.Bytes()
	if err != nil {
		return nil, err
	}

	header := resp.Header.Clone()
	header.Del(fetch.InternalHeader)

	rec := &fetchcache.Record{
		Code:      resp.StatusCode,
		Status:    resp.Status,
		Header:    fetchcache.EncodeHeader(header),
		Body:      data,
		Timestamp: time.Now().Unix(),
	}
	if err := c.store.Set(ctx, req.URL, rec); err != nil {
		// The cache is advisory; a failed write must not fail the fetch.
		c.logger.Warn("cache store failed", zap.String("url", req.URL), zap.Error(err))
	}
	return nil, nil
}

// Statuses implements fetch.StatusHandler.
func (c *Cache) Statuses() []int {
	return []int{http.StatusNotModified}
}

// HandleStatus turns a 304 Not Modified into the stored body: the
// record is re-dated, then the request is re-opened through the whole
// pipeline with the replay marker set, so Open serves the record and
// every later handler treats it like a fresh 200.
func (c *Cache) HandleStatus(ctx context.Context, op *fetch.Opener, req *fetch.Request, resp *fetch.Response) (*fetch.Response, error) {
	rec, _, ok := c.load(ctx, req.URL)
	if !ok {
		return nil, nil
	}

	rec.Timestamp = time.Now().Unix()
	if err := c.store.Set(ctx, req.URL, rec); err != nil {
		c.logger.Warn("cache re-date failed", zap.String("url", req.URL), zap.Error(err))
	}

	c.logger.Debug("not modified, replaying cached body", zap.String("url", req.URL))

	replay := req.Clone()
	replay.SetUnredirected(fetch.InternalHeader, fetch.SignalFrom304)
	resp.Close()
	return op.Open(ctx, replay)
}

func (c *Cache) load(ctx context.Context, url string) (*fetchcache.Record, http.Header, bool) {
	rec, err := c.store.Get(ctx, url)
	if err != nil {
		if !errors.Is(err, fetchcache.ErrNotFound) {
			c.logger.Warn("cache load failed", zap.String("url", url), zap.Error(err))
		}
		return nil, nil, false
	}
	return rec, rec.DecodedHeader(), true
}

func (c *Cache) force(value int) bool {
	return c.forceMin != nil && *c.forceMin == value
}

// serverForbidsCache reports whether the stored or received directives
// rule the record out for this cache.
func (c *Cache) serverForbidsCache(flags map[string]bool) bool {
	return flags["no-cache"] || flags["no-store"] || (flags["private"] && !c.privateCache)
}

func maxAgeAllows(values map[string]string, age time.Duration) bool {
	raw, ok := values["max-age"]
	if !ok {
		return false
	}
	maxAge, err := strconv.Atoi(raw)
	if err != nil {
		return false
	}
	return age < time.Duration(maxAge)*time.Second
}
