package webget

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/feedmill/webget/fetch"
	"github.com/feedmill/webget/fetchcache"
	"github.com/feedmill/webget/fetchhandlers"
)

// Follow selectors and the MIME types they chase.
var followTypes = map[string][]string{
	"xml": {
		"text/xml",
		"application/xml",
		"application/rss+xml",
		"application/rdf+xml",
		"application/atom+xml",
		"application/xhtml+xml",
	},
	"rss": {
		"application/rss+xml",
		"application/rdf+xml",
		"application/atom+xml",
	},
	"html": {
		"text/html",
		"application/xhtml+xml",
		"application/xml",
	},
}

// Options tunes a single fetch.
type Options struct {
	// Timeout bounds the whole fetch, redirects and revalidation
	// included. Zero means no deadline beyond the context's.
	Timeout time.Duration

	// Follow selects which alternate-link MIME types are worth
	// chasing: "xml", "rss", "html", or "" for none.
	Follow string

	// Delay overrides how long cached records are considered valid, in
	// seconds; see fetchhandlers.ForceRefresh, ForceCache, and
	// ForceCacheOnly for the special values. nil honours the server's
	// cache headers.
	Delay *int

	// Encoding pins the character encoding instead of detecting it.
	Encoding string
}

// Result is the full outcome of a fetch.
type Result struct {
	// Data is the response body.
	Data []byte

	// URL is the final URL after any redirects — network ones and
	// synthetic ones from meta tags or alternate links alike.
	URL string

	// ContentType is the response MIME type without parameters.
	ContentType string

	// Encoding is the character encoding label of Data.
	Encoding string

	// Response is the pipeline response, including the raw transport
	// snapshot for out-of-band inspection.
	Response *fetch.Response
}

// StatusError reports an HTTP-level failure, as opposed to a transport
// one. The accompanying Result still carries the response.
type StatusError struct {
	StatusCode int
	Status     string
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("webget: %s returned %d %s", e.URL, e.StatusCode, e.Status)
}

// ClientConfig configures a Client.
type ClientConfig struct {
	// Store is the cache backend. When nil a fresh in-memory store is
	// used.
	Store fetchcache.Store

	// HTTPClient performs the network requests; it must not follow
	// redirects itself. When nil a client from fetch.NewHTTPClient is
	// built, honouring the IGNORE_SSL environment variable.
	HTTPClient *http.Client

	// UserAgents is the pool the per-fetch User-Agent is drawn from.
	// Defaults to fetchhandlers.DefaultUserAgents.
	UserAgents []string

	// TrimInterval is how often the background janitor trims the
	// store. When zero, fetchcache.DefaultLifespan is used.
	TrimInterval time.Duration

	// Logger receives debug-level pipeline and cache events. Defaults
	// to a nop logger.
	Logger *zap.Logger
}

// Client fetches web resources through the handler pipeline. It owns a
// cache store and the janitor that trims it; Close releases both. A
// Client is safe for concurrent use.
type Client struct {
	store      fetchcache.Store
	httpClient *http.Client
	userAgents []string
	logger     *zap.Logger
	janitor    *fetchcache.Janitor
}

// NewClient returns a client for the given configuration and starts
// its cache janitor.
func NewClient(cfg ClientConfig) *Client {
	store := cfg.Store
	if store == nil {
		store = fetchcache.NewMemory(fetchcache.MemoryConfig{})
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = fetch.NewHTTPClient(fetch.HTTPClientConfig{
			InsecureSkipVerify: os.Getenv("IGNORE_SSL") != "",
		})
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	janitor := fetchcache.NewJanitor(fetchcache.JanitorConfig{
		Store:    store,
		Interval: cfg.TrimInterval,
		Logger:   logger,
	})
	janitor.Start()

	return &Client{
		store:      store,
		httpClient: httpClient,
		userAgents: cfg.UserAgents,
		logger:     logger,
		janitor:    janitor,
	}
}

// Close stops the janitor and closes the cache store.
func (c *Client) Close() error {
	c.janitor.Stop()
	return c.store.Close()
}

// Get fetches url and returns the body. HTTP-level failures come back
// as *StatusError.
func (c *Client) Get(ctx context.Context, url string, opts Options) ([]byte, error) {
	res, err := c.AdvGet(ctx, url, opts)
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

// AdvGet fetches url and returns the full result. On HTTP-level
// failures both the result and a *StatusError are returned.
func (c *Client) AdvGet(ctx context.Context, url string, opts Options) (*Result, error) {
	opener, err := c.opener(opts)
	if err != nil {
		return nil, err
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	resp, err := opener.Open(ctx, fetch.NewRequest(fetch.SanitizeURL(url)))
	if err != nil {
		return nil, err
	}

	data, err := resp.Bytes()
	if err != nil {
		return nil, err
	}

	encoding := opts.Encoding
	if encoding == "" {
		encoding = fetch.DetectEncoding(data, resp.Header)
	}

	res := &Result{
		Data:        data,
		URL:         resp.URL,
		ContentType: resp.ContentType(),
		Encoding:    encoding,
		Response:    resp,
	}

	if resp.StatusCode >= 400 {
		return res, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status, URL: resp.URL}
	}
	return res, nil
}

// opener builds the per-fetch pipeline. A fresh one per call keeps the
// randomly drawn User-Agent and the follow set scoped to the fetch.
func (c *Client) opener(opts Options) (*fetch.Opener, error) {
	handlers := []fetch.Handler{
		fetchhandlers.NewDecompress(),
		fetchhandlers.NewSizeLimit(fetchhandlers.SizeLimitConfig{}),
		fetchhandlers.NewHTTPEquiv(),
		fetchhandlers.NewRefresh(),
		fetchhandlers.NewUserAgent(fetchhandlers.UserAgentConfig{Pool: c.userAgents}),
		fetchhandlers.NewBrowserHeaders(),
		fetchhandlers.NewEncodingFix(fetchhandlers.EncodingFixConfig{Encoding: opts.Encoding}),
	}

	if opts.Follow != "" {
		types, ok := followTypes[opts.Follow]
		if !ok {
			return nil, fmt.Errorf("webget: unknown follow selector %q", opts.Follow)
		}
		alternate, err := fetchhandlers.NewAlternate(fetchhandlers.AlternateConfig{Types: types})
		if err != nil {
			return nil, err
		}
		handlers = append(handlers, alternate)
	}

	cache, err := fetchhandlers.NewCache(fetchhandlers.CacheConfig{
		Store:    c.store,
		ForceMin: opts.Delay,
		Logger:   c.logger,
	})
	if err != nil {
		return nil, err
	}
	handlers = append(handlers, cache)

	return fetch.NewOpener(fetch.OpenerConfig{
		Handlers: handlers,
		Client:   c.httpClient,
		Logger:   c.logger,
	}), nil
}

var (
	defaultClient *Client
	defaultOnce   sync.Once
)

// Default returns the shared environment-configured client backing the
// package-level helpers. The cache backend comes from the CACHE family
// of environment variables; when that configuration cannot be opened
// the client falls back to an in-memory store.
func Default() *Client {
	defaultOnce.Do(func() {
		cfg := fetchcache.FromEnv()
		store, err := cfg.Open()
		if err != nil {
			store = fetchcache.NewMemory(fetchcache.MemoryConfig{Size: cfg.Size})
		}
		defaultClient = NewClient(ClientConfig{
			Store:        store,
			TrimInterval: cfg.TrimInterval(),
		})
	})
	return defaultClient
}

// Get fetches url with the shared default client.
func Get(ctx context.Context, url string, opts Options) ([]byte, error) {
	return Default().Get(ctx, url, opts)
}

// AdvGet fetches url with the shared default client and returns the
// full result.
func AdvGet(ctx context.Context, url string, opts Options) (*Result, error) {
	return Default().AdvGet(ctx, url, opts)
}
