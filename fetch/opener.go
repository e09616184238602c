package fetch

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultMaxRedirects caps how many redirects one Open call follows
// before handing the last response back untouched.
const DefaultMaxRedirects = 10

// OpenerConfig configures an Opener.
type OpenerConfig struct {
	// Handlers is the pipeline, in any order; the opener sorts it by
	// handler order, keeping the given order among ties.
	Handlers []Handler

	// Client performs the network requests. It must not follow
	// redirects itself — the opener does that, so it can drop
	// unredirectable headers between hops. When nil, a client from
	// NewHTTPClient with defaults is used.
	Client *http.Client

	// MaxRedirects overrides DefaultMaxRedirects when positive.
	MaxRedirects int

	// Logger receives debug-level pipeline events. Defaults to a nop
	// logger.
	Logger *zap.Logger
}

// Opener drives requests through an ordered handler chain. It is safe
// for concurrent use; all per-request state lives in the Request and
// Response passed along the chain.
type Opener struct {
	handlers     []Handler
	client       *http.Client
	maxRedirects int
	logger       *zap.Logger
}

// NewOpener returns an opener for the given configuration.
func NewOpener(cfg OpenerConfig) *Opener {
	handlers := make([]Handler, len(cfg.Handlers))
	copy(handlers, cfg.Handlers)
	sort.SliceStable(handlers, func(i, j int) bool {
		return handlers[i].Order() < handlers[j].Order()
	})

	client := cfg.Client
	if client == nil {
		client = NewHTTPClient(HTTPClientConfig{})
	}

	maxRedirects := cfg.MaxRedirects
	if maxRedirects <= 0 {
		maxRedirects = DefaultMaxRedirects
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Opener{
		handlers:     handlers,
		client:       client,
		maxRedirects: maxRedirects,
		logger:       logger,
	}
}

// Open drives req through the pipeline and returns the final response.
// Redirects — network ones and synthetic ones manufactured by handlers —
// are followed up to the configured cap. The internal control header
// never leaves the pipeline.
func (o *Opener) Open(ctx context.Context, req *Request) (*Response, error) {
	resp, err := o.open(ctx, req)
	if err != nil {
		return nil, err
	}
	resp.Header.Del(InternalHeader)
	return resp, nil
}

func (o *Opener) open(ctx context.Context, req *Request) (*Response, error) {
	id := uuid.NewString()

	for hop := 0; ; hop++ {
		resp, err := o.openOnce(ctx, req, id)
		if err != nil {
			return nil, err
		}

		location := resp.Header.Get("Location")
		if !isRedirect(resp.StatusCode) || location == "" || hop >= o.maxRedirects {
			return resp, nil
		}

		o.logger.Debug("following redirect",
			zap.String("request_id", id),
			zap.Int("status", resp.StatusCode),
			zap.String("location", location))

		resp.Close()
		req = req.Redirect(location)
	}
}

func (o *Opener) openOnce(ctx context.Context, req *Request, id string) (*Response, error) {
	req.init()

	o.logger.Debug("opening", zap.String("request_id", id), zap.String("url", req.URL))

	for _, h := range o.handlers {
		rh, ok := h.(RequestHandler)
		if !ok {
			continue
		}
		if err := rh.HandleRequest(ctx, req); err != nil {
			return nil, err
		}
	}

	var resp *Response
	for _, h := range o.handlers {
		oh, ok := h.(OpenHandler)
		if !ok {
			continue
		}
		r, err := oh.Open(ctx, req)
		if err != nil {
			return nil, err
		}
		if r != nil {
			o.logger.Debug("request satisfied without network",
				zap.String("request_id", id), zap.Int("status", r.StatusCode))
			resp = r
			break
		}
	}

	if resp == nil {
		var err error
		resp, err = o.roundTrip(ctx, req)
		if err != nil {
			return nil, err
		}
	}

	for _, h := range o.handlers {
		sh, ok := h.(StatusHandler)
		if !ok || !slices.Contains(sh.Statuses(), resp.StatusCode) {
			continue
		}
		r, err := sh.HandleStatus(ctx, o, req, resp)
		if err != nil {
			return nil, err
		}
		if r != nil {
			// Already a complete response; the sub-request it came from
			// ran the whole pipeline.
			return r, nil
		}
	}

	for _, h := range o.handlers {
		rh, ok := h.(ResponseHandler)
		if !ok {
			continue
		}
		r, err := rh.HandleResponse(ctx, req, resp)
		if err != nil {
			return nil, err
		}
		if r != nil {
			resp = r
		}
	}

	return resp, nil
}

func (o *Opener) roundTrip(ctx context.Context, req *Request) (*Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch: build request: %w", err)
	}
	httpReq.Header = req.effectiveHeader()

	res, err := o.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	return &Response{
		StatusCode: res.StatusCode,
		Status:     statusMessage(res),
		Header:     res.Header.Clone(),
		Body:       res.Body,
		URL:        res.Request.URL.String(),
		Raw:        res,
	}, nil
}

func isRedirect(code int) bool {
	switch code {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}

// statusMessage extracts the reason phrase from a transport response,
// falling back to the standard text for the code.
func statusMessage(res *http.Response) string {
	if _, msg, ok := strings.Cut(res.Status, " "); ok && msg != "" {
		return msg
	}
	return http.StatusText(res.StatusCode)
}
