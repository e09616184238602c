package fetchhandlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"golang.org/x/net/html"

	"github.com/feedmill/webget/fetch"
)

// ErrNoAlternateTypes is returned when AlternateConfig.Types is empty.
var ErrNoAlternateTypes = errors.New("fetchhandlers: alternate: at least one target type is required")

// Alternate rewrites an HTML landing page to the alternate document it
// links to — the classic case being a homepage advertising its feed via
// <link rel="alternate" type="application/rss+xml" href="/feed">.
type Alternate struct {
	types map[string]struct{}
}

// AlternateConfig configures the Alternate handler.
type AlternateConfig struct {
	// Types is the set of target MIME types worth following. Required.
	Types []string
}

// NewAlternate returns an Alternate handler. It returns
// ErrNoAlternateTypes if Types is empty.
func NewAlternate(cfg AlternateConfig) (*Alternate, error) {
	if len(cfg.Types) == 0 {
		return nil, ErrNoAlternateTypes
	}

	types := make(map[string]struct{}, len(cfg.Types))
	for _, t := range cfg.Types {
		types[strings.ToLower(t)] = struct{}{}
	}
	return &Alternate{types: types}, nil
}

// Order implements fetch.Handler.
func (a *Alternate) Order() int { return fetch.DefaultOrder }

// HandleResponse rewrites a 2xx HTML-ish response that is not already
// one of the target types into a synthetic 302 pointing at the first
// advertised alternate of a target type. Parse failures leave the
// response untouched.
func (a *Alternate) HandleResponse(_ context.Context, _ *fetch.Request, resp *fetch.Response) (*fetch.Response, error) {
	contentType := resp.ContentType()
	if !resp.Success() || !isHTMLish(contentType) {
		return nil, nil
	}
	if _, ok := a.types[contentType]; ok {
		return nil, nil
	}

	data, err := resp.Bytes()
	if err != nil {
		return nil, err
	}

	doc, err := parseHTMLHead(data)
	if err != nil {
		return nil, nil
	}

	visitElements(doc, "link", func(n *html.Node) bool {
		if !strings.EqualFold(attrValue(n, "rel"), "alternate") {
			return true
		}
		href := attrValue(n, "href")
		if href == "" {
			return true
		}
		if _, ok := a.types[strings.ToLower(attrValue(n, "type"))]; !ok {
			return true
		}

		resp.StatusCode = http.StatusFound
		resp.Status = "Moved Temporarily"
		resp.Header.Set("Location", href)
		return false
	})
	return resp, nil
}
