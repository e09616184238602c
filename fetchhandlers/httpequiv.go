package fetchhandlers

import (
	"context"

	"golang.org/x/net/html"

	"github.com/feedmill/webget/fetch"
)

// HTTPEquiv hoists <meta http-equiv="..." content="..."> elements into
// the response header map; they define HTTP headers that some origins
// only ever set in markup. Parse failures leave the response untouched.
type HTTPEquiv struct{}

// NewHTTPEquiv returns an HTTPEquiv handler.
func NewHTTPEquiv() *HTTPEquiv {
	return &HTTPEquiv{}
}

// Order implements fetch.Handler.
func (h *HTTPEquiv) Order() int { return OrderHTTPEquiv }

// HandleResponse folds meta http-equiv pairs of 2xx HTML-ish responses
// into the header map.
func (h *HTTPEquiv) HandleResponse(_ context.Context, _ *fetch.Request, resp *fetch.Response) (*fetch.Response, error) {
	if !resp.Success() || !isHTMLish(resp.ContentType()) {
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

	visitElements(doc, "meta", func(n *html.Node) bool {
		if equiv := attrValue(n, "http-equiv"); equiv != "" {
			resp.Header.Set(equiv, attrValue(n, "content"))
		}
		return true
	})
	return resp, nil
}
