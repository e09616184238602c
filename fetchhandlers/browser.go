package fetchhandlers

import (
	"context"

	"github.com/feedmill/webget/fetch"
)

// BrowserHeaders adds the Accept headers a regular browser sends; some
// hosts refuse obviously scripted clients.
type BrowserHeaders struct{}

// NewBrowserHeaders returns a BrowserHeaders handler.
func NewBrowserHeaders() *BrowserHeaders {
	return &BrowserHeaders{}
}

// Order implements fetch.Handler.
func (b *BrowserHeaders) Order() int { return fetch.DefaultOrder }

// HandleRequest sets Accept and Accept-Language; both unredirectable.
func (b *BrowserHeaders) HandleRequest(_ context.Context, req *fetch.Request) error {
	req.SetUnredirected("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.SetUnredirected("Accept-Language", "en-US,en;q=0.5")
	return nil
}
