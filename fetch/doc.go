// Package fetch implements the request pipeline that retrieves remote
// web resources on behalf of a feed parser.
//
// A pipeline is an ordered chain of handlers driven by an Opener. Each
// handler may rewrite the outgoing request, satisfy it without network
// I/O, intercept specific status codes, or replace the response on its
// way back. Handlers are sorted by an integer order; both the request
// and the response phase run in ascending order, ties broken by the
// order handlers were supplied in.
//
// # Opener
//
// Build an opener from a handler chain and drive requests through it:
//
//	op := fetch.NewOpener(fetch.OpenerConfig{
//	    Handlers: []fetch.Handler{...},
//	})
//	resp, err := op.Open(ctx, fetch.NewRequest("http://example.com/feed.xml"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	data, err := resp.Bytes()
//
// The opener follows redirects itself — both real ones from the network
// and synthetic ones manufactured by handlers — and drops unredirectable
// headers between hops. Redirect following on the underlying
// http.Client must therefore stay disabled; NewHTTPClient takes care of
// that.
//
// # URL sanitising and encoding detection
//
// SanitizeURL normalises arbitrary user input into an absolute ASCII
// URL and never fails. DetectEncoding resolves the character encoding
// of a response body from transport headers, in-body declarations, and
// statistical detection, in that order.
package fetch
