package fetch

import (
	"net/http"
	"net/url"
)

// Request is a single outgoing GET request travelling through the
// pipeline. Handlers mutate it in place during the request phase.
//
// Headers come in two visibility classes. Entries in Header are sent on
// this request and on every request that follows a redirect from it.
// Headers added with SetUnredirected are sent only on the original
// request and are dropped when the request is redirected; validators
// and identification headers belong there.
type Request struct {
	// URL is the absolute request URL.
	URL string

	// Header holds headers forwarded across redirects.
	Header http.Header

	unredirected http.Header
}

// NewRequest returns a request for the given absolute URL.
func NewRequest(rawURL string) *Request {
	return &Request{
		URL:          rawURL,
		Header:       make(http.Header),
		unredirected: make(http.Header),
	}
}

func (r *Request) init() {
	if r.Header == nil {
		r.Header = make(http.Header)
	}
	if r.unredirected == nil {
		r.unredirected = make(http.Header)
	}
}

// SetUnredirected sets a header that is not forwarded when the request
// is redirected. An unredirected header shadows a redirectable header
// of the same name.
func (r *Request) SetUnredirected(key, value string) {
	r.init()
	r.unredirected.Set(key, value)
}

// HeaderValue returns the effective value of the named header,
// preferring the unredirected set.
func (r *Request) HeaderValue(key string) string {
	r.init()
	if v := r.unredirected.Get(key); v != "" {
		return v
	}
	return r.Header.Get(key)
}

// effectiveHeader merges both header classes into the header map that
// goes on the wire for this hop.
func (r *Request) effectiveHeader() http.Header {
	r.init()
	h := r.Header.Clone()
	for k, vv := range r.unredirected {
		h[k] = append([]string(nil), vv...)
	}
	return h
}

// Clone returns a deep copy of the request, both header classes
// included.
func (r *Request) Clone() *Request {
	r.init()
	return &Request{
		URL:          r.URL,
		Header:       r.Header.Clone(),
		unredirected: r.unredirected.Clone(),
	}
}

// Redirect returns the follow-up request for a redirect target.
// Relative targets are resolved against the current URL. Redirectable
// headers carry over; unredirected headers do not.
func (r *Request) Redirect(location string) *Request {
	r.init()

	target := location
	if base, err := url.Parse(r.URL); err == nil {
		if ref, err := url.Parse(location); err == nil {
			target = base.ResolveReference(ref).String()
		}
	}

	return &Request{
		URL:          target,
		Header:       r.Header.Clone(),
		unredirected: make(http.Header),
	}
}
