package fetch

import "context"

// DefaultOrder is the pipeline position for handlers that have no
// reason to run at a particular point.
const DefaultOrder = 500

// InternalHeader is the private header handlers use to pass control
// signals to each other within one pipeline. The opener strips it from
// every response it returns, and the cache handler strips it from every
// record it stores.
const InternalHeader = "Webget"

// Values carried in InternalHeader.
const (
	// SignalFrom304 marks a request re-issued after a 304 Not Modified
	// so the cache serves it without consulting the network again.
	SignalFrom304 = "from_304"

	// SignalFromCache marks a response synthesised from the cache so it
	// is not written back.
	SignalFromCache = "from_cache"
)

// Handler is a pipeline interceptor. Order determines its position:
// handlers run in ascending order in both the request and the response
// phase, ties broken by the order they were supplied in. A handler
// participates in a phase by additionally implementing RequestHandler,
// OpenHandler, StatusHandler, or ResponseHandler.
type Handler interface {
	Order() int
}

// RequestHandler mutates the outgoing request before it is sent.
type RequestHandler interface {
	Handler
	HandleRequest(ctx context.Context, req *Request) error
}

// OpenHandler can satisfy a request without network I/O. Returning a
// non-nil response skips the network and the remaining open handlers;
// returning (nil, nil) declines and delegates to the next one.
type OpenHandler interface {
	Handler
	Open(ctx context.Context, req *Request) (*Response, error)
}

// StatusHandler intercepts responses with specific status codes before
// the generic response phase runs. It may re-open a derived request
// through the opener; a non-nil response it returns is handed to the
// caller as-is, without running the response phase on it again.
// Returning (nil, nil) declines.
type StatusHandler interface {
	Handler
	Statuses() []int
	HandleStatus(ctx context.Context, op *Opener, req *Request, resp *Response) (*Response, error)
}

// ResponseHandler observes or replaces the response on its way back to
// the caller. Returning a nil response keeps the current one.
type ResponseHandler interface {
	Handler
	HandleResponse(ctx context.Context, req *Request, resp *Response) (*Response, error)
}
