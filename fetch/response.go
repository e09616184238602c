package fetch

import (
	"bytes"
	"io"
	"mime"
	"net/http"
)

// Response is the result of driving a request through the pipeline.
//
// Body starts out streaming from the transport. Any handler may call
// Bytes to buffer it; from then on the body is an in-memory seekable
// buffer that downstream handlers and the caller can read again.
type Response struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Status is the reason phrase without the leading code, e.g. "OK".
	Status string

	// Header holds the response headers. Keys are canonicalised by
	// net/http, so lookups are case-insensitive.
	Header http.Header

	// Body is the response body. Handlers that consume it are expected
	// to reseat it via Bytes, SetBody, or SetBodyStream.
	Body io.ReadCloser

	// URL is the final URL after any redirects the pipeline followed.
	URL string

	// Raw is a snapshot of the transport response for out-of-band
	// inspection. It is nil for responses a handler synthesised.
	Raw *http.Response

	buffered []byte
}

// NewResponse returns a synthetic response around an in-memory body.
func NewResponse(rawURL string, code int, status string, header http.Header, body []byte) *Response {
	if header == nil {
		header = make(http.Header)
	}
	resp := &Response{
		StatusCode: code,
		Status:     status,
		Header:     header,
		URL:        rawURL,
	}
	resp.SetBody(body)
	return resp
}

// Success reports whether the status code is in the 2xx range.
func (r *Response) Success() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// ContentType returns the response MIME type with parameters stripped,
// lowercased. It returns "" when the Content-Type header is missing or
// unparseable.
func (r *Response) ContentType() string {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return ""
	}
	return mediaType
}

// Bytes reads the remaining body into memory, reseats Body on the
// buffer so it can be read again, and returns the buffered bytes.
// Subsequent calls return the same buffer without consuming the body.
func (r *Response) Bytes() ([]byte, error) {
	if r.buffered != nil {
		return r.buffered, nil
	}
	if r.Body == nil {
		r.SetBody(nil)
		return r.buffered, nil
	}

	data, err := io.ReadAll(r.Body)
	r.Body.Close()
	r.SetBody(data)
	if err != nil {
		return data, err
	}
	return data, nil
}

// SetBody replaces the body with an in-memory buffer.
func (r *Response) SetBody(body []byte) {
	if body == nil {
		body = []byte{}
	}
	r.buffered = body
	r.Body = io.NopCloser(bytes.NewReader(body))
}

// SetBodyStream replaces the body with an unbuffered stream, e.g. a
// decompressing reader wrapped around the previous body.
func (r *Response) SetBodyStream(body io.ReadCloser) {
	r.buffered = nil
	r.Body = body
}

// Close releases the body. Callers that never read the body should
// close the response so the underlying connection can be reused.
func (r *Response) Close() error {
	if r.Body == nil {
		return nil
	}
	return r.Body.Close()
}
