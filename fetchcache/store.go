package fetchcache

import (
	"bufio"
	"context"
	"errors"
	"net/http"
	"net/textproto"
	"sort"
	"strings"
	"time"
)

// Defaults shared by all backends.
const (
	// DefaultSize is how many records a store keeps after a Trim.
	DefaultSize = 1000

	// DefaultLifespan is how often the janitor trims.
	DefaultLifespan = 60 * time.Second
)

// ErrNotFound is returned by Store.Get when no record exists for the
// URL.
var ErrNotFound = errors.New("fetchcache: record not found")

// Record is what the cache keeps per URL. Bodies are stored after
// decompression, so the serialised headers always carry
// Content-Encoding: identity for responses that arrived compressed.
type Record struct {
	// Code is the stored HTTP status code.
	Code int

	// Status is the stored reason phrase.
	Status string

	// Header is the response header map serialised as an RFC-822-style
	// block; see EncodeHeader.
	Header string

	// Body is the stored response body.
	Body []byte

	// Timestamp is the epoch second the record was inserted or last
	// revalidated.
	Timestamp int64
}

// DecodedHeader parses the serialised header block. Damaged blocks
// yield whatever could be read, never an error.
func (r *Record) DecodedHeader() http.Header {
	return DecodeHeader(r.Header)
}

// clone returns an independent copy so callers can hold on to records
// without racing store mutations.
func (r *Record) clone() *Record {
	c := *r
	c.Body = append([]byte(nil), r.Body...)
	return &c
}

// Store is a URL-keyed record map with capped size. Set is an upsert;
// Trim drops everything but the newest records. Implementations are
// safe for concurrent Get/Set/Trim.
type Store interface {
	Get(ctx context.Context, url string) (*Record, error)
	Set(ctx context.Context, url string, rec *Record) error
	Trim(ctx context.Context) error
	Close() error
}

// EncodeHeader serialises a header map as an RFC-822-style block, one
// "Name: value" line per value, keys sorted for stable output.
func EncodeHeader(h http.Header) string {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		for _, v := range h[k] {
			b.WriteString(k)
			b.WriteString(": ")
			b.WriteString(v)
			b.WriteString("\r\n")
		}
	}
	return b.String()
}

// DecodeHeader parses an RFC-822-style header block back into a header
// map. It is total: malformed input yields the entries that could be
// read.
func DecodeHeader(s string) http.Header {
	reader := textproto.NewReader(bufio.NewReader(strings.NewReader(s + "\r\n")))
	mime, err := reader.ReadMIMEHeader()
	if err != nil && len(mime) == 0 {
		return http.Header{}
	}
	return http.Header(mime)
}
