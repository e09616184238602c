package fetchhandlers

import (
	"compress/gzip"
	"compress/zlib"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"

	"github.com/feedmill/webget/fetch"
)

// Decompress advertises gzip support on the way out and transparently
// decodes compressed bodies on the way back. Only gzip is advertised,
// but servers occasionally send deflate or brotli regardless, so those
// are decoded too. Truncated streams are tolerated: whatever inflated
// cleanly is kept.
type Decompress struct{}

// NewDecompress returns a Decompress handler.
func NewDecompress() *Decompress {
	return &Decompress{}
}

// Order implements fetch.Handler.
func (d *Decompress) Order() int { return OrderDecompress }

// HandleRequest adds the Accept-Encoding header as an unredirectable
// header. The opener runs request handlers again on every hop, so each
// redirect target receives it afresh from this handler.
func (d *Decompress) HandleRequest(_ context.Context, req *fetch.Request) error {
	req.SetUnredirected("Accept-Encoding", "gzip")
	return nil
}

// HandleResponse wraps the body in a decoding reader and rewrites
// Content-Encoding to identity.
func (d *Decompress) HandleResponse(_ context.Context, _ *fetch.Request, resp *fetch.Response) (*fetch.Response, error) {
	if !resp.Success() {
		return nil, nil
	}

	encoding := strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding")))
	var decoded io.Reader
	switch encoding {
	case "", "identity":
		return nil, nil
	case "gzip", "x-gzip":
		zr, err := gzip.NewReader(resp.Body)
		if err != nil {
			resp.Body.Close()
			return nil, fmt.Errorf("fetchhandlers: gzip: %w", err)
		}
		// Read a single gzip member and ignore anything after it. A
		// missing or damaged trailer is absorbed by tolerantReader below.
		zr.Multistream(false)
		decoded = zr
	case "deflate":
		zr, err := zlib.NewReader(resp.Body)
		if err != nil {
			resp.Body.Close()
			return nil, fmt.Errorf("fetchhandlers: deflate: %w", err)
		}
		decoded = zr
	case "br":
		decoded = brotli.NewReader(resp.Body)
	default:
		return nil, nil
	}

	resp.Header.Set("Content-Encoding", "identity")
	resp.SetBodyStream(&tolerantReader{r: decoded, underlying: resp.Body})
	return resp, nil
}

// tolerantReader converts mid-stream corruption errors into a clean
// EOF so partially transferred bodies survive with the bytes that did
// decode.
type tolerantReader struct {
	r          io.Reader
	underlying io.Closer
}

func (t *tolerantReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if err != nil && truncationError(err) {
		return n, io.EOF
	}
	return n, err
}

func (t *tolerantReader) Close() error {
	return t.underlying.Close()
}

func truncationError(err error) bool {
	return errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, gzip.ErrChecksum) ||
		errors.Is(err, zlib.ErrChecksum)
}
