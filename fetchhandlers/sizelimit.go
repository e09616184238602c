package fetchhandlers

import (
	"context"
	"fmt"
	"io"

	"github.com/feedmill/webget/fetch"
)

// DefaultSizeLimit caps response bodies at 500 KiB.
const DefaultSizeLimit int64 = 500 * 1024

// SizeLimit reads at most a configured number of body bytes and
// discards the rest. It runs after decompression, so the cap applies
// to the inflated bytes every later handler — the cache included —
// gets to see.
type SizeLimit struct {
	limit int64
}

// SizeLimitConfig configures the SizeLimit handler.
type SizeLimitConfig struct {
	// Limit is the maximum body size in bytes. When zero or negative,
	// DefaultSizeLimit is used.
	Limit int64
}

// NewSizeLimit returns a SizeLimit handler.
func NewSizeLimit(cfg SizeLimitConfig) *SizeLimit {
	limit := cfg.Limit
	if limit <= 0 {
		limit = DefaultSizeLimit
	}
	return &SizeLimit{limit: limit}
}

// Order implements fetch.Handler.
func (s *SizeLimit) Order() int { return OrderSizeLimit }

// HandleResponse buffers up to the limit and reseats the body on the
// truncated buffer.
func (s *SizeLimit) HandleResponse(_ context.Context, _ *fetch.Request, resp *fetch.Response) (*fetch.Response, error) {
	data, err := io.ReadAll(io.LimitReader(resp.Body, s.limit))
	if err != nil {
		resp.Body.Close()
		return nil, fmt.Errorf("fetchhandlers: read body: %w", err)
	}
	resp.Body.Close()
	resp.SetBody(data)
	return resp, nil
}
