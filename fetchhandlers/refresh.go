package fetchhandlers

import (
	"context"
	"net/http"
	"regexp"
	"strings"

	"github.com/feedmill/webget/fetch"
)

// refreshValue matches `<delay>;url=<target>` with optional quoting
// around the target. The closing quote is checked separately; RE2 has
// no backreferences.
var refreshValue = regexp.MustCompile(`(?i)^([0-9]+)\s*;\s*url=(["']?)(.+)$`)

// Refresh converts a Refresh response header into a 302 the pipeline's
// redirect handling can follow. Combined with the http-equiv handler
// this covers <meta http-equiv="Refresh"> landing pages.
type Refresh struct{}

// NewRefresh returns a Refresh handler.
func NewRefresh() *Refresh {
	return &Refresh{}
}

// Order implements fetch.Handler.
func (r *Refresh) Order() int { return OrderRefresh }

// HandleResponse rewrites a 2xx response carrying a parseable Refresh
// header into a synthetic 302.
func (r *Refresh) HandleResponse(_ context.Context, _ *fetch.Request, resp *fetch.Response) (*fetch.Response, error) {
	refresh := resp.Header.Get("Refresh")
	if !resp.Success() || refresh == "" {
		return nil, nil
	}

	target, ok := parseRefresh(refresh)
	if !ok {
		return nil, nil
	}

	resp.StatusCode = http.StatusFound
	resp.Status = "Moved Temporarily"
	resp.Header.Set("Location", target)
	return resp, nil
}

func parseRefresh(value string) (string, bool) {
	m := refreshValue.FindStringSubmatch(value)
	if m == nil {
		return "", false
	}

	quote, target := m[2], m[3]
	if quote != "" {
		if !strings.HasSuffix(target, quote) || len(target) == 1 {
			return "", false
		}
		target = target[:len(target)-1]
	}
	if target == "" {
		return "", false
	}
	return target, true
}
