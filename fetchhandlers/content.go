package fetchhandlers

import (
	"bytes"
	"net/http"
	"strings"

	"golang.org/x/net/html"
)

// Pinned handler orders; see the package documentation for why the
// response-path ordering matters.
const (
	OrderDecompress = 440
	OrderSizeLimit  = 450
	OrderCache      = 499
	OrderHTTPEquiv  = 600
	OrderRefresh    = 700
)

// htmlScanLimit is how many leading bytes the HTML-scanning handlers
// parse; meta and link elements live in the head.
const htmlScanLimit = 10000

// htmlContentTypes are the content types worth scanning for meta and
// link elements.
var htmlContentTypes = map[string]struct{}{
	"text/html":             {},
	"application/xhtml+xml": {},
	"application/xml":       {},
}

func isHTMLish(contentType string) bool {
	_, ok := htmlContentTypes[contentType]
	return ok
}

// parseHTMLHead parses the first htmlScanLimit bytes as HTML. The
// parser is lenient; real-world head sections almost always survive
// truncation mid-document.
func parseHTMLHead(data []byte) (*html.Node, error) {
	if len(data) > htmlScanLimit {
		data = data[:htmlScanLimit]
	}
	return html.Parse(bytes.NewReader(data))
}

// visitElements walks the tree depth-first, calling visit for every
// element named tag until visit returns false.
func visitElements(n *html.Node, tag string, visit func(*html.Node) bool) bool {
	if n.Type == html.ElementNode && n.Data == tag {
		if !visit(n) {
			return false
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !visitElements(c, tag, visit) {
			return false
		}
	}
	return true
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// parseCacheDirectives splits the Cache-Control and Pragma headers into
// bare directive flags and key=value directives, keys lowercased.
func parseCacheDirectives(h http.Header) (flags map[string]bool, values map[string]string) {
	flags = make(map[string]bool)
	values = make(map[string]string)

	for _, name := range []string{"Cache-Control", "Pragma"} {
		for _, raw := range h.Values(name) {
			for _, part := range strings.Split(raw, ",") {
				part = strings.TrimSpace(part)
				if part == "" {
					continue
				}
				if key, val, ok := strings.Cut(part, "="); ok {
					values[strings.ToLower(strings.TrimSpace(key))] = strings.Trim(strings.TrimSpace(val), `"`)
				} else {
					flags[strings.ToLower(part)] = true
				}
			}
		}
	}
	return flags, values
}
