package fetch

import (
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/idna"
)

// some websites hand out really badly formatted urls (http:/badurl)
var schemeTypo = regexp.MustCompile(`^(https?):/([^/])`)

// SanitizeURL normalises arbitrary user input into a best-effort
// absolute ASCII URL. A missing scheme gets http:// prepended, the
// http:/host typo is repaired, spaces are percent-encoded, non-ASCII
// host labels are IDNA-encoded, and non-ASCII path, query, and fragment
// bytes are percent-encoded from UTF-8. It never fails: input that
// cannot be parsed comes back as close to a URL as it could be made.
// The function is idempotent.
func SanitizeURL(raw string) string {
	u := raw

	if scheme, _, ok := strings.Cut(u, ":"); !ok || (scheme != "http" && scheme != "https") {
		u = "http://" + u
	}

	u = schemeTypo.ReplaceAllString(u, "$1://$2")
	u = strings.ReplaceAll(u, " ", "%20")

	parsed, err := url.Parse(u)
	if err != nil || parsed.Host == "" {
		return u
	}

	var b strings.Builder
	b.WriteString(parsed.Scheme)
	b.WriteString("://")
	b.WriteString(asciiHost(parsed.Host))
	b.WriteString(escapeNonASCII(parsed.EscapedPath()))
	if parsed.ForceQuery || parsed.RawQuery != "" {
		b.WriteByte('?')
		b.WriteString(escapeNonASCII(parsed.RawQuery))
	}
	if parsed.Fragment != "" {
		b.WriteByte('#')
		b.WriteString(escapeNonASCII(parsed.EscapedFragment()))
	}
	return b.String()
}

// asciiHost IDNA-encodes a non-ASCII hostname, preserving any port.
// Hosts that cannot be encoded are returned unchanged.
func asciiHost(host string) string {
	if isASCII(host) {
		return host
	}

	hostname, port := host, ""
	if h, p, err := net.SplitHostPort(host); err == nil {
		hostname, port = h, p
	}

	encoded, err := idna.ToASCII(hostname)
	if err != nil {
		return host
	}
	if port != "" {
		return encoded + ":" + port
	}
	return encoded
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// escapeNonASCII percent-encodes every non-ASCII byte, leaving ASCII —
// existing percent escapes included — untouched.
func escapeNonASCII(s string) string {
	if isASCII(s) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < utf8.RuneSelf {
			b.WriteByte(c)
		} else {
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}
	return b.String()
}
