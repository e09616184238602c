package fetch

import (
	"fmt"
	"mime"
	"net/http"
	"regexp"
	"strings"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

var (
	charsetDecl  = regexp.MustCompile(`charset=["']?([0-9a-zA-Z-]+)`)
	encodingDecl = regexp.MustCompile(`encoding=["']?([0-9a-zA-Z-]+)`)
)

const (
	// declProbeSize is how far into the body charset/encoding
	// declarations are looked for.
	declProbeSize = 1000

	// statProbeSize is how much of the body tail feeds statistical
	// detection.
	statProbeSize = 2000

	// statConfidenceMin is the minimum detector confidence before a
	// statistical guess is trusted.
	statConfidenceMin = 50
)

// DetectEncoding returns the character encoding label of a response
// body. Transport headers win over in-body declarations, which win over
// statistical detection; utf-8 is the fall-through. The label gb2312 is
// rewritten to gbk, a strict superset that decodes real-world
// mislabelled content without loss. header may be nil.
func DetectEncoding(body []byte, header http.Header) string {
	enc := detectRawEncoding(body, header)
	if strings.EqualFold(enc, "gb2312") {
		return "gbk"
	}
	return enc
}

func detectRawEncoding(body []byte, header http.Header) string {
	if header != nil {
		if enc := header.Get("Charset"); enc != "" {
			return enc
		}
		if _, params, err := mime.ParseMediaType(header.Get("Content-Type")); err == nil {
			if enc := params["charset"]; enc != "" {
				return enc
			}
		}
	}

	head := body
	if len(head) > declProbeSize {
		head = head[:declProbeSize]
	}
	if m := charsetDecl.FindSubmatch(head); m != nil {
		return strings.ToLower(string(m[1]))
	}
	if m := encodingDecl.FindSubmatch(head); m != nil {
		return strings.ToLower(string(m[1]))
	}

	tail := body
	if len(tail) > statProbeSize {
		tail = tail[len(tail)-statProbeSize:]
	}
	if len(tail) > 0 {
		result, err := chardet.NewTextDetector().DetectBest(tail)
		if err == nil && result.Confidence >= statConfidenceMin && !strings.EqualFold(result.Charset, "ascii") {
			return strings.ToLower(result.Charset)
		}
	}

	return "utf-8"
}

// DecodeText decodes body from the named encoding into UTF-8. Malformed
// sequences are substituted, not failed on; websites are broken.
func DecodeText(body []byte, label string) ([]byte, error) {
	enc, err := lookupEncoding(label)
	if err != nil {
		return nil, err
	}
	out, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return nil, fmt.Errorf("fetch: decode %s: %w", label, err)
	}
	return out, nil
}

// EncodeText encodes UTF-8 text into the named encoding, substituting
// runes the target cannot represent.
func EncodeText(text []byte, label string) ([]byte, error) {
	enc, err := lookupEncoding(label)
	if err != nil {
		return nil, err
	}
	out, err := encoding.ReplaceUnsupported(enc.NewEncoder()).Bytes(text)
	if err != nil {
		return nil, fmt.Errorf("fetch: encode %s: %w", label, err)
	}
	return out, nil
}

func lookupEncoding(label string) (encoding.Encoding, error) {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("fetch: unknown encoding %q: %w", label, err)
	}
	return enc, nil
}
