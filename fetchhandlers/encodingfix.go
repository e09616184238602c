package fetchhandlers

import (
	"context"
	"strings"

	"github.com/feedmill/webget/fetch"
)

// EncodingFix re-encodes text bodies through their own character
// encoding with a substitution policy, so malformed byte sequences are
// normalised into valid ones. Already-valid text passes through
// byte-identical.
type EncodingFix struct {
	encoding string
}

// EncodingFixConfig configures the EncodingFix handler.
type EncodingFixConfig struct {
	// Encoding overrides detection with a fixed label. When empty the
	// encoding is detected per response.
	Encoding string
}

// NewEncodingFix returns an EncodingFix handler.
func NewEncodingFix(cfg EncodingFixConfig) *EncodingFix {
	return &EncodingFix{encoding: cfg.Encoding}
}

// Order implements fetch.Handler.
func (e *EncodingFix) Order() int { return fetch.DefaultOrder }

// HandleResponse repairs 2xx text/* bodies in place. Unknown encoding
// labels leave the body untouched.
func (e *EncodingFix) HandleResponse(_ context.Context, _ *fetch.Request, resp *fetch.Response) (*fetch.Response, error) {
	mainType, _, _ := strings.Cut(resp.ContentType(), "/")
	if !resp.Success() || !strings.EqualFold(mainType, "text") {
		return nil, nil
	}

	data, err := resp.Bytes()
	if err != nil {
		return nil, err
	}

	label := e.encoding
	if label == "" {
		label = fetch.DetectEncoding(data, resp.Header)
	}

	decoded, err := fetch.DecodeText(data, label)
	if err != nil {
		return nil, nil
	}
	encoded, err := fetch.EncodeText(decoded, label)
	if err != nil {
		return nil, nil
	}

	resp.SetBody(encoded)
	return resp, nil
}
