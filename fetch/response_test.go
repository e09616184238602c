package fetch

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseBytes(t *testing.T) {
	t.Run("buffers and reseats", func(t *testing.T) {
		resp := &Response{
			StatusCode: 200,
			Header:     http.Header{},
		}
		resp.SetBodyStream(io.NopCloser(strings.NewReader("stream body")))

		data, err := resp.Bytes()
		require.NoError(t, err)
		assert.Equal(t, "stream body", string(data))

		// The body must be readable again after buffering.
		again, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, "stream body", string(again))
	})

	t.Run("repeat calls return the same buffer", func(t *testing.T) {
		resp := NewResponse("http://example.com", 200, "OK", nil, []byte("abc"))

		first, err := resp.Bytes()
		require.NoError(t, err)
		second, err := resp.Bytes()
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("nil body yields empty", func(t *testing.T) {
		resp := &Response{StatusCode: 204, Header: http.Header{}}
		data, err := resp.Bytes()
		require.NoError(t, err)
		assert.Empty(t, data)
	})
}

func TestResponseSetBody(t *testing.T) {
	resp := NewResponse("http://example.com", 200, "OK", nil, []byte("old"))
	resp.SetBody([]byte("new"))

	data, err := resp.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestResponseContentType(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{"plain", "text/html", "text/html"},
		{"parameters stripped", "text/html; charset=utf-8", "text/html"},
		{"case folded", "Application/RSS+XML", "application/rss+xml"},
		{"missing", "", ""},
		{"garbage", ";;;", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			if tt.value != "" {
				h.Set("Content-Type", tt.value)
			}
			resp := NewResponse("http://example.com", 200, "OK", h, nil)
			assert.Equal(t, tt.want, resp.ContentType())
		})
	}
}

func TestResponseSuccess(t *testing.T) {
	assert.True(t, NewResponse("u", 200, "OK", nil, nil).Success())
	assert.True(t, NewResponse("u", 299, "", nil, nil).Success())
	assert.False(t, NewResponse("u", 199, "", nil, nil).Success())
	assert.False(t, NewResponse("u", 302, "Found", nil, nil).Success())
	assert.False(t, NewResponse("u", 404, "Not Found", nil, nil).Success())
}
