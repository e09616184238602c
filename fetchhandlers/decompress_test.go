package fetchhandlers

import (
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feedmill/webget/fetch"
)

func gzipped(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write(data)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestDecompressRequest(t *testing.T) {
	req := fetch.NewRequest("http://example.com")
	require.NoError(t, NewDecompress().HandleRequest(context.Background(), req))
	assert.Equal(t, "gzip", req.HeaderValue("Accept-Encoding"))

	// The advertisement must not survive a redirect.
	assert.Empty(t, req.Redirect("http://other.com").HeaderValue("Accept-Encoding"))
}

func TestDecompressResponse(t *testing.T) {
	t.Run("gzip body inflated", func(t *testing.T) {
		plain := bytes.Repeat([]byte("feed content "), 100)
		h := http.Header{}
		h.Set("Content-Encoding", "gzip")
		resp := fetch.NewResponse("http://example.com", 200, "OK", h, gzipped(t, plain))

		_, err := NewDecompress().HandleResponse(context.Background(), nil, resp)
		require.NoError(t, err)
		assert.Equal(t, "identity", resp.Header.Get("Content-Encoding"))

		data, err := resp.Bytes()
		require.NoError(t, err)
		assert.Equal(t, plain, data)
	})

	t.Run("truncated gzip keeps what inflated", func(t *testing.T) {
		plain := bytes.Repeat([]byte("feed content "), 1000)
		compressed := gzipped(t, plain)
		h := http.Header{}
		h.Set("Content-Encoding", "gzip")
		// Drop the checksum trailer, as a cut-off transfer would.
		resp := fetch.NewResponse("http://example.com", 200, "OK", h, compressed[:len(compressed)-8])

		_, err := NewDecompress().HandleResponse(context.Background(), nil, resp)
		require.NoError(t, err)

		data, err := resp.Bytes()
		require.NoError(t, err)
		assert.NotEmpty(t, data)
		assert.True(t, bytes.HasPrefix(plain, data))
	})

	t.Run("brotli body decoded", func(t *testing.T) {
		var buf bytes.Buffer
		bw := brotli.NewWriter(&buf)
		_, err := bw.Write([]byte("brotli feed"))
		require.NoError(t, err)
		require.NoError(t, bw.Close())

		h := http.Header{}
		h.Set("Content-Encoding", "br")
		resp := fetch.NewResponse("http://example.com", 200, "OK", h, buf.Bytes())

		_, err = NewDecompress().HandleResponse(context.Background(), nil, resp)
		require.NoError(t, err)

		data, err := resp.Bytes()
		require.NoError(t, err)
		assert.Equal(t, "brotli feed", string(data))
	})

	t.Run("identity untouched", func(t *testing.T) {
		resp := fetch.NewResponse("http://example.com", 200, "OK", nil, []byte("plain"))
		out, err := NewDecompress().HandleResponse(context.Background(), nil, resp)
		require.NoError(t, err)
		assert.Nil(t, out)

		data, err := resp.Bytes()
		require.NoError(t, err)
		assert.Equal(t, "plain", string(data))
	})

	t.Run("non-2xx untouched", func(t *testing.T) {
		h := http.Header{}
		h.Set("Content-Encoding", "gzip")
		resp := fetch.NewResponse("http://example.com", 404, "Not Found", h, []byte("not gzip"))

		out, err := NewDecompress().HandleResponse(context.Background(), nil, resp)
		require.NoError(t, err)
		assert.Nil(t, out)
		assert.Equal(t, "gzip", resp.Header.Get("Content-Encoding"))
	})
}
