package fetchcache

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeaderRoundTrip(t *testing.T) {
	t.Run("values survive", func(t *testing.T) {
		h := http.Header{}
		h.Set("Content-Type", "application/rss+xml; charset=utf-8")
		h.Set("Etag", `"abc"`)
		h.Add("Cache-Control", "max-age=3600")
		h.Add("Cache-Control", "public")

		decoded := DecodeHeader(EncodeHeader(h))
		assert.Equal(t, "application/rss+xml; charset=utf-8", decoded.Get("Content-Type"))
		assert.Equal(t, `"abc"`, decoded.Get("Etag"))
		assert.Equal(t, []string{"max-age=3600", "public"}, decoded.Values("Cache-Control"))
	})

	t.Run("lookup is case insensitive", func(t *testing.T) {
		h := http.Header{}
		h.Set("Last-Modified", "Mon, 02 Jan 2006 15:04:05 GMT")

		decoded := DecodeHeader(EncodeHeader(h))
		assert.Equal(t, "Mon, 02 Jan 2006 15:04:05 GMT", decoded.Get("last-modified"))
	})

	t.Run("stable output", func(t *testing.T) {
		h := http.Header{}
		h.Set("B-Header", "2")
		h.Set("A-Header", "1")
		assert.Equal(t, EncodeHeader(h), EncodeHeader(h))
		assert.Equal(t, "A-Header: 1\r\nB-Header: 2\r\n", EncodeHeader(h))
	})

	t.Run("empty block", func(t *testing.T) {
		assert.Empty(t, DecodeHeader(""))
	})

	t.Run("damaged block is best effort", func(t *testing.T) {
		decoded := DecodeHeader("Etag: \"abc\"\r\ngarbage without colon")
		assert.Equal(t, `"abc"`, decoded.Get("Etag"))
	})
}

func TestRecordDecodedHeader(t *testing.T) {
	rec := &Record{Header: "Content-Type: text/html\r\n"}
	assert.Equal(t, "text/html", rec.DecodedHeader().Get("Content-Type"))
}
