package fetch

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectEncoding(t *testing.T) {
	t.Run("charset header wins", func(t *testing.T) {
		h := http.Header{}
		h.Set("Charset", "iso-8859-1")
		h.Set("Content-Type", "text/html; charset=utf-8")
		assert.Equal(t, "iso-8859-1", DetectEncoding([]byte("<html/>"), h))
	})

	t.Run("content type parameter", func(t *testing.T) {
		h := http.Header{}
		h.Set("Content-Type", "text/html; charset=windows-1252")
		assert.Equal(t, "windows-1252", DetectEncoding([]byte("<html/>"), h))
	})

	t.Run("meta charset declaration", func(t *testing.T) {
		body := []byte(`<html><head><meta charset="ISO-8859-2"></head></html>`)
		assert.Equal(t, "iso-8859-2", DetectEncoding(body, nil))
	})

	t.Run("xml encoding declaration", func(t *testing.T) {
		body := []byte(`<?xml version="1.0" encoding="KOI8-R"?><rss/>`)
		assert.Equal(t, "koi8-r", DetectEncoding(body, nil))
	})

	t.Run("declaration outside probe window ignored", func(t *testing.T) {
		body := append([]byte(strings.Repeat(" ", declProbeSize)), []byte(`charset="koi8-r"`)...)
		assert.NotEqual(t, "koi8-r", DetectEncoding(body, nil))
	})

	t.Run("utf-8 fallback on empty body", func(t *testing.T) {
		assert.Equal(t, "utf-8", DetectEncoding(nil, nil))
	})

	t.Run("statistical detection of utf-8 text", func(t *testing.T) {
		body := []byte(strings.Repeat("žluťoučký kůň úpěl ďábelské ódy ", 40))
		assert.Equal(t, "utf-8", DetectEncoding(body, nil))
	})

	t.Run("gb2312 rewritten to gbk", func(t *testing.T) {
		h := http.Header{}
		h.Set("Content-Type", "text/html; charset=GB2312")
		assert.Equal(t, "gbk", DetectEncoding(nil, h))

		body := []byte(`<meta charset="gb2312">`)
		assert.Equal(t, "gbk", DetectEncoding(body, nil))
	})
}

func TestDecodeText(t *testing.T) {
	t.Run("valid input untouched", func(t *testing.T) {
		out, err := DecodeText([]byte("hello"), "utf-8")
		require.NoError(t, err)
		assert.Equal(t, []byte("hello"), out)
	})

	t.Run("latin1 decoded", func(t *testing.T) {
		out, err := DecodeText([]byte{0xe9}, "iso-8859-1")
		require.NoError(t, err)
		assert.Equal(t, []byte("é"), out)
	})

	t.Run("malformed utf-8 substituted", func(t *testing.T) {
		out, err := DecodeText([]byte{'h', 'i', 0xff}, "utf-8")
		require.NoError(t, err)
		assert.Equal(t, []byte("hi�"), out)
	})

	t.Run("unknown label rejected", func(t *testing.T) {
		_, err := DecodeText([]byte("x"), "no-such-encoding")
		assert.Error(t, err)
	})
}

func TestEncodeText(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		out, err := EncodeText([]byte("é"), "iso-8859-1")
		require.NoError(t, err)
		assert.Equal(t, []byte{0xe9}, out)
	})

	t.Run("unsupported runes substituted", func(t *testing.T) {
		out, err := EncodeText([]byte("a€b"), "iso-8859-1")
		require.NoError(t, err)
		assert.Len(t, out, 3)
		assert.EqualValues(t, 'a', out[0])
		assert.EqualValues(t, 'b', out[2])
	})
}
