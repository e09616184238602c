package fetchhandlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feedmill/webget/fetch"
)

func TestParseRefresh(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
		ok    bool
	}{
		{"bare", "0;url=http://example.com/real", "http://example.com/real", true},
		{"spaced", "5 ; url=http://example.com/real", "http://example.com/real", true},
		{"double quoted", `0;url="http://example.com/real"`, "http://example.com/real", true},
		{"single quoted", `0;url='http://example.com/real'`, "http://example.com/real", true},
		{"case insensitive", "0;URL=http://example.com/real", "http://example.com/real", true},
		{"relative target", "0;url=/real", "/real", true},
		{"unterminated quote", `0;url="http://example.com/real`, "", false},
		{"delay only", "30", "", false},
		{"missing delay", ";url=http://example.com", "", false},
		{"garbage", "soon", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseRefresh(tt.value)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRefresh(t *testing.T) {
	t.Run("rewrites to a synthetic 302", func(t *testing.T) {
		h := http.Header{}
		h.Set("Refresh", "0;url=http://example.com/real")
		resp := fetch.NewResponse("http://example.com/page", 200, "OK", h, []byte("landing"))

		_, err := NewRefresh().HandleResponse(context.Background(), nil, resp)
		require.NoError(t, err)

		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "http://example.com/real", resp.Header.Get("Location"))
	})

	t.Run("no refresh header passes through", func(t *testing.T) {
		resp := fetch.NewResponse("http://example.com", 200, "OK", nil, []byte("body"))
		out, err := NewRefresh().HandleResponse(context.Background(), nil, resp)
		require.NoError(t, err)
		assert.Nil(t, out)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("unparseable value passes through", func(t *testing.T) {
		h := http.Header{}
		h.Set("Refresh", "whenever")
		resp := fetch.NewResponse("http://example.com", 200, "OK", h, nil)

		out, err := NewRefresh().HandleResponse(context.Background(), nil, resp)
		require.NoError(t, err)
		assert.Nil(t, out)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("non-2xx ignored", func(t *testing.T) {
		h := http.Header{}
		h.Set("Refresh", "0;url=http://example.com/real")
		resp := fetch.NewResponse("http://example.com", 404, "Not Found", h, nil)

		out, err := NewRefresh().HandleResponse(context.Background(), nil, resp)
		require.NoError(t, err)
		assert.Nil(t, out)
		assert.Equal(t, 404, resp.StatusCode)
	})
}
