package fetchhandlers

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feedmill/webget/fetch"
)

func TestSizeLimit(t *testing.T) {
	t.Run("truncates oversized bodies", func(t *testing.T) {
		body := bytes.Repeat([]byte("x"), 100)
		resp := fetch.NewResponse("http://example.com", 200, "OK", nil, body)

		h := NewSizeLimit(SizeLimitConfig{Limit: 64})
		_, err := h.HandleResponse(context.Background(), nil, resp)
		require.NoError(t, err)

		data, err := resp.Bytes()
		require.NoError(t, err)
		assert.Len(t, data, 64)
	})

	t.Run("small bodies pass through whole", func(t *testing.T) {
		resp := fetch.NewResponse("http://example.com", 200, "OK", nil, []byte("tiny"))

		h := NewSizeLimit(SizeLimitConfig{Limit: 64})
		_, err := h.HandleResponse(context.Background(), nil, resp)
		require.NoError(t, err)

		data, err := resp.Bytes()
		require.NoError(t, err)
		assert.Equal(t, "tiny", string(data))
	})

	t.Run("default limit", func(t *testing.T) {
		h := NewSizeLimit(SizeLimitConfig{})
		assert.Equal(t, DefaultSizeLimit, h.limit)
		assert.Equal(t, OrderSizeLimit, h.Order())
	})
}
