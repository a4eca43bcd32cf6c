package fetch

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("fake png bytes"))
	}))
	t.Cleanup(srv.Close)

	c := New(nil)
	data, contentType, err := c.Fetch(t.Context(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, []byte("fake png bytes"), data)
	assert.Equal(t, "image/png", contentType)
}

func TestFetch_defaultContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// suppress the sniffing-based default
		w.Header()["Content-Type"] = nil
		_, _ = w.Write([]byte{0x01})
	}))
	t.Cleanup(srv.Close)

	c := New(nil)
	_, contentType, err := c.Fetch(t.Context(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", contentType)
}

func TestFetch_notFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)

	c := New(nil)
	_, _, err := c.Fetch(t.Context(), srv.URL)
	assert.Error(t, err)
}

func TestFetch_retriesTransientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "try again", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	t.Cleanup(srv.Close)

	c := New(nil)
	data, _, err := c.Fetch(t.Context(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, []byte("ok"), data)
	assert.EqualValues(t, 2, calls.Load())
}
