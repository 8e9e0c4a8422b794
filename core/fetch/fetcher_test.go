package fetch_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/recipepipe/core/fetch"
	"github.com/gaurav-prasanna/recipepipe/core/logger"
)

func fastFetcher(opts ...fetch.Option) *fetch.HTTPFetcher {
	base := []fetch.Option{
		fetch.WithRetryWait(time.Millisecond, 2*time.Millisecond),
		fetch.WithLogger(logger.NewNop()),
	}
	return fetch.New(append(base, opts...)...)
}

func TestFetchSendsBrowserHeaders(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, fetch.DefaultUserAgent, r.Header.Get("User-Agent"))
		assert.Contains(t, r.Header.Get("Accept"), "text/html")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><h1>Crème brûlée</h1></html>"))
	}))
	defer srv.Close()

	var observed int32
	f := fastFetcher(fetch.WithObserver(func(_ time.Duration, err error) {
		assert.NoError(t, err)
		atomic.AddInt32(&observed, 1)
	}))

	res, err := f.Fetch(context.Background(), srv.URL+"/recipe")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, srv.URL+"/recipe", res.URL)
	assert.Contains(t, res.HTML, "Crème brûlée")
	assert.Equal(t, int32(1), atomic.LoadInt32(&observed))
}

func TestFetchStatusErrors(t *testing.T) {
	t.Parallel()

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&hits, 1)
		http.NotFound(w, nil)
	}))
	defer srv.Close()

	_, err := fastFetcher().Fetch(context.Background(), srv.URL)
	require.ErrorIs(t, err, fetch.ErrUpstream)
	assert.Contains(t, err.Error(), "404")
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "4xx must not be retried")
}

func TestFetchRetriesServerErrors(t *testing.T) {
	t.Parallel()

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("<p>ok</p>"))
	}))
	defer srv.Close()

	res, err := fastFetcher(fetch.WithRetries(3)).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "<p>ok</p>", res.HTML)
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestFetchGivesUpAfterRetries(t *testing.T) {
	t.Parallel()

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := fastFetcher(fetch.WithRetries(1)).Fetch(context.Background(), srv.URL)
	require.ErrorIs(t, err, fetch.ErrUpstream)
	assert.Contains(t, err.Error(), "503")
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestFetchTransportError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := fastFetcher(fetch.WithRetries(0)).Fetch(context.Background(), url)
	require.ErrorIs(t, err, fetch.ErrUpstream)
}

func TestFetchBodyLimit(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(make([]byte, 64))
	}))
	defer srv.Close()

	_, err := fastFetcher(fetch.WithMaxBodyBytes(32)).Fetch(context.Background(), srv.URL)
	require.ErrorIs(t, err, fetch.ErrUpstream)
	assert.Contains(t, err.Error(), "exceeds 32 bytes")
}

func TestFetchTranscodesDeclaredCharset(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		_, _ = w.Write([]byte("<h1>Caf\xe9</h1>"))
	}))
	defer srv.Close()

	res, err := fastFetcher().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "<h1>Café</h1>", res.HTML)
}

func TestDecodeBody(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		body        []byte
		contentType string
		want        string
	}{
		{"utf8 passthrough", []byte("<p>½ cup</p>"), "text/html", "<p>½ cup</p>"},
		{"meta charset", []byte(`<meta charset="windows-1252"><p>Caf` + "\xe9" + `</p>`), "", `<meta charset="windows-1252"><p>Café</p>`},
		{"header wins", []byte("Caf\xe9"), "text/html; charset=latin1", "Café"},
		{"empty", nil, "", ""},
	}

	for i := range tests {
		test := &tests[i]
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, test.want, fetch.DecodeBody(test.body, test.contentType))
		})
	}
}
