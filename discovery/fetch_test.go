package discovery

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestHTTPFetcher_FetchHTML verifies the User-Agent header and parsing
func TestHTTPFetcher_FetchHTML(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<html><body><h1>Bonjour</h1></body></html>`))
	}))
	defer server.Close()

	f := NewHTTPFetcher(0, "")
	doc, err := f.FetchHTML(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, DefaultUserAgent, gotUA)
	assert.Equal(t, "Bonjour", doc.Find("h1").Text())
}

// TestHTTPFetcher_DecodesCharset verifies non-UTF-8 pages are decoded
func TestHTTPFetcher_DecodesCharset(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		// "Café" in Latin-1
		w.Write([]byte("<html><body><h1>Caf\xe9</h1></body></html>"))
	}))
	defer server.Close()

	doc, err := NewHTTPFetcher(time.Second, "test-agent").FetchHTML(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "Café", doc.Find("h1").Text())
}

// TestHTTPFetcher_StatusError verifies non-200 responses are ErrHTTPStatus
func TestHTTPFetcher_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	_, err := NewHTTPFetcher(0, "").FetchHTML(context.Background(), server.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrHTTPStatus)
	assert.Contains(t, err.Error(), "404")
}

// TestHTTPFetcher_Canceled verifies a canceled context aborts the request
func TestHTTPFetcher_Canceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html></html>"))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewHTTPFetcher(0, "").FetchHTML(ctx, server.URL)
	assert.ErrorIs(t, err, context.Canceled)
}

// TestHTTPFetcher_FetchFeed verifies RSS parsing
func TestHTTPFetcher_FetchFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(sampleFeed))
	}))
	defer server.Close()

	feed, err := NewHTTPFetcher(0, "").FetchFeed(context.Background(), server.URL)
	require.NoError(t, err)
	require.Len(t, feed.Items, 2)
	assert.Equal(t, "Premier billet", feed.Items[0].Title)
}
