package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const filler = "This page carries enough real text to clear the minimum content threshold used by the crawler."

type recordingSink struct {
	mu    sync.Mutex
	pages []*CrawledPage
	fail  bool
}

func (s *recordingSink) StorePage(_ context.Context, p *CrawledPage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("sink unavailable")
	}
	s.pages = append(s.pages, p)
	return nil
}

func (s *recordingSink) urls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.pages))
	for i, p := range s.pages {
		out[i] = p.URL
	}
	return out
}

// testSite serves a map of path -> extra links, recording every request.
type testSite struct {
	mu       sync.Mutex
	requests map[string]int
	links    map[string][]string
	srv      *httptest.Server
}

func newTestSite(links map[string][]string) *testSite {
	site := &testSite{requests: make(map[string]int), links: links}
	site.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		site.mu.Lock()
		site.requests[r.URL.Path]++
		site.mu.Unlock()

		hrefs, ok := links[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		var b strings.Builder
		b.WriteString("<html><head><title>Page " + r.URL.Path + "</title></head><body><article>")
		b.WriteString(filler)
		b.WriteString("</article>")
		for _, h := range hrefs {
			fmt.Fprintf(&b, `<a href=%q>link</a>`, h)
		}
		b.WriteString("</body></html>")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(b.String()))
	}))
	return site
}

func (s *testSite) requested(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[path] > 0
}

func fastConfig() Config {
	return Config{MaxDepth: 3, MaxPages: 25, Delay: time.Millisecond, MinContentLen: 10}
}

func TestCrawlBoundedByDepthOnCyclicGraph(t *testing.T) {
	site := newTestSite(map[string][]string{
		"/":   {"/d1", "/"},
		"/d1": {"/d2", "/"},
		"/d2": {"/d3", "/d1"},
		"/d3": {"/d4"},
		"/d4": {"/d5"},
		"/d5": {},
	})
	defer site.srv.Close()

	sink := &recordingSink{}
	cfg := fastConfig()
	cfg.MaxDepth = 2
	c := NewCrawler(NewFetcher(5*time.Second), sink, cfg, zap.NewNop())

	res, err := c.Crawl(context.Background(), "w1", site.srv.URL)
	require.NoError(t, err)
	assert.True(t, res.Success)

	// depth 0,1,2 reachable; /d3 is depth 3 and must never be fetched.
	assert.True(t, site.requested("/d2"))
	assert.False(t, site.requested("/d3"))
	assert.False(t, site.requested("/d4"))
	// The cycle back to "/" must not cause re-fetching forever.
	site.mu.Lock()
	assert.Equal(t, 1, site.requests["/"])
	site.mu.Unlock()
}

func TestCrawlBoundedByPageCap(t *testing.T) {
	links := map[string][]string{"/": {}}
	for i := 0; i < 10; i++ {
		p := fmt.Sprintf("/p%d", i)
		links["/"] = append(links["/"], p)
		links[p] = nil
	}
	site := newTestSite(links)
	defer site.srv.Close()

	sink := &recordingSink{}
	cfg := fastConfig()
	cfg.MaxPages = 3
	c := NewCrawler(NewFetcher(5*time.Second), sink, cfg, zap.NewNop())

	res, err := c.Crawl(context.Background(), "w1", site.srv.URL)
	require.NoError(t, err)
	assert.Equal(t, 3, res.PagesStored)
	assert.Len(t, sink.pages, 3)
}

func TestCrawlBFSVisitsShallowPagesFirst(t *testing.T) {
	site := newTestSite(map[string][]string{
		"/":     {"/a", "/b"},
		"/a":    {"/deep"},
		"/b":    {},
		"/deep": {},
	})
	defer site.srv.Close()

	sink := &recordingSink{}
	c := NewCrawler(NewFetcher(5*time.Second), sink, fastConfig(), zap.NewNop())

	_, err := c.Crawl(context.Background(), "w1", site.srv.URL)
	require.NoError(t, err)

	urls := sink.urls()
	require.Len(t, urls, 4)
	// Both depth-1 pages come before the depth-2 page.
	assert.True(t, strings.HasSuffix(urls[1], "/a"))
	assert.True(t, strings.HasSuffix(urls[2], "/b"))
	assert.True(t, strings.HasSuffix(urls[3], "/deep"))
}

func TestCrawlAllPagesFailingIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	sink := &recordingSink{}
	c := NewCrawler(NewFetcher(5*time.Second), sink, fastConfig(), zap.NewNop())

	res, err := c.Crawl(context.Background(), "w1", srv.URL)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Zero(t, res.PagesStored)
}

func TestCrawlSinkFailureDoesNotAbortTraversal(t *testing.T) {
	site := newTestSite(map[string][]string{
		"/":  {"/a"},
		"/a": {},
	})
	defer site.srv.Close()

	sink := &recordingSink{fail: true}
	c := NewCrawler(NewFetcher(5*time.Second), sink, fastConfig(), zap.NewNop())

	res, err := c.Crawl(context.Background(), "w1", site.srv.URL)
	require.NoError(t, err)
	assert.False(t, res.Success)
	// Traversal still reached the linked page despite storage failing.
	assert.True(t, site.requested("/a"))
}

func TestCrawlIgnoresExternalDomains(t *testing.T) {
	site := newTestSite(map[string][]string{
		"/":   {"https://example.org/outside", "/in"},
		"/in": {},
	})
	defer site.srv.Close()

	sink := &recordingSink{}
	c := NewCrawler(NewFetcher(5*time.Second), sink, fastConfig(), zap.NewNop())

	res, err := c.Crawl(context.Background(), "w1", site.srv.URL)
	require.NoError(t, err)
	assert.Equal(t, 2, res.PagesStored)
	for _, u := range sink.urls() {
		assert.NotContains(t, u, "example.org")
	}
}
