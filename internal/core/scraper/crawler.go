package scraper

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// CrawledPage is one page's extracted content handed to the sink for
// persistence. RawHTML is carried for optional snapshot archival.
type CrawledPage struct {
	WebsiteID string
	URL       string
	Title     string
	Content   string
	RawHTML   string
}

// PageSink persists a crawled page (page row, chunk rows, optional snapshot).
// A sink error does not abort the crawl; the page just isn't counted.
type PageSink interface {
	StorePage(ctx context.Context, page *CrawledPage) error
}

// Config bounds a crawl. Zero values get the defaults used in production.
type Config struct {
	MaxDepth      int           // links deeper than this are not followed (default 3)
	MaxPages      int           // stop after this many stored pages (default 25)
	Delay         time.Duration // politeness pause between fetches (default 1s)
	MinContentLen int           // pages with less extracted text are skipped (default 100)
}

func (c Config) withDefaults() Config {
	if c.MaxDepth <= 0 {
		c.MaxDepth = 3
	}
	if c.MaxPages <= 0 {
		c.MaxPages = 25
	}
	if c.Delay <= 0 {
		c.Delay = time.Second
	}
	if c.MinContentLen <= 0 {
		c.MinContentLen = 100
	}
	return c
}

// Result summarizes one crawl. Success is false only when not a single page
// produced storable content, which is distinct from "completed with few pages".
type Result struct {
	PagesStored int
	Success     bool
}

// Crawler walks a website breadth-first within depth and page caps, strictly
// one fetch in flight at a time to stay polite to the target server.
type Crawler struct {
	fetcher *Fetcher
	sink    PageSink
	cfg     Config
	log     *zap.Logger
}

func NewCrawler(fetcher *Fetcher, sink PageSink, cfg Config, log *zap.Logger) *Crawler {
	return &Crawler{fetcher: fetcher, sink: sink, cfg: cfg.withDefaults(), log: log}
}

type queueItem struct {
	url   string
	depth int
}

// Crawl runs a BFS from rootURL over same-domain links. Per-page fetch,
// extract and store failures are logged and skipped; only a wholly empty crawl
// is a failure. FIFO ordering guarantees shallower pages are fully explored
// before deeper ones, so the depth cap bounds exploration.
func (c *Crawler) Crawl(ctx context.Context, websiteID, rootURL string) (*Result, error) {
	root, err := Normalize(rootURL)
	if err != nil {
		return nil, err
	}
	rootDomain := Domain(root)

	visited := make(map[string]struct{})
	queue := []queueItem{{url: root, depth: 0}}
	stored := 0

	for len(queue) > 0 && stored < c.cfg.MaxPages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		item := queue[0]
		queue = queue[1:]

		if _, ok := visited[item.url]; ok || item.depth > c.cfg.MaxDepth {
			continue
		}
		visited[item.url] = struct{}{}

		c.log.Debug("crawling page", zap.String("url", item.url), zap.Int("depth", item.depth))

		html, err := c.fetcher.Fetch(ctx, item.url)
		if err != nil {
			c.log.Warn("page fetch failed, skipping", zap.String("url", item.url), zap.Error(err))
			continue
		}

		page, err := Extract(html)
		if err != nil {
			c.log.Warn("page extract failed, skipping", zap.String("url", item.url), zap.Error(err))
			continue
		}

		if len(page.Content) >= c.cfg.MinContentLen {
			cp := &CrawledPage{
				WebsiteID: websiteID,
				URL:       item.url,
				Title:     page.Title,
				Content:   page.Content,
				RawHTML:   html,
			}
			if err := c.sink.StorePage(ctx, cp); err != nil {
				c.log.Warn("page store failed, skipping", zap.String("url", item.url), zap.Error(err))
			} else {
				stored++
			}
		}

		// Discovery continues even when this page stored nothing. Absolute
		// same-domain links land in the external partition, so both sets go
		// through the scoper.
		raw := append(append([]string{}, page.InternalLinks...), page.ExternalLinks...)
		for _, link := range ResolveInternalLinks(raw, item.url, rootDomain) {
			if _, ok := visited[link]; !ok {
				queue = append(queue, queueItem{url: link, depth: item.depth + 1})
			}
		}

		if len(queue) > 0 && stored < c.cfg.MaxPages {
			select {
			case <-time.After(c.cfg.Delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	c.log.Info("crawl finished",
		zap.String("website_id", websiteID),
		zap.Int("pages_stored", stored),
		zap.Int("urls_visited", len(visited)))

	return &Result{PagesStored: stored, Success: stored > 0}, nil
}
