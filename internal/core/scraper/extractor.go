package scraper

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// minContentLen is the threshold below which a selector's text is considered
// boilerplate noise and the extractor moves to the next fallback.
const minContentLen = 100

// removeSelector matches nodes that never carry article content.
const removeSelector = `script, style, noscript, iframe, img, svg, canvas, nav, footer, header, [role="banner"], [role="navigation"]`

// contentSelectors is the ordered list of common content containers. The
// longest text wins rather than the first match: sites vary in which selector
// actually holds the article body.
var contentSelectors = []string{
	"main",
	"article",
	"#content",
	".content",
	".post",
	".article",
	`[role="main"]`,
	".main-content",
	".post-content",
	".entry-content",
}

var whitespaceRE = regexp.MustCompile(`\s+`)

// ExtractedPage is the result of boilerplate-stripping one HTML document.
type ExtractedPage struct {
	Title   string
	Content string
	// Links found on anchor tags, partitioned by whether the href is an
	// absolute external reference (http(s)://) or relative/internal.
	InternalLinks []string
	ExternalLinks []string
}

// Extract strips boilerplate from raw HTML and returns the title, a
// best-effort main-content string and the page's hyperlinks. It degrades
// through fallbacks rather than failing closed: arbitrary third-party markup
// rarely follows one consistent content convention.
func Extract(html string) (*ExtractedPage, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	doc.Find(removeSelector).Remove()

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}

	// Longest text among the known content containers.
	var mainContent string
	for _, sel := range contentSelectors {
		text := strings.TrimSpace(doc.Find(sel).Text())
		if len(text) > len(mainContent) {
			mainContent = text
		}
	}

	// Fall back to structural elements, each its own paragraph.
	if len(mainContent) < minContentLen {
		var sb strings.Builder
		doc.Find("p, h1, h2, h3, h4, h5, h6, li, td, th, blockquote").Each(func(_ int, s *goquery.Selection) {
			if text := strings.TrimSpace(s.Text()); text != "" {
				sb.WriteString(text)
				sb.WriteString("\n\n")
			}
		})
		if sb.Len() >= len(mainContent) {
			mainContent = strings.TrimSpace(sb.String())
		}
	}

	// Last resort: all visible body text, whitespace-collapsed.
	if len(mainContent) < minContentLen {
		body := whitespaceRE.ReplaceAllString(doc.Find("body").Text(), " ")
		mainContent = strings.TrimSpace(body)
	}

	page := &ExtractedPage{Title: title, Content: mainContent}

	internal := make(map[string]struct{})
	external := make(map[string]struct{})
	doc.Find("a").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || href == "" {
			return
		}
		switch {
		case strings.HasPrefix(href, "http://"), strings.HasPrefix(href, "https://"):
			if _, seen := external[href]; !seen {
				external[href] = struct{}{}
				page.ExternalLinks = append(page.ExternalLinks, href)
			}
		case strings.HasPrefix(href, "#"),
			strings.HasPrefix(href, "javascript:"),
			strings.HasPrefix(href, "mailto:"),
			strings.HasPrefix(href, "tel:"):
			// Not navigable page links; dropped entirely.
		default:
			if _, seen := internal[href]; !seen {
				internal[href] = struct{}{}
				page.InternalLinks = append(page.InternalLinks, href)
			}
		}
	})

	return page, nil
}
