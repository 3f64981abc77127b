package scraper

import (
	"net/url"
	"strings"
)

// Normalize canonicalizes an absolute URL: fragments are stripped and the
// trailing slash removed, so fragment-only and slash-only variants of a page
// collapse to one visited-set key.
func Normalize(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	u.Fragment = ""
	return strings.TrimSuffix(u.String(), "/"), nil
}

// Domain returns the hostname of a URL, or "" when it cannot be parsed.
func Domain(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// SameDomain reports whether the URL's hostname exactly equals rootDomain.
// Subdomains (and www. vs bare domain) are a different scope on purpose;
// widening this is a config decision, not a traversal one.
func SameDomain(raw, rootDomain string) bool {
	return Domain(raw) == rootDomain && rootDomain != ""
}

// ResolveInternalLinks resolves raw hrefs against baseURL, keeps only links on
// rootDomain, and returns deduplicated canonical URLs. Anchor-only,
// javascript:, mailto: and tel: links are discarded.
func ResolveInternalLinks(rawLinks []string, baseURL, rootDomain string) []string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}

	var out []string
	seen := make(map[string]struct{})
	for _, link := range rawLinks {
		if link == "" ||
			strings.HasPrefix(link, "#") ||
			strings.HasPrefix(link, "javascript:") ||
			strings.HasPrefix(link, "mailto:") ||
			strings.HasPrefix(link, "tel:") {
			continue
		}

		ref, err := url.Parse(link)
		if err != nil {
			continue
		}
		full := base.ResolveReference(ref)
		if full.Hostname() != rootDomain {
			continue
		}

		canonical, err := Normalize(full.String())
		if err != nil {
			continue
		}
		if _, dup := seen[canonical]; dup {
			continue
		}
		seen[canonical] = struct{}{}
		out = append(out, canonical)
	}
	return out
}
