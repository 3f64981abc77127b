package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"https://a.com/":           "https://a.com",
		"https://a.com/x/":         "https://a.com/x",
		"https://a.com/x#section":  "https://a.com/x",
		"https://a.com/x?q=1#frag": "https://a.com/x?q=1",
		"https://a.com":            "https://a.com",
	}
	for in, want := range cases {
		got, err := Normalize(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, "input %q", in)
	}
}

func TestSameDomainExactHostnameMatch(t *testing.T) {
	assert.True(t, SameDomain("https://a.com/x", "a.com"))
	assert.False(t, SameDomain("https://sub.a.com/x", "a.com"))
	assert.False(t, SameDomain("https://www.a.com/x", "a.com"))
	assert.False(t, SameDomain("https://b.com/x", "a.com"))
	assert.False(t, SameDomain("https://a.com/x", ""))
}

func TestResolveInternalLinks(t *testing.T) {
	links := []string{
		"/about",
		"contact",
		"https://a.com/pricing/",
		"https://other.com/elsewhere",
		"#top",
		"javascript:void(0)",
		"mailto:hi@a.com",
		"tel:+123456",
		"/about", // duplicate after normalization
	}

	got := ResolveInternalLinks(links, "https://a.com/start", "a.com")
	assert.Equal(t, []string{
		"https://a.com/about",
		"https://a.com/contact",
		"https://a.com/pricing",
	}, got)
}

func TestResolveInternalLinksRelativeToPagePath(t *testing.T) {
	got := ResolveInternalLinks([]string{"deep"}, "https://a.com/docs/start", "a.com")
	assert.Equal(t, []string{"https://a.com/docs/deep"}, got)
}
