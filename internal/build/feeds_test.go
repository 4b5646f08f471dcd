package build

import (
	"encoding/json"
	"encoding/xml"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/blogbuilder/internal/content"
)

func feedPages() []*content.Page {
	return []*content.Page{
		{
			Path:         "posts/second.md",
			Title:        "Second Post",
			RelPermalink: "/posts/second/",
			Date:         time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
			Lastmod:      time.Date(2026, 5, 2, 9, 0, 0, 0, time.UTC),
			Summary:      "An explicit summary.",
			Body:         []byte("Second body.\n"),
		},
		{
			Path:         "posts/first.md",
			Title:        "First Post",
			RelPermalink: "/posts/first/",
			Date:         time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC),
			Body:         []byte("First body with some words in it.\n"),
		},
	}
}

func TestRSS_EncodesChannelAndItems(t *testing.T) {
	cfg := parseConfig(t, "")
	out, err := RSS(cfg, feedPages(), buildTime)
	require.NoError(t, err)

	var feed rssXML
	require.NoError(t, xml.Unmarshal(out, &feed))
	require.Equal(t, "2.0", feed.Version)
	require.Equal(t, "Example Blog", feed.Channel.Title)
	require.Equal(t, "https://blog.example.com", feed.Channel.Link)
	require.Len(t, feed.Channel.Items, 2)

	first := feed.Channel.Items[0]
	require.Equal(t, "Second Post", first.Title)
	require.Equal(t, "https://blog.example.com/posts/second/", first.Link)
	require.Equal(t, first.Link, first.GUID)
	require.Equal(t, "An explicit summary.", first.Description)
	require.Equal(t, "Fri, 01 May 2026 09:00:00 +0000", first.PubDate)

	// Pages without explicit summary fall back to the generated one.
	require.Contains(t, feed.Channel.Items[1].Description, "First body")
}

func TestSitemap_IncludesHomeAndPages(t *testing.T) {
	cfg := parseConfig(t, "sitemap:\n  changefreq: daily\n  priority: 0.8\n")
	out, err := Sitemap(cfg, feedPages())
	require.NoError(t, err)

	var urlset sitemapURLSet
	require.NoError(t, xml.Unmarshal(out, &urlset))
	require.Len(t, urlset.URLs, 3)
	require.Equal(t, "https://blog.example.com/", urlset.URLs[0].Loc)
	require.Equal(t, "daily", urlset.URLs[0].ChangeFreq)
	require.Equal(t, "0.8", urlset.URLs[0].Priority)

	// Lastmod prefers the page's lastmod over its date.
	require.Equal(t, "2026-05-02T09:00:00Z", urlset.URLs[1].LastMod)
}

func TestSearchIndex_RecordsSearchableFields(t *testing.T) {
	cfg := parseConfig(t, "")
	out, err := SearchIndex(cfg, feedPages())
	require.NoError(t, err)

	var records []SearchRecord
	require.NoError(t, json.Unmarshal(out, &records))
	require.Len(t, records, 2)
	require.Equal(t, "Second Post", records[0].Title)
	require.Equal(t, "https://blog.example.com/posts/second/", records[0].Permalink)
	require.Equal(t, "An explicit summary.", records[0].Summary)
	require.Equal(t, "Second body.", records[0].Content)
}

func TestSearchIndex_MinifyProducesCompactJSON(t *testing.T) {
	cfg := parseConfig(t, "minify:\n  json: true\n")
	out, err := SearchIndex(cfg, feedPages())
	require.NoError(t, err)
	require.NotContains(t, string(out), "\n  ")
}
