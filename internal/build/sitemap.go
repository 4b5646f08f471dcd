package build

import (
	"encoding/xml"
	"strconv"
	"time"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/content"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// Sitemap encodes the site's URL set: home plus every included page.
// Lastmod prefers the page's lastmod (possibly git-derived) over its
// publish date.
func Sitemap(cfg *config.Config, pages []*content.Page) ([]byte, error) {
	priority := strconv.FormatFloat(*cfg.Sitemap.Priority, 'f', -1, 64)

	urls := []sitemapURL{{
		Loc:        absURL(cfg.BaseURL, "/"),
		ChangeFreq: cfg.Sitemap.ChangeFreq,
		Priority:   priority,
	}}
	for _, p := range pages {
		u := sitemapURL{
			Loc:        absURL(cfg.BaseURL, p.RelPermalink),
			ChangeFreq: cfg.Sitemap.ChangeFreq,
			Priority:   priority,
		}
		if !p.Lastmod.IsZero() {
			u.LastMod = p.Lastmod.Format(time.RFC3339)
		}
		urls = append(urls, u)
	}

	return encodeXML(sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}, cfg.Minify.XML)
}
