package build

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/content"
	"git.home.luguber.info/inful/blogbuilder/internal/markdown"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	Language      string    `xml:"language,omitempty"`
	LastBuildDate string    `xml:"lastBuildDate,omitempty"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate,omitempty"`
	GUID        string `xml:"guid"`
}

// RSS encodes pages (already filtered and in listing order) as an RSS
// 2.0 feed.
func RSS(cfg *config.Config, pages []*content.Page, now time.Time) ([]byte, error) {
	items := make([]rssItem, 0, len(pages))
	for _, p := range pages {
		link := absURL(cfg.BaseURL, p.RelPermalink)
		summary := p.Summary
		if summary == "" {
			summary = markdown.Summarize(p.Body, cfg.Markup.SummaryLength)
		}
		item := rssItem{
			Title:       p.Title,
			Link:        link,
			Description: summary,
			GUID:        link,
		}
		if !p.Date.IsZero() {
			item.PubDate = p.Date.Format(time.RFC1123Z)
		}
		items = append(items, item)
	}

	description := cfg.Title
	if d, ok := cfg.Params["description"].(string); ok {
		description = d
	}

	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:         cfg.Title,
			Link:          cfg.BaseURL,
			Description:   description,
			Language:      cfg.LanguageCode,
			LastBuildDate: now.Format(time.RFC1123Z),
			Items:         items,
		},
	}

	return encodeXML(feed, cfg.Minify.XML)
}

func encodeXML(v any, minify bool) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	if !minify {
		enc.Indent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode xml: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func absURL(base, rel string) string {
	return strings.TrimSuffix(base, "/") + rel
}
