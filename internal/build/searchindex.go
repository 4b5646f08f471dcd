package build

import (
	"encoding/json"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/content"
	"git.home.luguber.info/inful/blogbuilder/internal/markdown"
)

// SearchRecord is one entry in the client-side search index.
type SearchRecord struct {
	Title     string `json:"title"`
	Permalink string `json:"permalink"`
	Summary   string `json:"summary"`
	Content   string `json:"content"`
}

// SearchIndex encodes the included pages as a JSON document for
// client-side search. Content is the plain text of the body so the
// index stays markup-free.
func SearchIndex(cfg *config.Config, pages []*content.Page) ([]byte, error) {
	records := make([]SearchRecord, 0, len(pages))
	for _, p := range pages {
		summary := p.Summary
		if summary == "" {
			summary = markdown.Summarize(p.Body, cfg.Markup.SummaryLength)
		}
		records = append(records, SearchRecord{
			Title:     p.Title,
			Permalink: absURL(cfg.BaseURL, p.RelPermalink),
			Summary:   summary,
			Content:   markdown.PlainText(p.Body),
		})
	}

	if cfg.Minify.JSON {
		return json.Marshal(records)
	}
	return json.MarshalIndent(records, "", "  ")
}
