package build

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/content"
	berrors "git.home.luguber.info/inful/blogbuilder/internal/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/markdown"
	"git.home.luguber.info/inful/blogbuilder/internal/slug"
)

// SiteData is the site-wide template context.
type SiteData struct {
	Title        string
	BaseURL      string
	LanguageCode string
	Menu         []config.MenuEntry
	Params       map[string]any
}

// PageData is the per-page template context.
type PageData struct {
	Site         SiteData
	Title        string
	Date         time.Time
	Lastmod      time.Time
	Permalink    string
	Content      template.HTML
	Summary      string
	Tags         []TermRef
	HideSummary  bool
	ShowToc      bool
	TOC          []markdown.Heading
	Cover        *content.Cover
	ShareButtons []string
}

// ListData is the context for section, home and term listing pages.
type ListData struct {
	Site       SiteData
	Title      string
	Pages      []PageData
	Pagination *Pagination
}

// TermsData is the context for a taxonomy's term index page.
type TermsData struct {
	Site  SiteData
	Title string
	Terms []TermRef
}

// TermRef is one entry on a term index page.
type TermRef struct {
	Name  string
	URL   string
	Count int
}

// Pagination describes one page of a paginated listing.
type Pagination struct {
	CurrentPage int
	TotalPages  int
	PrevURL     string
	NextURL     string
}

// Renderer turns pages into HTML documents.
type Renderer struct {
	cfg       *config.Config
	templates *Templates
	site      SiteData
}

// NewRenderer builds a Renderer for one immutable config.
func NewRenderer(cfg *config.Config, templates *Templates) *Renderer {
	return &Renderer{
		cfg:       cfg,
		templates: templates,
		site: SiteData{
			Title:        cfg.Title,
			BaseURL:      cfg.BaseURL,
			LanguageCode: cfg.LanguageCode,
			Menu:         cfg.SortedMenu(),
			Params:       cfg.Params,
		},
	}
}

// pageData converts a content page for template consumption, rendering
// its Markdown body.
func (r *Renderer) pageData(p *content.Page) (PageData, error) {
	html, err := markdown.Render(p.Body, markdown.Options{Unsafe: r.cfg.Markup.Unsafe})
	if err != nil {
		return PageData{}, berrors.RenderError(p.Path, err)
	}

	summary := p.Summary
	if summary == "" {
		summary = markdown.Summarize(p.Body, r.cfg.Markup.SummaryLength)
	}

	showToc := r.cfg.Markup.TOC
	if p.ShowToc != nil {
		showToc = *p.ShowToc
	}
	var toc []markdown.Heading
	if showToc {
		toc = markdown.Headings(p.Body)
	}

	tags := make([]TermRef, 0, len(p.Tags))
	for _, t := range p.Tags {
		tags = append(tags, TermRef{Name: t, URL: TermURL("tags", t)})
	}

	return PageData{
		Site:         r.site,
		Title:        p.Title,
		Date:         p.Date,
		Lastmod:      p.Lastmod,
		Permalink:    p.RelPermalink,
		Content:      template.HTML(html),
		Summary:      summary,
		Tags:         tags,
		HideSummary:  p.HideSummary,
		ShowToc:      showToc,
		TOC:          toc,
		Cover:        p.Cover,
		ShareButtons: p.ShareButtons,
	}, nil
}

// RenderPage renders one page into a full HTML document, honoring its
// layout override.
func (r *Renderer) RenderPage(p *content.Page) ([]byte, error) {
	data, err := r.pageData(p)
	if err != nil {
		return nil, err
	}

	kind := "page"
	if p.Layout != "" {
		kind = p.Layout
	}

	var buf bytes.Buffer
	if err := r.templates.For(kind).Execute(&buf, data); err != nil {
		return nil, berrors.RenderError(p.Path, err)
	}
	return buf.Bytes(), nil
}

// RenderList renders one page of a listing (home, section or term).
func (r *Renderer) RenderList(title string, pages []*content.Page, pagination *Pagination) ([]byte, error) {
	refs := make([]PageData, 0, len(pages))
	for _, p := range pages {
		data, err := r.pageData(p)
		if err != nil {
			return nil, err
		}
		refs = append(refs, data)
	}

	var buf bytes.Buffer
	err := r.templates.For("list").Execute(&buf, ListData{
		Site:       r.site,
		Title:      title,
		Pages:      refs,
		Pagination: pagination,
	})
	if err != nil {
		return nil, berrors.RenderError(title, err)
	}
	return buf.Bytes(), nil
}

// RenderTerms renders a taxonomy's term index.
func (r *Renderer) RenderTerms(taxonomy string, idx *content.TaxonomyIndex) ([]byte, error) {
	terms := make([]TermRef, 0)
	for _, term := range idx.Terms() {
		terms = append(terms, TermRef{
			Name:  term,
			URL:   TermURL(taxonomy, term),
			Count: len(idx.PagesFor(term)),
		})
	}

	var buf bytes.Buffer
	err := r.templates.For("terms").Execute(&buf, TermsData{
		Site:  r.site,
		Title: r.titleize(taxonomy),
		Terms: terms,
	})
	if err != nil {
		return nil, berrors.RenderError(taxonomy, err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) titleize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// TermURL is the canonical site-relative URL of a taxonomy term page.
func TermURL(taxonomy, term string) string {
	return fmt.Sprintf("/%s/%s/", taxonomy, slug.Make(term))
}
