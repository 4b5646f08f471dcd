package content

import (
	"sort"
)

// Collection is an ordered set of pages for one build.
type Collection struct {
	pages []*Page
}

// NewCollection sorts pages into listing order: publish date descending,
// ties broken by path ascending. The order is a strict function of the
// pages and independent of discovery order.
func NewCollection(pages []*Page) *Collection {
	sorted := make([]*Page, len(pages))
	copy(sorted, pages)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.After(sorted[j].Date)
		}
		return sorted[i].Path < sorted[j].Path
	})
	return &Collection{pages: sorted}
}

// Pages returns all pages in listing order.
func (c *Collection) Pages() []*Page {
	return c.pages
}

// Len returns the number of pages.
func (c *Collection) Len() int {
	return len(c.pages)
}

// Sections returns the distinct non-empty sections in ascending order.
func (c *Collection) Sections() []string {
	seen := map[string]struct{}{}
	var sections []string
	for _, p := range c.pages {
		if p.Section == "" {
			continue
		}
		if _, ok := seen[p.Section]; !ok {
			seen[p.Section] = struct{}{}
			sections = append(sections, p.Section)
		}
	}
	sort.Strings(sections)
	return sections
}

// InSection returns the pages of one section in listing order.
func (c *Collection) InSection(section string) []*Page {
	var out []*Page
	for _, p := range c.pages {
		if p.Section == section {
			out = append(out, p)
		}
	}
	return out
}

// TaxonomyIndex maps term -> pages carrying it, for one taxonomy.
type TaxonomyIndex struct {
	// Plural is the front-matter key ("tags").
	Plural string
	// Singular is the configured taxonomy name ("tag").
	Singular string
	terms    map[string][]*Page
}

// Terms returns the distinct term values in ascending order.
func (ti *TaxonomyIndex) Terms() []string {
	terms := make([]string, 0, len(ti.terms))
	for t := range ti.terms {
		terms = append(terms, t)
	}
	sort.Strings(terms)
	return terms
}

// PagesFor returns the pages carrying a term, in listing order.
func (ti *TaxonomyIndex) PagesFor(term string) []*Page {
	return ti.terms[term]
}

// Taxonomies groups pages by each configured taxonomy. taxonomies maps
// singular name to plural front-matter key. Pages sharing a term only
// interact through the resulting listing; grouping never affects
// inclusion.
func (c *Collection) Taxonomies(taxonomies map[string]string) map[string]*TaxonomyIndex {
	out := make(map[string]*TaxonomyIndex, len(taxonomies))
	for singular, plural := range taxonomies {
		idx := &TaxonomyIndex{Plural: plural, Singular: singular, terms: map[string][]*Page{}}
		for _, p := range c.pages {
			seen := map[string]struct{}{}
			for _, term := range p.Terms(plural) {
				// A duplicate tag on one page lists the page once.
				if _, dup := seen[term]; dup {
					continue
				}
				seen[term] = struct{}{}
				idx.terms[term] = append(idx.terms[term], p)
			}
		}
		out[plural] = idx
	}
	return out
}
