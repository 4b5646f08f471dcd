// Package content discovers content files and parses their front matter
// into immutable Page values.
package content

import (
	"fmt"
	"time"
)

// Page is one content unit. It is never mutated after parsing; a new
// build re-reads everything from disk.
type Page struct {
	// Path is the file path relative to the content root, with forward
	// slashes. It is the page's identity and the listing tiebreaker.
	Path string
	// Section is the first path segment ("" for root pages like about.md).
	Section string
	// Slug is derived from the file name unless overridden in front matter.
	Slug string
	// RelPermalink is the site-relative URL ("/posts/hello-world/").
	RelPermalink string

	Title      string
	Date       time.Time
	Lastmod    time.Time
	ExpiryDate *time.Time
	Draft      bool

	// Taxonomy values keep declaration order; duplicates are not removed.
	Tags       []string
	Categories []string
	Series     []string

	Layout       string
	Summary      string
	ShowToc      *bool
	HideSummary  bool
	ShareButtons []string
	Cover        *Cover
	Weight       int

	// Params holds the front-matter keys not mapped to a typed field,
	// passed through to templates untouched.
	Params map[string]any

	// Body is the Markdown source after the front matter block.
	Body []byte
}

// Cover references a cover image.
type Cover struct {
	Image string `yaml:"image"`
	Alt   string `yaml:"alt,omitempty"`
}

// String implements fmt.Stringer for log output.
func (p *Page) String() string {
	return fmt.Sprintf("%s (%s)", p.Path, p.Date.Format("2006-01-02"))
}

// Terms returns the page's values for a taxonomy front-matter key
// (e.g. "tags"). Unknown keys yield nil.
func (p *Page) Terms(pluralKey string) []string {
	switch pluralKey {
	case "tags":
		return p.Tags
	case "categories":
		return p.Categories
	case "series":
		return p.Series
	default:
		// Taxonomies not in the typed set live in Params as untyped
		// string lists.
		if v, ok := p.Params[pluralKey]; ok {
			return toStringSlice(v)
		}
		return nil
	}
}
