package content

import (
	"fmt"
	"path"
	"strings"
	"time"

	"git.home.luguber.info/inful/blogbuilder/internal/frontmatter"
	"git.home.luguber.info/inful/blogbuilder/internal/slug"
)

// Date layouts accepted in front matter, tried in order.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parsePage builds a Page from a content file's bytes. relPath uses
// forward slashes and is relative to the content root.
func parsePage(relPath string, raw []byte) (*Page, error) {
	doc, err := frontmatter.Split(raw)
	if err != nil {
		return nil, err
	}
	fields, err := doc.Fields()
	if err != nil {
		return nil, err
	}

	p := &Page{
		Path:    relPath,
		Section: sectionOf(relPath),
		Body:    doc.Body,
		Params:  map[string]any{},
	}

	for key, value := range fields {
		if err := p.assign(key, value); err != nil {
			return nil, err
		}
	}

	if p.Slug == "" {
		p.Slug = defaultSlug(relPath)
	}
	if p.Title == "" {
		p.Title = titleFromName(relPath)
	}
	if p.Lastmod.IsZero() {
		p.Lastmod = p.Date
	}
	p.RelPermalink = permalink(p.Section, p.Slug)

	return p, nil
}

func (p *Page) assign(key string, value any) error {
	switch key {
	case "title":
		p.Title = fmt.Sprint(value)
	case "slug":
		p.Slug = slug.Make(fmt.Sprint(value))
	case "date":
		t, err := parseDate(value)
		if err != nil {
			return fmt.Errorf("date: %w", err)
		}
		p.Date = t
	case "lastmod":
		t, err := parseDate(value)
		if err != nil {
			return fmt.Errorf("lastmod: %w", err)
		}
		p.Lastmod = t
	case "expiryDate":
		t, err := parseDate(value)
		if err != nil {
			return fmt.Errorf("expiryDate: %w", err)
		}
		p.ExpiryDate = &t
	case "draft":
		b, ok := value.(bool)
		if !ok {
			return fmt.Errorf("draft: expected boolean, got %T", value)
		}
		p.Draft = b
	case "tags":
		p.Tags = toStringSlice(value)
	case "categories":
		p.Categories = toStringSlice(value)
	case "series":
		p.Series = toStringSlice(value)
	case "layout":
		p.Layout = fmt.Sprint(value)
	case "summary", "description":
		p.Summary = fmt.Sprint(value)
	case "showToc":
		if b, ok := value.(bool); ok {
			p.ShowToc = &b
		}
	case "hideSummary":
		if b, ok := value.(bool); ok {
			p.HideSummary = b
		}
	case "shareButtons":
		p.ShareButtons = toStringSlice(value)
	case "weight":
		if n, ok := value.(int); ok {
			p.Weight = n
		}
	case "cover":
		c, err := parseCover(value)
		if err != nil {
			return err
		}
		p.Cover = c
	default:
		p.Params[key] = value
	}
	return nil
}

func parseDate(value any) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case string:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognized date %q", v)
	default:
		return time.Time{}, fmt.Errorf("expected date string, got %T", value)
	}
}

func parseCover(value any) (*Cover, error) {
	m, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("cover: expected mapping, got %T", value)
	}
	c := &Cover{}
	if img, ok := m["image"]; ok {
		c.Image = fmt.Sprint(img)
	}
	if alt, ok := m["alt"]; ok {
		c.Alt = fmt.Sprint(alt)
	}
	return c, nil
}

func toStringSlice(value any) []string {
	switch v := value.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprint(item))
		}
		return out
	case string:
		return []string{v}
	default:
		return nil
	}
}

// sectionOf returns the first path segment of a relative content path,
// or "" for files at the content root.
func sectionOf(relPath string) string {
	dir := path.Dir(relPath)
	if dir == "." {
		return ""
	}
	if i := strings.IndexByte(dir, '/'); i >= 0 {
		return dir[:i]
	}
	return dir
}

// defaultSlug derives a slug from the file name. index.md files take
// their parent directory's name (leaf bundles).
func defaultSlug(relPath string) string {
	base := strings.TrimSuffix(path.Base(relPath), path.Ext(relPath))
	if base == "index" {
		parent := path.Base(path.Dir(relPath))
		if parent != "." && parent != "/" {
			base = parent
		}
	}
	return slug.Make(base)
}

// titleFromName converts a kebab or snake file name to Title Case:
// getting-started -> Getting Started.
func titleFromName(relPath string) string {
	base := strings.TrimSuffix(path.Base(relPath), path.Ext(relPath))
	if base == "index" {
		parent := path.Base(path.Dir(relPath))
		if parent != "." && parent != "/" {
			base = parent
		}
	}
	base = strings.ReplaceAll(base, "_", "-")
	parts := strings.Split(base, "-")
	for i, part := range parts {
		if part == "" {
			continue
		}
		parts[i] = strings.ToUpper(part[:1]) + strings.ToLower(part[1:])
	}
	return strings.Join(parts, " ")
}

func permalink(section, pageSlug string) string {
	if section == "" {
		return "/" + pageSlug + "/"
	}
	return "/" + section + "/" + pageSlug + "/"
}
