// Package linkcheck extracts links from generated HTML and verifies
// that internal ones resolve to files in the output tree.
package linkcheck

import (
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	berrors "git.home.luguber.info/inful/blogbuilder/internal/errors"
)

// Link represents an extracted link from HTML content.
type Link struct {
	URL        string // The URL or path
	Text       string // Link text or alt text
	Tag        string // HTML tag (a, img, script, link)
	Attribute  string // Attribute containing the link (href, src)
	IsInternal bool   // True if the link targets this site
}

// ExtractLinks extracts all links from an HTML file.
func ExtractLinks(htmlPath string, baseURL string) ([]Link, error) {
	file, err := os.Open(filepath.Clean(htmlPath))
	if err != nil {
		return nil, berrors.Wrap(err, berrors.CategoryFileSystem, berrors.SeverityError, "failed to open HTML file").
			WithContext("path", htmlPath)
	}
	defer func() {
		_ = file.Close()
	}()

	return ExtractLinksFromReader(file, baseURL)
}

// ExtractLinksFromReader extracts all links from an HTML reader.
func ExtractLinksFromReader(r io.Reader, baseURL string) ([]Link, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, berrors.Wrap(err, berrors.CategoryValidation, berrors.SeverityError, "failed to parse HTML")
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, berrors.Wrap(err, berrors.CategoryValidation, berrors.SeverityError, "invalid base URL").
			WithContext("base_url", baseURL)
	}

	var links []Link
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.ElementNode {
			collectElementLinks(n, &links, base)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(doc)

	return links, nil
}

func collectElementLinks(n *html.Node, links *[]Link, base *url.URL) {
	switch n.Data {
	case "a":
		if href := getAttr(n, "href"); href != "" {
			*links = append(*links, Link{
				URL:        href,
				Text:       nodeText(n),
				Tag:        "a",
				Attribute:  "href",
				IsInternal: isInternal(href, base),
			})
		}
	case "img":
		if src := getAttr(n, "src"); src != "" {
			*links = append(*links, Link{
				URL:        src,
				Text:       getAttr(n, "alt"),
				Tag:        "img",
				Attribute:  "src",
				IsInternal: isInternal(src, base),
			})
		}
	case "link":
		if href := getAttr(n, "href"); href != "" {
			*links = append(*links, Link{
				URL:        href,
				Tag:        "link",
				Attribute:  "href",
				IsInternal: isInternal(href, base),
			})
		}
	case "script":
		if src := getAttr(n, "src"); src != "" {
			*links = append(*links, Link{
				URL:        src,
				Tag:        "script",
				Attribute:  "src",
				IsInternal: isInternal(src, base),
			})
		}
	}
}

func getAttr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			b.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}

// isInternal reports whether a link stays within the site: relative
// paths, fragment-only links, and absolute URLs on the base host.
func isInternal(link string, base *url.URL) bool {
	if strings.HasPrefix(link, "#") {
		return true
	}
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	if u.Scheme == "" && u.Host == "" {
		return true
	}
	return u.Host == base.Host
}
