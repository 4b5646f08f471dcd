package linkcheck

import (
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	berrors "git.home.luguber.info/inful/blogbuilder/internal/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
)

// Issue is one broken internal link.
type Issue struct {
	SourceFile string // HTML file containing the link, relative to the output dir
	Link       Link
}

// Result summarizes a verification run.
type Result struct {
	FilesChecked  int
	LinksChecked  int
	ExternalLinks int // counted, never fetched
	Issues        []Issue
}

// Verify walks every HTML file under outputDir and checks that internal
// links resolve to a file in the output tree. External links are only
// counted.
func Verify(outputDir, baseURL string) (*Result, error) {
	res := &Result{}

	walkErr := filepath.WalkDir(outputDir, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".html") {
			return nil
		}

		rel, err := filepath.Rel(outputDir, p)
		if err != nil {
			return err
		}

		links, err := ExtractLinks(p, baseURL)
		if err != nil {
			return err
		}

		res.FilesChecked++
		for _, link := range links {
			res.LinksChecked++
			if !link.IsInternal {
				res.ExternalLinks++
				continue
			}
			if !resolves(outputDir, baseURL, link.URL) {
				res.Issues = append(res.Issues, Issue{SourceFile: filepath.ToSlash(rel), Link: link})
			}
		}
		return nil
	})
	if walkErr != nil {
		return nil, berrors.Wrap(walkErr, berrors.CategoryFileSystem, berrors.SeverityError, "link verification walk failed")
	}

	slog.Info("Link verification complete",
		slog.Int("files", res.FilesChecked),
		slog.Int("links", res.LinksChecked),
		slog.Int("external", res.ExternalLinks),
		logfields.Count(len(res.Issues)))
	return res, nil
}

// resolves maps an internal link to output files and checks existence.
func resolves(outputDir, baseURL, link string) bool {
	if strings.HasPrefix(link, "#") {
		return true
	}

	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	p := u.Path

	// Absolute URLs on the site host resolve by path.
	if base, err := url.Parse(baseURL); err == nil && u.Host == base.Host && u.Host != "" {
		p = u.Path
	}
	if p == "" {
		return true // fragment or query-only link
	}

	p = strings.TrimPrefix(p, "/")
	candidates := []string{
		filepath.Join(outputDir, filepath.FromSlash(p)),
		filepath.Join(outputDir, filepath.FromSlash(p), "index.html"),
	}
	for _, c := range candidates {
		if st, err := os.Stat(c); err == nil && !st.IsDir() {
			return true
		}
	}
	return false
}
