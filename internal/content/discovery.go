package content

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	berrors "git.home.luguber.info/inful/blogbuilder/internal/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
)

// markdownExtensions are the content file extensions Discovery picks up.
var markdownExtensions = map[string]struct{}{
	".md":       {},
	".markdown": {},
}

// Discovery enumerates content files under a content root.
type Discovery struct {
	contentDir string
}

// NewDiscovery creates a discovery instance rooted at contentDir.
func NewDiscovery(contentDir string) *Discovery {
	return &Discovery{contentDir: contentDir}
}

// Discover walks the content root and parses every Markdown file.
//
// A page with malformed front matter is skipped with a warning and
// reported in skipped; the walk continues. Only filesystem-level
// failures abort discovery. The returned page order is filesystem
// order and must not be relied upon; use Collection sorting.
func (d *Discovery) Discover() (pages []*Page, skipped []*berrors.BuildError, err error) {
	root := filepath.Clean(d.contentDir)
	if _, statErr := os.Stat(root); statErr != nil {
		return nil, nil, berrors.Wrap(statErr, berrors.CategoryFileSystem, berrors.SeverityFatal, "content directory not found").
			WithContext("path", root)
	}

	walkErr := filepath.WalkDir(root, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			// Hidden directories (themes, editors) are not content.
			if name := entry.Name(); name != "." && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ok := markdownExtensions[strings.ToLower(filepath.Ext(p))]; !ok {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		raw, err := os.ReadFile(p)
		if err != nil {
			return err
		}

		page, parseErr := parsePage(rel, raw)
		if parseErr != nil {
			fmErr := berrors.FrontMatterError(rel, parseErr)
			slog.Warn("Skipping page with malformed front matter",
				logfields.File(rel), logfields.Error(parseErr))
			skipped = append(skipped, fmErr)
			return nil
		}

		pages = append(pages, page)
		return nil
	})
	if walkErr != nil {
		return nil, skipped, berrors.Wrap(walkErr, berrors.CategoryFileSystem, berrors.SeverityFatal, "content walk failed")
	}

	slog.Debug("Content discovery complete",
		logfields.Count(len(pages)), slog.Int("skipped", len(skipped)))
	return pages, skipped, nil
}
