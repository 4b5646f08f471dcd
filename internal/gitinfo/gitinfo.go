// Package gitinfo resolves content file modification times from the
// site's git history, backing the enableGitInfo setting.
package gitinfo

import (
	"log/slog"
	"path"
	"path/filepath"
	"time"

	git "github.com/go-git/go-git/v5"

	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
)

// Resolver looks up the last commit time of files in one repository.
// Lookups are cached for the resolver's lifetime (one build).
type Resolver struct {
	repo   *git.Repository
	prefix string // site dir relative to the repository root, "" when equal
	cache  map[string]time.Time
}

// Open locates the repository containing siteDir. A missing repository
// is not an error; it returns (nil, nil) and the caller falls back to
// front-matter dates.
func Open(siteDir string) (*Resolver, error) {
	abs, err := filepath.Abs(siteDir)
	if err != nil {
		return nil, err
	}

	repo, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{DetectDotGit: true})
	if err == git.ErrRepositoryNotExists {
		slog.Warn("enableGitInfo set but no git repository found", logfields.Path(abs))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	prefix := ""
	if wt, wtErr := repo.Worktree(); wtErr == nil {
		if rel, relErr := filepath.Rel(wt.Filesystem.Root(), abs); relErr == nil && rel != "." {
			prefix = filepath.ToSlash(rel)
		}
	}

	return &Resolver{repo: repo, prefix: prefix, cache: map[string]time.Time{}}, nil
}

// Lastmod returns the committer time of the newest commit touching the
// file. relPath is relative to the site dir with forward slashes.
func (r *Resolver) Lastmod(relPath string) (time.Time, bool) {
	if r == nil || r.repo == nil {
		return time.Time{}, false
	}

	repoPath := relPath
	if r.prefix != "" {
		repoPath = path.Join(r.prefix, relPath)
	}

	if t, ok := r.cache[repoPath]; ok {
		return t, !t.IsZero()
	}

	iter, err := r.repo.Log(&git.LogOptions{
		FileName: &repoPath,
		Order:    git.LogOrderCommitterTime,
	})
	if err != nil {
		r.cache[repoPath] = time.Time{}
		return time.Time{}, false
	}
	defer iter.Close()

	commit, err := iter.Next()
	if err != nil {
		// File has never been committed (new or untracked).
		r.cache[repoPath] = time.Time{}
		return time.Time{}, false
	}

	t := commit.Committer.When
	r.cache[repoPath] = t
	return t, true
}
