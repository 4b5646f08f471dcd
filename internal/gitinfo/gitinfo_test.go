package gitinfo

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

func commitFile(t *testing.T, repo *git.Repository, dir, rel, body string, when time.Time) {
	t.Helper()
	full := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(body), 0o644))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add(rel)
	require.NoError(t, err)
	_, err = wt.Commit("update "+rel, &git.CommitOptions{
		Author:    &object.Signature{Name: "test", Email: "test@example.com", When: when},
		Committer: &object.Signature{Name: "test", Email: "test@example.com", When: when},
	})
	require.NoError(t, err)
}

func TestOpen_NoRepositoryIsNotAnError(t *testing.T) {
	r, err := Open(t.TempDir())
	require.NoError(t, err)
	require.Nil(t, r)

	// A nil resolver is safe to query.
	_, ok := r.Lastmod("content/about.md")
	require.False(t, ok)
}

func TestLastmod_ReturnsNewestCommitTime(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	first := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)
	second := time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC)
	commitFile(t, repo, dir, "content/posts/hello.md", "v1", first)
	commitFile(t, repo, dir, "content/posts/hello.md", "v2", second)
	commitFile(t, repo, dir, "content/posts/other.md", "v1", second.AddDate(0, 1, 0))

	r, err := Open(dir)
	require.NoError(t, err)
	require.NotNil(t, r)

	got, ok := r.Lastmod("content/posts/hello.md")
	require.True(t, ok)
	require.True(t, got.Equal(second), "got %v", got)

	// Cached second lookup agrees.
	again, ok := r.Lastmod("content/posts/hello.md")
	require.True(t, ok)
	require.True(t, again.Equal(second))
}

func TestLastmod_UncommittedFileNotFound(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	commitFile(t, repo, dir, "content/posts/hello.md", "v1", time.Now())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "untracked.md"), []byte("x"), 0o644))

	r, err := Open(dir)
	require.NoError(t, err)

	_, ok := r.Lastmod("untracked.md")
	require.False(t, ok)
}
