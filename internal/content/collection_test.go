package content

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func pageAt(path string, date time.Time, tags ...string) *Page {
	return &Page{Path: path, Section: sectionOf(path), Date: date, Tags: tags}
}

func TestNewCollection_OrdersByDateDescThenPathAsc(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	older := pageAt("posts/a-older.md", base.AddDate(0, -1, 0))
	newest := pageAt("posts/z-newest.md", base.AddDate(0, 1, 0))
	tieB := pageAt("posts/b-tie.md", base)
	tieA := pageAt("posts/a-tie.md", base)

	// Two discovery orders must yield the same listing order.
	first := NewCollection([]*Page{older, tieB, newest, tieA}).Pages()
	second := NewCollection([]*Page{tieA, newest, older, tieB}).Pages()

	want := []string{"posts/z-newest.md", "posts/a-tie.md", "posts/b-tie.md", "posts/a-older.md"}
	for i, p := range first {
		require.Equal(t, want[i], p.Path)
		require.Equal(t, want[i], second[i].Path)
	}
}

func TestSectionsAndInSection(t *testing.T) {
	c := NewCollection([]*Page{
		pageAt("about.md", time.Time{}),
		pageAt("posts/one.md", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)),
		pageAt("posts/two.md", time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)),
		pageAt("notes/idea.md", time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)),
	})

	require.Equal(t, []string{"notes", "posts"}, c.Sections())

	posts := c.InSection("posts")
	require.Len(t, posts, 2)
	require.Equal(t, "posts/two.md", posts[0].Path)
	require.Equal(t, "posts/one.md", posts[1].Path)
}

func TestTaxonomies_GroupsPagesByTerm(t *testing.T) {
	d1 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	c := NewCollection([]*Page{
		pageAt("posts/one.md", d1, "go", "blog"),
		pageAt("posts/two.md", d2, "go"),
		pageAt("posts/three.md", d2.AddDate(0, 0, 1)),
	})

	idx := c.Taxonomies(map[string]string{"tag": "tags"})
	tags := idx["tags"]
	require.NotNil(t, tags)
	require.Equal(t, []string{"blog", "go"}, tags.Terms())

	goPages := tags.PagesFor("go")
	require.Len(t, goPages, 2)
	// Term listings keep global listing order.
	require.Equal(t, "posts/two.md", goPages[0].Path)
	require.Equal(t, "posts/one.md", goPages[1].Path)
}

func TestTaxonomies_DuplicateTermOnOnePageListsOnce(t *testing.T) {
	c := NewCollection([]*Page{
		pageAt("posts/dup.md", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), "go", "go"),
	})

	tags := c.Taxonomies(map[string]string{"tag": "tags"})["tags"]
	require.Len(t, tags.PagesFor("go"), 1)
}
