package build

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
)

// buildTime is the injected "now" for deterministic filtering.
var buildTime = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func writeSite(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, body := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(body), 0o644))
	}
	return root
}

func runBuild(t *testing.T, cfg *config.Config, root string) (*Report, string) {
	t.Helper()
	out := filepath.Join(root, "public")
	builder := NewBuilder(cfg, Options{
		SourceDir: root,
		OutputDir: out,
		Now:       func() time.Time { return buildTime },
	})
	report, err := builder.Run(context.Background())
	require.NoError(t, err)
	return report, out
}

func parseConfig(t *testing.T, extra string) *config.Config {
	t.Helper()
	cfg, err := config.Parse([]byte("baseURL: https://blog.example.com\ntitle: Example Blog\n" + extra))
	require.NoError(t, err)
	return cfg
}

const postPublished = `---
title: Published Post
date: 2026-05-01T09:00:00Z
tags: [go]
---
Published body with **bold** text.
`

const postDraft = `---
title: Secret Draft
date: 2026-05-02T09:00:00Z
draft: true
tags: [go]
---
Draft body.
`

const postFuture = `---
title: From The Future
date: 2027-06-01T09:00:00Z
tags: [go]
---
Future body.
`

func TestBuild_WritesExpectedArtifacts(t *testing.T) {
	root := writeSite(t, map[string]string{
		"content/posts/published.md": postPublished,
		"content/about.md":           "---\ntitle: About\n---\nAbout me.\n",
	})
	cfg := parseConfig(t, "")

	report, out := runBuild(t, cfg, root)
	require.Equal(t, OutcomeSuccess, report.Outcome)
	require.Equal(t, 2, report.PagesRendered)

	for _, rel := range []string{
		"index.html",
		"index.xml",
		"index.json",
		"sitemap.xml",
		"posts/index.html",
		"posts/index.xml",
		"posts/published/index.html",
		"about/index.html",
		"tags/index.html",
		"tags/go/index.html",
	} {
		_, err := os.Stat(filepath.Join(out, filepath.FromSlash(rel)))
		require.NoError(t, err, "expected artifact %s", rel)
	}

	page, err := os.ReadFile(filepath.Join(out, "posts/published/index.html"))
	require.NoError(t, err)
	require.Contains(t, string(page), "<strong>bold</strong>")
	require.Contains(t, string(page), "Published Post")
}

func TestBuild_DraftExcludedFromEveryArtifact(t *testing.T) {
	root := writeSite(t, map[string]string{
		"content/posts/published.md": postPublished,
		"content/posts/draft.md":     postDraft,
	})
	cfg := parseConfig(t, "buildDrafts: false\n")

	report, out := runBuild(t, cfg, root)
	require.Equal(t, 1, report.Skipped[SkipDraft])

	_, err := os.Stat(filepath.Join(out, "posts/draft/index.html"))
	require.True(t, os.IsNotExist(err), "draft page must not be written")

	for _, rel := range []string{"index.html", "index.xml", "index.json", "sitemap.xml"} {
		data, err := os.ReadFile(filepath.Join(out, rel))
		require.NoError(t, err)
		require.NotContains(t, string(data), "Secret Draft", "draft leaked into %s", rel)
	}
}

func TestBuild_BuildDraftsIncludesDrafts(t *testing.T) {
	root := writeSite(t, map[string]string{
		"content/posts/draft.md": postDraft,
	})
	cfg := parseConfig(t, "buildDrafts: true\n")

	report, out := runBuild(t, cfg, root)
	require.Zero(t, report.Skipped[SkipDraft])
	_, err := os.Stat(filepath.Join(out, "posts/draft/index.html"))
	require.NoError(t, err)
}

func TestBuild_FutureDatedPostRespectsBuildFuture(t *testing.T) {
	files := map[string]string{"content/posts/future.md": postFuture}

	root := writeSite(t, files)
	report, out := runBuild(t, parseConfig(t, "buildFuture: false\n"), root)
	require.Equal(t, 1, report.Skipped[SkipFuture])
	_, err := os.Stat(filepath.Join(out, "posts/future/index.html"))
	require.True(t, os.IsNotExist(err))

	root = writeSite(t, files)
	report, out = runBuild(t, parseConfig(t, "buildFuture: true\n"), root)
	require.Zero(t, report.Skipped[SkipFuture])
	_, err = os.Stat(filepath.Join(out, "posts/future/index.html"))
	require.NoError(t, err)
}

func TestBuild_ExpiredPostRespectsBuildExpired(t *testing.T) {
	expired := `---
title: Old News
date: 2020-01-01T00:00:00Z
expiryDate: 2021-01-01T00:00:00Z
---
Old body.
`
	root := writeSite(t, map[string]string{"content/posts/old.md": expired})
	report, _ := runBuild(t, parseConfig(t, ""), root)
	require.Equal(t, 1, report.Skipped[SkipExpired])

	root = writeSite(t, map[string]string{"content/posts/old.md": expired})
	report, _ = runBuild(t, parseConfig(t, "buildExpired: true\n"), root)
	require.Zero(t, report.Skipped[SkipExpired])
}

func TestBuild_MalformedFrontMatterSkipsUnitOnly(t *testing.T) {
	root := writeSite(t, map[string]string{
		"content/posts/published.md": postPublished,
		"content/posts/bad.md":       "---\ntitle: [unclosed\n---\nbody\n",
	})

	report, out := runBuild(t, parseConfig(t, ""), root)
	require.Equal(t, OutcomeWarning, report.Outcome)
	require.Equal(t, 1, report.FrontMatterSkips)
	require.Equal(t, 1, report.PagesRendered)

	_, err := os.Stat(filepath.Join(out, "posts/published/index.html"))
	require.NoError(t, err)
}

func TestBuild_ListingOrderIsDateDescPathAsc(t *testing.T) {
	root := writeSite(t, map[string]string{
		"content/posts/zzz-old.md": "---\ntitle: Oldest\ndate: 2026-01-01T00:00:00Z\n---\na\n",
		"content/posts/aaa-new.md": "---\ntitle: Newest\ndate: 2026-05-01T00:00:00Z\n---\nb\n",
		"content/posts/b-tie.md":   "---\ntitle: Tie B\ndate: 2026-03-01T00:00:00Z\n---\nc\n",
		"content/posts/a-tie.md":   "---\ntitle: Tie A\ndate: 2026-03-01T00:00:00Z\n---\nd\n",
	})

	_, out := runBuild(t, parseConfig(t, ""), root)

	var records []SearchRecord
	data, err := os.ReadFile(filepath.Join(out, "index.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &records))

	titles := make([]string, 0, len(records))
	for _, r := range records {
		titles = append(titles, r.Title)
	}
	require.Equal(t, []string{"Newest", "Tie A", "Tie B", "Oldest"}, titles)
}

func TestBuild_PaginationSplitsListings(t *testing.T) {
	files := map[string]string{}
	dates := []string{"2026-01-01", "2026-02-01", "2026-03-01", "2026-04-01", "2026-05-01"}
	for i, d := range dates {
		files["content/posts/p"+string(rune('a'+i))+".md"] =
			"---\ntitle: P" + d + "\ndate: " + d + "T00:00:00Z\n---\nbody\n"
	}
	root := writeSite(t, files)

	_, out := runBuild(t, parseConfig(t, "paginate: 2\n"), root)

	for _, rel := range []string{"index.html", "page/2/index.html", "page/3/index.html"} {
		_, err := os.Stat(filepath.Join(out, filepath.FromSlash(rel)))
		require.NoError(t, err, "expected pagination artifact %s", rel)
	}
	_, err := os.Stat(filepath.Join(out, "page/4/index.html"))
	require.True(t, os.IsNotExist(err))
}

func TestBuild_MenuRendersInWeightOrder(t *testing.T) {
	root := writeSite(t, map[string]string{
		"content/about.md": "---\ntitle: About\n---\nhi\n",
	})
	cfg := parseConfig(t, `menu:
  - {name: Weight30, url: /w30/, weight: 30}
  - {name: Weight10, url: /w10/, weight: 10}
  - {name: Weight20, url: /w20/, weight: 20}
`)

	_, out := runBuild(t, cfg, root)
	html, err := os.ReadFile(filepath.Join(out, "index.html"))
	require.NoError(t, err)

	s := string(html)
	i10 := strings.Index(s, "Weight10")
	i20 := strings.Index(s, "Weight20")
	i30 := strings.Index(s, "Weight30")
	require.GreaterOrEqual(t, i10, 0)
	require.Less(t, i10, i20)
	require.Less(t, i20, i30)
}

func TestBuild_OutputsMappingSuppressesFormats(t *testing.T) {
	root := writeSite(t, map[string]string{
		"content/posts/published.md": postPublished,
	})
	cfg := parseConfig(t, "outputs:\n  home: [html]\n  section: [html]\n")

	_, out := runBuild(t, cfg, root)

	_, err := os.Stat(filepath.Join(out, "index.xml"))
	require.True(t, os.IsNotExist(err), "rss suppressed")
	_, err = os.Stat(filepath.Join(out, "index.json"))
	require.True(t, os.IsNotExist(err), "search index suppressed")
	_, err = os.Stat(filepath.Join(out, "posts/index.xml"))
	require.True(t, os.IsNotExist(err), "section rss suppressed")
	_, err = os.Stat(filepath.Join(out, "sitemap.xml"))
	require.True(t, os.IsNotExist(err), "sitemap suppressed")
	_, err = os.Stat(filepath.Join(out, "index.html"))
	require.NoError(t, err)
}

func TestBuild_SectionRSSIndependentOfHomeRSS(t *testing.T) {
	root := writeSite(t, map[string]string{
		"content/posts/published.md": postPublished,
	})
	cfg := parseConfig(t, "outputs:\n  home: [html]\n  section: [html, rss]\n")

	_, out := runBuild(t, cfg, root)

	_, err := os.Stat(filepath.Join(out, "index.xml"))
	require.True(t, os.IsNotExist(err), "home rss suppressed")
	_, err = os.Stat(filepath.Join(out, "posts/index.xml"))
	require.NoError(t, err, "section rss must not depend on home rss")
}

func TestBuild_TaxonomyOutputsSuppressListings(t *testing.T) {
	root := writeSite(t, map[string]string{
		"content/posts/published.md": postPublished,
	})
	cfg := parseConfig(t, "outputs:\n  home: [html]\n  section: [html]\n  taxonomy: []\n")

	_, out := runBuild(t, cfg, root)

	_, err := os.Stat(filepath.Join(out, "tags"))
	require.True(t, os.IsNotExist(err), "taxonomy listings suppressed")
	_, err = os.Stat(filepath.Join(out, "posts/published/index.html"))
	require.NoError(t, err)
}

func TestBuild_MinifyPreservesPreformattedBlankLines(t *testing.T) {
	root := writeSite(t, map[string]string{
		"content/posts/code.md": "---\ntitle: Code Post\ndate: 2026-05-01T09:00:00Z\n---\n" +
			"Intro.\n\n```\nline one\n\nline two\n```\n",
	})
	cfg := parseConfig(t, "minify:\n  html: true\n")

	_, out := runBuild(t, cfg, root)

	page, err := os.ReadFile(filepath.Join(out, "posts/code/index.html"))
	require.NoError(t, err)
	html := string(page)
	require.Contains(t, html, "line one\n\nline two", "blank line inside <pre> must survive minification")

	// Outside <pre>, blank lines are still dropped.
	pre := strings.Index(html, "<pre")
	require.Greater(t, pre, 0)
	require.NotContains(t, html[:pre], "\n\n")
}

func TestBuild_CanceledContextAborts(t *testing.T) {
	root := writeSite(t, map[string]string{
		"content/posts/published.md": postPublished,
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	builder := NewBuilder(parseConfig(t, ""), Options{
		SourceDir: root,
		OutputDir: filepath.Join(root, "public"),
		Now:       func() time.Time { return buildTime },
	})
	report, err := builder.Run(ctx)
	require.Error(t, err)
	require.Equal(t, OutcomeFailed, report.Outcome)
}

func TestBuild_VerifyStageFlagsBrokenLinks(t *testing.T) {
	root := writeSite(t, map[string]string{
		"content/posts/good.md": postPublished,
		"content/posts/bad.md": `---
title: Bad Links
date: 2026-04-01T09:00:00Z
---
See [the missing page](/posts/missing/) and [home](/).
`,
	})
	cfg := parseConfig(t, "")

	builder := NewBuilder(cfg, Options{
		SourceDir:   root,
		OutputDir:   filepath.Join(root, "public"),
		Now:         func() time.Time { return buildTime },
		VerifyLinks: true,
	})
	report, err := builder.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, OutcomeWarning, report.Outcome)
	require.Greater(t, report.LinksChecked, 0)
	require.Contains(t, report.StageDurations, StageVerifyLinks)
}

func TestBuild_VerifyStageCleanSiteStaysSuccessful(t *testing.T) {
	root := writeSite(t, map[string]string{
		"content/posts/good.md": postPublished,
	})
	cfg := parseConfig(t, "")

	builder := NewBuilder(cfg, Options{
		SourceDir:   root,
		OutputDir:   filepath.Join(root, "public"),
		Now:         func() time.Time { return buildTime },
		VerifyLinks: true,
	})
	report, err := builder.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, OutcomeSuccess, report.Outcome)
}
