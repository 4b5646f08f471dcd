package build

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/content"
	berrors "git.home.luguber.info/inful/blogbuilder/internal/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/linkcheck"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/metrics"
)

// Canonical stage names.
const (
	StagePrepareOutput  = "prepare_output"
	StageDiscover       = "discover_content"
	StageGitInfo        = "git_info"
	StageFilter         = "filter"
	StageRenderPages    = "render_pages"
	StageRenderListings = "render_listings"
	StageFeeds          = "feeds"
	StageSitemap        = "sitemap"
	StageSearchIndex    = "search_index"
	StageVerifyLinks    = "verify_links"
)

// LastmodResolver resolves a content file's last modification time from
// an external source (version control). Implemented by gitinfo.
type LastmodResolver interface {
	Lastmod(relPath string) (time.Time, bool)
}

// Options tunes one build run.
type Options struct {
	// SourceDir is the site root holding config, content/ and layouts/.
	SourceDir string
	// OutputDir overrides the config's publishDir when non-empty.
	OutputDir string
	// Now injects the build's notion of current time (tests); defaults
	// to time.Now.
	Now func() time.Time
	// Recorder receives build metrics; defaults to NoopRecorder.
	Recorder metrics.Recorder
	// Lastmod optionally enriches pages with VCS timestamps. Wired when
	// enableGitInfo is set.
	Lastmod LastmodResolver
	// VerifyLinks appends a stage that checks internal links in the
	// emitted HTML. Broken links degrade the outcome to warning.
	VerifyLinks bool
}

// Builder runs the build pipeline for one immutable configuration.
type Builder struct {
	cfg  *config.Config
	opts Options
}

// NewBuilder constructs a Builder.
func NewBuilder(cfg *config.Config, opts Options) *Builder {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	return &Builder{cfg: cfg, opts: opts}
}

// buildState carries mutable state across stages.
type buildState struct {
	outputDir  string
	now        time.Time
	renderer   *Renderer
	discovered []*content.Page
	included   []*content.Page
	collection *content.Collection
	report     *Report
}

// stage is a discrete unit of work in the site build.
type stage struct {
	name string
	fn   func(ctx context.Context, bs *buildState) error
}

// Run executes the full pipeline and returns its report. A non-nil
// error is always fatal; per-page problems surface as report warnings.
func (b *Builder) Run(ctx context.Context) (*Report, error) {
	buildID := uuid.NewString()
	start := b.opts.Now()
	report := newReport(buildID, start)

	outputDir := b.opts.OutputDir
	if outputDir == "" {
		outputDir = filepath.Join(b.opts.SourceDir, b.cfg.PublishDir)
	}

	templates, err := LoadTemplates(filepath.Join(b.opts.SourceDir, "layouts"))
	if err != nil {
		report.Errors = append(report.Errors, err)
		report.finalize(b.opts.Now())
		return report, berrors.Wrap(err, berrors.CategoryRender, berrors.SeverityFatal, "failed to load templates")
	}

	bs := &buildState{
		outputDir: outputDir,
		now:       start,
		renderer:  NewRenderer(b.cfg, templates),
		report:    report,
	}

	slog.Info("Starting build", logfields.BuildID(buildID), logfields.Path(outputDir))

	stages := []stage{
		{StagePrepareOutput, b.stagePrepareOutput},
		{StageDiscover, b.stageDiscover},
		{StageGitInfo, b.stageGitInfo},
		{StageFilter, b.stageFilter},
		{StageRenderPages, b.stageRenderPages},
		{StageRenderListings, b.stageRenderListings},
		{StageFeeds, b.stageFeeds},
		{StageSitemap, b.stageSitemap},
		{StageSearchIndex, b.stageSearchIndex},
	}
	if b.opts.VerifyLinks {
		stages = append(stages, stage{StageVerifyLinks, b.stageVerifyLinks})
	}

	var fatal error
	for _, st := range stages {
		if err := ctx.Err(); err != nil {
			fatal = berrors.Wrap(err, berrors.CategoryInternal, berrors.SeverityFatal, "build canceled")
			report.Errors = append(report.Errors, fatal)
			break
		}

		stageStart := time.Now()
		err := st.fn(ctx, bs)
		elapsed := time.Since(stageStart)
		report.StageDurations[st.name] = elapsed
		b.opts.Recorder.ObserveStageDuration(st.name, elapsed)

		switch {
		case err == nil:
			b.opts.Recorder.IncStageResult(st.name, metrics.ResultSuccess)
		case berrors.IsFatal(err):
			b.opts.Recorder.IncStageResult(st.name, metrics.ResultFatal)
			report.Errors = append(report.Errors, err)
			fatal = err
		default:
			// Stage degraded but the build goes on.
			b.opts.Recorder.IncStageResult(st.name, metrics.ResultWarning)
			report.Warnings = append(report.Warnings, err)
			slog.Warn("Stage completed with warnings", logfields.Stage(st.name), logfields.Error(err))
		}
		slog.Debug("Stage complete", logfields.Stage(st.name),
			logfields.DurationMS(float64(elapsed.Milliseconds())))

		if fatal != nil {
			break
		}
	}

	report.finalize(b.opts.Now())
	b.opts.Recorder.ObserveBuildDuration(report.Duration())
	b.opts.Recorder.IncBuildOutcome(string(report.Outcome))
	b.opts.Recorder.AddPagesRendered(report.PagesRendered)
	for reason, n := range report.Skipped {
		b.opts.Recorder.AddPagesSkipped(string(reason), n)
	}
	b.opts.Recorder.AddPagesSkipped("frontmatter", report.FrontMatterSkips)

	slog.Info("Build finished",
		logfields.BuildID(buildID),
		slog.String("outcome", string(report.Outcome)),
		slog.Int("pages", report.PagesRendered),
		slog.Int("skipped", report.TotalSkipped()),
		logfields.DurationMS(float64(report.Duration().Milliseconds())))

	return report, fatal
}

func (b *Builder) stagePrepareOutput(_ context.Context, bs *buildState) error {
	// The publish dir is fully regenerated each build.
	if err := os.RemoveAll(bs.outputDir); err != nil {
		return berrors.Wrap(err, berrors.CategoryFileSystem, berrors.SeverityFatal, "failed to clean output directory")
	}
	if err := os.MkdirAll(bs.outputDir, 0o755); err != nil {
		return berrors.Wrap(err, berrors.CategoryFileSystem, berrors.SeverityFatal, "failed to create output directory")
	}
	return nil
}

func (b *Builder) stageDiscover(_ context.Context, bs *buildState) error {
	discovery := content.NewDiscovery(filepath.Join(b.opts.SourceDir, b.cfg.ContentDir))
	pages, skipped, err := discovery.Discover()
	if err != nil {
		return err
	}
	bs.discovered = pages
	bs.report.PagesDiscovered = len(pages)
	bs.report.FrontMatterSkips = len(skipped)
	for _, s := range skipped {
		bs.report.Warnings = append(bs.report.Warnings, s)
	}
	return nil
}

func (b *Builder) stageGitInfo(_ context.Context, bs *buildState) error {
	if !b.cfg.EnableGitInfo || b.opts.Lastmod == nil {
		return nil
	}
	for _, p := range bs.discovered {
		if t, ok := b.opts.Lastmod.Lastmod(filepath.ToSlash(filepath.Join(b.cfg.ContentDir, p.Path))); ok {
			p.Lastmod = t
		}
	}
	return nil
}

func (b *Builder) stageFilter(_ context.Context, bs *buildState) error {
	included, skipped := Filter(bs.discovered, b.cfg, bs.now)
	bs.included = included
	bs.collection = content.NewCollection(included)
	bs.report.Skipped = skipped
	return nil
}

func (b *Builder) stageRenderPages(ctx context.Context, bs *buildState) error {
	var warnings []string
	for _, p := range bs.collection.Pages() {
		if err := ctx.Err(); err != nil {
			return berrors.Wrap(err, berrors.CategoryInternal, berrors.SeverityFatal, "build canceled")
		}
		html, err := bs.renderer.RenderPage(p)
		if err != nil {
			warnings = append(warnings, err.Error())
			slog.Warn("Failed to render page", logfields.Page(p.Path), logfields.Error(err))
			continue
		}
		if err := b.writeFile(bs, permalinkPath(p.RelPermalink), b.minifyHTML(html)); err != nil {
			// Already written artifacts stay in place.
			warnings = append(warnings, err.Error())
			continue
		}
		bs.report.PagesRendered++
	}
	if len(warnings) > 0 {
		return berrors.New(berrors.CategoryRender, berrors.SeverityWarning,
			fmt.Sprintf("%d page(s) failed: %s", len(warnings), strings.Join(warnings, "; ")))
	}
	return nil
}

func (b *Builder) stageRenderListings(_ context.Context, bs *buildState) error {
	// Home listing.
	if contains(b.cfg.OutputsFor("home"), config.FormatHTML) {
		if err := b.writePaginated(bs, "/", b.cfg.Title, bs.collection.Pages()); err != nil {
			return err
		}
	}

	// Section listings.
	if contains(b.cfg.OutputsFor("section"), config.FormatHTML) {
		for _, section := range bs.collection.Sections() {
			pages := bs.collection.InSection(section)
			title := bs.renderer.titleize(section)
			if err := b.writePaginated(bs, "/"+section+"/", title, pages); err != nil {
				return err
			}
		}
	}

	// Taxonomy term indexes and per-term listings.
	if contains(b.cfg.OutputsFor("taxonomy"), config.FormatHTML) {
		for plural, idx := range bs.collection.Taxonomies(b.cfg.TaxonomiesFor(b.cfg.LanguageCode)) {
			if len(idx.Terms()) == 0 {
				continue
			}
			html, err := bs.renderer.RenderTerms(plural, idx)
			if err != nil {
				return err
			}
			if err := b.writeFile(bs, filepath.Join(plural, "index.html"), b.minifyHTML(html)); err != nil {
				return err
			}
			bs.report.ListsRendered++
			for _, term := range idx.Terms() {
				base := TermURL(plural, term)
				if err := b.writePaginated(bs, base, term, idx.PagesFor(term)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// stageFeeds emits RSS documents. The home and section feeds are gated
// independently by their own outputs entries.
func (b *Builder) stageFeeds(_ context.Context, bs *buildState) error {
	if contains(b.cfg.OutputsFor("home"), config.FormatRSS) {
		feed, err := RSS(b.cfg, bs.collection.Pages(), bs.now)
		if err != nil {
			return berrors.Wrap(err, berrors.CategoryOutput, berrors.SeverityWarning, "failed to encode RSS feed")
		}
		if err := b.writeFile(bs, "index.xml", feed); err != nil {
			return err
		}
	}

	if contains(b.cfg.OutputsFor("section"), config.FormatRSS) {
		for _, section := range bs.collection.Sections() {
			feed, err := RSS(b.cfg, bs.collection.InSection(section), bs.now)
			if err != nil {
				return berrors.Wrap(err, berrors.CategoryOutput, berrors.SeverityWarning, "failed to encode section RSS feed")
			}
			if err := b.writeFile(bs, filepath.Join(section, "index.xml"), feed); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *Builder) stageSitemap(_ context.Context, bs *buildState) error {
	if !contains(b.cfg.OutputsFor("home"), config.FormatSitemap) {
		return nil
	}
	doc, err := Sitemap(b.cfg, bs.collection.Pages())
	if err != nil {
		return berrors.Wrap(err, berrors.CategoryOutput, berrors.SeverityWarning, "failed to encode sitemap")
	}
	return b.writeFile(bs, b.cfg.Sitemap.Filename, doc)
}

func (b *Builder) stageSearchIndex(_ context.Context, bs *buildState) error {
	if !contains(b.cfg.OutputsFor("home"), config.FormatJSON) {
		return nil
	}
	doc, err := SearchIndex(b.cfg, bs.collection.Pages())
	if err != nil {
		return berrors.Wrap(err, berrors.CategoryOutput, berrors.SeverityWarning, "failed to encode search index")
	}
	return b.writeFile(bs, "index.json", doc)
}

func (b *Builder) stageVerifyLinks(_ context.Context, bs *buildState) error {
	result, err := linkcheck.Verify(bs.outputDir, b.cfg.BaseURL)
	if err != nil {
		return err
	}
	bs.report.LinksChecked = result.LinksChecked
	if len(result.Issues) == 0 {
		return nil
	}
	for _, issue := range result.Issues {
		slog.Warn("Broken internal link",
			logfields.File(issue.SourceFile),
			logfields.URL(issue.Link.URL))
	}
	return berrors.New(berrors.CategoryOutput, berrors.SeverityWarning,
		fmt.Sprintf("%d broken internal links", len(result.Issues)))
}

// writePaginated writes a listing at basePath, splitting into
// /page/N/ subpages by the configured page size.
func (b *Builder) writePaginated(bs *buildState, basePath, title string, pages []*content.Page) error {
	size := b.cfg.Paginate
	total := (len(pages) + size - 1) / size
	if total == 0 {
		total = 1
	}

	for n := 1; n <= total; n++ {
		lo := (n - 1) * size
		hi := min(lo+size, len(pages))

		pagination := &Pagination{CurrentPage: n, TotalPages: total}
		if n > 1 {
			pagination.PrevURL = paginationURL(basePath, n-1)
		}
		if n < total {
			pagination.NextURL = paginationURL(basePath, n+1)
		}

		html, err := bs.renderer.RenderList(title, pages[lo:hi], pagination)
		if err != nil {
			return err
		}

		rel := permalinkPath(paginationURL(basePath, n))
		if err := b.writeFile(bs, rel, b.minifyHTML(html)); err != nil {
			return err
		}
		bs.report.ListsRendered++
	}
	return nil
}

// writeFile writes one artifact under the output dir, creating parents.
func (b *Builder) writeFile(bs *buildState, rel string, data []byte) error {
	full := filepath.Join(bs.outputDir, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return berrors.OutputError(rel, err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return berrors.OutputError(rel, err)
	}
	bs.report.Artifacts++
	return nil
}

// minifyHTML does a light whitespace pass when html minification is on.
// Lines inside <pre> blocks are preformatted and pass through verbatim.
func (b *Builder) minifyHTML(html []byte) []byte {
	if !b.cfg.Minify.HTML {
		return html
	}
	lines := strings.Split(string(html), "\n")
	out := make([]string, 0, len(lines))
	preDepth := 0
	for _, line := range lines {
		if preDepth > 0 {
			out = append(out, line)
		} else {
			trimmed := strings.TrimRight(line, " \t")
			if strings.TrimSpace(trimmed) == "" {
				continue
			}
			out = append(out, trimmed)
		}
		preDepth += strings.Count(line, "<pre") - strings.Count(line, "</pre")
		if preDepth < 0 {
			preDepth = 0
		}
	}
	return []byte(strings.Join(out, "\n") + "\n")
}

// permalinkPath maps a site-relative URL to its output file path.
func permalinkPath(rel string) string {
	return filepath.Join(filepath.FromSlash(strings.TrimPrefix(rel, "/")), "index.html")
}

func paginationURL(basePath string, n int) string {
	if n == 1 {
		return basePath
	}
	return fmt.Sprintf("%spage/%d/", basePath, n)
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
