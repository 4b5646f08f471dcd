package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/blogbuilder/internal/build"
	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/gitinfo"
	"git.home.luguber.info/inful/blogbuilder/internal/history"
	"git.home.luguber.info/inful/blogbuilder/internal/linkcheck"
	"git.home.luguber.info/inful/blogbuilder/internal/metrics"
	"git.home.luguber.info/inful/blogbuilder/internal/server"
	"git.home.luguber.info/inful/blogbuilder/internal/version"
)

var CLI struct {
	Config    string           `short:"c" help:"Configuration file path" default:"config.yaml"`
	Verbose   bool             `short:"v" help:"Enable verbose logging"`
	Version   kong.VersionFlag `help:"Print version and exit"`
	HistoryDB string           `help:"Build history database path, relative to the site root" default:".blogbuilder/history.db"`

	Build struct {
		Output string `short:"o" help:"Output directory for the generated site (defaults to publishDir)"`
		Verify bool   `help:"Check internal links after building"`
	} `cmd:"" help:"Build the site from content and configuration"`

	Serve struct {
		Port int `short:"p" help:"HTTP port (defaults to server.port from the configuration)"`
	} `cmd:"" help:"Build, serve and rebuild the site on changes"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`

	Verify struct {
		Output string `short:"o" help:"Directory holding the built site (defaults to publishDir)"`
	} `cmd:"" help:"Check internal links in an already built site"`

	History struct {
		Limit int `short:"n" help:"Number of builds to show" default:"10"`
	} `cmd:"" help:"Show recent build history"`
}

func main() {
	ctx := kong.Parse(&CLI, kong.Vars{"version": version.String()})

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	var err error
	switch ctx.Command() {
	case "build":
		err = runBuild()
	case "serve":
		err = runServe()
	case "init":
		err = runInit()
	case "verify":
		err = runVerify()
	case "history":
		err = runHistory()
	}
	if err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

// siteDir is the directory holding the configuration file; content and
// layouts are resolved relative to it.
func siteDir() string {
	return filepath.Dir(CLI.Config)
}

func historyPath() string {
	if filepath.IsAbs(CLI.HistoryDB) {
		return CLI.HistoryDB
	}
	return filepath.Join(siteDir(), CLI.HistoryDB)
}

func runBuild() error {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return err
	}

	outputDir := CLI.Build.Output
	if outputDir == "" {
		outputDir = filepath.Join(siteDir(), cfg.PublishDir)
	}

	slog.Info("Starting site build",
		"config", CLI.Config,
		"output", outputDir,
		"drafts", cfg.BuildDrafts)

	opts := build.Options{
		SourceDir:   siteDir(),
		OutputDir:   outputDir,
		VerifyLinks: CLI.Build.Verify,
	}
	if cfg.EnableGitInfo {
		resolver, err := gitinfo.Open(siteDir())
		if err != nil {
			return err
		}
		if resolver == nil {
			slog.Warn("enableGitInfo set but no git repository found", "dir", siteDir())
		} else {
			opts.Lastmod = resolver
		}
	}

	builder := build.NewBuilder(cfg, opts)
	report, err := builder.Run(context.Background())
	if report != nil {
		appendHistory(report)
	}
	if err != nil {
		return err
	}

	slog.Info("Site built",
		"build_id", report.BuildID,
		"pages", report.PagesRendered,
		"skipped", report.TotalSkipped(),
		"artifacts", report.Artifacts,
		"outcome", string(report.Outcome))
	return nil
}

func runServe() error {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return err
	}

	outputDir := filepath.Join(siteDir(), cfg.PublishDir)

	registry := prometheus.NewRegistry()
	recorder := metrics.NewPrometheusRecorder(registry)

	opts := server.Options{
		ConfigPath: CLI.Config,
		SiteDir:    siteDir(),
		OutputDir:  outputDir,
		Port:       CLI.Serve.Port,
		Registry:   registry,
		Recorder:   recorder,
		AfterBuild: func(_ context.Context, report *build.Report) {
			appendHistory(report)
		},
	}
	if cfg.EnableGitInfo {
		resolver, err := gitinfo.Open(siteDir())
		if err != nil {
			return err
		}
		if resolver != nil {
			opts.Lastmod = resolver
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return server.New(cfg, opts).Run(ctx)
}

func runInit() error {
	slog.Info("Initializing configuration", "path", CLI.Config, "force", CLI.Init.Force)
	return config.Init(CLI.Config, CLI.Init.Force)
}

func runVerify() error {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return err
	}
	outputDir := CLI.Verify.Output
	if outputDir == "" {
		outputDir = filepath.Join(siteDir(), cfg.PublishDir)
	}
	return verifyLinks(outputDir, cfg.BaseURL)
}

func verifyLinks(outputDir, baseURL string) error {
	result, err := linkcheck.Verify(outputDir, baseURL)
	if err != nil {
		return err
	}
	slog.Info("Link check complete",
		"files", result.FilesChecked,
		"links", result.LinksChecked,
		"external", result.ExternalLinks,
		"broken", len(result.Issues))
	for _, issue := range result.Issues {
		slog.Warn("Broken internal link",
			"file", issue.SourceFile,
			"url", issue.Link.URL,
			"tag", issue.Link.Tag)
	}
	if len(result.Issues) > 0 {
		return fmt.Errorf("%d broken internal links", len(result.Issues))
	}
	return nil
}

func runHistory() error {
	store, err := history.Open(historyPath())
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.Recent(context.Background(), CLI.History.Limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("no builds recorded")
		return nil
	}
	for _, rec := range records {
		fmt.Printf("%s  %-8s  %4d pages  %3d skipped  %5dms  %s\n",
			rec.Start.Format("2006-01-02 15:04:05"),
			rec.Outcome,
			rec.PagesRendered,
			rec.PagesSkipped,
			rec.DurationMS,
			rec.BuildID)
	}
	return nil
}

// appendHistory records the build in the local history database. A
// failure here never fails the build itself.
func appendHistory(report *build.Report) {
	path := historyPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		slog.Warn("Failed to create history directory", "error", err)
		return
	}
	store, err := history.Open(path)
	if err != nil {
		slog.Warn("Failed to open build history", "error", err)
		return
	}
	defer store.Close()
	if err := store.Append(context.Background(), report); err != nil {
		slog.Warn("Failed to record build history", "error", err)
	}
}
