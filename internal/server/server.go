package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/blogbuilder/internal/build"
	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/metrics"
)

// Options configures the development server.
type Options struct {
	ConfigPath string
	SiteDir    string
	OutputDir  string
	Port       int
	Logger     *slog.Logger
	Registry   *prometheus.Registry
	Recorder   metrics.Recorder
	Lastmod    build.LastmodResolver

	// AfterBuild runs once per completed build, successful or not.
	AfterBuild func(ctx context.Context, report *build.Report)
}

// Server rebuilds the site on content changes and serves the output
// directory during development.
type Server struct {
	opts   Options
	logger *slog.Logger
	hub    *LiveReloadHub

	// buildMu serializes rebuilds: the watcher loop and the scheduler
	// both trigger them, and concurrent builds would race on the
	// output directory (each build starts by clearing it).
	buildMu sync.Mutex

	mu  sync.Mutex
	cfg *config.Config
}

// New prepares a server; Run starts it.
func New(cfg *config.Config, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	return &Server{
		opts:   opts,
		logger: opts.Logger,
		hub:    NewLiveReloadHub(),
		cfg:    cfg,
	}
}

// Run builds once, then serves and watches until the context is canceled.
func (s *Server) Run(ctx context.Context) error {
	if report, err := s.rebuild(ctx); err != nil {
		return err
	} else if report.Outcome == build.OutcomeFailed {
		return errors.New(errors.CategoryServer, errors.SeverityFatal, "initial build failed")
	}

	cfg := s.config()
	contentDir := filepath.Join(s.opts.SiteDir, cfg.ContentDir)

	watcher, err := NewWatcher(contentDir, s.opts.ConfigPath, s.logger)
	if err != nil {
		return err
	}
	defer watcher.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go watcher.Run(ctx)
	go s.changeLoop(ctx, watcher)

	scheduler, err := s.startScheduler(ctx, cfg)
	if err != nil {
		return err
	}
	if scheduler != nil {
		defer func() { _ = scheduler.Shutdown() }()
	}

	port := s.opts.Port
	if port == 0 {
		port = cfg.Server.Port
	}
	addr := net.JoinHostPort("", fmt.Sprintf("%d", port))

	mux := http.NewServeMux()
	mux.Handle("/livereload", s.hub)
	if s.opts.Registry != nil {
		mux.Handle("/metrics", metrics.HTTPHandler(s.opts.Registry))
	}
	mux.Handle("/", http.FileServer(http.Dir(s.opts.OutputDir)))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		s.logger.Info("serving site", logfields.Port(port), logfields.Path(s.opts.OutputDir))
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.hub.Close()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, errors.CategoryServer, errors.SeverityError, "shutdown http server")
		}
		return nil
	case err := <-serveErr:
		return errors.Wrap(err, errors.CategoryServer, errors.SeverityError, "serve site")
	}
}

func (s *Server) changeLoop(ctx context.Context, watcher *Watcher) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-watcher.Changes():
			report, err := s.rebuild(ctx)
			if err != nil {
				s.logger.Error("rebuild failed", logfields.Error(err))
				continue
			}
			s.hub.Broadcast(report.BuildID)
		}
	}
}

func (s *Server) startScheduler(ctx context.Context, cfg *config.Config) (gocron.Scheduler, error) {
	interval := time.Duration(cfg.Server.RebuildInterval)
	if interval <= 0 {
		return nil, nil
	}
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryServer, errors.SeverityError, "create rebuild scheduler")
	}
	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			report, err := s.rebuild(ctx)
			if err != nil {
				s.logger.Error("scheduled rebuild failed", logfields.Error(err))
				return
			}
			s.hub.Broadcast(report.BuildID)
		}),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return nil, errors.Wrap(err, errors.CategoryServer, errors.SeverityError, "schedule periodic rebuild")
	}
	scheduler.Start()
	s.logger.Info("periodic rebuilds enabled", slog.Duration("interval", interval))
	return scheduler, nil
}

// rebuild reloads the config (it may have changed on disk) and runs a
// full build into the output directory. At most one build runs at a
// time; a scheduled rebuild waits for a watcher-triggered one.
func (s *Server) rebuild(ctx context.Context) (*build.Report, error) {
	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	cfg := s.config()
	if s.opts.ConfigPath != "" {
		reloaded, err := config.Load(s.opts.ConfigPath)
		if err != nil {
			s.logger.Warn("config reload failed, keeping previous config", logfields.Error(err))
		} else {
			cfg = reloaded
			s.setConfig(reloaded)
		}
	}

	builder := build.NewBuilder(cfg, build.Options{
		SourceDir: s.opts.SiteDir,
		OutputDir: s.opts.OutputDir,
		Recorder:  s.opts.Recorder,
		Lastmod:   s.opts.Lastmod,
	})
	report, err := builder.Run(ctx)
	if report != nil && s.opts.AfterBuild != nil {
		s.opts.AfterBuild(ctx, report)
	}
	if err != nil {
		return report, err
	}
	s.logger.Info("site rebuilt",
		logfields.BuildID(report.BuildID),
		logfields.DurationMS(float64(report.Duration().Milliseconds())),
		logfields.Count(report.PagesRendered),
	)
	return report, nil
}

func (s *Server) config() *config.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

func (s *Server) setConfig(cfg *config.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
}
