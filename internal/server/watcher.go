package server

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/blogbuilder/internal/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
)

const debounceInterval = 250 * time.Millisecond

// Watcher observes the content tree and the config file and reports
// change batches after a debounce window.
type Watcher struct {
	fsw     *fsnotify.Watcher
	logger  *slog.Logger
	changes chan struct{}
}

// NewWatcher sets up recursive watches on contentDir and a watch on
// the directory holding configPath.
func NewWatcher(contentDir, configPath string, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryServer, errors.SeverityError, "create filesystem watcher")
	}

	w := &Watcher{
		fsw:     fsw,
		logger:  logger,
		changes: make(chan struct{}, 1),
	}

	if err := w.addRecursive(contentDir); err != nil {
		fsw.Close()
		return nil, err
	}
	if configPath != "" {
		dir := filepath.Dir(configPath)
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, errors.Wrap(err, errors.CategoryServer, errors.SeverityError, "watch config directory").
				WithContext("dir", dir)
		}
	}
	return w, nil
}

func (w *Watcher) addRecursive(root string) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && path != root {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
	if err != nil {
		return errors.Wrap(err, errors.CategoryServer, errors.SeverityError, "watch content tree").
			WithContext("root", root)
	}
	return nil
}

// Changes delivers one signal per debounced change batch.
func (w *Watcher) Changes() <-chan struct{} { return w.changes }

// Run pumps fsnotify events into debounced change signals until the
// context is canceled.
func (w *Watcher) Run(ctx context.Context) {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !relevant(event) {
				continue
			}
			// New directories need their own watch for nested edits.
			if event.Op.Has(fsnotify.Create) {
				if fi, err := os.Stat(event.Name); err == nil && fi.IsDir() {
					_ = w.fsw.Add(event.Name)
				}
			}
			w.logger.Debug("filesystem change", logfields.Path(event.Name), slog.String("op", event.Op.String()))
			if timer == nil {
				timer = time.NewTimer(debounceInterval)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(debounceInterval)
			}
		case <-timerC:
			timer = nil
			timerC = nil
			select {
			case w.changes <- struct{}{}:
			default:
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", logfields.Error(err))
		}
	}
}

// Close releases the underlying fsnotify watcher.
func (w *Watcher) Close() error { return w.fsw.Close() }

func relevant(event fsnotify.Event) bool {
	if event.Op.Has(fsnotify.Chmod) {
		return false
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") {
		return false
	}
	return true
}
