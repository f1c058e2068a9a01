package pipeline

import (
	"context"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces bursts of filesystem events into one re-run.
const watchDebounce = 500 * time.Millisecond

// RunWatch runs one generation pass, then re-runs whenever the manifest or a
// source file changes, until the context is cancelled. Per-run errors other
// than the first are logged rather than fatal so an edit that breaks the
// manifest can be fixed without restarting.
func (p *Pipeline) RunWatch(ctx context.Context, opts Options) error {
	if err := p.Run(ctx, opts); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(p.manifestPath(opts)); err != nil {
		p.logger.Warn("cannot watch manifest", "error", err)
	}
	p.addSourceDirs(watcher)

	var timer *time.Timer
	fire := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			p.logger.Warn("watch error", "error", err)

		case <-fire:
			p.logger.Info("change detected, regenerating")
			if err := p.Run(ctx, opts); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				p.logger.Error("regeneration failed", "error", err)
			}
			// New source directories may have appeared.
			p.addSourceDirs(watcher)
		}
	}
}

// addSourceDirs registers the sources tree with the watcher. Re-adding an
// existing path is harmless.
func (p *Pipeline) addSourceDirs(watcher *fsnotify.Watcher) {
	root := p.home.SourcesPath()
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if addErr := watcher.Add(path); addErr != nil {
				p.logger.Warn("cannot watch directory", "path", path, "error", addErr)
			}
		}
		return nil
	})
}
