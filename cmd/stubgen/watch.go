package main

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/sghaida/stubgen/config"
)

// watch generates once and then again after every burst of changes to Go
// files under the analysis directory, until ctx is done. Failed runs are
// logged and do not stop the loop.
func (a *app) watch(ctx context.Context, cfg config.Config, f generateFlags) error {
	outPath, err := outputPath(cfg)
	if err != nil {
		return err
	}
	root, err := filepath.Abs(cfg.Analysis.Dir)
	if err != nil {
		return err
	}

	if _, err := a.generate(ctx, cfg, f); err != nil {
		a.logger.Error("generate failed", zap.Error(err))
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := addTree(watcher, root); err != nil {
		return err
	}
	a.logger.Info("watching for changes", zap.String("dir", root))
	a.watching()

	timer := time.NewTimer(a.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					if err := addTree(watcher, ev.Name); err != nil {
						a.logger.Warn("cannot watch directory", zap.String("dir", ev.Name), zap.Error(err))
					}
					continue
				}
			}
			if !relevant(ev, outPath) {
				continue
			}
			a.logger.Debug("change detected", zap.String("file", ev.Name), zap.Stringer("op", ev.Op))
			timer.Reset(a.debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.logger.Warn("watcher error", zap.Error(err))

		case <-timer.C:
			if _, err := a.generate(ctx, cfg, f); err != nil {
				a.logger.Error("generate failed", zap.Error(err))
			}
		}
	}
}

// relevant reports whether ev may change the generated file.
func relevant(ev fsnotify.Event, outPath string) bool {
	if ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write) {
		return false
	}
	if filepath.Ext(ev.Name) != ".go" {
		return false
	}
	return filepath.Clean(ev.Name) != outPath
}

// addTree watches dir and every directory below it, skipping hidden
// directories, vendor and testdata.
func addTree(w *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if path != dir && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "vendor" || name == "testdata") {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}
