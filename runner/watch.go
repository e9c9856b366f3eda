package runner

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/ZaguanLabs/sitetrans"
	"github.com/ZaguanLabs/sitetrans/selector"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period Watch waits for after a change.
const DefaultDebounce = 500 * time.Millisecond

// Watch runs once, then again whenever a source page under the root changes,
// until ctx is done. Generated translations and the ledger do not trigger
// runs. Results go to OnReport when set.
func (r *Runner) Watch(ctx context.Context, debounce time.Duration) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return &sitetrans.IOError{Op: "watch", Path: r.cfg.Root, Err: err}
	}
	defer func() { _ = watcher.Close() }()

	if err := r.addWatchTree(watcher, r.cfg.Root); err != nil {
		return err
	}

	if err := r.runOnce(ctx); err != nil {
		return err
	}

	timer := time.NewTimer(debounce)
	timer.Stop()
	langs := append([]string{r.cfg.Lang}, sitetrans.KnownLanguageCodes()...)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if event.Op&fsnotify.Create != 0 && r.cfg.Recursive {
				_ = r.addWatchTree(watcher, event.Name)
			}
			if !relevant(event.Name, langs) {
				continue
			}
			log.Debugw("source changed", "path", event.Name, "op", event.Op.String())
			timer.Reset(debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warnw("watcher error", "err", err)
		case <-timer.C:
			if err := r.runOnce(ctx); err != nil {
				return err
			}
		}
	}
}

func (r *Runner) runOnce(ctx context.Context) error {
	report, err := r.Run(ctx)
	if r.OnReport != nil {
		r.OnReport(report, err)
	}
	if report == nil {
		return err
	}
	if err != nil {
		log.Warnw("run failed", "err", err)
	}
	return nil
}

func (r *Runner) addWatchTree(w *fsnotify.Watcher, root string) error {
	if !r.cfg.Recursive {
		if root != r.cfg.Root {
			return nil
		}
		if err := w.Add(root); err != nil {
			return &sitetrans.IOError{Op: "watch", Path: root, Err: err}
		}
		return nil
	}

	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		name := d.Name()
		if p != root && (strings.HasPrefix(name, ".") || name == "node_modules") {
			return filepath.SkipDir
		}
		if err := w.Add(p); err != nil {
			log.Debugw("watch add failed", "path", p, "err", err)
		}
		return nil
	})
}

// relevant reports whether a change to name may alter the selection.
func relevant(name string, langs []string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	if !strings.EqualFold(filepath.Ext(base), ".html") {
		return false
	}
	return !selector.IsTranslation(base, langs)
}
