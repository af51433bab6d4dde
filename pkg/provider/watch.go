package provider

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/motifscope/pkg/errors"
)

const debounceDelay = 50 * time.Millisecond

// Watcher reloads a FileProvider when its bundle changes on disk.
type Watcher struct {
	provider *FileProvider
	watcher  *fsnotify.Watcher
	onReload func(error)

	mu    sync.Mutex
	timer *time.Timer

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Watch starts watching the loaded bundle of p. onReload is called from the
// watcher goroutine after every reload attempt, with the reload error. Bursts
// of writes are coalesced.
func Watch(ctx context.Context, p *FileProvider, onReload func(error)) (*Watcher, error) {
	path := p.Path()
	if path == "" {
		return nil, errors.New(errors.ErrCodeDatasetNotFound, "no dataset loaded")
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Editors replace files by rename, so watch the directory.
	if err := fw.Add(filepath.Dir(path)); err != nil {
		_ = fw.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	w := &Watcher{provider: p, watcher: fw, onReload: onReload, cancel: cancel}
	w.wg.Add(1)
	go w.run(ctx, filepath.Base(path))
	return w, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	w.cancel()
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	err := w.watcher.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) run(ctx context.Context, name string) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.schedule(ctx)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if w.onReload != nil {
				w.onReload(err)
			}
		}
	}
}

func (w *Watcher) schedule(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(debounceDelay, func() {
		if ctx.Err() != nil {
			return
		}
		err := w.provider.Reload(ctx)
		if w.onReload != nil {
			w.onReload(err)
		}
	})
}
