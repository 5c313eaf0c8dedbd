package settings

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/liteview/liteview/pkg/logger"
)

const reloadDelay = 100 * time.Millisecond

// Watcher reloads the store when the settings file is edited outside the app.
// The new values apply to the next capture session.
type Watcher struct {
	file  *FileStorage
	store *Store
	log   *logger.Logger

	w    *fsnotify.Watcher
	done chan struct{}
	wg   sync.WaitGroup
}

func NewWatcher(file *FileStorage, store *Store, log *logger.Logger) *Watcher {
	return &Watcher{file: file, store: store, log: log.Module("settings")}
}

// Run starts watching the settings dir in the background.
// Editors and our own saves replace the file, so the dir is watched, not the file.
func (w *Watcher) Run() {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.log.Error().Err(err).Msg("settings watcher")
		return
	}
	dir := filepath.Dir(w.file.Path())
	if err = watcher.Add(dir); err != nil {
		w.log.Error().Err(err).Msgf("couldn't watch %v", dir)
		_ = watcher.Close()
		return
	}
	w.w = watcher
	w.done = make(chan struct{})
	w.wg.Add(1)
	go w.loop()
	w.log.Debug().Msgf("watching %v", w.file.Path())
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	name := filepath.Base(w.file.Path())
	// bursts of events from one save are folded into one reload
	var debounce <-chan time.Time
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.w.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != name || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			debounce = time.After(reloadDelay)
		case err, ok := <-w.w.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Msg("settings watcher")
		case <-debounce:
			debounce = nil
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	s, ok, err := w.file.Load()
	if err != nil {
		w.log.Warn().Err(err).Msg("settings file is broken, keeping current settings")
		return
	}
	if !ok {
		return
	}
	if _, err = w.store.Replace(s); err != nil {
		w.log.Warn().Err(err).Msg("settings file is invalid, keeping current settings")
	}
}

func (w *Watcher) Shutdown(context.Context) error {
	if w.w == nil {
		return nil
	}
	close(w.done)
	err := w.w.Close()
	w.wg.Wait()
	w.w = nil
	return err
}

func (w *Watcher) String() string { return "settings watcher" }
