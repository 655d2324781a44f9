package library

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"stepviz/internal/spec"
)

// Watcher hot-reloads a library from a spec directory so authored
// edits show up without a restart.
type Watcher struct {
	lib     *Library
	watcher *fsnotify.Watcher
	log     *zap.Logger
	stopCh  chan struct{}
}

// NewWatcher starts watching dir. Changed documents are re-parsed and
// stored; removed files drop their specification from the catalog.
func NewWatcher(lib *Library, dir string, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create spec watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch spec directory: %w", err)
	}

	w := &Watcher{
		lib:     lib,
		watcher: fw,
		log:     logger,
		stopCh:  make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("spec watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if !specFile(event.Name) {
		return
	}
	switch {
	case event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename):
		// The id is not recoverable from the filename alone; drop by
		// matching the base name against stored ids, the common
		// authoring convention.
		id := strings.TrimSuffix(filepath.Base(event.Name), filepath.Ext(event.Name))
		if _, ok := w.lib.Get(id); ok {
			w.lib.Remove(id)
			w.log.Info("specification removed", zap.String("id", id))
		}
	case event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Write):
		s, err := spec.LoadFile(event.Name)
		if err != nil {
			w.log.Warn("ignoring changed specification document",
				zap.String("path", event.Name),
				zap.Error(err))
			return
		}
		w.lib.Put(s)
		w.log.Info("specification reloaded", zap.String("id", s.ID))
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.stopCh)
	return w.watcher.Close()
}
