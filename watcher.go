package main

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/Solifugus/mbl/internal/workspace"
	"github.com/fsnotify/fsnotify"
)

type Watcher struct {
	watchingDirs, watchingFiles map[string]struct{}

	root string
	ws   *workspace.Workspace

	watcher *fsnotify.Watcher
}

func NewWatcher(root string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		watchingDirs:  make(map[string]struct{}),
		watchingFiles: make(map[string]struct{}),
		root:          root,
		ws:            workspace.New(root),
		watcher:       fsw,
	}
	go w.eventLoop()

	return w, nil
}

func (w *Watcher) WatchFile(path string) error {
	fullPath, _ := filepath.Abs(path)
	w.watchingFiles[fullPath] = struct{}{}

	dir := filepath.Dir(fullPath)
	if _, ok := w.watchingDirs[dir]; ok {
		return nil
	}

	if err := w.watcher.Add(dir); err != nil {
		return err
	}

	w.watchingDirs[dir] = struct{}{}

	return nil
}

func (w *Watcher) eventLoop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) {
				continue
			}

			fname, _ := filepath.Abs(event.Name)

			if _, ok := w.watchingFiles[fname]; !ok {
				continue
			}

			w.fileModified(fname)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Println("error:", err)
		}
	}
}

func (w *Watcher) fileModified(fullPath string) {
	rel, err := filepath.Rel(w.root, fullPath)
	if err != nil {
		rel = fullPath
	}

	log.Printf("file %q modified, rescanning...", rel)

	w.ws.Invalidate(rel)

	f, err := w.ws.Load(rel)
	if err != nil {
		log.Printf("failed to scan file %q: %s", rel, err)
		return
	}

	if err := printFile(f); err != nil {
		log.Printf("failed to print tokens for %q: %s", rel, err)
	}
}
