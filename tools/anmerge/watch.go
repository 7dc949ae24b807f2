package main

import (
	"context"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

const watchDelay = 200 * time.Millisecond

type watchSet struct {
	dirs    []string
	files   map[string]bool
	clipDir string
	ignore  string
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

func (ws *watchSet) addDir(dir string) {
	for _, d := range ws.dirs {
		if d == dir {
			return
		}
	}
	ws.dirs = append(ws.dirs, dir)
}

func (ws *watchSet) addFile(path string) {
	path = absPath(path)
	ws.files[path] = true
	ws.addDir(filepath.Dir(path))
}

// relevant reports whether a change of name needs a rebuild
func (ws *watchSet) relevant(name string) bool {
	name = absPath(name)
	if name == ws.ignore {
		return false
	}
	if ws.files[name] {
		return true
	}
	return filepath.Dir(name) == ws.clipDir && strings.EqualFold(filepath.Ext(name), ".an")
}

func (j *job) watchList() *watchSet {
	ws := &watchSet{
		files:   make(map[string]bool),
		clipDir: absPath(j.dir),
		ignore:  absPath(j.out),
	}
	ws.addDir(ws.clipDir)
	ws.addFile(j.cookbook)
	for _, r := range j.rules {
		ws.addFile(r)
	}
	return ws
}

// watchFiles calls rebuild once changes settle, until ctx is done
func watchFiles(ctx context.Context, ws *watchSet, rebuild func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrapf(err, "Failed to create watcher")
	}
	defer watcher.Close()

	for _, dir := range ws.dirs {
		if err := watcher.Add(dir); err != nil {
			return errors.Wrapf(err, "Failed to watch %q", dir)
		}
		log.Printf("[watch] %s", dir)
	}

	settle := time.NewTimer(time.Hour)
	settle.Stop()
	defer settle.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 || !ws.relevant(event.Name) {
				continue
			}
			if !settle.Stop() {
				select {
				case <-settle.C:
				default:
				}
			}
			settle.Reset(watchDelay)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("[watch] %v", err)
		case <-settle.C:
			rebuild()
		}
	}
}
