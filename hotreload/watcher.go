package hotreload

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/packmill/packmill/errors"
	"github.com/packmill/packmill/logging"
	"github.com/packmill/packmill/util/pathutil"
	"github.com/sirupsen/logrus"
)

// Watcher couples an fsnotify watcher with a debouncer. Settled batches are
// handled outside the session goroutine; handlers classify events and push
// commands into the shared queue, nothing more.
type Watcher struct {
	fsw       *fsnotify.Watcher
	deb       *Debouncer
	log       *logrus.Entry
	recursive bool
	done      chan struct{}
}

func newWatcher(handler func([]Event), recursive bool) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:       fsw,
		deb:       NewDebouncer(DebounceWindow, handler),
		log:       logging.NewLogger("watcher"),
		recursive: recursive,
		done:      make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			// New directories under a recursive root must be added
			// before the debounce window passes or their files are missed.
			if w.recursive && event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.fsw.Add(event.Name); err != nil {
						w.log.WithError(err).Warnf("Failed to watch new directory %s", event.Name)
					}
				}
			}
			w.deb.Observe(event.Name, event.Op)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Errorf("Watcher error: %v", err)
		}
	}
}

// watch registers a path, walking the tree when recursive.
func (w *Watcher) watch(path string) error {
	if !w.recursive {
		return w.fsw.Add(path)
	}
	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.fsw.Add(p)
		}
		return nil
	})
}

// Close stops the watcher and discards pending debounced events.
func (w *Watcher) Close() error {
	w.deb.Stop()
	err := w.fsw.Close()
	<-w.done
	return err
}

// WatchConfigTree watches the config template directory recursively. Every
// settled create/modify on a file bootstraps it, then applies the first
// matching rule's commands.
func WatchConfigTree(configDir string, cell *ConfigCell, queue chan<- Command) (*Watcher, error) {
	w, err := newWatcher(ConfigTreeHandler(configDir, cell, queue), true)
	if err != nil {
		return nil, errors.WatcherFailed(configDir, err)
	}
	if err := w.watch(configDir); err != nil {
		w.Close()
		return nil, errors.WatcherFailed(configDir, err)
	}
	return w, nil
}

// WatchHotReloadFile watches hotreload.toml and re-parses it on change.
func WatchHotReloadFile(path string, cell *ConfigCell) (*Watcher, error) {
	w, err := newWatcher(HotReloadFileHandler(path, cell), false)
	if err != nil {
		return nil, errors.WatcherFailed(path, err)
	}
	if err := w.watch(path); err != nil {
		w.Close()
		return nil, errors.WatcherFailed(path, err)
	}
	return w, nil
}

// WatchServerFile watches server.toml; a settled modify forces a full
// stop/rebuild/start cycle since this file changes how the artifact is built.
func WatchServerFile(path string, queue chan<- Command) (*Watcher, error) {
	w, err := newWatcher(ServerFileHandler(queue), false)
	if err != nil {
		return nil, errors.WatcherFailed(path, err)
	}
	if err := w.watch(path); err != nil {
		w.Close()
		return nil, errors.WatcherFailed(path, err)
	}
	return w, nil
}

// ConfigTreeHandler classifies settled events under the config directory
// into bootstrap and rule-action commands. Directories and hidden files
// never bootstrap or trigger actions. The configuration snapshot is taken
// per event, never cached across the handler's lifetime.
func ConfigTreeHandler(configDir string, cell *ConfigCell, queue chan<- Command) func([]Event) {
	log := logging.NewLogger("watcher")
	return func(events []Event) {
		for _, ev := range events {
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}

			info, err := os.Stat(ev.Path)
			if err != nil || info.IsDir() {
				continue
			}

			rel, err := pathutil.Normalize(configDir, ev.Path)
			if err != nil {
				log.WithError(err).Warnf("Cannot relativize %s", ev.Path)
				continue
			}

			// Editor swap and backup dotfiles are not templates.
			if pathutil.IsHidden(rel) {
				continue
			}

			// Bootstrap happens regardless of any rule match.
			queue <- Bootstrap(rel)

			rule := cell.Snapshot().ResolveAction(rel)
			if rule == nil {
				continue
			}
			for _, cmd := range rule.Commands() {
				queue <- cmd
			}
		}
	}
}

// HotReloadFileHandler re-parses the hot-reload config on settled
// create/modify. A parse failure keeps the previous snapshot in place; the
// session never crashes over a bad hotreload.toml.
func HotReloadFileHandler(path string, cell *ConfigCell) func([]Event) {
	log := logging.NewLogger("watcher")
	return func(events []Event) {
		for _, ev := range events {
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}

			updated, err := LoadConfig(path)
			if err != nil {
				log.WithError(err).Warnf("Cannot update %s, keeping previous config", ConfigFileName)
				return
			}
			cell.Replace(updated)
			log.Infof("Updated %s", ConfigFileName)
			return
		}
	}
}

// ServerFileHandler emits the full graceful-restart-with-rebuild sequence
// on a settled modify of server.toml.
func ServerFileHandler(queue chan<- Command) func([]Event) {
	return func(events []Event) {
		for _, ev := range events {
			if ev.Op&fsnotify.Write == 0 {
				continue
			}

			queue <- Command{Kind: CmdSendCommand, Text: "stop\nend"}
			queue <- Command{Kind: CmdWaitUntilExit}
			queue <- Command{Kind: CmdRebuild}
			queue <- Command{Kind: CmdStart}
			return
		}
	}
}
