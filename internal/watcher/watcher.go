package watcher

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches source directories and reports changed files after a
// quiet period, so rapid editor saves collapse into one conversion run.
type Watcher interface {
	// Start begins watching. The callback receives the batch of changed
	// file paths after each debounce window.
	Start(ctx context.Context, callback func(files []string)) error

	// Stop stops watching and releases resources. Idempotent.
	Stop() error

	// Pause stops firing callbacks but keeps accumulating changes.
	Pause()

	// Resume re-enables callbacks, firing immediately if changes
	// accumulated while paused.
	Resume()
}

// sourceWatcher implements Watcher on top of fsnotify.
type sourceWatcher struct {
	watcher       *fsnotify.Watcher
	extensions    map[string]bool
	skipDirs      map[string]bool
	debounceTime  time.Duration
	callback      func(files []string)
	ctx           context.Context
	cancel        context.CancelFunc
	paused        bool
	pausedMu      sync.RWMutex
	accumulated   map[string]bool
	accumulatedMu sync.Mutex
	debounceTimer *time.Timer
	timerMu       sync.Mutex
	stopOnce      sync.Once
	doneCh        chan struct{}
}

// New creates a watcher over the given source directories.
// extensions: file extensions to monitor (e.g. []string{".tsx", ".ts"})
// skipDirs: directory names pruned from the walk (node_modules, .next, ...)
func New(dirs []string, extensions []string, skipDirs []string) (Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	extMap := make(map[string]bool)
	for _, ext := range extensions {
		extMap[ext] = true
	}
	skipMap := make(map[string]bool)
	for _, dir := range skipDirs {
		skipMap[dir] = true
	}

	w := &sourceWatcher{
		watcher:      fsWatcher,
		extensions:   extMap,
		skipDirs:     skipMap,
		debounceTime: 500 * time.Millisecond,
		accumulated:  make(map[string]bool),
		doneCh:       make(chan struct{}),
	}

	for _, dir := range dirs {
		if err := w.addDirectoriesRecursively(dir); err != nil {
			fsWatcher.Close()
			return nil, err
		}
	}

	return w, nil
}

func (w *sourceWatcher) Start(ctx context.Context, callback func(files []string)) error {
	if callback == nil {
		return nil
	}

	w.callback = callback
	w.ctx, w.cancel = context.WithCancel(ctx)

	go w.watch()
	return nil
}

func (w *sourceWatcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		if w.cancel != nil {
			w.cancel()
			<-w.doneCh
		} else {
			// Never started, close doneCh manually
			close(w.doneCh)
		}
		err = w.watcher.Close()
	})
	return err
}

func (w *sourceWatcher) Pause() {
	w.pausedMu.Lock()
	defer w.pausedMu.Unlock()
	w.paused = true
}

func (w *sourceWatcher) Resume() {
	w.pausedMu.Lock()
	wasPaused := w.paused
	w.paused = false
	w.pausedMu.Unlock()

	if !wasPaused {
		return
	}

	w.accumulatedMu.Lock()
	if len(w.accumulated) == 0 {
		w.accumulatedMu.Unlock()
		return
	}
	files := w.drainAccumulated()
	w.accumulatedMu.Unlock()

	if w.callback != nil {
		w.callback(files)
	}
}

// watch is the main event loop.
func (w *sourceWatcher) watch() {
	defer close(w.doneCh)

	convertCh := make(chan struct{}, 1)

	for {
		select {
		case <-w.ctx.Done():
			w.stopDebounceTimer()
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			// New directories join the watch set unless they are pruned.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if w.skipDirs[filepath.Base(event.Name)] {
						continue
					}
					if err := w.addDirectoriesRecursively(event.Name); err != nil {
						log.Printf("Warning: failed to watch new directory %s: %v", event.Name, err)
					}
				}
			}

			if !w.shouldProcessEvent(event) {
				continue
			}

			w.accumulatedMu.Lock()
			w.accumulated[event.Name] = true
			w.accumulatedMu.Unlock()

			w.resetDebounceTimer(convertCh)

		case <-convertCh:
			w.handleDebounceExpired()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("File watcher error: %v", err)
		}
	}
}

func (w *sourceWatcher) handleDebounceExpired() {
	w.pausedMu.RLock()
	paused := w.paused
	w.pausedMu.RUnlock()

	if paused {
		return
	}

	w.accumulatedMu.Lock()
	if len(w.accumulated) == 0 {
		w.accumulatedMu.Unlock()
		return
	}
	files := w.drainAccumulated()
	w.accumulatedMu.Unlock()

	if w.callback != nil {
		w.callback(files)
	}
}

// drainAccumulated copies and clears the accumulated set.
// Caller holds accumulatedMu.
func (w *sourceWatcher) drainAccumulated() []string {
	files := make([]string, 0, len(w.accumulated))
	for file := range w.accumulated {
		files = append(files, file)
	}
	w.accumulated = make(map[string]bool)
	return files
}

// resetDebounceTimer resets the debounce timer, properly stopping the old one.
func (w *sourceWatcher) resetDebounceTimer(convertCh chan struct{}) {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()

	if w.debounceTimer != nil {
		if !w.debounceTimer.Stop() {
			select {
			case <-w.debounceTimer.C:
			default:
			}
		}
	}

	w.debounceTimer = time.AfterFunc(w.debounceTime, func() {
		select {
		case convertCh <- struct{}{}:
		default:
		}
	})
}

func (w *sourceWatcher) stopDebounceTimer() {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
		w.debounceTimer = nil
	}
}

// shouldProcessEvent filters to write/create/remove events on monitored
// extensions.
func (w *sourceWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove) == 0 {
		return false
	}
	ext := filepath.Ext(event.Name)
	return w.extensions[ext]
}

// addDirectoriesRecursively adds all directories in the tree to the
// watcher, pruning skipped directory names.
func (w *sourceWatcher) addDirectoriesRecursively(rootPath string) error {
	return filepath.Walk(rootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == rootPath {
				return err
			}
			log.Printf("Warning: error accessing %s: %v", path, err)
			return nil
		}

		if !info.IsDir() {
			return nil
		}
		if path != rootPath && w.skipDirs[info.Name()] {
			return filepath.SkipDir
		}

		if err := w.watcher.Add(path); err != nil {
			log.Printf("Warning: failed to watch directory %s: %v", path, err)
			return nil
		}
		return nil
	})
}
