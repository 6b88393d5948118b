package monitor

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"stats-tool/internal/models"
	"stats-tool/pkg/logging"
)

// DefaultDebounceDelay collapses the burst of events editors emit per save
const DefaultDebounceDelay = 500 * time.Millisecond

// FileSystemMonitor watches individual files for changes. It watches the
// parent directory so that files replaced by rename are still seen.
type FileSystemMonitor struct {
	watcher       *fsnotify.Watcher
	debounceDelay time.Duration
	logger        *logging.StructuredLogger

	mu        sync.Mutex
	callbacks map[string][]func(models.FileEvent)
	timers    map[string]*time.Timer
	pending   map[string]fsnotify.Op
	started   bool

	stopOnce sync.Once
	done     chan struct{}
}

// NewFileSystemMonitor creates a new file system monitor
func NewFileSystemMonitor(logger *logging.StructuredLogger, debounceDelay time.Duration) (*FileSystemMonitor, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	if debounceDelay <= 0 {
		debounceDelay = DefaultDebounceDelay
	}

	return &FileSystemMonitor{
		watcher:       watcher,
		debounceDelay: debounceDelay,
		logger:        logger,
		callbacks:     make(map[string][]func(models.FileEvent)),
		timers:        make(map[string]*time.Timer),
		pending:       make(map[string]fsnotify.Op),
		done:          make(chan struct{}),
	}, nil
}

// WatchFile starts watching path; callback runs once per debounced change
func (fsm *FileSystemMonitor) WatchFile(path string, callback func(models.FileEvent)) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	dir := filepath.Dir(absPath)
	if err := fsm.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}

	fsm.mu.Lock()
	fsm.callbacks[absPath] = append(fsm.callbacks[absPath], callback)
	start := !fsm.started
	fsm.started = true
	fsm.mu.Unlock()

	if start {
		go fsm.monitorEvents()
	}

	fsm.logger.WithContext("path", absPath).Info("Started monitoring file")
	return nil
}

// StopWatching stops the file system monitoring. It is safe to call more than once.
func (fsm *FileSystemMonitor) StopWatching() error {
	var err error
	fsm.stopOnce.Do(func() {
		close(fsm.done)
		err = fsm.watcher.Close()

		fsm.mu.Lock()
		for name, timer := range fsm.timers {
			timer.Stop()
			delete(fsm.timers, name)
			delete(fsm.pending, name)
		}
		fsm.mu.Unlock()
	})
	return err
}

// monitorEvents processes file system events with debouncing
func (fsm *FileSystemMonitor) monitorEvents() {
	for {
		select {
		case <-fsm.done:
			return

		case event, ok := <-fsm.watcher.Events:
			if !ok {
				return
			}
			fsm.schedule(event)

		case err, ok := <-fsm.watcher.Errors:
			if !ok {
				return
			}
			fsm.logger.WithError(err).Warn("File watcher error")
		}
	}
}

// schedule debounces events for the same file, merging their operations
func (fsm *FileSystemMonitor) schedule(event fsnotify.Event) {
	name := filepath.Clean(event.Name)

	fsm.mu.Lock()
	defer fsm.mu.Unlock()

	if _, watched := fsm.callbacks[name]; !watched {
		return
	}

	fsm.pending[name] |= event.Op
	if timer, exists := fsm.timers[name]; exists {
		timer.Stop()
	}

	fsm.timers[name] = time.AfterFunc(fsm.debounceDelay, func() {
		fsm.mu.Lock()
		op := fsm.pending[name]
		delete(fsm.pending, name)
		delete(fsm.timers, name)
		fsm.mu.Unlock()

		fsm.processEvent(name, op)
	})
}

// processEvent converts merged fsnotify operations to a FileEvent and calls
// callbacks. A file that was removed and recreated counts as created.
func (fsm *FileSystemMonitor) processEvent(name string, op fsnotify.Op) {
	var eventType string
	switch {
	case op&fsnotify.Create == fsnotify.Create:
		eventType = models.FileEventCreate
	case op&fsnotify.Write == fsnotify.Write:
		eventType = models.FileEventModify
	case op&(fsnotify.Remove|fsnotify.Rename) != 0:
		eventType = models.FileEventDelete
	default:
		return // chmod only
	}

	select {
	case <-fsm.done:
		return
	default:
	}

	fsm.mu.Lock()
	callbacks := append([]func(models.FileEvent){}, fsm.callbacks[name]...)
	fsm.mu.Unlock()

	fileEvent := models.FileEvent{
		Type: eventType,
		Path: name,
	}

	fsm.logger.LogFileSystemEvent(eventType, name, nil)

	for _, callback := range callbacks {
		callback(fileEvent)
	}
}
