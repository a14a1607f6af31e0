package watcher

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"romcat/internal/utils"
	"romcat/pkg/models"
)

// Watcher reports archive files that appear, change or disappear under
// a set of directory trees. Directories created later are watched too.
// Events for one path are debounced; only the last is delivered.
type Watcher struct {
	fsNotifyWatcher *fsnotify.Watcher
	extensions      []string
	watchedDirs     map[string]bool
	changeChan      chan models.FileEvent
	errorChan       chan error
	ctx             context.Context
	cancel          context.CancelFunc
	mu              sync.RWMutex
	debounce        time.Duration
	debouncer       map[string]*time.Timer
	debounceMu      sync.Mutex
}

func NewWatcher(extensions []string) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Watcher{
		fsNotifyWatcher: fsWatcher,
		extensions:      extensions,
		watchedDirs:     make(map[string]bool),
		changeChan:      make(chan models.FileEvent),
		errorChan:       make(chan error, 10),
		ctx:             ctx,
		cancel:          cancel,
		debounce:        500 * time.Millisecond,
		debouncer:       make(map[string]*time.Timer),
	}, nil
}

func (w *Watcher) AddWatch(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	return filepath.Walk(path, func(walkPath string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() && !w.watchedDirs[walkPath] {
			if err := w.fsNotifyWatcher.Add(walkPath); err != nil {
				return err
			}
			w.watchedDirs[walkPath] = true
			log.Printf("Watching directory: %s", walkPath)
		}
		return nil
	})
}

func (w *Watcher) Start() {
	go w.handleEvents()
}

func (w *Watcher) handleEvents() {
	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-w.fsNotifyWatcher.Events:
			if !ok {
				return
			}
			w.processEvent(event)
		case err, ok := <-w.fsNotifyWatcher.Errors:
			if !ok {
				return
			}
			w.sendError(err)
		}
	}
}

func (w *Watcher) processEvent(event fsnotify.Event) {
	if event.Op&fsnotify.Create == fsnotify.Create && utils.IsDirectory(event.Name) {
		if err := w.AddWatch(event.Name); err != nil {
			w.sendError(err)
		}
		return
	}

	if !utils.HasExtension(event.Name, w.extensions) {
		return
	}

	w.debouncedSend(event.Name, func() {
		var operation string
		switch {
		case event.Op&fsnotify.Create == fsnotify.Create:
			operation = "CREATE"
		case event.Op&fsnotify.Write == fsnotify.Write:
			operation = "MODIFY"
		case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
			operation = "DELETE"
		default:
			return
		}
		select {
		case w.changeChan <- models.FileEvent{
			Path:      event.Name,
			Operation: operation,
			Timestamp: time.Now(),
		}:
		case <-w.ctx.Done():
			return
		}
	})
}

func (w *Watcher) sendError(err error) {
	select {
	case w.errorChan <- err:
	default:
		log.Printf("Watcher error dropped: %v", err)
	}
}
