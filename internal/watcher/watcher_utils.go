package watcher

import (
	"romcat/pkg/models"
	"time"
)

/*
Debouncer:
  - reset the timer on every event for the path
  - send once the path has been quiet for the debounce interval
*/
func (w *Watcher) debouncedSend(path string, fn func()) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if timer, exists := w.debouncer[path]; exists {
		timer.Stop()
	}

	var timer *time.Timer
	timer = time.AfterFunc(w.debounce, func() {
		w.debounceMu.Lock()
		if w.debouncer[path] == timer {
			delete(w.debouncer, path)
		}
		w.debounceMu.Unlock()
		fn()
	})
	w.debouncer[path] = timer
}

func (w *Watcher) Changes() <-chan models.FileEvent {
	return w.changeChan
}

func (w *Watcher) Errors() <-chan error {
	return w.errorChan
}

func (w *Watcher) Close() error {
	w.cancel()
	return w.fsNotifyWatcher.Close()
}
