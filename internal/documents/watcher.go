package documents

import (
	"context"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/kamusis/minirag/internal/logging"
)

// Change is a batch of document paths touched within one debounce window.
type Change struct {
	Paths []string
}

// Watcher reports changes to supported documents in a directory.
type Watcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
}

// NewWatcher creates a watcher that coalesces events arriving within debounce.
func NewWatcher(debounce time.Duration) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &Watcher{watcher: w, debounce: debounce}, nil
}

// Watch starts monitoring dir. The returned channel is closed when ctx is
// done or the watcher is closed.
func (w *Watcher) Watch(ctx context.Context, dir string) (<-chan Change, error) {
	if err := w.watcher.Add(dir); err != nil {
		return nil, err
	}

	out := make(chan Change, 1)
	go func() {
		defer close(out)

		pending := map[string]struct{}{}
		timer := time.NewTimer(w.debounce)
		if !timer.Stop() {
			<-timer.C
		}

		for {
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case ev, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if !IsSupported(ev.Name) || !relevant(ev.Op) {
					continue
				}
				pending[ev.Name] = struct{}{}
				timer.Reset(w.debounce)
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				logging.LogWarn("document watcher: %v", err)
			case <-timer.C:
				if len(pending) == 0 {
					continue
				}
				paths := make([]string, 0, len(pending))
				for p := range pending {
					paths = append(paths, p)
				}
				sort.Strings(paths)
				pending = map[string]struct{}{}
				select {
				case out <- Change{Paths: paths}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func relevant(op fsnotify.Op) bool {
	return op.Has(fsnotify.Create) || op.Has(fsnotify.Write) || op.Has(fsnotify.Remove) || op.Has(fsnotify.Rename)
}
