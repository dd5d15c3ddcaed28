package gitrepo

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/revlane/revlane/pkg/errors"
)

// watchDebounce coalesces the burst of ref writes a single git command
// produces into one notification.
const watchDebounce = 250 * time.Millisecond

// Watcher notifies when the repository's history may have changed: a ref
// moved, HEAD switched, or refs were packed. Events are debounced and
// delivered on Changes as empty struct ticks.
type Watcher struct {
	fw      *fsnotify.Watcher
	changes chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// Watch starts watching the repository's .git directory for ref updates.
func (r *Repository) Watch() (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create fs watcher")
	}

	gitDir := filepath.Join(r.path, ".git")
	dirs := []string{
		gitDir,
		filepath.Join(gitDir, "refs"),
		filepath.Join(gitDir, "refs", "heads"),
		filepath.Join(gitDir, "refs", "tags"),
		filepath.Join(gitDir, "refs", "remotes"),
	}
	watched := 0
	for _, dir := range dirs {
		if err := fw.Add(dir); err == nil {
			watched++
		}
	}
	if watched == 0 {
		fw.Close()
		return nil, errors.New(errors.ErrCodeNoRepository, "no watchable git directory under %s", r.path)
	}

	w := &Watcher{
		fw:      fw,
		changes: make(chan struct{}, 1),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Changes delivers one tick per debounced batch of ref updates.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

// Stop terminates the watcher and waits for its goroutine to exit.
func (w *Watcher) Stop() {
	select {
	case <-w.stopCh:
		return
	default:
		close(w.stopCh)
	}
	w.fw.Close()
	<-w.doneCh
}

func (w *Watcher) run() {
	defer close(w.doneCh)

	var debounceTimer *time.Timer
	var debounceCh <-chan time.Time

	for {
		select {
		case <-w.stopCh:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if !refEvent(event) {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.NewTimer(watchDebounce)
			debounceCh = debounceTimer.C

		case <-debounceCh:
			debounceCh = nil
			select {
			case w.changes <- struct{}{}:
			default:
			}

		case _, ok := <-w.fw.Errors:
			if !ok {
				return
			}
		}
	}
}

// refEvent reports whether an fs event could indicate a history change.
// Lock files and object writes churn constantly and are ignored.
func refEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return false
	}
	name := filepath.Base(event.Name)
	if strings.HasSuffix(name, ".lock") {
		return false
	}
	switch name {
	case "HEAD", "packed-refs", "ORIG_HEAD", "FETCH_HEAD":
		return true
	}
	return strings.Contains(filepath.ToSlash(event.Name), "/refs/")
}
