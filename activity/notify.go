package activity

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc"
)

// ChangeNotifier turns filesystem events on the watched files into wake-up
// signals. It never reports ages; the scheduler still asks the Monitor.
type ChangeNotifier struct {
	watcher *fsnotify.Watcher
	watched map[string]bool
	changes chan struct{}
	logger  *logrus.Entry
	wg      conc.WaitGroup
}

// NewChangeNotifier watches the directories containing paths, since writers
// may replace the files instead of appending to them.
func NewChangeNotifier(paths []string, logger *logrus.Entry) (*ChangeNotifier, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	n := &ChangeNotifier{
		watcher: watcher,
		watched: make(map[string]bool, len(paths)),
		changes: make(chan struct{}, 1),
		logger:  logger,
	}

	dirs := make(map[string]bool)
	for _, path := range paths {
		n.watched[filepath.Clean(path)] = true
		dir := filepath.Dir(path)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return nil, err
		}
		dirs[dir] = true
	}

	n.wg.Go(n.forward)
	return n, nil
}

// Changes delivers at most one pending signal; bursts of events coalesce.
func (n *ChangeNotifier) Changes() <-chan struct{} {
	return n.changes
}

// Close stops watching and waits for the event loop to exit.
func (n *ChangeNotifier) Close() error {
	err := n.watcher.Close()
	n.wg.Wait()
	return err
}

func (n *ChangeNotifier) forward() {
	for {
		select {
		case event, ok := <-n.watcher.Events:
			if !ok {
				return
			}
			if !n.watched[filepath.Clean(event.Name)] {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			n.logger.WithField("event", event.String()).Debug("Watched file changed")
			select {
			case n.changes <- struct{}{}:
			default:
			}
		case err, ok := <-n.watcher.Errors:
			if !ok {
				return
			}
			n.logger.WithError(err).Warn("File watcher error")
		}
	}
}
