package server

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"jobmatcher/internal/errors"
)

// CertWatcher watches PEM files on disk and invokes a callback when any of
// them actually change. Filesystem events are debounced and confirmed
// against modification times, so an editor touching a file twice or a
// partially written cert does not double-fire the reload.
type CertWatcher struct {
	mu sync.RWMutex

	files         []string // cert, key and optionally CA paths
	lastModTime   map[string]time.Time
	fsWatcher     *fsnotify.Watcher
	debounceDelay time.Duration
	debounceTimer *time.Timer

	stopChan   chan struct{}
	reloadChan chan struct{}

	reloadCallback func()
	logger         *errors.Logger
	running        bool
}

// NewCertWatcher builds a watcher over the given PEM paths; empty paths are
// skipped. A zero debounceDelay defaults to one second.
func NewCertWatcher(certFile, keyFile, caFile string, debounceDelay time.Duration, reloadCallback func(), logger *errors.Logger) (*CertWatcher, error) {
	if debounceDelay == 0 {
		debounceDelay = time.Second
	}

	var files []string
	for _, f := range []string{certFile, keyFile, caFile} {
		if f != "" {
			files = append(files, f)
		}
	}

	return &CertWatcher{
		files:          files,
		lastModTime:    make(map[string]time.Time),
		debounceDelay:  debounceDelay,
		stopChan:       make(chan struct{}),
		reloadChan:     make(chan struct{}, 1),
		reloadCallback: reloadCallback,
		logger:         logger,
	}, nil
}

// Start records the current modification times and begins watching.
func (cw *CertWatcher) Start() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if cw.running {
		return fmt.Errorf("watcher already running")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	cw.fsWatcher = watcher

	if err := cw.snapshotModTimes(); err != nil {
		if closeErr := watcher.Close(); closeErr != nil && cw.logger != nil {
			cw.logger.LogError(closeErr, "fsnotify close failed during cleanup")
		}
		return fmt.Errorf("snapshot file mod times: %w", err)
	}

	for _, file := range cw.files {
		if err := cw.watchFile(file); err != nil && cw.logger != nil {
			cw.logger.Warn("Could not watch certificate file", "file", file, "error", err)
		}
	}

	cw.running = true
	go cw.watchLoop()

	if cw.logger != nil {
		cw.logger.Info("Certificate watcher started",
			"files", cw.files,
			"debounce_delay", cw.debounceDelay)
	}
	return nil
}

// Stop shuts the watcher down. Safe to call when not running.
func (cw *CertWatcher) Stop() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if !cw.running {
		return nil
	}

	close(cw.stopChan)
	if cw.debounceTimer != nil {
		cw.debounceTimer.Stop()
	}
	if cw.fsWatcher != nil {
		if err := cw.fsWatcher.Close(); err != nil {
			if cw.logger != nil {
				cw.logger.LogError(err, "fsnotify close failed")
			}
			return err
		}
	}

	cw.running = false
	if cw.logger != nil {
		cw.logger.Info("Certificate watcher stopped")
	}
	return nil
}

// IsRunning reports whether the watch loop is active.
func (cw *CertWatcher) IsRunning() bool {
	cw.mu.RLock()
	defer cw.mu.RUnlock()
	return cw.running
}

// GetWatchedFiles returns the PEM paths under watch.
func (cw *CertWatcher) GetWatchedFiles() []string {
	return slices.Clone(cw.files)
}

// watchFile registers a file with the fs watcher. The file's directory is
// watched as well: atomic rotations (write temp, rename over) only produce
// events on the directory, and a not-yet-created file can only be seen that
// way.
func (cw *CertWatcher) watchFile(file string) error {
	if err := cw.fsWatcher.Add(file); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("watch %s: %w", file, err)
		}
		if err := cw.fsWatcher.Add(filepath.Dir(file)); err != nil {
			return fmt.Errorf("watch directory %s: %w", filepath.Dir(file), err)
		}
		if cw.logger != nil {
			cw.logger.Info("Watching parent directory for certificate file",
				"file", file, "directory", filepath.Dir(file))
		}
		return nil
	}

	if err := cw.fsWatcher.Add(filepath.Dir(file)); err != nil && cw.logger != nil {
		cw.logger.Warn("Could not watch parent directory for atomic writes",
			"directory", filepath.Dir(file), "error", err)
	}
	return nil
}

func (cw *CertWatcher) snapshotModTimes() error {
	for _, file := range cw.files {
		stat, err := os.Stat(file)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("stat %s: %w", file, err)
		}
		cw.lastModTime[file] = stat.ModTime()
	}
	return nil
}

func (cw *CertWatcher) watchLoop() {
	for {
		select {
		case event, ok := <-cw.fsWatcher.Events:
			if !ok {
				return
			}
			if cw.eventConcernsUs(event) {
				cw.scheduleReload()
			}

		case err, ok := <-cw.fsWatcher.Errors:
			if !ok {
				return
			}
			if cw.logger != nil {
				cw.logger.LogError(err, "fsnotify error")
			}

		case <-cw.reloadChan:
			if cw.anyFileChanged() {
				if cw.logger != nil {
					cw.logger.Info("Certificate material changed on disk, reloading")
				}
				cw.reloadCallback()
			}

		case <-cw.stopChan:
			return
		}
	}
}

// eventConcernsUs filters events down to writes, creates and renames that
// touch a watched path. Basenames are compared too because directory events
// carry the rotated file's name, not the watched path.
func (cw *CertWatcher) eventConcernsUs(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	for _, file := range cw.files {
		if event.Name == file || filepath.Base(event.Name) == filepath.Base(file) {
			return true
		}
	}
	return false
}

// anyFileChanged compares on-disk modification times against the snapshot,
// updating it as a side effect. A deleted file counts as changed once.
func (cw *CertWatcher) anyFileChanged() bool {
	changed := false
	for _, file := range cw.files {
		stat, err := os.Stat(file)
		if err != nil {
			if _, known := cw.lastModTime[file]; os.IsNotExist(err) && known {
				delete(cw.lastModTime, file)
				changed = true
			}
			continue
		}
		lastMod, known := cw.lastModTime[file]
		if !known || stat.ModTime().After(lastMod) {
			cw.lastModTime[file] = stat.ModTime()
			changed = true
		}
	}
	return changed
}

// scheduleReload arms the debounce timer; successive events push it out.
func (cw *CertWatcher) scheduleReload() {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if cw.debounceTimer != nil {
		cw.debounceTimer.Stop()
	}
	cw.debounceTimer = time.AfterFunc(cw.debounceDelay, func() {
		select {
		case cw.reloadChan <- struct{}{}:
		default: // reload already pending
		}
	})
}
