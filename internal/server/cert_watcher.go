package server

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"careercatalyst/internal/errors"
)

// CertWatcher watches the certificate files on disk and invokes the
// reload callback, debounced, when any of them change. Directories are
// watched alongside the files to catch atomic writes (rename into place).
type CertWatcher struct {
	mu sync.Mutex

	paths    []string
	modTimes map[string]time.Time

	fsWatcher *fsnotify.Watcher
	debounce  time.Duration
	timer     *time.Timer

	reload func()
	logger *errors.Logger

	stop    chan struct{}
	running bool
}

// NewCertWatcher creates a watcher over the given certificate files.
// Empty paths are skipped; caFile is optional outside mutual TLS.
func NewCertWatcher(certFile, keyFile, caFile string, debounce time.Duration, reload func(), logger *errors.Logger) (*CertWatcher, error) {
	if debounce <= 0 {
		debounce = time.Second
	}

	var paths []string
	for _, p := range []string{certFile, keyFile, caFile} {
		if p != "" {
			paths = append(paths, p)
		}
	}

	return &CertWatcher{
		paths:    paths,
		modTimes: make(map[string]time.Time),
		debounce: debounce,
		reload:   reload,
		logger:   logger,
		stop:     make(chan struct{}),
	}, nil
}

// Start registers the files with fsnotify and begins the event loop
func (cw *CertWatcher) Start() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if cw.running {
		return fmt.Errorf("certificate watcher is already running")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	cw.fsWatcher = fsw

	for _, p := range cw.paths {
		if stat, err := os.Stat(p); err == nil {
			cw.modTimes[p] = stat.ModTime()
		}
		if err := fsw.Add(p); err != nil && !os.IsNotExist(err) {
			cw.logger.Warn("Failed to watch certificate file", "file", p, "error", err)
		}
		// The directory watch also covers files that do not exist yet
		if err := fsw.Add(filepath.Dir(p)); err != nil {
			cw.logger.Warn("Failed to watch certificate directory",
				"directory", filepath.Dir(p), "error", err)
		}
	}

	cw.running = true
	go cw.watchLoop()

	cw.logger.Info("Certificate file watcher started",
		"files", cw.paths, "debounce_delay", cw.debounce)
	return nil
}

// Stop shuts down the event loop and releases the fsnotify watcher
func (cw *CertWatcher) Stop() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if !cw.running {
		return nil
	}

	close(cw.stop)
	if cw.timer != nil {
		cw.timer.Stop()
	}
	if err := cw.fsWatcher.Close(); err != nil {
		cw.logger.LogError(err, "Failed to close file system watcher")
		return err
	}

	cw.running = false
	cw.logger.Info("Certificate file watcher stopped")
	return nil
}

// IsRunning reports whether the event loop is active
func (cw *CertWatcher) IsRunning() bool {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	return cw.running
}

// GetWatchedFiles returns the certificate files under watch
func (cw *CertWatcher) GetWatchedFiles() []string {
	return append([]string(nil), cw.paths...)
}

func (cw *CertWatcher) watchLoop() {
	for {
		select {
		case event, ok := <-cw.fsWatcher.Events:
			if !ok {
				return
			}
			if cw.matchesWatchedFile(event) {
				cw.scheduleReload()
			}

		case err, ok := <-cw.fsWatcher.Errors:
			if !ok {
				return
			}
			cw.logger.LogError(err, "File watcher error")

		case <-cw.stop:
			return
		}
	}
}

// matchesWatchedFile accepts write, create and rename events on a watched
// file. Directory events are matched by base name so atomic writes count.
func (cw *CertWatcher) matchesWatchedFile(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	for _, p := range cw.paths {
		if event.Name == p || filepath.Base(event.Name) == filepath.Base(p) {
			return true
		}
	}
	return false
}

// scheduleReload restarts the debounce timer; the reload fires only after
// events have settled and a mod time actually moved
func (cw *CertWatcher) scheduleReload() {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if cw.timer != nil {
		cw.timer.Stop()
	}
	cw.timer = time.AfterFunc(cw.debounce, func() {
		if cw.anyFileChanged() {
			cw.logger.Info("Certificate files changed, triggering reload")
			cw.reload()
		}
	})
}

func (cw *CertWatcher) anyFileChanged() bool {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	changed := false
	for _, p := range cw.paths {
		stat, err := os.Stat(p)
		if err != nil {
			if _, seen := cw.modTimes[p]; seen && os.IsNotExist(err) {
				delete(cw.modTimes, p)
				changed = true
			}
			continue
		}
		if last, seen := cw.modTimes[p]; !seen || stat.ModTime().After(last) {
			cw.modTimes[p] = stat.ModTime()
			changed = true
		}
	}
	return changed
}
