package ingest

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/personal-ledger/ledger-backend/constants"
)

// WatchConfig controls drop-directory discovery.
type WatchConfig struct {
	// Dir is the directory to watch, recursively.
	Dir string
	// InitialScan emits documents already present under Dir before any
	// filesystem events flow.
	InitialScan bool
	// Debounce coalesces rapid write bursts for the same document.
	Debounce time.Duration
}

// StartWatcher watches cfg.Dir for import documents and emits their paths on
// the returned channel. The channel closes when ctx is cancelled. Watcher
// errors after startup are logged, not fatal.
func StartWatcher(ctx context.Context, cfg WatchConfig, logger *slog.Logger) (<-chan string, error) {
	if strings.TrimSpace(cfg.Dir) == "" {
		return nil, errors.New("watch dir is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	events := make(chan string, 256)
	emit := func(path string) {
		select {
		case events <- path:
		default:
			logger.Warn("import event dropped, channel full", "path", path)
		}
	}

	// Watch every directory under the root. With InitialScan set, documents
	// already on disk are emitted too, so drops made while the process was
	// down are not lost.
	err = filepath.WalkDir(cfg.Dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return w.Add(path)
		}
		if cfg.InitialScan && IsImportDocument(path) {
			emit(path)
		}
		return nil
	})
	if err != nil {
		_ = w.Close()
		return nil, err
	}

	go func() {
		defer close(events)
		defer func() {
			if err := w.Close(); err != nil {
				logger.Warn("closing import watcher", "error", err)
			}
		}()

		var (
			timer  *time.Timer
			timerC <-chan time.Time
		)
		pending := map[string]struct{}{}
		flush := func() {
			for p := range pending {
				emit(p)
				delete(pending, p)
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case <-timerC:
				timerC = nil
				flush()
			case e, ok := <-w.Events:
				if !ok {
					return
				}
				if e.Op&fsnotify.Create != 0 {
					// Directories created under the root join the watch.
					if fi, err := os.Stat(e.Name); err == nil && fi.IsDir() {
						if err := w.Add(e.Name); err != nil {
							logger.Warn("failed to watch new directory", "path", e.Name, "error", err)
						}
					}
				}
				if !IsImportDocument(e.Name) || e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
					continue
				}
				pending[e.Name] = struct{}{}
				if cfg.Debounce <= 0 {
					flush()
					continue
				}
				if timer == nil {
					timer = time.NewTimer(cfg.Debounce)
				} else {
					if !timer.Stop() {
						select {
						case <-timer.C:
						default:
						}
					}
					timer.Reset(cfg.Debounce)
				}
				timerC = timer.C
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Error("import watcher error", "error", err)
			}
		}
	}()

	return events, nil
}

// IsImportDocument reports whether path carries an extension the importer
// accepts.
func IsImportDocument(path string) bool {
	ext := constants.NormalizeExt(filepath.Ext(path))
	_, ok := constants.ImportExtensions[ext]
	return ok
}
