package descriptor

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// BuildFunc turns a parsed definition into a finished descriptor. The
// builder package provides the usual implementation; holders stay decoupled
// from it so tests can substitute their own.
type BuildFunc func(Definition) (*Descriptor, error)

// Holder provides thread-safe access to a descriptor built from a
// definition file, with hot reload support.
type Holder struct {
	mu       sync.RWMutex
	desc     *Descriptor
	path     string
	build    BuildFunc
	logger   zerolog.Logger
	watcher  *fsnotify.Watcher
	onChange []func(*Descriptor)
	stopCh   chan struct{}
}

// NewHolder parses the definition file, builds the initial descriptor and
// returns a holder for it.
func NewHolder(path string, build BuildFunc, logger zerolog.Logger) (*Holder, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}

	h := &Holder{
		path:   absPath,
		build:  build,
		logger: logger,
		stopCh: make(chan struct{}),
	}

	def, err := ParseFile(absPath)
	if err != nil {
		return nil, err
	}

	desc, err := build(def)
	if err != nil {
		return nil, fmt.Errorf("build descriptor: %w", err)
	}
	h.desc = desc

	return h, nil
}

// Get returns the current descriptor (thread-safe).
func (h *Holder) Get() *Descriptor {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.desc
}

// Reload re-parses the definition file and rebuilds the descriptor.
// Returns an error if parsing or building fails (keeps the old descriptor).
func (h *Holder) Reload() error {
	h.logger.Info().Str("path", h.path).Msg("reloading model definition")

	def, err := ParseFile(h.path)
	if err != nil {
		h.logger.Error().Err(err).Msg("definition reload failed, keeping old descriptor")
		return fmt.Errorf("reload definition: %w", err)
	}

	desc, err := h.build(def)
	if err != nil {
		h.logger.Error().Err(err).Msg("descriptor rebuild failed, keeping old descriptor")
		return fmt.Errorf("rebuild descriptor: %w", err)
	}

	h.mu.Lock()
	old := h.desc
	h.desc = desc
	listeners := h.onChange
	h.mu.Unlock()

	h.logChanges(old, desc)

	for _, fn := range listeners {
		fn(desc)
	}

	h.logger.Info().Str("model", desc.Identity).Msg("model definition reloaded")
	return nil
}

// OnChange registers a callback to be called when the descriptor changes.
func (h *Holder) OnChange(fn func(*Descriptor)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onChange = append(h.onChange, fn)
}

// WatchFile starts watching the definition file for changes.
// Changes trigger automatic reload.
func (h *Holder) WatchFile() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	h.watcher = watcher

	// Watch the directory (more reliable for editors that do atomic saves)
	dir := filepath.Dir(h.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch directory: %w", err)
	}

	go h.watchLoop()

	h.logger.Info().Str("path", h.path).Msg("watching model definition for changes")
	return nil
}

// Stop stops watching for file changes.
func (h *Holder) Stop() {
	close(h.stopCh)
	if h.watcher != nil {
		h.watcher.Close()
	}
}

func (h *Holder) watchLoop() {
	filename := filepath.Base(h.path)

	for {
		select {
		case event, ok := <-h.watcher.Events:
			if !ok {
				return
			}

			// Only react to our definition file
			if filepath.Base(event.Name) != filename {
				continue
			}

			// React to write or create (atomic save = create)
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				h.logger.Debug().
					Str("event", event.Op.String()).
					Str("file", event.Name).
					Msg("model definition changed")

				if err := h.Reload(); err != nil {
					h.logger.Error().Err(err).Msg("file watch reload failed")
				}
			}

		case err, ok := <-h.watcher.Errors:
			if !ok {
				return
			}
			h.logger.Error().Err(err).Msg("file watcher error")

		case <-h.stopCh:
			return
		}
	}
}

func (h *Holder) logChanges(old, new *Descriptor) {
	if old.Identity != new.Identity {
		h.logger.Info().
			Str("old", old.Identity).
			Str("new", new.Identity).
			Msg("model identity changed")
	}

	if len(old.Attributes) != len(new.Attributes) {
		h.logger.Info().
			Int("old", len(old.Attributes)).
			Int("new", len(new.Attributes)).
			Msg("attribute count changed")
	}
}
