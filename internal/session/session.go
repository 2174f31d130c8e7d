// Package session owns the shared Vault behind a reader-writer discipline.
// Document lifecycle events and filesystem events are serialized writers;
// feature queries run concurrently as readers. Open editor buffers are
// authoritative over disk until they close.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/starford/moxide/internal/config"
	"github.com/starford/moxide/internal/parser"
	"github.com/starford/moxide/internal/storage"
	"github.com/starford/moxide/internal/vault"
)

// ChangeListener is notified (outside the write lock) after each vault
// mutation, with the paths that changed.
type ChangeListener func(paths []string)

// Session holds the Vault and serialises access to it.
type Session struct {
	mu       sync.RWMutex
	vault    *vault.Vault
	store    storage.Provider
	settings *config.Settings
	logger   *slog.Logger
	open     map[string]struct{}
	onChange ChangeListener
}

// New creates a Session around an already-built vault.
func New(v *vault.Vault, store storage.Provider, settings *config.Settings, logger *slog.Logger) *Session {
	return &Session{
		vault:    v,
		store:    store,
		settings: settings,
		logger:   logger,
		open:     make(map[string]struct{}),
	}
}

// Settings returns the merged configuration.
func (s *Session) Settings() *config.Settings { return s.settings }

// OnChange registers the listener notified after vault mutations.
func (s *Session) OnChange(fn ChangeListener) { s.onChange = fn }

// WithRead runs fn with a shared read view of the vault. The view includes
// all writes completed before the lock was acquired; fn must not mutate.
func (s *Session) WithRead(fn func(v *vault.Vault)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.vault)
}

func (s *Session) notify(paths ...string) {
	if s.onChange != nil && len(paths) > 0 {
		s.onChange(paths)
	}
}

// OpenDocument installs a ParsedFile for an in-editor buffer, superseding
// any prior version. The buffer is authoritative until closed.
func (s *Session) OpenDocument(path, text string) {
	s.mu.Lock()
	f := vault.NewParsedFile(path, text, time.Now())
	f.Open = true
	s.vault.Install(f)
	s.open[path] = struct{}{}
	s.mu.Unlock()
	s.notify(path)
}

// ChangeDocument applies incremental content changes, in delivery order,
// to an open buffer. A nil rng replaces the whole text.
func (s *Session) ChangeDocument(path string, changes []Change) {
	s.mu.Lock()
	f := s.vault.File(path)
	if f == nil {
		s.mu.Unlock()
		s.logger.Warn("session: change for unknown document", slog.String("path", path))
		return
	}
	text := f.Text
	for _, ch := range changes {
		text = ch.apply(text)
	}
	nf := vault.NewParsedFile(path, text, time.Now())
	nf.Open = true
	s.vault.Install(nf)
	s.open[path] = struct{}{}
	s.mu.Unlock()
	s.notify(path)
}

// CloseDocument releases the buffer claim on path. The on-disk content, if
// any, becomes authoritative again; a deleted file drops out of the vault.
func (s *Session) CloseDocument(path string) {
	s.mu.Lock()
	delete(s.open, path)
	if f := s.vault.File(path); f != nil {
		f.Open = false
		data, err := s.store.Read(path)
		if err != nil {
			s.vault.Remove(path)
		} else {
			s.vault.Install(vault.NewParsedFile(path, string(data), time.Now()))
		}
	}
	s.mu.Unlock()
	s.notify(path)
}

// IsOpen reports whether an editor buffer claims path.
func (s *Session) IsOpen(path string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.open[path]
	return ok
}

// FsEvent applies a filesystem change. Events for paths currently open as
// editor buffers are ignored; the buffer is authoritative. An empty path
// triggers a full reconcile against disk.
func (s *Session) FsEvent(kind, path string) {
	if path == "" {
		s.reconcile()
		return
	}
	if s.IsOpen(path) {
		return
	}

	s.mu.Lock()
	switch kind {
	case vault.EventDeleted:
		s.vault.Remove(path)
	default:
		data, err := s.store.Read(path)
		if err != nil {
			s.logger.Warn("session: fs read failed",
				slog.String("path", path),
				slog.String("error", err.Error()))
			s.mu.Unlock()
			return
		}
		s.vault.Install(vault.NewParsedFile(path, string(data), time.Now()))
	}
	s.mu.Unlock()
	s.notify(path)
}

func (s *Session) reconcile() {
	s.mu.Lock()
	err := s.vault.Rebuild(s.store, s.logger)
	paths := s.vault.Paths()
	s.mu.Unlock()
	if err != nil {
		s.logger.Warn("session: reconcile failed", slog.String("error", err.Error()))
		return
	}
	s.notify(paths...)
}

// Watch runs the filesystem watcher until ctx is cancelled, funneling
// events through the session so the vault stays the single source of
// truth.
func (s *Session) Watch(ctx context.Context, root string) error {
	ignored := func(name string) bool {
		for _, dir := range s.settings.IgnoreDirs {
			if name == dir {
				return true
			}
		}
		return false
	}
	return vault.Watch(ctx, root, ignored, s.logger, s.FsEvent)
}

// Change is one incremental document edit: replace Rng with Text, or the
// whole document when Rng is nil.
type Change struct {
	Rng  *parser.Range
	Text string
}

func (c Change) apply(text string) string {
	if c.Rng == nil {
		return c.Text
	}
	start := parser.OffsetOf(text, c.Rng.Start)
	end := parser.OffsetOf(text, c.Rng.End)
	if end < start {
		start, end = end, start
	}
	return text[:start] + c.Text + text[end:]
}
