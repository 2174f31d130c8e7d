package vault

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/starford/moxide/internal/config"
	"github.com/starford/moxide/internal/storage"
)

// Build walks the vault root and parses every .md file into a new Vault.
// Files are parsed in parallel; a single poisoned file logs a warning and
// never prevents the rest of the vault from being indexed.
func Build(ctx context.Context, store storage.Provider, root string, settings *config.Settings, logger *slog.Logger) (*Vault, error) {
	metas, err := store.List("")
	if err != nil {
		return nil, err
	}

	v := New(root, settings)
	var mu sync.Mutex

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for _, meta := range metas {
		g.Go(func() error {
			data, readErr := store.Read(meta.Path)
			if readErr != nil {
				logger.Warn("walk: read failed",
					slog.String("path", meta.Path),
					slog.String("error", readErr.Error()))
				return nil
			}
			f := NewParsedFile(meta.Path, string(data), meta.ModTime)
			mu.Lock()
			v.Install(f)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Info("vault: built",
		slog.String("root", root),
		slog.Int("files", len(metas)))
	return v, nil
}

// Rebuild re-walks the root and reconciles an existing vault in place:
// new or changed files are re-parsed, entries without a file on disk are
// dropped. Open buffers are left untouched.
func (v *Vault) Rebuild(store storage.Provider, logger *slog.Logger) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, meta := range metas {
		disk[meta.Path] = struct{}{}
		if old := v.files[meta.Path]; old != nil && (old.Open || old.Digest == meta.Digest) {
			continue
		}
		data, readErr := store.Read(meta.Path)
		if readErr != nil {
			logger.Warn("rebuild: read failed",
				slog.String("path", meta.Path),
				slog.String("error", readErr.Error()))
			continue
		}
		v.Install(NewParsedFile(meta.Path, string(data), meta.ModTime))
	}

	for p := range v.files {
		if _, ok := disk[p]; !ok {
			v.Remove(p)
		}
	}
	return nil
}
