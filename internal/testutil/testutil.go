// Package testutil provides shared test helpers for building vaults.
package testutil

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/starford/moxide/internal/config"
	"github.com/starford/moxide/internal/storage"
	"github.com/starford/moxide/internal/vault"
)

// BuildVault constructs an in-memory vault from path → content with
// default settings. Files get mtimes spaced one second apart in sorted
// path order, so later paths are newer and ordering is deterministic.
func BuildVault(t *testing.T, files map[string]string) *vault.Vault {
	t.Helper()
	return BuildVaultWith(t, files, config.NewDefaultSettings())
}

// BuildVaultWith is BuildVault with explicit settings.
func BuildVaultWith(t *testing.T, files map[string]string, settings *config.Settings) *vault.Vault {
	t.Helper()
	v := vault.New("/vault", settings)
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for i, p := range paths {
		v.Install(vault.NewParsedFile(p, files[p], base.Add(time.Duration(i)*time.Second)))
	}
	return v
}

// TempVault writes files into a temporary directory and returns the root
// with a storage provider over it.
func TempVault(t *testing.T, files map[string]string) (string, *storage.FS) {
	t.Helper()
	root := t.TempDir()
	for p, content := range files {
		abs := filepath.Join(root, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	store, err := storage.NewFS(root, []string{".git", ".obsidian"})
	if err != nil {
		t.Fatal(err)
	}
	return root, store
}
