package vault

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/moxide/internal/config"
	"github.com/starford/moxide/internal/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func tempStore(t *testing.T, files map[string]string) (string, *storage.FS) {
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

func TestBuild(t *testing.T) {
	root, store := tempStore(t, map[string]string{
		"A.md":     "# Alpha\n",
		"sub/B.md": "[[A]]\n",
	})

	v, err := Build(context.Background(), store, root, config.NewDefaultSettings(), testLogger())
	if err != nil {
		t.Fatal(err)
	}
	if len(v.Paths()) != 2 {
		t.Fatalf("paths = %v", v.Paths())
	}
	if f := v.File("sub/B.md"); f == nil || len(f.References) != 1 {
		t.Errorf("sub/B.md = %+v", f)
	}
}

func TestRebuild_ReconcilesDisk(t *testing.T) {
	root, store := tempStore(t, map[string]string{
		"A.md": "one\n",
		"B.md": "two\n",
	})
	v, err := Build(context.Background(), store, root, config.NewDefaultSettings(), testLogger())
	if err != nil {
		t.Fatal(err)
	}

	if err := os.Remove(filepath.Join(root, "B.md")); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "C.md"), []byte("three\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := v.Rebuild(store, testLogger()); err != nil {
		t.Fatal(err)
	}

	if v.File("B.md") != nil {
		t.Error("removed file still present")
	}
	if v.File("C.md") == nil {
		t.Error("new file not picked up")
	}
}

func TestRebuild_KeepsOpenBuffers(t *testing.T) {
	root, store := tempStore(t, map[string]string{"A.md": "disk\n"})
	v, err := Build(context.Background(), store, root, config.NewDefaultSettings(), testLogger())
	if err != nil {
		t.Fatal(err)
	}

	buf := NewParsedFile("A.md", "buffer\n", v.File("A.md").ModTime)
	buf.Open = true
	v.Install(buf)

	if err := v.Rebuild(store, testLogger()); err != nil {
		t.Fatal(err)
	}
	if v.File("A.md").Text != "buffer\n" {
		t.Error("rebuild clobbered open buffer")
	}
}
