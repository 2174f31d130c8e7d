package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type sample struct {
	Name  string `toml:"name"`
	Count int    `toml:"count"`
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, "name = \"vault\"\ncount = 3\n")
	var got sample
	if err := Load(path, &got); err != nil {
		t.Fatal(err)
	}
	if got.Name != "vault" || got.Count != 3 {
		t.Errorf("got %+v", got)
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("SAMPLE_NAME", "expanded")
	path := writeFile(t, "name = \"${SAMPLE_NAME}\"\n")
	var got sample
	if err := Load(path, &got); err != nil {
		t.Fatal(err)
	}
	if got.Name != "expanded" {
		t.Errorf("name = %q", got.Name)
	}
}

type validated struct {
	Name string `toml:"name"`
}

var errBadName = errors.New("name required")

func (v *validated) Validate() error {
	if v.Name == "" {
		return errBadName
	}
	return nil
}

func TestLoad_Validation(t *testing.T) {
	path := writeFile(t, "name = \"\"\n")
	var got validated
	if err := Load(path, &got); !errors.Is(err, errBadName) {
		t.Errorf("err = %v, want wrapped %v", err, errBadName)
	}
}

func TestLoadIfExists_Missing(t *testing.T) {
	var got sample
	if err := LoadIfExists(filepath.Join(t.TempDir(), "absent.toml"), &got); err != nil {
		t.Errorf("missing file should be a no-op: %v", err)
	}
}
