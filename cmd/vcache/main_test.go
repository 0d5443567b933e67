package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/vango-dev/vcache/internal/errors"
	"github.com/vango-dev/vcache/pkg/devtools"
	"github.com/vango-dev/vcache/pkg/snapshot"
	"github.com/vango-dev/vcache/pkg/store"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

// writeConfig writes a vcache.json with a disk backend under dir and
// returns its path and the backend.
func writeConfig(t *testing.T, dir string) (string, *snapshot.DiskBackend) {
	t.Helper()

	path := filepath.Join(dir, "vcache.json")
	if err := os.WriteFile(path, []byte(`{"snapshot": {"dir": "snaps", "name": "main"}}`), 0644); err != nil {
		t.Fatal(err)
	}
	backend, err := snapshot.NewDiskBackend(filepath.Join(dir, "snaps"))
	if err != nil {
		t.Fatal(err)
	}
	return path, backend
}

func TestVersionShort(t *testing.T) {
	out, err := run(t, "version", "--short")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if out != "dev\n" {
		t.Errorf("output = %q, want %q", out, "dev\n")
	}
}

func TestVersionLong(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	for _, want := range []string{"Version:", "Go version:", "OS/Arch:"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestMissingExplicitConfig(t *testing.T) {
	_, err := run(t, "snapshot", "list", "--config", filepath.Join(t.TempDir(), "nope.json"))
	if errors.CodeOf(err) != "C021" {
		t.Errorf("err = %v, want C021", err)
	}
}

func TestSnapshotListAndShow(t *testing.T) {
	dir := t.TempDir()
	path, backend := writeConfig(t, dir)

	c := store.New()
	c.Set("ui/theme", "dark")
	c.Set("count", 3)
	if err := snapshot.Save(context.Background(), backend, "main", c); err != nil {
		t.Fatalf("Save: %v", err)
	}

	out, err := run(t, "snapshot", "list", "-c", path)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if strings.TrimSpace(out) != "main" {
		t.Errorf("list output = %q", out)
	}

	out, err = run(t, "snapshot", "show", "-c", path)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.Contains(out, "2 entries") || !strings.Contains(out, `"dark"`) {
		t.Errorf("show output:\n%s", out)
	}
}

func TestSnapshotShowMissing(t *testing.T) {
	path, _ := writeConfig(t, t.TempDir())

	_, err := run(t, "snapshot", "show", "ghost", "-c", path)
	if !errors.Is(err, snapshot.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSnapshotSaveAndRestoreRemote(t *testing.T) {
	path, backend := writeConfig(t, t.TempDir())

	c := store.New()
	c.Set("a", "x")
	srv := devtools.New(c, devtools.WithSnapshots(backend))
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()
	defer srv.Close()

	out, err := run(t, "snapshot", "save", "s1", "-c", path, "--addr", ts.URL)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.Contains(out, "Saved s1") {
		t.Errorf("save output = %q", out)
	}

	store.DangerClear(c)
	var renders atomic.Int32
	b := c.Bind(func() { renders.Add(1) })
	defer b.Close()

	if _, err := run(t, "snapshot", "restore", "s1", "-c", path, "--addr", ts.URL, "--skip-update"); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if v, _ := c.Get("a"); v != "x" {
		t.Errorf("a = %v after restore", v)
	}
	if n := renders.Load(); n != 0 {
		t.Errorf("renders = %d, want 0 with --skip-update", n)
	}

	_, err = run(t, "snapshot", "restore", "missing", "-c", path, "--addr", ts.URL)
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("restore missing err = %v", err)
	}
}

func TestInspectorURL(t *testing.T) {
	tests := []struct {
		addr string
		want string
	}{
		{"localhost:7070", "http://localhost:7070"},
		{"http://127.0.0.1:1/", "http://127.0.0.1:1"},
		{"https://cache.internal", "https://cache.internal"},
	}
	for _, tt := range tests {
		if got := inspectorURL(tt.addr); got != tt.want {
			t.Errorf("inspectorURL(%q) = %q, want %q", tt.addr, got, tt.want)
		}
	}
}
