package snapshot

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/vango-dev/vcache/pkg/store"
)

func TestCaptureSortedAndFiltered(t *testing.T) {
	c := store.New()
	c.Set("ui/b", 2)
	c.Set("ui/a", map[string]int{"x": 1})
	c.Set("other", "skip me")

	snap, err := Capture(c, WithPrefix("ui/"))
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}

	if len(snap.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(snap.Entries))
	}
	if snap.Entries[0].Key != "ui/a" || snap.Entries[1].Key != "ui/b" {
		t.Errorf("entries not sorted: %+v", snap.Entries)
	}
	if string(snap.Entries[0].Value) != `{"x":1}` {
		t.Errorf("value = %s", snap.Entries[0].Value)
	}
	if snap.Version != FormatVersion {
		t.Errorf("Version = %d", snap.Version)
	}
}

func TestCaptureUnencodable(t *testing.T) {
	c := store.New()
	c.Set("fn", func() {})
	c.Set("ok", 1)

	if _, err := Capture(c); !stderrors.Is(err, ErrEncode) {
		t.Errorf("Capture err = %v, want ErrEncode", err)
	}

	snap, err := Capture(c, SkipUnencodable())
	if err != nil {
		t.Fatalf("Capture with SkipUnencodable: %v", err)
	}
	if len(snap.Entries) != 1 || snap.Entries[0].Key != "ok" {
		t.Errorf("entries = %+v", snap.Entries)
	}
}

func TestRestoreNotifiesOnce(t *testing.T) {
	src := store.New()
	src.Set("a", "x")
	src.Set("b", []int{1, 2})

	snap, err := Capture(src)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}

	dst := store.New()
	renders := 0
	b := dst.Bind(func() { renders++ })
	defer b.Close()

	if err := Restore(dst, snap); err != nil {
		t.Fatalf("Restore: %v", err)
	}

	if renders != 1 {
		t.Errorf("renders = %d, want 1", renders)
	}
	if v, _ := dst.Get("a"); v != "x" {
		t.Errorf("a = %v", v)
	}
	if v, _ := dst.Get("b"); len(v.([]any)) != 2 {
		t.Errorf("b = %v", v)
	}
}

func TestRestoreSilently(t *testing.T) {
	src := store.New()
	src.Set("a", 1)
	snap, _ := Capture(src)

	dst := store.New()
	renders := 0
	b := dst.Bind(func() { renders++ })
	defer b.Close()

	if err := Restore(dst, snap, store.SkipUpdate()); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if renders != 0 {
		t.Errorf("silent restore rendered %d times", renders)
	}
	if v, _ := dst.Get("a"); v != float64(1) {
		t.Errorf("a = %v (%T), want float64 1", v, v)
	}
}

func TestEncodeDecode(t *testing.T) {
	c := store.New()
	c.Set("k", "v")
	snap, _ := Capture(c)
	snap.TakenAt = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	data, err := Encode(snap)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !got.TakenAt.Equal(snap.TakenAt) || len(got.Entries) != 1 || got.Entries[0].Key != "k" {
		t.Errorf("decoded = %+v", got)
	}

	if _, err := Decode([]byte(`{"version":99,"entries":[]}`)); !stderrors.Is(err, ErrEncode) {
		t.Errorf("unsupported version err = %v", err)
	}
	if _, err := Decode([]byte(`not json`)); !stderrors.Is(err, ErrEncode) {
		t.Errorf("garbage err = %v", err)
	}
}

func TestRestoreRejectsEmptyKey(t *testing.T) {
	snap := &Snapshot{
		Version: FormatVersion,
		Entries: []Entry{{Key: "", Value: []byte(`1`)}},
	}
	if err := Restore(store.New(), snap); !stderrors.Is(err, store.ErrEmptyKey) {
		t.Errorf("err = %v, want ErrEmptyKey", err)
	}
}

func TestSaveLoadDisk(t *testing.T) {
	ctx := context.Background()
	backend, err := NewDiskBackend(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskBackend: %v", err)
	}

	src := store.New()
	src.Set("user", map[string]any{"name": "ada"})
	if err := Save(ctx, backend, "nightly", src); err != nil {
		t.Fatalf("Save: %v", err)
	}

	names, err := backend.List(ctx)
	if err != nil || len(names) != 1 || names[0] != "nightly" {
		t.Fatalf("List = %v, %v", names, err)
	}

	dst := store.New()
	if err := Load(ctx, backend, "nightly", dst); err != nil {
		t.Fatalf("Load: %v", err)
	}
	v, _ := dst.Get("user")
	if v.(map[string]any)["name"] != "ada" {
		t.Errorf("user = %v", v)
	}
}

func TestDiskNotFoundAndInvalidName(t *testing.T) {
	ctx := context.Background()
	backend, _ := NewDiskBackend(t.TempDir())

	if err := Load(ctx, backend, "missing", store.New()); !stderrors.Is(err, ErrNotFound) {
		t.Errorf("missing snapshot err = %v, want ErrNotFound", err)
	}
	for _, name := range []string{"", "../etc", "a/b", ".."} {
		if err := Save(ctx, backend, name, store.New()); !stderrors.Is(err, ErrBackend) {
			t.Errorf("Save(%q) err = %v, want ErrBackend", name, err)
		}
	}
}

func TestDiskCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	backend, _ := NewDiskBackend(t.TempDir())

	if err := backend.Save(ctx, "x", []byte("{}")); !stderrors.Is(err, context.Canceled) {
		t.Errorf("Save err = %v, want context.Canceled", err)
	}
}
