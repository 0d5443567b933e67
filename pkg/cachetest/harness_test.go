package cachetest

import (
	"fmt"
	"testing"

	"github.com/vango-dev/vcache/pkg/store"
)

type item struct{ A, B int }

func TestHarnessDeferredRenders(t *testing.T) {
	h := New(t)
	h.Seed("foo", &item{1, 2})

	var shown string
	comp := h.Mount(func(b *store.Binding) {
		v, _ := b.Get("foo")
		shown = fmt.Sprint(v)
	})
	h.ExpectRenders(comp, 1)

	h.MustSet("foo", &item{2, 3})
	if shown != "&{1 2}" {
		t.Errorf("render should wait for Flush, shown = %q", shown)
	}

	if n := h.Flush(); n != 1 {
		t.Errorf("Flush = %d, want 1", n)
	}
	if shown != "&{2 3}" {
		t.Errorf("shown = %q after flush", shown)
	}
	h.ExpectRenders(comp, 2)
}

func TestHarnessSeedDoesNotRender(t *testing.T) {
	h := New(t)
	comp := h.Mount(func(*store.Binding) {})

	h.Seed("a", 1)
	h.Flush()

	h.ExpectRenders(comp, 1)
	if v, ok := h.Peek("a"); !ok || v != 1 {
		t.Errorf("Peek = (%v, %v)", v, ok)
	}

	h.Reset()
	h.ExpectAbsent("a")
}

func TestHarnessImmediate(t *testing.T) {
	h := New(t, Immediate())
	comp := h.Mount(func(*store.Binding) {})

	v := &item{}
	h.MustSet("k", v)

	h.ExpectRenders(comp, 2)
	h.ExpectValue("k", v)
}

func TestHarnessUnmountBeforeFlush(t *testing.T) {
	h := New(t)
	comp := h.Mount(func(*store.Binding) {})

	h.MustSet("k", &item{})
	comp.Unmount()
	h.Flush()

	h.ExpectRenders(comp, 1)
}

func TestHarnessProvidesCache(t *testing.T) {
	h := New(t)
	if store.From(h.Root) != h.Cache {
		t.Error("harness root should provide the cache")
	}
}
