package devtools

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/vcache/pkg/metrics"
	"github.com/vango-dev/vcache/pkg/snapshot"
	"github.com/vango-dev/vcache/pkg/store"
)

func newTestServer(t *testing.T, c *store.Cache, opts ...Option) (*Server, *httptest.Server) {
	t.Helper()
	s := New(c, opts...)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		s.Close()
		ts.Close()
	})
	return s, ts
}

func do(t *testing.T, method, url, body string) (int, []byte) {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, data
}

func TestHealthz(t *testing.T) {
	_, ts := newTestServer(t, store.New())

	status, body := do(t, http.MethodGet, ts.URL+"/healthz", "")
	if status != http.StatusOK || string(body) != "ok" {
		t.Errorf("healthz = %d %q", status, body)
	}
}

func TestPutThenGet(t *testing.T) {
	c := store.New()
	_, ts := newTestServer(t, c)

	status, _ := do(t, http.MethodPut, ts.URL+"/keys/ui/theme", `"dark"`)
	if status != http.StatusOK {
		t.Fatalf("PUT status = %d", status)
	}

	if v, ok := c.Get("ui/theme"); !ok || v != "dark" {
		t.Errorf("cache value = %v, %v", v, ok)
	}

	status, body := do(t, http.MethodGet, ts.URL+"/keys/ui/theme", "")
	if status != http.StatusOK {
		t.Fatalf("GET status = %d", status)
	}
	var entry entryResponse
	if err := json.Unmarshal(body, &entry); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if entry.Key != "ui/theme" || string(entry.Value) != `"dark"` {
		t.Errorf("entry = %+v", entry)
	}
}

func TestGetMissingKey(t *testing.T) {
	_, ts := newTestServer(t, store.New())

	status, body := do(t, http.MethodGet, ts.URL+"/keys/nope", "")
	if status != http.StatusNotFound {
		t.Fatalf("status = %d", status)
	}
	var e errorBody
	json.Unmarshal(body, &e)
	if e.Code != "C031" {
		t.Errorf("code = %q, want C031", e.Code)
	}
}

func TestGetUnencodableValue(t *testing.T) {
	c := store.New()
	c.Set("fn", func() {})
	_, ts := newTestServer(t, c)

	status, _ := do(t, http.MethodGet, ts.URL+"/keys/fn", "")
	if status != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", status)
	}
}

func TestPutInvalidBody(t *testing.T) {
	c := store.New()
	_, ts := newTestServer(t, c)

	status, body := do(t, http.MethodPut, ts.URL+"/keys/a", `{not json`)
	if status != http.StatusBadRequest {
		t.Fatalf("status = %d", status)
	}
	var e errorBody
	json.Unmarshal(body, &e)
	if e.Code != "C030" {
		t.Errorf("code = %q, want C030", e.Code)
	}
	if c.Has("a") {
		t.Error("invalid body must not write")
	}
}

func TestPutSkipUpdate(t *testing.T) {
	c := store.New()
	var renders atomic.Int32
	b := c.Bind(func() { renders.Add(1) })
	defer b.Close()

	_, ts := newTestServer(t, c)

	do(t, http.MethodPut, ts.URL+"/keys/count?skipUpdate=1", `1`)
	if renders.Load() != 0 {
		t.Errorf("renders after skipUpdate = %d, want 0", renders.Load())
	}
	if v, _ := c.Get("count"); v != float64(1) {
		t.Errorf("count = %v, want 1", v)
	}

	do(t, http.MethodPut, ts.URL+"/keys/count", `2`)
	if renders.Load() != 1 {
		t.Errorf("renders = %d, want 1", renders.Load())
	}
}

func TestListKeys(t *testing.T) {
	c := store.New()
	c.Set("b", 1)
	c.Set("a", 2)
	b := c.Bind(nil)
	defer b.Close()

	_, ts := newTestServer(t, c)

	_, body := do(t, http.MethodGet, ts.URL+"/keys", "")
	var got keysResponse
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if strings.Join(got.Keys, ",") != "a,b" {
		t.Errorf("keys = %v", got.Keys)
	}
	if got.Bindings != 1 {
		t.Errorf("bindings = %d, want 1", got.Bindings)
	}
}

func TestMetricsRoute(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := store.New()
	_, stop := metrics.Register(c, metrics.WithRegistry(reg))
	defer stop()
	c.Set("a", 1)

	_, ts := newTestServer(t, c, WithMetrics(promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), "/metrics"))

	status, body := do(t, http.MethodGet, ts.URL+"/metrics", "")
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if !strings.Contains(string(body), "vcache_keys 1") {
		t.Errorf("metrics output missing vcache_keys:\n%s", body)
	}
}

func TestSnapshotRoutes(t *testing.T) {
	backend, err := snapshot.NewDiskBackend(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskBackend: %v", err)
	}

	c := store.New()
	c.Set("a", "x")
	_, ts := newTestServer(t, c, WithSnapshots(backend))

	if status, body := do(t, http.MethodPost, ts.URL+"/snapshots/s1", ""); status != http.StatusCreated {
		t.Fatalf("save = %d %s", status, body)
	}

	_, body := do(t, http.MethodGet, ts.URL+"/snapshots", "")
	if !strings.Contains(string(body), `"s1"`) {
		t.Errorf("list = %s", body)
	}

	store.DangerClear(c)

	if status, body := do(t, http.MethodPost, ts.URL+"/snapshots/s1/restore", ""); status != http.StatusOK {
		t.Fatalf("restore = %d %s", status, body)
	}
	if v, _ := c.Get("a"); v != "x" {
		t.Errorf("a = %v after restore", v)
	}

	if status, _ := do(t, http.MethodPost, ts.URL+"/snapshots/missing/restore", ""); status != http.StatusNotFound {
		t.Errorf("restore missing = %d, want 404", status)
	}
}

func TestSnapshotRoutesDisabled(t *testing.T) {
	_, ts := newTestServer(t, store.New())

	if status, _ := do(t, http.MethodGet, ts.URL+"/snapshots", ""); status != http.StatusNotFound {
		t.Errorf("status = %d, want 404 without a backend", status)
	}
}
