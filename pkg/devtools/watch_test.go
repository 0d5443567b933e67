package devtools

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/vcache/pkg/store"
)

func dialWatch(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/watch"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var f Frame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	return f
}

func waitFor(t *testing.T, cond func() bool, what string) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestWatchStreamsInvalidations(t *testing.T) {
	c := store.New()
	_, ts := newTestServer(t, c)
	conn := dialWatch(t, ts)

	hello := readFrame(t, conn)
	if hello.Type != FrameHello || hello.Version != 0 {
		t.Fatalf("hello = %+v", hello)
	}
	if c.BindingCount() != 1 {
		t.Fatalf("BindingCount = %d, want 1", c.BindingCount())
	}

	// A suppressed write produces no frame, so the next frame is the
	// first notification.
	if status, _ := do(t, http.MethodPut, ts.URL+"/keys/quiet?skipUpdate=true", `1`); status != http.StatusOK {
		t.Fatalf("PUT status = %d", status)
	}
	c.Set("loud", &struct{}{})

	f := readFrame(t, conn)
	if f.Type != FrameInvalidate {
		t.Errorf("Type = %q", f.Type)
	}
	if f.Version != 1 {
		t.Errorf("Version = %d, want 1", f.Version)
	}
	if f.Binding != hello.Binding {
		t.Errorf("Binding = %d, want %d", f.Binding, hello.Binding)
	}
	if strings.Join(f.Keys, ",") != "loud,quiet" {
		t.Errorf("Keys = %v", f.Keys)
	}
}

func TestWatchUnchangedWriteIsSilent(t *testing.T) {
	c := store.New()
	v := &struct{ N int }{1}
	c.Set("k", v)

	_, ts := newTestServer(t, c)
	conn := dialWatch(t, ts)
	readFrame(t, conn)

	c.Set("k", v)
	c.Set("k", &struct{ N int }{2})

	if f := readFrame(t, conn); f.Version != 1 {
		t.Errorf("Version = %d, want 1 (same-reference write must not notify)", f.Version)
	}
}

func TestWatchDisconnectClosesBinding(t *testing.T) {
	c := store.New()
	_, ts := newTestServer(t, c)
	conn := dialWatch(t, ts)
	readFrame(t, conn)

	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	conn.Close()

	waitFor(t, func() bool { return c.BindingCount() == 0 }, "binding to close")

	// Writes after the consumer is gone are harmless.
	if err := c.Set("after", 1); err != nil {
		t.Errorf("Set after disconnect: %v", err)
	}
}

func TestServerCloseEndsWatch(t *testing.T) {
	c := store.New()
	s, ts := newTestServer(t, c)
	conn := dialWatch(t, ts)
	readFrame(t, conn)

	s.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseGoingAway) {
		t.Errorf("ReadMessage err = %v, want going-away close", err)
	}
	waitFor(t, func() bool { return c.BindingCount() == 0 }, "binding to close")
}
