package devtools

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/vcache/pkg/reactive"
	"github.com/vango-dev/vcache/pkg/store"
)

const (
	watchWriteTimeout = 10 * time.Second
	watchReadLimit    = 512
)

// Frame types sent on /watch.
const (
	FrameHello      = "hello"
	FrameInvalidate = "invalidate"
)

// Frame is one JSON message on a /watch connection.
type Frame struct {
	Type     string   `json:"type"`
	Binding  uint64   `json:"binding"`
	Version  uint64   `json:"version"`
	Keys     []string `json:"keys"`
	Bindings int      `json:"bindings"`
}

func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	_, end := s.startSpan(r, "vcache.watch")

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		end(err)
		return
	}
	end(nil)
	defer conn.Close()

	owner := reactive.NewOwner(s.root)
	defer owner.Dispose()

	closing := make(chan struct{})
	owner.OnCleanup(func() { close(closing) })

	// Coalesce: a render that finds a signal already pending drops its own.
	dirty := make(chan struct{}, 1)
	b, err := store.Use(owner, func() {
		select {
		case dirty <- struct{}{}:
		default:
		}
	}, store.OnScheduler(store.Immediate), store.Named("devtools-watch"))
	if err != nil {
		s.logger.Error("watch bind failed", "error", err)
		return
	}

	s.logger.Debug("watch connected", "binding", b.ID(), "remote", r.RemoteAddr)

	if err := s.writeFrame(conn, b, FrameHello); err != nil {
		return
	}

	// The reader only detects the peer going away; clients send nothing.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		conn.SetReadLimit(watchReadLimit)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err,
					websocket.CloseGoingAway,
					websocket.CloseAbnormalClosure,
					websocket.CloseNormalClosure) {
					s.logger.Warn("watch read error", "error", err)
				}
				return
			}
		}
	}()

	ping := time.NewTicker(s.pingInterval)
	defer ping.Stop()

	for {
		select {
		case <-dirty:
			if err := s.writeFrame(conn, b, FrameInvalidate); err != nil {
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(watchWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-gone:
			s.logger.Debug("watch disconnected", "binding", b.ID())
			return
		case <-closing:
			conn.SetWriteDeadline(time.Now().Add(watchWriteTimeout))
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			return
		}
	}
}

func (s *Server) writeFrame(conn *websocket.Conn, b *store.Binding, typ string) error {
	frame := Frame{
		Type:     typ,
		Binding:  b.ID(),
		Version:  b.Version(),
		Keys:     s.cache.Keys(),
		Bindings: s.cache.BindingCount(),
	}
	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}

	conn.SetWriteDeadline(time.Now().Add(watchWriteTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		s.logger.Debug("watch write failed", "binding", b.ID(), "error", err)
		return err
	}
	return nil
}
