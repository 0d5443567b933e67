package devtools

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"

	"github.com/vango-dev/vcache/internal/errors"
	"github.com/vango-dev/vcache/pkg/snapshot"
	"github.com/vango-dev/vcache/pkg/store"
)

// maxBodyBytes caps PUT /keys bodies.
const maxBodyBytes = 1 << 20

type keysResponse struct {
	Keys     []string `json:"keys"`
	Bindings int      `json:"bindings"`
}

type entryResponse struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

type writeResponse struct {
	Key        string `json:"key"`
	SkipUpdate bool   `json:"skipUpdate"`
}

func (s *Server) handleListKeys(w http.ResponseWriter, r *http.Request) {
	_, end := s.startSpan(r, "vcache.keys")
	keys := s.cache.Keys()
	end(nil)

	writeJSON(w, http.StatusOK, keysResponse{Keys: keys, Bindings: s.cache.BindingCount()})
}

func (s *Server) handleGetKey(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	_, end := s.startSpan(r, "vcache.get", attribute.String("vcache.key", key))

	value, ok := s.cache.Get(key)
	if !ok {
		err := errors.New("C031").WithDetail("key %q", key)
		end(err)
		writeError(w, http.StatusNotFound, err)
		return
	}

	raw, err := json.Marshal(value)
	if err != nil {
		err = errors.New("C011").WithDetail("key %q", key).Wrap(err)
		end(err)
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	end(nil)

	writeJSON(w, http.StatusOK, entryResponse{Key: key, Value: raw})
}

func (s *Server) handlePutKey(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	skip := parseBool(r.URL.Query().Get("skipUpdate"))
	_, end := s.startSpan(r, "vcache.set",
		attribute.String("vcache.key", key),
		attribute.Bool("vcache.skip_update", skip))

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		err = errors.New("C030").Wrap(err)
		end(err)
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var value any
	if err := json.Unmarshal(body, &value); err != nil {
		err = errors.New("C030").WithDetail("body is not valid JSON").Wrap(err)
		end(err)
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.cache.Set(key, value, store.SkipUpdateIf(skip)); err != nil {
		end(err)
		writeError(w, http.StatusBadRequest, err)
		return
	}
	end(nil)

	writeJSON(w, http.StatusOK, writeResponse{Key: key, SkipUpdate: skip})
}

func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	ctx, end := s.startSpan(r, "vcache.snapshot.list")

	names, err := s.snapshots.List(ctx)
	end(err)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"snapshots": names})
}

func (s *Server) handleSaveSnapshot(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	ctx, end := s.startSpan(r, "vcache.snapshot.save", attribute.String("vcache.snapshot", name))

	err := snapshot.Save(ctx, s.snapshots, name, s.cache, snapshot.SkipUnencodable())
	end(err)
	if err != nil {
		writeError(w, snapshotStatus(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"snapshot": name})
}

func (s *Server) handleRestoreSnapshot(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	skip := parseBool(r.URL.Query().Get("skipUpdate"))
	ctx, end := s.startSpan(r, "vcache.snapshot.restore",
		attribute.String("vcache.snapshot", name),
		attribute.Bool("vcache.skip_update", skip))

	err := snapshot.Load(ctx, s.snapshots, name, s.cache, store.SkipUpdateIf(skip))
	end(err)
	if err != nil {
		writeError(w, snapshotStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"snapshot": name, "keys": s.cache.Len()})
}

func snapshotStatus(err error) int {
	switch {
	case errors.Is(err, snapshot.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, snapshot.ErrEncode):
		return http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrEmptyKey):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

// parseBool accepts "1", "true" and friends; anything else is false.
func parseBool(s string) bool {
	v, err := strconv.ParseBool(s)
	return err == nil && v
}
