package snapshot

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/vango-dev/vcache/internal/errors"
	"github.com/vango-dev/vcache/pkg/reactive"
	"github.com/vango-dev/vcache/pkg/store"
)

// FormatVersion is the snapshot document version written by Encode.
const FormatVersion = 1

// Sentinel errors.
var (
	ErrNotFound = errors.New("C010")
	ErrEncode   = errors.New("C011")
	ErrBackend  = errors.New("C012")
)

// Snapshot is a point-in-time copy of cache entries.
type Snapshot struct {
	Version int       `json:"version"`
	TakenAt time.Time `json:"taken_at"`
	Entries []Entry   `json:"entries"`
}

// Entry is one captured key and its JSON-encoded value.
type Entry struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// CaptureOption configures Capture.
type CaptureOption func(*captureOptions)

type captureOptions struct {
	prefix          string
	skipUnencodable bool
	now             func() time.Time
}

// WithPrefix captures only keys starting with prefix.
func WithPrefix(prefix string) CaptureOption {
	return func(o *captureOptions) {
		o.prefix = prefix
	}
}

// SkipUnencodable leaves out entries whose value cannot be JSON-encoded
// instead of failing.
func SkipUnencodable() CaptureOption {
	return func(o *captureOptions) {
		o.skipUnencodable = true
	}
}

// Capture copies the cache's entries in key order.
func Capture(c *store.Cache, opts ...CaptureOption) (*Snapshot, error) {
	o := captureOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	snap := &Snapshot{
		Version: FormatVersion,
		TakenAt: o.now().UTC(),
		Entries: []Entry{},
	}

	var captureErr error
	c.Range(func(key string, value any) bool {
		if !strings.HasPrefix(key, o.prefix) {
			return true
		}
		raw, err := json.Marshal(value)
		if err != nil {
			if o.skipUnencodable {
				return true
			}
			captureErr = errors.New("C011").WithDetail("key %q", key).Wrap(err)
			return false
		}
		snap.Entries = append(snap.Entries, Entry{Key: key, Value: raw})
		return true
	})
	if captureErr != nil {
		return nil, captureErr
	}
	return snap, nil
}

// Restore writes every entry into c. Notifications are batched so each
// binding re-renders once. opts apply to every write; pass
// store.SkipUpdate() to restore silently.
func Restore(c *store.Cache, snap *Snapshot, opts ...store.SetOption) error {
	values := make([]any, len(snap.Entries))
	for i, e := range snap.Entries {
		if err := json.Unmarshal(e.Value, &values[i]); err != nil {
			return errors.New("C011").WithDetail("decode key %q", e.Key).Wrap(err)
		}
	}

	var restoreErr error
	reactive.TxNamed("snapshot-restore", func() {
		for i, e := range snap.Entries {
			if err := c.Set(e.Key, values[i], opts...); err != nil {
				restoreErr = err
				return
			}
		}
	})
	return restoreErr
}

// Encode returns the JSON document for snap.
func Encode(snap *Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return nil, errors.New("C011").Wrap(err)
	}
	return buf.Bytes(), nil
}

// Decode parses a document written by Encode.
func Decode(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, errors.New("C011").WithDetail("decode snapshot").Wrap(err)
	}
	if snap.Version != FormatVersion {
		return nil, errors.New("C011").WithDetail("unsupported snapshot version %d", snap.Version)
	}
	return &snap, nil
}
