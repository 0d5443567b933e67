package snapshot

import (
	"context"
	"strings"

	"github.com/vango-dev/vcache/internal/errors"
	"github.com/vango-dev/vcache/pkg/store"
)

// Backend persists encoded snapshots by name.
type Backend interface {
	// Save stores data under name, replacing any previous snapshot.
	Save(ctx context.Context, name string, data []byte) error

	// Load returns the snapshot stored under name.
	// It returns an error matching ErrNotFound if there is none.
	Load(ctx context.Context, name string) ([]byte, error)

	// List returns the stored snapshot names in sorted order.
	List(ctx context.Context) ([]string, error)
}

// Save captures c and stores it in b under name.
func Save(ctx context.Context, b Backend, name string, c *store.Cache, opts ...CaptureOption) error {
	if err := validateName(name); err != nil {
		return err
	}
	snap, err := Capture(c, opts...)
	if err != nil {
		return err
	}
	data, err := Encode(snap)
	if err != nil {
		return err
	}
	return b.Save(ctx, name, data)
}

// Load reads the snapshot name from b and restores it into c.
func Load(ctx context.Context, b Backend, name string, c *store.Cache, opts ...store.SetOption) error {
	if err := validateName(name); err != nil {
		return err
	}
	data, err := b.Load(ctx, name)
	if err != nil {
		return err
	}
	snap, err := Decode(data)
	if err != nil {
		return err
	}
	return Restore(c, snap, opts...)
}

func validateName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return errors.New("C012").WithDetail("invalid snapshot name %q", name)
	}
	return nil
}
