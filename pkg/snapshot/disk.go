package snapshot

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vango-dev/vcache/internal/errors"
)

const fileExt = ".json"

// DiskBackend stores snapshots as files in a directory.
type DiskBackend struct {
	dir string
}

// NewDiskBackend creates the directory if needed.
func NewDiskBackend(dir string) (*DiskBackend, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.New("C012").Wrap(err)
	}
	return &DiskBackend{dir: dir}, nil
}

// Save writes the snapshot to a temp file and renames it into place.
func (d *DiskBackend) Save(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateName(name); err != nil {
		return err
	}

	f, err := os.CreateTemp(d.dir, "."+name+"-*")
	if err != nil {
		return errors.New("C012").Wrap(err)
	}
	tmp := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return errors.New("C012").Wrap(err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return errors.New("C012").Wrap(err)
	}
	if err := os.Rename(tmp, d.path(name)); err != nil {
		os.Remove(tmp)
		return errors.New("C012").Wrap(err)
	}
	return nil
}

// Load reads the snapshot file.
func (d *DiskBackend) Load(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateName(name); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(d.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errors.New("C010").WithDetail("%s", name)
	}
	if err != nil {
		return nil, errors.New("C012").Wrap(err)
	}
	return data, nil
}

// List returns snapshot names found in the directory.
func (d *DiskBackend) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return nil, errors.New("C012").Wrap(err)
	}

	var names []string
	for _, e := range entries {
		n := e.Name()
		if e.IsDir() || strings.HasPrefix(n, ".") || !strings.HasSuffix(n, fileExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(n, fileExt))
	}
	sort.Strings(names)
	return names, nil
}

func (d *DiskBackend) path(name string) string {
	return filepath.Join(d.dir, name+fileExt)
}
