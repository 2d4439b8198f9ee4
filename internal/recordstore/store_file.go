package recordstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const fileExt = ".json"

// FileBackend keeps each collection in <dir>/<name>.json. Writes go to a temp
// file in the same directory and are renamed into place, so a reader sees
// either the old or the new collection, never a partial one.
type FileBackend struct {
	dir string
}

func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileBackend{dir: dir}, nil
}

func (b *FileBackend) Path(name string) string {
	return filepath.Join(b.dir, name+fileExt)
}

func (b *FileBackend) Read(_ context.Context, name string) ([]byte, bool, error) {
	data, err := os.ReadFile(b.Path(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

func (b *FileBackend) Write(_ context.Context, name string, data []byte) error {
	tmp, err := os.CreateTemp(b.dir, "."+name+"-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, b.Path(name))
}

func (b *FileBackend) Ping(context.Context) error {
	_, err := os.Stat(b.dir)
	return err
}

func (b *FileBackend) Close() error { return nil }
