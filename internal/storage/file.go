package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"
)

type fileConfig struct {
	atomic bool
}

type FileOption func(*fileConfig)

// WithAtomicWrites stages each save in a temp file and renames it over the
// backing file. Off means the file is truncated and rewritten in place.
func WithAtomicWrites(on bool) FileOption {
	return func(c *fileConfig) { c.atomic = on }
}

// FileStore keeps the collection as a pretty-printed JSON array in one file.
type FileStore[T any] struct {
	fs     afero.Fs
	path   string
	atomic bool
}

func NewFileStore[T any](fsys afero.Fs, path string, opts ...FileOption) *FileStore[T] {
	cfg := fileConfig{atomic: true}
	for _, o := range opts {
		o(&cfg)
	}
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &FileStore[T]{fs: fsys, path: filepath.Clean(path), atomic: cfg.atomic}
}

func (s *FileStore[T]) Path() string { return s.path }

func (s *FileStore[T]) Load(_ context.Context) ([]T, error) {
	b, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []T{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	return decodeDocument[T](b, s.path)
}

func (s *FileStore[T]) Save(_ context.Context, items []T) error {
	b, err := encodeDocument(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.path, err)
	}
	dir := filepath.Dir(s.path)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	if !s.atomic {
		if err := afero.WriteFile(s.fs, s.path, b, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", s.path, err)
		}
		return nil
	}
	return s.replace(dir, b)
}

func (s *FileStore[T]) replace(dir string, b []byte) error {
	tmp, err := afero.TempFile(s.fs, dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("stage %s: %w", s.path, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = s.fs.Remove(tmpName) }

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := s.fs.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := s.fs.Rename(tmpName, s.path); err != nil {
		cleanup()
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}
