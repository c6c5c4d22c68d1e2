package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/afero"
)

// FileSequence persists the last issued id in a small sidecar file so ids
// keep increasing after deletions.
type FileSequence struct {
	mu   sync.Mutex
	fs   afero.Fs
	path string
}

func NewFileSequence(fsys afero.Fs, path string) *FileSequence {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &FileSequence{fs: fsys, path: filepath.Clean(path)}
}

// SequencePath is the sidecar used next to a backing file.
func SequencePath(backingFile string) string {
	return backingFile + ".seq"
}

func (s *FileSequence) Next(_ context.Context, floor int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	last, err := s.read()
	if err != nil {
		return 0, err
	}
	next := max(last, floor) + 1
	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return 0, fmt.Errorf("create %s: %w", filepath.Dir(s.path), err)
	}
	if err := afero.WriteFile(s.fs, s.path, []byte(strconv.Itoa(next)+"\n"), 0o644); err != nil {
		return 0, fmt.Errorf("write %s: %w", s.path, err)
	}
	return next, nil
}

func (s *FileSequence) read() (int, error) {
	b, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("read %s: %w", s.path, err)
	}
	raw := strings.TrimSpace(string(b))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrMalformed, s.path, err)
	}
	return n, nil
}

type MemorySequence struct {
	mu   sync.Mutex
	last int
}

func NewMemorySequence() *MemorySequence {
	return &MemorySequence{}
}

func (s *MemorySequence) Next(_ context.Context, floor int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = max(s.last, floor) + 1
	return s.last, nil
}
