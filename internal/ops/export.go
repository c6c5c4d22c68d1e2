package ops

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"

	"github.com/Azam-Khan12/TODO-Task-Manager/internal/storage"
)

// Export writes the whole collection held by store to w in format.
func Export[T any](ctx context.Context, store storage.Store[T], format string, w io.Writer) (int, error) {
	items, err := store.Load(ctx)
	if err != nil {
		return 0, err
	}
	if err := storage.Encode(w, strings.ToLower(format), items); err != nil {
		return 0, fmt.Errorf("export %s: %w", format, err)
	}
	return len(items), nil
}

// VerifyFile checks a backing file against the schema variant. A missing
// file is valid: it reads as an empty collection.
func VerifyFile(fsys afero.Fs, path, variant string) ([]storage.Violation, error) {
	b, err := afero.ReadFile(fsys, path)
	if err != nil {
		if exists, _ := afero.Exists(fsys, path); !exists {
			return nil, nil
		}
		return nil, err
	}
	return storage.Verify(b, variant)
}
