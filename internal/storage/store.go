// Package storage loads and saves the task collection as a whole document.
//
// Every backend honours the same contract: a missing document is an empty
// collection, a malformed one is an error wrapping ErrMalformed, and Save
// replaces the previous document entirely.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrMalformed = errors.New("malformed task document")

// Store reads and writes the full collection. There is no partial access.
type Store[T any] interface {
	Load(ctx context.Context) ([]T, error)
	Save(ctx context.Context, items []T) error
}

// Sequence hands out task ids independently of the collection length.
// Next returns a value greater than floor and than any value it returned before.
type Sequence interface {
	Next(ctx context.Context, floor int) (int, error)
}

// Locker guards a load-mutate-save cycle across processes.
type Locker interface {
	Lock(ctx context.Context) (unlock func(), err error)
}

// encodeDocument renders items as an indented JSON array. HTML escaping is
// off so non-ASCII text and <>& land in the file verbatim.
func encodeDocument[T any](items []T) ([]byte, error) {
	if items == nil {
		items = []T{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(items); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeDocument[T any](b []byte, source string) ([]T, error) {
	if len(bytes.TrimSpace(b)) == 0 {
		return []T{}, nil
	}
	var items []T
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, source, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}
