package storage

import (
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

// Encode writes items in the given format. TOML has no top-level arrays,
// so the collection is wrapped as `tasks = [...]`.
func Encode[T any](w io.Writer, format string, items []T) error {
	if items == nil {
		items = []T{}
	}
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatJSON:
		b, err := encodeDocument(items)
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	case FormatYAML, "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(items); err != nil {
			return err
		}
		return enc.Close()
	case FormatTOML:
		return toml.NewEncoder(w).Encode(map[string][]T{"tasks": items})
	default:
		return fmt.Errorf("unsupported format %q (want json, yaml or toml)", format)
	}
}
