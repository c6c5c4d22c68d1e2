// Package ops holds offline maintenance for a task backing file: archive,
// restore, digest, export and schema verification.
package ops

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/Azam-Khan12/TODO-Task-Manager/internal/storage"
)

// maxEntryBytes caps a single archive entry read during Restore.
var maxEntryBytes int64 = 64 << 20

// Members are the files that make up one task store on disk: the backing
// file itself and its id sequence sidecar. Missing sidecars are skipped.
func Members(backingFile string) []string {
	return []string{backingFile, storage.SequencePath(backingFile)}
}

// Backup archives the backing file and its sidecar into a gzip'd tar.
// Entries are stored under their base names. It returns what was written.
func Backup(fsys afero.Fs, backingFile, archivePath string) ([]string, error) {
	backingFile = filepath.Clean(strings.TrimSpace(backingFile))
	archivePath = filepath.Clean(strings.TrimSpace(archivePath))
	if backingFile == "." || archivePath == "." {
		return nil, errors.New("backing file and archive path are required")
	}
	if _, err := fsys.Stat(backingFile); err != nil {
		return nil, fmt.Errorf("backing file: %w", err)
	}
	if err := fsys.MkdirAll(filepath.Dir(archivePath), 0o755); err != nil {
		return nil, err
	}

	f, err := fsys.Create(archivePath)
	if err != nil {
		return nil, err
	}
	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)

	written, werr := writeMembers(fsys, tw, Members(backingFile))
	// close in order; the first failure wins
	for _, c := range []io.Closer{tw, gz, f} {
		if err := c.Close(); err != nil && werr == nil {
			werr = err
		}
	}
	if werr != nil {
		_ = fsys.Remove(archivePath)
		return nil, werr
	}
	return written, nil
}

func writeMembers(fsys afero.Fs, tw *tar.Writer, files []string) ([]string, error) {
	var written []string
	for _, name := range files {
		info, err := fsys.Stat(name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if !info.Mode().IsRegular() {
			return nil, fmt.Errorf("not a regular file: %s", name)
		}
		b, err := afero.ReadFile(fsys, name)
		if err != nil {
			return nil, err
		}
		hdr := &tar.Header{
			Name:     filepath.Base(name),
			Typeflag: tar.TypeReg,
			Mode:     0o644,
			Size:     int64(len(b)),
			ModTime:  info.ModTime().UTC().Truncate(time.Second),
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return nil, err
		}
		if _, err := tw.Write(b); err != nil {
			return nil, err
		}
		written = append(written, name)
	}
	return written, nil
}

// Restore unpacks archivePath into targetDir and returns the restored paths.
// Entries that would escape targetDir are rejected before anything is written.
func Restore(fsys afero.Fs, archivePath, targetDir string) ([]string, error) {
	archivePath = filepath.Clean(strings.TrimSpace(archivePath))
	targetDir = filepath.Clean(strings.TrimSpace(targetDir))
	if archivePath == "." || targetDir == "" {
		return nil, errors.New("archive path and target dir are required")
	}

	f, err := fsys.Open(archivePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", archivePath, err)
	}
	defer gz.Close()

	type entry struct {
		rel  string
		body []byte
	}
	var entries []entry
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rel, err := sanitizeArchiveRelPath(hdr.Name)
		if err != nil {
			return nil, err
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		if hdr.Size > maxEntryBytes {
			return nil, fmt.Errorf("archive entry %s is %d bytes, limit is %d", hdr.Name, hdr.Size, maxEntryBytes)
		}
		body, err := io.ReadAll(io.LimitReader(tr, maxEntryBytes+1))
		if err != nil {
			return nil, err
		}
		if int64(len(body)) > maxEntryBytes {
			return nil, fmt.Errorf("archive entry %s exceeds %d bytes", hdr.Name, maxEntryBytes)
		}
		entries = append(entries, entry{rel: rel, body: body})
	}

	if err := fsys.MkdirAll(targetDir, 0o755); err != nil {
		return nil, err
	}
	restored := make([]string, 0, len(entries))
	for _, e := range entries {
		out := filepath.Join(targetDir, e.rel)
		if err := fsys.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return nil, err
		}
		if err := afero.WriteFile(fsys, out, e.body, 0o644); err != nil {
			return nil, err
		}
		restored = append(restored, out)
	}
	return restored, nil
}

func sanitizeArchiveRelPath(name string) (string, error) {
	name = strings.TrimSpace(strings.ReplaceAll(name, "\\", "/"))
	if name == "" {
		return "", errors.New("empty archive entry path")
	}
	if path.IsAbs(name) || filepath.IsAbs(name) {
		return "", fmt.Errorf("absolute archive entry path: %s", name)
	}
	clean := path.Clean(name)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("archive entry escapes target: %s", name)
	}
	return filepath.FromSlash(clean), nil
}
