package ops

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
)

// Digest hashes the named files by base name and content. Missing files
// are skipped, so a store without a sidecar digests like one with it absent
// on both sides.
func Digest(fsys afero.Fs, files ...string) (string, error) {
	type member struct {
		name string
		body []byte
	}
	var members []member
	for _, f := range files {
		b, err := afero.ReadFile(fsys, f)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return "", err
		}
		members = append(members, member{name: filepath.Base(f), body: b})
	}
	sort.Slice(members, func(i, j int) bool { return members[i].name < members[j].name })

	h := sha256.New()
	for _, m := range members {
		_, _ = io.WriteString(h, m.name)
		_, _ = io.WriteString(h, "\n")
		_, _ = h.Write(m.body)
		_, _ = io.WriteString(h, "\n")
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// DrillResult describes one backup-and-restore rehearsal.
type DrillResult struct {
	Archive     string
	RestoredDir string
	Digest      string
}

// Drill backs up backingFile, restores it into workDir and checks that the
// restored copy digests the same as the source.
func Drill(fsys afero.Fs, backingFile, workDir, stamp string) (DrillResult, error) {
	res := DrillResult{
		Archive:     filepath.Join(workDir, "todo-drill-"+stamp+".tar.gz"),
		RestoredDir: filepath.Join(workDir, "todo-drill-restore-"+stamp),
	}
	if _, err := Backup(fsys, backingFile, res.Archive); err != nil {
		return res, err
	}
	restored, err := Restore(fsys, res.Archive, res.RestoredDir)
	if err != nil {
		return res, err
	}

	src, err := Digest(fsys, Members(backingFile)...)
	if err != nil {
		return res, err
	}
	got, err := Digest(fsys, restored...)
	if err != nil {
		return res, err
	}
	if src != got {
		return res, &DigestMismatchError{Source: src, Restored: got}
	}
	res.Digest = src
	return res, nil
}

type DigestMismatchError struct {
	Source, Restored string
}

func (e *DigestMismatchError) Error() string {
	return "digest mismatch after restore: src=" + e.Source + " restored=" + e.Restored
}
