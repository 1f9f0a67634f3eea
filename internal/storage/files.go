// Package storage keeps uploaded media files in a single directory of an
// afero filesystem, so production uses the OS and tests use memory.
package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/afero"
)

const (
	dirMode  = 0755
	fileMode = 0644

	// sniffBytes is how much of an upload is buffered for content detection.
	sniffBytes = 3072
)

// ErrInvalidName is returned for names that would escape the upload directory.
var ErrInvalidName = errors.New("invalid file name")

// Files stores flat files under dir.
type Files struct {
	fs  afero.Fs
	dir string
}

// NewFiles ensures dir exists on fs.
func NewFiles(fs afero.Fs, dir string) (*Files, error) {
	if dir == "" {
		dir = "uploads"
	}
	if err := fs.MkdirAll(dir, dirMode); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}
	return &Files{fs: fs, dir: dir}, nil
}

// NewOSFiles is NewFiles over the real filesystem.
func NewOSFiles(dir string) (*Files, error) {
	return NewFiles(afero.NewOsFs(), dir)
}

// Save writes r to name, replacing any existing file. A partially written
// file is removed on error.
func (f *Files) Save(name string, r io.Reader) (int64, error) {
	p, err := f.path(name)
	if err != nil {
		return 0, err
	}

	out, err := f.fs.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, fileMode)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", name, err)
	}

	n, err := io.Copy(out, r)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = f.fs.Remove(p)
		return 0, fmt.Errorf("failed to write %s: %w", name, err)
	}
	return n, nil
}

// Open returns the file for reading along with its info.
func (f *Files) Open(name string) (afero.File, os.FileInfo, error) {
	p, err := f.path(name)
	if err != nil {
		return nil, nil, err
	}

	file, err := f.fs.Open(p)
	if err != nil {
		return nil, nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, nil, err
	}
	if info.IsDir() {
		file.Close()
		return nil, nil, os.ErrNotExist
	}
	return file, info, nil
}

// Exists reports whether name is a stored file.
func (f *Files) Exists(name string) bool {
	p, err := f.path(name)
	if err != nil {
		return false
	}
	info, err := f.fs.Stat(p)
	return err == nil && !info.IsDir()
}

// Remove deletes name; a missing file is not an error.
func (f *Files) Remove(name string) error {
	p, err := f.path(name)
	if err != nil {
		return err
	}
	if err := f.fs.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", name, err)
	}
	return nil
}

func (f *Files) path(name string) (string, error) {
	if !ValidName(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return path.Join(f.dir, name), nil
}

// ValidName accepts plain file names only: no separators, no dot entries.
func ValidName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && !strings.ContainsRune(name, 0)
}

// BaseName reduces a client-supplied file name to its last element.
func BaseName(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	return path.Base(name)
}

// Sniff detects the content type of r from its first bytes. The returned
// reader replays those bytes followed by the rest of r.
func Sniff(r io.Reader) (*mimetype.MIME, io.Reader, error) {
	head := make([]byte, sniffBytes)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("failed to read upload: %w", err)
	}
	head = head[:n]
	return mimetype.Detect(head), io.MultiReader(bytes.NewReader(head), r), nil
}

// List returns the regular files in the upload directory.
func (f *Files) List() ([]os.FileInfo, error) {
	entries, err := afero.ReadDir(f.fs, f.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", f.dir, err)
	}
	files := entries[:0]
	for _, e := range entries {
		if !e.IsDir() {
			files = append(files, e)
		}
	}
	return files, nil
}
