// Package upload defines the upload queue: a transient batch of documents
// staged for sequential upload to a single topic.
package upload

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// File is a staged document. The payload is read lazily through Open so a
// batch can be staged without holding every file in memory.
type File struct {
	Name string
	Path string
	Size int64

	open func() (io.ReadCloser, error)
}

// Open returns a reader over the file payload. The caller closes it.
func (f File) Open() (io.ReadCloser, error) {
	if f.open == nil {
		return nil, fmt.Errorf("file %q has no payload", f.Name)
	}
	return f.open()
}

// FromPath stats a regular file on disk and returns it as a staged file.
func FromPath(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, fmt.Errorf("stat %q: %w", path, err)
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("%q is a directory", path)
	}

	return File{
		Name: filepath.Base(path),
		Path: path,
		Size: info.Size(),
		open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

// FromBytes returns an in-memory staged file.
func FromBytes(name string, data []byte) File {
	return File{
		Name: name,
		Size: int64(len(data)),
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// Collect resolves paths and glob patterns (including "**") into staged
// files. Directories are skipped, duplicates are dropped, and order follows
// the patterns. A literal path that does not exist is an error; a glob that
// matches nothing is not.
func Collect(patterns []string) ([]File, error) {
	var (
		files []File
		seen  = make(map[string]bool)
	)

	add := func(path string) error {
		abs, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("resolve %q: %w", path, err)
		}
		if seen[abs] {
			return nil
		}
		seen[abs] = true

		f, err := FromPath(path)
		if err != nil {
			return err
		}
		files = append(files, f)
		return nil
	}

	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}

		if !hasGlobChars(pattern) {
			if err := add(pattern); err != nil {
				return nil, err
			}
			continue
		}

		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		for _, match := range matches {
			if err := add(match); err != nil {
				return nil, err
			}
		}
	}

	return files, nil
}

// hasGlobChars returns true if pattern contains glob special characters.
func hasGlobChars(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}
