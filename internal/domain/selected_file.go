package domain

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// SelectedFile is a reference to a file picked by the user. It is never
// mutated, a new selection replaces it.
type SelectedFile struct {
	Name string
	Size int64

	open func() (io.ReadCloser, error)
}

func NewSelectedFile(name string, size int64, open func() (io.ReadCloser, error)) *SelectedFile {
	return &SelectedFile{
		Name: name,
		Size: size,
		open: open,
	}
}

// LocalFile references a file on disk.
func LocalFile(path string) (*SelectedFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %q: %w", path, err)
	}

	if info.IsDir() {
		return nil, fmt.Errorf("%q is a directory", path)
	}

	return NewSelectedFile(filepath.Base(path), info.Size(), func() (io.ReadCloser, error) {
		return os.Open(path)
	}), nil
}

func (f *SelectedFile) Open() (io.ReadCloser, error) {
	if f.open == nil {
		return nil, fmt.Errorf("file %q has no content", f.Name)
	}

	return f.open()
}
