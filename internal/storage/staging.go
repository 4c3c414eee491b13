package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Staging places uploaded files on durable temporary storage before they
// are committed to the blob store.
type Staging struct {
	dir string
}

// StagedFile is a handle to a file parked in the staging directory.
type StagedFile struct {
	Path         string
	OriginalName string
	ContentType  string

	discard sync.Once
}

// NewStaging creates the staging directory if needed.
func NewStaging(dir string) (*Staging, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create staging dir: %w", err)
	}
	return &Staging{dir: dir}, nil
}

// Stage copies r to a temp file with a generated name. The caller owns the
// returned handle and must Discard it on every exit path.
func (s *Staging) Stage(r io.Reader, originalName, contentType string) (*StagedFile, error) {
	f, err := os.CreateTemp(s.dir, "upload-*"+filepath.Ext(originalName))
	if err != nil {
		return nil, fmt.Errorf("failed to create staging file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, fmt.Errorf("failed to stage upload: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return nil, fmt.Errorf("failed to close staging file: %w", err)
	}

	return &StagedFile{
		Path:         f.Name(),
		OriginalName: originalName,
		ContentType:  contentType,
	}, nil
}

// Open returns a reader over the staged content.
func (f *StagedFile) Open() (io.ReadCloser, error) {
	return os.Open(f.Path)
}

// Discard removes the staged file. It is idempotent: only the first call
// unlinks, repeat calls are no-ops, and an already-missing file is not an
// error.
func (f *StagedFile) Discard() error {
	var err error
	f.discard.Do(func() {
		if rmErr := os.Remove(f.Path); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			err = rmErr
		}
	})
	return err
}
