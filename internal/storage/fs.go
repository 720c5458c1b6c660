package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/dagaz/internal/apperr"
)

// artifactExt is appended to every fileKey on disk.
const artifactExt = ".json"

// FS implements Provider backed by the local file system.
type FS struct {
	root string // absolute path to the artifact directory
}

// NewFS creates an FS provider rooted at the given directory.
// The directory must already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// keyPath resolves a fileKey against the artifact root and rejects any
// result that escapes it (directory traversal).
func (f *FS) keyPath(fileKey string) (string, error) {
	if fileKey == "" {
		return "", fmt.Errorf("storage: empty file key")
	}
	cleaned := filepath.Clean(fileKey)
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("storage: absolute file keys not allowed: %s", fileKey)
	}
	joined := filepath.Join(f.root, cleaned+artifactExt)
	abs, err := filepath.Abs(joined)
	if err != nil {
		return "", fmt.Errorf("storage: resolve file key: %w", err)
	}
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("storage: file key escapes artifact root: %s", fileKey)
	}
	return abs, nil
}

// Get returns the artifact stored under fileKey.
func (f *FS) Get(fileKey string) ([]byte, error) {
	abs, err := f.keyPath(fileKey)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("storage: artifact %s: %w", fileKey, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("storage: read %s: %w", fileKey, err)
	}
	return data, nil
}

// Put atomically stores an artifact: tmp file → fsync → rename.
func (f *FS) Put(fileKey string, data []byte) error {
	abs, err := f.keyPath(fileKey)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".dagaz-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

// Delete removes the artifact under fileKey.
func (f *FS) Delete(fileKey string) error {
	abs, err := f.keyPath(fileKey)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("storage: artifact %s: %w", fileKey, apperr.ErrNotFound)
		}
		return fmt.Errorf("storage: delete %s: %w", fileKey, err)
	}
	return nil
}
