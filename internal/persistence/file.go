package persistence

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileSlot stores the document in a single JSON file.
// Writes go to a temp file in the same directory which then replaces the target.
type FileSlot struct {
	path string
}

// NewFileSlot returns a slot backed by the file at path
func NewFileSlot(path string) (*FileSlot, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("file slot path is required")
	}
	return &FileSlot{path: path}, nil
}

// Path returns the backing file path
func (s *FileSlot) Path() string {
	return s.path
}

// Read returns the file contents, or nil when the file does not exist yet
func (s *FileSlot) Read(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &SlotError{Op: "read", Backend: "file", Cause: err}
	}
	return data, nil
}

// Write atomically replaces the file contents
func (s *FileSlot) Write(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return &SlotError{Op: "write", Backend: "file", Cause: err}
	}
	if err := writeFileAtomic(s.path, data, 0o644); err != nil {
		return &SlotError{Op: "write", Backend: "file", Cause: err}
	}
	return nil
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	committed = true
	return nil
}
