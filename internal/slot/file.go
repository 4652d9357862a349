package slot

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// File stores each record as <dir>/<key>.json.
type File struct {
	dir string
}

// NewFile creates a file-backed slot rooted at dir. The directory is created
// on first save.
func NewFile(dir string) *File {
	return &File{dir: dir}
}

func (f *File) recordPath(key string) string {
	name := unsafeKeyChars.ReplaceAllString(key, "_")
	return filepath.Join(f.dir, name+".json")
}

// Load reads the record for key. Returns ErrNotFound if the file doesn't exist.
func (f *File) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(f.recordPath(key))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read slot file: %w", err)
	}
	return data, nil
}

// Save writes the record for key atomically via a temp file and rename.
// Writing identical content is a no-op.
func (f *File) Save(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return fmt.Errorf("create slot dir: %w", err)
	}

	path := f.recordPath(key)
	if existing, err := os.ReadFile(path); err == nil {
		if bytes.Equal(existing, data) {
			return nil
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("read slot file: %w", err)
	}

	tmpFile, err := os.CreateTemp(f.dir, filepath.Base(path)+".tmp")
	if err != nil {
		return fmt.Errorf("create temp slot file: %w", err)
	}
	name := tmpFile.Name()
	_, err = tmpFile.Write(data)
	if err1 := tmpFile.Close(); err1 != nil && err == nil {
		err = err1
	}
	if err != nil {
		os.Remove(name)
		return fmt.Errorf("write temp slot file: %w", err)
	}

	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return fmt.Errorf("rename slot file: %w", err)
	}
	return nil
}
