package repository

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/quintans/tvshelf/internal/lib/files"
)

// FileStore keeps every key in its own file under dir.
// Values are cached after the first read; writes go straight to disk.
type FileStore struct {
	dir   string
	mu    sync.Mutex
	cache map[string]string
}

func NewFileStore(dataDir string) (*FileStore, error) {
	dir := filepath.Join(dataDir, "data")
	err := os.MkdirAll(dir, os.ModePerm)
	if err != nil {
		return nil, fmt.Errorf("creating data directory '%s': %w", dir, err)
	}

	return &FileStore{
		dir:   dir,
		cache: map[string]string{},
	}, nil
}

func (d *FileStore) Get(key string) (string, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if v, ok := d.cache[key]; ok {
		return v, true, nil
	}

	b, err := os.ReadFile(d.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("reading data for '%s': %w", key, err)
	}

	d.cache[key] = string(b)
	return string(b), true, nil
}

func (d *FileStore) Set(key string, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	err := files.WriteAtomic(d.path(key), []byte(value))
	if err != nil {
		return fmt.Errorf("writing data for '%s': %w", key, err)
	}
	d.cache[key] = value

	return nil
}

func (d *FileStore) path(key string) string {
	return filepath.Join(d.dir, key+".json")
}
