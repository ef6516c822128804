package files

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteAtomic writes data to a temporary sibling file and renames it over path,
// so readers never observe a partially written file.
func WriteAtomic(path string, data []byte) error {
	err := os.MkdirAll(filepath.Dir(path), 0o755)
	if err != nil {
		return fmt.Errorf("creating directory for '%s': %w", path, err)
	}

	tmp := path + ".tmp"
	err = os.WriteFile(tmp, data, 0o644)
	if err != nil {
		return fmt.Errorf("writing '%s': %w", tmp, err)
	}

	err = os.Rename(tmp, path)
	if err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("renaming '%s': %w", tmp, err)
	}

	return nil
}
