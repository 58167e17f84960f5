package schedule

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tolicodes/playbuddy-sub001/internal/schedule/interfaces"
)

// FileStore is a file-per-key store under a single directory. Writes go
// through a temp file with fsync and rename so readers never observe a
// partial document.
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

func NewFileStore(dir string) (interfaces.StoreInterface, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

var keyReplacer = strings.NewReplacer("/", "_", "\\", "_", "..", "_")

func (f *FileStore) path(key string) string {
	return filepath.Join(f.dir, keyReplacer.Replace(key)+".dat")
}

func (f *FileStore) Get(key string) ([]byte, bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

func (f *FileStore) Set(key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	fileName := f.path(key)
	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	if _, err = file.Write(value); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, fileName)
}

func (f *FileStore) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	err := os.Remove(f.path(key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
