package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v2"
)

// FileStorage хранит значения в YAML-файле и переписывает его при каждом изменении.
type FileStorage struct {
	path  string
	mu    sync.RWMutex
	items map[string]string
}

// OpenFileStorage открывает хранилище по указанному пути.
// Отсутствующий файл не является ошибкой: он будет создан при первой записи.
func OpenFileStorage(path string) (*FileStorage, error) {
	fs := &FileStorage{
		path:  path,
		items: make(map[string]string),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fs, nil
		}
		return nil, fmt.Errorf("failed to read storage file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &fs.items); err != nil {
		return nil, fmt.Errorf("failed to parse storage file %s: %w", path, err)
	}
	if fs.items == nil {
		fs.items = make(map[string]string)
	}

	return fs, nil
}

// Path возвращает путь к файлу хранилища.
func (s *FileStorage) Path() string {
	return s.path
}

// GetItem реализует Storage.
func (s *FileStorage) GetItem(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[key]
	return v, ok
}

// SetItem реализует Storage.
func (s *FileStorage) SetItem(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = value
	return s.flushLocked()
}

// RemoveItem реализует Storage.
func (s *FileStorage) RemoveItem(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[key]; !ok {
		return nil
	}
	delete(s.items, key)
	return s.flushLocked()
}

// flushLocked записывает файл атомарно: сначала во временный, затем rename.
func (s *FileStorage) flushLocked() error {
	data, err := yaml.Marshal(s.items)
	if err != nil {
		return fmt.Errorf("failed to encode storage: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create storage dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".storage-*.yml")
	if err != nil {
		return fmt.Errorf("failed to create temp storage file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close temp storage file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to chmod storage file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace storage file: %w", err)
	}
	return nil
}
