// Package storage предоставляет постоянное локальное хранилище клиента
// (аналог localStorage браузера): токен авторизации, текущий пользователь, тема.
package storage

import "sync"

// Ключи, под которыми клиент сохраняет своё состояние.
const (
	KeyAuthToken   = "authToken"
	KeyCurrentUser = "currentUser"
	KeyDarkTheme   = "darkTheme"
)

// Storage — строковое key-value хранилище.
type Storage interface {
	// GetItem возвращает значение и признак его наличия.
	GetItem(key string) (string, bool)
	SetItem(key, value string) error
	RemoveItem(key string) error
}

// MemoryStorage — потокобезопасное in-memory хранилище.
type MemoryStorage struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewMemoryStorage создает пустое хранилище в памяти.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		items: make(map[string]string),
	}
}

// GetItem реализует Storage.
func (s *MemoryStorage) GetItem(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[key]
	return v, ok
}

// SetItem реализует Storage.
func (s *MemoryStorage) SetItem(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = value
	return nil
}

// RemoveItem реализует Storage.
func (s *MemoryStorage) RemoveItem(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	return nil
}
