package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// CacheItem представляет кэшированный результат
type CacheItem[T any] struct {
	Data      T
	ExpiresAt time.Time
}

// CacheStore хранит вычисленные ответы до истечения их срока действия.
// Ключи вида "<userID>:<вид>:<параметры>" позволяют сбрасывать
// все значения пользователя через DeletePrefix.
type CacheStore[T any] struct {
	cache map[string]*CacheItem[T]
	mutex sync.RWMutex
	now   func() time.Time
}

// NewCacheStore создает новый экземпляр CacheStore
func NewCacheStore[T any]() *CacheStore[T] {
	return &CacheStore[T]{
		cache: make(map[string]*CacheItem[T]),
		now:   time.Now,
	}
}

// Get извлекает кэшированный элемент по его ключу
func (cs *CacheStore[T]) Get(key string) (*CacheItem[T], bool) {
	cs.mutex.RLock()
	defer cs.mutex.RUnlock()

	item, exists := cs.cache[key]
	if !exists || cs.now().After(item.ExpiresAt) {
		return nil, false
	}

	return item, true
}

// Put сохраняет элемент в кэш с указанным сроком действия
func (cs *CacheStore[T]) Put(key string, data T, ttl time.Duration) {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	cs.cache[key] = &CacheItem[T]{
		Data:      data,
		ExpiresAt: cs.now().Add(ttl),
	}
}

// DeletePrefix удаляет все элементы, ключ которых начинается с prefix.
// Возвращает число удаленных элементов.
func (cs *CacheStore[T]) DeletePrefix(prefix string) int {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	removed := 0
	for key := range cs.cache {
		if strings.HasPrefix(key, prefix) {
			delete(cs.cache, key)
			removed++
		}
	}
	return removed
}

// Len возвращает число элементов, включая еще не очищенные просроченные.
func (cs *CacheStore[T]) Len() int {
	cs.mutex.RLock()
	defer cs.mutex.RUnlock()
	return len(cs.cache)
}

// CleanupExpired удаляет просроченные элементы из кэша
func (cs *CacheStore[T]) CleanupExpired() {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	now := cs.now()
	for key, item := range cs.cache {
		if now.After(item.ExpiresAt) {
			delete(cs.cache, key)
		}
	}
}

// StartCleanupTicker запускает таймер для периодической очистки просроченных элементов
func (cs *CacheStore[T]) StartCleanupTicker(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cs.CleanupExpired()
			}
		}
	}()
}
