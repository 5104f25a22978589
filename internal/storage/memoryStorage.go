package storage

import (
	"sync"
	"time"
)

type MemoryStorage struct {
	mu   sync.Mutex
	data map[string]*Entry
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		data: make(map[string]*Entry),
	}
}

func (ms *MemoryStorage) Save(e *Entry) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if e.LastUsed.IsZero() {
		e.LastUsed = time.Now()
	}
	ms.data[e.ID] = e
	return nil
}

func (ms *MemoryStorage) Get(id, owner string) (*Entry, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	e, found := ms.data[id]
	if !found {
		return nil, ErrTabNotFound
	}
	if e.Owner != owner {
		return nil, ErrForbidden
	}

	e.LastUsed = time.Now()
	return e, nil
}

func (ms *MemoryStorage) Delete(id, owner string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	e, found := ms.data[id]
	if !found {
		return ErrTabNotFound
	}
	if e.Owner != owner {
		return ErrForbidden
	}

	delete(ms.data, id)
	return nil
}

func (ms *MemoryStorage) Touch(id string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	e, found := ms.data[id]
	if !found {
		return ErrTabNotFound
	}
	e.LastUsed = time.Now()
	return nil
}

// Sweep удаляет вкладки, к которым не обращались с момента idleSince.
func (ms *MemoryStorage) Sweep(idleSince time.Time) int {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	removed := 0
	for id, e := range ms.data {
		if e.LastUsed.Before(idleSince) {
			delete(ms.data, id)
			removed++
		}
	}
	return removed
}

func (ms *MemoryStorage) Stats() (int, int, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	owners := make(map[string]struct{})
	for _, e := range ms.data {
		owners[e.Owner] = struct{}{}
	}
	return len(ms.data), len(owners), nil
}

func (ms *MemoryStorage) Len() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return len(ms.data)
}

func (ms *MemoryStorage) Ping() error {
	return nil
}
