package storage

import (
	"errors"
	"sync"
	"time"

	"github.com/sol1corejz/gzip64-inspector/pkg/inspector"
)

var (
	ErrTabNotFound = errors.New("tab not found")
	ErrForbidden   = errors.New("tab belongs to another user")
)

// Entry — открытая вкладка редактора. Вкладка не потокобезопасна,
// поэтому обращения к ней выполняются под Lock/Unlock.
type Entry struct {
	sync.Mutex
	ID       string
	Owner    string
	Tab      *inspector.Tab
	Enabled  bool
	LastUsed time.Time
}

type Storage interface {
	Save(e *Entry) error
	Get(id, owner string) (*Entry, error)
	Delete(id, owner string) error
	// Touch отмечает вкладку как используемую. Для закрытой вкладки возвращает ErrTabNotFound.
	Touch(id string) error
	Sweep(idleSince time.Time) int
	// Stats возвращает число открытых вкладок и число их владельцев.
	Stats() (tabs, users int, err error)
	Ping() error
}
