package storage

import (
	"testing"
	"time"

	"github.com/sol1corejz/gzip64-inspector/pkg/inspector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorage(t *testing.T) {
	ms := NewMemoryStorage()
	require.NoError(t, ms.Ping())

	entry := &Entry{ID: "tab-1", Owner: "user-1", Tab: inspector.NewTab(inspector.Deps{}, true)}
	require.NoError(t, ms.Save(entry))
	assert.False(t, entry.LastUsed.IsZero())
	assert.Equal(t, 1, ms.Len())

	got, err := ms.Get("tab-1", "user-1")
	require.NoError(t, err)
	assert.Same(t, entry, got)

	_, err = ms.Get("tab-1", "user-2")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = ms.Get("tab-2", "user-1")
	assert.ErrorIs(t, err, ErrTabNotFound)

	assert.ErrorIs(t, ms.Delete("tab-1", "user-2"), ErrForbidden)
	require.NoError(t, ms.Delete("tab-1", "user-1"))
	assert.ErrorIs(t, ms.Delete("tab-1", "user-1"), ErrTabNotFound)
	assert.Equal(t, 0, ms.Len())
}

func TestMemoryStorage_Sweep(t *testing.T) {
	ms := NewMemoryStorage()
	now := time.Now()

	require.NoError(t, ms.Save(&Entry{ID: "old", Owner: "u", LastUsed: now.Add(-time.Hour)}))
	require.NoError(t, ms.Save(&Entry{ID: "fresh", Owner: "u", LastUsed: now}))

	assert.Equal(t, 1, ms.Sweep(now.Add(-time.Minute)))
	assert.Equal(t, 1, ms.Len())

	_, err := ms.Get("fresh", "u")
	assert.NoError(t, err)
}

func TestMemoryStorage_Stats(t *testing.T) {
	ms := NewMemoryStorage()

	tabs, users, err := ms.Stats()
	require.NoError(t, err)
	assert.Zero(t, tabs)
	assert.Zero(t, users)

	require.NoError(t, ms.Save(&Entry{ID: "a", Owner: "u1"}))
	require.NoError(t, ms.Save(&Entry{ID: "b", Owner: "u1"}))
	require.NoError(t, ms.Save(&Entry{ID: "c", Owner: "u2"}))

	tabs, users, err = ms.Stats()
	require.NoError(t, err)
	assert.Equal(t, 3, tabs)
	assert.Equal(t, 2, users)
}

func TestMemoryStorage_Touch(t *testing.T) {
	ms := NewMemoryStorage()
	old := time.Now().Add(-time.Hour)
	require.NoError(t, ms.Save(&Entry{ID: "a", Owner: "u", LastUsed: old}))

	require.NoError(t, ms.Touch("a"))
	assert.Zero(t, ms.Sweep(time.Now().Add(-time.Minute)))
	assert.Equal(t, 1, ms.Len())

	assert.ErrorIs(t, ms.Touch("missing"), ErrTabNotFound)
}
