package cache

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RCorazao/stopgame-client/internal/session"
)

func openTestCache(t *testing.T) *SQLite {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestLoadEmpty(t *testing.T) {
	c := openTestCache(t)

	entry, err := c.Load()
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestSaveLoadRoundtrip(t *testing.T) {
	c := openTestCache(t)

	require.NoError(t, c.Save(session.CacheEntry{RoomCode: "ABCD", PlayerID: "p1", RoomState: 1}))

	entry, err := c.Load()
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, session.CacheEntry{RoomCode: "ABCD", PlayerID: "p1", RoomState: 1}, *entry)
}

func TestSaveOverwrites(t *testing.T) {
	c := openTestCache(t)

	require.NoError(t, c.Save(session.CacheEntry{RoomCode: "ABCD", PlayerID: "p1", RoomState: 0}))
	require.NoError(t, c.Save(session.CacheEntry{RoomCode: "WXYZ", PlayerID: "p1", RoomState: 2}))

	entry, err := c.Load()
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "WXYZ", entry.RoomCode)
	assert.Equal(t, 2, entry.RoomState)
}

func TestDrop(t *testing.T) {
	c := openTestCache(t)

	require.NoError(t, c.Save(session.CacheEntry{RoomCode: "ABCD", PlayerID: "p1"}))
	require.NoError(t, c.Drop())
	require.NoError(t, c.Drop(), "dropping an empty cache is fine")

	entry, err := c.Load()
	require.NoError(t, err)
	assert.Nil(t, entry)
}
