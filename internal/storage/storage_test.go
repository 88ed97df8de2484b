package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestKVImplementations(t *testing.T) {
	stores := map[string]KV{
		"memory": NewMemory(),
		"sqlite": openTestSQLite(t),
	}

	for name, kv := range stores {
		t.Run(name, func(t *testing.T) {
			_, ok, err := kv.Get(KeyToken)
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, kv.Set(KeyToken, "abc"))
			require.NoError(t, kv.Set(KeyUser, `{"username":"alice"}`))

			v, ok, err := kv.Get(KeyToken)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "abc", v)

			require.NoError(t, kv.Set(KeyToken, "def"))
			v, _, _ = kv.Get(KeyToken)
			assert.Equal(t, "def", v)

			require.NoError(t, kv.Delete(KeyToken, KeyUser, "missing"))
			_, ok, _ = kv.Get(KeyToken)
			assert.False(t, ok)
			_, ok, _ = kv.Get(KeyUser)
			assert.False(t, ok)
		})
	}
}

func TestSQLiteSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")

	db, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, db.Set(KeyToken, "persisted"))
	require.NoError(t, db.Close())

	db, err = OpenSQLite(path)
	require.NoError(t, err)
	defer db.Close()

	v, ok, err := db.Get(KeyToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "persisted", v)
}
