package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_CreatesDirectoryAndEnablesForeignKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "podbrief.db")

	db, err := Open(context.Background(), path)
	require.NoError(t, err)
	defer db.Close()

	var enabled int
	require.NoError(t, db.Get(&enabled, "PRAGMA foreign_keys"))
	assert.Equal(t, 1, enabled)
	assert.Equal(t, 1, db.Stats().MaxOpenConnections)
}

func TestDSN(t *testing.T) {
	assert.Equal(t, "file:/tmp/x.db?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL", DSN("/tmp/x.db"))
	assert.Equal(t, "file:memdb?mode=memory", DSN("file:memdb?mode=memory"))
}
