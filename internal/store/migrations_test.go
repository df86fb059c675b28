package store

import (
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationToViewerScopedKeyKeepsRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	db, err := sqlx.Open("sqlite", path)
	require.NoError(t, err)
	for _, m := range migrations[:2] {
		_, err := db.Exec(m.sql)
		require.NoError(t, err)
	}
	_, err = db.Exec(`INSERT INTO notifications
		(id, viewer, type, content, is_read, created_at, recorded_at, origin)
		VALUES (7, 'viewer', 'LETTER_RECEIVED', 'hello', 1, '2025-01-02T10:00:00', 1000, 'push')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()

	v, err := s.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	var entries []Entry
	require.NoError(t, s.db.Select(&entries, "SELECT * FROM notifications"))
	require.Len(t, entries, 1)
	assert.Equal(t, int64(7), entries[0].ID)
	assert.Equal(t, "push", entries[0].Origin)
	assert.True(t, entries[0].IsRead)

	var indexes int
	require.NoError(t, s.db.Get(&indexes,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='index' AND name IN ('idx_notifications_viewer', 'idx_notifications_recorded')"))
	assert.Equal(t, 2, indexes)
}
