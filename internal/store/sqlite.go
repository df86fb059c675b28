package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/memorybox/notification-center/internal/model"
)

// SQLiteStore implements Journal using a local SQLite database.
type SQLiteStore struct {
	db  *sqlx.DB
	now func() time.Time
}

// Option configures a SQLiteStore.
type Option func(*SQLiteStore)

// WithClock replaces time.Now for recorded timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *SQLiteStore) { s.now = now }
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string, opts ...Option) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// An in-memory database exists per connection.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	s := &SQLiteStore{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SchemaVersion returns the highest applied migration.
func (s *SQLiteStore) SchemaVersion() (int, error) {
	var v int
	if err := s.db.Get(&v, "SELECT COALESCE(MAX(version), 0) FROM schema_version"); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return v, nil
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		currentVersion, err = s.SchemaVersion()
		if err != nil {
			return err
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// Record inserts or refreshes a batch of notifications for viewer. Ids are
// scoped per viewer. A push upgrades the stored origin; a later fetch of
// the same notification leaves it alone.
func (s *SQLiteStore) Record(
	ctx context.Context,
	viewer string,
	origin Origin,
	items ...model.Notification,
) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	const query = `
		INSERT INTO notifications (
			id, viewer, type, sender_nickname,
			content_title, content, target_id,
			is_read, created_at, origin, recorded_at
		) VALUES (
			?, ?, ?, ?,
			?, ?, ?,
			?, ?, ?, ?
		)
		ON CONFLICT(viewer, id) DO UPDATE SET
			type            = excluded.type,
			sender_nickname = excluded.sender_nickname,
			content_title   = excluded.content_title,
			content         = excluded.content,
			target_id       = excluded.target_id,
			is_read         = MAX(notifications.is_read, excluded.is_read),
			created_at      = excluded.created_at,
			origin          = CASE
				WHEN excluded.origin = 'push' THEN 'push'
				ELSE notifications.origin
			END`

	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing record statement: %w", err)
	}
	defer stmt.Close()

	recordedAt := s.now().UnixMilli()
	for _, n := range items {
		var title sql.NullString
		if n.ContentTitle != nil {
			title = sql.NullString{String: *n.ContentTitle, Valid: true}
		}
		var target sql.NullInt64
		if n.TargetID != nil {
			target = sql.NullInt64{Int64: *n.TargetID, Valid: true}
		}

		_, err = stmt.ExecContext(ctx,
			n.ID, viewer, string(n.Type), n.SenderNickname,
			title, n.Content, target,
			n.IsRead, n.CreatedAt, string(origin), recordedAt,
		)
		if err != nil {
			return fmt.Errorf("recording notification %d: %w", n.ID, err)
		}
	}

	return tx.Commit()
}

// MarkRead sets the read flag of one of viewer's journaled notifications.
// Unknown ids are ignored.
func (s *SQLiteStore) MarkRead(ctx context.Context, viewer string, id int64) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET is_read = 1 WHERE viewer = ? AND id = ?", viewer, id)
	if err != nil {
		return fmt.Errorf("marking notification %d read: %w", id, err)
	}
	return nil
}

// Recent returns up to limit entries for viewer, most recently recorded
// first. A non-positive limit returns every entry.
func (s *SQLiteStore) Recent(ctx context.Context, viewer string, limit int) ([]Entry, error) {
	query := `
		SELECT id, viewer, type, sender_nickname, content_title, content,
			target_id, is_read, created_at, origin, recorded_at
		FROM notifications
		WHERE viewer = ?
		ORDER BY recorded_at DESC, id DESC`
	args := []interface{}{viewer}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	var entries []Entry
	if err := s.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("querying recent notifications: %w", err)
	}
	return entries, nil
}

// CountUnread counts unread entries for viewer.
func (s *SQLiteStore) CountUnread(ctx context.Context, viewer string) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM notifications WHERE viewer = ? AND is_read = 0", viewer)
	if err != nil {
		return 0, fmt.Errorf("counting unread notifications: %w", err)
	}
	return count, nil
}

var _ Journal = (*SQLiteStore)(nil)
