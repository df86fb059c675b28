package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS notifications (
	id              INTEGER PRIMARY KEY,
	viewer          TEXT NOT NULL DEFAULT '',
	type            TEXT NOT NULL,
	sender_nickname TEXT NOT NULL DEFAULT '',
	content_title   TEXT,
	content         TEXT NOT NULL DEFAULT '',
	target_id       INTEGER,
	is_read         INTEGER NOT NULL DEFAULT 0,
	created_at      TEXT NOT NULL DEFAULT '',
	recorded_at     INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_notifications_viewer ON notifications(viewer);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
ALTER TABLE notifications ADD COLUMN origin TEXT NOT NULL DEFAULT 'fetch';

CREATE INDEX IF NOT EXISTS idx_notifications_recorded ON notifications(viewer, recorded_at DESC);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
	{
		version: 3,
		sql: `
CREATE TABLE notifications_v3 (
	id              INTEGER NOT NULL,
	viewer          TEXT NOT NULL DEFAULT '',
	type            TEXT NOT NULL,
	sender_nickname TEXT NOT NULL DEFAULT '',
	content_title   TEXT,
	content         TEXT NOT NULL DEFAULT '',
	target_id       INTEGER,
	is_read         INTEGER NOT NULL DEFAULT 0,
	created_at      TEXT NOT NULL DEFAULT '',
	recorded_at     INTEGER NOT NULL,
	origin          TEXT NOT NULL DEFAULT 'fetch',
	PRIMARY KEY (viewer, id)
);

INSERT INTO notifications_v3 (
	id, viewer, type, sender_nickname, content_title, content,
	target_id, is_read, created_at, recorded_at, origin
)
SELECT
	id, viewer, type, sender_nickname, content_title, content,
	target_id, is_read, created_at, recorded_at, origin
FROM notifications;

DROP TABLE notifications;
ALTER TABLE notifications_v3 RENAME TO notifications;

CREATE INDEX IF NOT EXISTS idx_notifications_viewer ON notifications(viewer);
CREATE INDEX IF NOT EXISTS idx_notifications_recorded ON notifications(viewer, recorded_at DESC);

INSERT INTO schema_version (version) VALUES (3);
`,
	},
}
