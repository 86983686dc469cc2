package store

import (
	"fmt"
)

const schemaVersion = "1"

// migrate creates all tables if they don't exist and seeds metadata.
func (s *SQLiteStore) migrate() error {
	bootstrapDone, err := s.isMetaFlagEnabled("schema_bootstrap_complete")
	if err != nil {
		return fmt.Errorf("checking bootstrap state: %w", err)
	}

	if !bootstrapDone {
		if err := s.runBootstrapDDL(); err != nil {
			return err
		}
	}

	// Seed metadata (outside bootstrap transaction; meta table now exists)
	if err := s.seedMeta(); err != nil {
		return fmt.Errorf("seeding metadata: %w", err)
	}

	if !bootstrapDone {
		if err := s.setMetaFlag("schema_bootstrap_complete"); err != nil {
			return fmt.Errorf("marking bootstrap complete: %w", err)
		}
	}

	// Schema evolution: reading-progress columns on articles.
	// Uses ALTER TABLE which can't be inside CREATE TABLE IF NOT EXISTS;
	// we check for column existence first to make it idempotent.
	if err := s.migrateArticleProgressColumns(); err != nil {
		return fmt.Errorf("migrating article progress columns: %w", err)
	}

	// Schema evolution: blog category column.
	if err := s.migrateBlogCategoryColumn(); err != nil {
		return fmt.Errorf("migrating blog category column: %w", err)
	}

	return nil
}

func (s *SQLiteStore) runBootstrapDDL() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS blogs (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id      TEXT NOT NULL,
			name         TEXT NOT NULL,
			url          TEXT NOT NULL,
			last_visited DATETIME,
			created_at   DATETIME NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS articles (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id    TEXT NOT NULL,
			blog_id    INTEGER NOT NULL REFERENCES blogs(id) ON DELETE CASCADE,
			title      TEXT NOT NULL,
			url        TEXT NOT NULL,
			author     TEXT NOT NULL DEFAULT '',
			published  DATETIME,
			is_read    INTEGER NOT NULL DEFAULT 0,
			read_at    DATETIME,
			created_at DATETIME NOT NULL
		)`,

		// article_id is nullable: notes without an article are "uncategorized".
		// Deleting an article keeps its notes; their snapshots stay intact.
		`CREATE TABLE IF NOT EXISTS notes (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id       TEXT NOT NULL,
			blog_id       INTEGER NOT NULL REFERENCES blogs(id) ON DELETE CASCADE,
			article_id    INTEGER REFERENCES articles(id) ON DELETE SET NULL,
			article_title TEXT NOT NULL DEFAULT '',
			article_url   TEXT NOT NULL DEFAULT '',
			excerpt       TEXT NOT NULL,
			personal_note TEXT NOT NULL,
			created_at    DATETIME NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS profiles (
			user_id          TEXT PRIMARY KEY,
			interests        TEXT NOT NULL DEFAULT '[]',
			expertise        TEXT NOT NULL DEFAULT '{}',
			preferred_length TEXT NOT NULL DEFAULT '',
			content_depth    TEXT NOT NULL DEFAULT '',
			goals            TEXT NOT NULL DEFAULT '[]',
			updated_at       DATETIME NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_blogs_user ON blogs(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_user_blog ON articles(user_id, blog_id)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_unread ON articles(user_id, is_read)`,
		`CREATE INDEX IF NOT EXISTS idx_notes_user_created ON notes(user_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_notes_blog ON notes(blog_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("bootstrap DDL: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) seedMeta() error {
	seeds := map[string]string{
		"schema_version": schemaVersion,
	}
	for key, value := range seeds {
		_, err := s.db.Exec(
			"INSERT INTO meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO NOTHING",
			key, value,
		)
		if err != nil {
			return fmt.Errorf("seeding %s: %w", key, err)
		}
	}
	return nil
}

func (s *SQLiteStore) isMetaFlagEnabled(key string) (bool, error) {
	var exists int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='meta'",
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	if exists == 0 {
		return false, nil
	}

	var value string
	err = s.db.QueryRow("SELECT value FROM meta WHERE key = ?", key).Scan(&value)
	if err != nil {
		// Missing row means the flag was never set.
		return false, nil
	}
	return value == "1", nil
}

func (s *SQLiteStore) setMetaFlag(key string) error {
	_, err := s.db.Exec(
		"INSERT INTO meta (key, value) VALUES (?, '1') ON CONFLICT(key) DO UPDATE SET value='1'",
		key,
	)
	return err
}

func (s *SQLiteStore) hasColumn(table, column string) (bool, error) {
	var count int
	err := s.db.QueryRow(
		fmt.Sprintf("SELECT COUNT(*) FROM pragma_table_info('%s') WHERE name = ?", table),
		column,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count == 1, nil
}

func (s *SQLiteStore) migrateArticleProgressColumns() error {
	has, err := s.hasColumn("articles", "progress")
	if err != nil {
		return err
	}
	if has {
		return nil
	}

	alters := []string{
		"ALTER TABLE articles ADD COLUMN progress TEXT NOT NULL DEFAULT 'not_started'",
		"ALTER TABLE articles ADD COLUMN progress_at DATETIME",
	}
	for _, stmt := range alters {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) migrateBlogCategoryColumn() error {
	has, err := s.hasColumn("blogs", "category")
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	_, err = s.db.Exec("ALTER TABLE blogs ADD COLUMN category TEXT NOT NULL DEFAULT ''")
	return err
}
