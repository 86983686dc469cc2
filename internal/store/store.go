// Package store provides the SQLite storage layer for blogmark.
//
// All reading data lives in a single SQLite database file, including:
// - Registered blogs with visit timestamps
// - Tracked articles with read/progress state
// - Notes (excerpt + personal annotation) with denormalized article snapshots
// - User profiles for recommendations
//
// Every record is scoped to an owning user id; all queries constrain on it.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// DefaultDBPath is the default database location.
const DefaultDBPath = "~/.blogmark/blogmark.db"

// ReadingProgress tracks how far along an article the user is.
type ReadingProgress string

const (
	ProgressNotStarted ReadingProgress = "not_started"
	ProgressInProgress ReadingProgress = "in_progress"
	ProgressCompleted  ReadingProgress = "completed"
)

// ParseProgress validates a progress string.
func ParseProgress(s string) (ReadingProgress, error) {
	switch ReadingProgress(s) {
	case ProgressNotStarted, ProgressInProgress, ProgressCompleted:
		return ReadingProgress(s), nil
	}
	return "", fmt.Errorf("%w: invalid reading progress %q", ErrValidation, s)
}

// Blog represents a registered blog.
type Blog struct {
	ID          int64      `json:"id"`
	UserID      string     `json:"user_id"`
	Name        string     `json:"name"`
	URL         string     `json:"url"`
	Category    string     `json:"category,omitempty"`
	LastVisited *time.Time `json:"last_visited,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Article represents a tracked piece of content belonging to a blog.
type Article struct {
	ID         int64           `json:"id"`
	UserID     string          `json:"user_id"`
	BlogID     int64           `json:"blog_id"`
	Title      string          `json:"title"`
	URL        string          `json:"url"`
	Author     string          `json:"author,omitempty"`
	Published  *time.Time      `json:"published,omitempty"`
	Read       bool            `json:"read"`
	ReadAt     *time.Time      `json:"read_at,omitempty"`
	Progress   ReadingProgress `json:"progress"`
	ProgressAt *time.Time      `json:"progress_at,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Note represents a saved excerpt with a personal annotation.
//
// ArticleID is zero for uncategorized notes. ArticleTitle and ArticleURL are
// snapshots taken at creation time and never re-synced from the live article,
// so the note stays displayable after the article is deleted.
type Note struct {
	ID           int64     `json:"id"`
	UserID       string    `json:"user_id"`
	BlogID       int64     `json:"blog_id"`
	ArticleID    int64     `json:"article_id"`
	ArticleTitle string    `json:"article_title"`
	ArticleURL   string    `json:"article_url"`
	Excerpt      string    `json:"excerpt"`
	PersonalNote string    `json:"personal_note"`
	CreatedAt    time.Time `json:"created_at"`
}

// ExpertiseLevel is a self-assessed skill level for one topic.
type ExpertiseLevel string

const (
	LevelBeginner     ExpertiseLevel = "beginner"
	LevelIntermediate ExpertiseLevel = "intermediate"
	LevelAdvanced     ExpertiseLevel = "advanced"
	LevelExpert       ExpertiseLevel = "expert"
)

// Ordinal maps a level to its numeric weight. Unknown levels weigh 0.
func (l ExpertiseLevel) Ordinal() int {
	switch l {
	case LevelBeginner:
		return 1
	case LevelIntermediate:
		return 2
	case LevelAdvanced:
		return 3
	case LevelExpert:
		return 4
	}
	return 0
}

// ParseExpertiseLevel validates a level string.
func ParseExpertiseLevel(s string) (ExpertiseLevel, error) {
	switch ExpertiseLevel(s) {
	case LevelBeginner, LevelIntermediate, LevelAdvanced, LevelExpert:
		return ExpertiseLevel(s), nil
	}
	return "", fmt.Errorf("%w: invalid expertise level %q", ErrValidation, s)
}

// Profile holds a user's reading interests and preferences.
// Profiles are upserted wholesale; there is no partial-field merge.
type Profile struct {
	UserID          string                    `json:"user_id"`
	Interests       []string                  `json:"interests"`
	Expertise       map[string]ExpertiseLevel `json:"expertise_areas"`
	PreferredLength string                    `json:"preferred_length,omitempty"`
	ContentDepth    string                    `json:"content_depth,omitempty"`
	Goals           []string                  `json:"learning_goals,omitempty"`
	UpdatedAt       time.Time                 `json:"updated_at"`
}

// ArticleListOpts controls filtering for ListArticles.
type ArticleListOpts struct {
	BlogID     int64 // 0 = all blogs
	UnreadOnly bool
	Limit      int
	Offset     int
}

// NoteListOpts controls filtering and ordering for ListNotes.
type NoteListOpts struct {
	BlogID int64 // 0 = all blogs
	Oldest bool  // default order is newest first
	Limit  int
	Offset int
}

// Stats holds observability counts for one user's records.
type Stats struct {
	BlogCount    int64
	ArticleCount int64
	NoteCount    int64
	DBSizeBytes  int64
}

// StoreConfig holds configuration for NewStore.
type StoreConfig struct {
	DBPath string
}

// Store defines the record store interface the rest of blogmark depends on.
type Store interface {
	// Blogs
	AddBlog(ctx context.Context, b *Blog) (int64, error)
	GetBlog(ctx context.Context, userID string, id int64) (*Blog, error)
	ListBlogs(ctx context.Context, userID string) ([]*Blog, error)
	TouchBlogVisited(ctx context.Context, userID string, id int64) error
	UpdateBlog(ctx context.Context, b *Blog) error
	DeleteBlog(ctx context.Context, userID string, id int64) error

	// Articles
	AddArticle(ctx context.Context, a *Article) (int64, error)
	GetArticle(ctx context.Context, userID string, id int64) (*Article, error)
	ListArticles(ctx context.Context, userID string, opts ArticleListOpts) ([]*Article, error)
	MarkArticleRead(ctx context.Context, userID string, id int64) error
	SetArticleProgress(ctx context.Context, userID string, id int64, p ReadingProgress) error
	DeleteArticle(ctx context.Context, userID string, id int64) error

	// Notes
	AddNote(ctx context.Context, n *Note) (int64, error)
	GetNote(ctx context.Context, userID string, id int64) (*Note, error)
	ListNotes(ctx context.Context, userID string, opts NoteListOpts) ([]*Note, error)
	DeleteNote(ctx context.Context, userID string, id int64) error

	// Profile
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	PutProfile(ctx context.Context, p *Profile) error

	// Meta (schema bookkeeping, local identity bootstrap)
	MetaGet(ctx context.Context, key string) (string, error)
	MetaSet(ctx context.Context, key, value string) error

	// Observability
	Stats(ctx context.Context, userID string) (*Stats, error)

	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewStore creates a new SQLite-backed Store.
// Pass ":memory:" for in-memory databases (testing).
func NewStore(cfg StoreConfig) (Store, error) {
	if cfg.DBPath == "" {
		cfg.DBPath = expandPath(DefaultDBPath)
	}

	// Create parent directory for non-memory databases
	if cfg.DBPath != ":memory:" {
		dir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Verify connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Enable WAL mode and foreign keys
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}

	s := &SQLiteStore{
		db:     db,
		dbPath: cfg.DBPath,
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// GetDB exposes the underlying handle for schema introspection in tests.
func (s *SQLiteStore) GetDB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Stats returns record counts for one user plus the database file size.
func (s *SQLiteStore) Stats(ctx context.Context, userID string) (*Stats, error) {
	st := &Stats{}

	counts := []struct {
		query string
		dst   *int64
	}{
		{"SELECT COUNT(*) FROM blogs WHERE user_id = ?", &st.BlogCount},
		{"SELECT COUNT(*) FROM articles WHERE user_id = ?", &st.ArticleCount},
		{"SELECT COUNT(*) FROM notes WHERE user_id = ?", &st.NoteCount},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query, userID).Scan(c.dst); err != nil {
			return nil, wrapPersistence("counting records", err)
		}
	}

	if s.dbPath != ":memory:" {
		if fi, err := os.Stat(s.dbPath); err == nil {
			st.DBSizeBytes = fi.Size()
		}
	}
	return st, nil
}

// expandPath expands ~ to home directory.
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}

// nullTime converts a nullable scan target to *time.Time.
func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
