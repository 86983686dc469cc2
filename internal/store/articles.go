package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// AddArticle inserts a new article under a blog.
func (s *SQLiteStore) AddArticle(ctx context.Context, a *Article) (int64, error) {
	if strings.TrimSpace(a.UserID) == "" {
		return 0, fmt.Errorf("%w: missing user id", ErrValidation)
	}
	if a.BlogID == 0 {
		return 0, fmt.Errorf("%w: article requires a blog", ErrValidation)
	}
	if a.Progress == "" {
		a.Progress = ProgressNotStarted
	}

	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO articles (user_id, blog_id, title, url, author, published, is_read, read_at, progress, progress_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.UserID, a.BlogID, a.Title, a.URL, a.Author, a.Published,
		a.Read, a.ReadAt, string(a.Progress), a.ProgressAt, now,
	)
	if err != nil {
		return 0, wrapPersistence("inserting article", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, wrapPersistence("getting last insert id", err)
	}

	a.ID = id
	a.CreatedAt = now
	return id, nil
}

// GetArticle retrieves an article by id, scoped to the owning user.
func (s *SQLiteStore) GetArticle(ctx context.Context, userID string, id int64) (*Article, error) {
	a := &Article{}
	var published, readAt, progressAt sql.NullTime
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, blog_id, title, url, author, published, is_read, read_at, progress, progress_at, created_at
		 FROM articles WHERE id = ? AND user_id = ?`, id, userID,
	).Scan(&a.ID, &a.UserID, &a.BlogID, &a.Title, &a.URL, &a.Author,
		&published, &a.Read, &readAt, &a.Progress, &progressAt, &a.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("article %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, wrapPersistence(fmt.Sprintf("getting article %d", id), err)
	}
	a.Published = nullTime(published)
	a.ReadAt = nullTime(readAt)
	a.ProgressAt = nullTime(progressAt)
	return a, nil
}

// ListArticles returns articles with optional blog and unread filtering,
// most recently created first.
func (s *SQLiteStore) ListArticles(ctx context.Context, userID string, opts ArticleListOpts) ([]*Article, error) {
	query := `SELECT id, user_id, blog_id, title, url, author, published, is_read, read_at, progress, progress_at, created_at
	          FROM articles WHERE user_id = ?`
	args := []interface{}{userID}

	if opts.BlogID != 0 {
		query += " AND blog_id = ?"
		args = append(args, opts.BlogID)
	}
	if opts.UnreadOnly {
		query += " AND is_read = 0"
	}

	query += " ORDER BY created_at DESC"
	if opts.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, opts.Limit, opts.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapPersistence("listing articles", err)
	}
	defer rows.Close()

	var articles []*Article
	for rows.Next() {
		a := &Article{}
		var published, readAt, progressAt sql.NullTime
		if err := rows.Scan(&a.ID, &a.UserID, &a.BlogID, &a.Title, &a.URL, &a.Author,
			&published, &a.Read, &readAt, &a.Progress, &progressAt, &a.CreatedAt); err != nil {
			return nil, wrapPersistence("scanning article row", err)
		}
		a.Published = nullTime(published)
		a.ReadAt = nullTime(readAt)
		a.ProgressAt = nullTime(progressAt)
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// MarkArticleRead flags an article read and stamps read_at.
func (s *SQLiteStore) MarkArticleRead(ctx context.Context, userID string, id int64) error {
	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx,
		`UPDATE articles SET is_read = 1, read_at = ?, progress = ?, progress_at = ?
		 WHERE id = ? AND user_id = ?`,
		now, string(ProgressCompleted), now, id, userID,
	)
	if err != nil {
		return wrapPersistence("marking article read", err)
	}
	return requireRow(result, fmt.Sprintf("article %d", id))
}

// SetArticleProgress updates the reading-progress state and stamps progress_at.
func (s *SQLiteStore) SetArticleProgress(ctx context.Context, userID string, id int64, p ReadingProgress) error {
	if _, err := ParseProgress(string(p)); err != nil {
		return err
	}
	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx,
		"UPDATE articles SET progress = ?, progress_at = ? WHERE id = ? AND user_id = ?",
		string(p), now, id, userID,
	)
	if err != nil {
		return wrapPersistence("setting article progress", err)
	}
	return requireRow(result, fmt.Sprintf("article %d", id))
}

// DeleteArticle removes an article. Notes referencing it keep their
// denormalized snapshots; article_id is nulled by the schema.
func (s *SQLiteStore) DeleteArticle(ctx context.Context, userID string, id int64) error {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM articles WHERE id = ? AND user_id = ?", id, userID,
	)
	if err != nil {
		return wrapPersistence("deleting article", err)
	}
	return requireRow(result, fmt.Sprintf("article %d", id))
}
