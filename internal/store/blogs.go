package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// AddBlog inserts a new blog for the owning user.
func (s *SQLiteStore) AddBlog(ctx context.Context, b *Blog) (int64, error) {
	if strings.TrimSpace(b.UserID) == "" {
		return 0, fmt.Errorf("%w: missing user id", ErrValidation)
	}
	if strings.TrimSpace(b.Name) == "" {
		return 0, fmt.Errorf("%w: blog name is required", ErrValidation)
	}
	if strings.TrimSpace(b.URL) == "" {
		return 0, fmt.Errorf("%w: blog url is required", ErrValidation)
	}

	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO blogs (user_id, name, url, category, last_visited, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		b.UserID, b.Name, b.URL, b.Category, b.LastVisited, now,
	)
	if err != nil {
		return 0, wrapPersistence("inserting blog", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, wrapPersistence("getting last insert id", err)
	}

	b.ID = id
	b.CreatedAt = now
	return id, nil
}

// GetBlog retrieves a blog by id, scoped to the owning user.
func (s *SQLiteStore) GetBlog(ctx context.Context, userID string, id int64) (*Blog, error) {
	b := &Blog{}
	var visited sql.NullTime
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, url, category, last_visited, created_at
		 FROM blogs WHERE id = ? AND user_id = ?`, id, userID,
	).Scan(&b.ID, &b.UserID, &b.Name, &b.URL, &b.Category, &visited, &b.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("blog %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, wrapPersistence(fmt.Sprintf("getting blog %d", id), err)
	}
	b.LastVisited = nullTime(visited)
	return b, nil
}

// ListBlogs returns all blogs for a user, most recently created first.
func (s *SQLiteStore) ListBlogs(ctx context.Context, userID string) ([]*Blog, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, name, url, category, last_visited, created_at
		 FROM blogs WHERE user_id = ? ORDER BY created_at DESC`, userID,
	)
	if err != nil {
		return nil, wrapPersistence("listing blogs", err)
	}
	defer rows.Close()

	var blogs []*Blog
	for rows.Next() {
		b := &Blog{}
		var visited sql.NullTime
		if err := rows.Scan(&b.ID, &b.UserID, &b.Name, &b.URL, &b.Category,
			&visited, &b.CreatedAt); err != nil {
			return nil, wrapPersistence("scanning blog row", err)
		}
		b.LastVisited = nullTime(visited)
		blogs = append(blogs, b)
	}
	return blogs, rows.Err()
}

// TouchBlogVisited updates the last_visited timestamp to now.
func (s *SQLiteStore) TouchBlogVisited(ctx context.Context, userID string, id int64) error {
	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx,
		"UPDATE blogs SET last_visited = ? WHERE id = ? AND user_id = ?", now, id, userID,
	)
	if err != nil {
		return wrapPersistence("touching blog visit", err)
	}
	return requireRow(result, fmt.Sprintf("blog %d", id))
}

// UpdateBlog rewrites a blog's editable fields (name, url, category).
func (s *SQLiteStore) UpdateBlog(ctx context.Context, b *Blog) error {
	if strings.TrimSpace(b.Name) == "" {
		return fmt.Errorf("%w: blog name is required", ErrValidation)
	}
	result, err := s.db.ExecContext(ctx,
		"UPDATE blogs SET name = ?, url = ?, category = ? WHERE id = ? AND user_id = ?",
		b.Name, b.URL, b.Category, b.ID, b.UserID,
	)
	if err != nil {
		return wrapPersistence("updating blog", err)
	}
	return requireRow(result, fmt.Sprintf("blog %d", b.ID))
}

// DeleteBlog removes a blog. Articles and notes under it cascade away.
func (s *SQLiteStore) DeleteBlog(ctx context.Context, userID string, id int64) error {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM blogs WHERE id = ? AND user_id = ?", id, userID,
	)
	if err != nil {
		return wrapPersistence("deleting blog", err)
	}
	return requireRow(result, fmt.Sprintf("blog %d", id))
}

// requireRow converts a zero-row update/delete into ErrNotFound.
func requireRow(result sql.Result, what string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return wrapPersistence("checking rows affected", err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}
