package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// AddNote inserts a new note. Excerpt and personal annotation are required;
// the article snapshot fields are stored as given and never re-synced.
func (s *SQLiteStore) AddNote(ctx context.Context, n *Note) (int64, error) {
	if strings.TrimSpace(n.UserID) == "" {
		return 0, fmt.Errorf("%w: missing user id", ErrValidation)
	}
	if n.BlogID == 0 {
		return 0, fmt.Errorf("%w: note requires a blog", ErrValidation)
	}
	if strings.TrimSpace(n.Excerpt) == "" {
		return 0, fmt.Errorf("%w: excerpt is required", ErrValidation)
	}
	if strings.TrimSpace(n.PersonalNote) == "" {
		return 0, fmt.Errorf("%w: personal note is required", ErrValidation)
	}

	var articleID interface{}
	if n.ArticleID != 0 {
		articleID = n.ArticleID
	}

	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO notes (user_id, blog_id, article_id, article_title, article_url, excerpt, personal_note, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		n.UserID, n.BlogID, articleID, n.ArticleTitle, n.ArticleURL,
		n.Excerpt, n.PersonalNote, now,
	)
	if err != nil {
		return 0, wrapPersistence("inserting note", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, wrapPersistence("getting last insert id", err)
	}

	n.ID = id
	n.CreatedAt = now
	return id, nil
}

// GetNote retrieves a note by id, scoped to the owning user.
func (s *SQLiteStore) GetNote(ctx context.Context, userID string, id int64) (*Note, error) {
	n := &Note{}
	var articleID sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, blog_id, article_id, article_title, article_url, excerpt, personal_note, created_at
		 FROM notes WHERE id = ? AND user_id = ?`, id, userID,
	).Scan(&n.ID, &n.UserID, &n.BlogID, &articleID, &n.ArticleTitle,
		&n.ArticleURL, &n.Excerpt, &n.PersonalNote, &n.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("note %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, wrapPersistence(fmt.Sprintf("getting note %d", id), err)
	}
	n.ArticleID = articleID.Int64
	return n, nil
}

// ListNotes returns notes ordered by creation time, newest first unless
// opts.Oldest is set, with optional blog filtering.
func (s *SQLiteStore) ListNotes(ctx context.Context, userID string, opts NoteListOpts) ([]*Note, error) {
	query := `SELECT id, user_id, blog_id, article_id, article_title, article_url, excerpt, personal_note, created_at
	          FROM notes WHERE user_id = ?`
	args := []interface{}{userID}

	if opts.BlogID != 0 {
		query += " AND blog_id = ?"
		args = append(args, opts.BlogID)
	}

	order := "DESC"
	if opts.Oldest {
		order = "ASC"
	}
	query += fmt.Sprintf(" ORDER BY created_at %s, id %s", order, order)
	if opts.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, opts.Limit, opts.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapPersistence("listing notes", err)
	}
	defer rows.Close()

	var notes []*Note
	for rows.Next() {
		n := &Note{}
		var articleID sql.NullInt64
		if err := rows.Scan(&n.ID, &n.UserID, &n.BlogID, &articleID, &n.ArticleTitle,
			&n.ArticleURL, &n.Excerpt, &n.PersonalNote, &n.CreatedAt); err != nil {
			return nil, wrapPersistence("scanning note row", err)
		}
		n.ArticleID = articleID.Int64
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// DeleteNote removes a note.
func (s *SQLiteStore) DeleteNote(ctx context.Context, userID string, id int64) error {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM notes WHERE id = ? AND user_id = ?", id, userID,
	)
	if err != nil {
		return wrapPersistence("deleting note", err)
	}
	return requireRow(result, fmt.Sprintf("note %d", id))
}
