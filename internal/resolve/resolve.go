// Package resolve implements the note/article reconciliation pipeline: given
// optional article metadata attached to a new note, it decides whether to
// reuse an existing article reference or create a new article record, then
// creates the note with a denormalized snapshot of title and url.
//
// The at-most-one-article-per-session guarantee lives in Session, an explicit
// per-entry-session cache owned by the caller rather than hidden module state.
package resolve

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/blogmark/blogmark/internal/store"
)

// ArticleMeta is the optional article metadata entered with a note.
type ArticleMeta struct {
	Title     string
	URL       string
	Author    string
	Published *time.Time
}

func (m ArticleMeta) empty() bool {
	return strings.TrimSpace(m.Title) == "" && strings.TrimSpace(m.URL) == ""
}

// key normalizes blog+title+url into the session cache key, so re-entering
// the same metadata resolves to the same article, editing either field before
// the first save forces re-resolution, and identical metadata under two
// different blogs yields two distinct articles.
func (m ArticleMeta) key(blogID int64) string {
	return fmt.Sprintf("%d\n%s\n%s", blogID,
		strings.ToLower(strings.TrimSpace(m.Title)),
		strings.ToLower(strings.TrimSpace(m.URL)))
}

// Session is the per-entry-session resolution cache. One Session spans one
// open note-entry interaction; Reset when the interaction closes. Concurrent
// note submissions within a session serialize through the internal mutex.
type Session struct {
	mu       sync.Mutex
	resolved map[string]int64
}

// NewSession creates an empty resolution session.
func NewSession() *Session {
	return &Session{resolved: make(map[string]int64)}
}

// Reset clears all cached resolutions.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resolved = make(map[string]int64)
}

// NoteInput is everything the user enters for one note.
type NoteInput struct {
	Excerpt      string
	PersonalNote string
	Article      ArticleMeta
}

// Resolver reconciles notes against articles through the store.
type Resolver struct {
	store store.Store
}

// New creates a Resolver over the given store.
func New(st store.Store) *Resolver {
	return &Resolver{store: st}
}

// Resolve returns the article id for the given metadata, creating the article
// record if this session has not seen the metadata before. A zero id with nil
// error means the note is uncategorized (no metadata supplied).
func (r *Resolver) Resolve(ctx context.Context, sess *Session, userID string, blogID int64, meta ArticleMeta) (int64, error) {
	if meta.empty() {
		return 0, nil
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	key := meta.key(blogID)
	if id, ok := sess.resolved[key]; ok {
		return id, nil
	}

	article := &store.Article{
		UserID:    userID,
		BlogID:    blogID,
		Title:     strings.TrimSpace(meta.Title),
		URL:       strings.TrimSpace(meta.URL),
		Author:    strings.TrimSpace(meta.Author),
		Published: meta.Published,
	}
	id, err := r.store.AddArticle(ctx, article)
	if err != nil {
		return 0, fmt.Errorf("resolving article: %w", err)
	}

	sess.resolved[key] = id
	return id, nil
}

// AddNote runs the full note-entry pipeline: validate input, resolve the
// article, then create the note with its snapshot. If article resolution
// fails, the note is never attempted, so there are no partial writes.
func (r *Resolver) AddNote(ctx context.Context, sess *Session, userID string, blogID int64, in NoteInput) (*store.Note, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: missing user identity", store.ErrValidation)
	}
	if strings.TrimSpace(in.Excerpt) == "" {
		return nil, fmt.Errorf("%w: excerpt is required", store.ErrValidation)
	}
	if strings.TrimSpace(in.PersonalNote) == "" {
		return nil, fmt.Errorf("%w: personal note is required", store.ErrValidation)
	}

	articleID, err := r.Resolve(ctx, sess, userID, blogID, in.Article)
	if err != nil {
		return nil, err
	}

	note := &store.Note{
		UserID:       userID,
		BlogID:       blogID,
		ArticleID:    articleID,
		ArticleTitle: strings.TrimSpace(in.Article.Title),
		ArticleURL:   strings.TrimSpace(in.Article.URL),
		Excerpt:      in.Excerpt,
		PersonalNote: in.PersonalNote,
	}
	if _, err := r.store.AddNote(ctx, note); err != nil {
		return nil, fmt.Errorf("creating note: %w", err)
	}
	return note, nil
}
