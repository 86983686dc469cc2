package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// GetProfile retrieves the user's profile, or ErrNotFound if never saved.
func (s *SQLiteStore) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	p := &Profile{UserID: userID}
	var interests, expertise, goals string
	err := s.db.QueryRowContext(ctx,
		`SELECT interests, expertise, preferred_length, content_depth, goals, updated_at
		 FROM profiles WHERE user_id = ?`, userID,
	).Scan(&interests, &expertise, &p.PreferredLength, &p.ContentDepth, &goals, &p.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("profile for user %s: %w", userID, ErrNotFound)
	}
	if err != nil {
		return nil, wrapPersistence("getting profile", err)
	}

	if err := json.Unmarshal([]byte(interests), &p.Interests); err != nil {
		return nil, wrapPersistence("decoding profile interests", err)
	}
	if err := json.Unmarshal([]byte(expertise), &p.Expertise); err != nil {
		return nil, wrapPersistence("decoding profile expertise", err)
	}
	if err := json.Unmarshal([]byte(goals), &p.Goals); err != nil {
		return nil, wrapPersistence("decoding profile goals", err)
	}
	return p, nil
}

// PutProfile upserts the profile wholesale: the stored row is replaced with
// exactly the given fields, no partial-field merge.
func (s *SQLiteStore) PutProfile(ctx context.Context, p *Profile) error {
	if strings.TrimSpace(p.UserID) == "" {
		return fmt.Errorf("%w: missing user id", ErrValidation)
	}
	for _, lvl := range p.Expertise {
		if _, err := ParseExpertiseLevel(string(lvl)); err != nil {
			return err
		}
	}

	interests, err := json.Marshal(emptyIfNil(p.Interests))
	if err != nil {
		return wrapPersistence("encoding profile interests", err)
	}
	expertise, err := json.Marshal(p.Expertise)
	if err != nil {
		return wrapPersistence("encoding profile expertise", err)
	}
	if p.Expertise == nil {
		expertise = []byte("{}")
	}
	goals, err := json.Marshal(emptyIfNil(p.Goals))
	if err != nil {
		return wrapPersistence("encoding profile goals", err)
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO profiles (user_id, interests, expertise, preferred_length, content_depth, goals, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		   interests = excluded.interests,
		   expertise = excluded.expertise,
		   preferred_length = excluded.preferred_length,
		   content_depth = excluded.content_depth,
		   goals = excluded.goals,
		   updated_at = excluded.updated_at`,
		p.UserID, string(interests), string(expertise),
		p.PreferredLength, p.ContentDepth, string(goals), now,
	)
	if err != nil {
		return wrapPersistence("saving profile", err)
	}
	p.UpdatedAt = now
	return nil
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
