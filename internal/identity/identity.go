// Package identity provides the current-user identity the record store scopes
// everything by. The id is opaque: either configured explicitly or generated
// once and persisted in the store's meta table.
package identity

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/blogmark/blogmark/internal/store"
)

const metaUserKey = "user_id"

// Provider yields the current user id.
type Provider interface {
	CurrentUser(ctx context.Context) (string, error)
}

// Static always returns a fixed, configured user id.
type Static struct {
	ID string
}

func (s Static) CurrentUser(ctx context.Context) (string, error) {
	if strings.TrimSpace(s.ID) == "" {
		return "", fmt.Errorf("%w: empty user id configured", store.ErrConfiguration)
	}
	return s.ID, nil
}

// Local resolves the machine-local user: read the persisted id from the meta
// table, generating and saving a fresh one on first use.
type Local struct {
	Store store.Store

	mu     sync.Mutex
	cached string
}

func (l *Local) CurrentUser(ctx context.Context) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cached != "" {
		return l.cached, nil
	}

	id, err := l.Store.MetaGet(ctx, metaUserKey)
	if err != nil {
		return "", fmt.Errorf("loading local user id: %w", err)
	}
	if id == "" {
		id = uuid.NewString()
		if err := l.Store.MetaSet(ctx, metaUserKey, id); err != nil {
			return "", fmt.Errorf("persisting local user id: %w", err)
		}
	}

	l.cached = id
	return id, nil
}

// ForUser returns a Static provider when an explicit id is configured,
// otherwise a Local provider over the store.
func ForUser(configured string, st store.Store) Provider {
	if strings.TrimSpace(configured) != "" {
		return Static{ID: configured}
	}
	return &Local{Store: st}
}
