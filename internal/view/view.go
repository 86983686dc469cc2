// Package view derives display orderings from note collections: grouping by
// article, presence filtering, substring search, and stable sorting. All
// functions are pure: they never mutate their input and never touch the store.
package view

import (
	"fmt"
	"sort"
	"strings"

	"github.com/blogmark/blogmark/internal/store"
)

// UncategorizedKey is the sentinel group key for notes without an article.
const UncategorizedKey = "uncategorized"

// Filter selects notes by article presence.
type Filter string

const (
	FilterAll            Filter = "all"
	FilterWithArticle    Filter = "with-article"
	FilterWithoutArticle Filter = "without-article"
)

// Sort selects the output ordering.
type Sort string

const (
	SortNewest  Sort = "newest"
	SortOldest  Sort = "oldest"
	SortArticle Sort = "article"
)

// ParseFilter validates a filter string; empty means all.
func ParseFilter(s string) (Filter, error) {
	switch Filter(s) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterWithArticle, FilterWithoutArticle:
		return Filter(s), nil
	}
	return "", fmt.Errorf("invalid filter %q (want all, with-article, or without-article)", s)
}

// ParseSort validates a sort string; empty means newest.
func ParseSort(s string) (Sort, error) {
	switch Sort(s) {
	case "", SortNewest:
		return SortNewest, nil
	case SortOldest, SortArticle:
		return Sort(s), nil
	}
	return "", fmt.Errorf("invalid sort %q (want newest, oldest, or article)", s)
}

// Options bundles one view request.
type Options struct {
	Filter Filter
	Query  string
	Sort   Sort
}

// View applies filter, then search, then sort, returning a new slice.
// Sort is stable: notes with equal keys keep their relative input order.
func View(notes []*store.Note, opts Options) []*store.Note {
	out := make([]*store.Note, 0, len(notes))
	query := strings.ToLower(strings.TrimSpace(opts.Query))

	for _, n := range notes {
		switch opts.Filter {
		case FilterWithArticle:
			if n.ArticleTitle == "" {
				continue
			}
		case FilterWithoutArticle:
			if n.ArticleTitle != "" {
				continue
			}
		}
		if query != "" && !matches(n, query) {
			continue
		}
		out = append(out, n)
	}

	switch opts.Sort {
	case SortOldest:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		})
	case SortArticle:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].ArticleTitle < out[j].ArticleTitle
		})
	default: // SortNewest
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	}

	return out
}

// matches reports whether the query appears in the excerpt, the personal
// annotation, or the denormalized article title, case-insensitively.
func matches(n *store.Note, query string) bool {
	return strings.Contains(strings.ToLower(n.Excerpt), query) ||
		strings.Contains(strings.ToLower(n.PersonalNote), query) ||
		strings.Contains(strings.ToLower(n.ArticleTitle), query)
}

// Group is one article bucket of notes. Title and URL come from the first
// note encountered for the key; later notes never overwrite them, which
// guards against inconsistent denormalized snapshots.
type Group struct {
	Key   string
	Title string
	URL   string
	Notes []*store.Note
}

// GroupByArticle partitions notes by their article reference, or the
// uncategorized sentinel when absent. Group order is the insertion order of
// first occurrence; notes within a group keep their input order. Every note
// lands in exactly one group.
func GroupByArticle(notes []*store.Note) []Group {
	index := make(map[string]int)
	var groups []Group

	for _, n := range notes {
		key := UncategorizedKey
		if n.ArticleID != 0 {
			key = fmt.Sprintf("article-%d", n.ArticleID)
		}

		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{
				Key:   key,
				Title: n.ArticleTitle,
				URL:   n.ArticleURL,
			})
		}
		groups[i].Notes = append(groups[i].Notes, n)
	}

	return groups
}
