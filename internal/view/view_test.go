package view

import (
	"testing"
	"time"

	"github.com/blogmark/blogmark/internal/store"
)

func note(id, articleID int64, title, excerpt, personal string, created time.Time) *store.Note {
	return &store.Note{
		ID:           id,
		ArticleID:    articleID,
		ArticleTitle: title,
		Excerpt:      excerpt,
		PersonalNote: personal,
		CreatedAt:    created,
	}
}

func ids(notes []*store.Note) []int64 {
	out := make([]int64, len(notes))
	for i, n := range notes {
		out[i] = n.ID
	}
	return out
}

func sameIDs(a []int64, b ...int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestParseFilter(t *testing.T) {
	for _, s := range []string{"", "all", "with-article", "without-article"} {
		if _, err := ParseFilter(s); err != nil {
			t.Errorf("ParseFilter(%q) failed: %v", s, err)
		}
	}
	if _, err := ParseFilter("tagged"); err == nil {
		t.Error("expected error for unknown filter")
	}
}

func TestParseSort(t *testing.T) {
	for _, s := range []string{"", "newest", "oldest", "article"} {
		if _, err := ParseSort(s); err != nil {
			t.Errorf("ParseSort(%q) failed: %v", s, err)
		}
	}
	if _, err := ParseSort("random"); err == nil {
		t.Error("expected error for unknown sort")
	}
}

func TestViewFilterByArticlePresence(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	notes := []*store.Note{
		note(1, 10, "Post", "e1", "p1", base),
		note(2, 0, "", "e2", "p2", base.Add(time.Minute)),
		note(3, 11, "Other", "e3", "p3", base.Add(2*time.Minute)),
	}

	with := View(notes, Options{Filter: FilterWithArticle, Sort: SortOldest})
	if !sameIDs(ids(with), 1, 3) {
		t.Errorf("with-article filter: got %v", ids(with))
	}

	without := View(notes, Options{Filter: FilterWithoutArticle, Sort: SortOldest})
	if !sameIDs(ids(without), 2) {
		t.Errorf("without-article filter: got %v", ids(without))
	}

	all := View(notes, Options{Filter: FilterAll, Sort: SortOldest})
	if len(all) != 3 {
		t.Errorf("all filter: got %d notes", len(all))
	}
}

func TestViewSearch(t *testing.T) {
	base := time.Now().UTC()
	notes := []*store.Note{
		note(1, 0, "", "the gc garbage collector pauses", "investigate", base),
		note(2, 0, "", "unrelated", "GC tuning flags to try", base),
		note(3, 5, "Go GC Guide", "unrelated", "unrelated", base),
		note(4, 0, "", "nothing here", "nothing here", base),
	}

	got := View(notes, Options{Query: "gc", Sort: SortOldest})
	if len(got) != 3 {
		t.Fatalf("expected 3 matches across excerpt, note, and title; got %v", ids(got))
	}

	// Case-insensitive both directions.
	got = View(notes, Options{Query: "GARBAGE", Sort: SortOldest})
	if !sameIDs(ids(got), 1) {
		t.Errorf("uppercase query: got %v", ids(got))
	}

	// Whitespace-only query matches everything.
	got = View(notes, Options{Query: "   "})
	if len(got) != 4 {
		t.Errorf("blank query should not filter, got %d", len(got))
	}
}

func TestViewSortArticlePlacesUntitledFirst(t *testing.T) {
	base := time.Now().UTC()
	notes := []*store.Note{
		note(1, 1, "Zed", "e", "p", base),
		note(2, 0, "", "e", "p", base),
		note(3, 2, "Apple", "e", "p", base),
	}

	got := View(notes, Options{Sort: SortArticle})
	if !sameIDs(ids(got), 2, 3, 1) {
		t.Errorf("expected untitled, Apple, Zed; got %v", ids(got))
	}
}

func TestViewSortStability(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	// Same article title, distinct IDs: ties must keep input order.
	notes := []*store.Note{
		note(1, 1, "Same", "e", "p", base),
		note(2, 2, "Same", "e", "p", base),
		note(3, 3, "Same", "e", "p", base),
	}

	got := View(notes, Options{Sort: SortArticle})
	if !sameIDs(ids(got), 1, 2, 3) {
		t.Errorf("tie order changed: %v", ids(got))
	}

	// Equal timestamps under newest sort: same rule.
	got = View(notes, Options{Sort: SortNewest})
	if !sameIDs(ids(got), 1, 2, 3) {
		t.Errorf("tie order changed under newest sort: %v", ids(got))
	}
}

func TestViewNewestAndOldest(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	notes := []*store.Note{
		note(1, 0, "", "e", "p", base),
		note(2, 0, "", "e", "p", base.Add(time.Hour)),
		note(3, 0, "", "e", "p", base.Add(30*time.Minute)),
	}

	if got := View(notes, Options{Sort: SortNewest}); !sameIDs(ids(got), 2, 3, 1) {
		t.Errorf("newest: got %v", ids(got))
	}
	if got := View(notes, Options{Sort: SortOldest}); !sameIDs(ids(got), 1, 3, 2) {
		t.Errorf("oldest: got %v", ids(got))
	}
}

func TestViewDoesNotMutateInput(t *testing.T) {
	base := time.Now().UTC()
	notes := []*store.Note{
		note(1, 0, "", "e", "p", base),
		note(2, 0, "", "e", "p", base.Add(time.Hour)),
	}

	View(notes, Options{Sort: SortNewest})
	if !sameIDs(ids(notes), 1, 2) {
		t.Errorf("input slice reordered: %v", ids(notes))
	}
}

func TestGroupByArticle(t *testing.T) {
	base := time.Now().UTC()
	notes := []*store.Note{
		note(1, 0, "", "loose thought", "p", base),
		note(2, 7, "Post", "quote", "p", base),
		note(3, 0, "", "another loose thought", "p", base),
	}

	groups := GroupByArticle(notes)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}

	// Insertion order of first occurrence.
	if groups[0].Key != UncategorizedKey {
		t.Errorf("expected uncategorized group first, got %q", groups[0].Key)
	}
	if groups[1].Key != "article-7" || groups[1].Title != "Post" {
		t.Errorf("unexpected article group: %+v", groups[1])
	}

	if len(groups[0].Notes) != 2 || len(groups[1].Notes) != 1 {
		t.Errorf("bad partition: %d + %d notes", len(groups[0].Notes), len(groups[1].Notes))
	}

	// Every note in exactly one group.
	total := 0
	for _, g := range groups {
		total += len(g.Notes)
	}
	if total != len(notes) {
		t.Errorf("partition lost or duplicated notes: %d != %d", total, len(notes))
	}
}

func TestGroupTitleFromFirstNote(t *testing.T) {
	base := time.Now().UTC()
	notes := []*store.Note{
		{ID: 1, ArticleID: 7, ArticleTitle: "Original", ArticleURL: "https://a", Excerpt: "e", PersonalNote: "p", CreatedAt: base},
		{ID: 2, ArticleID: 7, ArticleTitle: "Drifted", ArticleURL: "https://b", Excerpt: "e", PersonalNote: "p", CreatedAt: base},
	}

	groups := GroupByArticle(notes)
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	if groups[0].Title != "Original" || groups[0].URL != "https://a" {
		t.Errorf("later note overwrote group header: %+v", groups[0])
	}
}

func TestGroupEmptyInput(t *testing.T) {
	if groups := GroupByArticle(nil); len(groups) != 0 {
		t.Errorf("expected no groups for empty input, got %d", len(groups))
	}
}
