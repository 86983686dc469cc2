package recommend

import (
	"testing"

	"github.com/blogmark/blogmark/internal/store"
)

func art(id, blogID int64, title string, read bool) *store.Article {
	return &store.Article{ID: id, BlogID: blogID, Title: title, Read: read}
}

func profile(interests []string, expertise map[string]store.ExpertiseLevel) *store.Profile {
	return &store.Profile{UserID: "u1", Interests: interests, Expertise: expertise}
}

func TestRankSkipsReadArticles(t *testing.T) {
	articles := []*store.Article{
		art(1, 1, "Go Internals", true),
		art(2, 1, "Go Internals Part 2", false),
	}
	got := Rank(articles, nil, profile([]string{"go"}, nil), 10)
	if len(got) != 1 || got[0].Article.ID != 2 {
		t.Errorf("expected only the unread article, got %+v", got)
	}
}

func TestRankInterestMatching(t *testing.T) {
	blogNames := map[int64]string{1: "Database Weekly"}
	articles := []*store.Article{
		art(1, 1, "Postgres vacuuming", false), // blog name matches "database"
		art(2, 2, "Go scheduler deep dive", false),
		art(3, 2, "Knitting for fun", false),
	}
	p := profile([]string{"database", "go"}, nil)

	got := Rank(articles, blogNames, p, 10)
	scores := map[int64]float64{}
	for _, s := range got {
		scores[s.Article.ID] = s.Score
	}

	if scores[1] != 2 {
		t.Errorf("blog-name match: score = %v, want 2", scores[1])
	}
	if scores[2] != 2 {
		t.Errorf("title match: score = %v, want 2", scores[2])
	}
	if scores[3] != 0 {
		t.Errorf("no match: score = %v, want 0", scores[3])
	}
}

func TestRankMultipleInterestsAccumulate(t *testing.T) {
	articles := []*store.Article{art(1, 1, "Go database tuning", false)}
	p := profile([]string{"go", "database"}, nil)
	got := Rank(articles, nil, p, 10)
	if got[0].Score != 4 {
		t.Errorf("two matching interests: score = %v, want 4", got[0].Score)
	}
}

func TestRankCaseInsensitive(t *testing.T) {
	articles := []*store.Article{art(1, 1, "ADVANCED GO PATTERNS", false)}
	p := profile([]string{"Go"}, nil)
	got := Rank(articles, nil, p, 10)
	if got[0].Score < 2 {
		t.Errorf("case-insensitive interest match failed: %v", got[0].Score)
	}
}

func TestRankExpertiseBonuses(t *testing.T) {
	articles := []*store.Article{
		art(1, 1, "Advanced memory management", false),
		art(2, 1, "Beginner guide to testing", false),
	}

	// High mean expertise: advanced bonus applies, beginner does not.
	high := profile(nil, map[string]store.ExpertiseLevel{
		"go": store.LevelAdvanced, "db": store.LevelExpert,
	})
	got := Rank(articles, nil, high, 10)
	scores := map[int64]float64{}
	for _, s := range got {
		scores[s.Article.ID] = s.Score
	}
	if scores[1] != 1 {
		t.Errorf("advanced bonus: score = %v, want 1", scores[1])
	}
	if scores[2] != 0 {
		t.Errorf("beginner bonus should not apply: score = %v", scores[2])
	}

	// Low mean expertise: the reverse.
	low := profile(nil, map[string]store.ExpertiseLevel{"go": store.LevelBeginner})
	got = Rank(articles, nil, low, 10)
	scores = map[int64]float64{}
	for _, s := range got {
		scores[s.Article.ID] = s.Score
	}
	if scores[1] != 0 {
		t.Errorf("advanced bonus should not apply: score = %v", scores[1])
	}
	if scores[2] != 1 {
		t.Errorf("beginner bonus: score = %v, want 1", scores[2])
	}
}

func TestRankEmptyExpertiseGetsBeginnerBonus(t *testing.T) {
	articles := []*store.Article{art(1, 1, "Beginner Go", false)}
	got := Rank(articles, nil, profile(nil, nil), 10)
	// Mean of an empty map is 0, which is <= 2.
	if got[0].Score != 1 {
		t.Errorf("score = %v, want 1", got[0].Score)
	}
}

func TestRankStableTiesAndDescending(t *testing.T) {
	articles := []*store.Article{
		art(1, 1, "irrelevant one", false),
		art(2, 1, "go concurrency", false),
		art(3, 1, "irrelevant two", false),
		art(4, 1, "go generics", false),
	}
	got := Rank(articles, nil, profile([]string{"go"}, nil), 10)

	wantOrder := []int64{2, 4, 1, 3}
	for i, want := range wantOrder {
		if got[i].Article.ID != want {
			t.Fatalf("position %d: got article %d, want %d (full: %+v)", i, got[i].Article.ID, want, got)
		}
	}
}

func TestRankTopNTruncation(t *testing.T) {
	var articles []*store.Article
	for i := int64(1); i <= 8; i++ {
		articles = append(articles, art(i, 1, "post", false))
	}
	p := profile(nil, map[string]store.ExpertiseLevel{"go": store.LevelExpert})

	if got := Rank(articles, nil, p, 3); len(got) != 3 {
		t.Errorf("topN=3: got %d", len(got))
	}
	// Zero and negative fall back to the default.
	if got := Rank(articles, nil, p, 0); len(got) != DefaultTopN {
		t.Errorf("topN=0: got %d, want %d", len(got), DefaultTopN)
	}
	if got := Rank(articles, nil, p, -1); len(got) != DefaultTopN {
		t.Errorf("topN=-1: got %d, want %d", len(got), DefaultTopN)
	}
}

func TestMeanExpertise(t *testing.T) {
	cases := []struct {
		name string
		in   map[string]store.ExpertiseLevel
		want float64
	}{
		{"empty", nil, 0},
		{"single", map[string]store.ExpertiseLevel{"go": store.LevelIntermediate}, 2},
		{"mixed", map[string]store.ExpertiseLevel{
			"go": store.LevelBeginner, "db": store.LevelExpert,
		}, 2.5},
	}
	for _, c := range cases {
		if got := meanExpertise(c.in); got != c.want {
			t.Errorf("%s: meanExpertise = %v, want %v", c.name, got, c.want)
		}
	}
}
