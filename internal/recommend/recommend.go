// Package recommend ranks unread articles against a user profile with an
// additive scoring heuristic.
package recommend

import (
	"sort"
	"strings"

	"github.com/blogmark/blogmark/internal/store"
)

// DefaultTopN is how many recommendations Rank returns when topN is not set.
const DefaultTopN = 5

// Scored pairs an article with its computed relevance score.
type Scored struct {
	Article *store.Article
	Score   float64
}

// Rank scores unread articles and returns the topN highest, stable on ties.
//
// Scoring: +2 per profile interest appearing (case-insensitive substring) in
// the article title or its blog name; +1 for "advanced" titles when the mean
// expertise ordinal is at least 3; +1 for "beginner" titles when it is at
// most 2. An empty expertise map yields a mean of 0, so the beginner bonus
// still applies.
func Rank(articles []*store.Article, blogNames map[int64]string, profile *store.Profile, topN int) []Scored {
	if topN <= 0 {
		topN = DefaultTopN
	}

	mean := meanExpertise(profile.Expertise)

	scored := make([]Scored, 0, len(articles))
	for _, a := range articles {
		if a.Read {
			continue
		}

		title := strings.ToLower(a.Title)
		blog := strings.ToLower(blogNames[a.BlogID])

		score := 0.0
		for _, interest := range profile.Interests {
			needle := strings.ToLower(strings.TrimSpace(interest))
			if needle == "" {
				continue
			}
			if strings.Contains(title, needle) || strings.Contains(blog, needle) {
				score += 2
			}
		}

		if strings.Contains(title, "advanced") && mean >= 3 {
			score++
		}
		if strings.Contains(title, "beginner") && mean <= 2 {
			score++
		}

		scored = append(scored, Scored{Article: a, Score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > topN {
		scored = scored[:topN]
	}
	return scored
}

// meanExpertise averages the ordinal weights of all expertise entries.
// An empty map is a defined 0, not a division by zero.
func meanExpertise(expertise map[string]store.ExpertiseLevel) float64 {
	if len(expertise) == 0 {
		return 0
	}
	sum := 0
	for _, lvl := range expertise {
		sum += lvl.Ordinal()
	}
	return float64(sum) / float64(len(expertise))
}
