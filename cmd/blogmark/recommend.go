package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/blogmark/blogmark/internal/recommend"
	"github.com/blogmark/blogmark/internal/store"
)

func runRecommend(args []string) error {
	ctx := context.Background()
	a, rest, err := openApp(ctx, args)
	if err != nil {
		return err
	}
	defer a.Close()

	// --top arrives through the shared global flags.
	topN := 0
	if a.cfg.RecommendTopN.Value != "" {
		n, err := strconv.Atoi(a.cfg.RecommendTopN.Value)
		if err != nil {
			return fmt.Errorf("invalid recommendation count %q (from %s)", a.cfg.RecommendTopN.Value, a.cfg.RecommendTopN.From)
		}
		topN = n
	}

	if len(rest) > 0 {
		return fmt.Errorf("unknown flag: %s", rest[0])
	}

	profile, err := a.store.GetProfile(ctx, a.userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: no profile saved; run: blogmark profile set", store.ErrConfiguration)
		}
		return err
	}

	articles, err := a.store.ListArticles(ctx, a.userID, store.ArticleListOpts{UnreadOnly: true})
	if err != nil {
		return err
	}

	blogs, err := a.store.ListBlogs(ctx, a.userID)
	if err != nil {
		return err
	}
	blogNames := make(map[int64]string, len(blogs))
	for _, b := range blogs {
		blogNames[b.ID] = b.Name
	}

	ranked := recommend.Rank(articles, blogNames, profile, topN)
	if len(ranked) == 0 {
		fmt.Println("No unread articles to recommend.")
		return nil
	}

	for i, r := range ranked {
		name := blogNames[r.Article.BlogID]
		if name == "" {
			name = "Unknown Blog"
		}
		fmt.Printf("%d. [%.0f] %s (%s)\n", i+1, r.Score, r.Article.Title, name)
	}
	return nil
}
