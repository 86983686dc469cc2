package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/araddon/dateparse"

	"github.com/blogmark/blogmark/internal/store"
)

func runArticle(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: blogmark article <add|list|read|progress|remove> [flags]")
	}

	ctx := context.Background()
	a, rest, err := openApp(ctx, args[1:])
	if err != nil {
		return err
	}
	defer a.Close()

	switch args[0] {
	case "add":
		return articleAdd(ctx, a, rest)
	case "list":
		return articleList(ctx, a, rest)
	case "read":
		return articleRead(ctx, a, rest)
	case "progress":
		return articleProgress(ctx, a, rest)
	case "remove":
		return articleRemove(ctx, a, rest)
	}
	return fmt.Errorf("unknown article subcommand: %s", args[0])
}

func articleAdd(ctx context.Context, a *app, args []string) error {
	article := &store.Article{UserID: a.userID}
	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--blog" && i+1 < len(args):
			i++
			id, err := strconv.ParseInt(args[i], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid blog id %q", args[i])
			}
			article.BlogID = id
		case args[i] == "--title" && i+1 < len(args):
			i++
			article.Title = args[i]
		case strings.HasPrefix(args[i], "--title="):
			article.Title = strings.TrimPrefix(args[i], "--title=")
		case args[i] == "--url" && i+1 < len(args):
			i++
			article.URL = args[i]
		case strings.HasPrefix(args[i], "--url="):
			article.URL = strings.TrimPrefix(args[i], "--url=")
		case args[i] == "--author" && i+1 < len(args):
			i++
			article.Author = args[i]
		case strings.HasPrefix(args[i], "--author="):
			article.Author = strings.TrimPrefix(args[i], "--author=")
		case args[i] == "--published" && i+1 < len(args):
			i++
			t, err := dateparse.ParseAny(args[i])
			if err != nil {
				return fmt.Errorf("invalid publish date %q: %w", args[i], err)
			}
			article.Published = &t
		default:
			return fmt.Errorf("unknown flag: %s", args[i])
		}
	}

	// The blog must exist before hanging articles off it.
	if _, err := a.store.GetBlog(ctx, a.userID, article.BlogID); err != nil {
		return err
	}
	if _, err := a.store.AddArticle(ctx, article); err != nil {
		return err
	}
	fmt.Printf("Added article %d: %s\n", article.ID, article.Title)
	return nil
}

func articleList(ctx context.Context, a *app, args []string) error {
	opts := store.ArticleListOpts{}
	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--blog" && i+1 < len(args):
			i++
			id, err := strconv.ParseInt(args[i], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid blog id %q", args[i])
			}
			opts.BlogID = id
		case args[i] == "--unread":
			opts.UnreadOnly = true
		default:
			return fmt.Errorf("unknown flag: %s", args[i])
		}
	}

	articles, err := a.store.ListArticles(ctx, a.userID, opts)
	if err != nil {
		return err
	}
	if len(articles) == 0 {
		fmt.Println("No articles found.")
		return nil
	}

	for _, art := range articles {
		status := "unread"
		if art.Read {
			status = "read"
		}
		fmt.Printf("%4d  [%s/%s]  %s\n", art.ID, status, art.Progress, art.Title)
	}
	return nil
}

func articleRead(ctx context.Context, a *app, args []string) error {
	id, err := idArg(args, "blogmark article read <id>")
	if err != nil {
		return err
	}
	if err := a.store.MarkArticleRead(ctx, a.userID, id); err != nil {
		return err
	}
	fmt.Printf("Marked article %d read\n", id)
	return nil
}

func articleProgress(ctx context.Context, a *app, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: blogmark article progress <id> <not_started|in_progress|completed>")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %q", args[0])
	}
	p, err := store.ParseProgress(args[1])
	if err != nil {
		return err
	}
	if err := a.store.SetArticleProgress(ctx, a.userID, id, p); err != nil {
		return err
	}
	fmt.Printf("Article %d progress set to %s\n", id, p)
	return nil
}

func articleRemove(ctx context.Context, a *app, args []string) error {
	id, err := idArg(args, "blogmark article remove <id>")
	if err != nil {
		return err
	}
	if err := a.store.DeleteArticle(ctx, a.userID, id); err != nil {
		return err
	}
	fmt.Printf("Removed article %d (notes keep their snapshots)\n", id)
	return nil
}
