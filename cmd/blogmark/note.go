package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/araddon/dateparse"

	"github.com/blogmark/blogmark/internal/resolve"
	"github.com/blogmark/blogmark/internal/store"
	"github.com/blogmark/blogmark/internal/view"
)

func runNote(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: blogmark note <add|list|remove> [flags]")
	}

	ctx := context.Background()
	a, rest, err := openApp(ctx, args[1:])
	if err != nil {
		return err
	}
	defer a.Close()

	switch args[0] {
	case "add":
		return noteAdd(ctx, a, rest)
	case "list":
		return noteList(ctx, a, rest)
	case "remove":
		return noteRemove(ctx, a, rest)
	}
	return fmt.Errorf("unknown note subcommand: %s", args[0])
}

func noteAdd(ctx context.Context, a *app, args []string) error {
	var blogID int64
	in := resolve.NoteInput{}

	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--blog" && i+1 < len(args):
			i++
			id, err := strconv.ParseInt(args[i], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid blog id %q", args[i])
			}
			blogID = id
		case args[i] == "--excerpt" && i+1 < len(args):
			i++
			in.Excerpt = args[i]
		case strings.HasPrefix(args[i], "--excerpt="):
			in.Excerpt = strings.TrimPrefix(args[i], "--excerpt=")
		case args[i] == "--note" && i+1 < len(args):
			i++
			in.PersonalNote = args[i]
		case strings.HasPrefix(args[i], "--note="):
			in.PersonalNote = strings.TrimPrefix(args[i], "--note=")
		case args[i] == "--title" && i+1 < len(args):
			i++
			in.Article.Title = args[i]
		case strings.HasPrefix(args[i], "--title="):
			in.Article.Title = strings.TrimPrefix(args[i], "--title=")
		case args[i] == "--url" && i+1 < len(args):
			i++
			in.Article.URL = args[i]
		case strings.HasPrefix(args[i], "--url="):
			in.Article.URL = strings.TrimPrefix(args[i], "--url=")
		case args[i] == "--author" && i+1 < len(args):
			i++
			in.Article.Author = args[i]
		case args[i] == "--published" && i+1 < len(args):
			i++
			t, err := dateparse.ParseAny(args[i])
			if err != nil {
				return fmt.Errorf("invalid publish date %q: %w", args[i], err)
			}
			in.Article.Published = &t
		default:
			return fmt.Errorf("unknown flag: %s", args[i])
		}
	}

	if _, err := a.store.GetBlog(ctx, a.userID, blogID); err != nil {
		return err
	}

	// One CLI invocation is one entry session.
	resolver := resolve.New(a.store)
	note, err := resolver.AddNote(ctx, resolve.NewSession(), a.userID, blogID, in)
	if err != nil {
		return err
	}

	if note.ArticleID != 0 {
		fmt.Printf("Saved note %d under article %d (%s)\n", note.ID, note.ArticleID, note.ArticleTitle)
	} else {
		fmt.Printf("Saved note %d (uncategorized)\n", note.ID)
	}
	return nil
}

func noteList(ctx context.Context, a *app, args []string) error {
	listOpts := store.NoteListOpts{}
	opts := view.Options{Filter: view.FilterAll, Sort: view.SortNewest}

	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--blog" && i+1 < len(args):
			i++
			id, err := strconv.ParseInt(args[i], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid blog id %q", args[i])
			}
			listOpts.BlogID = id
		case args[i] == "--filter" && i+1 < len(args):
			i++
			f, err := view.ParseFilter(args[i])
			if err != nil {
				return err
			}
			opts.Filter = f
		case strings.HasPrefix(args[i], "--filter="):
			f, err := view.ParseFilter(strings.TrimPrefix(args[i], "--filter="))
			if err != nil {
				return err
			}
			opts.Filter = f
		case args[i] == "--search" && i+1 < len(args):
			i++
			opts.Query = args[i]
		case strings.HasPrefix(args[i], "--search="):
			opts.Query = strings.TrimPrefix(args[i], "--search=")
		case args[i] == "--sort" && i+1 < len(args):
			i++
			so, err := view.ParseSort(args[i])
			if err != nil {
				return err
			}
			opts.Sort = so
		case strings.HasPrefix(args[i], "--sort="):
			so, err := view.ParseSort(strings.TrimPrefix(args[i], "--sort="))
			if err != nil {
				return err
			}
			opts.Sort = so
		default:
			return fmt.Errorf("unknown flag: %s", args[i])
		}
	}

	notes, err := a.store.ListNotes(ctx, a.userID, listOpts)
	if err != nil {
		return err
	}

	shown := view.View(notes, opts)
	if len(shown) == 0 {
		fmt.Println("No notes found.")
		return nil
	}

	for _, g := range view.GroupByArticle(shown) {
		title := g.Title
		if title == "" {
			title = "Uncategorized"
		}
		fmt.Printf("%s (%d)\n", title, len(g.Notes))
		for _, n := range g.Notes {
			fmt.Printf("  %4d  %s  %s\n", n.ID,
				n.CreatedAt.Local().Format("2006-01-02 15:04"),
				firstLine(n.Excerpt))
		}
	}
	return nil
}

func noteRemove(ctx context.Context, a *app, args []string) error {
	id, err := idArg(args, "blogmark note remove <id>")
	if err != nil {
		return err
	}
	if err := a.store.DeleteNote(ctx, a.userID, id); err != nil {
		return err
	}
	fmt.Printf("Removed note %d\n", id)
	return nil
}

// firstLine truncates an excerpt for single-line listing. Truncation counts
// runes, not bytes, so multi-byte text is never split mid-sequence.
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if r := []rune(s); len(r) > 72 {
		s = string(r[:72]) + "…"
	}
	return s
}
