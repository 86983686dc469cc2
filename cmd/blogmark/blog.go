package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/blogmark/blogmark/internal/store"
)

func runBlog(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: blogmark blog <add|list|visit|remove> [flags]")
	}

	ctx := context.Background()
	a, rest, err := openApp(ctx, args[1:])
	if err != nil {
		return err
	}
	defer a.Close()

	switch args[0] {
	case "add":
		return blogAdd(ctx, a, rest)
	case "list":
		return blogList(ctx, a)
	case "visit":
		return blogVisit(ctx, a, rest)
	case "remove":
		return blogRemove(ctx, a, rest)
	}
	return fmt.Errorf("unknown blog subcommand: %s", args[0])
}

func blogAdd(ctx context.Context, a *app, args []string) error {
	var name, url, category string
	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--name" && i+1 < len(args):
			i++
			name = args[i]
		case strings.HasPrefix(args[i], "--name="):
			name = strings.TrimPrefix(args[i], "--name=")
		case args[i] == "--url" && i+1 < len(args):
			i++
			url = args[i]
		case strings.HasPrefix(args[i], "--url="):
			url = strings.TrimPrefix(args[i], "--url=")
		case args[i] == "--category" && i+1 < len(args):
			i++
			category = args[i]
		case strings.HasPrefix(args[i], "--category="):
			category = strings.TrimPrefix(args[i], "--category=")
		default:
			return fmt.Errorf("unknown flag: %s", args[i])
		}
	}

	b := &store.Blog{UserID: a.userID, Name: name, URL: url, Category: category}
	if _, err := a.store.AddBlog(ctx, b); err != nil {
		return err
	}
	fmt.Printf("Added blog %d: %s <%s>\n", b.ID, b.Name, b.URL)
	return nil
}

func blogList(ctx context.Context, a *app) error {
	blogs, err := a.store.ListBlogs(ctx, a.userID)
	if err != nil {
		return err
	}
	if len(blogs) == 0 {
		fmt.Println("No blogs registered. Add one with: blogmark blog add --name <name> --url <url>")
		return nil
	}

	for _, b := range blogs {
		line := fmt.Sprintf("%4d  %s  <%s>", b.ID, b.Name, b.URL)
		if b.Category != "" {
			line += "  [" + b.Category + "]"
		}
		if b.LastVisited != nil {
			line += "  last visited " + b.LastVisited.Local().Format("2006-01-02")
		}
		fmt.Println(line)
	}
	return nil
}

func blogVisit(ctx context.Context, a *app, args []string) error {
	id, err := idArg(args, "blogmark blog visit <id>")
	if err != nil {
		return err
	}
	if err := a.store.TouchBlogVisited(ctx, a.userID, id); err != nil {
		return err
	}
	fmt.Printf("Marked blog %d visited\n", id)
	return nil
}

func blogRemove(ctx context.Context, a *app, args []string) error {
	id, err := idArg(args, "blogmark blog remove <id>")
	if err != nil {
		return err
	}
	if err := a.store.DeleteBlog(ctx, a.userID, id); err != nil {
		return err
	}
	fmt.Printf("Removed blog %d\n", id)
	return nil
}

// idArg parses the single positional numeric id most subcommands take.
func idArg(args []string, usage string) (int64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("usage: %s", usage)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", args[0])
	}
	return id, nil
}
