package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/blogmark/blogmark/internal/export"
	"github.com/blogmark/blogmark/internal/store"
)

func runExport(args []string) error {
	ctx := context.Background()
	a, rest, err := openApp(ctx, args)
	if err != nil {
		return err
	}
	defer a.Close()

	// --format arrives through the shared global flags; the resolved value
	// carries its provenance (cli, env, config, or the markdown default).
	format, err := export.ParseFormat(a.cfg.ExportFormat.Value)
	if err != nil {
		return err
	}

	var blogID int64
	var outPath string
	preview := false

	for i := 0; i < len(rest); i++ {
		switch {
		case rest[i] == "--blog" && i+1 < len(rest):
			i++
			id, err := strconv.ParseInt(rest[i], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid blog id %q", rest[i])
			}
			blogID = id
		case rest[i] == "--out" && i+1 < len(rest):
			i++
			outPath = rest[i]
		case strings.HasPrefix(rest[i], "--out="):
			outPath = strings.TrimPrefix(rest[i], "--out=")
		case rest[i] == "--preview":
			preview = true
		default:
			return fmt.Errorf("unknown flag: %s", rest[i])
		}
	}

	// Fetch failures surface here, before any formatting is attempted.
	notes, err := a.store.ListNotes(ctx, a.userID, store.NoteListOpts{BlogID: blogID, Oldest: true})
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

	body := export.Render(notes, blogNames, format, blogID != 0)
	filename := export.Filename(blogNames[blogID], format)

	if preview && format == export.FormatMarkdown {
		renderMarkdown(body)
		return nil
	}

	if outPath != "" {
		if err := os.WriteFile(outPath, []byte(body), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", outPath, err)
		}
		fmt.Printf("Exported %d notes to %s\n", len(notes), outPath)
		return nil
	}

	fmt.Print(body)
	if !strings.HasSuffix(body, "\n") {
		fmt.Println()
	}
	fmt.Fprintf(os.Stderr, "Suggested filename: %s\n", filename)
	return nil
}

// renderMarkdown pretty-prints markdown to the terminal, falling back to the
// raw text if the renderer cannot be constructed.
func renderMarkdown(md string) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		fmt.Print(md)
		return
	}

	out, err := renderer.Render(md)
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}
