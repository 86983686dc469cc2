package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/server"

	"github.com/blogmark/blogmark/internal/config"
	"github.com/blogmark/blogmark/internal/identity"
	"github.com/blogmark/blogmark/internal/mcp"
	"github.com/blogmark/blogmark/internal/store"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(0)
	}

	var err error
	switch os.Args[1] {
	case "blog":
		err = runBlog(os.Args[2:])
	case "article":
		err = runArticle(os.Args[2:])
	case "note":
		err = runNote(os.Args[2:])
	case "export":
		err = runExport(os.Args[2:])
	case "recommend":
		err = runRecommend(os.Args[2:])
	case "profile":
		err = runProfile(os.Args[2:])
	case "stats":
		err = runStats(os.Args[2:])
	case "config":
		err = runConfig(os.Args[2:])
	case "mcp":
		err = runMCP(os.Args[2:])
	case "version", "--version", "-v":
		fmt.Printf("blogmark %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app bundles the opened store and the resolved current user.
type app struct {
	cfg    config.ResolvedConfig
	store  store.Store
	userID string
}

func (a *app) Close() error {
	return a.store.Close()
}

// parseGlobalFlags strips the flags every command shares from args, leaving
// the command-specific ones for the subcommand to parse.
func parseGlobalFlags(args []string) (config.ResolveOptions, []string) {
	opts := config.ResolveOptions{}
	rest := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--config" && i+1 < len(args):
			i++
			opts.ConfigPath = args[i]
		case strings.HasPrefix(args[i], "--config="):
			opts.ConfigPath = strings.TrimPrefix(args[i], "--config=")
		case args[i] == "--db" && i+1 < len(args):
			i++
			opts.CLIDBPath = args[i]
		case strings.HasPrefix(args[i], "--db="):
			opts.CLIDBPath = strings.TrimPrefix(args[i], "--db=")
		case args[i] == "--user" && i+1 < len(args):
			i++
			opts.CLIUser = args[i]
		case strings.HasPrefix(args[i], "--user="):
			opts.CLIUser = strings.TrimPrefix(args[i], "--user=")
		case args[i] == "--format" && i+1 < len(args):
			i++
			opts.CLIFormat = args[i]
		case strings.HasPrefix(args[i], "--format="):
			opts.CLIFormat = strings.TrimPrefix(args[i], "--format=")
		case args[i] == "--top" && i+1 < len(args):
			i++
			opts.CLITopN = args[i]
		case strings.HasPrefix(args[i], "--top="):
			opts.CLITopN = strings.TrimPrefix(args[i], "--top=")
		default:
			rest = append(rest, args[i])
		}
	}
	return opts, rest
}

// openApp resolves configuration from the global flags, opens the store, and
// resolves the current user.
func openApp(ctx context.Context, args []string) (*app, []string, error) {
	opts, rest := parseGlobalFlags(args)

	cfg, err := config.ResolveConfig(opts)
	if err != nil {
		return nil, nil, err
	}

	st, err := store.NewStore(store.StoreConfig{DBPath: cfg.DBPath.Value})
	if err != nil {
		return nil, nil, fmt.Errorf("opening store: %w", err)
	}

	userID, err := identity.ForUser(cfg.UserID.Value, st).CurrentUser(ctx)
	if err != nil {
		st.Close()
		return nil, nil, err
	}

	return &app{cfg: cfg, store: st, userID: userID}, rest, nil
}

func runStats(args []string) error {
	ctx := context.Background()
	a, _, err := openApp(ctx, args)
	if err != nil {
		return err
	}
	defer a.Close()

	st, err := a.store.Stats(ctx, a.userID)
	if err != nil {
		return err
	}

	fmt.Printf("Blogs:    %d\n", st.BlogCount)
	fmt.Printf("Articles: %d\n", st.ArticleCount)
	fmt.Printf("Notes:    %d\n", st.NoteCount)
	if st.DBSizeBytes > 0 {
		fmt.Printf("DB size:  %d bytes\n", st.DBSizeBytes)
	}
	return nil
}

func runConfig(args []string) error {
	opts, _ := parseGlobalFlags(args)

	cfg, err := config.ResolveConfig(opts)
	if err != nil {
		return err
	}

	data, _ := json.MarshalIndent(cfg, "", "  ")
	fmt.Println(string(data))
	return nil
}

func runMCP(args []string) error {
	ctx := context.Background()
	a, _, err := openApp(ctx, args)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := mcp.NewServer(mcp.ServerConfig{
		Store:    a.store,
		Identity: identity.Static{ID: a.userID},
		Version:  version,
	})
	return server.ServeStdio(srv)
}

func printUsage() {
	fmt.Printf(`blogmark %s - note-taking companion for tracking blog reading

Usage:
  blogmark <command> [arguments]

Commands:
  blog add|list|visit|remove      Manage tracked blogs
  article add|list|read|progress|remove
                                  Manage articles under a blog
  note add|list|remove            Save and browse notes
  export                          Export notes as markdown, json, or csv
  recommend                       Rank unread articles against your profile
  profile set|show                Manage your reading profile
  stats                           Show record counts
  config                          Print resolved configuration
  mcp                             Serve the MCP tool interface over stdio
  version                         Print version

Global Flags (any command):
  --config <path>     Config file (default ~/.blogmark/config.yaml)
  --db <path>         Database file (default ~/.blogmark/blogmark.db)
  --user <id>         Explicit user id (default: generated local id)
  --format <fmt>      Export format: markdown, json, or csv (export)
  --top <n>           Recommendation count (recommend)

Flags:
  -h, --help          Show this help message
  -v, --version       Print version
`, version)
}
