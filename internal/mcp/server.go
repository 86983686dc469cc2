// Package mcp provides a Model Context Protocol server for blogmark.
//
// It exposes the note engine (add note, list/search/sort, export, blogs,
// recommendations) as MCP tools, and recent notes as an MCP resource, over
// stdio transport.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/araddon/dateparse"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/blogmark/blogmark/internal/export"
	"github.com/blogmark/blogmark/internal/identity"
	"github.com/blogmark/blogmark/internal/recommend"
	"github.com/blogmark/blogmark/internal/resolve"
	"github.com/blogmark/blogmark/internal/store"
	"github.com/blogmark/blogmark/internal/view"
)

// ServerConfig holds configuration for the MCP server.
type ServerConfig struct {
	Store    store.Store
	Identity identity.Provider
	Version  string
}

// dbMu serializes all MCP tool calls that touch the database.
// The mcp-go library dispatches handlers concurrently via goroutines;
// SQLite supports only one writer at a time, and the resolver session
// must see note submissions in order.
var dbMu sync.Mutex

// NewServer creates a configured MCP server with all blogmark tools.
func NewServer(cfg ServerConfig) *server.MCPServer {
	ver := cfg.Version
	if ver == "" {
		ver = "dev"
	}

	s := server.NewMCPServer(
		"blogmark",
		ver,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(true, false),
	)

	resolver := resolve.New(cfg.Store)
	// One resolution session spans the whole MCP connection; the client
	// resets it implicitly by reconnecting.
	session := resolve.NewSession()

	registerAddBlogTool(s, cfg)
	registerListBlogsTool(s, cfg)
	registerAddNoteTool(s, cfg, resolver, session)
	registerListNotesTool(s, cfg)
	registerExportTool(s, cfg)
	registerRecommendTool(s, cfg)

	registerRecentNotesResource(s, cfg)

	return s
}

// currentUser resolves the caller identity under dbMu.
func currentUser(ctx context.Context, cfg ServerConfig) (string, *mcp.CallToolResult) {
	userID, err := cfg.Identity.CurrentUser(ctx)
	if err != nil {
		return "", mcp.NewToolResultError(fmt.Sprintf("resolving user: %v", err))
	}
	return userID, nil
}

func registerAddBlogTool(s *server.MCPServer, cfg ServerConfig) {
	tool := mcp.NewTool("blogmark_add_blog",
		mcp.WithDescription("Register a blog to track. Returns the created blog record."),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Display name of the blog"),
		),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("Canonical URL of the blog"),
		),
		mcp.WithString("category",
			mcp.Description("Optional category label"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dbMu.Lock()
		defer dbMu.Unlock()

		userID, errResult := currentUser(ctx, cfg)
		if errResult != nil {
			return errResult, nil
		}

		name, err := req.RequireString("name")
		if err != nil {
			return mcp.NewToolResultError("name is required"), nil
		}
		url, err := req.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		b := &store.Blog{UserID: userID, Name: name, URL: url}
		if category, err := req.RequireString("category"); err == nil {
			b.Category = category
		}

		if _, err := cfg.Store.AddBlog(ctx, b); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("adding blog: %v", err)), nil
		}

		data, _ := json.MarshalIndent(b, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	})
}

func registerListBlogsTool(s *server.MCPServer, cfg ServerConfig) {
	tool := mcp.NewTool("blogmark_list_blogs",
		mcp.WithDescription("List all registered blogs for the current user."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dbMu.Lock()
		defer dbMu.Unlock()

		userID, errResult := currentUser(ctx, cfg)
		if errResult != nil {
			return errResult, nil
		}

		blogs, err := cfg.Store.ListBlogs(ctx, userID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("listing blogs: %v", err)), nil
		}

		data, _ := json.MarshalIndent(blogs, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	})
}

func registerAddNoteTool(s *server.MCPServer, cfg ServerConfig, resolver *resolve.Resolver, session *resolve.Session) {
	tool := mcp.NewTool("blogmark_add_note",
		mcp.WithDescription("Save a note (excerpt + personal annotation) under a blog. Supplying article_title/article_url attaches the note to an article, creating the article record once per session for the same metadata."),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithNumber("blog_id",
			mcp.Required(),
			mcp.Description("ID of the blog the note belongs to"),
		),
		mcp.WithString("excerpt",
			mcp.Required(),
			mcp.Description("Quoted excerpt from the article"),
		),
		mcp.WithString("personal_note",
			mcp.Required(),
			mcp.Description("Your own annotation for the excerpt"),
		),
		mcp.WithString("article_title",
			mcp.Description("Optional article title"),
		),
		mcp.WithString("article_url",
			mcp.Description("Optional article URL"),
		),
		mcp.WithString("article_author",
			mcp.Description("Optional article author"),
		),
		mcp.WithString("article_published",
			mcp.Description("Optional publish date, any common format"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dbMu.Lock()
		defer dbMu.Unlock()

		userID, errResult := currentUser(ctx, cfg)
		if errResult != nil {
			return errResult, nil
		}

		blogIDVal, err := req.RequireFloat("blog_id")
		if err != nil {
			return mcp.NewToolResultError("blog_id is required"), nil
		}
		excerpt, err := req.RequireString("excerpt")
		if err != nil {
			return mcp.NewToolResultError("excerpt is required"), nil
		}
		personal, err := req.RequireString("personal_note")
		if err != nil {
			return mcp.NewToolResultError("personal_note is required"), nil
		}

		in := resolve.NoteInput{Excerpt: excerpt, PersonalNote: personal}
		if title, err := req.RequireString("article_title"); err == nil {
			in.Article.Title = title
		}
		if url, err := req.RequireString("article_url"); err == nil {
			in.Article.URL = url
		}
		if author, err := req.RequireString("article_author"); err == nil {
			in.Article.Author = author
		}
		if published, err := req.RequireString("article_published"); err == nil && strings.TrimSpace(published) != "" {
			t, err := dateparse.ParseAny(published)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("invalid article_published: %v", err)), nil
			}
			in.Article.Published = &t
		}

		note, err := resolver.AddNote(ctx, session, userID, int64(blogIDVal), in)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("adding note: %v", err)), nil
		}

		data, _ := json.MarshalIndent(note, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	})
}

func registerListNotesTool(s *server.MCPServer, cfg ServerConfig) {
	tool := mcp.NewTool("blogmark_list_notes",
		mcp.WithDescription("List notes with optional article-presence filter, substring search, and sort order. Notes are grouped by article."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithNumber("blog_id",
			mcp.Description("Restrict to one blog (0 or absent = all)"),
		),
		mcp.WithString("filter",
			mcp.Description("Article presence filter (default: all)"),
			mcp.Enum("all", "with-article", "without-article"),
		),
		mcp.WithString("query",
			mcp.Description("Case-insensitive substring search over excerpt, annotation, and article title"),
		),
		mcp.WithString("sort",
			mcp.Description("Sort order (default: newest)"),
			mcp.Enum("newest", "oldest", "article"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dbMu.Lock()
		defer dbMu.Unlock()

		userID, errResult := currentUser(ctx, cfg)
		if errResult != nil {
			return errResult, nil
		}

		opts := view.Options{Filter: view.FilterAll, Sort: view.SortNewest}
		if f, err := req.RequireString("filter"); err == nil && f != "" {
			filter, err := view.ParseFilter(f)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			opts.Filter = filter
		}
		if q, err := req.RequireString("query"); err == nil {
			opts.Query = q
		}
		if so, err := req.RequireString("sort"); err == nil && so != "" {
			sortOrder, err := view.ParseSort(so)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			opts.Sort = sortOrder
		}

		listOpts := store.NoteListOpts{}
		if blogIDVal, err := req.RequireFloat("blog_id"); err == nil {
			listOpts.BlogID = int64(blogIDVal)
		}

		notes, err := cfg.Store.ListNotes(ctx, userID, listOpts)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("listing notes: %v", err)), nil
		}

		groups := view.GroupByArticle(view.View(notes, opts))
		data, _ := json.MarshalIndent(groups, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	})
}

func registerExportTool(s *server.MCPServer, cfg ServerConfig) {
	tool := mcp.NewTool("blogmark_export",
		mcp.WithDescription("Export notes as markdown, json, or csv text, plus a suggested filename."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("format",
			mcp.Description("Export format (default: markdown)"),
			mcp.Enum("markdown", "json", "csv"),
		),
		mcp.WithNumber("blog_id",
			mcp.Description("Restrict to one blog (0 or absent = all; single-blog CSV omits the Blog column)"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dbMu.Lock()
		defer dbMu.Unlock()

		userID, errResult := currentUser(ctx, cfg)
		if errResult != nil {
			return errResult, nil
		}

		format := export.FormatMarkdown
		if f, err := req.RequireString("format"); err == nil && f != "" {
			parsed, err := export.ParseFormat(f)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			format = parsed
		}

		listOpts := store.NoteListOpts{Oldest: true}
		var blogID int64
		if blogIDVal, err := req.RequireFloat("blog_id"); err == nil {
			blogID = int64(blogIDVal)
			listOpts.BlogID = blogID
		}

		notes, err := cfg.Store.ListNotes(ctx, userID, listOpts)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("listing notes: %v", err)), nil
		}

		blogs, err := cfg.Store.ListBlogs(ctx, userID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("listing blogs: %v", err)), nil
		}
		blogNames := make(map[int64]string, len(blogs))
		for _, b := range blogs {
			blogNames[b.ID] = b.Name
		}

		body := export.Render(notes, blogNames, format, blogID != 0)
		filename := export.Filename(blogNames[blogID], format)

		out := map[string]string{"filename": filename, "content": body}
		data, _ := json.MarshalIndent(out, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	})
}

func registerRecommendTool(s *server.MCPServer, cfg ServerConfig) {
	tool := mcp.NewTool("blogmark_recommend",
		mcp.WithDescription("Recommend unread articles ranked against the saved user profile."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithNumber("top_n",
			mcp.Description("How many recommendations to return (default: 5)"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dbMu.Lock()
		defer dbMu.Unlock()

		userID, errResult := currentUser(ctx, cfg)
		if errResult != nil {
			return errResult, nil
		}

		profile, err := cfg.Store.GetProfile(ctx, userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return mcp.NewToolResultError("no profile saved; set one first with blogmark profile set"), nil
			}
			return mcp.NewToolResultError(fmt.Sprintf("loading profile: %v", err)), nil
		}

		articles, err := cfg.Store.ListArticles(ctx, userID, store.ArticleListOpts{UnreadOnly: true})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("listing articles: %v", err)), nil
		}

		blogs, err := cfg.Store.ListBlogs(ctx, userID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("listing blogs: %v", err)), nil
		}
		blogNames := make(map[int64]string, len(blogs))
		for _, b := range blogs {
			blogNames[b.ID] = b.Name
		}

		topN := 0
		if v, err := req.RequireFloat("top_n"); err == nil {
			topN = int(v)
		}

		ranked := recommend.Rank(articles, blogNames, profile, topN)
		data, _ := json.MarshalIndent(ranked, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	})
}

func registerRecentNotesResource(s *server.MCPServer, cfg ServerConfig) {
	resource := mcp.NewResource(
		"blogmark://notes/recent",
		"Recent Notes",
		mcp.WithResourceDescription("The 20 most recently saved notes with article snapshots."),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(resource, func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		dbMu.Lock()
		defer dbMu.Unlock()

		userID, err := cfg.Identity.CurrentUser(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolving user: %w", err)
		}

		notes, err := cfg.Store.ListNotes(ctx, userID, store.NoteListOpts{Limit: 20})
		if err != nil {
			return nil, fmt.Errorf("listing notes: %w", err)
		}

		data, _ := json.MarshalIndent(notes, "", "  ")
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: req.Params.URI, MIMEType: "application/json", Text: string(data)},
		}, nil
	})
}
