package export

import (
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/blogmark/blogmark/internal/store"
)

var testTime = time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)

func sampleNotes() []*store.Note {
	return []*store.Note{
		{
			ID: 1, BlogID: 10, ArticleID: 100,
			ArticleTitle: "Profiling Go", ArticleURL: "https://a.example/prof",
			Excerpt: "pprof is your friend", PersonalNote: "try on the worker pool",
			CreatedAt: testTime,
		},
		{
			ID: 2, BlogID: 10,
			Excerpt: "loose thought", PersonalNote: "follow up",
			CreatedAt: testTime.Add(time.Hour),
		},
		{
			ID: 3, BlogID: 20, ArticleID: 200,
			ArticleTitle: "SQLite Internals", ArticleURL: "https://b.example/sqlite",
			Excerpt: "b-trees everywhere", PersonalNote: "reread chapter 3",
			CreatedAt: testTime.Add(2 * time.Hour),
		},
	}
}

func sampleBlogNames() map[int64]string {
	return map[int64]string{10: "A Blog", 20: "B Blog"}
}

// --- Format parsing and filenames ---

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{
		"":         FormatMarkdown,
		"markdown": FormatMarkdown,
		"md":       FormatMarkdown,
		"MD":       FormatMarkdown,
		"json":     FormatJSON,
		"csv":      FormatCSV,
	}
	for in, want := range cases {
		got, err := ParseFormat(in)
		if err != nil {
			t.Errorf("ParseFormat(%q) failed: %v", in, err)
		}
		if got != want {
			t.Errorf("ParseFormat(%q) = %q, want %q", in, got, want)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestFilename(t *testing.T) {
	cases := []struct {
		blog string
		f    Format
		want string
	}{
		{"Dan Luu's Blog", FormatMarkdown, "dan-luus-blog-notes.md"},
		{"A Blog", FormatJSON, "a-blog-notes.json"},
		{"", FormatCSV, "my-notes.csv"},
		{"///", FormatMarkdown, "my-notes.md"},
	}
	for _, c := range cases {
		if got := Filename(c.blog, c.f); got != c.want {
			t.Errorf("Filename(%q, %q) = %q, want %q", c.blog, c.f, got, c.want)
		}
	}
}

// --- Markdown ---

func TestMarkdownEmpty(t *testing.T) {
	out := Markdown(nil, nil)
	if !strings.HasPrefix(out, "# Reading Notes\n") {
		t.Errorf("missing document header: %q", out)
	}
	if !strings.Contains(out, "_No notes yet._") {
		t.Errorf("missing empty placeholder: %q", out)
	}
}

func TestMarkdownMultiBlog(t *testing.T) {
	out := Markdown(sampleNotes(), sampleBlogNames())

	for _, want := range []string{
		"# Reading Notes",
		"## A Blog",
		"## B Blog",
		"### Profiling Go",
		"### Untitled Article",
		"### SQLite Internals",
		"<https://a.example/prof>",
		"> pprof is your friend",
		"try on the worker pool",
		"---",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q in:\n%s", want, out)
		}
	}

	if !strings.Contains(out, "*Saved "+testTime.Local().Format("2006-01-02 15:04")+"*") {
		t.Errorf("missing saved-at line in:\n%s", out)
	}
}

func TestMarkdownSingleBlogSkipsBlogHeadings(t *testing.T) {
	notes := sampleNotes()[:2] // both blog 10
	out := Markdown(notes, sampleBlogNames())
	if strings.Contains(out, "## A Blog") {
		t.Errorf("single-blog export should not have blog headings:\n%s", out)
	}
	if !strings.Contains(out, "### Profiling Go") {
		t.Errorf("article headings missing:\n%s", out)
	}
}

func TestMarkdownUnknownBlog(t *testing.T) {
	out := Markdown(sampleNotes(), nil)
	if !strings.Contains(out, "## "+UnknownBlog) {
		t.Errorf("expected unknown-blog fallback heading:\n%s", out)
	}
}

func TestMarkdownMultilineExcerpt(t *testing.T) {
	notes := []*store.Note{{
		BlogID: 10, Excerpt: "line one\nline two",
		PersonalNote: "p", CreatedAt: testTime,
	}}
	out := Markdown(notes, nil)
	if !strings.Contains(out, "> line one\n> line two\n") {
		t.Errorf("multi-line excerpt not fully blockquoted:\n%s", out)
	}
}

// --- JSON ---

func TestJSONCompleteness(t *testing.T) {
	out := JSON(sampleNotes(), sampleBlogNames())

	var decoded []map[string]interface{}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if len(decoded) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(decoded))
	}

	first := decoded[0]
	for _, key := range []string{
		"id", "user_id", "blog_id", "article_id", "article_title",
		"article_url", "excerpt", "personal_note", "created_at", "blog_name",
	} {
		if _, ok := first[key]; !ok {
			t.Errorf("missing key %q in %v", key, first)
		}
	}
	if first["blog_name"] != "A Blog" {
		t.Errorf("blog_name = %v, want A Blog", first["blog_name"])
	}
}

func TestJSONUnknownBlogFallback(t *testing.T) {
	out := JSON(sampleNotes()[:1], nil)
	var decoded []map[string]interface{}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded[0]["blog_name"] != UnknownBlog {
		t.Errorf("blog_name = %v, want %q", decoded[0]["blog_name"], UnknownBlog)
	}
}

func TestJSONEmpty(t *testing.T) {
	if out := JSON(nil, nil); out != "[]" {
		t.Errorf("empty export = %q, want []", out)
	}
}

// --- CSV ---

func TestCSVEmpty(t *testing.T) {
	out := CSV(nil, nil, false)
	if out != "Blog,Article Title,Article URL,Excerpt,Personal Note,Created At" {
		t.Errorf("empty export should be header only, got %q", out)
	}

	single := CSV(nil, nil, true)
	if strings.Contains(single, "Blog,") {
		t.Errorf("single-blog header should omit Blog column, got %q", single)
	}
}

func TestCSVQuotingDoublesQuotes(t *testing.T) {
	notes := []*store.Note{{
		BlogID: 10, Excerpt: `A"B`, PersonalNote: "x",
		CreatedAt: testTime,
	}}
	out := CSV(notes, nil, true)

	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 row, got %d lines", len(lines))
	}
	want := `"","","A""B","x","` + testTime.Format(time.RFC3339) + `"`
	if lines[1] != want {
		t.Errorf("row = %q, want %q", lines[1], want)
	}
}

func TestCSVEveryFieldQuoted(t *testing.T) {
	out := CSV(sampleNotes(), sampleBlogNames(), false)
	for i, line := range strings.Split(out, "\n")[1:] {
		if !strings.HasPrefix(line, `"`) || !strings.HasSuffix(line, `"`) {
			t.Errorf("row %d not fully quoted: %q", i, line)
		}
	}
}

func TestCSVRoundTrip(t *testing.T) {
	notes := []*store.Note{{
		BlogID:       10,
		ArticleTitle: "Commas, quotes \" and\nnewlines",
		ArticleURL:   "https://a.example",
		Excerpt:      "multi\nline excerpt",
		PersonalNote: `note with "quotes"`,
		CreatedAt:    testTime,
	}}

	out := CSV(notes, sampleBlogNames(), false)
	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("export does not parse as CSV: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header + 1 record, got %d", len(records))
	}

	row := records[1]
	if row[0] != "A Blog" {
		t.Errorf("blog = %q", row[0])
	}
	if row[1] != "Commas, quotes \" and\nnewlines" {
		t.Errorf("title lost content: %q", row[1])
	}
	if row[3] != "multi\nline excerpt" {
		t.Errorf("excerpt lost content: %q", row[3])
	}
	if row[4] != `note with "quotes"` {
		t.Errorf("note lost content: %q", row[4])
	}
	if row[5] != testTime.Format(time.RFC3339) {
		t.Errorf("timestamp = %q", row[5])
	}
}

func TestCSVUnknownBlogFallback(t *testing.T) {
	out := CSV(sampleNotes()[:1], nil, false)
	if !strings.Contains(out, `"`+UnknownBlog+`"`) {
		t.Errorf("expected unknown-blog fallback, got %q", out)
	}
}

// --- Render dispatch ---

func TestRenderDispatch(t *testing.T) {
	notes := sampleNotes()
	names := sampleBlogNames()

	if out := Render(notes, names, FormatMarkdown, false); !strings.HasPrefix(out, "# Reading Notes") {
		t.Errorf("markdown dispatch: %q", out[:40])
	}
	if out := Render(notes, names, FormatJSON, false); !strings.HasPrefix(out, "[") {
		t.Errorf("json dispatch: %q", out[:40])
	}
	if out := Render(notes, names, FormatCSV, false); !strings.HasPrefix(out, "Blog,") {
		t.Errorf("csv dispatch: %q", out[:40])
	}
}
