package export

import (
	"strings"
	"time"

	"github.com/blogmark/blogmark/internal/store"
)

// CSV renders notes as comma-separated rows. Every field is wrapped in double
// quotes with internal quotes doubled (RFC 4180 minimal quoting applied to
// all fields, so rows stay uniform regardless of content). When singleBlog is
// set the Blog column is omitted. An empty collection yields the header only.
//
// Always-quoting is why this does not go through encoding/csv's Writer, which
// quotes only when a field requires it.
func CSV(notes []*store.Note, blogNames map[int64]string, singleBlog bool) string {
	var b strings.Builder

	header := []string{"Blog", "Article Title", "Article URL", "Excerpt", "Personal Note", "Created At"}
	if singleBlog {
		header = header[1:]
	}
	b.WriteString(strings.Join(header, ","))

	for _, n := range notes {
		fields := make([]string, 0, len(header))
		if !singleBlog {
			name := blogNames[n.BlogID]
			if name == "" {
				name = UnknownBlog
			}
			fields = append(fields, name)
		}
		fields = append(fields,
			n.ArticleTitle,
			n.ArticleURL,
			n.Excerpt,
			n.PersonalNote,
			n.CreatedAt.UTC().Format(time.RFC3339),
		)

		b.WriteString("\n")
		for i, f := range fields {
			if i > 0 {
				b.WriteString(",")
			}
			b.WriteString(quoteField(f))
		}
	}

	return b.String()
}

// quoteField wraps a value in double quotes, doubling internal quotes.
func quoteField(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
