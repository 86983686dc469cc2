package export

import (
	"strings"

	"github.com/blogmark/blogmark/internal/store"
	"github.com/blogmark/blogmark/internal/view"
)

// UnknownBlog is the display name used when a blog id has no lookup entry.
const UnknownBlog = "Unknown Blog"

// UntitledArticle is the heading used for notes without an article title.
const UntitledArticle = "Untitled Article"

const markdownTimeFormat = "2006-01-02 15:04"

// Markdown renders notes as a document with one section per blog (when the
// collection spans several blogs) or per article (single-blog collections),
// separated by horizontal rules. Notes appear as an excerpt blockquote, the
// personal annotation, and a saved-at line.
func Markdown(notes []*store.Note, blogNames map[int64]string) string {
	var b strings.Builder
	b.WriteString("# Reading Notes\n\n")

	if len(notes) == 0 {
		b.WriteString("_No notes yet._\n")
		return b.String()
	}

	byBlog := groupByBlog(notes)
	multiBlog := len(byBlog) > 1

	for i, bg := range byBlog {
		if i > 0 {
			b.WriteString("---\n\n")
		}
		if multiBlog {
			name := blogNames[bg.blogID]
			if name == "" {
				name = UnknownBlog
			}
			b.WriteString("## " + name + "\n\n")
		}

		for j, g := range view.GroupByArticle(bg.notes) {
			if j > 0 && !multiBlog {
				b.WriteString("---\n\n")
			}
			title := g.Title
			if title == "" {
				title = UntitledArticle
			}
			b.WriteString("### " + title + "\n\n")
			if g.URL != "" {
				b.WriteString("<" + g.URL + ">\n\n")
			}

			for _, n := range g.Notes {
				writeBlockquote(&b, n.Excerpt)
				b.WriteString("\n" + n.PersonalNote + "\n\n")
				b.WriteString("*Saved " + n.CreatedAt.Local().Format(markdownTimeFormat) + "*\n\n")
			}
		}
	}

	return b.String()
}

// writeBlockquote prefixes every line of the excerpt so multi-line excerpts
// stay inside one quote block.
func writeBlockquote(b *strings.Builder, text string) {
	for _, line := range strings.Split(text, "\n") {
		b.WriteString("> " + line + "\n")
	}
}

type blogGroup struct {
	blogID int64
	notes  []*store.Note
}

// groupByBlog buckets notes by blog id in insertion order of first occurrence.
func groupByBlog(notes []*store.Note) []blogGroup {
	index := make(map[int64]int)
	var groups []blogGroup
	for _, n := range notes {
		i, ok := index[n.BlogID]
		if !ok {
			i = len(groups)
			index[n.BlogID] = i
			groups = append(groups, blogGroup{blogID: n.BlogID})
		}
		groups[i].notes = append(groups[i].notes, n)
	}
	return groups
}
