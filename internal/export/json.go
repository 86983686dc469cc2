package export

import (
	"encoding/json"

	"github.com/blogmark/blogmark/internal/store"
)

// exportedNote is a note augmented with its resolved blog name.
type exportedNote struct {
	store.Note
	BlogName string `json:"blog_name"`
}

// JSON renders notes as a pretty-printed array. Every note field appears,
// plus a blog_name resolved through the lookup (defaulting to UnknownBlog).
// An empty collection renders as an empty array.
func JSON(notes []*store.Note, blogNames map[int64]string) string {
	out := make([]exportedNote, 0, len(notes))
	for _, n := range notes {
		name := blogNames[n.BlogID]
		if name == "" {
			name = UnknownBlog
		}
		out = append(out, exportedNote{Note: *n, BlogName: name})
	}

	// Marshal cannot fail for this shape: plain strings, ints, and times.
	data, _ := json.MarshalIndent(out, "", "  ")
	return string(data)
}
