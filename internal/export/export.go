// Package export renders note collections into interchange formats: Markdown
// for reading, JSON for machine round-trips, CSV for spreadsheets. All
// formatters are total over well-formed collections, including empty ones.
package export

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/blogmark/blogmark/internal/store"
)

// Render dispatches to the formatter for the given shape.
func Render(notes []*store.Note, blogNames map[int64]string, f Format, singleBlog bool) string {
	switch f {
	case FormatJSON:
		return JSON(notes, blogNames)
	case FormatCSV:
		return CSV(notes, blogNames, singleBlog)
	}
	return Markdown(notes, blogNames)
}

// Format identifies an export shape.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
)

// Ext returns the file extension for the format.
func (f Format) Ext() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatCSV:
		return "csv"
	}
	return "md"
}

// ParseFormat accepts a format name or its extension.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	}
	return "", fmt.Errorf("invalid format %q (want markdown, json, or csv)", s)
}

var filenameUnsafe = regexp.MustCompile(`[^a-z0-9-]+`)

// Filename suggests a download filename for an export. An empty blog name
// yields the generic "my-notes" prefix.
func Filename(blogName string, f Format) string {
	name := strings.ToLower(strings.TrimSpace(blogName))
	name = strings.ReplaceAll(name, " ", "-")
	name = filenameUnsafe.ReplaceAllString(name, "")
	name = strings.Trim(name, "-")
	if name == "" {
		name = "my"
	}
	return fmt.Sprintf("%s-notes.%s", name, f.Ext())
}
