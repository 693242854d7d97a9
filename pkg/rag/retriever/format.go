package retriever

import (
	"fmt"
	"strings"
)

// Context is the formatted evidence block plus the deduplicated source
// labels, ready for prompt assembly and for the API response.
type Context struct {
	Text    string
	Sources []string
}

// BuildContext renders retrieved passages into the single string the
// generator grounds on. Each passage is tagged with its source header;
// source labels are deduplicated by first occurrence, preserving order.
func BuildContext(docs []string, metas []map[string]interface{}) *Context {
	blocks := make([]string, 0, len(docs))
	sources := make([]string, 0, len(docs))
	seen := make(map[string]bool)

	for i, doc := range docs {
		var meta map[string]interface{}
		if i < len(metas) {
			meta = metas[i]
		}

		filename := metaString(meta, "filename")
		if filename == "" {
			filename = "Unknown"
		}

		page := "N/A"
		if meta != nil {
			if _, ok := meta["page"]; ok {
				page = fmt.Sprintf("%d", metaInt(meta, "page"))
			}
		}

		blocks = append(blocks, fmt.Sprintf("[Source %d: %s, Page %s]\n%s\n", i+1, filename, page, doc))

		label := fmt.Sprintf("%s (Page %s)", filename, page)
		if !seen[label] {
			seen[label] = true
			sources = append(sources, label)
		}
	}

	return &Context{
		Text:    strings.Join(blocks, "\n"),
		Sources: sources,
	}
}
