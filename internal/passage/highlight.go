package passage

import (
	"regexp"
	"sort"
	"strings"
)

// MarkOpen and MarkClose wrap highlighted search terms. The class is a fixed
// semantic marker the render layer styles; nothing else is sanitized here, so
// the surrounding render target must treat the result as pre-escaped markup.
const (
	MarkOpen  = `<mark class="search-highlight">`
	MarkClose = `</mark>`
)

// Terms splits a raw search query into the highlightable terms, one per
// whitespace-separated token.
func Terms(query string) []string {
	return strings.Fields(query)
}

// Highlight wraps every case-insensitive literal occurrence of the terms in
// the mark tags. Terms are quoted before matching so user input can never act
// as a pattern; longer terms take precedence over shorter ones that would
// otherwise shadow them.
func Highlight(text string, terms []string) string {
	if text == "" || len(terms) == 0 {
		return text
	}

	quoted := make([]string, 0, len(terms))
	for _, term := range terms {
		if term == "" {
			continue
		}
		quoted = append(quoted, regexp.QuoteMeta(term))
	}
	if len(quoted) == 0 {
		return text
	}
	sort.SliceStable(quoted, func(i, j int) bool {
		return len(quoted[i]) > len(quoted[j])
	})

	pattern, err := regexp.Compile(`(?i)(` + strings.Join(quoted, "|") + `)`)
	if err != nil {
		return text
	}

	return pattern.ReplaceAllStringFunc(text, func(match string) string {
		return MarkOpen + match + MarkClose
	})
}
