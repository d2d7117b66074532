package ui

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"biblescope/internal/passage"
)

var (
	markPattern = regexp.MustCompile(regexp.QuoteMeta(passage.MarkOpen) + `(.*?)` + regexp.QuoteMeta(passage.MarkClose))
	tagPattern  = regexp.MustCompile(`<[^>]*>`)
)

// formatPassages renders the normalized display model: one section per
// translation in selection order, a header per (book, chapter) group, verses
// numbered and word-wrapped. A translation with no verses renders its own
// "no results" line rather than escalating.
func formatPassages(ids []string, groups map[string][]passage.DisplayGroup, names map[string]string, terms []string, th Theme, width int) string {
	if width <= 0 {
		width = 80
	}
	translationStyle := lipgloss.NewStyle().Bold(true).Foreground(th.Accent)
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(th.Secondary)
	verseNumStyle := lipgloss.NewStyle().Foreground(th.Muted)
	emptyStyle := lipgloss.NewStyle().Foreground(th.Muted).Italic(true)

	parallel := len(ids) > 1

	var sb strings.Builder
	for _, id := range ids {
		name := names[id]
		if name == "" {
			name = id
		}
		if parallel {
			sb.WriteString(translationStyle.Render(name) + "\n")
			sb.WriteString(strings.Repeat("─", min(width, 60)) + "\n")
		}

		gs := groups[id]
		if len(gs) == 0 {
			sb.WriteString(emptyStyle.Render(fmt.Sprintf("No verses found in %s.", name)) + "\n\n")
			continue
		}

		for _, g := range gs {
			sb.WriteString(headerStyle.Render(fmt.Sprintf("%s %d", g.BookName, g.Chapter)) + "\n\n")
			for _, v := range g.Verses {
				label := fmt.Sprintf("%3d", v.Verse)
				if v.VerseEnd > v.Verse {
					label = fmt.Sprintf("%d-%d", v.Verse, v.VerseEnd)
				}
				num := verseNumStyle.Render(label)
				text := renderVerseText(v.Text, terms, th)
				wrapped := wordwrap.String(text, width-6)
				wrapped = strings.ReplaceAll(wrapped, "\n", "\n      ")
				sb.WriteString(fmt.Sprintf("%s   %s\n", num, wrapped))
			}
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// renderVerseText applies search-term highlighting, converts the semantic
// mark tags to terminal styling, and strips whatever other markup the verse
// text arrived with.
func renderVerseText(text string, terms []string, th Theme) string {
	if len(terms) > 0 {
		text = passage.Highlight(text, terms)
	}
	highlight := lipgloss.NewStyle().Foreground(th.Highlight).Bold(true)
	text = markPattern.ReplaceAllStringFunc(text, func(match string) string {
		inner := markPattern.FindStringSubmatch(match)[1]
		return highlight.Render(inner)
	})
	return tagPattern.ReplaceAllString(text, "")
}
