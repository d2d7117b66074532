package ui

import (
	"strings"
	"testing"

	"biblescope/internal/passage"
)

func TestRenderVerseTextStripsMarkup(t *testing.T) {
	got := renderVerseText(`In the <i>beginning</i> God created`, nil, Dark)
	if strings.Contains(got, "<") || strings.Contains(got, ">") {
		t.Fatalf("markup not stripped: %q", got)
	}
	if !strings.Contains(got, "beginning") {
		t.Fatalf("inner text lost: %q", got)
	}
}

func TestRenderVerseTextKeepsHighlightedContent(t *testing.T) {
	got := renderVerseText("the living water", []string{"living"}, Dark)
	if !strings.Contains(got, "living") {
		t.Fatalf("highlighted term lost: %q", got)
	}
	if strings.Contains(got, passage.MarkOpen) || strings.Contains(got, "</mark>") {
		t.Fatalf("mark tags leaked into output: %q", got)
	}
}

func TestFormatPassagesEmptyTranslationRendersPerTranslation(t *testing.T) {
	groups := map[string][]passage.DisplayGroup{
		"kjv": {
			{BookName: "John", Chapter: 3, Verses: []passage.Verse{
				{Translation: "kjv", BookName: "John", Chapter: 3, Verse: 16, Text: "For God so loved the world"},
			}},
		},
		"esv": {},
	}
	names := map[string]string{"kjv": "KJV", "esv": "ESV"}

	out := formatPassages([]string{"kjv", "esv"}, groups, names, nil, Dark, 80)
	if !strings.Contains(out, "John 3") {
		t.Fatalf("group header missing:\n%s", out)
	}
	if !strings.Contains(out, "For God so loved the world") {
		t.Fatalf("verse text missing:\n%s", out)
	}
	if !strings.Contains(out, "No verses found in ESV.") {
		t.Fatalf("empty translation should render its own notice:\n%s", out)
	}
	if !strings.Contains(out, "KJV") {
		t.Fatalf("parallel view should label translations:\n%s", out)
	}
}

func TestFormatPassagesSingleTranslationOmitsLabel(t *testing.T) {
	groups := map[string][]passage.DisplayGroup{
		"kjv": {
			{BookName: "John", Chapter: 3, Verses: []passage.Verse{
				{Verse: 16, Text: "text"},
			}},
		},
	}
	out := formatPassages([]string{"kjv"}, groups, map[string]string{"kjv": "KJV"}, nil, Dark, 80)
	if strings.Contains(out, "KJV") {
		t.Fatalf("single view should not print the translation header:\n%s", out)
	}
}
