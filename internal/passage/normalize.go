// Package passage turns raw multi-translation API payloads into the ordered,
// grouped display model the UI renders.
package passage

import (
	"sort"
	"strconv"

	"biblescope/internal/api"
)

// Verse is one normalized verse. Constructed fresh from each payload and
// never mutated afterwards.
type Verse struct {
	Translation string
	BookID      int
	BookName    string
	Chapter     int
	Verse       int
	VerseEnd    int
	Text        string
}

// DisplayGroup is one (book, chapter) run of verses for a single translation,
// verses ordered ascending.
type DisplayGroup struct {
	BookName string
	Chapter  int
	Verses   []Verse
}

// Normalize converts a payload of either accepted shape into per-translation
// display groups. Every requested translation gets an entry, empty when it
// yielded no verses, so callers can render "no results" per translation.
func Normalize(payload api.PassagePayload, translations []string) map[string][]DisplayGroup {
	out := make(map[string][]DisplayGroup, len(translations))
	for _, id := range translations {
		out[id] = group(sortVerses(flatten(payload, id)))
	}
	return out
}

// flatten produces the intermediate flat verse list for one translation.
// Verse records without text are dropped here so a single bad record cannot
// sink its whole group.
func flatten(payload api.PassagePayload, translation string) []Verse {
	var flat []Verse

	for _, g := range payload.Groups {
		chapters, ok := g.Verses[translation]
		if !ok {
			continue
		}
		for _, chapterKey := range sortedNumericKeys(chapters) {
			verses := chapters[chapterKey]
			chapter, _ := strconv.Atoi(chapterKey)
			for _, verseKey := range sortedNumericKeysV(verses) {
				rec := verses[verseKey]
				if rec.Text == "" {
					continue
				}
				verse, _ := strconv.Atoi(verseKey)
				flat = append(flat, Verse{
					Translation: translation,
					BookID:      g.BookID,
					BookName:    g.DisplayBook(),
					Chapter:     chapter,
					Verse:       verse,
					VerseEnd:    rec.VerseEnd,
					Text:        rec.Text,
				})
			}
		}
	}

	for _, rec := range payload.Legacy[translation] {
		if rec.Text == "" {
			continue
		}
		name := rec.BookName
		if name == "" {
			name = "Unknown"
		}
		flat = append(flat, Verse{
			Translation: translation,
			BookID:      rec.Book,
			BookName:    name,
			Chapter:     rec.Chapter,
			Verse:       rec.Verse,
			VerseEnd:    rec.VerseEnd,
			Text:        rec.Text,
		})
	}

	return flat
}

// sortVerses orders by (book id when both sides have one, else book name),
// then chapter, then verse. The sort is stable so encounter order breaks ties.
func sortVerses(verses []Verse) []Verse {
	sort.SliceStable(verses, func(i, j int) bool {
		a, b := verses[i], verses[j]
		if a.BookID > 0 && b.BookID > 0 {
			if a.BookID != b.BookID {
				return a.BookID < b.BookID
			}
		} else if a.BookName != b.BookName {
			return a.BookName < b.BookName
		}
		if a.Chapter != b.Chapter {
			return a.Chapter < b.Chapter
		}
		return a.Verse < b.Verse
	})
	return verses
}

// group folds consecutive runs sharing (book, chapter) into display groups
// and orders verses inside each group.
func group(verses []Verse) []DisplayGroup {
	groups := []DisplayGroup{}
	for _, v := range verses {
		n := len(groups)
		if n == 0 || groups[n-1].BookName != v.BookName || groups[n-1].Chapter != v.Chapter {
			groups = append(groups, DisplayGroup{BookName: v.BookName, Chapter: v.Chapter})
			n++
		}
		groups[n-1].Verses = append(groups[n-1].Verses, v)
	}
	for i := range groups {
		sort.SliceStable(groups[i].Verses, func(a, b int) bool {
			return groups[i].Verses[a].Verse < groups[i].Verses[b].Verse
		})
	}
	return groups
}

func sortedNumericKeys(m map[string]map[string]api.VerseRecord) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sortNumeric(keys)
	return keys
}

func sortedNumericKeysV(m map[string]api.VerseRecord) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sortNumeric(keys)
	return keys
}

// sortNumeric orders decimal string keys by value, with non-numeric keys
// after numeric ones in lexical order.
func sortNumeric(keys []string) {
	sort.Slice(keys, func(i, j int) bool {
		a, aerr := strconv.Atoi(keys[i])
		b, berr := strconv.Atoi(keys[j])
		switch {
		case aerr == nil && berr == nil:
			return a < b
		case aerr == nil:
			return true
		case berr == nil:
			return false
		default:
			return keys[i] < keys[j]
		}
	})
}
