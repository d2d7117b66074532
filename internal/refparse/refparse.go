// Package refparse does best-effort decomposition of free-text Bible
// references. The remote API owns the authoritative book-name dictionary, so
// anything this package cannot parse passes through untouched for the server
// to resolve; input is never rejected outright.
package refparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// refPattern matches Book Chapter:Verse[-VerseEnd]. The book name may lead
// with a numeral ("1 John") and span two words.
var refPattern = regexp.MustCompile(`^(\d?\s*[A-Za-z]+(?:\s+[A-Za-z]+)?)\s+(\d+):(\d+)(?:-(\d+))?$`)

var chapterVersePattern = regexp.MustCompile(`\d+:\d+`)

// Reference is a parsed reference. When parsing fails, only Original is set
// and the structured fields stay zero.
type Reference struct {
	Original string
	Book     string
	Chapter  int
	Verse    int
	VerseEnd int
}

// Parsed reports whether the structured fields carry anything.
func (r Reference) Parsed() bool { return r.Book != "" }

// String formats the reference back to canonical text, falling back to the
// original input when it was never decomposed.
func (r Reference) String() string {
	if !r.Parsed() || r.Chapter == 0 || r.Verse == 0 {
		return r.Original
	}
	s := fmt.Sprintf("%s %d:%d", r.Book, r.Chapter, r.Verse)
	if r.VerseEnd > r.Verse {
		s += fmt.Sprintf("-%d", r.VerseEnd)
	}
	return s
}

// Parse decomposes a free-text reference. On any mismatch it returns a
// passthrough record carrying only the trimmed original text.
func Parse(reference string) Reference {
	trimmed := strings.TrimSpace(reference)
	if trimmed == "" {
		return Reference{}
	}

	m := refPattern.FindStringSubmatch(trimmed)
	if m == nil {
		return Reference{Original: trimmed}
	}

	chapter, _ := strconv.Atoi(m[2])
	verse, _ := strconv.Atoi(m[3])
	verseEnd := 0
	if m[4] != "" {
		verseEnd, _ = strconv.Atoi(m[4])
	}

	return Reference{
		Original: trimmed,
		Book:     strings.TrimSpace(m[1]),
		Chapter:  chapter,
		Verse:    verse,
		VerseEnd: verseEnd,
	}
}

// LooksLikeReference is the loose heuristic used to decide whether parsing is
// worth attempting at all: the input contains a chapter:verse pair somewhere.
// It does not gate submission.
func LooksLikeReference(reference string) bool {
	return chapterVersePattern.MatchString(strings.TrimSpace(reference))
}
