// Package urlstate is the pure, bidirectional codec between the navigation
// state and its query-string representation. Encode and Decode satisfy the
// round-trip law Decode(Encode(s)) == s for states whose optional fields are
// in valid ranges.
package urlstate

import (
	"net/url"
	"strconv"
	"strings"
)

// Tab selects which of the three views is active.
type Tab string

const (
	TabLookup Tab = "lookup"
	TabSearch Tab = "search"
	TabBrowse Tab = "browse"
)

// Valid reports whether the tab is one of the three known views.
func (t Tab) Valid() bool {
	switch t {
	case TabLookup, TabSearch, TabBrowse:
		return true
	}
	return false
}

// State is the navigation state carried in the query string. All fields are
// optional and independently absent; the zero value means "nothing set".
// At most one of Ref, Search, and the Book/Chapter pair is meaningful at a
// time, consistent with Tab; the synchronizer maintains that invariant.
type State struct {
	Tab     Tab
	Ref     string
	Search  string
	Book    string
	Chapter int
	Bibles  []string
}

// Equal compares two states field by field.
func (s State) Equal(o State) bool {
	if s.Tab != o.Tab || s.Ref != o.Ref || s.Search != o.Search ||
		s.Book != o.Book || s.Chapter != o.Chapter || len(s.Bibles) != len(o.Bibles) {
		return false
	}
	for i := range s.Bibles {
		if s.Bibles[i] != o.Bibles[i] {
			return false
		}
	}
	return true
}

// Encode renders the state as a query string, emitting only set fields, in
// the stable order tab, ref, q, book, chapter, bibles. Values are
// percent-encoded (space as %20, not +); translation ids are comma-joined and
// must not contain commas.
func Encode(s State) string {
	var b strings.Builder

	add := func(key, value string) {
		if value == "" {
			return
		}
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(escape(value))
	}

	add("tab", string(s.Tab))
	add("ref", s.Ref)
	add("q", s.Search)
	add("book", s.Book)
	if s.Chapter > 0 {
		add("chapter", strconv.Itoa(s.Chapter))
	}
	if len(s.Bibles) > 0 {
		add("bibles", strings.Join(s.Bibles, ","))
	}

	return b.String()
}

// Decode reads the six logical fields out of a query string. It is tolerant:
// unknown keys are ignored, malformed values fall back to their raw text, an
// invalid tab or non-positive chapter decodes as absent.
func Decode(query string) State {
	query = strings.TrimPrefix(query, "?")
	values, err := url.ParseQuery(query)
	if err != nil && len(values) == 0 {
		return State{}
	}

	var s State
	if tab := Tab(values.Get("tab")); tab.Valid() {
		s.Tab = tab
	}
	s.Ref = values.Get("ref")
	s.Search = values.Get("q")
	s.Book = values.Get("book")
	if n, err := strconv.Atoi(values.Get("chapter")); err == nil && n > 0 {
		s.Chapter = n
	}
	if raw := values.Get("bibles"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id != "" {
				s.Bibles = append(s.Bibles, id)
			}
		}
	}
	return s
}

// escape is encodeURIComponent-style percent encoding: QueryEscape except
// spaces become %20 so encoded values read the same in every decoder.
func escape(v string) string {
	return strings.ReplaceAll(url.QueryEscape(v), "+", "%20")
}
