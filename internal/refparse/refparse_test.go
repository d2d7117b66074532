package refparse

import "testing"

func TestParseSimpleReference(t *testing.T) {
	r := Parse("John 3:16")
	if !r.Parsed() {
		t.Fatalf("expected parse to succeed")
	}
	if r.Book != "John" || r.Chapter != 3 || r.Verse != 16 || r.VerseEnd != 0 {
		t.Fatalf("unexpected parse: %+v", r)
	}
}

func TestParseNumberedBookWithRange(t *testing.T) {
	r := Parse("1 John 1:1-3")
	if r.Book != "1 John" || r.Chapter != 1 || r.Verse != 1 || r.VerseEnd != 3 {
		t.Fatalf("unexpected parse: %+v", r)
	}
}

func TestParseTwoWordBook(t *testing.T) {
	r := Parse("Song Solomon 2:1")
	if r.Book != "Song Solomon" || r.Chapter != 2 {
		t.Fatalf("unexpected parse: %+v", r)
	}
}

func TestParsePassthroughOnFailure(t *testing.T) {
	for _, in := range []string{"Jean 3,16", "the whole book of John", "John 3"} {
		r := Parse(in)
		if r.Parsed() {
			t.Fatalf("expected passthrough for %q, got %+v", in, r)
		}
		if r.Original != in {
			t.Fatalf("original not preserved for %q: %q", in, r.Original)
		}
	}
}

func TestParseTrimsInput(t *testing.T) {
	r := Parse("  John 3:16  ")
	if r.Original != "John 3:16" {
		t.Fatalf("expected trimmed original, got %q", r.Original)
	}
}

func TestStringRoundTrip(t *testing.T) {
	if got := Parse("1 John 1:1-3").String(); got != "1 John 1:1-3" {
		t.Fatalf("got %q", got)
	}
	if got := Parse("some free text 1").String(); got != "some free text 1" {
		t.Fatalf("passthrough should format as original, got %q", got)
	}
}

func TestLooksLikeReference(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"John 3:16", true},
		{"  1 John 1:1-3", true},
		{"living water", false},
		{"John 3", false},
	}
	for _, c := range cases {
		if got := LooksLikeReference(c.in); got != c.want {
			t.Fatalf("LooksLikeReference(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}
