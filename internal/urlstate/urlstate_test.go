package urlstate

import "testing"

func TestEncodeStableKeyOrder(t *testing.T) {
	s := State{
		Tab:     TabLookup,
		Ref:     "John 3:16",
		Bibles:  []string{"kjv"},
		Chapter: 0,
	}
	got := Encode(s)
	want := "tab=lookup&ref=John%203%3A16&bibles=kjv"
	if got != want {
		t.Fatalf("Encode = %q, want %q", got, want)
	}
}

func TestEncodeOmitsUnsetFields(t *testing.T) {
	if got := Encode(State{}); got != "" {
		t.Fatalf("zero state should encode empty, got %q", got)
	}
	got := Encode(State{Tab: TabBrowse, Book: "Genesis", Chapter: 2, Bibles: []string{"kjv", "esv"}})
	want := "tab=browse&book=Genesis&chapter=2&bibles=kjv%2Cesv"
	if got != want {
		t.Fatalf("Encode = %q, want %q", got, want)
	}
}

func TestRoundTrip(t *testing.T) {
	states := []State{
		{},
		{Tab: TabLookup, Ref: "1 John 1:1-3", Bibles: []string{"kjv"}},
		{Tab: TabSearch, Search: "living water & fire", Bibles: []string{"kjv", "esv"}},
		{Tab: TabBrowse, Book: "Song of Solomon", Chapter: 2, Bibles: []string{"oster"}},
		{Search: "no tab set"},
	}
	for _, s := range states {
		got := Decode(Encode(s))
		if !got.Equal(s) {
			t.Fatalf("round trip failed:\n in:  %+v\n out: %+v\n via %q", s, got, Encode(s))
		}
	}
}

func TestDecodeIndependentAbsence(t *testing.T) {
	s := Decode("?q=hello")
	if s.Tab != "" || s.Ref != "" || s.Book != "" || s.Chapter != 0 || s.Bibles != nil {
		t.Fatalf("unexpected fields set: %+v", s)
	}
	if s.Search != "hello" {
		t.Fatalf("search not decoded: %+v", s)
	}
}

func TestDecodeRejectsInvalidTabAndChapter(t *testing.T) {
	s := Decode("tab=settings&chapter=-3")
	if s.Tab != "" {
		t.Fatalf("invalid tab should decode absent, got %q", s.Tab)
	}
	if s.Chapter != 0 {
		t.Fatalf("non-positive chapter should decode absent, got %d", s.Chapter)
	}
	if s2 := Decode("chapter=abc"); s2.Chapter != 0 {
		t.Fatalf("non-numeric chapter should decode absent, got %d", s2.Chapter)
	}
}

func TestDecodeSplitsBibles(t *testing.T) {
	s := Decode("bibles=kjv,esv,")
	if len(s.Bibles) != 2 || s.Bibles[0] != "kjv" || s.Bibles[1] != "esv" {
		t.Fatalf("unexpected bibles: %v", s.Bibles)
	}
}

func TestTabValid(t *testing.T) {
	for _, tab := range []Tab{TabLookup, TabSearch, TabBrowse} {
		if !tab.Valid() {
			t.Fatalf("%q should be valid", tab)
		}
	}
	if Tab("reader").Valid() {
		t.Fatalf("unknown tab should be invalid")
	}
}
