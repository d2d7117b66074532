package ui

import (
	"encoding/json"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"biblescope/internal/api"
	"biblescope/internal/prefs"
	"biblescope/internal/urlstate"
)

var testCatalog = []api.Translation{
	{Module: "kjv", Name: "King James Version", ShortName: "KJV", Lang: "English", LangShort: "en"},
	{Module: "esv", Name: "English Standard Version", ShortName: "ESV", Lang: "English", LangShort: "en"},
}

var testBooks = []api.Book{
	{ID: 1, Name: "Genesis", Chapters: 50},
	{ID: 43, Name: "John", Chapters: 21},
}

func newTestModel(t *testing.T, query string) Model {
	t.Helper()
	m := NewModel(api.NewClient("http://example.invalid", nil), prefs.Open(t.TempDir()), query, "dark", "en", nil)
	sized, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return sized.(Model)
}

func grouped(t *testing.T, raw string) api.PassagePayload {
	t.Helper()
	var p api.PassagePayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("payload: %v", err)
	}
	return p
}

func TestSharedQueryReplaysOnCatalogLoad(t *testing.T) {
	m := newTestModel(t, "tab=lookup&ref=John+3:16&bibles=kjv")

	updated, cmd := m.Update(catalogMsg{catalog: testCatalog})
	m = updated.(Model)

	if cmd == nil {
		t.Fatal("expected a replay fetch command")
	}
	if got := m.ctrl.State().Bibles; len(got) != 1 || got[0] != "kjv" {
		t.Fatalf("translations = %v, want [kjv]", got)
	}
	if len(m.picker.Items()) != len(testCatalog) {
		t.Fatalf("picker items = %d, want %d", len(m.picker.Items()), len(testCatalog))
	}
}

func TestPassageResponseRenders(t *testing.T) {
	m := newTestModel(t, "tab=lookup&ref=John+3:16&bibles=kjv")
	updated, _ := m.Update(catalogMsg{catalog: testCatalog})
	m = updated.(Model)

	payload := grouped(t, `[{"book":43,"book_name":"John","verses":{"kjv":{"3":{"16":{"book":43,"chapter":3,"verse":16,"text":"For God so loved the world"}}}}}]`)
	updated, _ = m.Update(passageMsg{
		seq:    1,
		bibles: []string{"kjv"},
		result: api.QueryResult{Success: true, Results: payload},
	})
	m = updated.(Model)

	if m.loading {
		t.Fatal("loading should clear once the fetch settles")
	}
	if !strings.Contains(m.content, "For God so loved the world") {
		t.Fatalf("verse text missing from content:\n%s", m.content)
	}
	if !strings.Contains(m.content, "John 3") {
		t.Fatalf("group header missing from content:\n%s", m.content)
	}
}

func TestStalePassageResponseIgnored(t *testing.T) {
	m := newTestModel(t, "tab=lookup&ref=John+3:16&bibles=kjv")
	updated, _ := m.Update(catalogMsg{catalog: testCatalog})
	m = updated.(Model)

	payload := grouped(t, `[{"book":43,"book_name":"John","verses":{"kjv":{"3":{"16":{"book":43,"chapter":3,"verse":16,"text":"old response"}}}}}]`)
	updated, _ = m.Update(passageMsg{
		seq:    0,
		bibles: []string{"kjv"},
		result: api.QueryResult{Success: true, Results: payload},
	})
	m = updated.(Model)

	if strings.Contains(m.content, "old response") {
		t.Fatal("stale response must not overwrite the view")
	}
}

func TestFailedFetchReplacesView(t *testing.T) {
	m := newTestModel(t, "tab=lookup&ref=John+3:16&bibles=kjv")
	updated, _ := m.Update(catalogMsg{catalog: testCatalog})
	m = updated.(Model)

	updated, _ = m.Update(passageMsg{
		seq:    1,
		bibles: []string{"kjv"},
		result: api.QueryResult{Success: false, Err: &api.Error{Message: "Invalid reference format"}},
	})
	m = updated.(Model)

	if m.content != "" {
		t.Fatalf("prior passage content should be cleared, got %q", m.content)
	}
	if m.inlineErr != "Invalid reference format" {
		t.Fatalf("inlineErr = %q", m.inlineErr)
	}
}

func TestBookPickerJumpsToBook(t *testing.T) {
	m := newTestModel(t, "tab=browse&bibles=kjv")
	updated, _ := m.Update(catalogMsg{catalog: testCatalog})
	m = updated.(Model)
	updated, _ = m.Update(booksMsg{books: testBooks})
	m = updated.(Model)

	if got := m.ctrl.State().Book; got != "Genesis" {
		t.Fatalf("auto-selected book = %q, want Genesis", got)
	}

	updated, _, handled := m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'b'}})
	if !handled {
		t.Fatal("b should open the book picker on the browse tab")
	}
	m = updated.(Model)
	if m.mode != modePicker {
		t.Fatal("book picker should be open")
	}

	m.picker.Select(1)
	updated, cmd, _ := m.handleKey(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	if cmd == nil {
		t.Fatal("selecting a book should start a fetch")
	}
	if got := m.ctrl.State().Book; got != "John" {
		t.Fatalf("book = %q, want John", got)
	}
	if got := m.ctrl.State().Chapter; got != 1 {
		t.Fatalf("chapter = %d, want 1", got)
	}
}

func TestTabCycleClearsView(t *testing.T) {
	m := newTestModel(t, "")
	updated, _ := m.Update(catalogMsg{catalog: testCatalog})
	m = updated.(Model)

	updated, _, handled := m.handleKey(tea.KeyMsg{Type: tea.KeyTab})
	if !handled {
		t.Fatal("tab key should be handled")
	}
	m = updated.(Model)

	if got := m.ctrl.State().Tab; got != urlstate.TabSearch {
		t.Fatalf("tab = %q, want search", got)
	}
	if m.content != "" {
		t.Fatal("view content should reset on tab switch")
	}
}
