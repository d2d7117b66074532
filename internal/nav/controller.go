// Package nav owns the navigation state: which tab is active, what is being
// looked up, searched, or browsed, and which translations are selected. It
// keeps the shareable query string, the preference store, and in-memory state
// mutually consistent without feedback loops.
package nav

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"biblescope/internal/api"
	"biblescope/internal/locale"
	"biblescope/internal/urlstate"
)

// Phase replaces the pair of ad-hoc re-entrancy flags with explicit modes.
// Transitions happen only on intents, fetch settlement, or the settle
// timeout.
type Phase int

const (
	// PhaseIdle: user intents mutate state, write the query string, and may
	// start fetches.
	PhaseIdle Phase = iota
	// PhaseLoadingFromURL: state is being replayed out of the query string;
	// query-string writes are suppressed so the replay cannot echo.
	PhaseLoadingFromURL
	// PhaseAwaitingSettle: a fetch this controller started is in flight; no
	// reactive fetch may be spawned for it.
	PhaseAwaitingSettle
)

// SettleTimeout bounds both non-idle phases when the guarded fetch never
// settles; the guard must never stay engaged.
const SettleTimeout = time.Second

// URLSink receives the re-derived query string after each state mutation.
// Writes are synchronous with the mutation that caused them.
type URLSink interface {
	WriteQuery(query string)
}

// PrefStore is the consent-gated persistence the controller writes through.
type PrefStore interface {
	Consented() bool
	Translations() []string
	SaveTranslations(ids []string) error
}

// FetchKind says what a FetchRequest is for.
type FetchKind int

const (
	FetchLookup FetchKind = iota + 1
	FetchSearch
	FetchBrowse
)

// FetchRequest describes a passage fetch the caller should start. Seq tags
// the request so stale completions can be dropped: overlapping fetches are
// not cancelled, the newest sequence simply wins.
type FetchRequest struct {
	Seq       int
	Kind      FetchKind
	Reference string
	Search    string
	Bibles    []string
}

// Validation errors, surfaced inline before any fetch; the state is not
// mutated when one is returned.
var (
	ErrEmptyReference = errors.New("enter a reference to look up")
	ErrEmptySearch    = errors.New("enter text to search for")
	ErrNoTranslations = errors.New("select at least one translation")
	ErrUnknownBook    = errors.New("unknown book")
)

// Controller is the navigation state synchronizer. Not safe for concurrent
// use; it lives on the UI event loop.
type Controller struct {
	state   urlstate.State
	catalog []api.Translation
	known   map[string]api.Translation
	books   []api.Book

	phase    Phase
	resolved bool
	seq      int
	lastErr  string

	url   URLSink
	prefs PrefStore
	lang  string
	log   *slog.Logger
}

func New(url URLSink, prefs PrefStore, lang string, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Controller{
		state: urlstate.State{Tab: urlstate.TabLookup},
		url:   url,
		prefs: prefs,
		lang:  lang,
		log:   log,
	}
}

// LoadQuery replays a shared query string as the starting state. Called once,
// before the catalog arrives; resolution and the initial fetch happen in
// CatalogLoaded.
func (c *Controller) LoadQuery(query string) {
	s := urlstate.Decode(query)
	if s.Tab == "" {
		s.Tab = urlstate.TabLookup
	}
	c.state = s
}

// State returns a copy of the current navigation state.
func (c *Controller) State() urlstate.State {
	s := c.state
	s.Bibles = append([]string(nil), c.state.Bibles...)
	return s
}

func (c *Controller) Phase() Phase { return c.phase }

// Err is the current recoverable error message, empty when none.
func (c *Controller) Err() string { return c.lastErr }

func (c *Controller) Catalog() []api.Translation { return c.catalog }

func (c *Controller) Books() []api.Book { return c.books }

// Translation looks a catalog entry up by module code.
func (c *Controller) Translation(module string) (api.Translation, bool) {
	t, ok := c.known[module]
	return t, ok
}

// NeedsBooks reports whether the browse tab is active without book metadata.
func (c *Controller) NeedsBooks() bool {
	return c.state.Tab == urlstate.TabBrowse && len(c.books) == 0
}

// CatalogLoaded installs the catalog and, on first load, resolves the initial
// translation set: query-string ids filtered to the catalog, else the
// consented stored set filtered the same way, else the language default. The
// returned request replays any lookup or search the query string carried.
func (c *Controller) CatalogLoaded(catalog []api.Translation) *FetchRequest {
	c.catalog = catalog
	c.known = make(map[string]api.Translation, len(catalog))
	for _, t := range catalog {
		c.known[t.Module] = t
	}
	c.lastErr = ""

	if c.resolved {
		return nil
	}
	c.resolved = true

	fromURL := false
	resolved := c.filterKnown(c.state.Bibles)
	if len(resolved) > 0 {
		fromURL = true
	} else if c.prefs.Consented() {
		resolved = c.filterKnown(c.prefs.Translations())
	}
	if len(resolved) == 0 {
		resolved = locale.DefaultTranslations(c.lang, catalog)
	}
	c.state.Bibles = resolved
	c.log.Info("initial translations resolved", "bibles", resolved, "from_url", fromURL)

	// Refresh the stored set unless the URL dictated it.
	if !fromURL && len(resolved) > 0 && c.prefs.Consented() {
		if err := c.prefs.SaveTranslations(resolved); err != nil {
			c.log.Warn("preference write failed", "err", err)
		}
	}

	return c.replayFromQuery()
}

// CatalogFailed keeps the last-known translation set and records a
// recoverable error; an already-resolved selection is never cleared by a
// catalog failure.
func (c *Controller) CatalogFailed(err error) {
	c.lastErr = err.Error()
	c.log.Warn("catalog fetch failed", "err", err)
}

// replayFromQuery starts the fetch the decoded query string implies, if any.
// Browse replays wait for BooksLoaded.
func (c *Controller) replayFromQuery() *FetchRequest {
	if len(c.state.Bibles) == 0 {
		return nil
	}
	var req *FetchRequest
	switch {
	case c.state.Tab == urlstate.TabLookup && c.state.Ref != "":
		req = c.newFetch(FetchLookup, c.state.Ref, "")
	case c.state.Tab == urlstate.TabSearch && c.state.Search != "":
		req = c.newFetch(FetchSearch, "", c.state.Search)
	default:
		return nil
	}
	c.phase = PhaseLoadingFromURL
	return req
}

// BooksLoaded installs book metadata. On the browse tab it completes a
// pending query-string replay, or auto-selects the first book when the query
// string named none.
func (c *Controller) BooksLoaded(books []api.Book) *FetchRequest {
	c.books = books
	if c.state.Tab != urlstate.TabBrowse || len(books) == 0 {
		return nil
	}
	if len(c.state.Bibles) == 0 {
		return nil
	}

	if c.state.Book != "" {
		if _, ok := c.bookByName(c.state.Book); !ok {
			c.lastErr = fmt.Sprintf("unknown book %q", c.state.Book)
			return nil
		}
		if c.state.Chapter == 0 {
			c.state.Chapter = 1
		}
		req := c.newFetch(FetchBrowse, c.browseReference(), "")
		c.phase = PhaseLoadingFromURL
		return req
	}

	// No browse target in the query string: select the first book.
	c.state.Book = books[0].Name
	c.state.Chapter = 1
	c.writeURL()
	return c.startFetch(FetchBrowse, c.browseReference(), "")
}

// BooksFailed records a recoverable error without touching navigation state.
func (c *Controller) BooksFailed(err error) {
	c.lastErr = err.Error()
	c.log.Warn("books fetch failed", "err", err)
}

// SelectTab switches the active view. The fields belonging to the other two
// views are cleared so at most one target is meaningful at a time.
func (c *Controller) SelectTab(tab urlstate.Tab) {
	if !tab.Valid() || tab == c.state.Tab {
		return
	}
	c.state.Tab = tab
	c.lastErr = ""
	switch tab {
	case urlstate.TabLookup:
		c.state.Search, c.state.Book, c.state.Chapter = "", "", 0
	case urlstate.TabSearch:
		c.state.Ref, c.state.Book, c.state.Chapter = "", "", 0
	case urlstate.TabBrowse:
		c.state.Ref, c.state.Search = "", ""
	}
	c.writeURL()
}

// SubmitLookup sets the lookup reference and starts its fetch.
func (c *Controller) SubmitLookup(reference string) (*FetchRequest, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, ErrEmptyReference
	}
	if len(c.state.Bibles) == 0 {
		return nil, ErrNoTranslations
	}

	c.state.Tab = urlstate.TabLookup
	c.state.Ref = reference
	c.state.Search, c.state.Book, c.state.Chapter = "", "", 0
	c.lastErr = ""
	c.writeURL()
	return c.startFetch(FetchLookup, reference, ""), nil
}

// SubmitSearch sets the search query and starts its fetch.
func (c *Controller) SubmitSearch(query string) (*FetchRequest, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptySearch
	}
	if len(c.state.Bibles) == 0 {
		return nil, ErrNoTranslations
	}

	c.state.Tab = urlstate.TabSearch
	c.state.Search = query
	c.state.Ref, c.state.Book, c.state.Chapter = "", "", 0
	c.lastErr = ""
	c.writeURL()
	return c.startFetch(FetchSearch, "", query), nil
}

// SelectBrowseTarget jumps to a (book, chapter) pair.
func (c *Controller) SelectBrowseTarget(bookName string, chapter int) (*FetchRequest, error) {
	book, ok := c.bookByName(bookName)
	if !ok {
		return nil, ErrUnknownBook
	}
	if len(c.state.Bibles) == 0 {
		return nil, ErrNoTranslations
	}
	if chapter < 1 {
		chapter = 1
	}
	if chapter > book.Chapters {
		chapter = book.Chapters
	}

	c.state.Tab = urlstate.TabBrowse
	c.state.Book = book.Name
	c.state.Chapter = chapter
	c.state.Ref, c.state.Search = "", ""
	c.lastErr = ""
	c.writeURL()
	return c.startFetch(FetchBrowse, c.browseReference(), ""), nil
}

// StepChapter moves the browse target by delta chapters, wrapping at book
// boundaries: past chapter 1 backward lands on the previous book's last
// chapter, past the final chapter forward lands on the next book's first.
// No-op at the canon edges.
func (c *Controller) StepChapter(delta int) *FetchRequest {
	idx, ok := c.currentBookIndex()
	if !ok {
		return nil
	}
	chapter := c.state.Chapter
	if chapter == 0 {
		chapter = 1
	}

	next := chapter + delta
	switch {
	case next < 1:
		if idx == 0 {
			return nil
		}
		prev := c.books[idx-1]
		c.state.Book = prev.Name
		c.state.Chapter = prev.Chapters
	case next > c.books[idx].Chapters:
		if idx == len(c.books)-1 {
			return nil
		}
		nxt := c.books[idx+1]
		c.state.Book = nxt.Name
		c.state.Chapter = 1
	default:
		c.state.Chapter = next
	}

	c.writeURL()
	return c.startFetch(FetchBrowse, c.browseReference(), "")
}

// StepBook moves the browse target by delta books: forward lands on the next
// book's first chapter, backward on the previous book's last chapter. No-op
// past either end of the canon.
func (c *Controller) StepBook(delta int) *FetchRequest {
	idx, ok := c.currentBookIndex()
	if !ok {
		return nil
	}
	target := idx + delta
	if target < 0 || target >= len(c.books) {
		return nil
	}

	book := c.books[target]
	c.state.Book = book.Name
	if delta < 0 {
		c.state.Chapter = book.Chapters
	} else {
		c.state.Chapter = 1
	}

	c.writeURL()
	return c.startFetch(FetchBrowse, c.browseReference(), "")
}

// ChangeTranslations replaces the active set. Applying an identical set is a
// no-op with no URL or store write. Otherwise the store is written through
// synchronously when consent is granted, and the current view refetches.
func (c *Controller) ChangeTranslations(ids []string) *FetchRequest {
	deduped := dedupe(ids)
	if equalStrings(deduped, c.state.Bibles) {
		return nil
	}

	c.state.Bibles = deduped
	if c.prefs.Consented() {
		if err := c.prefs.SaveTranslations(deduped); err != nil {
			c.log.Warn("preference write failed", "err", err)
		}
	}
	c.writeURL()

	if len(deduped) == 0 {
		return nil
	}
	switch {
	case c.state.Tab == urlstate.TabLookup && c.state.Ref != "":
		return c.startFetch(FetchLookup, c.state.Ref, "")
	case c.state.Tab == urlstate.TabSearch && c.state.Search != "":
		return c.startFetch(FetchSearch, "", c.state.Search)
	case c.state.Tab == urlstate.TabBrowse && c.state.Book != "" && c.state.Chapter > 0:
		return c.startFetch(FetchBrowse, c.browseReference(), "")
	}
	return nil
}

// FetchSettled reports whether a completed fetch is still current. Stale
// sequences are dropped so an older response can never overwrite a newer one.
// Settlement of the current fetch releases whichever guard phase was engaged.
func (c *Controller) FetchSettled(seq int) bool {
	if seq != c.seq {
		c.log.Debug("stale fetch dropped", "seq", seq, "current", c.seq)
		return false
	}
	c.phase = PhaseIdle
	return true
}

// SettleExpired releases the guard when a fetch never settles within
// SettleTimeout. The guard must never be left permanently engaged.
func (c *Controller) SettleExpired(seq int) {
	if seq == c.seq && c.phase != PhaseIdle {
		c.log.Debug("settle timeout", "seq", seq)
		c.phase = PhaseIdle
	}
}

func (c *Controller) startFetch(kind FetchKind, reference, search string) *FetchRequest {
	req := c.newFetch(kind, reference, search)
	if c.phase != PhaseLoadingFromURL {
		c.phase = PhaseAwaitingSettle
	}
	return req
}

func (c *Controller) newFetch(kind FetchKind, reference, search string) *FetchRequest {
	c.seq++
	return &FetchRequest{
		Seq:       c.seq,
		Kind:      kind,
		Reference: reference,
		Search:    search,
		Bibles:    append([]string(nil), c.state.Bibles...),
	}
}

// writeURL re-derives the whole query string from the full state and writes
// it once. Suppressed while state is being loaded from the query string, so
// the replay cannot loop back into another write.
func (c *Controller) writeURL() {
	if c.phase == PhaseLoadingFromURL {
		return
	}
	c.url.WriteQuery(urlstate.Encode(c.state))
}

func (c *Controller) browseReference() string {
	return fmt.Sprintf("%s %d", c.state.Book, c.state.Chapter)
}

func (c *Controller) filterKnown(ids []string) []string {
	var kept []string
	for _, id := range ids {
		if _, ok := c.known[id]; ok {
			kept = append(kept, id)
		}
	}
	return kept
}

func (c *Controller) bookByName(name string) (api.Book, bool) {
	for _, b := range c.books {
		if b.Name == name {
			return b, true
		}
	}
	return api.Book{}, false
}

func (c *Controller) currentBookIndex() (int, bool) {
	if c.state.Book == "" {
		return 0, false
	}
	for i, b := range c.books {
		if b.Name == c.state.Book {
			return i, true
		}
	}
	return 0, false
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	var out []string
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
