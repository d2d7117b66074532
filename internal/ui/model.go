package ui

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"biblescope/internal/api"
	"biblescope/internal/locale"
	"biblescope/internal/nav"
	"biblescope/internal/passage"
	"biblescope/internal/prefs"
	"biblescope/internal/refparse"
	"biblescope/internal/urlstate"
)

type uiMode int

const (
	modeView uiMode = iota
	modePicker
)

// queryBar implements nav.URLSink: the shareable query string the browser
// address bar would carry, rendered in the footer instead.
type queryBar struct {
	query string
}

func (q *queryBar) WriteQuery(s string) { q.query = s }

type catalogMsg struct {
	catalog []api.Translation
	err     error
}

type booksMsg struct {
	books []api.Book
	err   error
}

type passageMsg struct {
	seq    int
	bibles []string
	terms  []string
	result api.QueryResult
}

type settleTimeoutMsg struct{ seq int }

type pickTarget int

const (
	pickTranslations pickTarget = iota
	pickBooks
)

type translationItem struct {
	t        api.Translation
	selected bool
}

func (i translationItem) FilterValue() string { return i.t.DisplayName() + " " + i.t.Lang }
func (i translationItem) Title() string {
	marker := "[ ] "
	if i.selected {
		marker = "[x] "
	}
	return marker + i.t.DisplayName()
}
func (i translationItem) Description() string { return i.t.Lang }

type bookItem struct {
	b api.Book
}

func (i bookItem) FilterValue() string { return i.b.Name }
func (i bookItem) Title() string       { return i.b.Name }
func (i bookItem) Description() string {
	testament := "New Testament"
	if i.b.OldTestament() {
		testament = "Old Testament"
	}
	return fmt.Sprintf("%s, %d chapters", testament, i.b.Chapters)
}

type Model struct {
	ctrl   *nav.Controller
	client *api.Client
	store  *prefs.Store
	bar    *queryBar
	log    *slog.Logger

	viewport  viewport.Model
	textInput textinput.Model
	spin      spinner.Model
	picker    list.Model
	picking   pickTarget
	selection map[string]bool

	theme   Theme
	mode    uiMode
	width   int
	height  int
	ready   bool
	loading bool

	content   string
	inlineErr string
	terms     []string
}

func NewModel(client *api.Client, store *prefs.Store, initialQuery, themeName, lang string, log *slog.Logger) Model {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if lang == "" {
		lang = locale.Detect()
	}
	bar := &queryBar{}
	ctrl := nav.New(bar, store, lang, log)
	ctrl.LoadQuery(initialQuery)

	th := GetTheme(themeName)

	ti := textinput.New()
	ti.Placeholder = `Reference, e.g. "John 3:16" or "1 John 1:1-3"`
	ti.CharLimit = 100
	ti.Width = 50
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(th.Accent)

	picker := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	picker.Title = "Translations (space to toggle, enter to apply)"
	picker.SetShowStatusBar(false)

	m := Model{
		ctrl:      ctrl,
		client:    client,
		store:     store,
		bar:       bar,
		log:       log,
		textInput: ti,
		spin:      sp,
		picker:    picker,
		selection: map[string]bool{},
		theme:     th,
	}
	m.syncInputFromState()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadCatalog(), textinput.Blink, m.spin.Tick)
}

func (m Model) loadCatalog() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		catalog, err := client.FetchCatalog()
		return catalogMsg{catalog: catalog, err: err}
	}
}

func (m Model) loadBooks() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		books, err := client.FetchBooks()
		return booksMsg{books: books, err: err}
	}
}

// runFetch dispatches a passage fetch and arms the settle timeout that keeps
// the synchronizer's guard from sticking if the fetch never returns.
func (m *Model) runFetch(req *nav.FetchRequest) tea.Cmd {
	if req == nil {
		return nil
	}
	m.loading = true
	client := m.client

	opts := api.QueryOptions{Bibles: req.Bibles}
	var terms []string
	switch req.Kind {
	case nav.FetchSearch:
		opts.Search = req.Search
		opts.Highlight = true
		opts.Page = 1
		opts.PageLimit = 50
		terms = passage.Terms(req.Search)
	default:
		opts.Reference = req.Reference
	}

	fetch := func() tea.Msg {
		return passageMsg{
			seq:    req.Seq,
			bibles: req.Bibles,
			terms:  terms,
			result: client.FetchPassage(opts),
		}
	}
	timeout := tea.Tick(nav.SettleTimeout, func(time.Time) tea.Msg {
		return settleTimeoutMsg{seq: req.Seq}
	})
	return tea.Batch(fetch, timeout, m.spin.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if model, cmd, handled := m.handleKey(msg); handled {
			return model, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-7)
			m.viewport.YPosition = 5
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 7
		}
		m.picker.SetSize(msg.Width-4, msg.Height-6)
		m.viewport.SetContent(m.content)

	case catalogMsg:
		if msg.err != nil {
			m.ctrl.CatalogFailed(msg.err)
			break
		}
		req := m.ctrl.CatalogLoaded(msg.catalog)
		m.rebuildPicker()
		if req != nil {
			cmds = append(cmds, m.runFetch(req))
		}
		if m.ctrl.NeedsBooks() {
			cmds = append(cmds, m.loadBooks())
		}

	case booksMsg:
		if msg.err != nil {
			m.ctrl.BooksFailed(msg.err)
			break
		}
		if req := m.ctrl.BooksLoaded(msg.books); req != nil {
			cmds = append(cmds, m.runFetch(req))
		}

	case passageMsg:
		if !m.ctrl.FetchSettled(msg.seq) {
			// A newer request is in flight; this response is stale.
			break
		}
		m.loading = false
		if !msg.result.Success {
			m.content = ""
			m.inlineErr = msg.result.Err.Message
			m.viewport.SetContent(m.errorView(msg.result.Err))
			break
		}
		m.inlineErr = ""
		if md := msg.result.Metadata; md.ErrorLevel > 0 && len(md.Errors) > 0 {
			// Partial failures arrive alongside usable results.
			m.inlineErr = md.Errors[0]
		}
		m.terms = msg.terms
		groups := passage.Normalize(msg.result.Results, msg.bibles)
		m.content = formatPassages(msg.bibles, groups, m.displayNames(msg.bibles), msg.terms, m.theme, m.contentWidth())
		if strings.TrimSpace(m.content) == "" {
			m.content = lipgloss.NewStyle().Foreground(m.theme.Muted).Render("No results.")
		}
		m.viewport.SetContent(m.content)
		m.viewport.GotoTop()

	case settleTimeoutMsg:
		m.ctrl.SettleExpired(msg.seq)

	case spinner.TickMsg:
		if m.loading {
			m.spin, cmd = m.spin.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	switch m.mode {
	case modePicker:
		m.picker, cmd = m.picker.Update(msg)
		cmds = append(cmds, cmd)
	default:
		_, isKey := msg.(tea.KeyMsg)
		if m.inputActive() {
			m.textInput, cmd = m.textInput.Update(msg)
			cmds = append(cmds, cmd)
		}
		// Keystrokes go to the focused input, not the scrollback; the
		// viewport still sees everything else, mouse wheel included.
		if !isKey || !m.inputActive() {
			m.viewport, cmd = m.viewport.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	key := msg.String()

	if key == "ctrl+c" {
		return m, tea.Quit, true
	}

	if m.mode == modePicker {
		switch key {
		case "esc":
			m.mode = modeView
			return m, nil, true
		case " ":
			if item, ok := m.picker.SelectedItem().(translationItem); ok {
				m.selection[item.t.Module] = !m.selection[item.t.Module]
				m.rebuildPickerKeepCursor()
			}
			return m, nil, true
		case "enter":
			m.mode = modeView
			if m.picking == pickBooks {
				item, ok := m.picker.SelectedItem().(bookItem)
				if !ok {
					return m, nil, true
				}
				req, err := m.ctrl.SelectBrowseTarget(item.b.Name, 1)
				if err != nil {
					m.inlineErr = err.Error()
					return m, nil, true
				}
				cmd := m.runFetch(req)
				return m, cmd, true
			}
			cmd := m.runFetch(m.ctrl.ChangeTranslations(m.selectedModules()))
			return m, cmd, true
		}
		return m, nil, false
	}

	switch key {
	case "tab":
		m.cycleTab(1)
		cmd := m.afterTabSwitch()
		return m, cmd, true
	case "shift+tab":
		m.cycleTab(-1)
		cmd := m.afterTabSwitch()
		return m, cmd, true
	case "ctrl+t":
		m.openPicker()
		return m, nil, true
	case "ctrl+y":
		m.toggleConsent()
		return m, nil, true
	case "ctrl+r":
		m.inlineErr = ""
		return m, tea.Batch(m.loadCatalog(), m.loadBooks()), true
	case "enter":
		return m.submit()
	case "esc":
		return m, tea.Quit, true
	}

	if m.ctrl.State().Tab == urlstate.TabBrowse {
		switch key {
		case "q":
			return m, tea.Quit, true
		case "n":
			cmd := m.runFetch(m.ctrl.StepChapter(1))
			return m, cmd, true
		case "p":
			cmd := m.runFetch(m.ctrl.StepChapter(-1))
			return m, cmd, true
		case "N":
			cmd := m.runFetch(m.ctrl.StepBook(1))
			return m, cmd, true
		case "P":
			cmd := m.runFetch(m.ctrl.StepBook(-1))
			return m, cmd, true
		case "t":
			m.openPicker()
			return m, nil, true
		case "b":
			cmd := m.openBookPicker()
			return m, cmd, true
		}
	}

	return m, nil, false
}

func (m *Model) submit() (tea.Model, tea.Cmd, bool) {
	state := m.ctrl.State()
	var req *nav.FetchRequest
	var err error

	switch state.Tab {
	case urlstate.TabLookup:
		input := m.textInput.Value()
		if refparse.LooksLikeReference(input) {
			// Canonicalize what we can; the API resolves the rest.
			input = refparse.Parse(input).String()
		}
		req, err = m.ctrl.SubmitLookup(input)
	case urlstate.TabSearch:
		req, err = m.ctrl.SubmitSearch(m.textInput.Value())
	default:
		return *m, nil, false
	}

	if err != nil {
		m.inlineErr = err.Error()
		return *m, nil, true
	}
	m.inlineErr = ""
	return *m, m.runFetch(req), true
}

func (m *Model) cycleTab(dir int) {
	order := []urlstate.Tab{urlstate.TabLookup, urlstate.TabSearch, urlstate.TabBrowse}
	current := 0
	for i, t := range order {
		if t == m.ctrl.State().Tab {
			current = i
		}
	}
	next := order[(current+dir+len(order))%len(order)]
	m.ctrl.SelectTab(next)
	m.content = ""
	m.inlineErr = ""
	m.viewport.SetContent("")
	m.syncInputFromState()
}

func (m *Model) afterTabSwitch() tea.Cmd {
	if m.ctrl.NeedsBooks() {
		return m.loadBooks()
	}
	if m.ctrl.State().Tab == urlstate.TabBrowse {
		if req := m.ctrl.BooksLoaded(m.ctrl.Books()); req != nil {
			return m.runFetch(req)
		}
	}
	return nil
}

func (m *Model) syncInputFromState() {
	state := m.ctrl.State()
	switch state.Tab {
	case urlstate.TabLookup:
		m.textInput.Placeholder = `Reference, e.g. "John 3:16" or "1 John 1:1-3"`
		m.textInput.SetValue(state.Ref)
		m.textInput.Focus()
	case urlstate.TabSearch:
		m.textInput.Placeholder = "Search text, e.g. living water"
		m.textInput.SetValue(state.Search)
		m.textInput.Focus()
	default:
		m.textInput.Blur()
	}
}

func (m Model) inputActive() bool {
	tab := m.ctrl.State().Tab
	return tab == urlstate.TabLookup || tab == urlstate.TabSearch
}

func (m *Model) openPicker() {
	for _, id := range m.ctrl.State().Bibles {
		m.selection[id] = true
	}
	m.picking = pickTranslations
	m.picker.Title = "Translations (space to toggle, enter to apply)"
	m.rebuildPicker()
	m.mode = modePicker
}

func (m *Model) openBookPicker() tea.Cmd {
	books := m.ctrl.Books()
	if len(books) == 0 {
		return m.loadBooks()
	}
	items := make([]list.Item, 0, len(books))
	for _, b := range books {
		items = append(items, bookItem{b: b})
	}
	m.picking = pickBooks
	m.picker.Title = "Books (enter to open chapter 1)"
	m.picker.SetItems(items)
	m.picker.Select(0)
	m.mode = modePicker
	return nil
}

func (m *Model) rebuildPicker() {
	catalog := m.ctrl.Catalog()
	items := make([]list.Item, 0, len(catalog))
	for _, t := range catalog {
		items = append(items, translationItem{t: t, selected: m.selection[t.Module]})
	}
	m.picker.SetItems(items)
}

func (m *Model) rebuildPickerKeepCursor() {
	idx := m.picker.Index()
	m.rebuildPicker()
	m.picker.Select(idx)
}

// selectedModules returns the picked set in catalog order, matching how the
// selector widget reported multi-select values.
func (m Model) selectedModules() []string {
	var ids []string
	for _, t := range m.ctrl.Catalog() {
		if m.selection[t.Module] {
			ids = append(ids, t.Module)
		}
	}
	return ids
}

func (m *Model) toggleConsent() {
	if m.store == nil {
		return
	}
	if m.store.Consented() {
		if err := m.store.SetConsent(false); err != nil {
			m.inlineErr = err.Error()
		}
		return
	}
	if err := m.store.SetConsent(true); err != nil {
		m.inlineErr = err.Error()
		return
	}
	// Write the active set through now that persistence is allowed.
	if err := m.store.SaveTranslations(m.ctrl.State().Bibles); err != nil {
		m.inlineErr = err.Error()
	}
}

func (m Model) displayNames(ids []string) map[string]string {
	names := make(map[string]string, len(ids))
	for _, id := range ids {
		if t, ok := m.ctrl.Translation(id); ok {
			names[id] = t.DisplayName()
		} else {
			names[id] = api.FormatModule(id)
		}
	}
	return names
}

func (m Model) contentWidth() int {
	if m.width > 0 {
		return m.width
	}
	return 80
}

func (m Model) errorView(apiErr *api.Error) string {
	style := lipgloss.NewStyle().Foreground(m.theme.Error).Bold(true)
	hint := lipgloss.NewStyle().Foreground(m.theme.Muted)
	view := style.Render("Error: "+apiErr.Message) + "\n"
	for _, d := range apiErr.Details {
		if d != apiErr.Message {
			view += hint.Render("  "+d) + "\n"
		}
	}
	view += "\n" + hint.Render("ctrl+r to retry")
	return view
}

func (m Model) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}

	if m.mode == modePicker {
		return lipgloss.NewStyle().Margin(1, 2).Render(m.picker.View())
	}

	return fmt.Sprintf("%s\n%s\n%s", m.headerView(), m.viewport.View(), m.footerView())
}

func (m Model) headerView() string {
	state := m.ctrl.State()

	activeTab := lipgloss.NewStyle().
		Bold(true).
		Foreground(m.theme.Accent).
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(m.theme.BorderActive).
		Padding(0, 1)
	inactiveTab := lipgloss.NewStyle().
		Foreground(m.theme.Muted).
		Padding(0, 1)

	tabs := make([]string, 0, 3)
	for _, t := range []urlstate.Tab{urlstate.TabLookup, urlstate.TabSearch, urlstate.TabBrowse} {
		label := strings.ToUpper(string(t[0])) + string(t[1:])
		if t == state.Tab {
			tabs = append(tabs, activeTab.Render(label))
		} else {
			tabs = append(tabs, inactiveTab.Render(label))
		}
	}
	row := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	var second string
	switch state.Tab {
	case urlstate.TabBrowse:
		target := "select a book"
		if state.Book != "" {
			target = fmt.Sprintf("%s %d", state.Book, state.Chapter)
		}
		second = lipgloss.NewStyle().Bold(true).Foreground(m.theme.Primary).Render(target) +
			lipgloss.NewStyle().Foreground(m.theme.Muted).Render("   n/p chapter  N/P book  b book list")
	default:
		second = m.textInput.View()
	}

	sep := lipgloss.NewStyle().Foreground(m.theme.Border).Render(strings.Repeat("─", max(m.width, 1)))
	return row + "\n" + second + "\n" + sep
}

func (m Model) footerView() string {
	help := lipgloss.NewStyle().Foreground(m.theme.Muted)
	errStyle := lipgloss.NewStyle().Foreground(m.theme.Error).Bold(true)

	var status string
	switch {
	case m.loading:
		status = m.spin.View() + " Loading..."
	case m.inlineErr != "":
		status = errStyle.Render(m.inlineErr)
	case m.ctrl.Err() != "":
		status = errStyle.Render(m.ctrl.Err()) + help.Render("  ctrl+r to retry")
	default:
		status = help.Render("tab: switch view | ctrl+t: translations | ctrl+y: consent | ctrl+c: quit")
	}

	consent := "off"
	if m.store != nil && m.store.Consented() {
		consent = "on"
	}
	share := m.bar.query
	if share == "" {
		share = urlstate.Encode(m.ctrl.State())
	}
	meta := help.Render(fmt.Sprintf("?%s   [persistence: %s]", share, consent))

	return status + "\n" + meta
}
