package dashboard

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/smileynet/contacts/internal/contacts"
)

// DefaultRequestTimeout bounds each store request issued by the dashboard.
const DefaultRequestTimeout = 10 * time.Second

// Fixed lines around the list: title, search bar, blank, status,
// notice and help bar.
const chromeHeight = 6

// formHeight is the number of lines the new-contact form adds when open:
// a heading, one line per field and a trailing blank.
var formHeight = len(contacts.Fields) + 2

// Model is the root Bubble Tea model for the contact manager.
// It routes keys by mode, issues store requests as commands, and applies
// their results to the shared contacts.State.
type Model struct {
	state     *contacts.State
	store     contacts.Store
	sorter    *contacts.Sorter
	log       *zap.SugaredLogger
	now       func() time.Time
	timeout   time.Duration
	noticeTTL time.Duration

	mode   Mode
	cursor int
	width  int
	height int

	search textinput.Model
	form   fieldInputs
	edit   fieldInputs

	confirm      *confirmState
	notice       *contacts.Notice
	noticeSerial int

	loading bool  // A list request is in flight.
	busy    bool  // A create, save or delete is in flight.
	loadErr error // Last list failure, cleared by the next success.

	spinner  spinner.Model
	viewport viewport.Model
	help     help.Model
}

// Option configures a Model.
type Option func(*Model)

// WithLogger sets the logger. The dashboard owns the terminal, so the
// logger should write to a file.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(m *Model) { m.log = log }
}

// WithSorter sets the collator used for name and email ordering.
func WithSorter(s *contacts.Sorter) Option {
	return func(m *Model) { m.sorter = s }
}

// WithClock sets the time source used for createdAt and lastUpdated.
func WithClock(now func() time.Time) Option {
	return func(m *Model) { m.now = now }
}

// WithRequestTimeout bounds each store request.
func WithRequestTimeout(d time.Duration) Option {
	return func(m *Model) { m.timeout = d }
}

// WithNoticeTTL sets how long a notice stays on screen.
func WithNoticeTTL(d time.Duration) Option {
	return func(m *Model) { m.noticeTTL = d }
}

// NewModel creates a dashboard Model in browse mode. The first list request
// is issued by Init.
func NewModel(state *contacts.State, store contacts.Store, opts ...Option) Model {
	search := textinput.New()
	search.Prompt = "Search: "
	search.Placeholder = "Search by name"
	search.Width = fieldInputWidth
	search.SetValue(state.Search)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		state:     state,
		store:     store,
		log:       zap.NewNop().Sugar(),
		now:       time.Now,
		timeout:   DefaultRequestTimeout,
		noticeTTL: DefaultNoticeTTL,
		mode:      ModeBrowse,
		search:    search,
		form:      newFieldInputs(),
		edit:      newFieldInputs(),
		loading:   true,
		spinner:   sp,
		viewport:  viewport.New(0, 0),
		help:      help.New(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	if m.sorter == nil {
		m.sorter = contacts.NewSorter(language.English)
	}
	m.form = m.form.load(state.Form.Get)
	return m
}

// Init issues the first list request and starts the spinner.
func (m Model) Init() tea.Cmd {
	seq := m.state.BeginRefresh()
	return tea.Batch(refreshCmd(m.store, seq, m.timeout), m.spinner.Tick)
}

// Update handles incoming messages and keeps the list viewport in sync.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m, cmd := m.update(msg)
	m.syncViewport()
	return m, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if !m.loading && !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case ContactsMsg:
		return m.applyContacts(msg), nil

	case CreatedMsg:
		return m.applyCreated(msg)

	case SavedMsg:
		return m.applySaved(msg)

	case DeletedMsg:
		return m.applyDeleted(msg)

	case RefreshMsg:
		return m.startRefresh()

	case noticeExpiredMsg:
		if msg.serial == m.noticeSerial {
			m.notice = nil
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Anything else (cursor blink and the like) goes to the focused input.
	return m.updateInputs(msg)
}

// handleKey routes a key press: an open dialog first, then the active mode.
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.confirm != nil {
		return m.handleConfirmKey(msg)
	}
	m.notice = nil

	switch m.mode {
	case ModeSearch:
		return m.handleSearchKey(msg)
	case ModeForm:
		return m.handleFormKey(msg)
	case ModeEdit:
		return m.handleEditKey(msg)
	default:
		return m.handleBrowseKey(msg)
	}
}

// handleFormKey handles key presses in the new-contact form. Leaving the
// form keeps the draft for next time.
func (m Model) handleFormKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg.String() {
	case "esc":
		m.form = m.form.blur()
		m.mode = ModeBrowse
		return m, nil
	case "tab", "down":
		m.form, cmd = m.form.next()
		return m, cmd
	case "shift+tab", "up":
		m.form, cmd = m.form.prev()
		return m, cmd
	case "enter":
		if m.busy {
			return m, nil
		}
		if err := m.state.Form.Validate(); err != nil {
			return m, m.showNotice(contacts.InvalidNotice(err))
		}
		m.busy = true
		c := m.state.Form.Contact(m.now())
		return m, tea.Batch(createCmd(m.store, c, m.timeout), m.spinner.Tick)
	}

	m.form, cmd = m.form.update(msg)
	field := m.form.field()
	if err := m.state.Form.Set(field, m.form.value(field)); err != nil {
		m.log.Warnw("form update failed", "field", string(field), "error", err)
	}
	return m, cmd
}

// handleEditKey handles key presses in the inline editor. Every keystroke
// lands in the draft; nothing is sent until the save is confirmed.
func (m Model) handleEditKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	draft, ok := m.state.Editing()
	if !ok {
		m.mode = ModeBrowse
		return m, nil
	}

	var cmd tea.Cmd
	switch msg.String() {
	case "esc":
		m.state.Cancel()
		m.edit = m.edit.blur()
		m.mode = ModeBrowse
		return m, nil
	case "tab", "down":
		m.edit, cmd = m.edit.next()
		return m, cmd
	case "shift+tab", "up":
		m.edit, cmd = m.edit.prev()
		return m, cmd
	case "enter":
		if m.busy {
			return m, nil
		}
		if err := contacts.Validate(draft); err != nil {
			return m, m.showNotice(contacts.InvalidNotice(err))
		}
		m.confirm = &confirmState{
			prompt: contacts.SavePrompt,
			action: saveCmd(m.store, draft, m.now, m.timeout),
		}
		return m, nil
	}

	m.edit, cmd = m.edit.update(msg)
	field := m.edit.field()
	if err := m.state.UpdateField(draft.ID, field, m.edit.value(field)); err != nil {
		m.log.Warnw("edit update failed", "id", draft.ID.String(), "field", string(field), "error", err)
	}
	return m, cmd
}

// updateInputs forwards non-key messages to whichever input has focus.
func (m Model) updateInputs(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.mode {
	case ModeSearch:
		m.search, cmd = m.search.Update(msg)
	case ModeForm:
		m.form, cmd = m.form.update(msg)
	case ModeEdit:
		m.edit, cmd = m.edit.update(msg)
	}
	return m, cmd
}

// startRefresh issues a list request tagged with a fresh sequence number.
func (m Model) startRefresh() (Model, tea.Cmd) {
	m.loading = true
	seq := m.state.BeginRefresh()
	return m, tea.Batch(refreshCmd(m.store, seq, m.timeout), m.spinner.Tick)
}

// applyContacts replaces the list with a response unless a newer one has
// already been applied. A failed request keeps the previous list. Only the
// latest request ends loading or sets the status error.
func (m Model) applyContacts(msg ContactsMsg) Model {
	latest := m.state.IsLatest(msg.Seq)
	if msg.Err != nil {
		m.log.Errorw("list contacts failed", "seq", msg.Seq, "error", msg.Err)
		if !latest {
			m.log.Debugw("dropped stale list failure", "seq", msg.Seq)
			return m
		}
		m.loading = false
		m.loadErr = msg.Err
		return m
	}
	if !m.state.ApplyRefresh(msg.Seq, msg.Contacts) {
		m.log.Debugw("dropped stale list response", "seq", msg.Seq)
		return m
	}
	m.clampCursor()
	if latest {
		m.loading = false
		m.loadErr = nil
	}
	return m
}

func (m Model) applyCreated(msg CreatedMsg) (Model, tea.Cmd) {
	m.busy = false
	if msg.Err != nil {
		m.log.Errorw("create contact failed", "name", msg.Contact.Name, "error", msg.Err)
		return m, m.showNotice(contacts.CreateFailedNotice)
	}
	m.log.Infow("contact created", "name", msg.Contact.Name)
	m.state.Form.Reset()
	m.form = m.form.load(m.state.Form.Get).blur()
	if m.mode == ModeForm {
		m.mode = ModeBrowse
	}
	m, refresh := m.startRefresh()
	return m, tea.Batch(refresh, m.showNotice(contacts.CreatedNotice))
}

func (m Model) applySaved(msg SavedMsg) (Model, tea.Cmd) {
	m.busy = false
	if msg.Err != nil {
		m.log.Errorw("save contact failed", "id", msg.Contact.ID.String(), "error", msg.Err)
		return m, m.showNotice(contacts.SaveFailedNotice)
	}
	m.log.Infow("contact saved", "id", msg.Contact.ID.String())
	m.state.EndEdit(msg.Contact.ID)
	if _, editing := m.state.Editing(); !editing && m.mode == ModeEdit {
		m.edit = m.edit.blur()
		m.mode = ModeBrowse
	}
	m, refresh := m.startRefresh()
	return m, tea.Batch(refresh, m.showNotice(contacts.SavedNotice))
}

func (m Model) applyDeleted(msg DeletedMsg) (Model, tea.Cmd) {
	m.busy = false
	if msg.Err != nil {
		m.log.Errorw("delete contact failed", "id", msg.ID.String(), "error", msg.Err)
		return m, m.showNotice(contacts.DeleteFailedNotice)
	}
	m.log.Infow("contact deleted", "id", msg.ID.String())
	m.state.EndEdit(msg.ID)
	if _, editing := m.state.Editing(); !editing && m.mode == ModeEdit {
		m.edit = m.edit.blur()
		m.mode = ModeBrowse
	}
	m, refresh := m.startRefresh()
	return m, tea.Batch(refresh, m.showNotice(contacts.DeletedNotice))
}

// showNotice displays n and schedules its removal. A later notice replaces
// an earlier one, and the earlier expiry then does nothing.
func (m *Model) showNotice(n contacts.Notice) tea.Cmd {
	m.noticeSerial++
	m.notice = &n
	return expireNoticeCmd(m.noticeSerial, m.noticeTTL)
}

// listHeight returns the lines left for the contact list.
func (m Model) listHeight() int {
	h := m.height - chromeHeight
	if m.mode == ModeForm {
		h -= formHeight
	}
	if m.help.ShowAll {
		h -= 2
	}
	if h < 1 {
		return 1
	}
	return h
}

// syncViewport refreshes the list content and scrolls the selected row
// into view.
func (m *Model) syncViewport() {
	m.viewport.Width = m.width
	m.viewport.Height = m.listHeight()
	content, top, bottom := m.renderList()
	m.viewport.SetContent(content)
	switch {
	case top < m.viewport.YOffset:
		m.viewport.SetYOffset(top)
	case bottom >= m.viewport.YOffset+m.viewport.Height:
		m.viewport.SetYOffset(bottom - m.viewport.Height + 1)
	}
}

// View renders the title, search bar, optional form, list, status line,
// notice and help bar. An open dialog is drawn over everything.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}
	if m.confirm != nil {
		return m.confirm.View(m.width, m.height)
	}

	sections := []string{
		titleStyle.Render("Contact Manager"),
		m.search.View() + "   " + dimStyle.Render("Sort: "+sortLabel(m.state.Sort)),
		"",
	}
	if m.mode == ModeForm {
		sections = append(sections,
			titleStyle.Render("New Contact"),
			m.form.View("  "),
			"",
		)
	}
	sections = append(sections,
		m.viewport.View(),
		m.viewStatus(),
		m.viewNotice(),
		m.help.View(HelpBindings(m.mode, m.confirm)),
	)
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// viewStatus renders the loading, error or count line.
func (m Model) viewStatus() string {
	switch {
	case m.busy:
		return m.spinner.View() + " Working..."
	case m.loading:
		return m.spinner.View() + " Loading contacts..."
	case m.loadErr != nil:
		return KindStyle(contacts.KindError).Render("Could not load contacts: " + m.loadErr.Error())
	}
	total := len(m.state.Contacts())
	shown := len(m.visible())
	if shown == total {
		return dimStyle.Render(fmt.Sprintf("%d %s", total, plural(total, "contact", "contacts")))
	}
	return dimStyle.Render(fmt.Sprintf("%d of %d contacts", shown, total))
}

// viewNotice renders the current notice, or an empty line.
func (m Model) viewNotice() string {
	if m.notice == nil {
		return ""
	}
	n := *m.notice
	head := KindStyle(n.Kind).Bold(true).Render(KindIcon(n.Kind) + " " + n.Title)
	return head + " " + n.Text
}

func sortLabel(k contacts.SortKey) string {
	switch k {
	case contacts.SortName:
		return "Name"
	case contacts.SortEmail:
		return "Email"
	case contacts.SortTime:
		return "Time (newest first)"
	}
	return "None"
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
