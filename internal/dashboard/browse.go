package dashboard

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/smileynet/contacts/internal/contacts"
)

// CursorMarker is the prefix shown on the selected contact row.
const CursorMarker = "▸ "

// rowIndent indents the detail lines under a contact name.
const rowIndent = "    "

// visible returns the contacts currently on screen, in display order.
func (m Model) visible() []contacts.Contact {
	return m.state.View(m.sorter)
}

// selected returns the contact under the cursor.
func (m Model) selected() (contacts.Contact, bool) {
	list := m.visible()
	if m.cursor < 0 || m.cursor >= len(list) {
		return contacts.Contact{}, false
	}
	return list[m.cursor], true
}

// clampCursor keeps the cursor within the visible list.
func (m *Model) clampCursor() {
	n := len(m.visible())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// handleBrowseKey handles key presses while moving through the list.
func (m Model) handleBrowseKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.visible())-1 {
			m.cursor++
		}
	case "/":
		m.mode = ModeSearch
		return m, m.search.Focus()
	case "esc":
		if m.state.Search != "" {
			m.search.SetValue("")
			m.state.Search = ""
			m.cursor = 0
		}
	case "n":
		m.mode = ModeForm
		var cmd tea.Cmd
		m.form, cmd = m.form.focusAt(0)
		return m, cmd
	case "e", "enter":
		c, ok := m.selected()
		if !ok {
			return m, nil
		}
		if err := m.state.Begin(c.ID); err != nil {
			m.log.Warnw("begin edit failed", "id", c.ID.String(), "error", err)
			return m, nil
		}
		draft, _ := m.state.Editing()
		m.edit = m.edit.load(draft.Get)
		m.mode = ModeEdit
		var cmd tea.Cmd
		m.edit, cmd = m.edit.focusAt(0)
		return m, cmd
	case "d", "delete":
		c, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.confirm = &confirmState{
			prompt: contacts.DeletePrompt,
			action: deleteCmd(m.store, c.ID, m.timeout),
		}
	case "s":
		m.state.Sort = m.state.Sort.Next()
		m.cursor = 0
	case "r":
		return m.startRefresh()
	case "?":
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

// handleSearchKey handles key presses while the search box has focus.
// The list is filtered as the user types.
func (m Model) handleSearchKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.search.Blur()
		m.mode = ModeBrowse
		return m, nil
	case "esc":
		m.search.SetValue("")
		m.search.Blur()
		m.state.Search = ""
		m.cursor = 0
		m.mode = ModeBrowse
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if v := m.search.Value(); v != m.state.Search {
		m.state.Search = v
		m.cursor = 0
	}
	return m, cmd
}

// renderList renders every visible contact and reports the first and last
// line of the selected row so the viewport can keep it in view.
func (m Model) renderList() (content string, top, bottom int) {
	list := m.visible()
	if len(list) == 0 {
		switch {
		case m.state.Search != "":
			return dimStyle.Render(fmt.Sprintf("No contacts match %q.", m.state.Search)), 0, 0
		case m.loading:
			return "", 0, 0
		default:
			return dimStyle.Render("No contacts yet. Press n to add one."), 0, 0
		}
	}

	var lines []string
	for i, c := range list {
		if i > 0 {
			lines = append(lines, "")
		}
		start := len(lines)
		lines = append(lines, m.renderRow(c, i == m.cursor)...)
		if i == m.cursor {
			top, bottom = start, len(lines)-1
		}
	}
	return strings.Join(lines, "\n"), top, bottom
}

// renderRow renders one contact. The contact under edit shows its draft in
// text inputs instead of plain values.
func (m Model) renderRow(c contacts.Contact, selected bool) []string {
	marker := "  "
	if selected {
		marker = CursorMarker
	}

	var lines []string
	if m.state.IsEditing(c.ID) {
		lines = append(lines, selectedStyle.Render(marker+"Editing "+c.Name))
		lines = append(lines, strings.Split(m.edit.View(rowIndent), "\n")...)
	} else {
		name := nameStyle.Render(c.Name)
		if selected {
			name = selectedStyle.Render(c.Name)
		}
		lines = append(lines, marker+name)
		lines = append(lines, rowIndent+
			field(contacts.FieldPhone.Label(), c.PhoneNumber)+"   "+
			field(contacts.FieldEmail.Label(), c.Email))
	}

	lines = append(lines, rowIndent+field("Time", contacts.FormatDateTime(c.CreatedAt)))
	if c.LastUpdated != "" {
		lines = append(lines, rowIndent+field("Last Updated", contacts.FormatDateTime(c.LastUpdated)))
	}
	return lines
}

func field(label, value string) string {
	return labelStyle.Render(label+":") + " " + value
}
