package dashboard

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/smileynet/contacts/internal/contacts"
)

// confirmState holds an open confirmation dialog and the command to run
// when the user accepts it.
type confirmState struct {
	prompt contacts.Prompt
	action tea.Cmd
}

// View renders the dialog centered within the given dimensions.
func (cs confirmState) View(width, height int) string {
	var b strings.Builder

	title := KindStyle(cs.prompt.Kind).Bold(true).
		Render(KindIcon(cs.prompt.Kind) + " " + cs.prompt.Title)
	b.WriteString(title)
	fmt.Fprintf(&b, "\n\n%s", cs.prompt.Text)
	fmt.Fprintf(&b, "\n\n[y] %s   [n] %s", cs.prompt.ConfirmLabel, cs.prompt.CancelLabel)

	box := DialogBorder(cs.prompt.Kind).Render(b.String())
	if width <= 0 || height <= 0 {
		return box
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

// handleConfirmKey resolves the open dialog. Accepting runs the pending
// action; declining drops it and leaves everything as it was.
func (m Model) handleConfirmKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		action := m.confirm.action
		m.confirm = nil
		m.busy = true
		return m, tea.Batch(action, m.spinner.Tick)
	case "n", "N", "esc":
		m.log.Debugw("confirmation declined", "title", m.confirm.prompt.Title)
		m.confirm = nil
		return m, nil
	}
	return m, nil
}
