package dashboard

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
)

// HelpBindings returns the help.KeyMap for the given mode,
// providing context-aware help bar content. An open dialog takes priority.
func HelpBindings(mode Mode, dialog *confirmState) help.KeyMap {
	if dialog != nil {
		return ConfirmKeyMap(
			strings.ToLower(dialog.prompt.ConfirmLabel),
			strings.ToLower(dialog.prompt.CancelLabel),
		)
	}
	switch mode {
	case ModeSearch:
		return SearchKeyMap()
	case ModeForm:
		return FormKeyMap()
	case ModeEdit:
		return EditKeyMap()
	default:
		return BrowseKeyMap()
	}
}
