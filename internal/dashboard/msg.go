// Package dashboard implements the interactive contact manager TUI: a
// searchable, sortable list with an inline editor, a new-contact form, and
// modal confirmation before saves and deletes.
package dashboard

import (
	"github.com/smileynet/contacts/internal/contacts"
)

// Mode represents which part of the screen receives key presses.
type Mode int

const (
	ModeBrowse Mode = iota // Moving through the contact list.
	ModeSearch             // Typing into the search box.
	ModeForm               // Filling in the new-contact form.
	ModeEdit               // Editing the selected contact in place.
)

// --- tea.Msg types ---

// ContactsMsg carries the result of a list request.
type ContactsMsg struct {
	Seq      uint64
	Contacts []contacts.Contact
	Err      error
}

// CreatedMsg carries the result of a create request.
type CreatedMsg struct {
	Contact contacts.Contact
	Err     error
}

// SavedMsg carries the result of an update request.
type SavedMsg struct {
	Contact contacts.Contact
	Err     error
}

// DeletedMsg carries the result of a delete request.
type DeletedMsg struct {
	ID  contacts.ID
	Err error
}

// RefreshMsg asks the model to reload the contact list.
type RefreshMsg struct{}

// noticeExpiredMsg hides the notice with the given serial, unless a newer
// notice has replaced it.
type noticeExpiredMsg struct {
	serial int
}
