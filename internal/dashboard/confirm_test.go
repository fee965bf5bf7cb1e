package dashboard

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/smileynet/contacts/internal/contacts"
)

func TestConfirmState_ViewDelete(t *testing.T) {
	// Given: the delete dialog
	cs := confirmState{prompt: contacts.DeletePrompt}

	// When: it is rendered
	view := cs.View(80, 24)

	// Then: title, text and both labels are shown
	for _, want := range []string{"Confirm Deletion", "Are you sure you want to delete this contact?", "[y] Delete", "[n] Cancel"} {
		if !containsPlainText(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestConfirmState_ViewSave(t *testing.T) {
	view := confirmState{prompt: contacts.SavePrompt}.View(0, 0)
	for _, want := range []string{"Confirm Save", "Are you sure you want to save the changes?", "[y] Save"} {
		if !containsPlainText(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestConfirm_OtherKeysIgnored(t *testing.T) {
	// Given: an open dialog
	m := newLoadedModel(t, newFakeStore(seedContacts()...))
	m = send(t, m, runeKey('d'))

	// When: an unrelated key is pressed
	m, cmd := sendCmd(t, m, runeKey('x'))

	// Then: the dialog stays open and nothing runs
	if m.confirm == nil {
		t.Error("dialog should stay open")
	}
	if cmd != nil {
		t.Error("no command expected")
	}
}

func TestConfirm_QDoesNotQuit(t *testing.T) {
	m := newLoadedModel(t, newFakeStore(seedContacts()...))
	m = send(t, m, runeKey('d'))

	_, cmd := sendCmd(t, m, runeKey('q'))

	if cmd != nil {
		if _, ok := cmd().(tea.QuitMsg); ok {
			t.Error("q must not quit while a dialog is open")
		}
	}
}
