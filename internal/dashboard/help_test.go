package dashboard

import (
	"testing"

	"github.com/smileynet/contacts/internal/contacts"
)

func TestHelpBindings_BrowseMode(t *testing.T) {
	// Given: help bindings for browse mode
	allKeys := collectKeys(HelpBindings(ModeBrowse, nil).ShortHelp())

	// Then: search and quit keys are present
	if !containsKey(allKeys, "/") {
		t.Error("browse help should contain '/' key")
	}
	if !containsKey(allKeys, "q") {
		t.Error("browse help should contain 'q' key")
	}
}

func TestHelpBindings_SearchMode(t *testing.T) {
	allKeys := collectKeys(HelpBindings(ModeSearch, nil).ShortHelp())

	// Then: q is absent because it types into the search box
	if containsKey(allKeys, "q") {
		t.Error("search help should not contain 'q' key")
	}
	if !containsKey(allKeys, "esc") {
		t.Error("search help should contain 'esc' key")
	}
}

func TestHelpBindings_FormAndEditDiffer(t *testing.T) {
	form := HelpBindings(ModeForm, nil).ShortHelp()
	edit := HelpBindings(ModeEdit, nil).ShortHelp()
	if len(form) != len(edit) {
		t.Fatalf("form has %d bindings, edit has %d", len(form), len(edit))
	}
	if form[2].Help().Desc == edit[2].Help().Desc {
		t.Errorf("submit desc should differ, both %q", form[2].Help().Desc)
	}
}

func TestHelpBindings_DialogTakesPriority(t *testing.T) {
	// Given: an open delete dialog over browse mode
	dialog := &confirmState{prompt: contacts.DeletePrompt}

	// When: help bindings are requested
	bindings := HelpBindings(ModeBrowse, dialog).ShortHelp()

	// Then: only the dialog keys are shown, with its labels
	if len(bindings) != 2 {
		t.Fatalf("bindings = %d, want 2", len(bindings))
	}
	if got := bindings[0].Help().Desc; got != "delete" {
		t.Errorf("confirm desc = %q, want %q", got, "delete")
	}
}
