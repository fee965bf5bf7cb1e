package contacts

import (
	"errors"
	"strings"
)

// Kind is the visual category of a prompt or notice.
type Kind string

const (
	KindSuccess  Kind = "success"
	KindError    Kind = "error"
	KindWarning  Kind = "warning"
	KindQuestion Kind = "question"
)

// Prompt is a yes/no question asked before a mutating action.
type Prompt struct {
	Title        string
	Text         string
	Kind         Kind
	ConfirmLabel string
	CancelLabel  string
}

// Notice is a one-way message shown after an action completes.
type Notice struct {
	Title string
	Text  string
	Kind  Kind
}

// Prompter asks the user to confirm actions and reports outcomes.
// Defined here (the consumer); the dashboard, the command line and tests
// each provide their own implementation.
type Prompter interface {
	// Ask blocks until the user answers and reports whether they confirmed.
	Ask(p Prompt) bool
	// Notify shows a message that needs no answer.
	Notify(n Notice)
}

// Prompts and notices used by the flows.
var (
	DeletePrompt = Prompt{
		Title:        "Confirm Deletion",
		Text:         "Are you sure you want to delete this contact?",
		Kind:         KindWarning,
		ConfirmLabel: "Delete",
		CancelLabel:  "Cancel",
	}
	SavePrompt = Prompt{
		Title:        "Confirm Save",
		Text:         "Are you sure you want to save the changes?",
		Kind:         KindQuestion,
		ConfirmLabel: "Save",
		CancelLabel:  "Cancel",
	}

	CreatedNotice = Notice{Title: "Success", Text: "Contact added successfully!", Kind: KindSuccess}
	SavedNotice   = Notice{Title: "Saved!", Text: "Contact has been updated.", Kind: KindSuccess}
	DeletedNotice = Notice{Title: "Deleted!", Text: "Contact has been deleted.", Kind: KindSuccess}

	CreateFailedNotice = Notice{Title: "Error", Text: "An error occurred while adding the contact.", Kind: KindError}
	SaveFailedNotice   = Notice{Title: "Error", Text: "An error occurred while saving the contact.", Kind: KindError}
	DeleteFailedNotice = Notice{Title: "Error", Text: "An error occurred while deleting the contact.", Kind: KindError}
)

// InvalidNotice reports a validation failure to the user.
func InvalidNotice(err error) Notice {
	text := err.Error()
	var verr *ValidationError
	if errors.As(err, &verr) {
		text = strings.Join(verr.Problems, "; ")
	}
	return Notice{Title: "Invalid contact", Text: text, Kind: KindError}
}
