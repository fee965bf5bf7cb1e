package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/smileynet/contacts/internal/contacts"
)

// fieldInputWidth is the visible width of each field input.
const fieldInputWidth = 40

// fieldInputs is a group of text inputs, one per editable contact field,
// with a single focused input.
type fieldInputs struct {
	inputs []textinput.Model
	focus  int
}

func newFieldInputs() fieldInputs {
	inputs := make([]textinput.Model, len(contacts.Fields))
	for i, f := range contacts.Fields {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = f.Label()
		ti.CharLimit = 256
		ti.Width = fieldInputWidth
		inputs[i] = ti
	}
	return fieldInputs{inputs: inputs}
}

// field returns the field under focus.
func (f fieldInputs) field() contacts.Field {
	return contacts.Fields[f.focus]
}

// value returns the current text of the given field.
func (f fieldInputs) value(field contacts.Field) string {
	for i, fld := range contacts.Fields {
		if fld == field {
			return f.inputs[i].Value()
		}
	}
	return ""
}

// load fills every input from get.
func (f fieldInputs) load(get func(contacts.Field) string) fieldInputs {
	for i, fld := range contacts.Fields {
		f.inputs[i].SetValue(get(fld))
		f.inputs[i].CursorEnd()
	}
	return f
}

// focusAt moves focus to input i, wrapping around at either end.
func (f fieldInputs) focusAt(i int) (fieldInputs, tea.Cmd) {
	n := len(f.inputs)
	f.focus = ((i % n) + n) % n
	var cmd tea.Cmd
	for j := range f.inputs {
		if j == f.focus {
			cmd = f.inputs[j].Focus()
		} else {
			f.inputs[j].Blur()
		}
	}
	return f, cmd
}

func (f fieldInputs) next() (fieldInputs, tea.Cmd) { return f.focusAt(f.focus + 1) }
func (f fieldInputs) prev() (fieldInputs, tea.Cmd) { return f.focusAt(f.focus - 1) }

// blur removes focus from every input.
func (f fieldInputs) blur() fieldInputs {
	for j := range f.inputs {
		f.inputs[j].Blur()
	}
	return f
}

// update forwards msg to the focused input.
func (f fieldInputs) update(msg tea.Msg) (fieldInputs, tea.Cmd) {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

// View renders one labelled line per field, each prefixed by indent.
func (f fieldInputs) View(indent string) string {
	width := 0
	for _, fld := range contacts.Fields {
		width = max(width, len(fld.Label()))
	}
	lines := make([]string, len(f.inputs))
	for i, fld := range contacts.Fields {
		label := labelStyle.Render(fmt.Sprintf("%-*s", width+1, fld.Label()+":"))
		lines[i] = indent + label + " " + f.inputs[i].View()
	}
	return strings.Join(lines, "\n")
}
