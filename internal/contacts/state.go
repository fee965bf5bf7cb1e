package contacts

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// Sentinel errors for caller-checkable conditions.
var (
	ErrNotFound     = errors.New("contacts: contact not found")
	ErrNotEditing   = errors.New("contacts: contact is not being edited")
	ErrUnknownField = errors.New("contacts: unknown field")
)

// Field names an editable contact field. Values match the JSON keys.
type Field string

const (
	FieldName  Field = "name"
	FieldPhone Field = "phone_number"
	FieldEmail Field = "email"
)

// Fields lists the editable fields in display order.
var Fields = []Field{FieldName, FieldPhone, FieldEmail}

// Label returns the human-readable field name.
func (f Field) Label() string {
	switch f {
	case FieldName:
		return "Name"
	case FieldPhone:
		return "Phone Number"
	case FieldEmail:
		return "Email"
	}
	return string(f)
}

// fieldRef returns the value that f addresses among the editable fields,
// or nil for an unknown field. Contact and Form both resolve fields here.
func fieldRef(f Field, name, phone, email *string) *string {
	switch f {
	case FieldName:
		return name
	case FieldPhone:
		return phone
	case FieldEmail:
		return email
	}
	return nil
}

// Get returns the value of field f on c.
func (c Contact) Get(f Field) string {
	if p := fieldRef(f, &c.Name, &c.PhoneNumber, &c.Email); p != nil {
		return *p
	}
	return ""
}

// set writes value into field f of c.
func (c *Contact) set(f Field, value string) error {
	p := fieldRef(f, &c.Name, &c.PhoneNumber, &c.Email)
	if p == nil {
		return fmt.Errorf("%w: %q", ErrUnknownField, f)
	}
	*p = value
	return nil
}

// Form is the new-contact draft.
type Form struct {
	Name        string `json:"name" validate:"required"`
	PhoneNumber string `json:"phone_number" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
}

// Set updates one field and leaves the others untouched.
func (f *Form) Set(field Field, value string) error {
	p := fieldRef(field, &f.Name, &f.PhoneNumber, &f.Email)
	if p == nil {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	*p = value
	return nil
}

// Get returns the value of one field.
func (f Form) Get(field Field) string {
	if p := fieldRef(field, &f.Name, &f.PhoneNumber, &f.Email); p != nil {
		return *p
	}
	return ""
}

// Reset clears every field.
func (f *Form) Reset() {
	*f = Form{}
}

// Validate checks that all fields are present and the email is well formed.
func (f Form) Validate() error {
	return validateStruct(f)
}

// Contact builds the record to create, stamping createdAt with now.
func (f Form) Contact(now time.Time) Contact {
	return Contact{
		Name:        f.Name,
		PhoneNumber: f.PhoneNumber,
		Email:       f.Email,
		CreatedAt:   Timestamp(now),
	}
}

// State is the application state shared by the views: the contact list as
// last fetched, the search term, the sort key, the new-contact form and the
// edit session. It is not safe for concurrent use; confine it to the UI
// update loop or a single command.
type State struct {
	Search string
	Sort   SortKey
	Form   Form

	contacts []Contact

	// editing holds a draft copy of the contact being edited. Edits never
	// touch contacts directly, so cancelling discards them.
	editing *Contact

	// Refresh sequence numbers. A response is applied only when it is newer
	// than the last one applied.
	requested uint64
	applied   uint64
}

// NewState returns an empty State with no sort applied.
func NewState() *State {
	return &State{}
}

// Contacts returns a copy of the list in store order.
func (s *State) Contacts() []Contact {
	return slices.Clone(s.contacts)
}

// Find returns the contact with the given id from the fetched list.
func (s *State) Find(id ID) (Contact, bool) {
	i := s.index(id)
	if i < 0 {
		return Contact{}, false
	}
	return s.contacts[i], true
}

func (s *State) index(id ID) int {
	return slices.IndexFunc(s.contacts, func(c Contact) bool { return c.ID.Equal(id) })
}

// BeginRefresh records that a list request is being issued and returns its
// sequence number.
func (s *State) BeginRefresh() uint64 {
	s.requested++
	return s.requested
}

// IsLatest reports whether seq is the most recently issued refresh.
func (s *State) IsLatest(seq uint64) bool {
	return seq == s.requested
}

// ApplyRefresh replaces the whole list with the response to request seq.
// Responses older than the last applied one are dropped and false is
// returned.
func (s *State) ApplyRefresh(seq uint64, list []Contact) bool {
	if seq <= s.applied {
		return false
	}
	s.applied = seq
	s.contacts = slices.Clone(list)
	return true
}

// Begin starts editing the contact with the given id. Any session already
// active is replaced without saving.
func (s *State) Begin(id ID) error {
	c, ok := s.Find(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.editing = &c
	return nil
}

// Editing returns the draft of the contact being edited.
func (s *State) Editing() (Contact, bool) {
	if s.editing == nil {
		return Contact{}, false
	}
	return *s.editing, true
}

// IsEditing reports whether id is the active edit session.
func (s *State) IsEditing(id ID) bool {
	return s.editing != nil && s.editing.ID.Equal(id)
}

// UpdateField writes one field of the draft for id.
func (s *State) UpdateField(id ID, field Field, value string) error {
	if !s.IsEditing(id) {
		return fmt.Errorf("%w: %s", ErrNotEditing, id)
	}
	return s.editing.set(field, value)
}

// Cancel ends the edit session and discards the draft.
func (s *State) Cancel() {
	s.editing = nil
}

// EndEdit ends the edit session if it belongs to id.
func (s *State) EndEdit(id ID) {
	if s.IsEditing(id) {
		s.editing = nil
	}
}

// View derives the displayed sequence from the list, search term and sort key.
func (s *State) View(sorter *Sorter) []Contact {
	return sorter.View(s.contacts, s.Search, s.Sort)
}
