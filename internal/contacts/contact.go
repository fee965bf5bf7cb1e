// Package contacts holds the contact record, the application state of the
// contact manager (list, search, sort, edit session, new-contact form), and
// the prompt-driven flows that write through to the remote store.
package contacts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// ID is the opaque identifier the store assigns to a contact.
// Stores may send it as a JSON string or a JSON number; the literal form is
// kept so the record can be sent back unchanged.
type ID struct {
	value   string
	numeric bool
}

// StringID returns an ID that encodes as a JSON string.
func StringID(s string) ID {
	return ID{value: s}
}

// NumericID returns an ID that encodes as a JSON number.
func NumericID(n int64) ID {
	return ID{value: strconv.FormatInt(n, 10), numeric: true}
}

// String returns the identifier as used in item URLs.
func (id ID) String() string { return id.value }

// IsZero reports whether the store has not assigned an identifier yet.
func (id ID) IsZero() bool { return id.value == "" }

// Equal compares identifiers by value, ignoring how they were encoded.
// Identifiers typed on a command line carry no encoding information.
func (id ID) Equal(other ID) bool { return id.value == other.value }

// MarshalJSON encodes the identifier in the form it was received.
func (id ID) MarshalJSON() ([]byte, error) {
	if id.numeric {
		return []byte(id.value), nil
	}
	return json.Marshal(id.value)
}

// UnmarshalJSON accepts a JSON string, a JSON number, or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*id = ID{}
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("contacts: id: %w", err)
		}
		*id = ID{value: s}
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("contacts: id must be a string or number, got %s", data)
	}
	*id = ID{value: n.String(), numeric: true}
	return nil
}

// Contact is the single record type held by the store.
type Contact struct {
	ID          ID     `json:"id,omitzero"`
	Name        string `json:"name" validate:"required"`
	PhoneNumber string `json:"phone_number" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	CreatedAt   string `json:"createdAt"`
	LastUpdated string `json:"lastUpdated,omitempty"`

	// Extra holds keys the store sent that no field above covers. They are
	// written back unchanged, since an update replaces the whole record.
	Extra map[string]json.RawMessage `json:"-" validate:"-"`
}

// contactFields has Contact's layout without its JSON methods.
type contactFields Contact

var knownKeys = []string{"id", "name", "phone_number", "email", "createdAt", "lastUpdated"}

// MarshalJSON encodes the known fields and merges Extra back in.
func (c Contact) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(contactFields(c))
	if err != nil || len(c.Extra) == 0 {
		return known, err
	}
	merged := make(map[string]json.RawMessage, len(c.Extra)+len(knownKeys))
	for k, v := range c.Extra {
		merged[k] = v
	}
	if err := json.Unmarshal(known, &merged); err != nil {
		return nil, fmt.Errorf("contacts: merging extra fields: %w", err)
	}
	return json.Marshal(merged)
}

// UnmarshalJSON decodes the known fields and keeps every other key in Extra.
func (c *Contact) UnmarshalJSON(data []byte) error {
	var f contactFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for k := range all {
		if slices.ContainsFunc(knownKeys, func(known string) bool { return strings.EqualFold(k, known) }) {
			delete(all, k)
		}
	}
	f.Extra = nil
	if len(all) > 0 {
		f.Extra = all
	}
	*c = Contact(f)
	return nil
}

// timestampLayout matches the ISO-8601 form browsers produce: UTC with
// millisecond precision and a Z suffix.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// displayLayout renders timestamps as "January 2, 2006 at 3:04:05 PM".
const displayLayout = "January 2, 2006 at 3:04:05 PM"

// Timestamp formats t the way createdAt and lastUpdated are stored.
func Timestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// ParseTimestamp parses a stored timestamp. Any RFC 3339 value is accepted.
func ParseTimestamp(s string) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FormatDateTime renders a stored timestamp in local time for display.
// Values that do not parse are returned unchanged.
func FormatDateTime(s string) string {
	t, ok := ParseTimestamp(s)
	if !ok {
		return s
	}
	return t.Local().Format(displayLayout)
}

// Touch returns a copy of c with lastUpdated set to now.
func Touch(c Contact, now time.Time) Contact {
	c.LastUpdated = Timestamp(now)
	return c
}
