package contacts

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortKey selects the ordering of the displayed contacts.
type SortKey string

const (
	SortNone  SortKey = ""      // Keep the order the store returned.
	SortName  SortKey = "name"  // Ascending by name, locale-aware.
	SortEmail SortKey = "email" // Ascending by email, locale-aware.
	SortTime  SortKey = "time"  // Most recently created first.
)

// sortCycle is the order the UI steps through sort keys.
var sortCycle = []SortKey{SortNone, SortName, SortEmail, SortTime}

// ParseSortKey converts a user-supplied name into a SortKey.
// Empty and "none" both select SortNone.
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return SortNone, nil
	case "name":
		return SortName, nil
	case "email":
		return SortEmail, nil
	case "time":
		return SortTime, nil
	}
	return SortNone, fmt.Errorf("contacts: unknown sort key %q (want none, name, email or time)", s)
}

// String returns the display name of the key.
func (k SortKey) String() string {
	if k == SortNone {
		return "none"
	}
	return string(k)
}

// Next returns the key after k in the UI cycle.
func (k SortKey) Next() SortKey {
	i := slices.Index(sortCycle, k)
	return sortCycle[(i+1)%len(sortCycle)]
}

// Filter keeps contacts whose name contains term, ignoring case.
// An empty term keeps every contact. The input is never modified.
func Filter(list []Contact, term string) []Contact {
	needle := strings.ToLower(term)
	out := make([]Contact, 0, len(list))
	for _, c := range list {
		if strings.Contains(strings.ToLower(c.Name), needle) {
			out = append(out, c)
		}
	}
	return out
}

// Sorter orders contacts by a SortKey using a locale-aware collator.
// A Sorter is not safe for concurrent use.
type Sorter struct {
	col *collate.Collator
}

// NewSorter returns a Sorter that compares strings under the rules of tag.
func NewSorter(tag language.Tag) *Sorter {
	return &Sorter{col: collate.New(tag)}
}

// Sort returns a sorted copy of list. The sort is stable, so equal keys keep
// their relative order and SortNone returns the input order.
func (s *Sorter) Sort(list []Contact, key SortKey) []Contact {
	out := slices.Clone(list)
	switch key {
	case SortName:
		slices.SortStableFunc(out, func(a, b Contact) int {
			return s.col.CompareString(a.Name, b.Name)
		})
	case SortEmail:
		slices.SortStableFunc(out, func(a, b Contact) int {
			return s.col.CompareString(a.Email, b.Email)
		})
	case SortTime:
		slices.SortStableFunc(out, compareCreatedDesc)
	}
	return out
}

// compareCreatedDesc orders by createdAt, newest first. Unparseable
// timestamps sort after every valid one.
func compareCreatedDesc(a, b Contact) int {
	ta, okA := ParseTimestamp(a.CreatedAt)
	tb, okB := ParseTimestamp(b.CreatedAt)
	switch {
	case !okA && !okB:
		return 0
	case !okA:
		return 1
	case !okB:
		return -1
	}
	return tb.Compare(ta)
}

// View derives the displayed sequence: filter by term, then sort by key.
func (s *Sorter) View(list []Contact, term string, key SortKey) []Contact {
	return s.Sort(Filter(list, term), key)
}
