package dashboard

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/smileynet/contacts/internal/contacts"
)

var fixedNow = time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

// fakeStore is an in-memory contacts.Store that records every write.
type fakeStore struct {
	mu       sync.Mutex
	contacts []contacts.Contact
	nextID   int64

	listErr   error
	createErr error
	updateErr error
	deleteErr error

	created []contacts.Contact
	updated []contacts.Contact
	deleted []contacts.ID
}

func newFakeStore(seed ...contacts.Contact) *fakeStore {
	return &fakeStore{contacts: slices.Clone(seed), nextID: int64(len(seed)) + 1}
}

func (s *fakeStore) List(context.Context) ([]contacts.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	return slices.Clone(s.contacts), nil
}

func (s *fakeStore) Create(_ context.Context, c contacts.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = append(s.created, c)
	if s.createErr != nil {
		return s.createErr
	}
	c.ID = contacts.NumericID(s.nextID)
	s.nextID++
	s.contacts = append(s.contacts, c)
	return nil
}

func (s *fakeStore) Update(_ context.Context, c contacts.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updated = append(s.updated, c)
	if s.updateErr != nil {
		return s.updateErr
	}
	for i := range s.contacts {
		if s.contacts[i].ID.Equal(c.ID) {
			s.contacts[i] = c
			return nil
		}
	}
	return fmt.Errorf("no contact %s", c.ID)
}

func (s *fakeStore) Delete(_ context.Context, id contacts.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, id)
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.contacts = slices.DeleteFunc(s.contacts, func(c contacts.Contact) bool { return c.ID.Equal(id) })
	return nil
}

func seedContacts() []contacts.Contact {
	return []contacts.Contact{
		{ID: contacts.NumericID(1), Name: "Ann", PhoneNumber: "555-0101", Email: "ann@example.com", CreatedAt: "2024-01-01T09:00:00.000Z"},
		{ID: contacts.NumericID(2), Name: "bob", PhoneNumber: "555-0102", Email: "bob@example.com", CreatedAt: "2024-03-01T09:00:00.000Z"},
		{ID: contacts.NumericID(3), Name: "Cy", PhoneNumber: "555-0103", Email: "cy@example.com", CreatedAt: "2024-02-01T09:00:00.000Z"},
	}
}

// newLoadedModel returns a sized model whose first list request has been
// answered from store.
func newLoadedModel(t *testing.T, store *fakeStore) Model {
	t.Helper()
	m := NewModel(contacts.NewState(), store,
		WithClock(func() time.Time { return fixedNow }),
		WithNoticeTTL(time.Millisecond),
	)
	m = send(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	for _, msg := range execBatch(t, m.Init()) {
		m = send(t, m, msg)
	}
	if m.loading {
		t.Fatal("model still loading after initial refresh")
	}
	return m
}

// send delivers msg and discards the returned command.
func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	updated, _ := m.Update(msg)
	return updated.(Model)
}

// sendCmd delivers msg and returns the resulting command.
func sendCmd(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

// typeText sends one rune key press per character.
func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		m = send(t, m, runeKey(r))
	}
	return m
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// deliver runs cmd and feeds every resulting message back into the model,
// one level deep. Follow-up commands are returned for the caller to inspect.
func deliver(t *testing.T, m Model, cmd tea.Cmd) (Model, []tea.Cmd) {
	t.Helper()
	var follow []tea.Cmd
	for _, msg := range execBatch(t, cmd) {
		var next tea.Cmd
		m, next = sendCmd(t, m, msg)
		if next != nil {
			follow = append(follow, next)
		}
	}
	return m, follow
}

// stripANSI removes ANSI escape sequences from a string.
func stripANSI(s string) string {
	var out []byte
	i := 0
	for i < len(s) {
		if s[i] == '\x1b' && i+1 < len(s) && s[i+1] == '[' {
			j := i + 2
			for j < len(s) && (s[j] < 'A' || s[j] > 'Z') && (s[j] < 'a' || s[j] > 'z') {
				j++
			}
			if j < len(s) {
				j++
			}
			i = j
		} else {
			out = append(out, s[i])
			i++
		}
	}
	return string(out)
}

// containsPlainText checks if s contains sub after stripping ANSI escapes.
func containsPlainText(s, sub string) bool {
	return strings.Contains(stripANSI(s), sub)
}

// execBatch executes a tea.Cmd, flattening batch commands, and returns all
// resulting messages. Spinner ticks are skipped to avoid infinite recursion.
func execBatch(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var msgs []tea.Msg
		for _, c := range batch {
			msgs = append(msgs, execBatch(t, c)...)
		}
		return msgs
	}
	if _, isTick := msg.(spinner.TickMsg); isTick {
		return nil
	}
	return []tea.Msg{msg}
}

// findMsg returns the first message of type T.
func findMsg[T tea.Msg](msgs []tea.Msg) (T, bool) {
	for _, msg := range msgs {
		if v, ok := msg.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func names(list []contacts.Contact) []string {
	out := make([]string, len(list))
	for i, c := range list {
		out[i] = c.Name
	}
	return out
}
