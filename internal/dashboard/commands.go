package dashboard

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/smileynet/contacts/internal/contacts"
)

// refreshCmd returns a tea.Cmd that lists the collection and wraps the
// result in a ContactsMsg tagged with seq.
func refreshCmd(store contacts.Store, seq uint64, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		list, err := store.List(ctx)
		return ContactsMsg{Seq: seq, Contacts: list, Err: err}
	}
}

// createCmd returns a tea.Cmd that posts c and wraps the result in a CreatedMsg.
func createCmd(store contacts.Store, c contacts.Contact, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return CreatedMsg{Contact: c, Err: store.Create(ctx, c)}
	}
}

// saveCmd returns a tea.Cmd that stamps lastUpdated when it runs, puts the
// record, and wraps the result in a SavedMsg.
func saveCmd(store contacts.Store, draft contacts.Contact, now func() time.Time, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		updated := contacts.Touch(draft, now())
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return SavedMsg{Contact: updated, Err: store.Update(ctx, updated)}
	}
}

// deleteCmd returns a tea.Cmd that deletes id and wraps the result in a DeletedMsg.
func deleteCmd(store contacts.Store, id contacts.ID, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return DeletedMsg{ID: id, Err: store.Delete(ctx, id)}
	}
}

// DefaultNoticeTTL is how long a notice stays on screen without a key press.
const DefaultNoticeTTL = 4 * time.Second

func expireNoticeCmd(serial int, ttl time.Duration) tea.Cmd {
	return tea.Tick(ttl, func(time.Time) tea.Msg {
		return noticeExpiredMsg{serial: serial}
	})
}
