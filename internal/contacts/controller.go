package contacts

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Store is the remote contact collection.
type Store interface {
	List(ctx context.Context) ([]Contact, error)
	Create(ctx context.Context, c Contact) error
	Update(ctx context.Context, c Contact) error
	Delete(ctx context.Context, id ID) error
}

// Controller runs the create, save and delete flows against a Store,
// asking a Prompter before each mutating request. Every successful write is
// followed by a full refresh of the State.
//
// Controller calls block; it serves the command-line subcommands. The
// dashboard drives the same State asynchronously through tea.Cmds.
type Controller struct {
	state    *State
	store    Store
	prompter Prompter
	log      *zap.SugaredLogger
	now      func() time.Time
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger used for request failures.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(c *Controller) {
		c.log = log
	}
}

// WithClock sets the time source used for createdAt and lastUpdated.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// NewController creates a Controller over state, store and prompter.
func NewController(state *State, store Store, prompter Prompter, opts ...Option) *Controller {
	c := &Controller{
		state:    state,
		store:    store,
		prompter: prompter,
		log:      zap.NewNop().Sugar(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the state the controller writes to.
func (c *Controller) State() *State {
	return c.state
}

// Refresh replaces the contact list with the store's collection. On failure
// the previous list is kept.
func (c *Controller) Refresh(ctx context.Context) error {
	seq := c.state.BeginRefresh()
	list, err := c.store.List(ctx)
	if err != nil {
		c.log.Errorw("listing contacts", "error", err)
		return fmt.Errorf("contacts: refresh: %w", err)
	}
	c.state.ApplyRefresh(seq, list)
	return nil
}

// refreshAfterWrite refreshes after a successful write. A failed refresh
// does not undo the write, so it is only logged.
func (c *Controller) refreshAfterWrite(ctx context.Context) {
	_ = c.Refresh(ctx)
}

// Submit creates a contact from the form. On success the form is cleared.
// On failure the form keeps its values.
func (c *Controller) Submit(ctx context.Context) error {
	if err := c.state.Form.Validate(); err != nil {
		c.prompter.Notify(InvalidNotice(err))
		return err
	}

	contact := c.state.Form.Contact(c.now())
	if err := c.store.Create(ctx, contact); err != nil {
		c.log.Errorw("creating contact", "name", contact.Name, "error", err)
		c.prompter.Notify(CreateFailedNotice)
		return fmt.Errorf("contacts: create: %w", err)
	}

	c.state.Form.Reset()
	c.refreshAfterWrite(ctx)
	c.prompter.Notify(CreatedNotice)
	return nil
}

// Save asks for confirmation and writes the edit draft to the store.
// It reports whether the user confirmed. A declined or failed save keeps the
// edit session active.
func (c *Controller) Save(ctx context.Context) (bool, error) {
	draft, ok := c.state.Editing()
	if !ok {
		return false, ErrNotEditing
	}
	if err := Validate(draft); err != nil {
		c.prompter.Notify(InvalidNotice(err))
		return false, err
	}
	if !c.prompter.Ask(SavePrompt) {
		return false, nil
	}

	updated := Touch(draft, c.now())
	if err := c.store.Update(ctx, updated); err != nil {
		c.log.Errorw("updating contact", "id", updated.ID.String(), "error", err)
		c.prompter.Notify(SaveFailedNotice)
		return true, fmt.Errorf("contacts: update %s: %w", updated.ID, err)
	}

	c.state.EndEdit(updated.ID)
	c.refreshAfterWrite(ctx)
	c.prompter.Notify(SavedNotice)
	return true, nil
}

// Delete asks for confirmation and removes the contact from the store.
// It reports whether the user confirmed.
func (c *Controller) Delete(ctx context.Context, id ID) (bool, error) {
	if !c.prompter.Ask(DeletePrompt) {
		return false, nil
	}

	if err := c.store.Delete(ctx, id); err != nil {
		c.log.Errorw("deleting contact", "id", id.String(), "error", err)
		c.prompter.Notify(DeleteFailedNotice)
		return true, fmt.Errorf("contacts: delete %s: %w", id, err)
	}

	c.state.EndEdit(id)
	c.refreshAfterWrite(ctx)
	c.prompter.Notify(DeletedNotice)
	return true, nil
}
