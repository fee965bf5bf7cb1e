package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"

	"github.com/smileynet/contacts/internal/config"
	"github.com/smileynet/contacts/internal/contacts"
	"github.com/smileynet/contacts/internal/dashboard"
	"github.com/smileynet/contacts/internal/logging"
	"github.com/smileynet/contacts/internal/store"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Globals are flags shared by every command.
type Globals struct {
	Config  string `help:"Extra config file, applied after the user and project files." type:"path" placeholder:"FILE"`
	BaseURL string `help:"Contact store base URL (overrides config)." name:"base-url" placeholder:"URL"`
}

// CLI is the top-level command structure for contacts.
type CLI struct {
	Globals

	Version kong.VersionFlag `help:"Show version." short:"V"`
	UI      UICmd            `cmd:"" default:"1" help:"Open the interactive contact manager."`
	List    ListCmd          `cmd:"" help:"List contacts."`
	Add     AddCmd           `cmd:"" help:"Add a contact."`
	Edit    EditCmd          `cmd:"" help:"Edit a contact."`
	Delete  DeleteCmd        `cmd:"" help:"Delete a contact."`
	Show    ConfigCmd        `cmd:"" name:"config" help:"Print the effective configuration."`
}

// loadConfig loads layered config from user and project paths, then the
// --config file, then env overrides, then flag overrides.
func loadConfig(g *Globals) (*config.Config, error) {
	paths := []string{
		os.ExpandEnv("$HOME/.config/contacts/config.yaml"),
		".contacts.yaml",
	}
	if g.Config != "" {
		if _, err := os.Stat(g.Config); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		paths = append(paths, g.Config)
	}
	cfg, err := config.LoadLayered(paths...)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if g.BaseURL != "" {
		cfg.Store.BaseURL = g.BaseURL
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// app bundles what the scriptable subcommands share.
type app struct {
	cfg    *config.Config
	ctrl   *contacts.Controller
	sorter *contacts.Sorter
	log    *zap.SugaredLogger
}

func newApp(cfg *config.Config, prompter contacts.Prompter, log *zap.SugaredLogger) (*app, error) {
	client, err := store.New(cfg.Store.BaseURL,
		store.WithTimeout(cfg.Store.Timeout),
		store.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}
	state := contacts.NewState()
	state.Sort = cfg.SortKey()
	return &app{
		cfg:    cfg,
		ctrl:   contacts.NewController(state, client, prompter, contacts.WithLogger(log)),
		sorter: contacts.NewSorter(cfg.LocaleTag()),
		log:    log,
	}, nil
}

// setup loads config and builds an app that logs to stderr.
func setup(g *Globals, prompter contacts.Prompter) (*app, func(), error) {
	cfg, err := loadConfig(g)
	if err != nil {
		return nil, nil, err
	}
	log, sync, err := logging.NewConsole(cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}
	a, err := newApp(cfg, prompter, log)
	if err != nil {
		sync()
		return nil, nil, err
	}
	return a, sync, nil
}

// resolveID finds the contact whose id prints as arg in the fetched list,
// so the id is sent back in the form the store used.
func resolveID(state *contacts.State, arg string) (contacts.ID, error) {
	for _, c := range state.Contacts() {
		if c.ID.String() == arg {
			return c.ID, nil
		}
	}
	return contacts.ID{}, fmt.Errorf("%w: %s", contacts.ErrNotFound, arg)
}

// --- UI command ---

// UICmd opens the interactive contact manager.
type UICmd struct{}

// teaRunner abstracts Bubble Tea program execution for testing.
type teaRunner interface {
	Run() (tea.Model, error)
}

// Run builds real dependencies and launches the TUI.
func (u *UICmd) Run(g *Globals) error {
	isTTY := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	if !isTTY {
		return u.run(false, nil)
	}

	cfg, err := loadConfig(g)
	if err != nil {
		return fmt.Errorf("ui: %w", err)
	}

	logFile := cfg.Log.File
	if logFile == "" {
		logFile = logging.DefaultFile()
	}
	log, sync, err := logging.NewFile(logFile, cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("ui: %w", err)
	}
	defer sync()

	client, err := store.New(cfg.Store.BaseURL,
		store.WithTimeout(cfg.Store.Timeout),
		store.WithLogger(log),
	)
	if err != nil {
		return fmt.Errorf("ui: %w", err)
	}

	state := contacts.NewState()
	state.Sort = cfg.SortKey()
	m := dashboard.NewModel(state, client,
		dashboard.WithLogger(log),
		dashboard.WithSorter(contacts.NewSorter(cfg.LocaleTag())),
		dashboard.WithRequestTimeout(cfg.Store.Timeout),
	)
	log.Infow("starting ui", "base_url", client.BaseURL(), "version", version)

	prog := tea.NewProgram(m, tea.WithAltScreen())
	return u.run(true, prog)
}

// run executes the tea program, enabling testable wiring.
func (u *UICmd) run(isTTY bool, prog teaRunner) error {
	if !isTTY {
		return fmt.Errorf("ui: requires a terminal (TTY); use list, add, edit or delete for scripting")
	}
	_, err := prog.Run()
	return err
}

// --- List command ---

// ListCmd prints the contacts, filtered and sorted like the TUI.
type ListCmd struct {
	Search string `help:"Only contacts whose name contains this text (case-insensitive)." short:"s"`
	Sort   string `help:"Sort key: none, name, email or time. Defaults to ui.default_sort."`
	JSON   bool   `help:"Print JSON instead of a table." name:"json"`
}

// Run executes the list command.
func (l *ListCmd) Run(g *Globals) error {
	a, sync, err := setup(g, newLinePrompter(os.Stdin, os.Stdout, false))
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}
	defer sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return l.run(ctx, os.Stdout, a)
}

func (l *ListCmd) run(ctx context.Context, w io.Writer, a *app) error {
	state := a.ctrl.State()
	if l.Sort != "" {
		key, err := contacts.ParseSortKey(l.Sort)
		if err != nil {
			return fmt.Errorf("list: %w", err)
		}
		state.Sort = key
	}
	state.Search = l.Search

	if err := a.ctrl.Refresh(ctx); err != nil {
		return fmt.Errorf("list: %w", err)
	}
	shown := state.View(a.sorter)

	if l.JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if shown == nil {
			shown = []contacts.Contact{}
		}
		return enc.Encode(shown)
	}
	return writeTable(w, shown)
}

// writeTable prints contacts as aligned columns.
func writeTable(w io.Writer, list []contacts.Contact) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPHONE\tEMAIL\tCREATED\tUPDATED")
	for _, c := range list {
		updated := "-"
		if c.LastUpdated != "" {
			updated = contacts.FormatDateTime(c.LastUpdated)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			c.ID, c.Name, c.PhoneNumber, c.Email,
			contacts.FormatDateTime(c.CreatedAt), updated)
	}
	return tw.Flush()
}

// --- Add command ---

// AddCmd creates a contact.
type AddCmd struct {
	Name  string `help:"Full name." required:""`
	Phone string `help:"Phone number." required:""`
	Email string `help:"Email address." required:""`
}

// Run executes the add command.
func (c *AddCmd) Run(g *Globals) error {
	a, sync, err := setup(g, newLinePrompter(os.Stdin, os.Stdout, false))
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}
	defer sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return c.run(ctx, a)
}

func (c *AddCmd) run(ctx context.Context, a *app) error {
	a.ctrl.State().Form = contacts.Form{Name: c.Name, PhoneNumber: c.Phone, Email: c.Email}
	if err := a.ctrl.Submit(ctx); err != nil {
		return fmt.Errorf("add: %w", err)
	}
	return nil
}

// --- Edit command ---

// EditCmd changes fields of an existing contact after confirmation.
type EditCmd struct {
	ID    string `arg:"" help:"Contact id."`
	Name  string `help:"New name."`
	Phone string `help:"New phone number."`
	Email string `help:"New email address."`
	Yes   bool   `help:"Save without asking." short:"y"`
}

// ErrNothingToChange is returned when edit is given no field flags.
var ErrNothingToChange = errors.New("edit: nothing to change (use --name, --phone or --email)")

// Run executes the edit command.
func (e *EditCmd) Run(g *Globals) error {
	a, sync, err := setup(g, newLinePrompter(os.Stdin, os.Stdout, e.Yes))
	if err != nil {
		return fmt.Errorf("edit: %w", err)
	}
	defer sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return e.run(ctx, a)
}

func (e *EditCmd) changes() map[contacts.Field]string {
	changes := make(map[contacts.Field]string)
	if e.Name != "" {
		changes[contacts.FieldName] = e.Name
	}
	if e.Phone != "" {
		changes[contacts.FieldPhone] = e.Phone
	}
	if e.Email != "" {
		changes[contacts.FieldEmail] = e.Email
	}
	return changes
}

func (e *EditCmd) run(ctx context.Context, a *app) error {
	changes := e.changes()
	if len(changes) == 0 {
		return ErrNothingToChange
	}
	if err := a.ctrl.Refresh(ctx); err != nil {
		return fmt.Errorf("edit: %w", err)
	}

	state := a.ctrl.State()
	id, err := resolveID(state, e.ID)
	if err != nil {
		return fmt.Errorf("edit: %w", err)
	}
	if err := state.Begin(id); err != nil {
		return fmt.Errorf("edit: %w", err)
	}
	for _, f := range contacts.Fields {
		if v, ok := changes[f]; ok {
			if err := state.UpdateField(id, f, v); err != nil {
				return fmt.Errorf("edit: %w", err)
			}
		}
	}

	saved, err := a.ctrl.Save(ctx)
	if err != nil {
		return fmt.Errorf("edit: %w", err)
	}
	if !saved {
		state.Cancel()
		a.log.Debugw("save declined", "id", id.String())
	}
	return nil
}

// --- Delete command ---

// DeleteCmd removes a contact after confirmation.
type DeleteCmd struct {
	ID  string `arg:"" help:"Contact id."`
	Yes bool   `help:"Delete without asking." short:"y"`
}

// Run executes the delete command.
func (d *DeleteCmd) Run(g *Globals) error {
	a, sync, err := setup(g, newLinePrompter(os.Stdin, os.Stdout, d.Yes))
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	defer sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return d.run(ctx, a)
}

func (d *DeleteCmd) run(ctx context.Context, a *app) error {
	if err := a.ctrl.Refresh(ctx); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	id, err := resolveID(a.ctrl.State(), d.ID)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	if _, err := a.ctrl.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	return nil
}

// --- Config command ---

// ConfigCmd prints the merged configuration, or a commented example file.
type ConfigCmd struct {
	Example bool `help:"Print a commented example config file instead."`
}

// Run executes the config command.
func (c *ConfigCmd) Run(g *Globals) error {
	return c.run(os.Stdout, g)
}

func (c *ConfigCmd) run(w io.Writer, g *Globals) error {
	if c.Example {
		_, err := w.Write(config.Example)
		return err
	}
	cfg, err := loadConfig(g)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	out, err := cfg.Marshal()
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

// Exit codes.
const (
	exitSuccess = 0
	exitRequest = 1
	exitSetup   = 2
)

// exitCode maps an error to the appropriate exit code. Failed, interrupted
// or undecodable store requests exit 1, as does an id the store does not
// hold; everything else is a setup or usage problem.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var se *store.StatusError
	if errors.As(err, &se) {
		return exitRequest
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		return exitRequest
	}
	switch {
	case errors.Is(err, store.ErrDecode),
		errors.Is(err, store.ErrUnaddressable),
		errors.Is(err, contacts.ErrNotFound),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return exitRequest
	}
	return exitSetup
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("contacts"),
		kong.Description("Manage contacts in a REST contact store."),
		kong.UsageOnError(),
		kong.Vars{"version": version + " " + commit + " " + date},
	)
	err := ctx.Run(&cli.Globals)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(exitCode(err))
	}
}
