package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/smileynet/contacts/internal/contacts"
)

// linePrompter implements contacts.Prompter on a line-oriented terminal.
// With assumeYes every prompt is accepted. Without a terminal on stdin
// every prompt is declined, so scripts never block on a question.
type linePrompter struct {
	in          *bufio.Reader
	out         io.Writer
	assumeYes   bool
	interactive bool
}

func newLinePrompter(in *os.File, out io.Writer, assumeYes bool) *linePrompter {
	interactive := isatty.IsTerminal(in.Fd()) || isatty.IsCygwinTerminal(in.Fd())
	return &linePrompter{
		in:          bufio.NewReader(in),
		out:         out,
		assumeYes:   assumeYes,
		interactive: interactive,
	}
}

// Ask prints the prompt and reads a yes/no answer. Anything but y, yes or
// the confirm label declines.
func (p *linePrompter) Ask(pr contacts.Prompt) bool {
	if p.assumeYes {
		return true
	}
	if !p.interactive {
		fmt.Fprintf(p.out, "%s: %s (not a terminal; pass --yes to %s)\n",
			pr.Title, pr.Text, strings.ToLower(pr.ConfirmLabel))
		return false
	}

	fmt.Fprintf(p.out, "%s: %s [y/N] ", pr.Title, pr.Text)
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(p.out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes", strings.ToLower(pr.ConfirmLabel):
		return true
	}
	return false
}

// Notify prints the notice on one line.
func (p *linePrompter) Notify(n contacts.Notice) {
	fmt.Fprintf(p.out, "%s: %s\n", n.Title, n.Text)
}
