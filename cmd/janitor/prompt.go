package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/sydlexius/janitor/internal/settings"
)

// terminal asks questions on an interactive terminal. When the input is
// not a terminal every question is answered with no.
type terminal struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
	store       holdingFolderSetter
}

type holdingFolderSetter interface {
	Set(ctx context.Context, key, value string) error
}

func newTerminal(store holdingFolderSetter) *terminal {
	return &terminal{
		in:          bufio.NewReader(os.Stdin),
		out:         os.Stderr,
		interactive: term.IsTerminal(int(os.Stdin.Fd())),
		store:       store,
	}
}

// confirm asks a yes/no question, defaulting to no.
func (t *terminal) confirm(question string) bool {
	if !t.interactive {
		return false
	}
	fmt.Fprintf(t.out, "%s [y/N] ", question)
	answer, err := t.in.ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

func (t *terminal) ask(question string) string {
	if !t.interactive {
		return ""
	}
	fmt.Fprintf(t.out, "%s ", question)
	answer, _ := t.in.ReadString('\n')
	return strings.TrimSpace(answer)
}

// ConfirmDestinationSetup offers to store a holding folder for the next run.
func (t *terminal) ConfirmDestinationSetup() bool {
	fmt.Fprintln(t.out, "Cleaning type is move, but no holding folder is set.")
	if !t.confirm("Set a holding folder now?") {
		return false
	}
	folder := t.ask("Holding folder:")
	if folder == "" {
		return false
	}
	if err := t.store.Set(context.Background(), settings.KeyHoldingFolder, folder); err != nil {
		fmt.Fprintf(t.out, "could not save holding folder: %v\n", err)
		return false
	}
	fmt.Fprintf(t.out, "Holding folder set to %s. Run janitor again to clean.\n", folder)
	return true
}

// ReportMoveFailure tells the user which video stayed behind.
func (t *terminal) ReportMoveFailure(title string, err error) {
	fmt.Fprintf(t.out, "Could not move %q: %v\n", title, err)
}

// progress prints category changes. Cancellation comes from the signal
// context, so Canceled never reports true on its own.
type progress struct {
	out     io.Writer
	heading string
}

func (p *progress) Update(percent int, heading, _ string) {
	if heading == "" || heading == p.heading {
		return
	}
	p.heading = heading
	fmt.Fprintf(p.out, "[%3d%%] checking %s\n", percent, heading)
}

func (p *progress) Canceled() bool { return false }
