package tui

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/oaiiae/addressbook/reconciler"
)

var alert = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))

// Notifier writes alerts, and status text when Verbose is set.
type Notifier struct {
	Out     io.Writer
	Verbose bool
}

var _ reconciler.Notifier = (*Notifier)(nil)

func (n *Notifier) Status(text string) {
	if n.Verbose {
		fmt.Fprintln(n.Out, faint.Render(text))
	}
}

func (n *Notifier) Alert(msg string, err error) {
	switch {
	case err == nil:
	case msg == "":
		msg = err.Error()
	default:
		msg += ": " + err.Error()
	}
	fmt.Fprintln(n.Out, alert.Render("error: "+msg))
}

// Confirm asks the user in the terminal.
type Confirm struct{}

var _ reconciler.Confirmer = Confirm{}

func (Confirm) Confirm(ctx context.Context, prompt string) (bool, error) {
	var ok bool
	err := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().Title(prompt).Affirmative("Yes").Negative("No").Value(&ok),
	)).RunWithContext(ctx)
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	return ok, err
}

// AutoConfirm answers every prompt with its own value.
type AutoConfirm bool

func (a AutoConfirm) Confirm(context.Context, string) (bool, error) { return bool(a), nil }
