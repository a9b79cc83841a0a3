package ui

import (
	"errors"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
)

// Confirmer asks the user a yes/no question. The answer defaults to no.
type Confirmer struct {
	in          io.Reader
	out         io.Writer
	interactive bool
}

// NewConfirmer returns a Confirmer that uses the huh form when stdin and
// stdout are terminals and a plain [y/N] line prompt otherwise.
func NewConfirmer() *Confirmer {
	return &Confirmer{
		in:          os.Stdin,
		out:         os.Stdout,
		interactive: isTerminal(os.Stdin) && isTerminal(os.Stdout),
	}
}

// NewLineConfirmer returns a Confirmer that always reads a line from in.
func NewLineConfirmer(in io.Reader, out io.Writer) *Confirmer {
	return &Confirmer{in: in, out: out}
}

// Confirm asks question. Aborting the form (ctrl+c, esc) or closing stdin
// counts as no.
func (c *Confirmer) Confirm(question string) (bool, error) {
	var ok bool
	field := huh.NewConfirm().
		Title(question).
		Affirmative("Yes").
		Negative("No").
		Value(&ok)

	var err error
	if c.interactive {
		err = field.Run()
	} else {
		err = field.RunAccessible(c.out, c.in)
	}
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return ok, nil
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
