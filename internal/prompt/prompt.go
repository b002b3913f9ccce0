// Package prompt asks the operator for a yes/no confirmation before destructive work.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// ErrNotInteractive is returned when a confirmation is needed but stdin is not a terminal.
var ErrNotInteractive = errors.New("confirmation required but stdin is not a terminal (use --yes)")

// Confirmer asks a single yes/no question.
type Confirmer interface {
	Confirm(question string) (bool, error)
}

// Always confirms without asking.
type Always struct{}

// Confirm implements Confirmer.
func (Always) Confirm(string) (bool, error) { return true, nil }

var (
	questionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	hintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// Prompt reads an answer line from In after writing the question to Out.
// Only y, Y and yes count as agreement; EOF is a refusal.
type Prompt struct {
	In  io.Reader
	Out io.Writer
}

// New returns a Prompt bound to stdin/stdout. It fails with ErrNotInteractive
// when stdin is not a terminal.
func New() (*Prompt, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, ErrNotInteractive
	}
	return &Prompt{In: os.Stdin, Out: os.Stdout}, nil
}

// Confirm implements Confirmer.
func (p *Prompt) Confirm(question string) (bool, error) {
	fmt.Fprintf(p.Out, "%s %s ", questionStyle.Render(question), hintStyle.Render("(y/n)"))
	line, err := bufio.NewReader(p.In).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	if errors.Is(err, io.EOF) && line == "" {
		fmt.Fprintln(p.Out)
	}
	return Affirmative(line), nil
}

// Affirmative reports whether answer is a yes.
func Affirmative(answer string) bool {
	switch strings.TrimSpace(answer) {
	case "y", "Y", "yes", "Yes", "YES":
		return true
	}
	return false
}
