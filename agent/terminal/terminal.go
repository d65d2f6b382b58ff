// Package terminal implements the agent's TerminalIO over stdin/stdout.
package terminal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/codechat-dev/codechat/agent"
)

// Terminal is a line-oriented TerminalIO. A single reader goroutine owns
// stdin so reads can be abandoned when the context is cancelled; the
// pending line is simply consumed by the next call.
type Terminal struct {
	out   io.Writer
	lines chan string
	done  chan struct{}
}

// New creates a Terminal reading from r and writing to w.
func New(r io.Reader, w io.Writer) *Terminal {
	t := &Terminal{
		out:   w,
		lines: make(chan string),
		done:  make(chan struct{}),
	}
	go func() {
		defer close(t.done)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			t.lines <- scanner.Text()
		}
	}()
	return t
}

// NewStdio creates a Terminal over os.Stdin and os.Stdout.
func NewStdio() *Terminal {
	return New(os.Stdin, os.Stdout)
}

// ReadLine returns the next input line. It returns agent.ErrInterrupted
// when ctx is cancelled and io.EOF when input is exhausted.
func (t *Terminal) ReadLine(ctx context.Context) (string, error) {
	select {
	case line := <-t.lines:
		return line, nil
	case <-t.done:
		return "", io.EOF
	case <-ctx.Done():
		return "", agent.ErrInterrupted
	}
}

// Print writes a line of text to the terminal.
func (t *Terminal) Print(text string) {
	fmt.Fprintln(t.out, text)
}

// Confirm asks a yes/no question and returns the answer. An empty reply
// takes the default; cancellation resolves to agent.ErrInterrupted so an
// interrupted prompt skips the command instead of running it.
func (t *Terminal) Confirm(ctx context.Context, prompt string, def bool) (bool, error) {
	suffix := "[y/N]"
	if def {
		suffix = "[Y/n]"
	}
	fmt.Fprintf(t.out, "%s %s: ", prompt, suffix)

	answer, err := t.ReadLine(ctx)
	if err != nil {
		return false, err
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	case "n", "no":
		return false, nil
	case "":
		return def, nil
	default:
		return false, nil
	}
}
