// Copyright (c) 2026 Keymaster Team
// dbterm - database control terminal
// This source code is licensed under the MIT license found in the LICENSE file.

// Package console reads operator input line by line. On a terminal it uses
// readline for history, completion and masked passwords; otherwise it reads
// plain lines from any io.Reader so sessions can be scripted.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"golang.org/x/term"
)

// Reader supplies lines of operator input.
type Reader interface {
	// ReadLine shows prompt and returns the next line without its line
	// terminator. io.EOF is returned once input is exhausted.
	ReadLine(prompt string) (string, error)
	// ReadPassword is ReadLine without echoing the typed characters where
	// the input supports it.
	ReadPassword(prompt string) (string, error)
	Close() error
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}

// Plain reads newline-terminated lines from r and writes prompts to w.
type Plain struct {
	r *bufio.Reader
	w io.Writer
	// fd is the terminal file descriptor used for no-echo password input,
	// or -1 when the input is not a terminal.
	fd int
}

// NewPlain returns a Reader over r. When r is a terminal, passwords are read
// without echo.
func NewPlain(r io.Reader, w io.Writer) *Plain {
	p := &Plain{r: bufio.NewReader(r), w: w, fd: -1}
	if f, ok := r.(*os.File); ok && IsTerminal(f) {
		p.fd = int(f.Fd())
	}
	return p
}

func (p *Plain) ReadLine(prompt string) (string, error) {
	fmt.Fprint(p.w, prompt)
	line, err := p.r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (p *Plain) ReadPassword(prompt string) (string, error) {
	if p.fd < 0 {
		return p.ReadLine(prompt)
	}
	fmt.Fprint(p.w, prompt)
	pw, err := term.ReadPassword(p.fd)
	fmt.Fprintln(p.w)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

func (p *Plain) Close() error { return nil }

// Options configures a readline-backed Reader.
type Options struct {
	HistoryFile string
	// Commands feed tab completion of the first word.
	Commands []string
	Stdin    io.ReadCloser
	Stdout   io.Writer
}

// Readline is a Reader with line editing, history and completion.
type Readline struct {
	rl *readline.Instance
}

// NewReadline creates a readline-backed Reader.
func NewReadline(opts Options) (*Readline, error) {
	items := make([]readline.PrefixCompleterInterface, 0, len(opts.Commands))
	for _, c := range opts.Commands {
		items = append(items, readline.PcItem(c))
	}

	rl, err := readline.NewEx(&readline.Config{
		HistoryFile:       opts.HistoryFile,
		AutoComplete:      readline.NewPrefixCompleter(items...),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
		Stdin:             opts.Stdin,
		Stdout:            opts.Stdout,
		FuncFilterInputRune: func(r rune) (rune, bool) {
			if r == readline.CharCtrlZ {
				return r, false
			}
			return r, true
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialise line editor: %w", err)
	}
	return &Readline{rl: rl}, nil
}

// ReadLine reads one edited line. Ctrl+C on an empty line ends input like
// Ctrl+D; with text on the line it discards the text.
func (r *Readline) ReadLine(prompt string) (string, error) {
	r.rl.SetPrompt(prompt)
	line, err := r.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) {
		if line == "" {
			return "", io.EOF
		}
		return "", nil
	}
	return line, err
}

// ReadPassword reads a line echoing '*' for each typed character.
func (r *Readline) ReadPassword(prompt string) (string, error) {
	r.rl.SetMaskRune('*')
	pw, err := r.rl.ReadPassword(prompt)
	if err != nil {
		if errors.Is(err, readline.ErrInterrupt) {
			return "", io.EOF
		}
		return "", err
	}
	return string(pw), nil
}

func (r *Readline) Close() error {
	return r.rl.Close()
}

// Compile-time checks.
var (
	_ Reader = (*Plain)(nil)
	_ Reader = (*Readline)(nil)
)
