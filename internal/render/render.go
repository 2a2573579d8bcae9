// Copyright (c) 2026 Keymaster Team
// dbterm - database control terminal
// This source code is licensed under the MIT license found in the LICENSE file.

// Package render writes the shell's operator-facing output: fixed-width
// tables, horizontal rules, counts and styled status lines. Styles come from
// a lipgloss renderer bound to the output, so writing to a pipe or a buffer
// produces plain text.
package render

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
)

// CellWidth is the column width of generic result tables.
const CellWidth = 20

// ClearScreen is the ANSI sequence that homes the cursor and clears the screen.
const ClearScreen = "\033[H\033[2J"

// Printer renders shell output to a writer.
type Printer struct {
	w io.Writer

	success lipgloss.Style
	failure lipgloss.Style
	warning lipgloss.Style
	banner  lipgloss.Style
}

// New returns a Printer writing to w.
func New(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:       w,
		success: r.NewStyle().Foreground(lipgloss.Color("42")),
		failure: r.NewStyle().Foreground(lipgloss.Color("196")),
		warning: r.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
		banner: r.NewStyle().
			Border(lipgloss.DoubleBorder()).
			Width(39).
			Align(lipgloss.Center),
	}
}

// Writer exposes the underlying writer.
func (p *Printer) Writer() io.Writer { return p.w }

// Println writes the operands followed by a newline.
func (p *Printer) Println(a ...any) {
	fmt.Fprintln(p.w, a...)
}

// Printf writes formatted output without adding a newline.
func (p *Printer) Printf(format string, a ...any) {
	fmt.Fprintf(p.w, format, a...)
}

// Blank writes an empty line.
func (p *Printer) Blank() {
	fmt.Fprintln(p.w)
}

// Prompt writes s without a trailing newline.
func (p *Printer) Prompt(s string) {
	fmt.Fprint(p.w, s)
}

// Success writes a confirmation line.
func (p *Printer) Success(msg string) {
	fmt.Fprintln(p.w, p.success.Render(msg))
}

// Error writes a failure line.
func (p *Printer) Error(msg string) {
	fmt.Fprintln(p.w, p.failure.Render(msg))
}

// Warn writes a warning without a trailing newline; warnings precede a
// confirmation prompt.
func (p *Printer) Warn(msg string) {
	fmt.Fprint(p.w, p.warning.Render(msg))
}

// Banner writes a double-bordered box with centered lines.
func (p *Printer) Banner(lines ...string) {
	fmt.Fprintln(p.w, p.banner.Render(strings.Join(lines, "\n")))
	fmt.Fprintln(p.w)
}

// Clear clears the terminal.
func (p *Printer) Clear() {
	fmt.Fprint(p.w, ClearScreen)
}

// Rule writes ch repeated width times.
func (p *Printer) Rule(ch string, width int) {
	fmt.Fprintln(p.w, strings.Repeat(ch, width))
}

// Section writes a blank line, title and a "=" rule of the given width.
func (p *Printer) Section(title string, width int) {
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, title)
	p.Rule("=", width)
}

// Table is a titled fixed-width listing.
type Table struct {
	Title string
	Width int
	// Format lays out the header; RowFormat, when set, lays out rows.
	Format    string
	RowFormat string
	Header    []any
	Rows      [][]any
	Footer    string
}

// Table writes t: title, "=" rule, header, "-" rule, rows and footer.
func (p *Printer) Table(t Table) {
	p.Section(t.Title, t.Width)
	if len(t.Header) > 0 {
		fmt.Fprintf(p.w, t.Format+"\n", t.Header...)
		p.Rule("-", t.Width)
	}
	rowFormat := t.RowFormat
	if rowFormat == "" {
		rowFormat = t.Format
	}
	for _, row := range t.Rows {
		fmt.Fprintf(p.w, rowFormat+"\n", row...)
	}
	if t.Footer != "" {
		fmt.Fprintln(p.w, t.Footer)
	}
}

// Results writes a generic result set: every column as a CellWidth-wide cell
// followed by " | ", values truncated to CellWidth characters.
func (p *Printer) Results(title string, columns []string, rows [][]string, footer string) {
	p.Section(title, 80)
	var b strings.Builder
	for _, c := range columns {
		fmt.Fprintf(&b, "%-20s | ", c)
	}
	fmt.Fprintln(p.w, b.String())
	p.Rule("-", 80)
	for _, row := range rows {
		b.Reset()
		for _, v := range row {
			fmt.Fprintf(&b, "%-20s | ", Truncate(v, CellWidth))
		}
		fmt.Fprintln(p.w, b.String())
	}
	fmt.Fprintln(p.w, footer)
}

// Truncate shortens s to at most n characters.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
